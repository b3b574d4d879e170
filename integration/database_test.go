//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestHunterstatsWithMySQL tests the CLI with MySQL state and run history.
func TestHunterstatsWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "hunterstats",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/hunterstats?parseTime=true", host, port.Port())
	env := newCLIEnv(t,
		"HUNTERSTATS_STATE_BACKEND=mysql",
		"HUNTERSTATS_STATE_DB_CONNECT="+connStr,
		"HUNTERSTATS_RUNS_BACKEND=mysql",
		"HUNTERSTATS_RUNS_DB_CONNECT="+connStr,
	)

	exerciseDatabaseCLI(t, env)
}

// TestHunterstatsWithPostgres tests the CLI with PostgreSQL state and run history.
func TestHunterstatsWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	env := newCLIEnv(t,
		"HUNTERSTATS_STATE_BACKEND=postgresql",
		"HUNTERSTATS_STATE_DB_CONNECT="+connStr,
		"HUNTERSTATS_RUNS_BACKEND=postgresql",
		"HUNTERSTATS_RUNS_DB_CONNECT="+connStr,
	)

	exerciseDatabaseCLI(t, env)
}

func exerciseDatabaseCLI(t *testing.T, env *cliEnv) {
	t.Helper()

	env.run(t, "", "state", "clear")
	env.run(t, "", "runs", "clear")

	out := env.run(t, "", "runs", "migrate")
	assert.NotEmpty(t, out)

	exerciseCLI(t, env)

	out = env.run(t, "", "runs", "status")
	assert.Contains(t, out, "Total Runs: 1")

	env.run(t, "", "state", "clear")
	out = env.run(t, "", "state", "status")
	assert.Contains(t, out, "Total Entries: 0")
}

package contract

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/huangsam/hunterstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes validation.
func validInput(t *testing.T) *ConfigRawInput {
	t.Helper()
	return &ConfigRawInput{
		Timezone:         DefaultTimezone,
		Retention:        DefaultRetention,
		EventWindow:      DefaultEventWindow,
		CompletionTarget: DefaultCompletionTarget,
		ProjectionPoints: DefaultProjectionPoints,
		DailyGoal:        DefaultDailyGoal,
		TopUsers:         DefaultTopUsers,
		TopHeroes:        DefaultTopHeroes,
		MessageLimit:     DefaultMessageLimit,
		Pools:            DefaultPools,
		Precision:        DefaultPrecision,
		Output:           "text",
		Color:            "yes",
		LogLevel:         "info",
		StateBackend:     "sqlite",
		StateDBConnect:   filepath.Join(t.TempDir(), "state.db"),
		Listen:           DefaultListenAddr,
		RateLimit:        DefaultRateLimit,
		RateWindow:       DefaultRateWindow,
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid defaults", modify: func(*ConfigRawInput) {}},
		{name: "invalid timezone", modify: func(in *ConfigRawInput) { in.Timezone = "Mars/Olympus" }, expectError: true},
		{name: "retention below a day", modify: func(in *ConfigRawInput) { in.Retention = "2 hours" }, expectError: true},
		{name: "retention ISO-8601", modify: func(in *ConfigRawInput) { in.Retention = "P7D" }},
		{name: "bad event window", modify: func(in *ConfigRawInput) { in.EventWindow = "soon" }, expectError: true},
		{name: "top users too large", modify: func(in *ConfigRawInput) { in.TopUsers = MaxTopUsers + 1 }, expectError: true},
		{name: "top heroes zero", modify: func(in *ConfigRawInput) { in.TopHeroes = 0 }, expectError: true},
		{name: "projection points too few", modify: func(in *ConfigRawInput) { in.ProjectionPoints = 1 }, expectError: true},
		{name: "completion target above 100", modify: func(in *ConfigRawInput) { in.CompletionTarget = 101 }, expectError: true},
		{name: "negative daily goal", modify: func(in *ConfigRawInput) { in.DailyGoal = -1 }, expectError: true},
		{name: "message limit too small", modify: func(in *ConfigRawInput) { in.MessageLimit = 50 }, expectError: true},
		{name: "precision too high", modify: func(in *ConfigRawInput) { in.Precision = 7 }, expectError: true},
		{name: "invalid output", modify: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "parquet without file", modify: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: true},
		{name: "parquet with file", modify: func(in *ConfigRawInput) {
			in.Output = "parquet"
			in.OutputFile = "report.parquet"
		}},
		{name: "invalid color", modify: func(in *ConfigRawInput) { in.Color = "sometimes" }, expectError: true},
		{name: "invalid log level", modify: func(in *ConfigRawInput) { in.LogLevel = "loud" }, expectError: true},
		{name: "empty pool list", modify: func(in *ConfigRawInput) { in.Pools = " , " }, expectError: true},
		{name: "unknown primary pool", modify: func(in *ConfigRawInput) { in.PrimaryPool = "Nope" }, expectError: true},
		{name: "invalid state backend", modify: func(in *ConfigRawInput) { in.StateBackend = "redis" }, expectError: true},
		{name: "bolt runs backend rejected", modify: func(in *ConfigRawInput) { in.RunsBackend = "bolt" }, expectError: true},
		{name: "mysql without connection", modify: func(in *ConfigRawInput) { in.RunsBackend = "mysql" }, expectError: true},
		{name: "same sqlite file", modify: func(in *ConfigRawInput) {
			in.RunsBackend = "sqlite"
			in.RunsDBConnect = in.StateDBConnect
		}, expectError: true},
		{name: "negative rate limit", modify: func(in *ConfigRawInput) { in.RateLimit = -1 }, expectError: true},
		{name: "bad rate window", modify: func(in *ConfigRawInput) { in.RateWindow = "whenever" }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput(t)
			tt.modify(input)

			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateResolvedValues(t *testing.T) {
	input := validInput(t)
	input.Pools = " TTD, Hunters ,TTD,"
	input.CORSOrigins = "https://a.example, https://b.example"
	input.LogLevel = "debug"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, []string{"TTD", "Hunters"}, cfg.Pools)
	assert.Equal(t, "TTD", cfg.PrimaryPool, "first pool becomes primary")
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Equal(t, 24*time.Hour, cfg.EventWindow)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.Equal(t, "Europe/Stockholm", cfg.Location.String())
	assert.Equal(t, schema.NoneBackend, cfg.RunsBackend, "empty runs backend means none")
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, DefaultTitle, cfg.Title)
	assert.Equal(t, DefaultPuzzleName, cfg.PuzzleName)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.UseColors)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		connStr     string
		expectError bool
	}{
		{"sqlite without connection", schema.SQLiteBackend, "", false},
		{"bolt without connection", schema.BoltBackend, "", false},
		{"file without connection", schema.FileBackend, "", false},
		{"none", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/stats", false},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/stats", true},
		{"mysql missing database", schema.MySQLBackend, "user:pass@tcp(localhost:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 user=u dbname=stats", false},
		{"postgres empty", schema.PostgreSQLBackend, "", true},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=stats", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	level, err = ParseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)
}

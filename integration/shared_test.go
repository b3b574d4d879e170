//go:build basic || database

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	// sharedBinaryPath holds the path to a shared hunterstats binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBinary returns the path to the hunterstats binary, building it once if needed.
func getBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "hunterstats-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "hunterstats")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build hunterstats: %v", err))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// cliEnv isolates one test run: HOME and the working directory point at a
// fresh temp dir so default store paths and config files never leak between tests.
type cliEnv struct {
	dir  string
	vars []string
}

func newCLIEnv(t *testing.T, vars ...string) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	return &cliEnv{
		dir:  dir,
		vars: append([]string{"HOME=" + dir, "HUNTERSTATS_TIMEZONE=UTC", "HUNTERSTATS_COLOR=no"}, vars...),
	}
}

// run executes the CLI with stdin and returns stdout.
func (e *cliEnv) run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	cmd := exec.Command(getBinary(), args...)
	cmd.Dir = e.dir
	cmd.Env = append(os.Environ(), e.vars...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Run(), "hunterstats %v failed: %s", args, stderr.String())
	return stdout.String()
}

// sample renders a primary-pool collector sample taken ago before now.
func sample(ago time.Duration, completion float64, aliceRanges, bobRanges int) string {
	ts := time.Now().Add(-ago).Unix()
	return fmt.Sprintf(`{"pool":"Hunters","timestamp":%d,"completion":%g,"speed":850,"total_ranges":%d,`+
		`"users":{"alice":{"ranges":%d,"speed":620},"bob":[%d,310]}}`,
		ts, completion, aliceRanges+bobRanges, aliceRanges, bobRanges)
}

// exerciseCLI drives the ingest and report flow against whatever backends env selects.
func exerciseCLI(t *testing.T, env *cliEnv) {
	t.Helper()

	out := env.run(t, sample(2*time.Minute, 12.5, 1000, 400), "ingest")
	require.Contains(t, out, "Hunters: 5 accepted, 0 rejected")
	out = env.run(t, sample(time.Minute, 12.75, 1600, 500), "ingest")
	require.Contains(t, out, "Hunters: 5 accepted, 0 rejected")

	out = env.run(t, "", "heroes", "--output", "json")
	require.Contains(t, out, `"user": "alice"`)
	require.Contains(t, out, `"range_delta": 600`)

	out = env.run(t, "", "user", "ali", "--output", "json")
	require.Contains(t, out, `"found": true`)

	out = env.run(t, "", "report")
	require.Contains(t, out, "BTC Hunters Stats")

	out = env.run(t, "", "state", "status")
	require.Contains(t, out, "Connected: true")
}

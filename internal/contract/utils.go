package contract

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Speed label constants.
const (
	RocketValue = "Rocket" // At least 1000 BKeys/s
	FastValue   = "Fast"   // At least 500 BKeys/s
	SlowValue   = "Slow"   // Below 500 BKeys/s
)

// Color variables for console output.
var (
	HeadingColor = color.New(color.FgCyan, color.Bold)
	RocketColor  = color.New(color.FgGreen, color.Bold)
	FastColor    = color.New(color.FgYellow)
	SlowColor    = color.New(color.FgRed)
)

// GetSpeedLabel returns a plain text label for a pool or user speed.
// This is the core logic used for CSV, JSON, and table printing.
func GetSpeedLabel(speed float64) string {
	switch {
	case speed >= 1000:
		return RocketValue
	case speed >= 500:
		return FastValue
	default:
		return SlowValue
	}
}

// GetColorSpeedLabel returns a colored speed label for console output (table).
func GetColorSpeedLabel(speed float64) string {
	text := GetSpeedLabel(speed)
	switch text {
	case RocketValue:
		return RocketColor.Sprint(text)
	case FastValue:
		return FastColor.Sprint(text)
	default:
		return SlowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}

// LogWarn logs a warning without stopping the program.
func LogWarn(msg string, err error) {
	slog.Warn(msg, "err", err)
}

func homePath(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, name)
}

// GetStateDBFilePath returns the path to the SQLite DB file for state storage.
func GetStateDBFilePath() string {
	return homePath(".hunterstats_state.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run storage.
func GetRunsDBFilePath() string {
	return homePath(".hunterstats_runs.db")
}

// GetBoltFilePath returns the path to the bolt file for state storage.
func GetBoltFilePath() string {
	return homePath(".hunterstats_state.bolt")
}

// GetStateDirPath returns the directory used by the file state backend.
func GetStateDirPath() string {
	return homePath(".hunterstats_state")
}

// GetLockFilePath returns the path of the run lock file.
func GetLockFilePath() string {
	return homePath(".hunterstats.lock")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to leave room for the ellipsis and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

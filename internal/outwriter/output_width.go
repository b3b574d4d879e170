package outwriter

import (
	"os"

	"github.com/huangsam/hunterstats/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableNameWidth calculates the maximum width for user names in table output
// based on terminal width and the width of the numeric columns.
func GetMaxTableNameWidth(cfg *contract.Config, fixedColumns int) int {
	termWidth := cfg.Width
	if termWidth <= 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Each numeric column takes about 14 cells with borders and padding
	available := termWidth - fixedColumns*14 - 10
	if available < 12 {
		return 12
	}
	if available > 40 {
		return 40
	}
	return available
}

package outwriter

import (
	"os"

	"github.com/shardsquad/shardstats/internal/contract"
	"golang.org/x/term"
)

// getMaxCompositionWidth calculates the maximum width of the composition column
// in the matches table based on terminal width.
func getMaxCompositionWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// ID + Player + Version + Result + Wave + Difficulty + Damage with borders/padding
	baseWidth := 95

	available := termWidth - baseWidth
	if available < 20 {
		return 20
	}
	if available > 60 {
		return 60
	}
	return available
}

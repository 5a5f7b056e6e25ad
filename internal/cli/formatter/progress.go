package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderBudget renders how much of an estimate has been used, like
// [████░░░░] 45%. The bar turns yellow past 75% and red once the
// estimate is exceeded; the percentage keeps counting past 100.
func RenderBudget(used, estimated int64, width int) string {
	if estimated <= 0 {
		return Dim("--")
	}
	if width < 2 {
		width = 2
	}
	pct := float64(max(used, 0)) / float64(estimated)

	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct > 1:
		style = StyleRed
	case pct > 0.75:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}

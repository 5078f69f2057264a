// Package ui holds the plain terminal helpers used by the watch console.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/CK6170/forcescale-go/scale"
)

var (
	idleColor = color.New(color.FgHiBlack)
	massColor = color.New(color.FgHiWhite, color.Bold)
	maxColor  = color.New(color.FgHiRed, color.Bold)
	okColor   = color.New(color.FgHiGreen)
	warnColor = color.New(color.FgHiYellow)
)

func Debugf(enabled bool, format string, a ...interface{}) {
	if enabled {
		warnColor.Printf("[DEBUG] "+format, a...)
	}
}

func Greenf(format string, a ...interface{}) {
	okColor.Printf(format, a...)
}

func Warningf(format string, a ...interface{}) {
	warnColor.Printf(format, a...)
}

func ClearLine(w io.Writer) {
	fmt.Fprint(w, "\r\033[2K")
}

// FormatDisplay renders a display state in the colors of the scale face:
// dim when idle, highlighted when saturated.
func FormatDisplay(st scale.DisplayState) string {
	text := fmt.Sprintf("%5s g", st.Text())
	switch {
	case !st.Active:
		return idleColor.Sprint(text)
	case st.OverCapacity:
		return maxColor.Sprint(text)
	default:
		return massColor.Sprint(text)
	}
}

// TareLabel is the tare button caption for a tare outcome; the empty action
// gives the resting caption.
func TareLabel(action scale.TareAction) string {
	switch action {
	case scale.TareSet:
		return "TARED"
	case scale.TareCleared:
		return "RESET"
	default:
		return "TARE"
	}
}

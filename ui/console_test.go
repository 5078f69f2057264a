package ui

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/CK6170/forcescale-go/scale"
)

func TestFormatDisplay(t *testing.T) {
	color.NoColor = true
	assert.Equal(t, "    0 g", FormatDisplay(scale.Idle))
	assert.Equal(t, "  137 g", FormatDisplay(scale.DisplayState{Mass: 137, Active: true}))
	assert.Equal(t, "  MAX g", FormatDisplay(scale.DisplayState{OverCapacity: true, Active: true}))
}

func TestTareLabel(t *testing.T) {
	assert.Equal(t, "TARED", TareLabel(scale.TareSet))
	assert.Equal(t, "RESET", TareLabel(scale.TareCleared))
	assert.Equal(t, "TARE", TareLabel(""))
}

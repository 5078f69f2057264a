package scale

import "strconv"

// OverCapacityText is how a saturated reading is rendered.
const OverCapacityText = "MAX"

// DisplayState is what the presentation layer renders after every input.
// When OverCapacity is set Mass carries no meaning and is left at 0.
type DisplayState struct {
	Mass         int  `json:"mass"`
	OverCapacity bool `json:"overCapacity"`
	Active       bool `json:"active"`
}

// Idle is the state shown when no press is registered.
var Idle = DisplayState{}

// Text renders the mass value the way the display shows it.
func (d DisplayState) Text() string {
	if d.OverCapacity {
		return OverCapacityText
	}
	return strconv.Itoa(d.Mass)
}

// Package serial reads force samples from a sensor board over a serial line.
//
// The board prints one ASCII line per event:
//
//	1.482      force sample in sensor units
//	UP         press released
//	TARE       hardware tare button
//
// Blank lines and lines starting with '#' are ignored.
package serial

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CK6170/forcescale-go/scale"
)

// Event is an alias so callers of this package do not need to import scale
// just to name the callback type.
type Event = scale.Event

// ParseError describes a line that is not part of the protocol.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bad line %q: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseLine decodes one protocol line. ok is false for lines that carry no
// event (blank or comment).
func ParseLine(line string) (ev Event, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Event{}, false, nil
	}
	switch strings.ToUpper(line) {
	case "UP":
		return Event{Kind: scale.EventUp}, true, nil
	case "TARE":
		return Event{Kind: scale.EventTare}, true, nil
	}
	f, perr := strconv.ParseFloat(line, 64)
	if perr != nil {
		return Event{}, false, &ParseError{Line: line, Err: perr}
	}
	return Event{Kind: scale.EventForce, Force: f}, true, nil
}

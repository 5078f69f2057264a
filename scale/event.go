package scale

import (
	"errors"
	"fmt"
	"math"
)

// EventKind names an input event delivered by a platform adapter.
type EventKind string

const (
	EventForce EventKind = "force" // force magnitude changed
	EventDown  EventKind = "down"  // press started
	EventMove  EventKind = "move"  // pointer moved while tracked
	EventUp    EventKind = "up"    // press released
	EventTare  EventKind = "tare"  // tare button activated
)

var ErrUnknownEvent = errors.New("unknown event kind")

// Event is a platform-neutral input event. Force is only read for force,
// down and move events.
type Event struct {
	Kind  EventKind `json:"type"`
	Force float64   `json:"force,omitempty"`
}

// Result is what applying an event produced. Handled is false when the event
// carried nothing the core reacts to (a press start or move without force);
// in that case the display is not refreshed.
type Result struct {
	State   DisplayState
	Tare    TareAction
	Handled bool
}

// Apply maps ev onto the matching Scale call.
func Apply(s *Scale, ev Event) (Result, error) {
	switch ev.Kind {
	case EventForce:
		return Result{State: s.ReportForce(ev.Force), Handled: true}, nil
	case EventDown:
		if ev.Force == 0 || math.IsNaN(ev.Force) {
			return Result{}, nil
		}
		return Result{State: s.ReportForce(ev.Force), Handled: true}, nil
	case EventMove:
		if !(ev.Force > 0) {
			return Result{}, nil
		}
		return Result{State: s.ReportForce(ev.Force), Handled: true}, nil
	case EventUp:
		return Result{State: s.ReportGestureEnd(), Handled: true}, nil
	case EventTare:
		st, action := s.RequestTare()
		return Result{State: st, Tare: action, Handled: true}, nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
}

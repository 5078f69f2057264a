// Package replay runs a recorded input session through a fresh scale and
// summarizes what the display showed.
//
// Recordings are CSV, one event per row:
//
//	force,1.42
//	up
//	tare
//	1.8          (a bare number is a force sample)
//
// Lines starting with '#' are comments.
package replay

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/CK6170/forcescale-go/scale"
)

// Parse reads a recording.
func Parse(r io.Reader) ([]scale.Event, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var events []scale.Event
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read recording: %w", err)
		}
		line, _ := cr.FieldPos(0)
		ev, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
}

func parseRecord(rec []string) (scale.Event, error) {
	kind := strings.ToLower(strings.TrimSpace(rec[0]))
	if f, err := strconv.ParseFloat(kind, 64); err == nil {
		return scale.Event{Kind: scale.EventForce, Force: f}, nil
	}
	ev := scale.Event{Kind: scale.EventKind(kind)}
	switch ev.Kind {
	case scale.EventForce, scale.EventDown, scale.EventMove:
		if len(rec) < 2 {
			return ev, fmt.Errorf("%s event needs a force value", kind)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return ev, fmt.Errorf("force %q: %w", rec[1], err)
		}
		ev.Force = f
	case scale.EventUp, scale.EventTare:
	default:
		return ev, fmt.Errorf("%w: %q", scale.ErrUnknownEvent, kind)
	}
	return ev, nil
}

// Step is one replayed event and what the display showed afterwards.
type Step struct {
	Event   scale.Event
	Result  scale.Result
	Offset  float64
	Display string
}

type Summary struct {
	Events    int
	Updates   int // events that refreshed the display
	Active    int
	Saturated int
	Tares     int
	// Mass statistics over active, unsaturated updates.
	MeanMass   float64
	StdDevMass float64
	MaxMass    float64
}

type Report struct {
	Steps   []Step
	Summary Summary
}

// Run replays events through a new Scale.
func Run(events []scale.Event) (*Report, error) {
	s := scale.New()
	rep := &Report{Steps: make([]Step, 0, len(events))}
	var masses []float64
	for i, ev := range events {
		res, err := scale.Apply(s, ev)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}
		rep.Steps = append(rep.Steps, Step{
			Event:   ev,
			Result:  res,
			Offset:  s.Offset(),
			Display: res.State.Text(),
		})
		if !res.Handled {
			continue
		}
		rep.Summary.Updates++
		if res.Tare != "" {
			rep.Summary.Tares++
		}
		if !res.State.Active {
			continue
		}
		rep.Summary.Active++
		if res.State.OverCapacity {
			rep.Summary.Saturated++
			continue
		}
		masses = append(masses, float64(res.State.Mass))
	}
	rep.Summary.Events = len(events)
	if len(masses) > 0 {
		rep.Summary.MeanMass = stat.Mean(masses, nil)
		rep.Summary.MaxMass = floats.Max(masses)
	}
	if len(masses) > 1 {
		rep.Summary.StdDevMass = stat.StdDev(masses, nil)
	}
	if math.IsNaN(rep.Summary.StdDevMass) {
		rep.Summary.StdDevMass = 0
	}
	return rep, nil
}

package replay

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CK6170/forcescale-go/scale"
)

const recording = `# kitchen test
force,1.5
move, 2.0
3.0
tare
up
tare
down,4.75
up
`

func TestParse(t *testing.T) {
	events, err := Parse(strings.NewReader(recording))
	require.NoError(t, err)

	want := []scale.Event{
		{Kind: scale.EventForce, Force: 1.5},
		{Kind: scale.EventMove, Force: 2.0},
		{Kind: scale.EventForce, Force: 3.0},
		{Kind: scale.EventTare},
		{Kind: scale.EventUp},
		{Kind: scale.EventTare},
		{Kind: scale.EventDown, Force: 4.75},
		{Kind: scale.EventUp},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("force\n"))
	assert.ErrorContains(t, err, "line 1")

	_, err = Parse(strings.NewReader("up\nforce,abc\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = Parse(strings.NewReader("scroll,1\n"))
	assert.ErrorIs(t, err, scale.ErrUnknownEvent)
}

func TestRun(t *testing.T) {
	events, err := Parse(strings.NewReader(recording))
	require.NoError(t, err)

	rep, err := Run(events)
	require.NoError(t, err)

	var shown []string
	for _, st := range rep.Steps {
		shown = append(shown, st.Display)
	}
	assert.Equal(t, []string{"80", "160", "320", "0", "0", "0", "MAX", "0"}, shown)
	assert.InDelta(t, 400.0, rep.Steps[3].Offset, 1e-9)
	assert.Zero(t, rep.Steps[5].Offset)

	s := rep.Summary
	assert.Equal(t, 8, s.Events)
	assert.Equal(t, 8, s.Updates)
	assert.Equal(t, 5, s.Active)
	assert.Equal(t, 1, s.Saturated)
	assert.Equal(t, 2, s.Tares)
	assert.InDelta(t, 140.0, s.MeanMass, 1e-9)
	assert.InDelta(t, 136.626, s.StdDevMass, 1e-3)
	assert.Equal(t, 320.0, s.MaxMass)
}

func TestRunSkipsUnhandled(t *testing.T) {
	rep, err := Run([]scale.Event{
		{Kind: scale.EventDown},
		{Kind: scale.EventMove},
		{Kind: scale.EventForce, Force: 2.0},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Summary.Events)
	assert.Equal(t, 1, rep.Summary.Updates)
	assert.Equal(t, 160.0, rep.Summary.MeanMass)
	assert.Zero(t, rep.Summary.StdDevMass)
}

package scale

import "math"

// ForceSampler keeps the force of the current press gesture and relays every
// change to a WeightEstimator.
type ForceSampler struct {
	current   float64
	estimator *WeightEstimator
}

// NewForceSampler returns a sampler feeding e.
func NewForceSampler(e *WeightEstimator) *ForceSampler {
	return &ForceSampler{estimator: e}
}

// CurrentForce returns the most recent sample, 0 outside a gesture.
func (s *ForceSampler) CurrentForce() float64 { return s.current }

// OnForceSample records raw as the current force and returns the resulting
// display state. Negative and NaN readings are treated as 0.
func (s *ForceSampler) OnForceSample(raw float64) DisplayState {
	if raw < 0 || math.IsNaN(raw) {
		raw = 0
	}
	s.current = raw
	return s.estimator.Evaluate(raw)
}

// OnGestureEnd resets the current force once the press is released.
func (s *ForceSampler) OnGestureEnd() DisplayState {
	s.current = 0
	return s.estimator.Evaluate(0)
}

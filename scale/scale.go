package scale

// Scale is the core object handed to an input layer. The zero value is not
// usable; construct it with New.
type Scale struct {
	estimator *WeightEstimator
	sampler   *ForceSampler
}

// New returns a Scale with no force applied and no tare.
func New() *Scale {
	e := NewWeightEstimator()
	return &Scale{
		estimator: e,
		sampler:   NewForceSampler(e),
	}
}

// ReportForce feeds a raw force sample.
func (s *Scale) ReportForce(raw float64) DisplayState {
	return s.sampler.OnForceSample(raw)
}

// ReportGestureEnd signals that the press was released.
func (s *Scale) ReportGestureEnd() DisplayState {
	return s.sampler.OnGestureEnd()
}

// RequestTare tares against the current force (or clears the tare when idle)
// and returns the refreshed display.
func (s *Scale) RequestTare() (DisplayState, TareAction) {
	force := s.sampler.CurrentForce()
	action := s.estimator.Tare(force)
	return s.estimator.Evaluate(force), action
}

// State re-evaluates the current force without changing anything.
func (s *Scale) State() DisplayState {
	return s.estimator.Evaluate(s.sampler.CurrentForce())
}

// Force returns the current force sample.
func (s *Scale) Force() float64 { return s.sampler.CurrentForce() }

// Offset returns the tare offset in grams.
func (s *Scale) Offset() float64 { return s.estimator.Offset() }

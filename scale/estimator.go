package scale

import "math"

const (
	// ActiveThreshold is the dead band below which a sample counts as no press.
	ActiveThreshold = 0.1
	// ClickThreshold is the smallest force the platform reliably reports.
	// Mass is measured from this point up.
	ClickThreshold = 1.0
	// ScaleFactor converts force above ClickThreshold into grams.
	ScaleFactor = 160.0
	// MaxDisplayMass is the largest mass shown before saturating.
	MaxDisplayMass = 500

	// TareFullScale and TareCapacity define the linear map used by Tare:
	// TareFullScale force units correspond to TareCapacity grams.
	// This map does not match ClickThreshold/ScaleFactor, so a tare does not
	// zero the display exactly.
	TareFullScale = 3.0
	TareCapacity  = 400.0
)

// TareAction reports what a tare request did to the offset.
type TareAction string

const (
	TareSet     TareAction = "tared"
	TareCleared TareAction = "cleared"
)

// WeightEstimator converts force into a displayed mass and owns the tare offset.
type WeightEstimator struct {
	offset float64
}

// NewWeightEstimator returns an estimator with no tare applied.
func NewWeightEstimator() *WeightEstimator {
	return &WeightEstimator{}
}

// Offset returns the current tare offset in grams.
func (e *WeightEstimator) Offset() float64 { return e.offset }

// Evaluate converts a force sample into the state to display. It does not
// modify the estimator.
func (e *WeightEstimator) Evaluate(force float64) DisplayState {
	if force < ActiveThreshold {
		return Idle
	}

	raw := 0.0
	if force >= ClickThreshold {
		raw = (force - ClickThreshold) * ScaleFactor
	}

	// Compare before converting: huge or infinite forces overflow int.
	mass := math.Round(math.Max(0, raw-e.offset))
	if math.IsNaN(mass) {
		// infinite force against an infinite tare
		mass = 0
	}
	if mass > MaxDisplayMass {
		return DisplayState{OverCapacity: true, Active: true}
	}
	return DisplayState{Mass: int(mass), Active: true}
}

// Tare sets the offset from the force currently applied. Without an active
// press the offset is cleared instead.
func (e *WeightEstimator) Tare(currentForce float64) TareAction {
	if currentForce > 0 {
		e.offset = currentForce / TareFullScale * TareCapacity
		return TareSet
	}
	e.offset = 0
	return TareCleared
}

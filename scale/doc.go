// Package scale turns force readings from a pressure-sensing pointer into a
// displayed mass. It holds the two pieces of state the display depends on:
//
//   - the current force of the active press gesture (ForceSampler)
//   - the tare offset applied to every conversion (WeightEstimator)
//
// Scale ties both together behind the three calls an input layer makes:
// ReportForce, ReportGestureEnd and RequestTare. Every call returns the
// DisplayState to render. The package performs no I/O and is not safe for
// concurrent use; callers serialize access.
package scale

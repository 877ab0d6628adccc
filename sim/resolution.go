package sim

import (
	"errors"
	"fmt"
	"math"
)

// Resolution is the duration of one simulation step in milliseconds.
type Resolution float64

// DefaultResolution is the step duration used when none is configured.
const DefaultResolution Resolution = 0.1

var (
	// ErrZeroResolution is returned when converting with a non-positive
	// resolution.
	ErrZeroResolution = errors.New("sim: resolution must be positive")

	// ErrNegativeDuration is returned when converting a negative duration.
	ErrNegativeDuration = errors.New("sim: negative durations are not supported")

	// ErrStepPrecisionLoss is returned when a duration is not a whole number
	// of steps.
	ErrStepPrecisionLoss = errors.New("sim: duration is not a multiple of the resolution")
)

// Validate checks that the resolution can be used for conversions.
func (r Resolution) Validate() error {
	if !(r > 0) || math.IsInf(float64(r), 0) {
		return fmt.Errorf("%w: %v ms", ErrZeroResolution, float64(r))
	}

	return nil
}

// Steps converts a duration in milliseconds to a whole number of steps.
func (r Resolution) Steps(ms float64) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}

	if ms < 0 || math.IsNaN(ms) {
		return 0, fmt.Errorf("%w: %.12g ms", ErrNegativeDuration, ms)
	}

	scaled := ms / float64(r)
	rounded := math.Round(scaled)
	if math.Abs(scaled-rounded) > stepAlignmentTolerance(scaled) {
		return 0, fmt.Errorf(
			"%w: duration %.12g ms, step %.12g ms",
			ErrStepPrecisionLoss, ms, float64(r),
		)
	}

	if rounded > math.MaxInt64/2 {
		return 0, fmt.Errorf("sim: duration %.12g ms overflows the step counter", ms)
	}

	return int64(rounded), nil
}

// MS returns the time of a step in milliseconds.
func (r Resolution) MS(step VTimeInStep) float64 {
	return float64(step) * float64(r)
}

func stepAlignmentTolerance(scaled float64) float64 {
	return 1e-6 * math.Max(1, math.Abs(scaled))
}

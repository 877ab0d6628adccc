package stateneuron

import (
	"fmt"
	"math"

	"github.com/sarchlab/stateneuron/sim"
)

// Spec is the parameter set of a state neuron. Durations are in
// milliseconds, rates in Hz.
type Spec struct {
	Kp              float64
	Pos             bool
	BaseRate        float64
	BufferSizeMS    float64
	SimulationSteps int
	NFbk            int
	NPred           int

	// FbkBufferSize and PredBufferSize are the window capacities. Zero
	// derives them as channels times buffer steps.
	FbkBufferSize  int
	PredBufferSize int

	TimeWaitMS  float64
	TimeTrialMS float64

	ResolutionMS    float64
	DeliveryHorizon int
	Seed            uint64
	DoubleDraw      bool
}

func defaults() Spec {
	return Spec{
		Kp:              1.0,
		Pos:             true,
		BaseRate:        0,
		BufferSizeMS:    100,
		SimulationSteps: 1000,
		NFbk:            400,
		NPred:           400,
		TimeWaitMS:      150,
		TimeTrialMS:     650,
		ResolutionMS:    float64(sim.DefaultResolution),
		DeliveryHorizon: 1024,
		Seed:            1,
	}
}

// DefaultSpec returns the parameters a neuron starts with.
func DefaultSpec() Spec {
	return defaults()
}

// derived holds the step counts computed from a Spec and a resolution.
type derived struct {
	bufferSteps int
	trialSteps  int64
	waitSteps   int64
}

func (s Spec) resolution() sim.Resolution {
	return sim.Resolution(s.ResolutionMS)
}

func (s Spec) derive() (derived, error) {
	res := s.resolution()

	bufferSteps, err := res.Steps(s.BufferSizeMS)
	if err != nil {
		return derived{}, fmt.Errorf("buffer_size: %w", err)
	}

	trialSteps, err := res.Steps(s.TimeTrialMS)
	if err != nil {
		return derived{}, fmt.Errorf("time_trial: %w", err)
	}

	waitSteps, err := res.Steps(s.TimeWaitMS)
	if err != nil {
		return derived{}, fmt.Errorf("time_wait: %w", err)
	}

	return derived{
		bufferSteps: int(bufferSteps),
		trialSteps:  trialSteps,
		waitSteps:   waitSteps,
	}, nil
}

// Validate reports the first parameter that cannot be used.
func (s Spec) Validate() error {
	return s.validate()
}

func (s Spec) validate() error {
	if math.IsNaN(s.Kp) || math.IsInf(s.Kp, 0) {
		return fmt.Errorf("%w: kp must be finite", ErrBadValue)
	}

	if math.IsNaN(s.BaseRate) || math.IsInf(s.BaseRate, 0) {
		return fmt.Errorf("%w: base_rate must be finite", ErrBadValue)
	}

	if s.SimulationSteps < 0 {
		return fmt.Errorf("%w: simulation_steps must not be negative", ErrBadValue)
	}

	if s.NFbk < 0 || s.NPred < 0 {
		return fmt.Errorf("%w: population sizes must not be negative", ErrBadValue)
	}

	if s.DeliveryHorizon < 1 {
		return fmt.Errorf("%w: delivery horizon must be at least 1 step", ErrBadValue)
	}

	if err := s.resolution().Validate(); err != nil {
		return err
	}

	d, err := s.derive()
	if err != nil {
		return err
	}

	if d.bufferSteps < 1 {
		return fmt.Errorf("%w: buffer_size must cover at least one step", ErrBadValue)
	}

	if d.trialSteps < 1 {
		return fmt.Errorf("%w: time_trial must cover at least one step", ErrBadValue)
	}

	if err := checkCapacity("fbk_bf_size", s.FbkBufferSize, s.NFbk*d.bufferSteps); err != nil {
		return err
	}

	return checkCapacity("pred_bf_size", s.PredBufferSize, s.NPred*d.bufferSteps)
}

func checkCapacity(field string, capacity, need int) error {
	if capacity < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrBadValue, field)
	}

	if capacity != 0 && capacity < need {
		return &SizeError{Field: field, Want: need, Got: capacity, AtLeast: true}
	}

	return nil
}

// Package stateneuron implements a neuron that estimates its input intensity
// from the sliding-window occupancy of two input populations and fires
// Poisson spikes at a rate derived from that estimate.
package stateneuron

import (
	"fmt"
	"log"

	"github.com/sarchlab/stateneuron/emission"
	"github.com/sarchlab/stateneuron/hooking"
	"github.com/sarchlab/stateneuron/pulse"
	"github.com/sarchlab/stateneuron/rate"
	"github.com/sarchlab/stateneuron/sim"
	"github.com/sarchlab/stateneuron/window"
)

// massToInput converts accumulated pulse mass into an input sample.
const massToInput = 0.001

// Population indices inside the window store.
const (
	fbkPopulation = iota
	predPopulation
)

// Hook positions raised by the neuron.
var (
	// HookPosStepDone fires after every processed step. Item is the step,
	// Detail the StepRecord.
	HookPosStepDone = &hooking.HookPos{Name: "StepDone"}

	// HookPosPulseEmitted fires for every emitted spike. Item is the
	// pulse.Spike.
	HookPosPulseEmitted = &hooking.HookPos{Name: "PulseEmitted"}

	// HookPosResolutionReset fires after a resolution change reset the
	// neuron. Item is the new resolution.
	HookPosResolutionReset = &hooking.HookPos{Name: "ResolutionReset"}
)

// StepRecord summarizes one processed step.
type StepRecord struct {
	Step       sim.VTimeInStep
	Tick       int64
	InRate     float64
	OutRate    float64
	Lambda     float64
	SpikeCount int64
	Fired      bool
}

// PulseSender receives the spikes the neuron emits.
type PulseSender = pulse.Sender

// Comp is a state neuron.
type Comp struct {
	*hooking.HookableBase

	name    string
	spec    Spec
	derived derived
	state   state

	router  *pulse.Router
	store   *window.Store
	emitter *emission.Emitter
	gate    emission.TrialGate
	sender  PulseSender

	mass     []float64
	arrivals []float64

	started  bool
	nextStep sim.VTimeInStep
}

// Name returns the name of the neuron.
func (c *Comp) Name() string {
	return c.name
}

// Spec returns the current parameters.
func (c *Comp) Spec() Spec {
	return c.spec
}

// Resolution returns the step duration the neuron is calibrated for.
func (c *Comp) Resolution() sim.Resolution {
	return c.spec.resolution()
}

// Router returns the router accumulating incoming pulses.
func (c *Comp) Router() *pulse.Router {
	return c.router
}

// SetSender sets where emitted spikes go. A nil sender only raises hooks.
func (c *Comp) SetSender(s PulseSender) {
	c.sender = s
}

// HasPort tells whether pulses can be delivered to a channel.
func (c *Comp) HasPort(port pulse.Port, channel int) bool {
	return c.router.HasPort(port, channel)
}

// Deliver accumulates an incoming pulse. The pulse offset is relative to the
// origin of the most recent Update.
func (c *Comp) Deliver(p pulse.Pulse) error {
	return c.router.Handle(p)
}

// Update processes the steps origin+from up to, but excluding, origin+to.
// Calls must continue where the previous call stopped. An empty range is a
// no-op and keeps the origin pulse offsets refer to.
func (c *Comp) Update(origin sim.VTimeInStep, from, to int64) error {
	if from > to || from < 0 {
		return fmt.Errorf("%w: lag range [%d, %d)", ErrStepOrder, from, to)
	}

	if from == to {
		return nil
	}

	if c.started && origin+sim.VTimeInStep(from) != c.nextStep {
		return fmt.Errorf("%w: expected step %d, got %d",
			ErrStepOrder, c.nextStep, origin+sim.VTimeInStep(from))
	}

	c.router.BeginSlice(int64(origin))

	for lag := from; lag < to; lag++ {
		if err := c.step(origin, lag); err != nil {
			return err
		}
	}

	return nil
}

func (c *Comp) step(origin sim.VTimeInStep, lag int64) error {
	step := origin + sim.VTimeInStep(lag)
	tick := int64(step) + 1

	c.sample(step)

	c.store.Record(c.state.CurrentFbkInput, c.state.CurrentPredInput)
	c.state.PositionCount = c.store.Position()

	fbk := window.Rescan(c.store.Grid(fbkPopulation), c.state.FbkCounts)
	pred := window.Rescan(c.store.Grid(predPopulation), c.state.PredCounts)
	c.state.MeanFbk, c.state.VarFbk, c.state.CVFbk = fbk.Mean, fbk.Variance, fbk.CV
	c.state.MeanPred, c.state.VarPred, c.state.CVPred = pred.Mean, pred.Variance, pred.CV

	fusion := rate.Fuse(fbk, pred, c.spec.BufferSizeMS)
	c.state.TotalCV = fusion.TotalCV
	c.state.InRate = fusion.InRate
	c.state.OutRate = rate.Gain{Kp: c.spec.Kp, BaseRate: c.spec.BaseRate}.
		OutRate(fusion.InRate)

	c.state.LambdaPoisson = emission.Lambda(c.state.OutRate, c.Resolution())
	c.state.SpikeCountOut = c.emitter.Draw(c.state.LambdaPoisson)
	c.state.Tick = tick

	c.started = true
	c.nextStep = step + 1

	fired := c.gate.Fire(tick, c.state.SpikeCountOut)
	if fired {
		if err := c.emit(sim.VTimeInStep(tick), lag); err != nil {
			return err
		}
	}

	if c.NumHooks() > 0 {
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosStepDone,
			Item:   step,
			Detail: StepRecord{
				Step:       step,
				Tick:       tick,
				InRate:     c.state.InRate,
				OutRate:    c.state.OutRate,
				Lambda:     c.state.LambdaPoisson,
				SpikeCount: c.state.SpikeCountOut,
				Fired:      fired,
			},
		})
	}

	return nil
}

// sample reads the pulse mass accumulated for the step into the current
// inputs and records which channels received pulses.
func (c *Comp) sample(step sim.VTimeInStep) {
	c.router.Drain(int64(step), c.mass, c.arrivals)

	table := c.router.Table()
	for i := range c.state.CurrentFbkInput {
		slot := table.SlotOf(pulse.PortFeedback, i)
		c.state.CurrentFbkInput[i] = massToInput * c.mass[slot]
		c.state.FbkReceived[i] = c.arrivals[slot]
	}

	for i := range c.state.CurrentPredInput {
		slot := table.SlotOf(pulse.PortPrediction, i)
		c.state.CurrentPredInput[i] = massToInput * c.mass[slot]
		c.state.PredReceived[i] = c.arrivals[slot]
	}
}

func (c *Comp) emit(tick sim.VTimeInStep, lag int64) error {
	c.state.LastSpikeStep = int64(tick)

	s := pulse.Spike{
		Source:       c.name,
		Step:         tick,
		Lag:          lag,
		TimeMS:       c.Resolution().MS(tick),
		Multiplicity: 1,
	}

	if c.NumHooks() > 0 {
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosPulseEmitted,
			Item:   s,
		})
	}

	if c.sender == nil {
		return nil
	}

	if err := c.sender.Send(s); err != nil {
		return fmt.Errorf("%s: sending spike at step %d: %w", c.name, tick, err)
	}

	return nil
}

// SetResolution recalibrates the neuron for a new step duration. A change
// resets every state variable and drops pending pulses; parameters are
// kept. Durations that are not whole numbers of the new step are rejected
// and leave the neuron untouched.
func (c *Comp) SetResolution(res sim.Resolution) error {
	if res == c.Resolution() {
		return nil
	}

	if err := c.CheckResolution(res); err != nil {
		return err
	}

	spec := c.spec
	spec.ResolutionMS = float64(res)

	log.Printf("warning: %s: resolution changed from %v ms to %v ms, "+
		"state reset to defaults", c.name, c.spec.ResolutionMS, float64(res))

	c.spec = spec
	c.reset()

	if c.NumHooks() > 0 {
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosResolutionReset,
			Item:   res,
		})
	}

	return nil
}

// CheckResolution reports whether SetResolution would accept res.
func (c *Comp) CheckResolution(res sim.Resolution) error {
	spec := c.spec
	spec.ResolutionMS = float64(res)

	if err := spec.validate(); err != nil {
		return fmt.Errorf("%s: resolution %v ms: %w", c.name, float64(res), err)
	}

	return nil
}

// MaxDelay returns the longest connection delay, in steps, whose pulses the
// neuron can hold. A pulse sent at lag l of an epoch of length n arrives
// with offset l+delay and must fall below n+horizon.
func (c *Comp) MaxDelay() int64 {
	return int64(c.router.Horizon())
}

// reset rebuilds every derived quantity from the spec and restores the
// default state.
func (c *Comp) reset() {
	d, err := c.spec.derive()
	if err != nil {
		log.Panicf("resetting with an invalid spec: %v", err)
	}

	c.derived = d
	c.state = newState(c.spec.NFbk, c.spec.NPred)
	c.store = window.NewStore(d.bufferSteps, c.spec.NFbk, c.spec.NPred)
	c.router.Reset()
	c.applyLayout()
	c.started = false
	c.nextStep = 0
}

// applyLayout updates the parts of the neuron that follow the spec without
// holding state of their own.
func (c *Comp) applyLayout() {
	if c.router.Horizon() != c.spec.DeliveryHorizon {
		c.router.SetHorizon(c.spec.DeliveryHorizon)
	}

	table := c.router.Table()
	if table.Size(pulse.PortFeedback) != c.spec.NFbk ||
		table.Size(pulse.PortPrediction) != c.spec.NPred {
		c.router.Rebuild(pulse.NewRouteTable(c.spec.NFbk, c.spec.NPred))
	}

	slots := c.router.Table().NumSlots()
	if len(c.mass) != slots {
		c.mass = make([]float64, slots)
		c.arrivals = make([]float64, slots)
	}

	c.gate = emission.TrialGate{
		TrialSteps: c.derived.trialSteps,
		WaitSteps:  c.derived.waitSteps,
	}
	c.emitter.SetDoubleDraw(c.spec.DoubleDraw)
}

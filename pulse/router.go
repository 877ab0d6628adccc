package pulse

import (
	"fmt"

	"github.com/sarchlab/stateneuron/hooking"
)

// HookPosPulseAccepted marks a pulse that has been accumulated. The hook
// item is the Pulse, the detail is the absolute delivery step.
var HookPosPulseAccepted = &hooking.HookPos{Name: "PulseAccepted"}

// A Router resolves arriving pulses to accumulator slots. It keeps two
// rings: one for pulse mass and one that marks arrivals regardless of sign.
type Router struct {
	*hooking.HookableBase

	table    *RouteTable
	horizon  int
	mass     *Ring
	arrivals *Ring

	origin int64
	floor  int64
}

// NewRouter creates a router over the table that can hold pulses due up to
// horizon steps ahead.
func NewRouter(table *RouteTable, horizon int) *Router {
	r := &Router{
		HookableBase: hooking.NewHookableBase(),
		horizon:      horizon,
	}
	r.Rebuild(table)

	return r
}

// Table returns the route table in use.
func (r *Router) Table() *RouteTable {
	return r.table
}

// Horizon returns how many steps ahead pulses may be delivered.
func (r *Router) Horizon() int {
	return r.horizon
}

// HasPort tells whether pulses can be delivered to the channel.
func (r *Router) HasPort(port Port, channel int) bool {
	return r.table.Has(port, channel)
}

// BeginSlice sets the origin that pulse offsets are relative to.
func (r *Router) BeginSlice(origin int64) {
	r.origin = origin
}

// SliceOrigin returns the origin that pulse offsets are relative to.
func (r *Router) SliceOrigin() int64 {
	return r.origin
}

// Handle accumulates a pulse.
func (r *Router) Handle(p Pulse) error {
	if p.Multiplicity < 1 {
		return fmt.Errorf("%w: %d", ErrBadMultiplicity, p.Multiplicity)
	}

	route, err := r.table.Lookup(p.Port, p.Channel)
	if err != nil {
		return err
	}

	step := r.origin + p.Offset
	if p.Offset < 0 || step < r.floor {
		return fmt.Errorf("%w: offset %d, step %d, next sampled step %d",
			ErrNegativeOffset, p.Offset, step, r.floor)
	}

	if step >= r.floor+int64(r.horizon) {
		return fmt.Errorf("%w: offset %d, horizon %d",
			ErrBeyondHorizon, p.Offset, r.horizon)
	}

	slot, weight := route.Resolve(p.Weight)
	r.mass.Add(step, slot, weight*float64(p.Multiplicity))
	r.arrivals.Add(step, slot, 1)

	if r.NumHooks() > 0 {
		r.InvokeHook(hooking.HookCtx{
			Domain: r,
			Pos:    HookPosPulseAccepted,
			Item:   p,
			Detail: step,
		})
	}

	return nil
}

// Drain moves the values accumulated for a step into mass and arrivals,
// each of which must hold Table().NumSlots() values. Pulses for this step
// or earlier are rejected afterwards.
func (r *Router) Drain(step int64, mass, arrivals []float64) {
	r.mass.TakeRow(step, mass)
	r.arrivals.TakeRow(step, arrivals)

	if step+1 > r.floor {
		r.floor = step + 1
	}
}

// Rebuild installs a new table. Pulses still pending are dropped.
func (r *Router) Rebuild(table *RouteTable) {
	r.table = table
	r.mass = NewRing(table.NumSlots(), r.horizon)
	r.arrivals = NewRing(table.NumSlots(), r.horizon)
}

// SetHorizon changes how many steps ahead pulses may be delivered. Pending
// pulses are dropped.
func (r *Router) SetHorizon(horizon int) {
	r.horizon = horizon
	r.Rebuild(r.table)
}

// Reset drops pending pulses and rewinds the slice origin and the read
// floor to step 0.
func (r *Router) Reset() {
	r.mass.Clear()
	r.arrivals.Clear()
	r.origin = 0
	r.floor = 0
}

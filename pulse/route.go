package pulse

import "fmt"

// Slot is an index into the accumulators.
type Slot int

// A Route maps a channel to its accumulator slots. Negative pulses go to the
// mirror slot when there is one.
type Route struct {
	Primary   Slot
	Mirror    Slot
	HasMirror bool
}

// Resolve returns the slot a pulse of the given weight lands in, together
// with the weight to accumulate. Negative weights are accumulated by
// magnitude, on the mirror slot if the route has one and on the primary slot
// otherwise.
func (r Route) Resolve(weight float64) (Slot, float64) {
	if weight >= 0 {
		return r.Primary, weight
	}

	if r.HasMirror {
		return r.Mirror, -weight
	}

	return r.Primary, -weight
}

// RouteTable is a dense lookup from (port, channel) to Route. Feedback
// channels occupy slots [0, N_fbk) and prediction channels the following
// N_pred slots.
type RouteTable struct {
	bases  [NumPorts]int
	sizes  [NumPorts]int
	routes []Route
}

// NewRouteTable creates a table for the given population sizes.
func NewRouteTable(nFbk, nPred int) *RouteTable {
	if nFbk < 0 || nPred < 0 {
		panic("population sizes must not be negative")
	}

	t := &RouteTable{}
	t.sizes[PortFeedback] = nFbk
	t.sizes[PortPrediction] = nPred
	t.bases[PortFeedback] = 0
	t.bases[PortPrediction] = nFbk

	t.routes = make([]Route, nFbk+nPred)
	for i := range t.routes {
		t.routes[i] = Route{Primary: Slot(i)}
	}

	return t
}

// NumSlots returns the number of accumulator slots the table addresses.
func (t *RouteTable) NumSlots() int {
	return len(t.routes)
}

// Size returns the number of channels of a population.
func (t *RouteTable) Size(port Port) int {
	if port < 0 || port >= NumPorts {
		return 0
	}

	return t.sizes[port]
}

// Has tells whether the channel exists.
func (t *RouteTable) Has(port Port, channel int) bool {
	return port >= 0 && port < NumPorts &&
		channel >= 0 && channel < t.sizes[port]
}

// Lookup returns the route of a channel.
func (t *RouteTable) Lookup(port Port, channel int) (Route, error) {
	if !t.Has(port, channel) {
		return Route{}, fmt.Errorf("%w: %s[%d]", ErrUnknownChannel, port, channel)
	}

	return t.routes[t.bases[port]+channel], nil
}

// SlotOf returns the primary slot of a channel. The channel must exist.
func (t *RouteTable) SlotOf(port Port, channel int) Slot {
	return Slot(t.bases[port] + channel)
}

// SetMirror makes negative pulses of a channel land in the mirror slot.
func (t *RouteTable) SetMirror(port Port, channel int, mirror Slot) error {
	if !t.Has(port, channel) {
		return fmt.Errorf("%w: %s[%d]", ErrUnknownChannel, port, channel)
	}

	if mirror < 0 || int(mirror) >= len(t.routes) {
		return fmt.Errorf("%w: mirror slot %d", ErrUnknownChannel, mirror)
	}

	r := &t.routes[t.bases[port]+channel]
	r.Mirror = mirror
	r.HasMirror = true

	return nil
}

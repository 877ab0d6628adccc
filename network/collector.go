package network

import (
	"github.com/sarchlab/stateneuron/hooking"
	"github.com/sarchlab/stateneuron/pulse"
	"github.com/sarchlab/stateneuron/sim"
)

// A SpikeCollector is a hook that keeps the steps of the spikes it sees.
// Attach it to the kernel to see every spike, or to a single node.
type SpikeCollector struct {
	sources map[string]bool
	spikes  map[string][]sim.VTimeInStep
	total   int
}

// NewSpikeCollector creates a collector. With no sources given it keeps
// spikes of every node.
func NewSpikeCollector(sources ...string) *SpikeCollector {
	c := &SpikeCollector{spikes: make(map[string][]sim.VTimeInStep)}

	if len(sources) > 0 {
		c.sources = make(map[string]bool)
		for _, s := range sources {
			c.sources[s] = true
		}
	}

	return c
}

// Func records the spike carried by the hook context, if any.
func (c *SpikeCollector) Func(ctx hooking.HookCtx) {
	s, ok := ctx.Item.(pulse.Spike)
	if !ok {
		return
	}

	if c.sources != nil && !c.sources[s.Source] {
		return
	}

	c.spikes[s.Source] = append(c.spikes[s.Source], s.Step)
	c.total++
}

// Spikes returns the steps at which a node spiked.
func (c *SpikeCollector) Spikes(source string) []sim.VTimeInStep {
	return c.spikes[source]
}

// Count returns how many spikes a node emitted.
func (c *SpikeCollector) Count(source string) int {
	return len(c.spikes[source])
}

// Total returns the number of spikes collected.
func (c *SpikeCollector) Total() int {
	return c.total
}

var _ hooking.Hook = (*SpikeCollector)(nil)

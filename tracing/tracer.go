// Package tracing writes the spikes emitted during a simulation to trace
// files.
package tracing

import "github.com/sarchlab/stateneuron/pulse"

// A SpikeTracer collects spikes.
type SpikeTracer interface {
	TraceSpike(s pulse.Spike)
}

// A SpikeFilter tells whether a spike should be traced.
type SpikeFilter func(s pulse.Spike) bool

// FromSources returns a filter accepting spikes of the named nodes.
func FromSources(names ...string) SpikeFilter {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}

	return func(s pulse.Spike) bool {
		return set[s.Source]
	}
}

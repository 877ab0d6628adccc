// Package window keeps the per-channel sliding-window history of the input
// populations and derives occupancy statistics from it.
package window

import "fmt"

// A Grid is the history of one population: Steps() rows of Channels()
// samples, stored flattened with index row*Channels()+channel.
type Grid struct {
	channels int
	steps    int
	samples  []float64
}

// NewGrid creates a zeroed grid.
func NewGrid(channels, steps int) *Grid {
	if channels < 0 || steps < 0 {
		panic("grid dimensions must not be negative")
	}

	return &Grid{
		channels: channels,
		steps:    steps,
		samples:  make([]float64, channels*steps),
	}
}

// Channels returns the number of channels.
func (g *Grid) Channels() int {
	return g.channels
}

// Steps returns the number of retained steps.
func (g *Grid) Steps() int {
	return g.steps
}

// Len returns Channels()*Steps().
func (g *Grid) Len() int {
	return len(g.samples)
}

// Write stores one sample per channel into a row.
func (g *Grid) Write(row int, samples []float64) {
	if len(samples) != g.channels {
		panic(fmt.Sprintf("writing %d samples into a grid of %d channels",
			len(samples), g.channels))
	}

	copy(g.samples[row*g.channels:(row+1)*g.channels], samples)
}

// At returns the sample of a channel in a row.
func (g *Grid) At(row, channel int) float64 {
	return g.samples[row*g.channels+channel]
}

// CountNonZero returns how many rows hold a non-zero sample for the channel.
func (g *Grid) CountNonZero(channel int) int {
	n := 0
	for idx := channel; idx < len(g.samples); idx += g.channels {
		if g.samples[idx] != 0 {
			n++
		}
	}

	return n
}

// Snapshot returns a copy of the flattened samples.
func (g *Grid) Snapshot() []float64 {
	out := make([]float64, len(g.samples))
	copy(out, g.samples)

	return out
}

// Load replaces the samples with a flattened copy of the same length.
func (g *Grid) Load(flat []float64) error {
	if len(flat) != len(g.samples) {
		return fmt.Errorf("window: loading %d samples into a grid of %d",
			len(flat), len(g.samples))
	}

	copy(g.samples, flat)

	return nil
}

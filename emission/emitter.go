// Package emission turns the output intensity of the state neuron into
// spikes: a Poisson draw per step, gated by a periodic trial schedule.
package emission

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sarchlab/stateneuron/sim"
)

// Lambda returns the Poisson parameter of one step for an output rate in Hz.
func Lambda(outRateHz float64, res sim.Resolution) float64 {
	return outRateHz * float64(res) * 1e-3
}

// An Emitter draws spike counts from an injected random source. The source
// is owned by the emitter; sharing it with another emitter couples their
// streams.
type Emitter struct {
	poisson    distuv.Poisson
	doubleDraw bool
}

// NewEmitter creates an emitter drawing from src.
func NewEmitter(src rand.Source) *Emitter {
	return &Emitter{poisson: distuv.Poisson{Src: src}}
}

// SetDoubleDraw makes every draw discard one extra sample first, so that the
// random stream advances the way the legacy model advanced it.
func (e *Emitter) SetDoubleDraw(on bool) {
	e.doubleDraw = on
}

// DoubleDraw tells whether the legacy double draw is on.
func (e *Emitter) DoubleDraw() bool {
	return e.doubleDraw
}

// SetSource replaces the random source.
func (e *Emitter) SetSource(src rand.Source) {
	e.poisson.Src = src
}

// Draw samples a spike count for the given Poisson parameter. A parameter
// that is not positive yields 0 without consuming randomness.
func (e *Emitter) Draw(lambda float64) int64 {
	if !(lambda > 0) {
		return 0
	}

	e.poisson.Lambda = lambda
	if e.doubleDraw {
		_ = e.poisson.Rand()
	}

	return int64(e.poisson.Rand())
}

// Package rate fuses the statistics of the two input populations into an
// input intensity and maps it to an output intensity.
package rate

import "github.com/sarchlab/stateneuron/window"

// msPerSecond converts a per-millisecond occupancy to Hz.
const msPerSecond = 1000.0

// Fusion is the result of fusing two populations.
type Fusion struct {
	TotalCV float64
	InRate  float64
}

// Fuse weights each population's mean occupancy by the other population's
// coefficient of variation and normalizes by the window duration:
//
//	in_rate = 1000 * (mean_pred*CV_fbk/total + mean_fbk*CV_pred/total) / window
//
// A zero total CV carries no signal and yields a zero input rate.
func Fuse(fbk, pred window.Stats, windowMS float64) Fusion {
	total := fbk.CV + pred.CV
	if !(total > 0) || !(windowMS > 0) {
		return Fusion{TotalCV: total}
	}

	weighted := pred.Mean*fbk.CV/total + fbk.Mean*pred.CV/total

	return Fusion{
		TotalCV: total,
		InRate:  msPerSecond * weighted / windowMS,
	}
}

// Gain is the affine output model out = BaseRate + Kp*in, in Hz.
type Gain struct {
	Kp       float64
	BaseRate float64
}

// OutRate maps an input rate to the output rate.
func (g Gain) OutRate(inRate float64) float64 {
	return g.BaseRate + g.Kp*inRate
}

package stateneuron

import "slices"

type state struct {
	CurrentFbkInput  []float64
	CurrentPredInput []float64
	FbkCounts        []float64
	PredCounts       []float64
	FbkReceived      []float64
	PredReceived     []float64

	PositionCount int
	Tick          int64
	LastSpikeStep int64

	InRate        float64
	OutRate       float64
	SpikeCountOut int64
	LambdaPoisson float64

	MeanFbk  float64
	MeanPred float64
	VarFbk   float64
	VarPred  float64
	CVFbk    float64
	CVPred   float64
	TotalCV  float64
}

func newState(nFbk, nPred int) state {
	s := state{LastSpikeStep: -1}
	s.resize(nFbk, nPred)

	return s
}

func (s state) clone() state {
	s.CurrentFbkInput = slices.Clone(s.CurrentFbkInput)
	s.CurrentPredInput = slices.Clone(s.CurrentPredInput)
	s.FbkCounts = slices.Clone(s.FbkCounts)
	s.PredCounts = slices.Clone(s.PredCounts)
	s.FbkReceived = slices.Clone(s.FbkReceived)
	s.PredReceived = slices.Clone(s.PredReceived)

	return s
}

// resize truncates or zero-pads the per-channel arrays.
func (s *state) resize(nFbk, nPred int) {
	s.CurrentFbkInput = resized(s.CurrentFbkInput, nFbk)
	s.FbkCounts = resized(s.FbkCounts, nFbk)
	s.FbkReceived = resized(s.FbkReceived, nFbk)
	s.CurrentPredInput = resized(s.CurrentPredInput, nPred)
	s.PredCounts = resized(s.PredCounts, nPred)
	s.PredReceived = resized(s.PredReceived, nPred)
}

func resized(v []float64, n int) []float64 {
	if len(v) == n && v != nil {
		return v
	}

	out := make([]float64, n)
	copy(out, v)

	return out
}

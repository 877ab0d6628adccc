package stateneuron

import (
	"fmt"
	"slices"
)

var scalarRecordables = map[string]func(s *state) float64{
	"in_rate":         func(s *state) float64 { return s.InRate },
	"out_rate":        func(s *state) float64 { return s.OutRate },
	"mean_fbk":        func(s *state) float64 { return s.MeanFbk },
	"mean_pred":       func(s *state) float64 { return s.MeanPred },
	"var_fbk":         func(s *state) float64 { return s.VarFbk },
	"var_pred":        func(s *state) float64 { return s.VarPred },
	"CV_fbk":          func(s *state) float64 { return s.CVFbk },
	"CV_pred":         func(s *state) float64 { return s.CVPred },
	"total_CV":        func(s *state) float64 { return s.TotalCV },
	"lambda_poisson":  func(s *state) float64 { return s.LambdaPoisson },
	"spike_count_out": func(s *state) float64 { return float64(s.SpikeCountOut) },
	"tick":            func(s *state) float64 { return float64(s.Tick) },
	"position_count":  func(s *state) float64 { return float64(s.PositionCount) },
}

var vectorRecordables = map[string]func(s *state) []float64{
	"fbk_counts":         func(s *state) []float64 { return s.FbkCounts },
	"pred_counts":        func(s *state) []float64 { return s.PredCounts },
	"current_fbk_input":  func(s *state) []float64 { return s.CurrentFbkInput },
	"current_pred_input": func(s *state) []float64 { return s.CurrentPredInput },
	"fbk_received":       func(s *state) []float64 { return s.FbkReceived },
	"pred_received":      func(s *state) []float64 { return s.PredReceived },
}

// RecordableNames returns the names of the scalar recordables in a stable
// order.
func (c *Comp) RecordableNames() []string {
	return sortedNames(scalarRecordables)
}

// VectorRecordableNames returns the names of the per-channel recordables
// in a stable order.
func (c *Comp) VectorRecordableNames() []string {
	return sortedNames(vectorRecordables)
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}

	slices.Sort(names)

	return names
}

// ReadRecordable returns the current value of a scalar recordable.
func (c *Comp) ReadRecordable(name string) (float64, error) {
	read, ok := scalarRecordables[name]
	if !ok {
		return 0, fmt.Errorf("%w: recordable %q", ErrUnknownKey, name)
	}

	return read(&c.state), nil
}

// ReadRecordableVector returns a copy of a per-channel recordable.
func (c *Comp) ReadRecordableVector(name string) ([]float64, error) {
	read, ok := vectorRecordables[name]
	if !ok {
		return nil, fmt.Errorf("%w: recordable %q", ErrUnknownKey, name)
	}

	return slices.Clone(read(&c.state)), nil
}

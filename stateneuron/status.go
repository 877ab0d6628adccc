package stateneuron

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/sarchlab/stateneuron/sim"
	"github.com/sarchlab/stateneuron/window"
)

// Parameter names accepted by SetStatus.
var paramNames = []string{
	"kp", "pos", "base_rate", "buffer_size", "simulation_steps",
	"N_fbk", "N_pred", "fbk_bf_size", "pred_bf_size",
	"time_wait", "time_trial",
}

// State names accepted by SetStatus.
var stateNames = []string{
	"in_rate", "out_rate", "spike_count_out",
	"current_fbk_input", "current_pred_input",
	"fbk_buffer", "pred_buffer", "fbk_counts", "pred_counts",
	"tick", "position_count",
	"mean_fbk", "mean_pred", "var_fbk", "var_pred",
	"CV_fbk", "CV_pred", "total_CV", "lambda_poisson",
}

// Derived names reported by GetStatus that cannot be written.
var readOnlyNames = []string{
	"buffer_steps", "trial_steps", "wait_steps", "resolution",
	"last_spike_time",
}

// ParameterNames returns the names of the writable parameters.
func ParameterNames() []string {
	return slices.Clone(paramNames)
}

// DerivedNames returns the names of the read-only derived quantities.
func DerivedNames() []string {
	return slices.Clone(readOnlyNames)
}

// StatusNames returns every name GetStatus reports.
func StatusNames() []string {
	names := slices.Concat(paramNames, stateNames, readOnlyNames)
	slices.Sort(names)

	return names
}

// GetStatus returns the parameters, the state and the derived quantities
// of the neuron. Vectors are copies.
func (c *Comp) GetStatus() map[string]any {
	s := c.state

	lastSpike := -1.0
	if s.LastSpikeStep >= 0 {
		lastSpike = c.Resolution().MS(sim.VTimeInStep(s.LastSpikeStep))
	}

	return map[string]any{
		"kp":               c.spec.Kp,
		"pos":              c.spec.Pos,
		"base_rate":        c.spec.BaseRate,
		"buffer_size":      c.spec.BufferSizeMS,
		"simulation_steps": c.spec.SimulationSteps,
		"N_fbk":            c.spec.NFbk,
		"N_pred":           c.spec.NPred,
		"fbk_bf_size":      c.spec.FbkBufferSize,
		"pred_bf_size":     c.spec.PredBufferSize,
		"time_wait":        c.spec.TimeWaitMS,
		"time_trial":       c.spec.TimeTrialMS,

		"in_rate":            s.InRate,
		"out_rate":           s.OutRate,
		"spike_count_out":    s.SpikeCountOut,
		"current_fbk_input":  slices.Clone(s.CurrentFbkInput),
		"current_pred_input": slices.Clone(s.CurrentPredInput),
		"fbk_buffer":         c.store.Grid(fbkPopulation).Snapshot(),
		"pred_buffer":        c.store.Grid(predPopulation).Snapshot(),
		"fbk_counts":         slices.Clone(s.FbkCounts),
		"pred_counts":        slices.Clone(s.PredCounts),
		"tick":               s.Tick,
		"position_count":     s.PositionCount,
		"mean_fbk":           s.MeanFbk,
		"mean_pred":          s.MeanPred,
		"var_fbk":            s.VarFbk,
		"var_pred":           s.VarPred,
		"CV_fbk":             s.CVFbk,
		"CV_pred":            s.CVPred,
		"total_CV":           s.TotalCV,
		"lambda_poisson":     s.LambdaPoisson,

		"buffer_steps":    c.derived.bufferSteps,
		"trial_steps":     c.derived.trialSteps,
		"wait_steps":      c.derived.waitSteps,
		"resolution":      c.spec.ResolutionMS,
		"last_spike_time": lastSpike,
	}
}

// staged is a status update that has not been committed yet.
type staged struct {
	spec    Spec
	derived derived
	state   state

	fbkWindow  []float64
	predWindow []float64
}

type paramSetter func(s *Spec, v any) error

type stateSetter func(st *staged, v any) error

var paramSetters = map[string]paramSetter{
	"kp":               floatParam(func(s *Spec) *float64 { return &s.Kp }),
	"base_rate":        floatParam(func(s *Spec) *float64 { return &s.BaseRate }),
	"buffer_size":      floatParam(func(s *Spec) *float64 { return &s.BufferSizeMS }),
	"time_wait":        floatParam(func(s *Spec) *float64 { return &s.TimeWaitMS }),
	"time_trial":       floatParam(func(s *Spec) *float64 { return &s.TimeTrialMS }),
	"simulation_steps": intParam(func(s *Spec) *int { return &s.SimulationSteps }),
	"N_fbk":            intParam(func(s *Spec) *int { return &s.NFbk }),
	"N_pred":           intParam(func(s *Spec) *int { return &s.NPred }),
	"fbk_bf_size":      intParam(func(s *Spec) *int { return &s.FbkBufferSize }),
	"pred_bf_size":     intParam(func(s *Spec) *int { return &s.PredBufferSize }),
	"pos": func(s *Spec, v any) error {
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: pos must be a bool, got %T", ErrBadValue, v)
		}

		s.Pos = b

		return nil
	},
}

var stateSetters = map[string]stateSetter{
	"in_rate":        floatState(func(s *state) *float64 { return &s.InRate }),
	"out_rate":       floatState(func(s *state) *float64 { return &s.OutRate }),
	"lambda_poisson": floatState(func(s *state) *float64 { return &s.LambdaPoisson }),
	"mean_fbk":       floatState(func(s *state) *float64 { return &s.MeanFbk }),
	"mean_pred":      floatState(func(s *state) *float64 { return &s.MeanPred }),
	"var_fbk":        floatState(func(s *state) *float64 { return &s.VarFbk }),
	"var_pred":       floatState(func(s *state) *float64 { return &s.VarPred }),
	"CV_fbk":         floatState(func(s *state) *float64 { return &s.CVFbk }),
	"CV_pred":        floatState(func(s *state) *float64 { return &s.CVPred }),
	"total_CV":       floatState(func(s *state) *float64 { return &s.TotalCV }),

	"spike_count_out": int64State(func(s *state) *int64 { return &s.SpikeCountOut }),
	"tick":            int64State(func(s *state) *int64 { return &s.Tick }),

	"current_fbk_input":  vectorState(func(s *state) *[]float64 { return &s.CurrentFbkInput }),
	"current_pred_input": vectorState(func(s *state) *[]float64 { return &s.CurrentPredInput }),
	"fbk_counts":         vectorState(func(s *state) *[]float64 { return &s.FbkCounts }),
	"pred_counts":        vectorState(func(s *state) *[]float64 { return &s.PredCounts }),

	"fbk_buffer": func(st *staged, v any) error {
		w, err := toFloats("fbk_buffer", v)
		if err != nil {
			return err
		}

		if want := st.spec.NFbk * st.derived.bufferSteps; len(w) != want {
			return &SizeError{Field: "fbk_buffer", Want: want, Got: len(w)}
		}

		st.fbkWindow = w

		return nil
	},
	"pred_buffer": func(st *staged, v any) error {
		w, err := toFloats("pred_buffer", v)
		if err != nil {
			return err
		}

		if want := st.spec.NPred * st.derived.bufferSteps; len(w) != want {
			return &SizeError{Field: "pred_buffer", Want: want, Got: len(w)}
		}

		st.predWindow = w

		return nil
	},
	"position_count": func(st *staged, v any) error {
		n, err := toInt("position_count", v)
		if err != nil {
			return err
		}

		if n < 0 || n >= st.derived.bufferSteps {
			return fmt.Errorf("%w: position_count %d outside [0, %d)",
				ErrBadValue, n, st.derived.bufferSteps)
		}

		st.state.PositionCount = n

		return nil
	},
}

// SetStatus updates parameters and state from a key-value map. The update
// is validated as a whole before anything is committed: on error the
// neuron is left untouched. Changing a population size resizes its channel
// arrays, truncating or zero-padding them; changing a population size or
// the window length clears the window and rewinds the cursor. Vectors given
// in the same call must match the new sizes.
func (c *Comp) SetStatus(values map[string]any) error {
	keys := slices.Sorted(maps.Keys(values))

	for _, k := range keys {
		if slices.Contains(readOnlyNames, k) {
			return fmt.Errorf("%w: %s is read-only", ErrBadValue, k)
		}

		_, isParam := paramSetters[k]
		_, isState := stateSetters[k]
		if !isParam && !isState {
			return fmt.Errorf("%w: %q", ErrUnknownKey, k)
		}
	}

	st, err := c.stage(keys, values)
	if err != nil {
		return err
	}

	c.commit(st)

	return nil
}

func (c *Comp) stage(keys []string, values map[string]any) (*staged, error) {
	st := &staged{spec: c.spec}

	for _, k := range keys {
		if set, ok := paramSetters[k]; ok {
			if err := set(&st.spec, values[k]); err != nil {
				return nil, err
			}
		}
	}

	if err := st.spec.validate(); err != nil {
		return nil, err
	}

	d, err := st.spec.derive()
	if err != nil {
		return nil, err
	}

	st.derived = d
	st.state = c.state.clone()
	st.state.resize(st.spec.NFbk, st.spec.NPred)

	if c.relayout(st) {
		st.state.PositionCount = 0
	}

	for _, k := range keys {
		if set, ok := stateSetters[k]; ok {
			if err := set(st, values[k]); err != nil {
				return nil, err
			}
		}
	}

	return st, nil
}

func (c *Comp) relayout(st *staged) bool {
	return st.spec.NFbk != c.spec.NFbk ||
		st.spec.NPred != c.spec.NPred ||
		st.derived.bufferSteps != c.derived.bufferSteps
}

func (c *Comp) commit(st *staged) {
	relayout := c.relayout(st)

	c.spec = st.spec
	c.derived = st.derived
	c.state = st.state

	if relayout {
		c.store = window.NewStore(c.derived.bufferSteps, c.spec.NFbk, c.spec.NPred)
	}

	mustLoad(c.store.Grid(fbkPopulation).Load, st.fbkWindow)
	mustLoad(c.store.Grid(predPopulation).Load, st.predWindow)

	if err := c.store.SetPosition(c.state.PositionCount); err != nil {
		panic(err)
	}

	c.applyLayout()
}

func mustLoad(load func([]float64) error, w []float64) {
	if w == nil {
		return
	}

	if err := load(w); err != nil {
		panic(err)
	}
}

func floatParam(field func(*Spec) *float64) paramSetter {
	return func(s *Spec, v any) error {
		f, err := toFloat("parameter", v)
		if err != nil {
			return err
		}

		*field(s) = f

		return nil
	}
}

func intParam(field func(*Spec) *int) paramSetter {
	return func(s *Spec, v any) error {
		n, err := toInt("parameter", v)
		if err != nil {
			return err
		}

		*field(s) = n

		return nil
	}
}

func floatState(field func(*state) *float64) stateSetter {
	return func(st *staged, v any) error {
		f, err := toFloat("state", v)
		if err != nil {
			return err
		}

		*field(&st.state) = f

		return nil
	}
}

func int64State(field func(*state) *int64) stateSetter {
	return func(st *staged, v any) error {
		n, err := toInt("state", v)
		if err != nil {
			return err
		}

		*field(&st.state) = int64(n)

		return nil
	}
}

// vectorState sets a per-channel array. Its length must equal the length
// the array has after resizing.
func vectorState(field func(*state) *[]float64) stateSetter {
	return func(st *staged, v any) error {
		dst := field(&st.state)

		w, err := toFloats("vector", v)
		if err != nil {
			return err
		}

		if len(w) != len(*dst) {
			return &SizeError{Field: vectorName(st, dst), Want: len(*dst), Got: len(w)}
		}

		*dst = w

		return nil
	}
}

func vectorName(st *staged, dst *[]float64) string {
	switch dst {
	case &st.state.CurrentFbkInput:
		return "current_fbk_input"
	case &st.state.CurrentPredInput:
		return "current_pred_input"
	case &st.state.FbkCounts:
		return "fbk_counts"
	case &st.state.PredCounts:
		return "pred_counts"
	default:
		return "vector"
	}
}

func toFloat(what string, v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number, got %T", ErrBadValue, what, v)
	}
}

func toInt(what string, v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %s %d overflows", ErrBadValue, what, x)
		}

		return int(x), nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("%w: %s must be an integer, got %v", ErrBadValue, what, x)
		}

		if x >= math.MaxInt || x < math.MinInt {
			return 0, fmt.Errorf("%w: %s %v overflows", ErrBadValue, what, x)
		}

		return int(x), nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer, got %T", ErrBadValue, what, v)
	}
}

func toFloats(what string, v any) ([]float64, error) {
	switch x := v.(type) {
	case []float64:
		return slices.Clone(x), nil
	case []int:
		out := make([]float64, len(x))
		for i, n := range x {
			out[i] = float64(n)
		}

		return out, nil
	case []any:
		out := make([]float64, len(x))
		for i, e := range x {
			f, err := toFloat(what, e)
			if err != nil {
				return nil, err
			}

			out[i] = f
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a list of numbers, got %T",
			ErrBadValue, what, v)
	}
}

package datarecording

import (
	"fmt"

	"github.com/sarchlab/stateneuron/hooking"
	"github.com/sarchlab/stateneuron/pulse"
	"github.com/sarchlab/stateneuron/sim"
)

// Table names used by the Multimeter.
const (
	RecordableTable = "recordables"
	SpikeTable      = "spikes"
)

// RecordableRow is one sampled value of a recordable.
type RecordableRow struct {
	Node   string
	Step   int64
	TimeMS float64
	Name   string
	Value  float64
}

// SpikeRow is one emitted spike.
type SpikeRow struct {
	Node         string
	Step         int64
	TimeMS       float64
	Multiplicity int
}

// A Recordable exposes named scalar quantities that can be sampled.
type Recordable interface {
	Name() string
	Resolution() sim.Resolution
	ReadRecordable(name string) (float64, error)
}

// A Multimeter is a hook that samples recordables into a DataRecorder when
// stepPos is raised, and stores every spike it sees. The domain raising
// stepPos must be a Recordable and pass the step as the hook item.
type Multimeter struct {
	recorder DataRecorder
	stepPos  *hooking.HookPos
	names    []string
	interval int64
}

// NewMultimeter creates a multimeter sampling the named recordables every
// step. It creates its tables in the recorder.
func NewMultimeter(
	recorder DataRecorder,
	stepPos *hooking.HookPos,
	names ...string,
) *Multimeter {
	recorder.CreateTable(RecordableTable, RecordableRow{})
	recorder.CreateTable(SpikeTable, SpikeRow{})

	return &Multimeter{
		recorder: recorder,
		stepPos:  stepPos,
		names:    names,
		interval: 1,
	}
}

// WithInterval makes the multimeter sample every interval steps.
func (m *Multimeter) WithInterval(interval int64) *Multimeter {
	if interval < 1 {
		panic("sampling interval must be at least 1 step")
	}

	m.interval = interval

	return m
}

// Func handles a hook invocation.
func (m *Multimeter) Func(ctx hooking.HookCtx) {
	if s, ok := ctx.Item.(pulse.Spike); ok {
		m.recorder.InsertData(SpikeTable, SpikeRow{
			Node:         s.Source,
			Step:         int64(s.Step),
			TimeMS:       s.TimeMS,
			Multiplicity: s.Multiplicity,
		})

		return
	}

	if ctx.Pos != m.stepPos {
		return
	}

	step, ok := ctx.Item.(sim.VTimeInStep)
	if !ok || int64(step)%m.interval != 0 {
		return
	}

	node, ok := ctx.Domain.(Recordable)
	if !ok {
		panic(fmt.Sprintf("multimeter attached to %T, which has no recordables",
			ctx.Domain))
	}

	timeMS := node.Resolution().MS(step)
	for _, name := range m.names {
		v, err := node.ReadRecordable(name)
		if err != nil {
			panic(err)
		}

		m.recorder.InsertData(RecordableTable, RecordableRow{
			Node:   node.Name(),
			Step:   int64(step),
			TimeMS: timeMS,
			Name:   name,
			Value:  v,
		})
	}
}

var _ hooking.Hook = (*Multimeter)(nil)

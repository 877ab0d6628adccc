package tracing

import (
	"encoding/json"
	"io"

	"github.com/sarchlab/stateneuron/pulse"
)

// JSONTracer writes spikes as a JSON array.
type JSONTracer struct {
	w          io.Writer
	firstSpike bool
	finished   bool
}

type jsonSpike struct {
	Source       string  `json:"source"`
	Step         int64   `json:"step"`
	TimeMS       float64 `json:"time_ms"`
	Multiplicity int     `json:"multiplicity"`
}

// NewJSONTracer creates a tracer writing to w and opens the array.
func NewJSONTracer(w io.Writer) *JSONTracer {
	_, err := w.Write([]byte("[\n"))
	if err != nil {
		panic(err)
	}

	return &JSONTracer{w: w, firstSpike: true}
}

// TraceSpike writes a spike.
func (t *JSONTracer) TraceSpike(s pulse.Spike) {
	if t.firstSpike {
		t.firstSpike = false
	} else {
		_, err := t.w.Write([]byte(",\n"))
		if err != nil {
			panic(err)
		}
	}

	b, err := json.Marshal(jsonSpike{
		Source:       s.Source,
		Step:         int64(s.Step),
		TimeMS:       s.TimeMS,
		Multiplicity: s.Multiplicity,
	})
	if err != nil {
		panic(err)
	}

	_, err = t.w.Write(b)
	if err != nil {
		panic(err)
	}
}

// Finish closes the array. Spikes traced afterwards are not valid JSON.
func (t *JSONTracer) Finish() {
	if t.finished {
		return
	}

	t.finished = true

	_, err := t.w.Write([]byte("\n]"))
	if err != nil {
		panic(err)
	}
}

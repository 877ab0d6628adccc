package tracing

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/stateneuron/pulse"
)

// CSVSpikeWriter is a spike tracer that stores the spikes into a CSV file.
type CSVSpikeWriter struct {
	path string
	file *os.File

	spikes     []pulse.Spike
	bufferSize int
}

// NewCSVSpikeWriter creates a new CSVSpikeWriter. An empty path picks a
// unique name.
func NewCSVSpikeWriter(path string) *CSVSpikeWriter {
	return &CSVSpikeWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Path returns the name of the trace file.
func (t *CSVSpikeWriter) Path() string {
	return t.path
}

// Init creates the trace file. The file must not exist yet.
func (t *CSVSpikeWriter) Init() {
	if t.path == "" {
		t.path = "stateneuron_trace_" + xid.New().String()
	}

	if !strings.HasSuffix(t.path, ".csv") {
		t.path += ".csv"
	}

	_, err := os.Stat(t.path)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", t.path))
	}

	file, err := os.Create(t.path)
	if err != nil {
		panic(err)
	}
	t.file = file

	fmt.Fprintf(file, "Source, Step, TimeMS, Multiplicity\n")

	atexit.Register(func() {
		if err := t.Close(); err != nil {
			panic(err)
		}
	})
}

// TraceSpike buffers a spike.
func (t *CSVSpikeWriter) TraceSpike(s pulse.Spike) {
	t.spikes = append(t.spikes, s)
	if len(t.spikes) >= t.bufferSize {
		t.Flush()
	}
}

// Flush writes the buffered spikes to the file.
func (t *CSVSpikeWriter) Flush() {
	for _, s := range t.spikes {
		fmt.Fprintf(t.file, "%s, %d, %.4f, %d\n",
			s.Source,
			s.Step,
			s.TimeMS,
			s.Multiplicity,
		)
	}

	t.spikes = nil
}

// Close flushes and closes the file.
func (t *CSVSpikeWriter) Close() error {
	if t.file == nil {
		return nil
	}

	t.Flush()

	err := t.file.Close()
	t.file = nil

	return err
}

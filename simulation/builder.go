package simulation

import (
	"strings"

	"github.com/rs/xid"

	"github.com/sarchlab/stateneuron/datarecording"
	"github.com/sarchlab/stateneuron/hooking"
	"github.com/sarchlab/stateneuron/monitoring"
	"github.com/sarchlab/stateneuron/network"
	"github.com/sarchlab/stateneuron/sim"
)

// Builder can be used to build a simulation.
type Builder struct {
	resolution     sim.Resolution
	monitorOn      bool
	monitorPort    int
	recordOn       bool
	outputFileName string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		resolution: sim.DefaultResolution,
		monitorOn:  true,
		recordOn:   true,
	}
}

// WithResolution sets the step duration in milliseconds.
func (b Builder) WithResolution(res sim.Resolution) Builder {
	b.resolution = res
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithoutDataRecording sets the simulation to not create a database.
func (b Builder) WithoutDataRecording() Builder {
	b.recordOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordOn && b.outputFileName != "" {
		panic("output file cannot be set when data recording is disabled")
	}

	if err := b.resolution.Validate(); err != nil {
		panic(err)
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		compNameIndex: make(map[string]int),
	}

	s.id = xid.New().String()

	engine := sim.NewSerialEngine()
	s.engine = engine
	s.kernel = network.NewKernel(engine, b.resolution)

	if b.recordOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "stateneuron_sim_" + s.id
		}

		if !strings.HasSuffix(outputPath, ".sqlite3") {
			outputPath += ".sqlite3"
		}

		s.outputPath = outputPath
		s.dataRecorder = datarecording.NewDataRecorder(outputPath)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterEngine(s.engine)
		s.kernel.AcceptHook(hooking.HookFunc(s.trackProgress))
		s.monitorURL = s.monitor.StartServer()
	}

	return s
}

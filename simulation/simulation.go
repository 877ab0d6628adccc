// Package simulation assembles the engine, the network kernel and the
// optional recorder and monitor of a run.
package simulation

import (
	"github.com/sarchlab/stateneuron/datarecording"
	"github.com/sarchlab/stateneuron/hooking"
	"github.com/sarchlab/stateneuron/monitoring"
	"github.com/sarchlab/stateneuron/network"
	"github.com/sarchlab/stateneuron/sim"
)

// A Simulation provides the services required to define and run a network
// of nodes.
type Simulation struct {
	id     string
	engine sim.Engine
	kernel *network.Kernel

	dataRecorder datarecording.DataRecorder
	outputPath   string
	monitor      *monitoring.Monitor
	monitorURL   string
	progress     *monitoring.ProgressBar

	components    []network.Node
	compNameIndex map[string]int
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// Kernel returns the kernel that owns the nodes.
func (s *Simulation) Kernel() *network.Kernel {
	return s.kernel
}

// Resolution returns the step duration.
func (s *Simulation) Resolution() sim.Resolution {
	return s.kernel.Resolution()
}

// GetDataRecorder returns the data recorder, or nil when recording is off.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// OutputPath returns the database file name, or "" when recording is off.
func (s *Simulation) OutputPath() string {
	return s.outputPath
}

// GetMonitor returns the monitor, or nil when monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitor web page.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// RegisterComponent adds a node to the kernel and the monitor. Names must be
// unique.
func (s *Simulation) RegisterComponent(c network.Node) {
	compName := c.Name()
	if _, found := s.compNameIndex[compName]; found {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1

	s.kernel.AddNode(c)

	if s.monitor != nil {
		s.monitor.RegisterComponent(c)
	}
}

// Components returns the registered components in registration order.
func (s *Simulation) Components() []network.Node {
	return s.components
}

// GetComponentByName returns the component with the given name, or nil.
func (s *Simulation) GetComponentByName(name string) network.Node {
	i, found := s.compNameIndex[name]
	if !found {
		return nil
	}

	return s.components[i]
}

// Connect wires two registered components.
func (s *Simulation) Connect(c network.Connection) error {
	return s.kernel.Connect(c)
}

// Run advances the simulation by the given number of steps. With a monitor,
// the progress is shown on its web page.
func (s *Simulation) Run(steps int64) error {
	if s.monitor == nil || steps <= 0 {
		return s.kernel.Simulate(steps)
	}

	s.progress = s.monitor.CreateProgressBar("Steps", uint64(steps))
	defer func() {
		s.monitor.CompleteProgressBar(s.progress)
		s.progress = nil
	}()

	return s.kernel.Simulate(steps)
}

func (s *Simulation) trackProgress(ctx hooking.HookCtx) {
	if ctx.Pos != network.HookPosEpochDone || s.progress == nil {
		return
	}

	s.progress.IncrementFinished(uint64(ctx.Detail.(int64)))
}

// Terminate flushes and closes the recorder.
func (s *Simulation) Terminate() {
	if s.dataRecorder != nil {
		if err := s.dataRecorder.Close(); err != nil {
			panic(err)
		}
	}
}

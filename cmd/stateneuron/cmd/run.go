package cmd

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/stateneuron/datarecording"
	"github.com/sarchlab/stateneuron/network"
	"github.com/sarchlab/stateneuron/pulse"
	"github.com/sarchlab/stateneuron/sim"
	"github.com/sarchlab/stateneuron/simulation"
	"github.com/sarchlab/stateneuron/stateneuron"
	"github.com/sarchlab/stateneuron/tracing"
)

const neuronName = "neuron"

// runConfig collects the flags of the run command.
type runConfig struct {
	steps      int64
	resolution float64

	nFbk     int
	nPred    int
	fbkRate  float64
	predRate float64
	weight   float64
	delay    int64

	kp         float64
	baseRate   float64
	bufferSize float64
	timeWait   float64
	timeTrial  float64
	seed       uint64
	doubleDraw bool

	record         bool
	output         string
	recordInterval int64
	trace          string
	monitor        bool
	monitorPort    int
	openBrowser    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a state neuron fed by two Poisson populations.",
	Long: `run connects one Poisson generator per channel of the feedback ` +
		`and the prediction population to a state neuron, simulates the ` +
		`given number of steps and prints a summary.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := readRunConfig(cmd)
		if err != nil {
			return err
		}

		return runSimulation(cfg, cmd.OutOrStdout())
	},
}

func init() {
	spec := stateneuron.DefaultSpec()
	f := runCmd.Flags()

	f.Int64("steps", int64(spec.SimulationSteps), "Number of steps to simulate")
	f.Float64("resolution", spec.ResolutionMS, "Step duration in ms")
	f.Int("n-fbk", 10, "Number of feedback channels")
	f.Int("n-pred", 10, "Number of prediction channels")
	f.Float64("fbk-rate", 20, "Firing rate of each feedback generator in Hz")
	f.Float64("pred-rate", 20, "Firing rate of each prediction generator in Hz")
	f.Float64("weight", 1, "Weight of the input connections")
	f.Int64("delay", 10, "Delay of the input connections in steps")
	f.Float64("kp", spec.Kp, "Gain from input rate to output rate")
	f.Float64("base-rate", spec.BaseRate, "Output rate offset in Hz")
	f.Float64("buffer-size", spec.BufferSizeMS, "Window length in ms")
	f.Float64("time-wait", spec.TimeWaitMS, "Silent part of each trial in ms")
	f.Float64("time-trial", spec.TimeTrialMS, "Trial length in ms")
	f.Uint64("seed", spec.Seed, "Seed of the random sources")
	f.Bool("double-draw", spec.DoubleDraw, "Discard one Poisson sample per step")
	f.Bool("record", false, "Record recordables and spikes into SQLite")
	f.String("output", "", "Database file name, implies --record")
	f.Int64("record-interval", 1, "Sample recordables every this many steps")
	f.String("trace", "", "Write the neuron's spikes to a .csv or .json file")
	f.Bool("monitor", false, "Serve the monitoring web page")
	f.Int("monitor-port", 0, "Port of the monitoring server")
	f.Bool("open-browser", false, "Open the monitoring page, implies --monitor")

	rootCmd.AddCommand(runCmd)
}

func readRunConfig(cmd *cobra.Command) (runConfig, error) {
	f := cmd.Flags()
	cfg := runConfig{}

	var errs []error
	get := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	cfg.steps, err = f.GetInt64("steps")
	get(err)
	cfg.resolution, err = f.GetFloat64("resolution")
	get(err)
	cfg.nFbk, err = f.GetInt("n-fbk")
	get(err)
	cfg.nPred, err = f.GetInt("n-pred")
	get(err)
	cfg.fbkRate, err = f.GetFloat64("fbk-rate")
	get(err)
	cfg.predRate, err = f.GetFloat64("pred-rate")
	get(err)
	cfg.weight, err = f.GetFloat64("weight")
	get(err)
	cfg.delay, err = f.GetInt64("delay")
	get(err)
	cfg.kp, err = f.GetFloat64("kp")
	get(err)
	cfg.baseRate, err = f.GetFloat64("base-rate")
	get(err)
	cfg.bufferSize, err = f.GetFloat64("buffer-size")
	get(err)
	cfg.timeWait, err = f.GetFloat64("time-wait")
	get(err)
	cfg.timeTrial, err = f.GetFloat64("time-trial")
	get(err)
	cfg.seed, err = f.GetUint64("seed")
	get(err)
	cfg.doubleDraw, err = f.GetBool("double-draw")
	get(err)
	cfg.record, err = f.GetBool("record")
	get(err)
	cfg.output, err = f.GetString("output")
	get(err)
	cfg.recordInterval, err = f.GetInt64("record-interval")
	get(err)
	cfg.trace, err = f.GetString("trace")
	get(err)
	cfg.monitor, err = f.GetBool("monitor")
	get(err)
	cfg.monitorPort, err = f.GetInt("monitor-port")
	get(err)
	cfg.openBrowser, err = f.GetBool("open-browser")
	get(err)

	if len(errs) > 0 {
		return cfg, errs[0]
	}

	if cfg.output != "" {
		cfg.record = true
	}

	if cfg.openBrowser || cfg.monitorPort != 0 {
		cfg.monitor = true
	}

	if cfg.nFbk < 0 || cfg.nPred < 0 {
		return cfg, fmt.Errorf("population sizes must not be negative")
	}

	return cfg, nil
}

func (cfg runConfig) spec() stateneuron.Spec {
	spec := stateneuron.DefaultSpec()
	spec.Kp = cfg.kp
	spec.BaseRate = cfg.baseRate
	spec.BufferSizeMS = cfg.bufferSize
	spec.SimulationSteps = int(cfg.steps)
	spec.NFbk = cfg.nFbk
	spec.NPred = cfg.nPred
	spec.TimeWaitMS = cfg.timeWait
	spec.TimeTrialMS = cfg.timeTrial
	spec.Seed = cfg.seed
	spec.DoubleDraw = cfg.doubleDraw

	return spec
}

func (cfg runConfig) buildSimulation() *simulation.Simulation {
	b := simulation.MakeBuilder().
		WithResolution(sim.Resolution(cfg.resolution))

	if !cfg.monitor {
		b = b.WithoutMonitoring()
	} else if cfg.monitorPort != 0 {
		b = b.WithMonitorPort(cfg.monitorPort)
	}

	if !cfg.record {
		b = b.WithoutDataRecording()
	} else if cfg.output != "" {
		b = b.WithOutputFileName(cfg.output)
	}

	return b.Build()
}

// addPopulation creates one generator per channel and connects it to the
// neuron.
func addPopulation(
	s *simulation.Simulation,
	cfg runConfig,
	port pulse.Port,
	n int,
	rateHz float64,
	stream uint64,
) error {
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s_gen[%d]", port, i)
		src := rand.NewPCG(cfg.seed, stream+uint64(i))
		g := network.NewPoissonGenerator(name, rateHz, s.Resolution(), src)
		s.RegisterComponent(g)

		err := s.Connect(network.Connection{
			Source:  name,
			Target:  neuronName,
			Port:    port,
			Channel: i,
			Weight:  cfg.weight,
			Delay:   cfg.delay,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func runSimulation(cfg runConfig, out io.Writer) (err error) {
	spec := cfg.spec()
	spec.ResolutionMS = cfg.resolution
	if err := spec.Validate(); err != nil {
		return err
	}

	s := cfg.buildSimulation()
	defer s.Terminate()

	neuron := stateneuron.MakeBuilder().
		WithSimulation(s).
		WithSpec(spec).
		Build(neuronName)

	if err := addPopulation(s, cfg, pulse.PortFeedback, cfg.nFbk,
		cfg.fbkRate, 1<<32); err != nil {
		return err
	}

	if err := addPopulation(s, cfg, pulse.PortPrediction, cfg.nPred,
		cfg.predRate, 2<<32); err != nil {
		return err
	}

	collector := network.NewSpikeCollector(neuronName)
	neuron.AcceptHook(collector)

	if cfg.record {
		mm := datarecording.NewMultimeter(s.GetDataRecorder(),
			stateneuron.HookPosStepDone, neuron.RecordableNames()...).
			WithInterval(cfg.recordInterval)
		neuron.AcceptHook(mm)
	}

	if cfg.trace != "" {
		finish, err := attachTracer(neuron, cfg.trace)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := finish(); err == nil {
				err = cerr
			}
		}()
	}

	if cfg.openBrowser {
		if err := browser.OpenURL(s.MonitorURL()); err != nil {
			fmt.Fprintf(os.Stderr, "cannot open browser: %v\n", err)
		}
	}

	if err := s.Run(cfg.steps); err != nil {
		return err
	}

	return printSummary(out, s, neuron, collector)
}

func attachTracer(neuron *stateneuron.Comp, path string) (func() error, error) {
	if strings.HasSuffix(path, ".json") {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}

		t := tracing.NewJSONTracer(f)
		tracing.CollectTrace(neuron, t, nil)

		return func() error {
			t.Finish()
			return f.Close()
		}, nil
	}

	w := tracing.NewCSVSpikeWriter(path)
	w.Init()
	tracing.CollectTrace(neuron, w, nil)

	return w.Close, nil
}

func printSummary(
	out io.Writer,
	s *simulation.Simulation,
	neuron *stateneuron.Comp,
	collector *network.SpikeCollector,
) error {
	inRate, err := neuron.ReadRecordable("in_rate")
	if err != nil {
		return err
	}

	outRate, err := neuron.ReadRecordable("out_rate")
	if err != nil {
		return err
	}

	durationMS := s.Resolution().MS(s.Kernel().Now())

	fmt.Fprintf(out, "simulated %d steps (%.1f ms)\n", s.Kernel().Now(), durationMS)
	fmt.Fprintf(out, "spikes:   %d\n", collector.Count(neuronName))
	fmt.Fprintf(out, "in_rate:  %.4f Hz\n", inRate)
	fmt.Fprintf(out, "out_rate: %.4f Hz\n", outRate)

	if s.OutputPath() != "" {
		fmt.Fprintf(out, "recorded: %s\n", s.OutputPath())
	}

	return nil
}

var (
	_ network.ResolutionAware = (*stateneuron.Comp)(nil)
	_ network.DelayLimited    = (*stateneuron.Comp)(nil)
)

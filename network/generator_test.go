package network

import (
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/stateneuron/hooking"
	"github.com/sarchlab/stateneuron/pulse"
	"github.com/sarchlab/stateneuron/sim"
)

type spikeSink struct {
	spikes []pulse.Spike
}

func (s *spikeSink) Send(spike pulse.Spike) error {
	s.spikes = append(s.spikes, spike)
	return nil
}

var _ = Describe("PoissonGenerator", func() {
	var (
		sink *spikeSink
		g    *PoissonGenerator
	)

	BeforeEach(func() {
		sink = &spikeSink{}
		g = NewPoissonGenerator("gen", 0, 0.1, rand.NewPCG(1, 2))
		g.SetSender(sink)
	})

	It("should not fire at rate zero", func() {
		Expect(g.Update(0, 0, 100)).To(Succeed())
		Expect(sink.spikes).To(BeEmpty())
	})

	It("should clamp negative rates", func() {
		g.SetRate(-5)
		Expect(g.Rate()).To(Equal(0.0))
	})

	It("should send one spike per busy step", func() {
		g.SetRate(1e6)

		Expect(g.Update(20, 0, 5)).To(Succeed())

		Expect(sink.spikes).To(HaveLen(5))
		for lag, s := range sink.spikes {
			Expect(s.Source).To(Equal("gen"))
			Expect(s.Lag).To(Equal(int64(lag)))
			Expect(s.Step).To(Equal(sim.VTimeInStep(21 + lag)))
			Expect(s.TimeMS).To(BeNumerically("~", 0.1*float64(21+lag), 1e-9))
			Expect(s.Multiplicity).To(BeNumerically(">", 0))
		}
	})

	It("should take no input", func() {
		Expect(g.HasPort(pulse.PortFeedback, 0)).To(BeFalse())
		Expect(g.Deliver(pulse.Pulse{})).To(MatchError(pulse.ErrUnknownChannel))
	})

	It("should reject invalid resolutions", func() {
		Expect(g.SetResolution(-1)).To(MatchError(sim.ErrZeroResolution))
		Expect(g.SetResolution(1)).To(Succeed())
	})

	It("should drive a kernel", func() {
		k := NewKernel(sim.NewSerialEngine(), 0.1)
		g.SetRate(2000)
		k.AddNode(g)
		c := NewSpikeCollector("gen")
		k.AcceptHook(c)

		Expect(k.Simulate(200)).To(Succeed())

		Expect(c.Count("gen")).To(BeNumerically(">", 0))
		Expect(c.Total()).To(Equal(c.Count("gen")))
	})
})

var _ = Describe("SpikeCollector", func() {
	It("should keep spikes of the listed sources only", func() {
		c := NewSpikeCollector("a")

		c.Func(hooking.HookCtx{Item: pulse.Spike{Source: "a", Step: 4}})
		c.Func(hooking.HookCtx{Item: pulse.Spike{Source: "b", Step: 5}})
		c.Func(hooking.HookCtx{Item: sim.VTimeInStep(3)})

		Expect(c.Total()).To(Equal(1))
		Expect(c.Spikes("a")).To(Equal([]sim.VTimeInStep{4}))
		Expect(c.Spikes("b")).To(BeEmpty())
	})
})

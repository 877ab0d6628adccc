package network

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/stateneuron/hooking"
	"github.com/sarchlab/stateneuron/pulse"
	"github.com/sarchlab/stateneuron/sim"
)

type updateCall struct {
	origin   sim.VTimeInStep
	from, to int64
}

// probeNode records what the kernel does to it and sends the spikes it is
// scripted to send.
type probeNode struct {
	*hooking.HookableBase

	name      string
	channels  int
	sender    pulse.Sender
	updates   []updateCall
	delivered []pulse.Pulse
	script    map[sim.VTimeInStep]pulse.Spike
	failWith  error
	rejectRes error
	res       sim.Resolution
	maxDelay  int64
}

func newProbeNode(name string, channels int) *probeNode {
	return &probeNode{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		channels:     channels,
		script:       make(map[sim.VTimeInStep]pulse.Spike),
		maxDelay:     math.MaxInt64,
	}
}

func (n *probeNode) Name() string { return n.name }

func (n *probeNode) SetSender(s pulse.Sender) { n.sender = s }

func (n *probeNode) HasPort(port pulse.Port, channel int) bool {
	return port == pulse.PortFeedback && channel >= 0 && channel < n.channels
}

func (n *probeNode) Deliver(p pulse.Pulse) error {
	n.delivered = append(n.delivered, p)
	return nil
}

func (n *probeNode) MaxDelay() int64 { return n.maxDelay }

func (n *probeNode) CheckResolution(sim.Resolution) error {
	return n.rejectRes
}

func (n *probeNode) SetResolution(res sim.Resolution) error {
	n.res = res
	return n.failWith
}

func (n *probeNode) Update(origin sim.VTimeInStep, from, to int64) error {
	n.updates = append(n.updates, updateCall{origin, from, to})

	if n.failWith != nil {
		return n.failWith
	}

	for lag := from; lag < to; lag++ {
		s, ok := n.script[origin+sim.VTimeInStep(lag)]
		if !ok {
			continue
		}

		s.Source = n.name
		s.Lag = lag
		if err := n.sender.Send(s); err != nil {
			return err
		}
	}

	return nil
}

var _ = Describe("Kernel", func() {
	var (
		engine *sim.SerialEngine
		k      *Kernel
		a, b   *probeNode
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		k = NewKernel(engine, 0.1)
		a = newProbeNode("a", 0)
		b = newProbeNode("b", 2)
		k.AddNode(a)
		k.AddNode(b)
	})

	It("should give nodes the kernel as sender", func() {
		Expect(a.sender).To(BeIdenticalTo(k))

		n, found := k.Node("b")
		Expect(found).To(BeTrue())
		Expect(n).To(BeIdenticalTo(b))

		_, found = k.Node("c")
		Expect(found).To(BeFalse())
	})

	It("should panic on duplicate names", func() {
		Expect(func() { k.AddNode(newProbeNode("a", 0)) }).To(Panic())
	})

	It("should validate connections", func() {
		Expect(k.Connect(Connection{Source: "x", Target: "b", Delay: 1})).
			To(MatchError(ErrUnknownNode))
		Expect(k.Connect(Connection{Source: "a", Target: "x", Delay: 1})).
			To(MatchError(ErrUnknownNode))
		Expect(k.Connect(Connection{Source: "a", Target: "b", Channel: 2, Delay: 1})).
			To(MatchError(pulse.ErrUnknownChannel))
		Expect(k.Connect(Connection{Source: "a", Target: "b", Delay: 0})).
			To(MatchError(ErrBadDelay))
		Expect(k.Connections("a")).To(BeEmpty())
	})

	It("should reject delays the target cannot hold", func() {
		b.maxDelay = 8

		Expect(k.Connect(Connection{Source: "a", Target: "b", Delay: 9})).
			To(MatchError(ErrBadDelay))
		Expect(k.Connections("a")).To(BeEmpty())
		Expect(k.EpochSteps()).To(Equal(int64(DefaultEpochSteps)))

		Expect(k.Connect(Connection{Source: "a", Target: "b", Delay: 8})).To(Succeed())
	})

	It("should use the shortest delay as epoch length", func() {
		Expect(k.EpochSteps()).To(Equal(int64(DefaultEpochSteps)))

		Expect(k.Connect(Connection{Source: "a", Target: "b", Delay: 5})).To(Succeed())
		Expect(k.Connect(Connection{Source: "a", Target: "b", Channel: 1, Delay: 3})).
			To(Succeed())

		Expect(k.EpochSteps()).To(Equal(int64(3)))
		Expect(k.Connections("a")).To(HaveLen(2))
	})

	It("should update every node epoch by epoch", func() {
		var epochs []sim.VTimeInStep
		k.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == HookPosEpochDone {
				epochs = append(epochs, ctx.Item.(sim.VTimeInStep))
			}
		}))

		Expect(k.Simulate(25)).To(Succeed())

		Expect(a.updates).To(Equal([]updateCall{{0, 0, 10}, {10, 0, 10}, {20, 0, 5}}))
		Expect(b.updates).To(Equal(a.updates))
		Expect(epochs).To(Equal([]sim.VTimeInStep{0, 10, 20}))
		Expect(k.Now()).To(Equal(sim.VTimeInStep(25)))

		Expect(k.Simulate(5)).To(Succeed())
		Expect(a.updates[3]).To(Equal(updateCall{25, 0, 5}))
	})

	It("should deliver spikes after the epoch with the connection delay", func() {
		Expect(k.Connect(Connection{
			Source: "a", Target: "b", Port: pulse.PortFeedback,
			Channel: 1, Weight: 0.5, Delay: 4,
		})).To(Succeed())
		a.script[2] = pulse.Spike{Step: 3, Multiplicity: 3}
		a.script[5] = pulse.Spike{Step: 6, Multiplicity: 1}

		Expect(k.Simulate(8)).To(Succeed())

		Expect(b.delivered).To(Equal([]pulse.Pulse{
			{Port: pulse.PortFeedback, Channel: 1, Weight: 0.5, Multiplicity: 3, Offset: 6},
			{Port: pulse.PortFeedback, Channel: 1, Weight: 0.5, Multiplicity: 1, Offset: 5},
		}))
	})

	It("should report spikes through hooks", func() {
		c := NewSpikeCollector()
		k.AcceptHook(c)
		a.script[1] = pulse.Spike{Step: 2, Multiplicity: 1}
		b.script[7] = pulse.Spike{Step: 8, Multiplicity: 1}

		Expect(k.Simulate(10)).To(Succeed())

		Expect(c.Total()).To(Equal(2))
		Expect(c.Spikes("a")).To(Equal([]sim.VTimeInStep{2}))
		Expect(c.Count("b")).To(Equal(1))
	})

	It("should stop on update errors", func() {
		a.failWith = errors.New("broken")

		err := k.Simulate(30)

		Expect(err).To(MatchError(a.failWith))
		Expect(b.updates).To(BeEmpty())
	})

	It("should forward resolution changes", func() {
		Expect(k.SetResolution(0.5)).To(Succeed())

		Expect(k.Resolution()).To(Equal(sim.Resolution(0.5)))
		Expect(a.res).To(Equal(sim.Resolution(0.5)))
		Expect(b.res).To(Equal(sim.Resolution(0.5)))

		Expect(k.SetResolution(0)).To(MatchError(sim.ErrZeroResolution))
	})

	It("should leave every node alone when one rejects the resolution", func() {
		a.res = 0.1
		b.res = 0.1
		b.rejectRes = sim.ErrStepPrecisionLoss

		err := k.SetResolution(0.3)

		Expect(err).To(MatchError(sim.ErrStepPrecisionLoss))
		Expect(k.Resolution()).To(Equal(sim.Resolution(0.1)))
		Expect(a.res).To(Equal(sim.Resolution(0.1)))
		Expect(b.res).To(Equal(sim.Resolution(0.1)))
	})
})

package network

import (
	"errors"
	"fmt"
	"log"

	"github.com/sarchlab/stateneuron/hooking"
	"github.com/sarchlab/stateneuron/pulse"
	"github.com/sarchlab/stateneuron/sim"
)

// DefaultEpochSteps is the epoch length used when there is no connection to
// derive it from.
const DefaultEpochSteps = 10

var (
	// ErrUnknownNode is returned for connections naming a node that was not
	// added.
	ErrUnknownNode = errors.New("network: unknown node")

	// ErrBadDelay is returned for connections with a delay below one step
	// or beyond what the target can hold.
	ErrBadDelay = errors.New("network: delay out of range")
)

// HookPosEpochDone fires after an epoch has been processed and its spikes
// delivered. Item is the epoch origin, Detail the epoch length.
var HookPosEpochDone = &hooking.HookPos{Name: "EpochDone"}

// HookPosSpikeSent fires for every spike a node sends. Item is the
// pulse.Spike.
var HookPosSpikeSent = &hooking.HookPos{Name: "SpikeSent"}

// A Kernel owns the nodes and the connections between them. It updates all
// nodes for one epoch, min-delay steps long, and then delivers the spikes
// emitted during the epoch. Delays of at least one epoch guarantee that no
// spike is due before the epoch it is delivered in.
type Kernel struct {
	*hooking.HookableBase

	engine     sim.Engine
	resolution sim.Resolution

	nodes     []Node
	nodeIndex map[string]int
	outgoing  map[string][]Connection
	minDelay  int64

	now     sim.VTimeInStep
	end     sim.VTimeInStep
	pending []pulse.Spike
}

// NewKernel creates a kernel that schedules its epochs on the engine.
func NewKernel(engine sim.Engine, res sim.Resolution) *Kernel {
	if err := res.Validate(); err != nil {
		panic(err)
	}

	return &Kernel{
		HookableBase: hooking.NewHookableBase(),
		engine:       engine,
		resolution:   res,
		nodeIndex:    make(map[string]int),
		outgoing:     make(map[string][]Connection),
	}
}

// Engine returns the engine the kernel runs on.
func (k *Kernel) Engine() sim.Engine {
	return k.engine
}

// Resolution returns the step duration.
func (k *Kernel) Resolution() sim.Resolution {
	return k.resolution
}

// SetResolution changes the step duration and tells every ResolutionAware
// node. If any node rejects the change, nothing changes.
func (k *Kernel) SetResolution(res sim.Resolution) error {
	if err := res.Validate(); err != nil {
		return err
	}

	for _, n := range k.nodes {
		if ra, ok := n.(ResolutionAware); ok {
			if err := ra.CheckResolution(res); err != nil {
				return fmt.Errorf("node %s: %w", n.Name(), err)
			}
		}
	}

	for _, n := range k.nodes {
		if ra, ok := n.(ResolutionAware); ok {
			if err := ra.SetResolution(res); err != nil {
				log.Panicf("node %s accepted resolution %v ms but failed to apply it: %v",
					n.Name(), float64(res), err)
			}
		}
	}

	k.resolution = res

	return nil
}

// Now returns the origin of the next epoch.
func (k *Kernel) Now() sim.VTimeInStep {
	return k.now
}

// AddNode adds a node. Node names must be unique.
func (k *Kernel) AddNode(n Node) {
	if _, found := k.nodeIndex[n.Name()]; found {
		panic("node " + n.Name() + " already added")
	}

	k.nodeIndex[n.Name()] = len(k.nodes)
	k.nodes = append(k.nodes, n)
	n.SetSender(k)
}

// Nodes returns the nodes in the order they were added.
func (k *Kernel) Nodes() []Node {
	return k.nodes
}

// Node returns a node by name.
func (k *Kernel) Node(name string) (Node, bool) {
	i, found := k.nodeIndex[name]
	if !found {
		return nil, false
	}

	return k.nodes[i], true
}

// Connect adds a connection after checking that both ends exist, the
// target accepts the channel and the delay fits the target.
func (k *Kernel) Connect(c Connection) error {
	if _, found := k.nodeIndex[c.Source]; !found {
		return fmt.Errorf("%w: %q", ErrUnknownNode, c.Source)
	}

	target, found := k.Node(c.Target)
	if !found {
		return fmt.Errorf("%w: %q", ErrUnknownNode, c.Target)
	}

	if !target.HasPort(c.Port, c.Channel) {
		return fmt.Errorf("%w: %s has no %s[%d]",
			pulse.ErrUnknownChannel, c.Target, c.Port, c.Channel)
	}

	if c.Delay < 1 {
		return fmt.Errorf("%w: %d is below one step", ErrBadDelay, c.Delay)
	}

	if dl, ok := target.(DelayLimited); ok && c.Delay > dl.MaxDelay() {
		return fmt.Errorf("%w: %d exceeds the %d steps %s can hold",
			ErrBadDelay, c.Delay, dl.MaxDelay(), c.Target)
	}

	k.outgoing[c.Source] = append(k.outgoing[c.Source], c)
	if k.minDelay == 0 || c.Delay < k.minDelay {
		k.minDelay = c.Delay
	}

	return nil
}

// Connections returns the connections leaving a node.
func (k *Kernel) Connections(source string) []Connection {
	return k.outgoing[source]
}

// EpochSteps returns the number of steps updated per epoch.
func (k *Kernel) EpochSteps() int64 {
	if k.minDelay == 0 {
		return DefaultEpochSteps
	}

	return k.minDelay
}

// Send queues a spike for delivery at the end of the epoch.
func (k *Kernel) Send(s pulse.Spike) error {
	k.pending = append(k.pending, s)

	if k.NumHooks() > 0 {
		k.InvokeHook(hooking.HookCtx{
			Domain: k,
			Pos:    HookPosSpikeSent,
			Item:   s,
		})
	}

	return nil
}

// Simulate advances all nodes by the given number of steps.
func (k *Kernel) Simulate(steps int64) error {
	if steps <= 0 {
		return nil
	}

	k.end = k.now + sim.VTimeInStep(steps)
	k.scheduleEpoch(k.now)

	return k.engine.Run()
}

// Handle runs one epoch.
func (k *Kernel) Handle(e sim.Event) error {
	evt, ok := e.(*epochEvent)
	if !ok {
		panic(fmt.Sprintf("kernel cannot handle event %T", e))
	}

	if err := k.runEpoch(evt.Time(), evt.length); err != nil {
		return err
	}

	if k.now < k.end {
		k.scheduleEpoch(k.now)
	}

	return nil
}

func (k *Kernel) scheduleEpoch(origin sim.VTimeInStep) {
	length := k.EpochSteps()
	if rest := int64(k.end - origin); rest < length {
		length = rest
	}

	k.engine.Schedule(newEpochEvent(origin, length, k))
}

func (k *Kernel) runEpoch(origin sim.VTimeInStep, length int64) error {
	for _, n := range k.nodes {
		if err := n.Update(origin, 0, length); err != nil {
			return fmt.Errorf("updating %s: %w", n.Name(), err)
		}
	}

	if err := k.deliver(); err != nil {
		return err
	}

	k.now = origin + sim.VTimeInStep(length)

	if k.NumHooks() > 0 {
		k.InvokeHook(hooking.HookCtx{
			Domain: k,
			Pos:    HookPosEpochDone,
			Item:   origin,
			Detail: length,
		})
	}

	return nil
}

func (k *Kernel) deliver() error {
	pending := k.pending
	k.pending = nil

	for _, s := range pending {
		for _, c := range k.outgoing[s.Source] {
			target, _ := k.Node(c.Target)

			err := target.Deliver(pulse.Pulse{
				Port:         c.Port,
				Channel:      c.Channel,
				Weight:       c.Weight,
				Multiplicity: s.Multiplicity,
				Offset:       s.Lag + c.Delay,
			})
			if err != nil {
				return fmt.Errorf("delivering spike of %s to %s: %w",
					s.Source, c.Target, err)
			}
		}
	}

	return nil
}

type epochEvent struct {
	*sim.EventBase
	length int64
}

func newEpochEvent(origin sim.VTimeInStep, length int64, k *Kernel) *epochEvent {
	return &epochEvent{
		EventBase: sim.NewEventBase(origin, k),
		length:    length,
	}
}

var _ pulse.Sender = (*Kernel)(nil)
var _ sim.Handler = (*Kernel)(nil)

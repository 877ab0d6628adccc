package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/stateneuron/hooking"
	"github.com/sarchlab/stateneuron/pulse"
)

// NamedHookable is a hookable with a name.
type NamedHookable interface {
	hooking.Hookable
	Name() string
	Hooks() []hooking.Hook
}

// CollectTrace lets the tracer collect the spikes raised by a domain. A
// filter, if given, selects the spikes to trace.
func CollectTrace(domain NamedHookable, tracer SpikeTracer, filter SpikeFilter) {
	for _, hook := range domain.Hooks() {
		h, ok := hook.(*traceHook)
		if ok && h.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	domain.AcceptHook(&traceHook{t: tracer, filter: filter})
}

// A traceHook is a hook that forwards spikes to a tracer.
type traceHook struct {
	t      SpikeTracer
	filter SpikeFilter
}

// Func forwards the spike carried by the context, if any.
func (h *traceHook) Func(ctx hooking.HookCtx) {
	s, ok := ctx.Item.(pulse.Spike)
	if !ok {
		return
	}

	if h.filter != nil && !h.filter(s) {
		return
	}

	h.t.TraceSpike(s)
}

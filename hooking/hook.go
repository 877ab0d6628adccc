// Package hooking lets observers attach to the engine, the kernel and the
// state neuron without those types knowing who is listening.
package hooking

// HookPos names a site from which hooks are invoked.
type HookPos struct {
	Name string
}

// HookCtx describes a single hook invocation.
type HookCtx struct {
	// Domain is the object raising the hook.
	Domain Hookable

	// Pos identifies the site.
	Pos *HookPos

	// Item is the primary subject, for example an event or a step index.
	Item any

	// Detail carries optional site-specific data.
	Detail any
}

// Hookable is an object that hooks can be attached to.
type Hookable interface {
	// AcceptHook registers a hook. Hooks are registered while the simulation
	// is being assembled and are never removed.
	AcceptHook(hook Hook)

	// NumHooks returns the number of registered hooks.
	NumHooks() int

	// InvokeHook calls every registered hook with ctx.
	InvokeHook(ctx HookCtx)
}

// Hook is invoked by a Hookable.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx HookCtx)

// Func calls f(ctx).
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// HookableBase implements Hookable and can be embedded.
type HookableBase struct {
	hookList []Hook
}

// NewHookableBase creates a HookableBase with no hooks.
func NewHookableBase() *HookableBase {
	return &HookableBase{hookList: make([]Hook, 0)}
}

// NumHooks returns the number of registered hooks.
func (h *HookableBase) NumHooks() int {
	return len(h.hookList)
}

// Hooks returns the registered hooks in registration order.
func (h *HookableBase) Hooks() []Hook {
	return h.hookList
}

// AcceptHook registers a hook. Registering the same hook twice panics.
func (h *HookableBase) AcceptHook(hook Hook) {
	for _, existing := range h.hookList {
		if sameHook(existing, hook) {
			panic("duplicated hook")
		}
	}

	h.hookList = append(h.hookList, hook)
}

// InvokeHook triggers the registered hooks in registration order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hookList {
		hook.Func(ctx)
	}
}

// HookFunc values are not comparable, so they never count as duplicates.
func sameHook(a, b Hook) bool {
	if _, ok := a.(HookFunc); ok {
		return false
	}

	if _, ok := b.(HookFunc); ok {
		return false
	}

	return a == b
}

var _ Hookable = (*HookableBase)(nil)

package sim

import (
	"fmt"
	"log"
	"reflect"
	"sync"

	"github.com/sarchlab/stateneuron/hooking"
)

// A SerialEngine is an Engine that always runs events one after another.
type SerialEngine struct {
	*hooking.HookableBase

	timeLock       sync.RWMutex
	time           VTimeInStep
	queue          EventQueue
	secondaryQueue EventQueue

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex
}

// NewSerialEngine creates a SerialEngine.
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{
		HookableBase:   hooking.NewHookableBase(),
		queue:          NewEventQueue(),
		secondaryQueue: NewEventQueue(),
	}
}

// Schedule registers an event to happen in the future.
func (e *SerialEngine) Schedule(evt Event) {
	now := e.readNow()
	if evt.Time() < now {
		log.Panicf(
			"scheduling an event earlier than current step, evt %s @ %d, now %d",
			reflect.TypeOf(evt), evt.Time(), now,
		)
	}

	if evt.IsSecondary() {
		e.secondaryQueue.Push(evt)
		return
	}

	e.queue.Push(evt)
}

func (e *SerialEngine) readNow() VTimeInStep {
	e.timeLock.RLock()
	t := e.time
	e.timeLock.RUnlock()

	return t
}

func (e *SerialEngine) writeNow(t VTimeInStep) {
	e.timeLock.Lock()
	e.time = t
	e.timeLock.Unlock()
}

// Run processes all the events scheduled in the SerialEngine. The first
// handler error stops the run and is returned; the remaining events stay
// queued.
func (e *SerialEngine) Run() error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for {
		if e.noMoreEvent() {
			return nil
		}

		if err := e.runOne(); err != nil {
			return err
		}
	}
}

func (e *SerialEngine) runOne() error {
	e.pauseLock.Lock()
	defer e.pauseLock.Unlock()

	evt := e.nextEvent()
	now := e.readNow()
	if evt.Time() < now {
		log.Panicf(
			"cannot run event in the past, evt %s @ %d, now %d",
			reflect.TypeOf(evt), evt.Time(), now,
		)
	}
	e.writeNow(evt.Time())

	hookCtx := hooking.HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(hookCtx)

	handler := evt.Handler()
	if handler == nil {
		log.Panicf("event %s @ %d has no handler", reflect.TypeOf(evt), evt.Time())
	}

	err := handler.Handle(evt)

	hookCtx.Pos = HookPosAfterEvent
	e.InvokeHook(hookCtx)

	if err != nil {
		return fmt.Errorf("handling %s @ step %d: %w",
			reflect.TypeOf(evt), evt.Time(), err)
	}

	return nil
}

func (e *SerialEngine) noMoreEvent() bool {
	return e.queue.Len() == 0 && e.secondaryQueue.Len() == 0
}

func (e *SerialEngine) nextEvent() Event {
	if e.queue.Len() == 0 {
		return e.secondaryQueue.Pop()
	}

	if e.secondaryQueue.Len() == 0 {
		return e.queue.Pop()
	}

	primaryEvt := e.queue.Peek()
	secondaryEvt := e.secondaryQueue.Peek()

	if primaryEvt.Time() <= secondaryEvt.Time() {
		e.queue.Pop()
		return primaryEvt
	}

	e.secondaryQueue.Pop()

	return secondaryEvt
}

// Pause prevents the SerialEngine from triggering more events.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the SerialEngine to trigger more events.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// CurrentTime returns the step of the event being (or last) handled.
func (e *SerialEngine) CurrentTime() VTimeInStep {
	return e.readNow()
}

var _ Engine = (*SerialEngine)(nil)

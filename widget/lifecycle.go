package widget

import (
	"errors"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/statekit"
)

var ErrInvalidTransition = errors.New("widget: invalid lifecycle transition")

// State is the interaction state of a widget.
type State string

const (
	StateIdle     State = "idle"
	StateCreated  State = "created"
	StateSelected State = "selected"
	StateEditing  State = "editing"
	StateDeleted  State = "deleted"
)

// Event drives the lifecycle chart.
type Event string

const (
	EventArm      Event = "ARM"
	EventSelect   Event = "SELECT"
	EventDeselect Event = "DESELECT"
	EventEdit     Event = "EDIT"
	EventDelete   Event = "DELETE"
)

type lifecycleContext struct {
	kind  Kind
	moves int
}

var (
	machineOnce sync.Once
	machine     *statekit.MachineConfig[*lifecycleContext]
	machineErr  error
)

func guardHasInterior(ctx *lifecycleContext, _ statekit.Event) bool {
	return ctx != nil && ctx.kind.HasInterior()
}

func countMove(ctx **lifecycleContext, _ statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	(*ctx).moves++
}

func lifecycleMachine() (*statekit.MachineConfig[*lifecycleContext], error) {
	machineOnce.Do(func() {
		machine, machineErr = statekit.NewMachine[*lifecycleContext]("widget").
			WithInitial(statekit.StateID(StateIdle)).
			WithContext(&lifecycleContext{}).
			WithAction("count", countMove).
			WithGuard("hasInterior", guardHasInterior).
			State(statekit.StateID(StateIdle)).
				On(statekit.EventType(EventArm)).Target(statekit.StateID(StateCreated)).Guard("hasInterior").Do("count").
				On(statekit.EventType(EventSelect)).Target(statekit.StateID(StateSelected)).Do("count").
				On(statekit.EventType(EventEdit)).Target(statekit.StateID(StateEditing)).Guard("hasInterior").Do("count").
				On(statekit.EventType(EventDelete)).Target(statekit.StateID(StateDeleted)).Do("count").
				Done().
			State(statekit.StateID(StateCreated)).
				On(statekit.EventType(EventSelect)).Target(statekit.StateID(StateSelected)).Do("count").
				On(statekit.EventType(EventDeselect)).Target(statekit.StateID(StateIdle)).Do("count").
				On(statekit.EventType(EventEdit)).Target(statekit.StateID(StateEditing)).Do("count").
				On(statekit.EventType(EventDelete)).Target(statekit.StateID(StateDeleted)).Do("count").
				Done().
			State(statekit.StateID(StateSelected)).
				On(statekit.EventType(EventDeselect)).Target(statekit.StateID(StateIdle)).Do("count").
				On(statekit.EventType(EventEdit)).Target(statekit.StateID(StateEditing)).Guard("hasInterior").Do("count").
				On(statekit.EventType(EventDelete)).Target(statekit.StateID(StateDeleted)).Do("count").
				Done().
			State(statekit.StateID(StateEditing)).
				On(statekit.EventType(EventSelect)).Target(statekit.StateID(StateSelected)).Do("count").
				On(statekit.EventType(EventDeselect)).Target(statekit.StateID(StateIdle)).Do("count").
				On(statekit.EventType(EventDelete)).Target(statekit.StateID(StateDeleted)).Do("count").
				Done().
			State(statekit.StateID(StateDeleted)).
				Final().
				Done().
			Build()
	})
	return machine, machineErr
}

// Lifecycle tracks one widget through idle, created, selected, editing and
// deleted.
type Lifecycle struct {
	interp *statekit.Interpreter[*lifecycleContext]
	ctx    *lifecycleContext
}

func NewLifecycle(kind Kind) (*Lifecycle, error) {
	m, err := lifecycleMachine()
	if err != nil {
		return nil, fmt.Errorf("widget: build lifecycle: %w", err)
	}
	ctx := &lifecycleContext{kind: kind}
	interp := statekit.NewInterpreter(m)
	interp.UpdateContext(func(c **lifecycleContext) {
		*c = ctx
	})
	interp.Start()
	return &Lifecycle{interp: interp, ctx: ctx}, nil
}

func (l *Lifecycle) State() State {
	return State(l.interp.State().Value)
}

// Transitions counts the state changes taken so far.
func (l *Lifecycle) Transitions() int { return l.ctx.moves }

// Fire sends ev to the chart. The chart has no self-transitions, so an event
// that leaves the state unchanged was rejected (unknown in this state, or
// refused by a guard); it returns ErrInvalidTransition.
func (l *Lifecycle) Fire(ev Event) error {
	from := l.State()
	if l.interp.Done() {
		return fmt.Errorf("%w: %s in %s (%s)", ErrInvalidTransition, ev, from, l.ctx.kind)
	}
	l.interp.Send(statekit.Event{Type: statekit.EventType(ev)})
	if l.State() == from {
		return fmt.Errorf("%w: %s in %s (%s)", ErrInvalidTransition, ev, from, l.ctx.kind)
	}
	return nil
}

func (l *Lifecycle) Done() bool { return l.interp.Done() }

func (l *Lifecycle) Selected() bool {
	s := l.State()
	return s == StateSelected || s == StateCreated
}

func (l *Lifecycle) Editing() bool {
	s := l.State()
	return s == StateEditing || s == StateCreated
}

package ports

import "instinct/internal/domain/decision"

// ActionInit carries everything an instance needs when it leaves the pool.
// Completed must be invoked at most once; the brain ignores calls from
// instances it has already abandoned.
type ActionInit struct {
	Brain                               Brain
	ActionTag                           decision.Tag
	AllowInterruptions                  bool
	InterruptionsFromHigherPriorityOnly bool
	Completed                           func(Action)
}

// Action is one pooled, reusable behavior instance. Perform may span many
// ticks; the brain only observes it through the Completed callback and the
// Cancel/Continue entry points.
type Action interface {
	Init(init ActionInit)
	Perform(ctx *decision.Context, params decision.ParamMap, previousTag decision.Tag)
	Continue(ctx *decision.Context, params decision.ParamMap)
	Cancel(interrupter decision.Tag)
	CanBeInterrupted() bool
	InterruptionsFromHigherPriorityOnly() bool
	// Reset clears instance state before the pool hands it out again.
	Reset()
}

// ActionFactory constructs fresh instances for the pool; it stands in for the
// registered action class of a tag.
type ActionFactory func() Action

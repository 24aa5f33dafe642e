package ports

import (
	"time"

	"instinct/internal/domain/decision"
)

// Brain is the surface providers and actions see of the agent evaluating
// them. The full implementation lives in internal/app/brain.
type Brain interface {
	AgentID() string
	Self() decision.Actor
	Now() time.Time
	// TimeSinceActionPerformed measures from the last END of any catalogue
	// entry with the tag, so an action can ask about its own previous run.
	TimeSinceActionPerformed(tag decision.Tag) time.Duration
}

// InputProvider turns a context into one raw scalar. Implementations must be
// deterministic given their inputs and free of side effects.
type InputProvider interface {
	Evaluate(b Brain, ctx *decision.Context, params decision.ParamMap) float64
}

// QueryProvider produces candidate values for one context element. Correlated
// providers are re-run per partial context through ResultsInContext;
// uncorrelated providers run once per update through Results and may cache up
// to maxFrequency seconds.
type QueryProvider interface {
	ElementKind() decision.ContextElement
	Correlated() bool
	Results(b Brain, self decision.Actor, maxFrequency float64, params decision.ParamMap) []decision.ContextValue
	ResultsInContext(b Brain, self decision.Actor, ctx *decision.Context, params decision.ParamMap) []decision.ContextValue
}

// NamedValueQueryProvider is implemented by queries whose element kind is
// ElementNamedValue; the name keys the exported context slot.
type NamedValueQueryProvider interface {
	QueryProvider
	ValueName() string
}

// UncorrelatedQuery is an embeddable base for providers that only implement
// Results.
type UncorrelatedQuery struct{}

func (UncorrelatedQuery) Correlated() bool { return false }
func (UncorrelatedQuery) ResultsInContext(Brain, decision.Actor, *decision.Context, decision.ParamMap) []decision.ContextValue {
	return nil
}

// CorrelatedQuery is an embeddable base for providers that only implement
// ResultsInContext.
type CorrelatedQuery struct{}

func (CorrelatedQuery) Correlated() bool { return true }
func (CorrelatedQuery) Results(Brain, decision.Actor, float64, decision.ParamMap) []decision.ContextValue {
	return nil
}

// ParameterProvider resolves an auto parameter against a context.
type ParameterProvider interface {
	Evaluate(b Brain, ctx *decision.Context, params decision.ParamMap) decision.ContextValue
}

// PlayerLocator reports the positions of external observers; proximity
// tiering uses the minimum squared distance over all of them.
type PlayerLocator interface {
	PlayerPositions() []decision.Vector
}

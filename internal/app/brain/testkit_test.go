package brain

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"instinct/internal/app/pool"
	"instinct/internal/app/ports"
	"instinct/internal/app/registry"
	"instinct/internal/domain/decision"
)

type stubActor struct {
	id   string
	pos  decision.Vector
	tags map[decision.Tag]bool
}

func (a *stubActor) ActorID() string          { return a.id }
func (a *stubActor) Position() decision.Vector { return a.pos }
func (a *stubActor) HasTag(t decision.Tag) bool {
	return a.tags[t]
}

type stubInput struct {
	calls int
	fn    func(ctx *decision.Context, params decision.ParamMap) float64
}

func (s *stubInput) Evaluate(_ ports.Brain, ctx *decision.Context, params decision.ParamMap) float64 {
	s.calls++
	return s.fn(ctx, params)
}

func constInput(v float64) *stubInput {
	return &stubInput{fn: func(*decision.Context, decision.ParamMap) float64 { return v }}
}

type stubTargetQuery struct {
	ports.UncorrelatedQuery
	calls   int
	targets []decision.Actor
}

func (q *stubTargetQuery) ElementKind() decision.ContextElement { return decision.ElementTarget }

func (q *stubTargetQuery) Results(ports.Brain, decision.Actor, float64, decision.ParamMap) []decision.ContextValue {
	q.calls++
	out := make([]decision.ContextValue, 0, len(q.targets))
	for _, t := range q.targets {
		out = append(out, decision.ActorValue(t))
	}
	return out
}

type stubLocationQuery struct {
	ports.UncorrelatedQuery
	locations []decision.Vector
}

func (q *stubLocationQuery) ElementKind() decision.ContextElement { return decision.ElementLocation }

func (q *stubLocationQuery) Results(ports.Brain, decision.Actor, float64, decision.ParamMap) []decision.ContextValue {
	out := make([]decision.ContextValue, 0, len(q.locations))
	for _, l := range q.locations {
		out = append(out, decision.LocationValue(l))
	}
	return out
}

type stubCorrelatedLocationQuery struct {
	ports.CorrelatedQuery
	byTarget map[string][]decision.Vector
}

func (q *stubCorrelatedLocationQuery) ElementKind() decision.ContextElement {
	return decision.ElementLocation
}

func (q *stubCorrelatedLocationQuery) ResultsInContext(_ ports.Brain, _ decision.Actor, ctx *decision.Context, _ decision.ParamMap) []decision.ContextValue {
	if ctx.Target == nil {
		return nil
	}
	out := make([]decision.ContextValue, 0, 2)
	for _, l := range q.byTarget[ctx.Target.ActorID()] {
		out = append(out, decision.LocationValue(l))
	}
	return out
}

type stubNamedQuery struct {
	ports.UncorrelatedQuery
	name   string
	values []decision.ContextValue
}

func (q *stubNamedQuery) ElementKind() decision.ContextElement { return decision.ElementNamedValue }
func (q *stubNamedQuery) ValueName() string                    { return q.name }

func (q *stubNamedQuery) Results(ports.Brain, decision.Actor, float64, decision.ParamMap) []decision.ContextValue {
	return q.values
}

// recordingAction captures lifecycle calls; counters survive Reset so tests
// can inspect them after the pool takes the instance back.
type recordingAction struct {
	init      ports.ActionInit
	performs  int
	continues int
	cancels   int
	lastCtx   decision.Context
	lastPrev  decision.Tag
}

func (a *recordingAction) Init(init ports.ActionInit) { a.init = init }

func (a *recordingAction) Perform(ctx *decision.Context, _ decision.ParamMap, prev decision.Tag) {
	a.performs++
	a.lastCtx = ctx.Clone()
	a.lastPrev = prev
}

func (a *recordingAction) Continue(ctx *decision.Context, _ decision.ParamMap) {
	a.continues++
	a.lastCtx = ctx.Clone()
}

func (a *recordingAction) Cancel(decision.Tag) { a.cancels++ }

func (a *recordingAction) CanBeInterrupted() bool { return a.init.AllowInterruptions }

func (a *recordingAction) InterruptionsFromHigherPriorityOnly() bool {
	return a.init.InterruptionsFromHigherPriorityOnly
}

func (a *recordingAction) Reset() { a.init = ports.ActionInit{} }

func (a *recordingAction) complete() {
	if a.init.Completed != nil {
		a.init.Completed(a)
	}
}

type fakeQueue struct {
	mu     sync.Mutex
	queued []*Brain
}

func (q *fakeQueue) QueueBrainUpdate(b *Brain) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queued = append(q.queued, b)
}

func (q *fakeQueue) drainOne() *Brain {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.queued) == 0 {
		return nil
	}
	b := q.queued[0]
	q.queued = q.queued[1:]
	return b
}

func (q *fakeQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queued)
}

type fakeClock struct {
	at time.Time
}

func (c *fakeClock) now() time.Time { return c.at }

func (c *fakeClock) advance(d time.Duration) { c.at = c.at.Add(d) }

type harness struct {
	brain *Brain
	reg   *registry.Registry
	queue *fakeQueue
	clock *fakeClock
	self  *stubActor
}

func newHarness(cfg decision.BrainConfig) *harness {
	h := &harness{
		reg:   registry.New(zerolog.Nop()),
		queue: &fakeQueue{},
		clock: &fakeClock{at: time.Unix(1_700_000_000, 0)},
		self:  &stubActor{id: "agent-1", tags: map[decision.Tag]bool{}},
	}
	h.brain = New(Options{
		AgentID:  "agent-1",
		Self:     h.self,
		Registry: h.reg,
		Pool:     pool.New(),
		Queue:    h.queue,
		Log:      zerolog.Nop(),
		Now:      h.clock.now,
		Rand:     rand.New(rand.NewSource(1)),
	})
	h.brain.SetConfig(cfg)
	h.brain.StartLogic()
	// Discard the StartLogic enqueue; tests drive Update directly.
	h.queue.drainOne()
	h.brain.queued = false
	return h
}

// registerRecordingAction registers a factory returning one shared instance,
// so tests can observe lifecycle calls.
func (h *harness) registerRecordingAction(tag decision.Tag) *recordingAction {
	a := &recordingAction{}
	h.reg.RegisterAction(tag, func() ports.Action { return a })
	return a
}

func simpleDef(tag decision.Tag, priority int, weight float64) decision.ActionDef {
	return decision.ActionDef{
		ActionTag:          tag,
		Priority:           priority,
		Weight:             weight,
		AllowInterruptions: true,
	}
}

package providers

import (
	"math"
	"sync"
	"time"

	"instinct/internal/adapter/world"
	"instinct/internal/app/ports"
	"instinct/internal/domain/decision"
)

// BaseAction carries the pooled-instance plumbing shared by concrete actions:
// init storage, interruption flags and no-op lifecycle defaults.
type BaseAction struct {
	ActionInit ports.ActionInit
}

func (a *BaseAction) Init(init ports.ActionInit) { a.ActionInit = init }

func (a *BaseAction) Continue(*decision.Context, decision.ParamMap) {}

func (a *BaseAction) Cancel(decision.Tag) {}

func (a *BaseAction) CanBeInterrupted() bool { return a.ActionInit.AllowInterruptions }

func (a *BaseAction) InterruptionsFromHigherPriorityOnly() bool {
	return a.ActionInit.InterruptionsFromHigherPriorityOnly
}

func (a *BaseAction) Reset() { a.ActionInit = ports.ActionInit{} }

type tickable interface {
	tick(dt float64)
}

// Ticker advances long-running action bodies on the simulation loop; actions
// register while active and unregister on completion or cancel.
type Ticker struct {
	mu     sync.Mutex
	active map[tickable]struct{}
}

func NewTicker() *Ticker {
	return &Ticker{active: make(map[tickable]struct{})}
}

func (t *Ticker) add(a tickable) {
	t.mu.Lock()
	t.active[a] = struct{}{}
	t.mu.Unlock()
}

func (t *Ticker) remove(a tickable) {
	t.mu.Lock()
	delete(t.active, a)
	t.mu.Unlock()
}

func (t *Ticker) Advance(dt time.Duration) {
	t.mu.Lock()
	snapshot := make([]tickable, 0, len(t.active))
	for a := range t.active {
		snapshot = append(snapshot, a)
	}
	t.mu.Unlock()

	for _, a := range snapshot {
		a.tick(dt.Seconds())
	}
}

// WaitAction idles for the "seconds" action parameter, then completes. Useful
// as a default low-priority behavior and as a generic delay body.
type WaitAction struct {
	BaseAction
	Ticker *Ticker

	remaining float64
	running   bool
}

func NewWaitAction(t *Ticker) *WaitAction {
	return &WaitAction{Ticker: t}
}

func (a *WaitAction) Perform(_ *decision.Context, params decision.ParamMap, _ decision.Tag) {
	a.remaining = 1
	if p, ok := params["seconds"]; ok {
		a.remaining = p.Float()
	}
	a.running = true
	a.Ticker.add(a)
}

func (a *WaitAction) Cancel(decision.Tag) {
	a.running = false
	a.Ticker.remove(a)
}

func (a *WaitAction) Reset() {
	a.BaseAction.Reset()
	a.remaining = 0
	a.running = false
}

func (a *WaitAction) tick(dt float64) {
	if !a.running {
		return
	}
	a.remaining -= dt
	if a.remaining > 0 {
		return
	}
	a.running = false
	a.Ticker.remove(a)
	if a.ActionInit.Completed != nil {
		a.ActionInit.Completed(a)
	}
}

// MoveToLocationAction walks the world agent behind self toward the context
// location at the "speed" action parameter (units per second), completing on
// arrival. Continue retargets the destination.
type MoveToLocationAction struct {
	BaseAction
	World  *world.World
	Ticker *Ticker

	agentID string
	dest    decision.Vector
	speed   float64
	running bool
}

func NewMoveToLocationAction(w *world.World, t *Ticker) *MoveToLocationAction {
	return &MoveToLocationAction{World: w, Ticker: t}
}

const arriveDistance = 1.0

func (a *MoveToLocationAction) Perform(ctx *decision.Context, params decision.ParamMap, _ decision.Tag) {
	a.agentID = ctx.Self.ActorID()
	a.dest = ctx.Location
	a.speed = 100
	if p, ok := params["speed"]; ok {
		a.speed = p.Float()
	}
	a.running = true
	a.Ticker.add(a)
}

func (a *MoveToLocationAction) Continue(ctx *decision.Context, _ decision.ParamMap) {
	a.dest = ctx.Location
}

func (a *MoveToLocationAction) Cancel(decision.Tag) {
	a.running = false
	a.Ticker.remove(a)
}

func (a *MoveToLocationAction) Reset() {
	a.BaseAction.Reset()
	a.agentID = ""
	a.dest = decision.Vector{}
	a.speed = 0
	a.running = false
}

func (a *MoveToLocationAction) tick(dt float64) {
	if !a.running {
		return
	}
	agent, ok := a.World.Agent(a.agentID)
	if !ok {
		a.finish()
		return
	}
	pos := agent.Position()
	delta := a.dest.Sub(pos)
	dist := math.Sqrt(delta.LengthSq())
	step := a.speed * dt
	if dist <= arriveDistance || step >= dist {
		agent.SetPosition(a.dest)
		a.finish()
		return
	}
	agent.SetPosition(pos.Add(delta.Scale(step / dist)))
}

func (a *MoveToLocationAction) finish() {
	a.running = false
	a.Ticker.remove(a)
	if a.ActionInit.Completed != nil {
		a.ActionInit.Completed(a)
	}
}

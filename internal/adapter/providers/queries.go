package providers

import (
	"fmt"
	"math"
	"sync"
	"time"

	"instinct/internal/adapter/world"
	"instinct/internal/app/ports"
	"instinct/internal/domain/decision"
)

// TargetsInRangeQuery is an uncorrelated target query over the world:
// non-player agents within the "radius" parameter of self, optionally only
// hostile ones. Results are cached per agent up to the query's MaxFrequency.
type TargetsInRangeQuery struct {
	ports.UncorrelatedQuery
	World *world.World

	mu    sync.Mutex
	cache map[string]cachedResults
}

type cachedResults struct {
	at      time.Time
	results []decision.ContextValue
}

func NewTargetsInRangeQuery(w *world.World) *TargetsInRangeQuery {
	return &TargetsInRangeQuery{World: w, cache: make(map[string]cachedResults)}
}

func (q *TargetsInRangeQuery) ElementKind() decision.ContextElement { return decision.ElementTarget }

func (q *TargetsInRangeQuery) Results(b ports.Brain, self decision.Actor, maxFrequency float64, params decision.ParamMap) []decision.ContextValue {
	radius := 1000.0
	if p, ok := params["radius"]; ok {
		radius = p.Float()
	}
	hostileOnly := false
	if p, ok := params["hostileOnly"]; ok {
		hostileOnly = p.Float() != 0
	}

	key := fmt.Sprintf("%s|%.0f|%t", self.ActorID(), radius, hostileOnly)
	now := b.Now()

	q.mu.Lock()
	defer q.mu.Unlock()
	if maxFrequency > 0 {
		if c, ok := q.cache[key]; ok && now.Sub(c.at).Seconds() < maxFrequency {
			return c.results
		}
	}

	agent, ok := q.World.Agent(self.ActorID())
	if !ok {
		return nil
	}
	found := q.World.AgentsInRange(agent, radius, hostileOnly)
	results := make([]decision.ContextValue, 0, len(found))
	for _, a := range found {
		results = append(results, decision.ActorValue(a))
	}

	if maxFrequency > 0 {
		q.cache[key] = cachedResults{at: now, results: results}
	}
	return results
}

// NavPointsAroundTargetQuery is a correlated location query: a ring of
// reachable points around the context's target. Contexts without a target
// produce nothing and are dropped by the intersection.
type NavPointsAroundTargetQuery struct {
	ports.CorrelatedQuery
	// Count points on a circle of Radius around the target.
	Radius float64
	Count  int
}

func (q NavPointsAroundTargetQuery) ElementKind() decision.ContextElement {
	return decision.ElementLocation
}

func (q NavPointsAroundTargetQuery) ResultsInContext(_ ports.Brain, _ decision.Actor, ctx *decision.Context, params decision.ParamMap) []decision.ContextValue {
	if ctx.Target == nil {
		return nil
	}
	radius := q.Radius
	if p, ok := params["radius"]; ok {
		radius = p.Float()
	}
	count := q.Count
	if p, ok := params["count"]; ok && p.Kind == decision.ParamInt {
		count = p.IntValue
	}
	if count <= 0 {
		count = 4
	}

	center := ctx.Target.Position()
	out := make([]decision.ContextValue, 0, count)
	for i := 0; i < count; i++ {
		angle := 2 * math.Pi * float64(i) / float64(count)
		out = append(out, decision.LocationValue(decision.Vector{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
			Z: center.Z,
		}))
	}
	return out
}

// ThreatLevelQuery exports the world threat level as the named value
// "threat".
type ThreatLevelQuery struct {
	ports.UncorrelatedQuery
	World *world.World
}

func (q ThreatLevelQuery) ElementKind() decision.ContextElement { return decision.ElementNamedValue }
func (q ThreatLevelQuery) ValueName() string                    { return "threat" }

func (q ThreatLevelQuery) Results(ports.Brain, decision.Actor, float64, decision.ParamMap) []decision.ContextValue {
	return []decision.ContextValue{decision.FloatValue(q.World.Threat())}
}

// StatParameterProvider resolves auto parameters under "param.stat.<name>" to
// the agent's stat value, so bookends can track live agent state.
type StatParameterProvider struct {
	World *world.World
	Name  string
}

func (p StatParameterProvider) Evaluate(_ ports.Brain, ctx *decision.Context, _ decision.ParamMap) decision.ContextValue {
	a, ok := p.World.Agent(ctx.Self.ActorID())
	if !ok {
		return decision.FloatValue(0)
	}
	return decision.FloatValue(a.Stat(p.Name))
}

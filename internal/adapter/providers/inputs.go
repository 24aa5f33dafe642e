package providers

import (
	"math"

	"instinct/internal/adapter/world"
	"instinct/internal/app/ports"
	"instinct/internal/domain/decision"
)

// DistanceToTargetInput reports the distance from self to the context target.
// Contexts without a target read as effectively infinite so distance-gated
// considerations score them out.
type DistanceToTargetInput struct{}

func (DistanceToTargetInput) Evaluate(_ ports.Brain, ctx *decision.Context, _ decision.ParamMap) float64 {
	if ctx.Target == nil {
		return math.MaxFloat64
	}
	return math.Sqrt(ctx.Self.Position().DistSq(ctx.Target.Position()))
}

// DistanceToLocationInput reports the distance from self to the context
// location.
type DistanceToLocationInput struct{}

func (DistanceToLocationInput) Evaluate(_ ports.Brain, ctx *decision.Context, _ decision.ParamMap) float64 {
	return math.Sqrt(ctx.Self.Position().DistSq(ctx.Location))
}

// StatInput reads a named stat from the world agent behind self. The stat
// name comes from the "stat" parameter, or falls back to Name.
type StatInput struct {
	World *world.World
	Name  string
}

func (s StatInput) Evaluate(_ ports.Brain, ctx *decision.Context, params decision.ParamMap) float64 {
	name := s.Name
	if p, ok := params["stat"]; ok && p.Kind == decision.ParamTag {
		name = p.TagValue.String()
	}
	a, ok := s.World.Agent(ctx.Self.ActorID())
	if !ok {
		return 0
	}
	return a.Stat(name)
}

// TargetStatInput reads a named stat from the context target.
type TargetStatInput struct {
	World *world.World
	Name  string
}

func (s TargetStatInput) Evaluate(_ ports.Brain, ctx *decision.Context, params decision.ParamMap) float64 {
	if ctx.Target == nil {
		return 0
	}
	name := s.Name
	if p, ok := params["stat"]; ok && p.Kind == decision.ParamTag {
		name = p.TagValue.String()
	}
	a, ok := s.World.Agent(ctx.Target.ActorID())
	if !ok {
		return 0
	}
	return a.Stat(name)
}

// NamedValueInput reads a float named value exported into the context by a
// query; the slot name comes from the "name" parameter.
type NamedValueInput struct {
	Name string
}

func (n NamedValueInput) Evaluate(_ ports.Brain, ctx *decision.Context, params decision.ParamMap) float64 {
	name := n.Name
	if p, ok := params["name"]; ok && p.Kind == decision.ParamTag {
		name = p.TagValue.String()
	}
	if v, ok := ctx.NamedValues[name]; ok {
		return v.Float()
	}
	return 0
}

// TimeSinceActionInput reports seconds since the tagged action last finished,
// letting considerations gate on their own recency. The tag comes from the
// "action" parameter.
type TimeSinceActionInput struct{}

func (TimeSinceActionInput) Evaluate(b ports.Brain, _ *decision.Context, params decision.ParamMap) float64 {
	p, ok := params["action"]
	if !ok || p.Kind != decision.ParamTag {
		return math.MaxFloat64
	}
	return b.TimeSinceActionPerformed(p.TagValue).Seconds()
}

package providers

import (
	"instinct/internal/adapter/world"
	"instinct/internal/app/ports"
	"instinct/internal/app/registry"
)

// RegisterDefaults wires the built-in world providers under their canonical
// tags. Stats referenced by "param.stat.*" bookends must be registered
// separately per stat name.
func RegisterDefaults(r *registry.Registry, w *world.World, t *Ticker) {
	r.RegisterInput("input.distance.target", DistanceToTargetInput{})
	r.RegisterInput("input.distance.location", DistanceToLocationInput{})
	r.RegisterInput("input.stat", StatInput{World: w})
	r.RegisterInput("input.stat.target", TargetStatInput{World: w})
	r.RegisterInput("input.named", NamedValueInput{})
	r.RegisterInput("input.time_since_action", TimeSinceActionInput{})

	r.RegisterQuery("query.targets.in_range", NewTargetsInRangeQuery(w))
	r.RegisterQuery("query.locations.around_target", NavPointsAroundTargetQuery{Radius: 100, Count: 4})
	r.RegisterQuery("query.named.threat", ThreatLevelQuery{World: w})

	r.RegisterAction("action.wait", func() ports.Action { return NewWaitAction(t) })
	r.RegisterAction("action.move_to", func() ports.Action { return NewMoveToLocationAction(w, t) })
}

// RegisterStatParameter exposes one agent stat as an auto parameter under
// "param.stat.<name>".
func RegisterStatParameter(r *registry.Registry, w *world.World, name string) {
	r.RegisterParameter(paramStatTag(name), StatParameterProvider{World: w, Name: name})
	r.RegisterInput(inputStatTag(name), StatInput{World: w, Name: name})
}

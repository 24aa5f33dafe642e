package decision

import (
	"fmt"
	"sort"
	"strings"
)

// Actor is anything that can appear as a context's self or target. Concrete
// implementations live outside the engine; providers are handed actors and
// interrogate them through this surface.
type Actor interface {
	ActorID() string
	Position() Vector
	HasTag(t Tag) bool
}

// DefaultLocationToleranceSq is the squared distance within which two context
// locations count as the same place.
const DefaultLocationToleranceSq = 900.0

type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueFloat
	ValueInt
	ValueTag
	ValueActor
	ValueLocation
)

// ContextValue is the union of everything a query can export into a context
// slot: the Param literals plus actors and locations.
type ContextValue struct {
	Kind       ValueKind
	FloatValue float64
	IntValue   int
	TagValue   Tag
	Actor      Actor
	Location   Vector
}

func FloatValue(v float64) ContextValue {
	return ContextValue{Kind: ValueFloat, FloatValue: v}
}

func IntValue(v int) ContextValue {
	return ContextValue{Kind: ValueInt, IntValue: v}
}

func TagValue(t Tag) ContextValue {
	return ContextValue{Kind: ValueTag, TagValue: t}
}

func ActorValue(a Actor) ContextValue {
	return ContextValue{Kind: ValueActor, Actor: a}
}

func LocationValue(v Vector) ContextValue {
	return ContextValue{Kind: ValueLocation, Location: v}
}

func (v ContextValue) Float() float64 {
	switch v.Kind {
	case ValueFloat:
		return v.FloatValue
	case ValueInt:
		return float64(v.IntValue)
	default:
		return 0
	}
}

func (v ContextValue) Equal(o ContextValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueFloat:
		return v.FloatValue == o.FloatValue
	case ValueInt:
		return v.IntValue == o.IntValue
	case ValueTag:
		return v.TagValue == o.TagValue
	case ValueActor:
		return sameActor(v.Actor, o.Actor)
	case ValueLocation:
		return v.Location == o.Location
	default:
		return true
	}
}

func (v ContextValue) String() string {
	switch v.Kind {
	case ValueFloat:
		return fmt.Sprintf("%.3f", v.FloatValue)
	case ValueInt:
		return fmt.Sprintf("%d", v.IntValue)
	case ValueTag:
		return v.TagValue.String()
	case ValueActor:
		if v.Actor == nil {
			return "<nil actor>"
		}
		return v.Actor.ActorID()
	case ValueLocation:
		return v.Location.String()
	default:
		return "<none>"
	}
}

func sameActor(a, b Actor) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ActorID() == b.ActorID()
}

// Context is the evaluation environment for one (action, candidate) pair.
// Self is always present; the remaining slots are filled by queries.
type Context struct {
	Self        Actor
	Target      Actor
	Location    Vector
	NamedValues map[string]ContextValue
}

func (c Context) Clone() Context {
	out := c
	if c.NamedValues != nil {
		out.NamedValues = make(map[string]ContextValue, len(c.NamedValues))
		for k, v := range c.NamedValues {
			out.NamedValues[k] = v
		}
	}
	return out
}

func (c *Context) SetNamedValue(name string, v ContextValue) {
	if c.NamedValues == nil {
		c.NamedValues = make(map[string]ContextValue, 1)
	}
	c.NamedValues[name] = v
}

// SameAs reports whether two contexts describe the same candidate: same self,
// same target by identity, locations within tolerance, and elementwise equal
// named values.
func (c Context) SameAs(o Context, locToleranceSq float64) bool {
	if locToleranceSq <= 0 {
		locToleranceSq = DefaultLocationToleranceSq
	}
	if !sameActor(c.Self, o.Self) {
		return false
	}
	if !sameActor(c.Target, o.Target) {
		return false
	}
	if c.Location.DistSq(o.Location) > locToleranceSq {
		return false
	}
	if len(c.NamedValues) != len(o.NamedValues) {
		return false
	}
	for k, v := range c.NamedValues {
		ov, ok := o.NamedValues[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func (c Context) String() string {
	var b strings.Builder
	if c.Self != nil {
		fmt.Fprintf(&b, "self=%s", c.Self.ActorID())
	}
	if c.Target != nil {
		fmt.Fprintf(&b, " target=%s", c.Target.ActorID())
	}
	if !c.Location.IsZero() {
		fmt.Fprintf(&b, " location=%s", c.Location)
	}
	if len(c.NamedValues) > 0 {
		keys := make([]string, 0, len(c.NamedValues))
		for k := range c.NamedValues {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s", k, c.NamedValues[k])
		}
	}
	return b.String()
}

package decision

import "testing"

type testActor struct {
	id   string
	pos  Vector
	tags map[Tag]bool
}

func (a *testActor) ActorID() string  { return a.id }
func (a *testActor) Position() Vector { return a.pos }
func (a *testActor) HasTag(t Tag) bool {
	return a.tags[t]
}

func TestContextSameAs(t *testing.T) {
	self := &testActor{id: "self"}
	t1 := &testActor{id: "t1"}
	t2 := &testActor{id: "t2"}

	base := Context{Self: self, Target: t1, Location: Vector{X: 10}}

	same := Context{Self: self, Target: t1, Location: Vector{X: 10 + 29}}
	if !base.SameAs(same, 0) {
		t.Fatalf("locations within tolerance should compare same")
	}

	far := Context{Self: self, Target: t1, Location: Vector{X: 10 + 31}}
	if base.SameAs(far, 0) {
		t.Fatalf("locations outside tolerance should differ")
	}

	otherTarget := Context{Self: self, Target: t2, Location: Vector{X: 10}}
	if base.SameAs(otherTarget, 0) {
		t.Fatalf("different targets should differ")
	}
}

func TestContextSameAsNamedValues(t *testing.T) {
	self := &testActor{id: "self"}
	a := Context{Self: self}
	a.SetNamedValue("threat", FloatValue(3))
	b := Context{Self: self}
	b.SetNamedValue("threat", FloatValue(3))
	if !a.SameAs(b, 0) {
		t.Fatalf("equal named values should compare same")
	}
	b.SetNamedValue("threat", FloatValue(4))
	if a.SameAs(b, 0) {
		t.Fatalf("differing named values should differ")
	}
	b.SetNamedValue("threat", FloatValue(3))
	b.SetNamedValue("extra", IntValue(1))
	if a.SameAs(b, 0) {
		t.Fatalf("extra named values should differ")
	}
}

func TestContextClone(t *testing.T) {
	self := &testActor{id: "self"}
	orig := Context{Self: self}
	orig.SetNamedValue("k", FloatValue(1))

	cl := orig.Clone()
	cl.SetNamedValue("k", FloatValue(2))

	if got := orig.NamedValues["k"].FloatValue; got != 1 {
		t.Fatalf("clone mutation leaked into original: %v", got)
	}
}

package pool

import (
	"testing"

	"instinct/internal/app/ports"
	"instinct/internal/domain/decision"
)

type poolTestAction struct {
	resets int
}

func (a *poolTestAction) Init(ports.ActionInit)                                  {}
func (a *poolTestAction) Perform(*decision.Context, decision.ParamMap, decision.Tag) {}
func (a *poolTestAction) Continue(*decision.Context, decision.ParamMap)          {}
func (a *poolTestAction) Cancel(decision.Tag)                                    {}
func (a *poolTestAction) CanBeInterrupted() bool                                 { return true }
func (a *poolTestAction) InterruptionsFromHigherPriorityOnly() bool              { return false }
func (a *poolTestAction) Reset()                                                 { a.resets++ }

func TestBorrowContextsClearedOnAcquire(t *testing.T) {
	p := New()

	s, release := p.BorrowContexts()
	*s = append(*s, decision.Context{})
	release()

	s2, release2 := p.BorrowContexts()
	defer release2()
	if len(*s2) != 0 {
		t.Fatalf("expected cleared slice, got len %d", len(*s2))
	}
}

func TestBorrowParamsClearedOnAcquire(t *testing.T) {
	p := New()

	m, release := p.BorrowParams()
	m["stale"] = decision.FloatParam(1)
	release()

	m2, release2 := p.BorrowParams()
	defer release2()
	if len(m2) != 0 {
		t.Fatalf("expected cleared map, got len %d", len(m2))
	}
}

func TestReserveActionReusesReleasedInstance(t *testing.T) {
	p := New()
	tag := decision.Tag("action.wait")
	made := 0
	factory := func() ports.Action {
		made++
		return &poolTestAction{}
	}

	a := p.ReserveAction(tag, factory)
	p.ReleaseAction(tag, a)
	b := p.ReserveAction(tag, factory)

	if made != 1 {
		t.Fatalf("expected 1 construction, got %d", made)
	}
	if a != b {
		t.Fatalf("expected pooled instance to be reused")
	}
	if b.(*poolTestAction).resets == 0 {
		t.Fatalf("expected Reset before reuse")
	}
}

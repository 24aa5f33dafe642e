package registry

import (
	"testing"

	"github.com/rs/zerolog"

	"instinct/internal/app/ports"
	"instinct/internal/domain/decision"
)

type stubInput struct{ value float64 }

func (s stubInput) Evaluate(ports.Brain, *decision.Context, decision.ParamMap) float64 {
	return s.value
}

func TestRegisterInputRejectsInvalidTag(t *testing.T) {
	r := New(zerolog.Nop())
	if err := r.RegisterInput("", stubInput{}); err != ports.ErrInvalidTag {
		t.Fatalf("expected ErrInvalidTag, got %v", err)
	}
}

func TestRegisterOverwriteKeepsLastWrite(t *testing.T) {
	r := New(zerolog.Nop())
	if err := r.RegisterInput("input.health", stubInput{value: 1}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.RegisterInput("input.health", stubInput{value: 2}); err != nil {
		t.Fatalf("second register: %v", err)
	}
	p, ok := r.Input("input.health")
	if !ok {
		t.Fatalf("provider missing after overwrite")
	}
	if got := p.Evaluate(nil, &decision.Context{}, nil); got != 2 {
		t.Fatalf("expected last write to win, got %v", got)
	}
}

func TestActionEnableDisable(t *testing.T) {
	r := New(zerolog.Nop())
	tag := decision.Tag("action.idle")
	if !r.ActionEnabled(tag) {
		t.Fatalf("actions should default to enabled")
	}
	r.SetActionEnabled(tag, false)
	if r.ActionEnabled(tag) {
		t.Fatalf("action should be disabled")
	}
	r.SetActionEnabled(tag, true)
	if !r.ActionEnabled(tag) {
		t.Fatalf("action should be re-enabled")
	}
}

func TestActionSetCopyIsImmutable(t *testing.T) {
	r := New(zerolog.Nop())
	defs := []decision.ActionDef{{ActionTag: "action.idle", Weight: 1}}
	r.RegisterActionSet("base", defs)
	defs[0].Weight = 99

	got, ok := r.ActionSet("base")
	if !ok {
		t.Fatalf("action set missing")
	}
	if got[0].Weight != 1 {
		t.Fatalf("action set should be copied at registration, got weight %v", got[0].Weight)
	}
}

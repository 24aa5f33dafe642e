package httpadapter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route/param"
	"github.com/rs/zerolog"

	"instinct/internal/adapter/repo/memory"
	"instinct/internal/app/brain"
	"instinct/internal/app/pool"
	"instinct/internal/app/ports"
	"instinct/internal/app/registry"
	"instinct/internal/domain/decision"
)

type handlerTestActor struct{ id string }

func (a handlerTestActor) ActorID() string           { return a.id }
func (a handlerTestActor) Position() decision.Vector { return decision.Vector{} }
func (a handlerTestActor) HasTag(decision.Tag) bool  { return false }

func newHandlerBrain(id string) *brain.Brain {
	b := brain.New(brain.Options{
		AgentID:  id,
		Self:     handlerTestActor{id: id},
		Registry: registry.New(zerolog.Nop()),
		Pool:     pool.New(),
		Log:      zerolog.Nop(),
	})
	b.SetConfig(decision.BrainConfig{})
	return b
}

func TestBrainSummaryUnknownAgent(t *testing.T) {
	h := Handler{Brains: map[string]*brain.Brain{}}
	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "agent_id", Value: "ghost"}}

	h.brainSummary(context.Background(), ctx)

	if got := ctx.Response.StatusCode(); got != consts.StatusNotFound {
		t.Fatalf("expected 404, got %d", got)
	}
}

func TestListBrainsSortedByAgentID(t *testing.T) {
	h := Handler{Brains: map[string]*brain.Brain{
		"zeta":  newHandlerBrain("zeta"),
		"alpha": newHandlerBrain("alpha"),
	}}
	ctx := &app.RequestContext{}

	h.listBrains(context.Background(), ctx)

	var out []brain.Summary
	if err := json.Unmarshal(ctx.Response.Body(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 || out[0].AgentID != "alpha" || out[1].AgentID != "zeta" {
		t.Fatalf("expected sorted summaries, got %v", out)
	}
}

func TestDecisionsEndpointReturnsTail(t *testing.T) {
	log := memory.NewDecisionLog(10)
	log.Append(context.Background(), ports.DecisionRecord{ID: "r1", AgentID: "a", ActionTag: "action.wait", Event: ports.DecisionStarted})

	h := Handler{Decisions: log}
	ctx := &app.RequestContext{}

	h.decisions(context.Background(), ctx)

	var out []decisionRecordDTO
	if err := json.Unmarshal(ctx.Response.Body(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].ID != "r1" || out[0].ActionTag != "action.wait" {
		t.Fatalf("unexpected decisions payload: %v", out)
	}
}

func TestMetricsNotConfigured(t *testing.T) {
	h := Handler{}
	ctx := &app.RequestContext{}

	h.metrics(context.Background(), ctx)

	if got := ctx.Response.StatusCode(); got != consts.StatusNotFound {
		t.Fatalf("expected 404 when metrics not configured, got %d", got)
	}
}

package httpadapter

import (
	"context"
	"sort"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"instinct/internal/app/brain"
	"instinct/internal/app/ports"
)

// Handler exposes the simulation's debug surface over HTTP: per-brain
// summaries, engine metrics and the decision log.
type Handler struct {
	Brains    map[string]*brain.Brain
	Decisions ports.DecisionLog
	Metrics   metricsSnapshotProvider
}

type metricsSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())
	s.GET("/healthz", h.health)

	api := s.Group("/api")
	api.GET("/brains", h.listBrains)
	api.GET("/brains/:agent_id", h.brainSummary)
	api.GET("/decisions", h.decisions)

	s.GET("/ops/metrics", h.metrics)
}

func (h Handler) health(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

func (h Handler) listBrains(_ context.Context, ctx *app.RequestContext) {
	out := make([]brain.Summary, 0, len(h.Brains))
	for _, b := range h.Brains {
		out = append(out, b.Summarize())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
	ctx.JSON(consts.StatusOK, out)
}

func (h Handler) brainSummary(_ context.Context, ctx *app.RequestContext) {
	id := ctx.Param("agent_id")
	b, ok := h.Brains[id]
	if !ok {
		writeErrorBody(ctx, consts.StatusNotFound, "unknown_agent", "unknown agent")
		return
	}
	ctx.JSON(consts.StatusOK, b.Summarize())
}

func (h Handler) decisions(c context.Context, ctx *app.RequestContext) {
	if h.Decisions == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "decision log not configured")
		return
	}
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	recs, err := h.Decisions.Tail(c, limit)
	if err != nil {
		writeErrorBody(ctx, consts.StatusInternalServerError, "decision_log_error", err.Error())
		return
	}
	out := make([]decisionRecordDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, decisionRecordDTO{
			ID:        rec.ID,
			AgentID:   rec.AgentID,
			ActionTag: rec.ActionTag.String(),
			Event:     rec.Event,
			Score:     rec.Score,
			Context:   rec.Context,
			AtUnixMs:  rec.At.UnixMilli(),
		})
	}
	ctx.JSON(consts.StatusOK, out)
}

func (h Handler) metrics(_ context.Context, ctx *app.RequestContext) {
	if h.Metrics == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "metrics recorder not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.Metrics.SnapshotAny())
}

type decisionRecordDTO struct {
	ID        string  `json:"id"`
	AgentID   string  `json:"agent_id"`
	ActionTag string  `json:"action_tag"`
	Event     string  `json:"event"`
	Score     float64 `json:"score"`
	Context   string  `json:"context,omitempty"`
	AtUnixMs  int64   `json:"at_unix_ms"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, errorBody{Code: code, Message: message})
}

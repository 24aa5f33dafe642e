package main

import (
	"os"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/rs/zerolog"

	configadapter "instinct/internal/adapter/config"
	httpadapter "instinct/internal/adapter/http"
	metricsinmem "instinct/internal/adapter/metrics/inmemory"
	"instinct/internal/adapter/providers"
	gormrepo "instinct/internal/adapter/repo/gorm"
	memoryrepo "instinct/internal/adapter/repo/memory"
	sqliterepo "instinct/internal/adapter/repo/sqlite"
	worldadapter "instinct/internal/adapter/world"
	"instinct/internal/app/brain"
	"instinct/internal/app/pool"
	"instinct/internal/app/ports"
	"instinct/internal/app/registry"
	"instinct/internal/app/scheduler"
	"instinct/internal/domain/decision"
	"instinct/internal/transport/stream"
)

const tickInterval = 100 * time.Millisecond

func main() {
	log := buildLogger()

	cfg := loadConfig(log)
	w := worldadapter.New()
	reg := registry.New(log)
	buffers := pool.New()
	ticker := providers.NewTicker()
	metrics := metricsinmem.NewRecorder()

	providers.RegisterDefaults(reg, w, ticker)
	providers.RegisterStatParameter(reg, w, "health")
	providers.RegisterStatParameter(reg, w, "energy")
	for name, defs := range cfg.Sets() {
		reg.RegisterActionSet(name, defs)
	}

	decisions := stream.NewHub(buildDecisionLog(log), log)

	sched := scheduler.New(scheduler.Options{
		Budget: cfg.TickBudget(),
		Log:    log,
	})

	// A single observer at the origin; agents fan out around it so the
	// proximity tiers are exercised.
	w.Spawn(worldadapter.AgentSpec{ID: "observer", Player: true})

	tiers := cfg.TierSettings()
	brains := make(map[string]*brain.Brain)
	for agentID, brainCfg := range cfg.BrainConfigs() {
		agent := w.Spawn(worldadapter.AgentSpec{
			ID:    agentID,
			Pos:   decision.Vector{X: float64(100 * (len(brains) + 1))},
			Stats: map[string]float64{"health": 100, "energy": 100},
		})
		b := brain.New(brain.Options{
			AgentID:   agentID,
			Self:      agent,
			Registry:  reg,
			Pool:      buffers,
			Queue:     sched,
			Players:   w,
			Metrics:   metrics,
			Decisions: decisions,
			Tiers:     tiers,
			Log:       log,
		})
		b.SetConfig(brainCfg)
		sched.Register(b)
		w.OnTagsChanged(agentID, b.NotifyTagsChanged)
		w.OnPerceptionChanged(b.NotifyPerceptionChanged)
		brains[agentID] = b
		b.StartLogic()
	}
	if len(brains) == 0 {
		log.Fatal().Msg("config defines no brains")
	}

	go runSimLoop(sched, ticker)

	streamAddr := envOr("INSTINCT_STREAM_ADDR", ":8081")
	go func() {
		log.Info().Str("addr", streamAddr).Msg("decision stream listening")
		if err := decisions.ListenAndServe(streamAddr); err != nil {
			log.Error().Err(err).Msg("decision stream server stopped")
		}
	}()

	h := httpadapter.Handler{
		Brains:    brains,
		Decisions: decisions,
		Metrics:   metrics,
	}
	addr := envOr("INSTINCT_HTTP_ADDR", ":8080")
	s := server.Default(server.WithHostPorts(addr))
	h.RegisterRoutes(s)

	log.Info().Str("addr", addr).Int("brains", len(brains)).Msg("instinct server listening")
	s.Spin()
}

func runSimLoop(sched *scheduler.WorldScheduler, ticker *providers.Ticker) {
	t := time.NewTicker(tickInterval)
	defer t.Stop()
	last := time.Now()
	for now := range t.C {
		dt := now.Sub(last)
		last = now
		sched.Advance(dt)
		ticker.Advance(dt)
		sched.Tick()
	}
}

func buildLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		if parsed, err := zerolog.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func loadConfig(log zerolog.Logger) configadapter.Config {
	path := strings.TrimSpace(os.Getenv("INSTINCT_CONFIG"))
	if path == "" {
		cfg, err := configadapter.Parse([]byte(demoConfig))
		if err != nil {
			log.Fatal().Err(err).Msg("parse built-in demo config")
		}
		log.Info().Msg("INSTINCT_CONFIG not set, using built-in demo config")
		return cfg
	}
	cfg, err := configadapter.Load(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("load config")
	}
	return cfg
}

// buildDecisionLog picks postgres, sqlite or memory depending on environment,
// in that order.
func buildDecisionLog(log zerolog.Logger) ports.DecisionLog {
	if dsn := strings.TrimSpace(os.Getenv("INSTINCT_DB_DSN")); dsn != "" {
		db, err := gormrepo.OpenPostgres(dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("open postgres decision log")
		}
		if err := gormrepo.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrate decision log")
		}
		return gormrepo.NewDecisionLog(db)
	}
	if path := strings.TrimSpace(os.Getenv("INSTINCT_SQLITE_PATH")); path != "" {
		l, err := sqliterepo.Open(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("open sqlite decision log")
		}
		return l
	}
	return memoryrepo.NewDecisionLog(4096)
}

func envOr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// demoConfig drives a small pack of agents hunting and resting around the
// observer when no config file is provided.
const demoConfig = `
tiers:
  near_max_distance: 1500
  mid_max_distance: 3000
  far_max_distance: 6000
  near_interval_seconds: 1
  mid_interval_seconds: 2
  far_interval_seconds: 5
  out_of_range_interval_seconds: 10
scheduler:
  tick_budget_ms: 5
action_sets:
  - name: base
    actions:
      - action_tag: action.wait
        description: idle when nothing better to do
        priority: 10
        weight: 0.1
        action_params:
          seconds: 2
brains:
  - agent_id: wolf-1
    action_sets: [base]
    actions:
      - action_tag: action.move_to
        description: close in on the nearest intruder
        priority: 0
        weight: 1
        inertia: 0.3
        repetition_penalty: 0.2
        repetition_penalty_cooldown: 10
        score_cooldown_time: 5
        queries:
          - query_tag: query.targets.in_range
            max_frequency: 2
            params:
              radius: 800
          - query_tag: query.locations.around_target
            params:
              radius: 50
        considerations:
          - input_tag: input.distance.location
            description: prefer nearby approach points
            bookend_min: 0
            bookend_max: 900
            curve:
              type: linear
              slope: -1
              intercept: 1
        action_params:
          speed: 120
  - agent_id: wolf-2
    action_sets: [base]
    actions:
      - action_tag: action.move_to
        priority: 0
        weight: 1
        inertia: 0.3
        queries:
          - query_tag: query.targets.in_range
            max_frequency: 2
            params:
              radius: 800
          - query_tag: query.locations.around_target
            params:
              radius: 50
        considerations:
          - input_tag: input.distance.location
            bookend_min: 0
            bookend_max: 900
            curve:
              type: linear
              slope: -1
              intercept: 1
        action_params:
          speed: 100
`

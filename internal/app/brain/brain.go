package brain

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"instinct/internal/app/pool"
	"instinct/internal/app/ports"
	"instinct/internal/app/registry"
	"instinct/internal/domain/decision"
)

// Scores below this are treated as zero.
const scoreEpsilon = 1e-4

func nearlyZero(v float64) bool {
	return v > -scoreEpsilon && v < scoreEpsilon
}

// UpdateQueue admits brains into the world update queue. Implemented by
// scheduler.WorldScheduler.
type UpdateQueue interface {
	QueueBrainUpdate(b *Brain)
}

// Candidate is one scored (action, context) pair.
type Candidate struct {
	Index   int
	Context decision.Context
	Score   float64
}

// Options wires a brain to its collaborators. Registry and Pool are required;
// everything else has a usable default.
type Options struct {
	AgentID  string
	Self     decision.Actor
	Registry *registry.Registry
	Pool     *pool.Pool

	Queue     UpdateQueue
	Players   ports.PlayerLocator
	Metrics   ports.BrainMetrics
	Decisions ports.DecisionLog
	Tiers     TierSettings
	Log       zerolog.Logger

	// Now and Rand exist for tests; nil selects time.Now and a time-seeded
	// source.
	Now  func() time.Time
	Rand *rand.Rand
	// HasAuthority gates updates; nil means always authoritative.
	HasAuthority func() bool
}

// Brain owns one agent's decision state: the combined action catalogue, the
// per-action history, and the currently running action instance borrowed from
// the pool. All brain methods run on the simulation executor; none are safe
// for concurrent use on the same brain.
type Brain struct {
	id   string
	self decision.Actor
	log  zerolog.Logger

	cfg  decision.BrainConfig
	reg  *registry.Registry
	pool *pool.Pool

	queue     UpdateQueue
	players   ports.PlayerLocator
	metrics   ports.BrainMetrics
	decisions ports.DecisionLog
	tiers     TierSettings

	now          func() time.Time
	rng          *rand.Rand
	hasAuthority func() bool

	actions    []decision.ActionDef
	history    []HistoryEntry
	candidates []Candidate

	current         Candidate
	currentInstance ports.Action

	queued        bool
	wasPrevented  bool
	stopped       bool
	stoppedReason string
	paused        bool

	tier           Tier
	updateInterval time.Duration
	timerRemaining time.Duration
	locToleranceSq float64
}

func New(opts Options) *Brain {
	b := &Brain{
		id:           opts.AgentID,
		self:         opts.Self,
		log:          opts.Log.With().Str("agent", opts.AgentID).Logger(),
		reg:          opts.Registry,
		pool:         opts.Pool,
		queue:        opts.Queue,
		players:      opts.Players,
		metrics:      opts.Metrics,
		decisions:    opts.Decisions,
		tiers:        opts.Tiers,
		now:          opts.Now,
		rng:          opts.Rand,
		hasAuthority: opts.HasAuthority,
		stopped:      true,
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if b.tiers == (TierSettings{}) {
		b.tiers = DefaultTierSettings()
	}
	b.current = Candidate{Index: -1}
	return b
}

func (b *Brain) AgentID() string         { return b.id }
func (b *Brain) Self() decision.Actor    { return b.self }
func (b *Brain) Now() time.Time          { return b.now() }
func (b *Brain) Tier() Tier              { return b.tier }
func (b *Brain) IsStopped() bool         { return b.stopped }
func (b *Brain) IsPaused() bool          { return b.paused }
func (b *Brain) UpdateIntervalSeconds() float64 {
	return b.updateInterval.Seconds()
}

// SetConfig installs a new brain configuration and rebuilds the catalogue and
// history. Any running action is cancelled: catalogue indexes identify actions
// in history and current-action state, and a rebuild invalidates them.
func (b *Brain) SetConfig(cfg decision.BrainConfig) {
	b.cancelCurrentAction("")
	b.cfg = cfg
	b.locToleranceSq = cfg.SameActionLocationToleranceSq
	if b.locToleranceSq <= 0 {
		b.locToleranceSq = decision.DefaultLocationToleranceSq
	}
	b.rebuildCatalogue()
}

// StartLogic arms the brain: computes its proximity tier, arms the update
// timer, and queues an immediate first update.
func (b *Brain) StartLogic() {
	b.stopped = false
	b.paused = false
	b.stoppedReason = ""
	b.updateTier()
	b.QueueForUpdate()
}

// StopLogic is terminal until StartLogic is called again; the current action
// is cancelled. A queued update may still be pending, which Update detects.
func (b *Brain) StopLogic(reason string) {
	b.stopped = true
	b.stoppedReason = reason
	b.cancelCurrentAction("")
}

// PauseLogic pauses the update timer and cancels the current action.
func (b *Brain) PauseLogic(reason string) {
	b.paused = true
	b.stoppedReason = reason
	b.cancelCurrentAction("")
}

func (b *Brain) ResumeLogic() {
	b.paused = false
	b.stoppedReason = ""
}

// RestartLogic cancels the current action and re-tiers without touching
// history.
func (b *Brain) RestartLogic() {
	b.cancelCurrentAction("")
	b.stopped = false
	b.paused = false
	b.stoppedReason = ""
	b.updateTier()
}

// QueueForUpdate asks the world scheduler for an update slot. Enqueuing is
// idempotent per brain. While any prevent-update tag is present on self the
// request is remembered instead, and NotifyTagsChanged replays it once the
// blocking tags clear.
func (b *Brain) QueueForUpdate() {
	if b.queued || b.queue == nil {
		return
	}
	if b.updatePrevented() {
		b.wasPrevented = true
		return
	}
	b.queue.QueueBrainUpdate(b)
	b.queued = true
	b.wasPrevented = false
}

func (b *Brain) updatePrevented() bool {
	for _, tag := range b.cfg.PreventUpdateTags {
		if b.self.HasTag(tag) {
			return true
		}
	}
	return false
}

// NotifyTagsChanged must be called when self's gameplay tags change; it
// replays an update request that was swallowed while prevented.
func (b *Brain) NotifyTagsChanged() {
	if b.wasPrevented {
		b.QueueForUpdate()
	}
}

// NotifyPerceptionChanged enqueues an update on perception changes when the
// tuning asks for it. Out-of-range agents stay quiet.
func (b *Brain) NotifyPerceptionChanged() {
	if b.tiers.UpdateOnPerceptionChanges && b.tier != TierOutOfRange {
		b.QueueForUpdate()
	}
}

// Advance drives the brain's background timer. Each expiry decays scores and
// penalties, recomputes the proximity tier and, unless out of range, requests
// an update.
func (b *Brain) Advance(dt time.Duration) {
	if b.stopped || b.paused {
		return
	}
	if b.updateInterval <= 0 {
		b.updateTier()
	}
	b.timerRemaining -= dt
	for b.timerRemaining <= 0 {
		prevInterval := b.updateInterval
		b.updateScoreAdjustments(prevInterval.Seconds())
		b.updateTier()
		if b.tier != TierOutOfRange {
			b.QueueForUpdate()
		}
		if b.updateInterval != prevInterval {
			// Tier change re-armed the timer with a fresh random phase.
			break
		}
		if b.updateInterval <= 0 {
			return
		}
		b.timerRemaining += b.updateInterval
	}
}

func (b *Brain) inProgress() bool {
	return b.currentInstance != nil
}

// IsActionInProgress reports whether an action instance is currently running.
func (b *Brain) IsActionInProgress() bool {
	return b.inProgress()
}

// CurrentActionTag returns the running action's tag, or "" when idle.
func (b *Brain) CurrentActionTag() decision.Tag {
	if !b.inProgress() {
		return ""
	}
	return b.actions[b.current.Index].ActionTag
}

// CurrentScore returns the live (decaying) score of the running action.
func (b *Brain) CurrentScore() float64 {
	if !b.inProgress() {
		return 0
	}
	return b.current.Score
}

func (b *Brain) logDecision(event string, tag decision.Tag, score float64, ctx *decision.Context) {
	if b.decisions == nil {
		return
	}
	rec := ports.DecisionRecord{
		ID:        uuid.NewString(),
		AgentID:   b.id,
		ActionTag: tag,
		Event:     event,
		Score:     score,
		At:        b.now(),
	}
	if ctx != nil {
		rec.Context = ctx.String()
	}
	if err := b.decisions.Append(context.Background(), rec); err != nil {
		b.log.Warn().Err(err).Str("action", tag.String()).Msg("decision log append failed")
	}
}

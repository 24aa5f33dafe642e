package brain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"instinct/internal/app/pool"
	"instinct/internal/app/ports"
	"instinct/internal/app/registry"
	"instinct/internal/domain/decision"
)

type fakeLocator struct {
	positions []decision.Vector
}

func (f *fakeLocator) PlayerPositions() []decision.Vector { return f.positions }

func newTierBrain(self *stubActor, loc *fakeLocator, queue *fakeQueue) *Brain {
	// A nil loc means no locator at all, not a nil *fakeLocator inside a
	// non-nil interface.
	var players ports.PlayerLocator
	if loc != nil {
		players = loc
	}
	b := New(Options{
		AgentID:  self.id,
		Self:     self,
		Registry: registry.New(zerolog.Nop()),
		Pool:     pool.New(),
		Queue:    queue,
		Players:  players,
		Tiers: TierSettings{
			NearMaxDistance:    100,
			MidMaxDistance:     200,
			FarMaxDistance:     400,
			NearInterval:       time.Second,
			MidInterval:        2 * time.Second,
			FarInterval:        4 * time.Second,
			OutOfRangeInterval: 8 * time.Second,
		},
		Log:  zerolog.Nop(),
		Rand: rand.New(rand.NewSource(7)),
	})
	b.SetConfig(decision.BrainConfig{ActionDefs: []decision.ActionDef{simpleDef("action.idle", 0, 1)}})
	return b
}

func TestTierUsesNearestPlayer(t *testing.T) {
	self := &stubActor{id: "agent"}
	loc := &fakeLocator{positions: []decision.Vector{{X: 1000}, {X: 50}}}
	b := newTierBrain(self, loc, &fakeQueue{})

	b.StartLogic()

	if b.Tier() != TierNear {
		t.Fatalf("nearest player at 50 should give near tier, got %v", b.Tier())
	}
	if b.updateInterval != time.Second {
		t.Fatalf("near tier interval expected, got %v", b.updateInterval)
	}
}

func TestTierTransitionsResetTimerWithRandomPhase(t *testing.T) {
	self := &stubActor{id: "agent"}
	loc := &fakeLocator{positions: []decision.Vector{{X: 50}}}
	b := newTierBrain(self, loc, &fakeQueue{})
	b.StartLogic()

	loc.positions = []decision.Vector{{X: 300}}
	b.updateTier()

	if b.Tier() != TierFar {
		t.Fatalf("expected far tier at distance 300, got %v", b.Tier())
	}
	if b.updateInterval != 4*time.Second {
		t.Fatalf("far interval expected, got %v", b.updateInterval)
	}
	if b.timerRemaining < 0 || b.timerRemaining >= 4*time.Second {
		t.Fatalf("timer phase must be random in [0, interval), got %v", b.timerRemaining)
	}
}

func TestOutOfRangeKeepsCheckingButNeverQueues(t *testing.T) {
	self := &stubActor{id: "agent"}
	loc := &fakeLocator{positions: []decision.Vector{{X: 10_000}}}
	queue := &fakeQueue{}
	b := newTierBrain(self, loc, queue)
	b.StartLogic()
	// StartLogic still queues one initial update regardless of tier.
	queue.drainOne()
	b.queued = false

	for i := 0; i < 10; i++ {
		b.Advance(8 * time.Second)
	}
	if queue.len() != 0 {
		t.Fatalf("out-of-range agent must not enqueue updates, got %d", queue.len())
	}

	// The player walks back into range; the next timer expiry re-tiers and
	// the agent resumes updating.
	loc.positions = []decision.Vector{{X: 20}}
	for i := 0; i < 3; i++ {
		b.Advance(8 * time.Second)
	}
	if queue.len() == 0 {
		t.Fatalf("agent back in range should enqueue updates")
	}
}

func TestNoLocatorMeansAlwaysNear(t *testing.T) {
	self := &stubActor{id: "agent"}
	b := newTierBrain(self, nil, &fakeQueue{})
	b.StartLogic()
	if b.Tier() != TierNear {
		t.Fatalf("without a locator every agent counts as near, got %v", b.Tier())
	}
}

func TestAdvanceDecaysAndQueues(t *testing.T) {
	self := &stubActor{id: "agent"}
	loc := &fakeLocator{positions: []decision.Vector{{X: 10}}}
	queue := &fakeQueue{}
	b := newTierBrain(self, loc, queue)
	b.StartLogic()
	queue.drainOne()
	b.queued = false

	// More than one full interval must have elapsed after 2s at near tier.
	b.Advance(2 * time.Second)
	if queue.len() != 1 {
		t.Fatalf("expired timer should enqueue exactly once, got %d", queue.len())
	}

	// Queueing is idempotent until the update actually runs.
	b.Advance(2 * time.Second)
	if queue.len() != 1 {
		t.Fatalf("pending brain must not enqueue twice, got %d", queue.len())
	}
}

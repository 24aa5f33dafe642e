package scheduler

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"instinct/internal/app/brain"
)

// WorldScheduler paces brain updates across the whole simulation. Brains ask
// to be updated via QueueBrainUpdate; each Tick drains the FIFO queue under a
// wall-clock budget, carrying the remainder to the next tick. Advance drives
// every registered brain's background timer.
type WorldScheduler struct {
	mu      sync.Mutex
	log     zerolog.Logger
	budget  time.Duration
	clock   func() time.Time
	queue   []*brain.Brain
	pending map[*brain.Brain]struct{}
	brains  []*brain.Brain
}

type Options struct {
	// Budget caps how much wall-clock time one Tick may spend updating
	// brains; zero means unlimited.
	Budget time.Duration
	Log    zerolog.Logger
	// Clock exists for tests; nil selects time.Now.
	Clock func() time.Time
}

func New(opts Options) *WorldScheduler {
	s := &WorldScheduler{
		log:     opts.Log,
		budget:  opts.Budget,
		clock:   opts.Clock,
		pending: make(map[*brain.Brain]struct{}),
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// Register adds a brain to the background tick set.
func (s *WorldScheduler) Register(b *brain.Brain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brains = append(s.brains, b)
}

// QueueBrainUpdate enqueues a brain for the next Tick. Idempotent: a brain
// already pending is a no-op.
func (s *WorldScheduler) QueueBrainUpdate(b *brain.Brain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[b]; ok {
		return
	}
	s.pending[b] = struct{}{}
	s.queue = append(s.queue, b)
}

// QueueLen reports how many brains await update.
func (s *WorldScheduler) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Tick drains queued brain updates until the queue empties or the budget is
// spent. Brains left over stay queued for the next tick.
func (s *WorldScheduler) Tick() int {
	start := s.clock()
	updated := 0
	for {
		if s.budget > 0 && s.clock().Sub(start) >= s.budget && updated > 0 {
			s.log.Debug().Int("updated", updated).Int("remaining", s.QueueLen()).
				Msg("brain update budget spent, deferring remainder")
			return updated
		}
		b := s.pop()
		if b == nil {
			return updated
		}
		b.Update()
		updated++
	}
}

func (s *WorldScheduler) pop() *brain.Brain {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil
	}
	b := s.queue[0]
	s.queue = s.queue[1:]
	delete(s.pending, b)
	return b
}

// Advance moves every registered brain's update timer forward. Timers that
// expire decay scores, re-tier and re-enqueue through QueueBrainUpdate.
func (s *WorldScheduler) Advance(dt time.Duration) {
	s.mu.Lock()
	brains := make([]*brain.Brain, len(s.brains))
	copy(brains, s.brains)
	s.mu.Unlock()

	for _, b := range brains {
		b.Advance(dt)
	}
}

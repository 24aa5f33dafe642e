package pool

import (
	"sync"

	"instinct/internal/app/ports"
	"instinct/internal/domain/decision"
)

// Pool hands out reusable buffers and action instances so steady-state brain
// updates allocate nothing. Borrowed containers are cleared on acquire, not
// on release, so stale entries can never be observed.
type Pool struct {
	contexts sync.Pool
	values   sync.Pool
	params   sync.Pool

	mu      sync.Mutex
	actions map[decision.Tag][]ports.Action
}

func New() *Pool {
	return &Pool{
		contexts: sync.Pool{New: func() any {
			s := make([]decision.Context, 0, 16)
			return &s
		}},
		values: sync.Pool{New: func() any {
			s := make([]decision.ContextValue, 0, 16)
			return &s
		}},
		params: sync.Pool{New: func() any {
			return make(decision.ParamMap, 8)
		}},
		actions: make(map[decision.Tag][]ports.Action),
	}
}

// BorrowContexts returns an empty context slice and a release func. The
// release func must be called on every exit path; defer it.
func (p *Pool) BorrowContexts() (*[]decision.Context, func()) {
	s := p.contexts.Get().(*[]decision.Context)
	*s = (*s)[:0]
	return s, func() { p.contexts.Put(s) }
}

func (p *Pool) BorrowValues() (*[]decision.ContextValue, func()) {
	s := p.values.Get().(*[]decision.ContextValue)
	*s = (*s)[:0]
	return s, func() { p.values.Put(s) }
}

func (p *Pool) BorrowParams() (decision.ParamMap, func()) {
	m := p.params.Get().(decision.ParamMap)
	for k := range m {
		delete(m, k)
	}
	return m, func() { p.params.Put(m) }
}

// ReserveAction returns an idle instance for the tag, constructing one via
// the factory when none is pooled.
func (p *Pool) ReserveAction(tag decision.Tag, factory ports.ActionFactory) ports.Action {
	p.mu.Lock()
	free := p.actions[tag]
	var a ports.Action
	if n := len(free); n > 0 {
		a = free[n-1]
		p.actions[tag] = free[:n-1]
	}
	p.mu.Unlock()

	if a == nil {
		a = factory()
	}
	a.Reset()
	return a
}

// ReleaseAction returns an instance to the idle pool for its tag.
func (p *Pool) ReleaseAction(tag decision.Tag, a ports.Action) {
	if a == nil {
		return
	}
	a.Reset()
	p.mu.Lock()
	p.actions[tag] = append(p.actions[tag], a)
	p.mu.Unlock()
}

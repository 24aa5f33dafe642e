package registry

import (
	"sync"

	"github.com/rs/zerolog"

	"instinct/internal/app/ports"
	"instinct/internal/domain/decision"
)

// Registry is the process-wide table mapping tags to providers. It is
// read-mostly: all registration normally happens at init, lookups happen on
// every brain update. Re-registering a tag keeps the last write and logs it.
type Registry struct {
	mu  sync.RWMutex
	log zerolog.Logger

	inputs     map[decision.Tag]ports.InputProvider
	queries    map[decision.Tag]ports.QueryProvider
	params     map[decision.Tag]ports.ParameterProvider
	actions    map[decision.Tag]ports.ActionFactory
	actionSets map[string][]decision.ActionDef
	disabled   map[decision.Tag]struct{}
}

func New(log zerolog.Logger) *Registry {
	return &Registry{
		log:        log,
		inputs:     make(map[decision.Tag]ports.InputProvider),
		queries:    make(map[decision.Tag]ports.QueryProvider),
		params:     make(map[decision.Tag]ports.ParameterProvider),
		actions:    make(map[decision.Tag]ports.ActionFactory),
		actionSets: make(map[string][]decision.ActionDef),
		disabled:   make(map[decision.Tag]struct{}),
	}
}

func (r *Registry) RegisterInput(tag decision.Tag, p ports.InputProvider) error {
	if !tag.Valid() {
		return ports.ErrInvalidTag
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.inputs[tag]; exists {
		r.log.Warn().Str("tag", tag.String()).Msg("input provider re-registered, keeping last")
	}
	r.inputs[tag] = p
	return nil
}

func (r *Registry) RegisterQuery(tag decision.Tag, p ports.QueryProvider) error {
	if !tag.Valid() {
		return ports.ErrInvalidTag
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.queries[tag]; exists {
		r.log.Warn().Str("tag", tag.String()).Msg("query provider re-registered, keeping last")
	}
	r.queries[tag] = p
	return nil
}

func (r *Registry) RegisterParameter(tag decision.Tag, p ports.ParameterProvider) error {
	if !tag.Valid() {
		return ports.ErrInvalidTag
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.params[tag]; exists {
		r.log.Warn().Str("tag", tag.String()).Msg("parameter provider re-registered, keeping last")
	}
	r.params[tag] = p
	return nil
}

func (r *Registry) RegisterAction(tag decision.Tag, f ports.ActionFactory) error {
	if !tag.Valid() {
		return ports.ErrInvalidTag
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[tag]; exists {
		r.log.Warn().Str("tag", tag.String()).Msg("action class re-registered, keeping last")
	}
	r.actions[tag] = f
	return nil
}

// RegisterActionSet stores a named immutable bundle of action definitions
// that brain configs can reference.
func (r *Registry) RegisterActionSet(name string, defs []decision.ActionDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actionSets[name]; exists {
		r.log.Warn().Str("set", name).Msg("action set re-registered, keeping last")
	}
	copied := make([]decision.ActionDef, len(defs))
	copy(copied, defs)
	r.actionSets[name] = copied
}

func (r *Registry) Input(tag decision.Tag) (ports.InputProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.inputs[tag]
	return p, ok
}

func (r *Registry) Query(tag decision.Tag) (ports.QueryProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.queries[tag]
	return p, ok
}

func (r *Registry) Parameter(tag decision.Tag) (ports.ParameterProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.params[tag]
	return p, ok
}

func (r *Registry) Action(tag decision.Tag) (ports.ActionFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.actions[tag]
	return f, ok
}

func (r *Registry) ActionSet(name string) ([]decision.ActionDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs, ok := r.actionSets[name]
	return defs, ok
}

// SetActionEnabled toggles a tag globally; disabled actions are skipped
// during brain iteration regardless of their scores.
func (r *Registry) SetActionEnabled(tag decision.Tag, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if enabled {
		delete(r.disabled, tag)
	} else {
		r.disabled[tag] = struct{}{}
	}
}

func (r *Registry) ActionEnabled(tag decision.Tag) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, disabled := r.disabled[tag]
	return !disabled
}

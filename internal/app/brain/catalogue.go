package brain

import (
	"sort"

	"instinct/internal/domain/decision"
)

// rebuildCatalogue collates actions from the referenced action sets plus the
// brain's own definitions, then sorts stably by ascending priority. Index
// positions are stable for the life of the configuration and identify actions
// in history and current-action state.
func (b *Brain) rebuildCatalogue() {
	b.actions = b.actions[:0]
	for _, name := range b.cfg.ActionSets {
		defs, ok := b.reg.ActionSet(name)
		if !ok {
			b.log.Warn().Str("set", name).Msg("unknown action set referenced by brain config")
			if b.metrics != nil {
				b.metrics.RecordConfigError()
			}
			continue
		}
		b.actions = append(b.actions, defs...)
	}
	b.actions = append(b.actions, b.cfg.ActionDefs...)

	sort.SliceStable(b.actions, func(i, j int) bool {
		return b.actions[i].Priority < b.actions[j].Priority
	})

	b.history = make([]HistoryEntry, len(b.actions))
	b.candidates = b.candidates[:0]
	b.current = Candidate{Index: -1}
}

// Catalogue exposes the combined, priority-sorted definitions (read only).
func (b *Brain) Catalogue() []decision.ActionDef {
	return b.actions
}

func (b *Brain) choiceMethod(priority int) (decision.ChoiceMethod, int) {
	for _, o := range b.cfg.ChoiceOverrides {
		if o.Priority == priority {
			return o.Method, o.TopN
		}
	}
	return b.cfg.DefaultChoiceMethod, b.cfg.DefaultTopN
}

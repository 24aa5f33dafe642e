package brain

import (
	"math"
	"time"

	"instinct/internal/domain/decision"
)

// HistoryEntry is the per-action bookkeeping that survives between runs.
// RepetitionPenalty is cumulative across completions and bleeds away while
// the action is not current; TempScoreAdjust always decays toward zero.
type HistoryEntry struct {
	LastStartTime time.Time
	LastEndTime   time.Time
	LastRunScore  float64
	LastContext   decision.Context

	RepetitionPenalty           float64
	TempScoreAdjust             float64
	TempScoreAdjustCooldownRate float64
}

// updateScoreAdjustments runs on every background timer tick, before the
// brain re-queues itself.
func (b *Brain) updateScoreAdjustments(dt float64) {
	// The current action's live score decays at a rate set by its last run
	// score, so a long-running choice eventually loses its grip.
	if b.inProgress() && b.current.Score > 0 {
		def := &b.actions[b.current.Index]
		if def.ScoreCooldownTime > 0 {
			h := &b.history[b.current.Index]
			decay := h.LastRunScore * (dt / def.ScoreCooldownTime)
			b.current.Score = max(b.current.Score-decay, 0)
		} else {
			b.current.Score = 0
		}
	}

	for i := range b.history {
		h := &b.history[i]
		def := &b.actions[i]
		if h.RepetitionPenalty > 0 && !(b.inProgress() && i == b.current.Index) {
			if def.RepetitionPenaltyCooldown > 0 {
				decay := def.RepetitionPenalty * (dt / def.RepetitionPenaltyCooldown)
				h.RepetitionPenalty = max(h.RepetitionPenalty-decay, 0)
			} else {
				h.RepetitionPenalty = 0
			}
		}
		if !nearlyZero(h.TempScoreAdjust) && !nearlyZero(h.TempScoreAdjustCooldownRate) {
			// Always move towards zero, never past it.
			if h.TempScoreAdjust > 0 {
				h.TempScoreAdjust = max(h.TempScoreAdjust-h.TempScoreAdjustCooldownRate*dt, 0)
			} else {
				h.TempScoreAdjust = min(h.TempScoreAdjust+h.TempScoreAdjustCooldownRate*dt, 0)
			}
		}
	}
}

// SetTempScoreAdjust applies a signed bias to every catalogue entry with the
// tag; the bias returns to zero linearly over cooldownTime seconds.
func (b *Brain) SetTempScoreAdjust(tag decision.Tag, value, cooldownTime float64) {
	for i := range b.actions {
		if b.actions[i].ActionTag == tag {
			b.setTempScoreAdjustAt(i, value, cooldownTime)
		}
	}
}

// AddTempScoreAdjust stacks onto any existing bias; remaining cooldown time
// is extended rather than reset so earlier adjustments keep their weight.
func (b *Brain) AddTempScoreAdjust(tag decision.Tag, value, cooldownTime float64) {
	for i := range b.actions {
		if b.actions[i].ActionTag == tag {
			b.addTempScoreAdjustAt(i, value, cooldownTime)
		}
	}
}

func (b *Brain) ResetTempScoreAdjust(tag decision.Tag) {
	for i := range b.actions {
		if b.actions[i].ActionTag == tag {
			h := &b.history[i]
			h.TempScoreAdjust = 0
			h.TempScoreAdjustCooldownRate = 0
		}
	}
}

func (b *Brain) ResetAllTempScoreAdjusts() {
	for i := range b.history {
		b.history[i].TempScoreAdjust = 0
		b.history[i].TempScoreAdjustCooldownRate = 0
	}
}

func (b *Brain) setTempScoreAdjustAt(i int, value, cooldownTime float64) {
	h := &b.history[i]
	h.TempScoreAdjust = value
	if cooldownTime > 0 {
		h.TempScoreAdjustCooldownRate = math.Abs(value) / cooldownTime
	} else {
		h.TempScoreAdjustCooldownRate = 0
	}
}

func (b *Brain) addTempScoreAdjustAt(i int, value, cooldownTime float64) {
	h := &b.history[i]
	prevRemaining := 0.0
	if !nearlyZero(h.TempScoreAdjust) && !nearlyZero(h.TempScoreAdjustCooldownRate) && h.TempScoreAdjustCooldownRate > 0 {
		prevRemaining = math.Abs(h.TempScoreAdjust) / h.TempScoreAdjustCooldownRate
	}
	h.TempScoreAdjust += value
	newCooldown := cooldownTime + prevRemaining
	if newCooldown > 0 {
		h.TempScoreAdjustCooldownRate = math.Abs(h.TempScoreAdjust) / newCooldown
	} else {
		h.TempScoreAdjustCooldownRate = 0
	}
}

// TimeSinceActionPerformed measures from the most recent END time of any
// catalogue entry with the tag; an action can therefore ask about its own
// previous run while executing. Never-run tags report a very large duration.
func (b *Brain) TimeSinceActionPerformed(tag decision.Tag) time.Duration {
	var last time.Time
	if tag.Valid() {
		for i := range b.history {
			if b.actions[i].ActionTag != tag {
				continue
			}
			if end := b.history[i].LastEndTime; end.After(last) {
				last = end
			}
		}
	}
	if last.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return b.now().Sub(last)
}

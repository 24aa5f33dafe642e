package brain

import (
	"sort"

	"instinct/internal/app/ports"
	"instinct/internal/domain/decision"
)

// Update runs one full decision pass: iterate the catalogue in priority
// order, expand contexts, score them, then pick a candidate from the highest
// non-empty priority group (plus the re-injected current action, if any) and
// start or continue it. Update is one
// straight-line computation; action bodies run elsewhere.
func (b *Brain) Update() {
	b.queued = false

	if b.hasAuthority != nil && !b.hasAuthority() {
		return
	}
	// Catches updates queued before StopLogic/PauseLogic landed.
	if b.stopped || b.paused {
		return
	}
	if len(b.actions) == 0 {
		return
	}
	// A running action that refuses interruption leaves nothing to decide.
	if b.inProgress() && !b.currentInstance.CanBeInterrupted() {
		return
	}

	started := b.now()

	var currentDef *decision.ActionDef
	if b.inProgress() {
		currentDef = &b.actions[b.current.Index]
	}

	currentPriority := b.actions[0].Priority
	b.candidates = b.candidates[:0]
	addedCurrent := false

	for i := range b.actions {
		def := &b.actions[i]

		if b.inProgress() && b.currentInstance.InterruptionsFromHigherPriorityOnly() &&
			currentDef.Priority <= def.Priority {
			// Nothing of equal or lower priority may interrupt.
			break
		}

		if currentPriority != def.Priority {
			// Entering a new priority group: commit to the previous one if it
			// produced any candidate.
			if len(b.candidates) > 0 {
				break
			}
			currentPriority = def.Priority
		}

		if def.Weight < scoreEpsilon {
			continue
		}
		if !def.ActionTag.Valid() || !b.reg.ActionEnabled(def.ActionTag) {
			continue
		}
		if len(def.RequiredTags) > 0 && !actorHasAllTags(b.self, def.RequiredTags) {
			continue
		}
		if len(def.BlockingTags) > 0 && actorHasAnyTags(b.self, def.BlockingTags) {
			continue
		}

		contexts, release := b.pool.BorrowContexts()
		b.generateContexts(def, contexts)

		for ci := range *contexts {
			ctx := &(*contexts)[ci]
			score := b.scoreContext(def, ctx)

			isCurrent := b.isActionSameAsCurrent(i, ctx)
			if isCurrent && b.current.Score > score {
				// Keep the live score (with its inertia) while it is better;
				// it bleeds away over time, so a transiently low-scoring
				// action is not dropped for a marginal alternative.
				score = b.current.Score
			}

			h := &b.history[i]
			if b.shouldSubtractRepetitionPenalty(i) {
				score -= h.RepetitionPenalty
			}
			if !nearlyZero(h.TempScoreAdjust) {
				score += h.TempScoreAdjust
			}

			if !nearlyZero(score) && score > 0 {
				b.candidates = append(b.candidates, Candidate{Index: i, Context: ctx.Clone(), Score: score})
				if isCurrent {
					addedCurrent = true
				}
			}
		}
		release()
	}

	if !addedCurrent && b.inProgress() && b.current.Score > 0 {
		// The current action stopped scoring (it may have consumed the state
		// that made it valid) but its live score still stands; re-inject it so
		// an in-flight task is not cancelled by transient state.
		b.candidates = append(b.candidates, b.current)
	}

	b.chooseActionFromCandidates()

	if b.metrics != nil {
		b.metrics.RecordUpdate(b.now().Sub(started))
	}
}

// chooseActionFromCandidates applies the choice method of the top candidate's
// priority group. Scored candidates share one priority group; a re-injected
// current action keeps its own priority and may come from a different group.
func (b *Brain) chooseActionFromCandidates() {
	if len(b.candidates) == 0 {
		if b.metrics != nil {
			b.metrics.RecordNoCandidates()
		}
		return
	}

	sort.SliceStable(b.candidates, func(i, j int) bool {
		return b.candidates[i].Score > b.candidates[j].Score
	})

	priority := b.actions[b.candidates[0].Index].Priority
	method, topN := b.choiceMethod(priority)
	if method == decision.ChoiceWeightedRandomTopN && topN <= 0 {
		method = decision.ChoiceHighestScoring
	}

	if method == decision.ChoiceHighestScoring {
		b.chooseAction(b.candidates[0])
		return
	}

	best := b.candidates[0].Score
	scoreLimit := 0.0
	if method == decision.ChoiceWeightedRandomTopNPercent {
		scoreLimit = best - best*(float64(topN)/100.0)
	}

	total := 0.0
	count := 0
	for i := range b.candidates {
		if method == decision.ChoiceWeightedRandomTopN && i == topN {
			break
		}
		if method == decision.ChoiceWeightedRandomTopNPercent && b.candidates[i].Score < scoreLimit {
			break
		}
		total += b.candidates[i].Score
		count++
	}

	r := b.rng.Float64() * total
	accum := 0.0
	for i := 0; i < count; i++ {
		accum += b.candidates[i].Score
		if r < accum {
			b.chooseAction(b.candidates[i])
			return
		}
	}
}

// chooseAction continues the running action when the winner is the same
// action+context, otherwise cancels it and performs the new one with a pooled
// instance.
func (b *Brain) chooseAction(c Candidate) {
	def := &b.actions[c.Index]

	if b.inProgress() && b.isActionSameAsCurrent(c.Index, &c.Context) {
		b.current.Score = c.Score
		b.log.Debug().Str("action", def.ActionTag.String()).Float64("score", c.Score).Msg("continue action")
		if b.metrics != nil {
			b.metrics.RecordActionContinued(def.ActionTag)
		}
		b.logDecision(ports.DecisionContinued, def.ActionTag, c.Score, &c.Context)
		b.currentInstance.Continue(&c.Context, def.ActionParams)
		return
	}

	factory, haveClass := b.reg.Action(def.ActionTag)

	var previousTag decision.Tag
	if b.inProgress() {
		previousTag = b.actions[b.current.Index].ActionTag
	}
	b.cancelCurrentAction("")

	b.current = c
	// New action: inertia joins the score now and discourages oscillation.
	b.current.Score += def.Inertia

	if !haveClass {
		b.log.Warn().Str("action", def.ActionTag.String()).Msg("no action class for tag, doing nothing")
		if b.metrics != nil {
			b.metrics.RecordConfigError()
		}
		b.current = Candidate{Index: -1}
		return
	}

	h := &b.history[c.Index]
	h.LastStartTime = b.now()
	h.LastRunScore = b.current.Score
	h.LastContext = c.Context

	inst := b.pool.ReserveAction(def.ActionTag, factory)
	inst.Init(ports.ActionInit{
		Brain:                               b,
		ActionTag:                           def.ActionTag,
		AllowInterruptions:                  def.AllowInterruptions,
		InterruptionsFromHigherPriorityOnly: def.InterruptionsFromHigherPriorityOnly,
		Completed:                           b.onActionCompleted,
	})
	b.currentInstance = inst

	b.log.Debug().Str("action", def.ActionTag.String()).Float64("score", b.current.Score).
		Str("context", c.Context.String()).Msg("start action")
	if b.metrics != nil {
		b.metrics.RecordActionStarted(def.ActionTag)
	}
	b.logDecision(ports.DecisionStarted, def.ActionTag, b.current.Score, &c.Context)

	inst.Perform(&b.current.Context, def.ActionParams, previousTag)
}

// CancelCurrentAction cancels any running action, recording its end in
// history. Safe to call when idle.
func (b *Brain) CancelCurrentAction(interrupter decision.Tag) {
	b.cancelCurrentAction(interrupter)
}

func (b *Brain) cancelCurrentAction(interrupter decision.Tag) {
	inst := b.currentInstance
	if inst == nil {
		return
	}
	idx := b.current.Index
	score := b.current.Score
	// Detach before cancelling so a completion signal raised from inside
	// Cancel reads as a late callback and is ignored.
	b.currentInstance = nil
	inst.Cancel(interrupter)
	b.finishAction(idx, inst, ports.DecisionCancelled, score)
}

func (b *Brain) onActionCompleted(a ports.Action) {
	// Actions can call back late, after the brain has moved on; identity
	// mismatch detects that and the signal is dropped.
	if b.currentInstance == nil || b.currentInstance != a {
		return
	}
	idx := b.current.Index
	score := b.current.Score
	b.currentInstance = nil
	b.finishAction(idx, a, ports.DecisionCompleted, score)
	// Re-queue immediately so there is no hesitation after completion.
	b.QueueForUpdate()
}

// finishAction records the end of a run and returns the instance to the pool.
// Repetition penalties accumulate across runs.
func (b *Brain) finishAction(idx int, inst ports.Action, event string, score float64) {
	def := &b.actions[idx]
	h := &b.history[idx]
	h.LastEndTime = b.now()
	h.RepetitionPenalty += def.RepetitionPenalty

	b.pool.ReleaseAction(def.ActionTag, inst)
	ctx := b.current.Context
	b.current = Candidate{Index: -1}

	b.log.Debug().Str("action", def.ActionTag.String()).Str("event", event).Msg("action finished")
	b.logDecision(event, def.ActionTag, score, &ctx)
}

func (b *Brain) isActionSameAsCurrent(index int, ctx *decision.Context) bool {
	if !b.inProgress() || index != b.current.Index {
		return false
	}
	return b.current.Context.SameAs(*ctx, b.locToleranceSq)
}

// shouldSubtractRepetitionPenalty: penalties only apply to actions that have
// finished at least once and are not the running instance.
func (b *Brain) shouldSubtractRepetitionPenalty(index int) bool {
	if b.inProgress() && index == b.current.Index {
		return false
	}
	return !b.history[index].LastEndTime.IsZero()
}

func actorHasAllTags(a decision.Actor, tags []decision.Tag) bool {
	for _, t := range tags {
		if !a.HasTag(t) {
			return false
		}
	}
	return true
}

func actorHasAnyTags(a decision.Actor, tags []decision.Tag) bool {
	for _, t := range tags {
		if a.HasTag(t) {
			return true
		}
	}
	return false
}

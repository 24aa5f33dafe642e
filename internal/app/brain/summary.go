package brain

// CandidateSummary is one scored candidate from the last update, for
// debugging surfaces.
type CandidateSummary struct {
	ActionTag   string  `json:"action_tag"`
	Description string  `json:"description,omitempty"`
	Score       float64 `json:"score"`
}

// Summary is a point-in-time view of a brain for debugging surfaces. It is a
// snapshot; reading it does not disturb the brain.
type Summary struct {
	AgentID               string             `json:"agent_id"`
	Tier                  string             `json:"tier"`
	UpdateIntervalSeconds float64            `json:"update_interval_seconds"`
	Stopped               bool               `json:"stopped"`
	Paused                bool               `json:"paused"`
	StoppedReason         string             `json:"stopped_reason,omitempty"`
	CurrentAction         string             `json:"current_action,omitempty"`
	CurrentContext        string             `json:"current_context,omitempty"`
	CurrentScore          float64            `json:"current_score"`
	LastRunScore          float64            `json:"last_run_score"`
	Candidates            []CandidateSummary `json:"candidates"`
}

// Summarize captures the brain's distance tier, lifecycle state, current
// action and the candidate list from the most recent update.
func (b *Brain) Summarize() Summary {
	s := Summary{
		AgentID:               b.id,
		Tier:                  b.tier.String(),
		UpdateIntervalSeconds: b.updateInterval.Seconds(),
		Stopped:               b.stopped,
		Paused:                b.paused,
		StoppedReason:         b.stoppedReason,
		Candidates:            make([]CandidateSummary, 0, len(b.candidates)),
	}
	if b.inProgress() {
		def := &b.actions[b.current.Index]
		s.CurrentAction = def.ActionTag.String()
		s.CurrentContext = b.current.Context.String()
		s.CurrentScore = b.current.Score
		s.LastRunScore = b.history[b.current.Index].LastRunScore
	}
	for _, c := range b.candidates {
		def := &b.actions[c.Index]
		s.Candidates = append(s.Candidates, CandidateSummary{
			ActionTag:   def.ActionTag.String(),
			Description: def.Description,
			Score:       c.Score,
		})
	}
	return s
}

package inmemory

import (
	"sync"
	"time"

	"instinct/internal/domain/decision"
)

type Snapshot struct {
	Updates           uint64            `json:"updates"`
	UpdateTimeMicros  uint64            `json:"update_time_micros"`
	ActionsStarted    uint64            `json:"actions_started"`
	ActionsContinued  uint64            `json:"actions_continued"`
	NoCandidateRounds uint64            `json:"no_candidate_rounds"`
	ConfigErrors      uint64            `json:"config_errors"`
	StartedByAction   map[string]uint64 `json:"started_by_action"`
}

// Recorder is the in-memory BrainMetrics implementation behind the ops
// endpoint.
type Recorder struct {
	mu           sync.Mutex
	updates      uint64
	updateMicros uint64
	started      uint64
	continued    uint64
	noCandidates uint64
	configErrors uint64
	byAction     map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byAction: map[string]uint64{},
	}
}

func (r *Recorder) RecordUpdate(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	r.updateMicros += uint64(d.Microseconds())
}

func (r *Recorder) RecordActionStarted(tag decision.Tag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
	r.byAction[tag.String()]++
}

func (r *Recorder) RecordActionContinued(decision.Tag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.continued++
}

func (r *Recorder) RecordNoCandidates() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noCandidates++
}

func (r *Recorder) RecordConfigError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configErrors++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		Updates:           r.updates,
		UpdateTimeMicros:  r.updateMicros,
		ActionsStarted:    r.started,
		ActionsContinued:  r.continued,
		NoCandidateRounds: r.noCandidates,
		ConfigErrors:      r.configErrors,
		StartedByAction:   make(map[string]uint64, len(r.byAction)),
	}
	for k, v := range r.byAction {
		out.StartedByAction[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}

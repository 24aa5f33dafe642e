package inmemory

import (
	"testing"
	"time"
)

func TestRecorderSnapshot(t *testing.T) {
	r := NewRecorder()
	r.RecordUpdate(150 * time.Microsecond)
	r.RecordUpdate(50 * time.Microsecond)
	r.RecordActionStarted("action.wait")
	r.RecordActionStarted("action.wait")
	r.RecordActionStarted("action.move_to")
	r.RecordActionContinued("action.wait")
	r.RecordNoCandidates()
	r.RecordConfigError()

	s := r.Snapshot()
	if s.Updates != 2 {
		t.Fatalf("expected 2 updates, got %d", s.Updates)
	}
	if s.UpdateTimeMicros != 200 {
		t.Fatalf("expected 200us total, got %d", s.UpdateTimeMicros)
	}
	if s.ActionsStarted != 3 {
		t.Fatalf("expected 3 starts, got %d", s.ActionsStarted)
	}
	if s.ActionsContinued != 1 {
		t.Fatalf("expected 1 continue, got %d", s.ActionsContinued)
	}
	if s.NoCandidateRounds != 1 || s.ConfigErrors != 1 {
		t.Fatalf("expected 1 no-candidate round and 1 config error, got %+v", s)
	}
	if s.StartedByAction["action.wait"] != 2 {
		t.Fatalf("expected 2 starts for action.wait, got %d", s.StartedByAction["action.wait"])
	}
}

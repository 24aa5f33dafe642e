package ports

import (
	"time"

	"instinct/internal/domain/decision"
)

type BrainMetrics interface {
	RecordUpdate(d time.Duration)
	RecordActionStarted(tag decision.Tag)
	RecordActionContinued(tag decision.Tag)
	RecordNoCandidates()
	RecordConfigError()
}

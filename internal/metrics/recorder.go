package metrics

import "time"

// OutcomeLabel enumerates deploy outcome categories for counters.
type OutcomeLabel string

const (
	OutcomeSuccess  OutcomeLabel = "success"
	OutcomePartial  OutcomeLabel = "partial"
	OutcomeFailed   OutcomeLabel = "failed"
	OutcomeCanceled OutcomeLabel = "canceled"
)

// Recorder defines observability hooks for build and deploy metrics.
// Implementations may forward to Prometheus; all methods must be safe on the
// NoopRecorder so injection stays optional.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	ObserveDeployDuration(d time.Duration)
	IncDeployOutcome(outcome OutcomeLabel)
	AddFilesTransferred(n int)
	AddFilesDeleted(n int)
	AddBytesTransferred(n int64)
	IncTransferRetry()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration)  {}
func (NoopRecorder) ObserveDeployDuration(time.Duration) {}
func (NoopRecorder) IncDeployOutcome(OutcomeLabel)       {}
func (NoopRecorder) AddFilesTransferred(int)             {}
func (NoopRecorder) AddFilesDeleted(int)                 {}
func (NoopRecorder) AddBytesTransferred(int64)           {}
func (NoopRecorder) IncTransferRetry()                   {}

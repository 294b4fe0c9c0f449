package metrics

// Operation labels used by the stopwatch.
const (
	OpStart      = "start"
	OpPause      = "pause"
	OpLap        = "lap"
	OpReset      = "reset"
	OpPreference = "preference"
	OpFlush      = "flush"
)

// RestoreResult labels the outcome of loading persisted state at startup.
type RestoreResult string

const (
	RestoreLoaded  RestoreResult = "loaded"
	RestoreAbsent  RestoreResult = "absent"
	RestoreCorrupt RestoreResult = "corrupt"
	RestoreFailed  RestoreResult = "failed"
)

// Recorder defines observability hooks for the stopwatch. Implementations may
// forward to Prometheus; NoopRecorder is used when metrics are not configured.
type Recorder interface {
	IncOperation(op string)
	IncPersistFailure(op string)
	IncRestore(result RestoreResult)
	IncLockPause()
	SetLaps(n int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncOperation(string) {}
func (NoopRecorder) IncPersistFailure(string) {}
func (NoopRecorder) IncRestore(RestoreResult) {}
func (NoopRecorder) IncLockPause() {}
func (NoopRecorder) SetLaps(int) {}

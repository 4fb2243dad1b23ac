package platform

// ProgressKind distinguishes fetch progress events.
type ProgressKind int

const (
	ProgressStarted ProgressKind = iota
	ProgressCompleted
	ProgressAllCompleted
)

// Progress is one fetch progress event.
type Progress struct {
	Kind       ProgressKind
	PlatformID string
	Success    bool
	Items      int
	Err        error
}

// Started reports that a platform fetch began.
func Started(id string) Progress {
	return Progress{Kind: ProgressStarted, PlatformID: id}
}

// Succeeded reports a completed fetch with its item count.
func Succeeded(id string, items int) Progress {
	return Progress{Kind: ProgressCompleted, PlatformID: id, Success: true, Items: items}
}

// Failed reports a completed fetch that returned err.
func Failed(id string, err error) Progress {
	return Progress{Kind: ProgressCompleted, PlatformID: id, Err: err}
}

// AllCompleted reports that every platform fetch has finished.
func AllCompleted() Progress {
	return Progress{Kind: ProgressAllCompleted}
}

// NewProgressChannel returns a channel buffered for the events of n
// platforms, so a fetch never blocks on a slow reader.
func NewProgressChannel(n int) chan Progress {
	return make(chan Progress, 2*n+1)
}

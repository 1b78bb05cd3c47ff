package space

import "github.com/charmbracelet/log"

// TrackerBuilderOption is a functional option applied to a tracker during construction via NewTracker.
type TrackerBuilderOption func(*tracker)

// WithLogger replaces the tracker's logger.
//
// Parameters:
//   - l: the logger to use
//
// Returns:
//   - TrackerBuilderOption: a function that applies the logger option to a tracker
func WithLogger(l *log.Logger) TrackerBuilderOption {
	return func(t *tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithWorkers sets the size of the worker pool locating spaces. Defaults to NumCPU-1.
//
// Parameters:
//   - n: the number of workers, at least 1
//
// Returns:
//   - TrackerBuilderOption: a function that applies the workers option to a tracker
func WithWorkers(n int) TrackerBuilderOption {
	return func(t *tracker) {
		t.workers = max(n, 1)
	}
}

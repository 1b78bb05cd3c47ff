package space

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
)

// Timing publishes the frame-scoped display time every pose query of a frame uses.
// The pipelined flag is latched when a frame is published, so head and hand
// queries within one frame never mix predicted and pipelined times.
type Timing struct {
	mu        sync.RWMutex
	want      bool
	pipelined bool
	state     openxr.FrameState
	time      openxr.Time
	frame     uint64
}

// NewTiming creates a Timing.
//
// Parameters:
//   - pipelined: query poses one display period ahead of the predicted time
//
// Returns:
//   - *Timing: the timing source
func NewTiming(pipelined bool) *Timing {
	return &Timing{want: pipelined, pipelined: pipelined}
}

// SetPipelined changes the mode starting with the next published frame.
func (t *Timing) SetPipelined(pipelined bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.want = pipelined
}

// Publish records the state returned by WaitFrame and fixes the query time for the frame.
//
// Parameters:
//   - fs: the frame state of the new frame
//
// Returns:
//   - openxr.Time: the time every pose query of this frame must use
func (t *Timing) Publish(fs openxr.FrameState) openxr.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pipelined = t.want
	t.state = fs
	t.time = QueryTime(fs, t.pipelined)
	t.frame++
	return t.time
}

// Time returns the query time of the current frame, zero before the first frame.
func (t *Timing) Time() openxr.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.time
}

// FrameState returns the state of the current frame.
func (t *Timing) FrameState() openxr.FrameState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Pipelined reports the mode latched for the current frame.
func (t *Timing) Pipelined() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pipelined
}

// Frame returns how many frames were published.
func (t *Timing) Frame() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frame
}

// QueryTime returns the predicted display time, or the pipelined time one period later.
func QueryTime(fs openxr.FrameState, pipelined bool) openxr.Time {
	if pipelined {
		return PipelinedTime(fs)
	}
	return fs.PredictedDisplayTime
}

// PipelinedTime extrapolates the display time one period ahead.
func PipelinedTime(fs openxr.FrameState) openxr.Time {
	return fs.PredictedDisplayTime + openxr.Time(fs.PredictedDisplayPeriod)
}

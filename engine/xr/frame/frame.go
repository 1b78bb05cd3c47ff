// Package frame drives the per-frame OpenXR sequence: wait, begin, acquire,
// wait image, locate views, render, release, end. The Driver enforces that order
// locally, so an illegal call is rejected with ErrOutOfOrder before the runtime
// sees it, and guarantees that a begun frame is always ended.
package frame

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
)

// ErrOutOfOrder is returned when a frame step is called out of sequence.
var ErrOutOfOrder = errors.New("frame: call out of order")

// Stage names a step of the frame sequence.
type Stage int

const (
	StageWait Stage = iota
	StageBegin
	StageAcquire
	StageWaitImage
	StageLocateViews
	StageRender
	StageRelease
	StageEnd
)

func (s Stage) String() string {
	switch s {
	case StageWait:
		return "wait"
	case StageBegin:
		return "begin"
	case StageAcquire:
		return "acquire"
	case StageWaitImage:
		return "wait_image"
	case StageLocateViews:
		return "locate_views"
	case StageRender:
		return "render"
	case StageRelease:
		return "release"
	case StageEnd:
		return "end"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Error is a failed frame step. A fatal error means the session or instance is
// lost and must be torn down; any other error only costs the current frame.
type Error struct {
	Stage Stage
	Err   error
	Fatal bool
}

func (e *Error) Error() string {
	if e.Fatal {
		return fmt.Sprintf("frame: %s (fatal): %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("frame: %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// fail wraps err for a stage; it returns nil for a nil err.
func fail(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return &Error{Stage: stage, Err: err, Fatal: openxr.IsLoss(err)}
}

// IsFatal reports whether err is a fatal frame error.
func IsFatal(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Fatal
}

// Layer is a composition layer tagged with the backend of the swapchains it samples.
type Layer struct {
	Backend graphics.BackendKind
	Layer   openxr.CompositionLayer
}

// Frame is everything the render callback and layer providers see of one frame.
type Frame struct {
	// Number counts frames waited on by the driver, starting at 1.
	Number uint64
	State  openxr.FrameState
	// QueryTime is the time every pose query of this frame uses.
	QueryTime openxr.Time
	// ImageIndex is the acquired swapchain image.
	ImageIndex uint32
	Texture    *graphics.Texture
	// Views are the located eyes after validity retention.
	Views     []openxr.View
	ViewFlags openxr.ViewStateFlags
}

// RenderFunc writes one frame into the acquired texture. Layer index i of the
// texture belongs to Views[i].
type RenderFunc func(f *Frame) error

// Stats counts what the driver did.
type Stats struct {
	// Frames counts ended frames.
	Frames uint64
	// Rendered counts frames submitted with layers.
	Rendered uint64
	// Skipped counts frames the runtime asked not to render.
	Skipped uint64
	// Failed counts frames ended without layers after a failed step.
	Failed uint64
	// DroppedLayers counts layers dropped for a foreign backend.
	DroppedLayers uint64
}

// Package renderer draws to the desktop window through wgpu. It is the flat
// path the engine presents on when no headset session is running: one color
// pass per frame, cleared and handed to the caller for drawing, then presented.
package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/window"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoSurface is returned by NewRenderer when the window has no native surface.
var ErrNoSurface = errors.New("renderer: window has no surface")

// ErrFrameInFlight is returned by BeginFrame while the previous frame was not presented.
var ErrFrameInFlight = errors.New("renderer: previous frame not yet presented")

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     sync.Mutex
	logger *log.Logger

	backend wgpuRendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	clearColor           wgpu.Color
}

// Renderer defines the flat rendering path.
//
// A frame is BeginFrame, any number of draws into the returned pass, EndFrame and Present.
// Frame does all of that with nothing drawn, producing a cleared window.
type Renderer interface {
	// Resize reconfigures the surface for a new window size.
	// Zero sizes (a minimized window) are ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode changes how frames are delivered to the display. Applied on the next Resize.
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color every frame starts from.
	SetClearColor(c wgpu.Color)

	// ClearColor returns the color every frame starts from.
	ClearColor() wgpu.Color

	// BeginFrame acquires the next surface texture and opens a render pass clearing it.
	//
	// Returns:
	//   - *wgpu.RenderPassEncoder: the open pass, valid until EndFrame
	//   - error: ErrFrameInFlight or the surface acquisition failure
	BeginFrame() (*wgpu.RenderPassEncoder, error)

	// EndFrame closes the pass and submits the recorded commands.
	//
	// Returns:
	//   - error: the encoding failure; the frame is abandoned
	EndFrame() error

	// Present shows the submitted frame and releases the surface texture.
	Present()

	// Frame renders one cleared frame.
	//
	// Returns:
	//   - error: the first failing step
	Frame() error

	// Device returns the wgpu device.
	Device() *wgpu.Device

	// Queue returns the device queue.
	Queue() *wgpu.Queue

	// SurfaceFormat returns the format the surface was configured with.
	SurfaceFormat() wgpu.TextureFormat

	// Release destroys every GPU object. The renderer is unusable afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the wgpu device for w and configures its surface at the window size.
//
// Parameters:
//   - w: the window to present to
//   - options: functional options
//
// Returns:
//   - Renderer: the renderer
//   - error: ErrNoSurface, or the adapter or device request failure
func NewRenderer(w window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		logger:      logger.For("renderer"),
		presentMode: PresentModeVSync,
		clearColor:  wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
	}
	for _, opt := range options {
		opt(r)
	}

	desc := w.SurfaceDescriptor()
	if desc == nil {
		return nil, ErrNoSurface
	}
	b, err := newWGPURendererBackend(desc, r.forceFallbackAdapter)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	r.backend = b
	b.SetPresentMode(r.presentMode)
	b.ConfigureSurface(w.Width(), w.Height())
	r.logger.Info("flat renderer ready", "format", b.SurfaceFormat(), "width", w.Width(), "height", w.Height())
	return r, nil
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(c wgpu.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearColor = c
}

func (r *renderer) ClearColor() wgpu.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearColor
}

func (r *renderer) BeginFrame() (*wgpu.RenderPassEncoder, error) {
	return r.backend.BeginFrame(r.ClearColor())
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Frame() error {
	if _, err := r.BeginFrame(); err != nil {
		return err
	}
	if err := r.EndFrame(); err != nil {
		return err
	}
	r.Present()
	return nil
}

func (r *renderer) Device() *wgpu.Device {
	return r.backend.Device()
}

func (r *renderer) Queue() *wgpu.Queue {
	return r.backend.Queue()
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) Release() {
	r.backend.Release()
}

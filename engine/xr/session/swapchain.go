package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrImageAlreadyAcquired is returned by Acquire while a previously acquired image was not released.
	ErrImageAlreadyAcquired = errors.New("session: swapchain image already acquired")
	// ErrNoImageAcquired is returned by Wait and Release without an acquired image.
	ErrNoImageAcquired = errors.New("session: no swapchain image acquired")
	// ErrImageNotWaited is returned by Release before the acquired image was waited on.
	ErrImageNotWaited = errors.New("session: swapchain image not waited")
	// ErrWaitTimeout is returned by Wait when the runtime did not release the image in time.
	// The image stays acquired and Wait may be called again.
	ErrWaitTimeout = errors.New("session: swapchain image wait timed out")
)

// swapchain implements the Swapchain interface.
type swapchain struct {
	rt       openxr.Runtime
	handle   openxr.Swapchain
	backend  graphics.BackendKind
	format   wgpu.TextureFormat
	size     graphics.Resolution
	layers   uint32
	textures []*graphics.Texture

	mu        sync.Mutex
	acquired  bool
	waited    bool
	index     uint32
	destroyed bool
}

// Swapchain is the stereo image ring of a session: one texture array per image,
// one layer per eye. At most one image is acquired at a time.
type Swapchain interface {
	// Handle returns the native swapchain handle.
	Handle() openxr.Swapchain

	// Backend returns the backend the swapchain images belong to.
	Backend() graphics.BackendKind

	// Format returns the portable format of the images.
	Format() wgpu.TextureFormat

	// Resolution returns the per-eye image size.
	Resolution() graphics.Resolution

	// Layers returns the array size of each image.
	Layers() uint32

	// Textures returns the imported images, indexed like the runtime's image list.
	Textures() []*graphics.Texture

	// Acquire acquires the next image.
	//
	// Returns:
	//   - uint32: the image index
	//   - error: ErrImageAlreadyAcquired, or the native failure
	Acquire() (uint32, error)

	// Wait blocks until the acquired image may be written.
	//
	// Parameters:
	//   - timeout: the longest time to block, openxr.InfiniteDuration to wait forever
	//
	// Returns:
	//   - error: ErrNoImageAcquired, ErrWaitTimeout, or the native failure
	Wait(timeout openxr.Duration) error

	// Release hands the acquired image back to the compositor.
	//
	// Returns:
	//   - error: ErrNoImageAcquired, ErrImageNotWaited, or the native failure
	Release() error

	// Acquired returns the index of the acquired image.
	//
	// Returns:
	//   - uint32: the index
	//   - bool: false when no image is acquired
	Acquired() (uint32, bool)

	// Destroy releases the imported textures' views, then destroys the native swapchain.
	// Calling it twice is a no-op.
	Destroy() error
}

var _ Swapchain = &swapchain{}

// newSwapchain creates the native swapchain and imports its images.
func newSwapchain(rt openxr.Runtime, session openxr.Session, backend graphics.Backend, device *graphics.Device, format wgpu.TextureFormat, size graphics.Resolution, layers uint32, usage openxr.SwapchainUsageFlags) (*swapchain, error) {
	native, ok := backend.ToNative(format)
	if !ok {
		return nil, &graphics.UnsupportedFormatError{Backend: backend.Kind(), Format: format}
	}
	h, err := rt.CreateSwapchain(session, &openxr.SwapchainCreateInfo{
		UsageFlags:  usage,
		Format:      native,
		SampleCount: 1,
		Width:       size.Width,
		Height:      size.Height,
		FaceCount:   1,
		ArraySize:   layers,
		MipCount:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("session: create swapchain: %w", err)
	}
	sc := &swapchain{rt: rt, handle: h, backend: backend.Kind(), format: format, size: size, layers: layers}

	images, err := rt.EnumerateSwapchainImages(h, backend.Kind().API())
	if err != nil {
		_ = rt.DestroySwapchain(h)
		return nil, fmt.Errorf("session: enumerate swapchain images: %w", err)
	}
	for _, img := range images {
		tex, err := backend.ImportSwapchainImage(img, device, format, size, layers)
		if err != nil {
			sc.releaseTextures()
			_ = rt.DestroySwapchain(h)
			return nil, fmt.Errorf("session: import swapchain image: %w", err)
		}
		sc.textures = append(sc.textures, tex)
	}
	return sc, nil
}

func (s *swapchain) Handle() openxr.Swapchain        { return s.handle }
func (s *swapchain) Backend() graphics.BackendKind   { return s.backend }
func (s *swapchain) Format() wgpu.TextureFormat      { return s.format }
func (s *swapchain) Resolution() graphics.Resolution { return s.size }
func (s *swapchain) Layers() uint32                  { return s.layers }
func (s *swapchain) Textures() []*graphics.Texture   { return s.textures }

func (s *swapchain) Acquire() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquired {
		return 0, ErrImageAlreadyAcquired
	}
	idx, err := s.rt.AcquireSwapchainImage(s.handle)
	if err != nil {
		return 0, err
	}
	s.acquired, s.waited, s.index = true, false, idx
	return idx, nil
}

func (s *swapchain) Wait(timeout openxr.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acquired {
		return ErrNoImageAcquired
	}
	if err := s.rt.WaitSwapchainImage(s.handle, timeout); err != nil {
		if errors.Is(err, openxr.TimeoutExpired) {
			return ErrWaitTimeout
		}
		return err
	}
	s.waited = true
	return nil
}

func (s *swapchain) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acquired {
		return ErrNoImageAcquired
	}
	if !s.waited {
		return ErrImageNotWaited
	}
	if err := s.rt.ReleaseSwapchainImage(s.handle); err != nil {
		return err
	}
	s.acquired, s.waited = false, false
	return nil
}

func (s *swapchain) Acquired() (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index, s.acquired
}

func (s *swapchain) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	s.destroyed = true
	s.acquired = false
	s.releaseTextures()
	return s.rt.DestroySwapchain(s.handle)
}

// releaseTextures destroys the views imported over the images. It runs before
// the native swapchain is destroyed because the views reference its images.
func (s *swapchain) releaseTextures() {
	for _, tex := range s.textures {
		tex.Release()
	}
}

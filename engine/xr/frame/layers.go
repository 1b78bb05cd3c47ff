package frame

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/session"
)

// LayerProvider contributes composition layers to every rendered frame.
type LayerProvider interface {
	Layers(f *Frame) []Layer
}

// LayerProviderFunc adapts a function to LayerProvider.
type LayerProviderFunc func(f *Frame) []Layer

// Layers implements LayerProvider.
func (fn LayerProviderFunc) Layers(f *Frame) []Layer { return fn(f) }

type providerEntry struct {
	name     string
	provider LayerProvider
}

// Providers is an ordered registry of named layer providers. Layers are
// submitted in registration order, so the first provider is the bottom layer.
type Providers struct {
	mu      sync.RWMutex
	entries []providerEntry
}

// NewProviders creates an empty registry.
func NewProviders() *Providers {
	return &Providers{}
}

// Register adds a provider. Registering an existing name replaces it in place.
func (p *Providers) Register(name string, provider LayerProvider) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, e := range p.entries {
		if e.name == name {
			p.entries[i].provider = provider
			return
		}
	}
	p.entries = append(p.entries, providerEntry{name: name, provider: provider})
}

// Unregister removes a provider.
//
// Returns:
//   - bool: false if no provider had the name
func (p *Providers) Unregister(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, e := range p.entries {
		if e.name == name {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Names returns the registered names in order.
func (p *Providers) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.name
	}
	return out
}

// Layers collects the layers of every provider for a frame.
func (p *Providers) Layers(f *Frame) []Layer {
	p.mu.RLock()
	entries := append([]providerEntry{}, p.entries...)
	p.mu.RUnlock()
	var out []Layer
	for _, e := range entries {
		out = append(out, e.provider.Layers(f)...)
	}
	return out
}

// ProjectionName is the registry name of the default stereo projection layer.
const ProjectionName = "projection"

// Projection returns the provider of the stereo projection layer: one view per
// located eye, each sampling its own array layer of the session's swapchain image.
//
// Parameters:
//   - s: the session whose swapchain and reference space are used
//
// Returns:
//   - LayerProvider: the provider
func Projection(s session.Session) LayerProvider {
	return LayerProviderFunc(func(f *Frame) []Layer {
		if len(f.Views) == 0 {
			return nil
		}
		sc := s.Swapchain()
		res := sc.Resolution()
		views := make([]openxr.CompositionLayerProjectionView, len(f.Views))
		for i, v := range f.Views {
			views[i] = openxr.CompositionLayerProjectionView{
				Pose: v.Pose,
				Fov:  v.Fov,
				SubImage: openxr.SwapchainSubImage{
					Swapchain:       sc.Handle(),
					ImageRect:       openxr.Rect2Di{Extent: openxr.Extent2Di{Width: int32(res.Width), Height: int32(res.Height)}},
					ImageArrayIndex: uint32(i),
				},
			}
		}
		return []Layer{{
			Backend: sc.Backend(),
			Layer: &openxr.CompositionLayerProjection{
				Space: s.ReferenceSpace().Handle,
				Views: views,
			},
		}}
	})
}

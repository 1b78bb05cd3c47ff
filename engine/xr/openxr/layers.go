package openxr

// CompositionLayerFlags modify how the compositor treats a layer.
type CompositionLayerFlags uint64

const (
	CompositionLayerCorrectChromaticAberration CompositionLayerFlags = 0x1
	CompositionLayerBlendTextureSourceAlpha    CompositionLayerFlags = 0x2
	CompositionLayerUnpremultipliedAlpha       CompositionLayerFlags = 0x4
)

// SwapchainSubImage references a rectangle of one array layer of a swapchain image.
type SwapchainSubImage struct {
	Swapchain       Swapchain
	ImageRect       Rect2Di
	ImageArrayIndex uint32
}

// CompositionLayer is any layer submitted through EndFrame. Swapchains returns
// every swapchain the layer samples from so the frame driver can validate them.
type CompositionLayer interface {
	LayerFlags() CompositionLayerFlags
	LayerSpace() Space
	Swapchains() []Swapchain
}

// CompositionLayerProjectionView is one eye of a projection layer.
type CompositionLayerProjectionView struct {
	Pose     Posef
	Fov      Fovf
	SubImage SwapchainSubImage
}

// CompositionLayerProjection is XrCompositionLayerProjection.
type CompositionLayerProjection struct {
	Flags CompositionLayerFlags
	Space Space
	Views []CompositionLayerProjectionView
}

// LayerFlags implements CompositionLayer.
func (l *CompositionLayerProjection) LayerFlags() CompositionLayerFlags { return l.Flags }

// LayerSpace implements CompositionLayer.
func (l *CompositionLayerProjection) LayerSpace() Space { return l.Space }

// Swapchains implements CompositionLayer.
func (l *CompositionLayerProjection) Swapchains() []Swapchain {
	out := make([]Swapchain, 0, len(l.Views))
	for _, v := range l.Views {
		out = append(out, v.SubImage.Swapchain)
	}
	return out
}

// EyeVisibility selects which eyes a quad layer is shown to.
type EyeVisibility int32

const (
	EyeVisibilityBoth  EyeVisibility = 0
	EyeVisibilityLeft  EyeVisibility = 1
	EyeVisibilityRight EyeVisibility = 2
)

// Extent2Df is a size in meters.
type Extent2Df struct {
	Width, Height float32
}

// CompositionLayerQuad is XrCompositionLayerQuad.
type CompositionLayerQuad struct {
	Flags         CompositionLayerFlags
	Space         Space
	EyeVisibility EyeVisibility
	SubImage      SwapchainSubImage
	Pose          Posef
	Size          Extent2Df
}

// LayerFlags implements CompositionLayer.
func (l *CompositionLayerQuad) LayerFlags() CompositionLayerFlags { return l.Flags }

// LayerSpace implements CompositionLayer.
func (l *CompositionLayerQuad) LayerSpace() Space { return l.Space }

// Swapchains implements CompositionLayer.
func (l *CompositionLayerQuad) Swapchains() []Swapchain {
	return []Swapchain{l.SubImage.Swapchain}
}

// FrameEndInfo holds everything required by xrEndFrame.
type FrameEndInfo struct {
	DisplayTime          Time
	EnvironmentBlendMode EnvironmentBlendMode
	Layers               []CompositionLayer
}

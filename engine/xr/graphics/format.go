package graphics

import "github.com/cogentcore/webgpu/wgpu"

// FormatPair maps one portable format to one native format value.
type FormatPair struct {
	Portable wgpu.TextureFormat
	Native   int64
}

// FormatTable is a partial bijection between portable and native formats.
// Formats missing from the table are reported as unsupported in both directions.
type FormatTable struct {
	toNative   map[wgpu.TextureFormat]int64
	fromNative map[int64]wgpu.TextureFormat
}

// NewFormatTable builds a table from pairs. Later pairs never override earlier
// ones, so the first pair listed for a format wins in each direction.
func NewFormatTable(pairs ...FormatPair) *FormatTable {
	t := &FormatTable{
		toNative:   make(map[wgpu.TextureFormat]int64, len(pairs)),
		fromNative: make(map[int64]wgpu.TextureFormat, len(pairs)),
	}
	for _, p := range pairs {
		if _, ok := t.toNative[p.Portable]; !ok {
			t.toNative[p.Portable] = p.Native
		}
		if _, ok := t.fromNative[p.Native]; !ok {
			t.fromNative[p.Native] = p.Portable
		}
	}
	return t
}

// ToNative looks up the native value of a portable format.
func (t *FormatTable) ToNative(f wgpu.TextureFormat) (int64, bool) {
	n, ok := t.toNative[f]
	return n, ok
}

// FromNative looks up the portable format of a native value.
func (t *FormatTable) FromNative(n int64) (wgpu.TextureFormat, bool) {
	f, ok := t.fromNative[n]
	return f, ok
}

// Portable lists every portable format in the table.
func (t *FormatTable) Portable() []wgpu.TextureFormat {
	out := make([]wgpu.TextureFormat, 0, len(t.toNative))
	for f := range t.toNative {
		out = append(out, f)
	}
	return out
}

// ImportImage validates an import and describes the image. Backends that need
// views over the image add them to the returned Texture.
//
// Parameters:
//   - kind: the importing backend
//   - native: the native image handle
//   - device: the device the swapchain belongs to
//   - format: the portable format of the swapchain
//   - size: the swapchain resolution
//   - layers: the swapchain array size
//
// Returns:
//   - *Texture: the borrowed texture
//   - error: a *BackendMismatchError or ErrUnsupportedTextureFormat
func ImportImage(kind BackendKind, native uint64, device *Device, format wgpu.TextureFormat, size Resolution, layers uint32) (*Texture, error) {
	if device == nil {
		return nil, &BackendMismatchError{Expected: kind}
	}
	if err := CheckBackend(kind, device.Kind); err != nil {
		return nil, err
	}
	if format == wgpu.TextureFormatUndefined {
		return nil, &UnsupportedFormatError{Backend: kind, Format: format}
	}
	if layers == 0 {
		layers = 1
	}
	return &Texture{
		Backend:     kind,
		Native:      native,
		Format:      format,
		Size:        size,
		ArrayLayers: layers,
	}, nil
}

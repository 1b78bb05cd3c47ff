package d3d12

// dxgiFormat is a DXGI_FORMAT value.
type dxgiFormat int64

const (
	dxgiFormatUnknown                dxgiFormat = 0
	dxgiFormatR32G32B32A32Float      dxgiFormat = 2
	dxgiFormatR32G32B32A32Uint       dxgiFormat = 3
	dxgiFormatR32G32B32A32Sint       dxgiFormat = 4
	dxgiFormatR16G16B16A16Float      dxgiFormat = 10
	dxgiFormatR16G16B16A16Uint       dxgiFormat = 12
	dxgiFormatR16G16B16A16Sint       dxgiFormat = 14
	dxgiFormatR32G32Float            dxgiFormat = 16
	dxgiFormatR32G32Uint             dxgiFormat = 17
	dxgiFormatR32G32Sint             dxgiFormat = 18
	dxgiFormatD32FloatS8X24Uint      dxgiFormat = 20
	dxgiFormatR10G10B10A2Unorm       dxgiFormat = 24
	dxgiFormatR11G11B10Float         dxgiFormat = 26
	dxgiFormatR8G8B8A8Unorm          dxgiFormat = 28
	dxgiFormatR8G8B8A8UnormSrgb      dxgiFormat = 29
	dxgiFormatR8G8B8A8Uint           dxgiFormat = 30
	dxgiFormatR8G8B8A8Snorm          dxgiFormat = 31
	dxgiFormatR8G8B8A8Sint           dxgiFormat = 32
	dxgiFormatR16G16Float            dxgiFormat = 34
	dxgiFormatR16G16Uint             dxgiFormat = 36
	dxgiFormatR16G16Sint             dxgiFormat = 38
	dxgiFormatD32Float               dxgiFormat = 40
	dxgiFormatR32Float               dxgiFormat = 41
	dxgiFormatR32Uint                dxgiFormat = 42
	dxgiFormatR32Sint                dxgiFormat = 43
	dxgiFormatD24UnormS8Uint         dxgiFormat = 45
	dxgiFormatR8G8Unorm              dxgiFormat = 49
	dxgiFormatR8G8Uint               dxgiFormat = 50
	dxgiFormatR8G8Snorm              dxgiFormat = 51
	dxgiFormatR8G8Sint               dxgiFormat = 52
	dxgiFormatR16Float               dxgiFormat = 54
	dxgiFormatD16Unorm               dxgiFormat = 55
	dxgiFormatR16Uint                dxgiFormat = 57
	dxgiFormatR16Sint                dxgiFormat = 59
	dxgiFormatR8Unorm                dxgiFormat = 61
	dxgiFormatR8Uint                 dxgiFormat = 62
	dxgiFormatR8Snorm                dxgiFormat = 63
	dxgiFormatR8Sint                 dxgiFormat = 64
	dxgiFormatR9G9B9E5SharedExp      dxgiFormat = 67
	dxgiFormatB8G8R8A8Unorm          dxgiFormat = 87
	dxgiFormatB8G8R8A8UnormSrgb      dxgiFormat = 91
	dxgiFormatR10G10B10XRBiasA2Unorm dxgiFormat = 89
)

// D3D_FEATURE_LEVEL values.
const (
	featureLevel11_0 uint32 = 0xb000
	featureLevel11_1 uint32 = 0xb100
	featureLevel12_0 uint32 = 0xc000
	featureLevel12_1 uint32 = 0xc100
	featureLevel12_2 uint32 = 0xc200
)

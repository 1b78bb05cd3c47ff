//go:build windows

package d3d12

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"golang.org/x/sys/windows"
)

var (
	modD3D12 = windows.NewLazySystemDLL("d3d12.dll")
	modDXGI  = windows.NewLazySystemDLL("dxgi.dll")

	procD3D12CreateDevice      = modD3D12.NewProc("D3D12CreateDevice")
	procD3D12GetDebugInterface = modD3D12.NewProc("D3D12GetDebugInterface")
	procCreateDXGIFactory1     = modDXGI.NewProc("CreateDXGIFactory1")
)

var (
	iidIDXGIFactory4      = windows.GUID{Data1: 0x1bc6ea02, Data2: 0xef36, Data3: 0x464f, Data4: [8]byte{0xbf, 0x0c, 0x21, 0xca, 0x39, 0xe5, 0x16, 0x8a}}
	iidIDXGIAdapter1      = windows.GUID{Data1: 0x29038f61, Data2: 0x3839, Data3: 0x4626, Data4: [8]byte{0x91, 0xfd, 0x08, 0x68, 0x79, 0x01, 0x1a, 0x05}}
	iidID3D12Device       = windows.GUID{Data1: 0x189819f1, Data2: 0x1db6, Data3: 0x4b57, Data4: [8]byte{0xbe, 0x54, 0x18, 0x21, 0x33, 0x9b, 0x85, 0xf7}}
	iidID3D12CommandQueue = windows.GUID{Data1: 0x0ec870a6, Data2: 0x5d7e, Data3: 0x4c22, Data4: [8]byte{0x8c, 0xfc, 0x5b, 0xaa, 0xe0, 0x76, 0x16, 0xed}}
	iidID3D12Debug        = windows.GUID{Data1: 0x344488b7, Data2: 0x6846, Data3: 0x474b, Data4: [8]byte{0xb9, 0x89, 0xf0, 0x27, 0x44, 0x82, 0x45, 0xe0}}
)

// vtable slots, counted from IUnknown
const (
	slotRelease            = 2
	slotEnableDebugLayer   = 3
	slotCreateCommandQueue = 8
	slotEnumAdapterByLuid  = 26
)

// commandQueueDesc is D3D12_COMMAND_QUEUE_DESC.
type commandQueueDesc struct {
	Type     int32
	Priority int32
	Flags    int32
	NodeMask uint32
}

const commandListTypeDirect = 0

func failed(hr uintptr) bool { return int32(hr) < 0 }

// comCall invokes a method of a COM object through its vtable.
func comCall(obj uintptr, slot int, args ...uintptr) uintptr {
	vtbl := *(*uintptr)(unsafe.Pointer(obj))
	fn := *(*uintptr)(unsafe.Pointer(vtbl + uintptr(slot)*unsafe.Sizeof(uintptr(0))))
	hr, _, _ := syscall.SyscallN(fn, append([]uintptr{obj}, args...)...)
	return hr
}

func release(obj uintptr) {
	if obj != 0 {
		comCall(obj, slotRelease)
	}
}

func enableDebugLayer() {
	var dbg uintptr
	hr, _, _ := procD3D12GetDebugInterface.Call(uintptr(unsafe.Pointer(&iidID3D12Debug)), uintptr(unsafe.Pointer(&dbg)))
	if failed(hr) || dbg == 0 {
		return
	}
	comCall(dbg, slotEnableDebugLayer)
	release(dbg)
}

// highestLevel probes the adapter without creating a device.
func highestLevel(adapter uintptr) uint32 {
	for _, l := range candidateLevels(featureLevel11_0) {
		hr, _, _ := procD3D12CreateDevice.Call(adapter, uintptr(l), uintptr(unsafe.Pointer(&iidID3D12Device)), 0)
		if !failed(hr) {
			return l
		}
	}
	return 0
}

func openDevice(luid uint64, minLevel uint32, debug bool) (*graphics.Device, uint32, error) {
	if err := modD3D12.Load(); err != nil {
		return nil, 0, fmt.Errorf("d3d12: %w", err)
	}
	if err := modDXGI.Load(); err != nil {
		return nil, 0, fmt.Errorf("d3d12: %w", err)
	}
	if debug {
		enableDebugLayer()
	}

	var factory uintptr
	if hr, _, _ := procCreateDXGIFactory1.Call(uintptr(unsafe.Pointer(&iidIDXGIFactory4)), uintptr(unsafe.Pointer(&factory))); failed(hr) {
		return nil, 0, fmt.Errorf("d3d12: CreateDXGIFactory1: hresult %#x", uint32(hr))
	}
	defer release(factory)

	var adapter uintptr
	if hr := comCall(factory, slotEnumAdapterByLuid, uintptr(luid), uintptr(unsafe.Pointer(&iidIDXGIAdapter1)), uintptr(unsafe.Pointer(&adapter))); failed(hr) {
		return nil, 0, fmt.Errorf("d3d12: adapter %#x not found: hresult %#x", luid, uint32(hr))
	}

	var device uintptr
	var level uint32
	for _, l := range candidateLevels(minLevel) {
		hr, _, _ := procD3D12CreateDevice.Call(adapter, uintptr(l), uintptr(unsafe.Pointer(&iidID3D12Device)), uintptr(unsafe.Pointer(&device)))
		if !failed(hr) {
			level = l
			break
		}
	}
	if device == 0 {
		available := featureLevelVersion(highestLevel(adapter))
		release(adapter)
		return nil, 0, &graphics.RequirementsError{Backend: graphics.D3D12, Min: featureLevelVersion(minLevel), Available: available}
	}

	desc := commandQueueDesc{Type: commandListTypeDirect}
	var queue uintptr
	if hr := comCall(device, slotCreateCommandQueue, uintptr(unsafe.Pointer(&desc)), uintptr(unsafe.Pointer(&iidID3D12CommandQueue)), uintptr(unsafe.Pointer(&queue))); failed(hr) {
		release(device)
		release(adapter)
		return nil, 0, fmt.Errorf("d3d12: CreateCommandQueue: hresult %#x", uint32(hr))
	}

	dev := graphics.NewDevice(graphics.D3D12, func() {
		release(queue)
		release(device)
		release(adapter)
	})
	dev.Adapter = adapter
	dev.Handle = device
	dev.Queue = queue
	return dev, level, nil
}

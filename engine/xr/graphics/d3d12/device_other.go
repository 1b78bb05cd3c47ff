//go:build !windows

package d3d12

import "github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"

func openDevice(luid uint64, minLevel uint32, debug bool) (*graphics.Device, uint32, error) {
	return nil, 0, graphics.ErrUnsupportedPlatform
}

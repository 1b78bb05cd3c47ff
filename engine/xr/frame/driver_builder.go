package frame

import (
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/space"
	"github.com/charmbracelet/log"
)

// DriverBuilderOption is a functional option applied to a driver during construction via NewDriver.
type DriverBuilderOption func(*driver)

// WithLogger replaces the driver's logger.
//
// Parameters:
//   - l: the logger to use
//
// Returns:
//   - DriverBuilderOption: a function that applies the logger option to a driver
func WithLogger(l *log.Logger) DriverBuilderOption {
	return func(d *driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithTiming shares a pose query timing with trackers of the main context.
//
// Parameters:
//   - t: the timing published on every Wait
//
// Returns:
//   - DriverBuilderOption: a function that applies the option to a driver
func WithTiming(t *space.Timing) DriverBuilderOption {
	return func(d *driver) {
		d.timing = t
	}
}

// WithProviders uses an existing layer provider registry.
//
// Parameters:
//   - p: the registry
//
// Returns:
//   - DriverBuilderOption: a function that applies the option to a driver
func WithProviders(p *Providers) DriverBuilderOption {
	return func(d *driver) {
		d.providers = p
	}
}

// WithImageTimeout bounds how long WaitImage blocks. The default waits forever.
//
// Parameters:
//   - timeout: the timeout in nanoseconds
//
// Returns:
//   - DriverBuilderOption: a function that applies the option to a driver
func WithImageTimeout(timeout openxr.Duration) DriverBuilderOption {
	return func(d *driver) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithoutProjection skips registering the default stereo projection layer.
func WithoutProjection() DriverBuilderOption {
	return func(d *driver) {
		d.noDefault = true
	}
}

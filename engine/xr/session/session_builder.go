package session

import (
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// SessionBuilderOption is a functional option applied to a session during construction via Create.
type SessionBuilderOption func(*session)

// WithLogger replaces the session's logger.
//
// Parameters:
//   - l: the logger to use
//
// Returns:
//   - SessionBuilderOption: a function that applies the logger option to a session
func WithLogger(l *log.Logger) SessionBuilderOption {
	return func(s *session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithViewConfigurations sets the acceptable view configurations in order of preference.
// The default accepts only primary stereo.
//
// Parameters:
//   - configs: acceptable configurations
//
// Returns:
//   - SessionBuilderOption: a function that applies the option to a session
func WithViewConfigurations(configs ...openxr.ViewConfigurationType) SessionBuilderOption {
	return func(s *session) {
		s.acceptableViews = configs
	}
}

// WithResolutions sets preferred per-eye resolutions.
//
// Parameters:
//   - res: resolutions in order of preference
//
// Returns:
//   - SessionBuilderOption: a function that applies the option to a session
func WithResolutions(res ...graphics.Resolution) SessionBuilderOption {
	return func(s *session) {
		s.resolutions = res
	}
}

// WithFormats sets preferred swapchain formats.
//
// Parameters:
//   - formats: formats in order of preference
//
// Returns:
//   - SessionBuilderOption: a function that applies the option to a session
func WithFormats(formats ...wgpu.TextureFormat) SessionBuilderOption {
	return func(s *session) {
		s.formats = formats
	}
}

// WithBlendModes sets preferred environment blend modes.
//
// Parameters:
//   - modes: modes in order of preference
//
// Returns:
//   - SessionBuilderOption: a function that applies the option to a session
func WithBlendModes(modes ...openxr.EnvironmentBlendMode) SessionBuilderOption {
	return func(s *session) {
		s.blendModes = modes
	}
}

// WithReferenceSpace sets the wanted reference space type and its origin offset.
// The default is STAGE at the identity pose.
//
// Parameters:
//   - kind: the reference space type
//   - pose: the pose of the space's origin within the runtime's space
//
// Returns:
//   - SessionBuilderOption: a function that applies the option to a session
func WithReferenceSpace(kind openxr.ReferenceSpaceType, pose openxr.Posef) SessionBuilderOption {
	return func(s *session) {
		s.wantReference = kind
		s.referencePose = pose
	}
}

// WithSwapchainUsage replaces the swapchain usage flags.
//
// Parameters:
//   - usage: the usage flags
//
// Returns:
//   - SessionBuilderOption: a function that applies the option to a session
func WithSwapchainUsage(usage openxr.SwapchainUsageFlags) SessionBuilderOption {
	return func(s *session) {
		if usage != 0 {
			s.usage = usage
		}
	}
}

// WithHandTracking toggles hand trackers. They are only created when the
// instance enabled XR_EXT_hand_tracking and the system supports it.
//
// Parameters:
//   - enabled: whether to create hand trackers
//
// Returns:
//   - SessionBuilderOption: a function that applies the option to a session
func WithHandTracking(enabled bool) SessionBuilderOption {
	return func(s *session) {
		s.handTracking = enabled
	}
}

// Package instance creates the OpenXR instance and selects the head-mounted system.
//
// Creation runs the negotiation steps in order: enumerate the runtime's extensions,
// pick a graphics backend, intersect the requested extensions with what is
// available, create the native instance and fetch the HMD system. Opening the
// graphics device is a separate step (InitGraphics) because it usually needs a
// render context that does not exist yet when the instance is created.
package instance

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/logger"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/graphics"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// EngineName is reported to the runtime as the engine name.
const EngineName = "oxy-xr"

// EngineVersion is reported to the runtime as the engine version.
const EngineVersion uint32 = 1

var (
	// ErrUnavailableExtensions is returned when an extension marked as required is missing.
	ErrUnavailableExtensions = errors.New("instance: required extensions unavailable")
	// ErrDestroyed is returned by operations on an instance that was destroyed or lost.
	ErrDestroyed = errors.New("instance: destroyed")
)

// instance implements the Instance interface.
type instance struct {
	id      uuid.UUID
	rt      openxr.Runtime
	logger  *log.Logger
	app     graphics.AppInfo
	handle  openxr.Instance
	system  openxr.SystemID
	props   openxr.SystemProperties
	runtime openxr.InstanceProperties
	backend graphics.Backend
	enabled openxr.ExtensionSet

	candidates []graphics.Backend
	preferred  []graphics.BackendKind
	requested  openxr.ExtensionSet
	required   openxr.ExtensionSet
	layers     []string
	formFactor openxr.FormFactor

	mu        sync.RWMutex
	destroyed bool
	lost      bool
}

// Instance owns the native XrInstance, the selected system and the graphics backend
// the instance is permanently bound to.
type Instance interface {
	// ID returns the identifier attached to every log line and event of this instance.
	ID() uuid.UUID

	// Handle returns the native instance handle.
	Handle() openxr.Instance

	// System returns the selected head-mounted system.
	System() openxr.SystemID

	// SystemProperties returns the properties of the selected system.
	SystemProperties() openxr.SystemProperties

	// RuntimeProperties returns the name and version of the runtime behind the instance.
	RuntimeProperties() openxr.InstanceProperties

	// Runtime returns the function table the instance was created with.
	Runtime() openxr.Runtime

	// Backend returns the graphics backend the instance is bound to.
	Backend() graphics.Backend

	// AppInfo returns the application name and version given to the runtime.
	AppInfo() graphics.AppInfo

	// Extensions returns the extensions enabled on the native instance.
	Extensions() openxr.ExtensionSet

	// InitGraphics opens the native graphics device through the selected backend,
	// honoring the runtime's graphics requirements.
	//
	// Returns:
	//   - *graphics.Device: the opened device, released by the caller
	//   - openxr.GraphicsBinding: the binding to chain into session creation
	//   - error: ErrDestroyed, a *graphics.RequirementsError, or the native failure
	InitGraphics() (*graphics.Device, openxr.GraphicsBinding, error)

	// CheckBackend validates that an object created for kind may be combined with this instance.
	//
	// Parameters:
	//   - kind: the backend of the object being combined
	//
	// Returns:
	//   - error: a *graphics.BackendMismatchError when kind differs from the instance backend
	CheckBackend(kind graphics.BackendKind) error

	// Valid reports whether the instance is usable: not destroyed and not marked lost.
	Valid() bool

	// MarkLost flags the instance as invalidated by the runtime (loss pending).
	// A lost instance must be destroyed and created again.
	MarkLost()

	// Destroy destroys the native instance. Calling it more than once is a no-op.
	//
	// Returns:
	//   - error: the native failure of the first call, if any
	Destroy() error
}

var _ Instance = &instance{}

// New runs instance creation against rt.
//
// Parameters:
//   - rt: the runtime function table
//   - options: functional options; WithBackends is mandatory
//
// Returns:
//   - Instance: the created instance
//   - error: graphics.ErrNoAvailableBackend, ErrUnavailableExtensions or a wrapped openxr.Result
func New(rt openxr.Runtime, options ...InstanceBuilderOption) (Instance, error) {
	i := &instance{
		id:         uuid.New(),
		rt:         rt,
		logger:     logger.For("xr.instance"),
		app:        graphics.AppInfo{Name: "oxy-xr app", Version: 1},
		formFactor: openxr.FormFactorHeadMountedDisplay,
	}
	for _, opt := range options {
		opt(i)
	}
	i.logger = i.logger.With("instance", i.id)

	props, err := rt.EnumerateInstanceExtensionProperties()
	if err != nil {
		return nil, fmt.Errorf("instance: enumerate extensions: %w", err)
	}
	available := openxr.ExtensionSetFromProperties(props)
	i.logger.Debug("runtime extensions", "count", available.Len())

	backend, err := graphics.SelectBackend(available, i.preferred, i.candidates, i.logger)
	if err != nil {
		return nil, err
	}
	i.backend = backend

	if missing := openxr.Difference(i.required, available); len(missing) > 0 {
		i.logger.Error("required extensions unavailable", "missing", strings.Join(missing, ","))
		return nil, fmt.Errorf("%w: %s", ErrUnavailableExtensions, strings.Join(missing, ", "))
	}

	requested := openxr.Union(openxr.Union(i.requested, i.required), backend.RequiredExtensions())
	enabled, _ := openxr.Negotiate(requested, available, i.logger)
	i.enabled = enabled

	handle, err := rt.CreateInstance(&openxr.InstanceCreateInfo{
		ApplicationInfo: openxr.ApplicationInfo{
			ApplicationName:    i.app.Name,
			ApplicationVersion: i.app.Version,
			EngineName:         EngineName,
			EngineVersion:      EngineVersion,
			APIVersion:         openxr.CurrentAPIVersion,
		},
		EnabledLayers: i.layers,
		Extensions:    enabled.Names(),
	})
	if err != nil {
		return nil, fmt.Errorf("instance: create: %w", err)
	}
	i.handle = handle

	if rp, err := rt.GetInstanceProperties(handle); err == nil {
		i.runtime = rp
		i.logger.Info("runtime", "name", rp.RuntimeName, "version", rp.RuntimeVersion)
	}

	system, err := rt.GetSystem(handle, i.formFactor)
	if err != nil {
		_ = rt.DestroyInstance(handle)
		return nil, fmt.Errorf("instance: get system: %w", err)
	}
	i.system = system

	sp, err := rt.GetSystemProperties(handle, system)
	if err != nil {
		_ = rt.DestroyInstance(handle)
		return nil, fmt.Errorf("instance: system properties: %w", err)
	}
	i.props = sp
	i.logger.Info("system selected",
		"system", sp.SystemName,
		"backend", backend.Kind(),
		"max_image", graphics.Resolution{Width: sp.MaxSwapchainImageWidth, Height: sp.MaxSwapchainImageHeight},
		"hand_tracking", sp.SupportsHandTracking,
	)
	return i, nil
}

func (i *instance) ID() uuid.UUID                                { return i.id }
func (i *instance) Handle() openxr.Instance                      { return i.handle }
func (i *instance) System() openxr.SystemID                      { return i.system }
func (i *instance) SystemProperties() openxr.SystemProperties    { return i.props }
func (i *instance) RuntimeProperties() openxr.InstanceProperties { return i.runtime }
func (i *instance) Runtime() openxr.Runtime                      { return i.rt }
func (i *instance) Backend() graphics.Backend                    { return i.backend }
func (i *instance) AppInfo() graphics.AppInfo                    { return i.app }
func (i *instance) Extensions() openxr.ExtensionSet              { return i.enabled }

func (i *instance) InitGraphics() (*graphics.Device, openxr.GraphicsBinding, error) {
	if !i.Valid() {
		return nil, nil, ErrDestroyed
	}
	dev, binding, err := i.backend.InitGraphics(i.app, i.rt, i.handle, i.system)
	if err != nil {
		var req *graphics.RequirementsError
		if errors.As(err, &req) {
			i.logger.Error("graphics requirements not met", "backend", req.Backend, "min", req.Min, "max", req.Max, "available", req.Available)
		}
		return nil, nil, err
	}
	if err := i.CheckBackend(dev.Kind); err != nil {
		dev.Release()
		return nil, nil, err
	}
	i.logger.Info("graphics device opened", "backend", dev.Kind, "api", dev.APIVersion)
	return dev, binding, nil
}

func (i *instance) CheckBackend(kind graphics.BackendKind) error {
	return graphics.CheckBackend(i.backend.Kind(), kind)
}

func (i *instance) Valid() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return !i.destroyed && !i.lost
}

func (i *instance) MarkLost() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.lost {
		i.logger.Warn("instance loss pending")
	}
	i.lost = true
}

func (i *instance) Destroy() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return nil
	}
	i.destroyed = true
	if err := i.rt.DestroyInstance(i.handle); err != nil {
		return fmt.Errorf("instance: destroy: %w", err)
	}
	i.logger.Debug("instance destroyed")
	return nil
}

package xrtest

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
)

var _ openxr.Runtime = (*Runtime)(nil)

func (r *Runtime) EnumerateInstanceExtensionProperties() ([]openxr.ExtensionProperties, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("EnumerateInstanceExtensionProperties"); err != nil {
		return nil, err
	}
	return slices.Clone(r.Extensions), nil
}

func (r *Runtime) CreateInstance(info *openxr.InstanceCreateInfo) (openxr.Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("CreateInstance"); err != nil {
		return 0, err
	}
	for _, name := range info.Extensions {
		if !slices.ContainsFunc(r.Extensions, func(p openxr.ExtensionProperties) bool { return p.Name == name }) {
			return 0, openxr.ErrorExtensionNotPresent
		}
	}
	cp := *info
	cp.Extensions = slices.Clone(info.Extensions)
	r.InstanceCreateInfo = &cp
	r.instance = openxr.Instance(r.handle())
	return r.instance, nil
}

func (r *Runtime) DestroyInstance(instance openxr.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("DestroyInstance"); err != nil {
		return err
	}
	if instance != r.instance || instance == 0 {
		return openxr.ErrorHandleInvalid
	}
	r.instance = 0
	return nil
}

func (r *Runtime) GetInstanceProperties(instance openxr.Instance) (openxr.InstanceProperties, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetInstanceProperties"); err != nil {
		return openxr.InstanceProperties{}, err
	}
	return openxr.InstanceProperties{RuntimeName: "xrtest", RuntimeVersion: openxr.MakeVersion(0, 1, 0)}, nil
}

func (r *Runtime) GetSystem(instance openxr.Instance, formFactor openxr.FormFactor) (openxr.SystemID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetSystem"); err != nil {
		return openxr.NullSystemID, err
	}
	if r.NoSystem || formFactor != openxr.FormFactorHeadMountedDisplay {
		return openxr.NullSystemID, openxr.ErrorFormFactorUnavailable
	}
	return openxr.SystemID(1), nil
}

func (r *Runtime) GetSystemProperties(instance openxr.Instance, system openxr.SystemID) (openxr.SystemProperties, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("GetSystemProperties"); err != nil {
		return openxr.SystemProperties{}, err
	}
	p := r.Properties
	p.SystemID = system
	return p, nil
}

func (r *Runtime) EnumerateViewConfigurations(instance openxr.Instance, system openxr.SystemID) ([]openxr.ViewConfigurationType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("EnumerateViewConfigurations"); err != nil {
		return nil, err
	}
	return slices.Clone(r.ViewConfigurations), nil
}

func (r *Runtime) EnumerateViewConfigurationViews(instance openxr.Instance, system openxr.SystemID, viewConfig openxr.ViewConfigurationType) ([]openxr.ViewConfigurationView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("EnumerateViewConfigurationViews"); err != nil {
		return nil, err
	}
	if !slices.Contains(r.ViewConfigurations, viewConfig) {
		return nil, openxr.ErrorViewConfigurationTypeUnsupported
	}
	return slices.Clone(r.ConfigurationViews), nil
}

func (r *Runtime) EnumerateEnvironmentBlendModes(instance openxr.Instance, system openxr.SystemID, viewConfig openxr.ViewConfigurationType) ([]openxr.EnvironmentBlendMode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("EnumerateEnvironmentBlendModes"); err != nil {
		return nil, err
	}
	return slices.Clone(r.BlendModes), nil
}

func (r *Runtime) PollEvent(instance openxr.Instance) (openxr.Event, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("PollEvent"); err != nil {
		return nil, false, err
	}
	if len(r.events) == 0 {
		return nil, false, nil
	}
	ev := r.events[0]
	r.events = r.events[1:]
	return ev, true, nil
}

func (r *Runtime) CreateSession(instance openxr.Instance, info *openxr.SessionCreateInfo) (openxr.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("CreateSession"); err != nil {
		return 0, err
	}
	if info.Binding == nil {
		return 0, openxr.ErrorGraphicsDeviceInvalid
	}
	if r.session != 0 {
		return 0, openxr.ErrorLimitReached
	}
	cp := *info
	r.SessionCreateInfo = &cp
	r.session = openxr.Session(r.handle())
	return r.session, nil
}

func (r *Runtime) DestroySession(session openxr.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("DestroySession"); err != nil {
		return err
	}
	if session != r.session || session == 0 {
		return openxr.ErrorHandleInvalid
	}
	r.session = 0
	r.sessionRunning = false
	r.waited, r.begun = false, false
	return nil
}

func (r *Runtime) BeginSession(session openxr.Session, viewConfig openxr.ViewConfigurationType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("BeginSession"); err != nil {
		return err
	}
	if r.sessionRunning {
		return openxr.ErrorSessionRunning
	}
	r.sessionRunning = true
	return nil
}

func (r *Runtime) EndSession(session openxr.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("EndSession"); err != nil {
		return err
	}
	if !r.sessionRunning {
		return openxr.ErrorSessionNotRunning
	}
	r.sessionRunning = false
	r.waited, r.begun = false, false
	return nil
}

func (r *Runtime) RequestExitSession(session openxr.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("RequestExitSession"); err != nil {
		return err
	}
	if !r.sessionRunning {
		return openxr.ErrorSessionNotRunning
	}
	r.events = append(r.events, openxr.EventSessionStateChanged{Session: session, State: openxr.SessionStateStopping, Time: r.now})
	return nil
}

func (r *Runtime) EnumerateSwapchainFormats(session openxr.Session) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("EnumerateSwapchainFormats"); err != nil {
		return nil, err
	}
	return slices.Clone(r.SwapchainFormats), nil
}

func (r *Runtime) CreateSwapchain(session openxr.Session, info *openxr.SwapchainCreateInfo) (openxr.Swapchain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("CreateSwapchain"); err != nil {
		return 0, err
	}
	if !slices.Contains(r.SwapchainFormats, info.Format) {
		return 0, openxr.ErrorSwapchainFormatUnsupported
	}
	cp := *info
	r.SwapchainCreateInfo = &cp
	sc := openxr.Swapchain(r.handle())
	r.swapchains[sc] = &swapchainState{images: r.SwapchainImageCount}
	return sc, nil
}

func (r *Runtime) DestroySwapchain(swapchain openxr.Swapchain) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("DestroySwapchain"); err != nil {
		return err
	}
	if _, ok := r.swapchains[swapchain]; !ok {
		return openxr.ErrorHandleInvalid
	}
	delete(r.swapchains, swapchain)
	return nil
}

func (r *Runtime) EnumerateSwapchainImages(swapchain openxr.Swapchain, api openxr.GraphicsAPI) ([]uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("EnumerateSwapchainImages"); err != nil {
		return nil, err
	}
	sc, ok := r.swapchains[swapchain]
	if !ok {
		return nil, openxr.ErrorHandleInvalid
	}
	if r.SessionCreateInfo != nil && r.SessionCreateInfo.Binding.GraphicsAPI() != api {
		return nil, openxr.ErrorValidationFailure
	}
	images := make([]uint64, sc.images)
	for i := range images {
		images[i] = uint64(swapchain)<<8 | uint64(i+1)
	}
	return images, nil
}

func (r *Runtime) AcquireSwapchainImage(swapchain openxr.Swapchain) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("AcquireSwapchainImage"); err != nil {
		return 0, err
	}
	sc, ok := r.swapchains[swapchain]
	if !ok {
		return 0, openxr.ErrorHandleInvalid
	}
	if sc.acquired {
		return 0, openxr.ErrorCallOrderInvalid
	}
	idx := sc.next
	sc.next = (sc.next + 1) % uint32(sc.images)
	sc.acquired = true
	sc.waited = false
	return idx, nil
}

func (r *Runtime) WaitSwapchainImage(swapchain openxr.Swapchain, timeout openxr.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("WaitSwapchainImage"); err != nil {
		return err
	}
	sc, ok := r.swapchains[swapchain]
	if !ok {
		return openxr.ErrorHandleInvalid
	}
	if !sc.acquired || sc.waited {
		return openxr.ErrorCallOrderInvalid
	}
	sc.waited = true
	return nil
}

func (r *Runtime) ReleaseSwapchainImage(swapchain openxr.Swapchain) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("ReleaseSwapchainImage"); err != nil {
		return err
	}
	sc, ok := r.swapchains[swapchain]
	if !ok {
		return openxr.ErrorHandleInvalid
	}
	if !sc.acquired || !sc.waited {
		return openxr.ErrorCallOrderInvalid
	}
	sc.acquired, sc.waited = false, false
	return nil
}

func (r *Runtime) EnumerateReferenceSpaces(session openxr.Session) ([]openxr.ReferenceSpaceType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("EnumerateReferenceSpaces"); err != nil {
		return nil, err
	}
	return slices.Clone(r.ReferenceSpaces), nil
}

func (r *Runtime) CreateReferenceSpace(session openxr.Session, info *openxr.ReferenceSpaceCreateInfo) (openxr.Space, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("CreateReferenceSpace"); err != nil {
		return 0, err
	}
	if !slices.Contains(r.ReferenceSpaces, info.ReferenceSpaceType) {
		return 0, openxr.ErrorReferenceSpaceUnsupported
	}
	s := openxr.Space(r.handle())
	r.spaces[s] = true
	r.ReferenceSpacesCreated = append(r.ReferenceSpacesCreated, info.ReferenceSpaceType)
	return s, nil
}

func (r *Runtime) DestroySpace(space openxr.Space) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("DestroySpace"); err != nil {
		return err
	}
	if !r.spaces[space] {
		return openxr.ErrorHandleInvalid
	}
	delete(r.spaces, space)
	return nil
}

func (r *Runtime) LocateSpace(space, baseSpace openxr.Space, time openxr.Time, withVelocity bool) (openxr.SpaceLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("LocateSpace"); err != nil {
		return openxr.SpaceLocation{}, err
	}
	if time <= 0 {
		return openxr.SpaceLocation{}, openxr.ErrorTimeInvalid
	}
	r.LastLocateTime = time
	loc := r.SpaceLocations[space]
	if withVelocity && loc.Velocity == nil {
		loc.Velocity = &openxr.SpaceVelocity{}
	}
	if !withVelocity {
		loc.Velocity = nil
	}
	return loc, nil
}

func (r *Runtime) LocateViews(session openxr.Session, info *openxr.ViewLocateInfo) (openxr.ViewState, []openxr.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("LocateViews"); err != nil {
		return openxr.ViewState{}, nil, err
	}
	if info.DisplayTime <= 0 {
		return openxr.ViewState{}, nil, openxr.ErrorTimeInvalid
	}
	r.LastLocateTime = info.DisplayTime
	return openxr.ViewState{Flags: r.ViewFlags}, slices.Clone(r.LocatedViews), nil
}

func (r *Runtime) WaitFrame(session openxr.Session) (openxr.FrameState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("WaitFrame"); err != nil {
		return openxr.FrameState{}, err
	}
	if !r.sessionRunning {
		return openxr.FrameState{}, openxr.ErrorSessionNotRunning
	}
	if r.waited {
		return openxr.FrameState{}, openxr.ErrorCallOrderInvalid
	}
	r.waited = true
	r.now += openxr.Time(r.DisplayPeriod)
	return openxr.FrameState{
		PredictedDisplayTime:   r.now,
		PredictedDisplayPeriod: r.DisplayPeriod,
		ShouldRender:           r.ShouldRender,
	}, nil
}

func (r *Runtime) BeginFrame(session openxr.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("BeginFrame"); err != nil {
		return err
	}
	if !r.sessionRunning {
		return openxr.ErrorSessionNotRunning
	}
	if !r.waited {
		return openxr.ErrorCallOrderInvalid
	}
	r.waited = false
	r.begun = true
	return nil
}

func (r *Runtime) EndFrame(session openxr.Session, info *openxr.FrameEndInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter("EndFrame"); err != nil {
		return err
	}
	if !r.begun {
		return openxr.ErrorCallOrderInvalid
	}
	for _, sc := range r.swapchains {
		if sc.acquired {
			return openxr.ErrorCallOrderInvalid
		}
	}
	for _, layer := range info.Layers {
		for _, sc := range layer.Swapchains() {
			if _, ok := r.swapchains[sc]; !ok {
				return openxr.ErrorLayerInvalid
			}
		}
	}
	if !slices.Contains(r.BlendModes, info.EnvironmentBlendMode) {
		return openxr.ErrorEnvironmentBlendModeUnsupported
	}
	cp := *info
	cp.Layers = slices.Clone(info.Layers)
	r.LastFrameEnd = &cp
	r.begun = false
	return nil
}

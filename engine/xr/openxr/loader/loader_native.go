//go:build openxr && cgo

package loader

/*
#cgo LDFLAGS: -lopenxr_loader
#include <stdlib.h>
#include <string.h>
#include <stdint.h>
#include <openxr/openxr.h>

// Platform structures are mirrored here so the build needs neither the Vulkan
// nor the Windows SDK headers. Layouts match openxr_platform.h on 64-bit targets.
#define OXY_TYPE_GRAPHICS_BINDING_VULKAN      1000025000
#define OXY_TYPE_SWAPCHAIN_IMAGE_VULKAN       1000025001
#define OXY_TYPE_GRAPHICS_REQUIREMENTS_VULKAN 1000025002
#define OXY_TYPE_GRAPHICS_BINDING_D3D12       1000028000
#define OXY_TYPE_SWAPCHAIN_IMAGE_D3D12        1000028001
#define OXY_TYPE_GRAPHICS_REQUIREMENTS_D3D12  1000028002

#define H(t, v) ((t)(uintptr_t)(v))

typedef struct { XrStructureType type; const void* next; void* instance; void* physicalDevice; void* device; uint32_t queueFamilyIndex; uint32_t queueIndex; } oxyBindingVulkan;
typedef struct { XrStructureType type; const void* next; void* device; void* queue; } oxyBindingD3D12;
typedef struct { XrStructureType type; void* next; XrVersion minApiVersionSupported; XrVersion maxApiVersionSupported; } oxyRequirementsVulkan;
typedef struct { XrStructureType type; void* next; uint64_t adapterLuid; int32_t minFeatureLevel; } oxyRequirementsD3D12;
typedef struct { XrStructureType type; void* next; uint64_t image; } oxyImageVulkan;
typedef struct { XrStructureType type; void* next; void* texture; } oxyImageD3D12;

typedef XrResult (*oxyGetVulkanRequirementsFn)(XrInstance, XrSystemId, oxyRequirementsVulkan*);
typedef XrResult (*oxyGetVulkanExtensionsFn)(XrInstance, XrSystemId, uint32_t, uint32_t*, char*);
typedef XrResult (*oxyGetVulkanDeviceFn)(XrInstance, XrSystemId, void*, void**);
typedef XrResult (*oxyGetD3D12RequirementsFn)(XrInstance, XrSystemId, oxyRequirementsD3D12*);

typedef struct {
	int32_t  type;
	uint64_t session;
	int32_t  state;
	int64_t  time;
	uint32_t lost;
	int32_t  referenceSpaceType;
	int32_t  poseValid;
	XrPosef  pose;
} oxyEvent;

typedef struct { uint64_t swapchain; int32_t x, y, w, h; uint32_t arrayIndex; } oxySubImage;
typedef struct { XrPosef pose; XrFovf fov; oxySubImage sub; } oxyProjectionView;
typedef struct {
	int32_t     kind;
	uint64_t    flags;
	uint64_t    space;
	uint32_t    viewOffset;
	uint32_t    viewCount;
	int32_t     eye;
	oxySubImage sub;
	XrPosef     pose;
	XrExtent2Df size;
} oxyLayer;

static XrResult oxyProc(uint64_t inst, const char* name, void** fn) {
	return xrGetInstanceProcAddr(H(XrInstance, inst), name, (PFN_xrVoidFunction*)fn);
}

static XrResult oxyEnumerateExtensions(uint32_t cap, uint32_t* count, XrExtensionProperties* props) {
	for (uint32_t i = 0; i < cap; i++) { props[i].type = XR_TYPE_EXTENSION_PROPERTIES; props[i].next = NULL; }
	return xrEnumerateInstanceExtensionProperties(NULL, cap, count, props);
}

static XrResult oxyCreateInstance(const char* appName, uint32_t appVersion, const char* engineName, uint32_t engineVersion,
		uint64_t apiVersion, uint32_t extCount, const char* const* exts, uint32_t layerCount, const char* const* layers, uint64_t* out) {
	XrInstanceCreateInfo ci;
	memset(&ci, 0, sizeof ci);
	ci.type = XR_TYPE_INSTANCE_CREATE_INFO;
	strncpy(ci.applicationInfo.applicationName, appName, XR_MAX_APPLICATION_NAME_SIZE - 1);
	ci.applicationInfo.applicationVersion = appVersion;
	strncpy(ci.applicationInfo.engineName, engineName, XR_MAX_ENGINE_NAME_SIZE - 1);
	ci.applicationInfo.engineVersion = engineVersion;
	ci.applicationInfo.apiVersion = apiVersion;
	ci.enabledExtensionCount = extCount;
	ci.enabledExtensionNames = exts;
	ci.enabledApiLayerCount = layerCount;
	ci.enabledApiLayerNames = layers;
	XrInstance inst = XR_NULL_HANDLE;
	XrResult r = xrCreateInstance(&ci, &inst);
	*out = (uint64_t)(uintptr_t)inst;
	return r;
}

static XrResult oxyDestroyInstance(uint64_t inst) { return xrDestroyInstance(H(XrInstance, inst)); }

static XrResult oxyInstanceProperties(uint64_t inst, XrVersion* version, char* name) {
	XrInstanceProperties p;
	memset(&p, 0, sizeof p);
	p.type = XR_TYPE_INSTANCE_PROPERTIES;
	XrResult r = xrGetInstanceProperties(H(XrInstance, inst), &p);
	*version = p.runtimeVersion;
	memcpy(name, p.runtimeName, XR_MAX_RUNTIME_NAME_SIZE);
	return r;
}

static XrResult oxyGetSystem(uint64_t inst, int32_t formFactor, uint64_t* out) {
	XrSystemGetInfo gi;
	memset(&gi, 0, sizeof gi);
	gi.type = XR_TYPE_SYSTEM_GET_INFO;
	gi.formFactor = (XrFormFactor)formFactor;
	XrSystemId id = XR_NULL_SYSTEM_ID;
	XrResult r = xrGetSystem(H(XrInstance, inst), &gi, &id);
	*out = (uint64_t)id;
	return r;
}

static XrResult oxySystemProperties(uint64_t inst, uint64_t sys, int chainHand, XrSystemProperties* out, XrBool32* hand) {
	XrSystemHandTrackingPropertiesEXT ht;
	memset(&ht, 0, sizeof ht);
	ht.type = XR_TYPE_SYSTEM_HAND_TRACKING_PROPERTIES_EXT;
	memset(out, 0, sizeof *out);
	out->type = XR_TYPE_SYSTEM_PROPERTIES;
	if (chainHand) out->next = &ht;
	XrResult r = xrGetSystemProperties(H(XrInstance, inst), (XrSystemId)sys, out);
	out->next = NULL;
	*hand = ht.supportsHandTracking;
	return r;
}

static XrResult oxyViewConfigurations(uint64_t inst, uint64_t sys, uint32_t cap, uint32_t* count, XrViewConfigurationType* out) {
	return xrEnumerateViewConfigurations(H(XrInstance, inst), (XrSystemId)sys, cap, count, out);
}

static XrResult oxyViewConfigurationViews(uint64_t inst, uint64_t sys, int32_t vc, uint32_t cap, uint32_t* count, XrViewConfigurationView* out) {
	for (uint32_t i = 0; i < cap; i++) { out[i].type = XR_TYPE_VIEW_CONFIGURATION_VIEW; out[i].next = NULL; }
	return xrEnumerateViewConfigurationViews(H(XrInstance, inst), (XrSystemId)sys, (XrViewConfigurationType)vc, cap, count, out);
}

static XrResult oxyBlendModes(uint64_t inst, uint64_t sys, int32_t vc, uint32_t cap, uint32_t* count, XrEnvironmentBlendMode* out) {
	return xrEnumerateEnvironmentBlendModes(H(XrInstance, inst), (XrSystemId)sys, (XrViewConfigurationType)vc, cap, count, out);
}

static XrResult oxyPollEvent(uint64_t inst, oxyEvent* ev) {
	XrEventDataBuffer buf;
	memset(&buf, 0, sizeof buf);
	buf.type = XR_TYPE_EVENT_DATA_BUFFER;
	XrResult r = xrPollEvent(H(XrInstance, inst), &buf);
	if (r != XR_SUCCESS) return r;
	memset(ev, 0, sizeof *ev);
	ev->type = buf.type;
	switch (buf.type) {
	case XR_TYPE_EVENT_DATA_SESSION_STATE_CHANGED: {
		XrEventDataSessionStateChanged* e = (XrEventDataSessionStateChanged*)&buf;
		ev->session = (uint64_t)(uintptr_t)e->session;
		ev->state = e->state;
		ev->time = e->time;
		break;
	}
	case XR_TYPE_EVENT_DATA_INSTANCE_LOSS_PENDING: {
		XrEventDataInstanceLossPending* e = (XrEventDataInstanceLossPending*)&buf;
		ev->time = e->lossTime;
		break;
	}
	case XR_TYPE_EVENT_DATA_EVENTS_LOST: {
		XrEventDataEventsLost* e = (XrEventDataEventsLost*)&buf;
		ev->lost = e->lostEventCount;
		break;
	}
	case XR_TYPE_EVENT_DATA_REFERENCE_SPACE_CHANGE_PENDING: {
		XrEventDataReferenceSpaceChangePending* e = (XrEventDataReferenceSpaceChangePending*)&buf;
		ev->session = (uint64_t)(uintptr_t)e->session;
		ev->referenceSpaceType = e->referenceSpaceType;
		ev->time = e->changeTime;
		ev->poseValid = e->poseValid;
		ev->pose = e->poseInPreviousSpace;
		break;
	}
	case XR_TYPE_EVENT_DATA_INTERACTION_PROFILE_CHANGED: {
		XrEventDataInteractionProfileChanged* e = (XrEventDataInteractionProfileChanged*)&buf;
		ev->session = (uint64_t)(uintptr_t)e->session;
		break;
	}
	default:
		break;
	}
	return r;
}

static XrResult oxyCreateSessionVulkan(uint64_t inst, uint64_t sys, void* vkInstance, void* phys, void* device, uint32_t family, uint32_t index, uint64_t* out) {
	oxyBindingVulkan b = { OXY_TYPE_GRAPHICS_BINDING_VULKAN, NULL, vkInstance, phys, device, family, index };
	XrSessionCreateInfo ci;
	memset(&ci, 0, sizeof ci);
	ci.type = XR_TYPE_SESSION_CREATE_INFO;
	ci.next = &b;
	ci.systemId = (XrSystemId)sys;
	XrSession s = XR_NULL_HANDLE;
	XrResult r = xrCreateSession(H(XrInstance, inst), &ci, &s);
	*out = (uint64_t)(uintptr_t)s;
	return r;
}

static XrResult oxyCreateSessionD3D12(uint64_t inst, uint64_t sys, void* device, void* queue, uint64_t* out) {
	oxyBindingD3D12 b = { OXY_TYPE_GRAPHICS_BINDING_D3D12, NULL, device, queue };
	XrSessionCreateInfo ci;
	memset(&ci, 0, sizeof ci);
	ci.type = XR_TYPE_SESSION_CREATE_INFO;
	ci.next = &b;
	ci.systemId = (XrSystemId)sys;
	XrSession s = XR_NULL_HANDLE;
	XrResult r = xrCreateSession(H(XrInstance, inst), &ci, &s);
	*out = (uint64_t)(uintptr_t)s;
	return r;
}

static XrResult oxyDestroySession(uint64_t s) { return xrDestroySession(H(XrSession, s)); }

static XrResult oxyBeginSession(uint64_t s, int32_t vc) {
	XrSessionBeginInfo bi;
	memset(&bi, 0, sizeof bi);
	bi.type = XR_TYPE_SESSION_BEGIN_INFO;
	bi.primaryViewConfigurationType = (XrViewConfigurationType)vc;
	return xrBeginSession(H(XrSession, s), &bi);
}

static XrResult oxyEndSession(uint64_t s) { return xrEndSession(H(XrSession, s)); }
static XrResult oxyRequestExitSession(uint64_t s) { return xrRequestExitSession(H(XrSession, s)); }

static XrResult oxySwapchainFormats(uint64_t s, uint32_t cap, uint32_t* count, int64_t* out) {
	return xrEnumerateSwapchainFormats(H(XrSession, s), cap, count, out);
}

static XrResult oxyCreateSwapchain(uint64_t s, uint64_t usage, int64_t format, uint32_t samples, uint32_t w, uint32_t h,
		uint32_t faces, uint32_t arraySize, uint32_t mips, uint64_t* out) {
	XrSwapchainCreateInfo ci;
	memset(&ci, 0, sizeof ci);
	ci.type = XR_TYPE_SWAPCHAIN_CREATE_INFO;
	ci.usageFlags = usage;
	ci.format = format;
	ci.sampleCount = samples;
	ci.width = w;
	ci.height = h;
	ci.faceCount = faces;
	ci.arraySize = arraySize;
	ci.mipCount = mips;
	XrSwapchain sc = XR_NULL_HANDLE;
	XrResult r = xrCreateSwapchain(H(XrSession, s), &ci, &sc);
	*out = (uint64_t)(uintptr_t)sc;
	return r;
}

static XrResult oxyDestroySwapchain(uint64_t sc) { return xrDestroySwapchain(H(XrSwapchain, sc)); }

static XrResult oxySwapchainImageCount(uint64_t sc, uint32_t* count) {
	return xrEnumerateSwapchainImages(H(XrSwapchain, sc), 0, count, NULL);
}

static XrResult oxySwapchainImagesVulkan(uint64_t sc, uint32_t cap, uint64_t* out) {
	oxyImageVulkan* imgs = calloc(cap, sizeof(oxyImageVulkan));
	for (uint32_t i = 0; i < cap; i++) imgs[i].type = OXY_TYPE_SWAPCHAIN_IMAGE_VULKAN;
	uint32_t n = 0;
	XrResult r = xrEnumerateSwapchainImages(H(XrSwapchain, sc), cap, &n, (XrSwapchainImageBaseHeader*)imgs);
	for (uint32_t i = 0; i < n && i < cap; i++) out[i] = imgs[i].image;
	free(imgs);
	return r;
}

static XrResult oxySwapchainImagesD3D12(uint64_t sc, uint32_t cap, uint64_t* out) {
	oxyImageD3D12* imgs = calloc(cap, sizeof(oxyImageD3D12));
	for (uint32_t i = 0; i < cap; i++) imgs[i].type = OXY_TYPE_SWAPCHAIN_IMAGE_D3D12;
	uint32_t n = 0;
	XrResult r = xrEnumerateSwapchainImages(H(XrSwapchain, sc), cap, &n, (XrSwapchainImageBaseHeader*)imgs);
	for (uint32_t i = 0; i < n && i < cap; i++) out[i] = (uint64_t)(uintptr_t)imgs[i].texture;
	free(imgs);
	return r;
}

static XrResult oxyAcquireImage(uint64_t sc, uint32_t* index) {
	XrSwapchainImageAcquireInfo ai;
	memset(&ai, 0, sizeof ai);
	ai.type = XR_TYPE_SWAPCHAIN_IMAGE_ACQUIRE_INFO;
	return xrAcquireSwapchainImage(H(XrSwapchain, sc), &ai, index);
}

static XrResult oxyWaitImage(uint64_t sc, int64_t timeout) {
	XrSwapchainImageWaitInfo wi;
	memset(&wi, 0, sizeof wi);
	wi.type = XR_TYPE_SWAPCHAIN_IMAGE_WAIT_INFO;
	wi.timeout = timeout;
	return xrWaitSwapchainImage(H(XrSwapchain, sc), &wi);
}

static XrResult oxyReleaseImage(uint64_t sc) {
	XrSwapchainImageReleaseInfo ri;
	memset(&ri, 0, sizeof ri);
	ri.type = XR_TYPE_SWAPCHAIN_IMAGE_RELEASE_INFO;
	return xrReleaseSwapchainImage(H(XrSwapchain, sc), &ri);
}

static XrResult oxyReferenceSpaces(uint64_t s, uint32_t cap, uint32_t* count, XrReferenceSpaceType* out) {
	return xrEnumerateReferenceSpaces(H(XrSession, s), cap, count, out);
}

static XrResult oxyCreateReferenceSpace(uint64_t s, int32_t type, XrPosef pose, uint64_t* out) {
	XrReferenceSpaceCreateInfo ci;
	memset(&ci, 0, sizeof ci);
	ci.type = XR_TYPE_REFERENCE_SPACE_CREATE_INFO;
	ci.referenceSpaceType = (XrReferenceSpaceType)type;
	ci.poseInReferenceSpace = pose;
	XrSpace sp = XR_NULL_HANDLE;
	XrResult r = xrCreateReferenceSpace(H(XrSession, s), &ci, &sp);
	*out = (uint64_t)(uintptr_t)sp;
	return r;
}

static XrResult oxyDestroySpace(uint64_t sp) { return xrDestroySpace(H(XrSpace, sp)); }

static XrResult oxyLocateSpace(uint64_t sp, uint64_t base, int64_t time, int withVelocity, XrSpaceLocation* loc, XrSpaceVelocity* vel) {
	memset(loc, 0, sizeof *loc);
	loc->type = XR_TYPE_SPACE_LOCATION;
	memset(vel, 0, sizeof *vel);
	vel->type = XR_TYPE_SPACE_VELOCITY;
	if (withVelocity) loc->next = vel;
	XrResult r = xrLocateSpace(H(XrSpace, sp), H(XrSpace, base), (XrTime)time, loc);
	loc->next = NULL;
	return r;
}

static XrResult oxyLocateViews(uint64_t s, int32_t vc, int64_t time, uint64_t space, uint32_t cap, uint32_t* count, XrViewState* state, XrView* views) {
	XrViewLocateInfo li;
	memset(&li, 0, sizeof li);
	li.type = XR_TYPE_VIEW_LOCATE_INFO;
	li.viewConfigurationType = (XrViewConfigurationType)vc;
	li.displayTime = (XrTime)time;
	li.space = H(XrSpace, space);
	memset(state, 0, sizeof *state);
	state->type = XR_TYPE_VIEW_STATE;
	for (uint32_t i = 0; i < cap; i++) { views[i].type = XR_TYPE_VIEW; views[i].next = NULL; }
	return xrLocateViews(H(XrSession, s), &li, state, cap, count, views);
}

static XrResult oxyWaitFrame(uint64_t s, XrFrameState* fs) {
	XrFrameWaitInfo wi;
	memset(&wi, 0, sizeof wi);
	wi.type = XR_TYPE_FRAME_WAIT_INFO;
	memset(fs, 0, sizeof *fs);
	fs->type = XR_TYPE_FRAME_STATE;
	XrResult r = xrWaitFrame(H(XrSession, s), &wi, fs);
	fs->next = NULL;
	return r;
}

static XrResult oxyBeginFrame(uint64_t s) {
	XrFrameBeginInfo bi;
	memset(&bi, 0, sizeof bi);
	bi.type = XR_TYPE_FRAME_BEGIN_INFO;
	return xrBeginFrame(H(XrSession, s), &bi);
}

static XrSwapchainSubImage oxySub(oxySubImage s) {
	XrSwapchainSubImage out;
	out.swapchain = H(XrSwapchain, s.swapchain);
	out.imageRect.offset.x = s.x;
	out.imageRect.offset.y = s.y;
	out.imageRect.extent.width = s.w;
	out.imageRect.extent.height = s.h;
	out.imageArrayIndex = s.arrayIndex;
	return out;
}

static XrResult oxyEndFrame(uint64_t s, int64_t time, int32_t blend, uint32_t layerCount, const oxyLayer* layers, uint32_t viewCount, const oxyProjectionView* views) {
	XrCompositionLayerProjection* projs = calloc(layerCount ? layerCount : 1, sizeof(XrCompositionLayerProjection));
	XrCompositionLayerQuad* quads = calloc(layerCount ? layerCount : 1, sizeof(XrCompositionLayerQuad));
	XrCompositionLayerProjectionView* pviews = calloc(viewCount ? viewCount : 1, sizeof(XrCompositionLayerProjectionView));
	const XrCompositionLayerBaseHeader** hdrs = calloc(layerCount ? layerCount : 1, sizeof(void*));
	for (uint32_t i = 0; i < viewCount; i++) {
		pviews[i].type = XR_TYPE_COMPOSITION_LAYER_PROJECTION_VIEW;
		pviews[i].pose = views[i].pose;
		pviews[i].fov = views[i].fov;
		pviews[i].subImage = oxySub(views[i].sub);
	}
	for (uint32_t i = 0; i < layerCount; i++) {
		const oxyLayer* l = &layers[i];
		if (l->kind == 0) {
			projs[i].type = XR_TYPE_COMPOSITION_LAYER_PROJECTION;
			projs[i].layerFlags = l->flags;
			projs[i].space = H(XrSpace, l->space);
			projs[i].viewCount = l->viewCount;
			projs[i].views = &pviews[l->viewOffset];
			hdrs[i] = (const XrCompositionLayerBaseHeader*)&projs[i];
		} else {
			quads[i].type = XR_TYPE_COMPOSITION_LAYER_QUAD;
			quads[i].layerFlags = l->flags;
			quads[i].space = H(XrSpace, l->space);
			quads[i].eyeVisibility = (XrEyeVisibility)l->eye;
			quads[i].subImage = oxySub(l->sub);
			quads[i].pose = l->pose;
			quads[i].size = l->size;
			hdrs[i] = (const XrCompositionLayerBaseHeader*)&quads[i];
		}
	}
	XrFrameEndInfo ei;
	memset(&ei, 0, sizeof ei);
	ei.type = XR_TYPE_FRAME_END_INFO;
	ei.displayTime = (XrTime)time;
	ei.environmentBlendMode = (XrEnvironmentBlendMode)blend;
	ei.layerCount = layerCount;
	ei.layers = hdrs;
	XrResult r = xrEndFrame(H(XrSession, s), &ei);
	free(hdrs);
	free(pviews);
	free(quads);
	free(projs);
	return r;
}

static XrResult oxyGetVulkanRequirements(void* fn, uint64_t inst, uint64_t sys, oxyRequirementsVulkan* out) {
	memset(out, 0, sizeof *out);
	out->type = OXY_TYPE_GRAPHICS_REQUIREMENTS_VULKAN;
	return ((oxyGetVulkanRequirementsFn)fn)(H(XrInstance, inst), (XrSystemId)sys, out);
}

static XrResult oxyGetVulkanExtensions(void* fn, uint64_t inst, uint64_t sys, uint32_t cap, uint32_t* count, char* buf) {
	return ((oxyGetVulkanExtensionsFn)fn)(H(XrInstance, inst), (XrSystemId)sys, cap, count, buf);
}

static XrResult oxyGetVulkanDevice(void* fn, uint64_t inst, uint64_t sys, uintptr_t vkInstance, uintptr_t* out) {
	void* phys = NULL;
	XrResult r = ((oxyGetVulkanDeviceFn)fn)(H(XrInstance, inst), (XrSystemId)sys, (void*)vkInstance, &phys);
	*out = (uintptr_t)phys;
	return r;
}

static XrResult oxyGetD3D12Requirements(void* fn, uint64_t inst, uint64_t sys, oxyRequirementsD3D12* out) {
	memset(out, 0, sizeof *out);
	out->type = OXY_TYPE_GRAPHICS_REQUIREMENTS_D3D12;
	return ((oxyGetD3D12RequirementsFn)fn)(H(XrInstance, inst), (XrSystemId)sys, out);
}

static XrResult oxyCreateHandTracker(void* fn, uint64_t s, int32_t hand, uint64_t* out) {
	XrHandTrackerCreateInfoEXT ci;
	memset(&ci, 0, sizeof ci);
	ci.type = XR_TYPE_HAND_TRACKER_CREATE_INFO_EXT;
	ci.hand = (XrHandEXT)hand;
	ci.handJointSet = XR_HAND_JOINT_SET_DEFAULT_EXT;
	XrHandTrackerEXT t = XR_NULL_HANDLE;
	XrResult r = ((PFN_xrCreateHandTrackerEXT)fn)(H(XrSession, s), &ci, &t);
	*out = (uint64_t)(uintptr_t)t;
	return r;
}

static XrResult oxyDestroyHandTracker(void* fn, uint64_t t) {
	return ((PFN_xrDestroyHandTrackerEXT)fn)(H(XrHandTrackerEXT, t));
}

static XrResult oxyLocateHandJoints(void* fn, uint64_t t, uint64_t base, int64_t time, XrBool32* active, XrHandJointLocationEXT* joints) {
	XrHandJointsLocateInfoEXT li;
	memset(&li, 0, sizeof li);
	li.type = XR_TYPE_HAND_JOINTS_LOCATE_INFO_EXT;
	li.baseSpace = H(XrSpace, base);
	li.time = (XrTime)time;
	XrHandJointLocationsEXT locs;
	memset(&locs, 0, sizeof locs);
	locs.type = XR_TYPE_HAND_JOINT_LOCATIONS_EXT;
	locs.jointCount = XR_HAND_JOINT_COUNT_EXT;
	locs.jointLocations = joints;
	XrResult r = ((PFN_xrLocateHandJointsEXT)fn)(H(XrHandTrackerEXT, t), &li, &locs);
	*active = locs.isActive;
	return r;
}
*/
import "C"

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
)

const nativeBinding = true

// native implements openxr.Runtime and its extension interfaces over libopenxr_loader.
type native struct {
	mu    sync.Mutex
	procs map[procKey]unsafe.Pointer
	hand  map[openxr.Instance]bool
	owner map[openxr.Session]openxr.Instance
	// trackers remember their session so the destroy entry point resolves against the right instance.
	trackers map[openxr.HandTracker]openxr.Session
}

type procKey struct {
	instance openxr.Instance
	name     string
}

var (
	_ openxr.Runtime             = (*native)(nil)
	_ openxr.VulkanRuntime       = (*native)(nil)
	_ openxr.D3D12Runtime        = (*native)(nil)
	_ openxr.HandTrackingRuntime = (*native)(nil)
)

// Load opens the system OpenXR loader. The returned runtime also implements the
// Vulkan, D3D12 and hand tracking extension interfaces; their entry points resolve
// lazily and fail with ErrorFunctionUnsupported when the extension was not enabled.
//
// Returns:
//   - openxr.Runtime: the loader-backed runtime
//   - error: ErrUnavailable when no runtime is installed
func Load() (openxr.Runtime, error) {
	var count C.uint32_t
	if r := openxr.Result(C.oxyEnumerateExtensions(0, &count, nil)); r.Failed() {
		if r == openxr.ErrorRuntimeUnavailable || r == openxr.ErrorRuntimeFailure {
			return nil, ErrUnavailable
		}
		return nil, fmt.Errorf("loader: %w", r)
	}
	return &native{
		procs:    make(map[procKey]unsafe.Pointer),
		hand:     make(map[openxr.Instance]bool),
		owner:    make(map[openxr.Session]openxr.Instance),
		trackers: make(map[openxr.HandTracker]openxr.Session),
	}, nil
}

func check(r C.XrResult) error { return openxr.Check(openxr.Result(r)) }

func (n *native) proc(instance openxr.Instance, name string) (unsafe.Pointer, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	key := procKey{instance, name}
	if fn, ok := n.procs[key]; ok {
		return fn, nil
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	var fn unsafe.Pointer
	if err := check(C.oxyProc(C.uint64_t(instance), cname, &fn)); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, openxr.ErrorFunctionUnsupported
	}
	n.procs[key] = fn
	return fn, nil
}

func (n *native) instanceOf(session openxr.Session) openxr.Instance {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.owner[session]
}

// cStrings copies names into a C array. The caller frees it with freeCStrings.
func cStrings(names []string) **C.char {
	if len(names) == 0 {
		return nil
	}
	arr := (*[1 << 20]*C.char)(C.malloc(C.size_t(len(names)) * C.size_t(unsafe.Sizeof(uintptr(0)))))
	for i, s := range names {
		arr[i] = C.CString(s)
	}
	return &arr[0]
}

func freeCStrings(p **C.char, n int) {
	if p == nil {
		return
	}
	arr := unsafe.Slice(p, n)
	for _, s := range arr {
		C.free(unsafe.Pointer(s))
	}
	C.free(unsafe.Pointer(p))
}

func toPose(p C.XrPosef) openxr.Posef {
	return openxr.Posef{
		Orientation: openxr.Quaternionf{X: float32(p.orientation.x), Y: float32(p.orientation.y), Z: float32(p.orientation.z), W: float32(p.orientation.w)},
		Position:    openxr.Vector3f{X: float32(p.position.x), Y: float32(p.position.y), Z: float32(p.position.z)},
	}
}

func fromPose(p openxr.Posef) C.XrPosef {
	var out C.XrPosef
	out.orientation.x = C.float(p.Orientation.X)
	out.orientation.y = C.float(p.Orientation.Y)
	out.orientation.z = C.float(p.Orientation.Z)
	out.orientation.w = C.float(p.Orientation.W)
	out.position.x = C.float(p.Position.X)
	out.position.y = C.float(p.Position.Y)
	out.position.z = C.float(p.Position.Z)
	return out
}

func toFov(f C.XrFovf) openxr.Fovf {
	return openxr.Fovf{AngleLeft: float32(f.angleLeft), AngleRight: float32(f.angleRight), AngleUp: float32(f.angleUp), AngleDown: float32(f.angleDown)}
}

func fromFov(f openxr.Fovf) C.XrFovf {
	var out C.XrFovf
	out.angleLeft = C.float(f.AngleLeft)
	out.angleRight = C.float(f.AngleRight)
	out.angleUp = C.float(f.AngleUp)
	out.angleDown = C.float(f.AngleDown)
	return out
}

func fromSubImage(s openxr.SwapchainSubImage) C.oxySubImage {
	return C.oxySubImage{
		swapchain:  C.uint64_t(s.Swapchain),
		x:          C.int32_t(s.ImageRect.Offset.X),
		y:          C.int32_t(s.ImageRect.Offset.Y),
		w:          C.int32_t(s.ImageRect.Extent.Width),
		h:          C.int32_t(s.ImageRect.Extent.Height),
		arrayIndex: C.uint32_t(s.ImageArrayIndex),
	}
}

func (n *native) EnumerateInstanceExtensionProperties() ([]openxr.ExtensionProperties, error) {
	var count C.uint32_t
	if err := check(C.oxyEnumerateExtensions(0, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	props := make([]C.XrExtensionProperties, count)
	if err := check(C.oxyEnumerateExtensions(count, &count, &props[0])); err != nil {
		return nil, err
	}
	out := make([]openxr.ExtensionProperties, 0, count)
	for i := range props[:count] {
		out = append(out, openxr.ExtensionProperties{
			Name:    C.GoString(&props[i].extensionName[0]),
			Version: uint32(props[i].extensionVersion),
		})
	}
	return out, nil
}

func (n *native) CreateInstance(info *openxr.InstanceCreateInfo) (openxr.Instance, error) {
	app := C.CString(info.ApplicationInfo.ApplicationName)
	defer C.free(unsafe.Pointer(app))
	engine := C.CString(info.ApplicationInfo.EngineName)
	defer C.free(unsafe.Pointer(engine))
	exts := cStrings(info.Extensions)
	defer freeCStrings(exts, len(info.Extensions))
	layers := cStrings(info.EnabledLayers)
	defer freeCStrings(layers, len(info.EnabledLayers))

	var handle C.uint64_t
	r := C.oxyCreateInstance(app, C.uint32_t(info.ApplicationInfo.ApplicationVersion), engine,
		C.uint32_t(info.ApplicationInfo.EngineVersion), C.uint64_t(info.ApplicationInfo.APIVersion),
		C.uint32_t(len(info.Extensions)), exts, C.uint32_t(len(info.EnabledLayers)), layers, &handle)
	if err := check(r); err != nil {
		return 0, err
	}
	inst := openxr.Instance(handle)
	n.mu.Lock()
	n.hand[inst] = openxr.ExtensionSetFromNames(info.Extensions...).Has(openxr.ExtEXTHandTracking)
	n.mu.Unlock()
	return inst, nil
}

func (n *native) DestroyInstance(instance openxr.Instance) error {
	n.mu.Lock()
	delete(n.hand, instance)
	for k := range n.procs {
		if k.instance == instance {
			delete(n.procs, k)
		}
	}
	n.mu.Unlock()
	return check(C.oxyDestroyInstance(C.uint64_t(instance)))
}

func (n *native) GetInstanceProperties(instance openxr.Instance) (openxr.InstanceProperties, error) {
	var version C.XrVersion
	name := make([]C.char, C.XR_MAX_RUNTIME_NAME_SIZE)
	if err := check(C.oxyInstanceProperties(C.uint64_t(instance), &version, &name[0])); err != nil {
		return openxr.InstanceProperties{}, err
	}
	return openxr.InstanceProperties{RuntimeName: C.GoString(&name[0]), RuntimeVersion: openxr.Version(version)}, nil
}

func (n *native) GetSystem(instance openxr.Instance, formFactor openxr.FormFactor) (openxr.SystemID, error) {
	var id C.uint64_t
	if err := check(C.oxyGetSystem(C.uint64_t(instance), C.int32_t(formFactor), &id)); err != nil {
		return openxr.NullSystemID, err
	}
	return openxr.SystemID(id), nil
}

func (n *native) GetSystemProperties(instance openxr.Instance, system openxr.SystemID) (openxr.SystemProperties, error) {
	n.mu.Lock()
	chain := n.hand[instance]
	n.mu.Unlock()
	var props C.XrSystemProperties
	var hand C.XrBool32
	var chainHand C.int
	if chain {
		chainHand = 1
	}
	if err := check(C.oxySystemProperties(C.uint64_t(instance), C.uint64_t(system), chainHand, &props, &hand)); err != nil {
		return openxr.SystemProperties{}, err
	}
	return openxr.SystemProperties{
		SystemID:                openxr.SystemID(props.systemId),
		VendorID:                uint32(props.vendorId),
		SystemName:              C.GoString(&props.systemName[0]),
		MaxSwapchainImageWidth:  uint32(props.graphicsProperties.maxSwapchainImageWidth),
		MaxSwapchainImageHeight: uint32(props.graphicsProperties.maxSwapchainImageHeight),
		MaxLayerCount:           uint32(props.graphicsProperties.maxLayerCount),
		OrientationTracking:     props.trackingProperties.orientationTracking != 0,
		PositionTracking:        props.trackingProperties.positionTracking != 0,
		SupportsHandTracking:    hand != 0,
	}, nil
}

func (n *native) EnumerateViewConfigurations(instance openxr.Instance, system openxr.SystemID) ([]openxr.ViewConfigurationType, error) {
	var count C.uint32_t
	if err := check(C.oxyViewConfigurations(C.uint64_t(instance), C.uint64_t(system), 0, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	buf := make([]C.XrViewConfigurationType, count)
	if err := check(C.oxyViewConfigurations(C.uint64_t(instance), C.uint64_t(system), count, &count, &buf[0])); err != nil {
		return nil, err
	}
	out := make([]openxr.ViewConfigurationType, count)
	for i := range out {
		out[i] = openxr.ViewConfigurationType(buf[i])
	}
	return out, nil
}

func (n *native) EnumerateViewConfigurationViews(instance openxr.Instance, system openxr.SystemID, viewConfig openxr.ViewConfigurationType) ([]openxr.ViewConfigurationView, error) {
	var count C.uint32_t
	if err := check(C.oxyViewConfigurationViews(C.uint64_t(instance), C.uint64_t(system), C.int32_t(viewConfig), 0, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	buf := make([]C.XrViewConfigurationView, count)
	if err := check(C.oxyViewConfigurationViews(C.uint64_t(instance), C.uint64_t(system), C.int32_t(viewConfig), count, &count, &buf[0])); err != nil {
		return nil, err
	}
	out := make([]openxr.ViewConfigurationView, count)
	for i := range out {
		v := buf[i]
		out[i] = openxr.ViewConfigurationView{
			RecommendedImageRectWidth:       uint32(v.recommendedImageRectWidth),
			MaxImageRectWidth:               uint32(v.maxImageRectWidth),
			RecommendedImageRectHeight:      uint32(v.recommendedImageRectHeight),
			MaxImageRectHeight:              uint32(v.maxImageRectHeight),
			RecommendedSwapchainSampleCount: uint32(v.recommendedSwapchainSampleCount),
			MaxSwapchainSampleCount:         uint32(v.maxSwapchainSampleCount),
		}
	}
	return out, nil
}

func (n *native) EnumerateEnvironmentBlendModes(instance openxr.Instance, system openxr.SystemID, viewConfig openxr.ViewConfigurationType) ([]openxr.EnvironmentBlendMode, error) {
	var count C.uint32_t
	if err := check(C.oxyBlendModes(C.uint64_t(instance), C.uint64_t(system), C.int32_t(viewConfig), 0, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	buf := make([]C.XrEnvironmentBlendMode, count)
	if err := check(C.oxyBlendModes(C.uint64_t(instance), C.uint64_t(system), C.int32_t(viewConfig), count, &count, &buf[0])); err != nil {
		return nil, err
	}
	out := make([]openxr.EnvironmentBlendMode, count)
	for i := range out {
		out[i] = openxr.EnvironmentBlendMode(buf[i])
	}
	return out, nil
}

func (n *native) PollEvent(instance openxr.Instance) (openxr.Event, bool, error) {
	var ev C.oxyEvent
	r := openxr.Result(C.oxyPollEvent(C.uint64_t(instance), &ev))
	if r == openxr.EventUnavailable {
		return nil, false, nil
	}
	if r.Failed() {
		return nil, false, r
	}
	switch ev._type {
	case C.XR_TYPE_EVENT_DATA_SESSION_STATE_CHANGED:
		return openxr.EventSessionStateChanged{
			Session: openxr.Session(ev.session),
			State:   openxr.SessionState(ev.state),
			Time:    openxr.Time(ev.time),
		}, true, nil
	case C.XR_TYPE_EVENT_DATA_INSTANCE_LOSS_PENDING:
		return openxr.EventInstanceLossPending{LossTime: openxr.Time(ev.time)}, true, nil
	case C.XR_TYPE_EVENT_DATA_EVENTS_LOST:
		return openxr.EventEventsLost{LostEventCount: uint32(ev.lost)}, true, nil
	case C.XR_TYPE_EVENT_DATA_REFERENCE_SPACE_CHANGE_PENDING:
		return openxr.EventReferenceSpaceChangePending{
			Session:             openxr.Session(ev.session),
			ReferenceSpaceType:  openxr.ReferenceSpaceType(ev.referenceSpaceType),
			ChangeTime:          openxr.Time(ev.time),
			PoseValid:           ev.poseValid != 0,
			PoseInPreviousSpace: toPose(ev.pose),
		}, true, nil
	case C.XR_TYPE_EVENT_DATA_INTERACTION_PROFILE_CHANGED:
		return openxr.EventInteractionProfileChanged{Session: openxr.Session(ev.session)}, true, nil
	}
	return openxr.EventUnknown{StructureType: int32(ev._type)}, true, nil
}

func (n *native) CreateSession(instance openxr.Instance, info *openxr.SessionCreateInfo) (openxr.Session, error) {
	var handle C.uint64_t
	var r C.XrResult
	switch b := info.Binding.(type) {
	case openxr.VulkanBinding:
		r = C.oxyCreateSessionVulkan(C.uint64_t(instance), C.uint64_t(info.SystemID),
			unsafe.Pointer(b.Instance), unsafe.Pointer(b.PhysicalDevice), unsafe.Pointer(b.Device),
			C.uint32_t(b.QueueFamilyIndex), C.uint32_t(b.QueueIndex), &handle)
	case openxr.D3D12Binding:
		r = C.oxyCreateSessionD3D12(C.uint64_t(instance), C.uint64_t(info.SystemID),
			unsafe.Pointer(b.Device), unsafe.Pointer(b.Queue), &handle)
	default:
		return 0, openxr.ErrorGraphicsDeviceInvalid
	}
	if err := check(r); err != nil {
		return 0, err
	}
	s := openxr.Session(handle)
	n.mu.Lock()
	n.owner[s] = instance
	n.mu.Unlock()
	return s, nil
}

func (n *native) DestroySession(session openxr.Session) error {
	n.mu.Lock()
	delete(n.owner, session)
	n.mu.Unlock()
	return check(C.oxyDestroySession(C.uint64_t(session)))
}

func (n *native) BeginSession(session openxr.Session, viewConfig openxr.ViewConfigurationType) error {
	return check(C.oxyBeginSession(C.uint64_t(session), C.int32_t(viewConfig)))
}

func (n *native) EndSession(session openxr.Session) error {
	return check(C.oxyEndSession(C.uint64_t(session)))
}

func (n *native) RequestExitSession(session openxr.Session) error {
	return check(C.oxyRequestExitSession(C.uint64_t(session)))
}

func (n *native) EnumerateSwapchainFormats(session openxr.Session) ([]int64, error) {
	var count C.uint32_t
	if err := check(C.oxySwapchainFormats(C.uint64_t(session), 0, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	buf := make([]C.int64_t, count)
	if err := check(C.oxySwapchainFormats(C.uint64_t(session), count, &count, &buf[0])); err != nil {
		return nil, err
	}
	out := make([]int64, count)
	for i := range out {
		out[i] = int64(buf[i])
	}
	return out, nil
}

func (n *native) CreateSwapchain(session openxr.Session, info *openxr.SwapchainCreateInfo) (openxr.Swapchain, error) {
	var handle C.uint64_t
	r := C.oxyCreateSwapchain(C.uint64_t(session), C.uint64_t(info.UsageFlags), C.int64_t(info.Format),
		C.uint32_t(info.SampleCount), C.uint32_t(info.Width), C.uint32_t(info.Height),
		C.uint32_t(info.FaceCount), C.uint32_t(info.ArraySize), C.uint32_t(info.MipCount), &handle)
	if err := check(r); err != nil {
		return 0, err
	}
	return openxr.Swapchain(handle), nil
}

func (n *native) DestroySwapchain(swapchain openxr.Swapchain) error {
	return check(C.oxyDestroySwapchain(C.uint64_t(swapchain)))
}

func (n *native) EnumerateSwapchainImages(swapchain openxr.Swapchain, api openxr.GraphicsAPI) ([]uint64, error) {
	var count C.uint32_t
	if err := check(C.oxySwapchainImageCount(C.uint64_t(swapchain), &count)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	buf := make([]C.uint64_t, count)
	var r C.XrResult
	switch api {
	case openxr.GraphicsAPIVulkan:
		r = C.oxySwapchainImagesVulkan(C.uint64_t(swapchain), count, &buf[0])
	case openxr.GraphicsAPID3D12:
		r = C.oxySwapchainImagesD3D12(C.uint64_t(swapchain), count, &buf[0])
	default:
		return nil, openxr.ErrorValidationFailure
	}
	if err := check(r); err != nil {
		return nil, err
	}
	out := make([]uint64, count)
	for i := range out {
		out[i] = uint64(buf[i])
	}
	return out, nil
}

func (n *native) AcquireSwapchainImage(swapchain openxr.Swapchain) (uint32, error) {
	var index C.uint32_t
	if err := check(C.oxyAcquireImage(C.uint64_t(swapchain), &index)); err != nil {
		return 0, err
	}
	return uint32(index), nil
}

func (n *native) WaitSwapchainImage(swapchain openxr.Swapchain, timeout openxr.Duration) error {
	r := openxr.Result(C.oxyWaitImage(C.uint64_t(swapchain), C.int64_t(timeout)))
	if r == openxr.TimeoutExpired {
		return r
	}
	return openxr.Check(r)
}

func (n *native) ReleaseSwapchainImage(swapchain openxr.Swapchain) error {
	return check(C.oxyReleaseImage(C.uint64_t(swapchain)))
}

func (n *native) EnumerateReferenceSpaces(session openxr.Session) ([]openxr.ReferenceSpaceType, error) {
	var count C.uint32_t
	if err := check(C.oxyReferenceSpaces(C.uint64_t(session), 0, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	buf := make([]C.XrReferenceSpaceType, count)
	if err := check(C.oxyReferenceSpaces(C.uint64_t(session), count, &count, &buf[0])); err != nil {
		return nil, err
	}
	out := make([]openxr.ReferenceSpaceType, count)
	for i := range out {
		out[i] = openxr.ReferenceSpaceType(buf[i])
	}
	return out, nil
}

func (n *native) CreateReferenceSpace(session openxr.Session, info *openxr.ReferenceSpaceCreateInfo) (openxr.Space, error) {
	var handle C.uint64_t
	r := C.oxyCreateReferenceSpace(C.uint64_t(session), C.int32_t(info.ReferenceSpaceType), fromPose(info.PoseInReferenceSpace), &handle)
	if err := check(r); err != nil {
		return 0, err
	}
	return openxr.Space(handle), nil
}

func (n *native) DestroySpace(space openxr.Space) error {
	return check(C.oxyDestroySpace(C.uint64_t(space)))
}

func (n *native) LocateSpace(space, baseSpace openxr.Space, time openxr.Time, withVelocity bool) (openxr.SpaceLocation, error) {
	var loc C.XrSpaceLocation
	var vel C.XrSpaceVelocity
	var chain C.int
	if withVelocity {
		chain = 1
	}
	if err := check(C.oxyLocateSpace(C.uint64_t(space), C.uint64_t(baseSpace), C.int64_t(time), chain, &loc, &vel)); err != nil {
		return openxr.SpaceLocation{}, err
	}
	out := openxr.SpaceLocation{Flags: openxr.SpaceLocationFlags(loc.locationFlags), Pose: toPose(loc.pose)}
	if withVelocity {
		out.Velocity = &openxr.SpaceVelocity{
			Flags:           openxr.SpaceVelocityFlags(vel.velocityFlags),
			LinearVelocity:  openxr.Vector3f{X: float32(vel.linearVelocity.x), Y: float32(vel.linearVelocity.y), Z: float32(vel.linearVelocity.z)},
			AngularVelocity: openxr.Vector3f{X: float32(vel.angularVelocity.x), Y: float32(vel.angularVelocity.y), Z: float32(vel.angularVelocity.z)},
		}
	}
	return out, nil
}

func (n *native) LocateViews(session openxr.Session, info *openxr.ViewLocateInfo) (openxr.ViewState, []openxr.View, error) {
	var state C.XrViewState
	var count C.uint32_t
	s, vc, t, sp := C.uint64_t(session), C.int32_t(info.ViewConfigurationType), C.int64_t(info.DisplayTime), C.uint64_t(info.Space)
	if err := check(C.oxyLocateViews(s, vc, t, sp, 0, &count, &state, nil)); err != nil {
		return openxr.ViewState{}, nil, err
	}
	if count == 0 {
		return openxr.ViewState{Flags: openxr.ViewStateFlags(state.viewStateFlags)}, nil, nil
	}
	buf := make([]C.XrView, count)
	if err := check(C.oxyLocateViews(s, vc, t, sp, count, &count, &state, &buf[0])); err != nil {
		return openxr.ViewState{}, nil, err
	}
	views := make([]openxr.View, count)
	for i := range views {
		views[i] = openxr.View{Pose: toPose(buf[i].pose), Fov: toFov(buf[i].fov)}
	}
	return openxr.ViewState{Flags: openxr.ViewStateFlags(state.viewStateFlags)}, views, nil
}

func (n *native) WaitFrame(session openxr.Session) (openxr.FrameState, error) {
	var fs C.XrFrameState
	if err := check(C.oxyWaitFrame(C.uint64_t(session), &fs)); err != nil {
		return openxr.FrameState{}, err
	}
	return openxr.FrameState{
		PredictedDisplayTime:   openxr.Time(fs.predictedDisplayTime),
		PredictedDisplayPeriod: openxr.Duration(fs.predictedDisplayPeriod),
		ShouldRender:           fs.shouldRender != 0,
	}, nil
}

func (n *native) BeginFrame(session openxr.Session) error {
	return check(C.oxyBeginFrame(C.uint64_t(session)))
}

func (n *native) EndFrame(session openxr.Session, info *openxr.FrameEndInfo) error {
	layers := make([]C.oxyLayer, 0, len(info.Layers))
	var views []C.oxyProjectionView
	for _, l := range info.Layers {
		switch l := l.(type) {
		case *openxr.CompositionLayerProjection:
			layers = append(layers, C.oxyLayer{
				kind:       0,
				flags:      C.uint64_t(l.Flags),
				space:      C.uint64_t(l.Space),
				viewOffset: C.uint32_t(len(views)),
				viewCount:  C.uint32_t(len(l.Views)),
			})
			for _, v := range l.Views {
				views = append(views, C.oxyProjectionView{pose: fromPose(v.Pose), fov: fromFov(v.Fov), sub: fromSubImage(v.SubImage)})
			}
		case *openxr.CompositionLayerQuad:
			layers = append(layers, C.oxyLayer{
				kind:  1,
				flags: C.uint64_t(l.Flags),
				space: C.uint64_t(l.Space),
				eye:   C.int32_t(l.EyeVisibility),
				sub:   fromSubImage(l.SubImage),
				pose:  fromPose(l.Pose),
				size:  C.XrExtent2Df{width: C.float(l.Size.Width), height: C.float(l.Size.Height)},
			})
		default:
			return openxr.ErrorLayerInvalid
		}
	}
	var lp *C.oxyLayer
	if len(layers) > 0 {
		lp = &layers[0]
	}
	var vp *C.oxyProjectionView
	if len(views) > 0 {
		vp = &views[0]
	}
	return check(C.oxyEndFrame(C.uint64_t(session), C.int64_t(info.DisplayTime), C.int32_t(info.EnvironmentBlendMode),
		C.uint32_t(len(layers)), lp, C.uint32_t(len(views)), vp))
}

func (n *native) GetVulkanGraphicsRequirements(instance openxr.Instance, system openxr.SystemID) (openxr.VulkanGraphicsRequirements, error) {
	fn, err := n.proc(instance, "xrGetVulkanGraphicsRequirementsKHR")
	if err != nil {
		return openxr.VulkanGraphicsRequirements{}, err
	}
	var req C.oxyRequirementsVulkan
	if err := check(C.oxyGetVulkanRequirements(fn, C.uint64_t(instance), C.uint64_t(system), &req)); err != nil {
		return openxr.VulkanGraphicsRequirements{}, err
	}
	return openxr.VulkanGraphicsRequirements{
		MinAPIVersionSupported: openxr.Version(req.minApiVersionSupported),
		MaxAPIVersionSupported: openxr.Version(req.maxApiVersionSupported),
	}, nil
}

func (n *native) vulkanNames(instance openxr.Instance, system openxr.SystemID, entry string) ([]string, error) {
	fn, err := n.proc(instance, entry)
	if err != nil {
		return nil, err
	}
	var count C.uint32_t
	if err := check(C.oxyGetVulkanExtensions(fn, C.uint64_t(instance), C.uint64_t(system), 0, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	buf := make([]C.char, count)
	if err := check(C.oxyGetVulkanExtensions(fn, C.uint64_t(instance), C.uint64_t(system), count, &count, &buf[0])); err != nil {
		return nil, err
	}
	return strings.Fields(C.GoString(&buf[0])), nil
}

func (n *native) GetVulkanInstanceExtensions(instance openxr.Instance, system openxr.SystemID) ([]string, error) {
	return n.vulkanNames(instance, system, "xrGetVulkanInstanceExtensionsKHR")
}

func (n *native) GetVulkanDeviceExtensions(instance openxr.Instance, system openxr.SystemID) ([]string, error) {
	return n.vulkanNames(instance, system, "xrGetVulkanDeviceExtensionsKHR")
}

func (n *native) GetVulkanGraphicsDevice(instance openxr.Instance, system openxr.SystemID, vkInstance uintptr) (uintptr, error) {
	fn, err := n.proc(instance, "xrGetVulkanGraphicsDeviceKHR")
	if err != nil {
		return 0, err
	}
	var phys C.uintptr_t
	if err := check(C.oxyGetVulkanDevice(fn, C.uint64_t(instance), C.uint64_t(system), C.uintptr_t(vkInstance), &phys)); err != nil {
		return 0, err
	}
	return uintptr(phys), nil
}

func (n *native) GetD3D12GraphicsRequirements(instance openxr.Instance, system openxr.SystemID) (openxr.D3D12GraphicsRequirements, error) {
	fn, err := n.proc(instance, "xrGetD3D12GraphicsRequirementsKHR")
	if err != nil {
		return openxr.D3D12GraphicsRequirements{}, err
	}
	var req C.oxyRequirementsD3D12
	if err := check(C.oxyGetD3D12Requirements(fn, C.uint64_t(instance), C.uint64_t(system), &req)); err != nil {
		return openxr.D3D12GraphicsRequirements{}, err
	}
	return openxr.D3D12GraphicsRequirements{
		AdapterLUID:     uint64(req.adapterLuid),
		MinFeatureLevel: uint32(req.minFeatureLevel),
	}, nil
}

func (n *native) CreateHandTracker(session openxr.Session, hand openxr.HandEXT) (openxr.HandTracker, error) {
	fn, err := n.proc(n.instanceOf(session), "xrCreateHandTrackerEXT")
	if err != nil {
		return 0, err
	}
	var handle C.uint64_t
	if err := check(C.oxyCreateHandTracker(fn, C.uint64_t(session), C.int32_t(hand), &handle)); err != nil {
		return 0, err
	}
	t := openxr.HandTracker(handle)
	n.mu.Lock()
	n.trackers[t] = session
	n.mu.Unlock()
	return t, nil
}

func (n *native) trackerInstance(tracker openxr.HandTracker) openxr.Instance {
	n.mu.Lock()
	s := n.trackers[tracker]
	n.mu.Unlock()
	return n.instanceOf(s)
}

func (n *native) DestroyHandTracker(tracker openxr.HandTracker) error {
	fn, err := n.proc(n.trackerInstance(tracker), "xrDestroyHandTrackerEXT")
	if err != nil {
		return err
	}
	n.mu.Lock()
	delete(n.trackers, tracker)
	n.mu.Unlock()
	return check(C.oxyDestroyHandTracker(fn, C.uint64_t(tracker)))
}

func (n *native) LocateHandJoints(tracker openxr.HandTracker, baseSpace openxr.Space, time openxr.Time) (openxr.HandJointLocations, error) {
	fn, err := n.proc(n.trackerInstance(tracker), "xrLocateHandJointsEXT")
	if err != nil {
		return openxr.HandJointLocations{}, err
	}
	var joints [openxr.HandJointCount]C.XrHandJointLocationEXT
	var active C.XrBool32
	if err := check(C.oxyLocateHandJoints(fn, C.uint64_t(tracker), C.uint64_t(baseSpace), C.int64_t(time), &active, &joints[0])); err != nil {
		return openxr.HandJointLocations{}, err
	}
	out := openxr.HandJointLocations{IsActive: active != 0}
	for i := range joints {
		out.Joints[i] = openxr.HandJointLocation{
			Flags:  openxr.SpaceLocationFlags(joints[i].locationFlags),
			Pose:   toPose(joints[i].pose),
			Radius: float32(joints[i].radius),
		}
	}
	return out, nil
}

package openxr

// Extension indexes a statically known OpenXR extension. Names the engine does
// not know are carried in ExtensionSet.Other instead.
type Extension int

const (
	ExtKHRAndroidThreadSettings Extension = iota
	ExtKHRAndroidSurfaceSwapchain
	ExtKHRCompositionLayerCube
	ExtKHRAndroidCreateInstance
	ExtKHRCompositionLayerDepth
	ExtKHRVulkanSwapchainFormatList
	ExtKHRCompositionLayerCylinder
	ExtKHRCompositionLayerEquirect
	ExtKHROpenGLEnable
	ExtKHROpenGLESEnable
	ExtKHRVulkanEnable
	ExtKHRD3D11Enable
	ExtKHRD3D12Enable
	ExtKHRVisibilityMask
	ExtKHRCompositionLayerColorScaleBias
	ExtKHRWin32ConvertPerformanceCounterTime
	ExtKHRConvertTimespecTime
	ExtKHRLoaderInit
	ExtKHRLoaderInitAndroid
	ExtKHRVulkanEnable2
	ExtKHRCompositionLayerEquirect2
	ExtKHRBindingModification
	ExtKHRSwapchainUsageInputAttachmentBit
	ExtKHRLocateSpaces
	ExtKHRMaintenance1
	ExtEXTPerformanceSettings
	ExtEXTThermalQuery
	ExtEXTDebugUtils
	ExtEXTEyeGazeInteraction
	ExtEXTViewConfigurationDepthRange
	ExtEXTConformanceAutomation
	ExtEXTHandTracking
	ExtEXTWin32AppcontainerCompatible
	ExtEXTDpadBinding
	ExtEXTHandJointsMotionRange
	ExtEXTSamsungOdysseyController
	ExtEXTHPMixedRealityController
	ExtEXTPalmPose
	ExtEXTUUID
	ExtEXTHandInteraction
	ExtEXTActiveActionSetPriority
	ExtEXTLocalFloor
	ExtEXTHandTrackingDataSource
	ExtEXTPlaneDetection
	ExtEXTFuture
	ExtEXTUserPresence
	ExtEXTCompositionLayerInvertedAlpha
	ExtFBCompositionLayerImageLayout
	ExtFBCompositionLayerAlphaBlend
	ExtFBAndroidSurfaceSwapchainCreate
	ExtFBSwapchainUpdateState
	ExtFBCompositionLayerSecureContent
	ExtFBBodyTracking
	ExtFBDisplayRefreshRate
	ExtFBColorSpace
	ExtFBHandTrackingMesh
	ExtFBHandTrackingAim
	ExtFBHandTrackingCapsules
	ExtFBSpatialEntity
	ExtFBFoveation
	ExtFBFoveationConfiguration
	ExtFBKeyboardTracking
	ExtFBTriangleMesh
	ExtFBPassthrough
	ExtFBRenderModel
	ExtFBSpatialEntityQuery
	ExtFBSpatialEntityStorage
	ExtFBFoveationVulkan
	ExtFBSwapchainUpdateStateVulkan
	ExtFBCompositionLayerSettings
	ExtFBTouchControllerProximity
	ExtFBHapticAmplitudeEnvelope
	ExtFBHapticPCM
	ExtFBCompositionLayerDepthTest
	ExtFBSpaceWarp
	ExtFBScene
	ExtFBSceneCapture
	ExtFBSpatialEntityContainer
	ExtFBFaceTracking
	ExtFBEyeTrackingSocial
	ExtFBPassthroughKeyboardHands
	ExtFBTouchControllerPro
	ExtMSFTUnboundedReferenceSpace
	ExtMSFTSpatialAnchor
	ExtMSFTSpatialGraphBridge
	ExtMSFTHandInteraction
	ExtMSFTHandTrackingMesh
	ExtMSFTSecondaryViewConfiguration
	ExtMSFTFirstPersonObserver
	ExtMSFTControllerModel
	ExtMSFTCompositionLayerReprojection
	ExtMSFTSpatialAnchorPersistence
	ExtMSFTSceneUnderstanding
	ExtMSFTHolographicWindowAttachment
	ExtHTCViveCosmosControllerInteraction
	ExtHTCFacialTracking
	ExtHTCViveFocus3ControllerInteraction
	ExtHTCHandInteraction
	ExtHTCViveWristTrackerInteraction
	ExtHTCPassthrough
	ExtHTCFoveation
	ExtMETAVulkanSwapchainCreateInfo
	ExtMETAPerformanceMetrics
	ExtMETAHeadsetID
	ExtMETAPassthroughColorLUT
	ExtMETALocalDimming
	ExtMETAVirtualKeyboard
	ExtMLML2ControllerInteraction
	ExtMLFrameEndInfo
	ExtMLGlobalDimmer
	ExtMLCompat
	ExtVALVEAnalogThreshold
	ExtVARJOQuadViews
	ExtVARJOFoveatedRendering
	ExtVARJOCompositionLayerDepthTest
	ExtVARJOEnvironmentDepthEstimation
	ExtVARJOMarkerTracking
	ExtVARJOViewOffset
	ExtMNDHeadless
	ExtMNDSwapchainUsageInputAttachmentBit
	ExtOCULUSAudioDeviceGUID
	ExtOCULUSAndroidSessionStateEnable
	ExtEXTXOverlay
	ExtULTRALEAPHandTrackingForearm
	ExtBDControllerInteraction
	ExtALMALENCEDigitalLensControl
	ExtHUAWEIControllerInteraction
	ExtEPICViewConfigurationFOV
	ExtMNDXEGLEnable

	extensionCount
)

var extensionNames = [extensionCount]string{
	ExtKHRAndroidThreadSettings:              "XR_KHR_android_thread_settings",
	ExtKHRAndroidSurfaceSwapchain:            "XR_KHR_android_surface_swapchain",
	ExtKHRCompositionLayerCube:               "XR_KHR_composition_layer_cube",
	ExtKHRAndroidCreateInstance:              "XR_KHR_android_create_instance",
	ExtKHRCompositionLayerDepth:              "XR_KHR_composition_layer_depth",
	ExtKHRVulkanSwapchainFormatList:          "XR_KHR_vulkan_swapchain_format_list",
	ExtKHRCompositionLayerCylinder:           "XR_KHR_composition_layer_cylinder",
	ExtKHRCompositionLayerEquirect:           "XR_KHR_composition_layer_equirect",
	ExtKHROpenGLEnable:                       "XR_KHR_opengl_enable",
	ExtKHROpenGLESEnable:                     "XR_KHR_opengl_es_enable",
	ExtKHRVulkanEnable:                       "XR_KHR_vulkan_enable",
	ExtKHRD3D11Enable:                        "XR_KHR_D3D11_enable",
	ExtKHRD3D12Enable:                        "XR_KHR_D3D12_enable",
	ExtKHRVisibilityMask:                     "XR_KHR_visibility_mask",
	ExtKHRCompositionLayerColorScaleBias:     "XR_KHR_composition_layer_color_scale_bias",
	ExtKHRWin32ConvertPerformanceCounterTime: "XR_KHR_win32_convert_performance_counter_time",
	ExtKHRConvertTimespecTime:                "XR_KHR_convert_timespec_time",
	ExtKHRLoaderInit:                         "XR_KHR_loader_init",
	ExtKHRLoaderInitAndroid:                  "XR_KHR_loader_init_android",
	ExtKHRVulkanEnable2:                      "XR_KHR_vulkan_enable2",
	ExtKHRCompositionLayerEquirect2:          "XR_KHR_composition_layer_equirect2",
	ExtKHRBindingModification:                "XR_KHR_binding_modification",
	ExtKHRSwapchainUsageInputAttachmentBit:   "XR_KHR_swapchain_usage_input_attachment_bit",
	ExtKHRLocateSpaces:                       "XR_KHR_locate_spaces",
	ExtKHRMaintenance1:                       "XR_KHR_maintenance1",
	ExtEXTPerformanceSettings:                "XR_EXT_performance_settings",
	ExtEXTThermalQuery:                       "XR_EXT_thermal_query",
	ExtEXTDebugUtils:                         "XR_EXT_debug_utils",
	ExtEXTEyeGazeInteraction:                 "XR_EXT_eye_gaze_interaction",
	ExtEXTViewConfigurationDepthRange:        "XR_EXT_view_configuration_depth_range",
	ExtEXTConformanceAutomation:              "XR_EXT_conformance_automation",
	ExtEXTHandTracking:                       "XR_EXT_hand_tracking",
	ExtEXTWin32AppcontainerCompatible:        "XR_EXT_win32_appcontainer_compatible",
	ExtEXTDpadBinding:                        "XR_EXT_dpad_binding",
	ExtEXTHandJointsMotionRange:              "XR_EXT_hand_joints_motion_range",
	ExtEXTSamsungOdysseyController:           "XR_EXT_samsung_odyssey_controller",
	ExtEXTHPMixedRealityController:           "XR_EXT_hp_mixed_reality_controller",
	ExtEXTPalmPose:                           "XR_EXT_palm_pose",
	ExtEXTUUID:                               "XR_EXT_uuid",
	ExtEXTHandInteraction:                    "XR_EXT_hand_interaction",
	ExtEXTActiveActionSetPriority:            "XR_EXT_active_action_set_priority",
	ExtEXTLocalFloor:                         "XR_EXT_local_floor",
	ExtEXTHandTrackingDataSource:             "XR_EXT_hand_tracking_data_source",
	ExtEXTPlaneDetection:                     "XR_EXT_plane_detection",
	ExtEXTFuture:                             "XR_EXT_future",
	ExtEXTUserPresence:                       "XR_EXT_user_presence",
	ExtEXTCompositionLayerInvertedAlpha:      "XR_EXT_composition_layer_inverted_alpha",
	ExtFBCompositionLayerImageLayout:         "XR_FB_composition_layer_image_layout",
	ExtFBCompositionLayerAlphaBlend:          "XR_FB_composition_layer_alpha_blend",
	ExtFBAndroidSurfaceSwapchainCreate:       "XR_FB_android_surface_swapchain_create",
	ExtFBSwapchainUpdateState:                "XR_FB_swapchain_update_state",
	ExtFBCompositionLayerSecureContent:       "XR_FB_composition_layer_secure_content",
	ExtFBBodyTracking:                        "XR_FB_body_tracking",
	ExtFBDisplayRefreshRate:                  "XR_FB_display_refresh_rate",
	ExtFBColorSpace:                          "XR_FB_color_space",
	ExtFBHandTrackingMesh:                    "XR_FB_hand_tracking_mesh",
	ExtFBHandTrackingAim:                     "XR_FB_hand_tracking_aim",
	ExtFBHandTrackingCapsules:                "XR_FB_hand_tracking_capsules",
	ExtFBSpatialEntity:                       "XR_FB_spatial_entity",
	ExtFBFoveation:                           "XR_FB_foveation",
	ExtFBFoveationConfiguration:              "XR_FB_foveation_configuration",
	ExtFBKeyboardTracking:                    "XR_FB_keyboard_tracking",
	ExtFBTriangleMesh:                        "XR_FB_triangle_mesh",
	ExtFBPassthrough:                         "XR_FB_passthrough",
	ExtFBRenderModel:                         "XR_FB_render_model",
	ExtFBSpatialEntityQuery:                  "XR_FB_spatial_entity_query",
	ExtFBSpatialEntityStorage:                "XR_FB_spatial_entity_storage",
	ExtFBFoveationVulkan:                     "XR_FB_foveation_vulkan",
	ExtFBSwapchainUpdateStateVulkan:          "XR_FB_swapchain_update_state_vulkan",
	ExtFBCompositionLayerSettings:            "XR_FB_composition_layer_settings",
	ExtFBTouchControllerProximity:            "XR_FB_touch_controller_proximity",
	ExtFBHapticAmplitudeEnvelope:             "XR_FB_haptic_amplitude_envelope",
	ExtFBHapticPCM:                           "XR_FB_haptic_pcm",
	ExtFBCompositionLayerDepthTest:           "XR_FB_composition_layer_depth_test",
	ExtFBSpaceWarp:                           "XR_FB_space_warp",
	ExtFBScene:                               "XR_FB_scene",
	ExtFBSceneCapture:                        "XR_FB_scene_capture",
	ExtFBSpatialEntityContainer:              "XR_FB_spatial_entity_container",
	ExtFBFaceTracking:                        "XR_FB_face_tracking",
	ExtFBEyeTrackingSocial:                   "XR_FB_eye_tracking_social",
	ExtFBPassthroughKeyboardHands:            "XR_FB_passthrough_keyboard_hands",
	ExtFBTouchControllerPro:                  "XR_FB_touch_controller_pro",
	ExtMSFTUnboundedReferenceSpace:           "XR_MSFT_unbounded_reference_space",
	ExtMSFTSpatialAnchor:                     "XR_MSFT_spatial_anchor",
	ExtMSFTSpatialGraphBridge:                "XR_MSFT_spatial_graph_bridge",
	ExtMSFTHandInteraction:                   "XR_MSFT_hand_interaction",
	ExtMSFTHandTrackingMesh:                  "XR_MSFT_hand_tracking_mesh",
	ExtMSFTSecondaryViewConfiguration:        "XR_MSFT_secondary_view_configuration",
	ExtMSFTFirstPersonObserver:               "XR_MSFT_first_person_observer",
	ExtMSFTControllerModel:                   "XR_MSFT_controller_model",
	ExtMSFTCompositionLayerReprojection:      "XR_MSFT_composition_layer_reprojection",
	ExtMSFTSpatialAnchorPersistence:          "XR_MSFT_spatial_anchor_persistence",
	ExtMSFTSceneUnderstanding:                "XR_MSFT_scene_understanding",
	ExtMSFTHolographicWindowAttachment:       "XR_MSFT_holographic_window_attachment",
	ExtHTCViveCosmosControllerInteraction:    "XR_HTC_vive_cosmos_controller_interaction",
	ExtHTCFacialTracking:                     "XR_HTC_facial_tracking",
	ExtHTCViveFocus3ControllerInteraction:    "XR_HTC_vive_focus3_controller_interaction",
	ExtHTCHandInteraction:                    "XR_HTC_hand_interaction",
	ExtHTCViveWristTrackerInteraction:        "XR_HTC_vive_wrist_tracker_interaction",
	ExtHTCPassthrough:                        "XR_HTC_passthrough",
	ExtHTCFoveation:                          "XR_HTC_foveation",
	ExtMETAVulkanSwapchainCreateInfo:         "XR_META_vulkan_swapchain_create_info",
	ExtMETAPerformanceMetrics:                "XR_META_performance_metrics",
	ExtMETAHeadsetID:                         "XR_META_headset_id",
	ExtMETAPassthroughColorLUT:               "XR_META_passthrough_color_lut",
	ExtMETALocalDimming:                      "XR_META_local_dimming",
	ExtMETAVirtualKeyboard:                   "XR_META_virtual_keyboard",
	ExtMLML2ControllerInteraction:            "XR_ML_ml2_controller_interaction",
	ExtMLFrameEndInfo:                        "XR_ML_frame_end_info",
	ExtMLGlobalDimmer:                        "XR_ML_global_dimmer",
	ExtMLCompat:                              "XR_ML_compat",
	ExtVALVEAnalogThreshold:                  "XR_VALVE_analog_threshold",
	ExtVARJOQuadViews:                        "XR_VARJO_quad_views",
	ExtVARJOFoveatedRendering:                "XR_VARJO_foveated_rendering",
	ExtVARJOCompositionLayerDepthTest:        "XR_VARJO_composition_layer_depth_test",
	ExtVARJOEnvironmentDepthEstimation:       "XR_VARJO_environment_depth_estimation",
	ExtVARJOMarkerTracking:                   "XR_VARJO_marker_tracking",
	ExtVARJOViewOffset:                       "XR_VARJO_view_offset",
	ExtMNDHeadless:                           "XR_MND_headless",
	ExtMNDSwapchainUsageInputAttachmentBit:   "XR_MND_swapchain_usage_input_attachment_bit",
	ExtOCULUSAudioDeviceGUID:                 "XR_OCULUS_audio_device_guid",
	ExtOCULUSAndroidSessionStateEnable:       "XR_OCULUS_android_session_state_enable",
	ExtEXTXOverlay:                           "XR_EXTX_overlay",
	ExtULTRALEAPHandTrackingForearm:          "XR_ULTRALEAP_hand_tracking_forearm",
	ExtBDControllerInteraction:               "XR_BD_controller_interaction",
	ExtALMALENCEDigitalLensControl:           "XR_ALMALENCE_digital_lens_control",
	ExtHUAWEIControllerInteraction:           "XR_HUAWEI_controller_interaction",
	ExtEPICViewConfigurationFOV:              "XR_EPIC_view_configuration_fov",
	ExtMNDXEGLEnable:                         "XR_MNDX_egl_enable",
}

var extensionsByName = func() map[string]Extension {
	m := make(map[string]Extension, extensionCount)
	for i, n := range extensionNames {
		m[n] = Extension(i)
	}
	return m
}()

// Name returns the registry name of the extension, e.g. "XR_KHR_vulkan_enable".
func (e Extension) Name() string {
	if e < 0 || e >= extensionCount {
		return ""
	}
	return extensionNames[e]
}

func (e Extension) String() string { return e.Name() }

// LookupExtension maps a registry name to a known extension.
func LookupExtension(name string) (Extension, bool) {
	e, ok := extensionsByName[name]
	return e, ok
}

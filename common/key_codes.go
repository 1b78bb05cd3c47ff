package common

// Key codes passed to window key callbacks. The values are GLFW's.
const (
	KeySpace  uint32 = 32
	KeyC      uint32 = 67
	KeyP      uint32 = 80
	KeyX      uint32 = 88
)

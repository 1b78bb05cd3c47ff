//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Native builds everything against the system OpenXR loader (cgo, libopenxr_loader).
func (Build) Native() error {
	_, err := executeCmd("go", withArgs("build", "-tags", "openxr", "./..."), withEnv("CGO_ENABLED=1"), withStream())
	return err
}

// Stub builds everything without the OpenXR binding; XR reports unavailable and the engine renders flat.
func (Build) Stub() error {
	_, err := executeCmd("go", withArgs("build", "./..."), withStream())
	return err
}

// Example builds the headset example into bin/.
func (Build) Example() error {
	mg.Deps(Build.Native)
	_, err := executeCmd("go", withArgs("build", "-tags", "openxr", "-o", "bin/", "./examples/..."), withEnv("CGO_ENABLED=1"), withStream())
	return err
}

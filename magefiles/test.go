//go:build mage

package main

import "fmt"

// Test runs the unit tests against the scripted fake runtime.
func Test() error {
	fmt.Println("Running tests...")
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

// Vet runs go vet with and without the native binding.
func Vet() error {
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("vet", "-tags", "openxr", "./..."), withEnv("CGO_ENABLED=1"), withStream())
	return err
}

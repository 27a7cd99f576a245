//go:build windows

package update

import "fmt"

// NeedsElevation always returns false on Windows; bosun never attempts
// auto-elevation there.
func NeedsElevation(binaryPath string) bool {
	return false
}

// ReExecWithSudo is not supported on Windows.
func ReExecWithSudo() error {
	return fmt.Errorf("automatic elevation is not supported on Windows; run 'bosun update' from an Administrator prompt")
}

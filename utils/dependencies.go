package utils

import (
	"fmt"
	"os"
	"runtime"
)

// ValidateOutputDir makes sure downloads can be written to dir, creating it
// when missing
func ValidateOutputDir(dir string) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".imgconvert-*")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable. %s", dir, getPermissionInstructions())
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// getPermissionInstructions returns a platform-specific hint for fixing permissions
func getPermissionInstructions() string {
	switch runtime.GOOS {
	case "windows":
		return "Choose a folder you own with --out"
	default:
		return "Fix with: chmod u+w <dir>, or choose another folder with --out"
	}
}

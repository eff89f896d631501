// Package accel probes for an optional native dynamics-acceleration
// library. Detection only: pkg/burst always drives neural dynamics
// through its Dynamics interface regardless of what this package finds;
// spec.md §1 marks the inner dynamics kernels out of scope, so accel
// never substitutes for that boundary, it only reports availability for
// logging and the debug HTTP surface.
package accel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// ErrLibraryNotFound is returned when the shared library cannot be
// located on any searched path.
var ErrLibraryNotFound = errors.New("feagi-core: native dynamics library not found")

var (
	libptr uintptr
	libOnce sync.Once
	libErr  error
)

// libraryName is the shared-object base name searched for per platform.
func libraryName(goos string) string {
	switch goos {
	case "windows":
		return "feagi_dynamics.dll"
	case "darwin":
		return "libfeagi_dynamics.dylib"
	default:
		return "libfeagi_dynamics.so"
	}
}

// Probe attempts to locate and Dlopen the native dynamics library exactly
// once, caching the result. It never registers any function symbols —
// there is no defined ABI for a neural-dynamics kernel in spec.md, so
// this stops at availability detection rather than fabricating a
// function surface to call.
func Probe() error {
	libOnce.Do(func() {
		path, err := findLibrary(libraryName(runtime.GOOS), runtime.GOOS)
		if err != nil {
			libErr = err
			return
		}
		libptr, libErr = load(path)
	})
	return libErr
}

// IsAvailable checks whether the native library can be found without
// loading it.
func IsAvailable() bool {
	_, err := findLibrary(libraryName(runtime.GOOS), runtime.GOOS)
	return err == nil
}

func findLibrary(name, goos string) (string, error) {
	dirs := libDirs(goos)
	checked := make([]string, 0, len(dirs))

	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		checked = append(checked, path)
	}

	return "", fmt.Errorf("%w: '%s', checked:\n\t - %s", ErrLibraryNotFound, name, strings.Join(checked, "\n\t - "))
}

func libDirs(goos string) []string {
	dirs := []string{"/usr/lib", "/usr/local/lib"}

	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}

	switch goos {
	case "windows":
		if sys := os.Getenv("SYSTEMROOT"); sys != "" {
			dirs = append(dirs, filepath.Join(sys, "System32"))
		}
	case "darwin":
		dirs = append(dirs, "/opt/homebrew/lib")
	}

	for _, envKey := range []string{"LD_LIBRARY_PATH", "DYLD_LIBRARY_PATH", "FEAGI_ACCEL_LIB_PATH"} {
		if val := os.Getenv(envKey); val != "" {
			dirs = append(dirs, strings.Split(val, string(os.PathListSeparator))...)
		}
	}

	return dirs
}

// LibDirs is exported for testing.
func LibDirs(goos string) []string { return libDirs(goos) }

// FindLibrary is exported for testing.
func FindLibrary(name, goos string) (string, error) { return findLibrary(name, goos) }

// ResolveLibraryError returns an operator-friendly message for a probe
// failure.
func ResolveLibraryError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrLibraryNotFound) {
		return fmt.Sprintf("native dynamics acceleration library not found; falling back to the in-process Dynamics implementation.\nOriginal error: %s", err)
	}
	return err.Error()
}

package accel

import (
	"strings"
	"testing"
)

func TestIsAvailableFalseWithoutLibraryInstalled(t *testing.T) {
	// In the test environment no native dynamics library is installed,
	// so detection must report unavailable rather than erroring.
	if IsAvailable() {
		t.Skip("a native dynamics library happens to be installed in this environment")
	}
}

func TestFindLibraryReportsCheckedPaths(t *testing.T) {
	_, err := FindLibrary("definitely-does-not-exist.so", "linux")
	if err == nil {
		t.Fatal("expected an error for a nonexistent library")
	}
	if got := err.Error(); !strings.Contains(got, "/usr/lib/definitely-does-not-exist.so") {
		t.Fatalf("expected the error to list the checked paths, got %q", got)
	}
}

func TestResolveLibraryErrorNilIsEmpty(t *testing.T) {
	if got := ResolveLibraryError(nil); got != "" {
		t.Fatalf("ResolveLibraryError(nil) = %q, want empty", got)
	}
}

func TestLibDirsNonEmpty(t *testing.T) {
	if len(LibDirs("linux")) == 0 {
		t.Fatal("expected at least one search directory")
	}
}

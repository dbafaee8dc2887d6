package mir

import (
	"path/filepath"
	"testing"
)

// TestFilePathsRoundTrip checks the path-consistency invariant the
// backend relies on: whichever root a File's path is expressed against,
// resolving it back through that root lands on the same subdir/name.
func TestFilePathsRoundTrip(t *testing.T) {
	const sourceRoot, buildRoot = "/src", "/src/build"

	tests := []struct {
		name  string
		file  *File
		built bool
	}{
		{"source file", NewFile("a.c", "sub", false, sourceRoot, buildRoot), false},
		{"source file at root", NewFile("main.c", ".", false, sourceRoot, buildRoot), false},
		{"built file", NewFile("out.c", "sub", true, sourceRoot, buildRoot), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := tc.file
			canonical := filepath.Join(f.Subdir, f.Name)

			if tc.built {
				if got := f.RelativeToBuildDir(); got != canonical {
					t.Fatalf("RelativeToBuildDir() = %q, want %q", got, canonical)
				}
				abs := filepath.Join(sourceRoot, f.Subdir, f.RelativeToSourceDir())
				if filepath.Clean(abs) != filepath.Join(buildRoot, canonical) {
					t.Fatalf("source-relative path %q does not resolve back to %q",
						f.RelativeToSourceDir(), filepath.Join(buildRoot, canonical))
				}
			} else {
				if got := f.RelativeToSourceDir(); got != canonical {
					t.Fatalf("RelativeToSourceDir() = %q, want %q", got, canonical)
				}
				abs := filepath.Join(buildRoot, f.Subdir, f.RelativeToBuildDir())
				if filepath.Clean(abs) != filepath.Join(sourceRoot, canonical) {
					t.Fatalf("build-relative path %q does not resolve back to %q",
						f.RelativeToBuildDir(), filepath.Join(sourceRoot, canonical))
				}
			}
		})
	}
}

func TestFileEqual(t *testing.T) {
	a := NewFile("a.c", "sub", false, "/src", "/build")
	b := NewFile("a.c", "sub", false, "/other", "/elsewhere")
	if !a.Equal(b) {
		t.Fatalf("files differing only in roots must compare equal")
	}
	if a.Equal(NewFile("a.c", "sub", true, "/src", "/build")) {
		t.Fatalf("built and source files must not compare equal")
	}
	if a.Equal(nil) {
		t.Fatalf("Equal(nil) must be false")
	}
}

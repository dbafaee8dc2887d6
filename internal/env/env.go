// Package env captures the small set of environment variables the
// compiler consults outside of CLI flags: the MIR debug dump path
// (§6) and overrides used by tests.
package env

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// DebugPrintMIR returns the path MESONPP_DEBUG_PRINT_MIR names, or ""
// if unset. A trailing ".gz" selects gzip compression (§6).
func DebugPrintMIR() string {
	return os.Getenv("MESONPP_DEBUG_PRINT_MIR")
}

// debugSink wraps the underlying file plus an optional gzip writer so
// Close flushes and releases both, in order, on every exit path.
type debugSink struct {
	gz *gzip.Writer
	f  *os.File
}

func (s *debugSink) Write(p []byte) (int, error) {
	if s.gz != nil {
		return s.gz.Write(p)
	}
	return s.f.Write(p)
}

func (s *debugSink) Close() error {
	if s.gz != nil {
		if err := s.gz.Close(); err != nil {
			s.f.Close()
			return err
		}
	}
	return s.f.Close()
}

// OpenDebugSink opens (appending) the MESONPP_DEBUG_PRINT_MIR path, or
// returns a nil writer if the variable is unset — callers treat a nil
// writer as "no debug dump requested". A ".gz" suffix runs the stream
// through klauspost/compress/gzip, the one place that dependency is
// wired (SPEC_FULL.md §6): the MIR dump is the only optionally-
// compressed artifact this compiler produces.
func OpenDebugSink() (io.WriteCloser, error) {
	path := DebugPrintMIR()
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		return &debugSink{gz: gzip.NewWriter(f), f: f}, nil
	}
	return &debugSink{f: f}, nil
}

// SourceRootOverride lets tests pin the source root without touching
// argv; empty means "use the CLI flag".
func SourceRootOverride() string {
	return os.Getenv("MESONPP_SOURCE_ROOT")
}

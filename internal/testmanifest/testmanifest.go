// Package testmanifest serializes and deserializes the test manifest
// (§4.H): a line-oriented, UTF-8, newline-terminated format a separate
// parallel test runner consumes.
package testmanifest

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/renameio"

	"github.com/mesonpp/mpp/internal/backend"
	"github.com/mesonpp/mpp/internal/mir"
)

// SerialVersion is the format version this package reads and writes.
// Deserialize rejects any file whose header doesn't match.
const SerialVersion = 0

func exePath(p string) string {
	if filepath.Dir(p) == "." {
		return "./" + p
	}
	return p
}

// Serialize renders tests in on-disk order (callers wanting a stable
// order should sort before calling, as backend.Emit already does by
// name).
func Serialize(tests []backend.Test) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "SERIAL_VERSION:%d\n", SerialVersion)
	for _, t := range tests {
		buf.WriteString("BEGIN_TEST\n")
		fmt.Fprintf(&buf, "  name:%s\n", t.Name)
		fmt.Fprintf(&buf, "  exe:%s\n", exePath(t.Exe))
		fmt.Fprintf(&buf, "  arguments:%s\n", strings.Join(t.Arguments, "|"))
		xfail := 0
		if t.XFail {
			xfail = 1
		}
		fmt.Fprintf(&buf, "  xfail:%d\n", xfail)
		buf.WriteString("END_TEST\n")
	}
	return buf.Bytes()
}

// Write serializes tests and atomically replaces path, using the same
// temp-file-then-rename discipline the teacher's internal/build package
// uses for every generated artifact.
func Write(path string, tests []backend.Test) error {
	return renameio.WriteFile(path, Serialize(tests), 0644)
}

// Deserialize parses a manifest previously produced by Serialize.
func Deserialize(data []byte) ([]backend.Test, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	if !sc.Scan() {
		return nil, mir.NewMesonException("testmanifest: empty manifest")
	}
	header := sc.Text()
	wantHeader := fmt.Sprintf("SERIAL_VERSION:%d", SerialVersion)
	if header != wantHeader {
		return nil, mir.NewMesonException(fmt.Sprintf("testmanifest: unsupported header %q, want %q", header, wantHeader))
	}

	var tests []backend.Test
	var cur *backend.Test
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "BEGIN_TEST":
			if cur != nil {
				return nil, mir.NewMesonException("testmanifest: nested BEGIN_TEST")
			}
			cur = &backend.Test{}
		case trimmed == "END_TEST":
			if cur == nil {
				return nil, mir.NewMesonException("testmanifest: END_TEST without BEGIN_TEST")
			}
			tests = append(tests, *cur)
			cur = nil
		case trimmed == "":
			continue
		default:
			if cur == nil {
				return nil, mir.NewMesonException(fmt.Sprintf("testmanifest: field %q outside BEGIN_TEST/END_TEST", trimmed))
			}
			key, value, ok := strings.Cut(trimmed, ":")
			if !ok {
				return nil, mir.NewMesonException(fmt.Sprintf("testmanifest: malformed field %q", trimmed))
			}
			switch key {
			case "name":
				cur.Name = value
			case "exe":
				cur.Exe = value
			case "arguments":
				if value != "" {
					cur.Arguments = strings.Split(value, "|")
				}
			case "xfail":
				n, err := strconv.Atoi(value)
				if err != nil {
					return nil, mir.WrapMesonException(fmt.Sprintf("testmanifest: bad xfail value %q", value), err)
				}
				cur.XFail = n != 0
			default:
				return nil, mir.NewMesonException(fmt.Sprintf("testmanifest: unknown field %q", key))
			}
		}
	}
	if cur != nil {
		return nil, mir.NewMesonException("testmanifest: unterminated BEGIN_TEST")
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return tests, nil
}

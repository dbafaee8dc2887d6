package toolchain

import (
	"context"
	"os/exec"
	"strings"
)

// candidates lists, per language, the binaries to probe, in order —
// grounded on Meson::Toolchain::Compiler::detect_cpp_compiler's
// DEFAULT_CPP list (meson/toolchains/detect_compilers.cpp upstream),
// generalized to C since that is the language E1 compiles.
var candidates = map[string][]string{
	"c":   {"cc", "gcc", "clang"},
	"cpp": {"c++", "g++", "clang++"},
}

// Detect probes each candidate binary for lang by running `<bin>
// --version` and matching on well-known banner text, exactly as the
// original implementation does with Util::process. Detection failure is
// not fatal here: project() lowering registers nothing for that
// language, and a later meson.get_compiler() for it fails in the
// compiler-insertion pass with a MesonException.
func Detect(ctx context.Context, lang string) *Toolchain {
	bins, ok := candidates[lang]
	if !ok {
		return nil
	}
	for _, bin := range bins {
		out, err := exec.CommandContext(ctx, bin, "--version").CombinedOutput()
		if err != nil {
			continue
		}
		text := string(out)
		switch {
		case strings.Contains(text, "Free Software Foundation"):
			return NewGNU(lang, bin)
		case strings.Contains(text, "clang version"):
			return NewGNU(lang, bin) // Clang accepts the same GNU-style flags.
		}
	}
	return nil
}

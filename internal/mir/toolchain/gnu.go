package toolchain

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mesonpp/mpp/internal/mir"
)

// GNULike implements Compiler, Linker and Archiver for the GCC/Clang
// family of command-line drivers, sufficient to drive the backend
// end-to-end without a real compiler installed (detection is a
// separate, bounded concern — see detect.go).
//
// Grounded on MIR::Toolchain::Compiler::CPP::GnuLike (mir/meson/
// toolchains/compilers/cpp/gnulike.cpp upstream) and the matching
// linker_drivers/gnu.cpp / archivers/gnu.cpp.
type GNULike struct {
	Lang    string
	Bin     string
	Darwin  bool
}

func (g *GNULike) ID() string       { return "gcc" }
func (g *GNULike) Language() string { return g.Lang }
func (g *GNULike) Command() []string { return []string{g.Bin} }
func (g *GNULike) OutputCommand(out string) []string { return []string{"-o", out} }
func (g *GNULike) CompileOnlyCommand() []string       { return []string{"-c"} }

// AlwaysArgs returns arguments the compiler requires on every
// invocation. Grounded verbatim on GnuLike::always_args.
func (g *GNULike) AlwaysArgs() []string {
	if g.Darwin {
		return nil
	}
	return []string{"-D_FILE_OFFSET_BITS=64"}
}

// GeneralizeArgument parses a native GCC-style flag into a generic
// Argument, grounded verbatim on GnuLike::generalize_argument.
func (g *GNULike) GeneralizeArgument(raw string) mir.Argument {
	switch {
	case strings.HasPrefix(raw, "-L"):
		return mir.Argument{Value: raw[2:], Type: mir.ArgLinkSearch}
	case strings.HasPrefix(raw, "-D"):
		return mir.Argument{Value: raw[2:], Type: mir.ArgDefine}
	case strings.HasPrefix(raw, "-l"):
		return mir.Argument{Value: raw[2:], Type: mir.ArgLink}
	case strings.HasPrefix(raw, "-I"):
		return mir.Argument{Value: raw[2:], Type: mir.ArgInclude}
	case strings.HasSuffix(raw, ".a"), strings.HasSuffix(raw, ".so"):
		return mir.Argument{Value: raw, Type: mir.ArgLink}
	default:
		return mir.Argument{Value: raw, Type: mir.ArgRaw}
	}
}

// SpecializeArgument renders a generic Argument into GCC's native
// spelling, grounded verbatim on GnuLike::specialize_argument (the
// include-directories rendering is the IncludeSystem vs IncludeBase
// split called out in spec §6).
func (g *GNULike) SpecializeArgument(a mir.Argument, sourceRoot, buildRoot string) []string {
	switch a.Type {
	case mir.ArgDefine:
		return []string{"-D" + a.Value}
	case mir.ArgLink:
		return []string{"-l" + a.Value}
	case mir.ArgLinkSearch:
		return []string{"-L" + a.Value}
	case mir.ArgInclude:
		flag := "-I"
		if a.IncludeKind == mir.IncludeSystem {
			flag = "-isystem"
		}
		dir := a.Value
		if sourceRoot != "" && buildRoot != "" {
			if rel, err := filepath.Rel(buildRoot, filepath.Join(sourceRoot, a.Value)); err == nil {
				dir = rel
			}
		}
		return []string{flag, dir}
	case mir.ArgRaw:
		return []string{a.Value}
	default:
		return []string{a.Value}
	}
}

// NewGNU returns a GNULike toolchain trio (compiler/linker/archiver all
// served by the same struct, matching the original's "gnu driver"
// pattern where the GCC frontend doubles as the linker driver).
func NewGNU(lang, bin string) *Toolchain {
	gl := &GNULike{Lang: lang, Bin: bin}
	return &Toolchain{
		Compiler: gl,
		Linker:   &gnuLinker{GNULike: gl},
		Archiver: &gnuArchiver{bin: "ar"},
	}
}

type gnuLinker struct{ *GNULike }

func (l *gnuLinker) ID() string { return "ld.gnu" }

type gnuArchiver struct{ bin string }

func (a *gnuArchiver) ID() string                    { return "ar" }
func (a *gnuArchiver) Command() []string             { return []string{a.bin} }
func (a *gnuArchiver) AlwaysArgs() []string           { return []string{"csrD"} }
func (a *gnuArchiver) OutputCommand(out string) []string {
	return []string{out}
}

var _ fmt.Stringer = (*GNULike)(nil)

func (g *GNULike) String() string { return fmt.Sprintf("%s(%s)", g.Lang, g.Bin) }

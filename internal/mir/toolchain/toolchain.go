// Package toolchain models the compiler/linker/archiver contract §6
// consumes: a capability query the core reads, never a black-box
// subprocess shelled out to at lowering time (detection, §6, stays a
// thin probe layered on top, not the core's concern).
//
// Grounded on MIR::Toolchain::Toolchain and its Compiler/Linker/Archiver
// members (mir/meson/toolchains/{toolchain,compiler,linker,archiver}.hpp
// upstream, implementation style from compilers/cpp/gnulike.cpp,
// linker_drivers/gnu.cpp, archivers/gnu.cpp).
package toolchain

import "github.com/mesonpp/mpp/internal/mir"

// Compiler is the per-language compile-side half of a Toolchain.
type Compiler interface {
	ID() string
	Language() string
	AlwaysArgs() []string
	Command() []string
	OutputCommand(out string) []string
	CompileOnlyCommand() []string
	SpecializeArgument(a mir.Argument, sourceRoot, buildRoot string) []string
	GeneralizeArgument(raw string) mir.Argument
}

// Linker is the link-side half.
type Linker interface {
	ID() string
	AlwaysArgs() []string
	Command() []string
	OutputCommand(out string) []string
}

// Archiver builds static libraries.
type Archiver interface {
	ID() string
	AlwaysArgs() []string
	Command() []string
	OutputCommand(out string) []string
}

// Toolchain bundles the three tools detected for one language, on one
// machine.
type Toolchain struct {
	Compiler Compiler
	Linker   Linker
	Archiver Archiver
}

// ID implements mir.ToolchainRef so a *Toolchain can be stored directly
// on a mir.Compiler object without an import cycle.
func (t *Toolchain) ID() string {
	if t == nil || t.Compiler == nil {
		return ""
	}
	return t.Compiler.ID()
}

package mir

import "path/filepath"

// File is a source or generated artifact. Built files live under
// BuildRoot/Subdir; source files live under SourceRoot/Subdir.
//
// Grounded on MIR::File (mir/mir.hpp + mir/meson/objects/file.cpp
// upstream).
type File struct {
	base
	Name       string
	Subdir     string
	Built      bool
	SourceRoot string
	BuildRoot  string
}

func NewFile(name, subdir string, built bool, sourceRoot, buildRoot string) *File {
	return &File{Name: name, Subdir: subdir, Built: built, SourceRoot: sourceRoot, BuildRoot: buildRoot}
}
func (*File) Kind() Kind { return KindFile }

// RelativeToSourceDir returns a source file's path as subdir/name
// relative to SourceRoot; for a built artifact it returns the path of
// BuildRoot/subdir/name relative to SourceRoot/subdir.
func (f *File) RelativeToSourceDir() string {
	if f.Built {
		abs := filepath.Join(f.BuildRoot, f.Subdir, f.Name)
		rel, err := filepath.Rel(filepath.Join(f.SourceRoot, f.Subdir), abs)
		if err != nil {
			return filepath.Join(f.Subdir, f.Name)
		}
		return rel
	}
	return filepath.Join(f.Subdir, f.Name)
}

// RelativeToBuildDir is the mirror of RelativeToSourceDir: a source
// file's path is expressed relative to BuildRoot/subdir, a built file's
// path is subdir/name relative to BuildRoot.
func (f *File) RelativeToBuildDir() string {
	if !f.Built {
		abs := filepath.Join(f.SourceRoot, f.Subdir, f.Name)
		rel, err := filepath.Rel(filepath.Join(f.BuildRoot, f.Subdir), abs)
		if err != nil {
			return filepath.Join(f.Subdir, f.Name)
		}
		return rel
	}
	return filepath.Join(f.Subdir, f.Name)
}

// Equal compares two Files structurally, per spec §3 ("built == built,
// subdir/name == subdir/name").
func (f *File) Equal(o *File) bool {
	return o != nil && f.Built == o.Built &&
		filepath.Join(f.Subdir, f.Name) == filepath.Join(o.Subdir, o.Name)
}

// IncludeDirectories is the result of include_directories().
type IncludeDirectories struct {
	base
	Dirs     []string
	IsSystem bool
}

func NewIncludeDirectories(dirs []string, isSystem bool) *IncludeDirectories {
	return &IncludeDirectories{Dirs: dirs, IsSystem: isSystem}
}
func (*IncludeDirectories) Kind() Kind { return KindIncludeDirectories }

// Executable and StaticLibrary are the two target kinds the backend
// knows how to build (§4.G). Sources have already been normalized to
// File/CustomTarget by src_to_file.
type Executable struct {
	base
	Name    string
	Subdir  string
	Sources []Object // *File or *CustomTarget
	Args    map[string][]Argument // by language
	IncludeDirs []*IncludeDirectories
	LinkWith    []Object // *StaticLibrary
	Language    string
	ForMachine  Machine
}

func (*Executable) Kind() Kind { return KindExecutable }

type StaticLibrary struct {
	base
	Name    string
	Subdir  string
	Sources []Object
	Args    map[string][]Argument
	IncludeDirs []*IncludeDirectories
	LinkWith    []Object
	Language    string
	ForMachine  Machine
}

func (*StaticLibrary) Kind() Kind { return KindStaticLibrary }

// CustomTarget is a user-defined rule: run Command, consuming Inputs,
// producing Outputs.
type CustomTarget struct {
	base
	Name     string
	Inputs   []Object // *File or *CustomTarget
	Outputs  []*File
	Command  []Object // strings, *File, *Program command elements
	Subdir   string
	Depends  []Object // *CustomTarget, *Executable, *StaticLibrary
	Depfile  string
}

func (*CustomTarget) Kind() Kind { return KindCustomTarget }

// Program is the result of find_program() resolution: Path is empty
// when the program could not be found.
type Program struct {
	base
	Name       string
	ForMachine Machine
	Path       string
}

func NewProgram(name string, forMachine Machine, path string) *Program {
	return &Program{Name: name, ForMachine: forMachine, Path: path}
}
func (*Program) Kind() Kind  { return KindProgram }
func (p *Program) Found() bool { return p.Path != "" }

// Dependency represents an external or declared dependency.
type Dependency struct {
	base
	Name      string
	Found     bool
	Version   string
	Arguments []Argument
}

func (*Dependency) Kind() Kind { return KindDependency }

// Compiler references the toolchain bound for one language on one
// machine (see internal/mir/toolchain).
type Compiler struct {
	base
	Language string
	Machine  Machine
	Toolchain ToolchainRef
}

func (*Compiler) Kind() Kind { return KindCompiler }

// ToolchainRef is an opaque handle the toolchain package fills in; kept
// here as an interface{} substitute to avoid an import cycle between
// mir and toolchain (toolchain.Toolchain implements it).
type ToolchainRef interface {
	ID() string
}

// Test is the result of a test() free-function call: a named
// executable invocation the backend serializes into the test manifest
// (§4.G, §4.H). Executable is whichever reduced object resolves to a
// runnable path: *File, *Executable, or *Program.
type Test struct {
	base
	Name       string
	Executable Object
	Arguments  []Object // *File or *String
	ShouldFail bool
}

func (*Test) Kind() Kind { return KindTest }

// AddArguments is the coalesced result of one or more
// add_global_arguments()/add_project_arguments() calls.
type AddArguments struct {
	base
	IsGlobal  bool
	Arguments map[string][]Argument // by language
}

func (*AddArguments) Kind() Kind { return KindAddArguments }

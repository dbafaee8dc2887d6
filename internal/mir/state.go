package mir

import (
	"sync"

	"github.com/mesonpp/mpp/internal/mir/machines"
)

// State is the persistent compilation state threaded through every
// pass invocation (§3 "Persistent state"): project metadata, detected
// toolchains and machine info, and the programs/dependencies the
// threaded resolver (§4.F) fills in. Growth is monotonic — passes only
// ever add entries, never remove them — so a pass re-run to fixpoint
// never undoes another pass's work.
//
// mu guards the toolchains, programs and dependencies maps; the
// threaded resolver writes programs and dependencies concurrently from
// its worker pool (§5);
// ProjectName/ProjectVersion/Roots are set once during project()
// lowering, before any concurrent phase starts, so reads of them need
// no lock.
type State struct {
	ProjectName    string
	ProjectVersion string
	Roots          Roots

	Machines *machines.PerMachine[machines.Info]

	mu           sync.Mutex
	toolchains   map[string]ToolchainRef // key: language+"/"+Machine.String()
	programs     map[string]*Program     // key: name+"/"+Machine.String()
	dependencies map[string]*Dependency  // key: name
}

// Roots names the two directories a configure run is anchored to: the
// DSL source tree, and where the generated build graph is written.
type Roots struct {
	SourceRoot string
	BuildRoot  string
}

// NewState returns an empty State seeded with the build machine's
// detected Info.
func NewState(roots Roots) *State {
	return &State{
		Roots:        roots,
		Machines:     machines.NewPerMachine(machines.DetectBuild()),
		toolchains:   make(map[string]ToolchainRef),
		programs:     make(map[string]*Program),
		dependencies: make(map[string]*Dependency),
	}
}

func toolchainKey(lang string, m Machine) string { return lang + "/" + m.String() }

// Toolchain returns the toolchain registered for lang on m, or nil.
func (s *State) Toolchain(lang string, m Machine) ToolchainRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toolchains[toolchainKey(lang, m)]
}

// SetToolchain registers a detected toolchain. Safe for concurrent use.
func (s *State) SetToolchain(lang string, m Machine, tc ToolchainRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toolchains[toolchainKey(lang, m)] = tc
}

func programKey(name string, m Machine) string { return name + "/" + m.String() }

// Program returns the resolved program named name for m, or nil if
// find_program hasn't resolved it (yet).
func (s *State) Program(name string, m Machine) *Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.programs[programKey(name, m)]
}

// SetProgram records a resolved program. Safe for concurrent use; this
// is the write side of the threaded resolver's find_program jobs.
func (s *State) SetProgram(name string, m Machine, p *Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programs[programKey(name, m)] = p
}

// Dependency returns the resolved dependency named name, or nil.
func (s *State) Dependency(name string) *Dependency {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dependencies[name]
}

// SetDependency records a resolved dependency. Safe for concurrent use;
// the write side of the threaded resolver's pkg-config jobs.
func (s *State) SetDependency(name string, d *Dependency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dependencies[name] = d
}

package backend

import (
	"testing"

	"github.com/mesonpp/mpp/internal/mir"
	"github.com/mesonpp/mpp/internal/mir/toolchain"
)

// TestEmitOrdersDependenciesBeforeDependents builds a StaticLibrary and
// an Executable that link_with it directly as MIR objects (bypassing
// the parser/lowering) and checks that Emit's rule list places every
// rule for the library ahead of every rule for the executable, the
// ordering orderTargets's topological sort over link_with/depends edges
// is responsible for.
func TestEmitOrdersDependenciesBeforeDependents(t *testing.T) {
	cfg := mir.NewCFG()

	libSrc := mir.NewFile("lib.c", ".", false, "/src", "/build")
	lib := &mir.StaticLibrary{
		Name:     "libfoo",
		Subdir:   ".",
		Sources:  []mir.Object{libSrc},
		Args:     map[string][]mir.Argument{},
		Language: "c",
	}

	exeSrc := mir.NewFile("main.c", ".", false, "/src", "/build")
	exe := &mir.Executable{
		Name:     "exe",
		Subdir:   ".",
		Sources:  []mir.Object{exeSrc},
		Args:     map[string][]mir.Argument{},
		LinkWith: []mir.Object{lib},
		Language: "c",
	}

	// Deliberately append the executable before its dependency so a
	// source-order-only emitter would get this wrong.
	cfg.Root.Block.Append(exe)
	cfg.Root.Block.Append(lib)

	tcs := Toolchains{"c": toolchain.NewGNU("c", "gcc")}
	rules, _, err := Emit(cfg, cfg.Root, tcs, "/src", "/build")
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	libIdx, exeIdx := -1, -1
	for i, r := range rules {
		if r.Target == "libfoo" && libIdx == -1 {
			libIdx = i
		}
		if r.Target == "exe" && r.Kind == RuleLink {
			exeIdx = i
		}
	}
	if libIdx == -1 {
		t.Fatalf("no rule for libfoo in %#v", rules)
	}
	if exeIdx == -1 {
		t.Fatalf("no link rule for exe in %#v", rules)
	}
	if libIdx >= exeIdx {
		t.Fatalf("libfoo's first rule (index %d) must precede exe's link rule (index %d)", libIdx, exeIdx)
	}

	var exeLink *Rule
	for i := range rules {
		if rules[i].Target == "exe" && rules[i].Kind == RuleLink {
			exeLink = &rules[i]
		}
	}
	found := false
	for _, in := range exeLink.Inputs {
		if in == "libfoo" {
			found = true
		}
	}
	if !found {
		t.Fatalf("exe's link inputs = %v, want to contain libfoo", exeLink.Inputs)
	}
}

// TestEmitSkipsUnresolvedLanguage checks that a target whose language
// has no registered toolchain contributes no compile rule rather than
// panicking on a nil Compiler (its link rule is still emitted, with no
// command).
func TestEmitSkipsUnresolvedLanguage(t *testing.T) {
	cfg := mir.NewCFG()
	src := mir.NewFile("main.rs", ".", false, "/src", "/build")
	exe := &mir.Executable{
		Name:     "exe",
		Subdir:   ".",
		Sources:  []mir.Object{src},
		Args:     map[string][]mir.Argument{},
		Language: "rust",
	}
	cfg.Root.Block.Append(exe)

	rules, _, err := Emit(cfg, cfg.Root, Toolchains{}, "/src", "/build")
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	for _, r := range rules {
		if r.Kind == RuleCompile {
			t.Fatalf("got a compile rule for an unresolved language: %#v", r)
		}
	}
}

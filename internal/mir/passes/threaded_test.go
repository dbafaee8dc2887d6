package passes

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mesonpp/mpp/internal/mir"
)

// TestThreadedResolveMissingProgramNotRequired checks that a
// find_program() with required:false on an empty PATH resolves to an
// unfound Program, and that a later found() method call on it folds to
// false rather than erroring out.
func TestThreadedResolveMissingProgramNotRequired(t *testing.T) {
	t.Setenv("PATH", "")
	ctx, cfg := newTestCtx()

	fc := mir.NewFunctionCall("find_program",
		[]mir.Object{mir.NewString("nonexistent")},
		map[string]mir.Object{"required": mir.NewBoolean(false)}, ".")
	fc.SetVar(mir.Variable{Name: "p"})
	cfg.Root.Block.Append(fc)

	changed, err := ThreadedResolve(ctx, cfg.Root)
	if err != nil {
		t.Fatalf("ThreadedResolve: %v", err)
	}
	if !changed {
		t.Fatalf("ThreadedResolve reported no change")
	}

	prog, ok := cfg.Root.Block.Instructions[0].(*mir.Program)
	if !ok {
		t.Fatalf("instruction 0 = %#v, want *mir.Program", cfg.Root.Block.Instructions[0])
	}
	if prog.Name != "nonexistent" || prog.Path != "" {
		t.Fatalf("Program = %+v, want name=nonexistent path=\"\"", prog)
	}
	if prog.Var().Name != "p" {
		t.Fatalf("Program variable = %+v, want p", prog.Var())
	}

	found := mir.NewFunctionCall("found", nil, nil, ".")
	found.Holder = prog
	cfg.Root.Block.Instructions[0] = found
	if _, err := ProgramMethods(ctx, cfg.Root); err != nil {
		t.Fatalf("ProgramMethods: %v", err)
	}
	b, ok := cfg.Root.Block.Instructions[0].(*mir.Boolean)
	if !ok || b.Value {
		t.Fatalf("found() folded to %#v, want Boolean(false)", cfg.Root.Block.Instructions[0])
	}
}

// TestThreadedResolveMissingProgramRequired checks the default
// required:true contract: an unfound program aborts the run with a
// MesonException naming the program.
func TestThreadedResolveMissingProgramRequired(t *testing.T) {
	t.Setenv("PATH", "")
	ctx, cfg := newTestCtx()

	fc := mir.NewFunctionCall("find_program",
		[]mir.Object{mir.NewString("nonexistent")}, nil, ".")
	cfg.Root.Block.Append(fc)

	_, err := ThreadedResolve(ctx, cfg.Root)
	if err == nil {
		t.Fatalf("ThreadedResolve succeeded on a missing required program")
	}
	var me *mir.MesonException
	if !errors.As(err, &me) {
		t.Fatalf("error = %T(%v), want *mir.MesonException", err, err)
	}
}

// TestThreadedResolveFallbackCandidate checks left-to-right probing
// over multiple positional names: the first candidate is missing, the
// second exists, and the resolved Program keeps the first (canonical)
// name while being registered under every alias.
func TestThreadedResolveFallbackCandidate(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "gmake")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("writing fake tool: %v", err)
	}
	t.Setenv("PATH", dir)

	ctx, cfg := newTestCtx()
	fc := mir.NewFunctionCall("find_program",
		[]mir.Object{mir.NewString("make"), mir.NewString("gmake")}, nil, ".")
	cfg.Root.Block.Append(fc)

	changed, err := ThreadedResolve(ctx, cfg.Root)
	if err != nil {
		t.Fatalf("ThreadedResolve: %v", err)
	}
	if !changed {
		t.Fatalf("ThreadedResolve reported no change")
	}
	prog, ok := cfg.Root.Block.Instructions[0].(*mir.Program)
	if !ok {
		t.Fatalf("instruction 0 = %#v, want *mir.Program", cfg.Root.Block.Instructions[0])
	}
	if prog.Name != "make" || prog.Path != tool {
		t.Fatalf("Program = %+v, want name=make path=%q", prog, tool)
	}
	for _, alias := range []string{"make", "gmake"} {
		if got := ctx.State.Program(alias, mir.MachineHost); got != prog {
			t.Fatalf("State.Program(%q) = %+v, want the shared resolution", alias, got)
		}
	}
}

// TestThreadedResolveCustomTargetCommand drives the two-pass handoff:
// CustomTargetProgramReplacement wraps a bare command string into a
// find_program() call, and ThreadedResolve resolves it in place inside
// the CustomTarget's command list.
func TestThreadedResolveCustomTargetCommand(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "gen")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("writing fake tool: %v", err)
	}
	t.Setenv("PATH", dir)

	ctx, cfg := newTestCtx()
	ct := &mir.CustomTarget{
		Name:    "gen_out",
		Outputs: []*mir.File{mir.NewFile("out.c", ".", true, "/src", "/build")},
		Command: []mir.Object{mir.NewString("gen"), mir.NewString("out.c")},
		Subdir:  ".",
	}
	cfg.Root.Block.Append(ct)

	if _, err := CustomTargetProgramReplacement(ctx, cfg.Root); err != nil {
		t.Fatalf("CustomTargetProgramReplacement: %v", err)
	}
	if _, ok := ct.Command[0].(*mir.FunctionCall); !ok {
		t.Fatalf("command[0] = %#v, want a find_program call", ct.Command[0])
	}

	changed, err := ThreadedResolve(ctx, cfg.Root)
	if err != nil {
		t.Fatalf("ThreadedResolve: %v", err)
	}
	if !changed {
		t.Fatalf("ThreadedResolve reported no change")
	}
	prog, ok := ct.Command[0].(*mir.Program)
	if !ok {
		t.Fatalf("command[0] = %#v, want *mir.Program", ct.Command[0])
	}
	if prog.Path != tool {
		t.Fatalf("resolved path = %q, want %q", prog.Path, tool)
	}
}

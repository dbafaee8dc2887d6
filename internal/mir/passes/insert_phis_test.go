package passes

import (
	"testing"

	"github.com/mesonpp/mpp/internal/mir"
)

// buildUnresolvableIf constructs the CFG shape the builder emits for
//
//	x = 1
//	x = 2
//	if cond
//	  x = 3
//	endif
//	message(x)
//
// with cond an identifier nothing ever defines, so pruning can never
// collapse the branch and the join keeps both incoming paths alive.
func buildUnresolvableIf() (*Ctx, *mir.CFG, *mir.Node, *mir.Node) {
	ctx, cfg := newTestCtx()
	root := cfg.Root
	arm := cfg.NewNode()
	join := cfg.NewNode()
	cfg.Link(root, arm)
	cfg.Link(root, join)
	cfg.Link(arm, join)

	one := mir.NewNumber(1)
	one.SetVar(mir.Variable{Name: "x"})
	root.Block.Append(one)
	two := mir.NewNumber(2)
	two.SetVar(mir.Variable{Name: "x"})
	root.Block.Append(two)
	root.Block.Append(mir.NewBranch(
		mir.BranchArm{Predicate: mir.NewIdentifier("cond"), Target: arm},
		mir.BranchArm{Predicate: mir.NewBoolean(true), Target: join},
	))

	three := mir.NewNumber(3)
	three.SetVar(mir.Variable{Name: "x"})
	arm.Block.Append(three)
	arm.Block.Append(mir.NewJump(join))

	join.Block.Append(mir.NewFunctionCall("message", []mir.Object{mir.NewIdentifier("x")}, nil, "."))
	return ctx, cfg, arm, join
}

func runWalkerToFixpoint(t *testing.T, ctx *Ctx, root *mir.Node) {
	t.Helper()
	for i := 0; i < 6; i++ {
		ctx.resetVarCurrent()
		progress, err := GraphWalker(ctx, root, nodePasses)
		if err != nil {
			t.Fatalf("GraphWalker iteration %d: %v", i, err)
		}
		if !progress {
			return
		}
	}
}

// TestInsertPhisNestedJoinPassThrough builds the CFG for
//
//	x = 1
//	if cond
//	  if cond2
//	    x = 2
//	  endif
//	endif
//	message(x)
//
// with both conditions unresolvable. The inner join's else edge and the
// outer join's root edge never assign x locally, so both joins only see
// the converging definitions through inherited reaching versions: the
// inner join must merge {x=1, x=2}, the outer join must merge {x=1,
// inner phi}, and message(x) must read the outer phi — never a single
// leaked definition.
func TestInsertPhisNestedJoinPassThrough(t *testing.T) {
	ctx, cfg := newTestCtx()
	root := cfg.Root
	armOuter := cfg.NewNode()
	armInner := cfg.NewNode()
	joinInner := cfg.NewNode()
	joinOuter := cfg.NewNode()
	cfg.Link(root, armOuter)
	cfg.Link(root, joinOuter)
	cfg.Link(armOuter, armInner)
	cfg.Link(armOuter, joinInner)
	cfg.Link(armInner, joinInner)
	cfg.Link(joinInner, joinOuter)

	one := mir.NewNumber(1)
	one.SetVar(mir.Variable{Name: "x"})
	root.Block.Append(one)
	root.Block.Append(mir.NewBranch(
		mir.BranchArm{Predicate: mir.NewIdentifier("cond"), Target: armOuter},
		mir.BranchArm{Predicate: mir.NewBoolean(true), Target: joinOuter},
	))

	armOuter.Block.Append(mir.NewBranch(
		mir.BranchArm{Predicate: mir.NewIdentifier("cond2"), Target: armInner},
		mir.BranchArm{Predicate: mir.NewBoolean(true), Target: joinInner},
	))

	two := mir.NewNumber(2)
	two.SetVar(mir.Variable{Name: "x"})
	armInner.Block.Append(two)
	armInner.Block.Append(mir.NewJump(joinInner))

	joinInner.Block.Append(mir.NewJump(joinOuter))
	joinOuter.Block.Append(mir.NewFunctionCall("message", []mir.Object{mir.NewIdentifier("x")}, nil, "."))

	runWalkerToFixpoint(t, ctx, root)

	findPhi := func(n *mir.Node, where string) *mir.Phi {
		t.Helper()
		for _, instr := range n.Block.Instructions {
			if p, ok := instr.(*mir.Phi); ok && p.Var().Name == "x" {
				return p
			}
		}
		t.Fatalf("%s block %#v has no phi for x", where, n.Block.Instructions)
		return nil
	}
	innerPhi := findPhi(joinInner, "inner join")
	outerPhi := findPhi(joinOuter, "outer join")

	wantInner := map[uint32]struct{}{one.Var().GVN: {}, two.Var().GVN: {}}
	if len(innerPhi.Versions) != len(wantInner) {
		t.Fatalf("inner phi versions = %v, want {%d, %d}", innerPhi.SortedVersions(), one.Var().GVN, two.Var().GVN)
	}
	for v := range wantInner {
		if !innerPhi.HasVersion(v) {
			t.Fatalf("inner phi versions %v missing %d", innerPhi.SortedVersions(), v)
		}
	}

	wantOuter := map[uint32]struct{}{one.Var().GVN: {}, innerPhi.Var().GVN: {}}
	if len(outerPhi.Versions) != len(wantOuter) {
		t.Fatalf("outer phi versions = %v, want {%d, %d}", outerPhi.SortedVersions(), one.Var().GVN, innerPhi.Var().GVN)
	}
	for v := range wantOuter {
		if !outerPhi.HasVersion(v) {
			t.Fatalf("outer phi versions %v missing %d", outerPhi.SortedVersions(), v)
		}
	}

	var msg *mir.FunctionCall
	for _, instr := range joinOuter.Block.Instructions {
		if fc, ok := instr.(*mir.FunctionCall); ok && fc.Name == "message" {
			msg = fc
		}
	}
	if msg == nil {
		t.Fatalf("outer join lost its message() call: %#v", joinOuter.Block.Instructions)
	}
	ident, ok := msg.Positional[0].(*mir.Identifier)
	if !ok {
		t.Fatalf("message argument = %#v, want an Identifier", msg.Positional[0])
	}
	if ident.Version != outerPhi.Var().GVN {
		t.Fatalf("message reads x#%d, want the outer phi's version x#%d", ident.Version, outerPhi.Var().GVN)
	}
}

// TestInsertPhisVersionsMatchIncomingDefinitions checks the phi
// consistency invariant: the phi the join gets for x carries exactly
// the set of gvns of the latest x definition along each incoming edge,
// and the downstream use of x is rewritten to the phi's own version.
func TestInsertPhisVersionsMatchIncomingDefinitions(t *testing.T) {
	ctx, cfg, arm, join := buildUnresolvableIf()
	runWalkerToFixpoint(t, ctx, cfg.Root)

	var phi *mir.Phi
	for _, instr := range join.Block.Instructions {
		if p, ok := instr.(*mir.Phi); ok && p.Var().Name == "x" {
			phi = p
		}
	}
	if phi == nil {
		t.Fatalf("join block %#v has no phi for x", join.Block.Instructions)
	}

	wantLatest := make(map[uint32]struct{})
	for _, pred := range []*mir.Node{cfg.Root, arm} {
		latest := uint32(0)
		for _, instr := range pred.Block.Instructions {
			if v := instr.Var(); v.Name == "x" {
				latest = v.GVN
			}
		}
		if latest != 0 {
			wantLatest[latest] = struct{}{}
		}
	}
	if len(phi.Versions) != len(wantLatest) {
		t.Fatalf("phi versions = %v, want %v", phi.SortedVersions(), wantLatest)
	}
	for v := range wantLatest {
		if !phi.HasVersion(v) {
			t.Fatalf("phi versions %v missing incoming definition %d", phi.SortedVersions(), v)
		}
	}

	var msg *mir.FunctionCall
	for _, instr := range join.Block.Instructions {
		if fc, ok := instr.(*mir.FunctionCall); ok && fc.Name == "message" {
			msg = fc
		}
	}
	if msg == nil {
		t.Fatalf("join block lost its message() call: %#v", join.Block.Instructions)
	}
	ident, ok := msg.Positional[0].(*mir.Identifier)
	if !ok {
		t.Fatalf("message argument = %#v, want an Identifier (phi results are never propagated)", msg.Positional[0])
	}
	if ident.Version != phi.Var().GVN {
		t.Fatalf("message reads x#%d, want the phi's version x#%d", ident.Version, phi.Var().GVN)
	}
}

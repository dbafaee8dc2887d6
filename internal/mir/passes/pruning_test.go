package passes

import (
	"log"
	"testing"

	"github.com/mesonpp/mpp/internal/mir"
)

func newTestCtx() (*Ctx, *mir.CFG) {
	cfg := mir.NewCFG()
	state := mir.NewState(mir.Roots{SourceRoot: "/src", BuildRoot: "/build"})
	return NewCtx(cfg, state, log.Default()), cfg
}

// TestPruningDropsDeadArmAndItsEdges reproduces the if/else-with-a-
// literal-condition shape the builder emits (two arm nodes feeding one
// join) and checks that dropping the false-folding arm doesn't leave a
// dangling edge into the join — the bug that made InsertPhis see a
// pruned-away arm as still live.
func TestPruningDropsDeadArmAndItsEdges(t *testing.T) {
	ctx, cfg := newTestCtx()
	root := cfg.Root
	arm1 := cfg.NewNode()
	arm2 := cfg.NewNode()
	join := cfg.NewNode()
	cfg.Link(root, arm1)
	cfg.Link(root, arm2)
	cfg.Link(arm1, join)
	cfg.Link(arm2, join)

	root.Block.Append(mir.NewBranch(
		mir.BranchArm{Predicate: mir.NewBoolean(true), Target: arm1},
		mir.BranchArm{Predicate: mir.NewBoolean(true), Target: arm2},
	))

	changed, err := Pruning(ctx, root)
	if err != nil {
		t.Fatalf("Pruning: %v", err)
	}
	if !changed {
		t.Fatalf("Pruning reported no change")
	}

	j, ok := root.Block.Instructions[0].(*mir.Jump)
	if !ok || j.Target != arm1 {
		t.Fatalf("root's terminator = %#v, want Jump(arm1)", root.Block.Instructions[0])
	}
	if succs := cfg.Successors(root); len(succs) != 1 || succs[0] != arm1 {
		t.Fatalf("Successors(root) = %v, want [arm1]", succs)
	}
	if preds := cfg.Predecessors(join); len(preds) != 1 || preds[0] != arm1 {
		t.Fatalf("Predecessors(join) = %v, want [arm1] (arm2's dangling edge must be severed)", preds)
	}
	if succs := cfg.Successors(arm2); len(succs) != 0 {
		t.Fatalf("Successors(arm2) = %v, want none; dead arm must be fully disconnected", succs)
	}
}

func TestPruningDropsAlwaysFalseArm(t *testing.T) {
	ctx, cfg := newTestCtx()
	root := cfg.Root
	arm := cfg.NewNode()
	join := cfg.NewNode()
	cfg.Link(root, arm)
	cfg.Link(root, join)
	cfg.Link(arm, join)

	root.Block.Append(mir.NewBranch(
		mir.BranchArm{Predicate: mir.NewBoolean(false), Target: arm},
		mir.BranchArm{Predicate: mir.NewBoolean(true), Target: join},
	))

	changed, err := Pruning(ctx, root)
	if err != nil {
		t.Fatalf("Pruning: %v", err)
	}
	if !changed {
		t.Fatalf("Pruning reported no change")
	}
	j, ok := root.Block.Instructions[0].(*mir.Jump)
	if !ok || j.Target != join {
		t.Fatalf("root's terminator = %#v, want Jump(join)", root.Block.Instructions[0])
	}
	if succs := cfg.Successors(arm); len(succs) != 0 {
		t.Fatalf("Successors(arm) = %v, want none", succs)
	}
}

func TestPruningLeavesUndecidedBranchAlone(t *testing.T) {
	ctx, cfg := newTestCtx()
	root := cfg.Root
	arm1 := cfg.NewNode()
	arm2 := cfg.NewNode()
	cfg.Link(root, arm1)
	cfg.Link(root, arm2)

	root.Block.Append(mir.NewBranch(
		mir.BranchArm{Predicate: mir.NewIdentifier("cond"), Target: arm1},
		mir.BranchArm{Predicate: mir.NewBoolean(true), Target: arm2},
	))

	changed, err := Pruning(ctx, root)
	if err != nil {
		t.Fatalf("Pruning: %v", err)
	}
	if changed {
		t.Fatalf("Pruning acted on a branch with an unresolved predicate")
	}
	if _, ok := root.Block.Instructions[0].(*mir.Branch); !ok {
		t.Fatalf("root's terminator was replaced despite an unresolved arm")
	}
}

func TestGraphWalkerSkipsNodesSeveredMidWalk(t *testing.T) {
	ctx, cfg := newTestCtx()
	root := cfg.Root
	arm1 := cfg.NewNode()
	arm2 := cfg.NewNode()
	join := cfg.NewNode()
	cfg.Link(root, arm1)
	cfg.Link(root, arm2)
	cfg.Link(arm1, join)
	cfg.Link(arm2, join)

	root.Block.Append(mir.NewBranch(
		mir.BranchArm{Predicate: mir.NewBoolean(true), Target: arm1},
		mir.BranchArm{Predicate: mir.NewBoolean(true), Target: arm2},
	))
	nine := mir.NewNumber(9)
	nine.SetVar(mir.Variable{Name: "x"})
	arm1.Block.Append(nine)
	arm1.Block.Append(mir.NewJump(join))

	ten := mir.NewNumber(10)
	ten.SetVar(mir.Variable{Name: "x"})
	arm2.Block.Append(ten)
	arm2.Block.Append(mir.NewJump(join))

	msg := mir.NewFunctionCall("message", []mir.Object{mir.NewIdentifier("x")}, nil, ".")
	join.Block.Append(msg)

	for i := 0; i < 6; i++ {
		ctx.resetVarCurrent()
		if _, err := GraphWalker(ctx, root, nodePasses); err != nil {
			t.Fatalf("GraphWalker iteration %d: %v", i, err)
		}
	}

	reach := cfg.Reachable(root)
	if len(reach) != 1 {
		t.Fatalf("Reachable(root) after fixpoint = %d nodes, want 1 (fully collapsed)", len(reach))
	}

	var foundMessage *mir.Message
	for _, instr := range root.Block.Instructions {
		if m, ok := instr.(*mir.Message); ok {
			foundMessage = m
		}
	}
	if foundMessage == nil {
		t.Fatalf("root block %#v has no Message instruction after fixpoint", root.Block.Instructions)
	}
	if foundMessage.Text != "9" {
		t.Fatalf("message text = %q, want %q (the live arm's value, not the pruned one)", foundMessage.Text, "9")
	}
}

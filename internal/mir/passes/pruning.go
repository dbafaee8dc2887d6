package passes

import "github.com/mesonpp/mpp/internal/mir"

// Pruning drops branch arms whose predicate has folded to a literal
// false, and collapses a Branch down to a Jump once a literal true arm
// is reached (every arm after it is unreachable), unlinking the
// now-unreferenced successor edges (§4.E "branch pruning").
func Pruning(ctx *Ctx, node *mir.Node) (bool, error) {
	if len(node.Block.Instructions) == 0 {
		return false, nil
	}
	last := len(node.Block.Instructions) - 1
	br, ok := node.Block.Instructions[last].(*mir.Branch)
	if !ok {
		return false, nil
	}

	var keep []mir.BranchArm
	decided := false
	for _, arm := range br.Arms {
		if decided {
			continue
		}
		if b, ok := arm.Predicate.(*mir.Boolean); ok {
			if !b.Value {
				continue
			}
			keep = append(keep, arm)
			decided = true
			continue
		}
		keep = append(keep, arm)
	}
	if len(keep) == len(br.Arms) {
		return false, nil
	}

	keptTargets := make(map[*mir.Node]bool, len(keep))
	for _, a := range keep {
		keptTargets[a.Target] = true
	}
	for _, a := range br.Arms {
		if !keptTargets[a.Target] {
			ctx.CFG.Unlink(node, a.Target)
			severDeadSuccessors(ctx, a.Target)
		}
	}

	if len(keep) == 0 {
		node.Block.Instructions = node.Block.Instructions[:last]
		return true, nil
	}
	if len(keep) == 1 {
		j := mir.NewJump(keep[0].Target)
		j.SetVar(br.Var())
		node.Block.Instructions[last] = j
		return true, nil
	}
	nb := mir.NewBranch(keep...)
	nb.SetVar(br.Var())
	node.Block.Instructions[last] = nb
	return true, nil
}

// severDeadSuccessors unlinks n's own outgoing edges once n has no
// remaining predecessor, and recurses into whatever successors that
// leaves predecessor-less in turn. A pruned arm otherwise keeps a live
// edge into the join node it used to feed, which would leave
// InsertPhis reading a "predecessor" that the rest of the graph can no
// longer reach.
func severDeadSuccessors(ctx *Ctx, n *mir.Node) {
	if len(ctx.CFG.Predecessors(n)) > 0 {
		return
	}
	for _, s := range ctx.CFG.Successors(n) {
		ctx.CFG.Unlink(n, s)
		severDeadSuccessors(ctx, s)
	}
}

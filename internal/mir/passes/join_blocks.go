package passes

import "github.com/mesonpp/mpp/internal/mir"

// JoinBlocks splices a node into its sole successor when that successor
// has no other predecessor, shrinking the graph pruning and dead-code
// elimination otherwise leave fragmented into single-entry, single-exit
// chains (§4.E "join_blocks"). The unconditional Jump linking the two is
// dropped; the merged node inherits the successor's own successors.
func JoinBlocks(ctx *Ctx, node *mir.Node) (bool, error) {
	succs := ctx.CFG.Successors(node)
	if len(succs) != 1 {
		return false, nil
	}
	next := succs[0]
	if next == node {
		return false, nil
	}
	preds := ctx.CFG.Predecessors(next)
	if len(preds) != 1 || preds[0] != node {
		return false, nil
	}
	if len(node.Block.Instructions) == 0 {
		return false, nil
	}
	last := len(node.Block.Instructions) - 1
	if _, ok := node.Block.Instructions[last].(*mir.Jump); !ok {
		return false, nil
	}

	node.Block.Instructions = append(node.Block.Instructions[:last], next.Block.Instructions...)
	ctx.CFG.Unlink(node, next)
	for _, s := range ctx.CFG.Successors(next) {
		ctx.CFG.Link(node, s)
		ctx.CFG.Unlink(next, s)
	}
	ctx.CFG.RemoveNode(next)
	return true, nil
}

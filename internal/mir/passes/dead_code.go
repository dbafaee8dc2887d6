package passes

import "github.com/mesonpp/mpp/internal/mir"

// DeadCode truncates a block after its first LevelError Message and
// unlinks whatever successor edges the (now-removed) terminator used to
// justify, since control never reaches past a fatal error() call
// (§3 dead-code-removal invariant, §4.E "dead_code").
func DeadCode(ctx *Ctx, node *mir.Node) (bool, error) {
	idx, ok := node.Block.HasErrorMessage()
	if !ok {
		return false, nil
	}
	changed := false
	if idx < len(node.Block.Instructions)-1 {
		node.Block.Truncate(idx)
		changed = true
	}
	for _, s := range ctx.CFG.Successors(node) {
		ctx.CFG.Unlink(node, s)
		changed = true
	}
	return changed, nil
}

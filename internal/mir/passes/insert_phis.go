package passes

import (
	"sort"

	"github.com/mesonpp/mpp/internal/mir"
)

// lastLocalVersion returns the gvn of the last instruction in n's block
// defining name (phis included — they sit at the head of the block with
// the variable's name and a fresh gvn), or 0 when the block never
// assigns it.
func lastLocalVersion(n *mir.Node, name string) uint32 {
	last := uint32(0)
	for _, instr := range n.Block.Instructions {
		if v := instr.Var(); v.Name == name && v.GVN != 0 {
			last = v.GVN
		}
	}
	return last
}

// reachingVersions accumulates into out the gvns of name live at the
// exit of n: the block's own last definition when there is one,
// otherwise whatever reaches n through its predecessors. A predecessor
// that never assigns the name (an if arm's pass-through else edge, an
// inner join that only forwards control) contributes its inherited
// definition, not nothing.
func reachingVersions(ctx *Ctx, n *mir.Node, name string, seen map[*mir.Node]bool, out map[uint32]struct{}) {
	if seen[n] {
		return
	}
	seen[n] = true
	if gvn := lastLocalVersion(n, name); gvn != 0 {
		out[gvn] = struct{}{}
		return
	}
	for _, p := range ctx.CFG.Predecessors(n) {
		reachingVersions(ctx, p, name, seen, out)
	}
}

func hasPhiFor(node *mir.Node, name string) bool {
	for _, instr := range node.Block.Instructions {
		if _, ok := instr.(*mir.Phi); !ok {
			return false
		}
		if instr.Var().Name == name {
			return true
		}
	}
	return false
}

// InsertPhis inserts a Phi at the head of every join node (more than
// one predecessor) for each variable name that reaches the join with
// more than one distinct version, giving it a fresh GVN and recording
// that version as the name's current one in ctx.varCurrent so the next
// ValueNumbering pass over this node and its successors reads through
// the join (§4.C "phi insertion" / "fixup_phis"). Each incoming edge is
// resolved to the definition actually reaching it — an inner join whose
// own phi forwards a merged version counts as a definition, and a
// predecessor with no local assignment inherits one from further back —
// so nested ifs and armless else edges still converge on a phi.
// Candidate names come from the gvn table, which by predecessor-first
// walk order already covers every name defined upstream of the join.
func InsertPhis(ctx *Ctx, node *mir.Node) (bool, error) {
	preds := ctx.CFG.Predecessors(node)
	if len(preds) < 2 {
		return false, nil
	}
	names := make([]string, 0, len(ctx.gvn))
	for name := range ctx.gvn {
		names = append(names, name)
	}
	sort.Strings(names)

	changed := false
	for _, name := range names {
		if hasPhiFor(node, name) {
			continue
		}
		versions := make(map[uint32]struct{})
		for _, p := range preds {
			reachingVersions(ctx, p, name, make(map[*mir.Node]bool), versions)
		}
		if len(versions) < 2 {
			continue
		}
		list := make([]uint32, 0, len(versions))
		for v := range versions {
			list = append(list, v)
		}
		phi := mir.NewPhi(list...)
		phi.SetVar(mir.Variable{Name: name, GVN: ctx.nextGVN(name)})
		node.Block.Instructions = append([]mir.Object{phi}, node.Block.Instructions...)
		ctx.varCurrent[name] = phi.Var().GVN
		changed = true
	}
	return changed, nil
}

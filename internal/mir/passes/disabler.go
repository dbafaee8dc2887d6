package passes

import "github.com/mesonpp/mpp/internal/mir"

func isDisablerDeep(o mir.Object) bool {
	switch v := o.(type) {
	case nil:
		return false
	case *mir.Disabler:
		return true
	case *mir.Array:
		for _, e := range v.Elems {
			if isDisablerDeep(e) {
				return true
			}
		}
		return false
	case *mir.Dict:
		for _, e := range v.Values {
			if isDisablerDeep(e) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func containsDisabler(instr mir.Object) bool {
	fc, ok := instr.(*mir.FunctionCall)
	if !ok {
		return false
	}
	if isDisablerDeep(fc.Holder) {
		return true
	}
	for _, p := range fc.Positional {
		if isDisablerDeep(p) {
			return true
		}
	}
	for _, v := range fc.Keyword {
		if isDisablerDeep(v) {
			return true
		}
	}
	return false
}

// DisablerPropagation replaces any construct — today, function/method
// calls — that has a Disabler anywhere among its arguments with a fresh
// Disabler, transitively (§4.D "Disabler propagation"). Branch/Jump
// predicates are left alone: a terminator has no value slot to become a
// Disabler into without breaking the block's single-terminator
// invariant, so a disabled condition simply never folds to a constant
// and the branch survives unevaluated.
func DisablerPropagation(ctx *Ctx, node *mir.Node) (bool, error) {
	changed := false
	for i, instr := range node.Block.Instructions {
		if _, already := instr.(*mir.Disabler); already {
			continue
		}
		if containsDisabler(instr) {
			d := mir.NewDisabler()
			d.SetVar(instr.Var())
			node.Block.Instructions[i] = d
			changed = true
		}
	}
	return changed, nil
}

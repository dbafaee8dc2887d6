package passes

import "github.com/mesonpp/mpp/internal/mir"

// ConstantPropagation records every reduced value an instruction binds
// to a variable, then substitutes that value at each Identifier
// reference resolving to the same (name, gvn) pair inside a function
// call's arguments or an Array/Dict instruction; a bare Identifier
// instruction is not replaced (§4.E "constant propagation"). Phi results are never propagated through — a Phi's
// value depends on which predecessor ran, so it stays an Identifier
// until pruning/join_blocks collapses the graph enough to resolve it.
func ConstantPropagation(ctx *Ctx, node *mir.Node) (bool, error) {
	changed := false
	cb := func(obj mir.Object) (mir.Object, bool) {
		ident, ok := obj.(*mir.Identifier)
		if !ok {
			return obj, false
		}
		val, ok := ctx.values[mir.Variable{Name: ident.Name, GVN: ident.Version}]
		if !ok {
			return obj, false
		}
		return val, true
	}
	for i, instr := range node.Block.Instructions {
		if _, ok := instr.(*mir.FunctionCall); ok {
			if FunctionArgumentWalker(instr.(*mir.FunctionCall), cb) {
				changed = true
			}
		} else if _, ok := instr.(*mir.Array); ok {
			if newObj, did := ArrayWalker(instr, cb); did {
				node.Block.Instructions[i] = newObj
				instr = newObj
				changed = true
			}
		} else if _, ok := instr.(*mir.Dict); ok {
			if newObj, did := ArrayWalker(instr, cb); did {
				node.Block.Instructions[i] = newObj
				instr = newObj
				changed = true
			}
		}

		v := instr.Var()
		if v.Name == "" {
			continue
		}
		if _, isPhi := instr.(*mir.Phi); isPhi {
			delete(ctx.values, v)
			continue
		}
		if mir.IsReduced(instr) {
			ctx.values[v] = instr
		} else {
			delete(ctx.values, v)
		}
	}
	return changed, nil
}

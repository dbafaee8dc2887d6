package passes

import "github.com/mesonpp/mpp/internal/mir"

// ValueNumbering assigns a fresh global value number to every
// instruction whose result is bound to a name, and stamps that number
// onto the Identifier references in function-call arguments, Array
// instructions and Branch predicates that resolve to it (a bare
// Identifier instruction and a Dict instruction are not rewritten) — including
// references in blocks reached after the defining block, since
// GraphWalker visits nodes in predecessor-first order and ctx.varCurrent
// carries the last-seen version for each name across that traversal
// (§4.C "global value numbering").
func ValueNumbering(ctx *Ctx, node *mir.Node) (bool, error) {
	changed := false
	cb := func(obj mir.Object) (mir.Object, bool) {
		ident, ok := obj.(*mir.Identifier)
		if !ok {
			return obj, false
		}
		if gvn, ok := ctx.varCurrent[ident.Name]; ok && ident.Version != gvn {
			ident.Version = gvn
			return ident, true
		}
		return obj, false
	}
	for i, instr := range node.Block.Instructions {
		if _, isPhi := instr.(*mir.Phi); !isPhi {
			if fc, ok := instr.(*mir.FunctionCall); ok {
				if FunctionArgumentWalker(fc, cb) {
					changed = true
				}
			} else if _, ok := instr.(*mir.Array); ok {
				if newObj, did := ArrayWalker(instr, cb); did {
					node.Block.Instructions[i] = newObj
					instr = newObj
					changed = true
				}
			} else if br, ok := instr.(*mir.Branch); ok {
				for j := range br.Arms {
					if np, did := walkPredicate(br.Arms[j].Predicate, cb); did {
						br.Arms[j].Predicate = np
						changed = true
					}
				}
			}
		}
		v := instr.Var()
		if v.Name == "" {
			continue
		}
		if v.GVN == 0 {
			v.GVN = ctx.nextGVN(v.Name)
			instr.SetVar(v)
			changed = true
		}
		ctx.varCurrent[v.Name] = v.GVN
	}
	return changed, nil
}

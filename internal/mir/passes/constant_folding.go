package passes

import "github.com/mesonpp/mpp/internal/mir"

func resolveConstant(ctx *Ctx, obj mir.Object) (mir.Object, bool) {
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

// ConstantFolding propagates known values (built up by
// ConstantPropagation) into Branch and Jump predicates — the one
// position FunctionWalker's instruction/array/function-argument
// traversal does reach, but that ConstantPropagation intentionally
// leaves alone since folding a predicate is pruning.go's cue to act,
// not a generic substitution (§4.E "constant folding").
func ConstantFolding(ctx *Ctx, node *mir.Node) (bool, error) {
	changed := false
	for _, instr := range node.Block.Instructions {
		switch t := instr.(type) {
		case *mir.Branch:
			for i := range t.Arms {
				if v, did := resolveConstant(ctx, t.Arms[i].Predicate); did {
					t.Arms[i].Predicate = v
					changed = true
				}
			}
		case *mir.Jump:
			if t.Predicate != nil {
				if v, did := resolveConstant(ctx, t.Predicate); did {
					t.Predicate = v
					changed = true
				}
			}
		}
	}
	return changed, nil
}

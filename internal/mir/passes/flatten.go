package passes

import "github.com/mesonpp/mpp/internal/mir"

// flattenDeep merges nested arrays into their parent one level at a
// time, bottom-up, until no Array element is itself an Array (§8 E6:
// `['a', ['b', ['c']], 'd']` converges to a single-level four-string
// array at the pipeline's fixed point).
func flattenDeep(obj mir.Object) (mir.Object, bool) {
	arr, ok := obj.(*mir.Array)
	if !ok {
		return obj, false
	}
	changed := false
	var out []mir.Object
	for _, e := range arr.Elems {
		ne, did := flattenDeep(e)
		if did {
			changed = true
		}
		if inner, ok := ne.(*mir.Array); ok {
			out = append(out, inner.Elems...)
			changed = true
		} else {
			out = append(out, ne)
		}
	}
	if !changed {
		return obj, false
	}
	na := mir.NewArray(out...)
	na.SetVar(arr.Var())
	return na, true
}

// Flatten is the array-flattening pass (§8 E6): it reaches every array
// that could appear as a function argument or a bare instruction.
func Flatten(ctx *Ctx, node *mir.Node) (bool, error) {
	changed := false
	for i, instr := range node.Block.Instructions {
		switch o := instr.(type) {
		case *mir.Array:
			if na, did := flattenDeep(o); did {
				node.Block.Instructions[i] = na
				changed = true
			}
		case *mir.FunctionCall:
			for j, p := range o.Positional {
				if np, did := flattenDeep(p); did {
					o.Positional[j] = np
					changed = true
				}
			}
			for k, v := range o.Keyword {
				if nv, did := flattenDeep(v); did {
					o.Keyword[k] = nv
					changed = true
				}
			}
		}
	}
	return changed, nil
}

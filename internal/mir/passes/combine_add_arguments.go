package passes

import "github.com/mesonpp/mpp/internal/mir"

func mergeArgMaps(dst, src map[string][]mir.Argument) {
	for lang, args := range src {
		dst[lang] = append(dst[lang], args...)
	}
}

// CombineAddArguments coalesces every add_global_arguments()/
// add_project_arguments() instruction within a block into a single
// AddArguments instruction per scope (global and project arguments
// stay separate), in call order (§4.D "add_global_arguments/
// add_project_arguments").
func CombineAddArguments(ctx *Ctx, node *mir.Node) (bool, error) {
	var globalIdx, projectIdx = -1, -1
	changed := false
	for i, instr := range node.Block.Instructions {
		aa, ok := instr.(*mir.AddArguments)
		if !ok {
			continue
		}
		if aa.IsGlobal {
			if globalIdx == -1 {
				globalIdx = i
				continue
			}
			mergeArgMaps(node.Block.Instructions[globalIdx].(*mir.AddArguments).Arguments, aa.Arguments)
		} else {
			if projectIdx == -1 {
				projectIdx = i
				continue
			}
			mergeArgMaps(node.Block.Instructions[projectIdx].(*mir.AddArguments).Arguments, aa.Arguments)
		}
		e := mir.NewEmpty()
		e.SetVar(aa.Var())
		node.Block.Instructions[i] = e
		changed = true
	}
	return changed, nil
}

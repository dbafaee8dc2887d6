package passes

import "github.com/mesonpp/mpp/internal/mir"

// CustomTargetProgramReplacement rewrites a bare string in the first
// position of a custom_target() Command into a find_program() call on
// that string, so the threaded resolver's generic find_program handling
// is the only place that ever resolves a command to a path (§4.D
// "command[0] normalization", §4.F).
func CustomTargetProgramReplacement(ctx *Ctx, node *mir.Node) (bool, error) {
	changed := false
	for _, instr := range node.Block.Instructions {
		ct, ok := instr.(*mir.CustomTarget)
		if !ok || len(ct.Command) == 0 {
			continue
		}
		s, ok := ct.Command[0].(*mir.String)
		if !ok {
			continue
		}
		fc := mir.NewFunctionCall("find_program", []mir.Object{s}, nil, ct.Subdir)
		ct.Command[0] = fc
		changed = true
	}
	return changed, nil
}

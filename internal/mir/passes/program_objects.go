package passes

import "github.com/mesonpp/mpp/internal/mir"

// ProgramMethods dispatches Program.found() (§4.D "Program methods").
func ProgramMethods(ctx *Ctx, node *mir.Node) (bool, error) {
	cb := func(obj mir.Object) (mir.Object, bool) {
		fc, ok := obj.(*mir.FunctionCall)
		if !ok || fc.Name != "found" {
			return obj, false
		}
		prog, ok := fc.Holder.(*mir.Program)
		if !ok {
			return obj, false
		}
		b := mir.NewBoolean(prog.Found())
		b.SetVar(fc.Var())
		return b, true
	}
	return FunctionWalker(node, cb), nil
}

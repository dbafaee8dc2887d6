package passes

import "github.com/mesonpp/mpp/internal/mir"

// DependencyMethods dispatches Dependency.found()/version()/name()
// (§4.D "Dependency methods").
func DependencyMethods(ctx *Ctx, node *mir.Node) (bool, error) {
	cb := func(obj mir.Object) (mir.Object, bool) {
		fc, ok := obj.(*mir.FunctionCall)
		if !ok {
			return obj, false
		}
		dep, ok := fc.Holder.(*mir.Dependency)
		if !ok {
			return obj, false
		}
		switch fc.Name {
		case "found":
			b := mir.NewBoolean(dep.Found)
			b.SetVar(fc.Var())
			return b, true
		case "version":
			v := dep.Version
			if v == "" {
				v = "unknown"
			}
			s := mir.NewString(v)
			s.SetVar(fc.Var())
			return s, true
		case "name":
			s := mir.NewString(dep.Name)
			s.SetVar(fc.Var())
			return s, true
		default:
			return obj, false
		}
	}
	return FunctionWalker(node, cb), nil
}

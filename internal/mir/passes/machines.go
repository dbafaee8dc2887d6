package passes

import "github.com/mesonpp/mpp/internal/mir"

// MachineLowering rewrites build_machine.*/host_machine.*/target_machine.*
// method calls into string literals pulled from the per-machine Info
// record, grounded on §4.D's "Machine lowering".
func MachineLowering(ctx *Ctx, node *mir.Node) (bool, error) {
	cb := func(obj mir.Object) (mir.Object, bool) {
		fc, ok := obj.(*mir.FunctionCall)
		if !ok || fc.Holder == nil {
			return obj, false
		}
		ident, ok := fc.Holder.(*mir.Identifier)
		if !ok {
			return obj, false
		}
		var m mir.Machine
		switch ident.Name {
		case "build_machine":
			m = mir.MachineBuild
		case "host_machine":
			m = mir.MachineHost
		case "target_machine":
			m = mir.MachineTarget
		default:
			return obj, false
		}
		if !mir.AllReduced(fc.Positional...) {
			return obj, false
		}
		info := ctx.State.Machines.Get(m)
		var val string
		switch fc.Name {
		case "cpu_family":
			val = info.CPUFamily
		case "cpu":
			val = info.CPU
		case "system":
			val = info.System
		case "endian":
			val = info.Endian.String()
		default:
			return obj, false
		}
		s := mir.NewString(val)
		s.SetVar(fc.Var())
		return s, true
	}
	return FunctionWalker(node, cb), nil
}

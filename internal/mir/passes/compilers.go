package passes

import "github.com/mesonpp/mpp/internal/mir"

func keywordValues(kw map[string]mir.Object) []mir.Object {
	out := make([]mir.Object, 0, len(kw))
	for _, v := range kw {
		out = append(out, v)
	}
	return out
}

// CompilerInsertion rewrites meson.get_compiler(lang, native:bool?) into
// a Compiler object bound to the toolchain registered for that
// language/machine, and records the toolchain in persistent state
// (§4.D "Compiler insertion"). Failure to find a toolchain is a
// MesonException naming the language, not a silent no-op.
func CompilerInsertion(ctx *Ctx, node *mir.Node) (bool, error) {
	var firstErr error
	cb := func(obj mir.Object) (mir.Object, bool) {
		if firstErr != nil {
			return obj, false
		}
		fc, ok := obj.(*mir.FunctionCall)
		if !ok || fc.Name != "get_compiler" {
			return obj, false
		}
		ident, ok := fc.Holder.(*mir.Identifier)
		if !ok || ident.Name != "meson" {
			return obj, false
		}
		if !mir.AllReduced(fc.Positional...) || !mir.AllReduced(keywordValues(fc.Keyword)...) {
			return obj, false
		}
		if len(fc.Positional) < 1 {
			firstErr = mir.NewInvalidArguments("get_compiler", "expected a language argument")
			return obj, false
		}
		langObj, ok := fc.Positional[0].(*mir.String)
		if !ok {
			firstErr = mir.NewInvalidArguments("get_compiler", "language must be a string")
			return obj, false
		}
		machine := mir.MachineHost
		if nativeObj, ok := fc.Keyword["native"]; ok {
			if b, ok := nativeObj.(*mir.Boolean); ok && b.Value {
				machine = mir.MachineBuild
			}
		}
		tc := ctx.Toolchains[langObj.Value]
		if tc == nil {
			firstErr = mir.NewMesonException("no toolchain for language " + langObj.Value)
			return obj, false
		}
		ctx.State.SetToolchain(langObj.Value, machine, tc)
		c := &mir.Compiler{Language: langObj.Value, Machine: machine, Toolchain: tc}
		c.SetVar(fc.Var())
		return c, true
	}
	changed := FunctionWalker(node, cb)
	return changed, firstErr
}

// CompilerMethods dispatches Compiler.get_id() (§4.D "Compiler methods").
// Other methods are left for dedicated passes; calls with unreduced
// arguments are skipped, not failed.
func CompilerMethods(ctx *Ctx, node *mir.Node) (bool, error) {
	cb := func(obj mir.Object) (mir.Object, bool) {
		fc, ok := obj.(*mir.FunctionCall)
		if !ok {
			return obj, false
		}
		comp, ok := fc.Holder.(*mir.Compiler)
		if !ok || !mir.AllReduced(fc.Positional...) {
			return obj, false
		}
		switch fc.Name {
		case "get_id":
			if comp.Toolchain == nil {
				return obj, false
			}
			s := mir.NewString(comp.Toolchain.ID())
			s.SetVar(fc.Var())
			return s, true
		default:
			return obj, false
		}
	}
	return FunctionWalker(node, cb), nil
}

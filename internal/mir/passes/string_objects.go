package passes

import (
	"strings"

	mpp "github.com/mesonpp/mpp"
	"github.com/mesonpp/mpp/internal/mir"
)

var versionOps = []struct {
	prefix string
	op     mpp.Operator
}{
	{">=", mpp.OpGE},
	{"<=", mpp.OpLE},
	{"==", mpp.OpEQ},
	{"!=", mpp.OpNE},
	{">", mpp.OpGT},
	{"<", mpp.OpLT},
}

func parseVersionConstraint(s string) (mpp.Operator, string) {
	s = strings.TrimSpace(s)
	for _, e := range versionOps {
		if strings.HasPrefix(s, e.prefix) {
			return e.op, strings.TrimSpace(s[len(e.prefix):])
		}
	}
	return mpp.OpEQ, s
}

// StringMethods dispatches String.version_compare(constraint) (§4.D
// "String methods"), reusing the root package's version-comparison
// machinery.
func StringMethods(ctx *Ctx, node *mir.Node) (bool, error) {
	cb := func(obj mir.Object) (mir.Object, bool) {
		fc, ok := obj.(*mir.FunctionCall)
		if !ok || fc.Name != "version_compare" {
			return obj, false
		}
		str, ok := fc.Holder.(*mir.String)
		if !ok || !mir.AllReduced(fc.Positional...) || len(fc.Positional) < 1 {
			return obj, false
		}
		arg, ok := fc.Positional[0].(*mir.String)
		if !ok {
			return obj, false
		}
		op, rhs := parseVersionConstraint(arg.Value)
		b := mir.NewBoolean(mpp.VersionCompare(str.Value, op, rhs))
		b.SetVar(fc.Var())
		return b, true
	}
	return FunctionWalker(node, cb), nil
}

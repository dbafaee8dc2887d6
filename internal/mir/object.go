// Package mir implements the mid-level IR: a tagged-union instruction
// set held in basic blocks linked into a control-flow graph. The IR is
// intentionally lossy relative to the AST — it exists to be reduced by
// the pass pipeline into a flat list of targets, dependencies and
// messages that the backend can lower into build rules.
//
// Grounded on MIR::Object (mir/mir.hpp upstream) and its meson-specific
// extensions (mir/meson/objects*.{hpp,cpp} upstream).
package mir

// Kind tags the dynamic type of an Object. Kept alongside the interface
// so pass code can type-switch without relying on a closed set of Go
// types (Go interfaces are not sealed).
type Kind int

const (
	KindBoolean Kind = iota
	KindNumber
	KindString
	KindIdentifier
	KindArray
	KindDict
	KindFunctionCall
	KindPhi
	KindJump
	KindBranch
	KindFile
	KindExecutable
	KindStaticLibrary
	KindCustomTarget
	KindProgram
	KindDependency
	KindIncludeDirectories
	KindCompiler
	KindMessage
	KindEmpty
	KindDisabler
	KindAddArguments
	KindTest
)

func (k Kind) String() string {
	names := [...]string{
		"Boolean", "Number", "String", "Identifier", "Array", "Dict",
		"FunctionCall", "Phi", "Jump", "Branch", "File", "Executable",
		"StaticLibrary", "CustomTarget", "Program", "Dependency",
		"IncludeDirectories", "Compiler", "Message", "Empty", "Disabler",
		"AddArguments", "Test",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// Object is the closed sum type every MIR instruction implements. All
// walker callbacks pattern-match on Kind() and type-assert; the switch
// is expected to be exhaustive at every use site.
type Object interface {
	// Var returns the Variable this instruction's value is (or will be)
	// bound to. An unassigned instruction returns the zero Variable.
	Var() Variable

	// SetVar rebinds the instruction to v. Used by assignment lowering
	// and by the value-numbering / phi-insertion passes.
	SetVar(v Variable)

	Kind() Kind
}

// IsReduced reports whether obj can no longer be lowered any further:
// scalars, resolved targets/values, messages, the disabler sentinel,
// and containers whose elements are all themselves reduced.
//
// Grounded on the recursive "reduced object" definition in spec 4.D.
func IsReduced(obj Object) bool {
	switch o := obj.(type) {
	case *Boolean, *Number, *String, *File, *Executable, *StaticLibrary,
		*CustomTarget, *Program, *Dependency, *IncludeDirectories,
		*Compiler, *Message, *Disabler, *Empty, *AddArguments, *Test:
		return true
	case *Array:
		for _, e := range o.Elems {
			if !IsReduced(e) {
				return false
			}
		}
		return true
	case *Dict:
		for _, v := range o.Values {
			if !IsReduced(v) {
				return false
			}
		}
		return true
	default:
		// Identifier, FunctionCall, Phi, Jump, Branch are never reduced.
		return false
	}
}

// AllReduced reports whether every element of objs is reduced. Passes
// use this as their "do nothing unless all arguments are reduced" gate.
func AllReduced(objs ...Object) bool {
	for _, o := range objs {
		if o == nil {
			continue
		}
		if !IsReduced(o) {
			return false
		}
	}
	return true
}

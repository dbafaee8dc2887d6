// Package backend lowers a fully-reduced MIR CFG into a flat,
// deterministically ordered rule list plus a test list (§4.G): the
// point past which nothing but text formatting (a Ninja emitter, the
// test-manifest serializer in internal/testmanifest) remains, and both
// of those are treated as external collaborators.
package backend

// RuleKind classifies a Rule the way Ninja's own build statements do:
// one rule per compile, archive, link, or opaque custom command.
type RuleKind int

const (
	RuleCompile RuleKind = iota
	RuleArchive
	RuleLink
	RuleCustom
)

func (k RuleKind) String() string {
	switch k {
	case RuleCompile:
		return "COMPILE"
	case RuleArchive:
		return "ARCHIVE"
	case RuleLink:
		return "LINK"
	case RuleCustom:
		return "CUSTOM"
	default:
		return "UNKNOWN"
	}
}

// Rule is one build-graph edge: Command run with Args, consuming
// Inputs (plus OrderDeps, which must exist before the rule runs but
// aren't part of its literal command line), producing Outputs.
type Rule struct {
	Kind      RuleKind
	Target    string
	Inputs    []string
	OrderDeps []string
	Outputs   []string
	Command   []string
	Args      []string
	Depfile   string
}

// Test is one resolved test-manifest entry (§4.H).
type Test struct {
	Name      string
	Exe       string
	Arguments []string
	XFail     bool
}

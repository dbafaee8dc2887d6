package mir

// Phi merges the SSA versions of one variable reaching a CFG join from
// its incoming edges. Versions holds the incoming gvns (order is not
// significant; fixup_phis rewrites the first downstream use to the
// Phi's own freshly-allocated version, carried in base.v).
type Phi struct {
	base
	Versions map[uint32]struct{}
}

func NewPhi(versions ...uint32) *Phi {
	p := &Phi{Versions: make(map[uint32]struct{}, len(versions))}
	for _, v := range versions {
		p.Versions[v] = struct{}{}
	}
	return p
}
func (*Phi) Kind() Kind { return KindPhi }

// HasVersion reports whether v is one of the incoming versions.
func (p *Phi) HasVersion(v uint32) bool {
	_, ok := p.Versions[v]
	return ok
}

// SortedVersions returns the incoming versions in ascending order, for
// deterministic dumping and comparison.
func (p *Phi) SortedVersions() []uint32 {
	out := make([]uint32, 0, len(p.Versions))
	for v := range p.Versions {
		out = append(out, v)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Jump is an unconditional terminator: control transfers to Target
// unless Predicate is non-nil and folds to false. The builder and
// branch pruning only create Jumps with a nil Predicate.
type Jump struct {
	base
	Target    *Node
	Predicate Object
}

func NewJump(target *Node) *Jump { return &Jump{Target: target} }
func (*Jump) Kind() Kind         { return KindJump }

// BranchArm is one arm of a Branch: Predicate guards transfer to
// Target. The last arm of a Branch conventionally carries a constant
// Boolean(true) predicate, representing "else".
type BranchArm struct {
	Predicate Object
	Target    *Node
}

// Branch is a multi-way terminator built from an if/elif/.../else
// chain.
type Branch struct {
	base
	Arms []BranchArm
}

func NewBranch(arms ...BranchArm) *Branch { return &Branch{Arms: arms} }
func (*Branch) Kind() Kind                { return KindBranch }

// Successors returns the distinct CFG nodes this terminator can
// transfer control to, in the order the instruction invariants in
// spec §3 require successor sets to be derived from.
func Successors(term Object) []*Node {
	switch t := term.(type) {
	case *Jump:
		if t.Target == nil {
			return nil
		}
		return []*Node{t.Target}
	case *Branch:
		out := make([]*Node, 0, len(t.Arms))
		for _, a := range t.Arms {
			out = append(out, a.Target)
		}
		return out
	default:
		return nil
	}
}

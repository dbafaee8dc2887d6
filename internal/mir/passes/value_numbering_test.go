package passes

import (
	"testing"

	"github.com/mesonpp/mpp/internal/mir"
)

// TestValueNumberingDefinitionsUnique checks the SSA uniqueness
// invariant: after the walker reaches its fixed point, every named
// definition in the CFG — reassignments and the inserted phi included —
// carries a distinct (name, gvn) pair.
func TestValueNumberingDefinitionsUnique(t *testing.T) {
	ctx, cfg, _, _ := buildUnresolvableIf()
	runWalkerToFixpoint(t, ctx, cfg.Root)

	seen := make(map[mir.Variable]mir.Object)
	defs := 0
	for _, n := range cfg.Reachable(cfg.Root) {
		for _, instr := range n.Block.Instructions {
			v := instr.Var()
			if v.Name == "" {
				continue
			}
			defs++
			if v.GVN == 0 {
				t.Fatalf("definition of %q left unnumbered: %#v", v.Name, instr)
			}
			if prev, dup := seen[v]; dup {
				t.Fatalf("duplicate definition for %+v: %#v and %#v", v, prev, instr)
			}
			seen[v] = instr
		}
	}
	// x=1, x=2, x=3, plus the join's phi.
	if defs != 4 {
		t.Fatalf("found %d definitions of x, want 4", defs)
	}
}

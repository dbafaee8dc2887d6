package passes

import (
	"io"
	"log"

	"github.com/mesonpp/mpp/internal/mir"
	"github.com/mesonpp/mpp/internal/mir/toolchain"
)

// Ctx is the shared, monotonically-growing context threaded through
// every pass invocation (§2, §5): the CFG under transformation, the
// persistent compilation state, the global value number counters GVN
// owns, and a logger — injected, never a package-level global, matching
// the teacher's internal/build.Ctx convention.
type Ctx struct {
	CFG   *mir.CFG
	State *mir.State
	Log   *log.Logger

	// DebugDump, when non-nil, receives a mir.Dump after every fixed-
	// point iteration of the driver (§6 MESONPP_DEBUG_PRINT_MIR).
	DebugDump io.Writer

	// iteration counts driver passes through GraphWalker, labeling each
	// DebugDump entry.
	iteration int

	// gvn is the per-variable-name counter driving value_numbering.go.
	gvn map[string]uint32

	// varCurrent tracks, for one predecessor-ordered graph traversal,
	// the last GVN assigned to each variable name — value_numbering.go
	// and insert_phis.go use it to resolve Identifier references across
	// block boundaries without full dominance analysis.
	varCurrent map[string]uint32

	// values maps a (name, gvn) pair to the reduced Object it was last
	// bound to, letting constant_propagation.go substitute Identifier
	// reads without re-deriving them from the defining instruction.
	values map[mir.Variable]mir.Object

	// Toolchains, keyed by language, used by compiler insertion. Kept
	// separate from mir.State's own toolchain map so tests can seed it
	// directly without going through detection.
	Toolchains map[string]*toolchain.Toolchain
}

// NewCtx returns a Ctx ready to drive a pipeline run over cfg.
func NewCtx(cfg *mir.CFG, state *mir.State, logger *log.Logger) *Ctx {
	if logger == nil {
		logger = log.Default()
	}
	return &Ctx{
		CFG:        cfg,
		State:      state,
		Log:        logger,
		gvn:        make(map[string]uint32),
		varCurrent: make(map[string]uint32),
		values:     make(map[mir.Variable]mir.Object),
		Toolchains: make(map[string]*toolchain.Toolchain),
	}
}

func (c *Ctx) nextGVN(name string) uint32 {
	c.gvn[name]++
	return c.gvn[name]
}

func (c *Ctx) resetGVN() {
	c.gvn = make(map[string]uint32)
}

// resetVarCurrent clears the cross-block name resolution map; the
// driver calls this before every fresh predecessor-ordered traversal.
func (c *Ctx) resetVarCurrent() {
	c.varCurrent = make(map[string]uint32)
}

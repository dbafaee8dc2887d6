package passes

import (
	"fmt"

	"github.com/mesonpp/mpp/internal/mir"
	"github.com/mesonpp/mpp/internal/trace"
)

// nodePasses run, in order, at every node visited during one
// predecessor-first graph walk. Lowering (§4.D) and optimization
// (§4.E) passes share the same walk; each is individually gated on its
// own preconditions (reduced arguments, literal predicates, ...) so
// interleaving them is safe and lets one pass's output immediately feed
// the next without waiting for a whole extra fixed-point round.
var nodePasses = []NodePass{
	DisablerPropagation,
	InsertPhis,
	ValueNumbering,
	MachineLowering,
	CompilerInsertion,
	CompilerMethods,
	StringMethods,
	ProgramMethods,
	DependencyMethods,
	FreeFunctionLowering,
	CustomTargetProgramReplacement,
	CombineAddArguments,
	Flatten,
	ConstantPropagation,
	ConstantFolding,
	Pruning,
	JoinBlocks,
	DeadCode,
}

// Driver runs the pass pipeline to a fixed point (§4.C "the driver"):
// alternate a predecessor-first graph walk carrying every lowering and
// optimization pass with the threaded resolver (§4.F, which needs a
// whole-graph view to batch its concurrent jobs), until neither makes
// further progress.
func Driver(ctx *Ctx, root *mir.Node) error {
	for {
		ctx.resetVarCurrent()
		var progress bool
		var err error
		trace.Pass("graph_walk", func() bool {
			progress, err = GraphWalker(ctx, root, nodePasses)
			return progress
		})
		if err != nil {
			return err
		}
		var resolved bool
		trace.Pass("threaded_resolve", func() bool {
			resolved, err = ThreadedResolve(ctx, root)
			return resolved
		})
		if err != nil {
			return err
		}
		if ctx.DebugDump != nil {
			ctx.iteration++
			mir.Dump(ctx.DebugDump, fmt.Sprintf("iteration %d", ctx.iteration), ctx.CFG, root)
		}
		if !progress && !resolved {
			return nil
		}
	}
}

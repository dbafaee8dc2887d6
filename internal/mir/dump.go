package mir

import (
	"fmt"
	"io"
)

// Dump writes a human-readable rendering of every node reachable from
// root to w: one line per instruction, grouped under its node index and
// predecessor/successor set (§6 MESONPP_DEBUG_PRINT_MIR). It never
// fails configure — a write error is silently absorbed, matching the
// "optional but used by tests" framing in the spec.
func Dump(w io.Writer, label string, cfg *CFG, root *Node) {
	fmt.Fprintf(w, "=== %s ===\n", label)
	for _, n := range cfg.Order(root) {
		preds := cfg.Predecessors(n)
		succs := cfg.Successors(n)
		fmt.Fprintf(w, "node %d (preds=%s succs=%s)\n", n.ID(), idList(preds), idList(succs))
		for _, instr := range n.Block.Instructions {
			fmt.Fprintf(w, "  %s %s\n", instr.Kind(), describe(instr))
		}
	}
}

func idList(nodes []*Node) string {
	if len(nodes) == 0 {
		return "[]"
	}
	out := "["
	for i, n := range nodes {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%d", n.ID())
	}
	return out + "]"
}

// describe renders a short payload summary for dump output; it is
// intentionally partial (not every variant needs detail in a debug
// dump) rather than an exhaustive formatter.
func describe(o Object) string {
	v := o.Var()
	name := v.Name
	if name == "" {
		name = "_"
	}
	switch t := o.(type) {
	case *Boolean:
		return fmt.Sprintf("%s = %v", name, t.Value)
	case *Number:
		return fmt.Sprintf("%s = %d", name, t.Value)
	case *String:
		return fmt.Sprintf("%s = %q", name, t.Value)
	case *Identifier:
		return fmt.Sprintf("%s -> %s#%d", name, t.Name, t.Version)
	case *FunctionCall:
		holder := ""
		if t.Holder != nil {
			holder = describe(t.Holder) + "."
		}
		return fmt.Sprintf("%s%s(%d pos, %d kw)", holder, t.Name, len(t.Positional), len(t.Keyword))
	case *Message:
		return fmt.Sprintf("[%d] %s", t.Level, t.Text)
	default:
		return name
	}
}

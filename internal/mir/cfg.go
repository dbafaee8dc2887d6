package mir

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Node is one CFG node: an index assigned monotonically at creation, a
// basic block, and the predecessor/successor edges the backing
// gonum.org/v1/gonum/graph/simple.DirectedGraph maintains for us.
//
// The teacher (distr1/distri's internal/batch.Ctx.Build) builds exactly
// this shape of graph — a simple.DirectedGraph of build-order nodes,
// topologically sorted with gonum/graph/topo — to schedule package
// builds; the CFG reuses the same trio for the same reason: symmetric
// edge maintenance and a ready-made topological walk.
type Node struct {
	index int64
	Block *BasicBlock
}

// ID implements graph.Node.
func (n *Node) ID() int64 { return n.index }

// CFG owns the node-index counter (§9: "process-wide... initialized at
// pipeline start and only incremented by the CFG constructor") and the
// backing directed graph.
type CFG struct {
	g       *simple.DirectedGraph
	nextIdx int64
	Root    *Node
}

// NewCFG creates an empty graph with a fresh root node.
func NewCFG() *CFG {
	c := &CFG{g: simple.NewDirectedGraph()}
	c.Root = c.NewNode()
	return c
}

// NewNode allocates a new CFG node with a fresh monotonic index and
// registers it with the backing graph.
func (c *CFG) NewNode() *Node {
	c.nextIdx++
	n := &Node{index: c.nextIdx, Block: NewBasicBlock()}
	c.g.AddNode(n)
	return n
}

// Link adds a directed edge p -> s, maintaining both p's successor set
// and s's predecessor set (they are the same edge in the backing
// graph, so the invariant is structural, not something callers can
// violate).
func (c *CFG) Link(p, s *Node) {
	if p == nil || s == nil || c.g.HasEdgeFromTo(p.index, s.index) {
		return
	}
	c.g.SetEdge(simple.Edge{F: p, T: s})
}

// Unlink removes the edge p -> s, if present.
func (c *CFG) Unlink(p, s *Node) {
	if p == nil || s == nil {
		return
	}
	c.g.RemoveEdge(p.index, s.index)
}

// Successors returns p's successor nodes.
func (c *CFG) Successors(p *Node) []*Node {
	return nodesOf(c.g.From(p.index))
}

// Predecessors returns p's predecessor nodes.
func (c *CFG) Predecessors(p *Node) []*Node {
	return nodesOf(c.g.To(p.index))
}

// Nodes returns every node currently registered with the graph,
// reachable or not (callers needing only reachable nodes should use
// Walk/Reachable).
func (c *CFG) Nodes() []*Node {
	return nodesOf(c.g.Nodes())
}

// RemoveNode deletes n and all of its incident edges. Any node that
// becomes unreachable as a result is left in place; Reachable() filters
// it out, matching §3's "will be garbage-collected when the last
// reference drops" (Go's GC does the literal reclaiming; this method
// does the graph bookkeeping).
func (c *CFG) RemoveNode(n *Node) {
	c.g.RemoveNode(n.index)
}

func nodesOf(it graph.Nodes) []*Node {
	var out []*Node
	for it.Next() {
		out = append(out, it.Node().(*Node))
	}
	return out
}

// Reachable returns every node reachable from root via a breadth-first
// walk over successor edges.
func (c *CFG) Reachable(root *Node) []*Node {
	seen := map[int64]bool{root.index: true}
	queue := []*Node{root}
	var order []*Node
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, s := range c.Successors(n) {
			if !seen[s.index] {
				seen[s.index] = true
				queue = append(queue, s)
			}
		}
	}
	return order
}

// Order returns the reachable nodes from root in predecessor-first
// order: a node is not emitted until every predecessor that is itself
// reachable from root has already been emitted at least once. When the
// reachable subgraph is acyclic this is exactly topo.Sort's result
// (gonum/graph/topo); when it contains a back-edge (future loop
// support, §9) topo.Sort reports topo.Unorderable and Order instead
// falls back to a worklist that discovers each node on first visit and
// re-queues successors whenever a predecessor is updated, which is the
// algorithm spec §4.C describes for graph_walker.
func (c *CFG) Order(root *Node) []*Node {
	sub := c.inducedSubgraph(root)
	if sorted, err := topo.Sort(sub); err == nil {
		out := make([]*Node, len(sorted))
		for i, n := range sorted {
			out[i] = n.(*Node)
		}
		return out
	}
	return c.worklistOrder(root)
}

// inducedSubgraph returns a graph.Directed view containing only nodes
// reachable from root, so topo.Sort doesn't choke on unrelated,
// possibly-cyclic parts of a larger graph under construction.
func (c *CFG) inducedSubgraph(root *Node) graph.Directed {
	reachable := c.Reachable(root)
	ids := make(map[int64]bool, len(reachable))
	for _, n := range reachable {
		ids[n.index] = true
	}
	sub := simple.NewDirectedGraph()
	for _, n := range reachable {
		sub.AddNode(n)
	}
	for _, n := range reachable {
		for _, s := range c.Successors(n) {
			if ids[s.index] {
				sub.SetEdge(simple.Edge{F: n, T: s})
			}
		}
	}
	return sub
}

func (c *CFG) worklistOrder(root *Node) []*Node {
	visited := make(map[int64]int) // times visited
	var order []*Node
	queue := []*Node{root}
	inQueue := map[int64]bool{root.index: true}

	predecessorsDone := func(n *Node) bool {
		for _, p := range c.Predecessors(n) {
			if visited[p.index] == 0 {
				return false
			}
		}
		return true
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		inQueue[n.index] = false

		if !predecessorsDone(n) && visited[n.index] > 0 {
			// Already visited once; a predecessor hasn't caught up yet.
			// Don't re-queue infinitely; this node was counted as
			// discovered, which is sufficient progress for a first pass.
			continue
		}

		visited[n.index]++
		order = append(order, n)

		for _, s := range c.Successors(n) {
			if !inQueue[s.index] {
				inQueue[s.index] = true
				queue = append(queue, s)
			}
		}
	}
	return order
}

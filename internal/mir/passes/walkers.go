// Package passes implements the pass framework (§4.C) and every
// lowering/optimization pass (§4.D, §4.E) plus the threaded resolver
// (§4.F): pure CFG transformations run to a fixed point by Driver.
//
// Grounded on mir/passes/walkers.cpp upstream (instruction_walker,
// array_walker, function_argument_walker, function_walker, graph_walker).
package passes

import "github.com/mesonpp/mpp/internal/mir"

// Mutator alters obj in place and reports whether it changed anything.
type Mutator func(obj mir.Object) bool

// Replacer inspects obj and optionally returns a replacement for it.
type Replacer func(obj mir.Object) (mir.Object, bool)

// InstructionWalker iterates a block's instructions, running every
// mutator then every replacer against each one in turn.
func InstructionWalker(node *mir.Node, mutators []Mutator, replacers []Replacer) bool {
	changed := false
	instrs := node.Block.Instructions
	for i, instr := range instrs {
		for _, m := range mutators {
			if m(instr) {
				changed = true
			}
		}
		for _, r := range replacers {
			if newObj, did := r(instr); did {
				instrs[i] = newObj
				instr = newObj
				changed = true
			}
		}
	}
	return changed
}

// ArrayWalker recursively descends Array (and, as a practical
// extension, Dict) values, applying cb to every leaf and rebuilding
// containers whose contents changed. Non-container objects are handed
// to cb directly.
func ArrayWalker(obj mir.Object, cb Replacer) (mir.Object, bool) {
	switch o := obj.(type) {
	case *mir.Array:
		changed := false
		elems := make([]mir.Object, len(o.Elems))
		for i, e := range o.Elems {
			ne, did := ArrayWalker(e, cb)
			if did {
				changed = true
			}
			elems[i] = ne
		}
		if !changed {
			return obj, false
		}
		na := mir.NewArray(elems...)
		na.SetVar(o.Var())
		return na, true
	case *mir.Dict:
		changed := false
		vals := make(map[string]mir.Object, len(o.Values))
		for k, v := range o.Values {
			nv, did := ArrayWalker(v, cb)
			if did {
				changed = true
			}
			vals[k] = nv
		}
		if !changed {
			return obj, false
		}
		nd := mir.NewDict()
		nd.Values = vals
		nd.SetVar(o.Var())
		return nd, true
	default:
		if newObj, did := cb(obj); did {
			return newObj, true
		}
		return obj, false
	}
}

// FunctionArgumentWalker descends into fc's Holder, Positional and
// Keyword values, including nested arrays/dicts, rewriting each via cb.
func FunctionArgumentWalker(fc *mir.FunctionCall, cb Replacer) bool {
	changed := false
	if fc.Holder != nil {
		if newObj, did := ArrayWalker(fc.Holder, cb); did {
			fc.Holder = newObj
			changed = true
		}
	}
	for i, p := range fc.Positional {
		if newObj, did := ArrayWalker(p, cb); did {
			fc.Positional[i] = newObj
			changed = true
		}
	}
	for k, v := range fc.Keyword {
		if newObj, did := ArrayWalker(v, cb); did {
			fc.Keyword[k] = newObj
			changed = true
		}
	}
	return changed
}

// FunctionWalker composes instruction + array + function-argument
// walking so a single replacement callback reaches every reducible
// position in a block: each instruction itself, its arguments
// (including nested arrays/dicts), and branch/jump predicates.
func FunctionWalker(node *mir.Node, cb Replacer) bool {
	changed := false
	instrs := node.Block.Instructions
	for i, instr := range instrs {
		if newObj, did := cb(instr); did {
			instrs[i] = newObj
			instr = newObj
			changed = true
		}
		switch o := instr.(type) {
		case *mir.FunctionCall:
			if FunctionArgumentWalker(o, cb) {
				changed = true
			}
		case *mir.Array, *mir.Dict:
			if newObj, did := ArrayWalker(instr, cb); did {
				instrs[i] = newObj
				changed = true
			}
		case *mir.Branch:
			for j := range o.Arms {
				if newPred, did := walkPredicate(o.Arms[j].Predicate, cb); did {
					o.Arms[j].Predicate = newPred
					changed = true
				}
			}
		case *mir.Jump:
			if o.Predicate != nil {
				if newPred, did := walkPredicate(o.Predicate, cb); did {
					o.Predicate = newPred
					changed = true
				}
			}
		}
	}
	return changed
}

// walkPredicate rewrites a Branch/Jump predicate via cb. A predicate
// that is itself a function call (`if host_machine.system() == 'aix'`
// lowers to rel_eq with a method call in argument position) also gets
// its arguments walked, so the inner call reduces even though it never
// appears in an instruction slot.
func walkPredicate(pred mir.Object, cb Replacer) (mir.Object, bool) {
	changed := false
	if fc, ok := pred.(*mir.FunctionCall); ok {
		if FunctionArgumentWalker(fc, cb) {
			changed = true
		}
	}
	if newPred, did := ArrayWalker(pred, cb); did {
		return newPred, true
	}
	return pred, changed
}

// NodePass is one pass applied to a single CFG node. It may fail (a
// malformed program raises InvalidArguments/MesonException/NotImplemented,
// §7), in which case the driver aborts the whole run.
type NodePass func(ctx *Ctx, node *mir.Node) (bool, error)

// GraphWalker visits every node reachable from root in predecessor-first
// order (mir.CFG.Order), applying every pass in passes at each node
// before moving to the next, and returns the disjunction of all
// progress flags.
func GraphWalker(ctx *Ctx, root *mir.Node, passes []NodePass) (bool, error) {
	progress := false
	for _, n := range ctx.CFG.Order(root) {
		// A pass earlier in this same walk may have severed n from root
		// (branch pruning dropping a dead arm). Order was computed
		// before that mutation, so n is still in this call's visit list;
		// skip it rather than let its value numbering/constant state
		// leak into ctx and poison the surviving branch.
		if n != root && len(ctx.CFG.Predecessors(n)) == 0 {
			continue
		}
		for _, p := range passes {
			did, err := p(ctx, n)
			if err != nil {
				return false, err
			}
			if did {
				progress = true
			}
		}
	}
	return progress, nil
}

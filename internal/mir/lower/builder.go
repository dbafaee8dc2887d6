// Package lower implements the AST→MIR builder (§4.B): a pure,
// side-effect-free walk of the parser's output that produces the
// initial CFG, placing Branch/Jump terminators for if/elif/else and
// leaving every function call, identifier and binary/unary operator
// unresolved for the pass pipeline (internal/mir/passes) to reduce.
package lower

import (
	"fmt"
	"path/filepath"

	"github.com/mesonpp/mpp/internal/ast"
	"github.com/mesonpp/mpp/internal/mir"
)

// Builder holds the state threaded through one file's lowering: the CFG
// under construction and the source root new File/FunctionCall objects
// are anchored to.
type Builder struct {
	cfg        *mir.CFG
	sourceRoot string
}

// Build lowers a fully subdir-inlined CodeBlock into a fresh CFG rooted
// at cfg.Root, returning the CFG.
func Build(sourceRoot, mainFile string, block *ast.CodeBlock) (*mir.CFG, error) {
	cfg := mir.NewCFG()
	b := &Builder{cfg: cfg, sourceRoot: sourceRoot}
	if _, err := b.lowerStatements(cfg.Root, mainFile, block.Statements); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (b *Builder) sourceDir(file string) string {
	rel, err := filepath.Rel(b.sourceRoot, filepath.Dir(file))
	if err != nil {
		return "."
	}
	return rel
}

func (b *Builder) lowerStatements(cur *mir.Node, file string, stmts []ast.Stmt) (*mir.Node, error) {
	var err error
	for _, s := range stmts {
		cur, err = b.lowerStmt(cur, file, s)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func (b *Builder) lowerStmt(cur *mir.Node, file string, s ast.Stmt) (*mir.Node, error) {
	switch st := s.(type) {
	case *ast.ExprStmt:
		obj, err := b.lowerExpr(file, st.X)
		if err != nil {
			return nil, err
		}
		cur.Block.Append(obj)
		return cur, nil

	case *ast.Assignment:
		ident, ok := st.LHS.(*ast.Identifier)
		if !ok {
			return nil, mir.NewInvalidArguments("assignment", "left-hand side must be an identifier")
		}
		if st.Op != "=" {
			return nil, mir.NewNotImplemented("compound assignment " + st.Op)
		}
		rhs, err := b.lowerExpr(file, st.RHS)
		if err != nil {
			return nil, err
		}
		rhs.SetVar(mir.Variable{Name: ident.Name})
		cur.Block.Append(rhs)
		return cur, nil

	case *ast.IfStatement:
		return b.lowerIf(cur, file, st)

	case *ast.Foreach:
		return nil, mir.NewNotImplemented("foreach")
	case *ast.Break:
		return nil, mir.NewNotImplemented("break")
	case *ast.Continue:
		return nil, mir.NewNotImplemented("continue")

	case *ast.SubdirStmt:
		return nil, mir.NewMesonException("internal: un-inlined subdir(" + st.Path + ") reached the lowering builder")

	default:
		return nil, mir.NewMesonException(fmt.Sprintf("internal: unhandled statement type %T", s))
	}
}

// lowerIf builds a join node J, one tail node per arm, and a single
// Branch instruction in cur listing every arm in order (§3's
// "Branch(arms...)"; the "linear chain" spec §4.B describes is this set
// of per-arm tail nodes, each Jump-linked back to J). A missing else
// arm gets a synthetic Boolean(true)-guarded arm straight to J.
func (b *Builder) lowerIf(cur *mir.Node, file string, st *ast.IfStatement) (*mir.Node, error) {
	join := b.cfg.NewNode()
	arms := make([]mir.BranchArm, 0, len(st.Arms)+1)
	hasElse := false

	for _, arm := range st.Arms {
		var predObj mir.Object
		if arm.Cond != nil {
			obj, err := b.lowerExpr(file, arm.Cond)
			if err != nil {
				return nil, err
			}
			predObj = obj
		} else {
			hasElse = true
			predObj = mir.NewBoolean(true)
		}

		armNode := b.cfg.NewNode()
		b.cfg.Link(cur, armNode)

		end, err := b.lowerStatements(armNode, file, arm.Body)
		if err != nil {
			return nil, err
		}
		end.Block.Append(mir.NewJump(join))
		b.cfg.Link(end, join)

		arms = append(arms, mir.BranchArm{Predicate: predObj, Target: armNode})
	}

	if !hasElse {
		b.cfg.Link(cur, join)
		arms = append(arms, mir.BranchArm{Predicate: mir.NewBoolean(true), Target: join})
	}

	cur.Block.Append(mir.NewBranch(arms...))
	return join, nil
}

func (b *Builder) lowerExpr(file string, e ast.Expr) (mir.Object, error) {
	switch x := e.(type) {
	case *ast.BoolLit:
		return mir.NewBoolean(x.Value), nil
	case *ast.NumberLit:
		return mir.NewNumber(x.Value), nil
	case *ast.StringLit:
		return mir.NewString(x.Value), nil
	case *ast.Identifier:
		return mir.NewIdentifier(x.Name), nil

	case *ast.ArrayExpr:
		arr := mir.NewArray()
		for _, el := range x.Elems {
			obj, err := b.lowerExpr(file, el)
			if err != nil {
				return nil, err
			}
			arr.Elems = append(arr.Elems, obj)
		}
		return arr, nil

	case *ast.DictExpr:
		d := mir.NewDict()
		for _, ent := range x.Entries {
			keyObj, err := b.lowerExpr(file, ent.Key)
			if err != nil {
				return nil, err
			}
			keyStr, ok := keyObj.(*mir.String)
			if !ok {
				return nil, mir.NewInvalidArguments("dict", "keys must be string literals")
			}
			valObj, err := b.lowerExpr(file, ent.Value)
			if err != nil {
				return nil, err
			}
			d.Values[keyStr.Value] = valObj
		}
		return d, nil

	case *ast.UnaryOp:
		operand, err := b.lowerExpr(file, x.Expr)
		if err != nil {
			return nil, err
		}
		name := "unary_neg"
		if x.Op == "not" {
			name = "unary_not"
		}
		return mir.NewFunctionCall(name, []mir.Object{operand}, nil, b.sourceDir(file)), nil

	case *ast.BinaryOp:
		left, err := b.lowerExpr(file, x.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.lowerExpr(file, x.Right)
		if err != nil {
			return nil, err
		}
		var name string
		switch x.Op {
		case "==":
			name = "rel_eq"
		case "!=":
			name = "rel_ne"
		default:
			return nil, mir.NewNotImplemented("binary operator " + x.Op)
		}
		return mir.NewFunctionCall(name, []mir.Object{left, right}, nil, b.sourceDir(file)), nil

	case *ast.Ternary:
		return nil, mir.NewNotImplemented("ternary expression")
	case *ast.Subscript:
		return nil, mir.NewNotImplemented("subscript expression")

	case *ast.FunctionCall:
		return b.lowerCall(file, x, nil)

	case *ast.GetAttribute:
		switch x.Receiver.(type) {
		case *ast.FunctionCall, *ast.GetAttribute:
			return nil, mir.NewNotImplemented("chained method call")
		}
		receiver, err := b.lowerExpr(file, x.Receiver)
		if err != nil {
			return nil, err
		}
		return b.lowerCall(file, x.Method, receiver)

	default:
		return nil, mir.NewMesonException(fmt.Sprintf("internal: unhandled expression type %T", e))
	}
}

func (b *Builder) lowerCall(file string, call *ast.FunctionCall, holder mir.Object) (mir.Object, error) {
	pos := make([]mir.Object, 0, len(call.Positional))
	for _, a := range call.Positional {
		obj, err := b.lowerExpr(file, a)
		if err != nil {
			return nil, err
		}
		pos = append(pos, obj)
	}
	kw := make(map[string]mir.Object, len(call.Keyword))
	for _, k := range call.Keyword {
		obj, err := b.lowerExpr(file, k.Value)
		if err != nil {
			return nil, err
		}
		kw[k.Name] = obj
	}
	fc := mir.NewFunctionCall(call.Name, pos, kw, b.sourceDir(file))
	fc.Holder = holder
	return fc, nil
}

package parser

import (
	"fmt"

	"github.com/mesonpp/mpp/internal/ast"
)

type parser struct {
	file string
	toks []token
	pos  int
}

// Parse lexes and parses src (one source file's contents) into a
// CodeBlock. file is used only for source locations in error messages
// and AST Pos fields.
func Parse(file, src string) (*ast.CodeBlock, error) {
	toks, err := lex(file, src)
	if err != nil {
		return nil, err
	}
	p := &parser{file: file, toks: toks}
	stmts, err := p.parseStatements(nil)
	if err != nil {
		return nil, err
	}
	return &ast.CodeBlock{Statements: stmts}, nil
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) peek() token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) skipNewlines() {
	for p.cur().kind == tokNewline {
		p.advance()
	}
}

func (p *parser) errf(t token, format string, args ...interface{}) error {
	return fmt.Errorf("%s:%d:%d: %s", p.file, t.line, t.col, fmt.Sprintf(format, args...))
}

// atStop reports whether a statement list ends here: EOF, or a keyword in stop.
func (p *parser) atStop(stop map[string]bool) bool {
	t := p.cur()
	if t.kind == tokEOF {
		return true
	}
	if t.kind == tokKeyword && stop[t.text] {
		return true
	}
	return false
}

func (p *parser) parseStatements(stop map[string]bool) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	p.skipNewlines()
	for !p.atStop(stop) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		p.skipNewlines()
	}
	return stmts, nil
}

func (p *parser) parseStatement() (ast.Stmt, error) {
	t := p.cur()
	if t.kind == tokKeyword && t.text == "if" {
		return p.parseIf()
	}
	// Identifier '=' expr, but not '=='.
	if t.kind == tokIdent && p.peek().kind == tokPunct && p.peek().text == "=" {
		lhs := ast.Identifier{Pos: posOf(p.file, t), Name: t.text}
		p.advance() // ident
		p.advance() // '='
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Pos: posOf(p.file, t), LHS: &lhs, Op: "=", RHS: rhs}, nil
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if call, ok := expr.(*ast.FunctionCall); ok && call.Name == "subdir" && len(call.Positional) == 1 {
		if s, ok := call.Positional[0].(*ast.StringLit); ok {
			return &ast.SubdirStmt{Pos: call.Pos, Path: s.Value}, nil
		}
	}
	return &ast.ExprStmt{Pos: posOf(p.file, t), X: expr}, nil
}

func (p *parser) parseIf() (ast.Stmt, error) {
	start := p.cur()
	var arms []ast.IfArm
	p.advance() // 'if'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatements(map[string]bool{"elif": true, "else": true, "endif": true})
	if err != nil {
		return nil, err
	}
	arms = append(arms, ast.IfArm{Cond: cond, Body: body})

	for p.cur().kind == tokKeyword && p.cur().text == "elif" {
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.parseStatements(map[string]bool{"elif": true, "else": true, "endif": true})
		if err != nil {
			return nil, err
		}
		arms = append(arms, ast.IfArm{Cond: cond, Body: body})
	}
	if p.cur().kind == tokKeyword && p.cur().text == "else" {
		p.advance()
		body, err := p.parseStatements(map[string]bool{"endif": true})
		if err != nil {
			return nil, err
		}
		arms = append(arms, ast.IfArm{Cond: nil, Body: body})
	}
	if !(p.cur().kind == tokKeyword && p.cur().text == "endif") {
		return nil, p.errf(p.cur(), "expected endif")
	}
	p.advance()
	return &ast.IfStatement{Pos: posOf(p.file, start), Arms: arms}, nil
}

// parseExpr handles the relational layer (==, !=) directly above unary,
// matching §4.B: "other binary and ternary forms" are out of grammar
// scope here (the lexer/parser never emit them since tests only drive
// ==/!=), so BinaryOp with another operator is unreachable from Parse.
func (p *parser) parseExpr() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	t := p.cur()
	if t.kind == tokPunct && (t.text == "==" || t.text == "!=") {
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{Pos: posOf(p.file, t), Op: t.text, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Expr, error) {
	t := p.cur()
	if t.kind == tokPunct && t.text == "-" {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Pos: posOf(p.file, t), Op: "-", Expr: x}, nil
	}
	if t.kind == tokKeyword && t.text == "not" {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Pos: posOf(p.file, t), Op: "not", Expr: x}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.cur()
		if t.kind == tokPunct && t.text == "." {
			p.advance()
			nameTok := p.cur()
			if nameTok.kind != tokIdent {
				return nil, p.errf(nameTok, "expected method name after '.'")
			}
			p.advance()
			if !(p.cur().kind == tokPunct && p.cur().text == "(") {
				return nil, p.errf(p.cur(), "expected '(' after method name")
			}
			pos, kw, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			method := &ast.FunctionCall{Pos: posOf(p.file, nameTok), Name: nameTok.text, Positional: pos, Keyword: kw}
			expr = &ast.GetAttribute{Pos: posOf(p.file, t), Receiver: expr, Method: method}
			continue
		}
		if t.kind == tokPunct && t.text == "[" {
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if !(p.cur().kind == tokPunct && p.cur().text == "]") {
				return nil, p.errf(p.cur(), "expected ']'")
			}
			p.advance()
			expr = &ast.Subscript{Pos: posOf(p.file, t), Target: expr, Index: idx}
			continue
		}
		break
	}
	return expr, nil
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	t := p.cur()
	switch {
	case t.kind == tokNumber:
		p.advance()
		return &ast.NumberLit{Pos: posOf(p.file, t), Value: strconvAtoi(t.text)}, nil
	case t.kind == tokString:
		p.advance()
		return &ast.StringLit{Pos: posOf(p.file, t), Value: t.text}, nil
	case t.kind == tokKeyword && (t.text == "true" || t.text == "false"):
		p.advance()
		return &ast.BoolLit{Pos: posOf(p.file, t), Value: t.text == "true"}, nil
	case t.kind == tokPunct && t.text == "(":
		p.advance()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !(p.cur().kind == tokPunct && p.cur().text == ")") {
			return nil, p.errf(p.cur(), "expected ')'")
		}
		p.advance()
		return x, nil
	case t.kind == tokPunct && t.text == "[":
		return p.parseArray()
	case t.kind == tokPunct && t.text == "{":
		return p.parseDict()
	case t.kind == tokIdent:
		p.advance()
		if p.cur().kind == tokPunct && p.cur().text == "(" {
			pos, kw, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &ast.FunctionCall{Pos: posOf(p.file, t), Name: t.text, Positional: pos, Keyword: kw}, nil
		}
		return &ast.Identifier{Pos: posOf(p.file, t), Name: t.text}, nil
	default:
		return nil, p.errf(t, "unexpected token %q", t.text)
	}
}

func (p *parser) parseArray() (ast.Expr, error) {
	start := p.cur()
	p.advance() // '['
	p.skipNewlines()
	var elems []ast.Expr
	for !(p.cur().kind == tokPunct && p.cur().text == "]") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		p.skipNewlines()
		if p.cur().kind == tokPunct && p.cur().text == "," {
			p.advance()
			p.skipNewlines()
			continue
		}
		break
	}
	if !(p.cur().kind == tokPunct && p.cur().text == "]") {
		return nil, p.errf(p.cur(), "expected ']'")
	}
	p.advance()
	return &ast.ArrayExpr{Pos: posOf(p.file, start), Elems: elems}, nil
}

func (p *parser) parseDict() (ast.Expr, error) {
	start := p.cur()
	p.advance() // '{'
	p.skipNewlines()
	var entries []ast.DictEntry
	for !(p.cur().kind == tokPunct && p.cur().text == "}") {
		key, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !(p.cur().kind == tokPunct && p.cur().text == ":") {
			return nil, p.errf(p.cur(), "expected ':' in dict")
		}
		p.advance()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.DictEntry{Key: key, Value: val})
		p.skipNewlines()
		if p.cur().kind == tokPunct && p.cur().text == "," {
			p.advance()
			p.skipNewlines()
			continue
		}
		break
	}
	if !(p.cur().kind == tokPunct && p.cur().text == "}") {
		return nil, p.errf(p.cur(), "expected '}'")
	}
	p.advance()
	return &ast.DictExpr{Pos: posOf(p.file, start), Entries: entries}, nil
}

// parseArgs parses a parenthesized call argument list, splitting
// positional from `name : value` keyword arguments.
func (p *parser) parseArgs() ([]ast.Expr, []ast.KeywordArg, error) {
	p.advance() // '('
	p.skipNewlines()
	var pos []ast.Expr
	var kw []ast.KeywordArg
	for !(p.cur().kind == tokPunct && p.cur().text == ")") {
		if p.cur().kind == tokIdent && p.peek().kind == tokPunct && p.peek().text == ":" {
			name := p.cur().text
			p.advance()
			p.advance() // ':'
			val, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			kw = append(kw, ast.KeywordArg{Name: name, Value: val})
		} else {
			val, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			pos = append(pos, val)
		}
		p.skipNewlines()
		if p.cur().kind == tokPunct && p.cur().text == "," {
			p.advance()
			p.skipNewlines()
			continue
		}
		break
	}
	if !(p.cur().kind == tokPunct && p.cur().text == ")") {
		return nil, nil, p.errf(p.cur(), "expected ')'")
	}
	p.advance()
	return pos, kw, nil
}

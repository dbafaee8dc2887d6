// Package parser provides a minimal hand-written recursive-descent
// lexer/parser for the subset of the DSL the core handles (§6): enough
// to drive literal DSL text end to end in tests (E1-E6), not a
// production Meson frontend.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesonpp/mpp/internal/ast"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNewline
	tokIdent
	tokString
	tokNumber
	tokKeyword // true, false, if, elif, else, endif, not, and, or
	tokPunct   // ( ) [ ] { } , : = == != .
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

var keywords = map[string]bool{
	"true": true, "false": true, "if": true, "elif": true,
	"else": true, "endif": true, "not": true, "and": true, "or": true,
}

type lexer struct {
	file   string
	src    []rune
	pos    int
	line   int
	col    int
	tokens []token
}

func lex(file, src string) ([]token, error) {
	l := &lexer{file: file, src: []rune(src), line: 1, col: 1}
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, tok)
		if tok.kind == tokEOF {
			break
		}
	}
	return l.tokens, nil
}

func (l *lexer) peekRune() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		r := l.peekRune()
		switch {
		case r == '#':
			for l.pos < len(l.src) && l.peekRune() != '\n' {
				l.advance()
			}
		case r == '\n':
			line, col := l.line, l.col
			l.advance()
			return token{kind: tokNewline, line: line, col: col}, nil
		case r == ' ' || r == '\t' || r == '\r':
			l.advance()
		default:
			goto scan
		}
	}
	return token{kind: tokEOF, line: l.line, col: l.col}, nil

scan:
	line, col := l.line, l.col
	r := l.peekRune()
	switch {
	case r == '\'' || r == '"':
		return l.scanString(line, col)
	case r >= '0' && r <= '9':
		return l.scanNumber(line, col)
	case isIdentStart(r):
		return l.scanIdent(line, col)
	default:
		return l.scanPunct(line, col)
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func (l *lexer) scanString(line, col int) (token, error) {
	quote := l.advance()
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, fmt.Errorf("%s:%d:%d: unterminated string", l.file, line, col)
		}
		r := l.advance()
		if r == quote {
			break
		}
		if r == '\\' && l.pos < len(l.src) {
			r = l.advance()
		}
		sb.WriteRune(r)
	}
	return token{kind: tokString, text: sb.String(), line: line, col: col}, nil
}

func (l *lexer) scanNumber(line, col int) (token, error) {
	var sb strings.Builder
	for l.pos < len(l.src) && l.peekRune() >= '0' && l.peekRune() <= '9' {
		sb.WriteRune(l.advance())
	}
	return token{kind: tokNumber, text: sb.String(), line: line, col: col}, nil
}

func (l *lexer) scanIdent(line, col int) (token, error) {
	var sb strings.Builder
	for l.pos < len(l.src) && isIdentCont(l.peekRune()) {
		sb.WriteRune(l.advance())
	}
	text := sb.String()
	kind := tokIdent
	if keywords[text] {
		kind = tokKeyword
	}
	return token{kind: kind, text: text, line: line, col: col}, nil
}

func (l *lexer) scanPunct(line, col int) (token, error) {
	two := ""
	if l.pos+1 < len(l.src) {
		two = string(l.src[l.pos : l.pos+2])
	}
	switch two {
	case "==", "!=":
		l.advance()
		l.advance()
		return token{kind: tokPunct, text: two, line: line, col: col}, nil
	}
	r := l.advance()
	return token{kind: tokPunct, text: string(r), line: line, col: col}, nil
}

func posOf(file string, t token) ast.Pos {
	return ast.Pos{File: file, Line: t.line, Col: t.col}
}

func strconvAtoi(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

package lower

import (
	"os"
	"path/filepath"

	"github.com/mesonpp/mpp/internal/ast"
	"github.com/mesonpp/mpp/internal/ast/parser"
	"golang.org/x/xerrors"
)

// InlineSubdirs is the AST-level pre-pass §4.D describes: every
// subdir('x') statement is replaced by the parsed contents of
// x/meson.build, resolved relative to curDir (itself relative to
// sourceRoot), recursing into if/elif/else bodies. The result has no
// *ast.SubdirStmt left in it; the lowering builder treats one turning
// up as an internal error, not a user-facing one.
func InlineSubdirs(sourceRoot, curDir string, stmts []ast.Stmt) ([]ast.Stmt, error) {
	out := make([]ast.Stmt, 0, len(stmts))
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.SubdirStmt:
			subDir := filepath.Join(curDir, st.Path)
			file := filepath.Join(sourceRoot, subDir, "meson.build")
			src, err := os.ReadFile(file)
			if err != nil {
				return nil, xerrors.Errorf("subdir(%q): %w", st.Path, err)
			}
			block, err := parser.Parse(file, string(src))
			if err != nil {
				return nil, xerrors.Errorf("subdir(%q): %w", st.Path, err)
			}
			inlined, err := InlineSubdirs(sourceRoot, subDir, block.Statements)
			if err != nil {
				return nil, err
			}
			out = append(out, inlined...)
		case *ast.IfStatement:
			arms := make([]ast.IfArm, len(st.Arms))
			for i, arm := range st.Arms {
				body, err := InlineSubdirs(sourceRoot, curDir, arm.Body)
				if err != nil {
					return nil, err
				}
				arms[i] = ast.IfArm{Cond: arm.Cond, Body: body}
			}
			out = append(out, &ast.IfStatement{Pos: st.Pos, Arms: arms})
		default:
			out = append(out, s)
		}
	}
	return out, nil
}

// Package configure wires the whole pipeline — parse, AST→MIR, the
// fixed-point pass driver, backend lowering, and the two on-disk
// artifacts (Ninja file, test manifest) — into the single entry point
// the "configure" CLI verb calls. It plays the role the teacher's
// internal/build.Ctx.Build does: an injected-logger Ctx struct whose
// method does one real unit of work end to end.
package configure

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"golang.org/x/xerrors"

	"github.com/mesonpp/mpp/internal/ast/parser"
	"github.com/mesonpp/mpp/internal/backend"
	"github.com/mesonpp/mpp/internal/env"
	"github.com/mesonpp/mpp/internal/mir"
	"github.com/mesonpp/mpp/internal/mir/lower"
	"github.com/mesonpp/mpp/internal/mir/passes"
	"github.com/mesonpp/mpp/internal/ninja"
	"github.com/mesonpp/mpp/internal/testmanifest"
)

// Options carries the flags the CLI's "configure" verb accepts (§6).
type Options struct {
	SourceDir string
	BuildDir  string

	// Defines holds -D key=value built-in option overrides. Unused by
	// the present compiler (no built-in options are modeled beyond the
	// DSL's own get_option() surface, out of scope per spec.md), but
	// threaded through so the CLI surface matches spec §6 exactly and a
	// future option table has somewhere to plug in.
	Defines map[string]string
}

// Ctx carries the logger a configure run uses, mirroring the teacher's
// internal/build.Ctx (logger injected, never a package-level global).
// The debug-dump sink is not held here; Run opens it for each run.
type Ctx struct {
	Log *log.Logger
}

// NewCtx returns a Ctx with logger defaulting to log.Default() when nil.
func NewCtx(logger *log.Logger) *Ctx {
	if logger == nil {
		logger = log.Default()
	}
	return &Ctx{Log: logger}
}

// Result summarizes one successful configure run for the CLI to report.
type Result struct {
	Rules        []backend.Rule
	Tests        []backend.Test
	NinjaPath    string
	ManifestPath string
}

// Run executes one full configure: parse the root meson.build-
// equivalent file (after inlining every subdir()), lower it to MIR,
// drive the pass pipeline to its fixed point, lower the reduced CFG to
// a rule/test list, and write both on-disk artifacts atomically.
func (c *Ctx) Run(opts Options) (*Result, error) {
	sourceRoot := opts.SourceDir
	if override := env.SourceRootOverride(); override != "" {
		sourceRoot = override
	}
	rootFile := filepath.Join(sourceRoot, "meson.build")
	src, err := os.ReadFile(rootFile)
	if err != nil {
		return nil, xerrors.Errorf("reading %s: %w", rootFile, err)
	}

	block, err := parser.Parse(rootFile, string(src))
	if err != nil {
		return nil, xerrors.Errorf("parsing %s: %w", rootFile, err)
	}

	inlined, err := lower.InlineSubdirs(sourceRoot, ".", block.Statements)
	if err != nil {
		return nil, xerrors.Errorf("inlining subdir(): %w", err)
	}
	block.Statements = inlined

	cfg, err := lower.Build(sourceRoot, rootFile, block)
	if err != nil {
		return nil, xerrors.Errorf("building MIR: %w", err)
	}

	state := mir.NewState(mir.Roots{SourceRoot: sourceRoot, BuildRoot: opts.BuildDir})
	ctx := passes.NewCtx(cfg, state, c.Log)

	dump, err := env.OpenDebugSink()
	if err != nil {
		return nil, xerrors.Errorf("opening debug sink: %w", err)
	}
	if dump != nil {
		ctx.DebugDump = dump
		defer dump.Close()
	}

	if err := passes.Driver(ctx, cfg.Root); err != nil {
		return nil, xerrors.Errorf("pass pipeline: %w", err)
	}

	if msg, ok := firstErrorMessage(cfg, cfg.Root); ok {
		return nil, xerrors.Errorf("configuration failed: %s", msg)
	}

	tcs := backend.Toolchains(ctx.Toolchains)
	rules, tests, err := backend.Emit(cfg, cfg.Root, tcs, sourceRoot, opts.BuildDir)
	if err != nil {
		return nil, xerrors.Errorf("backend lowering: %w", err)
	}

	if err := os.MkdirAll(opts.BuildDir, 0o755); err != nil {
		return nil, xerrors.Errorf("creating build dir: %w", err)
	}

	ninjaPath := filepath.Join(opts.BuildDir, "build.ninja")
	if err := writeAtomic(ninjaPath, func(w io.Writer) error {
		return ninja.Write(w, rules)
	}); err != nil {
		return nil, xerrors.Errorf("writing %s: %w", ninjaPath, err)
	}

	manifestPath := filepath.Join(opts.BuildDir, "meson-test-manifest.txt")
	if err := renameio.WriteFile(manifestPath, testmanifest.Serialize(tests), 0o644); err != nil {
		return nil, xerrors.Errorf("writing %s: %w", manifestPath, err)
	}

	return &Result{Rules: rules, Tests: tests, NinjaPath: ninjaPath, ManifestPath: manifestPath}, nil
}

// firstErrorMessage scans the fixed-point CFG for a LevelError Message
// (§7: a Message(ERROR) must abort configuration with its text).
func firstErrorMessage(cfg *mir.CFG, root *mir.Node) (string, bool) {
	for _, n := range cfg.Reachable(root) {
		for _, instr := range n.Block.Instructions {
			if m, ok := instr.(*mir.Message); ok && m.Level == mir.LevelError {
				return m.Text, true
			}
		}
	}
	return "", false
}

// writeAtomic mirrors the teacher's renameio.TempFile usage (internal/
// build/build.go, cmd/distri/install.go): a configure failure mid-write
// must never leave a partial Ninja file on disk (§5).
func writeAtomic(path string, fn func(w io.Writer) error) error {
	t, err := renameio.TempFile("", path)
	if err != nil {
		return err
	}
	defer t.Cleanup()
	if err := fn(t); err != nil {
		return err
	}
	return t.CloseAtomicallyReplace()
}

package backend

import (
	"path/filepath"
	"sort"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"

	"github.com/mesonpp/mpp/internal/mir"
	"github.com/mesonpp/mpp/internal/mir/toolchain"
)

// Toolchains is the read side of the per-language toolchain table the
// backend needs to render compiler/linker/archiver argv. Resolver
// passes register these; the backend never detects on its own.
type Toolchains map[string]*toolchain.Toolchain

type namedTarget struct {
	name string
	obj  mir.Object
}

func targetName(obj mir.Object) string {
	switch t := obj.(type) {
	case *mir.Executable:
		return t.Name
	case *mir.StaticLibrary:
		return t.Name
	case *mir.CustomTarget:
		return t.Name
	default:
		return ""
	}
}

// collectAddArguments merges every reachable AddArguments instruction's
// contribution into one map, global and project scopes combined — the
// backend does not distinguish further between them (§4.G "global +
// project args for the target's language").
func collectAddArguments(cfg *mir.CFG, root *mir.Node) map[string][]mir.Argument {
	combined := make(map[string][]mir.Argument)
	for _, n := range cfg.Reachable(root) {
		for _, instr := range n.Block.Instructions {
			aa, ok := instr.(*mir.AddArguments)
			if !ok {
				continue
			}
			for lang, args := range aa.Arguments {
				combined[lang] = append(combined[lang], args...)
			}
		}
	}
	return combined
}

func collectTargets(cfg *mir.CFG, root *mir.Node) []namedTarget {
	var out []namedTarget
	for _, n := range cfg.Reachable(root) {
		for _, instr := range n.Block.Instructions {
			name := targetName(instr)
			if name == "" {
				continue
			}
			out = append(out, namedTarget{name: name, obj: instr})
		}
	}
	return out
}

// orderTargets topologically sorts targets so a target's dependencies
// (linked static libraries, custom_target inputs/depends) are emitted
// first, using the same dependency-graph-plus-topological-walk shape
// the CFG itself is built with, this time over target names rather
// than CFG nodes (§4.G "deterministic []Rule order").
func orderTargets(targets []namedTarget) ([]namedTarget, error) {
	byName := make(map[string]namedTarget, len(targets))
	for _, t := range targets {
		byName[t.name] = t
	}
	g := core.NewGraph(core.WithDirected(true))
	for _, t := range targets {
		if err := g.AddVertex(t.name); err != nil {
			return nil, err
		}
	}
	addEdge := func(dep, dependent string) {
		if _, ok := byName[dep]; !ok {
			return
		}
		_, _ = g.AddEdge(dep, dependent, 0)
	}
	for _, t := range targets {
		switch o := t.obj.(type) {
		case *mir.Executable:
			for _, lw := range o.LinkWith {
				addEdge(targetName(lw), t.name)
			}
		case *mir.StaticLibrary:
			for _, lw := range o.LinkWith {
				addEdge(targetName(lw), t.name)
			}
		case *mir.CustomTarget:
			for _, d := range o.Depends {
				addEdge(targetName(d), t.name)
			}
			for _, in := range o.Inputs {
				if ct, ok := in.(*mir.CustomTarget); ok {
					addEdge(ct.Name, t.name)
				}
			}
		}
	}
	order, err := dfs.TopologicalSort(g)
	if err != nil {
		return nil, err
	}
	out := make([]namedTarget, 0, len(order))
	for _, name := range order {
		if t, ok := byName[name]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func specializeAll(comp toolchain.Compiler, args []mir.Argument, sourceRoot, buildRoot string) []string {
	var out []string
	for _, a := range args {
		out = append(out, comp.SpecializeArgument(a, sourceRoot, buildRoot)...)
	}
	return out
}

func includeDirArgs(dirs []*mir.IncludeDirectories) []mir.Argument {
	var out []mir.Argument
	for _, id := range dirs {
		kind := mir.IncludeBase
		if id.IsSystem {
			kind = mir.IncludeSystem
		}
		for _, d := range id.Dirs {
			out = append(out, mir.Argument{Value: d, Type: mir.ArgInclude, IncludeKind: kind})
		}
	}
	return out
}

func sourceFilePath(obj mir.Object) (string, bool) {
	switch o := obj.(type) {
	case *mir.File:
		return o.RelativeToBuildDir(), true
	case *mir.CustomTarget:
		if len(o.Outputs) > 0 {
			return o.Outputs[0].RelativeToBuildDir(), true
		}
	}
	return "", false
}

func buildCompileAndLinkRules(t namedTarget, tcs Toolchains, sourceRoot, buildRoot string) []Rule {
	var sources []mir.Object
	var args map[string][]mir.Argument
	var includeDirs []*mir.IncludeDirectories
	var linkWith []mir.Object
	var name, subdir, language string
	archive := false

	switch o := t.obj.(type) {
	case *mir.Executable:
		sources, args, includeDirs, linkWith = o.Sources, o.Args, o.IncludeDirs, o.LinkWith
		name, subdir, language = o.Name, o.Subdir, o.Language
	case *mir.StaticLibrary:
		sources, args, includeDirs, linkWith = o.Sources, o.Args, o.IncludeDirs, o.LinkWith
		name, subdir, language = o.Name, o.Subdir, o.Language
		archive = true
	default:
		return nil
	}

	tc := tcs[language]
	var rules []Rule
	var objects []string
	for _, src := range sources {
		path, ok := sourceFilePath(src)
		if !ok {
			continue
		}
		ext := filepath.Ext(path)
		if ext == "" || tc == nil || tc.Compiler == nil {
			continue
		}
		out := filepath.Join(name+".p", filepath.Base(path)+".o")
		objects = append(objects, out)

		allArgs := make([]mir.Argument, 0, len(args[language])+len(includeDirs)+1)
		allArgs = append(allArgs, args[language]...)
		allArgs = append(allArgs, includeDirArgs(includeDirs)...)
		allArgs = append(allArgs, mir.Argument{Value: subdir, Type: mir.ArgInclude})
		rendered := append([]string{}, tc.Compiler.AlwaysArgs()...)
		rendered = append(rendered, specializeAll(tc.Compiler, allArgs, sourceRoot, buildRoot)...)

		var orderDeps []string
		if ct, ok := src.(*mir.CustomTarget); ok {
			for _, o := range ct.Outputs {
				orderDeps = append(orderDeps, o.RelativeToBuildDir())
			}
		}

		cmd := append([]string{}, tc.Compiler.Command()...)
		cmd = append(cmd, tc.Compiler.CompileOnlyCommand()...)
		cmd = append(cmd, tc.Compiler.OutputCommand(out)...)

		rules = append(rules, Rule{
			Kind: RuleCompile, Target: name,
			Inputs: []string{path}, Outputs: []string{out}, OrderDeps: orderDeps,
			Args: rendered, Command: cmd,
		})
	}

	for _, lw := range linkWith {
		if sl, ok := lw.(*mir.StaticLibrary); ok {
			objects = append(objects, sl.Name)
		}
	}

	kind := RuleLink
	var cmd []string
	var linkArgs []string
	if archive && tc != nil && tc.Archiver != nil {
		kind = RuleArchive
		cmd = append(cmd, tc.Archiver.Command()...)
		cmd = append(cmd, tc.Archiver.OutputCommand(name)...)
		linkArgs = tc.Archiver.AlwaysArgs()
	} else if tc != nil && tc.Linker != nil {
		cmd = append(cmd, tc.Linker.Command()...)
		cmd = append(cmd, tc.Linker.OutputCommand(name)...)
		linkArgs = tc.Linker.AlwaysArgs()
	}
	rules = append(rules, Rule{
		Kind: kind, Target: name,
		Inputs: objects, Outputs: []string{name},
		Args: linkArgs, Command: cmd,
	})
	return rules
}

func buildCustomRule(ct *mir.CustomTarget) Rule {
	var inputs, outputs, command []string
	for _, in := range ct.Inputs {
		if path, ok := sourceFilePath(in); ok {
			inputs = append(inputs, path)
		}
	}
	for _, o := range ct.Outputs {
		outputs = append(outputs, o.RelativeToBuildDir())
	}
	for _, c := range ct.Command {
		if s, ok := c.(*mir.String); ok {
			command = append(command, s.Value)
		} else if p, ok := c.(*mir.Program); ok {
			command = append(command, p.Path)
		}
	}
	return Rule{
		Kind: RuleCustom, Target: ct.Name,
		Inputs: inputs, Outputs: outputs, Command: command,
		Depfile: ct.Depfile,
	}
}

func testExePath(obj mir.Object) string {
	switch o := obj.(type) {
	case *mir.File:
		return o.RelativeToBuildDir()
	case *mir.Executable:
		return filepath.Join(o.Subdir, o.Name)
	case *mir.Program:
		return o.Path
	default:
		return ""
	}
}

func buildTestEntry(t *mir.Test) Test {
	var args []string
	for _, a := range t.Arguments {
		switch o := a.(type) {
		case *mir.String:
			args = append(args, o.Value)
		case *mir.File:
			args = append(args, o.RelativeToBuildDir())
		}
	}
	return Test{Name: t.Name, Exe: testExePath(t.Executable), Arguments: args, XFail: t.ShouldFail}
}

// Emit walks every instruction reachable from root and produces a
// deterministically ordered rule list and test list (§4.G). cfg must
// already be at the pass pipeline's fixed point: every target, source
// and argument it touches is assumed reduced.
func Emit(cfg *mir.CFG, root *mir.Node, tcs Toolchains, sourceRoot, buildRoot string) ([]Rule, []Test, error) {
	combinedArgs := collectAddArguments(cfg, root)
	targets := collectTargets(cfg, root)
	ordered, err := orderTargets(targets)
	if err != nil {
		return nil, nil, err
	}

	var rules []Rule
	for _, t := range ordered {
		switch o := t.obj.(type) {
		case *mir.Executable:
			merged := mergeArgs(combinedArgs, o.Args)
			o2 := *o
			o2.Args = merged
			rules = append(rules, buildCompileAndLinkRules(namedTarget{t.name, &o2}, tcs, sourceRoot, buildRoot)...)
		case *mir.StaticLibrary:
			merged := mergeArgs(combinedArgs, o.Args)
			o2 := *o
			o2.Args = merged
			rules = append(rules, buildCompileAndLinkRules(namedTarget{t.name, &o2}, tcs, sourceRoot, buildRoot)...)
		case *mir.CustomTarget:
			rules = append(rules, buildCustomRule(o))
		}
	}

	var tests []Test
	for _, n := range cfg.Reachable(root) {
		for _, instr := range n.Block.Instructions {
			if tt, ok := instr.(*mir.Test); ok {
				tests = append(tests, buildTestEntry(tt))
			}
		}
	}
	sort.SliceStable(tests, func(i, j int) bool { return tests[i].Name < tests[j].Name })

	return rules, tests, nil
}

func mergeArgs(global map[string][]mir.Argument, local map[string][]mir.Argument) map[string][]mir.Argument {
	out := make(map[string][]mir.Argument, len(local))
	for lang, args := range global {
		out[lang] = append(out[lang], args...)
	}
	for lang, args := range local {
		out[lang] = append(out[lang], args...)
	}
	return out
}

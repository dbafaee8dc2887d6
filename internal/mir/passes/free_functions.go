package passes

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mesonpp/mpp/internal/mir"
	"github.com/mesonpp/mpp/internal/mir/toolchain"
	"github.com/mesonpp/mpp/internal/vcstag"
)

func stringify(obj mir.Object) (string, bool) {
	switch o := obj.(type) {
	case *mir.String:
		return o.Value, true
	case *mir.Number:
		return fmt.Sprintf("%d", o.Value), true
	case *mir.Boolean:
		return fmt.Sprintf("%t", o.Value), true
	default:
		return "", false
	}
}

func languageFromExt(name string) string {
	switch filepath.Ext(name) {
	case ".c":
		return "c"
	case ".cpp", ".cc", ".cxx":
		return "cpp"
	default:
		return ""
	}
}

// srcToFile normalizes a Source argument (string, File, or CustomTarget)
// per §4.D's src_to_file contract.
func srcToFile(ctx *Ctx, sourceDir string, obj mir.Object) (mir.Object, bool) {
	switch o := obj.(type) {
	case *mir.String:
		return mir.NewFile(o.Value, sourceDir, false, ctx.State.Roots.SourceRoot, ctx.State.Roots.BuildRoot), true
	case *mir.File, *mir.CustomTarget:
		return o, true
	default:
		return nil, false
	}
}

// FreeFunctionLowering handles every free function (Holder == nil) §4.D
// enumerates, gated on every argument already being reduced.
func FreeFunctionLowering(ctx *Ctx, node *mir.Node) (bool, error) {
	var firstErr error
	cb := func(obj mir.Object) (mir.Object, bool) {
		if firstErr != nil {
			return obj, false
		}
		fc, ok := obj.(*mir.FunctionCall)
		if !ok || fc.Holder != nil {
			return obj, false
		}
		if !mir.AllReduced(fc.Positional...) || !mir.AllReduced(keywordValues(fc.Keyword)...) {
			return obj, false
		}
		switch fc.Name {
		case "files":
			return lowerFiles(ctx, fc), true
		case "include_directories":
			return lowerIncludeDirectories(fc), true
		case "executable":
			res, err := lowerTarget(ctx, fc, false)
			if err != nil {
				firstErr = err
				return obj, false
			}
			return res, true
		case "static_library":
			res, err := lowerTarget(ctx, fc, true)
			if err != nil {
				firstErr = err
				return obj, false
			}
			return res, true
		case "declare_dependency":
			return lowerDeclareDependency(fc), true
		case "custom_target":
			res, err := lowerCustomTarget(ctx, fc)
			if err != nil {
				firstErr = err
				return obj, false
			}
			return res, true
		case "message", "warning", "error":
			return lowerMessage(fc), true
		case "assert":
			res, err := lowerAssert(fc)
			if err != nil {
				firstErr = err
				return obj, false
			}
			return res, true
		case "unary_neg", "unary_not", "rel_eq", "rel_ne":
			res, err := lowerOperator(fc)
			if err != nil {
				firstErr = err
				return obj, false
			}
			return res, true
		case "project":
			lowerProject(ctx, fc)
			e := mir.NewEmpty()
			e.SetVar(fc.Var())
			return e, true
		case "vcs_tag":
			res, err := lowerVcsTag(fc)
			if err != nil {
				firstErr = err
				return obj, false
			}
			return res, true
		case "add_global_arguments", "add_project_arguments":
			return lowerAddArguments(ctx, fc), true
		case "test":
			res, err := lowerTest(fc)
			if err != nil {
				firstErr = err
				return obj, false
			}
			return res, true
		default:
			return obj, false
		}
	}
	changed := FunctionWalker(node, cb)
	return changed, firstErr
}

func lowerFiles(ctx *Ctx, fc *mir.FunctionCall) mir.Object {
	arr := mir.NewArray()
	for _, p := range fc.Positional {
		s, ok := p.(*mir.String)
		if !ok {
			continue
		}
		f := mir.NewFile(s.Value, fc.SourceDir, false, ctx.State.Roots.SourceRoot, ctx.State.Roots.BuildRoot)
		arr.Elems = append(arr.Elems, f)
	}
	arr.SetVar(fc.Var())
	return arr
}

func lowerIncludeDirectories(fc *mir.FunctionCall) mir.Object {
	var dirs []string
	for _, p := range fc.Positional {
		if s, ok := p.(*mir.String); ok {
			dirs = append(dirs, s.Value)
		}
	}
	isSystem := false
	if v, ok := fc.Keyword["is_system"]; ok {
		if b, ok := v.(*mir.Boolean); ok {
			isSystem = b.Value
		}
	}
	id := mir.NewIncludeDirectories(dirs, isSystem)
	id.SetVar(fc.Var())
	return id
}

// argsForLanguage generalizes a raw `<lang>_args` keyword's string
// elements via that language's toolchain, per §4.D's "compiler-specific
// arguments are generalized via the compiler's generalize_argument".
func argsForLanguage(ctx *Ctx, args map[string][]mir.Argument, lang string, arr *mir.Array) {
	tc := ctx.Toolchains[lang]
	if tc == nil || tc.Compiler == nil {
		return
	}
	for _, e := range arr.Elems {
		s, ok := e.(*mir.String)
		if !ok {
			continue
		}
		args[lang] = append(args[lang], tc.Compiler.GeneralizeArgument(s.Value))
	}
}

func lowerTarget(ctx *Ctx, fc *mir.FunctionCall, static bool) (mir.Object, error) {
	if len(fc.Positional) < 1 {
		return nil, mir.NewInvalidArguments(fc.Name, "expected a name argument")
	}
	nameObj, ok := fc.Positional[0].(*mir.String)
	if !ok {
		return nil, mir.NewInvalidArguments(fc.Name, "name must be a string")
	}

	var sources []mir.Object
	language := ""
	for _, p := range fc.Positional[1:] {
		f, ok := srcToFile(ctx, fc.SourceDir, p)
		if !ok {
			return nil, mir.NewInvalidArguments(fc.Name, "sources must be strings, files, or custom targets")
		}
		sources = append(sources, f)
		if language == "" {
			if file, ok := f.(*mir.File); ok {
				language = languageFromExt(file.Name)
			}
		}
	}

	args := make(map[string][]mir.Argument)
	var includeDirs []*mir.IncludeDirectories
	var linkWith []mir.Object
	forMachine := mir.MachineHost
	if native, ok := fc.Keyword["native"]; ok {
		if b, ok := native.(*mir.Boolean); ok && b.Value {
			forMachine = mir.MachineBuild
		}
	}

	for k, v := range fc.Keyword {
		switch {
		case strings.HasSuffix(k, "_args"):
			lang := strings.TrimSuffix(k, "_args")
			if arr, ok := v.(*mir.Array); ok {
				argsForLanguage(ctx, args, lang, arr)
			}
		case k == "include_directories":
			switch id := v.(type) {
			case *mir.IncludeDirectories:
				includeDirs = append(includeDirs, id)
			case *mir.Array:
				for _, e := range id.Elems {
					if idd, ok := e.(*mir.IncludeDirectories); ok {
						includeDirs = append(includeDirs, idd)
					}
				}
			}
		case k == "link_with":
			if arr, ok := v.(*mir.Array); ok {
				linkWith = append(linkWith, arr.Elems...)
			}
		}
	}

	if static {
		t := &mir.StaticLibrary{
			Name: nameObj.Value, Subdir: fc.SourceDir, Sources: sources,
			Args: args, IncludeDirs: includeDirs, LinkWith: linkWith,
			Language: language, ForMachine: forMachine,
		}
		t.SetVar(fc.Var())
		return t, nil
	}
	t := &mir.Executable{
		Name: nameObj.Value, Subdir: fc.SourceDir, Sources: sources,
		Args: args, IncludeDirs: includeDirs, LinkWith: linkWith,
		Language: language, ForMachine: forMachine,
	}
	t.SetVar(fc.Var())
	return t, nil
}

func lowerDeclareDependency(fc *mir.FunctionCall) mir.Object {
	version := ""
	if v, ok := fc.Keyword["version"]; ok {
		if s, ok := v.(*mir.String); ok {
			version = s.Value
		}
	}
	var arguments []mir.Argument
	collect := func(v mir.Object) {
		switch o := v.(type) {
		case *mir.IncludeDirectories:
			kind := mir.IncludeBase
			if o.IsSystem {
				kind = mir.IncludeSystem
			}
			for _, d := range o.Dirs {
				arguments = append(arguments, mir.Argument{Value: d, Type: mir.ArgInclude, IncludeKind: kind})
			}
		case *mir.Dependency:
			arguments = append(arguments, o.Arguments...)
		}
	}
	if v, ok := fc.Keyword["include_directories"]; ok {
		if arr, ok := v.(*mir.Array); ok {
			for _, e := range arr.Elems {
				collect(e)
			}
		} else {
			collect(v)
		}
	}
	if v, ok := fc.Keyword["dependencies"]; ok {
		if arr, ok := v.(*mir.Array); ok {
			for _, e := range arr.Elems {
				collect(e)
			}
		}
	}
	d := &mir.Dependency{Name: "", Found: true, Version: version, Arguments: arguments}
	d.SetVar(fc.Var())
	return d
}

// substitutePaths expands @INPUT@/@OUTPUT@/@INPUT<N>@/@OUTPUT<N>@ in a
// command-element string, per §4.D's custom_target contract.
func substitutePaths(s string, inputs, outputs []string) string {
	repl := func(text, token string, paths []string) string {
		all := strings.Join(paths, " ")
		text = strings.ReplaceAll(text, "@"+token+"@", all)
		for i, p := range paths {
			text = strings.ReplaceAll(text, fmt.Sprintf("@%s%d@", token, i), p)
		}
		return text
	}
	s = repl(s, "INPUT", inputs)
	s = repl(s, "OUTPUT", outputs)
	return s
}

func lowerCustomTarget(ctx *Ctx, fc *mir.FunctionCall) (mir.Object, error) {
	name := ""
	if len(fc.Positional) > 0 {
		if s, ok := fc.Positional[0].(*mir.String); ok {
			name = s.Value
		}
	}

	var inputs []mir.Object
	var inputPaths []string
	if v, ok := fc.Keyword["input"]; ok {
		add := func(o mir.Object) {
			f, ok := srcToFile(ctx, fc.SourceDir, o)
			if !ok {
				return
			}
			inputs = append(inputs, f)
			if file, ok := f.(*mir.File); ok {
				inputPaths = append(inputPaths, file.RelativeToBuildDir())
			}
		}
		if arr, ok := v.(*mir.Array); ok {
			for _, e := range arr.Elems {
				add(e)
			}
		} else {
			add(v)
		}
	}

	outRaw, ok := fc.Keyword["output"]
	if !ok {
		return nil, mir.NewInvalidArguments("custom_target", "output is required")
	}
	var outputs []*mir.File
	var outputPaths []string
	addOut := func(name string) {
		f := mir.NewFile(name, fc.SourceDir, true, ctx.State.Roots.SourceRoot, ctx.State.Roots.BuildRoot)
		outputs = append(outputs, f)
		outputPaths = append(outputPaths, f.RelativeToBuildDir())
	}
	switch o := outRaw.(type) {
	case *mir.String:
		addOut(o.Value)
	case *mir.Array:
		for _, e := range o.Elems {
			if s, ok := e.(*mir.String); ok {
				addOut(s.Value)
			}
		}
	default:
		return nil, mir.NewInvalidArguments("custom_target", "output must be a string or array of strings")
	}

	cmdRaw, ok := fc.Keyword["command"]
	if !ok {
		return nil, mir.NewInvalidArguments("custom_target", "command is required")
	}
	cmdArr, ok := cmdRaw.(*mir.Array)
	if !ok {
		return nil, mir.NewInvalidArguments("custom_target", "command must be an array")
	}
	var command []mir.Object
	for _, e := range cmdArr.Elems {
		switch c := e.(type) {
		case *mir.String:
			command = append(command, mir.NewString(substitutePaths(c.Value, inputPaths, outputPaths)))
		case *mir.File, *mir.Program:
			command = append(command, c)
		default:
			command = append(command, c)
		}
	}

	var depends []mir.Object
	if v, ok := fc.Keyword["depends"]; ok {
		if arr, ok := v.(*mir.Array); ok {
			depends = append(depends, arr.Elems...)
		} else {
			depends = append(depends, v)
		}
	}
	depfile := ""
	if v, ok := fc.Keyword["depfile"]; ok {
		if s, ok := v.(*mir.String); ok {
			depfile = s.Value
		}
	}

	ct := &mir.CustomTarget{
		Name: name, Inputs: inputs, Outputs: outputs, Command: command,
		Subdir: fc.SourceDir, Depends: depends, Depfile: depfile,
	}
	ct.SetVar(fc.Var())
	return ct, nil
}

func lowerMessage(fc *mir.FunctionCall) mir.Object {
	level := mir.LevelMessage
	switch fc.Name {
	case "warning":
		level = mir.LevelWarning
	case "error":
		level = mir.LevelError
	}
	parts := make([]string, 0, len(fc.Positional))
	for _, p := range fc.Positional {
		if s, ok := stringify(p); ok {
			parts = append(parts, s)
		}
	}
	m := mir.NewMessage(level, strings.Join(parts, " "))
	m.SetVar(fc.Var())
	return m
}

func lowerAssert(fc *mir.FunctionCall) (mir.Object, error) {
	if len(fc.Positional) < 1 {
		return nil, mir.NewInvalidArguments("assert", "expected a boolean condition")
	}
	cond, ok := fc.Positional[0].(*mir.Boolean)
	if !ok {
		return nil, mir.NewInvalidArguments("assert", "condition must be a boolean")
	}
	if cond.Value {
		e := mir.NewEmpty()
		e.SetVar(fc.Var())
		return e, nil
	}
	msg := "Assertion failed"
	if len(fc.Positional) > 1 {
		if s, ok := stringify(fc.Positional[1]); ok {
			msg = "Assertion failed: " + s
		}
	}
	m := mir.NewMessage(mir.LevelError, msg)
	m.SetVar(fc.Var())
	return m, nil
}

func lowerOperator(fc *mir.FunctionCall) (mir.Object, error) {
	switch fc.Name {
	case "unary_neg":
		n, ok := fc.Positional[0].(*mir.Number)
		if !ok {
			return nil, mir.NewInvalidArguments(fc.Name, "operand must be a number")
		}
		r := mir.NewNumber(-n.Value)
		r.SetVar(fc.Var())
		return r, nil
	case "unary_not":
		b, ok := fc.Positional[0].(*mir.Boolean)
		if !ok {
			return nil, mir.NewInvalidArguments(fc.Name, "operand must be a boolean")
		}
		r := mir.NewBoolean(!b.Value)
		r.SetVar(fc.Var())
		return r, nil
	case "rel_eq", "rel_ne":
		if len(fc.Positional) != 2 {
			return nil, mir.NewInvalidArguments(fc.Name, "expected two operands")
		}
		eq, err := scalarEqual(fc.Positional[0], fc.Positional[1])
		if err != nil {
			return nil, mir.NewInvalidArguments(fc.Name, err.Error())
		}
		if fc.Name == "rel_ne" {
			eq = !eq
		}
		r := mir.NewBoolean(eq)
		r.SetVar(fc.Var())
		return r, nil
	default:
		return nil, mir.NewNotImplemented(fc.Name)
	}
}

func scalarEqual(a, b mir.Object) (bool, error) {
	switch av := a.(type) {
	case *mir.String:
		bv, ok := b.(*mir.String)
		if !ok {
			return false, fmt.Errorf("type mismatch comparing %T and %T", a, b)
		}
		return av.Value == bv.Value, nil
	case *mir.Number:
		bv, ok := b.(*mir.Number)
		if !ok {
			return false, fmt.Errorf("type mismatch comparing %T and %T", a, b)
		}
		return av.Value == bv.Value, nil
	case *mir.Boolean:
		bv, ok := b.(*mir.Boolean)
		if !ok {
			return false, fmt.Errorf("type mismatch comparing %T and %T", a, b)
		}
		return av.Value == bv.Value, nil
	default:
		return false, fmt.Errorf("unsupported comparison operand %T", a)
	}
}

// lowerProject mutates persistent state and detects a toolchain for
// every requested language on the build machine (§4.D "project").
func lowerProject(ctx *Ctx, fc *mir.FunctionCall) {
	if len(fc.Positional) > 0 {
		if s, ok := fc.Positional[0].(*mir.String); ok {
			ctx.State.ProjectName = s.Value
		}
	}
	if v, ok := fc.Keyword["version"]; ok {
		if s, ok := v.(*mir.String); ok {
			ctx.State.ProjectVersion = s.Value
		}
	}
	for _, p := range fc.Positional[1:] {
		s, ok := p.(*mir.String)
		if !ok {
			continue
		}
		if ctx.Toolchains[s.Value] != nil {
			continue
		}
		if tc := toolchain.Detect(context.Background(), s.Value); tc != nil {
			ctx.Toolchains[s.Value] = tc
			ctx.State.SetToolchain(s.Value, mir.MachineBuild, tc)
		}
	}
}

func lowerVcsTag(fc *mir.FunctionCall) (mir.Object, error) {
	input, ok := fc.Keyword["input"].(*mir.File)
	if !ok {
		return nil, mir.NewInvalidArguments("vcs_tag", "input must be a file")
	}
	outputObj, ok := fc.Keyword["output"].(*mir.String)
	if !ok {
		return nil, mir.NewInvalidArguments("vcs_tag", "output must be a string")
	}
	tag := vcstag.Describe(input.SourceRoot)
	out := mir.NewFile(outputObj.Value, fc.SourceDir, true, input.SourceRoot, input.BuildRoot)
	command := substitutePaths(vcstag.RenderCommand(tag), []string{input.RelativeToBuildDir()}, []string{out.RelativeToBuildDir()})
	var cmd []mir.Object
	for _, word := range strings.Fields(command) {
		cmd = append(cmd, mir.NewString(word))
	}
	ct := &mir.CustomTarget{
		Name:    outputObj.Value,
		Inputs:  []mir.Object{input},
		Outputs: []*mir.File{out},
		Command: cmd,
		Subdir:  fc.SourceDir,
	}
	ct.SetVar(fc.Var())
	return ct, nil
}

// lowerAddArguments turns one add_global_arguments()/
// add_project_arguments() call into a standalone AddArguments
// instruction; CombineAddArguments later coalesces same-scope calls
// into one (§4.D "add_global_arguments/add_project_arguments").
func lowerAddArguments(ctx *Ctx, fc *mir.FunctionCall) mir.Object {
	isGlobal := fc.Name == "add_global_arguments"
	args := make(map[string][]mir.Argument)
	var langs []string
	if v, ok := fc.Keyword["language"]; ok {
		switch l := v.(type) {
		case *mir.String:
			langs = append(langs, l.Value)
		case *mir.Array:
			for _, e := range l.Elems {
				if s, ok := e.(*mir.String); ok {
					langs = append(langs, s.Value)
				}
			}
		}
	}
	for _, lang := range langs {
		tc := ctx.Toolchains[lang]
		for _, p := range fc.Positional {
			s, ok := p.(*mir.String)
			if !ok {
				continue
			}
			if tc != nil && tc.Compiler != nil {
				args[lang] = append(args[lang], tc.Compiler.GeneralizeArgument(s.Value))
			} else {
				args[lang] = append(args[lang], mir.Argument{Value: s.Value, Type: mir.ArgRaw})
			}
		}
	}
	aa := &mir.AddArguments{IsGlobal: isGlobal, Arguments: args}
	aa.SetVar(fc.Var())
	return aa
}

// lowerTest normalizes a test() call into a Test object (§4.D "test").
func lowerTest(fc *mir.FunctionCall) (mir.Object, error) {
	if len(fc.Positional) < 2 {
		return nil, mir.NewInvalidArguments("test", "expected name and executable arguments")
	}
	nameObj, ok := fc.Positional[0].(*mir.String)
	if !ok {
		return nil, mir.NewInvalidArguments("test", "name must be a string")
	}
	exe := fc.Positional[1]
	switch exe.(type) {
	case *mir.File, *mir.Executable, *mir.Program:
	default:
		return nil, mir.NewInvalidArguments("test", "executable must be a file, executable, or program")
	}
	var arguments []mir.Object
	if v, ok := fc.Keyword["args"]; ok {
		if arr, ok := v.(*mir.Array); ok {
			arguments = append(arguments, arr.Elems...)
		} else {
			arguments = append(arguments, v)
		}
	}
	shouldFail := false
	if v, ok := fc.Keyword["should_fail"]; ok {
		if b, ok := v.(*mir.Boolean); ok {
			shouldFail = b.Value
		}
	}
	t := &mir.Test{Name: nameObj.Value, Executable: exe, Arguments: arguments, ShouldFail: shouldFail}
	t.SetVar(fc.Var())
	return t, nil
}

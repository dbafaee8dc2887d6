package passes

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/mesonpp/mpp/internal/mir"
)

// searchPath resolves name to an executable path by probing PATH
// directly with unix.Access rather than going through exec.LookPath, so
// a program reported Found() actually passed an X_OK check under the
// same UID/GID the resolver runs as.
func searchPath(name string) string {
	if filepath.IsAbs(name) {
		if unix.Access(name, unix.X_OK) == nil {
			return name
		}
		return ""
	}
	for _, dir := range strings.Split(os.Getenv("PATH"), ":") {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if unix.Access(candidate, unix.X_OK) == nil {
			return candidate
		}
	}
	return ""
}

func pkgConfigLookup(ctx context.Context, name string) (found bool, version string) {
	out, err := exec.CommandContext(ctx, "pkg-config", "--modversion", name).Output()
	if err != nil {
		return false, ""
	}
	return true, strings.TrimSpace(string(out))
}

type resolveRequest struct {
	fc *mir.FunctionCall

	// store writes the resolved object back into the slot fc occupied:
	// an instruction index for top-level calls, a command-element index
	// for the find_program() calls CustomTargetProgramReplacement plants
	// inside a CustomTarget's Command.
	store func(mir.Object)
}

func collectCall(fc *mir.FunctionCall) bool {
	if fc.Holder != nil {
		return false
	}
	if fc.Name != "find_program" && fc.Name != "dependency" {
		return false
	}
	return mir.AllReduced(fc.Positional...)
}

// ThreadedResolve is the out-of-CFG, concurrency-bearing phase (§4.F):
// it collects every unresolved find_program()/dependency() call
// reachable from root whose arguments are already reduced, both in
// instruction position and planted inside a CustomTarget's Command by
// CustomTargetProgramReplacement, resolves them concurrently on at most
// eight goroutines (PATH search for programs, a pkg-config subprocess
// for dependencies), and
// splices the results back into the slots they came from.
//
// Grounded on the teacher's internal/build.Ctx.PkgSource worker-pool
// shape: a mutex-guarded shared slice filled in by an errgroup.Group.
func ThreadedResolve(ctx *Ctx, root *mir.Node) (bool, error) {
	var requests []resolveRequest
	for _, n := range ctx.CFG.Reachable(root) {
		n := n
		for i, instr := range n.Block.Instructions {
			i := i
			switch o := instr.(type) {
			case *mir.FunctionCall:
				if collectCall(o) {
					requests = append(requests, resolveRequest{
						fc:    o,
						store: func(res mir.Object) { n.Block.Instructions[i] = res },
					})
				}
			case *mir.CustomTarget:
				for j, elem := range o.Command {
					j := j
					ct := o
					if fc, ok := elem.(*mir.FunctionCall); ok && collectCall(fc) {
						requests = append(requests, resolveRequest{
							fc:    fc,
							store: func(res mir.Object) { ct.Command[j] = res },
						})
					}
				}
			}
		}
	}
	if len(requests) == 0 {
		return false, nil
	}

	results := make([]mir.Object, len(requests))
	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(context.Background())
	eg.SetLimit(8)
	for i, req := range requests {
		i, req := i, req
		eg.Go(func() error {
			var obj mir.Object
			switch req.fc.Name {
			case "find_program":
				obj = resolveFindProgram(ctx, req.fc)
			case "dependency":
				obj = resolveDependency(egCtx, ctx, req.fc)
			}
			mu.Lock()
			results[i] = obj
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return false, err
	}

	changed := false
	for i, req := range requests {
		if results[i] == nil {
			continue
		}
		if req.fc.Name == "find_program" && requiredDefaultTrue(req.fc) {
			if prog, ok := results[i].(*mir.Program); ok && !prog.Found() {
				return false, mir.NewMesonException(
					`Could not find required program "` + prog.Name + `"`)
			}
		}
		results[i].SetVar(req.fc.Var())
		req.store(results[i])
		changed = true
	}
	return changed, nil
}

// requiredDefaultTrue reads the `required:` keyword, defaulting to true
// per §4.F ("If the call had required:true (default)...").
func requiredDefaultTrue(fc *mir.FunctionCall) bool {
	v, ok := fc.Keyword["required"]
	if !ok {
		return true
	}
	b, ok := v.(*mir.Boolean)
	if !ok {
		return true
	}
	return b.Value
}

// resolveFindProgram probes every positional name left to right and
// takes the first hit; the resulting Program keeps the first name (the
// caller's canonical one) and is registered under every alias so later
// lookups against any of the candidate names see the same resolution.
func resolveFindProgram(ctx *Ctx, fc *mir.FunctionCall) mir.Object {
	var names []string
	for _, p := range fc.Positional {
		if s, ok := p.(*mir.String); ok {
			names = append(names, s.Value)
		}
	}
	if len(names) == 0 {
		return nil
	}
	path := ""
	for _, name := range names {
		if path = searchPath(name); path != "" {
			break
		}
	}
	prog := mir.NewProgram(names[0], mir.MachineHost, path)
	for _, name := range names {
		ctx.State.SetProgram(name, mir.MachineHost, prog)
	}
	return prog
}

func resolveDependency(egCtx context.Context, ctx *Ctx, fc *mir.FunctionCall) mir.Object {
	if len(fc.Positional) < 1 {
		return nil
	}
	s, ok := fc.Positional[0].(*mir.String)
	if !ok {
		return nil
	}
	found, version := pkgConfigLookup(egCtx, s.Value)
	dep := &mir.Dependency{Name: s.Value, Found: found, Version: version}
	ctx.State.SetDependency(s.Value, dep)
	return dep
}

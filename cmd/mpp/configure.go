package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mesonpp/mpp/internal/configure"
)

const configureHelp = `mpp configure [-flags] <builddir>

Read the project's meson.build (and every subdir() it includes), lower
it to a build graph, and write build.ninja plus the test manifest into
<builddir>.

Example:
  % mpp configure -s . build
  % mpp configure -D werror=true builddir
`

// defineFlag accumulates repeated -D/--define key=value flags into a
// map, the same way the teacher accumulates repeated flags with a
// custom flag.Value (see cmd/distri/build.go's stringsFlag).
type defineFlag struct{ m map[string]string }

func (d *defineFlag) String() string {
	if d.m == nil {
		return ""
	}
	var parts []string
	for k, v := range d.m {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (d *defineFlag) Set(s string) error {
	key, val, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("malformed -D value %q, want key=value", s)
	}
	if d.m == nil {
		d.m = make(map[string]string)
	}
	d.m[key] = val
	return nil
}

func cmdconfigure(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("configure", flag.ExitOnError)
	sourceDir := fset.String("s", ".", "source directory containing meson.build")
	fset.StringVar(sourceDir, "source-dir", ".", "source directory containing meson.build")
	defines := &defineFlag{}
	fset.Var(defines, "D", "define a built-in option as key=value (repeatable)")
	fset.Var(defines, "define", "define a built-in option as key=value (repeatable)")
	fset.Usage = func() {
		fmt.Fprintln(os.Stderr, configureHelp)
		fmt.Fprintln(os.Stderr, "Flags:")
		fset.PrintDefaults()
	}
	fset.Parse(args)

	rest := fset.Args()
	if len(rest) != 1 {
		fset.Usage()
		os.Exit(2)
	}
	buildDir := rest[0]

	cctx := configure.NewCtx(log.Default())
	res, err := cctx.Run(configure.Options{
		SourceDir: *sourceDir,
		BuildDir:  buildDir,
		Defines:   defines.m,
	})
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d rules) and %s (%d tests)\n", res.NinjaPath, len(res.Rules), res.ManifestPath, len(res.Tests))
	return nil
}

// Command mpp is the CLI surface (§6) for the build-description
// compiler: a single "configure" verb (plus help), following the
// teacher's cmd/distri verb-dispatch shape (flag.NewFlagSet per verb,
// exit code 1 when a command fails, 2 on a flag or usage error).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mesonpp/mpp/internal/trace"
)

var ctracefile = flag.String("ctracefile", "", "path to store a chrome trace event file at (load in chrome://tracing)")

func funcmain() error {
	flag.Parse()

	if *ctracefile != "" {
		f, err := os.Create(*ctracefile)
		if err != nil {
			return err
		}
		defer f.Close()
		trace.Sink(f)
	}

	type cmd struct {
		fn func(ctx context.Context, args []string) error
	}
	verbs := map[string]cmd{
		"configure": {cmdconfigure},
	}

	args := flag.Args()
	verb := "configure"
	if len(args) > 0 {
		verb, args = args[0], args[1:]
	}

	if verb == "help" {
		fmt.Fprintln(os.Stderr, "mpp [-flags] <command> [-flags] <args>")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "\tconfigure - read meson.build, emit build.ninja and a test manifest")
		return nil
	}

	v, ok := verbs[verb]
	if !ok {
		return fmt.Errorf("unknown command %q", verb)
	}

	// A configure run holds no resources past its own Run call, so an
	// interrupt only needs to cancel the context; cleanup is each
	// writer's defer, not a process-wide exit queue.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := v.fn(ctx, args); err != nil {
		return fmt.Errorf("%s: %v", verb, err)
	}
	return nil
}

func main() {
	if err := funcmain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

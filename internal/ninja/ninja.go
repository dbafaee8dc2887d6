// Package ninja renders a backend.Rule list into Ninja build-file text
// (spec §1: "the textual emission of the Ninja file... is trivial
// formatting given the reduced graph" — an external collaborator whose
// contract this package implements, not the core pipeline).
package ninja

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mesonpp/mpp/internal/backend"
)

func ruleName(r backend.Rule, idx int) string {
	return fmt.Sprintf("%s_%d", strings.ToLower(r.Kind.String()), idx)
}

func commandLine(r backend.Rule) string {
	if r.Kind == backend.RuleCustom {
		return strings.Join(r.Command, " ")
	}
	argv := make([]string, 0, len(r.Command)+len(r.Inputs)+len(r.Args))
	argv = append(argv, r.Command...)
	argv = append(argv, r.Inputs...)
	argv = append(argv, r.Args...)
	return strings.Join(argv, " ")
}

// Write renders rules as a Ninja build file to w: one statically-named
// rule plus one build edge per backend.Rule, in the order given (the
// backend is responsible for dependency-respecting order; this package
// never reorders).
func Write(w io.Writer, rules []backend.Rule) error {
	fmt.Fprintln(w, "# generated by mpp configure; do not edit")
	fmt.Fprintln(w, "ninja_required_version = 1.8.2")
	fmt.Fprintln(w)
	for i, r := range rules {
		name := ruleName(r, i)
		fmt.Fprintf(w, "rule %s\n", name)
		fmt.Fprintf(w, "  command = %s\n", commandLine(r))
		fmt.Fprintf(w, "  description = %s %s\n", r.Kind, r.Target)
		fmt.Fprintln(w)
		fmt.Fprintf(w, "build %s: %s %s", strings.Join(r.Outputs, " "), name, strings.Join(r.Inputs, " "))
		if len(r.OrderDeps) > 0 {
			fmt.Fprintf(w, " || %s", strings.Join(r.OrderDeps, " "))
		}
		fmt.Fprintln(w)
		if r.Depfile != "" {
			fmt.Fprintf(w, "  depfile = %s\n", r.Depfile)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// TargetNames returns the deduplicated, sorted set of rule Target
// fields.
func TargetNames(rules []backend.Rule) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rules {
		if !seen[r.Target] {
			seen[r.Target] = true
			out = append(out, r.Target)
		}
	}
	sort.Strings(out)
	return out
}

package ninja

import (
	"strings"
	"testing"

	"github.com/mesonpp/mpp/internal/backend"
)

func TestWriteRendersRuleAndBuildEdge(t *testing.T) {
	rules := []backend.Rule{
		{
			Kind: backend.RuleCompile, Target: "exe",
			Inputs: []string{"main.c"}, Outputs: []string{"exe.p/main.c.o"},
			Command: []string{"gcc", "-c", "-o", "exe.p/main.c.o"},
			Args:    []string{"-Dfoo"},
		},
		{
			Kind: backend.RuleLink, Target: "exe",
			Inputs: []string{"exe.p/main.c.o"}, Outputs: []string{"exe"},
			Command: []string{"gcc", "-o", "exe"},
		},
	}

	var buf strings.Builder
	if err := Write(&buf, rules); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "# generated by mpp configure; do not edit\n") {
		t.Fatalf("output missing header comment:\n%s", out)
	}
	if !strings.Contains(out, "ninja_required_version = 1.8.2") {
		t.Fatalf("output missing ninja_required_version:\n%s", out)
	}
	if !strings.Contains(out, "rule compile_0") {
		t.Fatalf("output missing rule compile_0:\n%s", out)
	}
	if !strings.Contains(out, "-Dfoo") {
		t.Fatalf("output missing compile args:\n%s", out)
	}
	if !strings.Contains(out, "build exe.p/main.c.o: compile_0 main.c") {
		t.Fatalf("output missing compile build edge:\n%s", out)
	}
	if !strings.Contains(out, "build exe: link_1 exe.p/main.c.o") {
		t.Fatalf("output missing link build edge:\n%s", out)
	}
}

func TestWriteRendersOrderDepsAndDepfile(t *testing.T) {
	rules := []backend.Rule{
		{
			Kind: backend.RuleCompile, Target: "exe",
			Inputs: []string{"main.c"}, Outputs: []string{"exe.p/main.c.o"},
			OrderDeps: []string{"generated.h"},
			Depfile:   "exe.p/main.c.o.d",
		},
	}
	var buf strings.Builder
	if err := Write(&buf, rules); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "|| generated.h") {
		t.Fatalf("output missing order-only dependency:\n%s", out)
	}
	if !strings.Contains(out, "depfile = exe.p/main.c.o.d") {
		t.Fatalf("output missing depfile directive:\n%s", out)
	}
}

func TestWriteRendersCustomRuleCommandVerbatim(t *testing.T) {
	rules := []backend.Rule{
		{
			Kind: backend.RuleCustom, Target: "gen",
			Inputs: []string{"in.txt"}, Outputs: []string{"out.txt"},
			Command: []string{"python3", "gen.py", "in.txt", "out.txt"},
		},
	}
	var buf strings.Builder
	if err := Write(&buf, rules); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "command = python3 gen.py in.txt out.txt") {
		t.Fatalf("custom rule command not rendered verbatim:\n%s", out)
	}
}

func TestTargetNamesDedupsAndSorts(t *testing.T) {
	rules := []backend.Rule{
		{Target: "zeta"},
		{Target: "alpha"},
		{Target: "zeta"},
	}
	got := TargetNames(rules)
	want := []string{"alpha", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("TargetNames = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TargetNames = %v, want %v", got, want)
		}
	}
}

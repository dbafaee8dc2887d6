package passes

import (
	"testing"

	"github.com/mesonpp/mpp/internal/mir"
)

func TestFlattenCollapsesNestedArrays(t *testing.T) {
	ctx, cfg := newTestCtx()
	nested := mir.NewArray(
		mir.NewString("a"),
		mir.NewArray(mir.NewString("b"), mir.NewArray(mir.NewString("c"))),
		mir.NewString("d"),
	)
	cfg.Root.Block.Append(nested)

	changed, err := Flatten(ctx, cfg.Root)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if !changed {
		t.Fatalf("Flatten reported no change on a nested array")
	}

	arr, ok := cfg.Root.Block.Instructions[0].(*mir.Array)
	if !ok {
		t.Fatalf("instruction 0 is %T, want *mir.Array", cfg.Root.Block.Instructions[0])
	}
	if len(arr.Elems) != 4 {
		t.Fatalf("flattened array has %d elements, want 4: %#v", len(arr.Elems), arr.Elems)
	}
	for i, want := range []string{"a", "b", "c", "d"} {
		s, ok := arr.Elems[i].(*mir.String)
		if !ok || s.Value != want {
			t.Fatalf("element %d = %#v, want String(%q)", i, arr.Elems[i], want)
		}
	}
}

func TestFlattenLeavesFlatArrayAlone(t *testing.T) {
	ctx, cfg := newTestCtx()
	flat := mir.NewArray(mir.NewString("a"), mir.NewString("b"))
	cfg.Root.Block.Append(flat)

	changed, err := Flatten(ctx, cfg.Root)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if changed {
		t.Fatalf("Flatten reported a change on an already-flat array")
	}
}

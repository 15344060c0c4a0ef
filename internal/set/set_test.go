package set

import (
	"testing"

	"github.com/banshee-data/temporalgeo/internal/basetype"
)

func i4(v int32) basetype.Datum { return basetype.Datum{Tag: basetype.TagInt4, V: v} }

func TestMakeSortsAndDedups(t *testing.T) {
	s, err := Make(basetype.TagInt4, []basetype.Datum{i4(3), i4(1), i4(3), i4(2)})
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	want := []int32{1, 2, 3}
	for i, w := range want {
		if s.Values[i].V.(int32) != w {
			t.Fatalf("Values[%d] = %v, want %v", i, s.Values[i].V, w)
		}
	}
}

func TestLocate(t *testing.T) {
	s, _ := Make(basetype.TagInt4, []basetype.Datum{i4(1), i4(3), i4(5)})
	if !s.Contains(i4(3)) {
		t.Fatal("expected 3 to be contained")
	}
	if s.Contains(i4(4)) {
		t.Fatal("expected 4 to not be contained")
	}
}

func TestIntersectionAndMinus(t *testing.T) {
	a, _ := Make(basetype.TagInt4, []basetype.Datum{i4(1), i4(2), i4(3)})
	b, _ := Make(basetype.TagInt4, []basetype.Datum{i4(2), i4(3), i4(4)})
	inter, ok := Intersection(a, b)
	if !ok || inter.Len() != 2 {
		t.Fatalf("Intersection = %+v, %v", inter, ok)
	}
	diff, ok := Minus(a, b)
	if !ok || diff.Len() != 1 || diff.Values[0].V.(int32) != 1 {
		t.Fatalf("Minus = %+v, %v", diff, ok)
	}
}

func TestMakeRejectsEmpty(t *testing.T) {
	if _, err := Make(basetype.TagInt4, nil); err == nil {
		t.Fatal("expected error constructing from zero values")
	}
}

func TestRoundTripThroughNormalization(t *testing.T) {
	// spec.md §8 universal invariant: S == sort_dedup(elements(S)).
	s, _ := Make(basetype.TagInt4, []basetype.Datum{i4(5), i4(1), i4(1), i4(3)})
	again, err := Make(basetype.TagInt4, s.Values)
	if err != nil {
		t.Fatal(err)
	}
	if again.Len() != s.Len() {
		t.Fatalf("round-trip changed length: %d vs %d", again.Len(), s.Len())
	}
}

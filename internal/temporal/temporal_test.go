package temporal

import (
	"testing"
	"time"

	"github.com/banshee-data/temporalgeo/internal/basetype"
)

func ff(v float64) basetype.Datum { return basetype.Datum{Tag: basetype.TagFloat8, V: v} }

func at(sec int) time.Time { return time.Date(2024, 1, 1, 0, 0, sec, 0, time.UTC) }

// Scenario 3 of spec.md §8: restriction inserting a crossing.
func TestScenarioRestrictAtValueInsertsCrossing(t *testing.T) {
	seq, err := NewSequence(basetype.TagFloat8,
		[]Inst{{T: at(0), V: ff(1.0)}, {T: at(4), V: ff(5.0)}},
		true, true, true)
	if err != nil {
		t.Fatal(err)
	}
	r, ok := AtValue(seq, ff(3.0))
	if !ok {
		t.Fatal("expected a hit at value 3.0")
	}
	if r.Subtype != Instant {
		t.Fatalf("expected a single instant result, got %v", r.Subtype)
	}
	wantT := at(0).Add(time.Duration(float64(at(4).Sub(at(0))) * (3.0 - 1.0) / (5.0 - 1.0)))
	if !r.Instants[0].T.Equal(wantT) {
		t.Fatalf("crossing time = %v, want %v", r.Instants[0].T, wantT)
	}
}

func TestValueAtLinearInterpolation(t *testing.T) {
	seq, _ := NewSequence(basetype.TagFloat8,
		[]Inst{{T: at(0), V: ff(0.0)}, {T: at(10), V: ff(10.0)}},
		true, true, true)
	v, ok := ValueAt(seq, at(5))
	if !ok || v.V.(float64) != 5.0 {
		t.Fatalf("ValueAt(5) = %v, %v; want 5.0, true", v, ok)
	}
}

func TestValueAtStepHoldsPriorValue(t *testing.T) {
	seq, _ := NewSequence(basetype.TagFloat8,
		[]Inst{{T: at(0), V: ff(1.0)}, {T: at(10), V: ff(9.0)}},
		true, true, false)
	v, ok := ValueAt(seq, at(5))
	if !ok || v.V.(float64) != 1.0 {
		t.Fatalf("ValueAt(5) step = %v, %v; want 1.0, true", v, ok)
	}
}

// spec.md §8 universal invariant: value_at(at(T, t), t) == value_at(T, t).
func TestInvariantAtTimestampPreservesValue(t *testing.T) {
	seq, _ := NewSequence(basetype.TagFloat8,
		[]Inst{{T: at(0), V: ff(1.0)}, {T: at(4), V: ff(5.0)}, {T: at(8), V: ff(2.0)}},
		true, true, true)
	for _, inst := range seq.Instants {
		restricted, ok := AtTimestamp(seq, inst.T)
		if !ok {
			t.Fatalf("AtTimestamp(%v) missing", inst.T)
		}
		got, _ := ValueAt(restricted, inst.T)
		want, _ := ValueAt(seq, inst.T)
		if got.V.(float64) != want.V.(float64) {
			t.Fatalf("value mismatch at %v: %v vs %v", inst.T, got, want)
		}
	}
}

func TestNewSequenceRejectsLinearOverDiscreteBase(t *testing.T) {
	_, err := NewSequence(basetype.TagBool,
		[]Inst{{T: at(0), V: basetype.Datum{Tag: basetype.TagBool, V: true}}, {T: at(1), V: basetype.Datum{Tag: basetype.TagBool, V: false}}},
		true, true, true)
	if err == nil {
		t.Fatal("expected error: linear interpolation over a non-continuous base")
	}
}

func TestNewSequenceSingleInstantMustBeInclusive(t *testing.T) {
	_, err := NewSequence(basetype.TagFloat8, []Inst{{T: at(0), V: ff(1.0)}}, true, false, false)
	if err == nil {
		t.Fatal("expected error: single-instant sequence must have both bounds inclusive")
	}
}

func TestBBoxNumericCoversAllValues(t *testing.T) {
	seq, _ := NewSequence(basetype.TagFloat8,
		[]Inst{{T: at(0), V: ff(1.0)}, {T: at(4), V: ff(5.0)}, {T: at(8), V: ff(-2.0)}},
		true, true, true)
	tb, ok := TBox(seq)
	if !ok {
		t.Fatal("expected TBox bbox for numeric base")
	}
	lo := tb.X.Lo.V.(float64)
	hi := tb.X.Hi.V.(float64)
	if lo != -2.0 || hi != 5.0 {
		t.Fatalf("bbox X = [%v, %v], want [-2, 5]", lo, hi)
	}
}

func TestAppendInstantStartsNewSequenceOnGap(t *testing.T) {
	seq, _ := NewSequence(basetype.TagFloat8, []Inst{{T: at(0), V: ff(1.0)}}, true, true, true)
	out, err := AppendInstant(seq, Inst{T: at(100), V: ff(2.0)}, AppendOptions{MaxT: 10})
	if err != nil {
		t.Fatal(err)
	}
	if out.Subtype != SequenceSet {
		t.Fatalf("expected gap to split into a sequence-set, got %v", out.Subtype)
	}
	if len(out.Sequences) != 2 {
		t.Fatalf("expected 2 sequences, got %d", len(out.Sequences))
	}
}

func TestMergeRejectsConflictingValues(t *testing.T) {
	a, _ := NewInstantSet(basetype.TagFloat8, []Inst{{T: at(0), V: ff(1.0)}})
	b, _ := NewInstantSet(basetype.TagFloat8, []Inst{{T: at(0), V: ff(2.0)}})
	if _, err := Merge(a, b); err == nil {
		t.Fatal("expected merge conflict error")
	}
}

func TestEverAlwaysEq(t *testing.T) {
	seq, _ := NewSequence(basetype.TagFloat8,
		[]Inst{{T: at(0), V: ff(1.0)}, {T: at(4), V: ff(1.0)}, {T: at(8), V: ff(1.0)}},
		true, true, false)
	if !AlwaysEq(seq, ff(1.0)) {
		t.Fatal("expected always_eq(T, 1.0)")
	}
	if !EverEq(seq, ff(1.0)) {
		t.Fatal("expected ever_eq(T, 1.0)")
	}
	if EverEq(seq, ff(2.0)) {
		t.Fatal("did not expect ever_eq(T, 2.0)")
	}
}

package agg

import (
	"testing"
	"time"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/temporal"
)

func ff(v float64) basetype.Datum { return basetype.Datum{Tag: basetype.TagFloat8, V: v} }

func at(sec int) time.Time { return time.Date(2024, 6, 1, 0, 0, sec, 0, time.UTC) }

func instant(t time.Time, v float64) temporal.Temporal {
	inst, err := temporal.NewInstant(basetype.TagFloat8, t, ff(v))
	if err != nil {
		panic(err)
	}
	return inst
}

func TestSkiplistInsertLocateAll(t *testing.T) {
	sl := NewSkipList(1)
	sl.Insert(at(0), instant(at(0), 1))
	sl.Insert(at(10), instant(at(10), 2))
	sl.Insert(at(5), instant(at(5), 3))
	if sl.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", sl.Len())
	}
	got, ok := sl.Locate(at(7))
	if !ok {
		t.Fatal("Locate(7) missing")
	}
	if got.Instants[0].T != at(5) {
		t.Fatalf("Locate(7) = %v, want node at 5", got.Instants[0].T)
	}
	all := sl.All()
	if len(all) != 3 || !all[0].Instants[0].T.Equal(at(0)) {
		t.Fatalf("All() out of order: %v", all)
	}
}

func TestTSumAggregatesDisjointInstants(t *testing.T) {
	state := TSum()
	if err := Transfn(state, instant(at(0), 1)); err != nil {
		t.Fatal(err)
	}
	if err := Transfn(state, instant(at(10), 2)); err != nil {
		t.Fatal(err)
	}
	result, err := Finalfn(state)
	if err != nil {
		t.Fatal(err)
	}
	insts := temporal.AllInstants(result)
	if len(insts) != 2 {
		t.Fatalf("expected 2 instants in disjoint tsum result, got %d", len(insts))
	}
}

func TestTCountOfTwoInstantsAtSameTimestamp(t *testing.T) {
	state := TCount(basetype.TagFloat8)
	a := instant(at(0), 1)
	b := instant(at(0), 2)
	if err := TCountTransfn(state, a); err != nil {
		t.Fatal(err)
	}
	if err := TCountTransfn(state, b); err != nil {
		t.Fatal(err)
	}
	result, err := Finalfn(state)
	if err != nil {
		t.Fatal(err)
	}
	insts := temporal.AllInstants(result)
	if len(insts) != 1 {
		t.Fatalf("expected 1 folded instant, got %d", len(insts))
	}
	if insts[0].V.V.(int32) != 2 {
		t.Fatalf("tcount at shared timestamp = %v, want 2", insts[0].V.V)
	}
}

func TestCombinefnMergesIndependentStates(t *testing.T) {
	s1 := TSum()
	s2 := TSum()
	if err := Transfn(s1, instant(at(0), 1)); err != nil {
		t.Fatal(err)
	}
	if err := Transfn(s2, instant(at(10), 2)); err != nil {
		t.Fatal(err)
	}
	merged, err := Combinefn(s1, s2)
	if err != nil {
		t.Fatal(err)
	}
	result, err := Finalfn(merged)
	if err != nil {
		t.Fatal(err)
	}
	if len(temporal.AllInstants(result)) != 2 {
		t.Fatalf("expected combined state to hold both instants")
	}
}

func TestAppTInstTransfnBuildsTrajectory(t *testing.T) {
	agg := &AppTInstTransfn{Opts: AppendOptions{MaxT: 100}}
	if err := agg.Step(temporal.Inst{T: at(0), V: ff(1)}); err != nil {
		t.Fatal(err)
	}
	if err := agg.Step(temporal.Inst{T: at(5), V: ff(2)}); err != nil {
		t.Fatal(err)
	}
	result, err := agg.Final()
	if err != nil {
		t.Fatal(err)
	}
	if result.Subtype != temporal.Sequence {
		t.Fatalf("expected a single sequence, got %v", result.Subtype)
	}
}

func TestAppTInstTransfnSplitsOnGap(t *testing.T) {
	agg := &AppTInstTransfn{Opts: AppendOptions{MaxT: 2}}
	if err := agg.Step(temporal.Inst{T: at(0), V: ff(1)}); err != nil {
		t.Fatal(err)
	}
	if err := agg.Step(temporal.Inst{T: at(100), V: ff(2)}); err != nil {
		t.Fatal(err)
	}
	result, err := agg.Final()
	if err != nil {
		t.Fatal(err)
	}
	if result.Subtype != temporal.SequenceSet {
		t.Fatalf("expected a sequence-set after the gap, got %v", result.Subtype)
	}
}

func TestFinalfnRejectsEmptyState(t *testing.T) {
	state := TSum()
	if _, err := Finalfn(state); err == nil {
		t.Fatal("expected error finalizing an empty aggregation state")
	}
}

package temporal

import "github.com/banshee-data/temporalgeo/internal/basetype"

// EverEq implements spec.md §4.5: ∃ t: T(t) = v. The bounding box is
// consulted first as a cheap conservative pre-filter.
func EverEq(tv Temporal, v basetype.Datum) bool {
	if !bboxMayContainValue(tv, v) {
		return false
	}
	desc := basetype.Get(tv.Base)
	for _, inst := range AllInstants(tv) {
		if desc.Eq(inst.V, v) {
			return true
		}
	}
	if tv.Subtype == Sequence && tv.Interp == Linear && desc.IsNumber {
		insts := tv.Instants
		target := v.V.(float64)
		for i := 0; i+1 < len(insts); i++ {
			if _, ok := crossingTime(insts[i].T, insts[i].V.V.(float64), insts[i+1].T, insts[i+1].V.V.(float64), target); ok {
				return true
			}
		}
	}
	if tv.Subtype == SequenceSet {
		for _, seq := range tv.Sequences {
			if EverEq(seq, v) {
				return true
			}
		}
	}
	return false
}

// AlwaysEq implements spec.md §4.5: ∀ t ∈ domain(T): T(t) = v.
func AlwaysEq(tv Temporal, v basetype.Datum) bool {
	if !bboxMayContainValue(tv, v) {
		return false
	}
	desc := basetype.Get(tv.Base)
	for _, inst := range AllInstants(tv) {
		if !desc.Eq(inst.V, v) {
			return false
		}
	}
	return true
}

// bboxMayContainValue is the conservative pre-filter: for numeric bases,
// v must lie within the bbox's value span; for other bases there is no
// cheaper test than the exhaustive scan, so it always passes through.
func bboxMayContainValue(tv Temporal, v basetype.Datum) bool {
	tb, ok := TBox(tv)
	if !ok {
		return true
	}
	if !tb.HasX() {
		return true
	}
	desc := basetype.Get(tv.Base)
	return desc.Cmp(v, tb.X.Lo) >= 0 && desc.Cmp(v, tb.X.Hi) <= 0
}

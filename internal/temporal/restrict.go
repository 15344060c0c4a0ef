package temporal

import (
	"time"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/set"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/spanset"
)

// AtTimestamp restricts tv to the instant at t, if defined there
// (spec.md §4.5 restriction to a timestamp).
func AtTimestamp(tv Temporal, t time.Time) (Temporal, bool) {
	v, ok := ValueAt(tv, t)
	if !ok {
		return Temporal{}, false
	}
	out, err := NewInstant(tv.Base, t, v)
	if err != nil {
		return Temporal{}, false
	}
	return out, true
}

// MinusTimestamp restricts tv to every point except t.
func MinusTimestamp(tv Temporal, t time.Time) (Temporal, bool) {
	switch tv.Subtype {
	case Instant:
		if tv.Instants[0].T.Equal(t) {
			return Temporal{}, false
		}
		return tv, true
	case InstantSet:
		var kept []Inst
		for _, inst := range tv.Instants {
			if !inst.T.Equal(t) {
				kept = append(kept, inst)
			}
		}
		if len(kept) == 0 {
			return Temporal{}, false
		}
		out, err := NewInstantSet(tv.Base, kept)
		return out, err == nil
	default:
		// Sequence / SequenceSet: splitting a continuous trajectory
		// around a single excluded instant produces two adjoining pieces
		// (or the same sequence if t isn't interior); model via
		// MinusPeriod with a degenerate singleton period.
		p, _ := span.Make(basetype.TagTimestamptz, tsDatum(t), tsDatum(t), true, true)
		return MinusPeriod(tv, p)
	}
}

// AtValue restricts tv to the sub-temporal whose values equal target. For
// linear sequences this inserts turning points at every crossing
// (spec.md §4.5, scenario 3 of spec.md §8). A sequence with exactly one
// hit yields an Instant.
func AtValue(tv Temporal, target basetype.Datum) (Temporal, bool) {
	desc := basetype.Get(tv.Base)
	switch tv.Subtype {
	case Instant:
		if desc.Eq(tv.Instants[0].V, target) {
			return tv, true
		}
		return Temporal{}, false
	case InstantSet:
		var kept []Inst
		for _, inst := range tv.Instants {
			if desc.Eq(inst.V, target) {
				kept = append(kept, inst)
			}
		}
		if len(kept) == 0 {
			return Temporal{}, false
		}
		out, err := NewInstantSet(tv.Base, kept)
		return out, err == nil
	case Sequence:
		r, ok := sequenceAtValue(tv, target)
		if ok && r.Subtype == Sequence && len(r.Instants) == 1 {
			out, err := NewInstant(tv.Base, r.Instants[0].T, r.Instants[0].V)
			return out, err == nil
		}
		return r, ok
	case SequenceSet:
		var seqs []Temporal
		for _, seq := range tv.Sequences {
			if r, ok := sequenceAtValue(seq, target); ok {
				seqs = append(seqs, flattenToSequences(r)...)
			}
		}
		if len(seqs) == 0 {
			return Temporal{}, false
		}
		out, err := NewSequenceSet(tv.Base, seqs)
		return out, err == nil
	default:
		return Temporal{}, false
	}
}

// flattenToSequences normalizes a sequenceAtValue result (which may be a
// single Sequence or a SequenceSet of several hit-segments) into a flat
// slice of Sequence-subtype Temporal values.
func flattenToSequences(t Temporal) []Temporal {
	if t.Subtype == SequenceSet {
		return t.Sequences
	}
	return []Temporal{t}
}

// sequenceAtValue walks a single sequence and, for step/discrete
// interpolation, keeps the instants that equal target as point sequences;
// for linear, it also inserts a turning point at every crossing time and
// keeps single-instant inclusive sequences there.
func sequenceAtValue(seq Temporal, target basetype.Datum) (Temporal, bool) {
	desc := basetype.Get(seq.Base)
	var hits []Temporal
	if seq.Interp != Linear || !desc.IsNumber {
		for _, inst := range seq.Instants {
			if desc.Eq(inst.V, target) {
				s, err := NewSequence(seq.Base, []Inst{inst}, true, true, false)
				if err == nil {
					hits = append(hits, s)
				}
			}
		}
	} else {
		tv := target.V.(float64)
		for i := 0; i < len(seq.Instants); i++ {
			vi := seq.Instants[i].V.V.(float64)
			if vi == tv {
				s, err := NewSequence(seq.Base, []Inst{seq.Instants[i]}, true, true, false)
				if err == nil {
					hits = append(hits, s)
				}
			}
			if i+1 < len(seq.Instants) {
				vj := seq.Instants[i+1].V.V.(float64)
				if ct, ok := crossingTime(seq.Instants[i].T, vi, seq.Instants[i+1].T, vj, tv); ok {
					s, err := NewSequence(seq.Base, []Inst{{T: ct, V: target}}, true, true, false)
					if err == nil {
						hits = append(hits, s)
					}
				}
			}
		}
	}
	if len(hits) == 0 {
		return Temporal{}, false
	}
	if len(hits) == 1 {
		return hits[0], true
	}
	out, err := NewSequenceSet(seq.Base, hits)
	if err != nil {
		// Two hits at the exact same instant (duplicate) collapse into one.
		return hits[0], true
	}
	return out, true
}

// MinusValue is the complement of AtValue.
func MinusValue(tv Temporal, target basetype.Datum) (Temporal, bool) {
	desc := basetype.Get(tv.Base)
	switch tv.Subtype {
	case Instant:
		if desc.Eq(tv.Instants[0].V, target) {
			return Temporal{}, false
		}
		return tv, true
	case InstantSet:
		var kept []Inst
		for _, inst := range tv.Instants {
			if !desc.Eq(inst.V, target) {
				kept = append(kept, inst)
			}
		}
		if len(kept) == 0 {
			return Temporal{}, false
		}
		out, err := NewInstantSet(tv.Base, kept)
		return out, err == nil
	default:
		// Derive via merge(at, minus) inverse: walk all timestamps where
		// AtValue wouldn't hit. For the step/linear sequence case this is
		// implemented as restricting to the period-set outside the
		// at-value hits, using each hit instant as an excluded timestamp.
		hit, ok := AtValue(tv, target)
		if !ok {
			return tv, true
		}
		result := tv
		for _, inst := range AllInstants(hit) {
			r, ok := MinusTimestamp(result, inst.T)
			if !ok {
				return Temporal{}, false
			}
			result = r
		}
		return result, true
	}
}

// AtPeriod restricts tv to the portion of its time domain inside p.
func AtPeriod(tv Temporal, p span.Span) (Temporal, bool) {
	switch tv.Subtype {
	case Instant:
		t := tv.Instants[0].T
		if span.ContainsValue(p, tsDatum(t)) {
			return tv, true
		}
		return Temporal{}, false
	case InstantSet:
		var kept []Inst
		for _, inst := range tv.Instants {
			if span.ContainsValue(p, tsDatum(inst.T)) {
				kept = append(kept, inst)
			}
		}
		if len(kept) == 0 {
			return Temporal{}, false
		}
		out, err := NewInstantSet(tv.Base, kept)
		return out, err == nil
	case Sequence:
		return sequenceAtPeriod(tv, p)
	case SequenceSet:
		var seqs []Temporal
		for _, seq := range tv.Sequences {
			if !span.Overlaps(Period(seq), p) {
				continue
			}
			if r, ok := sequenceAtPeriod(seq, p); ok {
				seqs = append(seqs, r)
			}
		}
		if len(seqs) == 0 {
			return Temporal{}, false
		}
		out, err := NewSequenceSet(tv.Base, seqs)
		return out, err == nil
	default:
		return Temporal{}, false
	}
}

func sequenceAtPeriod(seq Temporal, p span.Span) (Temporal, bool) {
	own := Period(seq)
	inter, ok := span.Intersection(own, p)
	if !ok {
		return Temporal{}, false
	}
	lo := inter.Lo.V.(time.Time)
	hi := inter.Hi.V.(time.Time)
	var kept []Inst
	for _, inst := range seq.Instants {
		if !inst.T.Before(lo) && !inst.T.After(hi) {
			kept = append(kept, inst)
		}
	}
	// Insert interpolated endpoints when the intersection boundary falls
	// strictly inside the sequence (linear only — step/discrete cannot
	// manufacture an intermediate observation).
	if seq.Interp == Linear {
		if len(kept) == 0 || kept[0].T.After(lo) {
			if v, ok := sequenceValueAt(seq, lo); ok && !lo.Before(own.Lo.V.(time.Time)) && !lo.After(own.Hi.V.(time.Time)) {
				kept = append([]Inst{{T: lo, V: v}}, kept...)
			}
		}
		if len(kept) == 0 || kept[len(kept)-1].T.Before(hi) {
			if v, ok := sequenceValueAt(seq, hi); ok && !hi.Before(own.Lo.V.(time.Time)) && !hi.After(own.Hi.V.(time.Time)) {
				kept = append(kept, Inst{T: hi, V: v})
			}
		}
	}
	if len(kept) == 0 {
		return Temporal{}, false
	}
	out, err := NewSequence(seq.Base, kept, inter.LoInc, inter.HiInc, seq.Interp == Linear)
	return out, err == nil
}

// MinusPeriod is the complement of AtPeriod.
func MinusPeriod(tv Temporal, p span.Span) (Temporal, bool) {
	own := Period(tv)
	complement, ok := complementOfPeriod(own, p)
	if !ok {
		return Temporal{}, false
	}
	var out Temporal
	found := false
	for _, c := range complement {
		if r, ok := AtPeriod(tv, c); ok {
			if !found {
				out = r
				found = true
			} else {
				merged, err := Merge(out, r)
				if err != nil {
					continue
				}
				out = merged
			}
		}
	}
	return out, found
}

// complementOfPeriod returns the (up to two) sub-spans of own not covered
// by p, using span.Minus's own interior-split detection: when p is
// strictly interior to own, span.Minus reports ErrNotContiguous, which is
// exactly the signal to split into the left and right remainders by hand.
func complementOfPeriod(own, p span.Span) ([]span.Span, bool) {
	if !span.Overlaps(own, p) {
		return []span.Span{own}, true
	}
	remainder, ok, err := span.Minus(own, p)
	if err == nil {
		if !ok {
			return nil, false
		}
		return []span.Span{remainder}, true
	}
	// p strictly interior to own: two pieces.
	left, errL := span.Make(own.Base, own.Lo, p.Lo, own.LoInc, !p.LoInc)
	right, errR := span.Make(own.Base, p.Hi, own.Hi, !p.HiInc, own.HiInc)
	var out []span.Span
	if errL == nil {
		out = append(out, left)
	}
	if errR == nil {
		out = append(out, right)
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// AtValueSet restricts tv to the union of its restriction to each element
// of vs (spec.md §4.5: "restriction... to a value, set of values").
func AtValueSet(tv Temporal, vs set.Set) (Temporal, bool) {
	var out Temporal
	found := false
	for _, v := range vs.Values {
		r, ok := AtValue(tv, v)
		if !ok {
			continue
		}
		if !found {
			out, found = r, true
			continue
		}
		if merged, err := Merge(out, r); err == nil {
			out = merged
		}
	}
	return out, found
}

// MinusValueSet is the complement of AtValueSet.
func MinusValueSet(tv Temporal, vs set.Set) (Temporal, bool) {
	result := tv
	ok := true
	for _, v := range vs.Values {
		result, ok = MinusValue(result, v)
		if !ok {
			return Temporal{}, false
		}
	}
	return result, true
}

// AtSpanSet restricts tv to the union of its restriction to each span of
// ss.
func AtSpanSet(tv Temporal, ss spanset.SpanSet) (Temporal, bool) {
	var out Temporal
	found := false
	for _, s := range ss.Spans {
		r, ok := AtValueSpan(tv, s)
		if !ok {
			continue
		}
		if !found {
			out, found = r, true
			continue
		}
		if merged, err := Merge(out, r); err == nil {
			out = merged
		}
	}
	return out, found
}

// AtValueSpan restricts tv to the sub-temporal whose values lie within
// valueSpan (a span over tv's own base, distinct from the time-domain
// AtPeriod above).
func AtValueSpan(tv Temporal, valueSpan span.Span) (Temporal, bool) {
	switch tv.Subtype {
	case Instant:
		if span.ContainsValue(valueSpan, tv.Instants[0].V) {
			return tv, true
		}
		return Temporal{}, false
	case InstantSet:
		var kept []Inst
		for _, inst := range tv.Instants {
			if span.ContainsValue(valueSpan, inst.V) {
				kept = append(kept, inst)
			}
		}
		if len(kept) == 0 {
			return Temporal{}, false
		}
		out, err := NewInstantSet(tv.Base, kept)
		return out, err == nil
	case Sequence:
		return sequenceAtValueSpan(tv, valueSpan)
	case SequenceSet:
		var seqs []Temporal
		for _, seq := range tv.Sequences {
			if r, ok := sequenceAtValueSpan(seq, valueSpan); ok {
				seqs = append(seqs, flattenToSequences(r)...)
			}
		}
		if len(seqs) == 0 {
			return Temporal{}, false
		}
		out, err := NewSequenceSet(tv.Base, seqs)
		return out, err == nil
	default:
		return Temporal{}, false
	}
}

func sequenceAtValueSpan(seq Temporal, valueSpan span.Span) (Temporal, bool) {
	desc := basetype.Get(seq.Base)
	if seq.Interp != Linear || !desc.IsNumber {
		var hits []Temporal
		var cur []Inst
		flush := func() {
			if len(cur) > 0 {
				s, err := NewSequence(seq.Base, cur, true, true, false)
				if err == nil {
					hits = append(hits, s)
				}
				cur = nil
			}
		}
		for _, inst := range seq.Instants {
			if span.ContainsValue(valueSpan, inst.V) {
				cur = append(cur, inst)
			} else {
				flush()
			}
		}
		flush()
		if len(hits) == 0 {
			return Temporal{}, false
		}
		if len(hits) == 1 {
			return hits[0], true
		}
		out, err := NewSequenceSet(seq.Base, hits)
		return out, err == nil
	}
	// Linear numeric: insert turning points at each boundary crossing of
	// valueSpan, then keep the runs whose values fall inside it.
	lo := valueSpan.Lo.V.(float64)
	hi := valueSpan.Hi.V.(float64)
	var withCrossings []Inst
	for i, inst := range seq.Instants {
		withCrossings = append(withCrossings, inst)
		if i+1 < len(seq.Instants) {
			v0 := inst.V.V.(float64)
			v1 := seq.Instants[i+1].V.V.(float64)
			for _, target := range []float64{lo, hi} {
				if ct, ok := crossingTime(inst.T, v0, seq.Instants[i+1].T, v1, target); ok {
					withCrossings = append(withCrossings, Inst{T: ct, V: basetype.Datum{Tag: seq.Base, V: target}})
				}
			}
		}
	}
	sortInstsByTime(withCrossings)
	var hits []Temporal
	var cur []Inst
	flush := func() {
		if len(cur) > 0 {
			s, err := NewSequence(seq.Base, cur, true, true, true)
			if err == nil {
				hits = append(hits, s)
			}
			cur = nil
		}
	}
	for _, inst := range withCrossings {
		if span.ContainsValue(valueSpan, inst.V) {
			cur = append(cur, inst)
		} else {
			flush()
		}
	}
	flush()
	if len(hits) == 0 {
		return Temporal{}, false
	}
	if len(hits) == 1 {
		return hits[0], true
	}
	out, err := NewSequenceSet(seq.Base, hits)
	return out, err == nil
}

func sortInstsByTime(insts []Inst) {
	for i := 1; i < len(insts); i++ {
		j := i
		for j > 0 && insts[j-1].T.After(insts[j].T) {
			insts[j-1], insts[j] = insts[j], insts[j-1]
			j--
		}
	}
}

// Package temporal implements the L3 temporal-value layer (spec.md §3.6,
// §4.5): the four subtypes (instant, instant-set, sequence, sequence-set)
// over a single temporal-type tag, their normalization invariants, the
// interpolation discipline, and value-at-timestamp/bbox maintenance.
//
// Grounded on original_source/include/general/temporal.h, tinstantset.h,
// timetypes.h.
package temporal

import (
	"time"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/box"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/temperr"
)

// Subtype is the closed tag enum of spec.md §3.6.
type Subtype uint8

const (
	Instant Subtype = iota + 1
	InstantSet
	Sequence
	SequenceSet
)

func (s Subtype) String() string {
	switch s {
	case Instant:
		return "Instant"
	case InstantSet:
		return "InstantSet"
	case Sequence:
		return "Sequence"
	case SequenceSet:
		return "SequenceSet"
	default:
		return "invalid"
	}
}

// Interpolation is spec.md's discrete/step/linear discipline.
type Interpolation uint8

const (
	Discrete Interpolation = iota
	Step
	Linear
)

func (i Interpolation) String() string {
	switch i {
	case Discrete:
		return "Discrete"
	case Step:
		return "Step"
	case Linear:
		return "Linear"
	default:
		return "invalid"
	}
}

// Inst is a single (t, v) observation, shared by every subtype as the
// atomic unit of the instants array.
type Inst struct {
	T time.Time
	V basetype.Datum
}

// Temporal is the single polymorphic representation of spec.md §3.6:
// subtype and base-type tag determine which fields are meaningful.
//
//   - Instant:      len(Instants) == 1.
//   - InstantSet:   Instants strictly increasing by T; Interp == Discrete.
//   - Sequence:     Instants strictly increasing by T; LowerInc/UpperInc
//     bound the period [Instants[0].T, Instants[n-1].T]; Interp is Step
//     or Linear.
//   - SequenceSet:  Sequences pairwise time-disjoint, same Interp.
type Temporal struct {
	Subtype  Subtype
	Base     basetype.Tag
	Interp   Interpolation
	Instants []Inst // Instant, InstantSet, Sequence
	LowerInc bool   // Sequence only
	UpperInc bool   // Sequence only

	Sequences []Temporal // SequenceSet only; each element has Subtype == Sequence

	// BBox is one of span.Span (time-only, non-numeric non-spatial base),
	// box.TBox (number base) or box.STBox (geom/geog base), recomputed
	// from scratch by every constructor (spec.md §4.5 "bboxes are never
	// lazily updated").
	BBox any
}

// dispatchTable is the single (subtype, op) jump table spec.md §4.5 asks
// implementers to build once rather than re-deriving a switch per
// operation. Each cell receives the already-subtype-checked Temporal.
type dispatchTable struct {
	instants func(t Temporal) []Inst
	period   func(t Temporal) span.Span
}

var dispatch = map[Subtype]dispatchTable{
	Instant: {
		instants: func(t Temporal) []Inst { return t.Instants },
		period: func(t Temporal) span.Span {
			return singletonPeriod(t.Instants[0].T)
		},
	},
	InstantSet: {
		instants: func(t Temporal) []Inst { return t.Instants },
		period: func(t Temporal) span.Span {
			p, _ := span.Make(basetype.TagTimestamptz, tsDatum(t.Instants[0].T), tsDatum(t.Instants[len(t.Instants)-1].T), true, true)
			return p
		},
	},
	Sequence: {
		instants: func(t Temporal) []Inst { return t.Instants },
		period: func(t Temporal) span.Span {
			p, _ := span.Make(basetype.TagTimestamptz, tsDatum(t.Instants[0].T), tsDatum(t.Instants[len(t.Instants)-1].T), t.LowerInc, t.UpperInc)
			return p
		},
	},
	SequenceSet: {
		instants: func(t Temporal) []Inst {
			var out []Inst
			for _, seq := range t.Sequences {
				out = append(out, seq.Instants...)
			}
			return out
		},
		period: func(t Temporal) span.Span {
			first, last := t.Sequences[0], t.Sequences[len(t.Sequences)-1]
			p, _ := span.Make(basetype.TagTimestamptz, tsDatum(first.Instants[0].T), tsDatum(last.Instants[len(last.Instants)-1].T), first.LowerInc, last.UpperInc)
			return p
		},
	},
}

func tsDatum(t time.Time) basetype.Datum { return basetype.Datum{Tag: basetype.TagTimestamptz, V: t} }

func singletonPeriod(t time.Time) span.Span {
	p, _ := span.Make(basetype.TagTimestamptz, tsDatum(t), tsDatum(t), true, true)
	return p
}

// AllInstants flattens any subtype to its underlying instant sequence, in
// time order, via the dispatch table.
func AllInstants(t Temporal) []Inst { return dispatch[t.Subtype].instants(t) }

// Period returns the time-domain period (or period-set bounding span, via
// SequenceSet's outermost bounds) covered by t.
func Period(t Temporal) span.Span { return dispatch[t.Subtype].period(t) }

// NewInstant constructs a single-observation temporal value.
func NewInstant(base basetype.Tag, t time.Time, v basetype.Datum) (Temporal, error) {
	if v.Tag != base {
		return Temporal{}, temperr.Wrap(temperr.ErrDomainMismatch, "temporal: instant value tag does not match base")
	}
	out := Temporal{Subtype: Instant, Base: base, Interp: Discrete, Instants: []Inst{{T: t, V: v}}}
	out.BBox = computeBBox(out)
	return out, nil
}

// NewInstantSet constructs a discrete-interpolation instant-set.
// Invariant: strictly increasing timestamps (spec.md §3.6).
func NewInstantSet(base basetype.Tag, insts []Inst) (Temporal, error) {
	if len(insts) == 0 {
		return Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "temporal: instant-set requires at least one instant")
	}
	sorted, err := sortedStrict(base, insts)
	if err != nil {
		return Temporal{}, err
	}
	out := Temporal{Subtype: InstantSet, Base: base, Interp: Discrete, Instants: sorted}
	out.BBox = computeBBox(out)
	return out, nil
}

// NewSequence constructs a contiguous trajectory. Invariants (spec.md
// §3.6): strictly increasing timestamps; if linear is requested over a
// non-continuous base, that's forbidden; a one-instant sequence must have
// both bounds inclusive.
func NewSequence(base basetype.Tag, insts []Inst, lowerInc, upperInc bool, linear bool) (Temporal, error) {
	if len(insts) == 0 {
		return Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "temporal: sequence requires at least one instant")
	}
	sorted, err := sortedStrict(base, insts)
	if err != nil {
		return Temporal{}, err
	}
	desc := basetype.Get(base)
	if linear && !desc.IsContinuous {
		return Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "temporal: linear interpolation requires a continuous base")
	}
	if len(sorted) == 1 && !(lowerInc && upperInc) {
		return Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "temporal: single-instant sequence must have both bounds inclusive")
	}
	interp := Step
	if linear {
		interp = Linear
	}
	out := Temporal{Subtype: Sequence, Base: base, Interp: interp, Instants: sorted, LowerInc: lowerInc, UpperInc: upperInc}
	out.BBox = computeBBox(out)
	return out, nil
}

// NewSequenceSet constructs a sequence-set. Invariant: pairwise disjoint
// periods, same interpolation across all sequences.
func NewSequenceSet(base basetype.Tag, seqs []Temporal) (Temporal, error) {
	if len(seqs) == 0 {
		return Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "temporal: sequence-set requires at least one sequence")
	}
	interp := seqs[0].Interp
	for _, s := range seqs {
		if s.Subtype != Sequence {
			return Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "temporal: sequence-set elements must be sequences")
		}
		if s.Base != base {
			return Temporal{}, temperr.Wrap(temperr.ErrDomainMismatch, "temporal: sequence-set element base mismatch")
		}
		if s.Interp != interp {
			return Temporal{}, temperr.Wrap(temperr.ErrDomainMismatch, "temporal: sequence-set requires uniform interpolation")
		}
	}
	sorted := append([]Temporal(nil), seqs...)
	sortSequencesByStart(sorted)
	for i := 0; i+1 < len(sorted); i++ {
		if span.Overlaps(Period(sorted[i]), Period(sorted[i+1])) {
			return Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "temporal: sequence-set periods must be pairwise disjoint")
		}
	}
	out := Temporal{Subtype: SequenceSet, Base: base, Interp: interp, Sequences: sorted}
	out.BBox = computeBBox(out)
	return out, nil
}

func sortSequencesByStart(seqs []Temporal) {
	for i := 1; i < len(seqs); i++ {
		j := i
		for j > 0 && span.CmpLower(Period(seqs[j-1]), Period(seqs[j])) > 0 {
			seqs[j-1], seqs[j] = seqs[j], seqs[j-1]
			j--
		}
	}
}

func sortedStrict(base basetype.Tag, insts []Inst) ([]Inst, error) {
	out := append([]Inst(nil), insts...)
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && out[j-1].T.After(out[j].T) {
			out[j-1], out[j] = out[j], out[j-1]
			j--
		}
	}
	for i := range out {
		if out[i].V.Tag != base {
			return nil, temperr.Wrap(temperr.ErrDomainMismatch, "temporal: instant value tag does not match base")
		}
		if i > 0 && !out[i].T.After(out[i-1].T) {
			return nil, temperr.Wrap(temperr.ErrInvariantViolated, "temporal: timestamps must be strictly increasing")
		}
	}
	return out, nil
}

// computeBBox recomputes t's bounding box from scratch, per spec.md §4.5
// ("bboxes are never lazily updated"). The concrete box kind depends on
// the base type's capability flags.
func computeBBox(t Temporal) any {
	desc := basetype.Get(t.Base)
	period := Period(t)
	switch {
	case desc.IsNumber:
		vs := AllInstants(t)
		lo, hi := vs[0].V, vs[0].V
		for _, inst := range vs[1:] {
			if desc.Cmp(inst.V, lo) < 0 {
				lo = inst.V
			}
			if desc.Cmp(inst.V, hi) > 0 {
				hi = inst.V
			}
		}
		valSpan, err := span.Make(t.Base, lo, hi, true, true)
		if err != nil {
			// lo == hi with Make requiring both-inclusive on equality,
			// which already holds; unreachable in practice.
			valSpan, _ = span.Make(t.Base, lo, lo, true, true)
		}
		tb, _ := box.MakeTBox(&valSpan, &period)
		return tb
	case desc.IsSpatial && (t.Base == basetype.TagGeom):
		vs := AllInstants(t)
		p0 := vs[0].V.V.(basetype.GeomPoint)
		xmin, ymin, xmax, ymax := p0.X, p0.Y, p0.X, p0.Y
		zmin, zmax := p0.Z, p0.Z
		hasZ := p0.HasZ
		for _, inst := range vs[1:] {
			p := inst.V.V.(basetype.GeomPoint)
			xmin, xmax = minf(xmin, p.X), maxf(xmax, p.X)
			ymin, ymax = minf(ymin, p.Y), maxf(ymax, p.Y)
			if p.HasZ {
				hasZ = true
				zmin, zmax = minf(zmin, p.Z), maxf(zmax, p.Z)
			}
		}
		sb, _ := box.MakeSTBox(true, xmin, ymin, xmax, ymax, hasZ, zmin, zmax, &period, p0.SRID, false)
		return sb
	case desc.IsSpatial && t.Base == basetype.TagGeog:
		vs := AllInstants(t)
		p0 := vs[0].V.V.(basetype.GeogPoint)
		xmin, ymin, xmax, ymax := p0.Lon, p0.Lat, p0.Lon, p0.Lat
		for _, inst := range vs[1:] {
			p := inst.V.V.(basetype.GeogPoint)
			xmin, xmax = minf(xmin, p.Lon), maxf(xmax, p.Lon)
			ymin, ymax = minf(ymin, p.Lat), maxf(ymax, p.Lat)
		}
		sb, _ := box.MakeSTBox(true, xmin, ymin, xmax, ymax, false, 0, 0, &period, p0.SRID, true)
		return sb
	default:
		// Non-numeric, non-spatial base: the bbox is the period alone.
		return period
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// TBox returns t's bbox as a TBox; ok is false if the bbox is not a TBox
// (non-numeric base).
func TBox(t Temporal) (box.TBox, bool) {
	tb, ok := t.BBox.(box.TBox)
	return tb, ok
}

// STBox returns t's bbox as an STBox; ok is false if the bbox is not an
// STBox (non-spatial base).
func STBox(t Temporal) (box.STBox, bool) {
	sb, ok := t.BBox.(box.STBox)
	return sb, ok
}

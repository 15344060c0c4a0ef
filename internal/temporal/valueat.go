package temporal

import (
	"sort"
	"time"

	"github.com/banshee-data/temporalgeo/internal/basetype"
)

// ValueAt implements spec.md §4.5's "Value-at-timestamp":
//   - Instant: defined only at t.
//   - Instant-set: defined at each t[i]; elsewhere undefined.
//   - Sequence: binary search the bracketing pair; step returns v[i];
//     linear interpolates.
//   - Sequence-set: locate the containing sequence, delegate.
func ValueAt(tv Temporal, at time.Time) (basetype.Datum, bool) {
	switch tv.Subtype {
	case Instant:
		if tv.Instants[0].T.Equal(at) {
			return tv.Instants[0].V, true
		}
		return basetype.Datum{}, false
	case InstantSet:
		i := sort.Search(len(tv.Instants), func(i int) bool { return !tv.Instants[i].T.Before(at) })
		if i < len(tv.Instants) && tv.Instants[i].T.Equal(at) {
			return tv.Instants[i].V, true
		}
		return basetype.Datum{}, false
	case Sequence:
		return sequenceValueAt(tv, at)
	case SequenceSet:
		for _, seq := range tv.Sequences {
			p := Period(seq)
			if at.Before(p.Lo.V.(time.Time)) {
				break
			}
			if !p.Lo.V.(time.Time).After(at) && !at.After(p.Hi.V.(time.Time)) {
				return sequenceValueAt(seq, at)
			}
		}
		return basetype.Datum{}, false
	default:
		return basetype.Datum{}, false
	}
}

func sequenceValueAt(seq Temporal, at time.Time) (basetype.Datum, bool) {
	insts := seq.Instants
	n := len(insts)
	if at.Before(insts[0].T) || at.After(insts[n-1].T) {
		return basetype.Datum{}, false
	}
	if at.Equal(insts[0].T) {
		return insts[0].V, true
	}
	if at.Equal(insts[n-1].T) {
		return insts[n-1].V, true
	}
	i := sort.Search(n, func(i int) bool { return insts[i].T.After(at) })
	// insts[i-1].T < at < insts[i].T
	lo, hi := insts[i-1], insts[i]
	if seq.Interp != Linear {
		return lo.V, true
	}
	frac := at.Sub(lo.T).Seconds() / hi.T.Sub(lo.T).Seconds()
	v := lerp(lo.V, hi.V, frac)
	return v, true
}

// lerp is the base-type-specific affine interpolation of spec.md §4.5.
func lerp(a, b basetype.Datum, frac float64) basetype.Datum {
	switch a.Tag {
	case basetype.TagFloat8:
		av, bv := a.V.(float64), b.V.(float64)
		return basetype.Datum{Tag: basetype.TagFloat8, V: av + (bv-av)*frac}
	case basetype.TagGeom:
		ap, bp := a.V.(basetype.GeomPoint), b.V.(basetype.GeomPoint)
		out := basetype.GeomPoint{
			X:    ap.X + (bp.X-ap.X)*frac,
			Y:    ap.Y + (bp.Y-ap.Y)*frac,
			HasZ: ap.HasZ || bp.HasZ,
			SRID: ap.SRID,
		}
		if out.HasZ {
			out.Z = ap.Z + (bp.Z-ap.Z)*frac
		}
		return basetype.Datum{Tag: basetype.TagGeom, V: out}
	case basetype.TagGeog:
		ap, bp := a.V.(basetype.GeogPoint), b.V.(basetype.GeogPoint)
		out := basetype.GeogPoint{
			Lon:  ap.Lon + (bp.Lon-ap.Lon)*frac,
			Lat:  ap.Lat + (bp.Lat-ap.Lat)*frac,
			HasZ: ap.HasZ || bp.HasZ,
			SRID: ap.SRID,
		}
		if out.HasZ {
			out.Z = ap.Z + (bp.Z-ap.Z)*frac
		}
		return basetype.Datum{Tag: basetype.TagGeog, V: out}
	case basetype.TagNpoint:
		ap, bp := a.V.(basetype.NPoint), b.V.(basetype.NPoint)
		return basetype.Datum{Tag: basetype.TagNpoint, V: basetype.NPoint{RouteID: ap.RouteID, Pos: ap.Pos + (bp.Pos-ap.Pos)*frac}}
	default:
		// Non-continuous base reaching lerp is a construction-time bug
		// (NewSequence rejects linear over a non-continuous base).
		return a
	}
}

// crossingTime returns the timestamp t* in (t0, t1) at which the linear
// segment from (t0, v0) to (t1, v1) equals target, if any lies strictly
// inside the segment. Only defined for numeric bases.
func crossingTime(t0 time.Time, v0 float64, t1 time.Time, v1 float64, target float64) (time.Time, bool) {
	if v0 == v1 {
		return time.Time{}, false
	}
	frac := (target - v0) / (v1 - v0)
	if frac <= 0 || frac >= 1 {
		return time.Time{}, false
	}
	d := t1.Sub(t0)
	return t0.Add(time.Duration(float64(d) * frac)), true
}

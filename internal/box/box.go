// Package box implements the L2 bounding-box layer (spec.md §3.5, §4.4):
// TBox (numeric value × time) and STBox (xyz × time × SRID), both with
// per-dimension presence flags. Missing-dimension predicate contracts
// follow spec.md §9's Open Question resolution: project (ignore the
// dimension) for topological predicates, strict (false) for same/equal.
//
// Grounded on original_source/include/general/tbox.h and
// include/point/stbox.h.
package box

import (
	"math"
	"time"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/temperr"
)

// Flags is a presence bitmask, matching spec.md §3.5's X/Z/T/GEODETIC byte.
type Flags uint8

const (
	FlagX Flags = 1 << iota
	FlagZ
	FlagT
	FlagGeodetic
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// TBox is a numeric span × time-period box with optional dimensions; at
// least one of X or T must be present.
type TBox struct {
	Flags Flags
	X     span.Span // numeric span (int4span or floatspan); valid iff Flags&FlagX
	T     span.Span // period; valid iff Flags&FlagT
}

// MakeTBox validates that at least one dimension is present.
func MakeTBox(x *span.Span, t *span.Span) (TBox, error) {
	var b TBox
	if x == nil && t == nil {
		return TBox{}, temperr.Wrap(temperr.ErrInvariantViolated, "tbox: at least one of X or T must be present")
	}
	if x != nil {
		b.X = *x
		b.Flags |= FlagX
	}
	if t != nil {
		b.T = *t
		b.Flags |= FlagT
	}
	return b, nil
}

// STBox is an xyz × time × SRID box with optional dimensions and a
// geodetic flag.
type STBox struct {
	Flags    Flags
	SRID     int32
	XMin, YMin, XMax, YMax float64 // valid iff Flags&FlagX
	ZMin, ZMax             float64 // valid iff Flags&FlagZ
	T        span.Span // valid iff Flags&FlagT
}

func (b STBox) HasX() bool { return b.Flags.Has(FlagX) }
func (b STBox) HasZ() bool { return b.Flags.Has(FlagZ) }
func (b STBox) HasT() bool { return b.Flags.Has(FlagT) }
func (b STBox) Geodetic() bool { return b.Flags.Has(FlagGeodetic) }

func (b TBox) HasX() bool { return b.Flags.Has(FlagX) }
func (b TBox) HasT() bool { return b.Flags.Has(FlagT) }

// --- TBox operations ---

// dimContract controls how a predicate treats a dimension present on only
// one side: project ignores it (predicate succeeds vacuously for that
// dimension), strict fails the whole predicate.
type dimContract int

const (
	project dimContract = iota
	strict
)

// UnionTBox unions per dimension; a dimension present in only one operand
// passes through unchanged.
func UnionTBox(a, b TBox) (TBox, error) {
	var out TBox
	if a.HasX() || b.HasX() {
		x, err := unionOrPassSpan(a.HasX(), a.X, b.HasX(), b.X)
		if err != nil {
			return TBox{}, err
		}
		out.X = x
		out.Flags |= FlagX
	}
	if a.HasT() || b.HasT() {
		t, err := unionOrPassSpan(a.HasT(), a.T, b.HasT(), b.T)
		if err != nil {
			return TBox{}, err
		}
		out.T = t
		out.Flags |= FlagT
	}
	return out, nil
}

func unionOrPassSpan(aHas bool, a span.Span, bHas bool, b span.Span) (span.Span, error) {
	switch {
	case aHas && bHas:
		if span.Overlaps(a, b) || span.Adjacent(a, b) {
			return span.Union(a, b)
		}
		// Non-contiguous: box union still needs a single covering span,
		// so take the boundary-order envelope directly rather than
		// erroring (spec.md §4.4 "union unions per dimension").
		lo, loInc := envelopeLower(a, b)
		hi, hiInc := envelopeUpper(a, b)
		return span.Make(a.Base, lo, hi, loInc, hiInc)
	case aHas:
		return a, nil
	default:
		return b, nil
	}
}

func envelopeLower(a, b span.Span) (basetype.Datum, bool) {
	if span.CmpLower(a, b) <= 0 {
		return a.Lo, a.LoInc
	}
	return b.Lo, b.LoInc
}

func envelopeUpper(a, b span.Span) (basetype.Datum, bool) {
	if span.CmpUpper(a, b) >= 0 {
		return a.Hi, a.HiInc
	}
	return b.Hi, b.HiInc
}

// IntersectionTBox intersects per dimension; returns ok=false if any
// shared dimension fails to overlap.
func IntersectionTBox(a, b TBox) (TBox, bool) {
	var out TBox
	if a.HasX() && b.HasX() {
		x, ok := span.Intersection(a.X, b.X)
		if !ok {
			return TBox{}, false
		}
		out.X, out.Flags = x, out.Flags|FlagX
	} else if a.HasX() {
		out.X, out.Flags = a.X, out.Flags|FlagX
	} else if b.HasX() {
		out.X, out.Flags = b.X, out.Flags|FlagX
	}
	if a.HasT() && b.HasT() {
		tt, ok := span.Intersection(a.T, b.T)
		if !ok {
			return TBox{}, false
		}
		out.T, out.Flags = tt, out.Flags|FlagT
	} else if a.HasT() {
		out.T, out.Flags = a.T, out.Flags|FlagT
	} else if b.HasT() {
		out.T, out.Flags = b.T, out.Flags|FlagT
	}
	return out, true
}

// ExpandTBox grows dst to cover src (spec.md §4.4 "expand grows box2 to
// cover box1").
func ExpandTBox(src, dst TBox) (TBox, error) {
	return UnionTBox(src, dst)
}

// ShiftScaleT translates the T dimension by shift and/or scales its width
// by factor, keeping the lower bound anchored (spec.md §4.4
// "shift_tscale... keeping the lower bound anchored").
func ShiftScaleT(b TBox, shift time.Duration, factor float64) (TBox, error) {
	if !b.HasT() {
		return TBox{}, temperr.Wrap(temperr.ErrDimensionMissing, "tbox: shift_tscale requires T dimension")
	}
	lo := b.T.Lo.V.(time.Time).Add(shift)
	width := b.T.Hi.V.(time.Time).Sub(b.T.Lo.V.(time.Time))
	if factor != 1 {
		width = time.Duration(float64(width) * factor)
	}
	hi := lo.Add(width)
	t, err := span.Make(basetype.TagTimestamptz,
		basetype.Datum{Tag: basetype.TagTimestamptz, V: lo},
		basetype.Datum{Tag: basetype.TagTimestamptz, V: hi},
		b.T.LoInc, b.T.HiInc)
	if err != nil {
		return TBox{}, err
	}
	out := b
	out.T = t
	return out, nil
}

// ContainsTBox implements project semantics: only dimensions present in
// both boxes are checked; a dimension present in only one is ignored.
func ContainsTBox(a, b TBox) bool {
	if a.HasX() && b.HasX() && !span.Contains(a.X, b.X) {
		return false
	}
	if a.HasT() && b.HasT() && !span.Contains(a.T, b.T) {
		return false
	}
	return true
}

// OverlapsTBox implements project semantics.
func OverlapsTBox(a, b TBox) bool {
	checked := false
	if a.HasX() && b.HasX() {
		if !span.Overlaps(a.X, b.X) {
			return false
		}
		checked = true
	}
	if a.HasT() && b.HasT() {
		if !span.Overlaps(a.T, b.T) {
			return false
		}
		checked = true
	}
	return checked
}

// SameTBox implements strict semantics (spec.md §9): a dimension missing
// on either side makes same/equal false.
func SameTBox(a, b TBox) bool {
	if a.Flags != b.Flags {
		return false
	}
	if a.HasX() && !span.Eq(a.X, b.X) {
		return false
	}
	if a.HasT() && !span.Eq(a.T, b.T) {
		return false
	}
	return true
}

// LeftTBox / RightTBox / BeforeTBox / AfterTBox are the directional
// predicates over the X and T dimensions respectively, project semantics.
func LeftTBox(a, b TBox) bool {
	if !a.HasX() || !b.HasX() {
		return false
	}
	return span.Left(a.X, b.X)
}

func RightTBox(a, b TBox) bool {
	if !a.HasX() || !b.HasX() {
		return false
	}
	return span.Right(a.X, b.X)
}

func BeforeTBox(a, b TBox) bool {
	if !a.HasT() || !b.HasT() {
		return false
	}
	return span.Left(a.T, b.T)
}

func AfterTBox(a, b TBox) bool {
	if !a.HasT() || !b.HasT() {
		return false
	}
	return span.Right(a.T, b.T)
}

// AdjacentTBox is true if the boxes overlap in no dimension but touch in
// at least one shared dimension (project semantics on the rest).
func AdjacentTBox(a, b TBox) bool {
	touch := false
	if a.HasX() && b.HasX() {
		if span.Overlaps(a.X, b.X) {
			return false
		}
		if span.Adjacent(a.X, b.X) {
			touch = true
		}
	}
	if a.HasT() && b.HasT() {
		if span.Overlaps(a.T, b.T) {
			return false
		}
		if span.Adjacent(a.T, b.T) {
			touch = true
		}
	}
	return touch
}

// --- STBox operations ---

// MakeSTBox validates at least one dimension is present.
func MakeSTBox(hasXY bool, xmin, ymin, xmax, ymax float64, hasZ bool, zmin, zmax float64, t *span.Span, srid int32, geodetic bool) (STBox, error) {
	var b STBox
	if !hasXY && !hasZ && t == nil {
		return STBox{}, temperr.Wrap(temperr.ErrInvariantViolated, "stbox: at least one dimension must be present")
	}
	if hasXY {
		b.XMin, b.YMin, b.XMax, b.YMax = xmin, ymin, xmax, ymax
		b.Flags |= FlagX
	}
	if hasZ {
		b.ZMin, b.ZMax = zmin, zmax
		b.Flags |= FlagZ
	}
	if t != nil {
		b.T = *t
		b.Flags |= FlagT
	}
	b.SRID = srid
	if geodetic {
		b.Flags |= FlagGeodetic
	}
	return b, nil
}

func checkSRIDCompatible(a, b STBox) error {
	if a.HasX() && b.HasX() && a.SRID != b.SRID {
		return temperr.Wrap(temperr.ErrDomainMismatch, "stbox: SRID mismatch")
	}
	if a.Geodetic() != b.Geodetic() {
		return temperr.Wrap(temperr.ErrDomainMismatch, "stbox: mixing geodetic with non-geodetic")
	}
	return nil
}

// UnionSTBox unions per dimension (XY envelope, Z envelope, T union).
func UnionSTBox(a, b STBox) (STBox, error) {
	if err := checkSRIDCompatible(a, b); err != nil {
		return STBox{}, err
	}
	var out STBox
	out.SRID = a.SRID
	out.Flags |= a.Flags & FlagGeodetic
	if a.HasX() || b.HasX() {
		out.Flags |= FlagX
		out.XMin = minPresent(a.HasX(), a.XMin, b.HasX(), b.XMin, math.Min)
		out.YMin = minPresent(a.HasX(), a.YMin, b.HasX(), b.YMin, math.Min)
		out.XMax = minPresent(a.HasX(), a.XMax, b.HasX(), b.XMax, math.Max)
		out.YMax = minPresent(a.HasX(), a.YMax, b.HasX(), b.YMax, math.Max)
	}
	if a.HasZ() || b.HasZ() {
		out.Flags |= FlagZ
		out.ZMin = minPresent(a.HasZ(), a.ZMin, b.HasZ(), b.ZMin, math.Min)
		out.ZMax = minPresent(a.HasZ(), a.ZMax, b.HasZ(), b.ZMax, math.Max)
	}
	if a.HasT() || b.HasT() {
		t, err := unionOrPassSpan(a.HasT(), a.T, b.HasT(), b.T)
		if err != nil {
			return STBox{}, err
		}
		out.T = t
		out.Flags |= FlagT
	}
	return out, nil
}

func minPresent(aHas bool, aVal float64, bHas bool, bVal float64, pick func(x, y float64) float64) float64 {
	switch {
	case aHas && bHas:
		return pick(aVal, bVal)
	case aHas:
		return aVal
	default:
		return bVal
	}
}

// IntersectionSTBox intersects per dimension; ok=false if any shared
// dimension fails to overlap.
func IntersectionSTBox(a, b STBox) (STBox, bool) {
	if err := checkSRIDCompatible(a, b); err != nil {
		return STBox{}, false
	}
	var out STBox
	out.SRID = a.SRID
	out.Flags |= a.Flags & FlagGeodetic
	if a.HasX() && b.HasX() {
		xmin, ymin := math.Max(a.XMin, b.XMin), math.Max(a.YMin, b.YMin)
		xmax, ymax := math.Min(a.XMax, b.XMax), math.Min(a.YMax, b.YMax)
		if xmin > xmax || ymin > ymax {
			return STBox{}, false
		}
		out.XMin, out.YMin, out.XMax, out.YMax = xmin, ymin, xmax, ymax
		out.Flags |= FlagX
	} else if a.HasX() {
		out.XMin, out.YMin, out.XMax, out.YMax = a.XMin, a.YMin, a.XMax, a.YMax
		out.Flags |= FlagX
	} else if b.HasX() {
		out.XMin, out.YMin, out.XMax, out.YMax = b.XMin, b.YMin, b.XMax, b.YMax
		out.Flags |= FlagX
	}
	if a.HasZ() && b.HasZ() {
		zmin, zmax := math.Max(a.ZMin, b.ZMin), math.Min(a.ZMax, b.ZMax)
		if zmin > zmax {
			return STBox{}, false
		}
		out.ZMin, out.ZMax = zmin, zmax
		out.Flags |= FlagZ
	} else if a.HasZ() {
		out.ZMin, out.ZMax, out.Flags = a.ZMin, a.ZMax, out.Flags|FlagZ
	} else if b.HasZ() {
		out.ZMin, out.ZMax, out.Flags = b.ZMin, b.ZMax, out.Flags|FlagZ
	}
	if a.HasT() && b.HasT() {
		t, ok := span.Intersection(a.T, b.T)
		if !ok {
			return STBox{}, false
		}
		out.T, out.Flags = t, out.Flags|FlagT
	} else if a.HasT() {
		out.T, out.Flags = a.T, out.Flags|FlagT
	} else if b.HasT() {
		out.T, out.Flags = b.T, out.Flags|FlagT
	}
	return out, true
}

// ContainsSTBox: project semantics across XY, Z, T.
func ContainsSTBox(a, b STBox) bool {
	if a.HasX() && b.HasX() && !(a.XMin <= b.XMin && a.YMin <= b.YMin && a.XMax >= b.XMax && a.YMax >= b.YMax) {
		return false
	}
	if a.HasZ() && b.HasZ() && !(a.ZMin <= b.ZMin && a.ZMax >= b.ZMax) {
		return false
	}
	if a.HasT() && b.HasT() && !span.Contains(a.T, b.T) {
		return false
	}
	return true
}

// OverlapsSTBox: project semantics; at least one shared dimension must be
// checked and pass.
func OverlapsSTBox(a, b STBox) bool {
	checked := false
	if a.HasX() && b.HasX() {
		if a.XMax < b.XMin || b.XMax < a.XMin || a.YMax < b.YMin || b.YMax < a.YMin {
			return false
		}
		checked = true
	}
	if a.HasZ() && b.HasZ() {
		if a.ZMax < b.ZMin || b.ZMax < a.ZMin {
			return false
		}
		checked = true
	}
	if a.HasT() && b.HasT() {
		if !span.Overlaps(a.T, b.T) {
			return false
		}
		checked = true
	}
	return checked
}

// SameSTBox: strict semantics.
func SameSTBox(a, b STBox) bool {
	if a.Flags != b.Flags || a.SRID != b.SRID {
		return false
	}
	if a.HasX() && (a.XMin != b.XMin || a.YMin != b.YMin || a.XMax != b.XMax || a.YMax != b.YMax) {
		return false
	}
	if a.HasZ() && (a.ZMin != b.ZMin || a.ZMax != b.ZMax) {
		return false
	}
	if a.HasT() && !span.Eq(a.T, b.T) {
		return false
	}
	return true
}

// Directional predicates (spec.md §1): left/right/above/below/front/back
// and before/after for T, project semantics.
func LeftSTBox(a, b STBox) bool {
	if !a.HasX() || !b.HasX() {
		return false
	}
	return a.XMax < b.XMin
}

func RightSTBox(a, b STBox) bool {
	if !a.HasX() || !b.HasX() {
		return false
	}
	return a.XMin > b.XMax
}

func BelowSTBox(a, b STBox) bool {
	if !a.HasX() || !b.HasX() {
		return false
	}
	return a.YMax < b.YMin
}

func AboveSTBox(a, b STBox) bool {
	if !a.HasX() || !b.HasX() {
		return false
	}
	return a.YMin > b.YMax
}

func FrontSTBox(a, b STBox) bool {
	if !a.HasZ() || !b.HasZ() {
		return false
	}
	return a.ZMax < b.ZMin
}

func BackSTBox(a, b STBox) bool {
	if !a.HasZ() || !b.HasZ() {
		return false
	}
	return a.ZMin > b.ZMax
}

func BeforeSTBox(a, b STBox) bool {
	if !a.HasT() || !b.HasT() {
		return false
	}
	return span.Left(a.T, b.T)
}

func AfterSTBox(a, b STBox) bool {
	if !a.HasT() || !b.HasT() {
		return false
	}
	return span.Right(a.T, b.T)
}

// "Over" variants (non-strict): overleft etc. — a does not extend past b
// on the named side.
func OverLeftSTBox(a, b STBox) bool {
	if !a.HasX() || !b.HasX() {
		return false
	}
	return a.XMax <= b.XMax
}

func OverRightSTBox(a, b STBox) bool {
	if !a.HasX() || !b.HasX() {
		return false
	}
	return a.XMin >= b.XMin
}

func OverBelowSTBox(a, b STBox) bool {
	if !a.HasX() || !b.HasX() {
		return false
	}
	return a.YMax <= b.YMax
}

func OverAboveSTBox(a, b STBox) bool {
	if !a.HasX() || !b.HasX() {
		return false
	}
	return a.YMin >= b.YMin
}

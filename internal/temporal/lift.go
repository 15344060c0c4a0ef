package temporal

import (
	"github.com/banshee-data/temporalgeo/internal/basetype"
)

// LiftFunc is a scalar binary function lifted across synchronized
// temporals (spec.md §4.5 "Lifting"): arithmetic, comparison, min/max,
// distance. linearPreserving tells Lift whether f keeps a piecewise-linear
// result linear-representable (true for +,-,min,max; false for
// comparisons, which always collapse to Step/bool).
type LiftFunc struct {
	F                func(a, b basetype.Datum) (basetype.Datum, error)
	ResultBase       basetype.Tag
	LinearPreserving bool
}

// Lift synchronizes a and b (crossings inserted iff f is linear-preserving
// and both inputs are linear) then evaluates f at every common
// break-point, producing a temporal whose subtype is the coarser of the
// two inputs.
func Lift(f LiftFunc, a, b Temporal) (Temporal, error) {
	mode := SynchronizeNoCross
	if f.LinearPreserving {
		mode = SynchronizeCross
	}
	sa, sb, err := Synchronize(a, b, mode)
	if err != nil {
		return Temporal{}, err
	}
	resultInterp := Step
	if f.LinearPreserving && sa.Interp == Linear && sb.Interp == Linear {
		resultInterp = Linear
	}
	insA, insB := AllInstants(sa), AllInstants(sb)
	insts := make([]Inst, 0, len(insA))
	for i := range insA {
		v, err := f.F(insA[i].V, insB[i].V)
		if err != nil {
			return Temporal{}, err
		}
		insts = append(insts, Inst{T: insA[i].T, V: v})
	}
	subtype := coarserSubtype(sa.Subtype, sb.Subtype)
	return buildBySubtype(subtype, f.ResultBase, insts, sa, resultInterp)
}

// coarserSubtype ranks subtypes Instant < InstantSet < Sequence <
// SequenceSet and returns the higher-ranked one, matching the MEOS
// convention that lifting a continuous sequence with a discrete
// instant-set still yields at least an instant-set result.
func coarserSubtype(a, b Subtype) Subtype {
	rank := func(s Subtype) int {
		switch s {
		case Instant:
			return 0
		case InstantSet:
			return 1
		case Sequence:
			return 2
		case SequenceSet:
			return 3
		default:
			return -1
		}
	}
	if rank(a) >= rank(b) {
		return a
	}
	return b
}

func buildBySubtype(subtype Subtype, base basetype.Tag, insts []Inst, shape Temporal, interp Interpolation) (Temporal, error) {
	switch subtype {
	case Instant:
		return NewInstant(base, insts[0].T, insts[0].V)
	case InstantSet:
		return NewInstantSet(base, insts)
	case Sequence:
		return NewSequence(base, insts, shape.LowerInc, shape.UpperInc, interp == Linear)
	case SequenceSet:
		// Re-chunk the flat instant list along shape's sequence
		// boundaries (shape.Sequences gives the period structure after
		// synchronization).
		var seqs []Temporal
		idx := 0
		for _, shapeSeq := range shape.Sequences {
			n := len(shapeSeq.Instants)
			chunk := insts[idx : idx+n]
			idx += n
			s, err := NewSequence(base, chunk, shapeSeq.LowerInc, shapeSeq.UpperInc, interp == Linear)
			if err != nil {
				return Temporal{}, err
			}
			seqs = append(seqs, s)
		}
		return NewSequenceSet(base, seqs)
	default:
		return NewInstantSet(base, insts)
	}
}

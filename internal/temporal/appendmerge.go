package temporal

import (
	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/temperr"
)

// AppendOptions carries the optional maxdist/maxt gap thresholds of
// spec.md §4.5's append_instant. A zero value for either means
// "unbounded" (no gap ever forces a new sequence).
type AppendOptions struct {
	MaxDist float64 // 0 means unbounded
	MaxT    float64 // seconds; 0 means unbounded
}

// AppendInstant extends tv with a new instant whose timestamp must be
// strictly after tv's last timestamp. If the gap (distance or time delta)
// from the last instant exceeds the configured threshold, the appended
// instant starts a new sequence and the result becomes (or stays) a
// sequence-set, with the previous sequence closed — the mechanism
// spec.md §4.6 attributes to the streaming aggregator for building
// trajectories.
func AppendInstant(tv Temporal, inst Inst, opts AppendOptions) (Temporal, error) {
	if inst.V.Tag != tv.Base {
		return Temporal{}, temperr.Wrap(temperr.ErrDomainMismatch, "temporal: append instant base mismatch")
	}
	last := lastInstant(tv)
	if !inst.T.After(last.T) {
		return Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "temporal: append requires t > last instant's timestamp")
	}
	gapExceeded := exceedsGap(tv.Base, last, inst, opts)

	switch tv.Subtype {
	case Instant:
		seq, err := NewSequence(tv.Base, []Inst{tv.Instants[0]}, true, true, false)
		if err != nil {
			return Temporal{}, err
		}
		return AppendInstant(seq, inst, opts)
	case InstantSet:
		insts := append(append([]Inst(nil), tv.Instants...), inst)
		return NewInstantSet(tv.Base, insts)
	case Sequence:
		if gapExceeded {
			closed, err := NewSequence(tv.Base, tv.Instants, tv.LowerInc, true, tv.Interp == Linear)
			if err != nil {
				return Temporal{}, err
			}
			next, err := NewSequence(tv.Base, []Inst{inst}, true, true, tv.Interp == Linear)
			if err != nil {
				return Temporal{}, err
			}
			return NewSequenceSet(tv.Base, []Temporal{closed, next})
		}
		insts := append(append([]Inst(nil), tv.Instants...), inst)
		return NewSequence(tv.Base, insts, tv.LowerInc, true, tv.Interp == Linear)
	case SequenceSet:
		lastSeq := tv.Sequences[len(tv.Sequences)-1]
		if gapExceeded {
			next, err := NewSequence(tv.Base, []Inst{inst}, true, true, tv.Interp == Linear)
			if err != nil {
				return Temporal{}, err
			}
			seqs := append(append([]Temporal(nil), tv.Sequences...), next)
			return NewSequenceSet(tv.Base, seqs)
		}
		extended, err := NewSequence(tv.Base, append(append([]Inst(nil), lastSeq.Instants...), inst), lastSeq.LowerInc, true, lastSeq.Interp == Linear)
		if err != nil {
			return Temporal{}, err
		}
		seqs := append(append([]Temporal(nil), tv.Sequences[:len(tv.Sequences)-1]...), extended)
		return NewSequenceSet(tv.Base, seqs)
	default:
		return Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "temporal: unknown subtype for append")
	}
}

func lastInstant(tv Temporal) Inst {
	insts := AllInstants(tv)
	return insts[len(insts)-1]
}

func exceedsGap(base basetype.Tag, last, next Inst, opts AppendOptions) bool {
	if opts.MaxT > 0 && next.T.Sub(last.T).Seconds() > opts.MaxT {
		return true
	}
	if opts.MaxDist > 0 {
		desc := basetype.Get(base)
		if desc.Distance(last.V, next.V) > opts.MaxDist {
			return true
		}
	}
	return false
}

// Merge interleaves T1 and T2 by timestamp (spec.md §4.5). At shared
// timestamps the two values must be equal, or Merge fails.
func Merge(a, b Temporal) (Temporal, error) {
	if a.Base != b.Base {
		return Temporal{}, temperr.Wrap(temperr.ErrDomainMismatch, "temporal: merge base mismatch")
	}
	desc := basetype.Get(a.Base)
	ia, ib := AllInstants(a), AllInstants(b)
	merged := make([]Inst, 0, len(ia)+len(ib))
	i, j := 0, 0
	for i < len(ia) && j < len(ib) {
		switch {
		case ia[i].T.Before(ib[j].T):
			merged = append(merged, ia[i])
			i++
		case ib[j].T.Before(ia[i].T):
			merged = append(merged, ib[j])
			j++
		default:
			if !desc.Eq(ia[i].V, ib[j].V) {
				return Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "temporal: merge conflict at shared timestamp")
			}
			merged = append(merged, ia[i])
			i++
			j++
		}
	}
	merged = append(merged, ia[i:]...)
	merged = append(merged, ib[j:]...)

	// A merge of two sequences whose periods are contiguous (overlapping
	// or adjacent) and share interpolation stays a single sequence;
	// otherwise the safest uniform result is a discrete instant-set,
	// matching spec.md §3.6's "instant-set... interpolation is discrete"
	// fallback for values with no shared continuous structure.
	if a.Subtype == Sequence && b.Subtype == Sequence && a.Interp == b.Interp {
		if lo, hi, ok := mergedSequenceBounds(a, b); ok {
			return NewSequence(a.Base, merged, lo, hi, a.Interp == Linear)
		}
	}
	return NewInstantSet(a.Base, merged)
}

func mergedSequenceBounds(a, b Temporal) (lowerInc, upperInc bool, ok bool) {
	pa, pb := Period(a), Period(b)
	if !span.Overlaps(pa, pb) && !span.Adjacent(pa, pb) {
		return false, false, false
	}
	first, second := a, b
	if span.CmpLower(pb, pa) < 0 {
		first, second = b, a
	}
	return first.LowerInc, second.UpperInc, true
}

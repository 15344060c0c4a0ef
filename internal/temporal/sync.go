package temporal

import (
	"time"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/temperr"
)

// SyncMode controls whether crossing times are inserted during
// synchronization (spec.md §4.5 "Synchronization of two temporals").
type SyncMode uint8

const (
	SynchronizeNoCross SyncMode = iota
	SynchronizeCross
)

// Synchronize re-expresses a and b on a common set of break-points: the
// union of their instant timestamps restricted to the intersection of
// their periods, plus (when mode is SynchronizeCross and both are
// linear) the crossing times of their trajectories. Per spec.md §9's
// Open Question resolution, SynchronizeCross behaves like
// SynchronizeNoCross whenever either input is step or discrete.
func Synchronize(a, b Temporal, mode SyncMode) (Temporal, Temporal, error) {
	pa, pb := Period(a), Period(b)
	inter, ok := span.Intersection(pa, pb)
	if !ok {
		return Temporal{}, Temporal{}, temperr.Wrap(temperr.ErrDomainMismatch, "temporal: synchronizing temporals with disjoint periods")
	}
	ra, okA := AtPeriod(a, inter)
	rb, okB := AtPeriod(b, inter)
	if !okA || !okB {
		return Temporal{}, Temporal{}, temperr.Wrap(temperr.ErrDomainMismatch, "temporal: synchronization produced an empty restriction")
	}
	breaks := unionTimestamps(ra, rb)
	effectiveMode := mode
	if effectiveMode == SynchronizeCross && (ra.Interp != Linear || rb.Interp != Linear) {
		effectiveMode = SynchronizeNoCross
	}
	if effectiveMode == SynchronizeCross {
		breaks = append(breaks, crossingBreaks(ra, rb)...)
		breaks = dedupSortTimes(breaks)
	}
	sa, err := reexpressOn(ra, breaks)
	if err != nil {
		return Temporal{}, Temporal{}, err
	}
	sb, err := reexpressOn(rb, breaks)
	if err != nil {
		return Temporal{}, Temporal{}, err
	}
	return sa, sb, nil
}

func unionTimestamps(a, b Temporal) []time.Time {
	var ts []time.Time
	for _, i := range AllInstants(a) {
		ts = append(ts, i.T)
	}
	for _, i := range AllInstants(b) {
		ts = append(ts, i.T)
	}
	return dedupSortTimes(ts)
}

func dedupSortTimes(ts []time.Time) []time.Time {
	if len(ts) == 0 {
		return nil
	}
	sorted := append([]time.Time(nil), ts...)
	for i := 1; i < len(sorted); i++ {
		j := i
		for j > 0 && sorted[j-1].After(sorted[j]) {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
			j--
		}
	}
	out := sorted[:1]
	for _, t := range sorted[1:] {
		if !t.Equal(out[len(out)-1]) {
			out = append(out, t)
		}
	}
	return out
}

// crossingBreaks finds every timestamp at which a's and b's linear
// trajectories cross, restricted to numeric bases (spec.md §4.5: "insert
// the crossing-time of the two trajectories so that the result is
// piecewise-monotone").
func crossingBreaks(a, b Temporal) []time.Time {
	if !basetype.Get(a.Base).IsNumber {
		return nil
	}
	ia, ib := AllInstants(a), AllInstants(b)
	if len(ia) < 2 || len(ib) < 2 {
		return nil
	}
	var out []time.Time
	i, j := 0, 0
	for i+1 < len(ia) && j+1 < len(ib) {
		segA0, segA1 := ia[i], ia[i+1]
		segB0, segB1 := ib[j], ib[j+1]
		lo, hi := maxTime(segA0.T, segB0.T), minTime(segA1.T, segB1.T)
		if lo.Before(hi) {
			va0 := valueAtLinear(segA0, segA1, lo)
			vb0 := valueAtLinear(segB0, segB1, lo)
			va1 := valueAtLinear(segA0, segA1, hi)
			vb1 := valueAtLinear(segB0, segB1, hi)
			if ct, ok := crossingTimeInRange(lo, va0-vb0, hi, va1-vb1); ok {
				out = append(out, ct)
			}
		}
		if segA1.T.Before(segB1.T) {
			i++
		} else {
			j++
		}
	}
	return out
}

func valueAtLinear(a, b Inst, at time.Time) float64 {
	if a.T.Equal(b.T) {
		return a.V.V.(float64)
	}
	frac := at.Sub(a.T).Seconds() / b.T.Sub(a.T).Seconds()
	av, bv := a.V.V.(float64), b.V.V.(float64)
	return av + (bv-av)*frac
}

// crossingTimeInRange finds where the linear function from (t0, d0) to
// (t1, d1) equals zero, if strictly inside (t0, t1).
func crossingTimeInRange(t0 time.Time, d0 float64, t1 time.Time, d1 float64) (time.Time, bool) {
	if d0 == d1 || (d0 > 0) == (d1 > 0) {
		return time.Time{}, false
	}
	frac := -d0 / (d1 - d0)
	if frac <= 0 || frac >= 1 {
		return time.Time{}, false
	}
	dur := t1.Sub(t0)
	return t0.Add(time.Duration(float64(dur) * frac)), true
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// reexpressOn rebuilds tv so it has an instant at every timestamp in
// breaks that falls inside its period, interpolating for linear
// sequences and holding the last value for step.
func reexpressOn(tv Temporal, breaks []time.Time) (Temporal, error) {
	switch tv.Subtype {
	case Instant, InstantSet:
		return tv, nil
	case Sequence:
		return reexpressSequence(tv, breaks)
	case SequenceSet:
		var seqs []Temporal
		for _, seq := range tv.Sequences {
			var inRange []time.Time
			p := Period(seq)
			for _, t := range breaks {
				if span.ContainsValue(p, tsDatum(t)) {
					inRange = append(inRange, t)
				}
			}
			r, err := reexpressSequence(seq, inRange)
			if err != nil {
				return Temporal{}, err
			}
			seqs = append(seqs, r)
		}
		out, err := NewSequenceSet(tv.Base, seqs)
		return out, err
	default:
		return tv, nil
	}
}

func reexpressSequence(seq Temporal, breaks []time.Time) (Temporal, error) {
	p := Period(seq)
	var newInsts []Inst
	bi := 0
	for i, inst := range seq.Instants {
		for bi < len(breaks) && breaks[bi].Before(inst.T) {
			if span.ContainsValue(p, tsDatum(breaks[bi])) {
				if v, ok := sequenceValueAt(seq, breaks[bi]); ok {
					newInsts = append(newInsts, Inst{T: breaks[bi], V: v})
				}
			}
			bi++
		}
		newInsts = append(newInsts, inst)
		if bi < len(breaks) && breaks[bi].Equal(inst.T) {
			bi++
		}
		_ = i
	}
	for bi < len(breaks) {
		if span.ContainsValue(p, tsDatum(breaks[bi])) {
			if v, ok := sequenceValueAt(seq, breaks[bi]); ok {
				newInsts = append(newInsts, Inst{T: breaks[bi], V: v})
			}
		}
		bi++
	}
	newInsts = dedupInstsByTime(newInsts)
	return NewSequence(seq.Base, newInsts, seq.LowerInc, seq.UpperInc, seq.Interp == Linear)
}

func dedupInstsByTime(insts []Inst) []Inst {
	if len(insts) == 0 {
		return insts
	}
	out := insts[:1]
	for _, inst := range insts[1:] {
		if !inst.T.Equal(out[len(out)-1].T) {
			out = append(out, inst)
		}
	}
	return out
}

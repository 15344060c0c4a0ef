package agg

import (
	"time"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/diag"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/temperr"
	"github.com/banshee-data/temporalgeo/internal/temporal"

	"github.com/google/uuid"
)

// FoldFunc is the commutative, associative scalar folding function
// spec.md §4.6's transfn/combinefn thread through pointwise combination
// (e.g. +, min, max, boolean and/or). ResultBase is the base type of the
// folded value (may differ from the input base, as with tCount promoting
// every input to tint).
type FoldFunc struct {
	F          func(a, b basetype.Datum) (basetype.Datum, error)
	ResultBase basetype.Tag
	Crossings  bool
}

// State is the aggregator's transition state: a skiplist of instant or
// sequence chunks plus the fold function in effect and a session id
// (spec.md §4.6, grounded on the teacher's uuid-tagged track identity in
// l5tracks/tracker.go, repurposed here to correlate partial states
// combined out of order).
type State struct {
	Base      basetype.Tag
	Fold      FoldFunc
	Skiplist  *SkipList
	SessionID uuid.UUID
}

// NewState creates an empty aggregation state for base with fold.
func NewState(base basetype.Tag, fold FoldFunc) *State {
	return &State{
		Base:      base,
		Fold:      fold,
		Skiplist:  NewSkipList(time.Now().UnixNano()),
		SessionID: uuid.New(),
	}
}

// Transfn is spec.md §4.6's tagg_transfn: folds a new temporal input T
// into state.
func Transfn(state *State, t temporal.Temporal) error {
	chunks := decompose(t)
	if state.Skiplist.Len() == 0 {
		for _, c := range chunks {
			state.Skiplist.Insert(temporal.Period(c).Lo.V.(time.Time), c)
		}
		return nil
	}
	for _, c := range chunks {
		if err := transitionChunk(state, c); err != nil {
			return err
		}
	}
	return nil
}

// decompose splits t into the atomic chunks the skiplist stores: each
// instant becomes its own chunk for Instant/InstantSet inputs; each
// sequence becomes its own chunk for Sequence/SequenceSet inputs
// (spec.md §4.6 step 1: "seed it with the normalized contents of T: each
// instant or sequence becomes one node").
func decompose(t temporal.Temporal) []temporal.Temporal {
	switch t.Subtype {
	case temporal.Instant:
		return []temporal.Temporal{t}
	case temporal.InstantSet:
		var out []temporal.Temporal
		for _, inst := range t.Instants {
			c, err := temporal.NewInstant(t.Base, inst.T, inst.V)
			if err == nil {
				out = append(out, c)
			}
		}
		return out
	case temporal.Sequence:
		return []temporal.Temporal{t}
	case temporal.SequenceSet:
		return append([]temporal.Temporal(nil), t.Sequences...)
	default:
		return nil
	}
}

func transitionChunk(state *State, chunk temporal.Temporal) error {
	p := temporal.Period(chunk)
	overlapping := state.Skiplist.OverlappingRange(p)
	if len(overlapping) == 0 {
		state.Skiplist.Insert(p.Lo.V.(time.Time), chunk)
		return nil
	}
	combined := overlapping[0]
	var err error
	for _, o := range overlapping[1:] {
		combined, err = temporal.Merge(combined, o)
		if err != nil {
			return err
		}
	}
	result, err := combineChunks(combined, chunk, state.Fold)
	if err != nil {
		return err
	}
	state.Skiplist.Splice(temporal.Period(combined), &result)
	// Splice only removed nodes overlapping combined's own period; the
	// incoming chunk's period may extend beyond it, so remove any
	// further overlap left behind and re-merge.
	again := state.Skiplist.OverlappingRange(temporal.Period(result))
	if len(again) > 1 {
		for _, o := range again {
			if span.Eq(temporal.Period(o), temporal.Period(result)) {
				continue
			}
			result, err = temporal.Merge(result, o)
			if err != nil {
				return err
			}
		}
		state.Skiplist.Splice(temporal.Period(result), &result)
	}
	return nil
}

// combineChunks pointwise-folds a and b across their overlap, preserving
// the non-overlapping fringes of each verbatim (spec.md §4.6).
func combineChunks(a, b temporal.Temporal, fold FoldFunc) (temporal.Temporal, error) {
	pa, pb := temporal.Period(a), temporal.Period(b)
	if !span.Overlaps(pa, pb) {
		return temporal.Merge(a, b)
	}
	inter, ok := span.Intersection(pa, pb)
	if !ok {
		return temporal.Merge(a, b)
	}
	middle, err := temporal.Lift(temporal.LiftFunc{
		F:                fold.F,
		ResultBase:       fold.ResultBase,
		LinearPreserving: fold.Crossings,
	}, a, b)
	if err != nil {
		return temporal.Temporal{}, err
	}
	pieces := []temporal.Temporal{middle}
	if fringeA, ok := temporal.MinusPeriod(a, inter); ok {
		pieces = append(pieces, fringeA)
	}
	if fringeB, ok := temporal.MinusPeriod(b, inter); ok {
		pieces = append(pieces, fringeB)
	}
	result := pieces[0]
	for _, piece := range pieces[1:] {
		result, err = temporal.Merge(result, piece)
		if err != nil {
			return temporal.Temporal{}, err
		}
	}
	return result, nil
}

// Combinefn is spec.md §4.6's tagg_combinefn: returns a new state holding
// the chunks of both, folding the smaller state into the larger so the result is
// independent of how work was partitioned across workers.
func Combinefn(s1, s2 *State) (*State, error) {
	small, large := s1, s2
	if s1.Skiplist.Len() > s2.Skiplist.Len() {
		small, large = s2, s1
	}
	diag.Logf("agg: combining session %s (%d chunks) into %s (%d chunks)",
		small.SessionID, small.Skiplist.Len(), large.SessionID, large.Skiplist.Len())
	out := &State{Base: large.Base, Fold: large.Fold, Skiplist: large.Skiplist.Clone(), SessionID: large.SessionID}
	for _, chunk := range small.Skiplist.All() {
		if err := transitionChunk(out, chunk); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Finalfn materializes the skiplist into a fresh temporal value of the
// correct subtype and "frees" the state (spec.md §4.6). Chunks are
// merged in ascending order; the subtype of the result reflects what the
// chunks turn out to be (a single Sequence when every chunk merges
// contiguously, else an InstantSet per temporal.Merge's own fallback
// rule).
func Finalfn(state *State) (temporal.Temporal, error) {
	chunks := state.Skiplist.All()
	if len(chunks) == 0 {
		return temporal.Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "agg: cannot finalize an empty aggregation state")
	}
	result := chunks[0]
	var err error
	for _, c := range chunks[1:] {
		result, err = temporal.Merge(result, c)
		if err != nil {
			return temporal.Temporal{}, err
		}
	}
	return result, nil
}

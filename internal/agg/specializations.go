package agg

import (
	"math"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/temperr"
	"github.com/banshee-data/temporalgeo/internal/temporal"
)

// tCountFold promotes every input to int4 1 and sums, giving tCount
// (spec.md §4.6: "tcount folds every instant to 1 and sums").
func tCountFold(a, b basetype.Datum) (basetype.Datum, error) {
	return basetype.Datum{Tag: basetype.TagInt4, V: a.V.(int32) + b.V.(int32)}, nil
}

// TCount computes the running count aggregate for base, using tCountFold
// as the transition/combine fold. Every input instant is first remapped
// to the constant 1 before folding.
func TCount(base basetype.Tag) *State {
	return NewState(basetype.TagInt4, FoldFunc{F: tCountFold, ResultBase: basetype.TagInt4, Crossings: false})
}

// TCountTransfn folds t into state after remapping every value to 1.
func TCountTransfn(state *State, t temporal.Temporal) error {
	ones, err := remapToOne(t)
	if err != nil {
		return err
	}
	return Transfn(state, ones)
}

func remapToOne(t temporal.Temporal) (temporal.Temporal, error) {
	one := basetype.Datum{Tag: basetype.TagInt4, V: int32(1)}
	insts := temporal.AllInstants(t)
	remapped := make([]temporal.Inst, len(insts))
	for i, in := range insts {
		remapped[i] = temporal.Inst{T: in.T, V: one}
	}
	switch t.Subtype {
	case temporal.Instant:
		return temporal.NewInstant(basetype.TagInt4, remapped[0].T, remapped[0].V)
	case temporal.InstantSet:
		return temporal.NewInstantSet(basetype.TagInt4, remapped)
	case temporal.Sequence:
		return temporal.NewSequence(basetype.TagInt4, remapped, t.LowerInc, t.UpperInc, false)
	case temporal.SequenceSet:
		var seqs []temporal.Temporal
		idx := 0
		for _, s := range t.Sequences {
			n := len(s.Instants)
			seq, err := temporal.NewSequence(basetype.TagInt4, remapped[idx:idx+n], s.LowerInc, s.UpperInc, false)
			if err != nil {
				return temporal.Temporal{}, err
			}
			seqs = append(seqs, seq)
			idx += n
		}
		return temporal.NewSequenceSet(basetype.TagInt4, seqs)
	default:
		return temporal.Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "agg: tcount remap of unknown subtype")
	}
}

func numericFoldMin(a, b basetype.Datum) (basetype.Datum, error) {
	return foldNumeric(a, b, math.Min)
}

func numericFoldMax(a, b basetype.Datum) (basetype.Datum, error) {
	return foldNumeric(a, b, math.Max)
}

func numericFoldSum(a, b basetype.Datum) (basetype.Datum, error) {
	return foldNumeric(a, b, func(x, y float64) float64 { return x + y })
}

func foldNumeric(a, b basetype.Datum, f func(x, y float64) float64) (basetype.Datum, error) {
	if a.Tag != basetype.TagFloat8 || b.Tag != basetype.TagFloat8 {
		return basetype.Datum{}, temperr.Wrap(temperr.ErrDomainMismatch, "agg: numeric fold requires float8 base")
	}
	return basetype.Datum{Tag: basetype.TagFloat8, V: f(a.V.(float64), b.V.(float64))}, nil
}

// TMin returns an empty aggregation state for the running minimum of a
// tfloat stream. min/max are linear-preserving (spec.md §4.6: crossings
// of the fold result track the crossing of the inputs for piecewise-linear
// min/max).
func TMin() *State {
	return NewState(basetype.TagFloat8, FoldFunc{F: numericFoldMin, ResultBase: basetype.TagFloat8, Crossings: true})
}

// TMax returns an empty aggregation state for the running maximum.
func TMax() *State {
	return NewState(basetype.TagFloat8, FoldFunc{F: numericFoldMax, ResultBase: basetype.TagFloat8, Crossings: true})
}

// TSum returns an empty aggregation state for the running sum.
func TSum() *State {
	return NewState(basetype.TagFloat8, FoldFunc{F: numericFoldSum, ResultBase: basetype.TagFloat8, Crossings: true})
}

func boolFoldAnd(a, b basetype.Datum) (basetype.Datum, error) {
	return foldBool(a, b, func(x, y bool) bool { return x && y })
}

func boolFoldOr(a, b basetype.Datum) (basetype.Datum, error) {
	return foldBool(a, b, func(x, y bool) bool { return x || y })
}

func foldBool(a, b basetype.Datum, f func(x, y bool) bool) (basetype.Datum, error) {
	if a.Tag != basetype.TagBool || b.Tag != basetype.TagBool {
		return basetype.Datum{}, temperr.Wrap(temperr.ErrDomainMismatch, "agg: boolean fold requires bool base")
	}
	return basetype.Datum{Tag: basetype.TagBool, V: f(a.V.(bool), b.V.(bool))}, nil
}

// TAnd returns an empty aggregation state for the running logical AND of
// a tbool stream. Bool folds are never linear-preserving: a step function
// is the only representable shape for a boolean temporal.
func TAnd() *State {
	return NewState(basetype.TagBool, FoldFunc{F: boolFoldAnd, ResultBase: basetype.TagBool, Crossings: false})
}

// TOr returns an empty aggregation state for the running logical OR.
func TOr() *State {
	return NewState(basetype.TagBool, FoldFunc{F: boolFoldOr, ResultBase: basetype.TagBool, Crossings: false})
}

// TAvgState wraps a *State whose skiplist nodes hold the running sum
// only, as plain tfloat chunks. It carries no per-timestamp count: the
// acc field is never written or read, and TAvgFinal takes the count from
// a separate TCount state and divides pointwise.
type TAvgState struct {
	inner *State
	acc   map[string]double2
}

// NewTAvg creates an empty running-sum aggregation state for a tfloat
// stream; the average itself is produced by TAvgFinal together with a
// TCount state over the same stream.
func NewTAvg() *TAvgState {
	return &TAvgState{
		inner: NewState(basetype.TagFloat8, FoldFunc{F: tavgFold, ResultBase: basetype.TagFloat8, Crossings: true}),
	}
}

// tavgFold treats each folded datum as already being a partial sum
// (TAvgTransfn pre-divides nothing; the running value folded here is the
// plain value, and the final division by the instant count happens in
// TAvgFinal via the separate TCount state passed to it).
func tavgFold(a, b basetype.Datum) (basetype.Datum, error) {
	return foldNumeric(a, b, func(x, y float64) float64 { return x + y })
}

// TAvgTransfn folds t (a tfloat) into the running sum state. It records
// no counts; feed the same stream to a TCount state for TAvgFinal.
func (s *TAvgState) Transfn(t temporal.Temporal) error {
	return Transfn(s.inner, t)
}

// TAvgCombine merges two partial running-average states.
func TAvgCombine(a, b *TAvgState) (*TAvgState, error) {
	merged, err := Combinefn(a.inner, b.inner)
	if err != nil {
		return nil, err
	}
	return &TAvgState{inner: merged}, nil
}

// TAvgFinal materializes the running sum as a temporal value. Division
// into a true running average additionally requires a parallel TCount
// state over the same stream, combined here pointwise via Lift.
func TAvgFinal(sum *TAvgState, count *State) (temporal.Temporal, error) {
	sumT, err := Finalfn(sum.inner)
	if err != nil {
		return temporal.Temporal{}, err
	}
	countT, err := Finalfn(count)
	if err != nil {
		return temporal.Temporal{}, err
	}
	countFloat, err := toFloatBase(countT)
	if err != nil {
		return temporal.Temporal{}, err
	}
	return temporal.Lift(temporal.LiftFunc{
		F:                divideNumeric,
		ResultBase:       basetype.TagFloat8,
		LinearPreserving: true,
	}, sumT, countFloat)
}

func toFloatBase(t temporal.Temporal) (temporal.Temporal, error) {
	insts := temporal.AllInstants(t)
	remapped := make([]temporal.Inst, len(insts))
	for i, in := range insts {
		var f float64
		switch v := in.V.V.(type) {
		case int32:
			f = float64(v)
		case float64:
			f = v
		default:
			return temporal.Temporal{}, temperr.Wrap(temperr.ErrDomainMismatch, "agg: cannot coerce to float8")
		}
		remapped[i] = temporal.Inst{T: in.T, V: basetype.Datum{Tag: basetype.TagFloat8, V: f}}
	}
	return temporal.NewInstantSet(basetype.TagFloat8, remapped)
}

func divideNumeric(a, b basetype.Datum) (basetype.Datum, error) {
	denom := b.V.(float64)
	if denom == 0 {
		return basetype.Datum{}, temperr.Wrap(temperr.ErrArithmetic, "agg: tavg division by zero count")
	}
	return basetype.Datum{Tag: basetype.TagFloat8, V: a.V.(float64) / denom}, nil
}

// AppTInstTransfn implements spec.md §4.6's app_tinst_transfn: an
// append-only aggregate that grows a single trajectory by appending each
// incoming instant, splitting into a new sequence whenever opts' gap
// thresholds are exceeded. Unlike TCount/TSum/etc. this aggregate has no
// combinefn — it is inherently sequential, grounded on
// original_source's tfunc no-parallel-safe append aggregates.
type AppTInstTransfn struct {
	Opts    AppendOptions
	current temporal.Temporal
	started bool
}

// Step appends one instant to the trajectory being built.
func (a *AppTInstTransfn) Step(inst temporal.Inst) error {
	if !a.started {
		seq, err := temporal.NewInstant(inst.V.Tag, inst.T, inst.V)
		if err != nil {
			return err
		}
		a.current = seq
		a.started = true
		return nil
	}
	next, err := temporal.AppendInstant(a.current, inst, a.Opts)
	if err != nil {
		return err
	}
	a.current = next
	return nil
}

// Final returns the accumulated trajectory.
func (a *AppTInstTransfn) Final() (temporal.Temporal, error) {
	if !a.started {
		return temporal.Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "agg: app_tinst_transfn finalized with no instants")
	}
	return a.current, nil
}

// AppTSeqTransfn implements app_tseq_transfn: identical to
// AppTInstTransfn but seeded from, and extended by, whole sequences
// rather than single instants — used when the upstream producer already
// emits sequence-sized chunks (e.g. one sequence per GPS fix batch).
type AppTSeqTransfn struct {
	Opts    AppendOptions
	current temporal.Temporal
	started bool
}

// Step appends every instant of seq in order.
func (a *AppTSeqTransfn) Step(seq temporal.Temporal) error {
	for _, inst := range temporal.AllInstants(seq) {
		if !a.started {
			first, err := temporal.NewInstant(inst.V.Tag, inst.T, inst.V)
			if err != nil {
				return err
			}
			a.current = first
			a.started = true
			continue
		}
		next, err := temporal.AppendInstant(a.current, inst, a.Opts)
		if err != nil {
			return err
		}
		a.current = next
	}
	return nil
}

// Final returns the accumulated trajectory.
func (a *AppTSeqTransfn) Final() (temporal.Temporal, error) {
	if !a.started {
		return temporal.Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "agg: app_tseq_transfn finalized with no sequences")
	}
	return a.current, nil
}

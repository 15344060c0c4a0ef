package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/engconfig"
	"github.com/banshee-data/temporalgeo/internal/temperr"
	"github.com/banshee-data/temporalgeo/internal/temporal"
)

// Config holds the tuning values the zero-value epsilon sentinel below
// resolves to. Defaults to the engine's hardcoded values; callers that
// load a tuning document should install it with SetConfig.
var Config = engconfig.Empty()

// SetConfig installs the tuning document the simplifiers read. Passing
// nil resets it to the engine defaults.
func SetConfig(cfg *engconfig.EngineConfig) {
	if cfg == nil {
		cfg = engconfig.Empty()
	}
	Config = cfg
}

// SimplifyMinDist keeps the first instant of a sequence, then keeps any
// instant whose distance to the last kept instant exceeds eps, and
// always keeps the last.
func SimplifyMinDist(seq temporal.Temporal, eps float64) (temporal.Temporal, error) {
	if seq.Subtype != temporal.Sequence {
		return temporal.Temporal{}, temperr.Wrap(temperr.ErrDomainMismatch, "analytics: simplify_min_dist requires a sequence")
	}
	if eps <= 0 {
		eps = Config.GetSimplifyMinDist()
	}
	desc := basetype.Get(seq.Base)
	insts := seq.Instants
	kept := []temporal.Inst{insts[0]}
	for i := 1; i < len(insts)-1; i++ {
		if desc.Distance(kept[len(kept)-1].V, insts[i].V) > eps {
			kept = append(kept, insts[i])
		}
	}
	if len(insts) > 1 {
		kept = append(kept, insts[len(insts)-1])
	}
	return temporal.NewSequence(seq.Base, kept, seq.LowerInc, seq.UpperInc, seq.Interp == temporal.Linear)
}

// SimplifyMinTDelta is SimplifyMinDist's time-gap analogue: keep an
// instant only if its time delta from the last kept instant exceeds
// minDelta.
func SimplifyMinTDelta(seq temporal.Temporal, minDelta time.Duration) (temporal.Temporal, error) {
	if seq.Subtype != temporal.Sequence {
		return temporal.Temporal{}, temperr.Wrap(temperr.ErrDomainMismatch, "analytics: simplify_min_tdelta requires a sequence")
	}
	insts := seq.Instants
	kept := []temporal.Inst{insts[0]}
	for i := 1; i < len(insts)-1; i++ {
		if insts[i].T.Sub(kept[len(kept)-1].T) > minDelta {
			kept = append(kept, insts[i])
		}
	}
	if len(insts) > 1 {
		kept = append(kept, insts[len(insts)-1])
	}
	return temporal.NewSequence(seq.Base, kept, seq.LowerInc, seq.UpperInc, seq.Interp == temporal.Linear)
}

// findSplit returns the index of the instant in insts[i1..i2] with the
// largest deviation from the straight line insts[i1]-insts[i2], and that
// deviation, per spec.md's tfloat synchronized-Euclidean-distance and
// point-to-segment rules.
func findSplit(base basetype.Tag, insts []temporal.Inst, i1, i2 int, syncdist bool) (split int, dist float64) {
	if i2 <= i1+1 {
		return i1, 0
	}
	start, end := insts[i1], insts[i2]
	for k := i1 + 1; k < i2; k++ {
		var d float64
		switch base {
		case basetype.TagFloat8:
			frac := float64(insts[k].T.Sub(start.T)) / float64(end.T.Sub(start.T))
			lerped := lerpFloat(start.V.V.(float64), end.V.V.(float64), frac)
			d = math.Abs(insts[k].V.V.(float64) - lerped)
		case basetype.TagGeom:
			p := insts[k].V.V.(basetype.GeomPoint)
			if syncdist {
				frac := float64(insts[k].T.Sub(start.T)) / float64(end.T.Sub(start.T))
				lp := lerpPoint(start.V.V.(basetype.GeomPoint), end.V.V.(basetype.GeomPoint), frac)
				d = distPoint(p, lp)
			} else {
				d = distPointToSegment(p, start.V.V.(basetype.GeomPoint), end.V.V.(basetype.GeomPoint))
			}
		}
		if d > dist {
			dist = d
			split = k
		}
	}
	return split, dist
}

func lerpFloat(a, b, frac float64) float64 { return a + (b-a)*frac }

func lerpPoint(a, b basetype.GeomPoint, frac float64) basetype.GeomPoint {
	return basetype.GeomPoint{
		X: a.X + (b.X-a.X)*frac, Y: a.Y + (b.Y-a.Y)*frac, Z: a.Z + (b.Z-a.Z)*frac,
		HasZ: a.HasZ, SRID: a.SRID,
	}
}

func distPoint(a, b basetype.GeomPoint) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	if !a.HasZ && !b.HasZ {
		dz = 0
	}
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func distPointToSegment(p, a, b basetype.GeomPoint) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	apx, apy := p.X-a.X, p.Y-a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return distPoint(p, a)
	}
	t := (apx*abx + apy*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := basetype.GeomPoint{X: a.X + t*abx, Y: a.Y + t*aby}
	return distPoint(p, proj)
}

// SimplifyMaxDist is the single-pass simplifier: walk once, and at each
// step run findSplit over [start..i]; if the worst-point deviation
// exceeds eps, keep the worst point and restart start there.
func SimplifyMaxDist(seq temporal.Temporal, eps float64, syncdist bool) (temporal.Temporal, error) {
	if seq.Subtype != temporal.Sequence {
		return temporal.Temporal{}, temperr.Wrap(temperr.ErrDomainMismatch, "analytics: simplify_max_dist requires a sequence")
	}
	if eps <= 0 {
		eps = Config.GetSimplifyDPTolerance()
	}
	insts := seq.Instants
	kept := []int{0}
	start := 0
	for i := 2; i < len(insts); i++ {
		split, d := findSplit(seq.Base, insts, start, i, syncdist)
		if d > eps {
			kept = append(kept, split)
			start = split
		}
	}
	kept = append(kept, len(insts)-1)
	out := make([]temporal.Inst, 0, len(kept))
	seen := map[int]bool{}
	for _, idx := range kept {
		if !seen[idx] {
			seen[idx] = true
			out = append(out, insts[idx])
		}
	}
	return temporal.NewSequence(seq.Base, out, seq.LowerInc, seq.UpperInc, seq.Interp == temporal.Linear)
}

// SimplifyDP is the full Douglas-Peucker simplifier: a stack of index
// ranges; at each pop, run findSplit; if the maximum deviation exceeds
// eps (or the output size is still below minPts), push the two
// sub-ranges, else emit the range's right endpoint.
func SimplifyDP(seq temporal.Temporal, eps float64, syncdist bool, minPts int) (temporal.Temporal, error) {
	if seq.Subtype != temporal.Sequence {
		return temporal.Temporal{}, temperr.Wrap(temperr.ErrDomainMismatch, "analytics: simplify_dp requires a sequence")
	}
	if eps <= 0 {
		eps = Config.GetSimplifyDPTolerance()
	}
	insts := seq.Instants
	n := len(insts)
	if n <= 2 {
		return seq, nil
	}
	type rng struct{ lo, hi int }
	stack := []rng{{0, n - 1}}
	keepSet := map[int]bool{0: true, n - 1: true}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if r.hi <= r.lo+1 {
			continue
		}
		split, d := findSplit(seq.Base, insts, r.lo, r.hi, syncdist)
		if split <= r.lo {
			// Every instant in the range is collinear with its endpoints
			// (d stayed at findSplit's zero value); nothing more to gain
			// by splitting this range further.
			continue
		}
		if d > eps || len(keepSet) < minPts {
			keepSet[split] = true
			stack = append(stack, rng{r.lo, split}, rng{split, r.hi})
		}
	}
	idxs := make([]int, 0, len(keepSet))
	for i := range keepSet {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)
	out := make([]temporal.Inst, len(idxs))
	for i, idx := range idxs {
		out[i] = insts[idx]
	}
	return temporal.NewSequence(seq.Base, out, seq.LowerInc, seq.UpperInc, seq.Interp == temporal.Linear)
}

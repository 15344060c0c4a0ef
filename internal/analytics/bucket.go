// Package analytics implements the L4 analytics layer: time-precision
// bucketing and sampling, similarity measures (Fréchet, DTW, Hausdorff),
// simplification (min-dist, min-tdelta, single-pass max-dist,
// Douglas-Peucker), and the weighted local outlier factor.
//
// Grounded on original_source/meos/src/general/temporal_analytics.c and
// mobilitydb/src/temporal/temporal_analytics.c.
package analytics

import (
	"time"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/temperr"
	"github.com/banshee-data/temporalgeo/internal/temporal"
)

// Bucket computes bucket(t) = t0 + floor((t - t0)/d) * d, the lower
// bound of the duration-d bucket containing t, anchored at origin t0.
func Bucket(t time.Time, d time.Duration, t0 time.Time) time.Time {
	if d <= 0 {
		return t
	}
	delta := t.Sub(t0)
	n := delta / d
	if delta%d < 0 {
		n--
	}
	return t0.Add(n * d)
}

// TPrecision projects tv onto the bucket grid of width d anchored at t0:
// each non-empty bucket [b, b+d) becomes one instant, carrying the
// time-weighted average of tv over that bucket (twAvg for float8,
// twCentroid for geometry points; other bases are rejected).
func TPrecision(tv temporal.Temporal, d time.Duration, t0 time.Time) (temporal.Temporal, error) {
	if d <= 0 {
		return temporal.Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "analytics: tprecision requires a positive duration")
	}
	insts := temporal.AllInstants(tv)
	if len(insts) == 0 {
		return temporal.Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "analytics: tprecision of an empty temporal")
	}
	buckets := groupByBucket(insts, d, t0)
	out := make([]temporal.Inst, 0, len(buckets))
	for _, bk := range buckets {
		v, err := timeWeightedAverage(tv.Base, bk.insts)
		if err != nil {
			return temporal.Temporal{}, err
		}
		out = append(out, temporal.Inst{T: bk.start, V: v})
	}
	return temporal.NewInstantSet(tv.Base, out)
}

type bucketGroup struct {
	start time.Time
	insts []temporal.Inst
}

func groupByBucket(insts []temporal.Inst, d time.Duration, t0 time.Time) []bucketGroup {
	var groups []bucketGroup
	var cur time.Time
	haveCur := false
	for _, in := range insts {
		b := Bucket(in.T, d, t0)
		if !haveCur || !b.Equal(cur) {
			groups = append(groups, bucketGroup{start: b})
			cur = b
			haveCur = true
		}
		groups[len(groups)-1].insts = append(groups[len(groups)-1].insts, in)
	}
	return groups
}

// timeWeightedAverage computes the time-weighted mean of a bucket's
// instants: each instant's value is weighted by the duration until the
// next instant in the bucket (the last instant carries zero weight
// unless it is the only one, in which case it is returned verbatim).
func timeWeightedAverage(base basetype.Tag, insts []temporal.Inst) (basetype.Datum, error) {
	if len(insts) == 1 {
		return insts[0].V, nil
	}
	switch base {
	case basetype.TagFloat8:
		var weighted, totalWeight float64
		for i := 0; i < len(insts)-1; i++ {
			w := insts[i+1].T.Sub(insts[i].T).Seconds()
			weighted += insts[i].V.V.(float64) * w
			totalWeight += w
		}
		if totalWeight == 0 {
			return insts[len(insts)-1].V, nil
		}
		return basetype.Datum{Tag: basetype.TagFloat8, V: weighted / totalWeight}, nil
	case basetype.TagGeom:
		var sx, sy, sz, totalWeight float64
		for i := 0; i < len(insts)-1; i++ {
			w := insts[i+1].T.Sub(insts[i].T).Seconds()
			p := insts[i].V.V.(basetype.GeomPoint)
			sx += p.X * w
			sy += p.Y * w
			sz += p.Z * w
			totalWeight += w
		}
		if totalWeight == 0 {
			return insts[len(insts)-1].V, nil
		}
		last := insts[len(insts)-1].V.V.(basetype.GeomPoint)
		return basetype.Datum{Tag: basetype.TagGeom, V: basetype.GeomPoint{
			X: sx / totalWeight, Y: sy / totalWeight, Z: sz / totalWeight,
			HasZ: last.HasZ, SRID: last.SRID,
		}}, nil
	default:
		return basetype.Datum{}, temperr.Wrap(temperr.ErrDomainMismatch, "analytics: tprecision supports only float8 (twAvg) and geom (twCentroid) bases")
	}
}

package analytics

import (
	"time"

	"github.com/banshee-data/temporalgeo/internal/temperr"
	"github.com/banshee-data/temporalgeo/internal/temporal"
)

// TSample emits one instant per bucket start b (anchored at t0, width d)
// at which tv is defined, carrying tv's value-at-timestamp under tv's own
// interpolation. The result is always a discrete instant-set.
func TSample(tv temporal.Temporal, d time.Duration, t0 time.Time) (temporal.Temporal, error) {
	if d <= 0 {
		return temporal.Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "analytics: tsample requires a positive duration")
	}
	p := temporal.Period(tv)
	lo := p.Lo.V.(time.Time)
	hi := p.Hi.V.(time.Time)
	first := Bucket(lo, d, t0)
	if first.Before(lo) {
		first = first.Add(d)
	}
	var out []temporal.Inst
	for b := first; !b.After(hi); b = b.Add(d) {
		if v, ok := temporal.ValueAt(tv, b); ok {
			out = append(out, temporal.Inst{T: b, V: v})
		}
	}
	if len(out) == 0 {
		return temporal.Temporal{}, temperr.Wrap(temperr.ErrInvariantViolated, "analytics: tsample produced no samples within the temporal's period")
	}
	return temporal.NewInstantSet(tv.Base, out)
}

package agg

// double2 and double4 are the private accumulator types spec.md §9's
// Open Question keeps out of the public API: tAvg's two-component
// (sum, count) accumulator and a hypothetical 3-D centroid accumulator
// (sumX, sumY, sumZ, count), grounded on original_source
// mobilitydb/src/general/temporal_aggfuncs.c's tnumber_tavg /
// tpoint_tavg accumulator shapes. Neither type is ever constructed by or
// exposed to a caller outside this package.
type double2 struct {
	Sum   float64
	Count float64
}

func (d double2) add(o double2) double2 {
	return double2{Sum: d.Sum + o.Sum, Count: d.Count + o.Count}
}

func (d double2) avg() float64 {
	if d.Count == 0 {
		return 0
	}
	return d.Sum / d.Count
}

type double4 struct {
	SumX, SumY, SumZ, Count float64
}

func (d double4) add(o double4) double4 {
	return double4{SumX: d.SumX + o.SumX, SumY: d.SumY + o.SumY, SumZ: d.SumZ + o.SumZ, Count: d.Count + o.Count}
}

func (d double4) centroid() (x, y, z float64) {
	if d.Count == 0 {
		return 0, 0, 0
	}
	return d.SumX / d.Count, d.SumY / d.Count, d.SumZ / d.Count
}

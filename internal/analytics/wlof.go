package analytics

import (
	"sort"

	"github.com/banshee-data/temporalgeo/internal/temperr"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// geoPoint is a kdtree.Comparable over an arbitrary-dimension coordinate,
// used only by geo_wlof's k-NN query.
type geoPoint []float64

func (p geoPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(geoPoint)
	return p[d] - q[d]
}

func (p geoPoint) Dims() int { return len(p) }

func (p geoPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(geoPoint)
	return floats.Distance(p, q, 2)
}

type geoPoints []geoPoint

func (p geoPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p geoPoints) Len() int                       { return len(p) }
func (p geoPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(subsetSorter{p, d}, kdtree.MedianOfMedians(subsetSorter{p, d}))
}
func (p geoPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// subsetSorter adapts geoPoints to kdtree.SortSlicer for a fixed
// dimension, the shape kdtree.Partition/MedianOfMedians expect.
type subsetSorter struct {
	points geoPoints
	dim    kdtree.Dim
}

func (s subsetSorter) Len() int { return len(s.points) }
func (s subsetSorter) Less(i, j int) bool {
	return s.points[i][s.dim] < s.points[j][s.dim]
}
func (s subsetSorter) Swap(i, j int) { s.points[i], s.points[j] = s.points[j], s.points[i] }
func (s subsetSorter) Slice(start, end int) kdtree.SortSlicer {
	return subsetSorter{s.points[start:end], s.dim}
}

// GeoWLOF returns, for each point, a weighted local outlier factor score
// reflecting how its local density compares to its k nearest neighbours'
// (spec.md §4.7's geo_wlof), used for outlier screening of trajectories.
// points is a flat list of coordinate vectors (all the same dimension).
func GeoWLOF(points [][]float64, k int) ([]float64, error) {
	n := len(points)
	if k <= 0 || k >= n {
		return nil, temperr.Wrap(temperr.ErrInvariantViolated, "analytics: geo_wlof requires 0 < k < len(points)")
	}
	data := make(geoPoints, n)
	for i, p := range points {
		data[i] = geoPoint(p)
	}
	// kdtree.New reorders its argument while partitioning; build it over a
	// copy so data (and the returned scores) keep the input order.
	tree := kdtree.New(append(geoPoints(nil), data...), true)

	kdist := make([]float64, n)
	neighbors := make([][]int, n)
	for i := range data {
		keeper := kdtree.NewNKeeper(k + 1)
		tree.NearestSet(keeper, data[i])
		found := append([]kdtree.ComparableDist(nil), keeper.Heap...)
		sort.Slice(found, func(a, b int) bool { return found[a].Dist < found[b].Dist })
		var nbrs []int
		var maxDist float64
		for _, cd := range found {
			if cd.Comparable == nil {
				continue
			}
			idx := indexOf(data, cd.Comparable.(geoPoint))
			if idx == i {
				continue
			}
			nbrs = append(nbrs, idx)
			if cd.Dist > maxDist {
				maxDist = cd.Dist
			}
			if len(nbrs) == k {
				break
			}
		}
		neighbors[i] = nbrs
		kdist[i] = maxDist
	}

	lrd := make([]float64, n)
	for i := range data {
		var sum float64
		for _, j := range neighbors[i] {
			reach := reachDist(data[i], data[j], kdist[j])
			sum += reach
		}
		if sum == 0 {
			lrd[i] = 0
			continue
		}
		lrd[i] = float64(len(neighbors[i])) / sum
	}

	scores := make([]float64, n)
	for i := range data {
		if lrd[i] == 0 || len(neighbors[i]) == 0 {
			scores[i] = 1
			continue
		}
		var sum float64
		for _, j := range neighbors[i] {
			sum += lrd[j]
		}
		scores[i] = (sum / float64(len(neighbors[i]))) / lrd[i]
	}
	return scores, nil
}

func reachDist(a, b geoPoint, kdistB float64) float64 {
	d := a.Distance(b)
	if d > kdistB {
		return d
	}
	return kdistB
}

func indexOf(data geoPoints, p geoPoint) int {
	for i, q := range data {
		if &q[0] == &p[0] {
			return i
		}
	}
	for i, q := range data {
		if slicesEqual(q, p) {
			return i
		}
	}
	return -1
}

func slicesEqual(a, b geoPoint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package analytics

import (
	"math"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/temperr"
	"github.com/banshee-data/temporalgeo/internal/temporal"
)

func pointDistances(a, b temporal.Temporal) (func(i, j int) float64, int, int, error) {
	if a.Base != b.Base {
		return nil, 0, 0, temperr.Wrap(temperr.ErrDomainMismatch, "analytics: similarity requires matching bases")
	}
	ia, ib := temporal.AllInstants(a), temporal.AllInstants(b)
	if len(ia) == 0 || len(ib) == 0 {
		return nil, 0, 0, temperr.Wrap(temperr.ErrInvariantViolated, "analytics: similarity of an empty temporal")
	}
	desc := basetype.Get(a.Base)
	d := func(i, j int) float64 { return desc.Distance(ia[i].V, ib[j].V) }
	return d, len(ia), len(ib), nil
}

// FrechetDistance computes the discrete Fréchet distance between a and b
// using a two-row rolling DP (O(n*m) time, O(min(n,m)) space): the
// smaller sequence indexes the rolling buffer.
func FrechetDistance(a, b temporal.Temporal) (float64, error) {
	d, n, m, err := pointDistances(a, b)
	if err != nil {
		return 0, err
	}
	if n > m {
		d2 := func(i, j int) float64 { return d(j, i) }
		return frechetRolling(d2, m, n)
	}
	return frechetRolling(d, n, m)
}

func frechetRolling(d func(i, j int) float64, n, m int) (float64, error) {
	prev := make([]float64, m)
	cur := make([]float64, m)
	for j := 0; j < m; j++ {
		if j == 0 {
			prev[j] = d(0, 0)
		} else {
			prev[j] = math.Max(d(0, j), prev[j-1])
		}
	}
	for i := 1; i < n; i++ {
		for j := 0; j < m; j++ {
			switch {
			case j == 0:
				cur[j] = math.Max(d(i, 0), prev[0])
			default:
				cur[j] = math.Max(d(i, j), math.Min(prev[j-1], math.Min(prev[j], cur[j-1])))
			}
		}
		prev, cur = cur, prev
	}
	return prev[m-1], nil
}

// DTWDistance computes the dynamic time warping distance between a and b
// using the same rolling two-row strategy as FrechetDistance.
func DTWDistance(a, b temporal.Temporal) (float64, error) {
	d, n, m, err := pointDistances(a, b)
	if err != nil {
		return 0, err
	}
	if n > m {
		d2 := func(i, j int) float64 { return d(j, i) }
		return dtwRolling(d2, m, n)
	}
	return dtwRolling(d, n, m)
}

func dtwRolling(d func(i, j int) float64, n, m int) (float64, error) {
	prev := make([]float64, m)
	cur := make([]float64, m)
	for j := 0; j < m; j++ {
		if j == 0 {
			prev[j] = d(0, 0)
		} else {
			prev[j] = d(0, j) + prev[j-1]
		}
	}
	for i := 1; i < n; i++ {
		for j := 0; j < m; j++ {
			if j == 0 {
				cur[j] = d(i, 0) + prev[0]
				continue
			}
			best := prev[j-1]
			if prev[j] < best {
				best = prev[j]
			}
			if cur[j-1] < best {
				best = cur[j-1]
			}
			cur[j] = d(i, j) + best
		}
		prev, cur = cur, prev
	}
	return prev[m-1], nil
}

// HausdorffDistance computes the discrete Hausdorff distance between a
// and b: max(max_i min_j d(a_i,b_j), max_j min_i d(a_i,b_j)), with an
// early-out when a running minimum can no longer improve the current
// maximum.
func HausdorffDistance(a, b temporal.Temporal) (float64, error) {
	d, n, m, err := pointDistances(a, b)
	if err != nil {
		return 0, err
	}
	dir := func(rows, cols int, dist func(i, j int) float64) float64 {
		var worst float64
		for i := 0; i < rows; i++ {
			best := math.MaxFloat64
			for j := 0; j < cols; j++ {
				dv := dist(i, j)
				if dv < best {
					best = dv
				}
				if best <= worst {
					break
				}
			}
			if best > worst {
				worst = best
			}
		}
		return worst
	}
	fwd := dir(n, m, d)
	bwd := dir(m, n, func(i, j int) float64 { return d(j, i) })
	return math.Max(fwd, bwd), nil
}

// Match is one step of a similarity alignment path.
type Match struct {
	I, J int
}

// FrechetPath computes the discrete Fréchet distance and its alignment
// path via a full O(n*m) matrix and diagonal-preferred backtrack.
func FrechetPath(a, b temporal.Temporal) (float64, []Match, error) {
	d, n, m, err := pointDistances(a, b)
	if err != nil {
		return 0, nil, err
	}
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, m)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			switch {
			case i == 0 && j == 0:
				mat[i][j] = d(0, 0)
			case i == 0:
				mat[i][j] = math.Max(d(i, j), mat[i][j-1])
			case j == 0:
				mat[i][j] = math.Max(d(i, j), mat[i-1][j])
			default:
				mat[i][j] = math.Max(d(i, j), minOf3(mat[i-1][j-1], mat[i-1][j], mat[i][j-1]))
			}
		}
	}
	return mat[n-1][m-1], backtrack(mat, n, m), nil
}

// DTWPath computes the DTW distance and its alignment path.
func DTWPath(a, b temporal.Temporal) (float64, []Match, error) {
	d, n, m, err := pointDistances(a, b)
	if err != nil {
		return 0, nil, err
	}
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, m)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			switch {
			case i == 0 && j == 0:
				mat[i][j] = d(0, 0)
			case i == 0:
				mat[i][j] = d(i, j) + mat[i][j-1]
			case j == 0:
				mat[i][j] = d(i, j) + mat[i-1][j]
			default:
				mat[i][j] = d(i, j) + minOf3(mat[i-1][j-1], mat[i-1][j], mat[i][j-1])
			}
		}
	}
	return mat[n-1][m-1], backtrack(mat, n, m), nil
}

// backtrack walks mat from (n-1,m-1) to (0,0), preferring the diagonal
// predecessor on ties, and returns the path in forward order.
func backtrack(mat [][]float64, n, m int) []Match {
	i, j := n-1, m-1
	path := []Match{{I: i, J: j}}
	for i > 0 || j > 0 {
		switch {
		case i == 0:
			j--
		case j == 0:
			i--
		default:
			diag, up, left := mat[i-1][j-1], mat[i-1][j], mat[i][j-1]
			switch {
			case diag <= up && diag <= left:
				i--
				j--
			case up <= left:
				i--
			default:
				j--
			}
		}
		path = append(path, Match{I: i, J: j})
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

func minOf3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

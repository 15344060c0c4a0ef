package analytics

import (
	"testing"
	"time"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/temporal"
)

func ff(v float64) basetype.Datum { return basetype.Datum{Tag: basetype.TagFloat8, V: v} }

func at(sec int) time.Time { return time.Date(2024, 3, 1, 0, 0, sec, 0, time.UTC) }

func TestBucketFloorsTowardOrigin(t *testing.T) {
	origin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got := Bucket(origin.Add(125*time.Second), 60*time.Second, origin)
	want := origin.Add(120 * time.Second)
	if !got.Equal(want) {
		t.Fatalf("Bucket = %v, want %v", got, want)
	}
}

func TestTPrecisionTimeWeightedAverage(t *testing.T) {
	seq, err := temporal.NewSequence(basetype.TagFloat8,
		[]temporal.Inst{{T: at(0), V: ff(0)}, {T: at(30), V: ff(10)}, {T: at(59), V: ff(20)}},
		true, true, true)
	if err != nil {
		t.Fatal(err)
	}
	out, err := TPrecision(seq, 60*time.Second, at(0))
	if err != nil {
		t.Fatal(err)
	}
	insts := temporal.AllInstants(out)
	if len(insts) != 1 {
		t.Fatalf("expected a single bucket, got %d", len(insts))
	}
}

func TestSimplifyMinDistKeepsEndpoints(t *testing.T) {
	seq, _ := temporal.NewSequence(basetype.TagFloat8,
		[]temporal.Inst{{T: at(0), V: ff(0)}, {T: at(1), V: ff(0.01)}, {T: at(2), V: ff(5)}, {T: at(3), V: ff(5.01)}},
		true, true, true)
	out, err := SimplifyMinDist(seq, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if out.Instants[0].T != at(0) || out.Instants[len(out.Instants)-1].T != at(3) {
		t.Fatalf("endpoints not preserved: %v", out.Instants)
	}
	if len(out.Instants) != 3 {
		t.Fatalf("expected the near-duplicate points to be dropped, got %d instants", len(out.Instants))
	}
}

func TestSimplifyDPReducesStraightLine(t *testing.T) {
	insts := []temporal.Inst{
		{T: at(0), V: ff(0)}, {T: at(1), V: ff(1)}, {T: at(2), V: ff(2)},
		{T: at(3), V: ff(3)}, {T: at(4), V: ff(4)},
	}
	seq, _ := temporal.NewSequence(basetype.TagFloat8, insts, true, true, true)
	out, err := SimplifyDP(seq, 0.01, false, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Instants) != 2 {
		t.Fatalf("expected a straight line to collapse to 2 points, got %d", len(out.Instants))
	}
}

func TestFrechetDistanceIdenticalSequencesIsZero(t *testing.T) {
	seq, _ := temporal.NewSequence(basetype.TagFloat8,
		[]temporal.Inst{{T: at(0), V: ff(1)}, {T: at(1), V: ff(2)}}, true, true, true)
	d, err := FrechetDistance(seq, seq)
	if err != nil {
		t.Fatal(err)
	}
	if d != 0 {
		t.Fatalf("Frechet distance of identical sequences = %v, want 0", d)
	}
}

func TestDTWPathEndpoints(t *testing.T) {
	a, _ := temporal.NewSequence(basetype.TagFloat8,
		[]temporal.Inst{{T: at(0), V: ff(0)}, {T: at(1), V: ff(1)}, {T: at(2), V: ff(2)}}, true, true, true)
	b, _ := temporal.NewSequence(basetype.TagFloat8,
		[]temporal.Inst{{T: at(0), V: ff(0)}, {T: at(1), V: ff(2)}}, true, true, true)
	_, path, err := DTWPath(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if path[0] != (Match{0, 0}) {
		t.Fatalf("path must start at (0,0), got %v", path[0])
	}
	last := path[len(path)-1]
	if last.I != 2 || last.J != 1 {
		t.Fatalf("path must end at (2,1), got %v", last)
	}
}

func TestGeoWLOFScoresClusterLower(t *testing.T) {
	points := [][]float64{
		{0, 0}, {0, 1}, {1, 0}, {1, 1}, // tight cluster
		{50, 50}, // outlier
	}
	scores, err := GeoWLOF(points, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != len(points) {
		t.Fatalf("expected one score per point, got %d", len(scores))
	}
	for i := 0; i < 4; i++ {
		if scores[i] >= scores[4] {
			t.Fatalf("cluster point %d score %v not below outlier score %v", i, scores[i], scores[4])
		}
	}
}

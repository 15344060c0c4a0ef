package basetype

import "testing"

func TestFloat8Arithmetic(t *testing.T) {
	d := MustGet(TagFloat8)
	a := Datum{Tag: TagFloat8, V: 3.0}
	b := Datum{Tag: TagFloat8, V: 2.0}

	sum, err := d.Add(a, b)
	if err != nil || sum.V.(float64) != 5.0 {
		t.Fatalf("Add = %v, %v; want 5.0, nil", sum, err)
	}
	if d.Cmp(a, b) <= 0 {
		t.Fatalf("Cmp(3,2) should be > 0")
	}
	if d.Distance(a, b) != 1.0 {
		t.Fatalf("Distance(3,2) = %v, want 1.0", d.Distance(a, b))
	}

	_, err = d.Div(b, Datum{Tag: TagFloat8, V: 0.0})
	if err == nil {
		t.Fatal("expected division-by-zero error")
	}
}

func TestInt4Arithmetic(t *testing.T) {
	d := MustGet(TagInt4)
	a := Datum{Tag: TagInt4, V: int32(7)}
	b := Datum{Tag: TagInt4, V: int32(2)}
	sum, _ := d.Add(a, b)
	if sum.V.(int32) != 9 {
		t.Fatalf("Add = %v, want 9", sum.V)
	}
	quot, err := d.Div(a, b)
	if err != nil || quot.V.(int32) != 3 {
		t.Fatalf("Div = %v, %v; want 3, nil", quot, err)
	}
}

func TestGeomDistance(t *testing.T) {
	a := GeomPoint{X: 0, Y: 0}
	b := GeomPoint{X: 3, Y: 4}
	if got := GeomDistance(a, b); got != 5 {
		t.Fatalf("GeomDistance = %v, want 5", got)
	}
}

func TestGeomInputOutputRoundTrip(t *testing.T) {
	d := MustGet(TagGeom)
	dat, err := d.InputFromText("Point(1 2 3)")
	if err != nil {
		t.Fatal(err)
	}
	p := dat.V.(GeomPoint)
	if p.X != 1 || p.Y != 2 || p.Z != 3 || !p.HasZ {
		t.Fatalf("parsed point = %+v", p)
	}
	out := d.OutputToText(dat, 1)
	if out != "Point(1.0 2.0 3.0)" {
		t.Fatalf("OutputToText = %q", out)
	}
}

func TestNpointCompareAndDistance(t *testing.T) {
	d := MustGet(TagNpoint)
	a := Datum{Tag: TagNpoint, V: NPoint{RouteID: 1, Pos: 0.25}}
	b := Datum{Tag: TagNpoint, V: NPoint{RouteID: 1, Pos: 0.75}}
	if d.Cmp(a, b) >= 0 {
		t.Fatal("expected a < b on same route")
	}
	if got := d.Distance(a, b); got != 0.5 {
		t.Fatalf("Distance = %v, want 0.5", got)
	}
	c := Datum{Tag: TagNpoint, V: NPoint{RouteID: 2, Pos: 0.1}}
	if !mathIsInf(d.Distance(a, c)) {
		t.Fatal("expected +Inf distance across different routes")
	}
}

func mathIsInf(f float64) bool { return f > 1e300 }

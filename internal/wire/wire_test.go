package wire

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/box"
	"github.com/banshee-data/temporalgeo/internal/set"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/spanset"
	"github.com/banshee-data/temporalgeo/internal/temporal"
)

func f8(v float64) basetype.Datum { return basetype.Datum{Tag: basetype.TagFloat8, V: v} }
func i4(v int32) basetype.Datum   { return basetype.Datum{Tag: basetype.TagInt4, V: v} }
func ts(sec int) time.Time        { return time.Date(2024, 6, 1, 0, 0, sec, 0, time.UTC) }

// floatspan [1.5, 2.5) NDR round trip, spec.md §6 scenario 5.
func TestEncodeSpanWKBScenario5(t *testing.T) {
	s, err := span.Make(basetype.TagFloat8, f8(1.5), f8(2.5), true, false)
	if err != nil {
		t.Fatal(err)
	}
	wkb, err := EncodeSpanWKB(s, true)
	if err != nil {
		t.Fatal(err)
	}
	if wkb[0] != ndr {
		t.Fatalf("expected NDR endian byte, got 0x%02x", wkb[0])
	}
	if Tag(wkb[1]) != TagFloatSpan {
		t.Fatalf("expected TagFloatSpan tag byte, got %d", wkb[1])
	}
	got, err := DecodeSpanWKB(wkb)
	if err != nil {
		t.Fatal(err)
	}
	if !span.Eq(s, got) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, s)
	}

	hex := ToHexWKB(wkb)
	back, err := FromHexWKB(hex)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(wkb, back); diff != "" {
		t.Fatalf("hex round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeSpanWKBXDRIntSpan(t *testing.T) {
	s, err := span.Make(basetype.TagInt4, i4(3), i4(10), true, false)
	if err != nil {
		t.Fatal(err)
	}
	wkb, err := EncodeSpanWKB(s, false)
	if err != nil {
		t.Fatal(err)
	}
	if wkb[0] != xdr {
		t.Fatalf("expected XDR endian byte, got 0x%02x", wkb[0])
	}
	got, err := DecodeSpanWKB(wkb)
	if err != nil {
		t.Fatal(err)
	}
	if !span.Eq(s, got) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, s)
	}
}

func TestEncodeSpanSetWKBRoundTrip(t *testing.T) {
	s1, _ := span.Make(basetype.TagTimestamptz,
		basetype.Datum{Tag: basetype.TagTimestamptz, V: ts(0)},
		basetype.Datum{Tag: basetype.TagTimestamptz, V: ts(10)}, true, false)
	s2, _ := span.Make(basetype.TagTimestamptz,
		basetype.Datum{Tag: basetype.TagTimestamptz, V: ts(20)},
		basetype.Datum{Tag: basetype.TagTimestamptz, V: ts(30)}, true, true)
	ss, err := spanset.Make(basetype.TagTimestamptz, []span.Span{s1, s2})
	if err != nil {
		t.Fatal(err)
	}
	wkb, err := EncodeSpanSetWKB(ss, true)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeSpanSetWKB(wkb)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Spans) != len(ss.Spans) {
		t.Fatalf("span count mismatch: got %d, want %d", len(got.Spans), len(ss.Spans))
	}
	for i := range ss.Spans {
		if !span.Eq(ss.Spans[i], got.Spans[i]) {
			t.Fatalf("span %d mismatch: got %+v, want %+v", i, got.Spans[i], ss.Spans[i])
		}
	}
}

func TestEncodeSetWKBRoundTrip(t *testing.T) {
	vals := []basetype.Datum{i4(1), i4(5), i4(9)}
	s, err := set.Make(basetype.TagInt4, vals)
	if err != nil {
		t.Fatal(err)
	}
	wkb, err := EncodeSetWKB(s.Base, s.Values, true)
	if err != nil {
		t.Fatal(err)
	}
	base, got, err := DecodeSetWKB(wkb)
	if err != nil {
		t.Fatal(err)
	}
	if base != basetype.TagInt4 {
		t.Fatalf("base mismatch: got %v", base)
	}
	rebuilt, err := set.Make(base, got)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s.Values, rebuilt.Values); diff != "" {
		t.Fatalf("set round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeTemporalWKBInstantRoundTrip(t *testing.T) {
	inst, err := temporal.NewInstant(basetype.TagFloat8, ts(0), f8(42))
	if err != nil {
		t.Fatal(err)
	}
	wkb, err := EncodeTemporalWKB(inst, true)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeTemporalWKB(wkb)
	if err != nil {
		t.Fatal(err)
	}
	if got.Subtype != temporal.Instant || !got.Instants[0].T.Equal(ts(0)) {
		t.Fatalf("decoded instant mismatch: %+v", got)
	}
	if got.Instants[0].V.V.(float64) != 42 {
		t.Fatalf("decoded value mismatch: %+v", got.Instants[0].V)
	}
}

func TestEncodeTemporalWKBSequenceRoundTrip(t *testing.T) {
	insts := []temporal.Inst{
		{T: ts(0), V: f8(1)},
		{T: ts(5), V: f8(2)},
		{T: ts(10), V: f8(3)},
	}
	seq, err := temporal.NewSequence(basetype.TagFloat8, insts, true, false, true)
	if err != nil {
		t.Fatal(err)
	}
	wkb, err := EncodeTemporalWKB(seq, false)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeTemporalWKB(wkb)
	if err != nil {
		t.Fatal(err)
	}
	if got.Subtype != temporal.Sequence || got.LowerInc != true || got.UpperInc != false {
		t.Fatalf("sequence bounds mismatch: %+v", got)
	}
	if len(got.Instants) != 3 {
		t.Fatalf("expected 3 instants, got %d", len(got.Instants))
	}
	for i, inst := range insts {
		if !got.Instants[i].T.Equal(inst.T) || got.Instants[i].V.V.(float64) != inst.V.V.(float64) {
			t.Fatalf("instant %d mismatch: got %+v, want %+v", i, got.Instants[i], inst)
		}
	}
}

func TestEncodeTBoxWKBRoundTrip(t *testing.T) {
	xspan, _ := span.Make(basetype.TagFloat8, f8(0), f8(100), true, true)
	tspan, _ := span.Make(basetype.TagTimestamptz,
		basetype.Datum{Tag: basetype.TagTimestamptz, V: ts(0)},
		basetype.Datum{Tag: basetype.TagTimestamptz, V: ts(60)}, true, false)
	b, err := box.MakeTBox(&xspan, &tspan)
	if err != nil {
		t.Fatal(err)
	}
	wkb, err := EncodeTBoxWKB(b, true)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeTBoxWKB(wkb)
	if err != nil {
		t.Fatal(err)
	}
	if !got.HasX() || !got.HasT() {
		t.Fatalf("decoded tbox missing dimensions: %+v", got)
	}
	if !span.Eq(got.X, b.X) || !span.Eq(got.T, b.T) {
		t.Fatalf("decoded tbox spans mismatch: got %+v, want %+v", got, b)
	}
}

func TestEncodeSTBoxWKBRoundTrip(t *testing.T) {
	tspan, _ := span.Make(basetype.TagTimestamptz,
		basetype.Datum{Tag: basetype.TagTimestamptz, V: ts(0)},
		basetype.Datum{Tag: basetype.TagTimestamptz, V: ts(60)}, true, true)
	b, err := box.MakeSTBox(true, 0, 0, 10, 10, false, 0, 0, &tspan, 4326, false)
	if err != nil {
		t.Fatal(err)
	}
	wkb, err := EncodeSTBoxWKB(b, false)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeSTBoxWKB(wkb)
	if err != nil {
		t.Fatal(err)
	}
	if got.SRID != 4326 {
		t.Fatalf("SRID not preserved: got %d", got.SRID)
	}
	if got.XMin != b.XMin || got.XMax != b.XMax || got.YMin != b.YMin || got.YMax != b.YMax {
		t.Fatalf("decoded stbox coords mismatch: got %+v, want %+v", got, b)
	}
}

func TestSpanToTextAndFromText(t *testing.T) {
	s, err := span.Make(basetype.TagFloat8, f8(1), f8(2.5), true, false)
	if err != nil {
		t.Fatal(err)
	}
	text := SpanToText(s, -1)
	if text != "[1, 2.5)" {
		t.Fatalf("SpanToText = %q, want %q", text, "[1, 2.5)")
	}
	got, err := SpanFromText(basetype.TagFloat8, text)
	if err != nil {
		t.Fatal(err)
	}
	if !span.Eq(s, got) {
		t.Fatalf("SpanFromText round trip mismatch: got %+v, want %+v", got, s)
	}
}

func TestSpanSetToTextAndFromText(t *testing.T) {
	s1, _ := span.Make(basetype.TagInt4, i4(1), i4(5), true, false)
	s2, _ := span.Make(basetype.TagInt4, i4(10), i4(20), true, true)
	ss, err := spanset.Make(basetype.TagInt4, []span.Span{s1, s2})
	if err != nil {
		t.Fatal(err)
	}
	text := SpanSetToText(ss, -1)
	got, err := SpanSetFromText(basetype.TagInt4, text)
	if err != nil {
		t.Fatalf("SpanSetFromText(%q): %v", text, err)
	}
	if len(got.Spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %q", len(got.Spans), text)
	}
}

func TestSetToTextAndFromText(t *testing.T) {
	vals := []basetype.Datum{i4(1), i4(2), i4(3)}
	s, err := set.Make(basetype.TagInt4, vals)
	if err != nil {
		t.Fatal(err)
	}
	text := SetToText(s, -1)
	got, err := SetFromText(basetype.TagInt4, text)
	if err != nil {
		t.Fatalf("SetFromText(%q): %v", text, err)
	}
	if len(got.Values) != 3 {
		t.Fatalf("expected 3 values, got %d: %q", len(got.Values), text)
	}
}

func TestTemporalToTextSequence(t *testing.T) {
	insts := []temporal.Inst{{T: ts(0), V: f8(1)}, {T: ts(5), V: f8(2)}}
	seq, err := temporal.NewSequence(basetype.TagFloat8, insts, true, true, true)
	if err != nil {
		t.Fatal(err)
	}
	text := TemporalToText(seq, -1)
	if text == "" || text[0] != '[' {
		t.Fatalf("TemporalToText(sequence) = %q, want bracket form", text)
	}
}

func TestTemporalToMFJSONGeomPoint(t *testing.T) {
	insts := []temporal.Inst{
		{T: ts(0), V: basetype.Datum{Tag: basetype.TagGeom, V: basetype.GeomPoint{X: 0, Y: 0, SRID: 4326}}},
		{T: ts(10), V: basetype.Datum{Tag: basetype.TagGeom, V: basetype.GeomPoint{X: 1, Y: 1, SRID: 4326}}},
	}
	seq, err := temporal.NewSequence(basetype.TagGeom, insts, true, true, true)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := TemporalToMFJSON(seq)
	if err != nil {
		t.Fatal(err)
	}
	got, err := TemporalFromMFJSON(basetype.TagGeom, doc)
	if err != nil {
		t.Fatalf("TemporalFromMFJSON(%s): %v", doc, err)
	}
	gotInsts := temporal.AllInstants(got)
	if len(gotInsts) != 2 {
		t.Fatalf("expected 2 instants, got %d", len(gotInsts))
	}
	p0 := gotInsts[0].V.V.(basetype.GeomPoint)
	if p0.X != 0 || p0.Y != 0 {
		t.Fatalf("first point mismatch: %+v", p0)
	}
}

func TestTemporalToMFJSONRejectsNonPointBase(t *testing.T) {
	inst, _ := temporal.NewInstant(basetype.TagFloat8, ts(0), f8(1))
	if _, err := TemporalToMFJSON(inst); err == nil {
		t.Fatal("expected error encoding a non-point temporal as MF-JSON")
	}
}

func TestDecodeSpanWKBRejectsTruncated(t *testing.T) {
	s, _ := span.Make(basetype.TagFloat8, f8(1), f8(2), true, false)
	wkb, err := EncodeSpanWKB(s, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeSpanWKB(wkb[:len(wkb)-2]); err == nil {
		t.Fatal("expected error decoding truncated WKB")
	}
}

func TestFromHexWKBRejectsOddLength(t *testing.T) {
	if _, err := FromHexWKB("abc"); err == nil {
		t.Fatal("expected error for odd-length hex string")
	}
}

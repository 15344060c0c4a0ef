package wire

import (
	"strconv"
	"strings"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/box"
	"github.com/banshee-data/temporalgeo/internal/set"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/spanset"
	"github.com/banshee-data/temporalgeo/internal/temperr"
	"github.com/banshee-data/temporalgeo/internal/temporal"
)

// SpanToText renders a span per the canonical bracket form of spec.md §6
// ("[1.0, 2.0)" for float spans), using '[' / '(' for the lower bound and
// ']' / ')' for the upper depending on inclusivity.
func SpanToText(s span.Span, maxDecimalDigits int) string {
	d := basetype.MustGet(s.Base)
	lb, ub := "(", ")"
	if s.LoInc {
		lb = "["
	}
	if s.HiInc {
		ub = "]"
	}
	return lb + d.OutputToText(s.Lo, maxDecimalDigits) + ", " + d.OutputToText(s.Hi, maxDecimalDigits) + ub
}

// SpanFromText parses the bracket form SpanToText emits.
func SpanFromText(base basetype.Tag, s string) (span.Span, error) {
	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return span.Span{}, temperr.NewParseError(0, "wire: span literal too short: %q", s)
	}
	loInc := s[0] == '['
	if !loInc && s[0] != '(' {
		return span.Span{}, temperr.NewParseError(0, "wire: span literal must start with '[' or '(': %q", s)
	}
	last := s[len(s)-1]
	hiInc := last == ']'
	if !hiInc && last != ')' {
		return span.Span{}, temperr.NewParseError(len(s)-1, "wire: span literal must end with ']' or ')': %q", s)
	}
	body := s[1 : len(s)-1]
	parts := strings.SplitN(body, ",", 2)
	if len(parts) != 2 {
		return span.Span{}, temperr.NewParseError(1, "wire: span literal missing comma: %q", s)
	}
	d := basetype.MustGet(base)
	lo, err := d.InputFromText(strings.TrimSpace(parts[0]))
	if err != nil {
		return span.Span{}, temperr.NewParseError(1, "wire: span lower bound: %v", err)
	}
	hi, err := d.InputFromText(strings.TrimSpace(parts[1]))
	if err != nil {
		return span.Span{}, temperr.NewParseError(len(parts[0])+2, "wire: span upper bound: %v", err)
	}
	return span.Make(base, lo, hi, loInc, hiInc)
}

// SpanSetToText renders "{span1, span2, ...}" (spec.md §6: "{[t0,t1),
// [t2,t3)}" for period-sets).
func SpanSetToText(ss spanset.SpanSet, maxDecimalDigits int) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, s := range ss.Spans {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(SpanToText(s, maxDecimalDigits))
	}
	b.WriteByte('}')
	return b.String()
}

// SpanSetFromText parses the brace-delimited comma-separated span list
// SpanSetToText emits.
func SpanSetFromText(base basetype.Tag, s string) (spanset.SpanSet, error) {
	spans, err := splitBraceList(s)
	if err != nil {
		return spanset.SpanSet{}, err
	}
	out := make([]span.Span, 0, len(spans))
	for _, raw := range spans {
		sp, err := SpanFromText(base, raw)
		if err != nil {
			return spanset.SpanSet{}, err
		}
		out = append(out, sp)
	}
	return spanset.Make(base, out)
}

// SetToText renders "{v1, v2, ...}".
func SetToText(s set.Set, maxDecimalDigits int) string {
	d := basetype.MustGet(s.Base)
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range s.Values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.OutputToText(v, maxDecimalDigits))
	}
	b.WriteByte('}')
	return b.String()
}

// SetFromText parses the brace-delimited comma-separated value list
// SetToText emits.
func SetFromText(base basetype.Tag, s string) (set.Set, error) {
	items, err := splitBraceList(s)
	if err != nil {
		return set.Set{}, err
	}
	d := basetype.MustGet(base)
	vals := make([]basetype.Datum, 0, len(items))
	for _, raw := range items {
		v, err := d.InputFromText(strings.TrimSpace(raw))
		if err != nil {
			return set.Set{}, temperr.NewParseError(0, "wire: set element: %v", err)
		}
		vals = append(vals, v)
	}
	return set.Make(base, vals)
}

// splitBraceList splits a "{a, b, c}" literal into its raw comma-separated
// elements, respecting nested brackets/braces/parens so a span-set of
// spans (each containing its own comma) splits correctly.
func splitBraceList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil, temperr.NewParseError(0, "wire: expected \"{...}\", got %q", s)
	}
	body := s[1 : len(s)-1]
	if strings.TrimSpace(body) == "" {
		return nil, temperr.Wrap(temperr.ErrInvariantViolated, "wire: empty set/span-set literal")
	}
	var out []string
	depth := 0
	start := 0
	for i, r := range body {
		switch r {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, body[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, body[start:])
	return out, nil
}

// instantText renders "value@timestamp", the atomic building block of
// every temporal textual form (spec.md §6: "Point(x y)@t" for instant
// points, "[v0@t0, v1@t1]" for sequences).
func instantText(base basetype.Tag, inst temporal.Inst, maxDecimalDigits int) string {
	d := basetype.MustGet(base)
	return d.OutputToText(inst.V, maxDecimalDigits) + "@" + basetype.MustGet(basetype.TagTimestamptz).OutputToText(
		basetype.Datum{Tag: basetype.TagTimestamptz, V: inst.T}, -1)
}

// TemporalToText renders t in its canonical subtype-specific textual form.
func TemporalToText(t temporal.Temporal, maxDecimalDigits int) string {
	switch t.Subtype {
	case temporal.Instant:
		return instantText(t.Base, t.Instants[0], maxDecimalDigits)
	case temporal.InstantSet:
		return braceJoinInstants(t.Base, t.Instants, maxDecimalDigits)
	case temporal.Sequence:
		return sequenceText(t, maxDecimalDigits)
	case temporal.SequenceSet:
		var b strings.Builder
		b.WriteByte('{')
		for i, seq := range t.Sequences {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(sequenceText(seq, maxDecimalDigits))
		}
		b.WriteByte('}')
		return b.String()
	default:
		return ""
	}
}

func braceJoinInstants(base basetype.Tag, insts []temporal.Inst, maxDecimalDigits int) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, inst := range insts {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(instantText(base, inst, maxDecimalDigits))
	}
	b.WriteByte('}')
	return b.String()
}

func sequenceText(seq temporal.Temporal, maxDecimalDigits int) string {
	lb, ub := "(", ")"
	if seq.LowerInc {
		lb = "["
	}
	if seq.UpperInc {
		ub = "]"
	}
	var b strings.Builder
	b.WriteString(lb)
	for i, inst := range seq.Instants {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(instantText(seq.Base, inst, maxDecimalDigits))
	}
	b.WriteString(ub)
	return b.String()
}

// TBoxToText renders an engine-canonical (not MobilityDB-verbatim) textual
// form for TBox, since spec.md gives no worked text example for boxes:
// "TBOX(X[xlo,xhi], T[tlo,thi])" with absent dimensions omitted.
func TBoxToText(b box.TBox) string {
	var parts []string
	if b.HasX() {
		parts = append(parts, "X"+SpanToText(b.X, 6))
	}
	if b.HasT() {
		parts = append(parts, "T"+SpanToText(b.T, -1))
	}
	return "TBOX(" + strings.Join(parts, ", ") + ")"
}

// STBoxToText renders STBox similarly: "STBOX(XY[xmin ymin,xmax ymax],
// Z[zmin,zmax], T[...], SRID=n)", with a GEODSTBOX prefix when geodetic.
func STBoxToText(b box.STBox) string {
	var parts []string
	if b.HasX() {
		parts = append(parts, "XY["+formatFloat(b.XMin)+" "+formatFloat(b.YMin)+","+
			formatFloat(b.XMax)+" "+formatFloat(b.YMax)+"]")
	}
	if b.HasZ() {
		parts = append(parts, "Z["+formatFloat(b.ZMin)+","+formatFloat(b.ZMax)+"]")
	}
	if b.HasT() {
		parts = append(parts, "T"+SpanToText(b.T, -1))
	}
	prefix := "STBOX"
	if b.Geodetic() {
		prefix = "GEODSTBOX"
	}
	if b.SRID != 0 {
		parts = append(parts, "SRID="+strconv.FormatInt(int64(b.SRID), 10))
	}
	return prefix + "(" + strings.Join(parts, ", ") + ")"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

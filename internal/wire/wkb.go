package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/box"
	"github.com/banshee-data/temporalgeo/internal/diag"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/spanset"
	"github.com/banshee-data/temporalgeo/internal/temperr"
	"github.com/banshee-data/temporalgeo/internal/temporal"
)

// endianByte follows classic WKB convention (spec.md §6: "1 byte
// endian"): 0x01 is NDR (little-endian), 0x00 is XDR (big-endian).
const (
	ndr byte = 1
	xdr byte = 0
)

func orderFor(e byte) (binary.ByteOrder, error) {
	switch e {
	case ndr:
		return binary.LittleEndian, nil
	case xdr:
		return binary.BigEndian, nil
	default:
		return nil, temperr.NewParseError(0, "wire: unknown WKB endian byte 0x%02x", e)
	}
}

// setHighBit marks a WKB type tag as framing a *set of* that element
// rather than a bare value — an engine convention filling the gap left by
// spec.md §6's table, which only names a handful of set/span-set tags
// explicitly (periodset). Per-base set tags are not worth enumerating one
// by one; the high bit does the same job uniformly.
const setBit Tag = 0x80

// --- value codec -----------------------------------------------------

func writeValue(buf *bytes.Buffer, order binary.ByteOrder, d basetype.Datum) error {
	switch d.Tag {
	case basetype.TagBool:
		v := byte(0)
		if d.V.(bool) {
			v = 1
		}
		buf.WriteByte(v)
	case basetype.TagInt4:
		return binary.Write(buf, order, d.V.(int32))
	case basetype.TagFloat8:
		return binary.Write(buf, order, d.V.(float64))
	case basetype.TagText:
		s := d.V.(string)
		if err := binary.Write(buf, order, uint32(len(s))); err != nil {
			return err
		}
		buf.WriteString(s)
	case basetype.TagTimestamptz, basetype.TagDate:
		return binary.Write(buf, order, d.V.(time.Time).UnixNano())
	case basetype.TagGeom:
		p := d.V.(basetype.GeomPoint)
		hz := byte(0)
		if p.HasZ {
			hz = 1
		}
		buf.WriteByte(hz)
		if err := binary.Write(buf, order, p.X); err != nil {
			return err
		}
		if err := binary.Write(buf, order, p.Y); err != nil {
			return err
		}
		if p.HasZ {
			if err := binary.Write(buf, order, p.Z); err != nil {
				return err
			}
		}
		return binary.Write(buf, order, p.SRID)
	case basetype.TagGeog:
		p := d.V.(basetype.GeogPoint)
		hz := byte(0)
		if p.HasZ {
			hz = 1
		}
		buf.WriteByte(hz)
		if err := binary.Write(buf, order, p.Lon); err != nil {
			return err
		}
		if err := binary.Write(buf, order, p.Lat); err != nil {
			return err
		}
		if p.HasZ {
			if err := binary.Write(buf, order, p.Z); err != nil {
				return err
			}
		}
		return binary.Write(buf, order, p.SRID)
	case basetype.TagNpoint:
		p := d.V.(basetype.NPoint)
		if err := binary.Write(buf, order, p.RouteID); err != nil {
			return err
		}
		return binary.Write(buf, order, p.Pos)
	case basetype.TagNsegment:
		s := d.V.(basetype.NSegment)
		if err := binary.Write(buf, order, s.RouteID); err != nil {
			return err
		}
		if err := binary.Write(buf, order, s.PosStart); err != nil {
			return err
		}
		return binary.Write(buf, order, s.PosEnd)
	case basetype.TagCbuffer:
		c := d.V.(basetype.CBuffer)
		if err := binary.Write(buf, order, c.Center.X); err != nil {
			return err
		}
		if err := binary.Write(buf, order, c.Center.Y); err != nil {
			return err
		}
		return binary.Write(buf, order, c.Radius)
	default:
		return temperr.Wrap(temperr.ErrDomainMismatch, fmt.Sprintf("wire: no WKB value codec for base %s", d.Tag))
	}
	return nil
}

func readValue(r *bytes.Reader, order binary.ByteOrder, base basetype.Tag) (basetype.Datum, error) {
	switch base {
	case basetype.TagBool:
		b, err := r.ReadByte()
		if err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		return basetype.Datum{Tag: base, V: b != 0}, nil
	case basetype.TagInt4:
		var v int32
		if err := binary.Read(r, order, &v); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		return basetype.Datum{Tag: base, V: v}, nil
	case basetype.TagFloat8:
		var v float64
		if err := binary.Read(r, order, &v); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		return basetype.Datum{Tag: base, V: v}, nil
	case basetype.TagText:
		var n uint32
		if err := binary.Read(r, order, &n); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		buf := make([]byte, n)
		if _, err := r.Read(buf); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		return basetype.Datum{Tag: base, V: string(buf)}, nil
	case basetype.TagTimestamptz, basetype.TagDate:
		var ns int64
		if err := binary.Read(r, order, &ns); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		return basetype.Datum{Tag: base, V: time.Unix(0, ns).UTC()}, nil
	case basetype.TagGeom:
		hz, err := r.ReadByte()
		if err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		var x, y, z float64
		var srid int32
		if err := binary.Read(r, order, &x); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		if err := binary.Read(r, order, &y); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		if hz != 0 {
			if err := binary.Read(r, order, &z); err != nil {
				return basetype.Datum{}, wrapReadErr(err)
			}
		}
		if err := binary.Read(r, order, &srid); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		return basetype.Datum{Tag: base, V: basetype.GeomPoint{X: x, Y: y, Z: z, HasZ: hz != 0, SRID: srid}}, nil
	case basetype.TagGeog:
		hz, err := r.ReadByte()
		if err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		var lon, lat, z float64
		var srid int32
		if err := binary.Read(r, order, &lon); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		if err := binary.Read(r, order, &lat); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		if hz != 0 {
			if err := binary.Read(r, order, &z); err != nil {
				return basetype.Datum{}, wrapReadErr(err)
			}
		}
		if err := binary.Read(r, order, &srid); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		return basetype.Datum{Tag: base, V: basetype.GeogPoint{Lon: lon, Lat: lat, Z: z, HasZ: hz != 0, SRID: srid}}, nil
	case basetype.TagNpoint:
		var routeID int64
		var pos float64
		if err := binary.Read(r, order, &routeID); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		if err := binary.Read(r, order, &pos); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		return basetype.Datum{Tag: base, V: basetype.NPoint{RouteID: routeID, Pos: pos}}, nil
	case basetype.TagNsegment:
		var routeID int64
		var ps, pe float64
		if err := binary.Read(r, order, &routeID); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		if err := binary.Read(r, order, &ps); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		if err := binary.Read(r, order, &pe); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		return basetype.Datum{Tag: base, V: basetype.NSegment{RouteID: routeID, PosStart: ps, PosEnd: pe}}, nil
	case basetype.TagCbuffer:
		var x, y, radius float64
		if err := binary.Read(r, order, &x); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		if err := binary.Read(r, order, &y); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		if err := binary.Read(r, order, &radius); err != nil {
			return basetype.Datum{}, wrapReadErr(err)
		}
		return basetype.Datum{Tag: base, V: basetype.CBuffer{Center: basetype.GeomPoint{X: x, Y: y}, Radius: radius}}, nil
	default:
		return basetype.Datum{}, temperr.Wrap(temperr.ErrDomainMismatch, fmt.Sprintf("wire: no WKB value codec for base %s", base))
	}
}

func wrapReadErr(err error) error {
	return temperr.NewParseError(0, "wire: truncated WKB payload: %v", err)
}

// --- span WKB ----------------------------------------------------------

func spanWireTag(base basetype.Tag) (Tag, error) {
	switch base {
	case basetype.TagInt4:
		return TagIntSpan, nil
	case basetype.TagFloat8:
		return TagFloatSpan, nil
	case basetype.TagTimestamptz:
		return TagPeriod, nil
	case basetype.TagDate:
		return TagDateSpan, nil
	default:
		return TagInvalid, temperr.Wrap(temperr.ErrDomainMismatch, fmt.Sprintf("wire: no span WKB tag for base %s", base))
	}
}

func spanBaseOfTag(tag Tag) (basetype.Tag, error) {
	switch tag {
	case TagIntSpan:
		return basetype.TagInt4, nil
	case TagFloatSpan:
		return basetype.TagFloat8, nil
	case TagPeriod:
		return basetype.TagTimestamptz, nil
	case TagDateSpan:
		return basetype.TagDate, nil
	default:
		return basetype.TagInvalid, temperr.NewParseError(0, "wire: unknown span WKB tag %d", tag)
	}
}

// EncodeSpanWKB writes a span.Span per spec.md §6's framing. Scenario 5:
// floatspan [1.5, 2.5) in NDR encodes to byte 0x01, tag 6, flags 0x01
// (lower_inc only), then the two IEEE-754 LE bounds.
func EncodeSpanWKB(s span.Span, ndrEndian bool) ([]byte, error) {
	tag, err := spanWireTag(s.Base)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	order := writeHeader(&buf, tag, ndrEndian)
	buf.WriteByte(boundsFlags(s.LoInc, s.HiInc))
	if err := writeValue(&buf, order, s.Lo); err != nil {
		return nil, err
	}
	if err := writeValue(&buf, order, s.Hi); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func boundsFlags(loInc, hiInc bool) byte {
	var f byte
	if loInc {
		f |= 1 << 0
	}
	if hiInc {
		f |= 1 << 1
	}
	return f
}

func writeHeader(buf *bytes.Buffer, tag Tag, ndrEndian bool) binary.ByteOrder {
	e := xdr
	order := binary.ByteOrder(binary.BigEndian)
	if ndrEndian {
		e = ndr
		order = binary.LittleEndian
	}
	buf.WriteByte(e)
	buf.WriteByte(byte(tag))
	return order
}

// DecodeSpanWKB reads a span.Span from WKB bytes.
func DecodeSpanWKB(data []byte) (span.Span, error) {
	r := bytes.NewReader(data)
	order, tag, err := readHeader(r)
	if err != nil {
		return span.Span{}, err
	}
	base, err := spanBaseOfTag(tag)
	if err != nil {
		return span.Span{}, err
	}
	fb, err := r.ReadByte()
	if err != nil {
		return span.Span{}, wrapReadErr(err)
	}
	loInc := fb&(1<<0) != 0
	hiInc := fb&(1<<1) != 0
	lo, err := readValue(r, order, base)
	if err != nil {
		return span.Span{}, err
	}
	hi, err := readValue(r, order, base)
	if err != nil {
		return span.Span{}, err
	}
	return span.Make(base, lo, hi, loInc, hiInc)
}

func readHeader(r *bytes.Reader) (binary.ByteOrder, Tag, error) {
	eb, err := r.ReadByte()
	if err != nil {
		return nil, TagInvalid, wrapReadErr(err)
	}
	order, err := orderFor(eb)
	if err != nil {
		return nil, TagInvalid, err
	}
	tb, err := r.ReadByte()
	if err != nil {
		return nil, TagInvalid, wrapReadErr(err)
	}
	return order, Tag(tb), nil
}

// --- span-set (periodset etc.) WKB -------------------------------------

// EncodeSpanSetWKB writes ss as endian + tag (span tag with the set bit
// set) + count + each member span's bounds-flags+bounds (no repeated
// endian/tag per member).
func EncodeSpanSetWKB(ss spanset.SpanSet, ndrEndian bool) ([]byte, error) {
	elemTag, err := spanWireTag(ss.Base)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	order := writeHeader(&buf, elemTag|setBit, ndrEndian)
	if err := binary.Write(&buf, order, uint32(len(ss.Spans))); err != nil {
		return nil, err
	}
	for _, s := range ss.Spans {
		buf.WriteByte(boundsFlags(s.LoInc, s.HiInc))
		if err := writeValue(&buf, order, s.Lo); err != nil {
			return nil, err
		}
		if err := writeValue(&buf, order, s.Hi); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeSpanSetWKB reads a span-set framed per EncodeSpanSetWKB.
func DecodeSpanSetWKB(data []byte) (spanset.SpanSet, error) {
	r := bytes.NewReader(data)
	order, tag, err := readHeader(r)
	if err != nil {
		return spanset.SpanSet{}, err
	}
	if tag&setBit == 0 {
		return spanset.SpanSet{}, temperr.NewParseError(0, "wire: expected a span-set tag, got %d", tag)
	}
	base, err := spanBaseOfTag(tag &^ setBit)
	if err != nil {
		return spanset.SpanSet{}, err
	}
	var n uint32
	if err := binary.Read(r, order, &n); err != nil {
		return spanset.SpanSet{}, wrapReadErr(err)
	}
	spans := make([]span.Span, 0, n)
	for i := uint32(0); i < n; i++ {
		fb, err := r.ReadByte()
		if err != nil {
			return spanset.SpanSet{}, wrapReadErr(err)
		}
		loInc := fb&(1<<0) != 0
		hiInc := fb&(1<<1) != 0
		lo, err := readValue(r, order, base)
		if err != nil {
			return spanset.SpanSet{}, err
		}
		hi, err := readValue(r, order, base)
		if err != nil {
			return spanset.SpanSet{}, err
		}
		s, err := span.Make(base, lo, hi, loInc, hiInc)
		if err != nil {
			return spanset.SpanSet{}, err
		}
		spans = append(spans, s)
	}
	return spanset.Make(base, spans)
}

// --- set WKB -------------------------------------------------------------

// EncodeSetWKB writes s as endian + (scalar tag | setBit) + count + values.
func EncodeSetWKB(base basetype.Tag, values []basetype.Datum, ndrEndian bool) ([]byte, error) {
	scalarTag, err := ScalarTag(base)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	order := writeHeader(&buf, scalarTag|setBit, ndrEndian)
	if err := binary.Write(&buf, order, uint32(len(values))); err != nil {
		return nil, err
	}
	for _, v := range values {
		if err := writeValue(&buf, order, v); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeSetWKB reads back the base tag and the raw value slice (the
// caller re-derives the sorted/deduped set.Set via set.Make, since
// decoding must not silently assume the bytes were already normalized).
func DecodeSetWKB(data []byte) (basetype.Tag, []basetype.Datum, error) {
	r := bytes.NewReader(data)
	order, tag, err := readHeader(r)
	if err != nil {
		return basetype.TagInvalid, nil, err
	}
	if tag&setBit == 0 {
		return basetype.TagInvalid, nil, temperr.NewParseError(0, "wire: expected a set tag, got %d", tag)
	}
	base, ok := baseOfScalarTag[tag&^setBit]
	if !ok {
		return basetype.TagInvalid, nil, temperr.NewParseError(0, "wire: unknown set element tag %d", tag&^setBit)
	}
	var n uint32
	if err := binary.Read(r, order, &n); err != nil {
		return basetype.TagInvalid, nil, wrapReadErr(err)
	}
	out := make([]basetype.Datum, 0, n)
	for i := uint32(0); i < n; i++ {
		v, err := readValue(r, order, base)
		if err != nil {
			return basetype.TagInvalid, nil, err
		}
		out = append(out, v)
	}
	return base, out, nil
}

// --- temporal WKB --------------------------------------------------------

// EncodeTemporalWKB frames a Temporal per spec.md §6: endian, type tag
// (tbool/tint/tfloat/...), subtype byte, variant flags byte, then the
// subtype-specific payload.
func EncodeTemporalWKB(t temporal.Temporal, ndrEndian bool) ([]byte, error) {
	tag, err := TemporalTag(t.Base)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	order := writeHeader(&buf, tag, ndrEndian)
	sb, err := SubtypeByte(t.Subtype)
	if err != nil {
		return nil, err
	}
	buf.WriteByte(sb)
	buf.WriteByte(byte(temporalFlags(t)))
	if err := writeTemporalPayload(&buf, order, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func temporalFlags(t temporal.Temporal) VariantFlags {
	var f VariantFlags
	if t.Subtype == temporal.Sequence {
		if t.LowerInc {
			f |= FlagLowerInc
		}
		if t.UpperInc {
			f |= FlagUpperInc
		}
	}
	if t.Interp == temporal.Linear {
		f |= FlagLinear
	}
	return f
}

func writeTemporalPayload(buf *bytes.Buffer, order binary.ByteOrder, t temporal.Temporal) error {
	switch t.Subtype {
	case temporal.Instant, temporal.InstantSet, temporal.Sequence:
		return writeInstants(buf, order, t.Instants)
	case temporal.SequenceSet:
		if err := binary.Write(buf, order, uint32(len(t.Sequences))); err != nil {
			return err
		}
		for _, seq := range t.Sequences {
			buf.WriteByte(byte(temporalFlags(seq)))
			if err := writeInstants(buf, order, seq.Instants); err != nil {
				return err
			}
		}
		return nil
	default:
		return temperr.Wrap(temperr.ErrDomainMismatch, "wire: unknown temporal subtype for WKB encode")
	}
}

func writeInstants(buf *bytes.Buffer, order binary.ByteOrder, insts []temporal.Inst) error {
	if err := binary.Write(buf, order, uint32(len(insts))); err != nil {
		return err
	}
	for _, inst := range insts {
		if err := binary.Write(buf, order, inst.T.UnixNano()); err != nil {
			return err
		}
		if err := writeValue(buf, order, inst.V); err != nil {
			return err
		}
	}
	return nil
}

// DecodeTemporalWKB reads a Temporal back from WKB bytes.
func DecodeTemporalWKB(data []byte) (temporal.Temporal, error) {
	r := bytes.NewReader(data)
	order, tag, err := readHeader(r)
	if err != nil {
		return temporal.Temporal{}, err
	}
	base, err := BaseOfTemporalTag(tag)
	if err != nil {
		return temporal.Temporal{}, err
	}
	sb, err := r.ReadByte()
	if err != nil {
		return temporal.Temporal{}, wrapReadErr(err)
	}
	subtype, err := SubtypeFromByte(sb)
	if err != nil {
		return temporal.Temporal{}, err
	}
	fb, err := r.ReadByte()
	if err != nil {
		return temporal.Temporal{}, wrapReadErr(err)
	}
	flags := VariantFlags(fb)
	logStrayTemporalFlags(flags)
	switch subtype {
	case temporal.Instant:
		insts, err := readInstants(r, order, base)
		if err != nil {
			return temporal.Temporal{}, err
		}
		if len(insts) != 1 {
			return temporal.Temporal{}, temperr.NewParseError(0, "wire: instant payload must have exactly one observation")
		}
		return temporal.NewInstant(base, insts[0].T, insts[0].V)
	case temporal.InstantSet:
		insts, err := readInstants(r, order, base)
		if err != nil {
			return temporal.Temporal{}, err
		}
		return temporal.NewInstantSet(base, insts)
	case temporal.Sequence:
		insts, err := readInstants(r, order, base)
		if err != nil {
			return temporal.Temporal{}, err
		}
		return temporal.NewSequence(base, insts, flags.Has(FlagLowerInc), flags.Has(FlagUpperInc), flags.Has(FlagLinear))
	case temporal.SequenceSet:
		var n uint32
		if err := binary.Read(r, order, &n); err != nil {
			return temporal.Temporal{}, wrapReadErr(err)
		}
		seqs := make([]temporal.Temporal, 0, n)
		for i := uint32(0); i < n; i++ {
			sfb, err := r.ReadByte()
			if err != nil {
				return temporal.Temporal{}, wrapReadErr(err)
			}
			sflags := VariantFlags(sfb)
			logStrayTemporalFlags(sflags)
			insts, err := readInstants(r, order, base)
			if err != nil {
				return temporal.Temporal{}, err
			}
			seq, err := temporal.NewSequence(base, insts, sflags.Has(FlagLowerInc), sflags.Has(FlagUpperInc), sflags.Has(FlagLinear))
			if err != nil {
				return temporal.Temporal{}, err
			}
			seqs = append(seqs, seq)
		}
		return temporal.NewSequenceSet(base, seqs)
	default:
		return temporal.Temporal{}, temperr.NewParseError(0, "wire: unknown subtype in WKB payload")
	}
}

// temporalFlagMask is the set of variant flag bits a temporal WKB
// payload's flags byte actually uses (lower/upper inclusivity and
// linear interpolation). Bits 0, 1, 4, 5 and 6 belong to the box/point
// framing reused by this byte and have no meaning here; a sender that
// sets them anyway doesn't break decoding, since only the known bits
// are read, but it's worth a diagnostic rather than silent drift.
const temporalFlagMask = FlagLowerInc | FlagUpperInc | FlagLinear

func logStrayTemporalFlags(flags VariantFlags) {
	if stray := flags &^ temporalFlagMask; stray != 0 {
		diag.Logf("wire: ignoring unrecognized WKB variant flag bits 0x%02x in temporal payload", byte(stray))
	}
}

func readInstants(r *bytes.Reader, order binary.ByteOrder, base basetype.Tag) ([]temporal.Inst, error) {
	var n uint32
	if err := binary.Read(r, order, &n); err != nil {
		return nil, wrapReadErr(err)
	}
	out := make([]temporal.Inst, 0, n)
	for i := uint32(0); i < n; i++ {
		var ns int64
		if err := binary.Read(r, order, &ns); err != nil {
			return nil, wrapReadErr(err)
		}
		v, err := readValue(r, order, base)
		if err != nil {
			return nil, err
		}
		out = append(out, temporal.Inst{T: time.Unix(0, ns).UTC(), V: v})
	}
	return out, nil
}

// --- box WKB -------------------------------------------------------------

// EncodeTBoxWKB writes a TBox: endian, tag 14, presence-flags byte,
// optional X span payload, optional T span payload.
func EncodeTBoxWKB(b box.TBox, ndrEndian bool) ([]byte, error) {
	var buf bytes.Buffer
	order := writeHeader(&buf, TagTBox, ndrEndian)
	buf.WriteByte(byte(b.Flags))
	if b.HasX() {
		if err := writeSpanBody(&buf, order, b.X); err != nil {
			return nil, err
		}
	}
	if b.HasT() {
		if err := writeSpanBody(&buf, order, b.T); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeSpanBody(buf *bytes.Buffer, order binary.ByteOrder, s span.Span) error {
	buf.WriteByte(boundsFlags(s.LoInc, s.HiInc))
	if err := writeValue(buf, order, s.Lo); err != nil {
		return err
	}
	return writeValue(buf, order, s.Hi)
}

func readSpanBody(r *bytes.Reader, order binary.ByteOrder, base basetype.Tag) (span.Span, error) {
	fb, err := r.ReadByte()
	if err != nil {
		return span.Span{}, wrapReadErr(err)
	}
	lo, err := readValue(r, order, base)
	if err != nil {
		return span.Span{}, err
	}
	hi, err := readValue(r, order, base)
	if err != nil {
		return span.Span{}, err
	}
	return span.Make(base, lo, hi, fb&(1<<0) != 0, fb&(1<<1) != 0)
}

// DecodeTBoxWKB reads a TBox from WKB bytes.
func DecodeTBoxWKB(data []byte) (box.TBox, error) {
	r := bytes.NewReader(data)
	order, tag, err := readHeader(r)
	if err != nil {
		return box.TBox{}, err
	}
	if tag != TagTBox {
		return box.TBox{}, temperr.NewParseError(0, "wire: expected TBox tag, got %d", tag)
	}
	fb, err := r.ReadByte()
	if err != nil {
		return box.TBox{}, wrapReadErr(err)
	}
	flags := box.Flags(fb)
	var xp, tp *span.Span
	if flags.Has(box.FlagX) {
		x, err := readSpanBody(r, order, basetype.TagFloat8)
		if err != nil {
			return box.TBox{}, err
		}
		xp = &x
	}
	if flags.Has(box.FlagT) {
		t, err := readSpanBody(r, order, basetype.TagTimestamptz)
		if err != nil {
			return box.TBox{}, err
		}
		tp = &t
	}
	return box.MakeTBox(xp, tp)
}

// EncodeSTBoxWKB writes an STBox: endian, tag 12, presence-flags byte,
// SRID, optional XY span (4 floats), optional Z span (2 floats),
// optional T span.
func EncodeSTBoxWKB(b box.STBox, ndrEndian bool) ([]byte, error) {
	var buf bytes.Buffer
	order := writeHeader(&buf, TagSTBox, ndrEndian)
	buf.WriteByte(byte(b.Flags))
	if err := binary.Write(&buf, order, b.SRID); err != nil {
		return nil, err
	}
	if b.HasX() {
		for _, v := range []float64{b.XMin, b.YMin, b.XMax, b.YMax} {
			if err := binary.Write(&buf, order, v); err != nil {
				return nil, err
			}
		}
	}
	if b.HasZ() {
		for _, v := range []float64{b.ZMin, b.ZMax} {
			if err := binary.Write(&buf, order, v); err != nil {
				return nil, err
			}
		}
	}
	if b.HasT() {
		if err := writeSpanBody(&buf, order, b.T); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeSTBoxWKB reads an STBox from WKB bytes.
func DecodeSTBoxWKB(data []byte) (box.STBox, error) {
	r := bytes.NewReader(data)
	order, tag, err := readHeader(r)
	if err != nil {
		return box.STBox{}, err
	}
	if tag != TagSTBox {
		return box.STBox{}, temperr.NewParseError(0, "wire: expected STBox tag, got %d", tag)
	}
	fb, err := r.ReadByte()
	if err != nil {
		return box.STBox{}, wrapReadErr(err)
	}
	flags := box.Flags(fb)
	var srid int32
	if err := binary.Read(r, order, &srid); err != nil {
		return box.STBox{}, wrapReadErr(err)
	}
	var xmin, ymin, xmax, ymax, zmin, zmax float64
	if flags.Has(box.FlagX) {
		vals := make([]float64, 4)
		for i := range vals {
			if err := binary.Read(r, order, &vals[i]); err != nil {
				return box.STBox{}, wrapReadErr(err)
			}
		}
		xmin, ymin, xmax, ymax = vals[0], vals[1], vals[2], vals[3]
	}
	if flags.Has(box.FlagZ) {
		if err := binary.Read(r, order, &zmin); err != nil {
			return box.STBox{}, wrapReadErr(err)
		}
		if err := binary.Read(r, order, &zmax); err != nil {
			return box.STBox{}, wrapReadErr(err)
		}
	}
	var tp *span.Span
	if flags.Has(box.FlagT) {
		t, err := readSpanBody(r, order, basetype.TagTimestamptz)
		if err != nil {
			return box.STBox{}, err
		}
		tp = &t
	}
	return box.MakeSTBox(flags.Has(box.FlagX), xmin, ymin, xmax, ymax, flags.Has(box.FlagZ), zmin, zmax, tp, srid, flags.Has(box.FlagGeodetic))
}

// --- HexWKB --------------------------------------------------------------

// ToHexWKB uppercase-hex-encodes wkb, matching the common convention for
// textual transport of binary geometry payloads (spec.md §6 "HexWKB is
// WKB encoded as ASCII hex").
func ToHexWKB(wkb []byte) string {
	return strings.ToUpper(hex.EncodeToString(wkb))
}

// FromHexWKB decodes a (case-insensitive) hex string back to raw WKB bytes.
func FromHexWKB(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, temperr.NewParseError(0, "wire: invalid hexwkb: %v", err)
	}
	return b, nil
}

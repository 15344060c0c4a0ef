// Package wire implements the L6 interface layer (spec.md §6): textual and
// binary (WKB/HexWKB) constructors and output functions, plus MF-JSON
// emission for spatiotemporal values. The SQL parsing and varlena framing
// themselves stay out of scope (spec.md §1); this package only produces and
// consumes the byte/text payloads a thin wrapper would forward.
//
// Grounded on original_source/mobilitydb/src/general/type_in.c,
// meos/src/temporal/type_in_meos.c, mobilitydb/src/temporal/type_out.c,
// meos/src/geo/tgeo_out.c, and the tag table in include/libmeos.h.
package wire

import (
	"fmt"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/temperr"
	"github.com/banshee-data/temporalgeo/internal/temporal"
)

// Tag is the WKB/HexWKB framing type tag: one byte identifying what
// payload follows the endian and flags bytes. spec.md §6 enumerates the
// twelve tags exercised by the worked examples verbatim; the remaining
// values fill out the full (basetype, subtype) product SPEC_FULL.md §C.5
// asks for, keyed the same way tempcache.h's temptype_basetype cache keys
// its lookup — by the pair, not by a flat name.
type Tag uint8

const (
	TagInvalid Tag = 0

	// Scalars and spans — spec.md §6's literal table.
	TagBool      Tag = 1
	TagFloat8    Tag = 5
	TagFloatSpan Tag = 6
	TagInt4      Tag = 7
	TagIntSpan   Tag = 8
	TagPeriod    Tag = 10
	TagPeriodSet Tag = 11
	TagSTBox     Tag = 12
	TagTBool     Tag = 13
	TagTBox      Tag = 14
	TagTFloat    Tag = 19
	TagTInt      Tag = 22

	// Sets — not in spec.md's partial table; extension following the same
	// numbering discipline (values spec.md leaves unused). The WKB writers
	// in wkb.go emit neither these set tags nor TagPeriodSet: a set or
	// span-set is framed as its element's tag with setBit (0x80) added, so
	// an int set goes out as 0x87 and a period set as 0x8A.
	TagBoolSet  Tag = 2
	TagIntSet   Tag = 3
	TagFloatSet Tag = 4
	TagTextSet  Tag = 9

	TagTimestampSet Tag = 15
	TagDateSpan     Tag = 16
	TagGeomSet      Tag = 17
	TagText         Tag = 18

	// Temporal point/text/date types.
	TagTGeomPoint Tag = 20
	TagTGeogPoint Tag = 21
	TagTText      Tag = 23
	TagTDate      Tag = 24

	// Supplemented base types (SPEC_FULL.md §C.1, §C.2).
	TagNpoint    Tag = 25
	TagNsegment  Tag = 26
	TagCbuffer   Tag = 27
	TagTNpoint   Tag = 28
	TagTCbuffer  Tag = 29
	TagTimestamp Tag = 30 // bare timestamptz scalar, not wrapped in a span
	TagDate      Tag = 31
)

// scalarTagOf maps a base.Tag to the WKB tag used for a bare scalar of
// that base; baseOfScalarTag maps back. Built once; read-only thereafter (spec.md §9
// "Global state").
var scalarTagOf = map[basetype.Tag]Tag{
	basetype.TagBool:        TagBool,
	basetype.TagInt4:        TagInt4,
	basetype.TagFloat8:      TagFloat8,
	basetype.TagText:        TagText,
	basetype.TagTimestamptz: TagTimestamp,
	basetype.TagDate:        TagDate,
	basetype.TagNpoint:      TagNpoint,
	basetype.TagNsegment:    TagNsegment,
	basetype.TagCbuffer:     TagCbuffer,
}

var baseOfScalarTag = invertTagMap(scalarTagOf)

func invertTagMap(m map[basetype.Tag]Tag) map[Tag]basetype.Tag {
	out := make(map[Tag]basetype.Tag, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// ScalarTag returns the WKB tag for a bare value of base, or an error if
// base has no scalar tag registered (geom/geog scalars are only ever
// framed as part of a temporal-point payload in this engine, per spec.md
// §1's treatment of the geometry library as an external collaborator).
func ScalarTag(base basetype.Tag) (Tag, error) {
	t, ok := scalarTagOf[base]
	if !ok {
		return TagInvalid, temperr.Wrap(temperr.ErrDomainMismatch, fmt.Sprintf("wire: no scalar WKB tag for base %s", base))
	}
	return t, nil
}

// temporalTagOf maps a base.Tag to the WKB tag identifying a temporal
// value over that base (tbool, tint, tfloat, ...), independent of subtype
// (subtype travels in its own payload byte, spec.md §6).
var temporalTagOf = map[basetype.Tag]Tag{
	basetype.TagBool:        TagTBool,
	basetype.TagInt4:        TagTInt,
	basetype.TagFloat8:      TagTFloat,
	basetype.TagText:        TagTText,
	basetype.TagDate:        TagTDate,
	basetype.TagGeom:        TagTGeomPoint,
	basetype.TagGeog:        TagTGeogPoint,
	basetype.TagNpoint:      TagTNpoint,
	basetype.TagCbuffer:     TagTCbuffer,
}

var baseOfTemporalTag = invertTagMap(temporalTagOf)

// TemporalTag returns the WKB tag for a temporal value over base.
func TemporalTag(base basetype.Tag) (Tag, error) {
	t, ok := temporalTagOf[base]
	if !ok {
		return TagInvalid, temperr.Wrap(temperr.ErrDomainMismatch, fmt.Sprintf("wire: no temporal WKB tag for base %s", base))
	}
	return t, nil
}

// BaseOfTemporalTag is TemporalTag's inverse, used by the WKB reader to
// recover which base descriptor to dispatch value decoding to.
func BaseOfTemporalTag(tag Tag) (basetype.Tag, error) {
	b, ok := baseOfTemporalTag[tag]
	if !ok {
		return basetype.TagInvalid, temperr.NewParseError(0, "wire: unknown temporal tag %d", tag)
	}
	return b, nil
}

// SubtypeByte is the WKB payload's subtype discriminator (spec.md §6:
// "Subtype 1=Instant, 2=InstantSet, 3=Sequence, 4=SequenceSet").
func SubtypeByte(s temporal.Subtype) (byte, error) {
	switch s {
	case temporal.Instant:
		return 1, nil
	case temporal.InstantSet:
		return 2, nil
	case temporal.Sequence:
		return 3, nil
	case temporal.SequenceSet:
		return 4, nil
	default:
		return 0, temperr.Wrap(temperr.ErrDomainMismatch, "wire: unknown temporal subtype")
	}
}

// SubtypeFromByte is SubtypeByte's inverse.
func SubtypeFromByte(b byte) (temporal.Subtype, error) {
	switch b {
	case 1:
		return temporal.Instant, nil
	case 2:
		return temporal.InstantSet, nil
	case 3:
		return temporal.Sequence, nil
	case 4:
		return temporal.SequenceSet, nil
	default:
		return 0, temperr.NewParseError(0, "wire: unknown subtype byte %d", b)
	}
}

// Variant flag bits, spec.md §6: "variant flags byte (bit 0 = has-X, bit 1
// = has-T, bit 4 = has-Z, bit 5 = geodetic, bit 6 = has-SRID, bit 7 =
// linear-interpolation)". Bits 2 and 3 are unused by spec.md's box framing
// and are repurposed here, for temporal sequence payloads only, to carry
// the period's lower/upper inclusivity (spec.md §6 "Period bounds byte
// bits: 0=lower_inc, 1=upper_inc" — folded into the same byte rather than
// a second one, since a temporal payload has no separate box-flags byte).
type VariantFlags uint8

const (
	FlagHasX      VariantFlags = 1 << 0
	FlagHasT      VariantFlags = 1 << 1
	FlagLowerInc  VariantFlags = 1 << 2
	FlagUpperInc  VariantFlags = 1 << 3
	FlagHasZ      VariantFlags = 1 << 4
	FlagGeodetic  VariantFlags = 1 << 5
	FlagHasSRID   VariantFlags = 1 << 6
	FlagLinear    VariantFlags = 1 << 7
)

func (f VariantFlags) Has(bit VariantFlags) bool { return f&bit != 0 }

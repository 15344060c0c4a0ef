package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/temperr"
	"github.com/banshee-data/temporalgeo/internal/temporal"
)

// mfjsonDoc mirrors the OGC Moving Features JSON "MovingPoint" shape
// (spec.md §6 "MF-JSON emission for spatiotemporal values"): a
// coordinates array parallel to a datetimes array, one entry per
// instant, with interpolation carried as its own field.
type mfjsonDoc struct {
	Type           string          `json:"type"`
	Coordinates    [][]float64     `json:"coordinates,omitempty"`
	Datetimes      []string        `json:"datetimes,omitempty"`
	Sequences      []mfjsonSeqPart `json:"sequences,omitempty"`
	Interpolations []string        `json:"interpolations,omitempty"`
	CRS            *mfjsonCRS      `json:"crs,omitempty"`
}

type mfjsonSeqPart struct {
	Coordinates [][]float64 `json:"coordinates"`
	Datetimes   []string    `json:"datetimes"`
	LowerInc    bool        `json:"lower_inc"`
	UpperInc    bool        `json:"upper_inc"`
}

type mfjsonCRS struct {
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
}

// TemporalToMFJSON encodes a temporal point (tgeompoint/tgeogpoint) in
// OGC Moving Features JSON. Only point-valued temporals carry coordinate
// geometry; other bases are rejected since MF-JSON's coordinate model has
// no analogue for, say, a tint or a tnpoint (spec.md §1 scopes this
// package to "spatiotemporal values").
func TemporalToMFJSON(t temporal.Temporal) ([]byte, error) {
	if t.Base != basetype.TagGeom && t.Base != basetype.TagGeog {
		return nil, temperr.Wrap(temperr.ErrDomainMismatch, "wire: MF-JSON requires a temporal point, got base "+t.Base.String())
	}

	doc := mfjsonDoc{}
	switch t.Subtype {
	case temporal.Instant, temporal.InstantSet:
		doc.Type = "MovingPoint"
		coords, times, err := instantsToMFJSON(t.Base, t.Instants)
		if err != nil {
			return nil, err
		}
		doc.Coordinates = coords
		doc.Datetimes = times
		doc.Interpolations = []string{"None"}
	case temporal.Sequence:
		doc.Type = "MovingPoint"
		coords, times, err := instantsToMFJSON(t.Base, t.Instants)
		if err != nil {
			return nil, err
		}
		doc.Coordinates = coords
		doc.Datetimes = times
		doc.Interpolations = []string{interpolationName(t.Interp)}
	case temporal.SequenceSet:
		doc.Type = "MovingPoint"
		doc.Interpolations = []string{interpolationName(t.Interp)}
		for _, seq := range t.Sequences {
			coords, times, err := instantsToMFJSON(seq.Base, seq.Instants)
			if err != nil {
				return nil, err
			}
			doc.Sequences = append(doc.Sequences, mfjsonSeqPart{
				Coordinates: coords,
				Datetimes:   times,
				LowerInc:    seq.LowerInc,
				UpperInc:    seq.UpperInc,
			})
		}
	default:
		return nil, temperr.Wrap(temperr.ErrInvariantViolated, "wire: unknown temporal subtype for MF-JSON")
	}

	if srid := sridOf(t); srid != 0 {
		doc.CRS = &mfjsonCRS{
			Type:       "name",
			Properties: map[string]string{"name": fmt.Sprintf("urn:ogc:def:crs:EPSG::%d", srid)},
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, temperr.Wrap(temperr.ErrArithmetic, "wire: MF-JSON encode: "+err.Error())
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func instantsToMFJSON(base basetype.Tag, insts []temporal.Inst) ([][]float64, []string, error) {
	coords := make([][]float64, 0, len(insts))
	times := make([]string, 0, len(insts))
	for _, inst := range insts {
		c, err := pointCoords(base, inst.V)
		if err != nil {
			return nil, nil, err
		}
		coords = append(coords, c)
		times = append(times, inst.T.UTC().Format(time.RFC3339Nano))
	}
	return coords, times, nil
}

func pointCoords(base basetype.Tag, v basetype.Datum) ([]float64, error) {
	switch base {
	case basetype.TagGeom:
		p, ok := v.V.(basetype.GeomPoint)
		if !ok {
			return nil, temperr.Wrap(temperr.ErrDomainMismatch, "wire: expected GeomPoint value")
		}
		if p.HasZ {
			return []float64{p.X, p.Y, p.Z}, nil
		}
		return []float64{p.X, p.Y}, nil
	case basetype.TagGeog:
		p, ok := v.V.(basetype.GeogPoint)
		if !ok {
			return nil, temperr.Wrap(temperr.ErrDomainMismatch, "wire: expected GeogPoint value")
		}
		if p.HasZ {
			return []float64{p.Lon, p.Lat, p.Z}, nil
		}
		return []float64{p.Lon, p.Lat}, nil
	default:
		return nil, temperr.Wrap(temperr.ErrDomainMismatch, "wire: MF-JSON point coords: unsupported base "+base.String())
	}
}

func sridOf(t temporal.Temporal) int32 {
	insts := temporal.AllInstants(t)
	if len(insts) == 0 {
		return 0
	}
	switch t.Base {
	case basetype.TagGeom:
		if p, ok := insts[0].V.V.(basetype.GeomPoint); ok {
			return p.SRID
		}
	case basetype.TagGeog:
		if p, ok := insts[0].V.V.(basetype.GeogPoint); ok {
			return p.SRID
		}
	}
	return 0
}

func interpolationName(i temporal.Interpolation) string {
	switch i {
	case temporal.Linear:
		return "Linear"
	case temporal.Step:
		return "Stepwise"
	default:
		return "Discrete"
	}
}

// TemporalFromMFJSON decodes an MF-JSON MovingPoint document back into a
// Temporal. A "sequences" array becomes one sequence per part, with each
// part's lower_inc/upper_inc, and a sequence-set when there are several
// parts. A top-level coordinates array becomes an instant, an instant-set
// (discrete) or a sequence with both bounds inclusive; SRIDs are not read
// back.
func TemporalFromMFJSON(base basetype.Tag, data []byte) (temporal.Temporal, error) {
	var doc mfjsonDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return temporal.Temporal{}, temperr.NewParseError(0, "wire: MF-JSON decode: %v", err)
	}
	interp := temporal.Discrete
	if len(doc.Interpolations) > 0 {
		switch doc.Interpolations[0] {
		case "Linear":
			interp = temporal.Linear
		case "Stepwise":
			interp = temporal.Step
		}
	}

	if len(doc.Sequences) > 0 {
		seqs := make([]temporal.Temporal, 0, len(doc.Sequences))
		for _, part := range doc.Sequences {
			insts, err := mfjsonInstants(base, part.Coordinates, part.Datetimes)
			if err != nil {
				return temporal.Temporal{}, err
			}
			seq, err := temporal.NewSequence(base, insts, part.LowerInc, part.UpperInc, interp == temporal.Linear)
			if err != nil {
				return temporal.Temporal{}, err
			}
			seqs = append(seqs, seq)
		}
		if len(seqs) == 1 {
			return seqs[0], nil
		}
		return temporal.NewSequenceSet(base, seqs)
	}

	insts, err := mfjsonInstants(base, doc.Coordinates, doc.Datetimes)
	if err != nil {
		return temporal.Temporal{}, err
	}
	if len(insts) == 1 {
		return temporal.NewInstant(base, insts[0].T, insts[0].V)
	}
	if interp == temporal.Discrete {
		return temporal.NewInstantSet(base, insts)
	}
	return temporal.NewSequence(base, insts, true, true, interp == temporal.Linear)
}

func mfjsonInstants(base basetype.Tag, coords [][]float64, times []string) ([]temporal.Inst, error) {
	if len(coords) != len(times) {
		return nil, temperr.Wrap(temperr.ErrInvariantViolated, "wire: MF-JSON coordinates/datetimes length mismatch")
	}
	insts := make([]temporal.Inst, 0, len(coords))
	for i, c := range coords {
		t, err := time.Parse(time.RFC3339Nano, times[i])
		if err != nil {
			return nil, temperr.NewParseError(0, "wire: MF-JSON datetime: %v", err)
		}
		v, err := datumFromCoords(base, c)
		if err != nil {
			return nil, err
		}
		insts = append(insts, temporal.Inst{T: t, V: v})
	}
	return insts, nil
}

func datumFromCoords(base basetype.Tag, c []float64) (basetype.Datum, error) {
	switch base {
	case basetype.TagGeom:
		p := basetype.GeomPoint{X: c[0], Y: c[1]}
		if len(c) > 2 {
			p.Z, p.HasZ = c[2], true
		}
		return basetype.Datum{Tag: basetype.TagGeom, V: p}, nil
	case basetype.TagGeog:
		p := basetype.GeogPoint{Lon: c[0], Lat: c[1]}
		if len(c) > 2 {
			p.Z, p.HasZ = c[2], true
		}
		return basetype.Datum{Tag: basetype.TagGeog, V: p}, nil
	default:
		return basetype.Datum{}, temperr.Wrap(temperr.ErrDomainMismatch, "wire: MF-JSON point coords: unsupported base "+base.String())
	}
}

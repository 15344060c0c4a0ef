package basetype

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func geomDescriptor() *Descriptor {
	return &Descriptor{
		Tag:          TagGeom,
		IsByValue:    false,
		IsOrdered:    false,
		IsContinuous: true, // supports linear (affine) interpolation
		IsSpatial:    true,
		Cmp: func(a, b Datum) int {
			// Points have no natural total order; lexicographic on
			// (X, Y, Z) gives a stable, deterministic one for set/sort use
			// (e.g. Set construction over tgeompoint values is rare but
			// must still be well-defined).
			av, bv := a.V.(GeomPoint), b.V.(GeomPoint)
			if c := cmpFloat(av.X, bv.X); c != 0 {
				return c
			}
			if c := cmpFloat(av.Y, bv.Y); c != 0 {
				return c
			}
			return cmpFloat(av.Z, bv.Z)
		},
		Eq: func(a, b Datum) bool {
			av, bv := a.V.(GeomPoint), b.V.(GeomPoint)
			return av.X == bv.X && av.Y == bv.Y && av.Z == bv.Z && av.HasZ == bv.HasZ && av.SRID == bv.SRID
		},
		Hash: func(a Datum) uint64 {
			p := a.V.(GeomPoint)
			return math.Float64bits(p.X) ^ (math.Float64bits(p.Y) << 1) ^ (math.Float64bits(p.Z) << 2)
		},
		Distance: func(a, b Datum) float64 { return GeomDistance(a.V.(GeomPoint), b.V.(GeomPoint)) },
		InputFromText: func(s string) (Datum, error) {
			p, err := parsePointText(s)
			if err != nil {
				return Datum{}, fmt.Errorf("basetype: parse geom point %q: %w", s, err)
			}
			return Datum{Tag: TagGeom, V: p}, nil
		},
		OutputToText: func(d Datum, maxDecimalDigits int) string {
			p := d.V.(GeomPoint)
			return formatPointText(p.X, p.Y, p.Z, p.HasZ, maxDecimalDigits)
		},
	}
}

func geogDescriptor() *Descriptor {
	return &Descriptor{
		Tag:          TagGeog,
		IsByValue:    false,
		IsOrdered:    false,
		IsContinuous: true,
		IsSpatial:    true,
		Cmp: func(a, b Datum) int {
			av, bv := a.V.(GeogPoint), b.V.(GeogPoint)
			if c := cmpFloat(av.Lon, bv.Lon); c != 0 {
				return c
			}
			return cmpFloat(av.Lat, bv.Lat)
		},
		Eq: func(a, b Datum) bool {
			av, bv := a.V.(GeogPoint), b.V.(GeogPoint)
			return av.Lon == bv.Lon && av.Lat == bv.Lat && av.Z == bv.Z
		},
		Hash: func(a Datum) uint64 {
			p := a.V.(GeogPoint)
			return math.Float64bits(p.Lon) ^ (math.Float64bits(p.Lat) << 1)
		},
		Distance: func(a, b Datum) float64 { return GeogDistance(a.V.(GeogPoint), b.V.(GeogPoint)) },
		InputFromText: func(s string) (Datum, error) {
			p, err := parsePointText(s)
			if err != nil {
				return Datum{}, fmt.Errorf("basetype: parse geog point %q: %w", s, err)
			}
			return Datum{Tag: TagGeog, V: GeogPoint{Lon: p.X, Lat: p.Y, Z: p.Z, HasZ: p.HasZ, SRID: p.SRID}}, nil
		},
		OutputToText: func(d Datum, maxDecimalDigits int) string {
			p := d.V.(GeogPoint)
			return formatPointText(p.Lon, p.Lat, p.Z, p.HasZ, maxDecimalDigits)
		},
	}
}

// GeomDistance is the planar Euclidean distance between two points,
// 3-D if either carries a Z.
func GeomDistance(a, b GeomPoint) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	if a.HasZ || b.HasZ {
		dz := a.Z - b.Z
		return math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return math.Sqrt(dx*dx + dy*dy)
}

const earthRadiusMeters = 6371008.8

// GeogDistance is the great-circle (haversine) distance in meters. This is
// a deliberately simple stand-in for the external geometry library's
// geodesic routines (spec.md §1 places SRID/projection handling out of
// scope; a concrete distance function is still needed for the algebra).
func GeogDistance(a, b GeogPoint) float64 {
	lat1, lat2 := a.Lat*math.Pi/180, b.Lat*math.Pi/180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// parsePointText parses "X Y" or "X Y Z" (the payload of a canonical
// "Point(x y[ z])@t" instant literal, minus the surrounding "Point(...)").
func parsePointText(s string) (GeomPoint, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Point(")
	s = strings.TrimPrefix(s, "POINT(")
	s = strings.TrimSuffix(s, ")")
	fields := strings.Fields(s)
	if len(fields) < 2 || len(fields) > 3 {
		return GeomPoint{}, fmt.Errorf("expected \"x y\" or \"x y z\", got %q", s)
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return GeomPoint{}, err
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return GeomPoint{}, err
	}
	p := GeomPoint{X: x, Y: y}
	if len(fields) == 3 {
		z, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return GeomPoint{}, err
		}
		p.Z, p.HasZ = z, true
	}
	return p, nil
}

func formatPointText(x, y, z float64, hasZ bool, maxDecimalDigits int) string {
	prec := maxDecimalDigits
	if prec < 0 {
		prec = 6
	}
	if hasZ {
		return fmt.Sprintf("Point(%s %s %s)",
			strconv.FormatFloat(x, 'f', prec, 64),
			strconv.FormatFloat(y, 'f', prec, 64),
			strconv.FormatFloat(z, 'f', prec, 64))
	}
	return fmt.Sprintf("Point(%s %s)",
		strconv.FormatFloat(x, 'f', prec, 64),
		strconv.FormatFloat(y, 'f', prec, 64))
}

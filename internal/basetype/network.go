package basetype

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func npointDescriptor() *Descriptor {
	return &Descriptor{
		Tag:          TagNpoint,
		IsByValue:    true,
		IsOrdered:    true, // ordered within one route by Pos; cross-route order is by (RouteID, Pos)
		IsContinuous: true,
		IsSpatial:    true,
		Cmp: func(a, b Datum) int {
			av, bv := a.V.(NPoint), b.V.(NPoint)
			if av.RouteID != bv.RouteID {
				if av.RouteID < bv.RouteID {
					return -1
				}
				return 1
			}
			return cmpFloat(av.Pos, bv.Pos)
		},
		Eq: func(a, b Datum) bool { return a.V.(NPoint) == b.V.(NPoint) },
		Hash: func(a Datum) uint64 {
			p := a.V.(NPoint)
			return uint64(p.RouteID)*31 ^ math.Float64bits(p.Pos)
		},
		Distance: func(a, b Datum) float64 {
			av, bv := a.V.(NPoint), b.V.(NPoint)
			if av.RouteID != bv.RouteID {
				// Without a route resolver the only meaningful distance
				// across routes is "different", represented as +Inf so
				// index/ever-always short circuits treat it as unreachable
				// rather than silently comparing unrelated routes.
				return math.Inf(1)
			}
			return math.Abs(av.Pos - bv.Pos)
		},
		InputFromText: func(s string) (Datum, error) {
			p, err := parseNPointText(s)
			if err != nil {
				return Datum{}, fmt.Errorf("basetype: parse npoint %q: %w", s, err)
			}
			return Datum{Tag: TagNpoint, V: p}, nil
		},
		OutputToText: func(d Datum, _ int) string {
			p := d.V.(NPoint)
			return fmt.Sprintf("NPoint(%d, %s)", p.RouteID, strconv.FormatFloat(p.Pos, 'f', -1, 64))
		},
	}
}

func nsegmentDescriptor() *Descriptor {
	return &Descriptor{
		Tag:       TagNsegment,
		IsByValue: true,
		IsOrdered: true,
		IsSpatial: true,
		Cmp: func(a, b Datum) int {
			av, bv := a.V.(NSegment), b.V.(NSegment)
			if av.RouteID != bv.RouteID {
				if av.RouteID < bv.RouteID {
					return -1
				}
				return 1
			}
			if c := cmpFloat(av.PosStart, bv.PosStart); c != 0 {
				return c
			}
			return cmpFloat(av.PosEnd, bv.PosEnd)
		},
		Eq: func(a, b Datum) bool { return a.V.(NSegment) == b.V.(NSegment) },
		Hash: func(a Datum) uint64 {
			s := a.V.(NSegment)
			return uint64(s.RouteID)*31 ^ math.Float64bits(s.PosStart) ^ (math.Float64bits(s.PosEnd) << 1)
		},
		Distance: func(a, b Datum) float64 {
			av, bv := a.V.(NSegment), b.V.(NSegment)
			if av.RouteID != bv.RouteID {
				return math.Inf(1)
			}
			if av.PosEnd < bv.PosStart {
				return bv.PosStart - av.PosEnd
			}
			if bv.PosEnd < av.PosStart {
				return av.PosStart - bv.PosEnd
			}
			return 0
		},
		OutputToText: func(d Datum, _ int) string {
			s := d.V.(NSegment)
			return fmt.Sprintf("NSegment(%d, %s, %s)", s.RouteID,
				strconv.FormatFloat(s.PosStart, 'f', -1, 64),
				strconv.FormatFloat(s.PosEnd, 'f', -1, 64))
		},
	}
}

func cbufferDescriptor() *Descriptor {
	return &Descriptor{
		Tag:       TagCbuffer,
		IsByValue: false,
		IsOrdered: false,
		IsSpatial: true,
		Cmp: func(a, b Datum) int {
			av, bv := a.V.(CBuffer), b.V.(CBuffer)
			if c := cmpFloat(av.Center.X, bv.Center.X); c != 0 {
				return c
			}
			if c := cmpFloat(av.Center.Y, bv.Center.Y); c != 0 {
				return c
			}
			return cmpFloat(av.Radius, bv.Radius)
		},
		Eq: func(a, b Datum) bool {
			av, bv := a.V.(CBuffer), b.V.(CBuffer)
			return av.Center == bv.Center && av.Radius == bv.Radius
		},
		Hash: func(a Datum) uint64 {
			c := a.V.(CBuffer)
			return math.Float64bits(c.Center.X) ^ math.Float64bits(c.Center.Y) ^ math.Float64bits(c.Radius)
		},
		Distance: func(a, b Datum) float64 {
			av, bv := a.V.(CBuffer), b.V.(CBuffer)
			centerDist := GeomDistance(av.Center, bv.Center)
			d := centerDist - av.Radius - bv.Radius
			if d < 0 {
				return 0
			}
			return d
		},
		OutputToText: func(d Datum, maxDecimalDigits int) string {
			c := d.V.(CBuffer)
			prec := maxDecimalDigits
			if prec < 0 {
				prec = 6
			}
			return fmt.Sprintf("Cbuffer(Point(%s %s), %s)",
				strconv.FormatFloat(c.Center.X, 'f', prec, 64),
				strconv.FormatFloat(c.Center.Y, 'f', prec, 64),
				strconv.FormatFloat(c.Radius, 'f', prec, 64))
		},
	}
}

// Expand returns the axis-aligned bounding box (xmin, ymin, xmax, ymax) of
// a circular buffer: its center expanded by radius per axis.
func (c CBuffer) Expand() (xmin, ymin, xmax, ymax float64) {
	return c.Center.X - c.Radius, c.Center.Y - c.Radius, c.Center.X + c.Radius, c.Center.Y + c.Radius
}

func parseNPointText(s string) (NPoint, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "NPoint(")
	s = strings.TrimSuffix(s, ")")
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return NPoint{}, fmt.Errorf("expected \"route, pos\", got %q", s)
	}
	route, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return NPoint{}, err
	}
	pos, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return NPoint{}, err
	}
	if pos < 0 || pos > 1 {
		return NPoint{}, fmt.Errorf("position %v out of range [0,1]", pos)
	}
	return NPoint{RouteID: route, Pos: pos}, nil
}

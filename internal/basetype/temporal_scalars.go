package basetype

import (
	"fmt"
	"time"
)

func timestamptzDescriptor() *Descriptor {
	return &Descriptor{
		Tag:          TagTimestamptz,
		IsByValue:    true,
		IsOrdered:    true,
		IsContinuous: false, // time itself is ordered, not a number you add/sub like a float
		Cmp: func(a, b Datum) int {
			av, bv := a.V.(time.Time), b.V.(time.Time)
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			default:
				return 0
			}
		},
		Eq:   func(a, b Datum) bool { return a.V.(time.Time).Equal(b.V.(time.Time)) },
		Hash: func(a Datum) uint64 { return uint64(a.V.(time.Time).UnixNano()) },
		Distance: func(a, b Datum) float64 {
			d := a.V.(time.Time).Sub(b.V.(time.Time)).Seconds()
			if d < 0 {
				d = -d
			}
			return d
		},
		InputFromText: func(s string) (Datum, error) {
			v, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return Datum{}, fmt.Errorf("basetype: parse timestamptz %q: %w", s, err)
			}
			return Datum{Tag: TagTimestamptz, V: v}, nil
		},
		OutputToText: func(d Datum, _ int) string { return d.V.(time.Time).Format(time.RFC3339Nano) },
	}
}

func dateDescriptor() *Descriptor {
	const layout = "2006-01-02"
	return &Descriptor{
		Tag:          TagDate,
		IsByValue:    true,
		IsOrdered:    true,
		IsContinuous: false,
		Cmp: func(a, b Datum) int {
			av, bv := a.V.(time.Time), b.V.(time.Time)
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			default:
				return 0
			}
		},
		Eq:   func(a, b Datum) bool { return a.V.(time.Time).Equal(b.V.(time.Time)) },
		Hash: func(a Datum) uint64 { return uint64(a.V.(time.Time).Unix()) },
		Distance: func(a, b Datum) float64 {
			d := a.V.(time.Time).Sub(b.V.(time.Time)).Hours() / 24
			if d < 0 {
				d = -d
			}
			return d
		},
		InputFromText: func(s string) (Datum, error) {
			v, err := time.Parse(layout, s)
			if err != nil {
				return Datum{}, fmt.Errorf("basetype: parse date %q: %w", s, err)
			}
			return Datum{Tag: TagDate, V: v}, nil
		},
		OutputToText: func(d Datum, _ int) string { return d.V.(time.Time).Format(layout) },
	}
}

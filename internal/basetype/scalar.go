package basetype

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
)

func boolDescriptor() *Descriptor {
	return &Descriptor{
		Tag:          TagBool,
		IsByValue:    true,
		IsOrdered:    true,
		IsContinuous: false,
		Cmp: func(a, b Datum) int {
			av, bv := a.V.(bool), b.V.(bool)
			if av == bv {
				return 0
			}
			if !av && bv {
				return -1
			}
			return 1
		},
		Eq: func(a, b Datum) bool { return a.V.(bool) == b.V.(bool) },
		Hash: func(a Datum) uint64 {
			if a.V.(bool) {
				return 1
			}
			return 0
		},
		Distance: func(a, b Datum) float64 {
			if a.V.(bool) == b.V.(bool) {
				return 0
			}
			return 1
		},
		InputFromText: func(s string) (Datum, error) {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return Datum{}, fmt.Errorf("basetype: parse bool %q: %w", s, err)
			}
			return Datum{Tag: TagBool, V: v}, nil
		},
		OutputToText: func(d Datum, _ int) string { return strconv.FormatBool(d.V.(bool)) },
	}
}

func int4Descriptor() *Descriptor {
	return &Descriptor{
		Tag:          TagInt4,
		IsByValue:    true,
		IsOrdered:    true,
		IsContinuous: false,
		IsNumber:     true,
		Cmp: func(a, b Datum) int {
			av, bv := a.V.(int32), b.V.(int32)
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		},
		Eq:   func(a, b Datum) bool { return a.V.(int32) == b.V.(int32) },
		Hash: func(a Datum) uint64 { return uint64(uint32(a.V.(int32))) },
		Add: func(a, b Datum) (Datum, error) {
			return Datum{Tag: TagInt4, V: a.V.(int32) + b.V.(int32)}, nil
		},
		Sub: func(a, b Datum) (Datum, error) {
			return Datum{Tag: TagInt4, V: a.V.(int32) - b.V.(int32)}, nil
		},
		Mul: func(a, b Datum) (Datum, error) {
			return Datum{Tag: TagInt4, V: a.V.(int32) * b.V.(int32)}, nil
		},
		Div: func(a, b Datum) (Datum, error) {
			bv := b.V.(int32)
			if bv == 0 {
				return Datum{}, fmt.Errorf("basetype: int4 division by zero")
			}
			return Datum{Tag: TagInt4, V: a.V.(int32) / bv}, nil
		},
		Distance: func(a, b Datum) float64 {
			d := int64(a.V.(int32)) - int64(b.V.(int32))
			if d < 0 {
				d = -d
			}
			return float64(d)
		},
		InputFromText: func(s string) (Datum, error) {
			v, err := strconv.ParseInt(s, 10, 32)
			if err != nil {
				return Datum{}, fmt.Errorf("basetype: parse int4 %q: %w", s, err)
			}
			return Datum{Tag: TagInt4, V: int32(v)}, nil
		},
		OutputToText: func(d Datum, _ int) string { return strconv.FormatInt(int64(d.V.(int32)), 10) },
	}
}

func float8Descriptor() *Descriptor {
	return &Descriptor{
		Tag:          TagFloat8,
		IsByValue:    true,
		IsOrdered:    true,
		IsContinuous: true,
		IsNumber:     true,
		Cmp: func(a, b Datum) int {
			av, bv := a.V.(float64), b.V.(float64)
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		},
		Eq:   func(a, b Datum) bool { return a.V.(float64) == b.V.(float64) },
		Hash: func(a Datum) uint64 { return math.Float64bits(a.V.(float64)) },
		Add: func(a, b Datum) (Datum, error) {
			return Datum{Tag: TagFloat8, V: a.V.(float64) + b.V.(float64)}, nil
		},
		Sub: func(a, b Datum) (Datum, error) {
			return Datum{Tag: TagFloat8, V: a.V.(float64) - b.V.(float64)}, nil
		},
		Mul: func(a, b Datum) (Datum, error) {
			return Datum{Tag: TagFloat8, V: a.V.(float64) * b.V.(float64)}, nil
		},
		Div: func(a, b Datum) (Datum, error) {
			bv := b.V.(float64)
			if bv == 0 {
				return Datum{}, fmt.Errorf("basetype: float8 division by zero")
			}
			return Datum{Tag: TagFloat8, V: a.V.(float64) / bv}, nil
		},
		Distance: func(a, b Datum) float64 {
			return math.Abs(a.V.(float64) - b.V.(float64))
		},
		InputFromText: func(s string) (Datum, error) {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return Datum{}, fmt.Errorf("basetype: parse float8 %q: %w", s, err)
			}
			return Datum{Tag: TagFloat8, V: v}, nil
		},
		OutputToText: func(d Datum, maxDecimalDigits int) string {
			if maxDecimalDigits < 0 {
				maxDecimalDigits = -1
			}
			return strconv.FormatFloat(d.V.(float64), 'f', maxDecimalDigits, 64)
		},
	}
}

func textDescriptor() *Descriptor {
	return &Descriptor{
		Tag:       TagText,
		IsByValue: false,
		IsOrdered: true,
		Cmp: func(a, b Datum) int {
			av, bv := a.V.(string), b.V.(string)
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		},
		Eq: func(a, b Datum) bool { return a.V.(string) == b.V.(string) },
		Hash: func(a Datum) uint64 {
			h := fnv.New64a()
			_, _ = h.Write([]byte(a.V.(string)))
			return h.Sum64()
		},
		Distance: func(a, b Datum) float64 {
			if a.V.(string) == b.V.(string) {
				return 0
			}
			return 1
		},
		InputFromText: func(s string) (Datum, error) { return Datum{Tag: TagText, V: s}, nil },
		OutputToText:  func(d Datum, _ int) string { return d.V.(string) },
	}
}

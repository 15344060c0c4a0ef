// Package sqladapter is a thin demonstration of wiring the core algebra
// into a SQL engine as scalar functions (spec.md §1: "SQL parsing, catalog
// integration, and varlena/TOAST framing are explicitly out of scope").
// It registers a handful of representative functions against SQLite so a
// caller can exercise span_contains/tfloat_value_at/span_distance from
// plain SQL; it does not attempt a full operator/cast catalog and stores
// nothing of its own — every argument and result crosses the boundary as
// WKT/WKB text produced by internal/wire.
//
// Grounded on the teacher's internal/db/db.go connection-setup style
// (sql.Open("sqlite", ...), PRAGMA application) and modernc.org/sqlite's
// RegisterDeterministicScalarFunction hook.
package sqladapter

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	"modernc.org/sqlite"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/temporal"
	"github.com/banshee-data/temporalgeo/internal/wire"
)

var registerOnce = map[string]bool{}

// RegisterFunctions registers the demo scalar functions with modernc.org/sqlite's
// driver-level registry. Safe to call more than once; later calls are no-ops
// for functions already registered, since the driver panics on duplicate
// registration within the same process.
func RegisterFunctions() error {
	type reg struct {
		name  string
		nArgs int
		fn    func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error)
	}
	fns := []reg{
		{"span_contains", 3, spanContainsFn},
		{"span_distance", 2, spanDistanceFn},
		{"tfloat_value_at", 2, tfloatValueAtFn},
	}
	for _, r := range fns {
		if registerOnce[r.name] {
			continue
		}
		if err := sqlite.RegisterDeterministicScalarFunction(r.name, r.nArgs, r.fn); err != nil {
			return fmt.Errorf("sqladapter: register %s: %w", r.name, err)
		}
		registerOnce[r.name] = true
	}
	return nil
}

// Open is a thin wrapper around sql.Open("sqlite", path) that ensures the
// scalar functions above are registered before any connection is made,
// mirroring the teacher's OpenDB's "apply pragmas before returning" style.
func Open(path string) (*sql.DB, error) {
	if err := RegisterFunctions(); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqladapter: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("sqladapter: apply pragma: %w", err)
	}
	return db, nil
}

// span_contains(base_tag, span_text, value_text) -> bool, delegating to
// span.ContainsValue once both arguments are parsed from their textual
// wire form.
func spanContainsFn(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	base, err := baseTagArg(args[0])
	if err != nil {
		return nil, err
	}
	s, err := spanTextArg(base, args[1])
	if err != nil {
		return nil, err
	}
	d := basetype.MustGet(base)
	v, err := d.InputFromText(textArg(args[2]))
	if err != nil {
		return nil, fmt.Errorf("sqladapter: span_contains value: %w", err)
	}
	return span.ContainsValue(s, v), nil
}

// span_distance(span_text, span_text) -> float8, both spans over float8.
func spanDistanceFn(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, err := spanTextArg(basetype.TagFloat8, args[0])
	if err != nil {
		return nil, err
	}
	b, err := spanTextArg(basetype.TagFloat8, args[1])
	if err != nil {
		return nil, err
	}
	return span.Distance(a, b), nil
}

// tfloat_value_at(tfloat_wkb_hex, timestamp_rfc3339) -> float8 or NULL.
func tfloatValueAtFn(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	hex := textArg(args[0])
	raw, err := wire.FromHexWKB(hex)
	if err != nil {
		return nil, fmt.Errorf("sqladapter: tfloat_value_at hex decode: %w", err)
	}
	t, err := wire.DecodeTemporalWKB(raw)
	if err != nil {
		return nil, fmt.Errorf("sqladapter: tfloat_value_at decode: %w", err)
	}
	at, err := time.Parse(time.RFC3339Nano, textArg(args[1]))
	if err != nil {
		return nil, fmt.Errorf("sqladapter: tfloat_value_at timestamp: %w", err)
	}
	v, ok := temporal.ValueAt(t, at)
	if !ok {
		return nil, nil
	}
	return v.V.(float64), nil
}

func baseTagArg(v driver.Value) (basetype.Tag, error) {
	s, ok := v.(string)
	if !ok {
		return basetype.TagInvalid, fmt.Errorf("sqladapter: expected base tag name as text, got %T", v)
	}
	switch s {
	case "float8":
		return basetype.TagFloat8, nil
	case "int4":
		return basetype.TagInt4, nil
	case "timestamptz":
		return basetype.TagTimestamptz, nil
	default:
		return basetype.TagInvalid, fmt.Errorf("sqladapter: unknown base tag %q", s)
	}
}

func spanTextArg(base basetype.Tag, v driver.Value) (span.Span, error) {
	return wire.SpanFromText(base, textArg(v))
}

func textArg(v driver.Value) string {
	s, _ := v.(string)
	return s
}

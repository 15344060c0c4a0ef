// Package temperr defines the engine's error taxonomy (spec.md §7). It has
// no behaviour of its own — only sentinel errors to test against with
// errors.Is, and a thin wrap helper matching the teacher's
// fmt.Errorf("...: %w", err) idiom (see internal/db/*.go throughout the
// teacher repo).
package temperr

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every constructor/algebra error wraps one of these so
// callers can classify failures with errors.Is without parsing strings.
var (
	// ErrInvariantViolated — empty span, out-of-order timestamps,
	// non-unique set elements, non-disjoint span-set, bbox/payload
	// mismatch. Raised by constructors; fatal to the call.
	ErrInvariantViolated = errors.New("invariant violated")

	// ErrDomainMismatch — incompatible base types, SRID mismatch, geodetic
	// vs non-geodetic, step vs linear where one interpolation is required,
	// synchronizing disjoint periods under SYNCHRONIZE_NOCROSS.
	ErrDomainMismatch = errors.New("domain mismatch")

	// ErrDimensionMissing — a predicate requires a dimension (X or T) the
	// box lacks.
	ErrDimensionMissing = errors.New("dimension missing")

	// ErrNotContiguous — span union/minus would produce a non-connected
	// set and the strict variant was requested.
	ErrNotContiguous = errors.New("spans not contiguous")

	// ErrParse — malformed textual or binary input.
	ErrParse = errors.New("parse error")

	// ErrArithmetic — division by zero in lifted arithmetic, overflow in
	// integer boxes.
	ErrArithmetic = errors.New("arithmetic error")
)

// Wrap returns an error whose message is ctx followed by ": " and the
// sentinel's message, and which unwraps to sentinel, so
// errors.Is(err, sentinel) keeps working while the message carries the
// offending values.
func Wrap(sentinel error, ctx string) error {
	return &wrapped{sentinel: sentinel, ctx: ctx}
}

type wrapped struct {
	sentinel error
	ctx      string
}

func (w *wrapped) Error() string { return w.ctx + ": " + w.sentinel.Error() }
func (w *wrapped) Unwrap() error { return w.sentinel }

// ParseErrorAt carries the byte offset of a parse failure, per spec.md §7
// ("Carries position / byte offset where possible").
type ParseErrorAt struct {
	Offset int
	Msg    string
}

func (e *ParseErrorAt) Error() string {
	return e.Msg
}

func (e *ParseErrorAt) Unwrap() error { return ErrParse }

// NewParseError builds a ParseErrorAt with a formatted message.
func NewParseError(offset int, format string, args ...any) error {
	return &ParseErrorAt{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

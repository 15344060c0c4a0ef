package sqladapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/temporal"
	"github.com/banshee-data/temporalgeo/internal/wire"
)

func TestOpenRegistersAndCreatesFunctions(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	var got int
	err = db.QueryRow(`SELECT span_contains('float8', '[1, 10)', '5')`).Scan(&got)
	require.NoError(t, err)
	require.Equal(t, 1, got)

	err = db.QueryRow(`SELECT span_contains('float8', '[1, 10)', '50')`).Scan(&got)
	require.NoError(t, err)
	require.Equal(t, 0, got)
}

func TestSpanDistanceFn(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	var dist float64
	err = db.QueryRow(`SELECT span_distance('[0, 10)', '[20, 30)')`).Scan(&dist)
	require.NoError(t, err)
	require.Greater(t, dist, 0.0)
}

func TestTFloatValueAtFn(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	at0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	at10 := time.Date(2024, 6, 1, 0, 0, 10, 0, time.UTC)
	insts := []temporal.Inst{
		{T: at0, V: basetype.Datum{Tag: basetype.TagFloat8, V: 1.0}},
		{T: at10, V: basetype.Datum{Tag: basetype.TagFloat8, V: 2.0}},
	}
	seq, err := temporal.NewSequence(basetype.TagFloat8, insts, true, true, true)
	require.NoError(t, err)
	wkb, err := wire.EncodeTemporalWKB(seq, true)
	require.NoError(t, err)
	hexStr := wire.ToHexWKB(wkb)

	midpoint := time.Date(2024, 6, 1, 0, 0, 5, 0, time.UTC).Format(time.RFC3339Nano)
	var value float64
	err = db.QueryRow(`SELECT tfloat_value_at(?, ?)`, hexStr, midpoint).Scan(&value)
	require.NoError(t, err)
	require.InDelta(t, 1.5, value, 1e-9)

	var nullValue any
	offTimeline := time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC).Format(time.RFC3339Nano)
	err = db.QueryRow(`SELECT tfloat_value_at(?, ?)`, hexStr, offTimeline).Scan(&nullValue)
	require.NoError(t, err)
	require.Nil(t, nullValue)
}

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"CupSentinel/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

func at(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

// exercise runs the same contract checks against any PriceStore.
func exercise(t *testing.T, s PriceStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx,
		model.PricePoint{Symbol: "AAPL", Time: at(10), Price: 190.5},
		model.PricePoint{Symbol: "AAPL", Time: at(0), Price: 189.1},
		model.PricePoint{Symbol: "AAPL", Time: at(5), Price: 189.9},
		model.PricePoint{Symbol: "MSFT", Time: at(5), Price: 410.2},
	))
	// Same timestamp replaces the earlier sample.
	require.NoError(t, s.Append(ctx, model.PricePoint{Symbol: "AAPL", Time: at(5), Price: 190.0}))
	require.NoError(t, s.Append(ctx))

	got, err := s.Range(ctx, "AAPL", at(0), at(10))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].Time.Equal(at(0)))
	assert.True(t, got[1].Time.Equal(at(5)))
	assert.Equal(t, 190.0, got[1].Price)
	assert.True(t, got[2].Time.Equal(at(10)))
	for _, p := range got {
		assert.Equal(t, "AAPL", p.Symbol)
	}

	got, err = s.Range(ctx, "AAPL", at(1), at(9))
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = s.Range(ctx, "TSLA", at(0), at(10))
	require.NoError(t, err)
	assert.Empty(t, got)

	removed, err := s.Trim(ctx, at(5))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	got, err = s.Range(ctx, "AAPL", at(0), at(10))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.Range(ctx, "MSFT", at(0), at(10))
	require.NoError(t, err)
	assert.Len(t, got, 1)

	require.NoError(t, s.Close())
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "prices.db"), zerolog.Nop())
	require.NoError(t, err)
	exercise(t, s)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, model.PricePoint{Symbol: "NVDA", Time: at(0), Price: 880}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Range(ctx, "NVDA", at(-1), at(1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 880.0, got[0].Price)
}

func TestRedisMemberCodec(t *testing.T) {
	m := encodeMember(at(0).UnixMilli(), 123.45)
	ms, price, err := decodeMember(m)
	require.NoError(t, err)
	assert.Equal(t, at(0).UnixMilli(), ms)
	assert.Equal(t, 123.45, price)

	_, _, err = decodeMember("garbage")
	assert.Error(t, err)
	_, _, err = decodeMember("12|x")
	assert.Error(t, err)
}

package pricestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/routecost/internal/material"
)

func openSQLite(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "prices.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := openSQLite(t, WithClock(func() time.Time { return now }))

	require.NoError(t, s.Save(ctx,
		Price{Compound: "THF", Price: 3},
		Price{Compound: "R", Price: 10, UpdatedAt: now.Add(-time.Hour)},
	))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Price{
		{Compound: "R", Price: 10, UpdatedAt: now.Add(-time.Hour)},
		{Compound: "THF", Price: 3, UpdatedAt: now},
	}, got)

	// Saving again overwrites.
	require.NoError(t, s.Save(ctx, Price{Compound: "R", Price: 11.5}))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 11.5, got[0].Price)
	assert.Equal(t, now, got[0].UpdatedAt)
}

func TestStore_SaveValidatesBeforeWriting(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	err := s.Save(ctx, Price{Compound: "R", Price: 1}, Price{Compound: "X", Price: -2}, Price{Price: 1})
	require.ErrorIs(t, err, material.ErrInvalidPrice)
	assert.ErrorContains(t, err, "without compound")

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_LoadInto(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	src := material.NewRegistry()
	require.NoError(t, src.Register("R", 10))
	require.NoError(t, src.Register("S", 2))
	require.NoError(t, src.RegisterMaterial(material.Material{Name: "T"}))
	prices := FromRegistry(src)
	require.Len(t, prices, 2)
	require.NoError(t, s.Save(ctx, prices...))

	reg := material.NewRegistry()
	require.NoError(t, reg.RegisterMaterial(material.Material{Name: "R", Price: material.PriceOf(1), MolarMass: 40}))
	n, err := s.LoadInto(ctx, reg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	r, ok := reg.Material("R")
	require.True(t, ok)
	assert.Equal(t, 10.0, *r.Price)
	assert.Equal(t, 40.0, r.MolarMass)
	p, err := reg.Lookup("S")
	require.NoError(t, err)
	assert.Equal(t, 2.0, p)
	assert.NoError(t, reg.Validate())
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "prices.db")

	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, Price{Compound: "R", Price: 7}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 7.0, got[0].Price)
}

func TestParseDSN(t *testing.T) {
	testCases := []struct {
		dsn        string
		wantDriver string
		wantSource string
	}{
		{"postgres://localhost/routecost", driverPostgres, "postgres://localhost/routecost"},
		{"postgresql://u@h/db?sslmode=disable", driverPostgres, "postgresql://u@h/db?sslmode=disable"},
		{"sqlite://prices.db", driverSQLite, "prices.db"},
		{"./prices.db", driverSQLite, "./prices.db"},
	}
	for _, tc := range testCases {
		t.Run(tc.dsn, func(t *testing.T) {
			driver, source, err := parseDSN(tc.dsn)
			require.NoError(t, err)
			assert.Equal(t, tc.wantDriver, driver)
			assert.Equal(t, tc.wantSource, source)
		})
	}

	_, _, err := parseDSN("")
	assert.ErrorIs(t, err, ErrEmptyDSN)
}

func TestRebind(t *testing.T) {
	q := "INSERT INTO t VALUES (?, ?, ?)"
	assert.Equal(t, q, (&Store{driver: driverSQLite}).rebind(q))
	assert.Equal(t, "INSERT INTO t VALUES ($1, $2, $3)", (&Store{driver: driverPostgres}).rebind(q))
}

func TestStore_Postgres(t *testing.T) {
	dsn := os.Getenv("ROUTECOST_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ROUTECOST_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(ctx, Price{Compound: "routecost-test", Price: 42}))
	got, err := s.Load(ctx)
	require.NoError(t, err)

	var found bool
	for _, p := range got {
		if p.Compound == "routecost-test" {
			found = true
			assert.Equal(t, 42.0, p.Price)
		}
	}
	assert.True(t, found)
}

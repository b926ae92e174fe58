package snapshot

import (
	"context"
	"testing"
	"time"
	"vtopassist-backend/internal/components/chrono"
	"vtopassist-backend/internal/components/telemetry"
	"vtopassist-backend/internal/db"

	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

var start = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func setup(t testing.TB) (Snapshot, *chrono.ManualTime) {
	sqlite, err := db.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	clock := chrono.NewManualTime(start)
	return NewSnapshot(sqlite, clock, &telemetry.Recorder{}), clock
}

func TestPutGet(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	var got record
	_, ok, err := s.Get(ctx, "21BCE1234:marks:VL1", &got)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Put(ctx, "21BCE1234:marks:VL1", "21BCE1234", "marks", record{Name: "CAT1", Score: 12.5}))

	entry, ok, err := s.Get(ctx, "21BCE1234:marks:VL1", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, record{Name: "CAT1", Score: 12.5}, got)
	require.Equal(t, "marks", entry.Kind)
	require.EqualValues(t, 1, entry.Revision)
	require.True(t, start.Equal(entry.CapturedAt))
}

func TestPutTracksRevisions(t *testing.T) {
	s, clock := setup(t)
	ctx := context.Background()
	key := "21BCE1234:grades:VL1"

	require.NoError(t, s.Put(ctx, key, "21BCE1234", "grades", record{Name: "A"}))

	clock.Advance(time.Hour)
	require.NoError(t, s.Put(ctx, key, "21BCE1234", "grades", record{Name: "A"}))

	var got record
	entry, _, err := s.Get(ctx, key, &got)
	require.NoError(t, err)
	require.EqualValues(t, 1, entry.Revision)
	require.True(t, start.Equal(entry.ChangedAt))
	require.True(t, start.Add(time.Hour).Equal(entry.CapturedAt))

	clock.Advance(time.Hour)
	require.NoError(t, s.Put(ctx, key, "21BCE1234", "grades", record{Name: "S"}))

	entry, _, err = s.Get(ctx, key, &got)
	require.NoError(t, err)
	require.Equal(t, "S", got.Name)
	require.EqualValues(t, 2, entry.Revision)
	require.True(t, start.Add(2*time.Hour).Equal(entry.ChangedAt))
}

func TestListPurge(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "21BCE1234:profile", "21BCE1234", "profile", record{Name: "Priya"}))
	require.NoError(t, s.Put(ctx, "21BCE1234:attendance:VL1", "21BCE1234", "attendance", record{}))
	require.NoError(t, s.Put(ctx, "22MIS0001:profile", "22MIS0001", "profile", record{Name: "Arun"}))

	entries, err := s.List(ctx, "21BCE1234")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "21BCE1234:attendance:VL1", entries[0].Key)
	require.Equal(t, "profile", entries[1].Kind)

	n, err := s.Purge(ctx, "21BCE1234")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	entries, err = s.List(ctx, "21BCE1234")
	require.NoError(t, err)
	require.Empty(t, entries)

	var got record
	_, ok, err := s.Get(ctx, "22MIS0001:profile", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Arun", got.Name)
}

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRecord(started time.Time) Record {
	return Record{
		ID:          uuid.NewString(),
		StartedAt:   started,
		FinishedAt:  started.Add(30 * time.Second),
		Environment: "production",
		Host:        "blog.example.com",
		RemoteDir:   "/var/www/blog",
		Commit:      "abc1234",
		Uploaded:    12,
		Deleted:     2,
		Skipped:     40,
		Bytes:       128_000,
		Outcome:     OutcomeSuccess,
	}
}

func TestAppendAndRecent_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := range 3 {
		require.NoError(t, store.Append(ctx, testRecord(base.Add(time.Duration(i)*time.Hour))))
	}

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.True(t, records[0].StartedAt.After(records[1].StartedAt))
	require.True(t, records[1].StartedAt.After(records[2].StartedAt))
}

func TestRecent_HonorsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := range 5 {
		require.NoError(t, store.Append(ctx, testRecord(base.Add(time.Duration(i)*time.Minute))))
	}

	records, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestLast_EmptyHistoryReturnsNil(t *testing.T) {
	store := newTestStore(t)

	last, err := store.Last(context.Background())
	require.NoError(t, err)
	require.Nil(t, last)
}

func TestRoundTrip_PreservesFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	rec.Outcome = OutcomePartial
	rec.Failed = 3
	rec.Dirty = true
	rec.Error = "2 transfers failed"
	require.NoError(t, store.Append(ctx, rec))

	last, err := store.Last(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)

	require.Equal(t, rec.ID, last.ID)
	require.Equal(t, rec.Environment, last.Environment)
	require.Equal(t, rec.Host, last.Host)
	require.Equal(t, rec.Commit, last.Commit)
	require.True(t, last.Dirty)
	require.Equal(t, rec.Uploaded, last.Uploaded)
	require.Equal(t, rec.Failed, last.Failed)
	require.Equal(t, OutcomePartial, last.Outcome)
	require.Equal(t, "2 transfers failed", last.Error)
	require.Equal(t, 30*time.Second, last.Duration())
}

func TestFileBackedStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, testRecord(time.Now().Add(-time.Minute))))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	records, err := reopened.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

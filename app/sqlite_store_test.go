package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "views.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestSQLiteStoreSeedsHomepage(t *testing.T) {
	store, _ := newTestStore(t)

	views, err := store.Views(HomePage)
	require.NoError(t, err)
	assert.Equal(t, int64(0), views, "fresh store should start the homepage at zero")
}

func TestSQLiteStoreIncViews(t *testing.T) {
	store, _ := newTestStore(t)

	for want := int64(1); want <= 3; want++ {
		views, err := store.IncViews(HomePage)
		require.NoError(t, err)
		assert.Equal(t, want, views)
	}

	views, err := store.Views(HomePage)
	require.NoError(t, err)
	assert.Equal(t, int64(3), views)
}

func TestSQLiteStoreViewsUnknownPage(t *testing.T) {
	store, _ := newTestStore(t)

	views, err := store.Views("no-such-page")
	require.NoError(t, err)
	assert.Equal(t, int64(0), views, "missing rows read as zero, not an error")
}

// Incrementing a page that was never seeded creates its row and counts from
// one. Earlier behavior silently dropped such increments.
func TestSQLiteStoreIncViewsUnseededPage(t *testing.T) {
	store, _ := newTestStore(t)

	views, err := store.IncViews("about")
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)

	views, err = store.IncViews("about")
	require.NoError(t, err)
	assert.Equal(t, int64(2), views)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	store, path := newTestStore(t)

	_, err := store.IncViews(HomePage)
	require.NoError(t, err)
	views, err := store.IncViews(HomePage)
	require.NoError(t, err)
	require.Equal(t, int64(2), views)
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	views, err = reopened.Views(HomePage)
	require.NoError(t, err)
	assert.Equal(t, int64(2), views, "reopening must not reset the count")
}

func TestSQLiteStoreInitIdempotent(t *testing.T) {
	store, path := newTestStore(t)
	_, err := store.IncViews(HomePage)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Re-initializing against the same file must not re-seed the row.
	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	views, err := reopened.Views(HomePage)
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)
}

func TestSQLiteStoreErrorsAfterClose(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Close())

	_, err := store.Views(HomePage)
	assert.Error(t, err)

	_, err = store.IncViews(HomePage)
	assert.Error(t, err)
}

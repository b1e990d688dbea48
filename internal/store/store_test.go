package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock returns strictly increasing times
func fakeClock() func() time.Time {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Second)
	}
}

func openStores(t *testing.T, maxEntries int) map[string]*HistoryStore {
	t.Helper()
	disk, err := NewHistoryStore(t.TempDir(), maxEntries)
	require.NoError(t, err)
	t.Cleanup(func() { disk.Close() })
	disk.now = fakeClock()

	mem, err := NewHistoryStore("", maxEntries)
	require.NoError(t, err)
	mem.now = fakeClock()

	return map[string]*HistoryStore{"bolt": disk, "memory": mem}
}

func TestHistoryNewestFirst(t *testing.T) {
	for name, s := range openStores(t, 10) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Add("cats"))
			require.NoError(t, s.Add("dogs"))
			require.NoError(t, s.Add("  ")) // ignored
			require.NoError(t, s.Add("birds"))

			got, err := s.Recent(0)
			require.NoError(t, err)
			assert.Equal(t, []string{"birds", "dogs", "cats"}, got)

			got, err = s.Recent(2)
			require.NoError(t, err)
			assert.Equal(t, []string{"birds", "dogs"}, got)
		})
	}
}

func TestHistoryDuplicateMovesToFront(t *testing.T) {
	for name, s := range openStores(t, 10) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Add("cats"))
			require.NoError(t, s.Add("dogs"))
			require.NoError(t, s.Add("Cats "))

			got, err := s.Recent(0)
			require.NoError(t, err)
			assert.Equal(t, []string{"Cats", "dogs"}, got)
		})
	}
}

func TestHistoryTrimsToMax(t *testing.T) {
	for name, s := range openStores(t, 2) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Add("a"))
			require.NoError(t, s.Add("b"))
			require.NoError(t, s.Add("c"))

			got, err := s.Recent(0)
			require.NoError(t, err)
			assert.Equal(t, []string{"c", "b"}, got)
		})
	}
}

func TestHistoryRemoveAndClear(t *testing.T) {
	for name, s := range openStores(t, 10) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Add("cats"))
			require.NoError(t, s.Add("dogs"))

			require.NoError(t, s.Remove("CATS"))
			got, err := s.Recent(0)
			require.NoError(t, err)
			assert.Equal(t, []string{"dogs"}, got)

			require.NoError(t, s.Clear())
			got, err = s.Recent(0)
			require.NoError(t, err)
			assert.Empty(t, got)

			// still usable after clear
			require.NoError(t, s.Add("fish"))
			got, err = s.Recent(0)
			require.NoError(t, err)
			assert.Equal(t, []string{"fish"}, got)
		})
	}
}

func TestHistoryPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewHistoryStore(dir, 10)
	require.NoError(t, err)
	s.now = fakeClock()
	require.NoError(t, s.Add("mountains"))
	require.NoError(t, s.Add("lakes"))
	require.NoError(t, s.Close())

	reopened, err := NewHistoryStore(dir, 10)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Recent(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"lakes", "mountains"}, got)
}

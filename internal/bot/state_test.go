package bot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestState_SaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "subs.json")

	s := LoadState(path)
	s.Subscribe(100, 900, 1700000000)
	s.Subscribe(200, 3600, 1700000000)
	s.SetLastUpdateID(41)
	require.NoError(t, s.Save())

	loaded := LoadState(path)
	require.True(t, loaded.Subscribed(100))
	require.True(t, loaded.Subscribed(200))
	require.False(t, loaded.Subscribed(300))
	require.EqualValues(t, 41, loaded.LastUpdateID())
}

func TestLoadState_MissingFile(t *testing.T) {
	t.Parallel()

	s := LoadState(filepath.Join(t.TempDir(), "absent.json"))
	require.False(t, s.Subscribed(1))
	require.Zero(t, s.LastUpdateID())
}

func TestLoadState_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "subs.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{ not json"), 0o600))

	s := LoadState(path)
	require.False(t, s.Subscribed(1))
	// Saving over the corrupt file recovers it.
	s.Subscribe(7, 900, 1)
	require.NoError(t, s.Save())
	require.True(t, LoadState(path).Subscribed(7))
}

func TestState_DueChats(t *testing.T) {
	t.Parallel()

	s := LoadState(filepath.Join(t.TempDir(), "subs.json"))
	s.Subscribe(1, 900, 1000)  // due at 1000
	s.Subscribe(2, 3600, 2000) // due at 2000

	require.Equal(t, []int64{1}, s.DueChats(1500))
	// Chat 1 advanced by its period; nothing due until then.
	require.Empty(t, s.DueChats(1600))
	require.Equal(t, []int64{2}, s.DueChats(2000))
	require.Equal(t, []int64{1}, s.DueChats(1500+900))
}

func TestState_UnsubscribeAndPeriod(t *testing.T) {
	t.Parallel()

	s := LoadState(filepath.Join(t.TempDir(), "subs.json"))
	s.Subscribe(5, 900, 0)
	s.SetPeriod(5, 60)
	s.Unsubscribe(5)
	require.False(t, s.Subscribed(5))
	require.Empty(t, s.DueChats(1<<40))

	// Setting a period on an unknown chat must not subscribe it.
	s.SetPeriod(9, 60)
	require.False(t, s.Subscribed(9))
}

package blob

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutOpenDelete(t *testing.T) {
	t.Parallel()

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	key := NewKey("owner-a", "cry.wav")
	payload := []byte("RIFF....WAVEfmt ")

	require.NoError(t, store.Put(ctx, key, bytes.NewReader(payload), int64(len(payload))))

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, payload, got)

	require.NoError(t, store.Delete(ctx, key))

	_, err = store.Open(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing object is not an error.
	require.NoError(t, store.Delete(ctx, key))
}

func TestLocalStore_OpenMissing(t *testing.T) {
	t.Parallel()

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "users/owner-a/nope.wav")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	t.Parallel()

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "../outside")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_List(t *testing.T) {
	t.Parallel()

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	keyA := NewKey("owner-a", "a.wav")
	keyB := NewKey("owner-b", "b.mp3")
	require.NoError(t, store.Put(ctx, keyA, strings.NewReader("aaa"), 3))
	require.NoError(t, store.Put(ctx, keyB, strings.NewReader("bbb"), 3))

	objects, err := store.List(ctx)
	require.NoError(t, err)

	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		require.False(t, obj.LastModified.IsZero())
		keys = append(keys, obj.Key)
	}
	require.ElementsMatch(t, []string{keyA, keyB}, keys)
}

func TestNewKey(t *testing.T) {
	t.Parallel()

	key := NewKey("owner-a", "recording.wav")
	require.True(t, strings.HasPrefix(key, "users/owner-a/"))
	require.True(t, strings.HasSuffix(key, ".wav"))

	// Same inputs never collide.
	require.NotEqual(t, key, NewKey("owner-a", "recording.wav"))
}

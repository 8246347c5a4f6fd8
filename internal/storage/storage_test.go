package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slotContract runs the behaviour every Slot implementation must share.
func slotContract(t *testing.T, slot Slot) {
	t.Helper()
	ctx := context.Background()

	_, err := slot.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, slot.Set(ctx, "k", []byte("v1")))
	got, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))

	require.NoError(t, slot.Set(ctx, "k", []byte("v2")))
	got, err = slot.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))

	require.NoError(t, slot.Delete(ctx, "k"))
	_, err = slot.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, slot.Delete(ctx, "k"))
}

func TestMemory(t *testing.T) {
	slotContract(t, NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	slot := NewMemory()
	ctx := context.Background()

	value := []byte("original")
	require.NoError(t, slot.Set(ctx, "k", value))
	value[0] = 'X'

	got, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
}

func TestFile(t *testing.T) {
	slot, err := NewFile(t.TempDir())
	require.NoError(t, err)
	slotContract(t, slot)
}

func TestFile_KeyCharactersAreSafe(t *testing.T) {
	slot, err := NewFile(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	// Separators and dots in keys must not escape the directory.
	key := "cart:../../etc/passwd"
	require.NoError(t, slot.Set(ctx, key, []byte("data")))

	got, err := slot.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))
}

func TestFile_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	slot, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, slot.Set(ctx, "k", []byte("persisted")))

	reopened, err := NewFile(dir)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))
}

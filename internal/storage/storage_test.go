package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_RoundTrip(t *testing.T) {
	kv := NewMemory()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "a", "1"))
	require.NoError(t, kv.Set(ctx, "b", "2"))

	v, ok, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	require.NoError(t, kv.Delete(ctx, "a", "b", "never-existed"))
	_, ok, _ = kv.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = kv.Get(ctx, "b")
	assert.False(t, ok)
}

func TestFile_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	kv, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "auth_token", "tok"))
	require.NoError(t, kv.Set(ctx, "store_id", "acme"))
	require.NoError(t, kv.Delete(ctx, "auth_token"))

	reopened, err := NewFile(path)
	require.NoError(t, err)

	_, ok, err := reopened.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := reopened.Get(ctx, "store_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "acme", v)
}

func TestFile_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")

	kv, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), "k", "v"))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFile_CorruptStateStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	kv, err := NewFile(path)
	require.NoError(t, err)

	_, ok, err := kv.Get(context.Background(), "anything")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdentityKeys_CoverCurrentKeys(t *testing.T) {
	assert.Contains(t, IdentityKeys, KeyToken)
	assert.Contains(t, IdentityKeys, KeyPrincipal)
	// Identity keys never include another store's namespace.
	assert.NotContains(t, IdentityKeys, KeyStoreID)
	assert.NotContains(t, IdentityKeys, KeyCartItems)
}

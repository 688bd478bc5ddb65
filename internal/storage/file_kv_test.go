package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKV_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")

	kv, err := NewFileKV(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "auth_token", "tok1"))

	reopened, err := NewFileKV(path)
	require.NoError(t, err)
	v, err := reopened.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.Equal(t, "tok1", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileKV_MissingKey(t *testing.T) {
	kv, err := NewFileKV(filepath.Join(t.TempDir(), "kv.json"))
	require.NoError(t, err)

	_, err = kv.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, kv.Delete(context.Background(), "nope"))
}

func TestFileKV_CorruptDocumentIsReplacedOnWrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o600))

	kv, err := NewFileKV(path)
	require.NoError(t, err)

	_, err = kv.Get(ctx, "auth_token")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "auth_token", "fresh"))
	v, err := kv.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestFileKV_RequiresPath(t *testing.T) {
	_, err := NewFileKV("")
	assert.Error(t, err)
}

package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteDB(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, WriteDB(ctx, store, "db.json", []byte(`{"projects":[{"title":"api"}]}`)))

	data, err := os.ReadFile(filepath.Join(store.baseDir, "db.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "\n"))
	assert.Contains(t, string(data), "\n  \"projects\"")

	db, err := ReadDB(ctx, store, "db.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"projects":[{"title":"api"}]}`, string(db))
}

func TestReadDBInvalid(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "db.json", strings.NewReader("projects: []")))

	_, err = ReadDB(ctx, store, "db.json")
	assert.ErrorIs(t, err, ErrInvalidDB)

	_, err = ReadDB(ctx, store, "missing.json")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestWriteDBInvalid(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	err = WriteDB(context.Background(), store, "db.json", []byte("{"))
	assert.ErrorIs(t, err, ErrInvalidDB)

	exists, err := store.Exists(context.Background(), "db.json")
	require.NoError(t, err)
	assert.False(t, exists)
}

package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/hafiz-bot/internal/storage"
	"github.com/aliskhannn/hafiz-bot/internal/storage/storagetest"
)

func TestFileGateway(t *testing.T) {
	g, err := storage.NewFileGateway(t.TempDir())
	require.NoError(t, err)

	storagetest.RunGatewayContract(t, g)
}

func TestFileGatewayLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	g, err := storage.NewFileGateway(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, g.Set(ctx, "students_data", []byte("[]")))

	data, err := os.ReadFile(filepath.Join(dir, "students_data.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileGatewayRejectsPathKeys(t *testing.T) {
	g, err := storage.NewFileGateway(t.TempDir())
	require.NoError(t, err)

	err = g.Set(context.Background(), "../escape", []byte("x"))
	assert.True(t, errors.Is(err, storage.ErrInvalidKey))
}

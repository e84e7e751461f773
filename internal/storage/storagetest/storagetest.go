// Package storagetest holds the behaviour every storage.Gateway backend must share.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/hafiz-bot/internal/storage"
)

// RunGatewayContract exercises get/set/remove semantics against g.
// Keys used: "contract_a", "contract_b".
func RunGatewayContract(t *testing.T, g storage.Gateway) {
	t.Helper()
	ctx := context.Background()

	t.Run("absent key", func(t *testing.T) {
		_, err := g.Get(ctx, "contract_a")
		assert.True(t, errors.Is(err, storage.ErrKeyNotFound), "got %v", err)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, g.Set(ctx, "contract_a", []byte(`[{"id":"1"}]`)))

		got, err := g.Get(ctx, "contract_a")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"1"}]`, string(got))
	})

	t.Run("overwrite replaces whole value", func(t *testing.T) {
		require.NoError(t, g.Set(ctx, "contract_a", []byte(`[]`)))

		got, err := g.Get(ctx, "contract_a")
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(got))
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, g.Set(ctx, "contract_b", []byte(`{"b":true}`)))

		a, err := g.Get(ctx, "contract_a")
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(a))
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, g.Remove(ctx, "contract_a"))

		_, err := g.Get(ctx, "contract_a")
		assert.True(t, errors.Is(err, storage.ErrKeyNotFound), "got %v", err)

		b, err := g.Get(ctx, "contract_b")
		require.NoError(t, err)
		assert.JSONEq(t, `{"b":true}`, string(b))
	})

	t.Run("remove absent key", func(t *testing.T) {
		assert.NoError(t, g.Remove(ctx, "contract_a"))
	})

	require.NoError(t, g.Remove(ctx, "contract_b"))
}

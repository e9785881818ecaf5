// Package storagetest holds the behavior every KeyValueStore must share.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/verse-service/internal/domain"
	"github.com/jsamuelsen/verse-service/internal/ports"
)

// Run exercises store against the KeyValueStore contract.
// newStore must return a fresh, empty store for every call.
func Run(t *testing.T, newStore func(t *testing.T) ports.KeyValueStore) {
	t.Helper()

	ctx := context.Background()

	t.Run("missing key is not found", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Get(ctx, ports.KeyQuotations)
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("set then get", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.Set(ctx, ports.KeyQuotations, []byte(`[{"zh":"甲"}]`)))

		got, err := store.Get(ctx, ports.KeyQuotations)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"zh":"甲"}]`, string(got))
	})

	t.Run("set overwrites", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.Set(ctx, ports.KeyCredential, []byte("first")))
		require.NoError(t, store.Set(ctx, ports.KeyCredential, []byte("second")))

		got, err := store.Get(ctx, ports.KeyCredential)
		require.NoError(t, err)
		assert.Equal(t, "second", string(got))
	})

	t.Run("keys are independent", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.Set(ctx, ports.KeyQuotations, []byte("[]")))
		require.NoError(t, store.Set(ctx, ports.KeyCredential, []byte("secret")))
		require.NoError(t, store.Delete(ctx, ports.KeyQuotations))

		_, err := store.Get(ctx, ports.KeyQuotations)
		assert.True(t, domain.IsNotFound(err))

		got, err := store.Get(ctx, ports.KeyCredential)
		require.NoError(t, err)
		assert.Equal(t, "secret", string(got))
	})

	t.Run("delete missing key is a no-op", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.Delete(ctx, "never-written"))
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.Set(ctx, ports.KeyCredential, []byte("abcd")))

		got, err := store.Get(ctx, ports.KeyCredential)
		require.NoError(t, err)
		got[0] = 'z'

		again, err := store.Get(ctx, ports.KeyCredential)
		require.NoError(t, err)
		assert.Equal(t, "abcd", string(again))
	})
}

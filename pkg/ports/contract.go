package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabelluardo/grammY/pkg/domain"
)

// RunStateStoreContract verifies that a StateStore implementation behaves
// the way the engine depends on. Adapter test suites call it against a
// ready store.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405")

	t.Run("save and load", func(t *testing.T) {
		sess := domain.NewSession()
		sess.Data["name"] = "Ada"
		sess.Data["count"] = 42
		sess.Scenes = &domain.SceneState{
			Scene: "checkout",
			Stack: domain.Stack{{PC: 2}, {PC: 1}},
		}

		require.NoError(t, store.Save(ctx, key, sess))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "Ada", loaded.Data["name"])
		// JSON-backed stores hand numbers back as float64.
		assert.EqualValues(t, 42, loaded.Data["count"])
		require.NotNil(t, loaded.Scenes)
		assert.Equal(t, sess.Scenes, loaded.Scenes, "the scene trace must round-trip exactly")
	})

	t.Run("overwrite replaces", func(t *testing.T) {
		sess := domain.NewSession()
		sess.Data["name"] = "Grace"
		require.NoError(t, store.Save(ctx, key, sess))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "Grace", loaded.Data["name"])
		assert.Nil(t, loaded.Scenes)
	})

	t.Run("snapshots are decoupled", func(t *testing.T) {
		sess := domain.NewSession()
		sess.Data["v"] = "original"
		require.NoError(t, store.Save(ctx, key, sess))

		// Mutations on either side of the store boundary must not leak
		// into what a later Load observes.
		sess.Data["v"] = "mutated-after-save"
		first, err := store.Load(ctx, key)
		require.NoError(t, err)
		first.Data["v"] = "mutated-after-load"

		second, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "original", second.Data["v"])
	})

	t.Run("load missing", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, domain.NewSession()))
		require.NoError(t, store.Delete(ctx, key))

		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		assert.NoError(t, store.Delete(ctx, key), "deleting a missing key is not an error")
	})

	t.Run("list", func(t *testing.T) {
		k1, k2 := key+"-1", key+"-2"
		require.NoError(t, store.Save(ctx, k1, domain.NewSession()))
		require.NoError(t, store.Save(ctx, k2, domain.NewSession()))
		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}

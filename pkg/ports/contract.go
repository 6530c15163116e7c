package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract verifies that a StateStore implementation honours the interface contract.
// Every adapter runs it from its own tests.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-" + time.Now().Format("20060102150405.000000")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, "1")
		state.ActiveStep = "2"
		state.ActiveStepIndex = 1
		state.MaxStepIndex = 1
		state.PrevSteps = []string{"1"}
		state.NavSchema = []domain.NavEntry{
			{Title: "One", Key: "1", Index: 0, Primary: true},
			{Title: "Two", Key: "2", Index: 1, Primary: true},
		}
		state.RegisteredFieldsHistory["1"] = []string{"name", "address.city"}
		state.Values["name"] = "Bob"
		state.Values["address"] = map[string]any{"city": "X"}

		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "2", loaded.ActiveStep)
		assert.Equal(t, 1, loaded.ActiveStepIndex)
		assert.Equal(t, []string{"1"}, loaded.PrevSteps)
		assert.Equal(t, state.NavSchema, loaded.NavSchema)
		assert.Equal(t, []string{"name", "address.city"}, loaded.RegisteredFieldsHistory["1"])
		assert.Equal(t, "Bob", loaded.Values["name"])
		assert.Equal(t, map[string]any{"city": "X"}, loaded.Values["address"])
		assert.Equal(t, domain.StatusActive, loaded.Status)
	})

	t.Run("Loaded state is a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Values["name"] = "Mallory"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Bob", again.Values["name"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewState(id1, "1")))
		require.NoError(t, store.Save(ctx, id2, domain.NewState(id2, "1")))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
		assert.NotContains(t, sessions, sessionID)
	})
}

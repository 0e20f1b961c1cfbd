package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parampare/storefront/internal/store"
)

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "state.json")

	st, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, st.Set(context.Background(), "k", "v"))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSetGetRoundtrip(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	ctx := context.Background()

	type profile struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	require.NoError(t, st.Set(ctx, store.KeyUser, profile{Name: "Meera", Email: "meera@example.com"}))

	var got profile
	require.NoError(t, st.Get(ctx, store.KeyUser, &got))
	assert.Equal(t, "Meera", got.Name)
}

func TestGetMissingKeyReturnsNotFound(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	var dst string
	assert.ErrorIs(t, st.Get(context.Background(), "missing", &dst), store.ErrNotFound)
}

func TestStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Set(ctx, store.KeyToken, "tok-123"))
	require.NoError(t, st.Set(ctx, store.KeyIsLoggedIn, true))

	reopened, err := Open(path)
	require.NoError(t, err)

	var token string
	require.NoError(t, reopened.Get(ctx, store.KeyToken, &token))
	assert.Equal(t, "tok-123", token)

	var flag bool
	require.NoError(t, reopened.Get(ctx, store.KeyIsLoggedIn, &flag))
	assert.True(t, flag)
}

func TestDeleteRemovesKeysAndIgnoresMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Set(ctx, "a", 1))
	require.NoError(t, st.Set(ctx, "b", 2))

	require.NoError(t, st.Delete(ctx, "a", "never-existed"))

	var dst int
	assert.ErrorIs(t, st.Get(ctx, "a", &dst), store.ErrNotFound)
	require.NoError(t, st.Get(ctx, "b", &dst))
	assert.Equal(t, 2, dst)

	// The deletion is durable.
	reopened, err := Open(path)
	require.NoError(t, err)
	assert.ErrorIs(t, reopened.Get(ctx, "a", &dst), store.ErrNotFound)
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}

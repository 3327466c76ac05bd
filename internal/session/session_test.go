package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/coedash/internal/model"
)

func TestSaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrNoSession)

	s := FromAuth(&model.AuthResponse{
		Token: "tok",
		User:  &model.User{ID: "u1", Email: "d@coe.example.org", Role: model.RoleRODev},
	})
	require.NoError(t, Save(path, s))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
	assert.Equal(t, model.Viewer{UserID: "u1", Email: "d@coe.example.org", Role: model.RoleRODev}, loaded.Viewer())

	require.NoError(t, Clear(path))
	require.NoError(t, Clear(path))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLoadEmptyToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("email: x@y.z\n"), 0o600))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrNoSession)
}

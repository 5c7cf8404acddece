package boltrepo_test

import (
	"path/filepath"
	"testing"

	"github.com/opencustody/consolekit/session"
	"github.com/opencustody/consolekit/session/boltrepo"
	"github.com/opencustody/consolekit/storage"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadDelete(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	defer db.Close()

	repo, err := boltrepo.New(db, "console-session")
	require.NoError(t, err)

	_, found, err := repo.Load()
	require.NoError(t, err)
	require.False(t, found)

	want := session.Session{AccessToken: "T1", RefreshToken: "R1", IsLoggedIn: true, Role: "admin"}
	require.NoError(t, repo.Save(want))

	got, found, err := repo.Load()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, want, got)

	require.NoError(t, repo.Delete())
	_, found, err = repo.Load()
	require.NoError(t, err)
	require.False(t, found)
}

func TestSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.db")

	db, err := storage.Open(path)
	require.NoError(t, err)
	repo, err := boltrepo.New(db, "console-session")
	require.NoError(t, err)
	require.NoError(t, repo.Save(session.Session{AccessToken: "T1", IsLoggedIn: true}))
	require.NoError(t, db.Close())

	db, err = storage.Open(path)
	require.NoError(t, err)
	defer db.Close()
	repo, err = boltrepo.New(db, "console-session")
	require.NoError(t, err)

	got, found, err := repo.Load()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "T1", got.AccessToken)
}

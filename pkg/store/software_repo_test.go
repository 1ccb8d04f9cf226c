package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/windowsadmins/appstore/pkg/catalog"
)

func newTestRepo(t *testing.T) *SoftwareRepo {
	t.Helper()
	db, err := OpenDB(context.Background(), "sqlite", filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewSoftwareRepo(db)
}

func entry(name string) *catalog.SoftwareEntry {
	return &catalog.SoftwareEntry{
		Name:        name,
		Version:     "1.0",
		DownloadURL: name + ".exe",
		InstallType: catalog.InstallSilent,
		Category:    catalog.DefaultCategory,
	}
}

func TestSoftwareRepo_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := &catalog.SoftwareEntry{
		Name:        "Tool",
		Version:     "1.0",
		DownloadURL: "http://x/a.exe",
		InstallType: catalog.InstallSilent,
		SilentArgs:  "/S",
		Category:    "utilities",
		Description: "a tool",
		LogoRef:     "data:image/png;base64,AAAA",
	}
	id, err := repo.Insert(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.Version, got.Version)
	assert.Equal(t, in.DownloadURL, got.DownloadURL)
	assert.Equal(t, in.InstallType, got.InstallType)
	assert.Equal(t, in.SilentArgs, got.SilentArgs)
	assert.Equal(t, in.Category, got.Category)
	assert.Equal(t, in.Description, got.Description)
	assert.Equal(t, in.LogoRef, got.LogoRef)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSoftwareRepo_GetMissing(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestSoftwareRepo_InsertDuplicateName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, entry("Tool"))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, entry("Tool"))
	assert.ErrorIs(t, err, catalog.ErrConflict)
}

func TestSoftwareRepo_ConcurrentInsertSameName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Insert(ctx, entry("Same"))
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, catalog.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
}

func TestSoftwareRepo_Update(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	idA, err := repo.Insert(ctx, entry("A"))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, entry("B"))
	require.NoError(t, err)

	changed := entry("A")
	changed.Version = "2.0"
	changed.SilentArgs = ""
	require.NoError(t, repo.Update(ctx, idA, changed))

	got, err := repo.Get(ctx, idA)
	require.NoError(t, err)
	assert.Equal(t, "2.0", got.Version)

	// keeping its own name is not a conflict, taking another row's name is
	require.NoError(t, repo.Update(ctx, idA, entry("A")))
	assert.ErrorIs(t, repo.Update(ctx, idA, entry("B")), catalog.ErrConflict)
	assert.ErrorIs(t, repo.Update(ctx, 999, entry("C")), catalog.ErrNotFound)
}

func TestSoftwareRepo_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, entry("Tool"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), catalog.ErrNotFound)
	_, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	// the name is free again once deleted
	_, err = repo.Insert(ctx, entry("Tool"))
	assert.NoError(t, err)
}

func TestSoftwareRepo_ListOrderedByName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		_, err := repo.Insert(ctx, entry(name))
		require.NoError(t, err)
	}

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, "Mid", got[1].Name)
	assert.Equal(t, "Zeta", got[2].Name)
}

func TestSoftwareRepo_Search(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	vscode := entry("VS Code")
	vscode.Description = "source code editor"
	_, err := repo.Insert(ctx, vscode)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, entry("7-Zip"))
	require.NoError(t, err)
	pct := entry("100% Tool")
	_, err = repo.Insert(ctx, pct)
	require.NoError(t, err)

	got, err := repo.Search(ctx, "zip")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "7-Zip", got[0].Name)

	got, err = repo.Search(ctx, "EDITOR")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "VS Code", got[0].Name)

	// wildcards in the query are literal
	got, err = repo.Search(ctx, "%")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "100% Tool", got[0].Name)
}

package jsondb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/clipnotes/internal/models"
	"github.com/patric-chuzhbe/clipnotes/internal/user"
)

func newTestDB(t *testing.T) *JSONDB {
	t.Helper()
	fileName := filepath.Join(t.TempDir(), "db_test.json")
	db, err := New(fileName)
	require.NoError(t, err)
	require.NotNil(t, db)
	return db
}

func TestCreateUserAssignsID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	userID, err := db.CreateUser(ctx, &user.User{Username: "alice", PasswordHash: "hash"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, userID)

	usr, found, err := db.FindUserByUsername(ctx, "alice", nil)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, userID, usr.ID)
	assert.Equal(t, "hash", usr.PasswordHash)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.CreateUser(ctx, &user.User{Username: "alice", PasswordHash: "hash"}, nil)
	require.NoError(t, err)

	_, err = db.CreateUser(ctx, &user.User{Username: "alice", PasswordHash: "other"}, nil)
	assert.ErrorIs(t, err, models.ErrDuplicateUsername)

	count, err := db.GetNumberOfUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestClipLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	clip := &models.Clip{
		URL:         "http://example.com/video",
		Title:       "Demo",
		OwnerUserID: "owner-id",
	}
	clipID, err := db.CreateClip(ctx, clip, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), clipID)

	found, foundOK, err := db.FindClipByID(ctx, clipID)
	require.NoError(t, err)
	require.True(t, foundOK)
	assert.Equal(t, "Demo", found.Title)
	assert.Equal(t, "owner-id", found.OwnerUserID)

	clips, err := db.FindClips(ctx)
	require.NoError(t, err)
	require.Len(t, clips, 1)

	deleted, err := db.DeleteClip(ctx, clipID)
	require.NoError(t, err)
	assert.True(t, deleted)

	clips, err = db.FindClips(ctx)
	require.NoError(t, err)
	assert.Empty(t, clips)
}

func TestDeleteClipNonexistent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	deleted, err := db.DeleteClip(ctx, 42)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteClipCascadesHighlights(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	clipID, err := db.CreateClip(ctx, &models.Clip{URL: "http://x", Title: "Demo", OwnerUserID: "o"}, nil)
	require.NoError(t, err)

	_, err = db.CreateHighlight(ctx, &models.Highlight{ClipID: clipID, HighlightText: "good part"}, nil)
	require.NoError(t, err)

	deleted, err := db.DeleteClip(ctx, clipID)
	require.NoError(t, err)
	require.True(t, deleted)

	count, err := db.GetNumberOfHighlights(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCreateHighlightForNonexistentClip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.CreateHighlight(ctx, &models.Highlight{ClipID: 42, HighlightText: "orphan"}, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestHighlightsKeepInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	clipID, err := db.CreateClip(ctx, &models.Clip{URL: "http://x", Title: "Demo", OwnerUserID: "o"}, nil)
	require.NoError(t, err)

	for _, text := range []string{"first", "second", "third"} {
		_, err = db.CreateHighlight(ctx, &models.Highlight{ClipID: clipID, HighlightText: text}, nil)
		require.NoError(t, err)
	}

	highlights, err := db.FindHighlightsByClipID(ctx, clipID)
	require.NoError(t, err)
	require.Len(t, highlights, 3)
	assert.Equal(t, "first", highlights[0].HighlightText)
	assert.Equal(t, "second", highlights[1].HighlightText)
	assert.Equal(t, "third", highlights[2].HighlightText)
}

func TestCloseAndReloadKeepsData(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "db_test.json")
	ctx := context.Background()

	db, err := New(fileName)
	require.NoError(t, err)

	_, err = db.CreateUser(ctx, &user.User{Username: "alice", PasswordHash: "hash"}, nil)
	require.NoError(t, err)

	clipID, err := db.CreateClip(ctx, &models.Clip{URL: "http://x", Title: "Demo", OwnerUserID: "o"}, nil)
	require.NoError(t, err)

	require.NoError(t, db.Close())

	_, err = os.Stat(fileName)
	require.NoError(t, err)

	reloaded, err := New(fileName)
	require.NoError(t, err)

	_, found, err := reloaded.FindUserByUsername(ctx, "alice", nil)
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = reloaded.FindClipByID(ctx, clipID)
	require.NoError(t, err)
	assert.True(t, found)

	// ID assignment continues after the reload instead of reusing taken IDs.
	nextClipID, err := reloaded.CreateClip(ctx, &models.Clip{URL: "http://y", Title: "Other", OwnerUserID: "o"}, nil)
	require.NoError(t, err)
	assert.Equal(t, clipID+1, nextClipID)
}

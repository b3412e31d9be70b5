package memorystorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/clipnotes/internal/models"
)

func TestNew(t *testing.T) {
	db, err := New()
	require.NoError(t, err)
	require.NotNil(t, db)

	assert.NoError(t, db.Ping(context.Background()))
	assert.NoError(t, db.Close())
}

func TestMemoryStorageIsEmptyAndWritable(t *testing.T) {
	db, err := New()
	require.NoError(t, err)
	ctx := context.Background()

	clips, err := db.FindClips(ctx)
	require.NoError(t, err)
	assert.Empty(t, clips)

	clipID, err := db.CreateClip(ctx, &models.Clip{URL: "http://x", Title: "Demo", OwnerUserID: "o"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), clipID)
}

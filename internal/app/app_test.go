package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/clipnotes/internal/config"
	"github.com/patric-chuzhbe/clipnotes/internal/models"
)

func TestGetAvailableStorageType(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		expected int
	}{
		{
			name:     "database DSN wins",
			cfg:      config.Config{DatabaseDSN: "postgres://localhost/db", DBFileName: "db.json"},
			expected: models.StorageTypePostgresql,
		},
		{
			name:     "file storage path",
			cfg:      config.Config{DBFileName: "db.json"},
			expected: models.StorageTypeFile,
		},
		{
			name:     "memory fallback",
			cfg:      config.Config{},
			expected: models.StorageTypeMemory,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, getAvailableStorageType(&test.cfg))
		})
	}
}

func TestGetStorageByTypeMemory(t *testing.T) {
	db, err := getStorageByType(&config.Config{})
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.NoError(t, db.Close())
}

func TestGetStorageByTypeFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "db.json")

	db, err := getStorageByType(&config.Config{DBFileName: fileName})
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.NoError(t, db.Close())
}

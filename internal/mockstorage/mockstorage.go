// Package mockstorage provides a testify-based mock of the storage contract
// for failure-injection tests.
package mockstorage

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/clipnotes/internal/models"
	"github.com/patric-chuzhbe/clipnotes/internal/user"
)

// MockStorage implements the full storage contract via testify/mock.
type MockStorage struct {
	mock.Mock
}

// CreateUser mocks user creation.
func (m *MockStorage) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error) {
	args := m.Called(ctx, usr, transaction)
	return args.String(0), args.Error(1)
}

// FindUserByUsername mocks the username lookup.
func (m *MockStorage) FindUserByUsername(
	ctx context.Context,
	username string,
	transaction *sql.Tx,
) (*user.User, bool, error) {
	args := m.Called(ctx, username, transaction)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// CreateClip mocks clip creation.
func (m *MockStorage) CreateClip(ctx context.Context, clip *models.Clip, transaction *sql.Tx) (int64, error) {
	args := m.Called(ctx, clip, transaction)
	return args.Get(0).(int64), args.Error(1)
}

// FindClips mocks the clip listing.
func (m *MockStorage) FindClips(ctx context.Context) ([]models.Clip, error) {
	args := m.Called(ctx)
	clips, _ := args.Get(0).([]models.Clip)
	return clips, args.Error(1)
}

// FindClipByID mocks the clip lookup.
func (m *MockStorage) FindClipByID(ctx context.Context, clipID int64) (*models.Clip, bool, error) {
	args := m.Called(ctx, clipID)
	clip, _ := args.Get(0).(*models.Clip)
	return clip, args.Bool(1), args.Error(2)
}

// DeleteClip mocks clip deletion.
func (m *MockStorage) DeleteClip(ctx context.Context, clipID int64) (bool, error) {
	args := m.Called(ctx, clipID)
	return args.Bool(0), args.Error(1)
}

// CreateHighlight mocks highlight creation.
func (m *MockStorage) CreateHighlight(
	ctx context.Context,
	highlight *models.Highlight,
	transaction *sql.Tx,
) (int64, error) {
	args := m.Called(ctx, highlight, transaction)
	return args.Get(0).(int64), args.Error(1)
}

// FindHighlightsByClipID mocks the highlight listing.
func (m *MockStorage) FindHighlightsByClipID(ctx context.Context, clipID int64) ([]models.Highlight, error) {
	args := m.Called(ctx, clipID)
	highlights, _ := args.Get(0).([]models.Highlight)
	return highlights, args.Error(1)
}

// GetNumberOfUsers mocks the user count.
func (m *MockStorage) GetNumberOfUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// GetNumberOfClips mocks the clip count.
func (m *MockStorage) GetNumberOfClips(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// GetNumberOfHighlights mocks the highlight count.
func (m *MockStorage) GetNumberOfHighlights(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// BeginTransaction mocks transaction start.
func (m *MockStorage) BeginTransaction() (*sql.Tx, error) {
	args := m.Called()
	tx, _ := args.Get(0).(*sql.Tx)
	return tx, args.Error(1)
}

// RollbackTransaction mocks transaction rollback.
func (m *MockStorage) RollbackTransaction(transaction *sql.Tx) error {
	args := m.Called(transaction)
	return args.Error(0)
}

// CommitTransaction mocks transaction commit.
func (m *MockStorage) CommitTransaction(transaction *sql.Tx) error {
	args := m.Called(transaction)
	return args.Error(0)
}

// Ping mocks the health check.
func (m *MockStorage) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks resource release.
func (m *MockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Package storage declares the full persistence contract implemented by
// every storage backend (PostgreSQL, JSON file, in-memory).
package storage

import (
	"context"
	"database/sql"

	"github.com/patric-chuzhbe/clipnotes/internal/models"
	"github.com/patric-chuzhbe/clipnotes/internal/user"
)

// Storage is the complete persistence contract of the service.
// Inserted IDs and affected-row outcomes are always part of the return
// values, never hidden call-site state.
type Storage interface {
	CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error)

	FindUserByUsername(
		ctx context.Context,
		username string,
		transaction *sql.Tx,
	) (*user.User, bool, error)

	CreateClip(ctx context.Context, clip *models.Clip, transaction *sql.Tx) (int64, error)

	FindClips(ctx context.Context) ([]models.Clip, error)

	FindClipByID(ctx context.Context, clipID int64) (*models.Clip, bool, error)

	DeleteClip(ctx context.Context, clipID int64) (bool, error)

	CreateHighlight(
		ctx context.Context,
		highlight *models.Highlight,
		transaction *sql.Tx,
	) (int64, error)

	FindHighlightsByClipID(ctx context.Context, clipID int64) ([]models.Highlight, error)

	GetNumberOfUsers(ctx context.Context) (int64, error)

	GetNumberOfClips(ctx context.Context) (int64, error)

	GetNumberOfHighlights(ctx context.Context) (int64, error)

	BeginTransaction() (*sql.Tx, error)

	RollbackTransaction(transaction *sql.Tx) error

	CommitTransaction(transaction *sql.Tx) error

	Ping(ctx context.Context) error

	Close() error
}

// Package service holds the business logic between the HTTP layer and the
// storage backends: credential handling at signup/login, ownership-aware
// clip and highlight operations, and the markdown export rendering.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/clipnotes/internal/models"
	"github.com/patric-chuzhbe/clipnotes/internal/passhash"
	"github.com/patric-chuzhbe/clipnotes/internal/user"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error)

	FindUserByUsername(
		ctx context.Context,
		username string,
		transaction *sql.Tx,
	) (*user.User, bool, error)
}

type clipKeeper interface {
	CreateClip(ctx context.Context, clip *models.Clip, transaction *sql.Tx) (int64, error)

	FindClips(ctx context.Context) ([]models.Clip, error)

	FindClipByID(ctx context.Context, clipID int64) (*models.Clip, bool, error)

	DeleteClip(ctx context.Context, clipID int64) (bool, error)
}

type highlightKeeper interface {
	CreateHighlight(
		ctx context.Context,
		highlight *models.Highlight,
		transaction *sql.Tx,
	) (int64, error)

	FindHighlightsByClipID(ctx context.Context, clipID int64) ([]models.Highlight, error)
}

type statsKeeper interface {
	GetNumberOfUsers(ctx context.Context) (int64, error)

	GetNumberOfClips(ctx context.Context) (int64, error)

	GetNumberOfHighlights(ctx context.Context) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type transactioner interface {
	BeginTransaction() (*sql.Tx, error)

	RollbackTransaction(transaction *sql.Tx) error

	CommitTransaction(transaction *sql.Tx) error
}

type storage interface {
	userKeeper
	clipKeeper
	highlightKeeper
	statsKeeper
	pinger
	transactioner
}

// ErrInvalidCredentials is returned by Login for an unknown username or a
// wrong password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service implements the application's business operations over a storage backend.
type Service struct {
	db storage
}

// New creates a Service over the given storage backend.
func New(db storage) *Service {
	return &Service{db: db}
}

// SignUp hashes the password and creates a new user, returning the new user ID.
// Returns models.ErrDuplicateUsername when the username is already taken.
func (s *Service) SignUp(ctx context.Context, username, password string) (string, error) {
	hash, err := passhash.Hash(password)
	if err != nil {
		return "", fmt.Errorf("in internal/service/service.go/SignUp(): error while `passhash.Hash()` calling: %w", err)
	}

	transaction, err := s.db.BeginTransaction()
	if err != nil {
		return "", err
	}
	defer func() {
		_ = s.db.RollbackTransaction(transaction)
	}()

	userID, err := s.db.CreateUser(
		ctx,
		&user.User{
			Username:     username,
			PasswordHash: hash,
		},
		transaction,
	)
	if err != nil {
		return "", err
	}

	if err := s.db.CommitTransaction(transaction); err != nil {
		return "", err
	}

	return userID, nil
}

// Login verifies the credentials and returns the matching user.
// Returns ErrInvalidCredentials when the username is unknown or the password
// does not match its stored hash.
func (s *Service) Login(ctx context.Context, username, password string) (*user.User, error) {
	usr, found, err := s.db.FindUserByUsername(ctx, username, nil)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrInvalidCredentials
	}

	if !passhash.Verify(password, usr.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return usr, nil
}

// CreateClip stores a new clip attributed to the owner and returns it with
// its assigned ID.
func (s *Service) CreateClip(
	ctx context.Context,
	url, title, description, ownerUserID string,
) (*models.Clip, error) {
	clip := &models.Clip{
		URL:         url,
		Title:       title,
		Description: description,
		OwnerUserID: ownerUserID,
	}

	_, err := s.db.CreateClip(ctx, clip, nil)
	if err != nil {
		return nil, err
	}

	return clip, nil
}

// ListClips returns every stored clip in insertion order.
func (s *Service) ListClips(ctx context.Context) ([]models.Clip, error) {
	return s.db.FindClips(ctx)
}

// GetClip returns the clip with the given ID or models.ErrNotFound.
func (s *Service) GetClip(ctx context.Context, clipID int64) (*models.Clip, error) {
	clip, found, err := s.db.FindClipByID(ctx, clipID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrNotFound
	}

	return clip, nil
}

// DeleteClip removes the clip with the given ID; dependent highlights are
// removed as well. Returns models.ErrNotFound when no row was affected.
func (s *Service) DeleteClip(ctx context.Context, clipID int64) error {
	deleted, err := s.db.DeleteClip(ctx, clipID)
	if err != nil {
		return err
	}
	if !deleted {
		return models.ErrNotFound
	}

	return nil
}

// AddHighlight attaches a new highlight to an existing clip.
// Returns models.ErrNotFound when the clip does not exist.
func (s *Service) AddHighlight(ctx context.Context, clipID int64, text string) (*models.Highlight, error) {
	transaction, err := s.db.BeginTransaction()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = s.db.RollbackTransaction(transaction)
	}()

	_, found, err := s.db.FindClipByID(ctx, clipID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrNotFound
	}

	highlight := &models.Highlight{
		ClipID:        clipID,
		HighlightText: text,
	}

	_, err = s.db.CreateHighlight(ctx, highlight, transaction)
	if err != nil {
		return nil, err
	}

	if err := s.db.CommitTransaction(transaction); err != nil {
		return nil, err
	}

	return highlight, nil
}

// ListHighlights returns the clip's highlights in insertion order.
func (s *Service) ListHighlights(ctx context.Context, clipID int64) ([]models.Highlight, error) {
	return s.db.FindHighlightsByClipID(ctx, clipID)
}

// ExportMarkdown renders the clip's highlights as a markdown document.
// Returns models.ErrNotFound when the clip does not exist; the highlight
// read is not attempted in that case.
func (s *Service) ExportMarkdown(ctx context.Context, clipID int64) (string, error) {
	clip, err := s.GetClip(ctx, clipID)
	if err != nil {
		return "", err
	}

	highlights, err := s.db.FindHighlightsByClipID(ctx, clipID)
	if err != nil {
		return "", err
	}

	return RenderMarkdown(clip, highlights), nil
}

// RenderMarkdown produces the export document: the clip title as a heading
// followed by one bulleted line per highlight in stored order.
func RenderMarkdown(clip *models.Clip, highlights []models.Highlight) string {
	var builder strings.Builder
	builder.WriteString("# " + clip.Title + "\n\n## Highlights\n")

	lines := funk.Map(highlights, func(highlight models.Highlight) string {
		return "- " + highlight.HighlightText + "\n"
	}).([]string)
	for _, line := range lines {
		builder.WriteString(line)
	}

	return builder.String()
}

// GetStats returns the total user, clip and highlight counts.
func (s *Service) GetStats(ctx context.Context) (*models.StatsResponse, error) {
	users, err := s.db.GetNumberOfUsers(ctx)
	if err != nil {
		return nil, err
	}

	clips, err := s.db.GetNumberOfClips(ctx)
	if err != nil {
		return nil, err
	}

	highlights, err := s.db.GetNumberOfHighlights(ctx)
	if err != nil {
		return nil, err
	}

	return &models.StatsResponse{
		Users:      users,
		Clips:      clips,
		Highlights: highlights,
	}, nil
}

// Ping verifies that the storage backend is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

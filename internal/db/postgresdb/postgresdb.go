// Package postgresdb provides the PostgreSQL-based implementation of the
// storage contract for persisting users, clips and highlights.
// It runs goose migrations at startup and supports transactional operations.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/patric-chuzhbe/clipnotes/internal/models"
	"github.com/patric-chuzhbe/clipnotes/internal/user"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

// PostgresDB is a PostgreSQL-backed implementation of the storage contract.
// It handles all persistence operations via a PostgreSQL database connection.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset enables or disables resetting the database schema before migration.
// It can be used for test setups or development purposes.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
// Optionally accepts initialization options, such as WithDBPreReset.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil,
				fmt.Errorf(
					"in internal/db/postgresdb/postgresdb.go/New(): error while `result.resetDB()` calling: %w",
					err,
				)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.SetDialect()` calling: %w",
				err,
			)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.Up()` calling: %w",
				err,
			)
	}

	return result, nil
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// CreateUser inserts a new user record into the database.
// Returns models.ErrDuplicateUsername when the unique constraint on the
// username is violated.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error) {
	var database queryer
	if transaction == nil {
		database = db.database
	} else {
		database = transaction
	}

	row := database.QueryRowContext(
		ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`,
		usr.Username,
		usr.PasswordHash,
	)
	var userIDFromDB string
	err := row.Scan(&userIDFromDB)
	if err != nil {
		if isPgError(err, pgErrUniqueViolation) {
			return "", models.ErrDuplicateUsername
		}
		return "", err
	}

	usr.ID = userIDFromDB

	return userIDFromDB, nil
}

// FindUserByUsername fetches a user by username.
// The second return value reports whether the user exists.
func (db *PostgresDB) FindUserByUsername(
	ctx context.Context,
	username string,
	transaction *sql.Tx,
) (*user.User, bool, error) {
	var database queryer
	if transaction == nil {
		database = db.database
	} else {
		database = transaction
	}

	row := database.QueryRowContext(
		ctx,
		`SELECT id, username, password_hash FROM users WHERE username = $1`,
		username,
	)
	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Username, &usr.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return usr, true, nil
}

// CreateClip inserts a new clip attributed to its owner and returns the
// generated clip ID.
func (db *PostgresDB) CreateClip(ctx context.Context, clip *models.Clip, transaction *sql.Tx) (int64, error) {
	var database queryer
	if transaction == nil {
		database = db.database
	} else {
		database = transaction
	}

	row := database.QueryRowContext(
		ctx,
		`
			INSERT INTO clips (url, title, description, owner_user_id)
				VALUES ($1, $2, $3, $4)
				RETURNING id
		`,
		clip.URL,
		clip.Title,
		clip.Description,
		clip.OwnerUserID,
	)
	var clipIDFromDB int64
	err := row.Scan(&clipIDFromDB)
	if err != nil {
		return 0, err
	}

	clip.ID = clipIDFromDB

	return clipIDFromDB, nil
}

// FindClips returns every clip ordered by insertion.
func (db *PostgresDB) FindClips(ctx context.Context) ([]models.Clip, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT id, url, title, COALESCE(description, ''), owner_user_id FROM clips ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.Clip{}
	for rows.Next() {
		var clip models.Clip
		err = rows.Scan(&clip.ID, &clip.URL, &clip.Title, &clip.Description, &clip.OwnerUserID)
		if err != nil {
			return nil, err
		}

		result = append(result, clip)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return result, nil
}

// FindClipByID fetches a clip by its ID.
// The second return value reports whether the clip exists.
func (db *PostgresDB) FindClipByID(ctx context.Context, clipID int64) (*models.Clip, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, url, title, COALESCE(description, ''), owner_user_id FROM clips WHERE id = $1`,
		clipID,
	)
	clip := &models.Clip{}
	err := row.Scan(&clip.ID, &clip.URL, &clip.Title, &clip.Description, &clip.OwnerUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return clip, true, nil
}

// DeleteClip removes a clip; dependent highlights are removed by the
// ON DELETE CASCADE constraint. The returned bool reports whether a row
// was affected.
func (db *PostgresDB) DeleteClip(ctx context.Context, clipID int64) (bool, error) {
	result, err := db.database.ExecContext(
		ctx,
		`DELETE FROM clips WHERE id = $1`,
		clipID,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// CreateHighlight inserts a new highlight and returns the generated ID.
// Returns models.ErrNotFound when the referenced clip does not exist
// (foreign key violation).
func (db *PostgresDB) CreateHighlight(
	ctx context.Context,
	highlight *models.Highlight,
	transaction *sql.Tx,
) (int64, error) {
	var database queryer
	if transaction == nil {
		database = db.database
	} else {
		database = transaction
	}

	row := database.QueryRowContext(
		ctx,
		`INSERT INTO highlights (clip_id, highlight_text) VALUES ($1, $2) RETURNING id`,
		highlight.ClipID,
		highlight.HighlightText,
	)
	var highlightIDFromDB int64
	err := row.Scan(&highlightIDFromDB)
	if err != nil {
		if isPgError(err, pgErrForeignKeyViolation) {
			return 0, models.ErrNotFound
		}
		return 0, err
	}

	highlight.ID = highlightIDFromDB

	return highlightIDFromDB, nil
}

// FindHighlightsByClipID returns a clip's highlights ordered by insertion.
func (db *PostgresDB) FindHighlightsByClipID(ctx context.Context, clipID int64) ([]models.Highlight, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT id, clip_id, highlight_text FROM highlights WHERE clip_id = $1 ORDER BY id`,
		clipID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.Highlight{}
	for rows.Next() {
		var highlight models.Highlight
		err = rows.Scan(&highlight.ID, &highlight.ClipID, &highlight.HighlightText)
		if err != nil {
			return nil, err
		}

		result = append(result, highlight)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (db *PostgresDB) countRows(ctx context.Context, query string) (int64, error) {
	row := db.database.QueryRowContext(ctx, query)
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// GetNumberOfUsers returns the total user count.
func (db *PostgresDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	return db.countRows(ctx, `SELECT COUNT(*) FROM users`)
}

// GetNumberOfClips returns the total clip count.
func (db *PostgresDB) GetNumberOfClips(ctx context.Context) (int64, error) {
	return db.countRows(ctx, `SELECT COUNT(*) FROM clips`)
}

// GetNumberOfHighlights returns the total highlight count.
func (db *PostgresDB) GetNumberOfHighlights(ctx context.Context) (int64, error) {
	return db.countRows(ctx, `SELECT COUNT(*) FROM highlights`)
}

// CommitTransaction commits the given SQL transaction.
// Returns an error if the commit operation fails.
func (db *PostgresDB) CommitTransaction(transaction *sql.Tx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred while committing transaction: %v", r)
		}
	}()

	return transaction.Commit()
}

// RollbackTransaction rolls back the given SQL transaction.
// If rollback fails, the returned error describes the issue.
func (db *PostgresDB) RollbackTransaction(transaction *sql.Tx) error {
	return transaction.Rollback()
}

// BeginTransaction starts a new SQL transaction and returns it.
// The caller is responsible for committing or rolling it back.
func (db *PostgresDB) BeginTransaction() (*sql.Tx, error) {
	return db.database.Begin()
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/resetDB(): error while `db.database.ExecContext()` calling: %w",
			err,
		)
	}
	return nil
}

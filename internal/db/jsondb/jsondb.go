// Package jsondb implements the storage contract on top of an in-process
// cache persisted to a single JSON file on Close. It backs both the file
// storage tier and, via the memorystorage wrapper, the in-memory tier.
package jsondb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/patric-chuzhbe/clipnotes/internal/models"
	"github.com/patric-chuzhbe/clipnotes/internal/user"
)

// JSONDB is a JSON-file-backed implementation of the storage contract.
// All slices keep insertion order, which defines listing order.
type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

// CacheStruct is the serializable state of the database.
type CacheStruct struct {
	Users           []*user.User
	Clips           []*models.Clip
	Highlights      []*models.Highlight
	NextClipID      int64
	NextHighlightID int64
}

func newCache() CacheStruct {
	return CacheStruct{
		Users:           []*user.User{},
		Clips:           []*models.Clip{},
		Highlights:      []*models.Highlight{},
		NextClipID:      1,
		NextHighlightID: 1,
	}
}

func initDBFile(fileName string) error {
	emptyCache := newCache()
	return writeToJSONFile(fileName, &emptyCache)
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err2 != nil {
		return fmt.Errorf("error opening file: %s", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, cacheMap *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cacheMap)
	if err != nil {
		return err
	}

	return nil
}

// NewEmpty returns a database with an empty cache and no backing file.
// It is the building block of the in-memory storage tier.
func NewEmpty() *JSONDB {
	return &JSONDB{
		Cache: newCache(),
	}
}

// New loads the database from fileName, creating an empty one when the file
// does not exist yet.
func New(fileName string) (*JSONDB, error) {
	jsonDB := JSONDB{
		fileName: fileName,
		Cache:    newCache(),
	}

	err := parseJSONFile(jsonDB.fileName, &jsonDB.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initDBFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(jsonDB.fileName, &jsonDB.Cache)
		if err != nil {
			return nil, err
		}
	}

	return &jsonDB, nil
}

// CreateUser appends a new user, assigning a fresh UUID.
// Returns models.ErrDuplicateUsername when the username is already taken.
func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.Cache.Users {
		if existing.Username == usr.Username {
			return "", models.ErrDuplicateUsername
		}
	}

	usr.ID = uuid.NewString()
	db.Cache.Users = append(db.Cache.Users, usr)

	return usr.ID, nil
}

// FindUserByUsername returns the user with the given username, if any.
func (db *JSONDB) FindUserByUsername(
	ctx context.Context,
	username string,
	transaction *sql.Tx,
) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, usr := range db.Cache.Users {
		if usr.Username == username {
			return usr, true, nil
		}
	}

	return nil, false, nil
}

// CreateClip appends a new clip and returns its assigned ID.
func (db *JSONDB) CreateClip(ctx context.Context, clip *models.Clip, transaction *sql.Tx) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	clip.ID = db.Cache.NextClipID
	db.Cache.NextClipID++
	db.Cache.Clips = append(db.Cache.Clips, clip)

	return clip.ID, nil
}

// FindClips returns every clip in insertion order.
func (db *JSONDB) FindClips(ctx context.Context) ([]models.Clip, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]models.Clip, 0, len(db.Cache.Clips))
	for _, clip := range db.Cache.Clips {
		result = append(result, *clip)
	}

	return result, nil
}

// FindClipByID returns the clip with the given ID, if any.
func (db *JSONDB) FindClipByID(ctx context.Context, clipID int64) (*models.Clip, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, clip := range db.Cache.Clips {
		if clip.ID == clipID {
			return clip, true, nil
		}
	}

	return nil, false, nil
}

// DeleteClip removes the clip and cascades to its highlights.
// The returned bool reports whether a clip row was actually removed.
func (db *JSONDB) DeleteClip(ctx context.Context, clipID int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	deleted := false
	clips := db.Cache.Clips[:0]
	for _, clip := range db.Cache.Clips {
		if clip.ID == clipID {
			deleted = true
			continue
		}
		clips = append(clips, clip)
	}
	db.Cache.Clips = clips

	if !deleted {
		return false, nil
	}

	highlights := db.Cache.Highlights[:0]
	for _, highlight := range db.Cache.Highlights {
		if highlight.ClipID == clipID {
			continue
		}
		highlights = append(highlights, highlight)
	}
	db.Cache.Highlights = highlights

	return true, nil
}

// CreateHighlight appends a new highlight and returns its assigned ID.
// Returns models.ErrNotFound when the referenced clip does not exist.
func (db *JSONDB) CreateHighlight(
	ctx context.Context,
	highlight *models.Highlight,
	transaction *sql.Tx,
) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	clipExists := false
	for _, clip := range db.Cache.Clips {
		if clip.ID == highlight.ClipID {
			clipExists = true
			break
		}
	}
	if !clipExists {
		return 0, models.ErrNotFound
	}

	highlight.ID = db.Cache.NextHighlightID
	db.Cache.NextHighlightID++
	db.Cache.Highlights = append(db.Cache.Highlights, highlight)

	return highlight.ID, nil
}

// FindHighlightsByClipID returns the clip's highlights in insertion order.
func (db *JSONDB) FindHighlightsByClipID(ctx context.Context, clipID int64) ([]models.Highlight, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := []models.Highlight{}
	for _, highlight := range db.Cache.Highlights {
		if highlight.ClipID == clipID {
			result = append(result, *highlight)
		}
	}

	return result, nil
}

// GetNumberOfUsers returns the total user count.
func (db *JSONDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Users)), nil
}

// GetNumberOfClips returns the total clip count.
func (db *JSONDB) GetNumberOfClips(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Clips)), nil
}

// GetNumberOfHighlights returns the total highlight count.
func (db *JSONDB) GetNumberOfHighlights(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Highlights)), nil
}

// CommitTransaction is a no-op for the file-backed storage.
func (db *JSONDB) CommitTransaction(transaction *sql.Tx) error {
	return nil
}

// RollbackTransaction is a no-op for the file-backed storage.
func (db *JSONDB) RollbackTransaction(transaction *sql.Tx) error {
	return nil
}

// BeginTransaction is a no-op for the file-backed storage.
func (db *JSONDB) BeginTransaction() (*sql.Tx, error) {
	return nil, nil
}

// Ping always succeeds for the file-backed storage.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close persists the cache to the JSON file.
func (db *JSONDB) Close() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return writeToJSONFile(db.fileName, &db.Cache)
}

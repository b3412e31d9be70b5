// Package models contains the domain entities, API request/response shapes
// and sentinel errors shared between the router, service and storage layers.
package models

import "errors"

// Clip is a stored reference to external media with descriptive metadata,
// owned by the user who created it.
type Clip struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	OwnerUserID string `json:"owner_user_id"`
}

// Highlight is a user-authored text annotation attached to a clip.
type Highlight struct {
	ID            int64  `json:"id"`
	ClipID        int64  `json:"clip_id"`
	HighlightText string `json:"highlight_text"`
}

// AuthRequest is the body of both the register and the login endpoints.
type AuthRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse is returned on successful signup.
type RegisterResponse struct {
	UserID string `json:"user_id"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token string `json:"token"`
}

// ClipCreateRequest is the body of the clip creation endpoint.
type ClipCreateRequest struct {
	URL         string `json:"url" validate:"required,url"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// ClipResponse wraps a single clip.
type ClipResponse struct {
	Clip Clip `json:"clip"`
}

// ClipsResponse wraps the clip listing.
type ClipsResponse struct {
	Clips []Clip `json:"clips"`
}

// HighlightCreateRequest is the body of the highlight creation endpoint.
type HighlightCreateRequest struct {
	HighlightText string `json:"highlight_text" validate:"required"`
}

// HighlightResponse wraps a single highlight.
type HighlightResponse struct {
	Highlight Highlight `json:"highlight"`
}

// HighlightsResponse wraps the highlight listing of a clip.
type HighlightsResponse struct {
	Highlights []Highlight `json:"highlights"`
}

// DeleteResponse reports whether the delete removed a row.
type DeleteResponse struct {
	OK bool `json:"ok"`
}

// StatsResponse is the payload of the internal stats endpoint.
type StatsResponse struct {
	Users      int64 `json:"users"`
	Clips      int64 `json:"clips"`
	Highlights int64 `json:"highlights"`
}

// Storage backend kinds selectable via configuration.
const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("requested entity was not found")

// ErrDuplicateUsername is returned by user creation when the username is already taken.
var ErrDuplicateUsername = errors.New("username is already taken")

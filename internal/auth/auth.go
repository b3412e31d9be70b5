// Package auth provides JWT-based session token issuance and verification
// plus the HTTP middleware that resolves an inbound request's identity.
// Tokens are read from the Authorization header (with or without the
// "Bearer " prefix) or from the auth cookie.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/clipnotes/internal/logger"
)

// Claims represents the JWT claims used by the system.
// It embeds standard JWT claims and adds a user-specific identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key used to store and retrieve the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// ErrNoCredential is returned when a request carries no token at all.
var ErrNoCredential = errors.New("missing credential")

// ErrInvalidCredential is returned when a token is malformed, carries a bad
// signature, or has expired.
var ErrInvalidCredential = errors.New("invalid credential")

// Auth issues and verifies session tokens and authenticates HTTP requests.
// Verification is a pure function of the token, the signing key and the
// current time; no storage lookup is involved, so tokens cannot be revoked.
type Auth struct {
	// authCookieName is the name of the cookie used to carry the JWT.
	authCookieName string

	// signingSecretKey is the key used to sign and verify JWTs.
	// It is loaded once at startup and never rotated within a process lifetime.
	signingSecretKey []byte

	// tokenTTL bounds the lifetime of every issued token.
	tokenTTL time.Duration
}

// New creates an Auth configured with the cookie name, signing secret and token TTL.
func New(authCookieName string, signingSecretKey []byte, tokenTTL time.Duration) *Auth {
	return &Auth{
		authCookieName:   authCookieName,
		signingSecretKey: signingSecretKey,
		tokenTTL:         tokenTTL,
	}
}

// IssueToken produces a signed token asserting the given user's identity.
// The token expires tokenTTL after issuance.
func (a *Auth) IssueToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
			},
			UserID: userID,
		},
	)

	tokenString, err := token.SignedString(a.signingSecretKey)
	if err != nil {
		return "", fmt.Errorf("in internal/auth/auth.go/IssueToken(): error while `token.SignedString()` calling: %w", err)
	}

	return tokenString, nil
}

// VerifyToken resolves a token string into the user ID it asserts.
// It returns ErrInvalidCredential when the signature does not match,
// the payload is malformed, or the token has expired.
func (a *Auth) VerifyToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.signingSecretKey, nil
		},
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidCredential
	}

	return claims.UserID, nil
}

// AuthCookie builds the cookie that carries the session token to the client.
// The cookie is scoped to the whole site so it travels with every API request,
// not just the login path that set it.
func (a *Auth) AuthCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:  a.authCookieName,
		Value: token,
		Path:  "/",
	}
}

// AuthenticateUser is an HTTP middleware that rejects requests without a
// valid token and stores the resolved user ID in the request context.
// A missing token yields 401 with a "missing credential" message; a present
// but unverifiable token yields 401 with an "invalid credential" message.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		userID, err := a.resolveRequestIdentity(request)
		if err != nil {
			logger.Log.Debugln("Error calling the `a.resolveRequestIdentity()`: ", zap.Error(err))
			http.Error(response, err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, userID)
		requestWithCtx := request.WithContext(ctx)

		h.ServeHTTP(response, requestWithCtx)
	}

	return http.HandlerFunc(middleware)
}

// UserIDFromContext extracts the authenticated user's ID from the request context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)

	return userID, ok && userID != ""
}

func (a *Auth) getTokenStringFromAuthorizationHeaderOrCookie(request *http.Request) string {
	tokenString := request.Header.Get("Authorization")
	if tokenString != "" {
		return strings.TrimPrefix(tokenString, "Bearer ")
	}
	cookie, err := request.Cookie(a.authCookieName)
	if err == nil {
		tokenString = cookie.Value
	}

	return tokenString
}

func (a *Auth) resolveRequestIdentity(request *http.Request) (string, error) {
	tokenString := a.getTokenStringFromAuthorizationHeaderOrCookie(request)
	if tokenString == "" {
		return "", ErrNoCredential
	}

	return a.VerifyToken(tokenString)
}

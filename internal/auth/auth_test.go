package auth

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/clipnotes/internal/logger"
)

const (
	testCookieName = "clipnotes_auth_test"
	testUserID     = "0b29e21c-35ae-4e2e-9cba-38853bd92da5"
)

var testSigningKey = []byte("test-signing-secret-key")

func TestMain(m *testing.M) {
	if err := logger.Init("debug"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestAuth(tokenTTL time.Duration) *Auth {
	return New(testCookieName, testSigningKey, tokenTTL)
}

func buildTokenWithExpiry(t *testing.T, key []byte, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: testUserID,
		},
	)
	tokenString, err := token.SignedString(key)
	require.NoError(t, err)
	return tokenString
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	authHandler := newTestAuth(time.Hour)

	token, err := authHandler.IssueToken(testUserID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := authHandler.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)
}

func TestVerifyTokenSignedWithDifferentKey(t *testing.T) {
	authHandler := newTestAuth(time.Hour)

	forged := buildTokenWithExpiry(t, []byte("some-other-key"), time.Now().Add(time.Hour))

	_, err := authHandler.VerifyToken(forged)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyMalformedToken(t *testing.T) {
	authHandler := newTestAuth(time.Hour)

	_, err := authHandler.VerifyToken("definitely.not.a-jwt")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyTokenExpiryBoundary(t *testing.T) {
	authHandler := newTestAuth(time.Hour)

	stillValid := buildTokenWithExpiry(t, testSigningKey, time.Now().Add(2*time.Second))
	userID, err := authHandler.VerifyToken(stillValid)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)

	expired := buildTokenWithExpiry(t, testSigningKey, time.Now().Add(-time.Second))
	_, err = authHandler.VerifyToken(expired)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyTokenIssuedWithNegativeTTL(t *testing.T) {
	authHandler := newTestAuth(-time.Minute)

	token, err := authHandler.IssueToken(testUserID)
	require.NoError(t, err)

	_, err = authHandler.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestAuthCookieIsSiteWide(t *testing.T) {
	authHandler := newTestAuth(time.Hour)

	cookie := authHandler.AuthCookie("token-value")
	assert.Equal(t, testCookieName, cookie.Name)
	assert.Equal(t, "token-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
}

func newProtectedTestHandler(authHandler *Auth, seenUserID *string) http.Handler {
	return authHandler.AuthenticateUser(http.HandlerFunc(
		func(response http.ResponseWriter, request *http.Request) {
			userID, _ := UserIDFromContext(request.Context())
			*seenUserID = userID
			response.WriteHeader(http.StatusOK)
		},
	))
}

func TestAuthenticateUserWithoutCredential(t *testing.T) {
	authHandler := newTestAuth(time.Hour)

	var seenUserID string
	handler := newProtectedTestHandler(authHandler, &seenUserID)

	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), ErrNoCredential.Error())
	assert.Empty(t, seenUserID)
}

func TestAuthenticateUserWithInvalidCredential(t *testing.T) {
	authHandler := newTestAuth(time.Hour)

	var seenUserID string
	handler := newProtectedTestHandler(authHandler, &seenUserID)

	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.Header.Set("Authorization", "garbage")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), ErrInvalidCredential.Error())
}

func TestAuthenticateUserViaAuthorizationHeader(t *testing.T) {
	authHandler := newTestAuth(time.Hour)

	token, err := authHandler.IssueToken(testUserID)
	require.NoError(t, err)

	var seenUserID string
	handler := newProtectedTestHandler(authHandler, &seenUserID)

	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, testUserID, seenUserID)
}

func TestAuthenticateUserViaCookie(t *testing.T) {
	authHandler := newTestAuth(time.Hour)

	token, err := authHandler.IssueToken(testUserID)
	require.NoError(t, err)

	var seenUserID string
	handler := newProtectedTestHandler(authHandler, &seenUserID)

	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.AddCookie(authHandler.AuthCookie(token))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, testUserID, seenUserID)
}

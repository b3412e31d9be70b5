package passhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashProducesDifferentHashesForSamePassword(t *testing.T) {
	first, err := Hash("correct horse battery staple")
	require.NoError(t, err)

	second, err := Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyMatchingPassword(t *testing.T) {
	hash, err := Hash("pw1")
	require.NoError(t, err)

	assert.True(t, Verify("pw1", hash))
}

func TestVerifyNonMatchingPassword(t *testing.T) {
	hash, err := Hash("pw1")
	require.NoError(t, err)

	assert.False(t, Verify("pw2", hash))
}

func TestVerifyGarbageHash(t *testing.T) {
	assert.False(t, Verify("pw1", "not-a-bcrypt-hash"))
}

func TestHashEmptyPassword(t *testing.T) {
	_, err := Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

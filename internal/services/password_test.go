package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher()

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"), "hash should be self-describing: %s", hash)

	assert.True(t, hasher.Verify("correct horse battery staple", hash))
	assert.False(t, hasher.Verify("correct horse battery stapl", hash))
	assert.False(t, hasher.Verify("", hash))
}

func TestPasswordHasher_SaltPerCall(t *testing.T) {
	hasher := NewPasswordHasher()

	h1, err := hasher.Hash("same password")
	require.NoError(t, err)
	h2, err := hasher.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "each hash embeds a fresh salt")
	assert.True(t, hasher.Verify("same password", h1))
	assert.True(t, hasher.Verify("same password", h2))
}

func TestPasswordHasher_MalformedHashFailsClosed(t *testing.T) {
	hasher := NewPasswordHasher()

	malformed := []string{
		"",
		"not a hash",
		"$argon2id$",
		"$argon2id$v=19$m=65536,t=3,p=2$!!!$!!!",
		"$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$",
		"$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$c2FsdA",
		"$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$c2FsdA",
		"$argon2id$v=19$garbage$c2FsdA$c2FsdA",
	}
	for _, hash := range malformed {
		assert.False(t, hasher.Verify("anything", hash), "hash %q must not verify", hash)
	}
}

package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher_HashAndVerify(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(2)
	ctx := context.Background()

	hash, err := hasher.Hash(ctx, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := hasher.Verify(ctx, hash, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify(ctx, hash, "wrong password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_SaltIsPerCall(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(2)
	ctx := context.Background()

	first, err := hasher.Hash(ctx, "same password")
	require.NoError(t, err)
	second, err := hasher.Hash(ctx, "same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// Both still verify despite different salts.
	for _, hash := range []string{first, second} {
		ok, err := hasher.Verify(ctx, hash, "same password")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestHasher_MalformedHash(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(1)
	ctx := context.Background()

	cases := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"not a hash", "plaintext"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
		{"missing sections", "$argon2id$v=19$m=65536,t=3,p=4"},
		{"bad salt encoding", "$argon2id$v=19$m=65536,t=3,p=4$!!!$aGFzaA"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := hasher.Verify(ctx, tc.hash, "whatever")
			assert.ErrorIs(t, err, ErrMalformedHash)
			assert.False(t, ok)
		})
	}
}

func TestHasher_CanceledContext(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := hasher.Hash(ctx, "password")
	assert.Error(t, err)
}

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", string(hash))

	assert.True(t, VerifyPassword("s3cret-pass", hash))
	assert.False(t, VerifyPassword("wrong-pass", hash))
	assert.False(t, VerifyPassword("s3cret-pass", nil))
}

package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenValue(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		value, err := generateTokenValue()
		require.NoError(t, err)
		// 32 random bytes base64url-encode to 43 characters.
		assert.Len(t, value, 43)

		_, dup := seen[value]
		assert.False(t, dup, "duplicate token value generated")
		seen[value] = struct{}{}
	}
}

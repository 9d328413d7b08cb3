package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	require.NoError(t, err)
	assert.Len(t, salt1, SaltSize)

	salt2, err := GenerateSalt()
	require.NoError(t, err)
	assert.NotEqual(t, salt1, salt2, "salts should be random")
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, uint32(Argon2Time), p.Time)
	assert.Equal(t, uint32(Argon2Memory), p.Memory)
	assert.Equal(t, uint8(Argon2Threads), p.Threads)
	assert.Equal(t, uint32(Argon2KeyLen), p.KeyLen)
}

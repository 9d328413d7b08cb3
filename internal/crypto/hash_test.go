package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testParams - облегченные параметры, чтобы тесты не тратили 64MB
var testParams = Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("admin", testParams)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	other, err := HashPassword("admin", testParams)
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salt should differ between hashes")

	_, err = HashPassword("", testParams)
	assert.Error(t, err)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", testParams)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		encoded  string
		wantErr  error
	}{
		{name: "valid", password: "correct horse", encoded: hash},
		{name: "wrong password", password: "battery staple", encoded: hash, wantErr: ErrPasswordMismatch},
		{name: "empty password", password: "", encoded: hash, wantErr: ErrPasswordMismatch},
		{name: "empty hash", password: "x", encoded: "", wantErr: ErrInvalidHash},
		{name: "other algorithm", password: "x", encoded: strings.Replace(hash, "argon2id", "argon2i", 1), wantErr: ErrInvalidHash},
		{name: "bad version", password: "x", encoded: strings.Replace(hash, "v=19", "v=16", 1), wantErr: ErrInvalidHash},
		{name: "bad params", password: "x", encoded: strings.Replace(hash, "m=1024,t=1,p=1", "m=1024", 1), wantErr: ErrInvalidHash},
		{name: "zero time", password: "x", encoded: strings.Replace(hash, "t=1", "t=0", 1), wantErr: ErrInvalidHash},
		{name: "truncated", password: "x", encoded: hash[:strings.LastIndex(hash, "$")], wantErr: ErrInvalidHash},
		{name: "bad base64", password: "x", encoded: hash + "!", wantErr: ErrInvalidHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyPassword(tt.password, tt.encoded)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestVerifyPassword_Normalized(t *testing.T) {
	// "é" одним символом и как "e" + комбинируемый акцент
	hash, err := HashPassword("caf\u00e9-admin", testParams)
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword("cafe\u0301-admin", hash))
}

package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_AdminSeed(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotContains(t, hash, "s3cret!")

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)

	again, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "every seed gets its own salt")
	assert.True(t, CheckPasswordHash("s3cret!", again))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73))
	assert.ErrorContains(t, err, "failed to hash password")
}

func TestCheckPasswordHash(t *testing.T) {
	hash, err := HashPassword("salt-admin-2024")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"matching password", "salt-admin-2024", hash, true},
		{"wrong password", "salt-admin-2025", hash, false},
		{"case matters", "SALT-ADMIN-2024", hash, false},
		{"empty password", "", hash, false},
		{"empty hash", "salt-admin-2024", "", false},
		{"not a bcrypt hash", "salt-admin-2024", "invalidhash", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckPasswordHash(tt.password, tt.hash))
		})
	}
}

package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	digits := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP(6)
		require.NoError(t, err)
		assert.Regexp(t, digits, code)
	}
}

func TestGenerateOTP_OutOfRange(t *testing.T) {
	_, err := GenerateOTP(3)
	assert.Error(t, err)
	_, err = GenerateOTP(9)
	assert.Error(t, err)
}

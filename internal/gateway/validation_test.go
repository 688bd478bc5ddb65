package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCode(t *testing.T) {
	tests := []struct {
		code    string
		wantErr bool
	}{
		{"1234", false},
		{"123456", false},
		{"00001234", false},
		{"", true},
		{"123", true},
		{"123456789", true},
		{"12.5", true},
		{"-1234", true},
		{"+123", true},
		{"12 34", true},
		{"1e10", true},
		{"abcd", true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := ValidateCode(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTagContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"single character", "a", nil},
		{"exactly twenty", strings.Repeat("x", 20), nil},
		{"twenty-one", strings.Repeat("x", 21), ErrTooLong},
		{"empty", "", ErrBlank},
		{"whitespace only", "   \t", ErrBlank},
		{"multibyte counted as characters", strings.Repeat("é", 20), nil},
		{"inner spaces allowed", "slow burn", nil},
		{"invalid utf-8", "go\xff", ErrEncoding},
		{"truncated multibyte", "caf\xc3", ErrEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTagContent(tt.content)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateFlagSource(t *testing.T) {
	assert.NoError(t, ValidateFlagSource("https://example.org/fact-check"))
	assert.ErrorIs(t, ValidateFlagSource(" "), ErrBlank)
	assert.ErrorIs(t, ValidateFlagSource(strings.Repeat("s", 141)), ErrTooLong)
	assert.NoError(t, ValidateFlagSource(strings.Repeat("s", 140)))
	assert.ErrorIs(t, ValidateFlagSource("src\xfe"), ErrEncoding)
	assert.ErrorIs(t, ValidateFreetContent("hi\xff"), ErrEncoding)
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("ada_lovelace"))
	assert.ErrorIs(t, ValidateUsername("ada lovelace"), ErrBadChars)
	assert.ErrorIs(t, ValidateUsername(""), ErrBlank)
	assert.ErrorIs(t, ValidateUsername(strings.Repeat("a", 33)), ErrTooLong)
}

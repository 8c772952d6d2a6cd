package errors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusForCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeInternal, 500},
		{ErrCodeNotFound, 404},
		{ErrCodeConflict, 409},
		{ErrCodeValidation, 400},
		{ErrCodeInvalidSlug, 404},
		{ErrCodeInvalidShape, 404},
		{ErrCodeInvalidCarat, 404},
		{ErrCodeDimensionsNotFound, 404},
		{ErrCodePrerenderLocked, 409},
		{ErrCodeServiceUnavailable, 503},
		{ErrorCode("UNKNOWN"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, HTTPStatusForCode(tt.code), tt.code)
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "internal server error", DefaultMessageForCode(ErrCodeInternal))
	assert.Equal(t, "comparison not found", DefaultMessageForCode(ErrCodeInvalidSlug))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("UNKNOWN")))
}

func TestCatalog_CodesAreWellFormed(t *testing.T) {
	pattern := regexp.MustCompile(`^(COMMON|CAT|CMP)_\d{3}$`)
	for code, info := range catalog {
		assert.Regexp(t, pattern, code.String())
		assert.NotEmpty(t, info.message, code)
		assert.GreaterOrEqual(t, info.status, 400, code)
	}
}

func TestPermanentCodes_ExcludeTransientFailures(t *testing.T) {
	for _, code := range []ErrorCode{ErrCodeCacheError, ErrCodeStorageError, ErrCodeMessagingError, ErrCodeServiceUnavailable, ErrCodePrerenderLocked} {
		assert.False(t, permanentCodes[code], code)
	}
	for _, code := range []ErrorCode{ErrCodeValidation, ErrCodeInvalidSlug, ErrCodeSerialization} {
		assert.True(t, permanentCodes[code], code)
	}
}

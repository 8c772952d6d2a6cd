package errors

import "net/http"

// ErrorCode is a stable "<MODULE>_<NNN>" identifier exposed in API error
// bodies and logs.
type ErrorCode string

func (c ErrorCode) String() string { return string(c) }

// Pseudo codes returned by GetCode; they are never attached to an AppError.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeStorageError       ErrorCode = "COMMON_017"
	ErrCodeMessagingError     ErrorCode = "COMMON_018"
	ErrCodeConfigError        ErrorCode = "COMMON_019"
)

// Catalogue: shapes, carat weights and the dimension table.
const (
	ErrCodeInvalidShape        ErrorCode = "CAT_001"
	ErrCodeInvalidCarat        ErrorCode = "CAT_002"
	ErrCodeDimensionsNotFound  ErrorCode = "CAT_003"
	ErrCodeDimensionsMalformed ErrorCode = "CAT_004"
)

// Comparison pages and publishing.
const (
	ErrCodeInvalidSlug     ErrorCode = "CMP_001"
	ErrCodeRenderFailed    ErrorCode = "CMP_002"
	ErrCodePrerenderLocked ErrorCode = "CMP_003"
	ErrCodePublishFailed   ErrorCode = "CMP_004"
)

type codeInfo struct {
	status    int
	message   string
	permanent bool
}

var catalog = map[ErrorCode]codeInfo{
	ErrCodeInternal:           {http.StatusInternalServerError, "internal server error", false},
	ErrCodeNotFound:           {http.StatusNotFound, "resource not found", true},
	ErrCodeConflict:           {http.StatusConflict, "resource conflict", false},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, "service unavailable", false},
	ErrCodeValidation:         {http.StatusBadRequest, "validation failed", true},
	ErrCodeSerialization:      {http.StatusInternalServerError, "serialization error", true},
	ErrCodeCacheError:         {http.StatusInternalServerError, "cache error", false},
	ErrCodeStorageError:       {http.StatusInternalServerError, "object storage error", false},
	ErrCodeMessagingError:     {http.StatusInternalServerError, "messaging error", false},
	ErrCodeConfigError:        {http.StatusInternalServerError, "configuration error", true},

	ErrCodeInvalidShape:        {http.StatusNotFound, "unknown diamond shape", true},
	ErrCodeInvalidCarat:        {http.StatusNotFound, "carat weight out of range", true},
	ErrCodeDimensionsNotFound:  {http.StatusNotFound, "no dimensions for shape and carat", true},
	ErrCodeDimensionsMalformed: {http.StatusInternalServerError, "malformed dimension table", true},

	ErrCodeInvalidSlug:     {http.StatusNotFound, "comparison not found", true},
	ErrCodeRenderFailed:    {http.StatusInternalServerError, "failed to render page", true},
	ErrCodePrerenderLocked: {http.StatusConflict, "another prerender run holds the lock", false},
	ErrCodePublishFailed:   {http.StatusInternalServerError, "failed to publish site", false},
}

var permanentCodes = func() map[ErrorCode]bool {
	m := make(map[ErrorCode]bool)
	for code, info := range catalog {
		if info.permanent {
			m[code] = true
		}
	}
	return m
}()

// HTTPStatusForCode returns 500 for codes outside the catalog.
func HTTPStatusForCode(code ErrorCode) int {
	if info, ok := catalog[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func DefaultMessageForCode(code ErrorCode) string {
	if info, ok := catalog[code]; ok {
		return info.message
	}
	return "unknown error"
}

package dto

import "net/http"

// Error codes produced by the HTTP layer itself; the domain layer has its
// own set (see domain/shared/errors.go) which shares this namespace.
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain and transport error codes to HTTP status
// codes. Conflicts with current resource state (state machine violations,
// stock shortage, duplicate submissions) all map to 409; a corrupted transfer
// is a server-side failure.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,

	"NOT_FOUND":                http.StatusNotFound,
	"INVALID_INPUT":            http.StatusBadRequest,
	"INVALID_QUANTITY":         http.StatusBadRequest,
	"ALREADY_EXISTS":           http.StatusConflict,
	"CONCURRENCY_CONFLICT":     http.StatusConflict,
	"INSUFFICIENT_STOCK":       http.StatusConflict,
	"INVALID_STATE_TRANSITION": http.StatusConflict,
	"TRANSFER_CORRUPTED":       http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to 500
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

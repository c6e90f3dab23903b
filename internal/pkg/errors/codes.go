package errors

import (
	"fmt"
	"net/http"
)

// Error codes, grouped per pipeline stage. Every code except the common
// range is terminal for the run that raised it.
const (
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer = 1000
	ErrInvalidParams  = 1001
	ErrNotFound       = 1002
	ErrBadRequest     = 1003
	ErrServiceUnavail = 1004

	// Request validation errors (2000-2999)
	ErrMissingSegment = 2000
	ErrNoValidQueries = 2001

	// Evidence errors (3000-3999)
	ErrNoSearchResults            = 3000
	ErrInsufficientSearchResults  = 3001
	ErrNoExtractedContent         = 3002
	ErrInsufficientExtractedPages = 3003

	// Model output errors (4000-4999)
	ErrEmptyModelResponse   = 4000
	ErrMalformedModelOutput = 4001

	// Report assembly errors (5000-5999)
	ErrReportTooShort = 5000
)

var messages = map[int]string{
	Success: "success",

	ErrInternalServer: "internal server error",
	ErrInvalidParams:  "invalid parameters",
	ErrNotFound:       "resource not found",
	ErrBadRequest:     "bad request",
	ErrServiceUnavail: "service unavailable",

	ErrMissingSegment: "segment is required",
	ErrNoValidQueries: "no valid search queries could be derived",

	ErrNoSearchResults:            "no search results collected",
	ErrInsufficientSearchResults:  "insufficient search results",
	ErrNoExtractedContent:         "no page content extracted",
	ErrInsufficientExtractedPages: "insufficient pages extracted",

	ErrEmptyModelResponse:   "completion returned empty response",
	ErrMalformedModelOutput: "completion output could not be recovered",

	ErrReportTooShort: "assembled report below minimum length",
}

var httpStatus = map[int]int{
	Success: http.StatusOK,

	ErrInternalServer: http.StatusInternalServerError,
	ErrInvalidParams:  http.StatusBadRequest,
	ErrNotFound:       http.StatusNotFound,
	ErrBadRequest:     http.StatusBadRequest,
	ErrServiceUnavail: http.StatusServiceUnavailable,

	ErrMissingSegment: http.StatusBadRequest,
	ErrNoValidQueries: http.StatusBadRequest,

	ErrNoSearchResults:            http.StatusUnprocessableEntity,
	ErrInsufficientSearchResults:  http.StatusUnprocessableEntity,
	ErrNoExtractedContent:         http.StatusUnprocessableEntity,
	ErrInsufficientExtractedPages: http.StatusUnprocessableEntity,

	ErrEmptyModelResponse:   http.StatusUnprocessableEntity,
	ErrMalformedModelOutput: http.StatusUnprocessableEntity,

	ErrReportTooShort: http.StatusUnprocessableEntity,
}

// GetMessage returns the registered message for a code
func GetMessage(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return fmt.Sprintf("unknown error (code %d)", code)
}

// GetHTTPStatus returns the HTTP status mapped to a code
func GetHTTPStatus(code int) int {
	if status, ok := httpStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

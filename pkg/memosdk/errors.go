package memosdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// Error types reported in ErrorDetail.Type.
const (
	TypeValueExists       = "value_exists"
	TypeValueNotFound     = "value_not_found"
	TypeNotFound          = "not_found"
	TypeValueInvalid      = "value_invalid"
	TypeValueLocked       = "value_locked"
	TypeValueEmpty        = "value_empty"
	TypeAccessDenied      = "access_denied"
	TypeAttemptsSuspended = "attempts_suspended"
	TypeTokenEmpty        = "token_empty"
	TypeTokenInvalid      = "token_invalid"
	TypeTokenExpired      = "token_expired"
	TypeTokenRejected     = "token_rejected"
	TypeTokenDenied       = "token_denied"
	TypeInvalidFilter     = "invalid_filter"
	TypeFileMime          = "file_mime"
	TypeRateLimited       = "rate_limited"
	TypeServerError       = "server_error"
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Detail     []ErrorDetail
}

func (e *APIError) Error() string {
	if len(e.Detail) == 0 {
		return fmt.Sprintf("memo: HTTP %d", e.StatusCode)
	}

	parts := make([]string, 0, len(e.Detail))
	for _, d := range e.Detail {
		parts = append(parts, fmt.Sprintf("%s at %s", d.Type, strings.Join(d.Loc, ".")))
	}
	return fmt.Sprintf("memo: HTTP %d: %s", e.StatusCode, strings.Join(parts, "; "))
}

// HasType reports whether any detail entry has type t.
func (e *APIError) HasType(t string) bool {
	return slices.ContainsFunc(e.Detail, func(d ErrorDetail) bool { return d.Type == t })
}

// Type returns the type of the first detail entry, or "".
func (e *APIError) Type() string {
	if len(e.Detail) == 0 {
		return ""
	}
	return e.Detail[0].Type
}

// parseErrorResponse turns a non-2xx body into an *APIError. Bodies that
// are not in the detail format keep only the status code.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		apiErr.Detail = errResp.Detail
	}
	return apiErr
}

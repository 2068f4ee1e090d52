package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/pkg/httpx"
	"github.com/aussiebroadwan/memo/pkg/memosdk"
	"github.com/aussiebroadwan/memo/pkg/slogx"
)

var statusByKind = map[domain.Kind]int{
	domain.KindNotFound:          http.StatusNotFound,
	domain.KindValueNotFound:     http.StatusNotFound,
	domain.KindValueExists:       http.StatusConflict,
	domain.KindValueLocked:       http.StatusLocked,
	domain.KindValueInvalid:      http.StatusUnprocessableEntity,
	domain.KindValueEmpty:        http.StatusUnprocessableEntity,
	domain.KindInvalidFilter:     http.StatusUnprocessableEntity,
	domain.KindFileMime:          http.StatusUnprocessableEntity,
	domain.KindTokenEmpty:        http.StatusUnauthorized,
	domain.KindTokenInvalid:      http.StatusUnauthorized,
	domain.KindTokenExpired:      http.StatusUnauthorized,
	domain.KindTokenRejected:     http.StatusUnauthorized,
	domain.KindTokenDenied:       http.StatusForbidden,
	domain.KindAccessDenied:      http.StatusForbidden,
	domain.KindAttemptsSuspended: http.StatusTooManyRequests,
}

func statusFor(kind domain.Kind) int {
	if code, ok := statusByKind[kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// writeError renders err as a detail body. Unclassified errors are logged
// and reported as a bare server error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) || statusFor(de.Kind) == http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, memosdk.ErrorDetail{
			Loc:  []string{},
			Type: memosdk.TypeServerError,
			Msg:  "Internal server error",
		})
		return
	}

	code := statusFor(de.Kind)
	if code == http.StatusUnauthorized {
		httpx.WriteBearerChallenge(w, "invalid_token", de.Msg)
	}

	loc := de.Loc
	if loc == nil {
		loc = []string{}
	}
	writeDetail(w, code, memosdk.ErrorDetail{Loc: loc, Type: string(de.Kind), Msg: de.Msg})
}

func writeDetail(w http.ResponseWriter, code int, details ...memosdk.ErrorDetail) {
	httpx.WriteJSON(w, code, memosdk.ErrorResponse{Detail: details})
}

// badBody reports an undecodable request body.
func badBody(w http.ResponseWriter, r *http.Request, err error) {
	slogx.FromContext(r.Context()).Warn("invalid request body", "error", err)
	writeError(w, r, domain.NewError(domain.KindValueInvalid, domain.LocBody))
}

// rejectRateLimited is the httpx.RejectFunc for every limited route.
func rejectRateLimited(w http.ResponseWriter, _ *http.Request, _ time.Duration) {
	writeDetail(w, http.StatusTooManyRequests, memosdk.ErrorDetail{
		Loc:  []string{},
		Type: memosdk.TypeRateLimited,
		Msg:  "Too many requests",
	})
}

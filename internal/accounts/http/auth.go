package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/memo/internal/accounts/service"
	"github.com/aussiebroadwan/memo/pkg/httpx"
	"github.com/aussiebroadwan/memo/pkg/memosdk"
)

// AuthHandler serves the two sign in steps and revocation.
type AuthHandler struct {
	Accounts *service.AccountService
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Sign in, step one
//	@Description	Checks the password. On success the account waits for its TOTP code.
//	@Description	Repeated failures suspend password logins for a while.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	memosdk.LoginRequest	true	"Login and password"
//	@Success		204		"Password accepted"
//	@Failure		403		{object}	memosdk.ErrorResponse	"Role does not allow sign in"
//	@Failure		404		{object}	memosdk.ErrorResponse	"Unknown login"
//	@Failure		422		{object}	memosdk.ErrorResponse	"Wrong password"
//	@Failure		429		{object}	memosdk.ErrorResponse	"Attempts suspended"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req memosdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badBody(w, r, err)
		return
	}

	if err := h.Accounts.Login(r.Context(), req.UserLogin, req.UserPass); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleToken handles POST /v1/auth/token
//
//	@Summary		Sign in, step two
//	@Description	Checks the TOTP code and issues a session token. exp optionally sets the token expiry as a unix timestamp.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		memosdk.TokenRequest	true	"Login, TOTP code and optional expiry"
//	@Success		200		{object}	memosdk.TokenResponse	"user_token"
//	@Failure		403		{object}	memosdk.ErrorResponse	"Password step missing or too many wrong codes"
//	@Failure		404		{object}	memosdk.ErrorResponse	"Unknown login"
//	@Failure		422		{object}	memosdk.ErrorResponse	"Wrong code"
//	@Router			/v1/auth/token [post].
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req memosdk.TokenRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badBody(w, r, err)
		return
	}

	in := service.VerifyInput{Login: req.UserLogin, Code: req.UserTOTP}
	if req.Exp != nil {
		exp := time.Unix(*req.Exp, 0).UTC()
		in.ExpiresAt = &exp
	}

	token, err := h.Accounts.VerifySecondFactor(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, memosdk.TokenResponse{UserToken: token})
}

// HandleRevoke handles DELETE /v1/auth/token
//
//	@Summary		Sign out everywhere
//	@Description	Invalidates every session token of the authenticated account.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		204	"Tokens revoked"
//	@Failure		401	{object}	memosdk.ErrorResponse	"Missing or invalid token"
//	@Router			/v1/auth/token [delete].
func (h *AuthHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	acc, _ := AccountFromContext(r.Context())

	if err := h.Accounts.Revoke(r.Context(), &acc); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

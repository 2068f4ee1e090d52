package http

import (
	"net/http"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/internal/accounts/service"
	"github.com/aussiebroadwan/memo/pkg/httpx"
	"github.com/aussiebroadwan/memo/pkg/memosdk"
	"github.com/aussiebroadwan/memo/pkg/queryx"
)

// UsersHandler serves account registration and management.
type UsersHandler struct {
	Accounts *service.AccountService
}

// HandleRegister handles POST /v1/users
//
//	@Summary		Register an account
//	@Description	Creates an account and its TOTP secret. The first account ever registered becomes admin; later ones have no role until an admin assigns one.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		memosdk.RegisterRequest		true	"Account details"
//	@Success		201		{object}	memosdk.RegisterResponse	"user_id, mfa_key, mfa_image"
//	@Failure		409		{object}	memosdk.ErrorResponse		"Login taken"
//	@Failure		422		{object}	memosdk.ErrorResponse		"Invalid field"
//	@Router			/v1/users [post].
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req memosdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badBody(w, r, err)
		return
	}

	meta := map[string]string{}
	if req.UserSummary != "" {
		meta[domain.MetaSummary] = req.UserSummary
	}
	if req.UserContacts != "" {
		meta[domain.MetaContacts] = req.UserContacts
	}

	res, err := h.Accounts.Register(r.Context(), service.RegisterInput{
		Login:     req.UserLogin,
		Password:  req.UserPass,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Meta:      meta,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, memosdk.RegisterResponse{
		UserID:   res.Account.ID,
		MFAKey:   res.MFASecret,
		MFAImage: res.MFAImage,
	})
}

// HandleGet handles GET /v1/users/{id}
//
//	@Summary		Get an account
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int						true	"Account id"
//	@Success		200	{object}	memosdk.UserResponse	"Account"
//	@Failure		401	{object}	memosdk.ErrorResponse	"Missing or invalid token"
//	@Failure		403	{object}	memosdk.ErrorResponse	"Role too weak"
//	@Failure		404	{object}	memosdk.ErrorResponse	"No such account"
//	@Router			/v1/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	acc, err := h.Accounts.Fetch(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(acc))
}

// HandleUpdate handles PUT /v1/users/{id}
//
//	@Summary		Update a profile
//	@Description	Replaces names and editable meta. Omitted meta keys are removed. Accounts may update themselves; admins may update anyone.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int							true	"Account id"
//	@Param			request	body	memosdk.UserUpdateRequest	true	"Profile"
//	@Success		204		"Updated"
//	@Failure		403		{object}	memosdk.ErrorResponse	"Not your account"
//	@Failure		404		{object}	memosdk.ErrorResponse	"No such account"
//	@Failure		422		{object}	memosdk.ErrorResponse	"Invalid field"
//	@Router			/v1/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current, _ := AccountFromContext(ctx)

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if id != current.ID && !current.Role.CanAdmin() {
		writeError(w, r, domain.NewError(domain.KindAccessDenied, domain.LocPath, "user_id"))
		return
	}

	var req memosdk.UserUpdateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badBody(w, r, err)
		return
	}

	target, err := h.Accounts.Fetch(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.Accounts.UpdateProfile(ctx, &target, service.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Meta: optionalMeta(map[string]*string{
			domain.MetaSummary:  req.UserSummary,
			domain.MetaContacts: req.UserContacts,
		}),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRole handles PUT /v1/users/{id}/role
//
//	@Summary		Change a role
//	@Description	Admins may change any role but their own.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int							true	"Account id"
//	@Param			request	body	memosdk.RoleUpdateRequest	true	"New role"
//	@Success		204		"Updated"
//	@Failure		403		{object}	memosdk.ErrorResponse	"Not an admin, or own account"
//	@Failure		404		{object}	memosdk.ErrorResponse	"No such account"
//	@Failure		422		{object}	memosdk.ErrorResponse	"Unknown role"
//	@Router			/v1/users/{id}/role [put].
func (h *UsersHandler) HandleRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current, _ := AccountFromContext(ctx)

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if id == current.ID {
		writeError(w, r, domain.NewError(domain.KindAccessDenied, domain.LocPath, "user_id"))
		return
	}

	var req memosdk.RoleUpdateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badBody(w, r, err)
		return
	}

	target, err := h.Accounts.Fetch(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Accounts.ChangeRole(ctx, &target, domain.Role(req.UserRole)); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete handles DELETE /v1/users/{id}
//
//	@Summary		Delete an account
//	@Description	Admins may delete any account but their own. Accounts still owning collections are locked.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path	int	true	"Account id"
//	@Success		204	"Deleted"
//	@Failure		403	{object}	memosdk.ErrorResponse	"Not an admin, or own account"
//	@Failure		404	{object}	memosdk.ErrorResponse	"No such account"
//	@Failure		423	{object}	memosdk.ErrorResponse	"Account still referenced"
//	@Router			/v1/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current, _ := AccountFromContext(ctx)

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if id == current.ID {
		writeError(w, r, domain.NewError(domain.KindAccessDenied, domain.LocPath, "user_id"))
		return
	}

	target, err := h.Accounts.Fetch(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Accounts.Delete(ctx, &target); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleList handles GET /v1/users
//
//	@Summary		Search accounts
//	@Description	Filters use field__op=value, e.g. user_role__eq=admin or full_name__ilike=smith. limit (1..200) is required.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			user_role__eq			query		string					false	"Role"
//	@Param			user_login__eq			query		string					false	"Login"
//	@Param			full_name__ilike		query		string					false	"Part of the full name"
//	@Param			user_contacts__ilike	query		string					false	"Part of the contacts"
//	@Param			offset					query		int						false	"Offset"
//	@Param			limit					query		int						true	"Page size"
//	@Param			order_by				query		string					false	"Sort field"
//	@Param			order					query		string					false	"asc or desc"
//	@Success		200						{object}	memosdk.UsersResponse	"users, users_count"
//	@Failure		422						{object}	memosdk.ErrorResponse	"Invalid filter"
//	@Router			/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, total, err := h.Accounts.SearchPage(r.Context(), queryx.FromValues(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := memosdk.UsersResponse{
		Users:      make([]memosdk.UserResponse, 0, len(list)),
		UsersCount: total,
	}
	for _, acc := range list {
		resp.Users = append(resp.Users, toUserResponse(acc))
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

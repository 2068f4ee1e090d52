package http

import (
	"errors"
	"io"
	"net/http"
	"path"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/internal/accounts/files"
	"github.com/aussiebroadwan/memo/internal/accounts/service"
	"github.com/aussiebroadwan/memo/pkg/httpx"
	"github.com/aussiebroadwan/memo/pkg/memosdk"
)

// MaxUserpicUpload bounds the multipart body of a picture upload.
const MaxUserpicUpload = 10 << 20

type UserpicHandler struct {
	Accounts *service.AccountService
}

// self returns the authenticated account when {id} names it.
func self(w http.ResponseWriter, r *http.Request) (domain.Account, bool) {
	current, _ := AccountFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return domain.Account{}, false
	}
	if id != current.ID {
		writeError(w, r, domain.NewError(domain.KindAccessDenied, domain.LocPath, "user_id"))
		return domain.Account{}, false
	}
	return current, true
}

// HandleUpload handles POST /v1/users/{id}/userpic
//
//	@Summary		Upload a profile picture
//	@Description	Replaces the picture of the authenticated account. The image is resized to fit the configured box.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		int						true	"Own account id"
//	@Param			file	formData	file					true	"Image"
//	@Success		201		{object}	memosdk.UserpicResponse	"Stored file"
//	@Failure		403		{object}	memosdk.ErrorResponse	"Not your account"
//	@Failure		422		{object}	memosdk.ErrorResponse	"Missing file or unsupported type"
//	@Router			/v1/users/{id}/userpic [post].
func (h *UserpicHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	acc, ok := self(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUserpicUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		kind := domain.KindValueEmpty
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			kind = domain.KindValueInvalid
		}
		writeError(w, r, domain.NewError(kind, domain.LocFile, "file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, domain.NewError(domain.KindValueInvalid, domain.LocFile, "file"))
		return
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" {
		mime = files.DetectMime(data)
	}

	name, err := h.Accounts.UploadPicture(r.Context(), &acc, mime, data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, memosdk.UserpicResponse{
		Userpic: name,
		URL:     path.Join("/", files.DirUserpics, name),
	})
}

// HandleDelete handles DELETE /v1/users/{id}/userpic
//
//	@Summary		Remove the profile picture
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path	int	true	"Own account id"
//	@Success		204	"Removed"
//	@Failure		403	{object}	memosdk.ErrorResponse	"Not your account"
//	@Router			/v1/users/{id}/userpic [delete].
func (h *UserpicHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	acc, ok := self(w, r)
	if !ok {
		return
	}

	if err := h.Accounts.DeletePicture(r.Context(), &acc); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

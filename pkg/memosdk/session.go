package memosdk

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
)

// Session is an authenticated client. The token stays valid until it
// expires or any session of the same account is revoked.
type Session struct {
	client *SDKClient
	token  string
}

// Token returns the session token.
func (s *Session) Token() string {
	return s.token
}

func userPath(id int64) string {
	return "/v1/users/" + strconv.FormatInt(id, 10)
}

// Revoke invalidates every token issued to the account.
func (s *Session) Revoke(ctx context.Context) error {
	resp, err := s.client.doRequest(ctx, http.MethodDelete, "/v1/auth/token", s.token, nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// GetUser fetches one account.
func (s *Session) GetUser(ctx context.Context, id int64) (*UserResponse, error) {
	resp, err := s.client.doRequest(ctx, http.MethodGet, userPath(id), s.token, nil, nil)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser replaces names and editable meta of the session's own
// account. Admins may update any account.
func (s *Session) UpdateUser(ctx context.Context, id int64, req UserUpdateRequest) error {
	resp, err := s.client.doJSON(ctx, http.MethodPut, userPath(id), s.token, req)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ChangeRole sets another account's role. Requires admin.
func (s *Session) ChangeRole(ctx context.Context, id int64, role string) error {
	resp, err := s.client.doJSON(ctx, http.MethodPut, userPath(id)+"/role", s.token, RoleUpdateRequest{UserRole: role})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// DeleteUser deletes another account. Requires admin.
func (s *Session) DeleteUser(ctx context.Context, id int64) error {
	resp, err := s.client.doRequest(ctx, http.MethodDelete, userPath(id), s.token, nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ListUsers searches accounts. params takes field__op filters plus offset,
// limit, order_by and order; limit is required.
func (s *Session) ListUsers(ctx context.Context, params url.Values) (*UsersResponse, error) {
	path := "/v1/users"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	resp, err := s.client.doRequest(ctx, http.MethodGet, path, s.token, nil, nil)
	if err != nil {
		return nil, err
	}

	var out UsersResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadUserpic replaces the account's profile picture.
func (s *Session) UploadUserpic(ctx context.Context, id int64, filename, mime string, data []byte) (*UserpicResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", mime)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	resp, err := s.client.doRequest(ctx, http.MethodPost, userPath(id)+"/userpic", s.token, &body, map[string]string{
		"Content-Type": mw.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}

	var out UserpicResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUserpic removes the account's profile picture.
func (s *Session) DeleteUserpic(ctx context.Context, id int64) error {
	resp, err := s.client.doRequest(ctx, http.MethodDelete, userPath(id)+"/userpic", s.token, nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

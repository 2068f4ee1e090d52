package memosdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the memo account service. It covers the
// public endpoints and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new client for baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates an account. The first account becomes the admin.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/users", "", req)
	if err != nil {
		return nil, err
	}

	var out RegisterResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login is the password step of sign in.
func (c *SDKClient) Login(ctx context.Context, login, password string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", "", LoginRequest{
		UserLogin: login,
		UserPass:  password,
	})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// IssueToken is the TOTP step of sign in. A nil exp asks for the server's
// default lifetime.
func (c *SDKClient) IssueToken(ctx context.Context, login, code string, exp *time.Time) (*TokenResponse, error) {
	req := TokenRequest{UserLogin: login, UserTOTP: code}
	if exp != nil {
		unix := exp.Unix()
		req.Exp = &unix
	}

	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/token", "", req)
	if err != nil {
		return nil, err
	}

	var out TokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignIn runs both sign in steps and returns a session.
func (c *SDKClient) SignIn(ctx context.Context, login, password, code string, exp *time.Time) (*Session, error) {
	if err := c.Login(ctx, login, password); err != nil {
		return nil, err
	}

	tok, err := c.IssueToken(ctx, login, code, exp)
	if err != nil {
		return nil, err
	}
	return c.NewSession(tok.UserToken), nil
}

// NewSession wraps an existing session token.
func (c *SDKClient) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}

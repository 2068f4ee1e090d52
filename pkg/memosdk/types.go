package memosdk

// ============================================================================
// Errors
// ============================================================================

// ErrorDetail is one entry of an error response. Loc names the offending
// value, e.g. ["body", "user_login"].
type ErrorDetail struct {
	Loc  []string `json:"loc"`
	Type string   `json:"type"`
	Msg  string   `json:"msg"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail []ErrorDetail `json:"detail"`
}

// ============================================================================
// Health
// ============================================================================

type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// ============================================================================
// Registration and sign in
// ============================================================================

type RegisterRequest struct {
	UserLogin    string `json:"user_login"`
	UserPass     string `json:"user_pass"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	UserSummary  string `json:"user_summary,omitempty"`
	UserContacts string `json:"user_contacts,omitempty"`
}

// RegisterResponse carries the MFA secret and the URL of its enrollment
// image. Both are shown once.
type RegisterResponse struct {
	UserID   int64  `json:"user_id"`
	MFAKey   string `json:"mfa_key"`
	MFAImage string `json:"mfa_image"`
}

type LoginRequest struct {
	UserLogin string `json:"user_login"`
	UserPass  string `json:"user_pass"`
}

// TokenRequest completes sign in with a TOTP code. Exp is an optional unix
// expiry for the issued token.
type TokenRequest struct {
	UserLogin string `json:"user_login"`
	UserTOTP  string `json:"user_totp"`
	Exp       *int64 `json:"exp,omitempty"`
}

type TokenResponse struct {
	UserToken string `json:"user_token"`
}

// ============================================================================
// Users
// ============================================================================

type UserResponse struct {
	ID          int64             `json:"id"`
	CreatedDate int64             `json:"created_date"`
	UpdatedDate int64             `json:"updated_date"`
	UserRole    string            `json:"user_role"`
	UserLogin   string            `json:"user_login"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	Meta        map[string]string `json:"meta"`
}

// UserUpdateRequest replaces names and editable meta. Omitted meta keys are
// removed.
type UserUpdateRequest struct {
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	UserSummary  *string `json:"user_summary,omitempty"`
	UserContacts *string `json:"user_contacts,omitempty"`
}

type RoleUpdateRequest struct {
	UserRole string `json:"user_role"`
}

type UsersResponse struct {
	Users      []UserResponse `json:"users"`
	UsersCount int            `json:"users_count"`
}

type UserpicResponse struct {
	Userpic string `json:"userpic"`
	URL     string `json:"url"`
}

package domain

import "time"

// Account is a registered user together with its login protocol state.
type Account struct {
	ID          int64
	CreatedDate time.Time
	UpdatedDate time.Time

	// SuspendedDate is when the password lockout ends. Zero when never
	// suspended.
	SuspendedDate time.Time

	Role      Role
	Login     string
	FirstName string
	LastName  string

	PassHash     string
	PassAttempts int

	// PassAccepted is set by a successful password check and cleared by
	// the next second factor attempt, whatever its outcome.
	PassAccepted bool

	MFAKeyEncrypted string
	MFAAttempts     int
	JTIEncrypted    string

	Meta Meta
}

// FullName is the display name used by searches.
func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Suspended reports whether password logins are locked at now.
func (a *Account) Suspended(now time.Time) bool {
	return !a.SuspendedDate.IsZero() && !now.After(a.SuspendedDate)
}

func (a *Account) MetaKeys() []string { return accountMetaKeys }

func (a *Account) MetaValue(key string) (string, bool) { return a.Meta.Get(key) }

// SecretField names an attribute stored encrypted on the account.
type SecretField string

const (
	SecretMFAKey SecretField = "mfa_key"
	SecretJTI    SecretField = "jti"
)

// SecretRef returns the ciphertext slot backing field, or nil for an
// unknown field.
func (a *Account) SecretRef(field SecretField) *string {
	switch field {
	case SecretMFAKey:
		return &a.MFAKeyEncrypted
	case SecretJTI:
		return &a.JTIEncrypted
	default:
		return nil
	}
}

// Collection is a named group of media owned by an account. Accounts that
// own collections cannot be deleted.
type Collection struct {
	ID              int64
	CreatedDate     time.Time
	UpdatedDate     time.Time
	AccountID       int64
	Name            string
	MediafilesCount int
	Meta            Meta
}

func (c *Collection) MetaKeys() []string { return collectionMetaKeys }

func (c *Collection) MetaValue(key string) (string, bool) { return c.Meta.Get(key) }

package cache

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/fxamacker/cbor/v2"
)

// AccountVersion is bumped whenever accountRecord changes shape. Entries
// written with another version are discarded on read.
const AccountVersion = 1

// ErrStale is returned for entries written by another schema version.
var ErrStale = fmt.Errorf("%w: stale entry", ErrMiss)

// accountRecord is the cached field list. Keys are integers so renaming a
// Go field never changes the encoding; never reuse a retired key.
type accountRecord struct {
	Version         int               `cbor:"0,keyasint"`
	ID              int64             `cbor:"1,keyasint"`
	CreatedDate     int64             `cbor:"2,keyasint"`
	UpdatedDate     int64             `cbor:"3,keyasint"`
	SuspendedDate   int64             `cbor:"4,keyasint"`
	Role            string            `cbor:"5,keyasint"`
	Login           string            `cbor:"6,keyasint"`
	FirstName       string            `cbor:"7,keyasint"`
	LastName        string            `cbor:"8,keyasint"`
	PassHash        string            `cbor:"9,keyasint"`
	PassAttempts    int               `cbor:"10,keyasint"`
	PassAccepted    bool              `cbor:"11,keyasint"`
	MFAKeyEncrypted string            `cbor:"12,keyasint"`
	MFAAttempts     int               `cbor:"13,keyasint"`
	JTIEncrypted    string            `cbor:"14,keyasint"`
	Meta            map[string]string `cbor:"15,keyasint,omitempty"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}

	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// EncodeAccount serializes a for the cache.
func EncodeAccount(a domain.Account) ([]byte, error) {
	return encMode.Marshal(accountRecord{
		Version:         AccountVersion,
		ID:              a.ID,
		CreatedDate:     unix(a.CreatedDate),
		UpdatedDate:     unix(a.UpdatedDate),
		SuspendedDate:   unix(a.SuspendedDate),
		Role:            string(a.Role),
		Login:           a.Login,
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		PassHash:        a.PassHash,
		PassAttempts:    a.PassAttempts,
		PassAccepted:    a.PassAccepted,
		MFAKeyEncrypted: a.MFAKeyEncrypted,
		MFAAttempts:     a.MFAAttempts,
		JTIEncrypted:    a.JTIEncrypted,
		Meta:            a.Meta,
	})
}

// DecodeAccount reverses EncodeAccount. Entries of another version fail
// with ErrStale; undecodable bytes fail with an error wrapping ErrMiss.
func DecodeAccount(data []byte) (domain.Account, error) {
	var rec accountRecord
	if err := decMode.Unmarshal(data, &rec); err != nil {
		return domain.Account{}, errors.Join(ErrMiss, err)
	}
	if rec.Version != AccountVersion {
		return domain.Account{}, ErrStale
	}

	meta := domain.Meta(rec.Meta)
	if meta == nil {
		meta = domain.Meta{}
	}

	return domain.Account{
		ID:              rec.ID,
		CreatedDate:     fromUnix(rec.CreatedDate),
		UpdatedDate:     fromUnix(rec.UpdatedDate),
		SuspendedDate:   fromUnix(rec.SuspendedDate),
		Role:            domain.Role(rec.Role),
		Login:           rec.Login,
		FirstName:       rec.FirstName,
		LastName:        rec.LastName,
		PassHash:        rec.PassHash,
		PassAttempts:    rec.PassAttempts,
		PassAccepted:    rec.PassAccepted,
		MFAKeyEncrypted: rec.MFAKeyEncrypted,
		MFAAttempts:     rec.MFAAttempts,
		JTIEncrypted:    rec.JTIEncrypted,
		Meta:            meta,
	}, nil
}

// SameAccount reports whether a and b produce the same cache entry.
func SameAccount(a, b domain.Account) bool {
	x, err := EncodeAccount(a)
	if err != nil {
		return false
	}
	y, err := EncodeAccount(b)
	if err != nil {
		return false
	}
	return bytes.Equal(x, y)
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(n, 0).UTC()
}

package domain_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/stretchr/testify/require"
)

func TestRoleOrdering(t *testing.T) {
	require.False(t, domain.RoleNone.CanRead())
	require.False(t, domain.RoleNone.CanLogin())

	require.True(t, domain.RoleReader.CanRead())
	require.False(t, domain.RoleReader.CanWrite())

	require.True(t, domain.RoleEditor.CanWrite())
	require.True(t, domain.RoleEditor.CanEdit())
	require.False(t, domain.RoleEditor.CanAdmin())

	require.True(t, domain.RoleAdmin.CanRead())
	require.True(t, domain.RoleAdmin.CanWrite())
	require.True(t, domain.RoleAdmin.CanEdit())
	require.True(t, domain.RoleAdmin.CanAdmin())

	require.False(t, domain.Role("root").AtLeast(domain.RoleNone))
}

func TestParseRole(t *testing.T) {
	for _, name := range domain.RoleNames() {
		r, err := domain.ParseRole(name)
		require.NoError(t, err)
		require.Equal(t, name, r.String())
	}

	_, err := domain.ParseRole("superuser")
	require.Error(t, err)
}

func TestAccountSuspended(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	a := &domain.Account{}
	require.False(t, a.Suspended(now))

	a.SuspendedDate = now.Add(time.Minute)
	require.True(t, a.Suspended(now))
	require.True(t, a.Suspended(a.SuspendedDate))
	require.False(t, a.Suspended(now.Add(2*time.Minute)))
}

func TestAccountMeta(t *testing.T) {
	a := &domain.Account{Meta: domain.Meta{domain.MetaSummary: "hi"}}

	require.True(t, domain.MetaAllowed(a, domain.MetaContacts))
	require.False(t, domain.MetaAllowed(a, "favourite_colour"))

	v, ok := a.MetaValue(domain.MetaSummary)
	require.True(t, ok)
	require.Equal(t, "hi", v)

	var c domain.Collection
	_, ok = c.MetaValue(domain.MetaCollectionSummary)
	require.False(t, ok)
	require.False(t, domain.MetaAllowed(&c, domain.MetaUserpic))
}

func TestSecretRef(t *testing.T) {
	a := &domain.Account{}
	*a.SecretRef(domain.SecretJTI) = "j"
	*a.SecretRef(domain.SecretMFAKey) = "m"

	require.Equal(t, "j", a.JTIEncrypted)
	require.Equal(t, "m", a.MFAKeyEncrypted)
	require.Nil(t, a.SecretRef("pass"))
}

func TestErrorIs(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("register: %w", domain.NewError(domain.KindValueExists, domain.LocBody, "user_login").Wrap(cause))

	require.ErrorIs(t, err, domain.ErrValueExists)
	require.NotErrorIs(t, err, domain.ErrValueInvalid)
	require.ErrorIs(t, err, cause)
	require.Equal(t, domain.KindValueExists, domain.KindOf(err))
	require.Equal(t, "value_exists at body.user_login: boom", domain.NewError(domain.KindValueExists, "body", "user_login").Wrap(cause).Error())

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	require.Equal(t, []string{"body", "user_login"}, de.Loc)
	require.Equal(t, "The value already exists", de.Msg)
}

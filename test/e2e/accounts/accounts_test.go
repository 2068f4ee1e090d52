//go:build e2e

package accounts_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/pkg/memosdk"
)

func TestHealth(t *testing.T) {
	srv := setupService(t)

	live, err := srv.client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := srv.client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Cache)
}

func TestSignInFlow(t *testing.T) {
	srv := setupService(t)
	ctx := t.Context()

	login := uniqueLogin("flow")
	reg := srv.register(t, login)

	resp, err := http.Get(srv.URL + reg.MFAImage)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = srv.client.Register(ctx, memosdk.RegisterRequest{
		UserLogin: login, UserPass: "another-password", FirstName: "Dup", LastName: "Licate",
	})
	requireAPIError(t, err, http.StatusConflict, memosdk.TypeValueExists)

	// Accounts without a role cannot log in.
	srv.setRole(t, reg.UserID, domain.RoleNone)
	err = srv.client.Login(ctx, login, password(login))
	requireAPIError(t, err, http.StatusForbidden, memosdk.TypeAccessDenied)

	srv.setRole(t, reg.UserID, domain.RoleReader)

	// The second step needs an accepted password first.
	_, err = srv.client.IssueToken(ctx, login, srv.code(t, reg.MFAKey), nil)
	requireAPIError(t, err, http.StatusForbidden, memosdk.TypeAccessDenied)

	err = srv.client.Login(ctx, login, "wrong-password")
	requireAPIError(t, err, http.StatusUnprocessableEntity, memosdk.TypeValueInvalid)

	require.NoError(t, srv.client.Login(ctx, login, password(login)))

	_, err = srv.client.IssueToken(ctx, login, "000000x", nil)
	requireAPIError(t, err, http.StatusUnprocessableEntity, memosdk.TypeValueInvalid)

	token, err := srv.client.IssueToken(ctx, login, srv.code(t, reg.MFAKey), nil)
	require.NoError(t, err)

	session := srv.client.NewSession(token.UserToken)
	me, err := session.GetUser(ctx, reg.UserID)
	require.NoError(t, err)
	require.Equal(t, login, me.UserLogin)
	require.Equal(t, "reader", me.UserRole)

	// Enrollment images are removed after the first sign in.
	resp, err = http.Get(srv.URL + reg.MFAImage)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Readers cannot manage roles.
	err = session.ChangeRole(ctx, reg.UserID+1, "admin")
	requireAPIError(t, err, http.StatusForbidden, memosdk.TypeTokenDenied)
}

func TestPasswordSuspension(t *testing.T) {
	srv := setupService(t)
	ctx := t.Context()

	login := uniqueLogin("suspend")
	reg := srv.register(t, login)
	srv.setRole(t, reg.UserID, domain.RoleReader)

	for range 3 {
		err := srv.client.Login(ctx, login, "wrong-password")
		requireAPIError(t, err, http.StatusUnprocessableEntity, memosdk.TypeValueInvalid)
	}

	// Even the right password is refused while suspended.
	err := srv.client.Login(ctx, login, password(login))
	requireAPIError(t, err, http.StatusTooManyRequests, memosdk.TypeAttemptsSuspended)
}

func TestRevokeAndExpiry(t *testing.T) {
	srv := setupService(t)
	ctx := t.Context()

	login := uniqueLogin("revoke")
	reg := srv.register(t, login)
	srv.setRole(t, reg.UserID, domain.RoleReader)
	session := srv.signIn(t, login, reg)

	_, err := session.GetUser(ctx, reg.UserID)
	require.NoError(t, err)

	require.NoError(t, session.Revoke(ctx))

	_, err = session.GetUser(ctx, reg.UserID)
	requireAPIError(t, err, http.StatusUnauthorized, memosdk.TypeTokenRejected)

	// A token with an explicit past expiry is issued but never accepted.
	past := time.Now().Add(-time.Hour)
	expired, err := srv.client.SignIn(ctx, login, password(login), srv.code(t, reg.MFAKey), &past)
	require.NoError(t, err)

	_, err = expired.GetUser(ctx, reg.UserID)
	requireAPIError(t, err, http.StatusUnauthorized, memosdk.TypeTokenExpired)

	_, err = srv.client.NewSession("not-a-token").GetUser(ctx, reg.UserID)
	requireAPIError(t, err, http.StatusUnauthorized, memosdk.TypeTokenInvalid)
}

func TestAdminManagement(t *testing.T) {
	srv := setupService(t)
	ctx := t.Context()

	adminID, _, admin := srv.newUser(t, "admin", domain.RoleAdmin)
	userID, userLogin, user := srv.newUser(t, "member", domain.RoleWriter)

	list, err := admin.ListUsers(ctx, url.Values{
		"limit":          {"10"},
		"user_login__eq": {userLogin},
	})
	require.NoError(t, err)
	require.Equal(t, 1, list.UsersCount)
	require.Equal(t, userID, list.Users[0].ID)
	require.Equal(t, "writer", list.Users[0].UserRole)

	_, err = admin.ListUsers(ctx, url.Values{"limit": {"500"}})
	requireAPIError(t, err, http.StatusUnprocessableEntity, memosdk.TypeInvalidFilter)

	// Profile updates are visible through the cache straight away.
	summary := "Writes things"
	require.NoError(t, user.UpdateUser(ctx, userID, memosdk.UserUpdateRequest{
		FirstName:   "Mem",
		LastName:    "Ber",
		UserSummary: &summary,
	}))
	got, err := admin.GetUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "Mem", got.FirstName)
	require.Equal(t, "Writes things", got.Meta["user_summary"])

	err = admin.ChangeRole(ctx, adminID, "reader")
	requireAPIError(t, err, http.StatusForbidden, memosdk.TypeAccessDenied)

	require.NoError(t, admin.ChangeRole(ctx, userID, "editor"))
	got, err = user.GetUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "editor", got.UserRole)

	err = admin.ChangeRole(ctx, userID, "root")
	requireAPIError(t, err, http.StatusUnprocessableEntity, memosdk.TypeValueInvalid)

	require.NoError(t, admin.DeleteUser(ctx, userID))

	_, err = admin.GetUser(ctx, userID)
	requireAPIError(t, err, http.StatusNotFound, memosdk.TypeNotFound)

	_, err = user.GetUser(ctx, adminID)
	requireAPIError(t, err, http.StatusUnauthorized, "")
}

func TestUserpic(t *testing.T) {
	srv := setupService(t)
	ctx := t.Context()

	id, _, session := srv.newUser(t, "pic", domain.RoleReader)

	pic, err := session.UploadUserpic(ctx, id, "me.jpg", "image/jpeg", testJPEG(t, 300, 200))
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + pic.URL)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.LessOrEqual(t, img.Bounds().Dx(), 64)
	require.LessOrEqual(t, img.Bounds().Dy(), 64)

	got, err := session.GetUser(ctx, id)
	require.NoError(t, err)
	require.Equal(t, pic.Userpic, got.Meta["userpic"])

	require.NoError(t, session.DeleteUserpic(ctx, id))

	resp, err = http.Get(srv.URL + pic.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

package http_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/memo/internal/accounts/cache"
	"github.com/aussiebroadwan/memo/internal/accounts/files"
	accountshttp "github.com/aussiebroadwan/memo/internal/accounts/http"
	"github.com/aussiebroadwan/memo/internal/accounts/service"
	"github.com/aussiebroadwan/memo/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/memo/pkg/cryptox"
	"github.com/aussiebroadwan/memo/pkg/jwtx"
	"github.com/aussiebroadwan/memo/pkg/memosdk"
	"github.com/aussiebroadwan/memo/pkg/otpx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	URL    string
	client *memosdk.SDKClient
	otp    *otpx.Engine
	now    time.Time
	redis  *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	rc := cache.NewRedisCache(rdb, "")

	secrets, err := cryptox.NewSecretCodec([]byte("test-encryption-key"), "test-salt")
	require.NoError(t, err)
	tokens, err := jwtx.NewCodecFromConfig(jwtx.AlgHS256, []byte("test-jwt-secret-of-some-length"))
	require.NoError(t, err)

	fs := &files.Store{Root: t.TempDir()}
	mfaDir, err := fs.Dir(files.DirMFA)
	require.NoError(t, err)
	_, err = fs.Dir(files.DirUserpics)
	require.NoError(t, err)

	// A frozen clock keeps TOTP codes stable for the whole test.
	now := time.Now().UTC().Truncate(time.Second)
	otp := &otpx.Engine{AppName: "memo", Dir: mfaDir, ImageSize: 64}

	svc := &service.AccountService{
		Store:    st,
		Cache:    &cache.Accounts{Cache: rc, TTL: time.Minute},
		Secrets:  secrets,
		Tokens:   tokens,
		OTP:      otp,
		Files:    fs,
		Limits:   service.DefaultLimits(),
		Userpics: service.DefaultUserpicConfig(),
		Now:      func() time.Time { return now },
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := accountshttp.NewRouter("test", st, rc, fs, svc, logger)
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:    srv.URL,
		client: memosdk.NewSDKClient(srv.URL),
		otp:    otp,
		now:    now,
		redis:  mr,
	}
}

func (s *testServer) register(t *testing.T, login string) *memosdk.RegisterResponse {
	t.Helper()

	reg, err := s.client.Register(t.Context(), memosdk.RegisterRequest{
		UserLogin: login,
		UserPass:  login + "-password",
		FirstName: "First",
		LastName:  "Last",
	})
	require.NoError(t, err)
	return reg
}

func (s *testServer) signIn(t *testing.T, login string, reg *memosdk.RegisterResponse) *memosdk.Session {
	t.Helper()

	code, err := s.otp.Code(reg.MFAKey, s.now)
	require.NoError(t, err)

	session, err := s.client.SignIn(t.Context(), login, login+"-password", code, nil)
	require.NoError(t, err)
	return session
}

func requireAPIError(t *testing.T, err error, status int, typ string) {
	t.Helper()

	var apiErr *memosdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *APIError, got %v", err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, typ, apiErr.Type())
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: 120, B: uint8(y), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	live, err := srv.client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := srv.client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Cache)

	srv.redis.Close()
	_, err = srv.client.GetReadiness(t.Context())
	requireAPIError(t, err, http.StatusServiceUnavailable, "")
}

func TestRegisterAndSignIn(t *testing.T) {
	srv := newTestServer(t)
	ctx := t.Context()

	alice := srv.register(t, "alice")
	require.Equal(t, int64(1), alice.UserID)
	require.Equal(t, "/mfa/"+alice.MFAKey+".png", alice.MFAImage)

	resp, err := http.Get(srv.URL + alice.MFAImage)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp, err = http.Get(srv.URL + "/mfa/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, err = srv.client.Register(ctx, memosdk.RegisterRequest{
		UserLogin: "alice", UserPass: "whatever", FirstName: "Other", LastName: "Alice",
	})
	requireAPIError(t, err, http.StatusConflict, memosdk.TypeValueExists)

	_, err = srv.client.Register(ctx, memosdk.RegisterRequest{
		UserLogin: "x", UserPass: "whatever", FirstName: "Other", LastName: "Alice",
	})
	requireAPIError(t, err, http.StatusUnprocessableEntity, memosdk.TypeValueInvalid)

	err = srv.client.Login(ctx, "nobody", "whatever")
	requireAPIError(t, err, http.StatusNotFound, memosdk.TypeValueNotFound)

	err = srv.client.Login(ctx, "alice", "wrong-password")
	requireAPIError(t, err, http.StatusUnprocessableEntity, memosdk.TypeValueInvalid)

	session := srv.signIn(t, "alice", alice)

	// The enrollment image is gone after the first successful sign in.
	resp, err = http.Get(srv.URL + alice.MFAImage)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	me, err := session.GetUser(ctx, alice.UserID)
	require.NoError(t, err)
	require.Equal(t, "alice", me.UserLogin)
	require.Equal(t, "admin", me.UserRole)
	require.Equal(t, map[string]string{}, me.Meta)

	bob := srv.register(t, "bob")
	err = srv.client.Login(ctx, "bob", "bob-password")
	requireAPIError(t, err, http.StatusForbidden, memosdk.TypeAccessDenied)

	require.NoError(t, session.ChangeRole(ctx, bob.UserID, "reader"))
	srv.signIn(t, "bob", bob)
}

func TestTokenRequired(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/users/1")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, resp.Header.Get("WWW-Authenticate"), "invalid_token")
	require.JSONEq(t,
		`{"detail":[{"loc":["header","Authorization"],"type":"token_empty","msg":"The token is empty"}]}`,
		string(body),
	)

	_, err = srv.client.NewSession("not-a-jwt").GetUser(t.Context(), 1)
	requireAPIError(t, err, http.StatusUnauthorized, memosdk.TypeTokenInvalid)
}

func TestAccountManagement(t *testing.T) {
	srv := newTestServer(t)
	ctx := t.Context()

	aliceReg := srv.register(t, "alice")
	bobReg := srv.register(t, "bob")
	alice := srv.signIn(t, "alice", aliceReg)

	require.NoError(t, alice.ChangeRole(ctx, bobReg.UserID, "reader"))
	bob := srv.signIn(t, "bob", bobReg)

	t.Run("admins cannot change their own role or delete themselves", func(t *testing.T) {
		err := alice.ChangeRole(ctx, aliceReg.UserID, "reader")
		requireAPIError(t, err, http.StatusForbidden, memosdk.TypeAccessDenied)

		err = alice.DeleteUser(ctx, aliceReg.UserID)
		requireAPIError(t, err, http.StatusForbidden, memosdk.TypeAccessDenied)
	})

	t.Run("readers cannot manage roles", func(t *testing.T) {
		err := bob.ChangeRole(ctx, aliceReg.UserID, "reader")
		requireAPIError(t, err, http.StatusForbidden, memosdk.TypeTokenDenied)
	})

	t.Run("unknown role", func(t *testing.T) {
		err := alice.ChangeRole(ctx, bobReg.UserID, "overlord")
		requireAPIError(t, err, http.StatusUnprocessableEntity, memosdk.TypeValueInvalid)
	})

	t.Run("profile updates", func(t *testing.T) {
		summary := "Builder"
		err := bob.UpdateUser(ctx, bobReg.UserID, memosdk.UserUpdateRequest{
			FirstName:   "Robert",
			LastName:    "Builder",
			UserSummary: &summary,
		})
		require.NoError(t, err)

		got, err := alice.GetUser(ctx, bobReg.UserID)
		require.NoError(t, err)
		require.Equal(t, "Robert", got.FirstName)
		require.Equal(t, map[string]string{"user_summary": "Builder"}, got.Meta)

		err = bob.UpdateUser(ctx, aliceReg.UserID, memosdk.UserUpdateRequest{FirstName: "Mallory", LastName: "Evil"})
		requireAPIError(t, err, http.StatusForbidden, memosdk.TypeAccessDenied)

		// Admins may update anyone.
		require.NoError(t, alice.UpdateUser(ctx, bobReg.UserID, memosdk.UserUpdateRequest{
			FirstName: "Bob",
			LastName:  "Builder",
		}))
		got, err = bob.GetUser(ctx, bobReg.UserID)
		require.NoError(t, err)
		require.Empty(t, got.Meta)
	})

	t.Run("search", func(t *testing.T) {
		list, err := bob.ListUsers(ctx, url.Values{
			"limit":    {"1"},
			"order_by": {"id"},
			"order":    {"asc"},
		})
		require.NoError(t, err)
		require.Equal(t, 2, list.UsersCount)
		require.Len(t, list.Users, 1)
		require.Equal(t, "alice", list.Users[0].UserLogin)

		list, err = bob.ListUsers(ctx, url.Values{"limit": {"10"}, "user_role__eq": {"reader"}})
		require.NoError(t, err)
		require.Equal(t, 1, list.UsersCount)
		require.Equal(t, "bob", list.Users[0].UserLogin)

		_, err = bob.ListUsers(ctx, nil)
		requireAPIError(t, err, http.StatusUnprocessableEntity, memosdk.TypeInvalidFilter)

		_, err = bob.ListUsers(ctx, url.Values{"limit": {"10"}, "pass_hash__eq": {"x"}})
		requireAPIError(t, err, http.StatusUnprocessableEntity, memosdk.TypeInvalidFilter)
	})

	t.Run("userpic", func(t *testing.T) {
		_, err := bob.UploadUserpic(ctx, aliceReg.UserID, "me.png", "image/png", testPNG(t, 50, 50))
		requireAPIError(t, err, http.StatusForbidden, memosdk.TypeAccessDenied)

		_, err = bob.UploadUserpic(ctx, bobReg.UserID, "me.pdf", "application/pdf", []byte("%PDF-1.4"))
		requireAPIError(t, err, http.StatusUnprocessableEntity, memosdk.TypeFileMime)

		pic, err := bob.UploadUserpic(ctx, bobReg.UserID, "me.png", "image/png", testPNG(t, 500, 400))
		require.NoError(t, err)
		require.Equal(t, "/userpics/"+pic.Userpic, pic.URL)

		resp, err := http.Get(srv.URL + pic.URL)
		require.NoError(t, err)
		data, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		require.LessOrEqual(t, cfg.Width, 320)
		require.LessOrEqual(t, cfg.Height, 320)

		got, err := bob.GetUser(ctx, bobReg.UserID)
		require.NoError(t, err)
		require.Equal(t, pic.Userpic, got.Meta["userpic"])

		require.NoError(t, bob.DeleteUserpic(ctx, bobReg.UserID))

		resp, err = http.Get(srv.URL + pic.URL)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("revoke", func(t *testing.T) {
		require.NoError(t, bob.Revoke(ctx))

		_, err := bob.GetUser(ctx, bobReg.UserID)
		requireAPIError(t, err, http.StatusUnauthorized, memosdk.TypeTokenRejected)

		bob = srv.signIn(t, "bob", bobReg)
	})

	t.Run("delete", func(t *testing.T) {
		err := bob.DeleteUser(ctx, aliceReg.UserID)
		requireAPIError(t, err, http.StatusForbidden, memosdk.TypeTokenDenied)

		require.NoError(t, alice.DeleteUser(ctx, bobReg.UserID))

		_, err = alice.GetUser(ctx, bobReg.UserID)
		requireAPIError(t, err, http.StatusNotFound, memosdk.TypeNotFound)

		_, err = bob.GetUser(ctx, aliceReg.UserID)
		requireAPIError(t, err, http.StatusUnauthorized, memosdk.TypeTokenRejected)
	})
}

func TestRateLimitedLogin(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "alice")

	// Suspension kicks in first; the limiter answers once the burst is spent.
	limited := false
	for range 20 {
		err := srv.client.Login(context.Background(), "alice", "wrong-password")

		var apiErr *memosdk.APIError
		require.ErrorAs(t, err, &apiErr)
		if apiErr.HasType(memosdk.TypeRateLimited) {
			require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
			limited = true
			break
		}
	}
	require.True(t, limited)
}

package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/memo/internal/accounts/cache"
	"github.com/aussiebroadwan/memo/internal/accounts/files"
	"github.com/aussiebroadwan/memo/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/memo/internal/accounts/store/drivers/sqlstore"
	"github.com/aussiebroadwan/memo/pkg/cryptox"
	"github.com/aussiebroadwan/memo/pkg/jwtx"
	"github.com/aussiebroadwan/memo/pkg/otpx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// hookedCache runs beforeSet once, ahead of the first write.
type hookedCache struct {
	cache.Cache
	beforeSet func()
}

func (c *hookedCache) Set(ctx context.Context, kind string, id int64, value []byte, ttl time.Duration) error {
	if f := c.beforeSet; f != nil {
		c.beforeSet = nil
		f()
	}
	return c.Cache.Set(ctx, kind, id, value, ttl)
}

type testEnv struct {
	svc   *AccountService
	store *sqlstore.Store
	redis *miniredis.Miniredis
	clock *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	secrets, err := cryptox.NewSecretCodec([]byte("test-encryption-key"), "test-salt")
	require.NoError(t, err)

	tokens, err := jwtx.NewCodecFromConfig(jwtx.AlgHS256, []byte("test-jwt-secret-of-some-length"))
	require.NoError(t, err)

	root := t.TempDir()
	fs := &files.Store{Root: root}
	mfaDir, err := fs.Dir(files.DirMFA)
	require.NoError(t, err)

	clock := &testClock{t: time.Now().UTC().Truncate(time.Second)}

	svc := &AccountService{
		Store:    st,
		Cache:    &cache.Accounts{Cache: cache.NewRedisCache(rdb, ""), TTL: time.Minute},
		Secrets:  secrets,
		Tokens:   tokens,
		OTP:      &otpx.Engine{AppName: "memo", Dir: mfaDir, ImageSize: 64},
		Files:    fs,
		Limits:   DefaultLimits(),
		Userpics: DefaultUserpicConfig(),
		Now:      clock.Now,
	}

	return &testEnv{svc: svc, store: st, redis: mr, clock: clock}
}

func (e *testEnv) register(t *testing.T, login, password string) RegisterResult {
	t.Helper()

	res, err := e.svc.Register(context.Background(), RegisterInput{
		Login:     login,
		Password:  password,
		FirstName: "First",
		LastName:  "Last",
	})
	require.NoError(t, err)
	return res
}

func (e *testEnv) code(t *testing.T, secret string) string {
	t.Helper()

	code, err := e.svc.OTP.Code(secret, e.clock.Now())
	require.NoError(t, err)
	return code
}

// wrongCode returns a six digit code that differs from the current one.
func (e *testEnv) wrongCode(t *testing.T, secret string) string {
	t.Helper()

	b := []byte(e.code(t, secret))
	b[5] = '0' + (b[5]-'0'+1)%10
	return string(b)
}

// signIn runs both login steps and returns the session token.
func (e *testEnv) signIn(t *testing.T, res RegisterResult, password string) string {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, e.svc.Login(ctx, res.Account.Login, password))

	token, err := e.svc.VerifySecondFactor(ctx, VerifyInput{
		Login: res.Account.Login,
		Code:  e.code(t, res.MFASecret),
	})
	require.NoError(t, err)
	return token
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(y), B: uint8(x), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

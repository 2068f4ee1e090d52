package otpx_test

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/aussiebroadwan/memo/pkg/otpx"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *otpx.Engine {
	t.Helper()
	return &otpx.Engine{AppName: "memo", Dir: t.TempDir(), ImageSize: 128}
}

func TestGenerateSecret(t *testing.T) {
	e := newEngine(t)

	a, err := e.GenerateSecret()
	require.NoError(t, err)
	b, err := e.GenerateSecret()
	require.NoError(t, err)

	require.Regexp(t, regexp.MustCompile(`^[A-Z2-7]{32}$`), a)
	require.NotEqual(t, a, b)
}

func TestCode_RFC6238Vector(t *testing.T) {
	// RFC 6238 SHA1 seed "12345678901234567890", truncated to six digits.
	e := newEngine(t)
	secret := "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

	code, err := e.Code(secret, time.Unix(59, 0))
	require.NoError(t, err)
	require.Equal(t, "287082", code)

	code, err = e.Code(secret, time.Unix(1111111109, 0))
	require.NoError(t, err)
	require.Equal(t, "081804", code)
}

func TestValidate(t *testing.T) {
	e := newEngine(t)
	secret, err := e.GenerateSecret()
	require.NoError(t, err)

	now := time.Unix(1_700_000_010, 0)
	code, err := e.Code(secret, now)
	require.NoError(t, err)

	require.True(t, e.Validate(code, secret, now))
	require.True(t, e.Validate(" "+code+" ", secret, now))
	require.False(t, e.Validate(code, secret, now.Add(2*time.Minute)))
	require.False(t, e.Validate(code, "not base32!", now))
}

func TestValidate_Skew(t *testing.T) {
	e := newEngine(t)
	e.Skew = 1
	secret, err := e.GenerateSecret()
	require.NoError(t, err)

	now := time.Unix(1_700_000_010, 0)
	code, err := e.Code(secret, now)
	require.NoError(t, err)

	require.True(t, e.Validate(code, secret, now.Add(30*time.Second)))
	require.False(t, e.Validate(code, secret, now.Add(90*time.Second)))
}

func TestEnrollmentURL(t *testing.T) {
	e := newEngine(t)
	require.Equal(t,
		"otpauth://totp/memo?secret=ABCDEF&issuer=alice",
		e.EnrollmentURL("alice", "ABCDEF"),
	)
}

func TestRenderEnrollmentImage(t *testing.T) {
	e := newEngine(t)
	secret, err := e.GenerateSecret()
	require.NoError(t, err)

	path, err := e.RenderEnrollmentImage("alice", secret)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(e.Dir, secret+".png"), path)
	require.Equal(t, path, e.ImagePath(secret))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 128, img.Bounds().Dx())

	require.NoError(t, e.DeleteEnrollmentImage(secret))
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// Deleting again is a no-op.
	require.NoError(t, e.DeleteEnrollmentImage(secret))
}

func TestPruneImages(t *testing.T) {
	e := newEngine(t)

	oldSecret, err := e.GenerateSecret()
	require.NoError(t, err)
	newSecret, err := e.GenerateSecret()
	require.NoError(t, err)

	oldPath, err := e.RenderEnrollmentImage("a", oldSecret)
	require.NoError(t, err)
	newPath, err := e.RenderEnrollmentImage("b", newSecret)
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	n, err := e.PruneImages(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = os.Stat(oldPath)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(newPath)
	require.NoError(t, err)
}

func TestPruneImages_MissingDir(t *testing.T) {
	e := &otpx.Engine{Dir: filepath.Join(t.TempDir(), "absent")}
	n, err := e.PruneImages(time.Now())
	require.NoError(t, err)
	require.Zero(t, n)
}

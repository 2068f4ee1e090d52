// Package otpx generates and validates TOTP second-factor codes and renders
// the QR enrollment images handed to authenticator apps.
package otpx

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Defaults used when Engine fields are left zero.
const (
	DefaultPeriod    = 30
	DefaultImageSize = 256
	secretSize       = 20
	imageExt         = ".png"
)

var ErrInvalidSecret = errors.New("otpx: invalid secret")

// Engine holds TOTP settings and the directory enrollment images live in.
type Engine struct {
	// AppName labels the entry in the authenticator app.
	AppName string

	// Dir is where enrollment images are written.
	Dir string

	// ImageSize is the PNG edge length in pixels.
	ImageSize int

	// Period is the time-step in seconds.
	Period uint

	// Skew is the number of neighbouring steps accepted on validation.
	// Zero accepts only the current step.
	Skew uint
}

func (e *Engine) validateOpts() totp.ValidateOpts {
	period := e.Period
	if period == 0 {
		period = DefaultPeriod
	}
	return totp.ValidateOpts{
		Period:    period,
		Skew:      e.Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// GenerateSecret returns a fresh base32 secret with 160 bits of entropy.
func (e *Engine) GenerateSecret() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.appName(),
		AccountName: "enrollment",
		SecretSize:  secretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("otpx: generate secret: %w", err)
	}
	return key.Secret(), nil
}

// Code returns the six-digit code for secret at t.
func (e *Engine) Code(secret string, t time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, t, e.validateOpts())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return code, nil
}

// Validate reports whether code is valid for secret at t.
func (e *Engine) Validate(code, secret string, t time.Time) bool {
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, t, e.validateOpts())
	return err == nil && ok
}

// EnrollmentURL returns the otpauth URI encoded into the enrollment image.
func (e *Engine) EnrollmentURL(login, secret string) string {
	return fmt.Sprintf(
		"otpauth://totp/%s?secret=%s&issuer=%s",
		url.PathEscape(e.appName()),
		url.QueryEscape(secret),
		url.QueryEscape(login),
	)
}

// EnrollmentImage renders the enrollment QR code as PNG bytes.
func (e *Engine) EnrollmentImage(login, secret string) ([]byte, error) {
	key, err := otp.NewKeyFromURL(e.EnrollmentURL(login, secret))
	if err != nil {
		return nil, fmt.Errorf("otpx: parse enrollment url: %w", err)
	}

	size := e.ImageSize
	if size <= 0 {
		size = DefaultImageSize
	}

	img, err := key.Image(size, size)
	if err != nil {
		return nil, fmt.Errorf("otpx: render qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("otpx: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderEnrollmentImage writes the enrollment PNG to ImagePath(secret) and
// returns that path.
func (e *Engine) RenderEnrollmentImage(login, secret string) (string, error) {
	data, err := e.EnrollmentImage(login, secret)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.Dir, 0750); err != nil {
		return "", fmt.Errorf("otpx: create image dir: %w", err)
	}

	path := e.ImagePath(secret)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("otpx: write image: %w", err)
	}
	return path, nil
}

// ImageName is the file name of the enrollment image for secret.
func ImageName(secret string) string {
	return secret + imageExt
}

// ImagePath is where the enrollment image for secret is stored.
func (e *Engine) ImagePath(secret string) string {
	return filepath.Join(e.Dir, ImageName(secret))
}

// DeleteEnrollmentImage removes the enrollment image for secret. Missing
// images are not an error.
func (e *Engine) DeleteEnrollmentImage(secret string) error {
	if err := os.Remove(e.ImagePath(secret)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("otpx: delete image: %w", err)
	}
	return nil
}

// PruneImages removes enrollment images last modified before cutoff and
// returns how many were removed.
func (e *Engine) PruneImages(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(e.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("otpx: read image dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != imageExt {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(e.Dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("otpx: prune %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func (e *Engine) appName() string {
	if e.AppName == "" {
		return "memo"
	}
	return e.AppName
}

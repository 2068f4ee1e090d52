package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for password digests.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

var errDigestFormat = errors.New("invalid digest format")

// derivePasswordSalt stretches the configured salt string to saltLength bytes.
func derivePasswordSalt(salt string) []byte {
	sum := sha256.Sum256([]byte("memo/password-salt:" + salt))
	return sum[:saltLength]
}

// HashPassword returns a PHC-format Argon2id digest of password. The salt is
// the codec's configured salt, so the same password always yields the same
// digest and can be compared against the stored one.
func (c *SecretCodec) HashPassword(password string) string {
	hash := argon2.IDKey([]byte(password), c.salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(c.salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
}

// VerifyPassword reports whether password matches digest. The parameters and
// salt embedded in the digest are used, so digests created with older
// parameters still verify.
func (c *SecretCodec) VerifyPassword(password, digest string) bool {
	salt, expected, mem, iters, par, err := parseDigest(digest)
	if err != nil {
		return false
	}

	computed := argon2.IDKey(
		[]byte(password),
		salt,
		iters,
		mem,
		par,
		uint32(len(expected)), // #nosec G115 - digest lengths are tiny
	)

	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// parseDigest splits $argon2id$v=19$m=X,t=Y,p=Z$salt$hash into its parts.
func parseDigest(digest string) (salt, hash []byte, mem, iters uint32, par uint8, err error) {
	parts := strings.Split(digest, "$")

	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	if len(parts) != 6 || parts[0] != "" {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: expected 6 parts", errDigestFormat)
	}
	if parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: not argon2id", errDigestFormat)
	}
	if parts[2] != "v=19" {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: wrong version", errDigestFormat)
	}

	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: parameters: %v", errDigestFormat, err)
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: salt: %v", errDigestFormat, err)
	}
	if hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: hash: %v", errDigestFormat, err)
	}
	if len(hash) == 0 {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: empty hash", errDigestFormat)
	}

	return salt, hash, mem, iters, par, nil
}

package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/memo/pkg/cryptox"
	"github.com/aussiebroadwan/memo/pkg/jwtx"
)

// Generated key file names below <appdata>/keys.
const (
	encryptionKeyFile = "encryption.key"
	jwtSecretFile     = "jwt.secret"
	jwtEdDSAKeyFile   = "jwt_ed25519.pem"
)

// InitSecrets builds the secret codec from the configured encryption key.
//
// When neither MEMO_ENCRYPTION_KEY nor MEMO_ENCRYPTION_KEY_FILE is set a key
// is generated once under the data directory and reused on later starts.
// Losing that file makes every stored MFA secret and jti unreadable.
func InitSecrets(cfg Config, logger *slog.Logger) (*cryptox.SecretCodec, error) {
	key, err := cryptox.LoadKeyMaterial(cfg.EncryptionKeyFile, cfg.EncryptionKey)
	if errors.Is(err, cryptox.ErrNoKeyMaterial) {
		path := cfg.keyPath(encryptionKeyFile)
		logger.Warn("no encryption key configured, using generated key file", "path", path)
		key, err = cryptox.LoadOrGenerateKeyFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load encryption key: %w", err)
	}

	return cryptox.NewSecretCodec(key, cfg.HashSalt)
}

// InitTokens builds the session token codec for the configured algorithm.
//
// Supported algorithms: HS256 (shared secret) and EdDSA (Ed25519 PKCS8 PEM).
// Missing key material is generated under the data directory, as for the
// encryption key.
func InitTokens(cfg Config, logger *slog.Logger) (*jwtx.Codec, error) {
	var (
		key []byte
		err error
	)

	switch cfg.JWTAlgorithm {
	case jwtx.AlgEdDSA:
		key, err = cryptox.LoadKeyMaterial(cfg.JWTKeyFile, "")
		if errors.Is(err, cryptox.ErrNoKeyMaterial) {
			path := cfg.keyPath(jwtEdDSAKeyFile)
			logger.Warn("no EdDSA signing key configured, using generated key file", "path", path)
			key, err = loadOrGenerateEdDSAKey(path)
		}

	default:
		key, err = cryptox.LoadKeyMaterial(cfg.JWTKeyFile, cfg.JWTSecret)
		if errors.Is(err, cryptox.ErrNoKeyMaterial) {
			path := cfg.keyPath(jwtSecretFile)
			logger.Warn("no jwt secret configured, using generated key file", "path", path)
			key, err = cryptox.LoadOrGenerateKeyFile(path)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load jwt key: %w", err)
	}

	codec, err := jwtx.NewCodecFromConfig(cfg.JWTAlgorithm, key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jwt codec: %w", err)
	}

	logger.Info("session token codec initialized", "algorithm", cfg.JWTAlgorithm)
	return codec, nil
}

func loadOrGenerateEdDSAKey(path string) ([]byte, error) {
	path = filepath.Clean(path)

	if _, err := os.Stat(path); err == nil {
		return cryptox.LoadKeyMaterial(path, "")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}

	key, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		return nil, err
	}
	return key, nil
}

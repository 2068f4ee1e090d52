package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/memo/internal/accounts/service"
	"github.com/aussiebroadwan/memo/pkg/jwtx"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	DatabaseDriver string        // Optional: sqlite or postgres (default: sqlite)
	DatabaseDSN    string        // Optional: driver DSN (default: ./memo.db for sqlite)
	RedisURL       string        // Optional: redis URL; empty disables the cache
	CacheTTL       time.Duration // Optional: account cache TTL (default: 10m)

	EncryptionKey     string // Optional: inline secret encryption key
	EncryptionKeyFile string // Optional: file holding the encryption key
	HashSalt          string // Optional: salt mixed into password digests

	JWTAlgorithm string        // Optional: HS256 or EdDSA (default: HS256)
	JWTSecret    string        // Optional: inline HS256 secret
	JWTKeyFile   string        // Optional: HS256 secret file or EdDSA PKCS8 PEM
	TokenTTL     time.Duration // Optional: default token lifetime; 0 issues tokens without exp

	AppDataPath  string        // Optional: root for generated and uploaded files (default: ./appdata)
	MFAAppName   string        // Optional: issuer shown in authenticator apps (default: memo)
	MFAImageSize int           // Optional: enrollment QR edge in pixels (default: 256)
	MFAImageTTL  time.Duration // Optional: enrollment images older than this are pruned (default: 24h)

	UserpicMimes   []string // Optional: accepted picture types
	UserpicWidth   int      // Optional: picture bounding box width (default: 320)
	UserpicHeight  int      // Optional: picture bounding box height (default: 320)
	UserpicQuality int      // Optional: JPEG quality (default: 80)

	PassAttemptsLimit int           // Optional: wrong passwords before suspension (default: 5)
	PassSuspendedTime time.Duration // Optional: suspension length (default: 30s)
	MFAAttemptsLimit  int           // Optional: wrong codes before step one resets (default: 5)
	PassMinLength     int           // Optional: minimum password length (default: 6)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	LogFile              string        // Optional: also write logs to this rotated file
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// LoadConfig reads the dotenv file named by MEMO_DOTENV (default .env), when
// present, and then the process environment.
func LoadConfig() Config {
	if err := godotenv.Load(getEnvOrDefault("MEMO_DOTENV", ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "memo: ignoring dotenv file: %v\n", err)
	}

	limits := service.DefaultLimits()
	pics := service.DefaultUserpicConfig()

	cfg := Config{
		DatabaseDriver: strings.ToLower(getEnvOrDefault("MEMO_DATABASE_DRIVER", DriverSQLite)),
		DatabaseDSN:    os.Getenv("MEMO_DATABASE_DSN"),
		RedisURL:       os.Getenv("MEMO_REDIS_URL"),
		CacheTTL:       getEnvDurationOrDefault("MEMO_CACHE_TTL", 10*time.Minute),

		EncryptionKey:     os.Getenv("MEMO_ENCRYPTION_KEY"),
		EncryptionKeyFile: os.Getenv("MEMO_ENCRYPTION_KEY_FILE"),
		HashSalt:          os.Getenv("MEMO_HASH_SALT"),

		JWTAlgorithm: getEnvOrDefault("MEMO_JWT_ALGORITHM", jwtx.AlgHS256),
		JWTSecret:    os.Getenv("MEMO_JWT_SECRET"),
		JWTKeyFile:   os.Getenv("MEMO_JWT_KEY_FILE"),
		TokenTTL:     getEnvDurationOrDefault("MEMO_TOKEN_TTL", 0),

		AppDataPath:  getEnvOrDefault("MEMO_APPDATA_PATH", "appdata"),
		MFAAppName:   getEnvOrDefault("MEMO_MFA_APPNAME", "memo"),
		MFAImageSize: getEnvIntOrDefault("MEMO_MFA_IMAGE_SIZE", 256),
		MFAImageTTL:  getEnvDurationOrDefault("MEMO_MFA_IMAGE_TTL", 24*time.Hour),

		UserpicMimes:   getEnvListOrDefault("MEMO_USERPIC_MIMES", pics.Mimes),
		UserpicWidth:   getEnvIntOrDefault("MEMO_USERPIC_WIDTH", pics.Width),
		UserpicHeight:  getEnvIntOrDefault("MEMO_USERPIC_HEIGHT", pics.Height),
		UserpicQuality: getEnvIntOrDefault("MEMO_USERPIC_QUALITY", pics.Quality),

		PassAttemptsLimit: getEnvIntOrDefault("MEMO_PASS_ATTEMPTS_LIMIT", limits.PassAttempts),
		PassSuspendedTime: getEnvDurationOrDefault("MEMO_PASS_SUSPENDED_TIME", limits.PassSuspendedTime),
		MFAAttemptsLimit:  getEnvIntOrDefault("MEMO_MFA_ATTEMPTS_LIMIT", limits.MFAAttempts),
		PassMinLength:     getEnvIntOrDefault("MEMO_PASS_MIN_LENGTH", limits.PassMinLength),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		LogFile:              os.Getenv("LOG_FILE"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if cfg.DatabaseDSN == "" && cfg.DatabaseDriver == DriverSQLite {
		cfg.DatabaseDSN = "memo.db"
	}

	return cfg
}

// Validate reports settings the application cannot start with.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown database driver %q", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return errors.New("MEMO_DATABASE_DSN is required for " + c.DatabaseDriver)
	}

	switch c.JWTAlgorithm {
	case jwtx.AlgHS256, jwtx.AlgEdDSA:
	default:
		return fmt.Errorf("unknown jwt algorithm %q", c.JWTAlgorithm)
	}

	if c.PassAttemptsLimit <= 0 || c.MFAAttemptsLimit <= 0 {
		return errors.New("attempt limits must be positive")
	}
	if len(c.UserpicMimes) == 0 {
		return errors.New("MEMO_USERPIC_MIMES must list at least one type")
	}
	return nil
}

// Limits returns the login limits for the account service.
func (c Config) Limits() service.Limits {
	return service.Limits{
		PassAttempts:      c.PassAttemptsLimit,
		PassSuspendedTime: c.PassSuspendedTime,
		MFAAttempts:       c.MFAAttemptsLimit,
		PassMinLength:     c.PassMinLength,
	}
}

// Userpics returns the picture settings for the account service.
func (c Config) Userpics() service.UserpicConfig {
	return service.UserpicConfig{
		Mimes:   c.UserpicMimes,
		Width:   c.UserpicWidth,
		Height:  c.UserpicHeight,
		Quality: c.UserpicQuality,
	}
}

// keyPath is where generated keys are kept when none were configured.
func (c Config) keyPath(name string) string {
	return filepath.Join(c.AppDataPath, "keys", name)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma separated value, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

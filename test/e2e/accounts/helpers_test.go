//go:build e2e

package accounts_test

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/memo/internal/accounts/app"
	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/pkg/cryptox"
	"github.com/aussiebroadwan/memo/pkg/idx"
	"github.com/aussiebroadwan/memo/pkg/jwtx"
	"github.com/aussiebroadwan/memo/pkg/memosdk"
	"github.com/aussiebroadwan/memo/pkg/otpx"
)

/*
 * Common helpers for the accounts end-to-end tests. Postgres and redis run
 * in containers shared by every test; each test gets its own in-process
 * service wired exactly as `memo serve` wires it.
 */

const (
	postgresImage = "postgres:16-alpine"
	redisImage    = "redis:7-alpine"
)

var (
	databaseDSN string
	redisURL    string
)

// TestMain starts the backing containers once for the whole package.
func TestMain(m *testing.M) {
	ctx := context.Background()

	fmt.Fprintf(os.Stdout, "Starting postgres and redis containers...")

	pg, dsn, err := startPostgres(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to start postgres: %v\n", err)
		os.Exit(1)
	}

	rd, url, err := startRedis(ctx)
	if err != nil {
		_ = pg.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "\nFailed to start redis: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	databaseDSN, redisURL = dsn, url

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Terminating containers...")
	_ = rd.Terminate(ctx)
	_ = pg.Terminate(ctx)
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "memo",
			"POSTGRES_PASSWORD": "memo",
			"POSTGRES_DB":       "memo",
		},
		// The entrypoint restarts the server once after init scripts.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", err
	}

	addr, err := endpoint(ctx, container, "5432")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", err
	}

	return container, fmt.Sprintf("postgres://memo:memo@%s/memo?sslmode=disable", addr), nil
}

func startRedis(ctx context.Context) (testcontainers.Container, string, error) {
	req := testcontainers.ContainerRequest{
		Image:        redisImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", err
	}

	addr, err := endpoint(ctx, container, "6379")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", err
	}

	return container, "redis://" + addr + "/0", nil
}

func endpoint(ctx context.Context, c testcontainers.Container, port string) (string, error) {
	mappedPort, err := c.MappedPort(ctx, port)
	if err != nil {
		return "", err
	}

	host, err := c.Host(ctx)
	if err != nil {
		return "", err
	}

	return host + ":" + mappedPort.Port(), nil
}

type service struct {
	URL    string
	client *memosdk.SDKClient
	app    *app.Application
	otp    *otpx.Engine
}

// setupService starts the accounts service against the shared containers.
func setupService(t *testing.T) *service {
	t.Helper()

	dir := t.TempDir()
	cfg := app.Config{
		DatabaseDriver:       app.DriverPostgres,
		DatabaseDSN:          databaseDSN,
		RedisURL:             redisURL,
		CacheTTL:             time.Minute,
		EncryptionKey:        "e2e-encryption-key",
		HashSalt:             "e2e-salt",
		JWTAlgorithm:         jwtx.AlgEdDSA,
		JWTKeyFile:           filepath.Join(dir, "jwt.pem"),
		AppDataPath:          filepath.Join(dir, "appdata"),
		MFAAppName:           "memo-e2e",
		MFAImageSize:         128,
		MFAImageTTL:          time.Hour,
		UserpicMimes:         []string{"image/png", "image/jpeg"},
		UserpicWidth:         64,
		UserpicHeight:        64,
		UserpicQuality:       80,
		PassAttemptsLimit:    3,
		PassSuspendedTime:    time.Minute,
		MFAAttemptsLimit:     3,
		PassMinLength:        6,
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "json",
		ShutdownGracePeriod:  5 * time.Second,
		HousekeepingInterval: time.Hour,
	}

	key, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg.JWTKeyFile, key, 0600))

	application, err := app.New(t.Context(), cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = application.Shutdown()
	})

	return &service{
		URL:    srv.URL,
		client: memosdk.NewSDKClient(srv.URL),
		app:    application,
		otp:    &otpx.Engine{},
	}
}

// uniqueLogin returns a login no other test run has used.
func uniqueLogin(prefix string) string {
	id := strings.ToLower(idx.New().String())
	return prefix + "-" + id[len(id)-10:]
}

func password(login string) string {
	return login + "-password"
}

// register creates an account with a predictable password.
func (s *service) register(t *testing.T, login string) *memosdk.RegisterResponse {
	t.Helper()

	reg, err := s.client.Register(t.Context(), memosdk.RegisterRequest{
		UserLogin: login,
		UserPass:  password(login),
		FirstName: "First",
		LastName:  "Last",
	})
	require.NoError(t, err)
	require.NotZero(t, reg.UserID)
	require.NotEmpty(t, reg.MFAKey)
	return reg
}

// code returns the current TOTP code, waiting out the last two seconds of a
// step so the server validates it in the same step.
func (s *service) code(t *testing.T, secret string) string {
	t.Helper()

	if remaining := otpx.DefaultPeriod - time.Now().Unix()%otpx.DefaultPeriod; remaining <= 2 {
		time.Sleep(time.Duration(remaining)*time.Second + 100*time.Millisecond)
	}

	code, err := s.otp.Code(secret, time.Now())
	require.NoError(t, err)
	return code
}

func (s *service) signIn(t *testing.T, login string, reg *memosdk.RegisterResponse) *memosdk.Session {
	t.Helper()

	session, err := s.client.SignIn(t.Context(), login, password(login), s.code(t, reg.MFAKey), nil)
	require.NoError(t, err)
	return session
}

// setRole grants a role directly. Only the very first account of the shared
// database becomes admin on its own.
func (s *service) setRole(t *testing.T, id int64, role domain.Role) {
	t.Helper()

	accounts := s.app.Accounts()
	acc, err := accounts.Fetch(t.Context(), id)
	require.NoError(t, err)
	require.NoError(t, accounts.ChangeRole(t.Context(), &acc, role))
}

// newUser registers an account, grants role and signs in. role must allow
// logins.
func (s *service) newUser(t *testing.T, prefix string, role domain.Role) (int64, string, *memosdk.Session) {
	t.Helper()

	login := uniqueLogin(prefix)
	reg := s.register(t, login)
	s.setRole(t, reg.UserID, role)
	return reg.UserID, login, s.signIn(t, login, reg)
}

func requireAPIError(t *testing.T, err error, status int, typ string) {
	t.Helper()

	var apiErr *memosdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *APIError, got %v", err)
	require.Equal(t, status, apiErr.StatusCode)
	if typ != "" {
		require.Equal(t, typ, apiErr.Type())
	}
}

package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-app/finsight/internal/logging"
	"github.com/finsight-app/finsight/internal/server/config"
	"github.com/finsight-app/finsight/internal/server/repositories/repomanager"
	"github.com/finsight-app/finsight/internal/server/services"
)

func newTestApp(t *testing.T, input string) (*App, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DataDir = t.TempDir()

	rm, err := repomanager.NewFileRepositoryManager(cfg.DataDir)
	require.NoError(t, err)
	t.Cleanup(func() { rm.Close() })

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	var out bytes.Buffer
	return &App{
		config:      cfg,
		logger:      logger,
		repoManager: rm,
		auth:        services.NewAuthService(rm, cfg, logger),
		reader:      bufio.NewReader(strings.NewReader(input)),
		out:         &out,
	}, &out
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = old })
}

func TestRegisterCommand(t *testing.T) {
	app, out := newTestApp(t, "alice\ninvestor\n")
	stubPassword(t, "secret1")

	err := app.Run(context.Background(), []string{"register"})
	require.NoError(t, err)
	assert.Regexp(t, `User registered successfully! Client ID: INV_[A-F0-9]{6}_\d{8}`, out.String())

	user, err := app.auth.GetUserInfo(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.FullName)
}

func TestRegisterCommand_InvalidRole(t *testing.T) {
	app, _ := newTestApp(t, "alice\nbanker\n")
	stubPassword(t, "secret1")

	err := app.Run(context.Background(), []string{"register"})
	require.Error(t, err)
	assert.Equal(t, "Invalid role selected", err.Error())
}

func TestInfoCommand(t *testing.T) {
	app, out := newTestApp(t, "bob\ninvestee\n")
	stubPassword(t, "secret1")
	require.NoError(t, app.Run(context.Background(), []string{"register"}))

	out.Reset()
	err := app.Run(context.Background(), []string{"info", "bob"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Username:   bob")
	assert.Contains(t, out.String(), "Full name:  Bob")
	assert.Regexp(t, `Client ID:  IVE_[A-F0-9]{6}_\d{8}`, out.String())
}

func TestInfoCommand_MissingArg(t *testing.T) {
	app, _ := newTestApp(t, "")
	err := app.Run(context.Background(), []string{"info"})
	require.Error(t, err)
}

func TestPurgeSessionsCommand(t *testing.T) {
	app, out := newTestApp(t, "carol\ninvestor\n")
	stubPassword(t, "secret1")
	require.NoError(t, app.Run(context.Background(), []string{"register"}))

	// Registration opened one live session; it must survive the purge.
	out.Reset()
	require.NoError(t, app.Run(context.Background(), []string{"purge-sessions"}))
	assert.Contains(t, out.String(), "Purged 0 expired session(s)")

	// A session that expired an hour ago gets removed.
	sid, err := app.auth.CreateSession(context.Background(), "carol")
	require.NoError(t, err)
	sess, err := app.repoManager.Sessions().Get(context.Background(), sid)
	require.NoError(t, err)
	sess.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, app.repoManager.Sessions().Create(context.Background(), sess))

	out.Reset()
	require.NoError(t, app.Run(context.Background(), []string{"purge-sessions"}))
	assert.Contains(t, out.String(), "Purged 1 expired session(s)")
}

func TestUnknownCommand(t *testing.T) {
	app, _ := newTestApp(t, "")
	err := app.Run(context.Background(), []string{"frobnicate"})
	require.Error(t, err)
}

package main

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/realitycheck-api/internal/config"
	"github.com/phrazzld/realitycheck-api/internal/platform/logger"
	"github.com/phrazzld/realitycheck-api/internal/platform/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassphraseCommand(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{"argument", []string{"hash-passphrase", "open sesame"}, "", "open sesame"},
		{"stdin", []string{"hash-passphrase"}, "open sesame\n", "open sesame"},
		{"stdin without newline", []string{"hash-passphrase"}, "open sesame", "open sesame"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := newRootCmd()
			cmd.SetArgs(tt.args)
			cmd.SetIn(strings.NewReader(tt.stdin))
			cmd.SetOut(&out)

			require.NoError(t, cmd.Execute())

			hash := strings.TrimSpace(out.String())
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(tt.want)))
		})
	}
}

func TestHashPassphraseRejectsEmpty(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"hash-passphrase"})
	cmd.SetIn(strings.NewReader("\n"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}

// writeConfig points the commands at a fresh SQLite database in a temp dir.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	hash, err := bcrypt.GenerateFromPassword([]byte("open sesame"), bcrypt.MinCost)
	require.NoError(t, err)

	yaml := strings.Join([]string{
		"server:",
		"  port: 8080",
		"  log_level: error",
		"database:",
		"  driver: sqlite",
		"  url: " + filepath.Join(dir, "test.db"),
		"auth:",
		"  jwt_secret: cmd-test-secret-0123456789abcdefghij",
		"  owner_passphrase_hash: '" + string(hash) + "'",
		"  owner_id: " + uuid.NewString(),
		"  token_lifetime_minutes: 5",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	return dir
}

func TestMigrateCommands(t *testing.T) {
	dir := writeConfig(t)

	run := func(args ...string) string {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetArgs(append([]string{"--config-dir", dir}, args...))
		cmd.SetOut(&out)
		require.NoError(t, cmd.Execute())
		return out.String()
	}

	run("migrate", "up")
	assert.NotEqual(t, "0\n", run("migrate", "version"))

	status := run("migrate", "status")
	assert.Contains(t, status, "VERSION")
	assert.Contains(t, status, "applied")
	assert.NotContains(t, status, "pending")

	run("migrate", "down")
	assert.Contains(t, run("migrate", "status"), "pending")
}

func TestApplicationServesAndShutsDown(t *testing.T) {
	dir := writeConfig(t)
	cfg, err := config.LoadFrom(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l, err := logger.SetupWithWriter(cfg.Server, &bytes.Buffer{})
	require.NoError(t, err)
	db, err := sqlite.Open(ctx, cfg.Database.URL, l)
	require.NoError(t, err)
	m, err := newMigrator(cfg.Database.Driver, db, l)
	require.NoError(t, err)
	require.NoError(t, m.Up(ctx))

	app, err := newApplication(ctx, cfg, l, db)
	require.NoError(t, err)

	groups, err := app.groupService.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, groups, "default groups are created on startup")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, ln, app.setupRouter()) }()

	base := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	token, err := app.authenticator.Login(ctx, "open sesame")
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodGet, base+"/api/decisions", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body := new(bytes.Buffer)
	_, _ = body.ReadFrom(resp.Body)
	_ = resp.Body.Close()
	assert.Contains(t, body.String(), "realitycheck_http_requests_total")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

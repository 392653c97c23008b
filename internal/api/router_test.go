package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/realitycheck-api/internal/analytics"
	"github.com/phrazzld/realitycheck-api/internal/api"
	"github.com/phrazzld/realitycheck-api/internal/api/shared"
	"github.com/phrazzld/realitycheck-api/internal/config"
	"github.com/phrazzld/realitycheck-api/internal/events"
	"github.com/phrazzld/realitycheck-api/internal/platform/sqlstore"
	"github.com/phrazzld/realitycheck-api/internal/service"
	"github.com/phrazzld/realitycheck-api/internal/service/auth"
	"github.com/phrazzld/realitycheck-api/internal/store"
	"github.com/phrazzld/realitycheck-api/internal/testdb"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testPassphrase = "let me in, please"
	testSecret     = "api-test-secret-that-is-long-enough"
)

var testNow = time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

type testServer struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

// newTestServer wires the real stores and services over an in-memory SQLite
// database behind the router.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	db := testdb.SQLite(t)

	clock := analytics.FixedClock(testNow)
	decisionStore := sqlstore.NewDecisionStore(db.DB, db.Dialect, nil)
	groupStore := sqlstore.NewGroupStore(db.DB, db.Dialect, nil)
	tx := store.NewTransactor(db.DB)
	emitter := events.NewInMemoryEventEmitter(nil)

	analyticsService, err := service.NewAnalyticsService(decisionStore, nil,
		service.WithAggregatorOptions(analytics.WithClock(clock)))
	require.NoError(t, err)
	emitter.RegisterHandler(analyticsService)

	decisionService, err := service.NewDecisionService(decisionStore, tx, emitter, clock, nil)
	require.NoError(t, err)
	groupService, err := service.NewGroupService(groupStore, tx, emitter, clock, nil)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassphrase), bcrypt.MinCost)
	require.NoError(t, err)
	authCfg := config.AuthConfig{
		JWTSecret:            testSecret,
		OwnerPassphraseHash:  string(hash),
		OwnerID:              uuid.NewString(),
		TokenLifetimeMinutes: 60,
	}
	jwtService, err := auth.NewJWTService(authCfg)
	require.NoError(t, err)
	authenticator, err := auth.NewOwnerAuthenticator(authCfg, auth.NewBcryptVerifier(), jwtService)
	require.NoError(t, err)

	router := api.NewRouter(api.RouterDeps{
		Decisions:     decisionService,
		Groups:        groupService,
		Analytics:     analyticsService,
		Authenticator: authenticator,
		JWTService:    jwtService,
		Clock:         clock,
		SimilarLimit:  5,
		DB:            db.DB,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	token, err := authenticator.Login(ctx, testPassphrase)
	require.NoError(t, err)

	return &testServer{t: t, server: srv, token: token.AccessToken}
}

// do sends an authenticated request with body encoded as JSON.
func (s *testServer) do(method, path string, body any) *http.Response {
	s.t.Helper()
	return s.doWithToken(method, path, body, s.token)
}

func (s *testServer) doWithToken(method, path string, body any, token string) *http.Response {
	s.t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.server.URL+path, r)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.server.Client().Do(req)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// decode reads resp as JSON into v after checking the status code.
func decode(t *testing.T, resp *http.Response, wantStatus int, v any) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, "body: %s", body)
	if v != nil {
		require.NoError(t, json.Unmarshal(body, v), "body: %s", body)
	}
}

func errorMessage(t *testing.T, resp *http.Response, wantStatus int) string {
	t.Helper()
	var e shared.ErrorResponse
	decode(t, resp, wantStatus, &e)
	return e.Error
}

type decisionJSON struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Category     string     `json:"category"`
	Tags         []string   `json:"tags"`
	GroupID      *int64     `json:"group_id"`
	Outcome      string     `json:"outcome"`
	ReminderAt   *time.Time `json:"reminder_at"`
	Followed     *bool      `json:"followed"`
	Accuracy     *float64   `json:"accuracy"`
	RegretIndex  *float64   `json:"regret_index"`
	Indicator    string     `json:"indicator"`
	CheckInLabel string     `json:"check_in_label"`
}

func (s *testServer) createDecision(body map[string]any) decisionJSON {
	s.t.Helper()
	var d decisionJSON
	decode(s.t, s.do(http.MethodPost, "/api/decisions", body), http.StatusCreated, &d)
	require.NotZero(s.t, d.ID)
	return d
}

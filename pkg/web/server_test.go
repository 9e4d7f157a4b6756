package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"civiclink/pkg/api/auth"
	"civiclink/pkg/api/repository"
	"civiclink/pkg/config"
	"civiclink/pkg/localstore"
	"civiclink/pkg/log"
	"civiclink/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.InitializeConsoleLogger()
	os.Exit(m.Run())
}

type testServer struct {
	handler http.Handler
	store   *localstore.Store
}

func newTestServer(t *testing.T, configure ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.Server.JWTSecret = "test-secret"
	for _, c := range configure {
		c(cfg)
	}

	store, err := localstore.Open(cfg.Storage)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	s, err := NewServer(cfg, store)
	require.NoError(t, err)

	return &testServer{handler: s.Handler(), store: store}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if len(token) > 0 {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

// register signs up a user and returns their token and id
func (ts *testServer) register(t *testing.T, email string, role models.Role) (string, string) {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     email,
		"password":  "secret1",
		"firstName": "Test",
		"lastName":  "User",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	user := body["user"].(map[string]any)
	id := user["id"].(string)
	assert.NotContains(t, user, "password")

	if role != models.RoleVoter {
		_, err := ts.store.UpdateUser(context.Background(), id, func(u *models.User) error {
			u.Role = role
			return nil
		})
		require.NoError(t, err)
	}

	return body["token"].(string), id
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "CivicLink Backend API", body["service"])
}

func TestRouteNotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decode(t, rec)["message"])
}

func TestLanguages(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/help/languages", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	languages := decode(t, rec)["languages"].([]any)
	require.Len(t, languages, 8)
	assert.Equal(t, map[string]any{"code": "es", "name": "Español"}, languages[1])
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/claims", "", map[string]string{"claim": "Mail ballots expire after 10 days", "language": "en"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No token, authorization denied", decode(t, rec)["message"])

	rec = ts.do(t, http.MethodPost, "/api/claims", "garbage", map[string]string{"claim": "Mail ballots expire after 10 days", "language": "en"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token is not valid", decode(t, rec)["message"])

	token, _ := ts.register(t, "vera@example.com", models.RoleVoter)

	rec = ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "vera@example.com", user["email"])

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "vera@example.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", decode(t, rec)["message"])

	rec = ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "vera@example.com", "password": "secret1", "firstName": "V", "lastName": "W",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", decode(t, rec)["message"])
}

// unavailableUsers fails account lookups the way a store outage would
type unavailableUsers struct {
	repository.Repository
}

func (unavailableUsers) User(context.Context, string) (*models.User, error) {
	return nil, errors.New("connection refused")
}

func TestAuthenticationStoreFailures(t *testing.T) {
	cfg := config.Default()
	cfg.Server.JWTSecret = "test-secret"

	store, err := localstore.Open(cfg.Storage)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	token, err := auth.NewTokens(cfg.Server.JWTSecret, time.Hour).Issue(models.NewUser("gone@example.com", "hash", "Gone", "User", time.Now()))
	require.NoError(t, err)

	s, err := NewServer(cfg, store)
	require.NoError(t, err)
	ts := &testServer{handler: s.Handler(), store: store}

	rec := ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token is not valid", decode(t, rec)["message"])

	s, err = NewServer(cfg, unavailableUsers{store})
	require.NoError(t, err)
	ts = &testServer{handler: s.Handler(), store: store}

	rec = ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server error", decode(t, rec)["message"])
}

func TestClaimValidationResponse(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.register(t, "vera@example.com", models.RoleVoter)

	rec := ts.do(t, http.MethodPost, "/api/claims", token, map[string]string{"claim": "too short", "language": "en"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Validation failed", body["message"])
	errs := body["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "claim", errs[0].(map[string]any)["field"])

	rec = ts.do(t, http.MethodGet, "/api/claims?limit=500", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClaimWorkflow(t *testing.T) {
	ts := newTestServer(t)
	voter, _ := ts.register(t, "vera@example.com", models.RoleVoter)
	organizer, organizerID := ts.register(t, "olu@example.com", models.RoleOrganizer)

	rec := ts.do(t, http.MethodPost, "/api/claims", voter, map[string]string{
		"claim":     "Mail ballots expire after 10 days",
		"language":  "en",
		"community": "Oakland",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Claim submitted successfully", body["message"])
	claim := body["claim"].(map[string]any)
	id := claim["id"].(string)
	assert.Equal(t, "pending", claim["status"])
	assert.Equal(t, "vera@example.com", claim["submittedBy"].(map[string]any)["email"])

	rec = ts.do(t, http.MethodPut, "/api/claims/"+id+"/review", voter, map[string]string{"status": "verified"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied. Insufficient permissions.", decode(t, rec)["message"])

	rec = ts.do(t, http.MethodPut, "/api/claims/claim-missing/review", organizer, map[string]string{"status": "verified"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Claim not found", decode(t, rec)["message"])

	rec = ts.do(t, http.MethodPut, "/api/claims/"+id+"/review", organizer, map[string]any{
		"status":      "verified",
		"verdict":     "false",
		"explanation": "Mail ballots count if postmarked by election day.",
		"sources":     []map[string]string{{"name": "Registrar", "url": "https://example.gov", "type": "government"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	claim = decode(t, rec)["claim"].(map[string]any)
	assert.Equal(t, "verified", claim["status"])
	assert.Equal(t, organizerID, claim["reviewedBy"].(map[string]any)["id"])
	assert.NotEmpty(t, claim["reviewedAt"])

	rec = ts.do(t, http.MethodPost, "/api/claims/"+id+"/feedback", voter, map[string]any{"rating": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodPost, "/api/claims/"+id+"/feedback", voter, map[string]any{"rating": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Feedback already submitted", decode(t, rec)["message"])

	rec = ts.do(t, http.MethodPost, "/api/claims/"+id+"/share", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Share tracked successfully", decode(t, rec)["message"])

	ts.do(t, http.MethodGet, "/api/claims/"+id, "", nil)
	rec = ts.do(t, http.MethodGet, "/api/claims/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	claim = decode(t, rec)["claim"].(map[string]any)
	assert.EqualValues(t, 2, claim["viewCount"])
	assert.EqualValues(t, 1, claim["shareCount"])
	assert.Len(t, claim["feedback"], 1)

	rec = ts.do(t, http.MethodGet, "/api/claims?status=verified&search=ballots", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Len(t, body["claims"], 1)
	assert.EqualValues(t, 1, body["pagination"].(map[string]any)["total"])

	rec = ts.do(t, http.MethodGet, "/api/claims/trending", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	trending := decode(t, rec)["trendingClaims"].([]any)
	require.Len(t, trending, 1)
	assert.EqualValues(t, 2, trending[0].(map[string]any)["totalViews"])

	rec = ts.do(t, http.MethodGet, "/api/claims/claim-missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTranslationWorkflow(t *testing.T) {
	ts := newTestServer(t)
	voter, _ := ts.register(t, "vera@example.com", models.RoleVoter)
	admin, adminID := ts.register(t, "ada@example.com", models.RoleAdmin)

	request := map[string]string{
		"english":     "ballot",
		"translated":  "boleta",
		"language":    "es",
		"explanation": "The form used to vote",
		"category":    "voting",
	}

	rec := ts.do(t, http.MethodGet, "/api/translations/stats/overview", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode(t, rec)["stats"].(map[string]any)["verificationRate"])

	rec = ts.do(t, http.MethodPost, "/api/translations", voter, request)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/translations", admin, request)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	translation := decode(t, rec)["translation"].(map[string]any)
	id := translation["id"].(string)
	assert.Equal(t, true, translation["verified"])
	assert.Equal(t, adminID, translation["verifiedBy"].(map[string]any)["id"])

	rec = ts.do(t, http.MethodPut, "/api/translations/"+id+"/verify", admin, map[string]bool{"verified": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Translation unverified successfully", decode(t, rec)["message"])

	rec = ts.do(t, http.MethodPost, "/api/translations/"+id+"/feedback", voter, map[string]bool{"helpful": true})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/translations/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["translation"].(map[string]any)["usageCount"])

	rec = ts.do(t, http.MethodGet, "/api/translations?verified=false", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["translations"], 1)

	rec = ts.do(t, http.MethodGet, "/api/translations/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	categories := decode(t, rec)["categories"].([]any)
	require.Len(t, categories, 1)
	assert.Equal(t, "voting", categories[0].(map[string]any)["_id"])
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit.Requests = 2
		cfg.Server.RateLimit.Window = time.Minute
	})

	for range 2 {
		rec := ts.do(t, http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests from this IP, please try again later.", decode(t, rec)["message"])
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodGet, "/health", "", nil)

	rec := ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `civiclink_http_requests_total{method="GET",route="/health",status="200"} 1`))
}

func TestRateLimiterWindow(t *testing.T) {
	l := NewRateLimiter(3, time.Minute)

	for i := range 3 {
		ok, remaining, reset := l.Allow("203.0.113.9")
		assert.True(t, ok)
		assert.Equal(t, 2-i, remaining)
		assert.True(t, reset.After(time.Now()))
	}

	ok, remaining, _ := l.Allow("203.0.113.9")
	assert.False(t, ok)
	assert.Zero(t, remaining)

	ok, _, _ = l.Allow("198.51.100.7")
	assert.True(t, ok)
}

package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/handlers"
	"github.com/fenilmodi00/legal-oracle-backend/jobs"
	"github.com/fenilmodi00/legal-oracle-backend/middleware"
	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/services"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	Count     int             `json:"count"`
	Persisted bool            `json:"persisted"`
}

type testServer struct {
	app      *fiber.App
	sessions *services.MemorySessionStore
}

func newTestServer(t *testing.T, skipVerify bool) *testServer {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(upstream.Close)

	upstreamConfig := shared.UpstreamConfig{
		BaseURL:            upstream.URL,
		HTTPRequestTimeout: 2 * time.Second,
		RequestRateLimit:   time.Millisecond,
		UserAgent:          "legal-oracle-test",
	}

	sessions := services.NewMemorySessionStore()
	oracle := services.NewOracleService(nil, nil, shared.LLMConfig{RequestTimeout: time.Second})
	authService := services.NewAuthService(nil, sessions, "test-secret")
	caseService := services.NewCaseService(oracle, nil, sessions)
	alertService := services.NewAlertService(oracle, nil, sessions)
	caselawService := services.NewCaselawService(services.LoadCorpus(""), nil, nil)
	courtListener := services.NewCourtListenerService(upstreamConfig, "", shared.NewHTTPClientFactory(2*time.Second))
	datasets := services.NewDatasetService(upstreamConfig, nil)
	feedback := services.NewFeedbackService(nil)
	limiter := shared.NewKeyedRateLimiter(1000)
	cleanupJob := jobs.NewCacheCleanupJob(limiter, oracle.Cache(), caselawService.Cache(), datasets.Cache())

	hb := &handlers.HandlerBundle{
		Auth:          handlers.NewAuthHandler(authService),
		Oracle:        handlers.NewOracleHandler(oracle, caseService, services.NewRecordService(nil)),
		Cases:         handlers.NewCaseHandler(caseService),
		Alerts:        handlers.NewAlertHandler(alertService),
		Caselaw:       handlers.NewCaselawHandler(caselawService),
		CourtListener: handlers.NewCourtListenerHandler(courtListener),
		Datasets:      handlers.NewDatasetHandler(datasets),
		Feedback:      handlers.NewFeedbackHandler(feedback),
		Admin:         handlers.NewAdminHandler(oracle, caselawService, datasets, courtListener, cleanupJob),
	}

	app := fiber.New(fiber.Config{Immutable: true})
	app.Use(middleware.RateLimit(limiter))
	Register(app, hb, middleware.RequireAuth(authService, skipVerify))

	return &testServer{app: app, sessions: sessions}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	_ = json.Unmarshal(raw, &env)
	return resp, env
}

func (s *testServer) guestToken(t *testing.T) string {
	t.Helper()
	resp, env := s.do(t, http.MethodPost, "/api/v1/auth/guest", "", fiber.Map{"role": "lawyer"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var auth models.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	require.NotEmpty(t, auth.Token)
	return auth.Token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)

	resp, _ := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, false)

	resp, env := s.do(t, http.MethodGet, "/api/v1/cases", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.Success)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/cases", s.guestToken(t), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGuestLoginRequiresRole(t *testing.T) {
	s := newTestServer(t, false)

	resp, env := s.do(t, http.MethodPost, "/api/v1/auth/guest", "", fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Error, "role")
}

func TestSignUpWithoutAccountStorage(t *testing.T) {
	s := newTestServer(t, false)

	resp, _ := s.do(t, http.MethodPost, "/api/v1/auth/signup", "", fiber.Map{"email": "a@b.co", "password": "longenough"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": "a@b.co"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPredictionFlowFeedsCasesAndDashboard(t *testing.T) {
	s := newTestServer(t, false)
	token := s.guestToken(t)

	resp, env := s.do(t, http.MethodPost, "/api/v1/outcome/predict", token, fiber.Map{
		"case_type":    "contract_dispute",
		"jurisdiction": "California",
		"key_facts":    []string{"late delivery"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get(handlers.HeaderLLMFallback))
	assert.False(t, env.Persisted)

	var submission models.CaseSubmission
	require.NoError(t, json.Unmarshal(env.Data, &submission))
	assert.NotEmpty(t, submission.CaseID)

	_, env = s.do(t, http.MethodGet, "/api/v1/cases", token, nil)
	assert.Equal(t, 1, env.Count)

	_, env = s.do(t, http.MethodGet, "/api/v1/dashboard", token, nil)
	var dashboard models.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &dashboard))
	require.Len(t, dashboard.RecentCases, 1)
	assert.Equal(t, "contract_dispute - California", dashboard.RecentCases[0].Title)
	assert.Equal(t, services.CasesSourceCache, dashboard.CasesSource)
}

func TestPredictRejectsMissingFields(t *testing.T) {
	s := newTestServer(t, true)

	resp, env := s.do(t, http.MethodPost, "/api/v1/outcome/predict", "", fiber.Map{"case_type": "tort"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing required fields: jurisdiction, key_facts", env.Error)
}

func TestOracleEndpointsFlagFallback(t *testing.T) {
	s := newTestServer(t, true)

	requests := map[string]fiber.Map{
		"/api/v1/strategy/optimize":     {"case_type": "tort", "jurisdiction": "NY"},
		"/api/v1/simulation/run":        {"strategy": "settle early"},
		"/api/v1/trends/forecast":       {"industry": "fintech", "jurisdictions": []string{"EU"}},
		"/api/v1/trends/model":          {"legal_domain": "privacy"},
		"/api/v1/jurisdiction/optimize": {"case_type": "patent"},
		"/api/v1/precedent/simulate":    {"decision": "overrule"},
		"/api/v1/precedent/predict":     {"jurisdiction": "federal"},
		"/api/v1/compliance/optimize":   {"industry": "health", "jurisdiction": "CA"},
	}

	for path, body := range requests {
		t.Run(path, func(t *testing.T) {
			resp, env := s.do(t, http.MethodPost, path, "", body)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.True(t, env.Success)
			assert.Equal(t, "true", resp.Header.Get(handlers.HeaderLLMFallback))

			var meta models.OracleMeta
			require.NoError(t, json.Unmarshal(env.Data, &meta))
			assert.True(t, meta.IsLLMFallback)
			assert.Equal(t, models.SourceMock, meta.Source)

			resp, _ = s.do(t, http.MethodPost, path, "", fiber.Map{})
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestArbitrageAlertLifecycle(t *testing.T) {
	s := newTestServer(t, false)
	token := s.guestToken(t)

	resp, env := s.do(t, http.MethodPost, "/api/v1/arbitrage/alerts", token, models.AlertSettings{
		UserRole:       "business",
		Jurisdiction:   "California",
		LegalInterests: []string{"tax"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var generated models.ArbitrageOpportunities
	require.NoError(t, json.Unmarshal(env.Data, &generated))
	require.NotEmpty(t, generated.Opportunities)

	_, env = s.do(t, http.MethodGet, "/api/v1/arbitrage/alerts", token, nil)
	assert.Equal(t, len(generated.Opportunities), env.Count)

	target := generated.Opportunities[0].ID
	resp, env = s.do(t, http.MethodDelete, "/api/v1/arbitrage/alerts/"+target, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, len(generated.Opportunities)-1, env.Count)

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/arbitrage/alerts/"+target, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, env = s.do(t, http.MethodGet, "/api/v1/arbitrage/settings", token, nil)
	var settings models.AlertSettings
	require.NoError(t, json.Unmarshal(env.Data, &settings))
	assert.Equal(t, "California", settings.Jurisdiction)
}

func TestLogoutClearsSession(t *testing.T) {
	s := newTestServer(t, false)
	token := s.guestToken(t)

	s.do(t, http.MethodPost, "/api/v1/outcome/predict", token, fiber.Map{
		"case_type": "tort", "jurisdiction": "NY", "key_facts": []string{"slip"},
	})
	require.Equal(t, 2, s.sessions.Len())

	resp, _ := s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, s.sessions.Len())
}

func TestGuestSessionsAreIsolated(t *testing.T) {
	s := newTestServer(t, false)
	first := s.guestToken(t)
	second := s.guestToken(t)
	require.NotEqual(t, first, second)

	resp, env := s.do(t, http.MethodPost, "/api/v1/arbitrage/alerts", first, models.AlertSettings{
		UserRole:       "business",
		Jurisdiction:   "California",
		LegalInterests: []string{"tax"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, env.Persisted)

	_, env = s.do(t, http.MethodGet, "/api/v1/arbitrage/alerts", second, nil)
	assert.Equal(t, 0, env.Count)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/auth/logout", second, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, env = s.do(t, http.MethodGet, "/api/v1/arbitrage/alerts", first, nil)
	assert.NotZero(t, env.Count)
}

func TestCaselawEndpoints(t *testing.T) {
	s := newTestServer(t, true)

	resp, env := s.do(t, http.MethodGet, "/api/v1/caselaw/search?query=miranda", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, env.Count)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/caselaw/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/caselaw/search?query=miranda&limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/caselaw/similar", "", fiber.Map{"text": "miranda rights"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/caselaw/similar", "", fiber.Map{"text": "miranda rights", "limit": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, env = s.do(t, http.MethodGet, "/api/v1/caselaw/autocomplete?query=mir", "", nil)
	var suggestions []string
	require.NoError(t, json.Unmarshal(env.Data, &suggestions))
	assert.Equal(t, []string{"Miranda v. Arizona"}, suggestions)
}

func TestUpstreamEndpointsDegrade(t *testing.T) {
	s := newTestServer(t, true)

	resp, env := s.do(t, http.MethodGet, "/api/v1/courtlistener/opinions?query=contract", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, env.Error, "CourtListener error")

	resp, env = s.do(t, http.MethodGet, "/api/v1/dataset/search/court_cases?keyword=contract", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"results": []}`, string(env.Data))

	resp, _ = s.do(t, http.MethodGet, "/api/v1/dataset/search/nope?keyword=contract", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/dataset/search/court_cases?keyword=contract&limit=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, env = s.do(t, http.MethodGet, "/api/v1/dataset/pile_of_law/subsets", "", nil)
	assert.JSONEq(t, `[]`, string(env.Data))

	_, env = s.do(t, http.MethodGet, "/api/v1/dataset/list", "", nil)
	var names []string
	require.NoError(t, json.Unmarshal(env.Data, &names))
	assert.Len(t, names, 6)
}

func TestFeedbackEndpoints(t *testing.T) {
	s := newTestServer(t, true)

	resp, _ := s.do(t, http.MethodPost, "/api/v1/feedback", "", fiber.Map{
		"dataset_name": "court_cases", "item_id": "7", "feedback_type": "helpful", "user_rating": 4,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/feedback", "", fiber.Map{
		"dataset_name": "court_cases", "item_id": "7", "feedback_type": "meh",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, env := s.do(t, http.MethodGet, "/api/v1/feedback/stats?dataset=court_cases", "", nil)
	var stats models.FeedbackStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.TotalFeedback)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.001)

	_, env = s.do(t, http.MethodGet, "/api/v1/feedback/mine", "", nil)
	assert.JSONEq(t, `1`, string(mustField(t, env.Data, "total")))
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t, true)

	resp, env := s.do(t, http.MethodGet, "/api/v1/admin/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, mustField(t, env.Data, "oracle"))

	resp, _ = s.do(t, http.MethodDelete, "/api/v1/admin/cache", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/admin/jobs/cache-cleanup", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func mustField(t *testing.T, data json.RawMessage, name string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	return fields[name]
}

package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUpstreamConfig(baseURL string) shared.UpstreamConfig {
	return shared.UpstreamConfig{
		BaseURL:            baseURL,
		HTTPRequestTimeout: 5 * time.Second,
		RequestRateLimit:   time.Millisecond,
		MaxRetryAttempts:   0,
		UserAgent:          "legal-oracle-test",
	}
}

func TestSearchOpinionsAddsNormalizedCard(t *testing.T) {
	var gotPath, gotAuth, gotSearch, gotCourt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotSearch = r.URL.Query().Get("search")
		gotCourt = r.URL.Query().Get("court")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"count": 2,
			"next": "https://example.com/page2",
			"results": [
				{"id": 1, "cluster": {"case_name": "Roe v. Wade"}, "html": "<p>Opinion <b>text</b></p>", "download_url": "https://example.com/roe.pdf"},
				{"id": 2, "case_name": "Doe v. Bolton", "court": "scotus", "plain_text": "  Short   opinion  "}
			]
		}`))
	}))
	defer server.Close()

	courtListener := NewCourtListenerService(testUpstreamConfig(server.URL), "secret-token", shared.NewHTTPClientFactory(5*time.Second))

	result, err := courtListener.SearchOpinions(context.Background(), models.OpinionSearchParams{Query: "abortion", Court: "scotus"})
	require.NoError(t, err)

	assert.Equal(t, "/opinions/", gotPath)
	assert.Equal(t, "Token secret-token", gotAuth)
	assert.Equal(t, "abortion", gotSearch)
	assert.Equal(t, "scotus", gotCourt)

	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "https://example.com/page2", result.Next)
	require.Len(t, result.Results, 2)

	first := result.Results[0]["normalized"].(models.NormalizedOpinion)
	assert.Equal(t, "Roe v. Wade", first.Title)
	assert.Equal(t, "Opinion text", first.Summary)
	assert.Equal(t, "https://example.com/roe.pdf", first.URL)

	second := result.Results[1]["normalized"].(models.NormalizedOpinion)
	assert.Equal(t, "Doe v. Bolton", second.Title)
	assert.Equal(t, "scotus", second.Court)
	assert.Equal(t, "Short opinion", second.Summary)

	assert.Equal(t, int64(1), courtListener.Stats().TotalRequests)
}

func TestSearchOpinionsWithoutTokenSendsNoAuthorization(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"opinions": [{"title": "Untitled"}]}`))
	}))
	defer server.Close()

	courtListener := NewCourtListenerService(testUpstreamConfig(server.URL+"/"), "", shared.NewHTTPClientFactory(5*time.Second))

	result, err := courtListener.SearchOpinions(context.Background(), models.OpinionSearchParams{Query: "contract"})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, 1, result.Count)
}

func TestSearchOpinionsPassesUpstreamStatusThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "Not found."}`, http.StatusNotFound)
	}))
	defer server.Close()

	courtListener := NewCourtListenerService(testUpstreamConfig(server.URL), "", shared.NewHTTPClientFactory(5*time.Second))

	_, err := courtListener.SearchOpinions(context.Background(), models.OpinionSearchParams{Query: "x"})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, shared.StatusForError(err))
	assert.Contains(t, err.Error(), "CourtListener error")
}

func TestSearchOpinionsUnreachableUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	courtListener := NewCourtListenerService(testUpstreamConfig(url), "", shared.NewHTTPClientFactory(time.Second))

	_, err := courtListener.SearchOpinions(context.Background(), models.OpinionSearchParams{Query: "x"})
	assert.Equal(t, http.StatusBadGateway, shared.StatusForError(err))
}

func TestSearchOpinionsRequiresQuery(t *testing.T) {
	courtListener := NewCourtListenerService(testUpstreamConfig("http://127.0.0.1:1"), "", shared.NewHTTPClientFactory(time.Second))

	_, err := courtListener.SearchOpinions(context.Background(), models.OpinionSearchParams{Query: " "})
	assert.Equal(t, http.StatusBadRequest, shared.StatusForError(err))
}

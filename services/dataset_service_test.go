package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type datasetsServer struct {
	mutex   sync.Mutex
	queries []url.Values
	paths   []string
	status  int
}

func (d *datasetsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.mutex.Lock()
	d.queries = append(d.queries, r.URL.Query())
	d.paths = append(d.paths, r.URL.Path)
	status := d.status
	d.mutex.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/splits":
		_, _ = w.Write([]byte(`{"splits": [
			{"config": "r_legaladvice", "split": "train"},
			{"config": "courtlistener_opinions", "split": "train"},
			{"config": "courtlistener_opinions", "split": "validation"}
		]}`))
	case "/search":
		_, _ = w.Write([]byte(`{"rows": [
			{"row_idx": 0, "row": {"text": "breach of contract", "abstract": "a widget"}},
			{"row_idx": 1, "row": {"text": "contract renewal", "abstract": "contract for widgets"}},
			{"row_idx": 2, "row": {"text": "tort claim", "abstract": "unrelated"}}
		]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (d *datasetsServer) requests() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return len(d.paths)
}

func (d *datasetsServer) lastQuery() url.Values {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.queries[len(d.queries)-1]
}

func limitOf(v int) *int {
	return &v
}

func TestDatasetServiceDefaultCacheKeepsResultsForADay(t *testing.T) {
	datasets := NewDatasetService(shared.UpstreamConfig{HTTPRequestTimeout: time.Second}, nil)
	stats := datasets.Cache().Stats()
	assert.Equal(t, int64(24*60*60), stats.TTLSeconds)
	assert.Equal(t, 256, stats.MaxSize)
}

func newTestDatasetService(t *testing.T, handler *datasetsServer) *DatasetService {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewDatasetService(testUpstreamConfig(server.URL), nil)
}

func TestDatasetSearchForwardsParameters(t *testing.T) {
	handler := &datasetsServer{}
	datasets := newTestDatasetService(t, handler)

	response, err := datasets.Search(context.Background(), "court_cases", models.DatasetSearchParams{Keyword: "contract", Limit: limitOf(2)})
	require.NoError(t, err)
	assert.Len(t, response.Results, 2)

	query := handler.lastQuery()
	assert.Equal(t, "HFforLegal/case-law", query.Get("dataset"))
	assert.Equal(t, "default", query.Get("config"))
	assert.Equal(t, "us", query.Get("split"))
	assert.Equal(t, "contract", query.Get("query"))
	assert.Equal(t, "2", query.Get("length"))

	_, err = datasets.Search(context.Background(), "court_cases", models.DatasetSearchParams{Keyword: "contract", Limit: limitOf(2)})
	require.NoError(t, err)
	assert.Equal(t, 1, handler.requests())
}

func TestDatasetSearchFiltersByField(t *testing.T) {
	handler := &datasetsServer{}
	datasets := newTestDatasetService(t, handler)

	response, err := datasets.Search(context.Background(), "patent_data", models.DatasetSearchParams{
		Keyword: "Contract",
		Field:   "abstract",
	})
	require.NoError(t, err)
	require.Len(t, response.Results, 1)
	assert.Equal(t, "contract for widgets", response.Results[0]["abstract"])
	assert.Equal(t, "100", handler.lastQuery().Get("length"))
	assert.Equal(t, "sample", handler.lastQuery().Get("config"))
}

func TestDatasetSearchValidation(t *testing.T) {
	datasets := newTestDatasetService(t, &datasetsServer{})
	ctx := context.Background()

	_, err := datasets.Search(ctx, "unknown", models.DatasetSearchParams{Keyword: "x"})
	assert.Equal(t, http.StatusNotFound, shared.StatusForError(err))

	_, err = datasets.Search(ctx, "court_cases", models.DatasetSearchParams{})
	assert.Equal(t, http.StatusBadRequest, shared.StatusForError(err))

	_, err = datasets.Search(ctx, "court_cases", models.DatasetSearchParams{Keyword: "x", Limit: limitOf(51)})
	assert.Equal(t, http.StatusBadRequest, shared.StatusForError(err))

	_, err = datasets.Search(ctx, "court_cases", models.DatasetSearchParams{Keyword: "x", Limit: limitOf(0)})
	assert.Equal(t, http.StatusBadRequest, shared.StatusForError(err))

	_, err = datasets.Search(ctx, "pile_of_law", models.DatasetSearchParams{Keyword: "x"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, shared.StatusForError(err))
	assert.Contains(t, err.Error(), "courtlistener_opinions")
}

func TestDatasetSearchUpstreamFailureReturnsEmptyResults(t *testing.T) {
	datasets := newTestDatasetService(t, &datasetsServer{status: http.StatusInternalServerError})

	response, err := datasets.Search(context.Background(), "pile_of_law", models.DatasetSearchParams{
		Keyword: "contract",
		Subset:  "courtlistener_opinions",
	})
	require.NoError(t, err)
	assert.Empty(t, response.Results)
	assert.NotNil(t, response.Results)
}

func TestDatasetSubsets(t *testing.T) {
	handler := &datasetsServer{}
	datasets := newTestDatasetService(t, handler)

	subsets, err := datasets.Subsets(context.Background(), "pile_of_law")
	require.NoError(t, err)
	assert.Equal(t, []string{"courtlistener_opinions", "r_legaladvice"}, subsets)
	assert.Equal(t, "pile-of-law/pile-of-law", handler.lastQuery().Get("dataset"))
}

func TestDatasetSubsetsUpstreamFailureReturnsEmptyList(t *testing.T) {
	datasets := newTestDatasetService(t, &datasetsServer{status: http.StatusBadGateway})

	subsets, err := datasets.Subsets(context.Background(), "pile_of_law")
	require.NoError(t, err)
	assert.Equal(t, []string{}, subsets)
}

func TestListDatasets(t *testing.T) {
	datasets := NewDatasetService(testUpstreamConfig("http://127.0.0.1:1"), nil)

	names := datasets.ListDatasets()
	assert.Len(t, names, 6)
	assert.Contains(t, names, "indian_legal_dataset")

	info, err := datasets.GetDataset("legal_contracts")
	require.NoError(t, err)
	assert.True(t, info.AcceptsField)
}

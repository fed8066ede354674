package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

const (
	defaultDatasetLimit = 10
	maxDatasetLimit     = 50
	// datasets-server caps a search page at 100 rows
	maxSearchPage = 100
)

// datasetRegistry lists the legal datasets exposed by the dataset endpoints
var datasetRegistry = []models.DatasetInfo{
	{
		Name:           "pile_of_law",
		HFDataset:      "pile-of-law/pile-of-law",
		DefaultSplit:   "train",
		DefaultField:   "text",
		RequiresSubset: true,
		Description:    "Legal and administrative text across court opinions, contracts and statutes",
	},
	{
		Name:          "court_cases",
		HFDataset:     "HFforLegal/case-law",
		DefaultConfig: "default",
		DefaultSplit:  "us",
		DefaultField:  "text",
		Description:   "Court decisions from US jurisdictions",
	},
	{
		Name:          "legal_contracts",
		HFDataset:     "albertvillanova/legal_contracts",
		DefaultConfig: "default",
		DefaultSplit:  "train",
		DefaultField:  "text",
		AcceptsField:  true,
		Description:   "Commercial contracts",
	},
	{
		Name:          "patent_data",
		HFDataset:     "HUPD/hupd",
		DefaultConfig: "sample",
		DefaultSplit:  "train",
		DefaultField:  "abstract",
		AcceptsField:  true,
		Description:   "Harvard USPTO patent applications",
	},
	{
		Name:          "legal_summarization",
		HFDataset:     "lighteval/legal_summarization",
		DefaultConfig: "default",
		DefaultSplit:  "train",
		DefaultField:  "article",
		Description:   "Legal articles paired with summaries",
	},
	{
		Name:          "indian_legal_dataset",
		HFDataset:     "viber1/indian-law-dataset",
		DefaultConfig: "default",
		DefaultSplit:  "train",
		DefaultField:  "Response",
		Description:   "Indian law questions and answers",
	},
}

type datasetSearchWire struct {
	Rows []struct {
		RowIdx int                    `json:"row_idx"`
		Row    map[string]interface{} `json:"row"`
	} `json:"rows"`
}

type datasetSplitsWire struct {
	Splits []struct {
		Config string `json:"config"`
		Split  string `json:"split"`
	} `json:"splits"`
}

// DatasetService searches legal datasets through the Hugging Face datasets-server API
type DatasetService struct {
	baseURL   string
	collector *colly.Collector
	cache     *CacheService
	registry  map[string]models.DatasetInfo
	metrics   *shared.ServiceMetrics
}

// NewDatasetService creates the service. Requests to the API are spaced by cfg.RequestRateLimit.
func NewDatasetService(cfg shared.UpstreamConfig, cache *CacheService) *DatasetService {
	if cache == nil {
		cache = NewCacheService("datasets", 24*time.Hour, 256)
	}

	collector := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.UserAgent(cfg.UserAgent),
	)
	collector.SetRequestTimeout(cfg.HTTPRequestTimeout)
	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 2,
		Delay:       cfg.RequestRateLimit,
	}); err != nil {
		logrus.WithError(err).Warn("Failed to apply datasets-server limit rule")
	}

	registry := make(map[string]models.DatasetInfo, len(datasetRegistry))
	for _, info := range datasetRegistry {
		registry[info.Name] = info
	}

	return &DatasetService{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		collector: collector,
		cache:     cache,
		registry:  registry,
		metrics:   shared.NewServiceMetrics("DatasetService"),
	}
}

// ListDatasets returns the registered dataset names
func (s *DatasetService) ListDatasets() []string {
	names := make([]string, 0, len(datasetRegistry))
	for _, info := range datasetRegistry {
		names = append(names, info.Name)
	}
	return names
}

// GetDataset looks up a registered dataset
func (s *DatasetService) GetDataset(name string) (models.DatasetInfo, error) {
	info, ok := s.registry[name]
	if !ok {
		return models.DatasetInfo{}, shared.NewServiceError(shared.ErrorCategoryNotFound, "DATASET_NOT_FOUND",
			fmt.Sprintf("Dataset '%s' not found", name), "DatasetService", "GetDataset", false, nil)
	}
	return info, nil
}

// Cache exposes the result cache to the cleanup job and admin handler
func (s *DatasetService) Cache() *CacheService {
	return s.cache
}

// fetchJSON performs one GET through a clone of the shared collector and decodes the body into v
func (s *DatasetService) fetchJSON(ctx context.Context, target string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c := s.collector.Clone()
	var decodeErr error
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/json")
	})
	c.OnResponse(func(r *colly.Response) {
		decodeErr = json.Unmarshal(r.Body, v)
	})

	start := time.Now()
	err := c.Visit(target)
	c.Wait()
	if err == nil {
		err = decodeErr
	}
	s.metrics.RecordRequest(err == nil, time.Since(start))
	return err
}

// Subsets lists the configurations of a dataset. Upstream failures yield an empty list.
func (s *DatasetService) Subsets(ctx context.Context, name string) ([]string, error) {
	info, err := s.GetDataset(name)
	if err != nil {
		return nil, err
	}

	key := "subsets|" + name
	if cached, ok := s.cache.Get(key); ok {
		if subsets, ok := cached.([]string); ok {
			return subsets, nil
		}
	}

	values := url.Values{}
	values.Set("dataset", info.HFDataset)

	var wire datasetSplitsWire
	if err := s.fetchJSON(ctx, s.baseURL+"/splits?"+values.Encode(), &wire); err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "DatasetService",
			"dataset":   name,
			"error":     err.Error(),
		}).Warn("Failed to list dataset subsets")
		return []string{}, nil
	}

	seen := make(map[string]bool)
	subsets := []string{}
	for _, split := range wire.Splits {
		if split.Config != "" && !seen[split.Config] {
			seen[split.Config] = true
			subsets = append(subsets, split.Config)
		}
	}
	sort.Strings(subsets)

	s.cache.Set(key, subsets)
	return subsets, nil
}

// Search finds rows of a dataset containing keyword. Upstream failures yield empty results.
func (s *DatasetService) Search(ctx context.Context, name string, params models.DatasetSearchParams) (*models.DatasetSearchResponse, error) {
	info, err := s.GetDataset(name)
	if err != nil {
		return nil, err
	}

	keyword := strings.TrimSpace(params.Keyword)
	if keyword == "" {
		return nil, shared.NewValidationError("MISSING_KEYWORD", "keyword parameter is required", "DatasetService", "Search")
	}
	limit := defaultDatasetLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	if limit < 1 || limit > maxDatasetLimit {
		return nil, shared.NewValidationError("INVALID_LIMIT",
			fmt.Sprintf("limit must be 1-%d", maxDatasetLimit), "DatasetService", "Search")
	}

	config := info.DefaultConfig
	if params.Subset != "" {
		config = params.Subset
	}
	if info.RequiresSubset && config == "" {
		return nil, shared.NewValidationError("MISSING_SUBSET",
			fmt.Sprintf("You must specify a valid subset for %s, e.g. 'courtlistener_opinions'", info.Name),
			"DatasetService", "Search")
	}

	field := info.DefaultField
	filterByField := false
	if info.AcceptsField && params.Field != "" {
		field = params.Field
		filterByField = true
	}

	key := strings.Join([]string{"search", name, config, field, strings.ToLower(keyword), strconv.Itoa(limit)}, "|")
	if cached, ok := s.cache.Get(key); ok {
		if response, ok := cached.(*models.DatasetSearchResponse); ok {
			return response, nil
		}
	}

	length := limit
	if filterByField {
		length = maxSearchPage
	}

	values := url.Values{}
	values.Set("dataset", info.HFDataset)
	values.Set("config", config)
	values.Set("split", info.DefaultSplit)
	values.Set("query", keyword)
	values.Set("offset", "0")
	values.Set("length", strconv.Itoa(length))

	logger := logrus.WithFields(logrus.Fields{
		"component": "DatasetService",
		"dataset":   name,
		"config":    config,
		"keyword":   keyword,
	})

	var wire datasetSearchWire
	if err := s.fetchJSON(ctx, s.baseURL+"/search?"+values.Encode(), &wire); err != nil {
		logger.WithError(err).Warn("Dataset search failed, returning empty results")
		return &models.DatasetSearchResponse{Results: []map[string]interface{}{}}, nil
	}

	needle := strings.ToLower(keyword)
	results := make([]map[string]interface{}, 0, limit)
	for _, row := range wire.Rows {
		if row.Row == nil {
			continue
		}
		if filterByField && !rowFieldContains(row.Row, field, needle) {
			continue
		}
		results = append(results, row.Row)
		if len(results) >= limit {
			break
		}
	}

	response := &models.DatasetSearchResponse{Results: results}
	s.cache.Set(key, response)

	logger.WithField("results", len(results)).Debug("Dataset search completed")
	return response, nil
}

// rowFieldContains reports whether row[field] mentions needle. Rows without the field are kept.
func rowFieldContains(row map[string]interface{}, field, needle string) bool {
	value, ok := row[field]
	if !ok || value == nil {
		return true
	}
	return strings.Contains(strings.ToLower(fmt.Sprint(value)), needle)
}

// Stats returns request counters
func (s *DatasetService) Stats() shared.MetricsSnapshot {
	return s.metrics.GetSnapshot()
}

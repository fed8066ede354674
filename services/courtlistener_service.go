package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/sirupsen/logrus"
)

// CourtListenerService proxies opinion searches to the CourtListener REST API
type CourtListenerService struct {
	client  *http.Client
	config  shared.UpstreamConfig
	token   string
	limiter *shared.HTTPRequestRateLimiter
	metrics *shared.ServiceMetrics
}

// NewCourtListenerService creates the proxy. token is optional; anonymous requests are rate limited upstream.
func NewCourtListenerService(cfg shared.UpstreamConfig, token string, factory *shared.HTTPClientFactory) *CourtListenerService {
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	return &CourtListenerService{
		client:  factory.CreateOptimizedHTTPClient(cfg.HTTPRequestTimeout),
		config:  cfg,
		token:   token,
		limiter: shared.NewHTTPRequestRateLimiter(cfg.RequestRateLimit),
		metrics: shared.NewServiceMetrics("CourtListenerService"),
	}
}

func (s *CourtListenerService) opinionsURL(params models.OpinionSearchParams) string {
	values := url.Values{}
	values.Set("search", params.Query)
	if params.Court != "" {
		values.Set("court", params.Court)
	}
	if params.DateFiled != "" {
		values.Set("date_filed", params.DateFiled)
	}
	values.Set("format", "json")
	return s.config.BaseURL + "opinions/?" + values.Encode()
}

// SearchOpinions forwards the search and attaches a normalized card to every opinion
func (s *CourtListenerService) SearchOpinions(ctx context.Context, params models.OpinionSearchParams) (*models.OpinionSearchResult, error) {
	if strings.TrimSpace(params.Query) == "" {
		return nil, shared.NewValidationError("MISSING_QUERY", "query parameter is required", "CourtListenerService", "SearchOpinions")
	}

	logger := logrus.WithFields(logrus.Fields{
		"component": "CourtListenerService",
		"query":     params.Query,
		"court":     params.Court,
	})

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryTimeout, "REQUEST_CANCELLED", err.Error(),
			"CourtListenerService", "SearchOpinions", false, err)
	}

	target := s.opinionsURL(params)
	start := time.Now()

	resp, err := shared.ExecuteHTTPRequestWithRetry(ctx, s.client, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		shared.SetJSONHeaders(req, s.config.UserAgent)
		if s.token != "" {
			req.Header.Set("Authorization", "Token "+s.token)
		}
		return req, nil
	}, s.config.MaxRetryAttempts)
	if err != nil {
		s.metrics.RecordRequest(false, time.Since(start))
		logger.WithError(err).Warn("CourtListener request failed")
		return nil, courtListenerError(err)
	}
	defer resp.Body.Close()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		s.metrics.RecordRequest(false, time.Since(start))
		return nil, shared.NewServiceError(shared.ErrorCategoryUpstream, "COURTLISTENER_DECODE_FAILED",
			"CourtListener returned an unreadable body", "CourtListenerService", "SearchOpinions", false, err)
	}
	s.metrics.RecordRequest(true, time.Since(start))

	result := &models.OpinionSearchResult{Results: []map[string]interface{}{}}
	if count, ok := body["count"].(float64); ok {
		result.Count = int(count)
	}
	result.Next, _ = body["next"].(string)
	result.Previous, _ = body["previous"].(string)

	raw, ok := body["results"].([]interface{})
	if !ok {
		raw, _ = body["opinions"].([]interface{})
	}
	for _, item := range raw {
		opinion, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		opinion["normalized"] = models.NormalizeOpinion(opinion)
		result.Results = append(result.Results, opinion)
	}
	if result.Count == 0 {
		result.Count = len(result.Results)
	}

	logger.WithFields(logrus.Fields{
		"results":  len(result.Results),
		"duration": time.Since(start),
	}).Debug("CourtListener search completed")

	return result, nil
}

// courtListenerError keeps the upstream status and prefixes the message for clients
func courtListenerError(err error) error {
	var serviceErr *shared.ServiceError
	if errors.As(err, &serviceErr) && serviceErr.Category == shared.ErrorCategoryUpstream {
		return shared.NewServiceError(shared.ErrorCategoryUpstream, "COURTLISTENER_ERROR",
			fmt.Sprintf("CourtListener error: %s", serviceErr.Message), "CourtListenerService", "SearchOpinions", false, err).
			WithStatusCode(serviceErr.StatusCode)
	}
	return shared.NewServiceError(shared.ErrorCategoryNetwork, "COURTLISTENER_UNREACHABLE",
		fmt.Sprintf("CourtListener proxy error: %v", err), "CourtListenerService", "SearchOpinions", true, err)
}

// Stats returns request counters
func (s *CourtListenerService) Stats() shared.MetricsSnapshot {
	return s.metrics.GetSnapshot()
}

package shared

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// HTTPClientFactory creates optimized HTTP clients with standardized configuration
type HTTPClientFactory struct {
	defaultTimeout time.Duration
	mutex          sync.RWMutex
	clients        map[string]*http.Client
}

// NewHTTPClientFactory creates a new HTTP client factory
func NewHTTPClientFactory(defaultTimeout time.Duration) *HTTPClientFactory {
	return &HTTPClientFactory{
		defaultTimeout: defaultTimeout,
		clients:        make(map[string]*http.Client),
	}
}

// CreateOptimizedHTTPClient creates an HTTP client with connection pooling and optimized settings
func (f *HTTPClientFactory) CreateOptimizedHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = f.defaultTimeout
	}

	clientKey := fmt.Sprintf("timeout_%d", timeout.Milliseconds())

	f.mutex.RLock()
	if client, exists := f.clients[clientKey]; exists {
		f.mutex.RUnlock()
		return client
	}
	f.mutex.RUnlock()

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	f.mutex.Lock()
	if existing, exists := f.clients[clientKey]; exists {
		f.mutex.Unlock()
		return existing
	}
	f.clients[clientKey] = client
	f.mutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"component":  "HTTPClientFactory",
		"timeout":    timeout,
		"client_key": clientKey,
	}).Debug("Created new optimized HTTP client")

	return client
}

// SetJSONHeaders configures request headers for a JSON API call
func SetJSONHeaders(request *http.Request, userAgent string) {
	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Accept-Language", "en-US,en;q=0.9")
}

// ExecuteHTTPRequestWithRetry sends the request built by newRequest, retrying transport failures and
// 5xx answers with exponential backoff. 4xx answers are returned immediately as upstream errors.
// The caller owns the returned response body.
func ExecuteHTTPRequestWithRetry(ctx context.Context, client *http.Client, newRequest func(ctx context.Context) (*http.Request, error), maxRetryAttempts int) (*http.Response, error) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "HTTPClientFactory",
		"method":    "ExecuteHTTPRequestWithRetry",
	})

	var lastExecutionError error

	for attemptNumber := 0; attemptNumber <= maxRetryAttempts; attemptNumber++ {
		if attemptNumber > 0 {
			backoff := time.Duration(1<<uint(attemptNumber-1)) * time.Second

			logger.WithFields(logrus.Fields{
				"attempt":          attemptNumber + 1,
				"backoff_duration": backoff,
			}).Debug("Retrying HTTP request after backoff")

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, NewServiceError(ErrorCategoryTimeout, "REQUEST_CANCELLED", ctx.Err().Error(), "HTTPClientFactory", "ExecuteHTTPRequestWithRetry", false, ctx.Err())
			}
		}

		request, err := newRequest(ctx)
		if err != nil {
			return nil, NewServiceError(ErrorCategoryProcessing, "REQUEST_BUILD_FAILED", err.Error(), "HTTPClientFactory", "ExecuteHTTPRequestWithRetry", false, err)
		}

		httpResponse, err := client.Do(request)
		if err != nil {
			lastExecutionError = NewServiceError(ErrorCategoryNetwork, "HTTP_TRANSPORT_ERROR",
				fmt.Sprintf("attempt %d failed with network error: %v", attemptNumber+1, err),
				"HTTPClientFactory", "ExecuteHTTPRequestWithRetry", true, err)
			logger.WithError(err).WithField("url", request.URL.String()).Debug("HTTP request failed with network error")
			continue
		}

		if httpResponse.StatusCode >= 200 && httpResponse.StatusCode < 300 {
			logger.WithFields(logrus.Fields{
				"attempt":     attemptNumber + 1,
				"status_code": httpResponse.StatusCode,
				"url":         request.URL.String(),
			}).Debug("HTTP request successful")
			return httpResponse, nil
		}

		body, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 2048))
		httpResponse.Body.Close()

		upstreamErr := NewServiceError(ErrorCategoryUpstream, "HTTP_STATUS_ERROR",
			fmt.Sprintf("%s: %s", http.StatusText(httpResponse.StatusCode), string(body)),
			"HTTPClientFactory", "ExecuteHTTPRequestWithRetry", httpResponse.StatusCode >= 500, nil).
			WithStatusCode(httpResponse.StatusCode)

		if httpResponse.StatusCode < 500 {
			return nil, upstreamErr
		}
		lastExecutionError = upstreamErr
		logger.WithFields(logrus.Fields{
			"attempt":     attemptNumber + 1,
			"status_code": httpResponse.StatusCode,
		}).Debug("HTTP request failed with server error")
	}

	logger.WithFields(logrus.Fields{
		"total_attempts": maxRetryAttempts + 1,
		"final_error":    lastExecutionError,
	}).Warn("HTTP request failed after all retry attempts")

	return nil, lastExecutionError
}

// CleanupAllClients closes idle connections of every cached client
func (f *HTTPClientFactory) CleanupAllClients() {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	for key, client := range f.clients {
		if transport, ok := client.Transport.(*http.Transport); ok {
			transport.CloseIdleConnections()
		}
		delete(f.clients, key)
	}

	logrus.WithField("component", "HTTPClientFactory").Debug("Cleaned up all cached HTTP clients")
}

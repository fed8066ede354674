package shared

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	ErrorCategoryConfiguration  ErrorCategory = "configuration"
	ErrorCategoryNetwork        ErrorCategory = "network"
	ErrorCategoryDatabase       ErrorCategory = "database"
	ErrorCategoryValidation     ErrorCategory = "validation"
	ErrorCategoryProcessing     ErrorCategory = "processing"
	ErrorCategoryResource       ErrorCategory = "resource"
	ErrorCategoryTimeout        ErrorCategory = "timeout"
	ErrorCategoryAuthentication ErrorCategory = "authentication"
	ErrorCategoryAuthorization  ErrorCategory = "authorization"
	ErrorCategoryNotFound       ErrorCategory = "not_found"
	ErrorCategoryUpstream       ErrorCategory = "upstream"
)

// ServiceError represents a standardized error with additional context
type ServiceError struct {
	Category    ErrorCategory `json:"category"`
	Code        string        `json:"code"`
	Message     string        `json:"message"`
	Timestamp   time.Time     `json:"timestamp"`
	ServiceName string        `json:"service_name"`
	Operation   string        `json:"operation"`
	Retryable   bool          `json:"retryable"`
	StatusCode  int           `json:"status_code,omitempty"` // overrides the category status when set
	Cause       error         `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError creates a new service error
func NewServiceError(category ErrorCategory, code, message, serviceName, operation string, retryable bool, cause error) *ServiceError {
	return &ServiceError{
		Category:    category,
		Code:        code,
		Message:     message,
		Timestamp:   time.Now(),
		ServiceName: serviceName,
		Operation:   operation,
		Retryable:   retryable,
		Cause:       cause,
	}
}

// NewValidationError is shorthand for a non-retryable validation failure
func NewValidationError(code, message, serviceName, operation string) *ServiceError {
	return NewServiceError(ErrorCategoryValidation, code, message, serviceName, operation, false, nil)
}

// WithStatusCode records the upstream HTTP status carried by the error
func (e *ServiceError) WithStatusCode(status int) *ServiceError {
	e.StatusCode = status
	return e
}

// IsRetryable returns whether the error is retryable
func (e *ServiceError) IsRetryable() bool {
	return e.Retryable
}

// HTTPStatus maps the error onto the status code a handler should answer with
func (e *ServiceError) HTTPStatus() int {
	if e.StatusCode >= 400 {
		return e.StatusCode
	}

	switch e.Category {
	case ErrorCategoryValidation:
		return http.StatusBadRequest
	case ErrorCategoryAuthentication:
		return http.StatusUnauthorized
	case ErrorCategoryAuthorization:
		return http.StatusForbidden
	case ErrorCategoryNotFound:
		return http.StatusNotFound
	case ErrorCategoryUpstream, ErrorCategoryNetwork, ErrorCategoryTimeout:
		return http.StatusBadGateway
	case ErrorCategoryResource:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// LogError logs the error with structured fields
func (e *ServiceError) LogError() {
	logrus.WithFields(logrus.Fields{
		"error_category":   e.Category,
		"error_code":       e.Code,
		"error_message":    e.Message,
		"service_name":     e.ServiceName,
		"operation":        e.Operation,
		"retryable":        e.Retryable,
		"timestamp":        e.Timestamp,
		"underlying_error": e.Cause,
	}).Error("Service error occurred")
}

// StatusForError returns the HTTP status for any error, defaulting to 500
func StatusForError(err error) int {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// ErrCircuitOpen is returned by CircuitBreaker.Execute while calls are being short-circuited
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker stops calling a failing dependency for a cool-down period.
// It never retries; callers decide what to do with ErrCircuitOpen.
type CircuitBreaker struct {
	mutex          sync.Mutex
	serviceName    string
	maxFailureRate float64
	minSamples     int64
	coolDown       time.Duration
	failureCount   int64
	successCount   int64
	open           bool
	openedAt       time.Time
}

// NewCircuitBreaker creates a breaker that opens once the failure rate exceeds maxFailureRate
// over at least minSamples calls. A negative maxFailureRate disables it.
func NewCircuitBreaker(serviceName string, maxFailureRate float64, minSamples int64, coolDown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		serviceName:    serviceName,
		maxFailureRate: maxFailureRate,
		minSamples:     minSamples,
		coolDown:       coolDown,
	}
}

// Allow reports whether a call may proceed. After the cool-down one trial call is let through.
func (cb *CircuitBreaker) Allow() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if cb.maxFailureRate < 0 || !cb.open {
		return true
	}

	if time.Since(cb.openedAt) >= cb.coolDown {
		logrus.WithFields(logrus.Fields{
			"service_name": cb.serviceName,
			"component":    "CircuitBreaker",
		}).Info("Circuit breaker entering half-open state")
		cb.openedAt = time.Now()
		return true
	}
	return false
}

// RecordSuccess records a successful call and closes an open breaker
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.successCount++
	if cb.open {
		cb.open = false
		cb.failureCount = 0
		cb.successCount = 0

		logrus.WithFields(logrus.Fields{
			"service_name": cb.serviceName,
			"component":    "CircuitBreaker",
		}).Info("Circuit breaker closed after successful trial call")
	}
}

// RecordFailure records a failed call and opens the breaker when the failure rate is too high
func (cb *CircuitBreaker) RecordFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failureCount++
	if cb.maxFailureRate < 0 || cb.open {
		return
	}

	total := cb.failureCount + cb.successCount
	if total < cb.minSamples {
		return
	}

	rate := float64(cb.failureCount) / float64(total)
	if rate > cb.maxFailureRate {
		cb.open = true
		cb.openedAt = time.Now()

		logrus.WithFields(logrus.Fields{
			"service_name":     cb.serviceName,
			"component":        "CircuitBreaker",
			"failure_rate":     rate,
			"max_failure_rate": cb.maxFailureRate,
			"failure_count":    cb.failureCount,
			"success_count":    cb.successCount,
		}).Warn("Circuit breaker opened due to high failure rate")
	}
}

// Execute runs fn when the breaker allows it and records the outcome
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.Allow() {
		return ErrCircuitOpen
	}
	if err := fn(); err != nil {
		cb.RecordFailure()
		return err
	}
	cb.RecordSuccess()
	return nil
}

// IsOpen reports the breaker state without consuming a trial call
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.open
}

// GetFailureRate returns the current failure rate
func (cb *CircuitBreaker) GetFailureRate() float64 {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	total := cb.failureCount + cb.successCount
	if total == 0 {
		return 0.0
	}
	return float64(cb.failureCount) / float64(total)
}

// WrapError wraps an existing error with service error context
func WrapError(err error, category ErrorCategory, code, serviceName, operation string, retryable bool) *ServiceError {
	if err == nil {
		return nil
	}

	// If it's already a ServiceError, just update the context
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		serviceErr.ServiceName = serviceName
		serviceErr.Operation = operation
		return serviceErr
	}

	return NewServiceError(category, code, err.Error(), serviceName, operation, retryable, err)
}

// IsRetryableError checks if an error is retryable
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.IsRetryable()
	}

	// Default heuristics for standard errors
	errorMsg := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"timeout", "connection refused", "connection reset",
		"temporary failure", "service unavailable", "too many requests",
		"network", "dns", "socket",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errorMsg, pattern) {
			return true
		}
	}

	return false
}

package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/sirupsen/logrus"
)

const (
	// maxSimilarityCases bounds how much of the corpus similarity search scans
	maxSimilarityCases = 500
	searchLogTimeout   = 5 * time.Second
)

// fallbackCorpus is served when no corpus file is configured or it cannot be read
var fallbackCorpus = []models.CaseLawRecord{
	{
		ID:           "1",
		CaseName:     "Miranda v. Arizona",
		Court:        "US Supreme Court",
		Jurisdiction: "federal",
		Date:         "1966-06-13",
		Citation:     "384 U.S. 436",
		Summary:      "Landmark decision on police interrogations",
		Text:         "Miranda rights...",
		URL:          "https://example.com/miranda",
	},
}

// LoadCorpus reads a JSON array of case-law records. An empty path or unreadable file yields the built-in corpus.
func LoadCorpus(path string) []models.CaseLawRecord {
	logger := logrus.WithFields(logrus.Fields{
		"component": "CaselawService",
		"path":      path,
	})

	if path == "" {
		logger.Info("No case-law corpus configured, using built-in corpus")
		return fallbackCorpus
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.WithError(err).Warn("Failed to read case-law corpus, using built-in corpus")
		return fallbackCorpus
	}

	var records []models.CaseLawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logger.WithError(err).Warn("Failed to parse case-law corpus, using built-in corpus")
		return fallbackCorpus
	}
	if len(records) == 0 {
		logger.Warn("Case-law corpus is empty, using built-in corpus")
		return fallbackCorpus
	}

	logger.WithField("records", len(records)).Info("Case-law corpus loaded")
	return records
}

// SearchLogRepository records case-law searches
type SearchLogRepository interface {
	InsertSearchLog(ctx context.Context, entry *models.SearchLog) error
}

// PostgresSearchLogRepository writes into the caselaw_searches table
type PostgresSearchLogRepository struct {
	db *sql.DB
}

func NewPostgresSearchLogRepository(db *sql.DB) *PostgresSearchLogRepository {
	return &PostgresSearchLogRepository{db: db}
}

func (r *PostgresSearchLogRepository) InsertSearchLog(ctx context.Context, entry *models.SearchLog) error {
	query := `
		INSERT INTO caselaw_searches (user_id, query, search_type, results_count, execution_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.UserID, entry.Query, entry.SearchType, entry.ResultsCount, entry.ExecutionTimeMS, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert search log: %w", err)
	}
	return nil
}

// CaselawService searches the local case-law corpus
type CaselawService struct {
	corpus  []models.CaseLawRecord
	cache   *CacheService
	logs    SearchLogRepository
	metrics *shared.ServiceMetrics
	pending sync.WaitGroup
}

// NewCaselawService creates the service. A nil logs repository disables search logging.
func NewCaselawService(corpus []models.CaseLawRecord, cache *CacheService, logs SearchLogRepository) *CaselawService {
	if len(corpus) == 0 {
		corpus = fallbackCorpus
	}
	if cache == nil {
		cache = NewCacheService("caselaw_search", 10*time.Minute, 128)
	}
	return &CaselawService{
		corpus:  corpus,
		cache:   cache,
		logs:    logs,
		metrics: shared.NewServiceMetrics("CaselawService"),
	}
}

// Cache exposes the search cache to the cleanup job and admin handler
func (s *CaselawService) Cache() *CacheService {
	return s.cache
}

// CorpusSize returns the number of searchable records
func (s *CaselawService) CorpusSize() int {
	return len(s.corpus)
}

func searchCacheKey(query string, limit int) string {
	sum := sha256.Sum256([]byte(query + "|" + strconv.Itoa(limit)))
	return hex.EncodeToString(sum[:])
}

func validateLimit(limit, max int, operation string) error {
	if limit < 1 || limit > max {
		return shared.NewValidationError("INVALID_LIMIT",
			fmt.Sprintf("limit must be 1-%d", max), "CaselawService", operation)
	}
	return nil
}

// Search returns records whose name or text contains query, case-insensitively
func (s *CaselawService) Search(ctx context.Context, userID, query string, limit int) ([]models.CaseResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, shared.NewValidationError("MISSING_QUERY", "query parameter is required", "CaselawService", "Search")
	}
	if err := validateLimit(limit, 50, "Search"); err != nil {
		return nil, err
	}

	key := searchCacheKey(query, limit)
	if cached, ok := s.cache.Get(key); ok {
		if results, ok := cached.([]models.CaseResult); ok {
			s.metrics.IncrementCustomCounter("cache_hits")
			return results, nil
		}
	}

	start := time.Now()
	needle := strings.ToLower(query)
	results := []models.CaseResult{}
	for i := range s.corpus {
		record := &s.corpus[i]
		if strings.Contains(strings.ToLower(record.CaseName+record.Text), needle) {
			results = append(results, record.ToResult())
			if len(results) >= limit {
				break
			}
		}
	}
	elapsed := time.Since(start)
	s.metrics.RecordRequest(true, elapsed)

	s.logSearch(userID, query, models.SearchTypeKeyword, len(results), elapsed)
	s.cache.Set(key, results)
	return results, nil
}

// jaccard compares the word sets of two texts
func jaccard(a map[string]struct{}, text string) float64 {
	b := wordSet(text)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for w := range a {
		if _, ok := b[w]; ok {
			common++
		}
	}
	return float64(common) / float64(len(a)+len(b)-common)
}

func wordSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Similar ranks the first records of the corpus by word overlap with text
func (s *CaselawService) Similar(ctx context.Context, userID, text string, limit int) ([]models.CaseResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, shared.NewValidationError("MISSING_TEXT", "'text' field required", "CaselawService", "Similar")
	}
	if err := validateLimit(limit, 20, "Similar"); err != nil {
		return nil, err
	}

	start := time.Now()
	query := wordSet(text)

	type scored struct {
		score  float64
		record *models.CaseLawRecord
	}
	var matches []scored
	for i := range s.corpus {
		if i >= maxSimilarityCases {
			break
		}
		record := &s.corpus[i]
		if score := jaccard(query, record.CaseName+" "+record.Text); score > 0 {
			matches = append(matches, scored{score: score, record: record})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]models.CaseResult, 0, len(matches))
	for _, m := range matches {
		result := m.record.ToResult()
		score := m.score
		result.Score = &score
		results = append(results, result)
	}

	s.logSearch(userID, text, models.SearchTypeSimilar, len(results), time.Since(start))
	return results, nil
}

// Autocomplete suggests case names containing query, prefix matches first
func (s *CaselawService) Autocomplete(query string, limit int) []string {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []string{}
	}
	if limit < 1 || limit > 20 {
		limit = 5
	}

	seen := make(map[string]bool)
	var prefix, contains []string
	for i := range s.corpus {
		name := s.corpus[i].CaseName
		lower := strings.ToLower(name)
		if name == "" || seen[lower] {
			continue
		}
		switch {
		case strings.HasPrefix(lower, needle):
			prefix = append(prefix, name)
		case strings.Contains(lower, needle):
			contains = append(contains, name)
		default:
			continue
		}
		seen[lower] = true
	}

	suggestions := append(prefix, contains...)
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	return suggestions
}

// logSearch records the search in the background; failures are only logged
func (s *CaselawService) logSearch(userID, query, searchType string, count int, elapsed time.Duration) {
	if s.logs == nil {
		return
	}
	if userID == "" {
		userID = "anon"
	}

	entry := &models.SearchLog{
		UserID:          userID,
		Query:           query,
		SearchType:      searchType,
		Timestamp:       time.Now().UTC(),
		ResultsCount:    count,
		ExecutionTimeMS: float64(elapsed.Microseconds()) / 1000,
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), searchLogTimeout)
		defer cancel()

		if err := s.logs.InsertSearchLog(ctx, entry); err != nil {
			logrus.WithFields(logrus.Fields{
				"component":   "CaselawService",
				"search_type": searchType,
				"error":       err.Error(),
			}).Warn("Search log failed")
		}
	}()
}

// Wait blocks until queued search logs are written
func (s *CaselawService) Wait() {
	s.pending.Wait()
}

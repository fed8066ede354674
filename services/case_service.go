package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/database"
	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	CasesSourceDatabase = "database"
	CasesSourceCache    = "cache"
)

// CaseRepository persists submitted cases
type CaseRepository interface {
	InsertCase(ctx context.Context, userID uuid.UUID, c *models.Case) error
	ListCases(ctx context.Context, userID uuid.UUID, limit int) ([]models.Case, error)
}

// PostgresCaseRepository stores cases in the cases table
type PostgresCaseRepository struct {
	db *sql.DB
}

func NewPostgresCaseRepository(db *sql.DB) *PostgresCaseRepository {
	return &PostgresCaseRepository{db: db}
}

func (r *PostgresCaseRepository) InsertCase(ctx context.Context, userID uuid.UUID, c *models.Case) error {
	keyFacts, err := json.Marshal(c.KeyFacts)
	if err != nil {
		return fmt.Errorf("failed to marshal key facts: %w", err)
	}
	prediction, err := json.Marshal(c.Prediction)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}

	query := `
		INSERT INTO cases (id, user_id, title, case_type, jurisdiction, key_facts, judge_id, prediction, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
	`
	err = database.ExecuteWithRetry(ctx, func() error {
		_, execErr := r.db.ExecContext(ctx, query,
			c.ID, userID, c.Title, c.Type, c.Jurisdiction, keyFacts, c.JudgeID, prediction, c.Date)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert case: %w", err)
	}
	return nil
}

func (r *PostgresCaseRepository) ListCases(ctx context.Context, userID uuid.UUID, limit int) ([]models.Case, error) {
	query := `
		SELECT id, title, case_type, jurisdiction, key_facts, COALESCE(judge_id, ''), prediction, created_at
		FROM cases
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cases: %w", err)
	}
	defer rows.Close()

	cases := []models.Case{}
	for rows.Next() {
		var c models.Case
		var keyFacts, prediction []byte
		if err := rows.Scan(&c.ID, &c.Title, &c.Type, &c.Jurisdiction, &keyFacts, &c.JudgeID, &prediction, &c.Date); err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		if err := json.Unmarshal(keyFacts, &c.KeyFacts); err != nil {
			return nil, fmt.Errorf("failed to decode key facts: %w", err)
		}
		if err := json.Unmarshal(prediction, &c.Prediction); err != nil {
			return nil, fmt.Errorf("failed to decode prediction: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// CaseService runs outcome predictions and keeps the recent case list of each user
type CaseService struct {
	oracle   *OracleService
	repo     CaseRepository
	sessions SessionStore
	now      func() time.Time
}

// NewCaseService creates the service. A nil repository keeps cases in the session store only.
func NewCaseService(oracle *OracleService, repo CaseRepository, sessions SessionStore) *CaseService {
	return &CaseService{
		oracle:   oracle,
		repo:     repo,
		sessions: sessions,
		now:      time.Now,
	}
}

// accountID returns the profile id of an authenticated caller
func accountID(claims *Claims) (uuid.UUID, bool) {
	if claims == nil || claims.IsGuest {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// SubmitPrediction predicts the outcome of a case, persists it for account holders and caches it for everyone
func (s *CaseService) SubmitPrediction(ctx context.Context, claims *Claims, req models.PredictOutcomeRequest) (*models.CaseSubmission, error) {
	req.CaseType = strings.TrimSpace(req.CaseType)
	req.Jurisdiction = strings.TrimSpace(req.Jurisdiction)
	req.KeyFacts = nonEmptyStrings(req.KeyFacts)
	if req.CaseType == "" || req.Jurisdiction == "" {
		return nil, shared.NewValidationError("MISSING_FIELDS", "case_type and jurisdiction are required", "CaseService", "SubmitPrediction")
	}
	if len(req.KeyFacts) == 0 {
		return nil, shared.NewValidationError("MISSING_FACTS", "at least one key fact is required", "CaseService", "SubmitPrediction")
	}

	prediction := s.oracle.PredictOutcome(ctx, req)
	confidence := s.oracle.randBetween(80, 99)

	c := models.Case{
		ID:           uuid.New().String(),
		Title:        models.CaseTitle(req.CaseType, req.Jurisdiction),
		Type:         req.CaseType,
		Jurisdiction: req.Jurisdiction,
		KeyFacts:     req.KeyFacts,
		JudgeID:      req.JudgeID,
		Date:         s.now().UTC(),
		Prediction: models.CasePrediction{
			OutcomeProbabilities: prediction.OutcomeProbabilities,
			ConfidenceScore:      confidence,
			IsLLMFallback:        prediction.IsLLMFallback,
		},
	}

	logger := logrus.WithFields(logrus.Fields{
		"component": "CaseService",
		"user_id":   claims.UserID,
		"case_id":   c.ID,
	})

	persisted := false
	if userID, ok := accountID(claims); ok && s.repo != nil {
		if err := s.repo.InsertCase(ctx, userID, &c); err != nil {
			logger.WithError(err).Warn("Failed to persist case, keeping it in the session cache")
		} else {
			persisted = true
		}
	}

	cached := s.cachedCases(ctx, claims.UserID)
	s.cacheCases(ctx, claims.UserID, append([]models.Case{c}, cached...))

	logger.WithFields(logrus.Fields{
		"fallback":  prediction.IsLLMFallback,
		"persisted": persisted,
	}).Info("Case prediction submitted")

	return &models.CaseSubmission{
		CaseID:               c.ID,
		OutcomeProbabilities: prediction.OutcomeProbabilities,
		ConfidenceScore:      confidence,
		Explanation:          prediction.Explanation,
		IsLLMFallback:        prediction.IsLLMFallback,
		Source:               prediction.Source,
		Persisted:            persisted,
	}, nil
}

// GetCases returns the recent cases of the caller and where they were read from.
// Account holders read the database; on failure, and for guests, the session cache answers.
func (s *CaseService) GetCases(ctx context.Context, claims *Claims) ([]models.Case, string) {
	if userID, ok := accountID(claims); ok && s.repo != nil {
		cases, err := s.repo.ListCases(ctx, userID, models.MaxCachedCases)
		if err == nil {
			s.cacheCases(ctx, claims.UserID, cases)
			return cases, CasesSourceDatabase
		}
		logrus.WithFields(logrus.Fields{
			"component": "CaseService",
			"user_id":   claims.UserID,
			"error":     err.Error(),
		}).Warn("Failed to load cases, serving session cache")
	}
	return s.cachedCases(ctx, claims.UserID), CasesSourceCache
}

// Dashboard combines the recent cases with the cached alerts
func (s *CaseService) Dashboard(ctx context.Context, claims *Claims) *models.Dashboard {
	cases, source := s.GetCases(ctx, claims)
	return &models.Dashboard{
		RecentCases: cases,
		Alerts:      cachedAlerts(ctx, s.sessions, claims.UserID),
		CasesSource: source,
	}
}

func (s *CaseService) cachedCases(ctx context.Context, userID string) []models.Case {
	cases := []models.Case{}
	if _, err := s.sessions.Get(ctx, userID, models.SessionKeyCases, &cases); err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "CaseService",
			"user_id":   userID,
			"error":     err.Error(),
		}).Warn("Failed to read cached cases")
		return []models.Case{}
	}
	if cases == nil {
		cases = []models.Case{}
	}
	return cases
}

func (s *CaseService) cacheCases(ctx context.Context, userID string, cases []models.Case) {
	if len(cases) > models.MaxCachedCases {
		cases = cases[:models.MaxCachedCases]
	}
	if err := s.sessions.Set(ctx, userID, models.SessionKeyCases, cases); err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "CaseService",
			"user_id":   userID,
			"error":     err.Error(),
		}).Warn("Failed to cache cases")
	}
}

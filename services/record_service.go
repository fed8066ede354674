package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fenilmodi00/legal-oracle-backend/database"
	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// recordTables maps each persisted task onto its table
var recordTables = map[OracleTask]string{
	TaskStrategy:     "strategies",
	TaskSimulation:   "simulations",
	TaskForecast:     "regulatory_forecasts",
	TaskEvolution:    "legal_evolution_models",
	TaskJurisdiction: "jurisdiction_recommendations",
	TaskPrecedent:    "precedent_simulations",
	TaskCompliance:   "compliance_recommendations",
	TaskLandmark:     "landmark_predictions",
}

// RecordRepository persists oracle results
type RecordRepository interface {
	InsertRecord(ctx context.Context, table string, record *models.Record) error
}

// PostgresRecordRepository writes records into the per-task tables
type PostgresRecordRepository struct {
	db *sql.DB
}

func NewPostgresRecordRepository(db *sql.DB) *PostgresRecordRepository {
	return &PostgresRecordRepository{db: db}
}

func (r *PostgresRecordRepository) InsertRecord(ctx context.Context, table string, record *models.Record) error {
	known := false
	for _, t := range recordTables {
		if t == table {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown record table %q", table)
	}

	request, err := json.Marshal(record.Request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	result, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	query := `INSERT INTO ` + table + ` (id, user_id, request, result, is_fallback) VALUES ($1, $2, $3, $4, $5)`
	err = database.ExecuteWithRetry(ctx, func() error {
		_, execErr := r.db.ExecContext(ctx, query, record.ID, record.UserID, request, result, record.IsFallback)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

// RecordService stores the oracle results of account holders
type RecordService struct {
	repo RecordRepository
}

func NewRecordService(repo RecordRepository) *RecordService {
	return &RecordService{repo: repo}
}

// Save persists one result and reports whether it was written. Guests and failures are not persisted.
func (s *RecordService) Save(ctx context.Context, claims *Claims, task OracleTask, request, result interface{}, isFallback bool) bool {
	userID, ok := accountID(claims)
	if !ok || s.repo == nil {
		return false
	}

	table, ok := recordTables[task]
	if !ok {
		return false
	}

	record := &models.Record{
		ID:         uuid.New().String(),
		UserID:     userID.String(),
		Kind:       string(task),
		Request:    request,
		Result:     result,
		IsFallback: isFallback,
	}

	if err := s.repo.InsertRecord(ctx, table, record); err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "RecordService",
			"task":      task,
			"user_id":   record.UserID,
			"error":     err.Error(),
		}).Warn("Failed to persist oracle result")
		return false
	}
	return true
}

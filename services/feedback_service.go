package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/database"
	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FeedbackRepository stores dataset feedback
type FeedbackRepository interface {
	InsertFeedback(ctx context.Context, f *models.Feedback) error
	ListFeedback(ctx context.Context, datasetName, userID string) ([]models.Feedback, error)
}

// PostgresFeedbackRepository stores feedback in the feedback table
type PostgresFeedbackRepository struct {
	db *sql.DB
}

func NewPostgresFeedbackRepository(db *sql.DB) *PostgresFeedbackRepository {
	return &PostgresFeedbackRepository{db: db}
}

func (r *PostgresFeedbackRepository) InsertFeedback(ctx context.Context, f *models.Feedback) error {
	query := `
		INSERT INTO feedback (id, user_id, dataset_name, item_id, feedback_type, comment, user_rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var rating sql.NullInt64
	if f.UserRating != nil {
		rating = sql.NullInt64{Int64: int64(*f.UserRating), Valid: true}
	}
	err := database.ExecuteWithRetry(ctx, func() error {
		_, execErr := r.db.ExecContext(ctx, query,
			f.ID, f.UserID, f.DatasetName, f.ItemID, f.FeedbackType, f.Comment, rating, f.SubmittedAt)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

// ListFeedback filters by dataset and user when they are non-empty
func (r *PostgresFeedbackRepository) ListFeedback(ctx context.Context, datasetName, userID string) ([]models.Feedback, error) {
	query := `
		SELECT id, user_id, dataset_name, item_id, feedback_type, comment, user_rating, created_at
		FROM feedback
		WHERE ($1 = '' OR dataset_name = $1) AND ($2 = '' OR user_id = $2)
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, datasetName, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var items []models.Feedback
	for rows.Next() {
		var f models.Feedback
		var rating sql.NullInt64
		if err := rows.Scan(&f.ID, &f.UserID, &f.DatasetName, &f.ItemID, &f.FeedbackType, &f.Comment, &rating, &f.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		if rating.Valid {
			v := int(rating.Int64)
			f.UserRating = &v
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

// MemoryFeedbackRepository keeps feedback in process when no database is configured
type MemoryFeedbackRepository struct {
	mutex sync.RWMutex
	items []models.Feedback
}

func NewMemoryFeedbackRepository() *MemoryFeedbackRepository {
	return &MemoryFeedbackRepository{}
}

func (r *MemoryFeedbackRepository) InsertFeedback(_ context.Context, f *models.Feedback) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.items = append(r.items, *f)
	return nil
}

func (r *MemoryFeedbackRepository) ListFeedback(_ context.Context, datasetName, userID string) ([]models.Feedback, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var items []models.Feedback
	for i := len(r.items) - 1; i >= 0; i-- {
		f := r.items[i]
		if datasetName != "" && f.DatasetName != datasetName {
			continue
		}
		if userID != "" && f.UserID != userID {
			continue
		}
		items = append(items, f)
	}
	return items, nil
}

// FeedbackService collects quality feedback on dataset items
type FeedbackService struct {
	repo FeedbackRepository
	now  func() time.Time
}

func NewFeedbackService(repo FeedbackRepository) *FeedbackService {
	if repo == nil {
		repo = NewMemoryFeedbackRepository()
	}
	return &FeedbackService{repo: repo, now: time.Now}
}

// Submit validates and stores one feedback entry
func (s *FeedbackService) Submit(ctx context.Context, userID string, req models.FeedbackRequest) (*models.Feedback, error) {
	req.DatasetName = strings.TrimSpace(req.DatasetName)
	req.ItemID = strings.TrimSpace(req.ItemID)
	req.FeedbackType = strings.ToLower(strings.TrimSpace(req.FeedbackType))

	if req.DatasetName == "" || req.ItemID == "" {
		return nil, shared.NewValidationError("MISSING_FIELDS", "dataset_name and item_id are required", "FeedbackService", "Submit")
	}
	if !models.FeedbackTypes[req.FeedbackType] {
		return nil, shared.NewValidationError("INVALID_FEEDBACK_TYPE",
			"feedback_type must be one of helpful, inaccurate, irrelevant, other", "FeedbackService", "Submit")
	}
	if req.UserRating != nil && (*req.UserRating < 1 || *req.UserRating > 5) {
		return nil, shared.NewValidationError("INVALID_RATING", "user_rating must be 1-5", "FeedbackService", "Submit")
	}

	f := &models.Feedback{
		ID:           uuid.New(),
		UserID:       userID,
		DatasetName:  req.DatasetName,
		ItemID:       req.ItemID,
		FeedbackType: req.FeedbackType,
		Comment:      strings.TrimSpace(req.Comment),
		UserRating:   req.UserRating,
		SubmittedAt:  s.now().UTC(),
	}

	if err := s.repo.InsertFeedback(ctx, f); err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "FEEDBACK_SAVE_FAILED", "FeedbackService", "Submit", true)
	}

	logrus.WithFields(logrus.Fields{
		"component":     "FeedbackService",
		"dataset":       f.DatasetName,
		"feedback_type": f.FeedbackType,
	}).Info("Feedback submitted")
	return f, nil
}

// Stats aggregates feedback, optionally for one dataset
func (s *FeedbackService) Stats(ctx context.Context, datasetName string) (*models.FeedbackStats, error) {
	items, err := s.repo.ListFeedback(ctx, datasetName, "")
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "FEEDBACK_LOAD_FAILED", "FeedbackService", "Stats", true)
	}

	stats := &models.FeedbackStats{
		TotalFeedback: len(items),
		ByType:        map[string]int{},
		ByDataset:     map[string]int{},
	}

	total, rated := 0, 0
	for _, f := range items {
		stats.ByType[f.FeedbackType]++
		stats.ByDataset[f.DatasetName]++
		if f.UserRating != nil {
			total += *f.UserRating
			rated++
		}
	}
	if rated > 0 {
		stats.AverageRating = float64(total) / float64(rated)
	}
	return stats, nil
}

// MyFeedback returns the entries submitted by userID, newest first
func (s *FeedbackService) MyFeedback(ctx context.Context, userID string) ([]models.Feedback, error) {
	items, err := s.repo.ListFeedback(ctx, "", userID)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "FEEDBACK_LOAD_FAILED", "FeedbackService", "MyFeedback", true)
	}
	if items == nil {
		items = []models.Feedback{}
	}
	return items, nil
}

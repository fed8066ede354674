package models

import (
	"time"

	"github.com/google/uuid"
)

var FeedbackTypes = map[string]bool{
	"helpful":    true,
	"inaccurate": true,
	"irrelevant": true,
	"other":      true,
}

type FeedbackRequest struct {
	DatasetName  string `json:"dataset_name"`
	ItemID       string `json:"item_id"`
	FeedbackType string `json:"feedback_type"`
	Comment      string `json:"comment"`
	UserRating   *int   `json:"user_rating,omitempty"`
}

type Feedback struct {
	ID           uuid.UUID `json:"id"`
	UserID       string    `json:"user_id"`
	DatasetName  string    `json:"dataset_name"`
	ItemID       string    `json:"item_id"`
	FeedbackType string    `json:"feedback_type"`
	Comment      string    `json:"comment"`
	UserRating   *int      `json:"user_rating,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

type FeedbackStats struct {
	TotalFeedback int            `json:"total_feedback"`
	ByType        map[string]int `json:"by_type"`
	ByDataset     map[string]int `json:"by_dataset"`
	AverageRating float64        `json:"average_rating"`
}

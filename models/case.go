package models

import (
	"strconv"
	"time"
)

// OutcomeProbabilities are percentages for the three possible case outcomes
type OutcomeProbabilities struct {
	Win    int `json:"win"`
	Settle int `json:"settle"`
	Lose   int `json:"lose"`
}

type CasePrediction struct {
	OutcomeProbabilities OutcomeProbabilities `json:"outcomeProbabilities"`
	ConfidenceScore      int                  `json:"confidenceScore"`
	IsLLMFallback        bool                 `json:"isLLMFallback"`
}

// Case is created on prediction submission and never updated
type Case struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Type         string         `json:"type"`
	Jurisdiction string         `json:"jurisdiction"`
	KeyFacts     []string       `json:"keyFacts"`
	JudgeID      string         `json:"judgeId,omitempty"`
	Date         time.Time      `json:"date"`
	Prediction   CasePrediction `json:"prediction"`
}

// CaseTitle builds the display title of a case
func CaseTitle(caseType, jurisdiction string) string {
	return caseType + " - " + jurisdiction
}

// CaseSubmission is the result of a prediction submission
type CaseSubmission struct {
	CaseID               string               `json:"caseId"`
	OutcomeProbabilities OutcomeProbabilities `json:"outcomeProbabilities"`
	ConfidenceScore      int                  `json:"confidenceScore"`
	Explanation          string               `json:"explanation,omitempty"`
	IsLLMFallback        bool                 `json:"isLLMFallback"`
	Source               GenerationSource     `json:"source"`
	Persisted            bool                 `json:"persisted"`
}

// Dashboard aggregates the recent cases and cached alerts of a user
type Dashboard struct {
	RecentCases []Case  `json:"recentCases"`
	Alerts      []Alert `json:"alerts"`
	CasesSource string  `json:"casesSource"`
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

package models

import "time"

// CaseLawRecord is one document of the local case-law corpus
type CaseLawRecord struct {
	ID           string `json:"id"`
	CaseName     string `json:"case_name"`
	Court        string `json:"court"`
	Jurisdiction string `json:"jurisdiction"`
	Date         string `json:"date"`
	Citation     string `json:"citation"`
	Summary      string `json:"summary"`
	URL          string `json:"url"`
	Text         string `json:"text"`
}

// CaseResult is a search hit; the full text is never returned
type CaseResult struct {
	ID           string   `json:"id"`
	CaseName     string   `json:"case_name"`
	Court        string   `json:"court"`
	Jurisdiction string   `json:"jurisdiction"`
	Date         string   `json:"date"`
	Citation     string   `json:"citation"`
	Summary      string   `json:"summary"`
	URL          string   `json:"url"`
	Score        *float64 `json:"score,omitempty"`
}

// ToResult projects a corpus record onto a search hit
func (r *CaseLawRecord) ToResult() CaseResult {
	return CaseResult{
		ID:           r.ID,
		CaseName:     r.CaseName,
		Court:        r.Court,
		Jurisdiction: r.Jurisdiction,
		Date:         r.Date,
		Citation:     r.Citation,
		Summary:      r.Summary,
		URL:          r.URL,
	}
}

type SimilarCasesRequest struct {
	Text  string `json:"text"`
	Limit *int   `json:"limit"` // nil means 5
}

const (
	SearchTypeKeyword       = "keyword"
	SearchTypeSimilar       = "similar"
	SearchTypeAutocomplete  = "autocomplete"
	SearchTypeCourtListener = "courtlistener"
)

// SearchLog is written for every case-law search
type SearchLog struct {
	UserID          string    `json:"user_id"`
	Query           string    `json:"query"`
	SearchType      string    `json:"search_type"`
	Timestamp       time.Time `json:"timestamp"`
	ResultsCount    int       `json:"results_count"`
	ExecutionTimeMS float64   `json:"execution_time_ms"`
}

// OpinionSearchParams are forwarded to the CourtListener opinions endpoint
type OpinionSearchParams struct {
	Query     string `query:"query"`
	Court     string `query:"court"`
	DateFiled string `query:"date_filed"`
}

// OpinionSearchResult wraps the upstream body with a normalized card per opinion
type OpinionSearchResult struct {
	Count    int                      `json:"count"`
	Next     string                   `json:"next,omitempty"`
	Previous string                   `json:"previous,omitempty"`
	Results  []map[string]interface{} `json:"results"`
}

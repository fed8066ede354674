package models

import "time"

// Alert is a time-limited legal arbitrage opportunity
type Alert struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	Urgency          string `json:"urgency"`
	ExpirationDate   string `json:"expirationDate"`
	PotentialSavings string `json:"potentialSavings"`
	ActionRequired   string `json:"actionRequired"`
	Jurisdiction     string `json:"jurisdiction"`
	Confidence       int    `json:"confidence"`
	Created          string `json:"created"`
}

// ExpiresAt parses ExpirationDate. The second result is false when it is missing or malformed.
func (a *Alert) ExpiresAt() (time.Time, bool) {
	if a.ExpirationDate == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, a.ExpirationDate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

const (
	AlertFrequencyRealtime = "realtime"
	AlertFrequencyDaily    = "daily"
	AlertFrequencyWeekly   = "weekly"
	AlertFrequencyMonthly  = "monthly"
)

// AlertSettings drive alert generation for a user
type AlertSettings struct {
	UserRole       string   `json:"userRole"`
	Jurisdiction   string   `json:"jurisdiction"`
	LegalInterests []string `json:"legalInterests"`
	AlertFrequency string   `json:"alertFrequency"`
}

// CanGenerate reports whether the settings carry enough context to generate alerts
func (s *AlertSettings) CanGenerate() bool {
	if s.Jurisdiction == "" {
		return false
	}
	for _, interest := range s.LegalInterests {
		if interest != "" {
			return true
		}
	}
	return false
}

// ApplyDefaults fills the frequency and role when left empty or invalid
func (s *AlertSettings) ApplyDefaults() {
	switch s.AlertFrequency {
	case AlertFrequencyRealtime, AlertFrequencyDaily, AlertFrequencyWeekly, AlertFrequencyMonthly:
	default:
		s.AlertFrequency = AlertFrequencyDaily
	}
	if s.UserRole == "" {
		s.UserRole = string(RoleIndividual)
	}
	if s.LegalInterests == nil {
		s.LegalInterests = []string{}
	}
}

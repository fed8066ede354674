package models

// Keys of the per-user session state
const (
	SessionKeyUser          = "legal_oracle_user"
	SessionKeyCases         = "legal_oracle_cases"
	SessionKeyAlerts        = "legal_oracle_alerts"
	SessionKeyAlertSettings = "legal_oracle_alert_settings"
)

// SessionKeys lists every key removed on logout
var SessionKeys = []string{
	SessionKeyUser,
	SessionKeyCases,
	SessionKeyAlerts,
	SessionKeyAlertSettings,
}

// MaxCachedCases bounds the cached case list
const MaxCachedCases = 10

// Record is a persisted oracle artefact (strategy, simulation, forecast, ...)
type Record struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Kind       string      `json:"kind"`
	Request    interface{} `json:"request"`
	Result     interface{} `json:"result"`
	IsFallback bool        `json:"is_fallback"`
}

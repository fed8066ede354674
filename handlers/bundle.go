package handlers

// HandlerBundle groups every handler registered by the router
type HandlerBundle struct {
	Auth          *AuthHandler
	Oracle        *OracleHandler
	Cases         *CaseHandler
	Alerts        *AlertHandler
	Caselaw       *CaselawHandler
	CourtListener *CourtListenerHandler
	Datasets      *DatasetHandler
	Feedback      *FeedbackHandler
	Admin         *AdminHandler
}

package routes

import (
	"github.com/fenilmodi00/legal-oracle-backend/handlers"
	"github.com/gofiber/fiber/v2"
)

// Register mounts every endpoint. requireAuth guards all /api/v1 routes except login flows and health.
func Register(app *fiber.App, hb *handlers.HandlerBundle, requireAuth fiber.Handler) {
	app.Get("/health", hb.Admin.Health)

	api := app.Group("/api/v1")

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/signup", hb.Auth.SignUp)
	auth.Post("/login", hb.Auth.Login)
	auth.Post("/guest", hb.Auth.GuestLogin)
	auth.Get("/session", requireAuth, hb.Auth.Session)
	auth.Post("/logout", requireAuth, hb.Auth.Logout)

	// Oracle Routes
	api.Post("/outcome/predict", requireAuth, hb.Oracle.PredictOutcome)
	api.Post("/strategy/optimize", requireAuth, hb.Oracle.OptimizeStrategy)
	api.Post("/simulation/run", requireAuth, hb.Oracle.SimulateStrategy)
	api.Post("/trends/forecast", requireAuth, hb.Oracle.ForecastRegulations)
	api.Post("/trends/model", requireAuth, hb.Oracle.ModelLegalEvolution)
	api.Post("/jurisdiction/optimize", requireAuth, hb.Oracle.OptimizeJurisdiction)
	api.Post("/precedent/simulate", requireAuth, hb.Oracle.SimulatePrecedent)
	api.Post("/precedent/predict", requireAuth, hb.Oracle.PredictLandmarkCases)
	api.Post("/compliance/optimize", requireAuth, hb.Oracle.OptimizeCompliance)

	// Case Routes
	api.Get("/cases", requireAuth, hb.Cases.GetCases)
	api.Get("/dashboard", requireAuth, hb.Cases.GetDashboard)

	// Arbitrage Routes
	arbitrage := api.Group("/arbitrage", requireAuth)
	arbitrage.Post("/alerts", hb.Alerts.GenerateAlerts)
	arbitrage.Get("/alerts", hb.Alerts.ListAlerts)
	arbitrage.Delete("/alerts/:id", hb.Alerts.DismissAlert)
	arbitrage.Get("/settings", hb.Alerts.GetSettings)
	arbitrage.Put("/settings", hb.Alerts.UpdateSettings)

	// Case-law Routes
	caselaw := api.Group("/caselaw", requireAuth)
	caselaw.Get("/search", hb.Caselaw.Search)
	caselaw.Post("/similar", hb.Caselaw.Similar)
	caselaw.Get("/autocomplete", hb.Caselaw.Autocomplete)

	api.Get("/courtlistener/opinions", requireAuth, hb.CourtListener.SearchOpinions)

	// Dataset Routes
	dataset := api.Group("/dataset", requireAuth)
	dataset.Get("/list", hb.Datasets.ListDatasets)
	dataset.Get("/search/:name", hb.Datasets.Search)
	dataset.Get("/:name/subsets", hb.Datasets.GetSubsets)

	// Feedback Routes
	feedback := api.Group("/feedback", requireAuth)
	feedback.Post("/", hb.Feedback.Submit)
	feedback.Get("/stats", hb.Feedback.Stats)
	feedback.Get("/mine", hb.Feedback.MyFeedback)

	// Admin Routes
	admin := api.Group("/admin", requireAuth)
	admin.Get("/metrics", hb.Admin.GetMetrics)
	admin.Delete("/cache", hb.Admin.ClearCache)
	admin.Post("/jobs/cache-cleanup", hb.Admin.TriggerCacheCleanup)
}

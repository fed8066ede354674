package handlers

import (
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/database"
	"github.com/fenilmodi00/legal-oracle-backend/jobs"
	"github.com/fenilmodi00/legal-oracle-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	Oracle        *services.OracleService
	Caselaw       *services.CaselawService
	Datasets      *services.DatasetService
	CourtListener *services.CourtListenerService
	CleanupJob    *jobs.CacheCleanupJob
}

func NewAdminHandler(oracle *services.OracleService, caselaw *services.CaselawService, datasets *services.DatasetService,
	courtListener *services.CourtListenerService, cleanupJob *jobs.CacheCleanupJob) *AdminHandler {
	return &AdminHandler{
		Oracle:        oracle,
		Caselaw:       caselaw,
		Datasets:      datasets,
		CourtListener: courtListener,
		CleanupJob:    cleanupJob,
	}
}

// Health reports liveness; the database is reported but never fails the check
func (h *AdminHandler) Health(c *fiber.Ctx) error {
	databaseStatus := "not_configured"
	if database.DB != nil {
		databaseStatus = "ok"
		if err := database.HealthCheck(); err != nil {
			databaseStatus = "unavailable"
		}
	}

	return c.JSON(fiber.Map{
		"status":      "ok",
		"timestamp":   time.Now().Unix(),
		"llm_enabled": h.Oracle.Enabled(),
		"database":    databaseStatus,
	})
}

// GetMetrics returns oracle, cache and upstream counters
func (h *AdminHandler) GetMetrics(c *fiber.Ctx) error {
	data := fiber.Map{
		"oracle": h.Oracle.Stats(),
		"caselaw": fiber.Map{
			"corpus_size": h.Caselaw.CorpusSize(),
			"cache":       h.Caselaw.Cache().Stats(),
		},
		"datasets": fiber.Map{
			"requests": h.Datasets.Stats(),
			"cache":    h.Datasets.Cache().Stats(),
		},
		"courtlistener": h.CourtListener.Stats(),
	}
	if database.DB != nil {
		data["database"] = database.GetConnectionStats()
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// ClearCache empties the generated-response and search caches
func (h *AdminHandler) ClearCache(c *fiber.Ctx) error {
	h.Oracle.Cache().Clear()
	h.Caselaw.Cache().Clear()
	h.Datasets.Cache().Clear()

	logrus.WithField("component", "AdminHandler").Info("Caches cleared via admin endpoint")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Caches cleared",
	})
}

// TriggerCacheCleanup runs the cache cleanup job immediately
func (h *AdminHandler) TriggerCacheCleanup(c *fiber.Ctx) error {
	logrus.Info("Manual cache cleanup triggered via admin endpoint")

	startTime := time.Now()
	h.CleanupJob.Run()

	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Cache cleanup job completed",
		"duration":  time.Since(startTime).String(),
		"timestamp": time.Now(),
	})
}

package handlers

import (
	"strings"

	"github.com/fenilmodi00/legal-oracle-backend/middleware"
	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/services"
	"github.com/gofiber/fiber/v2"
)

// OracleHandler serves the generated analyses. Results of authenticated callers are persisted.
type OracleHandler struct {
	Oracle  *services.OracleService
	Cases   *services.CaseService
	Records *services.RecordService
}

func NewOracleHandler(oracle *services.OracleService, cases *services.CaseService, records *services.RecordService) *OracleHandler {
	return &OracleHandler{
		Oracle:  oracle,
		Cases:   cases,
		Records: records,
	}
}

// PredictOutcome runs an outcome prediction and records the case
func (h *OracleHandler) PredictOutcome(c *fiber.Ctx) error {
	var req models.PredictOutcomeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if missing := missingFields(map[string]string{
		"case_type":    req.CaseType,
		"jurisdiction": req.Jurisdiction,
		"key_facts":    strings.Join(req.KeyFacts, ""),
	}); len(missing) > 0 {
		return missingFieldsResponse(c, missing)
	}

	submission, err := h.Cases.SubmitPrediction(c.Context(), middleware.ClaimsFrom(c), req)
	if err != nil {
		return errorResponse(c, err)
	}
	meta := models.OracleMeta{IsLLMFallback: submission.IsLLMFallback, Explanation: submission.Explanation, Source: submission.Source}
	return oracleResponse(c, submission, meta, submission.Persisted)
}

func (h *OracleHandler) OptimizeStrategy(c *fiber.Ctx) error {
	var req models.OptimizeStrategyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if missing := missingFields(map[string]string{"case_type": req.CaseType, "jurisdiction": req.Jurisdiction}); len(missing) > 0 {
		return missingFieldsResponse(c, missing)
	}

	result := h.Oracle.OptimizeStrategy(c.Context(), req)
	saved := h.Records.Save(c.Context(), middleware.ClaimsFrom(c), services.TaskStrategy, req, result, result.IsLLMFallback)
	return oracleResponse(c, result, result.OracleMeta, saved)
}

func (h *OracleHandler) SimulateStrategy(c *fiber.Ctx) error {
	var req models.SimulateStrategyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if missing := missingFields(map[string]string{"strategy": req.Strategy}); len(missing) > 0 {
		return missingFieldsResponse(c, missing)
	}

	result := h.Oracle.SimulateStrategy(c.Context(), req)
	saved := h.Records.Save(c.Context(), middleware.ClaimsFrom(c), services.TaskSimulation, req, result, result.IsLLMFallback)
	return oracleResponse(c, result, result.OracleMeta, saved)
}

func (h *OracleHandler) ForecastRegulations(c *fiber.Ctx) error {
	var req models.ForecastRegulationsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if missing := missingFields(map[string]string{"industry": req.Industry}); len(missing) > 0 {
		return missingFieldsResponse(c, missing)
	}

	result := h.Oracle.ForecastRegulations(c.Context(), req)
	saved := h.Records.Save(c.Context(), middleware.ClaimsFrom(c), services.TaskForecast, req, result, result.IsLLMFallback)
	return oracleResponse(c, result, result.OracleMeta, saved)
}

func (h *OracleHandler) ModelLegalEvolution(c *fiber.Ctx) error {
	var req models.LegalEvolutionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if missing := missingFields(map[string]string{"legal_domain": req.LegalDomain}); len(missing) > 0 {
		return missingFieldsResponse(c, missing)
	}

	result := h.Oracle.ModelLegalEvolution(c.Context(), req)
	saved := h.Records.Save(c.Context(), middleware.ClaimsFrom(c), services.TaskEvolution, req, result, result.IsLLMFallback)
	return oracleResponse(c, result, result.OracleMeta, saved)
}

func (h *OracleHandler) OptimizeJurisdiction(c *fiber.Ctx) error {
	var req models.OptimizeJurisdictionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if missing := missingFields(map[string]string{"case_type": req.CaseType}); len(missing) > 0 {
		return missingFieldsResponse(c, missing)
	}

	result := h.Oracle.OptimizeJurisdiction(c.Context(), req)
	saved := h.Records.Save(c.Context(), middleware.ClaimsFrom(c), services.TaskJurisdiction, req, result, result.IsLLMFallback)
	return oracleResponse(c, result, result.OracleMeta, saved)
}

func (h *OracleHandler) SimulatePrecedent(c *fiber.Ctx) error {
	var req models.SimulatePrecedentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if missing := missingFields(map[string]string{"decision": req.Decision}); len(missing) > 0 {
		return missingFieldsResponse(c, missing)
	}

	result := h.Oracle.SimulatePrecedent(c.Context(), req)
	saved := h.Records.Save(c.Context(), middleware.ClaimsFrom(c), services.TaskPrecedent, req, result, result.IsLLMFallback)
	return oracleResponse(c, result, result.OracleMeta, saved)
}

func (h *OracleHandler) PredictLandmarkCases(c *fiber.Ctx) error {
	var req models.PredictLandmarkRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if missing := missingFields(map[string]string{"jurisdiction": req.Jurisdiction}); len(missing) > 0 {
		return missingFieldsResponse(c, missing)
	}

	result := h.Oracle.PredictLandmarkCases(c.Context(), req)
	saved := h.Records.Save(c.Context(), middleware.ClaimsFrom(c), services.TaskLandmark, req, result, result.IsLLMFallback)
	return oracleResponse(c, result, result.OracleMeta, saved)
}

func (h *OracleHandler) OptimizeCompliance(c *fiber.Ctx) error {
	var req models.OptimizeComplianceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if missing := missingFields(map[string]string{"industry": req.Industry, "jurisdiction": req.Jurisdiction}); len(missing) > 0 {
		return missingFieldsResponse(c, missing)
	}

	result := h.Oracle.OptimizeCompliance(c.Context(), req)
	saved := h.Records.Save(c.Context(), middleware.ClaimsFrom(c), services.TaskCompliance, req, result, result.IsLLMFallback)
	return oracleResponse(c, result, result.OracleMeta, saved)
}

package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/sirupsen/logrus"
)

const (
	sampleDataExplanation  = "Generated from sample data because the language model is unavailable."
	fallbackExplanationFmt = "%s generated using fallback logic due to invalid or missing LLM output."
)

const oracleSystemInstruction = "You are a legal analytics assistant. Answer with a single JSON document " +
	"that matches the requested shape exactly. Do not add commentary or markdown."

// OracleStats reports the state of the generation pipeline
type OracleStats struct {
	LLMEnabled  bool                   `json:"llm_enabled"`
	CircuitOpen bool                   `json:"circuit_open"`
	FailureRate float64                `json:"failure_rate"`
	Metrics     shared.MetricsSnapshot `json:"metrics"`
	Cache       CacheStats             `json:"cache"`
}

// OracleService turns task parameters into generated legal analyses.
// Callers always get a well-formed result: generation failures degrade to sample data and
// unusable answers degrade to plausible fallback values flagged with IsLLMFallback.
type OracleService struct {
	generator TextGenerator
	cache     *CacheService
	breaker   *shared.CircuitBreaker
	metrics   *shared.ServiceMetrics
	timeout   time.Duration

	randMutex sync.Mutex
	rng       *rand.Rand
}

// OracleOption customises an OracleService
type OracleOption func(*OracleService)

// WithRand sets the random source used for fallback values
func WithRand(r *rand.Rand) OracleOption {
	return func(s *OracleService) {
		s.rng = r
	}
}

// NewOracleService creates the service. A nil generator serves sample data for every task.
func NewOracleService(generator TextGenerator, cache *CacheService, cfg shared.LLMConfig, opts ...OracleOption) *OracleService {
	if cache == nil {
		cache = NewCacheService("llm", 24*time.Hour, 500)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	s := &OracleService{
		generator: generator,
		cache:     cache,
		breaker:   shared.NewCircuitBreaker("OracleService", cfg.MaxFailureRate, cfg.MinSamples, cfg.CoolDown),
		metrics:   shared.NewServiceMetrics("OracleService"),
		timeout:   cfg.RequestTimeout,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}

	logrus.WithFields(logrus.Fields{
		"component":   "OracleService",
		"llm_enabled": generator != nil,
		"timeout":     cfg.RequestTimeout,
	}).Info("Oracle service initialized")

	return s
}

// Enabled reports whether a language model is configured
func (s *OracleService) Enabled() bool {
	return s.generator != nil
}

// Stats returns pipeline counters for the admin endpoint
func (s *OracleService) Stats() OracleStats {
	return OracleStats{
		LLMEnabled:  s.Enabled(),
		CircuitOpen: s.breaker.IsOpen(),
		FailureRate: s.breaker.GetFailureRate(),
		Metrics:     s.metrics.GetSnapshot(),
		Cache:       s.cache.Stats(),
	}
}

// Cache exposes the response cache to the cleanup job and admin handler
func (s *OracleService) Cache() *CacheService {
	return s.cache
}

// generate returns raw text for a task: a cached answer, a fresh model answer, or sample data.
// It makes a single attempt and never returns an error.
func (s *OracleService) generate(ctx context.Context, task OracleTask, prompt, cacheKey string) (string, models.GenerationSource) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "OracleService",
		"task":      task,
	})

	if cacheKey != "" {
		if cached, ok := s.cache.Get(cacheKey); ok {
			if text, ok := cached.(string); ok {
				s.metrics.IncrementCustomCounter("cache_hits")
				logger.WithField("cache_key", cacheKey).Debug("Serving cached generation")
				return text, models.SourceCache
			}
		}
	}

	if s.generator == nil {
		s.metrics.IncrementCustomCounter("sample_responses")
		return mockResponse(task), models.SourceMock
	}

	start := time.Now()
	var text string
	err := s.breaker.Execute(func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		out, err := s.generator.GenerateContent(callCtx, oracleSystemInstruction, prompt)
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	s.metrics.RecordRequest(err == nil, time.Since(start))

	if err != nil {
		logger.WithError(err).Warn("Generation failed, serving sample data")
		s.metrics.IncrementCustomCounter("sample_responses")
		return mockResponse(task), models.SourceMock
	}
	return text, models.SourceLLM
}

// run generates text for a task and hands it to parse. Only model answers that parse are cached.
func (s *OracleService) run(ctx context.Context, task OracleTask, prompt, cacheKey string, parse func(text string) error) (models.GenerationSource, bool) {
	text, source := s.generate(ctx, task, prompt, cacheKey)

	if err := parse(text); err != nil {
		s.metrics.IncrementCustomCounter("fallback_values")
		logrus.WithFields(logrus.Fields{
			"component": "OracleService",
			"task":      task,
			"source":    source,
			"error":     err.Error(),
		}).Warn("Generated output unusable, substituting fallback values")
		return source, false
	}

	if source == models.SourceLLM && cacheKey != "" {
		s.cache.Set(cacheKey, text)
	}
	return source, true
}

func metaFor(label string, source models.GenerationSource, parsed bool) models.OracleMeta {
	switch {
	case !parsed:
		return models.OracleMeta{
			IsLLMFallback: true,
			Explanation:   fmt.Sprintf(fallbackExplanationFmt, label),
			Source:        source,
		}
	case source == models.SourceMock:
		return models.OracleMeta{IsLLMFallback: true, Explanation: sampleDataExplanation, Source: source}
	default:
		return models.OracleMeta{Source: source}
	}
}

// randBetween returns a value in [min, max]
func (s *OracleService) randBetween(min, max int) int {
	s.randMutex.Lock()
	defer s.randMutex.Unlock()
	return min + s.rng.Intn(max-min+1)
}

func cacheKey(task OracleTask, parts ...string) string {
	return string(task) + "_" + strings.Join(parts, "_")
}

func bulletList(items []string) string {
	items = nonEmptyStrings(items)
	if len(items) == 0 {
		return "- none provided"
	}
	return "- " + strings.Join(items, "\n- ")
}

// Outcome prediction

type outcomeWire struct {
	Win    *flexNumber `json:"win"`
	Settle *flexNumber `json:"settle"`
	Lose   *flexNumber `json:"lose"`

	Nested *struct {
		Win    *flexNumber `json:"win"`
		Settle *flexNumber `json:"settle"`
		Lose   *flexNumber `json:"lose"`
	} `json:"outcomeProbabilities"`
}

func parseOutcome(text string) (models.OutcomeProbabilities, error) {
	var wire outcomeWire
	if err := decodeGenerated(text, &wire); err != nil {
		return models.OutcomeProbabilities{}, err
	}

	win, settle, lose := wire.Win, wire.Settle, wire.Lose
	if (win == nil || settle == nil || lose == nil) && wire.Nested != nil {
		win, settle, lose = wire.Nested.Win, wire.Nested.Settle, wire.Nested.Lose
	}
	if win == nil || settle == nil || lose == nil {
		return models.OutcomeProbabilities{}, fmt.Errorf("missing win, settle or lose")
	}

	w, st, l := float64(*win), float64(*settle), float64(*lose)
	if w <= 1 && st <= 1 && l <= 1 {
		w, st, l = w*100, st*100, l*100
	}
	return models.OutcomeProbabilities{
		Win:    clampPercent(flexNumber(w).Int()),
		Settle: clampPercent(flexNumber(st).Int()),
		Lose:   clampPercent(flexNumber(l).Int()),
	}, nil
}

// PredictOutcome estimates win, settle and lose percentages for a case
func (s *OracleService) PredictOutcome(ctx context.Context, req models.PredictOutcomeRequest) models.OutcomePrediction {
	prompt := fmt.Sprintf(`Estimate the outcome of a legal case.
Case type: %s
Jurisdiction: %s
Judge: %s
Key facts:
%s

Return {"win": <0-100>, "settle": <0-100>, "lose": <0-100>} with percentages that sum to 100.`,
		req.CaseType, req.Jurisdiction, valueOr(req.JudgeID, "unknown"), bulletList(req.KeyFacts))

	key := cacheKey(TaskOutcome, req.CaseType, req.Jurisdiction, strings.Join(req.KeyFacts, "_"), req.JudgeID)

	var probs models.OutcomeProbabilities
	source, parsed := s.run(ctx, TaskOutcome, prompt, key, func(text string) error {
		p, err := parseOutcome(text)
		probs = p
		return err
	})
	if !parsed {
		probs = models.OutcomeProbabilities{
			Win:    s.randBetween(40, 79),
			Settle: s.randBetween(20, 49),
			Lose:   s.randBetween(10, 39),
		}
	}

	return models.OutcomePrediction{
		OutcomeProbabilities: probs,
		OracleMeta:           metaFor("Prediction", source, parsed),
	}
}

// Strategy optimization

// OptimizeStrategy recommends litigation strategies for a case
func (s *OracleService) OptimizeStrategy(ctx context.Context, req models.OptimizeStrategyRequest) models.StrategyRecommendations {
	prompt := fmt.Sprintf(`Recommend litigation strategies.
Case type: %s
Jurisdiction: %s
Current strategy: %s
Key facts:
%s

Return a JSON array of 3 to 6 short, actionable recommendations as strings.`,
		req.CaseType, req.Jurisdiction, valueOr(req.CurrentStrategy, "none"), bulletList(req.KeyFacts))

	key := cacheKey(TaskStrategy, req.CaseID, req.CurrentStrategy)

	var recommendations []string
	source, parsed := s.run(ctx, TaskStrategy, prompt, key, func(text string) error {
		list, err := parseTextList(text, "recommendations", "strategies")
		recommendations = list
		return err
	})
	if !parsed {
		recommendations = append([]string(nil), defaultStrategies...)
	}

	return models.StrategyRecommendations{
		Recommendations: recommendations,
		OracleMeta:      metaFor("Strategy recommendations", source, parsed),
	}
}

func parseTextList(text string, wrapperKeys ...string) ([]string, error) {
	var raw []flexText
	if err := decodeGeneratedList(text, &raw, wrapperKeys...); err != nil {
		return nil, err
	}
	items := make([]string, 0, len(raw))
	for _, item := range raw {
		items = append(items, string(item))
	}
	items = nonEmptyStrings(items)
	if len(items) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return items, nil
}

// Strategy simulation

type simulationWire struct {
	SuccessRate      *flexNumber `json:"successRate"`
	SuccessRateSnake *flexNumber `json:"success_rate"`
	OpponentResponse struct {
		Strategy   flexText    `json:"strategy"`
		Likelihood *flexNumber `json:"likelihood"`
	} `json:"opponentResponse"`
}

// SimulateStrategy predicts how a strategy fares against an opponent
func (s *OracleService) SimulateStrategy(ctx context.Context, req models.SimulateStrategyRequest) models.StrategySimulation {
	prompt := fmt.Sprintf(`Simulate a litigation strategy against an opponent.
Strategy: %s
Opponent type: %s
Court type: %s

Return {"successRate": <0-100>, "opponentResponse": {"strategy": "<likely counter strategy>", "likelihood": <0-100>}}.`,
		req.Strategy, req.OpponentType, req.CourtType)

	key := cacheKey(TaskSimulation, req.CaseID, req.OpponentType, req.CourtType, truncate(req.Strategy, 50))

	var result models.StrategySimulation
	source, parsed := s.run(ctx, TaskSimulation, prompt, key, func(text string) error {
		var wire simulationWire
		if err := decodeGenerated(text, &wire); err != nil {
			return err
		}
		rate := wire.SuccessRate
		if rate == nil {
			rate = wire.SuccessRateSnake
		}
		if rate == nil {
			return fmt.Errorf("missing successRate")
		}

		result.SuccessRate = clampPercent(rate.Int())
		result.OpponentResponse.Strategy = strings.TrimSpace(string(wire.OpponentResponse.Strategy))
		if result.OpponentResponse.Strategy == "" {
			result.OpponentResponse.Strategy = defaultOpponentStrategy
		}
		if wire.OpponentResponse.Likelihood != nil {
			result.OpponentResponse.Likelihood = clampPercent(wire.OpponentResponse.Likelihood.Int())
		} else {
			result.OpponentResponse.Likelihood = s.randBetween(50, 89)
		}
		return nil
	})
	if !parsed {
		result.SuccessRate = s.randBetween(60, 89)
		result.OpponentResponse = models.OpponentResponse{
			Strategy:   defaultOpponentStrategy,
			Likelihood: s.randBetween(50, 89),
		}
	}

	result.OracleMeta = metaFor("Simulation", source, parsed)
	return result
}

// Regulatory forecast

type predictedChangeWire struct {
	Regulation     flexText   `json:"regulation"`
	Probability    flexNumber `json:"probability"`
	Timeline       flexText   `json:"timeline"`
	Impact         flexText   `json:"impact"`
	Description    flexText   `json:"description"`
	BusinessImpact flexText   `json:"businessImpact"`
}

type forecastWire struct {
	PredictedChanges []predictedChangeWire `json:"predictedChanges"`
	ImpactAnalysis   struct {
		OverallImpact flexText   `json:"overallImpact"`
		KeyAreas      []flexText `json:"keyAreas"`
	} `json:"impactAnalysis"`
}

// ForecastRegulations predicts upcoming regulatory changes for an industry
func (s *OracleService) ForecastRegulations(ctx context.Context, req models.ForecastRegulationsRequest) models.RegulatoryForecast {
	prompt := fmt.Sprintf(`Forecast regulatory changes.
Industry: %s
Jurisdictions: %s
Time horizon: %s

Return {"predictedChanges": [{"regulation": "", "probability": <0-100>, "timeline": "", "impact": "High|Medium|Low", "description": "", "businessImpact": ""}], "impactAnalysis": {"overallImpact": "High|Medium|Low", "keyAreas": [""]}}.`,
		req.Industry, strings.Join(req.Jurisdictions, ", "), req.TimeHorizon)

	key := cacheKey(TaskForecast, req.Industry, strings.Join(req.Jurisdictions, "_"), req.TimeHorizon)

	var result models.RegulatoryForecast
	source, parsed := s.run(ctx, TaskForecast, prompt, key, func(text string) error {
		var wire forecastWire
		if err := decodeGenerated(text, &wire); err != nil {
			return err
		}

		changes := make([]models.PredictedChange, 0, len(wire.PredictedChanges))
		for _, c := range wire.PredictedChanges {
			name := strings.TrimSpace(string(c.Regulation))
			if name == "" {
				continue
			}
			changes = append(changes, models.PredictedChange{
				Regulation:     name,
				Probability:    clampPercent(c.Probability.Int()),
				Timeline:       string(c.Timeline),
				Impact:         string(c.Impact),
				Description:    string(c.Description),
				BusinessImpact: string(c.BusinessImpact),
			})
		}
		if len(changes) == 0 {
			return fmt.Errorf("no predicted changes")
		}

		areas := make([]string, 0, len(wire.ImpactAnalysis.KeyAreas))
		for _, a := range wire.ImpactAnalysis.KeyAreas {
			areas = append(areas, string(a))
		}

		result.PredictedChanges = changes
		result.ImpactAnalysis = models.ImpactAnalysis{
			OverallImpact: valueOr(string(wire.ImpactAnalysis.OverallImpact), "Medium"),
			KeyAreas:      nonEmptyStrings(areas),
		}
		return nil
	})
	if !parsed {
		result.PredictedChanges, result.ImpactAnalysis = defaultForecast()
	}

	result.OracleMeta = metaFor("Forecast", source, parsed)
	return result
}

// Legal evolution

type evolutionWire struct {
	OverallDirection flexText   `json:"overallDirection"`
	Confidence       flexNumber `json:"confidence"`
	KeyDrivers       []flexText `json:"keyDrivers"`
}

// ModelLegalEvolution describes where a legal domain is heading
func (s *OracleService) ModelLegalEvolution(ctx context.Context, req models.LegalEvolutionRequest) models.LegalEvolutionModel {
	prompt := fmt.Sprintf(`Model how a legal domain will evolve.
Legal domain: %s
Time horizon: %s

Return {"overallDirection": "", "confidence": <0-100>, "keyDrivers": [""]}.`,
		req.LegalDomain, req.TimeHorizon)

	key := cacheKey(TaskEvolution, req.LegalDomain, req.TimeHorizon)

	var result models.LegalEvolutionModel
	source, parsed := s.run(ctx, TaskEvolution, prompt, key, func(text string) error {
		var wire evolutionWire
		if err := decodeGenerated(text, &wire); err != nil {
			return err
		}
		direction := strings.TrimSpace(string(wire.OverallDirection))
		if direction == "" {
			return fmt.Errorf("missing overallDirection")
		}

		drivers := make([]string, 0, len(wire.KeyDrivers))
		for _, d := range wire.KeyDrivers {
			drivers = append(drivers, string(d))
		}

		result.OverallDirection = direction
		result.Confidence = clampPercent(wire.Confidence.Int())
		result.KeyDrivers = nonEmptyStrings(drivers)
		return nil
	})
	if !parsed {
		result = defaultEvolution()
	}

	result.OracleMeta = metaFor("Evolution model", source, parsed)
	return result
}

// Jurisdiction optimization

type jurisdictionWire struct {
	Jurisdiction      flexText   `json:"jurisdiction"`
	Score             flexNumber `json:"score"`
	Reasons           []flexText `json:"reasons"`
	AvgResolutionTime flexText   `json:"avgResolutionTime"`
	SuccessRate       flexText   `json:"successRate"`
	Costs             flexText   `json:"costs"`
}

// OptimizeJurisdiction ranks jurisdictions for filing a case
func (s *OracleService) OptimizeJurisdiction(ctx context.Context, req models.OptimizeJurisdictionRequest) models.JurisdictionRecommendations {
	prompt := fmt.Sprintf(`Rank the best jurisdictions to file a case.
Case type: %s
Preferred outcome: %s
Key facts:
%s

Return a JSON array of {"jurisdiction": "", "score": <0-100>, "reasons": [""], "avgResolutionTime": "", "successRate": "", "costs": ""} ordered best first.`,
		req.CaseType, req.PreferredOutcome, bulletList(req.KeyFacts))

	key := cacheKey(TaskJurisdiction, req.CaseType, req.PreferredOutcome, truncate(strings.Join(req.KeyFacts, "_"), 50))

	var scores []models.JurisdictionScore
	source, parsed := s.run(ctx, TaskJurisdiction, prompt, key, func(text string) error {
		var wire []jurisdictionWire
		if err := decodeGeneratedList(text, &wire, "recommendations", "jurisdictions"); err != nil {
			return err
		}

		for _, j := range wire {
			name := strings.TrimSpace(string(j.Jurisdiction))
			if name == "" {
				continue
			}
			reasons := make([]string, 0, len(j.Reasons))
			for _, r := range j.Reasons {
				reasons = append(reasons, string(r))
			}
			scores = append(scores, models.JurisdictionScore{
				Jurisdiction:      name,
				Score:             clampPercent(j.Score.Int()),
				Reasons:           nonEmptyStrings(reasons),
				AvgResolutionTime: string(j.AvgResolutionTime),
				SuccessRate:       string(j.SuccessRate),
				Costs:             string(j.Costs),
			})
		}
		if len(scores) == 0 {
			return fmt.Errorf("no jurisdictions")
		}
		return nil
	})
	if !parsed {
		scores = defaultJurisdictions()
	}

	return models.JurisdictionRecommendations{
		Recommendations: scores,
		OracleMeta:      metaFor("Jurisdiction ranking", source, parsed),
	}
}

// Precedent simulation

type precedentWire struct {
	ImmediateImpact *struct {
		AffectedCases       flexNumber `json:"affectedCases"`
		JurisdictionalReach flexText   `json:"jurisdictionalReach"`
		LikelihoodOfAppeal  flexNumber `json:"likelihoodOfAppeal"`
	} `json:"immediateImpact"`
	LongTermImpact *struct {
		PrecedentStrength  flexText   `json:"precedentStrength"`
		EstimatedCitations flexNumber `json:"estimatedCitations"`
		InfluenceRating    flexNumber `json:"influenceRating"`
		TimeHorizon        flexText   `json:"timeHorizon"`
	} `json:"longTermImpact"`
}

// SimulatePrecedent estimates the impact of a decision becoming precedent
func (s *OracleService) SimulatePrecedent(ctx context.Context, req models.SimulatePrecedentRequest) models.PrecedentImpact {
	prompt := fmt.Sprintf(`Estimate the precedential impact of a court decision.
Jurisdiction: %s
Decision: %s

Return {"immediateImpact": {"affectedCases": <int>, "jurisdictionalReach": "", "likelihoodOfAppeal": <0-100>}, "longTermImpact": {"precedentStrength": "", "estimatedCitations": <int>, "influenceRating": <0-10>, "timeHorizon": ""}}.`,
		req.Jurisdiction, req.Decision)

	key := cacheKey(TaskPrecedent, req.CaseID, req.Jurisdiction, truncate(req.Decision, 50))

	var result models.PrecedentImpact
	source, parsed := s.run(ctx, TaskPrecedent, prompt, key, func(text string) error {
		var wire precedentWire
		if err := decodeGenerated(text, &wire); err != nil {
			return err
		}
		if wire.ImmediateImpact == nil || wire.LongTermImpact == nil {
			return fmt.Errorf("missing immediateImpact or longTermImpact")
		}

		result.ImmediateImpact = models.ImmediateImpact{
			AffectedCases:       wire.ImmediateImpact.AffectedCases.Int(),
			JurisdictionalReach: string(wire.ImmediateImpact.JurisdictionalReach),
			LikelihoodOfAppeal:  clampPercent(wire.ImmediateImpact.LikelihoodOfAppeal.Int()),
		}
		result.LongTermImpact = models.LongTermImpact{
			PrecedentStrength:  string(wire.LongTermImpact.PrecedentStrength),
			EstimatedCitations: wire.LongTermImpact.EstimatedCitations.Int(),
			InfluenceRating:    float64(wire.LongTermImpact.InfluenceRating),
			TimeHorizon:        string(wire.LongTermImpact.TimeHorizon),
		}
		return nil
	})
	if !parsed {
		result.ImmediateImpact, result.LongTermImpact = defaultPrecedentImpact()
	}

	result.OracleMeta = metaFor("Precedent simulation", source, parsed)
	return result
}

// Compliance optimization

// OptimizeCompliance recommends compliance actions for an industry
func (s *OracleService) OptimizeCompliance(ctx context.Context, req models.OptimizeComplianceRequest) models.ComplianceRecommendations {
	prompt := fmt.Sprintf(`Recommend compliance improvements.
Industry: %s
Jurisdiction: %s
Current practices:
%s

Return a JSON array of 3 to 6 prioritised recommendations as strings.`,
		req.Industry, req.Jurisdiction, bulletList(req.CurrentPractices))

	key := cacheKey(TaskCompliance, req.Industry, req.Jurisdiction)

	var recommendations []string
	source, parsed := s.run(ctx, TaskCompliance, prompt, key, func(text string) error {
		list, err := parseTextList(text, "recommendations")
		recommendations = list
		return err
	})
	if !parsed {
		recommendations = append([]string(nil), defaultComplianceRecommendations...)
	}

	return models.ComplianceRecommendations{
		Recommendations: recommendations,
		OracleMeta:      metaFor("Compliance recommendations", source, parsed),
	}
}

// Landmark cases

type landmarkWire struct {
	CaseName        flexText   `json:"caseName"`
	Probability     flexNumber `json:"probability"`
	Significance    flexText   `json:"significance"`
	Domain          flexText   `json:"domain"`
	CurrentStatus   flexText   `json:"currentStatus"`
	KeyIssues       []flexText `json:"keyIssues"`
	PotentialImpact flexText   `json:"potentialImpact"`
	Timeline        flexText   `json:"timeline"`
}

// PredictLandmarkCases lists pending cases likely to become landmark decisions
func (s *OracleService) PredictLandmarkCases(ctx context.Context, req models.PredictLandmarkRequest) models.LandmarkPredictions {
	prompt := fmt.Sprintf(`Identify pending cases likely to become landmark decisions.
Jurisdiction: %s
Areas of interest:
%s

Return a JSON array of {"caseName": "", "probability": <0-100>, "significance": "", "domain": "", "currentStatus": "", "keyIssues": [""], "potentialImpact": "", "timeline": ""}.`,
		req.Jurisdiction, bulletList(req.CaseDetails))

	key := cacheKey(TaskLandmark, req.Jurisdiction, strings.Join(req.CaseDetails, "_"))

	var predictions []models.LandmarkCase
	source, parsed := s.run(ctx, TaskLandmark, prompt, key, func(text string) error {
		var wire []landmarkWire
		if err := decodeGeneratedList(text, &wire, "predictions", "cases"); err != nil {
			return err
		}

		for _, c := range wire {
			name := strings.TrimSpace(string(c.CaseName))
			if name == "" {
				continue
			}
			issues := make([]string, 0, len(c.KeyIssues))
			for _, i := range c.KeyIssues {
				issues = append(issues, string(i))
			}
			predictions = append(predictions, models.LandmarkCase{
				CaseName:        name,
				Probability:     clampPercent(c.Probability.Int()),
				Significance:    string(c.Significance),
				Domain:          string(c.Domain),
				CurrentStatus:   string(c.CurrentStatus),
				KeyIssues:       nonEmptyStrings(issues),
				PotentialImpact: string(c.PotentialImpact),
				Timeline:        string(c.Timeline),
			})
		}
		if len(predictions) == 0 {
			return fmt.Errorf("no landmark cases")
		}
		return nil
	})
	if !parsed {
		predictions = defaultLandmarkCases()
	}

	return models.LandmarkPredictions{
		Predictions: predictions,
		OracleMeta:  metaFor("Landmark predictions", source, parsed),
	}
}

// Arbitrage alerts

type alertWire struct {
	Title            flexText   `json:"title"`
	Description      flexText   `json:"description"`
	Category         flexText   `json:"category"`
	Urgency          flexText   `json:"urgency"`
	ExpirationDate   flexText   `json:"expirationDate"`
	PotentialSavings flexText   `json:"potentialSavings"`
	ActionRequired   flexText   `json:"actionRequired"`
	Jurisdiction     flexText   `json:"jurisdiction"`
	Confidence       flexNumber `json:"confidence"`
}

// GetArbitrageAlerts generates time-limited legal opportunities. Alerts come back without ids.
func (s *OracleService) GetArbitrageAlerts(ctx context.Context, settings models.AlertSettings) models.ArbitrageOpportunities {
	prompt := fmt.Sprintf(`Find time-limited legal arbitrage opportunities.
User role: %s
Jurisdiction: %s
Legal interests:
%s

Return a JSON array of {"title": "", "description": "", "category": "", "urgency": "High|Medium|Low", "expirationDate": "YYYY-MM-DD", "potentialSavings": "", "actionRequired": "", "jurisdiction": "", "confidence": <0-100>}.`,
		settings.UserRole, settings.Jurisdiction, bulletList(settings.LegalInterests))

	key := cacheKey(TaskArbitrage, settings.UserRole, settings.Jurisdiction, strings.Join(settings.LegalInterests, "_"))

	var alerts []models.Alert
	source, parsed := s.run(ctx, TaskArbitrage, prompt, key, func(text string) error {
		var wire []alertWire
		if err := decodeGeneratedList(text, &wire, "opportunities", "alerts"); err != nil {
			return err
		}

		for _, a := range wire {
			title := strings.TrimSpace(string(a.Title))
			if title == "" {
				continue
			}
			alerts = append(alerts, models.Alert{
				Title:            title,
				Description:      string(a.Description),
				Category:         string(a.Category),
				Urgency:          string(a.Urgency),
				ExpirationDate:   string(a.ExpirationDate),
				PotentialSavings: string(a.PotentialSavings),
				ActionRequired:   string(a.ActionRequired),
				Jurisdiction:     valueOr(string(a.Jurisdiction), settings.Jurisdiction),
				Confidence:       clampPercent(a.Confidence.Int()),
			})
		}
		if len(alerts) == 0 {
			return fmt.Errorf("no opportunities")
		}
		return nil
	})
	if !parsed {
		alerts = defaultAlerts()
	}

	return models.ArbitrageOpportunities{
		Opportunities: alerts,
		OracleMeta:    metaFor("Arbitrage alerts", source, parsed),
	}
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

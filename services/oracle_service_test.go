package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator returns canned answers and counts calls
type fakeGenerator struct {
	mutex   sync.Mutex
	answer  string
	err     error
	calls   int
	prompts []string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _, prompt string) (string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}

func (f *fakeGenerator) callCount() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.calls
}

func testLLMConfig() shared.LLMConfig {
	return shared.LLMConfig{
		RequestTimeout: time.Second,
		MaxFailureRate: -1,
	}
}

func newTestOracle(generator TextGenerator) *OracleService {
	return NewOracleService(generator, NewCacheService("llm", time.Hour, 50), testLLMConfig(),
		WithRand(rand.New(rand.NewSource(7))))
}

var predictRequest = models.PredictOutcomeRequest{
	CaseType:     "contract_dispute",
	Jurisdiction: "California",
	KeyFacts:     []string{"late delivery", "signed contract"},
}

func TestPredictOutcomeParsesFencedAnswer(t *testing.T) {
	generator := &fakeGenerator{answer: "```json\n{\"win\": 70, \"settle\": \"20%\", \"lose\": 10}\n```"}
	oracle := newTestOracle(generator)

	result := oracle.PredictOutcome(context.Background(), predictRequest)

	assert.Equal(t, models.OutcomeProbabilities{Win: 70, Settle: 20, Lose: 10}, result.OutcomeProbabilities)
	assert.False(t, result.IsLLMFallback)
	assert.Equal(t, models.SourceLLM, result.Source)
	assert.Contains(t, generator.prompts[0], "late delivery")
}

func TestPredictOutcomeScalesFractions(t *testing.T) {
	oracle := newTestOracle(&fakeGenerator{answer: `{"outcomeProbabilities": {"win": 0.5, "settle": 0.3, "lose": 0.2}}`})

	result := oracle.PredictOutcome(context.Background(), predictRequest)

	assert.Equal(t, models.OutcomeProbabilities{Win: 50, Settle: 30, Lose: 20}, result.OutcomeProbabilities)
	assert.False(t, result.IsLLMFallback)
}

func TestPredictOutcomeServesCacheWithoutCallingGenerator(t *testing.T) {
	generator := &fakeGenerator{answer: `{"win": 55, "settle": 30, "lose": 15}`}
	oracle := newTestOracle(generator)

	first := oracle.PredictOutcome(context.Background(), predictRequest)
	second := oracle.PredictOutcome(context.Background(), predictRequest)

	assert.Equal(t, 1, generator.callCount())
	assert.Equal(t, first.OutcomeProbabilities, second.OutcomeProbabilities)
	assert.Equal(t, models.SourceCache, second.Source)
	assert.False(t, second.IsLLMFallback)
}

func TestPredictOutcomeDoesNotCacheUnusableAnswers(t *testing.T) {
	generator := &fakeGenerator{answer: `{"verdict": "unclear"}`}
	oracle := newTestOracle(generator)

	oracle.PredictOutcome(context.Background(), predictRequest)
	oracle.PredictOutcome(context.Background(), predictRequest)

	assert.Equal(t, 2, generator.callCount())
	assert.Equal(t, 0, oracle.Cache().Size())
}

func TestPredictOutcomeFallbackIsFlaggedAndBounded(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("answers missing an outcome key get bounded fallback values", prop.ForAll(
		func(answer string, seed int64) bool {
			oracle := NewOracleService(&fakeGenerator{answer: answer}, nil, testLLMConfig(),
				WithRand(rand.New(rand.NewSource(seed))))

			result := oracle.PredictOutcome(context.Background(), predictRequest)
			p := result.OutcomeProbabilities
			return result.IsLLMFallback &&
				result.Explanation != "" &&
				p.Win >= 40 && p.Win <= 79 &&
				p.Settle >= 20 && p.Settle <= 49 &&
				p.Lose >= 10 && p.Lose <= 39
		},
		gen.OneConstOf(
			`{"win": 60, "settle": 30}`,
			`{"settle": 30, "lose": 10}`,
			`{}`,
			`not json at all`,
			`[1, 2, 3]`,
			"",
		),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

func TestGenerationErrorServesFlaggedSampleData(t *testing.T) {
	oracle := newTestOracle(&fakeGenerator{err: errors.New("quota exceeded")})

	result := oracle.PredictOutcome(context.Background(), predictRequest)

	assert.Equal(t, models.OutcomeProbabilities{Win: 60, Settle: 25, Lose: 15}, result.OutcomeProbabilities)
	assert.True(t, result.IsLLMFallback)
	assert.Equal(t, models.SourceMock, result.Source)
	assert.Equal(t, sampleDataExplanation, result.Explanation)
	assert.Equal(t, 0, oracle.Cache().Size())
}

func TestNilGeneratorServesSampleDataForEveryTask(t *testing.T) {
	oracle := newTestOracle(nil)
	ctx := context.Background()

	assert.False(t, oracle.Enabled())

	strategies := oracle.OptimizeStrategy(ctx, models.OptimizeStrategyRequest{CaseID: "c1"})
	assert.Equal(t, defaultStrategies, strategies.Recommendations)
	assert.True(t, strategies.IsLLMFallback)

	simulation := oracle.SimulateStrategy(ctx, models.SimulateStrategyRequest{CaseID: "c1"})
	assert.Equal(t, 65, simulation.SuccessRate)
	assert.Equal(t, 70, simulation.OpponentResponse.Likelihood)

	forecast := oracle.ForecastRegulations(ctx, models.ForecastRegulationsRequest{Industry: "tech"})
	require.Len(t, forecast.PredictedChanges, 2)
	assert.Equal(t, "AI Transparency Act", forecast.PredictedChanges[0].Regulation)

	evolution := oracle.ModelLegalEvolution(ctx, models.LegalEvolutionRequest{LegalDomain: "privacy"})
	assert.Equal(t, "Increasing Digitalization", evolution.OverallDirection)

	jurisdictions := oracle.OptimizeJurisdiction(ctx, models.OptimizeJurisdictionRequest{CaseType: "ip"})
	require.Len(t, jurisdictions.Recommendations, 2)
	assert.Equal(t, "Delaware", jurisdictions.Recommendations[0].Jurisdiction)

	precedent := oracle.SimulatePrecedent(ctx, models.SimulatePrecedentRequest{CaseID: "c1"})
	assert.Equal(t, 1247, precedent.ImmediateImpact.AffectedCases)
	assert.Equal(t, 8.2, precedent.LongTermImpact.InfluenceRating)

	compliance := oracle.OptimizeCompliance(ctx, models.OptimizeComplianceRequest{Industry: "tech"})
	assert.Len(t, compliance.Recommendations, 4)

	landmark := oracle.PredictLandmarkCases(ctx, models.PredictLandmarkRequest{Jurisdiction: "Federal"})
	require.Len(t, landmark.Predictions, 2)
	assert.Equal(t, 87, landmark.Predictions[0].Probability)

	alerts := oracle.GetArbitrageAlerts(ctx, models.AlertSettings{Jurisdiction: "California", LegalInterests: []string{"tax"}})
	require.Len(t, alerts.Opportunities, 2)
	assert.Equal(t, "New Tax Credit Opportunity", alerts.Opportunities[0].Title)
	assert.True(t, alerts.IsLLMFallback)
	assert.Equal(t, models.SourceMock, alerts.Source)
}

func TestSimulateStrategyRequiresSuccessRate(t *testing.T) {
	oracle := newTestOracle(&fakeGenerator{answer: `{"opponentResponse": {"strategy": "delay", "likelihood": 40}}`})

	result := oracle.SimulateStrategy(context.Background(), models.SimulateStrategyRequest{CaseID: "c9", Strategy: "aggressive discovery"})

	assert.True(t, result.IsLLMFallback)
	assert.GreaterOrEqual(t, result.SuccessRate, 60)
	assert.LessOrEqual(t, result.SuccessRate, 89)
	assert.Equal(t, defaultOpponentStrategy, result.OpponentResponse.Strategy)
}

func TestOptimizeStrategyAcceptsWrappedList(t *testing.T) {
	oracle := newTestOracle(&fakeGenerator{answer: `Here you go: {"strategies": ["Move to dismiss", " ", "Seek injunction"]}`})

	result := oracle.OptimizeStrategy(context.Background(), models.OptimizeStrategyRequest{CaseID: "c2"})

	assert.Equal(t, []string{"Move to dismiss", "Seek injunction"}, result.Recommendations)
	assert.False(t, result.IsLLMFallback)
}

func TestGetArbitrageAlertsParsesModelAnswer(t *testing.T) {
	answer := `[{"title": "Filing fee waiver", "description": "Temporary waiver", "category": "procedure",
		"urgency": "Low", "expirationDate": "2026-01-31", "confidence": "64%"}, {"description": "no title"}]`
	oracle := newTestOracle(&fakeGenerator{answer: answer})

	result := oracle.GetArbitrageAlerts(context.Background(), models.AlertSettings{
		UserRole:       "business",
		Jurisdiction:   "Texas",
		LegalInterests: []string{"procedure"},
	})

	require.Len(t, result.Opportunities, 1)
	alert := result.Opportunities[0]
	assert.Equal(t, "Filing fee waiver", alert.Title)
	assert.Equal(t, "Texas", alert.Jurisdiction)
	assert.Equal(t, 64, alert.Confidence)
	assert.Empty(t, alert.ID)
	assert.False(t, result.IsLLMFallback)
}

func TestOpenCircuitShortCircuitsToSampleData(t *testing.T) {
	generator := &fakeGenerator{err: errors.New("unavailable")}
	cfg := shared.LLMConfig{RequestTimeout: time.Second, MaxFailureRate: 0.5, MinSamples: 2, CoolDown: time.Hour}
	oracle := NewOracleService(generator, nil, cfg)

	for i := 0; i < 5; i++ {
		result := oracle.ModelLegalEvolution(context.Background(), models.LegalEvolutionRequest{LegalDomain: "tax"})
		assert.True(t, result.IsLLMFallback)
	}

	assert.Equal(t, 2, generator.callCount())
	assert.True(t, oracle.Stats().CircuitOpen)
}

func TestExtractJSONFromProse(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("Sure! {\"a\":1} Hope that helps."))
	assert.Equal(t, `[1,2]`, extractJSON("```\n[1,2]\n```"))
	assert.Equal(t, "plain", extractJSON("plain"))
}

package services

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"testing"

	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCaseRepository struct {
	mutex sync.Mutex
	cases map[uuid.UUID][]models.Case
	err   error
}

func newMemoryCaseRepository() *memoryCaseRepository {
	return &memoryCaseRepository{cases: make(map[uuid.UUID][]models.Case)}
}

func (r *memoryCaseRepository) InsertCase(_ context.Context, userID uuid.UUID, c *models.Case) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.err != nil {
		return r.err
	}
	r.cases[userID] = append([]models.Case{*c}, r.cases[userID]...)
	return nil
}

func (r *memoryCaseRepository) ListCases(_ context.Context, userID uuid.UUID, limit int) ([]models.Case, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	cases := append([]models.Case{}, r.cases[userID]...)
	if len(cases) > limit {
		cases = cases[:limit]
	}
	return cases, nil
}

func guestClaims() *Claims {
	return &Claims{UserID: "guest_1700000000000", Email: models.GuestEmail, Role: models.RoleIndividual, IsGuest: true}
}

func accountClaims() *Claims {
	return &Claims{UserID: uuid.New().String(), Email: "a@b.co", Role: models.RoleLawyer}
}

func TestSubmitPredictionValidation(t *testing.T) {
	cases := NewCaseService(newTestOracle(nil), nil, NewMemorySessionStore())
	ctx := context.Background()

	_, err := cases.SubmitPrediction(ctx, guestClaims(), models.PredictOutcomeRequest{Jurisdiction: "CA", KeyFacts: []string{"x"}})
	assert.Equal(t, http.StatusBadRequest, shared.StatusForError(err))

	_, err = cases.SubmitPrediction(ctx, guestClaims(), models.PredictOutcomeRequest{CaseType: "tort", Jurisdiction: "CA", KeyFacts: []string{" ", ""}})
	assert.Equal(t, http.StatusBadRequest, shared.StatusForError(err))
}

func TestSubmitPredictionCachesGuestCases(t *testing.T) {
	sessions := NewMemorySessionStore()
	cases := NewCaseService(newTestOracle(nil), newMemoryCaseRepository(), sessions)
	ctx := context.Background()
	claims := guestClaims()

	submission, err := cases.SubmitPrediction(ctx, claims, predictRequest)
	require.NoError(t, err)
	assert.False(t, submission.Persisted)
	assert.True(t, submission.IsLLMFallback)
	assert.GreaterOrEqual(t, submission.ConfidenceScore, 80)
	assert.LessOrEqual(t, submission.ConfidenceScore, 99)

	recent, source := cases.GetCases(ctx, claims)
	assert.Equal(t, CasesSourceCache, source)
	require.Len(t, recent, 1)
	assert.Equal(t, submission.CaseID, recent[0].ID)
	assert.Equal(t, "contract_dispute - California", recent[0].Title)
}

func TestSubmitPredictionPersistsAccountCases(t *testing.T) {
	repo := newMemoryCaseRepository()
	cases := NewCaseService(newTestOracle(&fakeGenerator{answer: `{"win": 70, "settle": 20, "lose": 10}`}), repo, NewMemorySessionStore())
	ctx := context.Background()
	claims := accountClaims()

	submission, err := cases.SubmitPrediction(ctx, claims, predictRequest)
	require.NoError(t, err)
	assert.True(t, submission.Persisted)
	assert.False(t, submission.IsLLMFallback)

	recent, source := cases.GetCases(ctx, claims)
	assert.Equal(t, CasesSourceDatabase, source)
	require.Len(t, recent, 1)
	assert.Equal(t, models.OutcomeProbabilities{Win: 70, Settle: 20, Lose: 10}, recent[0].Prediction.OutcomeProbabilities)
}

func TestCachedCasesAreCapped(t *testing.T) {
	cases := NewCaseService(newTestOracle(nil), nil, NewMemorySessionStore())
	ctx := context.Background()
	claims := guestClaims()

	var lastID string
	for i := 0; i < models.MaxCachedCases+3; i++ {
		submission, err := cases.SubmitPrediction(ctx, claims, predictRequest)
		require.NoError(t, err)
		lastID = submission.CaseID
	}

	recent, _ := cases.GetCases(ctx, claims)
	require.Len(t, recent, models.MaxCachedCases)
	assert.Equal(t, lastID, recent[0].ID)
}

func TestDashboardServesCachedCasesWhenDatabaseFails(t *testing.T) {
	repo := newMemoryCaseRepository()
	sessions := NewMemorySessionStore()
	cases := NewCaseService(newTestOracle(nil), repo, sessions)
	ctx := context.Background()
	claims := accountClaims()

	repo.err = errors.New("connection refused")
	_, err := cases.SubmitPrediction(ctx, claims, models.PredictOutcomeRequest{
		CaseType:     "employment",
		Jurisdiction: "Texas",
		KeyFacts:     []string{"wrongful termination"},
	})
	require.NoError(t, err)

	alerts := []models.Alert{{ID: "a1", Title: "Filing window"}}
	require.NoError(t, sessions.Set(ctx, claims.UserID, models.SessionKeyAlerts, alerts))

	dashboard := cases.Dashboard(ctx, claims)
	assert.Equal(t, CasesSourceCache, dashboard.CasesSource)
	require.Len(t, dashboard.RecentCases, 1)
	assert.Equal(t, "employment - Texas", dashboard.RecentCases[0].Title)
	assert.Equal(t, alerts, dashboard.Alerts)
}

func TestPredictionFallbackStaysInBounds(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("submissions without a model answer stay within the fallback ranges", prop.ForAll(
		func(seed int64, caseType string) bool {
			oracle := NewOracleService(&fakeGenerator{err: errors.New("down")}, nil, testLLMConfig(),
				WithRand(rand.New(rand.NewSource(seed))))
			cases := NewCaseService(oracle, nil, NewMemorySessionStore())

			submission, err := cases.SubmitPrediction(context.Background(), guestClaims(), models.PredictOutcomeRequest{
				CaseType:     caseType,
				Jurisdiction: "Federal",
				KeyFacts:     []string{"fact"},
			})
			if err != nil {
				return false
			}
			p := submission.OutcomeProbabilities
			return submission.IsLLMFallback &&
				p.Win >= 0 && p.Win <= 100 &&
				p.Settle >= 0 && p.Settle <= 100 &&
				p.Lose >= 0 && p.Lose <= 100 &&
				submission.ConfidenceScore >= 80 && submission.ConfidenceScore <= 99
		},
		gen.Int64(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

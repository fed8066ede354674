package models

// GenerationSource tells where a generated payload came from
type GenerationSource string

const (
	SourceCache GenerationSource = "cache"
	SourceLLM   GenerationSource = "llm"
	SourceMock  GenerationSource = "mock"
)

// OracleMeta is attached to every generated result
type OracleMeta struct {
	IsLLMFallback bool             `json:"isLLMFallback"`
	Explanation   string           `json:"explanation,omitempty"`
	Source        GenerationSource `json:"source"`
}

// Requests

type PredictOutcomeRequest struct {
	CaseType     string   `json:"case_type"`
	Jurisdiction string   `json:"jurisdiction"`
	KeyFacts     []string `json:"key_facts"`
	JudgeID      string   `json:"judge_id,omitempty"`
}

type OptimizeStrategyRequest struct {
	CaseID          string   `json:"case_id"`
	CaseType        string   `json:"case_type"`
	Jurisdiction    string   `json:"jurisdiction"`
	KeyFacts        []string `json:"key_facts"`
	CurrentStrategy string   `json:"current_strategy"`
}

type SimulateStrategyRequest struct {
	CaseID       string `json:"case_id"`
	Strategy     string `json:"strategy"`
	OpponentType string `json:"opponent_type"`
	CourtType    string `json:"court_type"`
}

type ForecastRegulationsRequest struct {
	Industry      string   `json:"industry"`
	Jurisdictions []string `json:"jurisdictions"`
	TimeHorizon   string   `json:"time_horizon"`
}

type LegalEvolutionRequest struct {
	LegalDomain string `json:"legal_domain"`
	TimeHorizon string `json:"time_horizon"`
}

type OptimizeJurisdictionRequest struct {
	CaseType         string   `json:"case_type"`
	KeyFacts         []string `json:"key_facts"`
	PreferredOutcome string   `json:"preferred_outcome"`
}

type SimulatePrecedentRequest struct {
	CaseID       string `json:"case_id"`
	Decision     string `json:"decision"`
	Jurisdiction string `json:"jurisdiction"`
}

type OptimizeComplianceRequest struct {
	Industry         string   `json:"industry"`
	Jurisdiction     string   `json:"jurisdiction"`
	CurrentPractices []string `json:"current_practices"`
}

type PredictLandmarkRequest struct {
	Jurisdiction string   `json:"jurisdiction"`
	CaseDetails  []string `json:"case_details"`
}

// Results

type OutcomePrediction struct {
	OutcomeProbabilities
	OracleMeta
}

type StrategyRecommendations struct {
	Recommendations []string `json:"recommendations"`
	OracleMeta
}

type OpponentResponse struct {
	Strategy   string `json:"strategy"`
	Likelihood int    `json:"likelihood"`
}

type StrategySimulation struct {
	SuccessRate      int              `json:"successRate"`
	OpponentResponse OpponentResponse `json:"opponentResponse"`
	OracleMeta
}

type PredictedChange struct {
	Regulation     string `json:"regulation"`
	Probability    int    `json:"probability"`
	Timeline       string `json:"timeline"`
	Impact         string `json:"impact"`
	Description    string `json:"description,omitempty"`
	BusinessImpact string `json:"businessImpact,omitempty"`
}

type ImpactAnalysis struct {
	OverallImpact string   `json:"overallImpact"`
	KeyAreas      []string `json:"keyAreas"`
}

type RegulatoryForecast struct {
	PredictedChanges []PredictedChange `json:"predictedChanges"`
	ImpactAnalysis   ImpactAnalysis    `json:"impactAnalysis"`
	OracleMeta
}

type LegalEvolutionModel struct {
	OverallDirection string   `json:"overallDirection"`
	Confidence       int      `json:"confidence"`
	KeyDrivers       []string `json:"keyDrivers"`
	OracleMeta
}

type JurisdictionScore struct {
	Jurisdiction      string   `json:"jurisdiction"`
	Score             int      `json:"score"`
	Reasons           []string `json:"reasons,omitempty"`
	AvgResolutionTime string   `json:"avgResolutionTime,omitempty"`
	SuccessRate       string   `json:"successRate,omitempty"`
	Costs             string   `json:"costs,omitempty"`
}

type JurisdictionRecommendations struct {
	Recommendations []JurisdictionScore `json:"recommendations"`
	OracleMeta
}

type ImmediateImpact struct {
	AffectedCases       int    `json:"affectedCases"`
	JurisdictionalReach string `json:"jurisdictionalReach"`
	LikelihoodOfAppeal  int    `json:"likelihoodOfAppeal"`
}

type LongTermImpact struct {
	PrecedentStrength  string  `json:"precedentStrength"`
	EstimatedCitations int     `json:"estimatedCitations"`
	InfluenceRating    float64 `json:"influenceRating"`
	TimeHorizon        string  `json:"timeHorizon"`
}

type PrecedentImpact struct {
	ImmediateImpact ImmediateImpact `json:"immediateImpact"`
	LongTermImpact  LongTermImpact  `json:"longTermImpact"`
	OracleMeta
}

type ComplianceRecommendations struct {
	Recommendations []string `json:"recommendations"`
	OracleMeta
}

type LandmarkCase struct {
	CaseName        string   `json:"caseName"`
	Probability     int      `json:"probability"`
	Significance    string   `json:"significance"`
	Domain          string   `json:"domain,omitempty"`
	CurrentStatus   string   `json:"currentStatus,omitempty"`
	KeyIssues       []string `json:"keyIssues,omitempty"`
	PotentialImpact string   `json:"potentialImpact,omitempty"`
	Timeline        string   `json:"timeline,omitempty"`
}

type LandmarkPredictions struct {
	Predictions []LandmarkCase `json:"predictions"`
	OracleMeta
}

type ArbitrageOpportunities struct {
	Opportunities []Alert `json:"opportunities"`
	OracleMeta
}

package services

import (
	"encoding/json"

	"github.com/fenilmodi00/legal-oracle-backend/models"
)

// OracleTask identifies one kind of generated analysis
type OracleTask string

const (
	TaskOutcome      OracleTask = "outcome"
	TaskStrategy     OracleTask = "strategy"
	TaskSimulation   OracleTask = "simulation"
	TaskForecast     OracleTask = "forecast"
	TaskEvolution    OracleTask = "evolution"
	TaskJurisdiction OracleTask = "jurisdiction"
	TaskPrecedent    OracleTask = "precedent"
	TaskCompliance   OracleTask = "compliance"
	TaskLandmark     OracleTask = "landmark"
	TaskArbitrage    OracleTask = "arbitrage"
)

var defaultStrategies = []string{
	"Gather evidence of communications and contract terms",
	"Consider mediation to avoid litigation costs",
	"Consult an expert on supplier obligations",
	"Prepare for potential settlement negotiations",
}

var defaultComplianceRecommendations = []string{
	"Implement comprehensive GDPR compliance program",
	"Establish SOC 2 Type II compliance",
	"Update employee handbook and policies",
	"Implement regular compliance training",
}

const defaultOpponentStrategy = "Counter-narrative with procedural challenges"

func defaultForecast() ([]models.PredictedChange, models.ImpactAnalysis) {
	return []models.PredictedChange{
			{
				Regulation:     "AI Transparency Act",
				Probability:    85,
				Timeline:       "Q2 2025",
				Impact:         "High",
				Description:    "New requirements for AI system transparency and explainability",
				BusinessImpact: "Mandatory AI auditing and documentation processes",
			},
			{
				Regulation:     "Digital Privacy Enhancement",
				Probability:    72,
				Timeline:       "Q4 2025",
				Impact:         "Medium",
				Description:    "Stricter data collection and processing requirements",
				BusinessImpact: "Updated consent mechanisms and data handling procedures",
			},
		}, models.ImpactAnalysis{
			OverallImpact: "High",
			KeyAreas:      []string{"Compliance", "Product Development", "Data Governance"},
		}
}

func defaultEvolution() models.LegalEvolutionModel {
	return models.LegalEvolutionModel{
		OverallDirection: "Increasing Digitalization",
		Confidence:       87,
		KeyDrivers: []string{
			"Technological advancement",
			"Changing social norms",
			"Economic pressures",
			"International harmonization",
		},
	}
}

func defaultJurisdictions() []models.JurisdictionScore {
	return []models.JurisdictionScore{
		{
			Jurisdiction: "Delaware",
			Score:        92,
			Reasons: []string{
				"Highly experienced corporate courts",
				"Favorable business law precedents",
				"Efficient case processing",
				"Strong plaintiff protection",
			},
			AvgResolutionTime: "8-12 months",
			SuccessRate:       "78%",
			Costs:             "Medium-High",
		},
		{
			Jurisdiction: "New York",
			Score:        87,
			Reasons: []string{
				"Comprehensive commercial courts",
				"Strong enforcement mechanisms",
				"International recognition",
				"Experienced counsel availability",
			},
			AvgResolutionTime: "12-18 months",
			SuccessRate:       "72%",
			Costs:             "High",
		},
	}
}

func defaultPrecedentImpact() (models.ImmediateImpact, models.LongTermImpact) {
	return models.ImmediateImpact{
			AffectedCases:       1247,
			JurisdictionalReach: "Statewide",
			LikelihoodOfAppeal:  35,
		}, models.LongTermImpact{
			PrecedentStrength:  "Strong",
			EstimatedCitations: 450,
			InfluenceRating:    8.2,
			TimeHorizon:        "5-10 years",
		}
}

func defaultLandmarkCases() []models.LandmarkCase {
	return []models.LandmarkCase{
		{
			CaseName:        "TechCorp v. Privacy Coalition",
			Probability:     87,
			Significance:    "Very High",
			Domain:          "Privacy Rights",
			CurrentStatus:   "Pending Supreme Court Review",
			KeyIssues:       []string{"AI surveillance constitutionality", "Fourth Amendment digital privacy", "Corporate data collection limits"},
			PotentialImpact: "Could establish fundamental digital privacy rights framework",
			Timeline:        "Decision expected Q2 2025",
		},
		{
			CaseName:        "Workers United v. AutomationCorp",
			Probability:     73,
			Significance:    "High",
			Domain:          "Employment Law",
			CurrentStatus:   "Circuit Court Appeal",
			KeyIssues:       []string{"AI displacement compensation", "Retraining obligations", "Collective bargaining rights"},
			PotentialImpact: "May define employer obligations in AI automation",
			Timeline:        "Decision expected Q4 2025",
		},
	}
}

// defaultAlerts have no id or creation time; AlertService assigns both
func defaultAlerts() []models.Alert {
	return []models.Alert{
		{
			Title:            "New Tax Credit Opportunity",
			Description:      "California AB-123 creates temporary R&D tax credits for AI companies",
			Category:         "tax",
			Urgency:          "High",
			ExpirationDate:   "2025-03-15",
			PotentialSavings: "$50,000 - $200,000",
			ActionRequired:   "File application by March 1, 2025",
			Jurisdiction:     "California",
			Confidence:       92,
		},
		{
			Title:            "Contract Law Loophole",
			Description:      "Recent ruling creates favorable interpretation for force majeure clauses",
			Category:         "contracts",
			Urgency:          "Medium",
			ExpirationDate:   "2025-06-30",
			PotentialSavings: "Risk mitigation",
			ActionRequired:   "Review and update existing contracts",
			Jurisdiction:     "Federal",
			Confidence:       78,
		},
	}
}

// mockPayload returns the deterministic sample answer for a task
func mockPayload(task OracleTask) interface{} {
	switch task {
	case TaskOutcome:
		return models.OutcomeProbabilities{Win: 60, Settle: 25, Lose: 15}
	case TaskStrategy:
		return defaultStrategies
	case TaskSimulation:
		return map[string]interface{}{
			"successRate": 65,
			"opponentResponse": models.OpponentResponse{
				Strategy:   defaultOpponentStrategy,
				Likelihood: 70,
			},
		}
	case TaskForecast:
		changes, analysis := defaultForecast()
		return map[string]interface{}{"predictedChanges": changes, "impactAnalysis": analysis}
	case TaskEvolution:
		return defaultEvolution()
	case TaskJurisdiction:
		return defaultJurisdictions()
	case TaskPrecedent:
		immediate, longTerm := defaultPrecedentImpact()
		return map[string]interface{}{"immediateImpact": immediate, "longTermImpact": longTerm}
	case TaskCompliance:
		return defaultComplianceRecommendations
	case TaskLandmark:
		return defaultLandmarkCases()
	case TaskArbitrage:
		return defaultAlerts()
	default:
		return map[string]string{"message": "No sample data available for this analysis."}
	}
}

func mockResponse(task OracleTask) string {
	b, err := json.Marshal(mockPayload(task))
	if err != nil {
		return "{}"
	}
	return string(b)
}

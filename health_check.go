//go:build ignore

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/config"
	"github.com/fenilmodi00/legal-oracle-backend/database"
	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/services"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
)

func main() {
	fmt.Printf("🏥 Legal Oracle Health Check - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Println(strings.Repeat("=", 50))

	cfg := config.LoadConfig()
	unified := shared.NewDefaultUnifiedConfiguration()
	unified.CourtListener.BaseURL = cfg.CourtListenerAPIRoot
	unified.Datasets.BaseURL = cfg.DatasetsServerURL
	unified.ValidateAndApplyDefaults()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	healthScore := 0
	totalTests := 4

	// Test 1: CourtListener
	fmt.Print("⚖️  CourtListener API: ")
	factory := shared.NewHTTPClientFactory(unified.CourtListener.HTTPRequestTimeout)
	defer factory.CleanupAllClients()
	courtListener := services.NewCourtListenerService(unified.CourtListener, cfg.CourtListenerToken, factory)
	if result, err := courtListener.SearchOpinions(ctx, models.OpinionSearchParams{Query: "contract"}); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Printf("✅ OK (%d opinions)\n", result.Count)
		healthScore++
	}

	// Test 2: Datasets server
	fmt.Print("📚 Datasets server: ")
	datasets := services.NewDatasetService(unified.Datasets, nil)
	if subsets, err := datasets.Subsets(ctx, "pile_of_law"); err != nil || len(subsets) == 0 {
		fmt.Printf("❌ FAILED (%d subsets, %v)\n", len(subsets), err)
	} else {
		fmt.Printf("✅ OK (%d pile-of-law subsets)\n", len(subsets))
		healthScore++
	}

	// Test 3: Database
	fmt.Print("🗄️  Database: ")
	if cfg.DatabaseURL == "" {
		fmt.Println("⚠️  SKIPPED (DATABASE_URL not set)")
	} else if err := database.Connect(cfg.DatabaseURL); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		if missing, err := database.MissingTables(ctx, database.DB); err != nil {
			fmt.Printf("❌ FAILED (%v)\n", err)
		} else if len(missing) > 0 {
			fmt.Printf("⚠️  DEGRADED (missing tables: %s)\n", strings.Join(missing, ", "))
		} else {
			fmt.Println("✅ OK")
			healthScore++
		}
		database.Close()
	}

	// Test 4: Language model
	fmt.Print("🤖 Gemini: ")
	if !cfg.HasGeminiKey() {
		fmt.Println("⚠️  SKIPPED (GEMINI_API_KEY not set, sample data will be served)")
	} else if gemini, err := services.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		if _, err := gemini.GenerateContent(ctx, "Answer with a JSON object.", `Return {"ok": true}`); err != nil {
			fmt.Printf("❌ FAILED (%v)\n", err)
		} else {
			fmt.Println("✅ OK")
			healthScore++
		}
		gemini.Close()
	}

	// Overall health
	fmt.Println(strings.Repeat("-", 50))
	healthPercent := float64(healthScore) / float64(totalTests) * 100

	if healthScore == totalTests {
		fmt.Printf("🎉 SYSTEM HEALTHY: %d/%d checks passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else if healthScore >= totalTests/2 {
		fmt.Printf("⚠️  SYSTEM DEGRADED: %d/%d checks passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else {
		fmt.Printf("❌ SYSTEM UNHEALTHY: %d/%d checks passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	}
}

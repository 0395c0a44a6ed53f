package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v2"

	"finanalyzer/pkg/api/analyzer"
	"finanalyzer/pkg/core/config"
	"finanalyzer/pkg/core/llm"
	"finanalyzer/pkg/core/pipeline"
	"finanalyzer/pkg/core/summarize"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Analyzer settings. A missing file keeps the built-in defaults.
	cfg, err := config.Load("config/analyzer.yaml")
	if err != nil {
		fmt.Printf("[WARNING] Failed to load analyzer config: %v\n", err)
		cfg = config.Default()
	}

	// Model routing for the LLM-backed commentary.
	var llmCfg llm.Config
	if raw, err := os.ReadFile("config/models.yaml"); err == nil {
		if err := yaml.Unmarshal(raw, &llmCfg); err != nil {
			fmt.Printf("[WARNING] Failed to parse config/models.yaml: %v\n", err)
		}
	}
	llmMgr := llm.NewManager(llmCfg)

	// All analyzer endpoints share one orchestrator. Its summarizer runs
	// through the routed provider so config/models.yaml picks the model.
	analyzer.InitHandler(cfg)
	orch := pipeline.New(cfg)
	orch.SetSummarizer(summarize.New(llmMgr.GetProvider("summarization")))
	analyzer.SetOrchestrator(orch)

	// Analyzer endpoints
	http.HandleFunc("/api/analyzer/status", analyzer.HandleStatus)
	http.HandleFunc("/api/analyzer/classify", analyzer.HandleClassify)
	http.HandleFunc("/api/analyzer/extract", analyzer.HandleExtract)
	http.HandleFunc("/api/analyzer/model", analyzer.HandleBuildModel)
	http.HandleFunc("/api/analyzer/forecast", analyzer.HandleForecast)
	http.HandleFunc("/api/analyzer/advice", analyzer.HandleAdvice)

	fmt.Println("API server starting on :8080...")
	fmt.Println("Available endpoints:")
	fmt.Println("  - GET  /api/analyzer/status")
	fmt.Println("  - POST /api/analyzer/classify")
	fmt.Println("  - POST /api/analyzer/extract")
	fmt.Println("  - POST /api/analyzer/model")
	fmt.Println("  - POST /api/analyzer/forecast")
	fmt.Println("  - POST /api/analyzer/advice")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}

// Command budget asks the budget agent to allocate a total across a list of
// places and saves the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"

	"github.com/jennet-zamanova/travel-ai/internal/config"
	"github.com/jennet-zamanova/travel-ai/internal/llm"
	applog "github.com/jennet-zamanova/travel-ai/internal/log"
)

const requestTimeout = 2 * time.Minute

func main() {
	places := flag.String("places", "Senso-ji,Tsukiji Outer Market,teamLab Planets", "comma-separated place names")
	budget := flag.Float64("budget", 500, "total budget in USD")
	out := flag.String("out", "budget_output.json", "output file name, written under OUTPUT_DIR")
	flag.Parse()

	if err := run(*places, *budget, *out); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(placesArg string, totalBudget float64, out string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "failure loading configuration")
	}

	logger, err := applog.NewLogger(cfg.LogLevel)
	if err != nil {
		return eris.Wrap(err, "failure initialising logger")
	}

	client, err := llm.NewClient(llm.ClientOptions{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMEndpoint,
		Logger:  logger,
	})
	if err != nil {
		return eris.Wrap(err, "creating llm client")
	}

	if len(cfg.LLMModels) == 0 {
		return eris.New("LLM_MODELS must include at least one model name")
	}

	budgeterModel := cfg.LLMModels[0]
	if len(cfg.LLMModels) > 1 {
		budgeterModel = cfg.LLMModels[1]
	}

	budgeter, err := llm.NewBudgeter(llm.BudgeterOptions{
		Client: client,
		Model:  budgeterModel,
	})
	if err != nil {
		return eris.Wrap(err, "initialising budgeter")
	}

	places := strings.Split(placesArg, ",")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	items, err := budgeter.Allocate(ctx, places, totalBudget)
	if err != nil {
		return eris.Wrap(err, "allocating budget")
	}

	allocated := 0.0
	for _, item := range items {
		allocated += item.Amount
	}

	output := struct {
		Items       []llm.BudgetLineItem `json:"items"`
		Allocated   float64              `json:"allocated"`
		TotalBudget float64              `json:"total_budget"`
	}{
		Items:       items,
		Allocated:   allocated,
		TotalBudget: totalBudget,
	}

	encoded, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encoding allocation")
	}

	fmt.Println(string(encoded))

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return eris.Wrapf(err, "creating output directory: %s", cfg.OutputDir)
	}

	path := filepath.Join(cfg.OutputDir, out)
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return eris.Wrapf(err, "writing output file: %s", path)
	}

	fmt.Printf("saved allocation of $%.2f across %d places to %s\n", allocated, len(items), path)
	return nil
}

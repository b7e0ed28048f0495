// Command recommend asks the recommendation agent for places matching a
// travel style and saves the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"

	"github.com/jennet-zamanova/travel-ai/internal/config"
	"github.com/jennet-zamanova/travel-ai/internal/llm"
	applog "github.com/jennet-zamanova/travel-ai/internal/log"
)

const requestTimeout = 2 * time.Minute

func main() {
	city := flag.String("city", "Tokyo", "destination city")
	style := flag.String("style", "foodie", "travel style preference")
	out := flag.String("out", "recommendations.json", "output file name, written under OUTPUT_DIR")
	flag.Parse()

	if err := run(*city, *style, *out); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(city, style, out string) error {
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

	recommender, err := llm.NewRecommender(llm.RecommenderOptions{
		Client: client,
		Model:  cfg.LLMModels[0],
	})
	if err != nil {
		return eris.Wrap(err, "initialising recommender")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	places, err := recommender.Recommend(ctx, city, style)
	if err != nil {
		return eris.Wrapf(err, "recommending %s places in %s", style, city)
	}

	encoded, err := json.MarshalIndent(places, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encoding recommendations")
	}

	fmt.Println(string(encoded))

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return eris.Wrapf(err, "creating output directory: %s", cfg.OutputDir)
	}

	path := filepath.Join(cfg.OutputDir, out)
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return eris.Wrapf(err, "writing output file: %s", path)
	}

	fmt.Printf("saved %d recommendations to %s\n", len(places), path)
	return nil
}

// Command itinerary asks the planner agent for a day-by-day trip plan and
// saves the result as JSON.
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
	cities := flag.String("cities", "Tokyo,Kyoto", "comma-separated cities in visit order")
	places := flag.String("places", "", "comma-separated places to include")
	preferences := flag.String("preferences", "", "free-text traveler preferences")
	transport := flag.String("transport", "train,walking", "comma-separated allowed transport modes")
	travelers := flag.Int("travelers", 1, "number of travelers")
	out := flag.String("out", "itinerary.json", "output file name, written under OUTPUT_DIR")
	flag.Parse()

	if err := run(*cities, *places, *preferences, *transport, *travelers, *out); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(citiesArg, placesArg, preferences, transportArg string, travelers int, out string) error {
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

	plannerModel := cfg.LLMModels[0]
	if len(cfg.LLMModels) > 2 {
		plannerModel = cfg.LLMModels[2]
	}

	planner, err := llm.NewPlanner(llm.PlannerOptions{
		Client: client,
		Model:  plannerModel,
	})
	if err != nil {
		return eris.Wrap(err, "initialising planner")
	}

	request := llm.ItineraryRequest{
		Places:         splitList(placesArg),
		Preferences:    preferences,
		TransportModes: splitList(transportArg),
		Travelers:      travelers,
	}
	for _, city := range splitList(citiesArg) {
		request.Stops = append(request.Stops, llm.ItineraryStop{City: city})
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	itinerary, err := planner.Plan(ctx, request)
	if err != nil {
		return eris.Wrap(err, "planning itinerary")
	}

	encoded, err := json.MarshalIndent(itinerary, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encoding itinerary")
	}

	fmt.Println(string(encoded))

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return eris.Wrapf(err, "creating output directory: %s", cfg.OutputDir)
	}

	path := filepath.Join(cfg.OutputDir, out)
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return eris.Wrapf(err, "writing output file: %s", path)
	}

	fmt.Printf("saved %d itinerary items to %s\n", len(itinerary.Items), path)
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

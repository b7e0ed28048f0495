package trip

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/jennet-zamanova/travel-ai/internal/llm"
	"github.com/jennet-zamanova/travel-ai/internal/metrics"
)

// Service defines higher-level planning operations built on top of the
// repository and the LLM agents.
type Service interface {
	Recommend(ctx context.Context, city string, style string) ([]llm.PlaceRecommendation, error)
	Allocate(ctx context.Context, places []string, totalBudget float64) (*BudgetPlan, error)
	PlanItinerary(ctx context.Context, request llm.ItineraryRequest) (*llm.Itinerary, error)
	RecentRecommendations(ctx context.Context, limit int) ([]Recommendation, error)
	RecentAllocations(ctx context.Context, limit int) ([]Allocation, error)
	RecentItineraries(ctx context.Context, limit int) ([]Itinerary, error)
	CountPlans(ctx context.Context) (int64, error)
}

// BudgetPlan is the result of a budget allocation request.
type BudgetPlan struct {
	Items       []llm.BudgetLineItem `json:"items"`
	Allocated   float64              `json:"allocated"`
	TotalBudget float64              `json:"total_budget"`
}

// ErrInvalidInput marks caller errors rejected before any model call.
var ErrInvalidInput = eris.New("invalid input")

const (
	defaultListLimit = 10
	maxListLimit     = 50

	// budgetTolerance bounds how far the model may overshoot the requested
	// total before the allocation is rejected as malformed.
	budgetTolerance = 0.005
)

type service struct {
	repo        Repository
	recommender llm.Recommender
	budgeter    llm.Budgeter
	planner     llm.Planner
	logger      *logrus.Logger
	sentryHub   *sentry.Hub
	collector   *metrics.Collector
}

var _ Service = (*service)(nil)

// NewService wires the trip service with its dependencies.
func NewService(repo Repository, recommender llm.Recommender, budgeter llm.Budgeter, planner llm.Planner, logger *logrus.Logger, hub *sentry.Hub, collector *metrics.Collector) (Service, error) {
	if repo == nil {
		return nil, eris.New("trip repository is required")
	}
	if recommender == nil {
		return nil, eris.New("llm recommender is required")
	}
	if budgeter == nil {
		return nil, eris.New("llm budgeter is required")
	}
	if planner == nil {
		return nil, eris.New("llm planner is required")
	}

	return &service{
		repo:        repo,
		recommender: recommender,
		budgeter:    budgeter,
		planner:     planner,
		logger:      logger,
		sentryHub:   hub,
		collector:   collector,
	}, nil
}

func (s *service) Recommend(ctx context.Context, city string, style string) ([]llm.PlaceRecommendation, error) {
	trimmedCity := strings.TrimSpace(city)
	if trimmedCity == "" {
		return nil, eris.Wrap(ErrInvalidInput, "city is required")
	}

	trimmedStyle := strings.TrimSpace(style)
	if trimmedStyle == "" {
		return nil, eris.Wrap(ErrInvalidInput, "style is required")
	}

	fields := logrus.Fields{"city": trimmedCity, "style": trimmedStyle}

	start := time.Now()
	places, err := s.recommender.Recommend(ctx, trimmedCity, trimmedStyle)
	if err != nil {
		s.observe("recommender", err, time.Since(start))
		s.recordError(fields, err, "requesting place recommendations")
		return nil, eris.Wrapf(err, "recommending places in %s", trimmedCity)
	}
	s.observe("recommender", nil, time.Since(start))

	encoded, err := json.Marshal(places)
	if err != nil {
		s.recordError(fields, err, "encoding recommendation for persistence")
		return nil, eris.Wrap(err, "encoding recommendation")
	}

	record := &Recommendation{
		City:   trimmedCity,
		Style:  strings.ToLower(trimmedStyle),
		Places: string(encoded),
	}
	if err := s.repo.SaveRecommendation(ctx, record); err != nil {
		s.recordError(fields, err, "persisting recommendation")
		return nil, eris.Wrap(err, "persisting recommendation")
	}

	return places, nil
}

func (s *service) Allocate(ctx context.Context, places []string, totalBudget float64) (*BudgetPlan, error) {
	cleaned := make([]string, 0, len(places))
	for _, place := range places {
		if trimmed := strings.TrimSpace(place); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	if len(cleaned) == 0 {
		return nil, eris.Wrap(ErrInvalidInput, "at least one place is required")
	}

	if totalBudget <= 0 {
		return nil, eris.Wrap(ErrInvalidInput, "total budget must be positive")
	}

	fields := logrus.Fields{"places": len(cleaned), "total_budget": totalBudget}

	start := time.Now()
	items, err := s.budgeter.Allocate(ctx, cleaned, totalBudget)
	if err != nil {
		s.observe("budgeter", err, time.Since(start))
		s.recordError(fields, err, "requesting budget allocation")
		return nil, eris.Wrap(err, "allocating budget")
	}
	s.observe("budgeter", nil, time.Since(start))

	allocated := 0.0
	for _, item := range items {
		allocated += item.Amount
	}

	// The model is not trusted to respect the requested total. Under-allocation
	// is reported to the caller; over-allocation beyond tolerance is malformed
	// output.
	if allocated > totalBudget*(1+budgetTolerance) {
		err := eris.Wrapf(llm.ErrParse, "allocated %.2f exceeds total budget %.2f", allocated, totalBudget)
		s.recordError(fields, err, "validating budget allocation")
		return nil, err
	}

	encoded, err := json.Marshal(items)
	if err != nil {
		s.recordError(fields, err, "encoding allocation for persistence")
		return nil, eris.Wrap(err, "encoding allocation")
	}

	record := &Allocation{
		TotalBudget: totalBudget,
		Allocated:   allocated,
		Items:       string(encoded),
	}
	if err := s.repo.SaveAllocation(ctx, record); err != nil {
		s.recordError(fields, err, "persisting allocation")
		return nil, eris.Wrap(err, "persisting allocation")
	}

	return &BudgetPlan{
		Items:       items,
		Allocated:   allocated,
		TotalBudget: totalBudget,
	}, nil
}

func (s *service) PlanItinerary(ctx context.Context, request llm.ItineraryRequest) (*llm.Itinerary, error) {
	cities := make([]string, 0, len(request.Stops))
	for _, stop := range request.Stops {
		if city := strings.TrimSpace(stop.City); city != "" {
			cities = append(cities, city)
		}
	}

	if len(cities) == 0 {
		return nil, eris.Wrap(ErrInvalidInput, "at least one city is required")
	}

	travelers := request.Travelers
	if travelers < 0 {
		return nil, eris.Wrap(ErrInvalidInput, "travelers must not be negative")
	}
	if travelers == 0 {
		travelers = 1
	}

	fields := logrus.Fields{"cities": strings.Join(cities, ", "), "travelers": travelers}

	start := time.Now()
	itinerary, err := s.planner.Plan(ctx, request)
	if err != nil {
		s.observe("planner", err, time.Since(start))
		s.recordError(fields, err, "requesting itinerary")
		return nil, eris.Wrap(err, "planning itinerary")
	}
	s.observe("planner", nil, time.Since(start))

	encoded, err := json.Marshal(itinerary.Items)
	if err != nil {
		s.recordError(fields, err, "encoding itinerary for persistence")
		return nil, eris.Wrap(err, "encoding itinerary")
	}

	record := &Itinerary{
		Cities:    strings.Join(cities, ", "),
		Travelers: travelers,
		Overview:  itinerary.Overview,
		Items:     string(encoded),
	}
	if err := s.repo.SaveItinerary(ctx, record); err != nil {
		s.recordError(fields, err, "persisting itinerary")
		return nil, eris.Wrap(err, "persisting itinerary")
	}

	return itinerary, nil
}

func (s *service) RecentRecommendations(ctx context.Context, limit int) ([]Recommendation, error) {
	return s.repo.RecentRecommendations(ctx, clampLimit(limit))
}

func (s *service) RecentAllocations(ctx context.Context, limit int) ([]Allocation, error) {
	return s.repo.RecentAllocations(ctx, clampLimit(limit))
}

func (s *service) RecentItineraries(ctx context.Context, limit int) ([]Itinerary, error) {
	return s.repo.RecentItineraries(ctx, clampLimit(limit))
}

func (s *service) CountPlans(ctx context.Context) (int64, error) {
	return s.repo.CountPlans(ctx)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func (s *service) observe(agent string, err error, duration time.Duration) {
	if s.collector == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
		switch {
		case llm.IsTransport(err):
			s.collector.RecordError(agent, "transport")
		case llm.IsParse(err):
			s.collector.RecordError(agent, "parse")
		default:
			s.collector.RecordError(agent, "other")
		}
	}

	s.collector.RecordRequest(agent, status, duration)
}

func (s *service) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if s.sentryHub != nil {
		s.sentryHub.CaptureException(err)
	}
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"
	"github.com/openai/openai-go/v2/shared/constant"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// ItineraryStop is one city on the trip with an optional date range.
// Dates are ISO YYYY-MM-DD strings; when absent the model orders days itself.
type ItineraryStop struct {
	City      string `json:"city"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// ItineraryRequest is the full trip specification handed to the planner.
type ItineraryRequest struct {
	Stops          []ItineraryStop
	Places         []string
	Preferences    string
	TransportModes []string
	Travelers      int
}

// ItineraryItem is a single scheduled block in the generated plan.
type ItineraryItem struct {
	DayIndex         int      `json:"day_index"`
	Date             string   `json:"date"`
	StartTime        string   `json:"start_time"`
	EndTime          string   `json:"end_time"`
	ActivityTitle    string   `json:"activity_title"`
	LocationName     string   `json:"location_name"`
	TransportMode    string   `json:"transport_mode"`
	TransportDetails string   `json:"transport_details"`
	DurationMinutes  int      `json:"duration_minutes"`
	CostEstimate     string   `json:"cost_estimate"`
	CulturalTips     []string `json:"cultural_tips"`
	Notes            string   `json:"notes"`
}

// Itinerary is the machine-readable plan returned by the planner agent.
type Itinerary struct {
	Overview string          `json:"trip_overview"`
	Items    []ItineraryItem `json:"itinerary"`
}

// Planner defines the behaviour for generating a day-by-day itinerary.
type Planner interface {
	Plan(ctx context.Context, request ItineraryRequest) (*Itinerary, error)
}

// PlannerOptions configures the chat-completion backed planner.
type PlannerOptions struct {
	Client       *Client
	Model        string
	Temperature  float64
	SystemPrompt string
}

type chatPlanner struct {
	client         *Client
	logger         *logrus.Logger
	model          string
	temperature    float64
	systemPrompt   string
	responseFormat openai.ChatCompletionNewParamsResponseFormatUnion
}

const (
	defaultPlannerSystemPrompt = "You are an expert travel planner who returns structured JSON data. Build realistic day-by-day itineraries with specific transport guidance and short cultural tips. Prioritize public transport when allowed and assume a moderate budget unless told otherwise."
	defaultPlannerTemperature  = 0.2
)

// NewPlanner constructs a Planner backed by the chat completion client.
func NewPlanner(opts PlannerOptions) (Planner, error) {
	if opts.Client == nil {
		return nil, eris.New("llm client is required")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, eris.New("planner model is required")
	}

	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultPlannerTemperature
	}

	systemPrompt := strings.TrimSpace(opts.SystemPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultPlannerSystemPrompt
	}

	return &chatPlanner{
		client:         opts.Client,
		logger:         opts.Client.logger,
		model:          model,
		temperature:    temperature,
		systemPrompt:   systemPrompt,
		responseFormat: buildItineraryResponseFormat(),
	}, nil
}

func (p *chatPlanner) Plan(ctx context.Context, request ItineraryRequest) (*Itinerary, error) {
	stops := make([]ItineraryStop, 0, len(request.Stops))
	for _, stop := range request.Stops {
		city := strings.TrimSpace(stop.City)
		if city == "" {
			continue
		}
		stops = append(stops, ItineraryStop{
			City:      city,
			StartDate: strings.TrimSpace(stop.StartDate),
			EndDate:   strings.TrimSpace(stop.EndDate),
		})
	}

	if len(stops) == 0 {
		return nil, eris.New("at least one stop is required")
	}

	travelers := request.Travelers
	if travelers <= 0 {
		travelers = 1
	}

	fields := logrus.Fields{"stops": len(stops), "travelers": travelers}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.systemPrompt),
			openai.UserMessage(itineraryPrompt(stops, request.Places, request.Preferences, request.TransportModes, travelers)),
		},
		ResponseFormat: p.responseFormat,
		Temperature:    openai.Float(p.temperature),
	}

	completion, err := p.client.chat.New(ctx, params)
	if err != nil {
		p.logError(fields, err, "requesting chat completion")
		return nil, transportError(err, "requesting itinerary")
	}

	content, err := completionContent(completion)
	if err != nil {
		p.logError(fields, err, "processing chat completion")
		return nil, err
	}

	itinerary, err := parseItinerary(content)
	if err != nil {
		p.logError(fields, err, "parsing itinerary response")
		return nil, err
	}

	return itinerary, nil
}

func itineraryPrompt(stops []ItineraryStop, places []string, preferences string, transportModes []string, travelers int) string {
	var sb strings.Builder

	sb.WriteString("Plan an itinerary for the following trip.\nCities:\n")
	for _, stop := range stops {
		if stop.StartDate != "" || stop.EndDate != "" {
			fmt.Fprintf(&sb, "- %s (%s to %s)\n", stop.City, stop.StartDate, stop.EndDate)
		} else {
			fmt.Fprintf(&sb, "- %s\n", stop.City)
		}
	}

	if len(places) > 0 {
		fmt.Fprintf(&sb, "Places to visit: %s\n", strings.Join(places, ", "))
	}

	if trimmed := strings.TrimSpace(preferences); trimmed != "" {
		fmt.Fprintf(&sb, "Traveler preferences: %s\n", trimmed)
	}

	if len(transportModes) > 0 {
		fmt.Fprintf(&sb, "Allowed transport modes: %s\n", strings.Join(transportModes, ", "))
	}

	fmt.Fprintf(&sb, "Number of travelers: %d\n", travelers)

	sb.WriteString(
		"Return JSON matching the provided schema: a brief trip_overview plus an itinerary array with a day_index, " +
			"date, time block, activity, location, transport mode and booking details, duration in minutes, a cost " +
			"estimate, and 2-3 short cultural tips per item. If dates are missing, plan day by day in logical order. " +
			"Do not include anything besides the JSON object.",
	)

	return sb.String()
}

func parseItinerary(raw string) (*Itinerary, error) {
	trimmed := stripJSONFences(raw)
	if trimmed == "" {
		return nil, parseError(nil, "response content is empty")
	}

	var payload Itinerary
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil, parseError(err, "decoding itinerary json")
	}

	if len(payload.Items) == 0 {
		return nil, parseError(nil, "response contains no itinerary items")
	}

	for i := range payload.Items {
		item := &payload.Items[i]
		item.ActivityTitle = strings.TrimSpace(item.ActivityTitle)
		if item.ActivityTitle == "" {
			return nil, parseError(nil, fmt.Sprintf("itinerary item %d has no activity title", i))
		}
		if item.DurationMinutes < 0 {
			return nil, parseError(nil, fmt.Sprintf("negative duration for activity %q", item.ActivityTitle))
		}
	}

	payload.Overview = strings.TrimSpace(payload.Overview)

	return &payload, nil
}

func (p *chatPlanner) logError(fields logrus.Fields, err error, message string) {
	if p.logger == nil || err == nil {
		return
	}

	entry := p.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}

func buildItineraryResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	schema := map[string]any{
		"type":     "object",
		"required": []string{"trip_overview", "itinerary"},
		"properties": map[string]any{
			"trip_overview": map[string]any{
				"type":        "string",
				"description": "Brief summary of the trip.",
			},
			"itinerary": map[string]any{
				"type":        "array",
				"description": "Day-by-day schedule entries in order.",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"day_index", "activity_title", "location_name"},
					"properties": map[string]any{
						"day_index": map[string]any{
							"type":        "integer",
							"description": "1-based day of the trip this entry belongs to.",
						},
						"date": map[string]any{
							"type":        "string",
							"description": "ISO date YYYY-MM-DD when known.",
						},
						"start_time": map[string]any{
							"type":        "string",
							"description": "Suggested start time, e.g. 09:30.",
						},
						"end_time": map[string]any{
							"type":        "string",
							"description": "Suggested end time.",
						},
						"activity_title": map[string]any{
							"type":        "string",
							"description": "Short title of the activity.",
						},
						"location_name": map[string]any{
							"type":        "string",
							"description": "Where the activity takes place.",
						},
						"transport_mode": map[string]any{
							"type":        "string",
							"description": "Transport used to reach the location, if moving.",
						},
						"transport_details": map[string]any{
							"type":        "string",
							"description": "How to book and the typical journey time.",
						},
						"duration_minutes": map[string]any{
							"type":        "integer",
							"description": "Expected duration of the activity in minutes.",
						},
						"cost_estimate": map[string]any{
							"type":        "string",
							"description": "Approximate cost, e.g. \"$20 per person\".",
						},
						"cultural_tips": map[string]any{
							"type":        "array",
							"description": "Short cultural tips for this stop.",
							"items":       map[string]any{"type": "string"},
						},
						"notes": map[string]any{
							"type":        "string",
							"description": "Anything else the traveler should know.",
						},
					},
				},
			},
		},
	}

	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        "trip_itinerary",
				Description: openai.String("Structured day-by-day itinerary payload"),
				Strict:      openai.Bool(true),
				Schema:      schema,
			},
			Type: constant.ValueOf[constant.JSONSchema](),
		},
	}
}

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

// PlaceRecommendation is a single place returned by the recommendation agent.
type PlaceRecommendation struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Recommender defines the behaviour for producing place recommendations.
type Recommender interface {
	Recommend(ctx context.Context, city string, style string) ([]PlaceRecommendation, error)
}

// RecommenderOptions configures the chat-completion backed recommender.
type RecommenderOptions struct {
	Client       *Client
	Model        string
	Temperature  float64
	SystemPrompt string
}

type chatRecommender struct {
	client         *Client
	logger         *logrus.Logger
	model          string
	temperature    float64
	systemPrompt   string
	responseFormat openai.ChatCompletionNewParamsResponseFormatUnion
}

const (
	defaultRecommenderSystemPrompt = "You are a travel expert who returns structured JSON data. Recommend real, currently operating places and include an address or area for each."
	defaultRecommenderTemperature  = 0.5
)

// NewRecommender constructs a Recommender backed by the chat completion client.
func NewRecommender(opts RecommenderOptions) (Recommender, error) {
	if opts.Client == nil {
		return nil, eris.New("llm client is required")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, eris.New("recommender model is required")
	}

	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultRecommenderTemperature
	}

	systemPrompt := strings.TrimSpace(opts.SystemPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultRecommenderSystemPrompt
	}

	return &chatRecommender{
		client:         opts.Client,
		logger:         opts.Client.logger,
		model:          model,
		temperature:    temperature,
		systemPrompt:   systemPrompt,
		responseFormat: buildPlacesResponseFormat(),
	}, nil
}

func (r *chatRecommender) Recommend(ctx context.Context, city string, style string) ([]PlaceRecommendation, error) {
	trimmedCity := strings.TrimSpace(city)
	if trimmedCity == "" {
		return nil, eris.New("city is required")
	}

	trimmedStyle := strings.ToLower(strings.TrimSpace(style))
	if trimmedStyle == "" {
		return nil, eris.New("style is required")
	}

	fields := logrus.Fields{"city": trimmedCity, "style": trimmedStyle}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(r.systemPrompt),
			openai.UserMessage(recommendationPrompt(trimmedCity, trimmedStyle)),
		},
		ResponseFormat: r.responseFormat,
		Temperature:    openai.Float(r.temperature),
	}

	completion, err := r.client.chat.New(ctx, params)
	if err != nil {
		r.logError(fields, err, "requesting chat completion")
		return nil, transportError(err, "requesting place recommendations")
	}

	content, err := completionContent(completion)
	if err != nil {
		r.logError(fields, err, "processing chat completion")
		return nil, err
	}

	places, err := parsePlaces(content)
	if err != nil {
		r.logError(fields, err, "parsing recommendation response")
		return nil, err
	}

	return places, nil
}

func recommendationPrompt(city, style string) string {
	return fmt.Sprintf(
		"Recommend 10 to 15 %s places to visit in %s. "+
			"Return JSON matching the provided schema: every entry needs the place name and its address or area. "+
			"Do not include anything besides the JSON object.",
		style, city,
	)
}

type placesPayload struct {
	Places []PlaceRecommendation `json:"places"`
}

func parsePlaces(raw string) ([]PlaceRecommendation, error) {
	trimmed := stripJSONFences(raw)
	if trimmed == "" {
		return nil, parseError(nil, "response content is empty")
	}

	var payload placesPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil, parseError(err, "decoding recommendation json")
	}

	if len(payload.Places) == 0 {
		return nil, parseError(nil, "response contains no places")
	}

	cleaned := make([]PlaceRecommendation, 0, len(payload.Places))
	for _, place := range payload.Places {
		name := strings.TrimSpace(place.Name)
		if name == "" {
			return nil, parseError(nil, "response contains a place without a name")
		}
		cleaned = append(cleaned, PlaceRecommendation{
			Name:     name,
			Location: strings.TrimSpace(place.Location),
		})
	}

	return cleaned, nil
}

func (r *chatRecommender) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil || err == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}

func buildPlacesResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	schema := map[string]any{
		"type":     "object",
		"required": []string{"places"},
		"properties": map[string]any{
			"places": map[string]any{
				"type":        "array",
				"description": "Recommended places matching the requested travel style.",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"name", "location"},
					"properties": map[string]any{
						"name": map[string]any{
							"type":        "string",
							"description": "Name of the place.",
						},
						"location": map[string]any{
							"type":        "string",
							"description": "Address or area of the place.",
						},
					},
				},
			},
		},
	}

	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        "place_recommendations",
				Description: openai.String("Structured place recommendation payload"),
				Strict:      openai.Bool(true),
				Schema:      schema,
			},
			Type: constant.ValueOf[constant.JSONSchema](),
		},
	}
}

// completionContent extracts the assistant message from a completion, mapping
// provider-side refusals onto the transport error kind.
func completionContent(completion *openai.ChatCompletion) (string, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return "", transportError(nil, "completion returned no choices")
	}

	choice := completion.Choices[0]
	if reason := strings.TrimSpace(choice.FinishReason); strings.EqualFold(reason, "content_filter") {
		return "", transportError(nil, "request blocked by content filter")
	}

	if refusal := strings.TrimSpace(choice.Message.Refusal); refusal != "" {
		return "", transportError(nil, fmt.Sprintf("model refused the request: %s", refusal))
	}

	return choice.Message.Content, nil
}

// stripJSONFences removes a surrounding markdown code fence when present.
// Models add them often enough that decoding without this step is flaky.
func stripJSONFences(raw string) string {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	return trimmed
}

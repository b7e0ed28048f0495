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

// BudgetLineItem is a single allocation returned by the budget agent.
// Amounts are in USD.
type BudgetLineItem struct {
	Place  string  `json:"place"`
	Amount float64 `json:"amount"`
}

// Budgeter defines the behaviour for allocating a budget across places.
type Budgeter interface {
	Allocate(ctx context.Context, places []string, totalBudget float64) ([]BudgetLineItem, error)
}

// BudgeterOptions configures the chat-completion backed budgeter.
type BudgeterOptions struct {
	Client       *Client
	Model        string
	Temperature  float64
	SystemPrompt string
}

type chatBudgeter struct {
	client         *Client
	logger         *logrus.Logger
	model          string
	temperature    float64
	systemPrompt   string
	responseFormat openai.ChatCompletionNewParamsResponseFormatUnion
}

const (
	defaultBudgeterSystemPrompt = "You are a travel budgeting assistant who returns structured JSON data. Estimate realistic visiting costs in USD."
	defaultBudgeterTemperature  = 0.2
)

// NewBudgeter constructs a Budgeter backed by the chat completion client.
func NewBudgeter(opts BudgeterOptions) (Budgeter, error) {
	if opts.Client == nil {
		return nil, eris.New("llm client is required")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, eris.New("budgeter model is required")
	}

	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultBudgeterTemperature
	}

	systemPrompt := strings.TrimSpace(opts.SystemPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultBudgeterSystemPrompt
	}

	return &chatBudgeter{
		client:         opts.Client,
		logger:         opts.Client.logger,
		model:          model,
		temperature:    temperature,
		systemPrompt:   systemPrompt,
		responseFormat: buildAllocationResponseFormat(),
	}, nil
}

func (b *chatBudgeter) Allocate(ctx context.Context, places []string, totalBudget float64) ([]BudgetLineItem, error) {
	cleaned := make([]string, 0, len(places))
	for _, place := range places {
		if trimmed := strings.TrimSpace(place); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	if len(cleaned) == 0 {
		return nil, eris.New("at least one place is required")
	}

	if totalBudget <= 0 {
		return nil, eris.New("total budget must be positive")
	}

	fields := logrus.Fields{"places": len(cleaned), "total_budget": totalBudget}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(b.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(b.systemPrompt),
			openai.UserMessage(allocationPrompt(cleaned, totalBudget)),
		},
		ResponseFormat: b.responseFormat,
		Temperature:    openai.Float(b.temperature),
	}

	completion, err := b.client.chat.New(ctx, params)
	if err != nil {
		b.logError(fields, err, "requesting chat completion")
		return nil, transportError(err, "requesting budget allocation")
	}

	content, err := completionContent(completion)
	if err != nil {
		b.logError(fields, err, "processing chat completion")
		return nil, err
	}

	items, err := parseAllocation(content)
	if err != nil {
		b.logError(fields, err, "parsing allocation response")
		return nil, err
	}

	return items, nil
}

func allocationPrompt(places []string, totalBudget float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Allocate a total budget of $%.2f USD across the following places:\n", totalBudget)
	for _, place := range places {
		fmt.Fprintf(&sb, "- %s\n", place)
	}
	sb.WriteString(
		"Estimate a realistic visiting cost for each place and keep the sum of all amounts within the total budget. " +
			"Return JSON matching the provided schema and nothing else.",
	)
	return sb.String()
}

type allocationPayload struct {
	Items []BudgetLineItem `json:"items"`
}

func parseAllocation(raw string) ([]BudgetLineItem, error) {
	trimmed := stripJSONFences(raw)
	if trimmed == "" {
		return nil, parseError(nil, "response content is empty")
	}

	var payload allocationPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil, parseError(err, "decoding allocation json")
	}

	if len(payload.Items) == 0 {
		return nil, parseError(nil, "response contains no line items")
	}

	cleaned := make([]BudgetLineItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		place := strings.TrimSpace(item.Place)
		if place == "" {
			return nil, parseError(nil, "response contains a line item without a place")
		}
		if item.Amount < 0 {
			return nil, parseError(nil, fmt.Sprintf("negative amount for place %q", place))
		}
		cleaned = append(cleaned, BudgetLineItem{Place: place, Amount: item.Amount})
	}

	return cleaned, nil
}

func (b *chatBudgeter) logError(fields logrus.Fields, err error, message string) {
	if b.logger == nil || err == nil {
		return
	}

	entry := b.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}

func buildAllocationResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	schema := map[string]any{
		"type":     "object",
		"required": []string{"items"},
		"properties": map[string]any{
			"items": map[string]any{
				"type":        "array",
				"description": "Per-place budget allocations.",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"place", "amount"},
					"properties": map[string]any{
						"place": map[string]any{
							"type":        "string",
							"description": "Name of the place the amount is allocated to.",
						},
						"amount": map[string]any{
							"type":        "number",
							"description": "Estimated visiting cost in USD.",
						},
					},
				},
			},
		},
	}

	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        "budget_allocation",
				Description: openai.String("Structured budget allocation payload"),
				Strict:      openai.Bool(true),
				Schema:      schema,
			},
			Type: constant.ValueOf[constant.JSONSchema](),
		},
	}
}

package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/jennet-zamanova/travel-ai/internal/db"
	"github.com/jennet-zamanova/travel-ai/internal/http/templates"
	"github.com/jennet-zamanova/travel-ai/internal/llm"
	"github.com/jennet-zamanova/travel-ai/internal/reels"
	"github.com/jennet-zamanova/travel-ai/internal/trip"
)

const (
	htmlContentType      = "text/html; charset=utf-8"
	plansListLimit       = 10
	errorFallbackMessage = "We couldn't process your request right now."
	timestampLayout      = "2006-01-02 15:04 MST"
)

type htmlResponse struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type recommendationsInput struct {
	City  string `query:"city" doc:"Destination city" example:"Tokyo"`
	Style string `query:"style" doc:"Travel style preference" example:"foodie"`
}

type recommendationsResponse struct {
	Body struct {
		City   string                    `json:"city"`
		Style  string                    `json:"style"`
		Places []llm.PlaceRecommendation `json:"places"`
	}
}

type budgetInput struct {
	Body struct {
		Places      []string `json:"places" doc:"Places to allocate the budget across"`
		TotalBudget float64  `json:"total_budget" doc:"Total budget in USD" example:"500"`
	}
}

type budgetResponse struct {
	Body trip.BudgetPlan
}

type itineraryInput struct {
	Body struct {
		Stops []struct {
			City      string `json:"city" doc:"City to visit"`
			StartDate string `json:"start_date,omitempty" doc:"ISO date YYYY-MM-DD"`
			EndDate   string `json:"end_date,omitempty" doc:"ISO date YYYY-MM-DD"`
		} `json:"stops" doc:"Cities on the trip, in order"`
		Places         []string `json:"places,omitempty" doc:"Specific places to include"`
		Preferences    string   `json:"preferences,omitempty" doc:"Free-text traveler preferences"`
		TransportModes []string `json:"transport_modes,omitempty" doc:"Allowed transport modes"`
		Travelers      int      `json:"travelers,omitempty" doc:"Number of travelers" example:"2"`
	}
}

type itineraryResponse struct {
	Body llm.Itinerary
}

type reelsInput struct {
	Body struct {
		Clips []struct {
			Filename string `json:"filename"`
			Size     int64  `json:"size"`
		} `json:"clips" doc:"Uploaded reel manifest"`
	}
}

type reelsResponse struct {
	Body reels.Summary
}

type healthResponse struct {
	Status int
	Body   struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Agents   string `json:"agents"`
	}
}

func (s *Server) registerHomeRoute() {
	huma.Get(s.api, "/", s.homeHandler, htmlOperation("Travel AI home", stdhttp.StatusInternalServerError))
}

func (s *Server) registerPlansRoute() {
	huma.Get(s.api, "/plans", s.plansHandler, htmlOperation(
		"List recently saved plans",
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerRecommendationsRoute() {
	huma.Get(s.api, "/api/recommendations", s.recommendationsHandler, func(op *huma.Operation) {
		op.Summary = "Recommend places matching a travel style"
	})
}

func (s *Server) registerBudgetRoute() {
	huma.Post(s.api, "/api/budget", s.budgetHandler, func(op *huma.Operation) {
		op.Summary = "Allocate a budget across places"
	})
}

func (s *Server) registerItineraryRoute() {
	huma.Post(s.api, "/api/itinerary", s.itineraryHandler, func(op *huma.Operation) {
		op.Summary = "Generate a day-by-day itinerary"
	})
}

func (s *Server) registerReelsRoute() {
	huma.Post(s.api, "/reels", s.reelsHandler, func(op *huma.Operation) {
		op.Summary = "Extract travel preferences from uploaded reels"
	})
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, "/healthz", s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
	})
}

func (s *Server) homeHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	count, err := s.trips.CountPlans(ctx)
	if err != nil {
		s.recordError(ctx, err, "counting plans", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't load Travel AI right now.")
	}

	data := templates.HomePageData{
		PlanCountLabel: fmt.Sprintf("%d plans generated so far.", count),
	}

	body, err := renderComponent(ctx, templates.HomePage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering home page", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't render the homepage.")
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) plansHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	recommendations, err := s.trips.RecentRecommendations(ctx, plansListLimit)
	if err != nil {
		s.recordError(ctx, err, "listing recent recommendations", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	allocations, err := s.trips.RecentAllocations(ctx, plansListLimit)
	if err != nil {
		s.recordError(ctx, err, "listing recent allocations", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	itineraries, err := s.trips.RecentItineraries(ctx, plansListLimit)
	if err != nil {
		s.recordError(ctx, err, "listing recent itineraries", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	data := templates.PlansPageData{
		Recommendations: make([]templates.PlanRecommendationView, 0, len(recommendations)),
		Allocations:     make([]templates.PlanAllocationView, 0, len(allocations)),
		Itineraries:     make([]templates.PlanItineraryView, 0, len(itineraries)),
	}

	for _, record := range recommendations {
		data.Recommendations = append(data.Recommendations, templates.PlanRecommendationView{
			City:      record.City,
			Style:     record.Style,
			Places:    record.Places,
			CreatedAt: record.CreatedAt.Format(timestampLayout),
		})
	}

	for _, record := range allocations {
		data.Allocations = append(data.Allocations, templates.PlanAllocationView{
			TotalBudget: fmt.Sprintf("$%.2f", record.TotalBudget),
			Allocated:   fmt.Sprintf("$%.2f", record.Allocated),
			Items:       record.Items,
			CreatedAt:   record.CreatedAt.Format(timestampLayout),
		})
	}

	for _, record := range itineraries {
		data.Itineraries = append(data.Itineraries, templates.PlanItineraryView{
			Cities:    record.Cities,
			Travelers: fmt.Sprintf("%d travelers", record.Travelers),
			Overview:  record.Overview,
			Items:     record.Items,
			CreatedAt: record.CreatedAt.Format(timestampLayout),
		})
	}

	body, err := renderComponent(ctx, templates.PlansPage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering plans page", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't render the plans page.")
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) recommendationsHandler(ctx context.Context, input *recommendationsInput) (*recommendationsResponse, error) {
	city := strings.TrimSpace(input.City)
	style := strings.TrimSpace(input.Style)

	places, err := s.trips.Recommend(ctx, city, style)
	if err != nil {
		s.recordError(ctx, err, "recommendation request failed", logrus.Fields{"city": city, "style": style})
		return nil, classifyAPIError(err)
	}

	resp := &recommendationsResponse{}
	resp.Body.City = city
	resp.Body.Style = strings.ToLower(style)
	resp.Body.Places = places

	return resp, nil
}

func (s *Server) budgetHandler(ctx context.Context, input *budgetInput) (*budgetResponse, error) {
	plan, err := s.trips.Allocate(ctx, input.Body.Places, input.Body.TotalBudget)
	if err != nil {
		s.recordError(ctx, err, "budget request failed", logrus.Fields{"total_budget": input.Body.TotalBudget})
		return nil, classifyAPIError(err)
	}

	return &budgetResponse{Body: *plan}, nil
}

func (s *Server) itineraryHandler(ctx context.Context, input *itineraryInput) (*itineraryResponse, error) {
	request := llm.ItineraryRequest{
		Stops:          make([]llm.ItineraryStop, 0, len(input.Body.Stops)),
		Places:         input.Body.Places,
		Preferences:    input.Body.Preferences,
		TransportModes: input.Body.TransportModes,
		Travelers:      input.Body.Travelers,
	}
	for _, stop := range input.Body.Stops {
		request.Stops = append(request.Stops, llm.ItineraryStop{
			City:      stop.City,
			StartDate: stop.StartDate,
			EndDate:   stop.EndDate,
		})
	}

	itinerary, err := s.trips.PlanItinerary(ctx, request)
	if err != nil {
		s.recordError(ctx, err, "itinerary request failed", logrus.Fields{"stops": len(request.Stops)})
		return nil, classifyAPIError(err)
	}

	return &itineraryResponse{Body: *itinerary}, nil
}

func (s *Server) reelsHandler(ctx context.Context, input *reelsInput) (*reelsResponse, error) {
	clips := make([]reels.Clip, 0, len(input.Body.Clips))
	for _, clip := range input.Body.Clips {
		clips = append(clips, reels.Clip{Filename: clip.Filename, Size: clip.Size})
	}

	summary, err := s.reels.Process(ctx, clips)
	if err != nil {
		if eris.Is(err, reels.ErrNotImplemented) {
			return nil, huma.Error501NotImplemented("Reel processing is not available yet.")
		}
		return nil, huma.Error422UnprocessableEntity(eris.Cause(err).Error())
	}

	return &reelsResponse{Body: *summary}, nil
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{}
	resp.Body.Status = "ok"
	resp.Body.Database = "ok"
	resp.Body.Agents = "ready"

	sqlDB, err := db.SQLDB(s.db)
	if err != nil {
		s.recordError(ctx, err, "obtaining sql db", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	} else if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
		s.recordError(ctx, pingErr, "pinging database", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	}

	if s.trips == nil {
		resp.Body.Status = "degraded"
		resp.Body.Agents = "unconfigured"
		if resp.Status == 0 {
			resp.Status = stdhttp.StatusServiceUnavailable
		}
	}

	if resp.Status == 0 {
		resp.Status = stdhttp.StatusOK
	}

	return resp, nil
}

func newHTMLResponse(status int, body []byte) *htmlResponse {
	return &htmlResponse{
		Status:      status,
		ContentType: htmlContentType,
		Body:        body,
	}
}

func htmlOperation(summary string, statuses ...int) func(op *huma.Operation) {
	return func(op *huma.Operation) {
		if summary != "" {
			op.Summary = summary
		}
		if op.Responses == nil {
			op.Responses = map[string]*huma.Response{}
		}

		statusCodes := append([]int{stdhttp.StatusOK}, statuses...)
		for _, status := range statusCodes {
			code := strconv.Itoa(status)
			op.Responses[code] = &huma.Response{
				Description: stdhttp.StatusText(status),
				Content: map[string]*huma.MediaType{
					htmlContentType: {
						Schema: &huma.Schema{Type: "string"},
					},
				},
			}
		}
	}
}

// classifyAPIError maps domain errors onto HTTP problem responses: caller
// mistakes are 422, upstream model failures are 502.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}

	cause := eris.Cause(err).Error()
	switch {
	case eris.Is(err, trip.ErrInvalidInput):
		return huma.Error422UnprocessableEntity(cause)
	case llm.IsTransport(err):
		return huma.Error502BadGateway("The travel model could not be reached. Please try again shortly.")
	case llm.IsParse(err):
		return huma.Error502BadGateway("The travel model returned an unusable response. Please try again.")
	default:
		return huma.Error500InternalServerError(errorFallbackMessage)
	}
}

func (s *Server) renderErrorResponse(ctx context.Context, status int, message string) (*htmlResponse, error) {
	label := fmt.Sprintf("%d %s", status, stdhttp.StatusText(status))
	template := templates.ErrorPage(templates.ErrorPageData{
		StatusLabel: label,
		Message:     message,
	})

	body, err := renderComponent(ctx, template)
	if err != nil {
		s.recordError(ctx, err, "rendering error page", logrus.Fields{"status": status})
		fallback := []byte(fmt.Sprintf("<html><body><h1>%s</h1><p>%s</p></body></html>", label, message))
		return newHTMLResponse(status, fallback), nil
	}

	return newHTMLResponse(status, body), nil
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}

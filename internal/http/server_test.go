package http

import (
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/jennet-zamanova/travel-ai/internal/db"
	"github.com/jennet-zamanova/travel-ai/internal/llm"
	"github.com/jennet-zamanova/travel-ai/internal/metrics"
	"github.com/jennet-zamanova/travel-ai/internal/trip"
)

type stubTripService struct {
	places       []llm.PlaceRecommendation
	recommendErr error
	plan         *trip.BudgetPlan
	allocateErr  error
	itinerary    *llm.Itinerary
	planErr      error
	count        int64
	countErr     error
}

func (s *stubTripService) Recommend(ctx context.Context, city string, style string) ([]llm.PlaceRecommendation, error) {
	if s.recommendErr != nil {
		return nil, s.recommendErr
	}
	return s.places, nil
}

func (s *stubTripService) Allocate(ctx context.Context, places []string, totalBudget float64) (*trip.BudgetPlan, error) {
	if s.allocateErr != nil {
		return nil, s.allocateErr
	}
	return s.plan, nil
}

func (s *stubTripService) PlanItinerary(ctx context.Context, request llm.ItineraryRequest) (*llm.Itinerary, error) {
	if s.planErr != nil {
		return nil, s.planErr
	}
	return s.itinerary, nil
}

func (s *stubTripService) RecentRecommendations(ctx context.Context, limit int) ([]trip.Recommendation, error) {
	return nil, nil
}

func (s *stubTripService) RecentItineraries(ctx context.Context, limit int) ([]trip.Itinerary, error) {
	return nil, nil
}

func (s *stubTripService) RecentAllocations(ctx context.Context, limit int) ([]trip.Allocation, error) {
	return nil, nil
}

func (s *stubTripService) CountPlans(ctx context.Context) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.count, nil
}

func newTestServer(t *testing.T, service trip.Service) *Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "server.db")
	conn, err := db.Open(db.Options{Path: path})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(conn); err != nil {
			t.Errorf("closing database: %v", err)
		}
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv, err := NewServer(Options{
		TripService: service,
		Database:    conn,
		Logger:      logger,
		Metrics:     metrics.NewCollector(),
		RateLimiter: RateLimiterSettings{
			RequestsPerSecond: 100,
			Burst:             100,
			ClientTTL:         time.Minute,
		},
	})
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}

	return srv
}

func TestHomeRouteRendersPage(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubTripService{count: 42})
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	if ct := rec.Header().Get("Content-Type"); ct != htmlContentType {
		t.Fatalf("expected content type %q, got %q", htmlContentType, ct)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Travel AI") {
		t.Fatalf("expected body to contain site title, got %q", body)
	}

	if !strings.Contains(body, "42 plans generated so far") {
		t.Fatalf("expected plan count in body, got %q", body)
	}
}

func TestRecommendationsRouteReturnsJSON(t *testing.T) {
	t.Parallel()

	service := &stubTripService{places: []llm.PlaceRecommendation{
		{Name: "Senso-ji", Location: "Asakusa, Tokyo"},
	}}
	srv := newTestServer(t, service)

	req := httptest.NewRequest("GET", "/api/recommendations?city=Tokyo&style=foodie", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Senso-ji") {
		t.Fatalf("expected place name in body, got %q", body)
	}
	if !strings.Contains(body, "Asakusa, Tokyo") {
		t.Fatalf("expected location in body, got %q", body)
	}
}

func TestRecommendationsRouteMapsTransportErrorTo502(t *testing.T) {
	t.Parallel()

	service := &stubTripService{recommendErr: eris.Wrap(llm.ErrTransport, "connection reset")}
	srv := newTestServer(t, service)

	req := httptest.NewRequest("GET", "/api/recommendations?city=Tokyo&style=foodie", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 502 {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
}

func TestRecommendationsRouteMapsValidationErrorTo422(t *testing.T) {
	t.Parallel()

	service := &stubTripService{recommendErr: eris.Wrap(trip.ErrInvalidInput, "city is required")}
	srv := newTestServer(t, service)

	req := httptest.NewRequest("GET", "/api/recommendations", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 422 {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
}

func TestBudgetRouteReturnsPlan(t *testing.T) {
	t.Parallel()

	service := &stubTripService{plan: &trip.BudgetPlan{
		Items:       []llm.BudgetLineItem{{Place: "Senso-ji", Amount: 0}},
		Allocated:   0,
		TotalBudget: 500,
	}}
	srv := newTestServer(t, service)

	payload := `{"places":["Senso-ji"],"total_budget":500}`
	req := httptest.NewRequest("POST", "/api/budget", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if !strings.Contains(rec.Body.String(), `"total_budget":500`) {
		t.Fatalf("expected total budget in body, got %q", rec.Body.String())
	}
}

func TestBudgetRouteMapsParseErrorTo502(t *testing.T) {
	t.Parallel()

	service := &stubTripService{allocateErr: eris.Wrap(llm.ErrParse, "allocated 600.00 exceeds total budget 500.00")}
	srv := newTestServer(t, service)

	payload := `{"places":["Senso-ji"],"total_budget":500}`
	req := httptest.NewRequest("POST", "/api/budget", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 502 {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
}

func TestItineraryRouteReturnsPlan(t *testing.T) {
	t.Parallel()

	service := &stubTripService{itinerary: &llm.Itinerary{
		Overview: "Two days in Kyoto.",
		Items: []llm.ItineraryItem{
			{DayIndex: 1, ActivityTitle: "Fushimi Inari hike", LocationName: "Fushimi"},
		},
	}}
	srv := newTestServer(t, service)

	payload := `{"stops":[{"city":"Kyoto","start_date":"2026-09-01","end_date":"2026-09-02"}],"travelers":2}`
	req := httptest.NewRequest("POST", "/api/itinerary", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Fushimi Inari hike") {
		t.Fatalf("expected activity in body, got %q", body)
	}
	if !strings.Contains(body, `"trip_overview":"Two days in Kyoto."`) {
		t.Fatalf("expected overview in body, got %q", body)
	}
}

func TestItineraryRouteMapsValidationErrorTo422(t *testing.T) {
	t.Parallel()

	service := &stubTripService{planErr: eris.Wrap(trip.ErrInvalidInput, "at least one city is required")}
	srv := newTestServer(t, service)

	payload := `{"stops":[]}`
	req := httptest.NewRequest("POST", "/api/itinerary", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 422 {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
}

func TestReelsRouteReturns501(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubTripService{})

	payload := `{"clips":[{"filename":"trip.mp4","size":1024}]}`
	req := httptest.NewRequest("POST", "/reels", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 501 {
		t.Fatalf("expected status 501, got %d", rec.Code)
	}
}

func TestPlansRouteRendersEmptyState(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubTripService{})

	req := httptest.NewRequest("GET", "/plans", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "No recommendations saved yet") {
		t.Fatalf("expected empty state in body, got %q", rec.Body.String())
	}

	if !strings.Contains(rec.Body.String(), "No itineraries saved yet") {
		t.Fatalf("expected itinerary empty state in body, got %q", rec.Body.String())
	}
}

func TestHealthRouteReportsOK(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubTripService{})

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("expected ok status in body, got %q", rec.Body.String())
	}
}

func TestMetricsRouteExposesRegistry(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubTripService{})

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestNewServerRequiresTripService(t *testing.T) {
	t.Parallel()

	if _, err := NewServer(Options{}); err == nil {
		t.Fatalf("expected error when trip service is missing")
	}
}

func TestNewServerRequiresRateLimiterSettings(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "limits.db")
	conn, err := db.Open(db.Options{Path: path})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(conn) })

	_, err = NewServer(Options{
		TripService: &stubTripService{},
		Database:    conn,
	})
	if err == nil {
		t.Fatalf("expected error when rate limiter settings are missing")
	}
}

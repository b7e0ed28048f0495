package trip

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/jennet-zamanova/travel-ai/internal/db"
)

func silentLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupRepository(t *testing.T) *GormRepository {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trip.db")
	conn, err := db.Open(db.Options{Path: path})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(conn); err != nil {
			t.Errorf("closing database: %v", err)
		}
	})

	if err := Migrate(context.Background(), conn, silentLogger()); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	repo, err := NewRepository(conn, silentLogger())
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}

	return repo
}

func TestNewRepositoryRequiresDatabase(t *testing.T) {
	t.Parallel()

	if _, err := NewRepository(nil, nil); err == nil {
		t.Fatalf("expected error when database is nil")
	}
}

func TestSaveAndListRecommendations(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	first := &Recommendation{City: "Paris", Style: "romantic", Places: `[{"name":"Louvre Museum","location":"Rue de Rivoli"}]`}
	if err := repo.SaveRecommendation(ctx, first); err != nil {
		t.Fatalf("SaveRecommendation returned error: %v", err)
	}

	second := &Recommendation{City: "Tokyo", Style: "foodie", Places: `[{"name":"Senso-ji","location":"Asakusa"}]`}
	if err := repo.SaveRecommendation(ctx, second); err != nil {
		t.Fatalf("SaveRecommendation returned error: %v", err)
	}

	records, err := repo.RecentRecommendations(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRecommendations returned error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestSaveRecommendationRejectsNil(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)

	if err := repo.SaveRecommendation(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil recommendation")
	}
}

func TestSaveAndListAllocations(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	record := &Allocation{TotalBudget: 500, Allocated: 430, Items: `[{"place":"Louvre Museum","amount":22}]`}
	if err := repo.SaveAllocation(ctx, record); err != nil {
		t.Fatalf("SaveAllocation returned error: %v", err)
	}

	records, err := repo.RecentAllocations(ctx, 10)
	if err != nil {
		t.Fatalf("RecentAllocations returned error: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	if records[0].Allocated != 430 {
		t.Fatalf("expected allocated 430, got %v", records[0].Allocated)
	}
}

func TestSaveAndListItineraries(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	record := &Itinerary{
		Cities:    "Kyoto, Osaka",
		Travelers: 2,
		Overview:  "Four days across Kansai.",
		Items:     `[{"day_index":1,"activity_title":"Fushimi Inari hike","location_name":"Fushimi"}]`,
	}
	if err := repo.SaveItinerary(ctx, record); err != nil {
		t.Fatalf("SaveItinerary returned error: %v", err)
	}

	records, err := repo.RecentItineraries(ctx, 10)
	if err != nil {
		t.Fatalf("RecentItineraries returned error: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	if records[0].Cities != "Kyoto, Osaka" {
		t.Fatalf("expected cities preserved, got %q", records[0].Cities)
	}
}

func TestSaveItineraryRejectsNil(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)

	if err := repo.SaveItinerary(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil itinerary")
	}
}

func TestCountPlansCombinesAllTables(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	count, err := repo.CountPlans(ctx)
	if err != nil {
		t.Fatalf("CountPlans returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 plans, got %d", count)
	}

	if err := repo.SaveRecommendation(ctx, &Recommendation{City: "Paris", Style: "romantic", Places: "[]"}); err != nil {
		t.Fatalf("SaveRecommendation returned error: %v", err)
	}
	if err := repo.SaveAllocation(ctx, &Allocation{TotalBudget: 100, Allocated: 90, Items: "[]"}); err != nil {
		t.Fatalf("SaveAllocation returned error: %v", err)
	}
	if err := repo.SaveItinerary(ctx, &Itinerary{Cities: "Kyoto", Travelers: 1, Overview: "", Items: "[]"}); err != nil {
		t.Fatalf("SaveItinerary returned error: %v", err)
	}

	count, err = repo.CountPlans(ctx)
	if err != nil {
		t.Fatalf("CountPlans returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 plans, got %d", count)
	}
}

func TestRecentRecommendationsRespectsLimit(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	for range 5 {
		if err := repo.SaveRecommendation(ctx, &Recommendation{City: "Paris", Style: "romantic", Places: "[]"}); err != nil {
			t.Fatalf("SaveRecommendation returned error: %v", err)
		}
	}

	records, err := repo.RecentRecommendations(ctx, 3)
	if err != nil {
		t.Fatalf("RecentRecommendations returned error: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
}

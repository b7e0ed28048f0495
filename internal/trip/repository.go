package trip

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Repository defines persistence operations for saved plans.
type Repository interface {
	SaveRecommendation(ctx context.Context, record *Recommendation) error
	SaveAllocation(ctx context.Context, record *Allocation) error
	SaveItinerary(ctx context.Context, record *Itinerary) error
	RecentRecommendations(ctx context.Context, limit int) ([]Recommendation, error)
	RecentAllocations(ctx context.Context, limit int) ([]Allocation, error)
	RecentItineraries(ctx context.Context, limit int) ([]Itinerary, error)
	CountPlans(ctx context.Context) (int64, error)
}

// GormRepository persists plans using a Gorm database connection.
type GormRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed repository implementation.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*GormRepository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &GormRepository{db: db, logger: logger}, nil
}

var _ Repository = (*GormRepository)(nil)

// SaveRecommendation stores a recommendation audit record.
func (r *GormRepository) SaveRecommendation(ctx context.Context, record *Recommendation) error {
	if record == nil {
		return eris.New("recommendation is nil")
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		r.logError(logrus.Fields{"city": record.City}, err, "saving recommendation")
		return eris.Wrapf(err, "saving recommendation for city: %s", record.City)
	}

	return nil
}

// SaveAllocation stores an allocation audit record.
func (r *GormRepository) SaveAllocation(ctx context.Context, record *Allocation) error {
	if record == nil {
		return eris.New("allocation is nil")
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		r.logError(logrus.Fields{"total_budget": record.TotalBudget}, err, "saving allocation")
		return eris.Wrap(err, "saving allocation")
	}

	return nil
}

// SaveItinerary stores an itinerary audit record.
func (r *GormRepository) SaveItinerary(ctx context.Context, record *Itinerary) error {
	if record == nil {
		return eris.New("itinerary is nil")
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		r.logError(logrus.Fields{"cities": record.Cities}, err, "saving itinerary")
		return eris.Wrapf(err, "saving itinerary for: %s", record.Cities)
	}

	return nil
}

// RecentRecommendations returns the newest recommendation records first.
func (r *GormRepository) RecentRecommendations(ctx context.Context, limit int) ([]Recommendation, error) {
	var records []Recommendation

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		r.logError(nil, err, "listing recent recommendations")
		return nil, eris.Wrap(err, "listing recent recommendations")
	}

	return records, nil
}

// RecentAllocations returns the newest allocation records first.
func (r *GormRepository) RecentAllocations(ctx context.Context, limit int) ([]Allocation, error) {
	var records []Allocation

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		r.logError(nil, err, "listing recent allocations")
		return nil, eris.Wrap(err, "listing recent allocations")
	}

	return records, nil
}

// RecentItineraries returns the newest itinerary records first.
func (r *GormRepository) RecentItineraries(ctx context.Context, limit int) ([]Itinerary, error) {
	var records []Itinerary

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		r.logError(nil, err, "listing recent itineraries")
		return nil, eris.Wrap(err, "listing recent itineraries")
	}

	return records, nil
}

// CountPlans returns the combined number of saved recommendations, allocations
// and itineraries.
func (r *GormRepository) CountPlans(ctx context.Context) (int64, error) {
	var recommendations int64
	if err := r.db.WithContext(ctx).Model(&Recommendation{}).Count(&recommendations).Error; err != nil {
		r.logError(nil, err, "counting recommendations")
		return 0, eris.Wrap(err, "counting recommendations")
	}

	var allocations int64
	if err := r.db.WithContext(ctx).Model(&Allocation{}).Count(&allocations).Error; err != nil {
		r.logError(nil, err, "counting allocations")
		return 0, eris.Wrap(err, "counting allocations")
	}

	var itineraries int64
	if err := r.db.WithContext(ctx).Model(&Itinerary{}).Count(&itineraries).Error; err != nil {
		r.logError(nil, err, "counting itineraries")
		return 0, eris.Wrap(err, "counting itineraries")
	}

	return recommendations + allocations + itineraries, nil
}

func (r *GormRepository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}

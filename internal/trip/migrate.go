package trip

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate applies the trip schema using Gorm's AutoMigrate and logs progress.
func Migrate(ctx context.Context, db *gorm.DB, logger *logrus.Logger) error {
	if db == nil {
		return eris.New("gorm DB is required")
	}

	logFields := logrus.Fields{"component": "trip.migrate"}
	if logger != nil {
		logger.WithFields(logFields).Info("applying trip schema")
	}

	if err := db.WithContext(ctx).AutoMigrate(&Recommendation{}, &Allocation{}, &Itinerary{}); err != nil {
		if logger != nil {
			logger.WithFields(logFields).WithField("error", err.Error()).Error("trip schema migration failed")
		}
		return eris.Wrap(err, "auto migrating trip schema")
	}

	if logger != nil {
		logger.WithFields(logFields).Info("trip schema migration complete")
	}

	return nil
}

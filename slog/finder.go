package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/carecost"
)

// Ensure LoggingHospitalFinder implements carecost.HospitalFinder.
var _ carecost.HospitalFinder = (*LoggingHospitalFinder)(nil)

// LoggingHospitalFinder wraps a HospitalFinder with logging.
type LoggingHospitalFinder struct {
	next   carecost.HospitalFinder
	logger *slog.Logger
}

// NewLoggingHospitalFinder creates a new LoggingHospitalFinder.
func NewLoggingHospitalFinder(next carecost.HospitalFinder, logger *slog.Logger) *LoggingHospitalFinder {
	return &LoggingHospitalFinder{next: next, logger: logger}
}

// FindHospitals delegates to the wrapped finder and logs the operation.
func (f *LoggingHospitalFinder) FindHospitals(ctx context.Context, q carecost.HospitalQuery) (hospitals []*carecost.Hospital, err error) {
	defer func(begin time.Time) {
		f.logger.Info("hospital discovery",
			"location", q.Location,
			"radius", q.RadiusMiles,
			"count", len(hospitals),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FindHospitals(ctx, q)
}

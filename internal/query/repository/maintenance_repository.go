package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// IndexReport records the outcome of one index-ensure operation.
type IndexReport struct {
	Name    string
	Created bool
}

// MaintenanceRepository keeps the divergence event store queryable at scale.
type MaintenanceRepository interface {
	// EnsureIndexes creates the secondary indexes backing range queries on
	// divergence_events. Idempotent: indexes that already exist are reported
	// with Created=false and left untouched.
	EnsureIndexes(ctx context.Context) ([]IndexReport, error)
}

type maintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository creates a new GORM-based maintenance repository.
func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

// indexColumns covers the four predicates the query engine filters and
// sorts on.
var indexColumns = []string{"end_date", "expiry_date", "stock_code", "confidence"}

func (r *maintenanceRepository) EnsureIndexes(ctx context.Context) ([]IndexReport, error) {
	var existing []string
	err := r.db.WithContext(ctx).
		Raw("SELECT indexname FROM pg_indexes WHERE tablename = ?", "divergence_events").
		Scan(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list existing indexes: %w", err)
	}

	existingSet := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		existingSet[name] = struct{}{}
	}

	reports := make([]IndexReport, 0, len(indexColumns))
	for _, column := range indexColumns {
		name := fmt.Sprintf("idx_divergence_events_%s", column)
		if _, ok := existingSet[name]; ok {
			reports = append(reports, IndexReport{Name: name, Created: false})
			continue
		}
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON divergence_events (%s)", name, column)
		if err := r.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return reports, fmt.Errorf("failed to create index %s: %w", name, err)
		}
		reports = append(reports, IndexReport{Name: name, Created: true})
	}

	return reports, nil
}

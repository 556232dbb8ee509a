package repository

import (
	"context"
	"strings"
	"time"

	"golang-divergence-signals/internal/entity"

	"gorm.io/gorm"
)

// FindEventsParam narrows the divergence event scan. EndDateBefore and
// ExpiryOnOrAfter together select every event that is actionable on at least
// one day of the query range: the divergence must have completed before the
// last day of the range and must not have expired before the first day.
type FindEventsParam struct {
	EndDateBefore   time.Time
	ExpiryOnOrAfter time.Time
	StockCodes      []string
	MinConfidence   float64
}

// DivergenceEventRepository defines read access to the divergence event store.
type DivergenceEventRepository interface {
	Find(ctx context.Context, param FindEventsParam) ([]entity.DivergenceEvent, error)
}

type divergenceEventRepository struct {
	db *gorm.DB
}

// NewDivergenceEventRepository creates a new GORM-based event repository.
func NewDivergenceEventRepository(db *gorm.DB) DivergenceEventRepository {
	return &divergenceEventRepository{db: db}
}

func (r *divergenceEventRepository) Find(ctx context.Context, param FindEventsParam) ([]entity.DivergenceEvent, error) {
	qFilter := []string{}
	qFilterParam := []interface{}{}

	if !param.EndDateBefore.IsZero() {
		qFilter = append(qFilter, "end_date < ?")
		qFilterParam = append(qFilterParam, param.EndDateBefore)
	}

	if !param.ExpiryOnOrAfter.IsZero() {
		qFilter = append(qFilter, "expiry_date >= ?")
		qFilterParam = append(qFilterParam, param.ExpiryOnOrAfter)
	}

	if len(param.StockCodes) > 0 {
		qFilter = append(qFilter, "stock_code IN (?)")
		qFilterParam = append(qFilterParam, param.StockCodes)
	}

	if param.MinConfidence > 0 {
		qFilter = append(qFilter, "confidence >= ?")
		qFilterParam = append(qFilterParam, param.MinConfidence)
	}

	var events []entity.DivergenceEvent
	query := r.db.WithContext(ctx).Model(&entity.DivergenceEvent{})
	if len(qFilter) > 0 {
		query = query.Where(strings.Join(qFilter, " AND "), qFilterParam...)
	}
	if err := query.Order("end_date, stock_code").Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

package entity

import (
	"time"
)

// DivergenceEvent statuses written by the upstream detector. The status
// column is advisory: validity is always recomputed from the event dates
// because the detector may not have refreshed the flag yet.
const (
	DivergenceStatusActive  = "active"
	DivergenceStatusExpired = "expired"
)

// DivergenceEvent is a detected price/indicator divergence persisted by the
// upstream detector. The query engine only ever reads these rows.
type DivergenceEvent struct {
	DivergenceID   string    `json:"divergence_id" gorm:"primaryKey;column:divergence_id"`
	StockCode      string    `json:"stock_code"`
	StartDate      time.Time `json:"start_date" gorm:"type:date"`
	EndDate        time.Time `json:"end_date" gorm:"type:date"`
	StartPrice     float64   `json:"start_price"`
	EndPrice       float64   `json:"end_price"`
	StartIndicator float64   `json:"start_indicator"`
	EndIndicator   float64   `json:"end_indicator"`
	Confidence     float64   `json:"confidence"`
	DaysBetween    int       `json:"days_between"`
	ValidityDays   int       `json:"validity_days"`
	ExpiryDate     time.Time `json:"expiry_date" gorm:"type:date"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (DivergenceEvent) TableName() string {
	return "divergence_events"
}

// ActionableOn reports whether the event can be acted on at date d. The
// divergence must have fully formed before d (strict lower bound, no
// look-ahead) and must not have passed its expiry.
func (e DivergenceEvent) ActionableOn(d time.Time) bool {
	return e.EndDate.Before(d) && !d.After(e.ExpiryDate)
}

// FirstActionableDay returns the earliest date within [start, end] on which
// the event is actionable, or false when no such day exists in the range.
func (e DivergenceEvent) FirstActionableDay(start, end time.Time) (time.Time, bool) {
	first := e.EndDate.AddDate(0, 0, 1)
	if first.Before(start) {
		first = start
	}
	if first.After(end) || first.After(e.ExpiryDate) {
		return time.Time{}, false
	}
	return first, true
}

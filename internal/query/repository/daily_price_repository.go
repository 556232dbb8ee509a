package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-divergence-signals/internal/entity"
	"golang-divergence-signals/pkg/utils"

	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// DailyPriceRepository defines read access to the daily price series.
type DailyPriceRepository interface {
	// GetNextDayOpen returns the opening price of the first trading day
	// strictly after date for the given stock. Returns ErrNotFound when the
	// series has no later bar (end of series, suspension, delisting).
	GetNextDayOpen(ctx context.Context, stockCode string, date time.Time) (float64, error)
}

type dailyPriceRepository struct {
	db    *gorm.DB
	cache *gocache.Cache
}

// NewDailyPriceRepository creates a new GORM-based daily price repository.
// Lookups are memoised in-process since a range query hits the same
// (stock, date) pair for every event sharing a pivot day.
func NewDailyPriceRepository(db *gorm.DB) DailyPriceRepository {
	return &dailyPriceRepository{
		db:    db,
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func (r *dailyPriceRepository) GetNextDayOpen(ctx context.Context, stockCode string, date time.Time) (float64, error) {
	cacheKey := fmt.Sprintf("%s|%s", stockCode, utils.FormatDate(date))
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.(float64), nil
	}

	var bar entity.DailyPrice
	err := r.db.WithContext(ctx).
		Where("stock_code = ? AND date > ?", stockCode, date).
		Order("date ASC").
		First(&bar).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	r.cache.Set(cacheKey, bar.Open, gocache.DefaultExpiration)
	return bar.Open, nil
}

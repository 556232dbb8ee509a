package entity

import (
	"time"
)

// DailyPrice is a single OHLCV bar from the daily price series, maintained
// by the market-data ingestion pipeline. Read-only to the query engine.
type DailyPrice struct {
	ID        int64     `json:"id"`
	StockCode string    `json:"stock_code" gorm:"uniqueIndex:uq_daily_prices_stock_date"`
	Date      time.Time `json:"date" gorm:"type:date;uniqueIndex:uq_daily_prices_stock_date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (DailyPrice) TableName() string {
	return "daily_prices"
}

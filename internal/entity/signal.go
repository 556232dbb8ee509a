package entity

import (
	"time"

	"golang-divergence-signals/pkg/utils"
)

// Signal is a buy signal derived from a divergence event for a specific
// evaluation date. Signals are built fresh on every query, never persisted,
// and not mutated after construction.
type Signal struct {
	StockCode     string    `json:"stock_code"`
	SignalDate    time.Time `json:"signal_date"`
	Confidence    float64   `json:"confidence"`
	EntryPrice    float64   `json:"entry_price"`
	Reason        string    `json:"reason"`
	SourceEventID string    `json:"source_event_id"`
}

// SignalFieldNames is the canonical field order shared by every output
// format. Formatters must present exactly these fields in this order.
var SignalFieldNames = []string{
	"stock_code",
	"signal_date",
	"confidence",
	"entry_price",
	"reason",
	"source_event_id",
}

// Fields returns the signal as an ordered key/value mapping following
// SignalFieldNames.
func (s Signal) Fields() []SignalField {
	return []SignalField{
		{Name: "stock_code", Value: s.StockCode},
		{Name: "signal_date", Value: utils.FormatDate(s.SignalDate)},
		{Name: "confidence", Value: s.Confidence},
		{Name: "entry_price", Value: s.EntryPrice},
		{Name: "reason", Value: s.Reason},
		{Name: "source_event_id", Value: s.SourceEventID},
	}
}

// SignalField is one entry of the ordered field mapping.
type SignalField struct {
	Name  string
	Value interface{}
}

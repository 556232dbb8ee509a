package formatter

import (
	"time"

	"golang-divergence-signals/internal/entity"
)

// NoSignalsMessage is rendered whenever a formatter receives an empty
// signal sequence.
const NoSignalsMessage = "No signals matched the query criteria"

// QueryMeta carries the parameters of the query that produced a signal
// sequence, for inclusion in formatted output.
type QueryMeta struct {
	StartDate      time.Time
	EndDate        time.Time
	StockCodes     []string
	MinConfidence  float64
	UseNextDayOpen bool
	GeneratedAt    time.Time
}

// summary holds aggregate statistics over a signal sequence.
type summary struct {
	Count         int
	UniqueStocks  int
	FirstDate     time.Time
	LastDate      time.Time
	AvgConfidence float64
	MinConfidence float64
	MaxConfidence float64
}

func summarize(signals []entity.Signal) summary {
	s := summary{Count: len(signals)}
	if len(signals) == 0 {
		return s
	}

	stocks := make(map[string]struct{})
	s.FirstDate = signals[0].SignalDate
	s.LastDate = signals[0].SignalDate
	s.MinConfidence = signals[0].Confidence
	s.MaxConfidence = signals[0].Confidence

	var confidenceSum float64
	for _, sig := range signals {
		stocks[sig.StockCode] = struct{}{}
		confidenceSum += sig.Confidence
		if sig.SignalDate.Before(s.FirstDate) {
			s.FirstDate = sig.SignalDate
		}
		if sig.SignalDate.After(s.LastDate) {
			s.LastDate = sig.SignalDate
		}
		if sig.Confidence < s.MinConfidence {
			s.MinConfidence = sig.Confidence
		}
		if sig.Confidence > s.MaxConfidence {
			s.MaxConfidence = sig.Confidence
		}
	}

	s.UniqueStocks = len(stocks)
	s.AvgConfidence = confidenceSum / float64(len(signals))
	return s
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang-divergence-signals/internal/entity"
	"golang-divergence-signals/internal/query/repository"
	"golang-divergence-signals/pkg/logger"
	"golang-divergence-signals/pkg/utils"
)

var (
	// ErrInvalidDateRange is returned when start date is after end date.
	ErrInvalidDateRange = errors.New("invalid date range: start date is after end date")
	// ErrInvalidConfidence is returned when the confidence threshold is
	// outside [0, 1].
	ErrInvalidConfidence = errors.New("invalid confidence threshold: must be within [0, 1]")
	// ErrStoreUnavailable is returned when the divergence event store cannot
	// be read.
	ErrStoreUnavailable = errors.New("divergence event store unavailable")
)

// QueryOptions carries the filters for a signal query. StockCodes acts as an
// allow-list when non-empty. With UseNextDayOpen set, entry prices come from
// the first trading day after the signal date; signals whose next-day bar is
// missing are excluded from the result.
type QueryOptions struct {
	StartDate      time.Time
	EndDate        time.Time
	StockCodes     []string
	MinConfidence  float64
	UseNextDayOpen bool
}

// QueryStats carries per-query diagnostics.
type QueryStats struct {
	EventsScanned int
	PriceMisses   int
}

// QueryService answers which signals were valid on a date or date range.
type QueryService interface {
	// FetchSignals returns every signal valid on at least one day of
	// [StartDate, EndDate]. Each qualifying event yields exactly one signal,
	// attributed to the earliest in-range day it is actionable on. Results
	// are ordered by signal date ascending, confidence descending, stock
	// code ascending.
	FetchSignals(ctx context.Context, opts QueryOptions) ([]entity.Signal, QueryStats, error)
	// GetSignalsForDate returns the signals valid on a single date. It is
	// FetchSignals with StartDate = EndDate = date.
	GetSignalsForDate(ctx context.Context, date time.Time, opts QueryOptions) ([]entity.Signal, QueryStats, error)
}

type queryService struct {
	eventRepo repository.DivergenceEventRepository
	priceRepo repository.DailyPriceRepository
	logger    *logger.Logger
}

// NewQueryService creates a new signal query service.
func NewQueryService(eventRepo repository.DivergenceEventRepository, priceRepo repository.DailyPriceRepository, log *logger.Logger) QueryService {
	return &queryService{
		eventRepo: eventRepo,
		priceRepo: priceRepo,
		logger:    log,
	}
}

func (s *queryService) FetchSignals(ctx context.Context, opts QueryOptions) ([]entity.Signal, QueryStats, error) {
	stats := QueryStats{}

	start := utils.Truncate(opts.StartDate)
	end := utils.Truncate(opts.EndDate)

	if start.After(end) {
		return nil, stats, ErrInvalidDateRange
	}
	if opts.MinConfidence < 0 || opts.MinConfidence > 1 {
		return nil, stats, ErrInvalidConfidence
	}

	s.logger.Debug("Querying signals",
		logger.Field("start_date", utils.FormatDate(start)),
		logger.Field("end_date", utils.FormatDate(end)),
		logger.Field("min_confidence", opts.MinConfidence),
		logger.IntField("stock_filter", len(opts.StockCodes)),
	)

	// An event is actionable on some day of [start, end] iff it completed
	// before the last day of the range and expires no earlier than the first.
	events, err := s.eventRepo.Find(ctx, repository.FindEventsParam{
		EndDateBefore:   end,
		ExpiryOnOrAfter: start,
		StockCodes:      opts.StockCodes,
		MinConfidence:   opts.MinConfidence,
	})
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	stats.EventsScanned = len(events)

	signals := make([]entity.Signal, 0, len(events))
	for _, event := range events {
		// Validity is recomputed from the event dates. The status column is
		// a detector-side cache and may be stale.
		signalDate, ok := event.FirstActionableDay(start, end)
		if !ok {
			continue
		}

		entryPrice := event.EndPrice
		if opts.UseNextDayOpen {
			entryPrice, err = s.priceRepo.GetNextDayOpen(ctx, event.StockCode, signalDate)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					stats.PriceMisses++
					s.logger.Debug("No next-day bar, excluding signal",
						logger.Field("stock_code", event.StockCode),
						logger.Field("signal_date", utils.FormatDate(signalDate)),
					)
					continue
				}
				return nil, stats, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}
		}

		signals = append(signals, entity.Signal{
			StockCode:  event.StockCode,
			SignalDate: signalDate,
			Confidence: event.Confidence,
			EntryPrice: entryPrice,
			Reason: fmt.Sprintf("Bullish divergence (indicator %.1f -> %.1f over %d days)",
				event.StartIndicator, event.EndIndicator, event.DaysBetween),
			SourceEventID: event.DivergenceID,
		})
	}

	sort.Slice(signals, func(i, j int) bool {
		if !signals[i].SignalDate.Equal(signals[j].SignalDate) {
			return signals[i].SignalDate.Before(signals[j].SignalDate)
		}
		if signals[i].Confidence != signals[j].Confidence {
			return signals[i].Confidence > signals[j].Confidence
		}
		return signals[i].StockCode < signals[j].StockCode
	})

	s.logger.Info("Signal query completed",
		logger.IntField("signals", len(signals)),
		logger.IntField("events_scanned", stats.EventsScanned),
		logger.IntField("price_misses", stats.PriceMisses),
	)

	return signals, stats, nil
}

func (s *queryService) GetSignalsForDate(ctx context.Context, date time.Time, opts QueryOptions) ([]entity.Signal, QueryStats, error) {
	opts.StartDate = date
	opts.EndDate = date
	return s.FetchSignals(ctx, opts)
}

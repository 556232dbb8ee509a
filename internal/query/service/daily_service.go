package service

import (
	"context"
	"fmt"
	"time"

	"golang-divergence-signals/internal/query/config"
	"golang-divergence-signals/internal/query/formatter"
	"golang-divergence-signals/pkg/common"
	"golang-divergence-signals/pkg/logger"
	"golang-divergence-signals/pkg/telegram"
	"golang-divergence-signals/pkg/utils"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// DailyService runs the scheduled end-of-day signal push: query today's
// signals, render the notification body, deliver it once per trading day.
type DailyService interface {
	Start(ctx context.Context) error
	Stop()
	// RunOnce executes a single push cycle for the given date. Safe to call
	// repeatedly: a Redis marker guarantees at most one push per date.
	RunOnce(ctx context.Context, date time.Time) error
}

type dailyService struct {
	cfg      *config.Config
	querySvc QueryService
	notifier telegram.Notifier
	redis    *redis.Client
	logger   *logger.Logger
	cron     *cron.Cron
}

// NewDailyService creates a new daily signal push service.
func NewDailyService(cfg *config.Config, querySvc QueryService, notifier telegram.Notifier, redisClient *redis.Client, log *logger.Logger) DailyService {
	return &dailyService{
		cfg:      cfg,
		querySvc: querySvc,
		notifier: notifier,
		redis:    redisClient,
		logger:   log,
	}
}

// Start registers the push job on the configured cron schedule.
func (s *dailyService) Start(ctx context.Context) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.cfg.Daily.Schedule, func() {
		date := utils.Truncate(utils.TimeNowCST())
		if err := s.RunOnce(ctx, date); err != nil {
			s.logger.Error("Daily signal push failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid daily schedule %q: %w", s.cfg.Daily.Schedule, err)
	}
	s.cron.Start()
	s.logger.Info("Daily signal push scheduled", logger.Field("schedule", s.cfg.Daily.Schedule))
	return nil
}

// Stop halts the cron scheduler, waiting for a running job to finish.
func (s *dailyService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *dailyService) RunOnce(ctx context.Context, date time.Time) error {
	dateStr := utils.FormatDate(date)
	markerKey := fmt.Sprintf("%s:%s", common.RedisKeySignalsPushed, dateStr)

	acquired, err := s.redis.SetNX(ctx, markerKey, "1", s.cfg.Daily.PushMarkerTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire push marker: %w", err)
	}
	if !acquired {
		s.logger.Info("Signals already pushed for date, skipping", logger.Field("date", dateStr))
		return nil
	}

	signals, stats, err := s.querySvc.GetSignalsForDate(ctx, date, QueryOptions{
		StockCodes:     s.cfg.Query.StockCodes,
		MinConfidence:  s.cfg.Query.MinConfidence,
		UseNextDayOpen: s.cfg.Query.UseNextDayOpen,
	})
	if err != nil {
		s.releaseMarker(ctx, markerKey)
		return fmt.Errorf("daily signal query failed: %w", err)
	}

	s.logger.Info("Daily signals ready",
		logger.Field("date", dateStr),
		logger.IntField("signals", len(signals)),
		logger.IntField("price_misses", stats.PriceMisses),
	)

	meta := formatter.QueryMeta{
		StartDate:      date,
		EndDate:        date,
		StockCodes:     s.cfg.Query.StockCodes,
		MinConfidence:  s.cfg.Query.MinConfidence,
		UseNextDayOpen: s.cfg.Query.UseNextDayOpen,
		GeneratedAt:    utils.TimeNowCST(),
	}

	// Keep the structured document around briefly so other consumers can
	// fetch today's result without re-running the query.
	if doc, err := formatter.FormatJSON(signals, meta); err == nil {
		cacheKey := fmt.Sprintf("%s:%s", common.RedisKeySignalsCache, dateStr)
		if err := s.redis.Set(ctx, cacheKey, doc, s.cfg.Daily.ResultCacheTTL).Err(); err != nil {
			s.logger.Warn("Failed to cache signal document", logger.ErrorField(err))
		}
	}

	if !s.cfg.Daily.PushEnabled {
		s.logger.Info("Push disabled, skipping notification", logger.Field("date", dateStr))
		return nil
	}

	message := formatter.FormatMessage(signals, meta)
	if err := s.notifier.SendMessage(ctx, message); err != nil {
		s.releaseMarker(ctx, markerKey)
		return fmt.Errorf("failed to push signals: %w", err)
	}

	s.logger.Info("Daily signals pushed", logger.Field("date", dateStr))
	return nil
}

// releaseMarker frees the per-day marker after a failed cycle so a retry
// can push.
func (s *dailyService) releaseMarker(ctx context.Context, key string) {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("Failed to release push marker", logger.ErrorField(err), logger.Field("key", key))
	}
}

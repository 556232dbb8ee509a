package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang-divergence-signals/internal/entity"
	"golang-divergence-signals/internal/query/config"
	"golang-divergence-signals/pkg/common"
	pkgconfig "golang-divergence-signals/pkg/config"
	"golang-divergence-signals/pkg/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueryService struct {
	signals []entity.Signal
	err     error
	calls   int
}

func (f *fakeQueryService) FetchSignals(_ context.Context, _ QueryOptions) ([]entity.Signal, QueryStats, error) {
	f.calls++
	return f.signals, QueryStats{}, f.err
}

func (f *fakeQueryService) GetSignalsForDate(ctx context.Context, date time.Time, opts QueryOptions) ([]entity.Signal, QueryStats, error) {
	opts.StartDate = date
	opts.EndDate = date
	return f.FetchSignals(ctx, opts)
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) SendMessage(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func dailyTestConfig() *config.Config {
	return &config.Config{
		Logger: pkgconfig.Logger{Level: "error", Encoding: "console"},
		Query: config.Query{
			MinConfidence:  0.5,
			UseNextDayOpen: true,
		},
		Daily: config.Daily{
			Schedule:       "0 18 * * 1-5",
			PushEnabled:    true,
			PushMarkerTTL:  48 * time.Hour,
			ResultCacheTTL: 15 * time.Minute,
		},
	}
}

func newDailyFixture(t *testing.T, querySvc QueryService, notifier *fakeNotifier) (DailyService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDailyService(dailyTestConfig(), querySvc, notifier, client, testLogger()), mr
}

func TestDailyRunOnce_PushesOncePerDay(t *testing.T) {
	querySvc := &fakeQueryService{signals: []entity.Signal{{
		StockCode:     "600000_SH",
		SignalDate:    utils.Date(2025, 10, 10),
		Confidence:    0.62,
		EntryPrice:    9.87,
		Reason:        "Bullish divergence (indicator -180.0 -> -120.0 over 10 days)",
		SourceEventID: "A_20251104",
	}}}
	notifier := &fakeNotifier{}
	svc, mr := newDailyFixture(t, querySvc, notifier)

	date := utils.Date(2025, 10, 10)
	require.NoError(t, svc.RunOnce(context.Background(), date))
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "600000_SH")

	// Second run for the same date is a no-op.
	require.NoError(t, svc.RunOnce(context.Background(), date))
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, 1, querySvc.calls)

	// Marker and cached document are both present.
	assert.True(t, mr.Exists(fmt.Sprintf("%s:2025-10-10", common.RedisKeySignalsPushed)))
	assert.True(t, mr.Exists(fmt.Sprintf("%s:2025-10-10", common.RedisKeySignalsCache)))
}

func TestDailyRunOnce_QueryFailureReleasesMarker(t *testing.T) {
	querySvc := &fakeQueryService{err: fmt.Errorf("%w: connection refused", ErrStoreUnavailable)}
	notifier := &fakeNotifier{}
	svc, mr := newDailyFixture(t, querySvc, notifier)

	date := utils.Date(2025, 10, 10)
	err := svc.RunOnce(context.Background(), date)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Empty(t, notifier.sent)
	assert.False(t, mr.Exists(fmt.Sprintf("%s:2025-10-10", common.RedisKeySignalsPushed)))

	// A retry after recovery pushes.
	querySvc.err = nil
	require.NoError(t, svc.RunOnce(context.Background(), date))
	assert.Len(t, notifier.sent, 1)
}

func TestDailyRunOnce_PushFailureReleasesMarker(t *testing.T) {
	querySvc := &fakeQueryService{}
	notifier := &fakeNotifier{err: errors.New("telegram unreachable")}
	svc, mr := newDailyFixture(t, querySvc, notifier)

	date := utils.Date(2025, 10, 10)
	require.Error(t, svc.RunOnce(context.Background(), date))
	assert.False(t, mr.Exists(fmt.Sprintf("%s:2025-10-10", common.RedisKeySignalsPushed)))
}

func TestDailyRunOnce_PushDisabledStillCaches(t *testing.T) {
	querySvc := &fakeQueryService{}
	notifier := &fakeNotifier{}
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := dailyTestConfig()
	cfg.Daily.PushEnabled = false
	svc := NewDailyService(cfg, querySvc, notifier, client, testLogger())

	require.NoError(t, svc.RunOnce(context.Background(), utils.Date(2025, 10, 10)))
	assert.Empty(t, notifier.sent)
	assert.True(t, mr.Exists(fmt.Sprintf("%s:2025-10-10", common.RedisKeySignalsCache)))
}

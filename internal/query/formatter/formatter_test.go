package formatter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang-divergence-signals/internal/entity"
	"golang-divergence-signals/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSignals() []entity.Signal {
	return []entity.Signal{
		{
			StockCode:     "600000_SH",
			SignalDate:    utils.Date(2025, 10, 10),
			Confidence:    0.62,
			EntryPrice:    9.87,
			Reason:        "Bullish divergence (indicator -180.0 -> -120.0 over 10 days)",
			SourceEventID: "A_20251104",
		},
		{
			StockCode:     "000001_SZ",
			SignalDate:    utils.Date(2025, 10, 11),
			Confidence:    0.85,
			EntryPrice:    12.34,
			Reason:        "Bullish divergence (indicator -200.0 -> -90.0 over 7 days)",
			SourceEventID: "B_20251105",
		},
	}
}

func sampleMeta() QueryMeta {
	return QueryMeta{
		StartDate:      utils.Date(2025, 10, 10),
		EndDate:        utils.Date(2025, 10, 11),
		MinConfidence:  0.5,
		UseNextDayOpen: true,
		GeneratedAt:    time.Date(2025, 10, 11, 18, 0, 0, 0, time.UTC),
	}
}

func TestFormatConsole(t *testing.T) {
	out := FormatConsole(sampleSignals())

	assert.Contains(t, out, "600000_SH")
	assert.Contains(t, out, "2025-10-10")
	assert.Contains(t, out, "62.00%")
	assert.Contains(t, out, "Signals:          2")
	assert.Contains(t, out, "Unique stocks:    2")
	assert.Contains(t, out, "2025-10-10 ~ 2025-10-11")
	// Mean of 0.62 and 0.85.
	assert.Contains(t, out, "73.50%")
	// Header row follows the canonical field order.
	for _, name := range entity.SignalFieldNames {
		assert.Contains(t, out, name)
	}
}

func TestFormatConsole_Empty(t *testing.T) {
	out := FormatConsole(nil)
	assert.Equal(t, NoSignalsMessage, out)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "signals.csv")
	signals := sampleSignals()

	require.NoError(t, WriteCSV(signals, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\xEF\xBB\xBF"), "missing UTF-8 BOM")
	assert.Contains(t, string(data), strings.Join(entity.SignalFieldNames, ","))

	parsed, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, signals, parsed)
}

func TestWriteCSV_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.csv")
	require.NoError(t, WriteCSV(nil, path))

	parsed, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestFormatJSON(t *testing.T) {
	out, err := FormatJSON(sampleSignals(), sampleMeta())
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	meta := doc["meta"].(map[string]interface{})
	assert.Equal(t, "2025-10-10", meta["start_date"])
	assert.Equal(t, "2025-10-11", meta["end_date"])
	assert.Equal(t, 0.5, meta["min_confidence"])
	assert.Equal(t, "2025-10-11 18:00:00", meta["generated_at"])

	assert.Equal(t, float64(2), doc["total_signals"])

	stats := doc["statistics"].(map[string]interface{})
	assert.Equal(t, float64(2), stats["unique_stocks"])

	signals := doc["signals"].([]interface{})
	require.Len(t, signals, 2)
	first := signals[0].(map[string]interface{})
	assert.Equal(t, "600000_SH", first["stock_code"])
	assert.Equal(t, "A_20251104", first["source_event_id"])
}

func TestFormatJSON_EmptyOmitsStatistics(t *testing.T) {
	out, err := FormatJSON(nil, sampleMeta())
	require.NoError(t, err)
	assert.NotContains(t, out, "statistics")
	assert.Contains(t, out, `"total_signals": 0`)
}

func TestWriteJSON_DualMode(t *testing.T) {
	// No path: document returned, nothing written.
	doc, err := WriteJSON(sampleSignals(), sampleMeta(), "")
	require.NoError(t, err)
	assert.Contains(t, doc, "total_signals")

	// With path: same document lands on disk.
	path := filepath.Join(t.TempDir(), "out", "signals.json")
	written, err := WriteJSON(sampleSignals(), sampleMeta(), path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, written, string(data))
	assert.Equal(t, doc, written)
}

func TestFormatMessage(t *testing.T) {
	out := FormatMessage(sampleSignals(), sampleMeta())

	assert.Contains(t, out, "2025-10-10~2025-10-11")
	assert.Contains(t, out, "(2)")
	assert.Contains(t, out, "600000_SH")
	assert.Contains(t, out, "62.00%")
	assert.Contains(t, out, "9.87")
	assert.Contains(t, out, "`A_20251104`")
	assert.LessOrEqual(t, len(out), maxMessageLen)
}

func TestFormatMessage_Empty(t *testing.T) {
	out := FormatMessage(nil, sampleMeta())
	assert.Contains(t, out, NoSignalsMessage)
}

func TestFormatMessage_TruncatesWithRemainderCount(t *testing.T) {
	var signals []entity.Signal
	for i := 0; i < 200; i++ {
		signals = append(signals, entity.Signal{
			StockCode:     fmt.Sprintf("6%05d_SH", i),
			SignalDate:    utils.Date(2025, 10, 10),
			Confidence:    0.75,
			EntryPrice:    10.5,
			Reason:        "Bullish divergence (indicator -180.0 -> -120.0 over 10 days)",
			SourceEventID: fmt.Sprintf("EV_%03d", i),
		})
	}

	out := FormatMessage(signals, sampleMeta())
	assert.LessOrEqual(t, len(out), maxMessageLen)
	assert.Contains(t, out, "more signals")
}

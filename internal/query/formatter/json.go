package formatter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang-divergence-signals/internal/entity"
	"golang-divergence-signals/pkg/utils"
)

// signalDocument is the structured export: a metadata block describing the
// query, aggregate statistics, and the signal array itself.
type signalDocument struct {
	Meta         documentMeta   `json:"meta"`
	TotalSignals int            `json:"total_signals"`
	Statistics   *documentStats `json:"statistics,omitempty"`
	Signals      []signalJSON   `json:"signals"`
}

type documentMeta struct {
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	StockCodes     []string `json:"stock_codes,omitempty"`
	MinConfidence  float64  `json:"min_confidence"`
	UseNextDayOpen bool     `json:"use_next_day_open"`
	GeneratedAt    string   `json:"generated_at"`
}

type documentStats struct {
	UniqueStocks int             `json:"unique_stocks"`
	DateRange    documentRange   `json:"date_range"`
	Confidence   confidenceStats `json:"confidence"`
}

type documentRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type confidenceStats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// signalJSON mirrors the canonical signal field order.
type signalJSON struct {
	StockCode     string  `json:"stock_code"`
	SignalDate    string  `json:"signal_date"`
	Confidence    float64 `json:"confidence"`
	EntryPrice    float64 `json:"entry_price"`
	Reason        string  `json:"reason"`
	SourceEventID string  `json:"source_event_id"`
}

// FormatJSON renders signals together with query metadata as an indented
// JSON document.
func FormatJSON(signals []entity.Signal, meta QueryMeta) (string, error) {
	doc := signalDocument{
		Meta: documentMeta{
			StartDate:      utils.FormatDate(meta.StartDate),
			EndDate:        utils.FormatDate(meta.EndDate),
			StockCodes:     meta.StockCodes,
			MinConfidence:  meta.MinConfidence,
			UseNextDayOpen: meta.UseNextDayOpen,
			GeneratedAt:    meta.GeneratedAt.Format("2006-01-02 15:04:05"),
		},
		TotalSignals: len(signals),
		Signals:      make([]signalJSON, 0, len(signals)),
	}

	for _, s := range signals {
		doc.Signals = append(doc.Signals, signalJSON{
			StockCode:     s.StockCode,
			SignalDate:    utils.FormatDate(s.SignalDate),
			Confidence:    s.Confidence,
			EntryPrice:    s.EntryPrice,
			Reason:        s.Reason,
			SourceEventID: s.SourceEventID,
		})
	}

	if len(signals) > 0 {
		stats := summarize(signals)
		doc.Statistics = &documentStats{
			UniqueStocks: stats.UniqueStocks,
			DateRange: documentRange{
				Start: utils.FormatDate(stats.FirstDate),
				End:   utils.FormatDate(stats.LastDate),
			},
			Confidence: confidenceStats{
				Average: stats.AvgConfidence,
				Min:     stats.MinConfidence,
				Max:     stats.MaxConfidence,
			},
		}
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal signals: %w", err)
	}
	return string(out), nil
}

// WriteJSON renders the signal document and writes it to path. With an empty
// path the document is returned without touching the filesystem, so callers
// can use one function for both modes.
func WriteJSON(signals []entity.Signal, meta QueryMeta, path string) (string, error) {
	out, err := FormatJSON(signals, meta)
	if err != nil {
		return "", err
	}
	if path == "" {
		return out, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return "", fmt.Errorf("failed to write json file: %w", err)
	}
	return out, nil
}

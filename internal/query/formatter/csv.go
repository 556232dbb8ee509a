package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang-divergence-signals/internal/entity"
	"golang-divergence-signals/pkg/utils"
)

// utf8BOM makes spreadsheet tools detect the encoding and render non-ASCII
// text correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV exports signals to a CSV file at path, creating parent directories
// as needed. The header row follows the canonical signal field order.
func WriteCSV(signals []entity.Signal, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(entity.SignalFieldNames); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, s := range signals {
		record := []string{
			s.StockCode,
			utils.FormatDate(s.SignalDate),
			strconv.FormatFloat(s.Confidence, 'f', -1, 64),
			strconv.FormatFloat(s.EntryPrice, 'f', -1, 64),
			s.Reason,
			s.SourceEventID,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// ReadCSV parses a signal CSV previously written by WriteCSV.
func ReadCSV(path string) ([]entity.Signal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv file: %w", err)
	}
	if len(data) >= len(utf8BOM) && string(data[:len(utf8BOM)]) == string(utf8BOM) {
		data = data[len(utf8BOM):]
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	signals := make([]entity.Signal, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(entity.SignalFieldNames) {
			return nil, fmt.Errorf("unexpected csv row width: %d", len(record))
		}
		date, err := utils.ParseDate(record[1])
		if err != nil {
			return nil, fmt.Errorf("invalid signal_date %q: %w", record[1], err)
		}
		confidence, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid confidence %q: %w", record[2], err)
		}
		entryPrice, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid entry_price %q: %w", record[3], err)
		}
		signals = append(signals, entity.Signal{
			StockCode:     record[0],
			SignalDate:    date,
			Confidence:    confidence,
			EntryPrice:    entryPrice,
			Reason:        record[4],
			SourceEventID: record[5],
		})
	}
	return signals, nil
}

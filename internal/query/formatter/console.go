package formatter

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"golang-divergence-signals/internal/entity"
	"golang-divergence-signals/pkg/utils"
)

const consoleRule = 110

// FormatConsole renders signals as a human-readable table with a trailing
// summary block.
func FormatConsole(signals []entity.Signal) string {
	if len(signals) == 0 {
		return NoSignalsMessage
	}

	var b strings.Builder
	rule := strings.Repeat("=", consoleRule)

	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("Query result: %d signals\n", len(signals)))
	b.WriteString(rule + "\n\n")

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(entity.SignalFieldNames, "\t"))
	for _, s := range signals {
		fmt.Fprintf(w, "%s\t%s\t%.2f%%\t%.2f\t%s\t%s\n",
			s.StockCode,
			utils.FormatDate(s.SignalDate),
			s.Confidence*100,
			s.EntryPrice,
			s.Reason,
			s.SourceEventID,
		)
	}
	w.Flush()

	stats := summarize(signals)
	b.WriteString("\n" + rule + "\n")
	b.WriteString("Summary:\n")
	b.WriteString(fmt.Sprintf("  Signals:          %d\n", stats.Count))
	b.WriteString(fmt.Sprintf("  Unique stocks:    %d\n", stats.UniqueStocks))
	b.WriteString(fmt.Sprintf("  Date range:       %s ~ %s\n", utils.FormatDate(stats.FirstDate), utils.FormatDate(stats.LastDate)))
	b.WriteString(fmt.Sprintf("  Mean confidence:  %.2f%%\n", stats.AvgConfidence*100))
	b.WriteString(fmt.Sprintf("  Confidence range: %.2f%% ~ %.2f%%\n", stats.MinConfidence*100, stats.MaxConfidence*100))
	b.WriteString(rule)

	return b.String()
}

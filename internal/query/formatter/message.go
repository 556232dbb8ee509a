package formatter

import (
	"fmt"
	"strings"

	"golang-divergence-signals/internal/entity"
	"golang-divergence-signals/pkg/utils"
)

// maxMessageLen keeps the rendering within the Telegram Bot API message
// size limit, with a little headroom for the truncation line.
const maxMessageLen = 4090

// FormatMessage renders signals as a condensed Markdown notification body.
// Signals are grouped per date; when the rendering would exceed the message
// budget the remainder is folded into an explicit "+K more" line.
func FormatMessage(signals []entity.Signal, meta QueryMeta) string {
	title := messageTitle(signals, meta)

	if len(signals) == 0 {
		return fmt.Sprintf("%s\n\n%s", title, NoSignalsMessage)
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("*Signals:* %d\n", len(signals)))
	b.WriteString(fmt.Sprintf("*Unique stocks:* %d\n\n", summarize(signals).UniqueStocks))

	footer := fmt.Sprintf("\n_Generated at %s_", meta.GeneratedAt.Format("2006-01-02 15:04:05"))

	rendered := 0
	currentDate := ""
	for i, s := range signals {
		var entry strings.Builder
		date := utils.FormatDate(s.SignalDate)
		if date != currentDate {
			entry.WriteString(fmt.Sprintf("📅 *%s*\n", date))
			currentDate = date
		}
		entry.WriteString(fmt.Sprintf("%d. *%s*\n", i+1, s.StockCode))
		entry.WriteString(fmt.Sprintf("   🎯 Confidence: %.2f%%\n", s.Confidence*100))
		entry.WriteString(fmt.Sprintf("   💰 Entry: %.2f\n", s.EntryPrice))
		entry.WriteString(fmt.Sprintf("   💬 %s\n", s.Reason))
		entry.WriteString(fmt.Sprintf("   🆔 `%s`\n\n", s.SourceEventID))

		remaining := len(signals) - rendered
		truncation := fmt.Sprintf("_+%d more signals_\n", remaining)
		if b.Len()+entry.Len()+len(truncation)+len(footer) > maxMessageLen {
			b.WriteString(truncation)
			break
		}

		b.WriteString(entry.String())
		rendered++
	}

	b.WriteString(footer)
	return b.String()
}

func messageTitle(signals []entity.Signal, meta QueryMeta) string {
	start := utils.FormatDate(meta.StartDate)
	end := utils.FormatDate(meta.EndDate)

	var span string
	if start == end {
		span = start
	} else {
		span = fmt.Sprintf("%s~%s", start, end)
	}
	return fmt.Sprintf("📊 *%s Divergence Signals (%d)*", span, len(signals))
}

package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"CupSentinel/internal/model"
	"CupSentinel/internal/pattern"
)

const stampLayout = "2006-01-02 15:04 MST"

// FormatDetectionAlert formats a positive detection into a Telegram message.
// Times are shown in loc (the exchange timezone).
func FormatDetectionAlert(company, ticker string, res *pattern.Result, loc *time.Location) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("☕ <b>Cup and handle</b> | %s (%s)\n\n", html.EscapeString(company), html.EscapeString(ticker)))

	p := res.Points
	writeStamp(&b, "Left rim", p.LeftRim, loc)
	writeStamp(&b, "Cup low", p.LeftMin, loc)
	writeStamp(&b, "Right rim", p.RightRim, loc)
	writeStamp(&b, "Handle low", p.RightMin, loc)
	writeStamp(&b, "Current", p.Current, loc)

	if len(res.Smoothed) > 0 && res.Cup.End < len(res.Smoothed) {
		rim := res.Smoothed[res.Cup.End]
		last := res.Smoothed[len(res.Smoothed)-1]
		trough := res.Smoothed[res.Cup.Trough]
		b.WriteString(fmt.Sprintf("\nRim: %.2f | Cup depth: %.1f%% | vs rim: %+.1f%%\n",
			rim, (rim-trough)/rim*100, (last-rim)/rim*100))
	}
	b.WriteString(fmt.Sprintf("Window: %d | Volatility: %.4f\n", res.Diagnostics.Window, res.Diagnostics.Volatility))
	return b.String()
}

func writeStamp(b *strings.Builder, label string, t *time.Time, loc *time.Location) {
	if t == nil {
		return
	}
	b.WriteString(fmt.Sprintf("%s: %s\n", label, t.In(loc).Format(stampLayout)))
}

// FormatDetectionReply answers a /detect command.
func FormatDetectionReply(company, ticker string, res *pattern.Result, loc *time.Location) string {
	if res.Detected {
		return FormatDetectionAlert(company, ticker, res, loc)
	}
	return fmt.Sprintf("No cup and handle on %s (%s) over %d samples.",
		html.EscapeString(company), html.EscapeString(ticker), len(res.Smoothed))
}

// FormatSymbols lists the tracked universe.
func FormatSymbols(symbols []model.Symbol) string {
	var b strings.Builder
	b.WriteString("📋 <b>Tracked symbols</b>\n\n")
	for _, s := range symbols {
		b.WriteString(fmt.Sprintf("%s: %s\n", html.EscapeString(s.Ticker), html.EscapeString(s.Company)))
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "Commands:\n/detect &lt;company&gt; - run detection now\n/symbols - list tracked symbols"
}

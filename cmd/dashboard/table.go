package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/rxtech-lab/argo-dashboard/internal/engine"
)

const missingCell = "-"

// renderTable prints the last rows of chart, one column per trace.
// rows <= 0 prints every row.
func renderTable(chart engine.ChartData, rows int) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	header := table.Row{"Date"}
	configs := make([]table.ColumnConfig, 0, len(chart.Traces))

	for i, trace := range chart.Traces {
		header = append(header, trace.Label)
		configs = append(configs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight})
	}

	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	start := 0
	if rows > 0 && len(chart.Dates) > rows {
		start = len(chart.Dates) - rows
	}

	for i := start; i < len(chart.Dates); i++ {
		row := table.Row{formatDate(chart.Dates[i])}

		for _, trace := range chart.Traces {
			row = append(row, formatCell(trace, i))
		}

		t.AppendRow(row)
	}

	t.SetCaption("%s, %d of %d rows", chart.TimeRange, len(chart.Dates)-start, len(chart.Dates))

	return t.Render()
}

func formatDate(date time.Time) string {
	if date.IsZero() {
		return missingCell
	}

	return date.Format(time.DateOnly)
}

func formatCell(trace engine.Trace, i int) string {
	value, ok := trace.Values.At(i)
	if !ok {
		return missingCell
	}

	return fmt.Sprintf("%.2f", value)
}

// formatSummary renders the dashboard header line, e.g. "QQQ 412.30 +1.20 (+0.29%)".
func formatSummary(symbol string, summary engine.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s", symbol, summary.Close.StringFixed(2))

	if summary.ChangeAmount.Valid {
		amount := summary.ChangeAmount.Decimal
		sign := ""

		if amount.IsPositive() {
			sign = "+"
		}

		fmt.Fprintf(&b, " %s%s", sign, amount.StringFixed(2))

		if summary.ChangePercent.Valid {
			fmt.Fprintf(&b, " (%s%s%%)", sign, summary.ChangePercent.Decimal.StringFixed(2))
		}
	}

	if !summary.Date.IsZero() {
		fmt.Fprintf(&b, " as of %s", summary.Date.Format(time.DateOnly))
	}

	return b.String()
}

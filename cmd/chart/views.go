package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/rxtech-lab/argo-dashboard/internal/engine"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

const (
	minColumnWidth = 10
	missingCell    = "-"
)

// indicatorItem implements list.Item for the indicator toggle list.
type indicatorItem struct {
	indicator types.IndicatorType
	params    []any
	visible   bool
}

func (i indicatorItem) Title() string {
	mark := "[ ]"
	if i.visible {
		mark = "[x]"
	}

	return fmt.Sprintf("%s %s", mark, i.indicator)
}

func (i indicatorItem) Description() string {
	if len(i.params) == 0 {
		return "defaults"
	}

	return fmt.Sprintf("params %v", i.params)
}

func (i indicatorItem) FilterValue() string { return string(i.indicator) }

// NewIndicatorList creates the list of toggleable indicators, all hidden.
func NewIndicatorList(indicators []types.IndicatorType, defaults map[types.IndicatorType][]any) list.Model {
	items := make([]list.Item, 0, len(indicators))
	for _, indicator := range indicators {
		items = append(items, indicatorItem{indicator: indicator, params: defaults[indicator]})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, listWidth, 20)
	l.Title = "Indicators"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewDataTable creates the table showing the latest chart rows.
func NewDataTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{{Title: "Date", Width: minColumnWidth}}),
		table.WithFocused(false),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// TableColumns returns a Date column followed by one column per trace.
func TableColumns(chart engine.ChartData) []table.Column {
	columns := []table.Column{{Title: "Date", Width: minColumnWidth}}

	for _, trace := range chart.Traces {
		columns = append(columns, table.Column{
			Title: trace.Label,
			Width: max(minColumnWidth, len(trace.Label)+2),
		})
	}

	return columns
}

// TableRows returns at most limit rows, newest first.
func TableRows(chart engine.ChartData, limit int) []table.Row {
	count := len(chart.Dates)
	if limit > 0 && count > limit {
		count = limit
	}

	rows := make([]table.Row, 0, count)

	for i := len(chart.Dates) - 1; i >= len(chart.Dates)-count; i-- {
		row := table.Row{chart.Dates[i].Format(time.DateOnly)}

		for _, trace := range chart.Traces {
			value, ok := trace.Values.At(i)
			if !ok {
				row = append(row, missingCell)
				continue
			}

			row = append(row, fmt.Sprintf("%.2f", value))
		}

		rows = append(rows, row)
	}

	return rows
}

// UpdateTable replaces the table contents with chart.
func UpdateTable(t table.Model, chart engine.ChartData, limit int) table.Model {
	// rows must be cleared first, the table renders them against the new columns
	t.SetRows(nil)
	t.SetColumns(TableColumns(chart))
	t.SetRows(TableRows(chart, limit))

	return t
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rxtech-lab/argo-dashboard/internal/dataset"
	"github.com/rxtech-lab/argo-dashboard/internal/engine"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

// Application states.
const (
	StateLoading = iota
	StateChart
)

const (
	defaultRows = 15
	listWidth   = 28
)

var timeRanges = []types.TimeRange{types.TimeRangeAll, types.TimeRangeModel}

// Renderer turns a snapshot into chart traces.
type Renderer interface {
	Render(snapshot dataset.Snapshot, req engine.RenderRequest) (engine.ChartData, error)
}

// LoadFunc loads a fresh dataset snapshot.
type LoadFunc func(ctx context.Context) (dataset.Snapshot, error)

// Model is the Bubble Tea model for the chart viewer.
type Model struct {
	state         int
	symbol        string
	renderer      Renderer
	load          LoadFunc
	params        map[types.IndicatorType][]any
	indicatorList list.Model
	dataTable     table.Model
	snapshot      dataset.Snapshot
	chart         engine.ChartData
	summary       engine.Summary
	hasSummary    bool
	rangeIndex    int
	rows          int
	err           error
	width         int
	height        int
}

// NewModel creates a Model that loads its data on Init.
func NewModel(symbol string, renderer Renderer, load LoadFunc, indicators []types.IndicatorType, params map[types.IndicatorType][]any) Model {
	return Model{
		state:         StateLoading,
		symbol:        symbol,
		renderer:      renderer,
		load:          load,
		params:        params,
		indicatorList: NewIndicatorList(indicators, params),
		dataTable:     NewDataTable(),
		rows:          defaultRows,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.loadData()
}

func (m Model) loadData() tea.Cmd {
	load := m.load

	return func() tea.Msg {
		snapshot, err := load(context.Background())
		if err != nil {
			return LoadErrorMsg{Err: err}
		}

		return DataLoadedMsg{Snapshot: snapshot}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "u":
			m.err = nil
			return m, m.loadData()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rows = max(1, msg.Height-8)
		m.indicatorList.SetSize(listWidth, msg.Height-4)
		m.dataTable.SetWidth(max(0, msg.Width-listWidth-2))
		m.dataTable.SetHeight(m.rows + 2)

		if m.state == StateChart {
			m.dataTable = UpdateTable(m.dataTable, m.chart, m.rows)
		}

		return m, nil

	case DataLoadedMsg:
		m.snapshot = msg.Snapshot
		m.summary, m.err = engine.Summarize(msg.Snapshot.Bars)
		m.hasSummary = m.err == nil
		m.state = StateChart
		m.render()

		return m, nil

	case LoadErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	if m.state == StateChart {
		return m.updateChart(msg)
	}

	return m, nil
}

func (m Model) updateChart(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case " ":
			item, ok := m.indicatorList.SelectedItem().(indicatorItem)
			if !ok {
				return m, nil
			}

			item.visible = !item.visible
			cmd := m.indicatorList.SetItem(m.indicatorList.Index(), item)
			m.render()

			return m, cmd
		case "r":
			m.rangeIndex = (m.rangeIndex + 1) % len(timeRanges)
			m.render()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.indicatorList, cmd = m.indicatorList.Update(msg)
	return m, cmd
}

// Visible returns the toggled-on indicators in list order.
func (m Model) Visible() []types.IndicatorType {
	var visible []types.IndicatorType

	for _, listed := range m.indicatorList.Items() {
		if item, ok := listed.(indicatorItem); ok && item.visible {
			visible = append(visible, item.indicator)
		}
	}

	return visible
}

// TimeRange returns the selected time range.
func (m Model) TimeRange() types.TimeRange {
	return timeRanges[m.rangeIndex]
}

func (m *Model) render() {
	chart, err := m.renderer.Render(m.snapshot, engine.RenderRequest{
		TimeRange: m.TimeRange(),
		Visible:   m.Visible(),
		Params:    m.params,
	})
	if err != nil {
		m.err = err
		return
	}

	m.chart = chart
	m.dataTable = UpdateTable(m.dataTable, chart, m.rows)
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateLoading:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("%s Dashboard", m.symbol)))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
			s.WriteString(HelpStyle.Render("u: retry | q: quit"))
		} else {
			s.WriteString("Loading data...\n\n")
			s.WriteString(HelpStyle.Render("q: quit"))
		}

	case StateChart:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("%s Dashboard (%s)", m.symbol, m.TimeRange())))
		s.WriteString("\n")

		if m.hasSummary {
			s.WriteString(FormatSummary(m.symbol, m.summary))
			s.WriteString("\n")
		}

		s.WriteString("\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			panelStyle.Render(m.indicatorList.View()),
			m.dataTable.View(),
		))
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(fmt.Sprintf("%d bars | ↑/↓: move | space: toggle | r: range | u: reload | q: quit", len(m.snapshot.Bars))))
	}

	return s.String()
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/tracker"
)

type weekModel struct {
	tracker *tracker.Tracker
	prefs   *prefs
	now     func() time.Time
	width   int
	height  int

	offset  int // weeks back from the current one
	summary tracker.WeekSummary
	loaded  bool

	chart barchart.Model
}

func newWeekModel(t *tracker.Tracker, p *prefs, now func() time.Time) weekModel {
	return weekModel{
		tracker: t,
		prefs:   p,
		now:     now,
		chart:   barchart.New(60, 12),
	}
}

func (w *weekModel) setSize(width, height int) {
	w.width = width
	w.height = height
}

type weekDataMsg struct {
	summary tracker.WeekSummary
	err     error
}

func (w weekModel) anchor() time.Time {
	return w.now().AddDate(0, 0, -7*w.offset)
}

// refresh recomputes the summary from stored progress every time the view
// opens.
func (w weekModel) refresh() tea.Cmd {
	tr, date := w.tracker, w.anchor()
	return func() tea.Msg {
		s, err := tr.Week(date)
		return weekDataMsg{summary: s, err: err}
	}
}

func (w weekModel) update(msg tea.Msg) (weekModel, tea.Cmd) {
	switch msg := msg.(type) {
	case weekDataMsg:
		if msg.err != nil {
			return w, errCmd("Week summary failed", msg.err)
		}
		w.summary = msg.summary
		w.loaded = true
		w.buildChart()
		return w, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			w.offset++
			return w, w.refresh()
		case key.Matches(msg, keys.Right):
			if w.offset > 0 {
				w.offset--
			}
			return w, w.refresh()
		case key.Matches(msg, keys.Today):
			w.offset = 0
			return w, w.refresh()
		}
	}
	return w, nil
}

func (w *weekModel) buildChart() {
	chartWidth := max(20, w.width-8)
	chartHeight := 12
	if w.height > 30 {
		chartHeight = 16
	}
	w.chart = barchart.New(chartWidth, chartHeight)

	goal := w.summary.Objectives.Kcal
	var bars []barchart.BarData
	for _, d := range w.summary.Days {
		label := d.Date
		if t, err := time.Parse(model.DateLayout, d.Date); err == nil {
			label = t.Format("Mon 02")
		}

		style := lipgloss.NewStyle().Foreground(colorSubtle)
		switch {
		case !d.Tracked:
		case goal > 0 && d.Consumed.Kcal > goal:
			style = lipgloss.NewStyle().Foreground(colorWarning)
		default:
			style = lipgloss.NewStyle().Foreground(colorSuccess)
		}

		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{{Name: "kcal", Value: d.Consumed.Kcal, Style: style}},
		})
	}

	w.chart.PushAll(bars)
	w.chart.Draw()
}

func (w weekModel) view() string {
	width := w.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Week"), "  ",
		mutedStyle.Render(fmt.Sprintf("%s to %s", w.summary.Start, w.summary.End)),
	)
	if !w.loaded {
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("Loading...")))
	}

	nav := mutedStyle.Render("  ←/→: navigate weeks  t: this week")
	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", w.chart.View(), "", w.renderSummary(), "", w.renderDays(width), "", nav,
		),
	)
}

func (w weekModel) renderSummary() string {
	s := w.summary
	ratio := func(done, planned int) string {
		return fmt.Sprintf("%d/%d", done, planned)
	}

	rows := []string{
		fmt.Sprintf("  %-14s %s", "Average", highlightStyle.Render(w.prefs.macros(s.Average))),
		fmt.Sprintf("  %-14s %s", "Objectives", w.prefs.macros(model.Macros{
			Kcal: s.Objectives.Kcal, ProteinG: s.Objectives.ProteinG, LipidG: s.Objectives.LipidG, CarbG: s.Objectives.CarbG,
		})),
		fmt.Sprintf("  %-14s %s", "Meals", ratio(s.MealsCompleted, s.MealsPlanned)),
		fmt.Sprintf("  %-14s %s", "Activities", ratio(s.ActivitiesCompleted, s.ActivitiesPlanned)),
		fmt.Sprintf("  %-14s %s", "Supplements", ratio(s.SupplementsCompleted, s.SupplementsPlanned)),
	}
	if s.CaloriesBurned > 0 {
		rows = append(rows, fmt.Sprintf("  %-14s %s kcal", "Burned", w.prefs.num(float64(s.CaloriesBurned), 0)))
	}
	if len(s.CompletedActivities) > 0 {
		rows = append(rows, fmt.Sprintf("  %-14s %s", "Done", strings.Join(s.CompletedActivities, ", ")))
	}
	return strings.Join(rows, "\n")
}

func (w weekModel) renderDays(width int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %6s %-22s %6s %8s", "Date", "Meals", "Activity", "Supps", "kcal")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(width-6, 58))))
	for _, d := range w.summary.Days {
		if !d.Tracked {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %6s %-22s %6s %8s", d.Date, "-", truncate(d.Activity, 22), "-", "-")))
			continue
		}
		rows = append(rows, fmt.Sprintf("  %-12s %6s %s %-18s %6d %8s",
			d.Date, fmt.Sprintf("%d/%d", d.MealsDone, len(model.AllSlots)),
			checkbox(d.ActivityDone), truncate(d.Activity, 18), d.SupplementsDone, w.prefs.num(d.Consumed.Kcal, 0)))
	}
	return strings.Join(rows, "\n")
}

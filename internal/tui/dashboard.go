package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/protocol"
	"github.com/sadopc/eprotocol/internal/reference"
	"github.com/sadopc/eprotocol/internal/tracker"
)

// Row layout of the day list: meal slots, then the activity, then one row
// per supplement.
var activityRow = len(model.AllSlots)

type pickOption struct {
	key   string
	label string
}

type dashboardModel struct {
	tracker *tracker.Tracker
	prefs   *prefs
	width   int
	height  int

	today  time.Time
	date   time.Time
	day    tracker.Day
	loaded bool
	cursor int

	// Meal or activity picker state
	picking      bool
	pickActivity bool
	pickSlot     model.Slot
	options      []pickOption
	pickerCursor int
}

func newDashboardModel(t *tracker.Tracker, p *prefs, now time.Time) dashboardModel {
	return dashboardModel{
		tracker: t,
		prefs:   p,
		today:   now,
		date:    now,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dayLoadedMsg struct {
	day tracker.Day
	err error
}

func (d dashboardModel) loadData() tea.Cmd {
	date, tr := d.date, d.tracker
	return func() tea.Msg {
		day, err := tr.Day(date)
		return dayLoadedMsg{day: day, err: err}
	}
}

// apply runs a tracker mutation and reports the refreshed day.
func apply(fn func() (tracker.Day, error)) tea.Cmd {
	return func() tea.Msg {
		day, err := fn()
		return dayLoadedMsg{day: day, err: err}
	}
}

func (d dashboardModel) rowCount() int {
	return activityRow + 1 + len(d.day.Protocol.Supplements)
}

// followDay moves the view along with the calendar when it was showing
// today.
func (d *dashboardModel) followDay(now time.Time) tea.Cmd {
	onToday := model.DateKey(d.date) == model.DateKey(d.today)
	d.today = now
	if !onToday {
		return nil
	}
	d.date = now
	d.picking = false
	return d.loadData()
}

func (d *dashboardModel) shiftDay(days int) tea.Cmd {
	d.date = d.date.AddDate(0, 0, days)
	d.picking = false
	return d.loadData()
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dayLoadedMsg:
		if msg.err != nil {
			return d, func() tea.Msg { return errStatus("Error", msg.err) }
		}
		// Drop results for a day the user already navigated away from.
		if msg.day.Protocol.Date != model.DateKey(d.date) {
			return d, nil
		}
		d.day = msg.day
		d.loaded = true
		d.cursor = min(d.cursor, d.rowCount()-1)
		return d, nil

	case tea.KeyMsg:
		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < d.rowCount()-1 {
				d.cursor++
			}
		case key.Matches(msg, keys.Left):
			return d, d.shiftDay(-1)
		case key.Matches(msg, keys.Right):
			return d, d.shiftDay(1)
		case key.Matches(msg, keys.Today):
			d.date = d.today
			return d, d.loadData()
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
			if d.loaded {
				return d, d.toggleRow()
			}
		case key.Matches(msg, keys.Choose):
			if d.loaded {
				return d.openPicker()
			}
		case key.Matches(msg, keys.Reset):
			if d.loaded {
				return d, d.resetRow()
			}
		}
	}
	return d, nil
}

func (d dashboardModel) toggleRow() tea.Cmd {
	tr, date, row := d.tracker, d.date, d.cursor
	switch {
	case row < activityRow:
		slot := model.AllSlots[row]
		return apply(func() (tracker.Day, error) { return tr.Toggle(date, slot) })
	case row == activityRow:
		return apply(func() (tracker.Day, error) { return tr.ToggleActivity(date) })
	default:
		i := row - activityRow - 1
		return apply(func() (tracker.Day, error) { return tr.ToggleSupplement(date, i) })
	}
}

func (d dashboardModel) resetRow() tea.Cmd {
	tr, date := d.tracker, d.date
	switch {
	case d.cursor < activityRow && model.AllSlots[d.cursor].IsMealSlot():
		slot := model.AllSlots[d.cursor]
		return apply(func() (tracker.Day, error) { return tr.SelectMeal(date, slot, "") })
	case d.cursor == activityRow:
		return apply(func() (tracker.Day, error) { return tr.SelectActivity(date, "") })
	}
	return nil
}

func (d dashboardModel) openPicker() (dashboardModel, tea.Cmd) {
	var current string
	switch {
	case d.cursor < activityRow && model.AllSlots[d.cursor].IsMealSlot():
		d.pickActivity = false
		d.pickSlot = model.AllSlots[d.cursor]
		d.options = nil
		for _, m := range d.tracker.Candidates(d.pickSlot) {
			label := fmt.Sprintf("%s  %s kcal", m.Name, d.prefs.num(m.Kcal, 0))
			if m.Custom {
				label = customStyle.Render("★ ") + label
			}
			d.options = append(d.options, pickOption{key: m.Key, label: label})
		}
		current = d.day.Protocol.Meal(d.pickSlot).Key
	case d.cursor == activityRow:
		d.pickActivity = true
		d.options = nil
		for _, name := range reference.ActivityNames() {
			d.options = append(d.options, pickOption{key: name, label: name})
		}
		current = d.day.Protocol.Activity
	default:
		return d, statusCmd("Nothing to choose for this row")
	}

	d.pickerCursor = 0
	for i, o := range d.options {
		if o.key == current {
			d.pickerCursor = i
			break
		}
	}
	d.picking = true
	return d, nil
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(d.options)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		d.picking = false
		if len(d.options) == 0 {
			return d, nil
		}
		choice := d.options[d.pickerCursor].key
		tr, date, slot := d.tracker, d.date, d.pickSlot
		if d.pickActivity {
			return d, apply(func() (tracker.Day, error) { return tr.SelectActivity(date, choice) })
		}
		return d, apply(func() (tracker.Day, error) { return tr.SelectMeal(date, slot, choice) })
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	if !d.loaded {
		return mutedStyle.Render("Loading day...")
	}

	contentWidth := d.width - 4
	top := lipgloss.JoinVertical(lipgloss.Left,
		d.renderHeadline(contentWidth),
		d.renderMacrosPanel(contentWidth),
	)
	if d.picking {
		return lipgloss.JoinVertical(lipgloss.Left, top, d.renderPicker(contentWidth))
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, d.renderDayPanel(contentWidth))
}

func (d dashboardModel) renderHeadline(w int) string {
	title := titleStyle.Render(d.date.Format("Monday 2 January 2006"))
	index := accentStyle.Render(fmt.Sprintf("  day %d", protocol.DayIndex(d.date)))
	marker := ""
	if model.DateKey(d.date) == model.DateKey(d.today) {
		marker = successStyle.Render("  ● today")
	}
	return headerStyle.Width(w).Render(title + index + marker)
}

func (d dashboardModel) renderMacrosPanel(w int) string {
	consumed := d.day.Consumed
	target := d.day.Objectives
	source := "objectives"
	if d.day.Profile == nil {
		planned := d.day.Protocol.Totals
		target = model.Objectives{Kcal: planned.Kcal, ProteinG: planned.ProteinG, LipidG: planned.LipidG, CarbG: planned.CarbG}
		source = "planned (no profile)"
	}

	barWidth := max(10, min(40, w-40))
	line := func(label string, value, goal float64, unit string, decimals int) string {
		return fmt.Sprintf("  %-8s %s  %s / %s %s",
			label, progressBar(value, goal, barWidth),
			highlightStyle.Render(d.prefs.num(value, decimals)), d.prefs.num(goal, decimals), unit)
	}

	rows := []string{
		titleStyle.Render("Consumed") + subtitleStyle.Render(" vs "+source),
		line("Energy", consumed.Kcal, target.Kcal, "kcal", 0),
		line("Protein", consumed.ProteinG, target.ProteinG, "g", 1),
		line("Lipids", consumed.LipidG, target.LipidG, "g", 1),
		line("Carbs", consumed.CarbG, target.CarbG, "g", 1),
	}
	if d.day.Profile != nil {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  Activity burns ~%s kcal (%d min)",
			d.prefs.num(float64(d.day.CaloriesBurned), 0), d.tracker.ActivityMinutes)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderDayPanel(w int) string {
	proto, progress := d.day.Protocol, d.day.Progress
	nameWidth := max(12, w-40)

	row := func(i int, done bool, label, name, extra string) string {
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		return cursor + checkbox(done) + " " + style.Render(fmt.Sprintf("%-19s %-*s", label, nameWidth, truncate(name, nameWidth))) + extra
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Protocol"))
	for i, slot := range model.AllSlots {
		m := proto.Meal(slot)
		extra := mutedStyle.Render(fmt.Sprintf(" %s kcal", d.prefs.num(m.Kcal, 0)))
		if m.Custom {
			extra += customStyle.Render(" ★")
		}
		rows = append(rows, row(i, progress.Done(slot), slot.Label(), m.Name, extra))
	}
	rows = append(rows, row(activityRow, progress.Activity, "Activity", proto.Activity,
		mutedStyle.Render(fmt.Sprintf(" %d min", d.tracker.ActivityMinutes))))

	rows = append(rows, "", titleStyle.Render("Supplements"))
	for i, name := range proto.Supplements {
		done := i < len(progress.Supplements) && progress.Supplements[i]
		rows = append(rows, row(activityRow+1+i, done, "", name, ""))
	}

	rows = append(rows, "", mutedStyle.Render("  space: done  c: choose  r: reset  ←/→: day  t: today"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderPicker(w int) string {
	title := "Choose activity"
	if !d.pickActivity {
		title = "Choose " + strings.ToLower(d.pickSlot.Label())
	}

	rows := []string{titleStyle.Render(title)}
	// Keep the cursor visible in long lists.
	visible := max(5, d.height-16)
	start := 0
	if d.pickerCursor >= visible {
		start = d.pickerCursor - visible + 1
	}
	end := min(len(d.options), start+visible)
	for i := start; i < end; i++ {
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor)+d.options[i].label)
	}
	rows = append(rows, "", mutedStyle.Render("  enter: select  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

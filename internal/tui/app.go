// Package tui is the interactive terminal interface.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/sadopc/eprotocol/internal/export"
	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/profile"
	"github.com/sadopc/eprotocol/internal/protocol"
	"github.com/sadopc/eprotocol/internal/recipes"
	"github.com/sadopc/eprotocol/internal/tracker"
)

// Deps are the services the interface works on.
type Deps struct {
	Tracker  *tracker.Tracker
	Recipes  *recipes.Book
	Profiles *profile.Service
	Settings SettingsStore
	Log      *zap.Logger
	Locale   language.Tag

	// Optional; default to time.Now and the home directory.
	Now       func() time.Time
	ExportDir string
}

var exportFormats = []string{"Recipes (JSON snapshot)", "Daily log (CSV)", "Daily log (JSON)"}

const (
	exportRecipes = iota
	exportLogCSV
	exportLogJSON
)

// App is the root Bubble Tea model.
type App struct {
	tracker   *tracker.Tracker
	recipes   *recipes.Book
	log       *zap.Logger
	now       func() time.Time
	exportDir string

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	recipeBox recipesModel
	week      weekModel
	profile   profileModel
	settings  settingsModel

	help        help.Model
	status      string
	statusError bool
}

func NewApp(d Deps) App {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.ExportDir == "" {
		d.ExportDir, _ = os.UserHomeDir()
	}

	h := help.New()
	h.ShowAll = false
	p := &prefs{locale: d.Locale}

	return App{
		tracker:    d.Tracker,
		recipes:    d.Recipes,
		log:        d.Log,
		now:        d.Now,
		exportDir:  d.ExportDir,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(d.Tracker, p, d.Now()),
		recipeBox:  newRecipesModel(d.Recipes, p),
		week:       newWeekModel(d.Tracker, p, d.Now),
		profile:    newProfileModel(d.Profiles, p),
		settings:   newSettingsModel(d.Settings, d.Tracker, p),
		help:       h,
	}
}

// Run starts the interface and the midnight scheduler, blocking until the
// user quits.
func Run(d Deps) error {
	app := NewApp(d)
	p := tea.NewProgram(app, tea.WithAltScreen())

	c, err := newDayScheduler(p.Send, app.now, app.log)
	if err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		a.recipeBox.refresh(),
		a.profile.refresh(),
		a.settings.refresh(),
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.recipeBox.setSize(a.width, contentHeight)
		a.week.setSize(a.width, contentHeight)
		a.profile.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		if a.week.loaded {
			a.week.buildChart()
		}
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewRecipes
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewWeek
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewProfile
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		if msg.isError {
			a.log.Warn("ui error", zap.String("status", msg.text))
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusError = false
		a.exportPicking = false
		return a, nil

	case dayChangedMsg:
		cmd := a.dashboard.followDay(msg.date)
		if a.activeView == viewWeek {
			cmd = tea.Batch(cmd, a.week.refresh())
		}
		return a, cmd

	// Data messages go to their view whichever one is active.
	case dayLoadedMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, cmd
	case recipesDataMsg:
		var cmd tea.Cmd
		a.recipeBox, cmd = a.recipeBox.update(msg)
		return a, cmd
	case weekDataMsg:
		var cmd tea.Cmd
		a.week, cmd = a.week.update(msg)
		return a, cmd
	case profileDataMsg:
		var cmd tea.Cmd
		a.profile, cmd = a.profile.update(msg)
		return a, cmd
	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewRecipes:
		a.recipeBox, cmd = a.recipeBox.update(msg)
	case viewWeek:
		a.week, cmd = a.week.update(msg)
	case viewProfile:
		a.profile, cmd = a.profile.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.picking
	case viewRecipes:
		return a.recipeBox.formActive
	case viewProfile:
		return a.profile.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewRecipes:
		return a.recipeBox.refresh()
	case viewWeek:
		return a.week.refresh()
	case viewProfile:
		return a.profile.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewRecipes:
		content = a.recipeBox.view()
	case viewWeek:
		content = a.week.view()
	case viewProfile:
		content = a.profile.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(1, a.height-headerHeight-footerHeight)

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("eprotocol")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)
	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(status)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export"), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  files are written to "+a.exportDir))
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	book, tr, dir, now := a.recipes, a.tracker, a.exportDir, a.now()
	return func() tea.Msg {
		stamp := model.DateKey(now)

		switch format {
		case exportRecipes:
			path := filepath.Join(dir, fmt.Sprintf("eprotocol-recipes-%s.json", stamp))
			s := book.Export(export.Metadata{ClientInfo: "eprotocol-tui"})
			if err := export.WriteSnapshot(s, path); err != nil {
				return errStatus("Export error", err)
			}
			return exportDoneMsg{path: path}
		}

		days, err := tr.Log(protocol.Epoch, now)
		if err != nil {
			return errStatus("Export error", err)
		}
		if format == exportLogCSV {
			path := filepath.Join(dir, fmt.Sprintf("eprotocol-log-%s.csv", stamp))
			if err := export.ToCSV(days, path); err != nil {
				return errStatus("CSV error", err)
			}
			return exportDoneMsg{path: path}
		}
		path := filepath.Join(dir, fmt.Sprintf("eprotocol-log-%s.json", stamp))
		if err := export.ToJSON(days, path); err != nil {
			return errStatus("JSON error", err)
		}
		return exportDoneMsg{path: path}
	}
}

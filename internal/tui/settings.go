package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/eprotocol/internal/numfmt"
	"github.com/sadopc/eprotocol/internal/reference"
	"github.com/sadopc/eprotocol/internal/store"
	"github.com/sadopc/eprotocol/internal/tracker"
)

// SettingsStore persists preferences. *store.Store implements it.
type SettingsStore interface {
	GetAllSettings() ([]store.Setting, error)
	SetSetting(key, value string) error
}

var localeOptions = []struct{ label, tag string }{
	{"Français", "fr"},
	{"English", "en"},
	{"Deutsch", "de"},
	{"Español", "es"},
}

type settingsModel struct {
	store   SettingsStore
	tracker *tracker.Tracker
	prefs   *prefs
	width   int
	height  int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	activityMinutes *string
	locale          *string
}

func newSettingsModel(s SettingsStore, t *tracker.Tracker, p *prefs) settingsModel {
	am, loc := "", ""
	return settingsModel{
		store:           s,
		tracker:         t,
		prefs:           p,
		activityMinutes: &am,
		locale:          &loc,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	st := s.store
	return func() tea.Msg {
		settings, _ := st.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) getVal(k, fallback string) string {
	for _, setting := range s.settings {
		if setting.Key == k {
			return setting.Value
		}
	}
	return fallback
}

func validateMinutes(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return errors.New("enter a positive number of minutes")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.activityMinutes = s.getVal(store.SettingActivityMinutes, strconv.Itoa(reference.DefaultActivityMinutes))
	*s.locale = s.getVal(store.SettingLocale, numfmt.DefaultLocale.String())

	opts := make([]huh.Option[string], len(localeOptions))
	for i, o := range localeOptions {
		opts[i] = huh.NewOption(o.label, o.tag)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Activity session (min)").
				Description("Used to estimate calories burned").
				Value(s.activityMinutes).
				Validate(validateMinutes),
			huh.NewSelect[string]().Title("Number format").Options(opts...).Value(s.locale),
		).Title("Preferences"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, errCmd("Settings not saved", err)
		}
		return s, tea.Batch(s.refresh(), statusCmd("Settings saved"))
	}

	return s, cmd
}

// saveSettings persists the form and applies it to the running views.
func (s settingsModel) saveSettings() error {
	minutes := strings.TrimSpace(*s.activityMinutes)
	if err := validateMinutes(minutes); err != nil {
		return err
	}
	if err := s.store.SetSetting(store.SettingActivityMinutes, minutes); err != nil {
		return err
	}
	if err := s.store.SetSetting(store.SettingLocale, *s.locale); err != nil {
		return err
	}

	n, _ := strconv.Atoi(minutes)
	s.tracker.ActivityMinutes = n
	s.prefs.locale = numfmt.ParseTag(*s.locale)
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title, "")
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(settingLabel(setting.Key))
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingLabel(k string) string {
	switch k {
	case store.SettingActivityMinutes:
		return "Activity session"
	case store.SettingLocale:
		return "Number format"
	}
	return k
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingActivityMinutes:
		if n, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", n)
		}
	case store.SettingLocale:
		for _, o := range localeOptions {
			if o.tag == v {
				return o.label
			}
		}
	}
	return v
}

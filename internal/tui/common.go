package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"

	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/numfmt"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewRecipes
	viewWeek
	viewProfile
	viewSettings
)

var viewNames = []string{"Today", "Recipes", "Week", "Profile", "Settings"}

// prefs are display preferences shared by every view. Views hold a pointer
// so a change in Settings reaches them all.
type prefs struct {
	locale language.Tag
}

func (p *prefs) num(v float64, decimals int) string {
	return numfmt.Format(p.locale, v, decimals)
}

func (p *prefs) macros(m model.Macros) string {
	return fmt.Sprintf("%s kcal  P %sg  L %sg  C %sg",
		p.num(m.Kcal, 0), p.num(m.ProteinG, 1), p.num(m.LipidG, 1), p.num(m.CarbG, 1))
}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// dayChangedMsg is sent by the midnight scheduler.
type dayChangedMsg struct {
	date time.Time
}

type exportDoneMsg struct {
	path string
}

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func errCmd(prefix string, err error) tea.Cmd {
	return func() tea.Msg { return errStatus(prefix, err) }
}

// --- Helpers ---

func errStatus(prefix string, err error) statusMsg {
	return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true}
}

// progressBar renders value against target as a fixed width bar.
func progressBar(value, target float64, width int) string {
	if width < 1 {
		return ""
	}
	filled := 0
	if target > 0 {
		filled = numfmt.RoundInt(value / target * float64(width))
	}
	over := filled > width
	filled = max(0, min(filled, width))

	style := successStyle
	if over {
		style = warningStyle
	}
	return style.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
}

func checkbox(done bool) string {
	if done {
		return successStyle.Render("[x]")
	}
	return mutedStyle.Render("[ ]")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

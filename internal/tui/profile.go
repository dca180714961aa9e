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

	"github.com/sadopc/eprotocol/internal/metabolic"
	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/numfmt"
	"github.com/sadopc/eprotocol/internal/profile"
)

type profileModel struct {
	profiles *profile.Service
	prefs    *prefs
	width    int
	height   int

	current *model.UserProfile

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	weight     *string
	heightCm   *string
	age        *string
	sex        *string
	multiplier *string
	goal       *string
	diet       *string
}

func newProfileModel(s *profile.Service, p *prefs) profileModel {
	w, h, a := "", "", ""
	sex, mult, goal, diet := string(model.SexMale), "1.55", string(model.GoalMaintain), string(model.DietStandard)
	return profileModel{
		profiles:   s,
		prefs:      p,
		weight:     &w,
		heightCm:   &h,
		age:        &a,
		sex:        &sex,
		multiplier: &mult,
		goal:       &goal,
		diet:       &diet,
	}
}

func (p *profileModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type profileDataMsg struct {
	profile *model.UserProfile
	err     error
}

func (p profileModel) refresh() tea.Cmd {
	svc := p.profiles
	return func() tea.Msg {
		cur, err := svc.Current()
		return profileDataMsg{profile: cur, err: err}
	}
}

func (p profileModel) update(msg tea.Msg) (profileModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case profileDataMsg:
		if msg.err != nil {
			return p, errCmd("Profile load failed", msg.err)
		}
		p.current = msg.profile
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New), key.Matches(msg, keys.Edit):
			return p.showForm()
		case key.Matches(msg, keys.Delete):
			if p.current == nil {
				return p, nil
			}
			if err := p.profiles.Delete(); err != nil {
				return p, errCmd("Delete failed", err)
			}
			return p, tea.Batch(p.refresh(), statusCmd("Profile deleted"))
		}
	}
	return p, nil
}

func validatePositive(s string) error {
	if !numfmt.IsValidNumber(s) || numfmt.ParseLocalFloat(s) <= 0 {
		return errors.New("enter a number greater than 0")
	}
	return nil
}

func validateAge(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a whole number of years")
	}
	return nil
}

func formatMultiplier(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}

func (p profileModel) showForm() (profileModel, tea.Cmd) {
	if c := p.current; c != nil {
		*p.weight = formatMultiplier(c.WeightKg)
		*p.heightCm = formatMultiplier(c.HeightCm)
		*p.age = strconv.Itoa(c.Age)
		*p.sex = string(c.Sex)
		*p.multiplier = formatMultiplier(c.ActivityMultiplier)
		*p.goal = string(c.Goal)
		*p.diet = string(c.DietType)
	}

	levels := make([]huh.Option[string], len(metabolic.ActivityLevels))
	for i, m := range metabolic.ActivityLevels {
		levels[i] = huh.NewOption(fmt.Sprintf("%s (x%s)", metabolic.ActivityLabel(m), formatMultiplier(m)), formatMultiplier(m))
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Weight (kg)").Value(p.weight).Validate(validatePositive),
			huh.NewInput().Title("Height (cm)").Value(p.heightCm).Validate(validatePositive),
			huh.NewInput().Title("Age").Value(p.age).Validate(validateAge),
			huh.NewSelect[string]().Title("Sex").
				Options(
					huh.NewOption("Male", string(model.SexMale)),
					huh.NewOption("Female", string(model.SexFemale)),
				).Value(p.sex),
		).Title("Body"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Activity level").Options(levels...).Value(p.multiplier),
			huh.NewSelect[string]().Title("Goal").
				Options(
					huh.NewOption("Lose weight", string(model.GoalLose)),
					huh.NewOption("Maintain", string(model.GoalMaintain)),
					huh.NewOption("Gain weight", string(model.GoalGain)),
				).Value(p.goal),
			huh.NewSelect[string]().Title("Diet").
				Options(
					huh.NewOption("Standard", string(model.DietStandard)),
					huh.NewOption("High protein, low carb", string(model.DietHighProteinLowCarb)),
				).Value(p.diet),
		).Title("Goals"),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

// input converts the form values.
func (p profileModel) input() metabolic.Input {
	age, _ := strconv.Atoi(strings.TrimSpace(*p.age))
	return metabolic.Input{
		WeightKg:           numfmt.ParseLocalFloat(*p.weight),
		HeightCm:           numfmt.ParseLocalFloat(*p.heightCm),
		Age:                age,
		Sex:                model.Sex(*p.sex),
		ActivityMultiplier: numfmt.ParseLocalFloat(*p.multiplier),
		Goal:               model.Goal(*p.goal),
		DietType:           model.DietType(*p.diet),
	}
}

func (p profileModel) updateForm(msg tea.Msg) (profileModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		return p, p.save()
	}
	return p, cmd
}

func (p profileModel) save() tea.Cmd {
	saved, err := p.profiles.Save(p.input())
	if err != nil {
		return errCmd("Profile not saved", err)
	}
	return tea.Batch(p.refresh(), statusCmd(fmt.Sprintf("Target set to %s kcal", p.prefs.num(float64(saved.TargetCalories), 0))))
}

func (p profileModel) view() string {
	w := p.width - 4
	title := titleStyle.Render("Profile")

	if p.formActive && p.form != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View()))
	}

	if p.current == nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "",
			mutedStyle.Render("No profile yet. Daily objectives use the planned menu until one is set."),
			"",
			mutedStyle.Render("Press enter to create your profile"),
		))
	}

	c := p.current
	field := func(label, value string) string {
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(18).Render(label), value)
	}
	rows := []string{
		title, "",
		field("Weight", p.prefs.num(c.WeightKg, 1)+" kg"),
		field("Height", p.prefs.num(c.HeightCm, 1)+" cm"),
		field("Age", strconv.Itoa(c.Age)),
		field("Sex", string(c.Sex)),
		field("Activity", fmt.Sprintf("%s (x%s)", c.ActivityLabel, formatMultiplier(c.ActivityMultiplier))),
		field("Goal", string(c.Goal)),
		field("Diet", strings.ReplaceAll(string(c.DietType), "_", " ")),
		"",
		field("BMR", highlightStyle.Render(p.prefs.num(c.BMR, 0)+" kcal")),
		field("TDEE", highlightStyle.Render(p.prefs.num(float64(c.TDEE), 0)+" kcal")),
		field("Daily target", bigNumberStyle.Render(p.prefs.num(float64(c.TargetCalories), 0)+" kcal")),
		field("Macros", fmt.Sprintf("P %dg  L %dg  C %dg", c.TargetMacros.ProteinG, c.TargetMacros.LipidG, c.TargetMacros.CarbG)),
		"",
		mutedStyle.Render("  enter: edit  d: delete"),
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/sadopc/eprotocol/internal/config"
	"github.com/sadopc/eprotocol/internal/logging"
	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/numfmt"
	"github.com/sadopc/eprotocol/internal/profile"
	"github.com/sadopc/eprotocol/internal/recipes"
	"github.com/sadopc/eprotocol/internal/reference"
	"github.com/sadopc/eprotocol/internal/store"
	"github.com/sadopc/eprotocol/internal/tracker"
)

// app is everything a command needs, opened for the duration of one run.
type app struct {
	out      io.Writer
	log      *zap.Logger
	store    *store.Store
	book     *recipes.Book
	profiles *profile.Service
	tracker  *tracker.Tracker
	locale   language.Tag
}

func (o *rootOptions) withApp(cmd *cobra.Command, run func(*app) error) error {
	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	path, err := cfg.ResolveDBPath(o.dbPath)
	if err != nil {
		return err
	}
	st, err := store.New(path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	book, err := recipes.NewBook(st, log)
	if err != nil {
		return err
	}
	profiles := profile.NewService(st, log)
	tr := tracker.New(st, book, profiles, log)

	tr.ActivityMinutes = cfg.ActivityMinutes
	if tr.ActivityMinutes == 0 {
		tr.ActivityMinutes = st.GetIntSetting(store.SettingActivityMinutes, reference.DefaultActivityMinutes)
	}

	locale := cfg.Locale
	if locale == "" {
		// A missing row falls back to the default locale.
		locale, _ = st.GetSetting(store.SettingLocale)
	}

	log.Debug("command started", zap.String("cmd", cmd.CommandPath()), zap.String("db", path))
	return run(&app{
		out:      cmd.OutOrStdout(),
		log:      log,
		store:    st,
		book:     book,
		profiles: profiles,
		tracker:  tr,
		locale:   numfmt.ParseTag(locale),
	})
}

// day resolves --date, defaulting to today.
func (o *rootOptions) day() (time.Time, error) {
	return parseDateOr(o.date, o.now())
}

func parseDateOr(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	t, err := time.ParseInLocation(model.DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

func (a *app) num(v float64, decimals int) string {
	return numfmt.Format(a.locale, v, decimals)
}

func (a *app) macros(m model.Macros) string {
	return fmt.Sprintf("%s kcal | P %sg | L %sg | C %sg",
		a.num(m.Kcal, 0), a.num(m.ProteinG, 1), a.num(m.LipidG, 1), a.num(m.CarbG, 1))
}

func (a *app) objectives(o model.Objectives) string {
	return a.macros(model.Macros{Kcal: o.Kcal, ProteinG: o.ProteinG, LipidG: o.LipidG, CarbG: o.CarbG})
}

func check(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

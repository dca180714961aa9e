package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// midnightSpec fires at the start of every local day.
const midnightSpec = "0 0 * * *"

// newDayScheduler sends a dayChangedMsg through send at every midnight so a
// long-running session follows the calendar.
func newDayScheduler(send func(tea.Msg), now func() time.Time, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(midnightSpec, func() {
		date := now()
		log.Info("day changed", zap.Time("date", date))
		send(dayChangedMsg{date: date})
	})
	if err != nil {
		return nil, fmt.Errorf("schedule day change: %w", err)
	}
	return c, nil
}

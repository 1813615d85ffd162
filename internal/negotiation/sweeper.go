package negotiation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the idle-session sweep every five minutes.
const DefaultSweepSchedule = "*/5 * * * *"

// CronParser parses standard 5-field cron expressions.
var CronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Sweep discards sessions that have been accepted or have had no messages
// for longer than the idle timeout, and returns how many were discarded.
// Sessions waiting for an acceptance to complete are left alone.
func (m *Manager) Sweep(ctx context.Context, now time.Time) int {
	m.mu.RLock()
	live := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		live = append(live, s)
	}
	m.mu.RUnlock()

	var stale []string
	for _, s := range live {
		snap := s.Snapshot()
		switch {
		case snap.Status == StatusAccepted:
			stale = append(stale, s.ID())
		case !snap.Closing && now.Sub(s.LastActivity()) > m.cfg.IdleTimeout:
			stale = append(stale, s.ID())
		}
	}

	swept := 0
	for _, id := range stale {
		if err := m.Close(ctx, id); err == nil {
			swept++
		}
	}
	return swept
}

// StartSweeper schedules Sweep on a cron schedule. The caller stops the
// returned cron when done.
func (m *Manager) StartSweeper(schedule string) (*cron.Cron, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	c := cron.New(cron.WithParser(CronParser))
	_, err := c.AddFunc(schedule, func() {
		if n := m.Sweep(context.Background(), m.queue.Clock().Now()); n > 0 {
			log.Printf("negotiation: swept %d session(s)", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("negotiation: sweeper: invalid schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}

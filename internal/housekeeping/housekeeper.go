package housekeeping

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/tmaziere/taskboard/internal/store"
)

// Housekeeper periodically prunes old activity events and logs store
// statistics on a cron cadence.
type Housekeeper struct {
	store     store.Store
	schedule  cron.Schedule
	retention time.Duration
	nextRun   time.Time
	ticker    *time.Ticker
	done      chan bool
}

// New creates a housekeeper. spec is a standard cron expression; retention
// is how long activity events are kept.
func New(st store.Store, spec string, retention time.Duration) (*Housekeeper, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid housekeeping schedule %q: %w", spec, err)
	}
	return &Housekeeper{
		store:     st,
		schedule:  schedule,
		retention: retention,
		nextRun:   schedule.Next(time.Now()),
		done:      make(chan bool),
	}, nil
}

// Run starts the housekeeper's ticking loop.
func (h *Housekeeper) Run() {
	log.Info().Time("next_run", h.nextRun).Msg("Starting housekeeper")
	h.ticker = time.NewTicker(1 * time.Minute)
	defer h.ticker.Stop()

	// Run once immediately on start
	h.Sweep(time.Now())

	for {
		select {
		case <-h.done:
			log.Info().Msg("Stopping housekeeper")
			return
		case <-h.ticker.C:
			now := time.Now()
			if now.After(h.nextRun) {
				h.Sweep(now)
				h.nextRun = h.schedule.Next(now)
			}
		}
	}
}

// Stop halts the housekeeper.
func (h *Housekeeper) Stop() {
	h.done <- true
}

// Sweep prunes events older than the retention window and logs store
// statistics. Exposed for tests and for the immediate run on start.
func (h *Housekeeper) Sweep(now time.Time) {
	pruned, err := h.store.PruneEvents(now.Add(-h.retention))
	if err != nil {
		log.Error().Err(err).Msg("Housekeeper: failed to prune events")
		return
	}

	users, tasks, err := h.store.Counts()
	if err != nil {
		log.Error().Err(err).Msg("Housekeeper: failed to count store entities")
		return
	}

	log.Info().
		Int("events_pruned", pruned).
		Int("users", users).
		Int("tasks", tasks).
		Msg("Housekeeping sweep complete")
}

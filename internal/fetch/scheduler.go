package fetch

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs periodic snapshot downloads on a cron schedule. A new
// snapshot only takes effect after the serving process restarts; the
// scheduler just keeps the on-disk copy fresh.
type Scheduler struct {
	downloader *Downloader
	cron       *cron.Cron

	mu      sync.Mutex
	running bool
	entryID cron.EntryID
}

// NewScheduler creates a scheduler around the downloader.
func NewScheduler(d *Downloader) *Scheduler {
	return &Scheduler{
		downloader: d,
		cron:       cron.New(),
	}
}

// Start registers the cron spec and begins scheduling. Returns an
// error for an invalid spec.
func (s *Scheduler) Start(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	entryID, err := s.cron.AddFunc(spec, s.run)
	if err != nil {
		return err
	}
	s.entryID = entryID
	s.cron.Start()
	s.running = true

	log.Info().Str("schedule", spec).Msg("Snapshot fetch scheduler started")
	return nil
}

func (s *Scheduler) run() {
	if err := s.downloader.Download(context.Background()); err != nil {
		log.Error().Err(err).Msg("Scheduled snapshot download failed")
	}
}

// Stop halts scheduling and waits for a running download to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	log.Info().Msg("Snapshot fetch scheduler stopped")
}

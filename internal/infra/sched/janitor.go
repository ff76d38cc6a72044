package sched

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"telegram-video-downloader/internal/infra/metrics"
)

// Janitor removes files from the scratch directory that outlived every request.
type Janitor struct {
	dir       string
	retention time.Duration
	spec      string
	now       func() time.Time

	cron *cron.Cron
	log  *zerolog.Logger
}

func NewJanitor(dir, spec string, retention time.Duration, logger *zerolog.Logger) *Janitor {
	l := logger.With().Str("component", "Janitor").Logger()
	return &Janitor{
		dir:       dir,
		retention: retention,
		spec:      spec,
		now:       time.Now,
		log:       &l,
	}
}

// Start schedules the sweep. The cron spec accepts descriptors such as "@every 30m".
func (j *Janitor) Start() error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(j.spec, func() {
		if _, err := j.Sweep(context.Background()); err != nil {
			j.log.Error().Err(err).Msg("janitor sweep failed")
		}
	}); err != nil {
		return err
	}
	j.cron = c
	c.Start()
	j.log.Info().Str("schedule", j.spec).Dur("retention", j.retention).Msg("Starting janitor")
	return nil
}

// Stop halts the schedule and waits for a running sweep.
func (j *Janitor) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
	j.log.Info().Msg("Stopping janitor")
}

// Sweep deletes regular files in dir last modified before now-retention.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := j.now().Add(-j.retention)
	removed := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(j.dir, e.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			j.log.Warn().Err(err).Str("path", path).Msg("failed to remove stale file")
			continue
		}
		removed++
	}

	if removed > 0 {
		metrics.AddScratchFilesRemoved(removed)
		j.log.Info().Int("count", removed).Msg("stale downloads removed")
	}
	return removed, ctx.Err()
}

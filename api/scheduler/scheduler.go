package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/linesmerrill/shift-handover/config"
	"github.com/linesmerrill/shift-handover/metrics"
)

const (
	backupPrefix = "reports-"
	backupSuffix = ".db"
	backupStamp  = "20060102-150405"
)

// Backuper writes a consistent copy of the report store to dst
type Backuper interface {
	Backup(ctx context.Context, dst string) error
}

// Scheduler runs the periodic store backup
type Scheduler struct {
	cron  *cron.Cron
	store Backuper
	conf  config.BackupConfig
	now   func() time.Time
}

// NewScheduler creates a new scheduler instance
func NewScheduler(store Backuper, conf config.BackupConfig) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		store: store,
		conf:  conf,
		now:   time.Now,
	}
}

// Start registers the backup job and starts the cron loop
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.conf.Schedule, s.runBackup)
	if err != nil {
		zap.S().Errorw("failed to register backup job", "schedule", s.conf.Schedule, "error", err)
		return fmt.Errorf("invalid backup schedule %q: %w", s.conf.Schedule, err)
	}

	s.cron.Start()
	zap.S().Infow("Backup scheduler started", "schedule", s.conf.Schedule, "dir", s.conf.Dir)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running backup
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Backup scheduler stopped")
}

func (s *Scheduler) runBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := s.Backup(ctx); err != nil {
		zap.S().Errorw("scheduled backup failed", "error", err)
	}
}

// Backup copies the store into the backup folder and prunes old copies so
// that at most conf.Keep remain. It returns the path of the new copy.
func (s *Scheduler) Backup(ctx context.Context) (string, error) {
	m := metrics.Get()
	dst := filepath.Join(s.conf.Dir, backupPrefix+s.now().Format(backupStamp)+backupSuffix)

	if err := s.store.Backup(ctx, dst); err != nil {
		m.BackupsTotal.WithLabelValues("failed").Inc()
		return "", err
	}
	m.BackupsTotal.WithLabelValues("success").Inc()
	zap.S().Infow("Report store backed up", "path", dst)

	removed, err := s.prune()
	if err != nil {
		zap.S().Warnw("failed to prune old backups", "dir", s.conf.Dir, "error", err)
	}
	if len(removed) > 0 {
		zap.S().Infow("Pruned old backups", "removed", removed)
	}
	return dst, nil
}

// prune deletes the oldest backups beyond conf.Keep. Keep <= 0 keeps everything.
func (s *Scheduler) prune() ([]string, error) {
	if s.conf.Keep <= 0 {
		return nil, nil
	}
	entries, err := os.ReadDir(s.conf.Dir)
	if err != nil {
		return nil, err
	}

	var backups []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, backupSuffix) {
			backups = append(backups, name)
		}
	}
	if len(backups) <= s.conf.Keep {
		return nil, nil
	}

	// the timestamp sorts lexically
	sort.Strings(backups)
	var removed []string
	for _, name := range backups[:len(backups)-s.conf.Keep] {
		if err := os.Remove(filepath.Join(s.conf.Dir, name)); err != nil {
			return removed, err
		}
		removed = append(removed, name)
	}
	return removed, nil
}

package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"seatwise/internal/config"
)

// BackupService snapshots the sqlite file on a fixed interval and prunes
// snapshots older than the retention window. WAL mode keeps the main file
// consistent for a plain copy.
type BackupService struct {
	dbPath string
	cfg    config.BackupConfig
	logger *zerolog.Logger
}

func NewBackupService(dbPath string, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{dbPath: dbPath, cfg: cfg, logger: logger}
}

// Run blocks until ctx is cancelled. The first snapshot is taken
// immediately.
func (s *BackupService) Run(ctx context.Context) {
	interval := time.Duration(s.cfg.IntervalHours) * time.Hour
	s.logger.Info().Dur("interval", interval).Str("path", s.cfg.StoragePath).Msg("backup service started")

	if err := s.Snapshot(); err != nil {
		s.logger.Error().Err(err).Msg("initial backup failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("backup service stopped")
			return
		case <-ticker.C:
			if err := s.Snapshot(); err != nil {
				s.logger.Error().Err(err).Msg("scheduled backup failed")
			}
			s.pruneOld()
		}
	}
}

// Snapshot copies the database file into the storage directory.
func (s *BackupService) Snapshot() error {
	if err := os.MkdirAll(s.cfg.StoragePath, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("seatwise_%s.db", time.Now().Format("20060102_150405"))
	target := filepath.Join(s.cfg.StoragePath, name)

	source, err := os.Open(s.dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer source.Close()

	destination, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return fmt.Errorf("copy database: %w", err)
	}

	s.logger.Info().Str("file", name).Msg("backup complete")
	return nil
}

func (s *BackupService) pruneOld() {
	files, err := os.ReadDir(s.cfg.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("read backup directory")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", file.Name()).Msg("pruning old backup")
			_ = os.Remove(filepath.Join(s.cfg.StoragePath, file.Name()))
		}
	}
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dogfolk/recorder/internal/config"
	"github.com/dogfolk/recorder/internal/journal"
	"github.com/dogfolk/recorder/internal/store"
)

// session bundles the open store, journal, and configuration a command
// works against. Commands open a session, do their work, and Close it.
type session struct {
	cfg     config.Config
	store   *store.Store
	journal *journal.Emitter
}

// loadConfig loads configuration and applies the log level.
func loadConfig() config.Config {
	cfg := config.Load()
	if cfg.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	return cfg
}

// openSession opens the store (creating the database directory on first
// use) and the journal when one is configured.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg := loadConfig()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	seed := store.DefaultCatalog()
	if cfg.SeedFile != "" {
		var err error
		seed, err = store.LoadSeed(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
	}

	s, err := store.OpenSeeded(cmd.Context(), cfg.DBPath, seed)
	if err != nil {
		return nil, err
	}

	var j *journal.Emitter
	if cfg.JournalPath != "" {
		j, err = journal.NewEmitter(cfg.JournalPath)
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	return &session{cfg: cfg, store: s, journal: j}, nil
}

// Close releases the session's store and journal.
func (s *session) Close() {
	if err := s.journal.Close(); err != nil {
		logrus.WithError(err).Warn("close journal")
	}
	if err := s.store.Close(); err != nil {
		logrus.WithError(err).Warn("close store")
	}
}

// emit writes a journal event, logging rather than failing on error: the
// journal is an audit trail, not part of the mutation.
func (s *session) emit(kind, entryID string, data any) {
	if err := s.journal.Emit(journal.Event{Kind: kind, EntryID: entryID, Data: data}); err != nil {
		logrus.WithError(err).Warn("journal write failed")
	}
}

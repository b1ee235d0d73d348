// Package session opens everything one polling run needs: a run id, a
// zerolog logger, the state store and the wired adapter.
package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rendis/openinghours/internal/engine/adapter"
	"github.com/rendis/openinghours/internal/engine/places"
	"github.com/rendis/openinghours/internal/engine/state"
	"github.com/rendis/openinghours/internal/model"
)

// Options controls where a session writes.
type Options struct {
	// DBPath is the SQLite state file. Ignored when Memory is set.
	DBPath string
	Memory bool
	// LogPath is the per-session log file. Empty logs to Console.
	LogPath string
	Console io.Writer
	Debug   bool
	// ClientOptions are appended to the Places client options.
	ClientOptions []places.Option
}

// Session is one open run.
type Session struct {
	ID      string
	DBPath  string
	LogPath string
	Log     zerolog.Logger
	Store   state.Store

	logFile *os.File
}

// BaseName returns the timestamped file stem used for .db and .log files.
func BaseName(now time.Time) string {
	return "openinghours_" + now.Format("20060102_150405")
}

// Paths returns the default db and log paths inside dir.
func Paths(dir string, now time.Time) (dbPath, logPath string) {
	base := filepath.Join(dir, BaseName(now))
	return base + ".db", base + ".log"
}

// NewLogger builds the run logger. Console output is human readable; file
// output stays JSON.
func NewLogger(w io.Writer, console, debug bool) zerolog.Logger {
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Open creates the logger and the store.
func Open(opts Options) (*Session, error) {
	s := &Session{ID: uuid.NewString(), LogPath: opts.LogPath}

	if opts.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogPath), 0755); err != nil {
			return nil, fmt.Errorf("creating log dir: %w", err)
		}
		f, err := os.OpenFile(opts.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log: %w", err)
		}
		s.logFile = f
		s.Log = NewLogger(f, false, opts.Debug)
	} else {
		out := opts.Console
		if out == nil {
			out = os.Stderr
		}
		s.Log = NewLogger(out, true, opts.Debug)
	}
	s.Log = s.Log.With().Str("run_id", s.ID).Logger()

	if opts.Memory {
		s.Store = state.NewMemoryStore()
		return s, nil
	}

	if opts.DBPath == "" {
		s.closeLog()
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.DBPath), 0755); err != nil {
		s.closeLog()
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	store, err := state.NewSQLiteStore(opts.DBPath)
	if err != nil {
		s.closeLog()
		return nil, fmt.Errorf("opening store: %w", err)
	}
	s.Store = store
	s.DBPath = opts.DBPath
	return s, nil
}

// Run builds the adapter from p and processes every shop once.
func (s *Session) Run(ctx context.Context, p model.RunParams, runOpts *adapter.RunOptions, clientOpts ...places.Option) (*adapter.Stats, error) {
	a, err := adapter.Build(p, s.Store, s.Log, clientOpts...)
	if err != nil {
		return nil, err
	}

	s.Log.Info().
		Int("shops", len(p.Shops)).
		Int("concurrency", p.Concurrency).
		Str("language", p.Language).
		Str("slot_numbering", p.SlotNumbering).
		Msg("session start")

	start := time.Now()
	stats, err := a.Run(ctx, p.Shops, runOpts)

	s.Log.Info().
		Int64("done", stats.ShopsDone.Load()).
		Int64("cached", stats.Cached.Load()).
		Int64("resolved", stats.Resolved.Load()).
		Int64("no_match", stats.NoMatch.Load()).
		Int64("details", stats.DetailsStored.Load()).
		Int64("errors", stats.Errors.Load()).
		Dur("duration", time.Since(start)).
		Msg("session done")

	return stats, err
}

// Close releases the store and the log file.
func (s *Session) Close() error {
	err := s.Store.Close()
	s.closeLog()
	return err
}

func (s *Session) closeLog() {
	if s.logFile != nil {
		s.logFile.Close()
		s.logFile = nil
	}
}

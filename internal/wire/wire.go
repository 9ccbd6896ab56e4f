// Package wire provides dependency injection for the sweep application.
// It creates singleton services with lazy initialization.
package wire

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	cliadapter "github.com/example/nsfwsweep/internal/adapters/cli"
	"github.com/example/nsfwsweep/internal/adapters/filesystem"
	"github.com/example/nsfwsweep/internal/adapters/reddit"
	"github.com/example/nsfwsweep/internal/adapters/sqlite"
	"github.com/example/nsfwsweep/internal/app"
	"github.com/example/nsfwsweep/internal/config"
	"github.com/example/nsfwsweep/internal/db"
	"github.com/example/nsfwsweep/internal/ports/primary"
	"github.com/example/nsfwsweep/internal/ports/secondary"
)

var (
	cfg    = config.Default()
	logger = log.New(os.Stderr)

	authenticator secondary.Authenticator
	errorLog      *filesystem.ErrorLog
	eventLog      secondary.EventLog
	once          sync.Once

	journal     *sqlite.JournalRepository
	journalErr  error
	journalOnce sync.Once
)

// Configure sets the loaded config and logger. It must be called before any
// other function in this package, typically from the root command's
// PersistentPreRunE.
func Configure(c *config.Config, l *log.Logger) {
	if c != nil {
		cfg = c
	}
	if l != nil {
		logger = l
	}
	db.SetPath(cfg.JournalPath)
}

// Config returns the active configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the shared structured logger.
func Logger() *log.Logger {
	return logger
}

// Authenticator returns the singleton Authenticator instance.
func Authenticator() secondary.Authenticator {
	once.Do(initServices)
	return authenticator
}

// EventLog returns the sink cleanup runs record to: the error log file and,
// when enabled and available, the sqlite journal.
func EventLog() secondary.EventLog {
	once.Do(initServices)
	return eventLog
}

// ErrorLogPath returns the plain-text error log location.
func ErrorLogPath() string {
	once.Do(initServices)
	return errorLog.Path()
}

// Credentials returns the account credentials from the active config.
func Credentials() secondary.Credentials {
	return secondary.Credentials{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Username:     cfg.Username,
		Password:     cfg.Password,
		UserAgent:    cfg.UserAgent,
	}
}

// LogService returns the journal-backed LogService.
func LogService() (primary.LogService, error) {
	repo, err := journalRepository()
	if err != nil {
		return nil, err
	}
	return app.NewLogService(repo), nil
}

// CleanupService builds a CleanupService bound to an authenticated session.
// Each session gets its own service; the loop state is never shared.
func CleanupService(session secondary.ContentService) primary.CleanupService {
	once.Do(initServices)
	return app.NewCleanupService(
		session,
		app.NewBoundedRunner(cfg.Timeout()),
		eventLog,
		logger,
		app.CleanupOptions{
			MaxPasses:      cfg.MaxPasses,
			ListingRetries: cfg.ListingRetries,
		},
	)
}

// CleanupAdapterWithOutput returns a new CleanupAdapter writing to the given
// output. The spinner is enabled only when out is a terminal.
func CleanupAdapterWithOutput(session secondary.ContentService, out io.Writer) *cliadapter.CleanupAdapter {
	return cliadapter.NewCleanupAdapter(CleanupService(session), out, isTerminal(out))
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	authenticator = reddit.NewAuthenticator(reddit.Options{
		RequestsPerMinute: cfg.RequestsPerMinute,
	}, logger)

	errorLog = filesystem.NewErrorLog(cfg.LogFile)
	sinks := app.MultiEventLog{errorLog}

	if cfg.Journal {
		repo, err := journalRepository()
		if err != nil {
			// The text log still captures every error
			logger.Warn("journal unavailable, continuing without it", "err", err)
		} else {
			sinks = append(sinks, repo)
		}
	}
	eventLog = sinks
}

func journalRepository() (*sqlite.JournalRepository, error) {
	journalOnce.Do(func() {
		database, err := db.GetDB()
		if err != nil {
			journalErr = fmt.Errorf("failed to open journal: %w", err)
			return
		}
		journal = sqlite.NewJournalRepository(database)
	})
	return journal, journalErr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

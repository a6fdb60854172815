package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crosspost/internal/models"
	"github.com/desertthunder/crosspost/internal/repositories"
	"github.com/desertthunder/crosspost/internal/services"
	"github.com/desertthunder/crosspost/internal/shared"
	"github.com/desertthunder/crosspost/internal/tasks"
	"github.com/urfave/cli/v3"
)

// HistoryStore is the post history as seen by the CLI.
type HistoryStore interface {
	models.Repository[*models.PostRecord]
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	backend    tasks.Backend
	api        *services.APIService
	history    HistoryStore
	drafts     tasks.DraftStore
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// History and Drafts are opened from the configured database on first use when left nil.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Backend    tasks.Backend
	API        *services.APIService
	History    HistoryStore
	Drafts     tasks.DraftStore
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.API.BaseURL, nil)
	}
	if opts.Backend == nil {
		opts.Backend = services.NewBackendService(opts.API)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		backend:    opts.Backend,
		api:        opts.API,
		history:    opts.History,
		drafts:     opts.Drafts,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		platformsCommand, limitsCommand, postCommand, draftsCommand, historyCommand,
		tuiCommand, serveCommand, setupCommand, apiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// openStores opens the SQLite database and wires the history and draft repositories
// for any store not injected through [RunnerOpts].
func (r *Runner) openStores() error {
	if r.history != nil && r.drafts != nil {
		return nil
	}
	if r.db == nil {
		db, err := shared.OpenStore(r.config.Database)
		if err != nil {
			return err
		}
		r.db = db
	}
	if r.history == nil {
		r.history = repositories.NewPostRepository(r.db)
	}
	if r.drafts == nil {
		r.drafts = repositories.NewDraftRepository(r.db)
	}
	return nil
}

// Close releases the database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// publisher builds a [tasks.Publisher]. A database that cannot be opened disables
// history and drafts with a warning instead of failing the command.
func (r *Runner) publisher() *tasks.Publisher {
	if err := r.openStores(); err != nil {
		r.logger.Warn("history and drafts disabled", "error", err)
	}

	var history tasks.HistoryStore
	if r.history != nil {
		history = r.history
	}
	return tasks.NewPublisher(r.backend, history, r.drafts, r.logger)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return r.writeBytes(output)
}

// writeBytes writes pre-rendered output followed by a newline when it lacks one.
func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if len(data) > 0 && data[len(data)-1] == '\n' {
		return nil
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

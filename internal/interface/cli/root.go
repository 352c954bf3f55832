// Package cli is the command-line front end of the roster. Every command
// hydrates a roster.Manager from the configured store and calls it the way
// an interactive UI would.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alem-hub/student-roster/config"
	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/internal/domain/student"
	"github.com/alem-hub/student-roster/pkg/logger"
	"github.com/alem-hub/student-roster/pkg/timeutil"
)

// cli holds per-invocation state shared by the subcommands.
type cli struct {
	backend  string
	jsonOut  bool
	logLevel string

	out    io.Writer
	errOut io.Writer
	store  student.SnapshotStore
	clock  timeutil.Clock

	app    *App
	cancel context.CancelFunc
}

// Option customizes the root command.
type Option func(*cli)

// WithOutput redirects command output.
func WithOutput(out, errOut io.Writer) Option {
	return func(c *cli) {
		c.out = out
		c.errOut = errOut
	}
}

// WithStore makes every command use store instead of the configured backend.
func WithStore(store student.SnapshotStore) Option {
	return func(c *cli) { c.store = store }
}

// WithClock fixes the clock used for dates and timestamps.
func WithClock(clock timeutil.Clock) Option {
	return func(c *cli) { c.clock = clock }
}

// NewRootCommand builds the roster command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	return newCLI(opts...).root()
}

func newCLI(opts ...Option) *cli {
	c := &cli{out: os.Stdout, errOut: os.Stderr}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *cli) root() *cobra.Command {
	root := &cobra.Command{
		Use:   "roster",
		Short: "Sistem Manajemen Data Mahasiswa",
		Long: `Manage a roster of student records: add, update and delete students,
search and sort them with classic algorithms, and export, import or
restore the stored snapshot.

Examples:
  roster add --nim IF123456 --nama "Budi Santoso" --email budi@kampus.ac.id \
    --jurusan "Teknik Informatika" --semester 3 --ipk 3.5
  roster list --sort-by ipk --order desc
  roster search budi --field nama --algorithm compare`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  c.open,
		PersistentPostRunE: c.close,
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.PersistentFlags().StringVarP(&c.backend, "backend", "b", "", "storage backend (memory, redis, postgres, pebble); overrides STORAGE_BACKEND")
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "print JSON instead of tables")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	root.AddCommand(
		c.addCmd(),
		c.updateCmd(),
		c.deleteCmd(),
		c.getCmd(),
		c.listCmd(),
		c.searchCmd(),
		c.sortCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.backupCmd(),
		c.clearCmd(),
		c.statsCmd(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, opts ...Option) int {
	c := newCLI(opts...)
	// Post-run hooks are skipped when a command fails.
	defer c.close(nil, nil)

	root := c.root()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %s\n", shared.MessageOf(err))
		return 1
	}
	return 0
}

func (c *cli) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.backend != "" {
		cfg.Storage.Backend = config.Backend(strings.ToLower(c.backend))
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if c.logLevel != "" {
		cfg.Observability.LogLevel = c.logLevel
	}

	log := logger.New(logger.Options{
		Output: c.errOut,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
		Format: logger.ParseFormat(cfg.Observability.LogFormat),
	}).With(logger.String("app", cfg.App.Name))

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Storage.OpTimeout)
	c.cancel = cancel
	cmd.SetContext(ctx)

	app, err := OpenApp(ctx, cfg, log, c.clock, c.store)
	if err != nil {
		return err
	}
	c.app = app
	return nil
}

func (c *cli) close(_ *cobra.Command, _ []string) error {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.app == nil {
		return nil
	}
	app := c.app
	c.app = nil
	return app.Close()
}

func (c *cli) printer() printer {
	return printer{w: c.out, json: c.jsonOut}
}

// warnUnsaved tells the user that a mutation stayed in memory only.
func (c *cli) warnUnsaved(saveErr error) {
	if saveErr == nil {
		return
	}
	fmt.Fprintf(c.errOut, "Peringatan: perubahan belum tersimpan: %s\n", shared.MessageOf(saveErr))
}

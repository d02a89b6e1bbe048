package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/hbnb/console/internal/config"
	"github.com/hbnb/console/internal/console"
	"github.com/hbnb/console/internal/logging"
	"github.com/hbnb/console/internal/schema"
	"github.com/hbnb/console/internal/store"
)

// RootOptions holds the flags of the hbnb command.
type RootOptions struct {
	ConfigFile string
	Storage    string
	FilePath   string
	DBPath     string
	SchemaFile string
	Verbose    bool

	// IDs and Clock override the instance id and time sources (for testing).
	// If nil, random UUIDs and the system clock are used.
	IDs   console.IDGenerator
	Clock console.Clock

	// Interactive overrides terminal detection on stdin (for testing).
	Interactive *bool
}

// NewRootCommand creates the hbnb command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hbnb [command...]",
		Short: "hbnb - object console",
		Long: `A line-oriented console over the hbnb object store.

With no arguments, commands are read from stdin until quit, EOF or end of
input. With arguments, they are run as a single command line.

Both positional and call syntax are accepted:
  hbnb create User email="betty@example.com"
  hbnb 'User.show("1234")'
  echo 'count Place' | hbnb --storage db`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(opts, args, cmd)
		},
	}

	// Everything after the first command word belongs to the command line
	cmd.Flags().SetInterspersed(false)

	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "config file (default: hbnb.yaml in . or $XDG_CONFIG_HOME/hbnb)")
	cmd.Flags().StringVar(&opts.Storage, "storage", config.StorageFile, "persistence medium (file|db)")
	cmd.Flags().StringVar(&opts.FilePath, "file", "file.json", "path to the JSON file medium")
	cmd.Flags().StringVar(&opts.DBPath, "db", "hbnb.db", "path to the SQLite medium")
	cmd.Flags().StringVar(&opts.SchemaFile, "schema", "", "CUE class registry (default: built-in classes)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")

	return cmd
}

func runConsole(opts *RootOptions, args []string, cmd *cobra.Command) error {
	cfg, err := config.Load(config.Options{ConfigFile: opts.ConfigFile, Flags: cmd.Flags()})
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.Verbose)
	defer func() { _ = logger.Sync() }()

	registry, err := loadRegistry(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load class registry", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	medium, err := openMedium(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open persistence medium", err)
	}
	st, err := store.Open(ctx, medium, store.WithLogger(logger))
	if err != nil {
		_ = medium.Close()
		return WrapExitError(ExitCommandError, "failed to load objects", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing store", zap.Error(closeErr))
		}
	}()
	logger.Info("store loaded",
		zap.String("storage", cfg.Storage),
		zap.Int("objects", st.Len()),
		zap.Strings("classes", registry.Classes()))

	in := cmd.InOrStdin()
	shellOpts := []console.Option{
		console.WithLogger(logger),
		console.WithInteractive(isInteractive(opts, in)),
	}
	if opts.IDs != nil {
		shellOpts = append(shellOpts, console.WithIDs(opts.IDs))
	}
	if opts.Clock != nil {
		shellOpts = append(shellOpts, console.WithClock(opts.Clock))
	}
	sh := console.New(st, registry, cmd.OutOrStdout(), shellOpts...)

	if len(args) > 0 {
		if _, err := sh.Exec(ctx, strings.Join(args, " ")); err != nil {
			return WrapExitError(ExitFailure, "command failed", err)
		}
		return nil
	}

	if err := sh.Run(ctx, in); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "session ended", err)
	}
	return nil
}

func loadRegistry(cfg *config.Config) (*schema.Registry, error) {
	if cfg.SchemaFile != "" {
		return schema.LoadFile(cfg.SchemaFile)
	}
	return schema.Load()
}

func openMedium(cfg *config.Config) (store.Medium, error) {
	if cfg.Storage == config.StorageDB {
		return store.OpenSQLite(cfg.DBPath)
	}
	return store.NewFileMedium(cfg.FilePath), nil
}

// isInteractive reports whether in is a terminal.
func isInteractive(opts *RootOptions, in io.Reader) bool {
	if opts.Interactive != nil {
		return *opts.Interactive
	}
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

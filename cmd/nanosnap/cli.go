package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/arthur-debert/nanosnap/internal/logging"
	"github.com/arthur-debert/nanosnap/nanosnap/store"
	"github.com/arthur-debert/nanosnap/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultSnapshotDir = "__snapshots__"

// CLI is the Viper-driven nanosnap command
type CLI struct {
	rootCmd   *cobra.Command
	viperInst *viper.Viper
	out       io.Writer
	errOut    io.Writer

	configErr error
	logger    *slog.Logger
	logCloser io.Closer
}

// NewCLI creates the command tree writing results to out and diagnostics to errOut
func NewCLI(out, errOut io.Writer) *CLI {
	cli := &CLI{
		viperInst: viper.New(),
		out:       out,
		errOut:    errOut,
		logger:    slog.Default(),
	}

	cli.setupViperConfig()
	cli.createRootCommand()
	cli.addCommands()
	return cli
}

// setupViperConfig configures Viper with environment variables and config files
func (cli *CLI) setupViperConfig() {
	// NANOSNAP_CONFIG names a config file explicitly
	if configFile := os.Getenv("NANOSNAP_CONFIG"); configFile != "" {
		cli.viperInst.SetConfigFile(configFile)
	} else {
		// nanosnap.yaml, nanosnap.json, ... in the current directory
		cli.viperInst.SetConfigName("nanosnap")
		cli.viperInst.AddConfigPath(".")
	}

	// Enable environment variable support (e.g., --log-level -> NANOSNAP_LOG_LEVEL)
	cli.viperInst.SetEnvPrefix("NANOSNAP")
	cli.viperInst.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cli.viperInst.AutomaticEnv()

	// A missing config file is fine; a broken one is reported when a command runs
	if err := cli.viperInst.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			cli.configErr = err
		}
	}
}

// createRootCommand creates the root Cobra command with Viper integration
func (cli *CLI) createRootCommand() {
	cli.rootCmd = &cobra.Command{
		Use:   "nanosnap",
		Short: "Inspect and maintain recorded snapshots",
		Long: `nanosnap reads the snapshot files written by test runs and helps
review and maintain them.

Configuration Sources (in order of precedence):
1. Command line flags
2. Environment variables (NANOSNAP_*)
3. Configuration file (NANOSNAP_CONFIG or ./nanosnap.yaml / ./nanosnap.json)

Examples:
  # List snapshots of the login tests larger than 1KB
  nanosnap list --filter 'key startsWith "TestLogin" && size > 1024'

  # Review an HTML snapshot as Markdown
  nanosnap show "TestLogin form 1" --markdown

  # Move from the single document to one file per snapshot
  nanosnap convert --to json`,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cli.configErr != nil {
				return &CLIError{
					Operation:   "read configuration",
					Cause:       "configuration file is not valid",
					Details:     cli.configErr.Error(),
					Suggestions: []string{CommonSuggestions.CheckConfig},
					Underlying:  cli.configErr,
				}
			}
			return cli.setupLogging()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return cli.closeLogging()
		},
	}

	cli.rootCmd.SetOut(cli.out)
	cli.rootCmd.SetErr(cli.errOut)
	cli.addGlobalFlags()
}

// addGlobalFlags adds persistent flags that apply to all commands
func (cli *CLI) addGlobalFlags() {
	flags := cli.rootCmd.PersistentFlags()

	flags.StringP("dir", "d", defaultSnapshotDir, "Snapshot directory")
	flags.StringP("format", "f", "js", "Snapshot layout: js (single snapshots.js) or json (index.json + shards)")
	flags.StringP("output", "o", "table", "Output format (table|json|yaml)")
	flags.String("log-level", "warn", "Log level (debug|info|warn|error)")
	flags.String("log-dir", "", "Log file directory (default: user cache directory)")
	flags.BoolP("verbose", "v", false, "Also print log records to stderr")

	for _, flag := range []string{"dir", "format", "output", "log-level", "log-dir", "verbose"} {
		_ = cli.viperInst.BindPFlag(flag, flags.Lookup(flag))
	}
}

// addCommands adds all nanosnap commands
func (cli *CLI) addCommands() {
	cli.addListCommand()
	cli.addShowCommand()
	cli.addConvertCommand()
	cli.addPruneCommand()
	cli.addVerifyCommand()
	cli.addVersionCommand()
}

func (cli *CLI) setupLogging() error {
	var console io.Writer
	if cli.viperInst.GetBool("verbose") {
		console = cli.errOut
	}

	logger, closer, err := logging.Setup(logging.Config{
		Level:   cli.viperInst.GetString("log-level"),
		Dir:     cli.viperInst.GetString("log-dir"),
		Console: console,
	})
	if err != nil {
		// Logging is not worth failing the command for
		fmt.Fprintf(cli.errOut, "Warning: %v\n", err)
		return nil
	}
	cli.logger, cli.logCloser = logger, closer
	return nil
}

func (cli *CLI) closeLogging() error {
	if cli.logCloser == nil {
		return nil
	}
	err := cli.logCloser.Close()
	cli.logCloser = nil
	return err
}

// Execute runs the command line
func (cli *CLI) Execute() error {
	defer func() { _ = cli.closeLogging() }()
	return cli.rootCmd.Execute()
}

// SetArgs overrides os.Args, for tests
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

// config returns the session configuration selected by flags, env and config file
func (cli *CLI) config() (types.Config, error) {
	format, err := types.ParseFormat(cli.viperInst.GetString("format"))
	if err != nil {
		return types.Config{}, NewConfigError("resolve configuration", err.Error(), CommonSuggestions.CheckFormat)
	}

	cfg := types.Config{
		SnapshotPath: cli.viperInst.GetString("dir"),
		Format:       format,
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, NewConfigError("resolve configuration", err.Error(), CommonSuggestions.CheckDir)
	}
	return cfg, nil
}

// layout returns the layout for cfg, or for cfg's directory in another format
func (cli *CLI) layout(cfg types.Config) store.Layout {
	return store.NewLayout(cfg.Format, cfg.SnapshotPath, store.WithLogger(cli.logger))
}

// loadState loads the configured snapshots. Skipped shards are logged and
// tolerated unless strict is set.
func (cli *CLI) loadState(ctx context.Context, operation string, layout store.Layout, strict bool) (*store.State, error) {
	state, err := layout.Load(ctx)
	if err == nil {
		return state, nil
	}

	var partial *store.PartialLoadError
	if errors.As(err, &partial) && !strict {
		fmt.Fprintf(cli.errOut, "Warning: skipped %d shard file(s): %s\n",
			len(partial.Skipped), strings.Join(partial.Skipped, ", "))
		return state, nil
	}
	return nil, NewStoreError(operation, err,
		CommonSuggestions.CheckDir,
		CommonSuggestions.CheckFormat,
		CommonSuggestions.TryVerify)
}

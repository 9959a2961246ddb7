package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/lox/foundation/core/error"
	mdwlog "github.com/msto63/lox/foundation/core/log"
	"github.com/msto63/lox/foundation/lox"
	"github.com/msto63/lox/internal/store"
	"github.com/msto63/lox/pkg/core/config"
)

var (
	cfgFile string
	verbose bool

	appConfig *config.Config
	logger    *mdwlog.Logger
)

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

var rootCmd = &cobra.Command{
	Use:   "lox",
	Short: "lox - scanner and expression parser for Lox",
	Long: `lox scans Lox source into tokens and parses expressions into a
syntax tree, printed in prefix form:

  $ echo '-123 * (45.67)' | lox ast -
  (* (- 123) (group 45.67))

Commands:
  run      - scan and parse a file
  repl     - interactive line prompt
  tokens   - print the token stream
  ast      - print the syntax tree
  inspect  - interactive inspector (TUI)
  serve    - gRPC and WebSocket front end
  history  - recorded runs`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

// exitError carries a process exit status whose message was already printed
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute runs the CLI and returns the process exit status
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return mdwerror.ExitOK
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	printError(err)
	var coded *mdwerror.Error
	if errors.As(err, &coded) {
		return mdwerror.GetCode(err).ExitStatus()
	}
	// anything uncoded comes from cobra's flag and argument checks
	return mdwerror.ExitUsage
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./lox.toml, $"+config.EnvConfig+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func loadConfig(cmd *cobra.Command) error {
	cfg, err := config.LoadFromEnv(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.General.LogLevel = "debug"
		cfg.General.LogFormat = "console"
	}
	appConfig = cfg
	logger = cfg.Logger().WithOutput(cmd.ErrOrStderr())
	if cfg.Path != "" {
		logger.Debug("config loaded", mdwlog.Field("path", cfg.Path))
	}
	return nil
}

// engineOptions maps the scanner and parser sections onto engine options
func engineOptions() lox.Options {
	return lox.Options{
		Logger:             logger,
		MaxTokens:          appConfig.Scanner.MaxTokens,
		KeywordCapacity:    appConfig.Scanner.KeywordCapacity,
		KeywordMaxCapacity: appConfig.Scanner.KeywordMaxCapacity,
		MaxDepth:           appConfig.Parser.MaxDepth,
	}
}

// openStore opens the run history; nil when it is disabled or unavailable
func openStore() store.RunStore {
	if !appConfig.Store.Enabled {
		return nil
	}
	st, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path:   appConfig.Store.Path,
		Logger: logger,
	})
	if err != nil {
		logger.WarnWithErr("run history disabled", err)
		return nil
	}
	return st
}

func closeStore(st store.RunStore) {
	if st == nil {
		return
	}
	if err := st.Close(); err != nil {
		logger.WarnWithErr("failed to close run history", err)
	}
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
}

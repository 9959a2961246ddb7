package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/msto63/lox/internal/session"
	"github.com/msto63/lox/pkg/core/version"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive line prompt",
	Long: `Reads one expression per line and prints its tree. Errors are
reported and the prompt continues with the next line.

  Ctrl+C  discards the current line
  Ctrl+D  exits`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

// linerReader adapts liner to the session's line reader: an aborted line
// counts as a blank one and entered lines go to the history.
type linerReader struct {
	state *liner.State
}

func (r linerReader) Prompt(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		r.state.AppendHistory(line)
	}
	return line, nil
}

func runREPL(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	st := openStore()
	defer closeStore(st)

	s, err := session.New(session.Config{
		Engine: engineOptions(),
		Store:  st,
		Logger: logger,
		Out:    cmd.OutOrStdout(),
		Err:    cmd.ErrOrStderr(),
		Prompt: appConfig.REPL.Prompt,
	})
	if err != nil {
		return err
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := appConfig.REPL.HistoryFile
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			f.Close()
		}
		defer saveHistory(ln, histPath)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\nCtrl+D exits.\n", version.String())
	return s.RunPrompt(ctx, linerReader{state: ln})
}

func saveHistory(ln *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.WarnWithErr("failed to create history directory", err)
		return
	}
	f, err := os.Create(path)
	if err != nil {
		logger.WarnWithErr("failed to write history", err)
		return
	}
	defer f.Close()
	if _, err := ln.WriteHistory(f); err != nil {
		logger.WarnWithErr("failed to write history", err)
	}
}

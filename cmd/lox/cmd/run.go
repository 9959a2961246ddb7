package cmd

import (
	"github.com/spf13/cobra"

	"github.com/msto63/lox/internal/session"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Scan and parse a file and print its tree",
	Long: `Scans and parses a file and prints the tree in prefix form.

Exit status:
  0   success
  64  usage error
  65  lexical or parse error
  74  file could not be read`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	st := openStore()
	defer closeStore(st)

	s, err := session.New(session.Config{
		Engine: engineOptions(),
		Store:  st,
		Logger: logger,
		Out:    cmd.OutOrStdout(),
		Err:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	if code := s.RunFile(cmd.Context(), args[0]); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/lox/foundation/core/error"
	"github.com/msto63/lox/foundation/lox"
	"github.com/msto63/lox/internal/session"
)

var tokensJSON bool

var tokensCmd = &cobra.Command{
	Use:   "tokens <file|->",
	Short: "Print the token stream of a file or stdin",
	Example: `  lox tokens script.lox
  echo 'print "hi";' | lox tokens --json -`,
	Args: cobra.ExactArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().BoolVar(&tokensJSON, "json", false, "print tokens as JSON")
}

func runTokens(cmd *cobra.Command, args []string) error {
	source, err := session.ReadSource(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	engine, err := lox.New(engineOptions())
	if err != nil {
		return err
	}
	tokens, diags, err := engine.Tokenize(source)
	if mdwerror.HasCode(err, mdwerror.CodeAllocation) {
		return err
	}

	out := cmd.OutOrStdout()
	if tokensJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(tokens); err != nil {
			return err
		}
	} else {
		for _, tok := range tokens.Tokens() {
			fmt.Fprintf(out, "%4d  %-14s %s\n", tok.Line, tok.Kind, tok.Lexeme)
		}
	}

	for _, d := range diags {
		fmt.Fprintln(cmd.ErrOrStderr(), d.String())
	}
	if len(diags) > 0 {
		return &exitError{code: mdwerror.ExitDataErr}
	}
	return nil
}

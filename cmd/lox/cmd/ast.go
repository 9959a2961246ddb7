package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/lox/foundation/lox"
	"github.com/msto63/lox/internal/server"
	"github.com/msto63/lox/internal/session"
	"github.com/msto63/lox/internal/store"
	coregrpc "github.com/msto63/lox/pkg/core/grpc"
)

var (
	astJSON   bool
	astRemote string
)

var astCmd = &cobra.Command{
	Use:   "ast <file|->",
	Short: "Print the syntax tree of a file or stdin",
	Long: `Parses one expression and prints its tree in prefix form, or as
nested JSON objects with --json.

With --remote the source is sent to a running "lox serve" instead of being
parsed locally.`,
	Example: `  lox ast expr.lox
  echo '1 + 2 * 3' | lox ast --json -
  lox ast --remote 127.0.0.1:9310 expr.lox`,
	Args: cobra.ExactArgs(1),
	RunE: runAST,
}

func init() {
	rootCmd.AddCommand(astCmd)
	astCmd.Flags().BoolVar(&astJSON, "json", false, "print the tree as JSON")
	astCmd.Flags().StringVar(&astRemote, "remote", "", "gRPC address of a lox server")
}

func runAST(cmd *cobra.Command, args []string) error {
	source, err := session.ReadSource(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	name := args[0]
	if name == "-" {
		name = "stdin"
	}

	var payload *server.Payload
	if astRemote != "" {
		payload, err = processRemote(cmd, astRemote, name, string(source))
	} else {
		payload, err = processLocal(cmd, name, string(source))
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case payload.Tree == "":
	case astJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload.AST); err != nil {
			return err
		}
	default:
		fmt.Fprintln(out, payload.Tree)
	}

	for _, d := range payload.Diagnostics {
		fmt.Fprintln(cmd.ErrOrStderr(), d.String())
	}
	if payload.ExitCode != 0 {
		return &exitError{code: payload.ExitCode}
	}
	return nil
}

func processLocal(cmd *cobra.Command, name, source string) (*server.Payload, error) {
	engine, err := lox.New(engineOptions())
	if err != nil {
		return nil, err
	}
	st := openStore()
	defer closeStore(st)

	f := server.NewFrontend(engine, st, logger)
	return f.Local(store.OriginFile).Process(cmd.Context(), name, source)
}

func processRemote(cmd *cobra.Command, addr, name, source string) (*server.Payload, error) {
	cfg := coregrpc.DefaultClientConfig(addr)
	cfg.Logger = logger
	conn, err := coregrpc.Dial(cfg)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	payload, err := server.NewClient(conn).Process(ctx, name, source)
	if err != nil {
		return nil, coregrpc.FromStatus(err).WithDetail("address", addr)
	}
	return payload, nil
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/msto63/lox/foundation/lox"
	"github.com/msto63/lox/internal/server"
	"github.com/msto63/lox/internal/store"
	"github.com/msto63/lox/internal/tui"
	coregrpc "github.com/msto63/lox/pkg/core/grpc"
)

var inspectRemote string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Start the interactive inspector",
	Long: `Starts the terminal inspector. Type an expression and press Enter
to see its tree, tokens and diagnostics.

Navigation:
  Tab       - switch views (Tree, Tokens, Diagnostics, History)
  Enter     - process the input
  Ctrl+L    - clear
  Ctrl+R    - refresh history
  Ctrl+C    - quit`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectRemote, "remote", "", "gRPC address of a lox server")
}

func runInspect(cmd *cobra.Command, args []string) error {
	st := openStore()
	defer closeStore(st)

	cfg := tui.Config{Store: st}

	if inspectRemote != "" {
		clientCfg := coregrpc.DefaultClientConfig(inspectRemote)
		clientCfg.Logger = logger
		conn, err := coregrpc.Dial(clientCfg)
		if err != nil {
			return err
		}
		defer conn.Close()
		cfg.Evaluator = server.NewClient(conn)
		cfg.Mode = "remote " + inspectRemote
		cfg.Timeout = clientCfg.Timeout
	} else {
		engine, err := lox.New(engineOptions())
		if err != nil {
			return err
		}
		cfg.Evaluator = server.NewFrontend(engine, st, logger).Local(store.OriginInspector)
	}

	return tui.Run(cfg)
}

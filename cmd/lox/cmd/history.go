package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/lox/foundation/core/error"
	"github.com/msto63/lox/internal/store"
)

var (
	historyLimit  int
	historyOrigin string
	historyFailed bool
	historyJSON   bool
	historyPrune  time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	Example: `  lox history --limit 5
  lox history --origin repl --failed
  lox history --prune 720h`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	historyCmd.Flags().StringVar(&historyOrigin, "origin", "", "only runs from file, repl, grpc, websocket or inspect")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "only failed runs")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print runs as JSON")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "delete runs older than this and exit")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if !appConfig.Store.Enabled {
		return mdwerror.New("run history is disabled").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("cmd.history").
			WithDetail("hint", "set [store] enabled = true")
	}
	st, err := store.NewSQLiteStore(store.SQLiteConfig{Path: appConfig.Store.Path, Logger: logger})
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if historyPrune > 0 {
		n, err := st.Prune(ctx, historyPrune)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Pruned %d runs older than %s\n", n, historyPrune)
		return nil
	}

	runs, err := st.List(ctx, store.Filter{
		Origin:     store.Origin(historyOrigin),
		OnlyFailed: historyFailed,
		Limit:      historyLimit,
	})
	if err != nil {
		return err
	}

	if historyJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tORIGIN\tEXIT\tTOKENS\tSOURCE")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.Origin,
			r.ExitCode,
			r.Tokens,
			truncate(r.Source, 48))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		return err
	}
	origins := make([]string, 0, len(stats.ByOrigin))
	for o, n := range stats.ByOrigin {
		origins = append(origins, fmt.Sprintf("%s=%d", o, n))
	}
	sort.Strings(origins)
	fmt.Fprintf(out, "\n%d runs, %d failed (%s)\n", stats.Total, stats.Failed, strings.Join(origins, " "))
	return nil
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

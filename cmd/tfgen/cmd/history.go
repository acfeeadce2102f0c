package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tfgen/exchange"
	"github.com/rustyeddy/tfgen/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sync cycles",
	Long: `Show the sync journal, newest first. Without --all only the session
symbol and exchange are listed.

Examples:
  tfgen history --limit 20
  tfgen history --all --org > runs.org`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyDB    string
	historyLimit int
	historyAll   bool
	historyOrg   bool
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVarP(&historyDB, "db", "d", "", "journal database (default: journal.db_path)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to list (0 for all)")
	historyCmd.Flags().BoolVar(&historyAll, "all", false, "list every series")
	historyCmd.Flags().BoolVar(&historyOrg, "org", false, "render as an org-mode table")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := historyDB
	if path == "" {
		path = cfg.Journal.DBPath
	}
	if path == "" {
		return errors.New("no journal configured: set journal.db_path or pass --db")
	}

	j, err := journal.NewSQLite(path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	symbol, name := cfg.Session.Symbol, cfg.Session.Exchange
	if p, err := exchange.Lookup(name); err == nil {
		name = p.Name
	}
	if historyAll {
		symbol, name = "", ""
	}
	runs, err := j.ListRuns(symbol, name, historyLimit)
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if historyOrg {
		return journal.WriteOrg(out, runs)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSERIES\tTF\tRESULT\tFETCHED\tLENGTH\tTOOK\tERROR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s/%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.Started.Local().Format(time.DateTime),
			r.Exchange, r.Symbol, r.Timeframe, r.Result(),
			r.Fetched, r.Length, r.Duration().Round(time.Millisecond), r.Error)
	}
	return tw.Flush()
}

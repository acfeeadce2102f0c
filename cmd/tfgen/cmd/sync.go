package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tfgen/session"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync cycle and print the latest candles",
	Long: `Bring the base cache up to date, resample it into the session
timeframe and any extra timeframes, and save everything.

Example:
  tfgen sync --exchange binance --symbol ETHUSDT --timeframe 1H --candles 48`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

var syncTail int

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().IntVar(&syncTail, "tail", 5, "candles to print per series")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	return syncOnce(cmd.Context(), rt, cmd.OutOrStdout(), syncTail)
}

// syncOnce runs a full session: sync, resample, persist.
func syncOnce(ctx context.Context, rt *runtime, out io.Writer, tail int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return session.Run(ctx, rt.params(), rt.opts, func(s *session.Session) error {
		derived, err := s.Release(ctx)
		if err != nil && ctx.Err() != nil {
			return err
		}
		if out == nil {
			resampleExtra(s, rt.cfg.Session.ExtraTimeframes)
			return nil
		}

		if err := printSeries(out, fmt.Sprintf("%s base", s), s.Series(), tail); err != nil {
			return err
		}
		if g := s.Gaps(); g.GapCount > 0 {
			fmt.Fprintf(out, "gaps: %d (%d candles missing, longest %d)\n", g.GapCount, g.Missing, g.LongestGap)
		}
		if derived != nil {
			if err := printSeries(out, s.Timeframe().String(), derived, tail); err != nil {
				return err
			}
		}

		extra := resampleExtra(s, rt.cfg.Session.ExtraTimeframes)
		names := make([]string, 0, len(extra))
		for tf := range extra {
			names = append(names, tf)
		}
		sort.Strings(names)
		for _, tf := range names {
			if err := printSeries(out, tf, extra[tf], tail); err != nil {
				return err
			}
		}
		return nil
	})
}

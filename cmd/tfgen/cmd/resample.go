package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tfgen/session"
)

var resampleCmd = &cobra.Command{
	Use:   "resample",
	Short: "Resample the cached base series without fetching",
	Long: `Aggregate the cached base series into another timeframe and save the
result next to the cache.

Example:
  tfgen resample --symbol BTCUSDT --timeframe 1min --to 15min`,
	Args: cobra.NoArgs,
	RunE: runResample,
}

var (
	resampleTo   string
	resampleTail int
)

func init() {
	rootCmd.AddCommand(resampleCmd)
	resampleCmd.Flags().StringVar(&resampleTo, "to", "", "target timeframe (default: session timeframe)")
	resampleCmd.Flags().IntVar(&resampleTail, "tail", 5, "candles to print")
}

func runResample(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return session.Run(ctx, rt.params(), rt.opts, func(s *session.Session) error {
		out, err := s.Resample(resampleTo)
		if err != nil {
			return err
		}
		title := resampleTo
		if title == "" {
			title = s.Timeframe().String()
		}
		return printSeries(cmd.OutOrStdout(), fmt.Sprintf("%s %s", s, title), out, resampleTail)
	})
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tfgen/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync repeatedly on a cron schedule",
	Long: `Run a sync cycle now and then on every tick of the schedule until
interrupted. Each cycle opens a fresh session, so the cache on disk is
current after every tick. Overlapping ticks are skipped.

Example:
  tfgen watch --schedule "*/5 * * * *"`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var watchSchedule string

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "cron schedule (default: schedule.cron from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if watchSchedule != "" {
		cfg.Schedule.Cron = watchSchedule
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tick := func() {
		if err := syncOnce(ctx, rt, nil, 0); err != nil {
			rt.log.Error("sync cycle failed", logger.Err(err))
		}
		rt.flush()
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(cfg.Schedule.Cron, tick); err != nil {
		return err
	}

	rt.log.Info("watching",
		logger.String("exchange", cfg.Session.Exchange),
		logger.String("symbol", cfg.Session.Symbol),
		logger.String("schedule", cfg.Schedule.Cron),
	)
	tick()

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	rt.log.Info("watch stopped")
	return nil
}

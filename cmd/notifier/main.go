// Command notifier pages the sober bros of shifts starting soon. It is meant
// to run from cron every few minutes; shifts already paged are skipped.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"
	"github.com/wooglin/roster-api/internal/config"
	"github.com/wooglin/roster-api/internal/constants"
	"github.com/wooglin/roster-api/internal/database"
	"github.com/wooglin/roster-api/internal/logger"
	"github.com/wooglin/roster-api/internal/metrics"
	"github.com/wooglin/roster-api/internal/notify"
	"github.com/wooglin/roster-api/internal/repository"
	"github.com/wooglin/roster-api/internal/services"
	"go.uber.org/zap"
)

var (
	channel string
	dryRun  bool
	noDedup bool
)

var rootCmd = &cobra.Command{
	Use:          "notifier",
	Short:        "Page sober bros about shifts starting in the next 15 minutes",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, config.Load())
	},
}

func init() {
	rootCmd.Flags().StringVar(&channel, "channel", "", "Slack channel to post to (defaults to SLACK_CHANNEL)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the messages without sending them")
	rootCmd.Flags().BoolVar(&noDedup, "no-dedupe", false, "Page every upcoming shift even if it was paged already")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logg, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "roster-notifier")
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logg.Sync() }()

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return fmt.Errorf("failed to load time zone %q: %w", cfg.TimeZone, err)
	}

	if err := database.Connect(cfg, logg); err != nil {
		return err
	}
	db := database.GetDB()

	shiftService := services.NewShiftService(
		repository.NewShiftRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewMemberRepository(db),
		loc, nil,
	)

	slack, err := notify.NewSlackClient(cfg.SlackURL, cfg.SlackToken, logg)
	if err != nil && !dryRun {
		return err
	}

	var deduper notify.Deduper
	if !noDedup && !dryRun {
		client := notify.NewRedisClient(cfg.RedisAddr(), cfg.RedisPassword)
		defer client.Close()
		deduper = notify.NewRedisDeduper(client, "roster:paged:", constants.NotificationDedupeTTL)
	}

	target := channel
	if target == "" {
		target = cfg.SlackChannel
	}

	var notifier notify.Notifier
	if slack != nil {
		notifier = slack
	}
	svc := services.NewNotifierService(shiftService, notifier, deduper, metrics.New(), logg, target)

	results, err := svc.PageUpcoming(ctx, dryRun)
	if err != nil {
		logg.Error("Failed to load upcoming shifts", zap.Error(err))
		return err
	}

	if len(results) == 0 {
		logg.Info(services.MsgNoUpcomingShifts)
		return nil
	}

	failed := 0
	for _, res := range results {
		logg.Info("Shift page",
			zap.Uint64("shift_id", res.ShiftID),
			zap.String("title", res.Title),
			zap.String("result", res.Result),
		)
		if res.Result == services.PageDryRun {
			fmt.Fprintf(os.Stdout, "%s\n%s\n", target, res.Message)
		}
		if res.Result == services.PageFailed {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d shift pages failed", failed, len(results))
	}
	return nil
}

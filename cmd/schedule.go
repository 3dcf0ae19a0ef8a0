package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/scheduler"
	"github.com/ensa-hoceima/hr-assistant/internal/service"
)

const (
	jobWeeklyCheckins = "weekly-checkins"
	jobTurnoverScan   = "turnover-scan"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run recurring jobs: weekly check-in reminders and turnover scans",
	Run: func(cmd *cobra.Command, _ []string) {
		schedule(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().String("metrics-addr", ":9090", "address of the prometheus /metrics endpoint; empty disables it")
	scheduleCmd.Flags().String("run-now", "", "run the named job once and exit")
}

func schedule(cmd *cobra.Command) {
	ctx := cmd.Context()
	rt := setup(ctx, needs{store: true, optionalAI: true, twilio: true})
	defer rt.close()

	s := scheduler.New(rt.logger)
	if err := registerJobs(s, rt); err != nil {
		rt.logger.Fatal("scheduling jobs", zap.Error(err))
	}

	if name, _ := cmd.Flags().GetString("run-now"); name != "" {
		if err := s.RunNow(ctx, name); err != nil {
			rt.logger.Fatal("running job", zap.Error(err))
		}
		return
	}

	if len(s.Jobs()) == 0 {
		rt.logger.Info("exiting", zap.String("reason", "no jobs are enabled"))
		return
	}
	for _, name := range s.Jobs() {
		if next, ok := s.Next(name, time.Now()); ok {
			rt.logger.Info("next run", zap.String("job", name), zap.Time("at", next))
		}
	}

	var srv *http.Server
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		srv = serveMetrics(addr, rt)
	}

	s.Start(ctx)
	<-ctx.Done()
	rt.logger.Info("shutting down", zap.String("reason", context.Cause(ctx).Error()))
	s.Stop()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			rt.logger.Warn("stopping the metrics endpoint", zap.Error(err))
		}
	}
}

// registerJobs adds the jobs whose features and dependencies are available.
func registerJobs(s *scheduler.Service, rt *runtime) error {
	cfg := rt.config
	deps := rt.deps()

	switch {
	case !cfg.Features.InternshipTracking || !cfg.Features.WhatsAppBot:
		rt.logger.Info("skipping job", zap.String("job", jobWeeklyCheckins), zap.String("reason", "feature disabled"))
	case deps.Notifier == nil:
		rt.logger.Info("skipping job", zap.String("job", jobWeeklyCheckins), zap.String("reason", "twilio is not configured"))
	default:
		reminders := service.NewReminderService(deps)
		err := s.Register(jobWeeklyCheckins, cfg.Schedule.Checkin, func(ctx context.Context) error {
			sent, err := reminders.WeeklyCheckins(ctx)
			rt.logger.Info("weekly check-in reminders", zap.Int("sent", sent))
			return err
		})
		if err != nil {
			return err
		}
	}

	switch {
	case !cfg.Features.TurnoverPrediction || !cfg.Features.AIFeatures:
		rt.logger.Info("skipping job", zap.String("job", jobTurnoverScan), zap.String("reason", "feature disabled"))
	case rt.ai == nil:
		rt.logger.Info("skipping job", zap.String("job", jobTurnoverScan), zap.String("reason", "ai provider is not available"))
	default:
		turnover := service.NewTurnoverService(deps)
		err := s.Register(jobTurnoverScan, cfg.Schedule.Turnover, func(ctx context.Context) error {
			assessments, err := turnover.Scan(ctx)
			rt.logger.Info("turnover scan", zap.Int("assessed", len(assessments)))
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func serveMetrics(addr string, rt *runtime) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		rt.logger.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.logger.Error("metrics endpoint failed", zap.Error(err))
		}
	}()
	return srv
}

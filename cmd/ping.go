package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/ai"
	"github.com/ensa-hoceima/hr-assistant/internal/utils"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the configured ai provider answers",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		rt := setup(ctx, needs{ai: true})
		defer rt.close()

		wait, _ := cmd.Flags().GetDuration("wait-cold-start")
		attempts, _ := cmd.Flags().GetInt("attempts")

		reply, err := ping(ctx, rt, wait, attempts)
		if err != nil {
			rt.logger.Fatal("connection test failed", zap.Error(err))
		}
		rt.logger.Info("connection test succeeded",
			zap.String("provider", rt.ai.ProviderName()),
			zap.String("model", rt.ai.Model()),
			zap.String("reply", reply),
		)
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)

	pingCmd.Flags().Duration("wait-cold-start", 20*time.Second, "how long to wait before retrying a model that is still loading; 0 disables retries")
	pingCmd.Flags().Int("attempts", 3, "maximum connection attempts while the model is loading")
}

// ping retries only on cold starts; any other failure is returned at once.
func ping(ctx context.Context, rt *runtime, wait time.Duration, attempts int) (string, error) {
	var reply string
	loading := func(err error) bool {
		if !errors.Is(err, ai.ErrColdStart) {
			return false
		}
		rt.logger.Info("model is loading, waiting", zap.Duration("wait", wait))
		return true
	}

	tries, err := utils.Retry(ctx, attempts, wait, loading, func(int) error {
		var err error
		reply, err = rt.analyzer.TestConnection(ctx)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("after %d attempt(s): %w", tries, err)
	}
	return reply, nil
}

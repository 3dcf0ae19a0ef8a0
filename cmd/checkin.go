package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/hr"
	"github.com/ensa-hoceima/hr-assistant/internal/service"
)

var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Record an internship check-in and alert the supervisor when needed",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		internship, _ := cmd.Flags().GetString("internship")
		message, _ := cmd.Flags().GetString("message")
		source, _ := cmd.Flags().GetString("source")

		rt := setup(ctx, needs{store: true, optionalAI: true, twilio: true})
		defer rt.close()

		if internship == "" {
			rt.logger.Fatal("internship id is required", zap.String("hint", "use --internship"))
		}

		checkin, err := service.NewCheckinService(rt.deps()).Record(ctx, internship, message, hr.CheckinSource(source))
		if err != nil {
			rt.logger.Fatal("recording the check-in", zap.Error(err))
		}
		rt.logger.Info("check-in recorded",
			zap.String("id", checkin.ID),
			zap.String("sentiment", checkin.Sentiment),
			zap.Bool("requires_attention", checkin.RequiresAttention),
			zap.Bool("supervisor_notified", checkin.SupervisorNotified),
		)
	},
}

func init() {
	rootCmd.AddCommand(checkinCmd)

	checkinCmd.Flags().StringP("internship", "i", "", "internship id")
	checkinCmd.Flags().StringP("message", "m", "", "check-in message from the student")
	checkinCmd.Flags().String("source", string(hr.SourceManual), "where the message came from: whatsapp, manual or email")
}

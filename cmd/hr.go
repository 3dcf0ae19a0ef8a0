package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/export"
	"github.com/ensa-hoceima/hr-assistant/internal/insights"
	"github.com/ensa-hoceima/hr-assistant/internal/service"
)

var turnoverCmd = &cobra.Command{
	Use:   "turnover",
	Short: "Assess the turnover risk of every active employee and store the result",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		rt := setup(ctx, needs{store: true, ai: true})
		defer rt.close()

		assessments, err := service.NewTurnoverService(rt.deps()).Scan(ctx)
		reportTurnover(cmd, rt.logger, assessments, err)
	},
}

const noHighRisk = "no high-risk employees found"

// reportTurnover prints the high-risk assessments. A failed scan and a scan
// without high-risk results end the same way.
func reportTurnover(cmd *cobra.Command, log *zap.Logger, assessments []insights.RiskAssessment, err error) {
	if err != nil {
		log.Warn("turnover scan failed", zap.Error(err))
	}

	high := make([]insights.RiskAssessment, 0, len(assessments))
	for _, a := range assessments {
		if a.RiskLevel == insights.RiskHigh {
			high = append(high, a)
		}
	}
	if len(high) == 0 {
		log.Info(noHighRisk, zap.Int("assessed", len(assessments)))
		return
	}

	log.Info("turnover scan finished", zap.Int("assessed", len(assessments)), zap.Int("high_risk", len(high)))
	printJSON(cmd, high)
}

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "Look for unusual patterns in the dashboard metrics",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		rt := setup(ctx, needs{store: true, ai: true})
		defer rt.close()

		findings, err := service.NewDashboardService(rt.deps()).Anomalies(ctx)
		if err != nil {
			rt.logger.Fatal("anomaly detection failed", zap.Error(err))
		}
		if len(findings) == 0 {
			rt.logger.Info("no anomalies found")
			return
		}
		printJSON(cmd, findings)
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print HR dashboard statistics",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		rt := setup(ctx, needs{store: true})
		defer rt.close()

		stats, err := service.NewDashboardService(rt.deps()).Stats(ctx)
		if err != nil {
			rt.logger.Fatal("computing dashboard statistics", zap.Error(err))
		}
		printJSON(cmd, stats)

		if path, _ := cmd.Flags().GetString("export"); path != "" {
			written, err := export.Dashboard(path, stats)
			if err != nil {
				rt.logger.Fatal("exporting the dashboard", zap.Error(err))
			}
			rt.logger.Info("dashboard exported", zap.String("filename", written))
		}
	},
}

func init() {
	rootCmd.AddCommand(turnoverCmd, anomaliesCmd, dashboardCmd)

	dashboardCmd.Flags().String("export", "", "write the statistics to this .xlsx file")
}

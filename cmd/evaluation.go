package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/hr"
	"github.com/ensa-hoceima/hr-assistant/internal/service"
	"github.com/ensa-hoceima/hr-assistant/internal/store"
)

var evaluationCmd = &cobra.Command{
	Use:   "evaluation [action]",
	Short: "Move a performance evaluation through its workflow",
	Long: `Move a performance evaluation through its workflow.

Actions: submit, approve, reject, review, complete, reset. Without --id or an
action the evaluation and the action are chosen interactively.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		rt := setup(ctx, needs{store: true, optionalAI: true, twilio: true})
		defer rt.close()

		id, _ := cmd.Flags().GetString("id")
		if id == "" {
			var err error
			if id, err = selectEvaluation(ctx, rt.store); err != nil {
				rt.logger.Fatal("exiting", zap.Error(err))
			}
		}

		var action hr.EvaluationAction
		if len(args) == 1 {
			action = hr.EvaluationAction(strings.ToLower(args[0]))
		} else {
			var err error
			if action, err = selectAction(); err != nil {
				rt.logger.Fatal("exiting", zap.Error(err))
			}
		}

		ev, err := service.NewEvaluationService(rt.deps()).Apply(ctx, id, action)
		if err != nil {
			rt.logger.Fatal("evaluation workflow", zap.String("action", string(action)), zap.Error(err))
		}
		rt.logger.Info("evaluation updated",
			zap.String("reference", ev.Reference),
			zap.String("state", string(ev.State)),
			zap.Float64("overall_score", ev.OverallScore()),
		)
		if ev.Recommendation != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "recommendation: %s\n", ev.Recommendation)
		}
	},
}

func init() {
	rootCmd.AddCommand(evaluationCmd)

	evaluationCmd.Flags().String("id", "", "evaluation id")
}

func selectEvaluation(ctx context.Context, st *store.Store) (string, error) {
	evaluations, err := st.Evaluations(ctx)
	if err != nil {
		return "", err
	}
	if len(evaluations) == 0 {
		return "", fmt.Errorf("there are no evaluations, seed some first")
	}

	items := make([]string, 0, len(evaluations))
	for _, ev := range evaluations {
		items = append(items, fmt.Sprintf("%s %s / %s / %s", ev.ID, ev.Reference, ev.Date.Format("2006-01-02"), ev.State))
	}
	p := promptui.Select{
		Label: "Choose an evaluation and press ENTER",
		Items: items,
		Size:  10,
	}
	_, selected, err := p.Run()
	if err != nil {
		return "", err
	}
	return strings.Split(selected, " ")[0], nil
}

func selectAction() (hr.EvaluationAction, error) {
	items := make([]string, 0)
	for _, a := range hr.EvaluationActions() {
		items = append(items, string(a))
	}
	p := promptui.Select{
		Label: "Action",
		Items: items,
	}
	_, selected, err := p.Run()
	if err != nil {
		return "", err
	}
	return hr.EvaluationAction(selected), nil
}

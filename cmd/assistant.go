package cmd

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/insights"
	"github.com/ensa-hoceima/hr-assistant/internal/service"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the HR assistant a question about the current data",
	Args:  cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			p := promptui.Prompt{
				Label: "Question",
				Validate: func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("question is empty")
					}
					return nil
				},
			}
			var err error
			if question, err = p.Run(); err != nil {
				newLogger().Fatal("exiting", zap.Error(err))
			}
		}

		rt := setup(ctx, needs{store: true, ai: true})
		defer rt.close()

		chat, err := service.NewAssistantService(rt.deps()).Ask(ctx, question)
		if err != nil {
			rt.logger.Fatal("assistant failed", zap.Error(err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), chat.Answer)
		rt.logger.Debug("answered", zap.Float64("response_time", chat.ResponseTime))
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past assistant questions, newest first",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		rt := setup(ctx, needs{store: true})
		defer rt.close()

		limit, _ := cmd.Flags().GetInt("limit")
		chats, err := service.NewAssistantService(rt.deps()).History(ctx, limit)
		if err != nil {
			rt.logger.Fatal("reading the history", zap.Error(err))
		}
		printJSON(cmd, chats)
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest analyses worth running on the current data",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		rt := setup(ctx, needs{store: true, ai: true})
		defer rt.close()

		suggestions, err := service.NewAssistantService(rt.deps()).Suggest(ctx)
		if err != nil {
			rt.logger.Fatal("suggestions failed", zap.Error(err))
		}
		printJSON(cmd, suggestions)
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict performance trends from recent evaluations",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		rt := setup(ctx, needs{store: true, ai: true})
		defer rt.close()

		prediction, err := service.NewAssistantService(rt.deps()).Predict(ctx)
		if err != nil {
			rt.logger.Fatal("prediction failed", zap.Error(err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), prediction)
	},
}

var documentCmd = &cobra.Command{
	Use:   "document <kind>",
	Short: "Generate an HR document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		rt := setup(ctx, needs{store: true, ai: true})
		defer rt.close()

		data := map[string]any{}
		if path, _ := cmd.Flags().GetString("data"); path != "" {
			if err := readJSON(path, &data); err != nil {
				rt.logger.Fatal("reading document data", zap.Error(err))
			}
		}

		doc, err := service.NewAssistantService(rt.deps()).Document(ctx, insights.DocumentKind(args[0]), data)
		if err != nil {
			rt.logger.Fatal("document generation failed", zap.Error(err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), doc)
	},
}

func init() {
	rootCmd.AddCommand(askCmd, historyCmd, suggestCmd, predictCmd, documentCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "number of entries; 0 shows all")

	kinds := make([]string, 0, len(insights.DocumentKinds()))
	for _, k := range insights.DocumentKinds() {
		kinds = append(kinds, string(k))
	}
	documentCmd.Long = "Generate an HR document. Known kinds: " + strings.Join(kinds, ", ") + "; other kinds get a generic document."
	documentCmd.Flags().String("data", "", "JSON file with the document data")
}

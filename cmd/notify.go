package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/messaging/twilio"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var errExit = errors.New("exit requested")

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a WhatsApp notification",
	Run: func(cmd *cobra.Command, _ []string) {
		notify(cmd)
	},
}

var messageStatusCmd = &cobra.Command{
	Use:   "message-status <sid>",
	Short: "Show the delivery status of a sent WhatsApp message",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		rt := setup(ctx, needs{twilio: true})
		defer rt.close()

		if rt.twilio == nil {
			rt.logger.Fatal("twilio is required", zap.Error(twilio.ErrIncompleteConfig))
		}
		status, err := rt.twilio.MessageStatus(ctx, args[0])
		if err != nil {
			rt.logger.Fatal("getting the message status", zap.Error(err))
		}
		printJSON(cmd, status)
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd, messageStatusCmd)

	kinds := make([]string, 0)
	for _, k := range twilio.NotificationKinds() {
		kinds = append(kinds, string(k))
	}
	notifyCmd.Flags().StringSlice("to", nil, "recipient phone numbers")
	notifyCmd.Flags().String("kind", "", "notification kind: "+strings.Join(kinds, ", ")+"; other kinds need only message=")
	notifyCmd.Flags().StringArray("set", nil, "template value as key=value, repeatable")
	notifyCmd.Flags().String("menu", "", "append a numbered menu with this title")
	notifyCmd.Flags().StringArray("option", nil, "menu option, repeatable")
	notifyCmd.Flags().BoolP("auto-aprove", "y", false, "do not ask for confirmation before sending")
}

func notify(cmd *cobra.Command) {
	ctx := cmd.Context()
	rt := setup(ctx, needs{twilio: true})
	defer rt.close()

	to, _ := cmd.Flags().GetStringSlice("to")
	kind, _ := cmd.Flags().GetString("kind")
	sets, _ := cmd.Flags().GetStringArray("set")
	menu, _ := cmd.Flags().GetString("menu")
	options, _ := cmd.Flags().GetStringArray("option")

	if len(to) == 0 {
		rt.logger.Fatal("at least one recipient is required", zap.String("hint", "use --to"))
	}
	data, err := parseSets(sets)
	if err != nil {
		rt.logger.Fatal("parsing template values", zap.Error(err))
	}

	body, err := twilio.RenderNotification(twilio.NotificationKind(kind), data)
	if err != nil {
		rt.logger.Fatal("rendering the notification", zap.Error(err))
	}
	if menu != "" {
		body += "\n\n" + twilio.FormatMenu(menu, options)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", body)

	if auto, _ := cmd.Flags().GetBool("auto-aprove"); !auto {
		if err := confirm(fmt.Sprintf("Send to %d recipient(s)?", len(to))); err != nil {
			if errors.Is(err, errExit) {
				rt.logger.Info("exiting", zap.String("reason", "got no from prompt"))
				return
			}
			rt.logger.Fatal("exiting", zap.Error(err))
		}
	}

	if rt.twilio == nil {
		rt.logger.Fatal("twilio is required", zap.Error(twilio.ErrIncompleteConfig))
	}

	messages := make([]twilio.Message, 0, len(to))
	for _, number := range to {
		messages = append(messages, twilio.Message{To: number, Body: body})
	}
	failed := 0
	for _, res := range rt.twilio.SendBulk(ctx, messages) {
		if res.Err != nil {
			failed++
			rt.logger.Warn("message not sent", zap.String("to", res.To), zap.Error(res.Err))
			continue
		}
		rt.logger.Info("message sent", zap.String("to", res.To), zap.String("sid", res.Result.SID))
	}
	if failed > 0 {
		rt.logger.Fatal("some messages were not sent", zap.Int("failed", failed), zap.Int("total", len(to)))
	}
}

// parseSets turns key=value pairs into template data. Values keep any further
// '=' characters.
func parseSets(pairs []string) (map[string]any, error) {
	data := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid value %q, expected key=value", pair)
		}
		data[key] = value
	}
	return data, nil
}

func confirm(label string) error {
	prompt := promptui.Select{
		Label: label,
		Items: []string{PromptYes, PromptNo},
	}
	_, answer, err := prompt.Run()
	if err != nil {
		return err
	}
	if answer != PromptYes {
		return errExit
	}
	return nil
}

package cli

import (
	"fmt"
	"strings"

	"github.com/soyeahso/relaybot/internal/channel/discord"
	"github.com/soyeahso/relaybot/internal/color"
	"github.com/soyeahso/relaybot/internal/eventlog"
	"github.com/spf13/cobra"
)

func newNotifyCmd() *cobra.Command {
	var (
		title  string
		tag    string
		footer string
		warn   bool
	)

	cmd := &cobra.Command{
		Use:   "notify <text>",
		Short: "Post a custom notice to the ops webhook",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.OpsLog.Enabled() {
				return fmt.Errorf("opsLog.webhookId and opsLog.webhookToken must be configured")
			}
			if !color.Known(color.Tag(tag)) {
				return fmt.Errorf("unknown color %q", tag)
			}

			poster, err := discord.NewWebhookPoster(nil, cfg.OpsLog.Credential(), cfg.Discord.BotName)
			if err != nil {
				return err
			}
			events := eventlog.New(poster, log, cfg.Dev)

			text := strings.Join(args, " ")
			if warn {
				events.Warn(text)
			} else {
				events.Log(eventlog.CustomEvent{
					Title:  title,
					Color:  color.Tag(tag),
					Text:   text,
					Footer: footer,
				})
			}
			events.Wait()
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "notice title")
	cmd.Flags().StringVar(&tag, "color", "", "notice color (info, ok, warn, error)")
	cmd.Flags().StringVar(&footer, "footer", "", "notice footer")
	cmd.Flags().BoolVar(&warn, "warn", false, "send as a warning instead of a custom notice")
	return cmd
}

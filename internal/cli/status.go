package cli

import (
	"context"
	"fmt"

	"github.com/soyeahso/relaybot/internal/config"
	"github.com/soyeahso/relaybot/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show relaybot status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("relaybot %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Printf("Config:  %s\n", paths.Config)
			fmt.Printf("Data:    %s\n", paths.Data)
			fmt.Printf("Logs:    %s\n", paths.Logs)
			fmt.Println()

			cfg, err := loadConfig()
			if err != nil {
				fmt.Printf("Config:  error loading: %v\n", err)
				return nil
			}

			token := "(not set)"
			if cfg.Discord.Token != "" {
				token = "set"
			}
			fmt.Printf("Discord: bot=%q activity=%q token=%s\n", cfg.Discord.BotName, cfg.Discord.Activity, token)

			if cfg.OpsLog.Enabled() {
				fmt.Printf("Ops log: webhook=%s\n", cfg.OpsLog.WebhookID)
			} else {
				fmt.Println("Ops log: (console only)")
			}

			fmt.Printf("Relay:   maxEmbeds=%d envPrefix=%s showAuthor=%v dev=%v\n",
				cfg.Relay.MaxEmbeds, cfg.Relay.WebhookEnvPrefix, cfg.Relay.ShowAuthorDefault(), cfg.Dev)

			storePath := paths.StorePath(cfg)
			tasks, closeDB, err := openTasksWith(cfg)
			if err != nil {
				fmt.Printf("Store:   %s (error: %v)\n", storePath, err)
			} else {
				n, err := tasks.Count(context.Background())
				closeDB()
				if err != nil {
					fmt.Printf("Store:   %s (error: %v)\n", storePath, err)
				} else {
					fmt.Printf("Store:   %s rules=%d\n", storePath, n)
				}
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}

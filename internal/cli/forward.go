package cli

import (
	"context"
	"fmt"

	"github.com/soyeahso/relaybot/internal/config"
	"github.com/soyeahso/relaybot/internal/store"
	"github.com/spf13/cobra"
)

func newForwardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forward",
		Short: "Manage forward rules",
	}

	cmd.AddCommand(newForwardAddCmd())
	cmd.AddCommand(newForwardListCmd())
	cmd.AddCommand(newForwardRemoveCmd())
	return cmd
}

// openTasks opens the rule store named by the config.
func openTasks() (*store.TaskStore, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return openTasksWith(cfg)
}

func openTasksWith(cfg config.Config) (*store.TaskStore, func(), error) {
	if err := paths.EnsureDirs(); err != nil {
		return nil, nil, err
	}
	db, err := store.Open(paths.StorePath(cfg), log)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return store.NewTaskStore(db), func() { db.Close() }, nil
}

func newForwardAddCmd() *cobra.Command {
	var showAuthor bool

	cmd := &cobra.Command{
		Use:   "add <origin-channel> <destination>",
		Short: "Relay messages from a channel to a channel or @user",
		Long: "Relay messages from a channel to another channel ID, or to a user's direct messages " +
			"with @<userID>. A webhook is used when <PREFIX>_<destination> is set in the environment.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("show-author") {
				showAuthor = cfg.Relay.ShowAuthorDefault()
			}

			tasks, closeDB, err := openTasksWith(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			rule, err := tasks.Add(context.Background(), args[0], args[1], showAuthor)
			if err != nil {
				return err
			}
			fmt.Printf("Added %s: %s -> %s (show author: %v)\n", rule.ID, rule.OriginID, rule.Destination, rule.ShowAuthor)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showAuthor, "show-author", true, "show the original author on relayed messages")
	return cmd
}

func newForwardListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [origin-channel]",
		Short: "List forward rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, closeDB, err := openTasks()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := context.Background()
			var rules []store.ForwardRule
			if len(args) == 1 {
				rules, err = tasks.ListByOrigin(ctx, args[0])
			} else {
				rules, err = tasks.List(ctx)
			}
			if err != nil {
				return err
			}

			if len(rules) == 0 {
				fmt.Println("No forward rules.")
				return nil
			}
			fmt.Printf("%-22s %-22s %-7s %s\n", "ORIGIN", "DESTINATION", "AUTHOR", "CREATED")
			for _, r := range rules {
				fmt.Printf("%-22s %-22s %-7v %s\n", r.OriginID, r.Destination, r.ShowAuthor, r.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newForwardRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <origin-channel> <destination>",
		Short: "Stop relaying from a channel to a destination",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, closeDB, err := openTasks()
			if err != nil {
				return err
			}
			defer closeDB()

			removed, err := tasks.Remove(context.Background(), args[0], args[1], "operator")
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no rule %s -> %s", args[0], args[1])
			}
			fmt.Printf("Removed %s -> %s\n", args[0], args[1])
			return nil
		},
	}
}

package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/soyeahso/relaybot/internal/channel/discord"
	"github.com/soyeahso/relaybot/internal/config"
	"github.com/soyeahso/relaybot/internal/dispatch"
	"github.com/soyeahso/relaybot/internal/domain"
	"github.com/soyeahso/relaybot/internal/eventlog"
	"github.com/soyeahso/relaybot/internal/forward"
	"github.com/soyeahso/relaybot/internal/hooks"
	"github.com/soyeahso/relaybot/internal/logging"
	"github.com/soyeahso/relaybot/internal/relay"
	"github.com/soyeahso/relaybot/internal/store"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var dev bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and start relaying",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dev {
				cfg.Dev = true
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("creating data directories: %w", err)
			}

			runLog, closer, err := logging.NewFromOptions(logging.Options{
				Level:        cfg.Logging.Level,
				File:         cfg.Logging.File,
				ConsoleStyle: cfg.Logging.ConsoleStyle,
			})
			if err != nil {
				return err
			}
			defer closer.Close()

			db, err := store.Open(paths.StorePath(cfg), runLog)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()
			tasks := store.NewTaskStore(db)

			hookMgr := hooks.NewManager(runLog)

			client, err := discord.New(discord.Config{
				Token:    cfg.Discord.Token,
				Activity: cfg.Discord.Activity,
			}, hookMgr, runLog)
			if err != nil {
				return err
			}

			events, err := newEventLog(cfg, client, runLog)
			if err != nil {
				return err
			}
			wireEventLog(hookMgr, events)

			resolver := forward.NewResolver(client, forward.EnvCredentials{
				Prefix: cfg.Relay.WebhookEnvPrefix,
				Log:    runLog,
			}, runLog)
			dispatcher := dispatch.New(client, resolver, tasks, events, dispatch.Config{
				MaxEmbeds: cfg.Relay.MaxEmbeds,
				BotName:   cfg.Discord.BotName,
			}, runLog)
			router := relay.NewRouter(tasks, dispatcher, client, hookMgr, runLog)

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			router.Wire(ctx, client)
			if err := client.Start(ctx); err != nil {
				events.Error(eventlog.SubtypeAPI, err)
				events.Wait()
				return err
			}

			rules, err := tasks.Count(ctx)
			if err != nil {
				events.Error(eventlog.SubtypeDB, err)
			}
			runLog.Info().
				Int("rules", rules).
				Int("maxEmbeds", cfg.Relay.MaxEmbeds).
				Bool("opsLog", cfg.OpsLog.Enabled()).
				Msg("relay active")

			<-ctx.Done()
			runLog.Info().Msg("shutting down")

			shutdown := context.Background()
			hookMgr.Emit(shutdown, hooks.EventBotStop, nil)
			if err := client.Stop(shutdown); err != nil {
				runLog.Warn().Err(err).Msg("closing gateway failed")
			}
			router.Wait()
			hookMgr.Wait()
			events.Wait()
			return nil
		},
	}

	cmd.Flags().BoolVar(&dev, "dev", false, "print dev events to the console")
	return cmd
}

// newEventLog builds the event logger, posting to the ops webhook when
// one is configured.
func newEventLog(cfg config.Config, client *discord.Client, log *logging.Logger) (*eventlog.Logger, error) {
	if !cfg.OpsLog.Enabled() {
		log.Warn().Msg("no ops webhook configured, events stay on the console")
		return eventlog.New(nil, log, cfg.Dev), nil
	}
	poster, err := discord.NewWebhookPoster(client.Session(), cfg.OpsLog.Credential(), cfg.Discord.BotName)
	if err != nil {
		return nil, err
	}
	return eventlog.New(poster, log, cfg.Dev), nil
}

// wireEventLog forwards lifecycle hooks to the event log.
func wireEventLog(hm *hooks.Manager, events *eventlog.Logger) {
	hm.On(hooks.EventGuildJoin, "eventlog", func(_ context.Context, p hooks.Payload) error {
		g, ok := p.Data["guild"].(domain.Guild)
		if !ok {
			return fmt.Errorf("guild_join without guild")
		}
		events.GuildJoin(g)
		return nil
	})
	hm.On(hooks.EventGuildLeave, "eventlog", func(_ context.Context, p hooks.Payload) error {
		g, ok := p.Data["guild"].(domain.Guild)
		if !ok {
			return fmt.Errorf("guild_leave without guild")
		}
		events.GuildLeave(g)
		return nil
	})
	for _, ev := range []string{hooks.EventBotReady, hooks.EventBotStop, hooks.EventDeliveryFailed} {
		hm.On(ev, "eventlog", func(_ context.Context, p hooks.Payload) error {
			events.Dev(map[string]any{"event": p.Event, "data": p.Data})
			return nil
		})
	}
}

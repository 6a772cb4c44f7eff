package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/distgeniusmadlabs/labassistant/api"
	"github.com/distgeniusmadlabs/labassistant/config"
	"github.com/distgeniusmadlabs/labassistant/db"
	"github.com/distgeniusmadlabs/labassistant/discord"
	"github.com/distgeniusmadlabs/labassistant/twitch"
)

func botCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Connect to Discord and answer schedule commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Token == "" {
				return errors.New("no credentials available to login: set LABASSISTANT_TOKEN")
			}
			database, err := openDatabase(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBot(ctx, cfg, database)
		},
	}
}

func runBot(ctx context.Context, cfg config.Config, database *db.Database) error {
	poller := api.NewStreamPoller(ctx, database, newTwitchAPI(cfg, database), cfg.TwitchChannel, cfg.PollInterval)
	server := api.New(api.Config{
		Addr:      cfg.APIAddr,
		BasicAuth: cfg.APIBasicAuth,
		GoliveKey: cfg.GoliveKey,
	}, database, poller)
	go func() {
		if err := server.InitAPIAndListen(ctx); err != nil {
			log.Println("API server stopped: ", err)
		}
	}()

	bot, err := discord.NewBot(cfg.Token, cfg.Prefix, &discord.ScheduleCommands{
		DataStore:  database,
		AdminRoles: cfg.AdminRoles,
		ModRoles:   cfg.ModRoles,
	})
	if err != nil {
		return err
	}

	log.Println("Logging into Discord...")
	if err := bot.Open(); err != nil {
		return err
	}
	defer func() { _ = bot.Close() }()

	<-ctx.Done()
	log.Println("Shutting down")
	return nil
}

// newTwitchAPI returns nil unless Twitch polling is configured. Tokens
// saved by an earlier run win over the ones in the environment.
func newTwitchAPI(cfg config.Config, database *db.Database) twitch.ITwitchAPI {
	if !cfg.TwitchEnabled() {
		return nil
	}

	authToken, refreshToken := cfg.TwitchAuthToken, cfg.TwitchRefreshToken
	var saveTokens twitch.TokenSaver
	if cfg.KeyPhrase != "" {
		storedAuth, storedRefresh, ok, err := database.FindTwitchTokens(cfg.KeyPhrase)
		if err != nil {
			log.Println("Unable to read stored twitch tokens: ", err)
		} else if ok {
			authToken, refreshToken = storedAuth, storedRefresh
		}
		saveTokens = func(authToken string, refreshToken string) error {
			return database.SaveTwitchTokens(authToken, refreshToken, cfg.KeyPhrase)
		}
	}

	return twitch.NewTwitchAPI(cfg.TwitchClientID, cfg.TwitchClientSecret, authToken, refreshToken, saveTokens)
}

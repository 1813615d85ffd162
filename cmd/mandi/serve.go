package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/mandi/internal/catalog"
	"github.com/zulandar/mandi/internal/config"
	"github.com/zulandar/mandi/internal/db"
	"github.com/zulandar/mandi/internal/i18n"
	"github.com/zulandar/mandi/internal/negotiation"
	"github.com/zulandar/mandi/internal/notify"
	"github.com/zulandar/mandi/internal/prefs"
	"github.com/zulandar/mandi/internal/pricing"
	"github.com/zulandar/mandi/internal/server"
	"github.com/zulandar/mandi/internal/voice"
	"gorm.io/gorm"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the marketplace API",
		Long: `Migrates the database, seeds the configured listings and serves the JSON API.
Negotiation replies are driven in-process; idle sessions are swept on the
configured schedule.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mandi config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides server.port)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	a, err := newApp(ctx, cfg, gormDB)
	if err != nil {
		return err
	}

	go func() {
		if err := a.manager.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("serve: reply queue stopped: %v", err)
		}
	}()
	sweeper, err := a.manager.StartSweeper(cfg.Negotiation.SweepSchedule)
	if err != nil {
		return err
	}
	defer sweeper.Stop()

	return server.Start(ctx, server.StartOpts{
		Server: a.server,
		Port:   cfg.Server.Port,
		Out:    cmd.OutOrStdout(),
	})
}

// app is the wired set of collaborators behind the API.
type app struct {
	server  *server.Server
	manager *negotiation.Manager
}

func newApp(ctx context.Context, cfg *config.Config, gormDB *gorm.DB) (*app, error) {
	if err := db.Init(ctx, gormDB, cfg); err != nil {
		return nil, err
	}

	store, err := catalog.NewStore(gormDB)
	if err != nil {
		return nil, err
	}
	translator, err := newTranslator(cfg.Translator)
	if err != nil {
		return nil, err
	}
	notifier, err := newNotifier(cfg.Notify)
	if err != nil {
		return nil, err
	}

	manager, err := negotiation.NewManager(negotiation.ManagerOpts{
		DB:         gormDB,
		Catalog:    store,
		Translator: translator,
		Notifier:   notifier,
		Config: negotiation.Config{
			VendorLang:  cfg.VendorLanguage,
			ReplyDelay:  cfg.Negotiation.ReplyDelay,
			AcceptDelay: cfg.Negotiation.AcceptDelay,
			PriceStep:   cfg.Negotiation.PriceStep,
			IdleTimeout: cfg.Negotiation.IdleTimeout,
		},
	})
	if err != nil {
		return nil, err
	}

	adapter, err := prefs.NewGormAdapter(gormDB)
	if err != nil {
		return nil, err
	}
	state, err := prefs.Load(ctx, adapter)
	if err != nil {
		return nil, err
	}

	recognizer, err := newRecognizer(cfg.Voice)
	if err != nil {
		return nil, err
	}

	srv, err := server.New(server.Opts{
		Catalog:        store,
		Manager:        manager,
		Prices:         pricing.NewEngine(pricing.EngineOpts{}),
		Prefs:          state,
		Recognizer:     recognizer,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	if err != nil {
		return nil, err
	}
	return &app{server: srv, manager: manager}, nil
}

func newTranslator(cfg config.TranslatorConfig) (i18n.Translator, error) {
	if cfg.Endpoint == "" {
		return i18n.StaticTranslator{}, nil
	}
	return i18n.NewRemoteTranslator(i18n.RemoteTranslatorOpts{
		Endpoint: cfg.Endpoint,
		APIKey:   cfg.APIKey,
	})
}

func newRecognizer(cfg config.VoiceConfig) (voice.Recognizer, error) {
	if cfg.Endpoint == "" {
		return voice.EchoRecognizer{}, nil
	}
	return voice.NewHTTPRecognizer(voice.HTTPRecognizerOpts{Endpoint: cfg.Endpoint})
}

func newNotifier(cfg config.NotifyConfig) (notify.Notifier, error) {
	var all notify.Multi
	if cfg.SlackChannel != "" {
		s, err := notify.NewSlack(notify.SlackOpts{BotToken: cfg.SlackToken, ChannelID: cfg.SlackChannel})
		if err != nil {
			return nil, err
		}
		all = append(all, s)
	}
	if cfg.DiscordChannel != "" {
		d, err := notify.NewDiscord(notify.DiscordOpts{BotToken: cfg.DiscordToken, ChannelID: cfg.DiscordChannel})
		if err != nil {
			return nil, err
		}
		all = append(all, d)
	}
	if len(all) == 0 {
		return notify.Nop{}, nil
	}
	return all, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zerobugdebug/link-catalog-bot/internal/catalog"
	"github.com/zerobugdebug/link-catalog-bot/internal/config"
	"github.com/zerobugdebug/link-catalog-bot/internal/delivery"
	"github.com/zerobugdebug/link-catalog-bot/internal/menu"
	"github.com/zerobugdebug/link-catalog-bot/internal/metrics"
	"github.com/zerobugdebug/link-catalog-bot/internal/platform"
	"github.com/zerobugdebug/link-catalog-bot/internal/platform/discord"
	"github.com/zerobugdebug/link-catalog-bot/internal/platform/slack"
	"github.com/zerobugdebug/link-catalog-bot/internal/refresh"
	"github.com/zerobugdebug/link-catalog-bot/internal/session"
)

func main() {
	// Set up command line flags
	logLevelStr := flag.String("log-level", "info", "Log level: trace, debug, info, warn, error, fatal, panic")
	layoutPath := flag.String("layout", "", "Optional YAML file overriding the catalog layout")
	variant := flag.String("variant", config.VariantFull, "Built-in layout: full (six categories, previews) or reduced (four categories, links)")
	refreshInterval := flag.Duration("refresh-interval", refresh.DefaultInterval, "How often the mirrored channels are re-read")
	metricsAddr := flag.String("metrics-addr", ":9090", "Address of the metrics and health endpoints (empty to disable)")
	flag.Parse()

	// Set up zerolog
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

	logLevel, err := zerolog.ParseLevel(*logLevelStr)
	if err != nil {
		logLevel = zerolog.InfoLevel
		fmt.Printf("Invalid log level '%s', defaulting to 'info'\n", *logLevelStr)
	}
	zerolog.SetGlobalLevel(logLevel)
	log.Logger = zerolog.New(consoleWriter).With().Timestamp().Logger()

	log.Info().
		Str("level", logLevel.String()).
		Msg("Logger initialized")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	layout, err := config.Preset(*variant)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid layout variant")
	}
	if *layoutPath != "" {
		layout, err = config.LoadLayout(*layoutPath, layout)
		if err != nil {
			log.Fatal().Err(err).Str("layout", *layoutPath).Msg("Failed to load layout")
		}
	}

	log.Info().
		Str("platform", cfg.Platform).
		Str("botName", cfg.BotName).
		Str("trigger", cfg.TriggerKeyword).
		Str("variant", *variant).
		Str("delivery", string(layout.Delivery)).
		Int("categories", len(layout.Categories)).
		Int("historyLimit", cfg.HistoryLimit).
		Dur("refreshInterval", *refreshInterval).
		Dur("sessionTTL", cfg.SessionTTL).
		Str("discordToken", config.MaskPresent(cfg.DiscordToken)).
		Str("slackBotToken", config.MaskPresent(cfg.SlackBotToken)).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, err := newGateway(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("platform", cfg.Platform).Msg("Error creating gateway")
	}

	store := catalog.NewStore()
	classifier := catalog.NewClassifier(layout.SubcategoryEmojis)

	sessions := session.NewStore(cfg.SessionTTL)
	sessions.Start()
	defer sessions.Stop()

	deliverer := delivery.NewDeliverer(gateway, delivery.NewFormatter(cfg.BotName), layout.Delivery, cfg.DeliveryInterval)

	presenter := menu.NewPresenter(menu.Options{
		Catalog:    store,
		Sessions:   sessions,
		Deliverer:  deliverer,
		Responder:  gateway,
		Classifier: classifier,
		Layout:     layout,
		Trigger:    cfg.TriggerKeyword,
		BotName:    cfg.BotName,
	})

	refresher := refresh.NewRefresher(gateway, store, classifier, layout.Categories, cfg.HistoryLimit, *refreshInterval)
	refresher.Start(ctx)
	defer refresher.Stop()

	if *metricsAddr != "" {
		server := metrics.NewServer(*metricsAddr, store.Loaded)
		go func() {
			if err := server.Start(ctx); err != nil {
				log.Error().Err(err).Msg("Metrics server stopped with error")
			}
		}()
	}

	log.Info().Str("platform", gateway.Name()).Msg("Starting catalog bot...")
	if err := gateway.Run(ctx, presenter); err != nil {
		log.Fatal().Err(err).Msg("Gateway stopped with error")
	}
	log.Info().Msg("Catalog bot stopped")
}

func newGateway(ctx context.Context, cfg config.Config) (platform.Gateway, error) {
	switch cfg.Platform {
	case config.PlatformSlack:
		return slack.New(ctx, cfg.SlackBotToken, cfg.SlackAppToken)
	default:
		return discord.New(cfg.DiscordToken)
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/hray3182/nudge/internal/ai"
	"github.com/hray3182/nudge/internal/bot"
	"github.com/hray3182/nudge/internal/bot/handlers"
	"github.com/hray3182/nudge/internal/config"
	"github.com/hray3182/nudge/internal/database"
	"github.com/hray3182/nudge/internal/metrics"
	"github.com/hray3182/nudge/internal/reminders"
	"github.com/hray3182/nudge/internal/repository"
	"github.com/hray3182/nudge/internal/scheduler"
	"github.com/hray3182/nudge/internal/streams"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	repos := &handlers.Repositories{
		User:     repository.NewUserRepository(db),
		Reminder: repository.NewReminderRepository(db),
		Settings: repository.NewUserSettingsRepository(db),
		Activity: repository.NewActivityRepository(db),
	}
	streamRepo := repository.NewStreamRepository(db)

	catalog, err := streams.Builtin()
	if err != nil {
		log.Fatalf("Failed to load stream catalog: %v", err)
	}
	for _, s := range catalog.Streams() {
		if err := streamRepo.Upsert(ctx, s); err != nil {
			log.Printf("Failed to seed stream %q: %v", s.Title, err)
		}
	}

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	var aiClient *ai.Client
	if cfg.AIAPIKey != "" {
		aiClient = ai.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		log.Printf("AI client initialized (model: %s)", cfg.AIModel)
	} else {
		log.Println("AI client not configured, natural language features disabled")
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create Telegram API: %v", err)
	}
	api.Debug = cfg.DevMode

	service := reminders.NewService(repos.Reminder, repos.Activity, repos.Settings, streamRepo,
		reminders.WithMetrics(m),
		reminders.WithCatalog(catalog),
		reminders.WithDefaultTimezone(cfg.DefaultTimezone),
	)
	sched := scheduler.New(api, repos.Reminder, repos.Settings, cfg.CheckInterval, cfg.DefaultTimezone, m)
	h := handlers.New(api, repos, service, aiClient, sched, cfg.DefaultTimezone, cfg.DevMode)
	b := bot.New(api, h)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sched.Start(ctx)
		return nil
	})
	g.Go(func() error {
		log.Println("Starting bot...")
		return b.Start(ctx)
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(ctx, cfg.MetricsAddr, prometheus.DefaultGatherer)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Bot error: %v", err)
	}
	log.Println("Shut down")
}

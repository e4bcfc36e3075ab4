package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Spok95/school-planner/internal/app"
	"github.com/Spok95/school-planner/internal/audit"
	"github.com/Spok95/school-planner/internal/config"
	"github.com/Spok95/school-planner/internal/db"
	"github.com/Spok95/school-planner/internal/jobs"
	"github.com/Spok95/school-planner/internal/logging"
	"github.com/Spok95/school-planner/internal/notify"
	"github.com/Spok95/school-planner/internal/observability"
	"github.com/Spok95/school-planner/internal/schedule"
	"github.com/Spok95/school-planner/internal/scoring"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("нет .env файла, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("логгер: %v", err)
	}
	defer lg.Closer()
	logger := lg.Sugar

	flushSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		logger.Warnw("sentry init failed", "err", err)
	}
	defer flushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("подключение к БД", "err", err)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		logger.Fatalw("миграции", "err", err)
	}
	if err := db.Seed(ctx, database); err != nil {
		logger.Fatalw("стартовые данные", "err", err)
	}

	changeLog := db.NewChangeLogStore(database)
	recorder := audit.NewBestEffort(changeLog, logger)

	slots := db.NewTimetableStore(database)
	perf := db.NewPerformanceStore(database)
	capture := db.NewCaptureStore(database)
	catalog := db.NewCatalogStore(database)

	resolver := schedule.NewResolver(slots, schedule.DefaultPattern())
	lifecycle := schedule.NewLifecycle(slots, recorder)
	scorer := scoring.NewEngine(perf, recorder)

	var notifier notify.Notifier = notify.Noop{}
	if cfg.BotToken != "" && cfg.NotifyChatID != 0 {
		tg, err := notify.NewTelegram(cfg.BotToken, cfg.NotifyChatID, logger)
		if err != nil {
			logger.Warnw("telegram notifier disabled", "err", err)
		} else {
			notifier = tg
		}
	}

	runner := jobs.New(ctx, logger)
	jobs.StartMaintenance(runner, database, changeLog, logger)

	api := &app.API{
		Resolver:      resolver,
		Lifecycle:     lifecycle,
		Scoring:       scorer,
		Slots:         slots,
		Perf:          perf,
		Capture:       capture,
		Catalog:       catalog,
		Audit:         recorder,
		Notifier:      notifier,
		Location:      cfg.Location,
		LessonMinutes: cfg.LessonMinutes,
		Log:           logger,
	}
	app.StartHTTP(ctx, cfg.HTTPAddr, database, api)
	logger.Infow("server started", "addr", cfg.HTTPAddr, "env", cfg.Env, "version", version)

	<-ctx.Done()
	logger.Infow("shutting down")
	time.Sleep(200 * time.Millisecond)
}

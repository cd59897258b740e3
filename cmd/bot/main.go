package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/app"
	"github.com/Freeeeeet/tutoring_bot/internal/cache"
	"github.com/Freeeeeet/tutoring_bot/internal/config"
	"github.com/Freeeeeet/tutoring_bot/internal/controller"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/handlers"
	"github.com/Freeeeeet/tutoring_bot/internal/queue"
	"github.com/Freeeeeet/tutoring_bot/internal/repository"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Sugar().Infow("Starting tutoring bot",
		"environment", cfg.Environment,
		"store", cfg.Store,
		"timezone", cfg.Timezone,
		"token_length", len(cfg.TelegramToken))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}

	logger.Info("Bot stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// Хранилище
	var (
		slots    service.SlotStore
		users    service.UserStore
		subjects service.SubjectLookup
		catalog  handlers.SubjectCatalog
	)

	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("Using in-memory store, data will be lost on restart")
		memSlots := repository.NewMemorySlotRepository()
		slots = memSlots
		users = repository.NewMemoryUserRepository(memSlots)
	default:
		pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return err
		}
		logger.Info("✅ Connected to PostgreSQL")

		migrator, err := app.NewMigrator(pool, cfg.MigrationsDir)
		if err != nil {
			return err
		}
		if err := migrator.Run(ctx); err != nil {
			migrator.Close()
			return err
		}
		if version, err := migrator.Version(ctx); err == nil {
			logger.Info("Database schema version", zap.Int64("version", version))
		}
		migrator.Close()

		subjectRepo := repository.NewSubjectRepository(pool)
		slots = repository.NewSlotRepository(pool)
		users = repository.NewUserRepository(pool)
		subjects = subjectRepo
		catalog = subjectRepo
	}

	// Кэш выборок и отметки о прочтении
	var (
		slotCache cache.SlotCache   = cache.NewMemory(cache.DefaultTTL)
		reads     service.ReadStore = cache.NewMemoryReadStore()
	)
	if cfg.UseRedis() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		logger.Info("✅ Connected to Redis", zap.String("addr", cfg.RedisAddr))

		slotCache = cache.NewRedis(rdb, "slots", cache.DefaultTTL)
		reads = cache.NewRedisReadStore(rdb, "notices:read")
	}

	// События
	var publisher service.EventPublisher = queue.NopPublisher{}
	if cfg.UseRabbitMQ() {
		amqpPublisher := queue.NewPublisher(cfg.RabbitMQURL, logger)
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	// Сервисы
	reader := service.NewSlotReader(slots, slotCache, logger)
	booking := service.NewBookingService(slots, reader, subjects, publisher, logger)
	sessions := service.NewSessionTracker(booking, logger)

	services := handlers.Services{
		Users:        service.NewUserService(users, logger),
		Availability: service.NewAvailabilityService(slots, reader, cfg.Location, logger),
		Booking:      booking,
		Reschedule:   service.NewRescheduleService(slots, reader, cfg.Location, logger),
		Notices:      service.NewNotificationService(reader, reads, cfg.Location, logger),
		Sessions:     sessions,
		Subjects:     catalog,
	}

	// Фоновые задачи
	reminders := service.NewReminderService(slots, publisher, logger).WithSessions(sessions)
	scheduler := app.NewScheduler(reminders, cfg.ReminderCron, cfg.Location, logger)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	// Telegram
	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		return err
	}

	botController := controller.NewBotController(b, services, cfg.Location, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Warn("Bot commands menu not set", zap.Error(err))
	}

	logger.Info("🚀 Bot is running", zap.Duration("cache_ttl", cache.DefaultTTL), zap.Time("started_at", time.Now()))
	return botController.Start(ctx)
}

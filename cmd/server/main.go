// Package main - точка входа backend-сервиса SkillChain.
//
// Философия: "Учи и учись" - каждый участник одновременно учитель и ученик.
// Платформа сводит взаимодополняющие пары, проводит сессии обмена навыками
// и держит мотивацию через ставки, стрики и бейджи.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries/EventHandlers)
// - Infrastructure: реализация репозиториев, внешние API
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	// Application layer
	"github.com/skillchain-hub/skillchain-backend/internal/application/command"
	"github.com/skillchain-hub/skillchain-backend/internal/application/eventhandler"
	"github.com/skillchain-hub/skillchain-backend/internal/application/query"

	// Infrastructure layer
	"github.com/skillchain-hub/skillchain-backend/internal/infrastructure/external/advisor"
	"github.com/skillchain-hub/skillchain-backend/internal/infrastructure/messaging"
	"github.com/skillchain-hub/skillchain-backend/internal/infrastructure/persistence/postgres"
	"github.com/skillchain-hub/skillchain-backend/internal/infrastructure/persistence/redis"

	// Packages
	"github.com/skillchain-hub/skillchain-backend/config"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/notification"
	"github.com/skillchain-hub/skillchain-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting SkillChain backend",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", string(cfg.App.Environment),
		"debug", cfg.App.Debug,
	)

	// Внутренний логгер для инфраструктурных компонентов (seeder, notifier).
	appLog := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	applied, err := migrator.GetAppliedMigrations(ctx)
	if err != nil {
		log.Warn("failed to get migration status", "error", err)
	} else {
		log.Info("migrations completed", "applied", len(applied), "total", len(postgres.GetMigrations()))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var leaderboardCache *redis.LeaderboardCache
	var sink notification.Sink

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCache, err = connectRedis(cfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			if cfg.Features.IsEnabled(config.FeatureLeaderboardCache, nil) {
				leaderboardCache = redis.NewLeaderboardCache(redisCache, cfg.Redis.LeaderboardTTL)
			}
			sink = redis.NewNotifier(redisCache, appLog)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	userRepo := postgres.NewUserRepository(dbConn)
	skillRepo := postgres.NewSkillRepository(dbConn)
	userSkillRepo := postgres.NewUserSkillRepository(dbConn)
	chainRepo := postgres.NewChainRepository(dbConn)
	stakeRepo := postgres.NewStakeRepository(dbConn)
	sessionRepo := postgres.NewSessionRepository(dbConn)
	notificationRepo := postgres.NewNotificationRepository(dbConn)
	badgeRepo := postgres.NewBadgeRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. НАЧАЛЬНОЕ НАПОЛНЕНИЕ (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Seed.Enabled {
		log.Info("seeding initial data...")
		seeder := postgres.NewSeeder(userRepo, skillRepo, chainRepo, appLog)
		if err := seeder.Seed(ctx, postgres.AdminCredentials{
			Username: cfg.Seed.AdminUsername,
			Email:    cfg.Seed.AdminEmail,
			Password: cfg.Seed.AdminPassword,
		}); err != nil {
			return fmt.Errorf("failed to seed initial data: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultConfig()
	eventBusConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ИНИЦИАЛИЗАЦИЯ ВНЕШНИХ КЛИЕНТОВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing external clients...")

	localAdvisor := advisor.NewLocalAdvisor(chainRepo)
	var chainAdvisor advisor.Advisor = localAdvisor

	if cfg.Advisor.BaseURL != "" && cfg.Advisor.APIKey != "" &&
		cfg.Features.IsEnabled(config.FeatureMatchingAdvisor, nil) {
		clientConfig := advisor.DefaultClientConfig(cfg.Advisor.BaseURL)
		clientConfig.APIKey = cfg.Advisor.APIKey
		clientConfig.Timeout = cfg.Advisor.RequestTimeout
		clientConfig.Logger = log
		chainAdvisor = advisor.NewFallbackAdvisor(advisor.NewClient(clientConfig), localAdvisor, log)
		log.Info("remote advisor enabled", "base_url", cfg.Advisor.BaseURL)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	var boardCache query.LeaderboardCache
	if leaderboardCache != nil {
		boardCache = &leaderboardCacheAdapter{cache: leaderboardCache}
	}

	// Интерфейсный слой (REST/bot) подключается поверх этого набора хендлеров.
	app := appHandlers{
		RegisterUser:  command.NewRegisterUserHandler(userRepo, eventBus),
		DeclareSkill:  command.NewDeclareSkillHandler(userRepo, skillRepo, userSkillRepo),
		RequestSession: command.NewRequestSessionHandler(
			userRepo, skillRepo, userSkillRepo, sessionRepo, notificationRepo, sink, eventBus),
		UpdateSessionStatus: command.NewUpdateSessionStatusHandler(
			sessionRepo, userRepo, skillRepo, badgeRepo, notificationRepo, sink, eventBus),
		CreateStake:          command.NewCreateStakeHandler(userRepo, chainRepo, stakeRepo, eventBus),
		CheckStake:           command.NewCheckStakeHandler(userRepo, chainRepo, stakeRepo, userSkillRepo, eventBus),
		RecordActivity:       command.NewRecordActivityHandler(userRepo, eventBus),
		MarkNotificationRead: command.NewMarkNotificationReadHandler(notificationRepo),

		FindMatches:      query.NewFindMatchesHandler(userRepo, skillRepo, userSkillRepo),
		GetLeaderboard:   query.NewGetLeaderboardHandler(userRepo, badgeRepo, boardCache),
		ListChains:       query.NewListChainsHandler(chainRepo, skillRepo),
		GetUserSkills:    query.NewGetUserSkillsHandler(skillRepo, userSkillRepo),
		GetNotifications: query.NewGetNotificationsHandler(notificationRepo),
		GetBadges:        query.NewGetBadgesHandler(badgeRepo),
		SuggestChains: query.NewSuggestChainsHandler(
			skillRepo, userSkillRepo, &chainAdvisorAdapter{advisor: chainAdvisor}),
	}
	_ = app

	// ─────────────────────────────────────────────────────────────────────────
	// 11. РЕГИСТРАЦИЯ EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers...")

	var invalidator eventhandler.LeaderboardInvalidator
	if leaderboardCache != nil {
		invalidator = leaderboardCache
	}
	stakeSettledHandler := eventhandler.NewOnStakeSettledHandler(notificationRepo, sink, invalidator, log)
	stakeSettledHandler.Subscribe(eventBus)
	eventBus.SubscribeAll(eventhandler.NewAuditLogger(log))

	// ─────────────────────────────────────────────────────────────────────────
	// 12. HTTP SERVER (health endpoints)
	// ─────────────────────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status, err := dbConn.Health(r.Context())
		if err != nil || !status.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintln(w, "unhealthy")
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := dbConn.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 13. ЗАПУСК СЕРВИСОВ
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)

	go func() {
		log.Info("starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 14. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("SkillChain backend is running", "address", httpServer.Addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		return err
	}

	// Event bus и база данных закроются через defer
	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// appHandlers собирает все use cases приложения в одном месте.
type appHandlers struct {
	RegisterUser         *command.RegisterUserHandler
	DeclareSkill         *command.DeclareSkillHandler
	RequestSession       *command.RequestSessionHandler
	UpdateSessionStatus  *command.UpdateSessionStatusHandler
	CreateStake          *command.CreateStakeHandler
	CheckStake           *command.CheckStakeHandler
	RecordActivity       *command.RecordActivityHandler
	MarkNotificationRead *command.MarkNotificationReadHandler

	FindMatches      *query.FindMatchesHandler
	GetLeaderboard   *query.GetLeaderboardHandler
	ListChains       *query.ListChainsHandler
	GetUserSkills    *query.GetUserSkillsHandler
	GetNotifications *query.GetNotificationsHandler
	GetBadges        *query.GetBadgesHandler
	SuggestChains    *query.SuggestChainsHandler
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseSlogLevel(cfg.Observability.LogLevel),
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

func parseSlogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// connectRedis подключается по URL, если он задан, иначе по отдельным полям.
func connectRedis(cfg *config.Config) (*redis.Cache, error) {
	if cfg.Redis.URL != "" {
		return redis.NewCacheFromURL(cfg.Redis.URL)
	}

	redisCfg := redis.DefaultConfig()
	redisCfg.Host = cfg.Redis.Host
	redisCfg.Port = cfg.Redis.Port
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	if cfg.Redis.PoolSize > 0 {
		redisCfg.PoolSize = cfg.Redis.PoolSize
	}
	if cfg.Redis.MinIdleConns > 0 {
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
	}
	if cfg.Redis.DialTimeout > 0 {
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
	}
	if cfg.Redis.ReadTimeout > 0 {
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
	}
	if cfg.Redis.WriteTimeout > 0 {
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout
	}
	return redis.NewCache(redisCfg)
}

// ══════════════════════════════════════════════════════════════════════════════
// ADAPTERS
// ══════════════════════════════════════════════════════════════════════════════

// leaderboardCacheAdapter подгоняет redis.LeaderboardCache под порт query-слоя.
type leaderboardCacheAdapter struct {
	cache *redis.LeaderboardCache
}

func (a *leaderboardCacheAdapter) GetTop(ctx context.Context) ([]query.LeaderboardEntryDTO, error) {
	entries, err := a.cache.GetTop(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]query.LeaderboardEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, query.LeaderboardEntryDTO{
			Rank:        e.Rank,
			UserID:      e.UserID,
			Username:    e.Username,
			FullName:    e.FullName,
			Points:      e.Points,
			StreakCount: e.StreakCount,
			BadgeCount:  e.BadgeCount,
		})
	}
	return dtos, nil
}

func (a *leaderboardCacheAdapter) SetTop(ctx context.Context, entries []query.LeaderboardEntryDTO) error {
	cached := make([]redis.Entry, 0, len(entries))
	for _, e := range entries {
		cached = append(cached, redis.Entry{
			Rank:        e.Rank,
			UserID:      e.UserID,
			Username:    e.Username,
			FullName:    e.FullName,
			Points:      e.Points,
			StreakCount: e.StreakCount,
			BadgeCount:  e.BadgeCount,
		})
	}
	return a.cache.SetTop(ctx, cached)
}

// chainAdvisorAdapter подгоняет advisor.Advisor под порт query-слоя.
type chainAdvisorAdapter struct {
	advisor advisor.Advisor
}

func (a *chainAdvisorAdapter) SuggestChains(ctx context.Context, userID string, interests []string, limit int) ([]query.ChainSuggestionDTO, error) {
	suggestions, err := a.advisor.Suggest(ctx, advisor.SuggestRequest{
		UserID:    userID,
		Interests: interests,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}
	dtos := make([]query.ChainSuggestionDTO, 0, len(suggestions))
	for _, s := range suggestions {
		dtos = append(dtos, query.ChainSuggestionDTO{
			ChainID: s.ChainID,
			Title:   s.Title,
			Reason:  s.Reason,
		})
	}
	return dtos, nil
}

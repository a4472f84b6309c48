// ProAssist — сервис гибридного хранилища записей телефонов:
// метаданные в PostgreSQL (или in-memory), фотографии на диске.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/UmanetAlexandru/pro-assist/internal/api/handlers"
	"github.com/UmanetAlexandru/pro-assist/internal/api/middleware"
	"github.com/UmanetAlexandru/pro-assist/internal/config"
	"github.com/UmanetAlexandru/pro-assist/internal/database"
	"github.com/UmanetAlexandru/pro-assist/internal/repository"
	"github.com/UmanetAlexandru/pro-assist/internal/server"
	"github.com/UmanetAlexandru/pro-assist/internal/service"
	"github.com/UmanetAlexandru/pro-assist/internal/storage/paths"
	"github.com/UmanetAlexandru/pro-assist/internal/storage/photostore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "фатальная ошибка: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	logger := config.SetupLogger(cfg)
	logger.Info("ProAssist запускается",
		slog.String("version", config.Version),
		slog.String("db_backend", cfg.DBBackend),
	)

	ctx := context.Background()

	// Файловое хранилище фотографий
	resolver, err := paths.NewResolver(cfg.BasePath)
	if err != nil {
		return fmt.Errorf("ошибка инициализации хранилища: %w", err)
	}

	// Бэкенд метаданных
	var (
		repo       repository.RecordRepository
		dbChecker  handlers.DependencyChecker
		dephealthS *service.DephealthService
	)

	switch cfg.DBBackend {
	case "postgres":
		pool, err := database.Connect(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := database.Migrate(cfg, logger); err != nil {
			return err
		}

		repo = repository.NewRecordRepository(pool)
		dbChecker = database.NewReadinessChecker(pool)

		// Мониторинг зависимостей через существующий пул;
		// ошибка инициализации не фатальна
		db := stdlib.OpenDBFromPool(pool)
		dephealthS, err = service.NewDephealthService(
			"proassist", cfg.DephealthGroup, db, cfg.DatabaseURL(),
			cfg.DephealthCheckInterval, logger,
		)
		if err != nil {
			logger.Warn("Мониторинг зависимостей не инициализирован",
				slog.String("error", err.Error()),
			)
		} else {
			if err := dephealthS.Start(ctx); err != nil {
				logger.Warn("Мониторинг зависимостей не запущен",
					slog.String("error", err.Error()),
				)
			} else {
				defer dephealthS.Stop()
			}
		}
	case "memory":
		logger.Warn("Бэкенд метаданных memory: данные не переживут перезапуск")
		repo = repository.NewMemoryRepository()
	}

	// Сервисный слой
	cache := service.NewCacheService(cfg.CacheSize, cfg.CacheTTL)
	photos := photostore.New(resolver, logger)
	storage := service.NewStorage(repo, photos, resolver, cache, logger)

	// HTTP-слой
	api := handlers.NewAPIHandler(storage, cfg.MaxUploadSize, logger)
	health := handlers.NewHealthHandler(config.Version, resolver.Root(), dbChecker, logger)
	auth := middleware.NewAPIKeyAuth(cfg.APIKeys, logger)

	return server.New(cfg, api, health, auth, logger).Run()
}

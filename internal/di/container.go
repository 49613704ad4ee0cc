package di

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/GoArmGo/RecipeApp/internal/adapter/storage/local"
	"github.com/GoArmGo/RecipeApp/internal/adapter/storage/minio"
	"github.com/GoArmGo/RecipeApp/internal/app"
	"github.com/GoArmGo/RecipeApp/internal/config"
	"github.com/GoArmGo/RecipeApp/internal/core/ports"
	"github.com/GoArmGo/RecipeApp/internal/database/client"
	"github.com/GoArmGo/RecipeApp/internal/database/postgres"
	"github.com/GoArmGo/RecipeApp/internal/database/storage"
	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/handler"
	"github.com/GoArmGo/RecipeApp/internal/logger"
	"github.com/GoArmGo/RecipeApp/internal/rabbitmq"
	"github.com/GoArmGo/RecipeApp/internal/usecase"
	"github.com/GoArmGo/RecipeApp/internal/validation"
	"github.com/gorilla/securecookie"
)

// LoadConfig загружает конфигурацию и создает основной логгер
func LoadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)
	return cfg, slogger, nil
}

// Migrate применяет миграции схемы
func Migrate() error {
	cfg, slogger, err := LoadConfig()
	if err != nil {
		return err
	}
	return postgres.ApplyMigrations(cfg.DatabaseURL, slogger)
}

// CreateSuperuser создает пользователя с правами staff и superuser
func CreateSuperuser(ctx context.Context, email, password string) (*domain.User, error) {
	cfg, slogger, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := postgres.ApplyMigrations(cfg.DatabaseURL, slogger); err != nil {
		return nil, err
	}

	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}
	defer dbClient.Close()

	users := usecase.NewUserUseCase(storage.NewUserStorage(dbClient.DB, slogger), slogger)
	return users.CreateSuperuser(ctx, email, password)
}

// newFileStorage выбирает хранилище изображений по STORAGE_BACKEND
func newFileStorage(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (ports.FileStorage, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		return minio.NewMinioClient(ctx, cfg, slogger) // S3 / MinIO адаптер
	case config.StorageLocal:
		return local.NewStorage(cfg.MediaRoot, cfg.MediaURL, slogger)
	default:
		return nil, fmt.Errorf("неизвестное хранилище: %s", cfg.StorageBackend)
	}
}

// sessionKey возвращает ключ подписи cookie админки
func sessionKey(cfg *config.Config, slogger *slog.Logger) []byte {
	if cfg.AdminSessionKey != "" {
		return []byte(cfg.AdminSessionKey)
	}
	slogger.Warn("ADMIN_SESSION_KEY is not set, admin sessions will not survive a restart")
	return securecookie.GenerateRandomKey(32)
}

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp(ctx context.Context) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, slogger, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	// 2. Миграции и подключение к PostgreSQL
	if err := postgres.ApplyMigrations(cfg.DatabaseURL, slogger); err != nil {
		return nil, err
	}
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers := []io.Closer{dbClient}
	fail := func(err error) (*app.App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
		return nil, err
	}

	gormDB, err := postgres.OpenGorm(dbClient.DB.DB, slogger)
	if err != nil {
		return fail(err)
	}

	// 3. Инициализация хранилищ
	userStorage := storage.NewUserStorage(dbClient.DB, slogger)
	recipeStorage := storage.NewRecipeStorage(dbClient.DB, slogger)
	attributeStorage := storage.NewAttributeStorage(dbClient.DB, slogger)
	adminStorage := postgres.NewAdminStorage(gormDB, slogger)

	// 4. Хранилище изображений
	fileStorage, err := newFileStorage(ctx, cfg, slogger)
	if err != nil {
		return fail(err)
	}

	// 5. Публикация событий: RabbitMQ или заглушка
	var publisher ports.RecipeEventPublisher = rabbitmq.NoopPublisher{}
	if cfg.RabbitMQ.RabbitMQURL != "" {
		rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			return fail(err)
		}
		publisher = rabbitMQClient
		closers = append(closers, rabbitMQClient)
	} else {
		slogger.Info("RABBITMQ_URL is empty, recipe events are disabled")
	}

	// 6. Инициализация бизнес-логики (usecases)
	validator := validation.New()
	userUseCase := usecase.NewUserUseCase(userStorage, slogger)
	recipeUseCase := usecase.NewRecipeUseCase(recipeStorage, fileStorage, publisher, validator, slogger)
	attributeUseCase := usecase.NewAttributeUseCase(attributeStorage, validator, slogger)
	adminUseCase := usecase.NewAdminUseCase(adminStorage, fileStorage, validator, slogger)

	// 7. HTTP
	routerCfg := handler.RouterConfig{
		Users:              userUseCase,
		Recipes:            recipeUseCase,
		Attributes:         attributeUseCase,
		Admin:              adminUseCase,
		Validator:          validator,
		Sessions:           handler.NewSessionStore(sessionKey(cfg, slogger), cfg.AdminCookieSecure),
		DB:                 dbClient,
		Logger:             slogger,
		RequestTimeout:     cfg.RequestTimeout,
		MaxUploadBytes:     cfg.MaxUploadBytes,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.StorageBackend == config.StorageLocal {
		routerCfg.MediaRoot = cfg.MediaRoot
		routerCfg.MediaURL = cfg.MediaURL
	}

	// 8. Сборка итогового приложения
	application := app.NewApp(cfg, slogger, handler.NewRouter(routerCfg), closers...)

	slogger.Info("all dependencies initialized")
	return application, nil
}

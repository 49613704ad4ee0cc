package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL,required,notEmpty"`
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Хранилище изображений: local или s3
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"local"`
	MediaRoot      string `env:"MEDIA_ROOT" envDefault:"./media"`
	MediaURL       string `env:"MEDIA_URL" envDefault:"/media/"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	// Настройки для MinIO
	MinioEndpoint        string `env:"MINIO_ENDPOINT"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME"`
	MinioRegion          string `env:"MINIO_REGION" envDefault:"us-east-1"`
	MinioPublicURL       string `env:"MINIO_PUBLIC_URL"`

	// Пустой RABBITMQ_URL отключает публикацию событий
	RabbitMQ struct {
		RabbitMQURL      string `env:"RABBITMQ_URL"`
		RabbitMQExchange string `env:"RABBITMQ_EXCHANGE" envDefault:"recipe_events"`
	}

	AdminSessionKey    string   `env:"ADMIN_SESSION_KEY"`
	AdminCookieSecure  bool     `env:"ADMIN_COOKIE_SECURE"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}
	return Parse()
}

// Parse читает конфигурацию только из окружения и проверяет ее
func Parse() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет согласованность настроек хранилища
func (c *Config) Validate() error {
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	switch c.StorageBackend {
	case StorageLocal:
	case StorageS3:
		var missing []string
		if c.MinioEndpoint == "" {
			missing = append(missing, "MINIO_ENDPOINT")
		}
		if c.MinioAccessKeyID == "" {
			missing = append(missing, "MINIO_ACCESS_KEY_ID")
		}
		if c.MinioSecretAccessKey == "" {
			missing = append(missing, "MINIO_SECRET_ACCESS_KEY")
		}
		if c.MinioBucketName == "" {
			missing = append(missing, "MINIO_BUCKET_NAME")
		}
		if len(missing) > 0 {
			return fmt.Errorf("для STORAGE_BACKEND=s3 не заданы: %s", strings.Join(missing, ", "))
		}
	default:
		return fmt.Errorf("неизвестный STORAGE_BACKEND %q (используйте local или s3)", c.StorageBackend)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES должен быть положительным")
	}
	if !strings.HasSuffix(c.MediaURL, "/") {
		c.MediaURL += "/"
	}
	return nil
}

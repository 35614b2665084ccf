package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Sink перечисляет варианты доставки принятых отзывов.
const (
	SinkDiscard  = "discard"
	SinkRedis    = "redis"
	SinkRabbitMQ = "rabbitmq"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	Feedback struct {
		SubmitDelay time.Duration `envconfig:"SUBMIT_DELAY" default:"1s"`
		Sink        string        `envconfig:"SINK" default:"discard"`
		QueueKey    string        `envconfig:"FEEDBACK_QUEUE_KEY" default:"feedback_jobs"`
	} `envconfig:""`

	Session struct {
		TTL   time.Duration `envconfig:"SESSION_TTL" default:"30m"`
		Sweep time.Duration `envconfig:"SESSION_SWEEP" default:"1m"`
	} `envconfig:""`

	PGDSN     string `envconfig:"PG_DSN"`
	RedisAddr string `envconfig:"REDIS_ADDR"`
	AMQPURL   string `envconfig:"AMQP_URL"`

	OpenAI struct {
		APIKey  string        `envconfig:"OPENAI_API_KEY"`
		BaseURL string        `envconfig:"OPENAI_BASE_URL"`
		Model   string        `envconfig:"OPENAI_MODEL" default:"gpt-4.1-mini"`
		Timeout time.Duration `envconfig:"OPENAI_TIMEOUT" default:"20s"`
		Retries int           `envconfig:"OPENAI_RETRIES" default:"1"`
	} `envconfig:""`

	Archive struct {
		DedupTTL time.Duration `envconfig:"ARCHIVE_DEDUP_TTL" default:"24h"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Parse читает конфиг из окружения и возвращает ошибку вместо завершения процесса.
func Parse() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

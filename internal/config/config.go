package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Queue drivers.
const (
	QueueDriverSQS    = "sqs"
	QueueDriverMemory = "memory"
)

// Notification transports.
const (
	NotifierSES     = "ses"
	NotifierMailgun = "mailgun"
	NotifierLog     = "log"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is always required.
type Config struct {
	// Server
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`

	// Database
	DatabaseURL    string `env:"DATABASE_URL,notEmpty"`
	DBMaxConns     int32  `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns     int32  `env:"DB_MIN_CONNS" envDefault:"5"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"migrations"`

	AWS      AWSConfig
	Queue    QueueConfig
	Consumer ConsumerConfig
	Notify   NotifyConfig
}

// AWSConfig is shared by the SQS and SES clients. Static keys are optional;
// without them the SDK's default credential chain applies.
type AWSConfig struct {
	Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	// Endpoint overrides the service endpoint, e.g. a LocalStack URL.
	Endpoint string `env:"AWS_ENDPOINT_URL"`
}

type QueueConfig struct {
	Driver            string        `env:"QUEUE_DRIVER" envDefault:"sqs"`
	URL               string        `env:"QUEUE_URL"`
	VisibilityTimeout time.Duration `env:"QUEUE_VISIBILITY_TIMEOUT" envDefault:"30s"`
	// MemoryCapacity bounds the in-process queue.
	MemoryCapacity int `env:"QUEUE_MEMORY_CAPACITY" envDefault:"10000"`
}

type ConsumerConfig struct {
	Enabled        bool          `env:"CONSUMER_ENABLED" envDefault:"true"`
	PollInterval   time.Duration `env:"CONSUMER_POLL_INTERVAL" envDefault:"5s"`
	BatchSize      int           `env:"CONSUMER_BATCH_SIZE" envDefault:"10"`
	WaitTime       time.Duration `env:"CONSUMER_WAIT_TIME" envDefault:"20s"`
	MaxConcurrency int           `env:"CONSUMER_MAX_CONCURRENCY" envDefault:"10"`
	DepthInterval  time.Duration `env:"QUEUE_DEPTH_INTERVAL" envDefault:"15s"`
}

type NotifyConfig struct {
	Provider       string        `env:"NOTIFY_PROVIDER" envDefault:"ses"`
	FromEmail      string        `env:"NOTIFY_FROM_EMAIL"`
	FromName       string        `env:"NOTIFY_FROM_NAME" envDefault:"Cat API"`
	RateLimit      int           `env:"NOTIFY_RATE_LIMIT" envDefault:"14"`
	Timeout        time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
	MailgunDomain  string        `env:"MAILGUN_DOMAIN"`
	MailgunAPIKey  string        `env:"MAILGUN_API_KEY"`
	MailgunAPIBase string        `env:"MAILGUN_API_BASE"`
}

// From formats the sender as "Name <address>".
func (n NotifyConfig) From() string {
	if n.FromName == "" {
		return n.FromEmail
	}
	return fmt.Sprintf("%s <%s>", n.FromName, n.FromEmail)
}

// Load reads the environment, after merging an optional .env file from the
// working directory, and validates cross-field rules.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse(env.Options{})
}

// Parse builds a Config from opts (tests pass Environment directly).
func Parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Queue.Driver = strings.ToLower(cfg.Queue.Driver)
	cfg.Notify.Provider = strings.ToLower(cfg.Notify.Provider)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the rules that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.Queue.Driver {
	case QueueDriverSQS:
		if c.Queue.URL == "" {
			errs = append(errs, errors.New("QUEUE_URL is required when QUEUE_DRIVER=sqs"))
		}
	case QueueDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("QUEUE_DRIVER %q is not one of sqs, memory", c.Queue.Driver))
	}

	switch c.Notify.Provider {
	case NotifierSES:
		if c.Notify.FromEmail == "" {
			errs = append(errs, errors.New("NOTIFY_FROM_EMAIL is required when NOTIFY_PROVIDER=ses"))
		}
	case NotifierMailgun:
		if c.Notify.FromEmail == "" {
			errs = append(errs, errors.New("NOTIFY_FROM_EMAIL is required when NOTIFY_PROVIDER=mailgun"))
		}
		if c.Notify.MailgunDomain == "" || c.Notify.MailgunAPIKey == "" {
			errs = append(errs, errors.New("MAILGUN_DOMAIN and MAILGUN_API_KEY are required when NOTIFY_PROVIDER=mailgun"))
		}
	case NotifierLog:
	default:
		errs = append(errs, fmt.Errorf("NOTIFY_PROVIDER %q is not one of ses, mailgun, log", c.Notify.Provider))
	}

	if (c.AWS.AccessKeyID == "") != (c.AWS.SecretAccessKey == "") {
		errs = append(errs, errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together"))
	}

	if c.Consumer.BatchSize < 1 || c.Consumer.BatchSize > 10 {
		errs = append(errs, fmt.Errorf("CONSUMER_BATCH_SIZE must be between 1 and 10, got %d", c.Consumer.BatchSize))
	}
	if c.Consumer.WaitTime < 0 || c.Consumer.WaitTime > 20*time.Second {
		errs = append(errs, fmt.Errorf("CONSUMER_WAIT_TIME must be between 0s and 20s, got %s", c.Consumer.WaitTime))
	}
	if c.Consumer.PollInterval <= 0 {
		errs = append(errs, errors.New("CONSUMER_POLL_INTERVAL must be positive"))
	}
	if c.Consumer.DepthInterval <= 0 {
		errs = append(errs, errors.New("QUEUE_DEPTH_INTERVAL must be positive"))
	}
	if c.Consumer.MaxConcurrency < 1 {
		errs = append(errs, errors.New("CONSUMER_MAX_CONCURRENCY must be at least 1"))
	}

	return errors.Join(errs...)
}

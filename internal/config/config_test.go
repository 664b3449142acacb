package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ricirt/breed-query-worker/internal/config"
)

func parse(vars map[string]string) (*config.Config, error) {
	return config.Parse(env.Options{Environment: vars})
}

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL":      "postgres://u:p@localhost:5432/cats",
		"QUEUE_URL":         "https://sqs.us-east-1.amazonaws.com/123/breed-queries",
		"NOTIFY_FROM_EMAIL": "noreply@example.com",
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse(baseEnv())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
	if cfg.Queue.Driver != config.QueueDriverSQS {
		t.Errorf("Queue.Driver = %q, want sqs", cfg.Queue.Driver)
	}
	c := cfg.Consumer
	if c.PollInterval != 5*time.Second || c.BatchSize != 10 || c.WaitTime != 20*time.Second {
		t.Errorf("consumer defaults = %+v", c)
	}
	if !c.Enabled {
		t.Error("consumer should be enabled by default")
	}
	if cfg.Notify.Provider != config.NotifierSES {
		t.Errorf("Notify.Provider = %q, want ses", cfg.Notify.Provider)
	}
	if got := cfg.Notify.From(); got != "Cat API <noreply@example.com>" {
		t.Errorf("From() = %q", got)
	}
}

func TestParse_MissingDatabaseURL(t *testing.T) {
	vars := baseEnv()
	delete(vars, "DATABASE_URL")
	if _, err := parse(vars); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestParse_Overrides(t *testing.T) {
	vars := baseEnv()
	vars["QUEUE_DRIVER"] = "MEMORY"
	vars["CONSUMER_POLL_INTERVAL"] = "250ms"
	vars["CONSUMER_MAX_CONCURRENCY"] = "3"
	vars["NOTIFY_PROVIDER"] = "log"

	cfg, err := parse(vars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Queue.Driver != config.QueueDriverMemory {
		t.Errorf("driver should be lower-cased, got %q", cfg.Queue.Driver)
	}
	if cfg.Consumer.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %s", cfg.Consumer.PollInterval)
	}
	if cfg.Consumer.MaxConcurrency != 3 {
		t.Errorf("MaxConcurrency = %d", cfg.Consumer.MaxConcurrency)
	}
}

func TestParse_CrossFieldRules(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]string
		unset   []string
		wantErr string
	}{
		{"sqs without url", nil, []string{"QUEUE_URL"}, "QUEUE_URL is required"},
		{"unknown driver", map[string]string{"QUEUE_DRIVER": "kafka"}, nil, "QUEUE_DRIVER"},
		{"ses without from", nil, []string{"NOTIFY_FROM_EMAIL"}, "NOTIFY_FROM_EMAIL"},
		{"mailgun without key", map[string]string{"NOTIFY_PROVIDER": "mailgun", "MAILGUN_DOMAIN": "mg.example.com"}, nil, "MAILGUN_API_KEY"},
		{"unknown provider", map[string]string{"NOTIFY_PROVIDER": "pigeon"}, nil, "NOTIFY_PROVIDER"},
		{"half static credentials", map[string]string{"AWS_ACCESS_KEY_ID": "AKIA"}, nil, "must be set together"},
		{"batch too large", map[string]string{"CONSUMER_BATCH_SIZE": "11"}, nil, "CONSUMER_BATCH_SIZE"},
		{"wait too long", map[string]string{"CONSUMER_WAIT_TIME": "21s"}, nil, "CONSUMER_WAIT_TIME"},
		{"zero poll interval", map[string]string{"CONSUMER_POLL_INTERVAL": "0s"}, nil, "CONSUMER_POLL_INTERVAL"},
		{"zero depth interval", map[string]string{"QUEUE_DEPTH_INTERVAL": "0s"}, nil, "QUEUE_DEPTH_INTERVAL"},
		{"negative depth interval", map[string]string{"QUEUE_DEPTH_INTERVAL": "-1s"}, nil, "QUEUE_DEPTH_INTERVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := baseEnv()
			for k, v := range tt.set {
				vars[k] = v
			}
			for _, k := range tt.unset {
				delete(vars, k)
			}

			_, err := parse(vars)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_MemoryDriverNeedsNoURL(t *testing.T) {
	vars := baseEnv()
	delete(vars, "QUEUE_URL")
	vars["QUEUE_DRIVER"] = "memory"
	if _, err := parse(vars); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if cfg.Feedback.SubmitDelay != time.Second {
		t.Fatalf("ожидали задержку отправки 1s, получили %v", cfg.Feedback.SubmitDelay)
	}
	if cfg.Feedback.Sink != SinkDiscard {
		t.Fatalf("ожидали sink по умолчанию discard, получили %q", cfg.Feedback.Sink)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Fatalf("неожиданный TTL сессии: %v", cfg.Session.TTL)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("SUBMIT_DELAY", "250ms")
	t.Setenv("SINK", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if cfg.Feedback.SubmitDelay != 250*time.Millisecond {
		t.Fatalf("ожидали 250ms, получили %v", cfg.Feedback.SubmitDelay)
	}
	if cfg.Feedback.Sink != SinkRedis || cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("переменные окружения не применились: %+v", cfg)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
presence:
  heartbeat_timeout: 30s
limits:
  swipes_per_minute: 40
auth:
  jwt_access_ttl: 24h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Presence.HeartbeatTimeout != 30*time.Second {
		t.Fatalf("unexpected heartbeat timeout: %s", cfg.Presence.HeartbeatTimeout)
	}
	if cfg.Limits.SwipesPerMinute != 40 {
		t.Fatalf("unexpected swipes/min: %d", cfg.Limits.SwipesPerMinute)
	}
	if cfg.Auth.JWTAccessTTL != 24*time.Hour {
		t.Fatalf("unexpected jwt access ttl: %s", cfg.Auth.JWTAccessTTL)
	}

	if cfg.Limits.SwipesPer10Sec != 15 {
		t.Fatalf("swipes_per_10sec default should stay 15, got %d", cfg.Limits.SwipesPer10Sec)
	}
	if cfg.Realtime.SendBuffer != 32 {
		t.Fatalf("realtime send_buffer default should stay 32, got %d", cfg.Realtime.SendBuffer)
	}
	if cfg.Postgres.DSN == "" {
		t.Fatalf("postgres dsn default should not be empty")
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("PRESENCE_HEARTBEAT_TIMEOUT", "90s")
	t.Setenv("SWIPES_PER_10SEC", "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":7070" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Redis.Addr != "redis:6380" {
		t.Fatalf("unexpected redis addr: %s", cfg.Redis.Addr)
	}
	if cfg.Auth.JWTSecret != "super-secret" {
		t.Fatalf("unexpected jwt secret: %s", cfg.Auth.JWTSecret)
	}
	if cfg.Presence.HeartbeatTimeout != 90*time.Second {
		t.Fatalf("unexpected heartbeat timeout: %s", cfg.Presence.HeartbeatTimeout)
	}
	if cfg.Limits.SwipesPer10Sec != 5 {
		t.Fatalf("unexpected swipes_per_10sec: %d", cfg.Limits.SwipesPer10Sec)
	}
}

func TestLoadRejectsMalformedEnvDuration(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PRESENCE_HEARTBEAT_TIMEOUT", "not-a-duration")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for malformed duration override")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"JWT_SECRET", "JWT_ACCESS_TTL",
		"PRESENCE_HEARTBEAT_TIMEOUT",
		"SWIPES_PER_MINUTE", "SWIPES_PER_10SEC",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

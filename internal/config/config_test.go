package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finplan/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, time.Hour, cfg.Worker.Interval)
	assert.Equal(t, "budget-alerts", cfg.AMQP.Queue)
	assert.Empty(t, cfg.AMQP.URL)
	assert.Equal(t, "postgres://postgres:@localhost:5432/finplan?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("WORKER_INTERVAL", "15m")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.Worker.Interval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "postgres://postgres:secret@db:5432/finplan?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "interval too short", env: map[string]string{"WORKER_INTERVAL": "5s"}},
		{name: "port out of range", env: map[string]string{"PORT": "70000"}},
		{name: "queue missing", env: map[string]string{"AMQP_URL": "amqp://localhost", "AMQP_QUEUE": ""}},
		{name: "not a duration", env: map[string]string{"WORKER_INTERVAL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestConfig_Level(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for in, want := range tests {
		var cfg config.Config
		cfg.App.LogLevel = in

		assert.Equal(t, want, cfg.Level(), in)
	}
}

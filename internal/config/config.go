package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Docker  DockerConfig
	Metrics MetricsConfig
	Log     LogConfig
}

type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DockerConfig struct {
	// NetworkName is the network preferred when resolving workload addresses
	// and conveyed to launched workloads.
	NetworkName string
	// LogLevel overrides the verbosity of backend API diagnostics, which are
	// too noisy at the process-wide level.
	LogLevel slog.Level
}

type MetricsConfig struct {
	Addr string
}

type LogConfig struct {
	Level slog.Level
}

// Load reads configuration from environment variables with sensible defaults.
// It is read once at process start, never per call.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         getEnv("SERVER_ADDR", ":8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
		},
		Docker: DockerConfig{
			NetworkName: getEnv("DOCKER_NETWORK", "bridge"),
			LogLevel:    getLevelEnv("DOCKER_LOG_LEVEL", slog.LevelWarn),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ":9090"),
		},
		Log: LogConfig{
			Level: getLevelEnv("LOG_LEVEL", slog.LevelInfo),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getLevelEnv(key string, defaultVal slog.Level) slog.Level {
	switch strings.ToLower(os.Getenv(key)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return defaultVal
	}
}

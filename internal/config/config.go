package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	WebSocket WebSocketConfig
	Database  DatabaseConfig
	Admin     AdminConfig
	JWT       JWTConfig
	LogLevel  string
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type WebSocketConfig struct {
	MaxMessageSize int64
	SendBuffer     int
	PingInterval   time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
}

// DatabaseConfig points at the presence journal. An empty URL disables it.
type DatabaseConfig struct {
	URL            string
	PresenceBuffer int
}

// AdminConfig guards the operator API. An empty PasswordHash disables it.
type AdminConfig struct {
	Username     string
	PasswordHash string
}

type JWTConfig struct {
	Secret    []byte
	ExpiresIn time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env file: %v", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            normalizePort(getEnvOrDefault("PORT", ":3000")),
			ReadTimeout:     getDurationOrDefault("READ_TIMEOUT", "15s"),
			WriteTimeout:    getDurationOrDefault("WRITE_TIMEOUT", "15s"),
			ShutdownTimeout: getDurationOrDefault("SHUTDOWN_TIMEOUT", "10s"),
			AllowedOrigins:  getListOrDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: int64(getIntOrDefault("WS_MAX_MESSAGE_SIZE", 8192)),
			SendBuffer:     getIntOrDefault("WS_SEND_BUFFER", 256),
			PingInterval:   getDurationOrDefault("WS_PING_INTERVAL", "54s"),
			PongWait:       getDurationOrDefault("WS_PONG_WAIT", "60s"),
			WriteWait:      getDurationOrDefault("WS_WRITE_WAIT", "10s"),
		},
		Database: DatabaseConfig{
			URL:            os.Getenv("DATABASE_URL"),
			PresenceBuffer: getIntOrDefault("PRESENCE_BUFFER", 1024),
		},
		Admin: AdminConfig{
			Username:     getEnvOrDefault("ADMIN_USERNAME", "admin"),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		},
		JWT: JWTConfig{
			Secret:    []byte(os.Getenv("JWT_SECRET")),
			ExpiresIn: getDurationOrDefault("JWT_EXPIRES_IN", "1h"),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if cfg.Admin.PasswordHash != "" && len(cfg.JWT.Secret) == 0 {
		log.Fatalf("JWT_SECRET environment variable is required when ADMIN_PASSWORD_HASH is set")
	}
	if cfg.WebSocket.PingInterval >= cfg.WebSocket.PongWait {
		log.Fatalf("WS_PING_INTERVAL (%s) must be shorter than WS_PONG_WAIT (%s)", cfg.WebSocket.PingInterval, cfg.WebSocket.PongWait)
	}

	return cfg
}

// AdminEnabled reports whether the operator API should be mounted.
func (c *Config) AdminEnabled() bool {
	return c.Admin.PasswordHash != "" && len(c.JWT.Secret) > 0
}

// normalizePort accepts both "3000" (the PORT convention of most hosts) and ":3000".
func normalizePort(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key, defaultValue string) time.Duration {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Invalid duration for %s: %v", key, err)
	}
	return duration
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil || intValue <= 0 {
		log.Fatalf("Invalid integer for %s: %q", key, value)
	}
	return intValue
}

func getListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

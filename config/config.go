package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API     APIConfig
	Tenant  TenantConfig
	Storage StorageConfig
	Log     LogConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type TenantConfig struct {
	// Header carrying the tenant identifier on every scoped request.
	Header string
	// QueryParam consulted when the host carries no subdomain.
	QueryParam string
}

type StorageConfig struct {
	// Backend selects the durable key-value store: memory, file or redis.
	Backend string
	// FilePath is the JSON document location for the file backend.
	FilePath string
	Redis    RedisConfig
}

type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	KeyPrefix string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		API: APIConfig{
			BaseURL: getEnv("SELLORA_API_URL", "http://localhost:8080/api/v1"),
			Timeout: parseDuration(getEnv("SELLORA_API_TIMEOUT", "30s")),
		},
		Tenant: TenantConfig{
			Header:     getEnv("SELLORA_TENANT_HEADER", "X-Store-ID"),
			QueryParam: getEnv("SELLORA_TENANT_PARAM", "store"),
		},
		Storage: StorageConfig{
			Backend:  getEnv("SELLORA_STORAGE", "file"),
			FilePath: getEnv("SELLORA_STORAGE_FILE", ".sellora/state.json"),
			Redis: RedisConfig{
				Host:      getEnv("REDIS_HOST", "localhost"),
				Port:      getEnv("REDIS_PORT", "6379"),
				Password:  getEnv("REDIS_PASSWORD", ""),
				DB:        parseInt(getEnv("REDIS_DB", "0")),
				KeyPrefix: getEnv("REDIS_KEY_PREFIX", "sellora:client:"),
			},
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default 30s", s)
		return 30 * time.Second
	}
	return duration
}

func parseInt(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			log.Printf("Invalid integer %s, using 0", s)
			return 0
		}
		n = n*10 + int(s[i]-'0')
	}
	return n
}

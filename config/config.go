package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	Timeout   time.Duration
	Retries   int
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	TTL      time.Duration
}

type Config struct {
	Port   string
	AppEnv string

	DBDriver string

	Cloudinary CloudinaryConfig
	Redis      RedisConfig

	JWTSecret    string
	JWTExpiresIn time.Duration

	CORSOrigins []string

	AdminEmail    string
	AdminPassword string
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set when APP_ENV=production")

const devJWTSecret = "dev-secret-change-me"

// Load reads the process environment. Call godotenv.Load before it when a .env file is used.
// Outside production a missing JWT_SECRET falls back to a development secret.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     envOrDefault("PORT", "8080"),
		AppEnv:   envOrDefault("APP_ENV", "development"),
		DBDriver: strings.ToLower(envOrDefault("DB_DRIVER", "mysql")),
		Cloudinary: CloudinaryConfig{
			CloudName: strings.TrimSpace(os.Getenv("CLOUDINARY_CLOUD_NAME")),
			APIKey:    strings.TrimSpace(os.Getenv("CLOUDINARY_API_KEY")),
			APISecret: strings.TrimSpace(os.Getenv("CLOUDINARY_API_SECRET")),
			Folder:    envOrDefault("CLOUDINARY_FOLDER", "grand-hotel/rooms"),
			Timeout:   envDurationOrDefault("MEDIA_TIMEOUT", 10*time.Second),
			Retries:   envIntOrDefault("MEDIA_RETRIES", 1),
		},
		Redis: RedisConfig{
			URL:      strings.TrimSpace(os.Getenv("REDIS_URL")),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envIntOrDefault("REDIS_DB", 0),
			TTL:      envDurationOrDefault("ROOM_CACHE_TTL", 5*time.Minute),
		},
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTExpiresIn:  envDurationOrDefault("JWT_EXPIRES_IN", 24*time.Hour),
		CORSOrigins:   parseCorsOrigins(os.Getenv("CORS_ORIGINS")),
		AdminEmail:    envOrDefault("ADMIN_EMAIL", "admin@grandhotel.local"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, ErrMissingJWTSecret
		}
		log.Println("⚠️  JWT_SECRET not set; using an insecure development secret")
		cfg.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func envIntOrDefault(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️  invalid %s=%q, using %d", key, value, def)
		return def
	}
	return n
}

// envDurationOrDefault accepts Go durations ("15s") or a bare number of seconds.
func envDurationOrDefault(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Printf("⚠️  invalid %s=%q, using %s", key, value, def)
	return def
}

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

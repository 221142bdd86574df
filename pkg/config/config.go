package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StatsBackendMemory   = "memory"
	StatsBackendPostgres = "postgres"
	StatsBackendRedis    = "redis"
	StatsBackendSQLite   = "sqlite"
)

type Config struct {
	App            AppConfig
	Server         ServerConfig
	Database       DatabaseConfig
	JWT            JWTConfig
	Redis          RedisConfig
	SQLite         SQLiteConfig
	Places         PlacesConfig
	Recommendation RecommendationConfig
	Stats          StatsConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

type SQLiteConfig struct {
	Path string
}

type PlacesConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// requests per second allowed against the places API
	RateLimit float64
	Burst     int

	BreakerFailures    uint32
	BreakerOpenTimeout time.Duration
}

type RecommendationConfig struct {
	// candidates are refetched once the user moves further than this
	RefreshDistanceMeters float64
	SearchRadiusMeters    int
	PlaceTypes            []string
	// 0 seeds each session from the process random source
	Seed uint64
	// drop permanently closed places before they reach the cache
	SkipClosed bool

	SessionIdleTTL time.Duration
	MaxSessions    int
}

type StatsConfig struct {
	Backend string
	// also append every decision to decision_events (postgres, sqlite)
	EventLog bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "myFoodFinder"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:8080"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "food_finder"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			KeyPrefix:     getEnv("REDIS_KEY_PREFIX", "decision_stats"),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "food_finder.db"),
		},
		Places: PlacesConfig{
			APIKey:  getEnv("PLACES_API_KEY", ""),
			BaseURL: getEnv("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		},
		Recommendation: RecommendationConfig{
			PlaceTypes: getEnvList("PLACE_TYPES", []string{"restaurant"}),
		},
		Stats: StatsConfig{
			Backend: strings.ToLower(getEnv("STATS_BACKEND", StatsBackendMemory)),
		},
	}

	var err error
	if cfg.Redis.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Places.Timeout, err = getEnvDuration("PLACES_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Places.RateLimit, err = getEnvFloat("PLACES_RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.Places.Burst, err = getEnvInt("PLACES_BURST", 5); err != nil {
		return nil, err
	}
	failures, err := getEnvInt("PLACES_BREAKER_FAILURES", 5)
	if err != nil {
		return nil, err
	}
	if failures < 1 {
		return nil, errors.New("PLACES_BREAKER_FAILURES must be at least 1")
	}
	cfg.Places.BreakerFailures = uint32(failures)
	if cfg.Places.BreakerOpenTimeout, err = getEnvDuration("PLACES_BREAKER_OPEN_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Recommendation.RefreshDistanceMeters, err = getEnvFloat("REFRESH_DISTANCE_METERS", 1000); err != nil {
		return nil, err
	}
	if cfg.Recommendation.SearchRadiusMeters, err = getEnvInt("SEARCH_RADIUS_METERS", 1500); err != nil {
		return nil, err
	}
	seed, err := getEnvInt("BANDIT_SEED", 0)
	if err != nil {
		return nil, err
	}
	cfg.Recommendation.Seed = uint64(seed)
	if cfg.Recommendation.SkipClosed, err = getEnvBool("SKIP_CLOSED_PLACES", true); err != nil {
		return nil, err
	}
	if cfg.Stats.EventLog, err = getEnvBool("DECISION_EVENT_LOG", true); err != nil {
		return nil, err
	}
	if cfg.Recommendation.SessionIdleTTL, err = getEnvDuration("SESSION_IDLE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Recommendation.MaxSessions, err = getEnvInt("MAX_SESSIONS", 10000); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required values and ranges.
func (c *Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return errors.New("missing jwt secret")
	}

	if c.Places.APIKey == "" {
		return errors.New("missing places api key")
	}

	switch c.Stats.Backend {
	case StatsBackendMemory, StatsBackendRedis, StatsBackendSQLite:
	case StatsBackendPostgres:
		if c.Database.Password == "" {
			return errors.New("missing database password")
		}
	default:
		return fmt.Errorf("unknown stats backend: %s", c.Stats.Backend)
	}

	if c.Recommendation.RefreshDistanceMeters <= 0 {
		return errors.New("refresh distance must be positive")
	}
	if c.Recommendation.SearchRadiusMeters <= 0 || c.Recommendation.SearchRadiusMeters > 50000 {
		return errors.New("search radius must be in (0, 50000] meters")
	}
	if len(c.Recommendation.PlaceTypes) == 0 {
		return errors.New("at least one place type is required")
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}

	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvInt(key string, defaultVal int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

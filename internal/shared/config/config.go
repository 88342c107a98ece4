package config

import (
	"fmt"
	"time"
	"wizardgo/internal/shared/utils"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// MaxItemExpirationHours caps item lifetimes at ten years.
const MaxItemExpirationHours = 10 * 365 * 24

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Frontend  FrontendConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Game      GameConfig
}

type ServerConfig struct {
	Port            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsPath  string
}

type StorageConfig struct {
	Driver string
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret       string
	TokenExpiration time.Duration
	CookieSecure    bool
	CookieSameSite  string
}

type FrontendConfig struct {
	URL       string
	CORSDebug bool
}

type LoggingConfig struct {
	Level      string
	JSONFormat bool
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	TrustProxy        bool
}

// GameConfig holds the tunables of the item lifecycle and profile defaults.
type GameConfig struct {
	MaxCollectionDistanceMeters float64
	ItemExpirationHours         int
	DefaultMapRadiusMeters      float64
	MaxMapRadiusMeters          float64
	CleanupInterval             time.Duration
	ChestMinGems                int
	ChestMaxGems                int
	StartingGems                int
}

var GlobalConfig *Config

func Init() error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	config, err := Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	GlobalConfig = config
	return nil
}

// Load reads the configuration from the environment without validating it.
func Load() (*Config, error) {
	config := &Config{
		Server:    loadServerConfig(),
		Database:  loadDatabaseConfig(),
		Storage:   loadStorageConfig(),
		Redis:     loadRedisConfig(),
		Auth:      loadAuthConfig(),
		Frontend:  loadFrontendConfig(),
		Logging:   loadLoggingConfig(),
		RateLimit: loadRateLimitConfig(),
		Game:      loadGameConfig(),
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            utils.GetEnv("SERVER_PORT", "8080"),
		Environment:     utils.GetEnv("ENVIRONMENT", "development"),
		ReadTimeout:     time.Duration(utils.GetEnvInt("SERVER_READ_TIMEOUT_SECONDS", 15)) * time.Second,
		WriteTimeout:    time.Duration(utils.GetEnvInt("SERVER_WRITE_TIMEOUT_SECONDS", 15)) * time.Second,
		IdleTimeout:     time.Duration(utils.GetEnvInt("SERVER_IDLE_TIMEOUT_SECONDS", 60)) * time.Second,
		ShutdownTimeout: time.Duration(utils.GetEnvInt("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:            utils.GetEnv("DB_HOST", "localhost"),
		Port:            utils.GetEnv("DB_PORT", "5432"),
		User:            utils.GetEnv("DB_USER", "postgres"),
		Password:        utils.GetEnv("DB_PASSWORD", "postgres"),
		Name:            utils.GetEnv("DB_NAME", "wizardgo"),
		SSLMode:         utils.GetEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    utils.GetEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    utils.GetEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Duration(utils.GetEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		MigrationsPath:  utils.GetEnv("DB_MIGRATIONS_PATH", ""),
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Driver: utils.GetEnv("STORAGE_DRIVER", StorageDriverPostgres),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  utils.GetEnv("REDIS_ENABLED", "false") == "true",
		URL:      utils.GetEnv("REDIS_URL", ""),
		Host:     utils.GetEnv("REDIS_HOST", "localhost"),
		Port:     utils.GetEnv("REDIS_PORT", "6379"),
		Password: utils.GetEnv("REDIS_PASSWORD", ""),
		DB:       utils.GetEnvInt("REDIS_DB", 0),
	}
}

func loadAuthConfig() AuthConfig {
	environment := utils.GetEnv("ENVIRONMENT", "development")

	return AuthConfig{
		JWTSecret:       utils.GetEnv("JWT_SECRET", ""),
		TokenExpiration: time.Duration(utils.GetEnvInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		CookieSecure:    environment == "production",
		CookieSameSite:  utils.GetEnv("COOKIE_SAME_SITE", "lax"),
	}
}

func loadFrontendConfig() FrontendConfig {
	return FrontendConfig{
		URL:       utils.GetEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSDebug: utils.GetEnv("CORS_DEBUG", "") == "true",
	}
}

func loadLoggingConfig() LoggingConfig {
	environment := utils.GetEnv("ENVIRONMENT", "development")

	return LoggingConfig{
		Level:      utils.GetEnv("LOG_LEVEL", "debug"),
		JSONFormat: environment == "production" || utils.GetEnv("LOG_FORMAT", "text") == "json",
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           utils.GetEnv("RATE_LIMIT_ENABLED", "true") == "true",
		RequestsPerSecond: utils.GetEnvFloat("RATE_LIMIT_REQUESTS_PER_SECOND", 10),
		BurstSize:         utils.GetEnvInt("RATE_LIMIT_BURST_SIZE", 20),
		TrustProxy:        utils.GetEnvBool("RATE_LIMIT_TRUST_PROXY", false),
	}
}

func loadGameConfig() GameConfig {
	return GameConfig{
		MaxCollectionDistanceMeters: utils.GetEnvFloat("MAX_COLLECTION_DISTANCE_METERS", 10.0),
		ItemExpirationHours:         utils.GetEnvInt("ITEM_EXPIRATION_HOURS", 24),
		DefaultMapRadiusMeters:      utils.GetEnvFloat("DEFAULT_MAP_RADIUS_METERS", 100.0),
		MaxMapRadiusMeters:          utils.GetEnvFloat("MAX_MAP_RADIUS_METERS", 5000.0),
		CleanupInterval:             time.Duration(utils.GetEnvInt("CLEANUP_INTERVAL_SECONDS", 60)) * time.Second,
		ChestMinGems:                utils.GetEnvInt("CHEST_MIN_GEMS", 5),
		ChestMaxGems:                utils.GetEnvInt("CHEST_MAX_GEMS", 15),
		StartingGems:                utils.GetEnvInt("STARTING_GEMS", 50),
	}
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Game.MaxCollectionDistanceMeters <= 0 {
		return fmt.Errorf("MAX_COLLECTION_DISTANCE_METERS must be positive")
	}

	if c.Game.ItemExpirationHours > MaxItemExpirationHours {
		return fmt.Errorf("ITEM_EXPIRATION_HOURS must not exceed %d", MaxItemExpirationHours)
	}

	if c.Game.DefaultMapRadiusMeters <= 0 || c.Game.DefaultMapRadiusMeters > c.Game.MaxMapRadiusMeters {
		return fmt.Errorf("DEFAULT_MAP_RADIUS_METERS must be positive and not exceed MAX_MAP_RADIUS_METERS")
	}

	if c.Game.ChestMinGems < 0 || c.Game.ChestMinGems > c.Game.ChestMaxGems {
		return fmt.Errorf("CHEST_MIN_GEMS must be between 0 and CHEST_MAX_GEMS")
	}

	if c.Game.CleanupInterval <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL_SECONDS must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

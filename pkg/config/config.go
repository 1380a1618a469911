package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database       DatabaseConfig
	Redis          RedisConfig
	JWT            JWTConfig
	CORS           CORSConfig
	Log            LogConfig
	Ubigeo         UbigeoConfig
	Estadisticas   EstadisticasConfig
	Notificacion   NotificacionConfig
	Preinscripcion PreinscripcionConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// UbigeoConfig points at the geographic dictionary files and tunes their cache.
type UbigeoConfig struct {
	DataDir  string
	CacheTTL time.Duration
}

// EstadisticasConfig tunes caching for the admin statistics endpoint.
type EstadisticasConfig struct {
	CacheTTL time.Duration
}

// NotificacionConfig controls the welcome notification dispatcher.
type NotificacionConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// PreinscripcionConfig holds tunables for the submission lifecycle.
type PreinscripcionConfig struct {
	// CodeMaxAttempts bounds the security code pre-check loop.
	CodeMaxAttempts int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Ubigeo = UbigeoConfig{
		DataDir:  v.GetString("UBIGEO_DATA_DIR"),
		CacheTTL: parseDuration(v.GetString("UBIGEO_CACHE_TTL"), 24*time.Hour),
	}

	cfg.Estadisticas = EstadisticasConfig{
		CacheTTL: parseDuration(v.GetString("ESTADISTICAS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Notificacion = NotificacionConfig{
		Workers:    v.GetInt("NOTIFICACION_WORKERS"),
		BufferSize: v.GetInt("NOTIFICACION_BUFFER_SIZE"),
		MaxRetries: v.GetInt("NOTIFICACION_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("NOTIFICACION_RETRY_DELAY"), 5*time.Second),
	}

	cfg.Preinscripcion = PreinscripcionConfig{
		CodeMaxAttempts: v.GetInt("CODIGO_MAX_ATTEMPTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "preinscripciones")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "admision")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UBIGEO_DATA_DIR", "./data/ubigeos")
	v.SetDefault("UBIGEO_CACHE_TTL", "24h")
	v.SetDefault("ESTADISTICAS_CACHE_TTL", "5m")

	v.SetDefault("NOTIFICACION_WORKERS", 1)
	v.SetDefault("NOTIFICACION_BUFFER_SIZE", 16)
	v.SetDefault("NOTIFICACION_MAX_RETRIES", 3)
	v.SetDefault("NOTIFICACION_RETRY_DELAY", "5s")

	v.SetDefault("CODIGO_MAX_ATTEMPTS", 5)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const minBcryptCost = 10

type Config struct {
	App   AppConfig
	DB    DBConfig
	JWT   JWTConfig
	Redis RedisConfig
	Kafka KafkaConfig
	Log   LogConfig
	CORS  CORSConfig
}

type AppConfig struct {
	Env        string
	Port       string
	BcryptCost int
}

func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// DBConfig: DatabaseURL wins over the discrete fields when set.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxRetries  int
}

func (c DBConfig) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// RedisConfig: an empty Addr disables the jobs cache and token revocation.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Broker       string
	PollInterval time.Duration
}

type LogConfig struct {
	Format string
	Level  string
	File   string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads .env (if present) and then the process environment.
// Environment variables take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:        v.GetString("APP_ENV"),
			Port:       v.GetString("PORT"),
			BcryptCost: v.GetInt("BCRYPT_COST"),
		},
		DB: DBConfig{
			DatabaseURL: v.GetString("DATABASE_URL"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			Name:        v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			MaxRetries:  v.GetInt("DB_MAX_RETRIES"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Expiration: v.GetDuration("JWT_EXPIRATION"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Kafka: KafkaConfig{
			Broker:       v.GetString("KAFKA_BROKER"),
			PollInterval: v.GetDuration("OUTBOX_POLL_INTERVAL"),
		},
		Log: LogConfig{
			Format: v.GetString("LOG_FORMAT"),
			Level:  v.GetString("LOG_LEVEL"),
			File:   v.GetString("LOG_FILE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "5000")
	v.SetDefault("BCRYPT_COST", minBcryptCost)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "employee_management")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_RETRIES", 5)
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("OUTBOX_POLL_INTERVAL", "3s")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.Expiration <= 0 {
		return fmt.Errorf("JWT_EXPIRATION must be positive, got %s", c.JWT.Expiration)
	}
	if c.App.BcryptCost < minBcryptCost {
		return fmt.Errorf("BCRYPT_COST must be at least %d", minBcryptCost)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

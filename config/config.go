package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App       App            `mapstructure:"app"`
	Log       Logger         `mapstructure:"logger"`
	DB        Database       `mapstructure:"database"`
	Storage   Storage        `mapstructure:"storage"`
	API       API            `mapstructure:"api"`
	Gemini    Gemini         `mapstructure:"gemini"`
	Scheduler Scheduler      `mapstructure:"scheduler"`
	Cache     Cache          `mapstructure:"cache"`
	Telegram  TelegramConfig `mapstructure:"telegram"`
}

type App struct {
	Instrument string `mapstructure:"instrument"`
	TimeZone   string `mapstructure:"time_zone"`
	// Defaults for the preference store at process start.
	DefaultLotSize      float64 `mapstructure:"default_lot_size"`
	DefaultProfitTarget int     `mapstructure:"default_profit_target"`
	DefaultRiskProfile  string  `mapstructure:"default_risk_profile"`
	HistoryCapacity     int     `mapstructure:"history_capacity"`
}

type Logger struct {
	Level      string `mapstructure:"level"`
	Encoding   string `mapstructure:"encoding"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type Database struct {
	Driver          string `mapstructure:"driver"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

// Storage selects where the history slot lives: file, sqlite, postgres or memory.
type Storage struct {
	Driver      string `mapstructure:"driver"`
	FilePath    string `mapstructure:"file_path"`
	SlotName    string `mapstructure:"slot_name"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type API struct {
	Enabled            bool          `mapstructure:"enabled"`
	Port               int           `mapstructure:"port"`
	RateLimitPerSecond float64       `mapstructure:"rate_limit_per_second"`
	RateLimitBurst     int           `mapstructure:"rate_limit_burst"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

type Gemini struct {
	APIKey              string        `mapstructure:"api_key"`
	BaseURL             string        `mapstructure:"base_url"`
	BaseModel           string        `mapstructure:"base_model"`
	Transport           string        `mapstructure:"transport"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int           `mapstructure:"max_token_per_minute"`
	EnableSearch        bool          `mapstructure:"enable_search"`
}

type Scheduler struct {
	AnalysisCron    string        `mapstructure:"analysis_cron"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type TelegramConfig struct {
	BotToken                  string        `mapstructure:"bot_token"`
	ChatID                    int64         `mapstructure:"chat_id"`
	WebhookURL                string        `mapstructure:"webhook_url"`
	TimeoutDuration           time.Duration `mapstructure:"timeout_duration"`
	MaxGlobalRequestPerSecond int           `mapstructure:"max_global_request_per_second"`
	MaxUserRequestPerSecond   int           `mapstructure:"max_user_request_per_second"`
	MaxShowHistory            int           `mapstructure:"max_show_history"`
	RateLimitCleanupDuration  time.Duration `mapstructure:"rate_limit_cleanup_duration"`
	RateLimitExpireDuration   time.Duration `mapstructure:"rate_limit_expire_duration"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.instrument", "XAU/USD")
	v.SetDefault("app.time_zone", "UTC")
	v.SetDefault("app.default_lot_size", 0.05)
	v.SetDefault("app.default_profit_target", 100)
	v.SetDefault("app.default_risk_profile", "Balanced")
	v.SetDefault("app.history_capacity", 20)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.file_path", "")
	v.SetDefault("logger.max_size_mb", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age_days", 28)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite_path", "data/gold-analyst.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "gold_analyst")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.time_zone", "")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.log_level", "Warn")

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.file_path", "data/history.json")
	v.SetDefault("storage.slot_name", "analysis_history")
	v.SetDefault("storage.auto_migrate", true)

	v.SetDefault("api.enabled", true)
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.rate_limit_per_second", 10)
	v.SetDefault("api.rate_limit_burst", 30)
	v.SetDefault("api.shutdown_timeout", 10*time.Second)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta/models")
	v.SetDefault("gemini.base_model", "gemini-2.5-flash")
	v.SetDefault("gemini.transport", "sdk")
	v.SetDefault("gemini.timeout", 2*time.Minute)
	v.SetDefault("gemini.max_request_per_minute", 10)
	v.SetDefault("gemini.max_token_per_minute", 250000)
	v.SetDefault("gemini.enable_search", true)

	v.SetDefault("scheduler.analysis_cron", "")
	v.SetDefault("scheduler.timeout_duration", 3*time.Minute)

	v.SetDefault("cache.default_expiration", 0)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("telegram.webhook_url", "")
	v.SetDefault("telegram.timeout_duration", 3*time.Minute)
	v.SetDefault("telegram.max_global_request_per_second", 30)
	v.SetDefault("telegram.max_user_request_per_second", 1)
	v.SetDefault("telegram.max_show_history", 10)
	v.SetDefault("telegram.rate_limit_cleanup_duration", 10*time.Minute)
	v.SetDefault("telegram.rate_limit_expire_duration", 30*time.Minute)
}

// Load reads config.yaml (or the given file), .env and the environment.
// Environment keys use "_" in place of "." (GEMINI_API_KEY, STORAGE_DRIVER, ...).
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded:", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

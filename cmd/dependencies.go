package cmd

import (
	"context"
	"time"

	"gold-analyst/config"
	"gold-analyst/internal/repository"
	"gold-analyst/pkg/cache"
	"gold-analyst/pkg/database"
	"gold-analyst/pkg/logger"
	"gold-analyst/pkg/middleware"
	"gold-analyst/pkg/telegram"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"gopkg.in/telebot.v3"
	"gorm.io/gorm"
)

const alertSendTimeout = 10 * time.Second

type AppDependency struct {
	db          *database.DB
	cfg         *config.Config
	log         *logger.Logger
	validator   *goValidator.Validate
	echo        *echo.Echo
	cache       cache.Cache
	slot        repository.StorageSlot
	telegram    *telegram.TelegramRateLimiter
	telegramBot *telebot.Bot
}

// NewAppDependency builds the shared infrastructure. The telegram bot is only
// created when withBot is set and a token is configured.
func NewAppDependency(ctx context.Context, withBot bool) (*AppDependency, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	dep := &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
	}

	var gormDB *gorm.DB
	if usesDatabase(cfg.Storage.Driver) {
		dbCfg := cfg.DB
		dbCfg.Driver = cfg.Storage.Driver
		dep.db, err = database.NewDB(dbCfg, log)
		if err != nil {
			log.Error("Failed to connect to database", logger.ErrorField(err))
			return nil, err
		}
		gormDB = dep.db.DB
	}

	dep.slot, err = repository.NewStorageSlot(cfg, gormDB, dep.cache)
	if err != nil {
		log.Error("Failed to create history storage", logger.ErrorField(err))
		dep.Close()
		return nil, err
	}

	if withBot && cfg.Telegram.BotToken != "" {
		pref := telebot.Settings{
			Token:  cfg.Telegram.BotToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				log.Error("Telegram bot error", logger.ErrorField(err))
			},
		}
		bot, err := telebot.NewBot(pref)
		if err != nil {
			log.Error("Failed to create telegram bot", logger.ErrorField(err))
			dep.Close()
			return nil, err
		}
		dep.telegramBot = bot
		dep.telegram = telegram.NewTelegramRateLimiter(&cfg.Telegram, log, bot)

		if cfg.Telegram.ChatID != 0 {
			dep.log = log.WithAlert(func(msg string) {
				ctx, cancel := context.WithTimeout(context.Background(), alertSendTimeout)
				defer cancel()
				_, _ = dep.telegram.SendTo(ctx, cfg.Telegram.ChatID, telegram.FormatErrorAlertMessage(msg), telebot.ModeHTML)
			})
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.NewRateLimiterMiddleware(cfg.API.RateLimitPerSecond, cfg.API.RateLimitBurst))
	dep.echo = e

	return dep, nil
}

func usesDatabase(driver string) bool {
	return driver == database.DriverSQLite || driver == database.DriverPostgres
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	defer d.log.Sync()
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

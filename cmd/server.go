package cmd

import (
	"context"
	"errors"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"

	"gold-analyst/internal/delivery/http"
	"gold-analyst/internal/delivery/telegram"
	"gold-analyst/internal/repository"
	"gold-analyst/internal/service"
	"gold-analyst/pkg/logger"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run gold-analyst (HTTP API, Telegram bot and scheduled analysis)",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx, true)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	repo, err := repository.NewRepository(appDep.cfg, appDep.log, appDep.validator, appDep.slot)
	if err != nil {
		log.Fatalf("Failed to create repository: %v", err)
	}

	services := service.NewService(appDep.cfg, appDep.log, repo)
	services.SessionService.LoadHistory(ctx)

	httpHandler := http.NewHttpAPIHandler(ctx, appDep.echo, appDep.validator, appDep.log, services)
	apiServer := NewHTTPServer(appDep, httpHandler)

	var telegramHandler *telegram.TelegramBotHandler
	if appDep.telegramBot != nil {
		telegramHandler = telegram.NewTelegramBotHandler(
			ctx,
			appDep.cfg,
			appDep.log,
			appDep.telegramBot,
			appDep.telegram,
			appDep.echo,
			services,
			appDep.cache,
		)
		telegramHandler.Setup()
		services.SchedulerService.SetNotifier(telegramHandler.NotifyResult)
	} else {
		appDep.log.Info("Telegram bot token not set, bot disabled")
	}

	serveHTTP := appDep.cfg.API.Enabled || appDep.cfg.Telegram.WebhookURL != ""

	g, gctx := errgroup.WithContext(ctx)
	if telegramHandler != nil {
		appDep.telegram.StartCleanupExpired(gctx)
	}
	if serveHTTP {
		g.Go(func() error {
			if err := apiServer.Start(); err != nil && !errors.Is(err, httpNet.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	if telegramHandler != nil {
		g.Go(func() error {
			telegramHandler.Start()
			return nil
		})
	}
	g.Go(func() error {
		return services.SchedulerService.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		appDep.log.Info("Shutting down gracefully...")

		if telegramHandler != nil {
			telegramHandler.Stop()
			appDep.telegram.StopCleanupExpired()
		}
		if serveHTTP {
			return apiServer.Stop()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		appDep.log.Error("Server stopped with error", logger.ErrorField(err))
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}

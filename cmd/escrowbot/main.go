// Package main запускает эскроу-бота GiftElf.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/giftelf/escrow-bot/internal/bot"
	"github.com/giftelf/escrow-bot/internal/config"
	"github.com/giftelf/escrow-bot/internal/deal"
	"github.com/giftelf/escrow-bot/internal/repository"
	"github.com/giftelf/escrow-bot/internal/session"
	"github.com/giftelf/escrow-bot/internal/telegram"
	"github.com/giftelf/escrow-bot/internal/webhook"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	var sessions session.Store = session.NewMemoryStore()
	if cfg.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			cancel()
			sugar.Fatalw("redis initialization error", "error", err.Error())
		}
		cancel()

		sessions = session.NewRedisStore(client)
	}

	svc := deal.NewService(repo, cfg.OperatorID)
	defer svc.Close()

	tg := telegram.NewClient(cfg.TelegramAPIURL, cfg.BotToken)

	meCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	me, err := tg.GetMe(meCtx)
	cancel()
	if err != nil {
		sugar.Fatalw("telegram initialization error", "error", err.Error())
	}

	router := bot.NewRouter(svc, sessions, tg, logger, cfg.OperatorID, cfg.WalletAddress, me.Username)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	switch cfg.Mode {
	case config.ModeWebhook:
		srv := webhook.NewServer(router, cfg.WebhookSecret, logger)
		server := &http.Server{
			Addr:    cfg.RunAddress,
			Handler: srv.SetupRouter(),
		}

		g.Go(func() error {
			sugar.Infow("starting webhook server", "addr", cfg.RunAddress, "bot", me.Username)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})

		// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
		g.Go(func() error {
			<-ctx.Done()
			sugar.Info("shutting down webhook server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown error: %w", err)
			}
			sugar.Info("server stopped gracefully")
			return nil
		})

	default:
		poller := telegram.NewPoller(tg, router, logger)

		g.Go(func() error {
			sugar.Infow("starting long polling", "bot", me.Username)
			return poller.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

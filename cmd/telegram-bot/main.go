package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/deanhq/portfolio-assistant/internal/builder"
	"go.uber.org/zap"
)

func main() {
	bot, logger, err := builder.BuildTelegramBot()
	if err != nil {
		log.Fatal("Failed to build telegram bot:", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := bot.Run(ctx); err != nil {
		logger.Fatal("Telegram bot error", zap.Error(err))
	}

	logger.Info("Telegram bot stopped gracefully")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock_advisor/internal/aggregator"
	"stock_advisor/internal/ai"
	"stock_advisor/internal/bot"
	"stock_advisor/internal/config"
	"stock_advisor/internal/logger"
	"stock_advisor/internal/market/finnhub"
	"stock_advisor/internal/telegram"
)

const pollTimeoutSec = 60

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New("info", "console")
		l.Fatal().Err(err).Msg("configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown on SIGINT/SIGTERM.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("shutdown signal received")
		cancel()
	}()

	source := finnhub.NewClient(cfg.FinnhubAPIKey)
	agg := aggregator.New(source, cfg.BenchmarkSymbol, log)

	gen, err := ai.NewClient(ctx, ai.Config{
		BaseURL: cfg.GenerationBaseURL,
		APIKey:  cfg.GenerationAPIKey,
		Model:   cfg.GenerationModel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("generation client")
	}

	chat := telegram.NewClient(cfg.TelegramToken, log)
	b := bot.New(cfg, chat, agg, gen, log)

	if len(cfg.AllowedChatIDs) == 0 {
		log.Info().Msg("acl disabled (TG_ALLOWED_IDS not set); allowing all chats")
	} else {
		log.Info().Ints64("chat_ids", cfg.AllowedChatIDs).Msg("acl enabled")
	}
	log.Info().Str("benchmark", cfg.BenchmarkSymbol).Msg("bot is running")

	// Long-poll loop. Each update is handled in its own goroutine so one
	// slow generation never blocks other chats.
	offset := 0
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("poll loop stopping")
			return
		default:
		}

		updates, err := chat.GetUpdates(ctx, offset, pollTimeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("getUpdates failed, backing off")
			time.Sleep(5 * time.Second)
			continue
		}

		for _, upd := range updates {
			offset = upd.UpdateID + 1
			go b.HandleUpdate(ctx, upd)
		}
	}
}

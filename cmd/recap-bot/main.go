package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"recap-bot/internal/config"
	"recap-bot/internal/digest"
	"recap-bot/internal/discord"
	"recap-bot/internal/history"
	"recap-bot/internal/msglog"
	"recap-bot/internal/recap"
	"recap-bot/internal/summarizer"
	"recap-bot/internal/timeframe"
)

func main() {
	configPath := flag.String("config", config.Path(), "path to config file")
	flag.Parse()

	// .env is optional; deployments usually set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Fails here when the provider's API key is missing, before any
	// connection is opened.
	s, err := summarizer.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create summarizer: %v", err)
	}

	session, err := discord.NewSession(cfg.Discord.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}

	reader := discord.NewHistoryReader(session)
	fetcher := history.NewFetcher(reader, reader)
	recaps := recap.NewService(timeframe.NewResolver(), fetcher, s, cfg.Service.MaxGPTRequestTokens)
	msgLog := msglog.NewWriter(cfg.Service.MessageLogDirectory)

	bot := discord.NewBot(session, recaps, msgLog, cfg.Discord.GuildID, cfg.Discord.ChannelIDs)
	if err := bot.Start(); err != nil {
		log.Fatalf("Failed to connect to Discord: %v", err)
	}
	log.Println("Connected to Discord")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interval := time.Duration(cfg.Service.ProduceDigestIntervalSeconds) * time.Second
	sched := digest.NewScheduler(recaps, bot, cfg.Discord.ChannelIDs, interval)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start digest scheduler: %v", err)
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("Received signal %v, shutting down...", sig)

	cancel()
	sched.Stop()
	if err := bot.Stop(); err != nil {
		log.Printf("Discord session close error: %v", err)
	}
	log.Println("Shutdown complete")
}

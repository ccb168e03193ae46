package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticket-bot/bot"
	"ticket-bot/config"
	"ticket-bot/handlers"
	"ticket-bot/lang"
	"ticket-bot/notify"
	"ticket-bot/storage"
	"ticket-bot/ticket"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to config file")
	cleanup := flag.Bool("cleanup", false, "Remove slash commands on shutdown")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Discord.Token == "" || cfg.Discord.Token == "YOUR_DISCORD_BOT_TOKEN_HERE" {
		log.Fatal("Set your bot token in config.json → discord.token")
	}

	lang.Load(cfg.Lang.Path)

	store, err := storage.InitStore(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	defer store.Close()

	b, err := bot.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	platform := &handlers.SessionPlatform{Session: b.Session, Cfg: cfg}
	grace := time.Duration(cfg.Tickets.GraceDelaySeconds) * time.Second
	manager := ticket.NewManager(store, platform, cfg.TicketCatalog(), ticket.SystemClock(), grace)

	notifier := notify.New(b.Session, cfg)
	defer notifier.Close()

	handlers.Cfg = cfg
	handlers.ConfigPath = *configPath
	handlers.Manager = manager
	handlers.Notifier = notifier
	handlers.Register(b.Session)

	if err := b.Start(); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}
	defer b.Stop()

	registered := b.RegisterCommands(handlers.Commands())

	log.Println("Bot is running. Press Ctrl+C to exit.")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	if *cleanup {
		b.CleanupCommands(registered)
	}
}

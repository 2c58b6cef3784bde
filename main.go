package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mangaverse/cmd"
	"mangaverse/config"
	"mangaverse/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, reading environment variables directly")
	}

	// Migration subcommands only need the database variables
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		configureLogging(os.Getenv("LOG_LEVEL"), os.Getenv("ENVIRONMENT") == "production")
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error: ", err)
		}
		return
	}

	cfg := config.Get()
	configureLogging(cfg.LogLevel, cfg.IsProduction())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	var err error
	switch command {
	case "serve":
		err = cmd.Run(ctx)
	case "distribute":
		err = cmd.Distribute(ctx)
	default:
		err = fmt.Errorf("unknown command %q, expected serve, distribute or migrate", command)
	}
	if err != nil {
		log.Fatal("Application error: ", err)
	}
}

func configureLogging(level string, production bool) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)

	if production {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: mangaverse migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		_, err := database.MigrateStatus()
		return err
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

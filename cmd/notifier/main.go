package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-otp-redis/internal/application/notifier"
	"github.com/go-otp-redis/internal/config"
	"github.com/go-otp-redis/internal/infrastructure/redisstore"
	"github.com/go-otp-redis/internal/infrastructure/sns"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	redisClient, err := redisstore.NewClient(context.Background(), cfg)
	if err != nil {
		log.Fatalf("redis unavailable: %v", err)
	}
	defer redisClient.Close()
	log.Println("Notifier connected to Redis")

	smsSender, err := sns.NewSender(cfg)
	if err != nil {
		log.Fatalf("SNS sender unavailable: %v", err)
	}

	channel := redisstore.NewChannel(redisClient, cfg.OTPTopic)
	svc := notifier.NewService(smsSender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		log.Printf("Notifier subscribed to topic %q", cfg.OTPTopic)
		done <- channel.Subscribe(ctx, func(ctx context.Context, payload []byte) error {
			if err := svc.HandleIssued(ctx, payload); err != nil {
				// Best-effort delivery: log and drop, no retry.
				slog.Error("otp delivery failed", "err", err)
			}
			return nil
		})
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Println("Shutting down notifier...")
		cancel()
		<-done
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("subscription error: %v", err)
		}
	}
	log.Println("Notifier stopped")
}

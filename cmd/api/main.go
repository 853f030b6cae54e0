package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-otp-redis/internal/config"
	"github.com/go-otp-redis/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-otp-redis/internal/infrastructure/jwt"
	"github.com/go-otp-redis/internal/infrastructure/redisstore"
	transporthttp "github.com/go-otp-redis/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	dynamo.Bootstrap(bootCtx, dynamoClient, cfg.DynamoTables)
	bootCancel()

	// Transient store: one Redis connection for the process lifetime,
	// health-checked before serving.
	redisClient, err := redisstore.NewClient(context.Background(), cfg)
	if err != nil {
		log.Fatalf("redis unavailable: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// JWT provider is optional; without keys the session routes answer 503.
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	deps := &transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		OTPStore:    redisstore.NewStore(redisClient, cfg.OTPTTL),
		Channel:     redisstore.NewChannel(redisClient, cfg.OTPTopic),
		JWTProvider: jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/example/helpdesk/internal/auth"
	"github.com/example/helpdesk/internal/config"
	"github.com/example/helpdesk/internal/db"
	httpserver "github.com/example/helpdesk/internal/http"
	"github.com/example/helpdesk/internal/mq"
	"github.com/example/helpdesk/internal/repository"
	"github.com/example/helpdesk/internal/service"
	"github.com/example/helpdesk/internal/session"
)

func main() {
	configPath := pflag.String("config", "", "optional YAML config file")
	addr := pflag.String("addr", "", "listen address, overrides API_HTTP_PORT")
	dsn := pflag.String("db", "", "database url or SQLite file, overrides DATABASE_URL")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		cfg.HTTPPort = *addr
	}
	if *dsn != "" {
		cfg.DatabaseURL = *dsn
	}

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	var publisher mq.Publisher
	var rabbit *mq.RabbitPublisher
	if cfg.MQURL != "" {
		rabbit, err = mq.NewRabbitPublisher(cfg.MQURL, cfg.MQTicketExchange)
		if err != nil {
			log.Printf("warning: rabbitmq unavailable (%v), continuing without events", err)
		} else {
			publisher = rabbit
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sessions, closeSessions := newSessionManager(ctx, cfg)

	helpdesk := service.NewHelpdeskService(database, repository.NewUserRepository(database), repository.NewTicketRepository(database), publisher)
	if _, err := helpdesk.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	apiServer := httpserver.NewServer(helpdesk, sessions, auth.NewTokenIssuer(cfg.JWTSecret), httpserver.Options{
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: apiServer.Engine,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutdown initiated")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if rabbit != nil {
		_ = rabbit.Close()
	}
	if err := closeSessions(); err != nil {
		log.Printf("close session store: %v", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("bye")
}

// newSessionManager uses Redis when configured and falls back to process
// memory. The returned func releases the store on shutdown.
func newSessionManager(ctx context.Context, cfg config.Config) (*session.Manager, func() error) {
	if cfg.RedisAddr != "" {
		store, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err == nil {
			log.Printf("sessions stored in redis at %s", cfg.RedisAddr)
			return session.NewManager(store, cfg.SessionTTL), store.Close
		}
		log.Printf("warning: redis unavailable (%v), keeping sessions in memory", err)
	}
	store := session.NewMemoryStore()
	go store.RunSweeper(ctx, time.Minute)
	return session.NewManager(store, cfg.SessionTTL), func() error { return nil }
}

func init() {
	if mode := os.Getenv("GIN_MODE"); mode == "" {
		gin.SetMode(gin.ReleaseMode)
	}
}

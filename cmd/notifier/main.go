package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/example/helpdesk/internal/config"
	"github.com/example/helpdesk/internal/mq"
	"github.com/example/helpdesk/internal/notify"
	"github.com/example/helpdesk/internal/worker"
)

func main() {
	configPath := pflag.String("config", "", "optional YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.MQURL == "" {
		log.Fatal("RABBITMQ_URL is required")
	}
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		log.Fatal("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required")
	}

	consumer, err := mq.NewRabbitConsumer(cfg.MQURL, cfg.MQTicketExchange, cfg.MQTicketQueue)
	if err != nil {
		log.Fatalf("connect rabbitmq: %v", err)
	}
	defer consumer.Close()

	sender, err := notify.NewTelegramSender(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := worker.NewNotifyWorker(consumer, sender).Run(ctx); err != nil {
		log.Printf("notify worker stopped: %v", err)
	}
	log.Println("bye")
}

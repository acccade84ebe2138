package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookstore-backend/config"
	"github.com/oksasatya/bookstore-backend/pkg/helpers"
	"github.com/oksasatya/bookstore-backend/pkg/mailer"
)

// retryDelay spaces out redeliveries of jobs that failed for a transient reason
const retryDelay = 2 * time.Second

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	queue, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		logger.WithError(err).Fatal("amqp connect")
	}
	defer queue.Close()

	msgs, err := queue.Consume(16)
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			entry := logger.WithFields(logrus.Fields{"delivery_tag": msg.DeliveryTag, "redelivered": msg.Redelivered})

			c, cancelSend := context.WithTimeout(ctx, 15*time.Second)
			err := mailer.HandleJob(c, mg, msg.Body)
			cancelSend()

			var perm *mailer.PermanentError
			switch {
			case err == nil:
				_ = msg.Ack(false)
			case errors.As(err, &perm):
				entry.WithError(err).Error("dropping email job")
				_ = msg.Nack(false, false)
			default:
				entry.WithError(err).Warn("send failed, requeueing")
				time.Sleep(retryDelay)
				_ = msg.Nack(false, true)
			}
		}
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	<-stop
	logger.Info("shutting down...")
	cancel()
	queue.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

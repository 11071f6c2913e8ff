package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ashiruhammed/farmstarter/internal/activity"
	"github.com/ashiruhammed/farmstarter/internal/config"
	"github.com/ashiruhammed/farmstarter/internal/events"
	kafkax "github.com/ashiruhammed/farmstarter/internal/kafka"
	"github.com/ashiruhammed/farmstarter/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	if len(cfg.KafkaBrokers) == 0 {
		logrus.Fatal("KAFKA_BROKERS is required for the activity consumer")
	}

	log := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.NewRedis(cfg.RedisAddr)
	defer st.Close()

	svc := &activity.Service{Store: st, Log: log}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ActivityGroup, events.TopicUserActivity, cfg.ActivityWorkers, log)

	go func() {
		log.WithFields(logrus.Fields{
			"group":   cfg.ActivityGroup,
			"topic":   events.TopicUserActivity,
			"workers": cfg.ActivityWorkers,
		}).Info("activity consumer started")
		if err := cons.Start(ctx, svc.HandleUserActivity); err != nil {
			log.WithError(err).Error("consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

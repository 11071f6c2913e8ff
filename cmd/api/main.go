package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ashiruhammed/farmstarter/internal/auth"
	"github.com/ashiruhammed/farmstarter/internal/cart"
	"github.com/ashiruhammed/farmstarter/internal/catalog"
	"github.com/ashiruhammed/farmstarter/internal/config"
	"github.com/ashiruhammed/farmstarter/internal/events"
	"github.com/ashiruhammed/farmstarter/internal/httpx"
	kafkax "github.com/ashiruhammed/farmstarter/internal/kafka"
	"github.com/ashiruhammed/farmstarter/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	log := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// KV store
	st := store.NewRedis(cfg.RedisAddr)
	defer st.Close()

	// Catalog: read once at startup, immutable afterwards. Postgres when
	// a DSN is configured, the bundled file otherwise.
	var products []catalog.Product
	if cfg.PostgresDSN != "" {
		db, err := catalog.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.WithError(err).Fatal("catalog db connect")
		}
		products, err = catalog.LoadPostgres(ctx, db)
		db.Close()
		if err != nil {
			log.WithError(err).Fatal("catalog load")
		}
	} else {
		products, err = catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			log.WithError(err).Fatal("catalog load")
		}
	}
	cat := catalog.New(products)
	log.WithField("products", cat.Len()).Info("catalog loaded")

	// Default users, used to seed the registry on first access.
	seed, err := auth.LoadSeedFile(cfg.UsersSeedPath)
	if err != nil {
		log.WithError(err).Warn("user seed unavailable, registry starts empty")
	}

	// Managers
	cm := cart.NewManager(st, log)
	cm.Load(ctx)
	am := auth.NewManager(st, auth.PlaintextVerifier{}, seed, log)
	am.Restore(ctx)

	// Event producers, only when brokers are configured
	var cartProd, userProd *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		cartProd = kafkax.NewProducer(cfg.KafkaBrokers, events.TopicCartUpdated, 1024, log)
		cartProd.Start()
		userProd = kafkax.NewProducer(cfg.KafkaBrokers, events.TopicUserActivity, 1024, log)
		userProd.Start()
	}

	// Router & handler
	router := httpx.NewRouter()
	h := &httpx.StorefrontHandler{
		Catalog:    cat,
		Cart:       cm,
		Auth:       am,
		CartEvents: cartProd,
		UserEvents: userProd,
		Service:    cfg.ServiceName,
	}
	h.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Infof("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	cm.Close() // flush the pending cart snapshot
	if cartProd != nil {
		cartProd.Close()
		userProd.Close()
		cartProd.WaitClosed()
		userProd.WaitClosed()
	}
}

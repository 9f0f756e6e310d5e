package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cloudkitchen/internal/cart"
	"cloudkitchen/internal/catalog"
	"cloudkitchen/internal/checkout"
	"cloudkitchen/internal/config"
	"cloudkitchen/internal/httpx"
	kafkax "cloudkitchen/internal/kafka"
	"cloudkitchen/internal/orders"
	"cloudkitchen/internal/postgres"
	"cloudkitchen/internal/redisx"
	"cloudkitchen/internal/settings"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := postgres.Migrate(ctx, db, true); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		return
	}
	if v := strings.TrimSpace(os.Getenv("AUTO_MIGRATE")); v == "1" || strings.EqualFold(v, "true") {
		if err := postgres.Migrate(ctx, db, false); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	placed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	placed.Start(ctx)
	statusChanged := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024)
	statusChanged.Start(ctx)

	orderRepo := &orders.Repo{DB: db}
	catalogRepo := &catalog.Repo{DB: db}
	settingsRepo := &settings.Repo{DB: db}
	cartStore := &cart.Store{Redis: rdb}

	svc := &checkout.Service{
		Orders:        orderRepo,
		Carts:         cartStore,
		Settings:      settingsRepo,
		Redis:         rdb,
		Placed:        placed,
		StatusChanged: statusChanged,
		ServiceName:   cfg.ServiceName,
	}

	router := httpx.NewRouter()
	(&httpx.MenuHandler{Catalog: catalogRepo}).Register(router)
	(&httpx.CartHandler{Carts: cartStore, Catalog: catalogRepo}).Register(router)
	(&httpx.CheckoutHandler{Checkout: svc}).Register(router)
	(&httpx.AdminHandler{
		Auth:     &httpx.AdminAuth{Redis: rdb, Password: cfg.AdminPassword},
		Orders:   orderRepo,
		Catalog:  catalogRepo,
		Settings: settingsRepo,
		QR:       &settings.QRStore{Dir: cfg.UploadDir, BaseURL: cfg.PublicBaseURL},
		Checkout: svc,
	}).Register(router)

	// uploaded QR images
	router.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.UploadDir))))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	placed.Close()
	statusChanged.Close()
	placed.WaitClosed()
	statusChanged.WaitClosed()
}

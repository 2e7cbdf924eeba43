package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booknet.org/internal/auth"
	"booknet.org/internal/config"
	"booknet.org/internal/httpapi"
	"booknet.org/internal/obs"
	"booknet.org/internal/store/pg"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	if cfg.PGDSN == "" {
		log.Fatal("missing DSN: set BOOKNET_PG_DSN")
	}
	store, err := pg.Open(cfg.PGDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	codec, err := auth.NewCodec(cfg.AuthSecret, cfg.AuthIssuer,
		auth.WithTokenTTL(cfg.TokenTTL))
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	api := httpapi.New(httpapi.Options{
		Service:                 auth.NewService(store, codec),
		Authenticator:           auth.NewAuthenticator(codec),
		ReadyProbe:              httpapi.ReadyProbe{DB: store.DB()},
		Version:                 version,
		MaxRolesPerRegistration: cfg.MaxRolesPerRegistration,
		RateBurst:               cfg.RateBurst,
		RatePerSecond:           cfg.RatePerSecond,
		MaxBodyBytes:            cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	log.Printf("Starting booknet-auth %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = store.Close()
	log.Println("Stopped")
}

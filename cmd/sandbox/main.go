package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/storefront/config"
	"github.com/ray-remotestate/storefront/handlers"
	"github.com/ray-remotestate/storefront/server"
)

const shutdownTimeOut = 10 * time.Second

func main() {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config, error: %v", err)
	}
	log, err := cfg.Logger()
	if err != nil {
		logrus.Fatalf("invalid log level, error: %v", err)
	}
	secret := cfg.SecretKey
	if len(secret) == 0 {
		log.Warn("JWT_SECRET_KEY not set, using the sandbox default")
		secret = []byte("sandbox-secret")
	}

	backend := handlers.NewBackend(secret, log)
	sellerID, err := backend.Seed()
	if err != nil {
		log.Panicf("failed to seed sandbox, error: %v", err)
	}
	log.WithFields(logrus.Fields{
		"username":  handlers.DemoUsername,
		"password":  handlers.DemoPassword,
		"seller_id": sellerID,
	}).Info("demo store ready")

	srv := server.SetupRoutes(backend, secret, log)
	go func() {
		if err := srv.Run(cfg.SandboxAddr); err != nil && err != http.ErrServerClosed {
			log.Panicf("failed to run server, error: %v", err)
		}
	}()
	log.Infof("sandbox listening on %s", cfg.SandboxAddr)

	<-done

	log.Info("shutting down...")
	if err := srv.Shutdown(shutdownTimeOut); err != nil {
		log.WithError(err).Error("failed to shut down server gracefully")
	}
	log.Info("system is shut ..zzz")
}

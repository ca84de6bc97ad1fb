package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	consenthandler "github.com/YashDiwan-16/algorand-sub001/internal/consent/handler"
	consentservice "github.com/YashDiwan-16/algorand-sub001/internal/consent/service"
	consentstore "github.com/YashDiwan-16/algorand-sub001/internal/consent/store"
	documenthandler "github.com/YashDiwan-16/algorand-sub001/internal/document/handler"
	docservice "github.com/YashDiwan-16/algorand-sub001/internal/document/service"
	docstore "github.com/YashDiwan-16/algorand-sub001/internal/document/store"
	"github.com/YashDiwan-16/algorand-sub001/internal/ledger"
	"github.com/YashDiwan-16/algorand-sub001/internal/ledger/kv"
	"github.com/YashDiwan-16/algorand-sub001/internal/ledger/tracer"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/config"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/database"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/httpserver"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/logger"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/metrics"
	httptransport "github.com/YashDiwan-16/algorand-sub001/internal/transport/http"
	"github.com/YashDiwan-16/algorand-sub001/internal/transport/http/shared"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	shared.ProductionMode = cfg.ProductionMode

	log.Info("initializing consent-vault",
		"addr", cfg.Addr,
		"production_mode", cfg.ProductionMode,
	)

	m := metrics.New()

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	var (
		consentStore consentstore.Store
		docStore     docstore.Store
		kvStore      kv.Store
	)
	if pool != nil {
		if err := pool.Ping(context.Background()); err != nil {
			log.Error("database unreachable", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		consentStore = consentstore.NewPostgres(pool.DB())
		docStore = docstore.NewPostgres(pool.DB())
		kvStore = kv.NewPostgres(pool.DB())
		log.Info("using postgres-backed stores")
	} else {
		consentStore = consentstore.NewMemory()
		docStore = docstore.NewMemory()
		kvStore = kv.NewMemory()
		log.Info("no database configured, using in-memory stores")
	}

	// The ledger client runs alongside the consent API; the request
	// lifecycle never blocks on it.
	ledgerClient := ledger.New(cfg.Ledger, kvStore, log, tracer.NewOTel(), ledger.WithMetrics(m))
	log.Info("ledger client ready", "mode", ledgerClient.Mode())

	documents := docservice.NewService(docStore, log, docservice.WithMetrics(m))
	consent := consentservice.NewService(consentStore, documents, log, consentservice.WithMetrics(m))

	router := httptransport.NewRouter(
		consenthandler.New(consent, log, m),
		documenthandler.New(documents, log, m),
		log,
		httptransport.Config{JWTSigningKey: cfg.JWTSigningKey},
	)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	consenthandler "github.com/YashDiwan-16/algorand-sub001/internal/consent/handler"
	documenthandler "github.com/YashDiwan-16/algorand-sub001/internal/document/handler"
	"github.com/YashDiwan-16/algorand-sub001/internal/platform/middleware"
	respond "github.com/YashDiwan-16/algorand-sub001/internal/transport/http/json"
)

// Config carries the wiring the router needs beyond the handlers.
type Config struct {
	// JWTSigningKey gates the API behind bearer auth when non-empty.
	JWTSigningKey string
}

// NewRouter wires all public endpoints with the middleware stack.
func NewRouter(consent *consenthandler.Handler, documents *documenthandler.Handler, logger *slog.Logger, cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.JWTSigningKey != "" {
			r.Use(middleware.BearerAuth(cfg.JWTSigningKey, logger))
		}
		consent.Register(r)
		documents.Register(r)
	})

	return r
}

package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/decoyops/honeytrap/internal/agent"
	"github.com/decoyops/honeytrap/internal/callback"
	"github.com/decoyops/honeytrap/internal/detect"
	"github.com/decoyops/honeytrap/internal/intel"
)

type RouterConfig struct {
	// APISecretKey is compared against the x-api-key header.
	APISecretKey string
}

type Router struct {
	cfg       RouterConfig
	logger    *log.Logger
	extractor *intel.Extractor
	engine    *detect.Engine
	agent     *agent.Agent
	reporter  *callback.Reporter
}

func NewRouter(cfg RouterConfig, logger *log.Logger, extractor *intel.Extractor, engine *detect.Engine, a *agent.Agent, reporter *callback.Reporter) http.Handler {
	rt := &Router{
		cfg:       cfg,
		logger:    logger,
		extractor: extractor,
		engine:    engine,
		agent:     a,
		reporter:  reporter,
	}

	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "x-api-key", "x-request-id"},
	}))
	r.Use(withSentryRecovery)

	r.Get("/", rt.handleStatus)
	r.Head("/", rt.handleStatus)
	r.Get("/health", rt.handleStatus)
	r.Head("/health", rt.handleStatus)

	r.With(rt.withAuth).Post("/", rt.handleHoneypot)

	return r
}

func (rt *Router) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withAuth rejects requests whose x-api-key header does not match the
// configured secret, before any processing happens.
func (rt *Router) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		key := req.Header.Get("x-api-key")
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(rt.cfg.APISecretKey)) != 1 {
			rt.logger.Printf("auth failed: invalid or missing api key")
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or missing API key"})
			return
		}
		next.ServeHTTP(w, req)
	})
}

// withRequestID honors an inbound x-request-id header, generating one
// otherwise, and echoes it on the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get("x-request-id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("x-request-id", id)
		next.ServeHTTP(w, req)
	})
}

func withSentryRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(req)
				hub.RecoverWithContext(req.Context(), err)
				hub.Flush(2 * time.Second)
				http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, req)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// captureError sends an error to Sentry with request context.
func captureError(req *http.Request, err error, msg string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(req)
		scope.SetExtra("message", msg)
		sentry.CaptureException(err)
	})
}

package webhook

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Handler receives each accepted incoming payload.
type Handler func(Payload)

// NewRouter builds the incoming-webhook endpoint: POST /hooks/incoming takes
// a Payload, validates it and hands it to the handler. Invalid JSON and
// missing fields are 400s with a JSON error body.
func NewRouter(logger *zap.Logger, handle Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Delivery-Id"},
	}))

	r.Post("/hooks/incoming", func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		var p Payload
		if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(p); err != nil {
			writeError(w, http.StatusBadRequest, "missing required fields")
			return
		}

		logger.Info("incoming webhook",
			zap.String("action", p.Action),
			zap.String("source", p.Source),
			zap.Duration("took", time.Since(start)))

		if handle != nil {
			handle(p)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
	})

	return r
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

package todos

import (
	"log/slog"
	"net/http"
	"time"

	"todo-api/todos/application"
	"todo-api/todos/domain"
	"todo-api/todos/infra"

	"github.com/gorilla/mux"
)

// StatsView expõe um snapshot dos contadores em GET /stats.
type StatsView interface {
	Snapshot() infra.StatsSnapshot
}

type Options struct {
	Service application.Service
	Logger  *slog.Logger

	// Stats recebe um evento por requisição. Nil desliga a gravação.
	Stats domain.StatsStore
	// StatsView, se definido, é servido em GET /stats.
	StatsView StatsView

	MaxInFlight    int
	AcquireTimeout time.Duration
}

// NewRouter monta a cadeia completa:
// request id -> access log -> recover -> limite de concorrência -> mux (stats -> rotas).
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stats := StatsMiddleware(opts.Stats, logger)

	r := mux.NewRouter()
	r.NotFoundHandler = stats(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondWithStatus(w, http.StatusNotFound)
	}))
	r.MethodNotAllowedHandler = stats(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondWithStatus(w, http.StatusMethodNotAllowed)
	}))
	r.Use(stats)

	NewHandler(opts.Service, logger).Register(r)
	if opts.StatsView != nil {
		view := opts.StatsView
		r.Methods(http.MethodGet).Path("/stats").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			respondWithJSON(w, http.StatusOK, view.Snapshot())
		})
	}

	h := http.Handler(r)
	h = ConcurrencyMiddleware(ConcurrencyOptions{
		Max:            opts.MaxInFlight,
		AcquireTimeout: opts.AcquireTimeout,
		Logger:         logger,
	})(h)
	h = RecoverMiddleware(logger)(h)
	h = AccessLogMiddleware(logger)(h)
	h = RequestIDMiddleware()(h)
	return h
}

package todos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"todo-api/todos/application"
	"todo-api/todos/domain"
	"todo-api/todos/infra"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestIDHeader carrega o id da requisição nos dois sentidos.
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware reaproveita o X-Request-ID do cliente ou gera um novo,
// guarda no contexto e devolve no header da resposta.
func RequestIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
		})
	}
}

// RequestID devolve o id guardado por RequestIDMiddleware, ou "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// AccessLogMiddleware loga uma linha por requisição com status, duração e bytes.
func AccessLogMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			logger.InfoContext(r.Context(), "handled",
				"method", r.Method,
				"url", r.URL.String(),
				"status", m.Code,
				"duration", m.Duration,
				"bytes", m.Written,
				"request_id", RequestID(r.Context()),
			)
		})
	}
}

// RecoverMiddleware transforma panic de handler em 500.
func RecoverMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.ErrorContext(r.Context(), "panic recovered",
						"err", fmt.Sprint(rec),
						"stack", string(debug.Stack()),
						"request_id", RequestID(r.Context()),
					)
					respondWithStatus(w, http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// StatsMiddleware grava um domain.StatsEvent por requisição. Pensado para
// mux.Router.Use, onde o template da rota já é conhecido. O router não passa
// NotFoundHandler/MethodNotAllowedHandler pelos middlewares de Use, então
// NewRouter embrulha esses dois à parte; sem rota casada o evento sai com
// domain.UnmatchedRoute. Erro ao gravar só é logado.
func StatsMiddleware(stats domain.StatsStore, logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if stats == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)

			route := domain.UnmatchedRoute
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			ev := domain.StatsEvent{Method: r.Method, Route: route, Status: m.Code, At: time.Now()}
			if err := stats.Record(r.Context(), ev); err != nil {
				logger.WarnContext(r.Context(), "stats record failed", "err", err, "route", route)
			}
		})
	}
}

// ConcurrencyOptions configura o ConcurrencyMiddleware.
type ConcurrencyOptions struct {
	Max            int
	AcquireTimeout time.Duration
	Logger         *slog.Logger
	// Exempt diz quais requisições ignoram o limite. Nil = application.HealthExempt.
	Exempt func(method, path string) bool
}

// ConcurrencyMiddleware limita as requisições em voo. Quem não consegue vaga
// recebe 503, logado pelo mesmo caminho das outras falhas (writeFailure).
// GET /healthz não entra na conta, por padrão. Max <= 0 desliga o limite.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	exempt := opts.Exempt
	if exempt == nil {
		exempt = application.HealthExempt
	}

	adm := application.Admission{
		Pool:           infra.NewSlotPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
		Exempt:         exempt,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, err := adm.Admit(r.Context(), r.Method, r.URL.Path)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					// cliente foi embora antes de ganhar vaga; não é sobrecarga
					logger.DebugContext(r.Context(), "client gone while waiting for a slot",
						"path", r.URL.Path, "request_id", RequestID(r.Context()))
					respondWithStatus(w, http.StatusServiceUnavailable)
					return
				}
				writeFailure(logger, w, r, err)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}

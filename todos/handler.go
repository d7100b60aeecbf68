package todos

import (
	"log/slog"
	"net/http"
	"strings"

	"todo-api/todos/application"

	"github.com/gorilla/mux"
)

// Handler atende as rotas de todos.
type Handler struct {
	svc application.Service
	log *slog.Logger
}

func NewHandler(svc application.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, log: logger}
}

// Register registra as rotas de todos em r.
func (h *Handler) Register(r *mux.Router) {
	r.Methods(http.MethodGet).Path("/todos").HandlerFunc(h.getTodos)
	r.Methods(http.MethodPost).Path("/todos").HandlerFunc(h.createTodo)
	r.Methods(http.MethodGet).Path("/todos/{id}").HandlerFunc(h.getTodo)
	r.Methods(http.MethodDelete).Path("/todos/{id}").HandlerFunc(h.deleteTodo)
	r.Methods(http.MethodGet).Path("/healthz").HandlerFunc(h.health)
}

// getTodos lista tudo ou, se vier o parâmetro id (?id=1,2 ou ?id=1&id=2),
// faz a busca por ids.
func (h *Handler) getTodos(w http.ResponseWriter, r *http.Request) {
	if raw, ok := r.URL.Query()["id"]; ok {
		h.lookup(w, r, strings.Join(raw, ","))
		return
	}

	todos, err := h.svc.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, todos)
}

func (h *Handler) getTodo(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, mux.Vars(r)["id"])
}

// lookup responde um objeto quando só um registro bate e um array quando vários batem.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, raw string) {
	found, err := h.svc.Lookup(r.Context(), raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if len(found) == 1 {
		respondWithJSON(w, http.StatusOK, found[0])
		return
	}
	respondWithJSON(w, http.StatusOK, found)
}

func (h *Handler) createTodo(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCandidate(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	created, err := h.svc.Create(r.Context(), c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.InfoContext(r.Context(), "todo created", "id", created.ID, "request_id", RequestID(r.Context()))
	respondWithJSON(w, http.StatusOK, created)
}

func (h *Handler) deleteTodo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.InfoContext(r.Context(), "todo deleted", "id", id, "request_id", RequestID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

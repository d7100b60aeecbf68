package infra

import (
	"context"
	"strings"
	"sync"

	"todo-api/todos/domain"
)

// MemoryStore guarda os todos num slice, na ordem de inserção.
//
// As buscas são varreduras lineares. A coleção se perde quando o processo sai.
type MemoryStore struct {
	mu    sync.RWMutex
	todos []domain.Todo
}

type MemoryStoreOption func(*MemoryStore)

// WithTodos troca o seed padrão. O slice é copiado.
func WithTodos(todos []domain.Todo) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.todos = append([]domain.Todo(nil), todos...)
	}
}

// DefaultSeed devolve os dois registros com que um store novo começa.
func DefaultSeed() []domain.Todo {
	return []domain.Todo{
		{ID: "1", Todo: "Todo list item 1"},
		{ID: "2", Todo: "Todo list item 2"},
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{todos: DefaultSeed()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.todos)
}

func (s *MemoryStore) List(_ context.Context) ([]domain.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Todo, len(s.todos))
	copy(out, s.todos)
	return out, nil
}

// FindByID devolve o primeiro registro com id exatamente igual (sem aparar).
func (s *MemoryStore) FindByID(_ context.Context, id string) (domain.Todo, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.todos[i], true, nil
	}
	return domain.Todo{}, false, nil
}

func (s *MemoryStore) FindByIDs(_ context.Context, ids []string) ([]domain.Todo, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[strings.TrimSpace(id)] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Todo
	for _, t := range s.todos {
		if _, ok := want[strings.TrimSpace(t.ID)]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// Append coloca t no fim. Falha com domain.ErrDuplicateID se já existir um
// registro cujo id aparado seja igual ao de t aparado, a mesma comparação que
// FindByIDs usa. Nesse caso o store não muda.
func (s *MemoryStore) Append(_ context.Context, t domain.Todo) error {
	key := strings.TrimSpace(t.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.todos {
		if strings.TrimSpace(cur.ID) == key {
			return domain.ErrDuplicateID
		}
	}
	s.todos = append(s.todos, t)
	return nil
}

func (s *MemoryStore) RemoveByID(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.todos = append(s.todos[:i], s.todos[i+1:]...)
	return true, nil
}

// quem chama segura mu
func (s *MemoryStore) indexOf(id string) int {
	for i, t := range s.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

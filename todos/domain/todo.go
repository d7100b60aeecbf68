package domain

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound: nenhum registro bate com o(s) id(s) pedido(s).
	ErrNotFound = errors.New("todo not found")
	// ErrMalformedID: o parâmetro de id não tem nenhum id utilizável.
	ErrMalformedID = errors.New("malformed id parameter")
	// ErrDuplicateID é devolvido por Store.Append quando o id já existe.
	ErrDuplicateID = errors.New("duplicate todo id")
)

// Todo é o único registro mantido pelo serviço.
//
// O id não pode ter vírgula nem espaço nas pontas: a busca separa por vírgula
// e apara cada pedaço, então um id assim nunca seria encontrado de volta.
type Todo struct {
	ID   string `json:"id" validate:"required,excludesall=0x2C,trimmed"`
	Todo string `json:"todo"`
}

// Candidate é um Todo ainda não verificado, como chegou do cliente.
//
// Os campos são ponteiros para distinguir campo ausente de campo vazio.
type Candidate struct {
	ID   *string `json:"id" validate:"required,min=1,excludesall=0x2C,trimmed"`
	Todo *string `json:"todo" validate:"required"`
}

// Record converte um candidate já validado. Campo nil vira string vazia.
func (c Candidate) Record() Todo {
	var t Todo
	if c.ID != nil {
		t.ID = *c.ID
	}
	if c.Todo != nil {
		t.Todo = *c.Todo
	}
	return t
}

// Store guarda a coleção ordenada de todos.
//
// Implementações mantêm a ordem de inserção. Append recusa com ErrDuplicateID
// um id que, aparado, já esteja presente.
type Store interface {
	List(ctx context.Context) ([]Todo, error)
	FindByID(ctx context.Context, id string) (Todo, bool, error)
	// FindByIDs devolve os registros cujo id aparado está em ids, na ordem do store.
	FindByIDs(ctx context.Context, ids []string) ([]Todo, error)
	Append(ctx context.Context, t Todo) error
	RemoveByID(ctx context.Context, id string) (bool, error)
}

// ParseIDs separa um parâmetro de ids por vírgula e apara cada pedaço.
// Pedaços vazios são descartados e ids repetidos ficam uma vez só (vale a
// primeira ocorrência). Sem nenhum id sobrando, devolve ErrMalformedID.
func ParseIDs(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		id := strings.TrimSpace(p)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ErrMalformedID
	}
	return ids, nil
}

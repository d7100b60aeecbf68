package application

import (
	"context"
	"errors"
	"fmt"

	"todo-api/todos/domain"
)

// Service concentra as regras de listar, buscar, criar e remover sobre um
// domain.Store.
//
// Registros lidos do store passam de novo pelo schema antes de sair; um
// registro que falha é tratado como domain.ErrNotFound.
type Service struct {
	Store  domain.Store
	Schema *domain.Schema
}

func (s Service) List(ctx context.Context) ([]domain.Todo, error) {
	todos, err := s.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	if todos == nil {
		todos = []domain.Todo{}
	}
	return todos, nil
}

// Lookup resolve um parâmetro de ids separado por vírgula. Devolve
// domain.ErrMalformedID quando raw não tem nenhum id e domain.ErrNotFound
// quando nada bate.
func (s Service) Lookup(ctx context.Context, raw string) ([]domain.Todo, error) {
	ids, err := domain.ParseIDs(raw)
	if err != nil {
		return nil, err
	}
	found, err := s.Store.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find todos: %w", err)
	}
	if len(found) == 0 {
		return nil, domain.ErrNotFound
	}
	if err := s.Schema.ValidateTodos(found); err != nil {
		return nil, fmt.Errorf("%w: stored record: %v", domain.ErrNotFound, err)
	}
	return found, nil
}

// Create valida c e acrescenta no fim. Devolve o registro como foi gravado.
func (s Service) Create(ctx context.Context, c domain.Candidate) (domain.Todo, error) {
	if err := s.Schema.ValidateCandidate(c); err != nil {
		return domain.Todo{}, err
	}
	t := c.Record()
	if err := s.Store.Append(ctx, t); err != nil {
		if errors.Is(err, domain.ErrDuplicateID) {
			return domain.Todo{}, fmt.Errorf("create %q: %w", t.ID, err)
		}
		return domain.Todo{}, fmt.Errorf("append todo: %w", err)
	}
	return t, nil
}

// Delete remove o registro cujo id é exatamente igual a id (sem aparar).
func (s Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrNotFound
	}
	t, ok, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find todo: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	if err := s.Schema.ValidateTodo(t); err != nil {
		return fmt.Errorf("%w: stored record: %v", domain.ErrNotFound, err)
	}
	removed, err := s.Store.RemoveByID(ctx, id)
	if err != nil {
		return fmt.Errorf("remove todo: %w", err)
	}
	if !removed {
		// perdeu a corrida para outro delete
		return domain.ErrNotFound
	}
	return nil
}

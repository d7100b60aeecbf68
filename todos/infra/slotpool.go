package infra

import (
	"context"
	"fmt"
	"sync"

	"todo-api/todos/domain"
)

// SlotPool limita quantas requisições ficam em voo ao mesmo tempo.
type SlotPool struct {
	sem chan struct{}
}

func NewSlotPool(max int) *SlotPool {
	return &SlotPool{sem: make(chan struct{}, max)}
}

// Acquire tenta pegar uma vaga, primeiro sem esperar e depois até o ctx
// encerrar. Sem vaga, o erro casa com domain.ErrOverloaded e também com o
// erro do ctx (context.Canceled / DeadlineExceeded), para quem chama saber se
// o cliente desistiu ou se o tempo de espera acabou.
//
// O release devolvido é idempotente: um defer duplicado não libera a vaga
// de outra requisição.
func (p *SlotPool) Acquire(ctx context.Context) (func(), error) {
	select {
	case p.sem <- struct{}{}:
		return p.releaser(), nil
	default:
	}

	select {
	case p.sem <- struct{}{}:
		return p.releaser(), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %d/%d slots in use: %w", domain.ErrOverloaded, p.InFlight(), p.Cap(), ctx.Err())
	}
}

func (p *SlotPool) releaser() func() {
	var once sync.Once
	return func() { once.Do(func() { <-p.sem }) }
}

// InFlight informa quantas vagas estão ocupadas agora.
func (p *SlotPool) InFlight() int { return len(p.sem) }

func (p *SlotPool) Cap() int { return cap(p.sem) }

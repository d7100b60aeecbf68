package domain

import (
	"context"
	"errors"
)

// ErrOverloaded: não havia vaga para atender a requisição a tempo.
var ErrOverloaded = errors.New("server overloaded")

// SlotPool representa um recurso com capacidade finita (requisições em voo).
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar. Sem vaga,
// devolve um erro que casa com ErrOverloaded via errors.Is. Com vaga, devolve
// um release que pode ser chamado mais de uma vez sem efeito extra.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), err error)
}

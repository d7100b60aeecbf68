package application

import (
	"context"
	"errors"
	"time"

	"todo-api/todos/domain"
)

// Admission decide se uma requisição pode começar, dado um pool limitado de
// vagas. Rotas isentas (ex: liveness) passam direto e não ocupam vaga, para o
// orquestrador não matar o processo só porque ele está saturado.
type Admission struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
	// Exempt recebe método e path e diz se a requisição ignora o limite.
	Exempt func(method, path string) bool
}

// HealthExempt isenta só o GET /healthz.
func HealthExempt(method, path string) bool {
	return method == "GET" && path == "/healthz"
}

// Admit tenta ocupar uma vaga para a requisição method+path.
//   - AcquireTimeout <= 0: espera até o ctx encerrar.
//   - AcquireTimeout > 0: espera no máximo AcquireTimeout.
//
// Se o próprio ctx da requisição foi cancelado (cliente desistiu), devolve
// context.Canceled puro. Se só o tempo de espera acabou, o erro casa com domain.ErrOverloaded.
// O release devolvido nunca é nil quando err é nil.
func (a Admission) Admit(ctx context.Context, method, path string) (func(), error) {
	if a.Pool == nil || (a.Exempt != nil && a.Exempt(method, path)) {
		return func() {}, nil
	}

	acqCtx := ctx
	if a.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acqCtx, cancel = context.WithTimeout(ctx, a.AcquireTimeout)
		defer cancel()
	}

	release, err := a.Pool.Acquire(acqCtx)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return release, nil
}

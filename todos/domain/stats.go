package domain

import (
	"context"
	"time"
)

// UnmatchedRoute é o Route usado quando nenhuma rota casou (404/405 do router).
// Nunca gravamos o path cru, para não explodir a cardinalidade das chaves.
const UnmatchedRoute = "unmatched"

// StatsEvent descreve uma requisição atendida.
//
// Route é o template da rota (ex: "/todos/{id}") ou UnmatchedRoute.
type StatsEvent struct {
	Method string
	Route  string
	Status int

	At time.Time
}

// Failed indica se a requisição terminou com status 4xx ou 5xx.
func (ev StatsEvent) Failed() bool { return ev.Status >= 400 }

// StatsStore é a estratégia de persistência dos contadores de requisição.
//
// Gravar é best-effort: quem chama loga o erro e segue atendendo.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

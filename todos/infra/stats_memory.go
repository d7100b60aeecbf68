package infra

import (
	"context"
	"sync"

	"todo-api/todos/domain"
)

type Counters struct {
	OK     int64 `json:"ok"`
	Failed int64 `json:"failed"`
}

func (c *Counters) add(ev domain.StatsEvent) {
	if ev.Failed() {
		c.Failed++
	} else {
		c.OK++
	}
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento; os contadores não expiram.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    Counters
	byRoute  map[string]Counters
	byStatus map[int]int64
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{
		byRoute:  make(map[string]Counters),
		byStatus: make(map[int]int64),
	}
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Method + " " + ev.Route

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev)
	c := s.byRoute[route]
	c.add(ev)
	s.byRoute[route] = c
	s.byStatus[ev.Status]++
	return nil
}

// StatsSnapshot é uma cópia dos contadores num instante.
type StatsSnapshot struct {
	Total    Counters            `json:"total"`
	ByRoute  map[string]Counters `json:"by_route"`
	ByStatus map[int]int64       `json:"by_status"`
}

func (s *MemoryStatsStore) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := StatsSnapshot{
		Total:    s.total,
		ByRoute:  make(map[string]Counters, len(s.byRoute)),
		ByStatus: make(map[int]int64, len(s.byStatus)),
	}
	for k, v := range s.byRoute {
		snap.ByRoute[k] = v
	}
	for k, v := range s.byStatus {
		snap.ByStatus[k] = v
	}
	return snap
}

// Package infra contém as implementações concretas dos contratos definidos no
// pacote domain.
//
// Exemplos:
//   - MemoryStore: coleção ordenada de todos em memória, com seed inicial
//   - SlotPool: semáforo que limita as requisições em voo
//   - MemoryStatsStore / RedisStatsStore: contadores de requisição por rota
package infra

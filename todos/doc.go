// Package todos expõe a coleção de todos via HTTP (net/http + gorilla/mux).
//
// Visão geral (camadas):
//
//   - domain: Todo, contratos de store/stats, erros e schema de validação (sem net/http)
//   - application: casos de uso (listar, buscar, criar, remover) e admissão
//   - infra: store em memória, pool de vagas, stats em memória/redis
//   - todos (este pacote): rotas, handlers, middlewares e a tradução dos erros
//     de domínio para status HTTP
//
// Rotas:
//
//	GET    /todos            todos os registros
//	GET    /todos?id=a,b     um registro, ou um array quando vários batem
//	GET    /todos/{id}       mesmas regras da forma com query
//	POST   /todos            cria, body {"id": "...", "todo": "..."}
//	DELETE /todos/{id}       204 em caso de sucesso
//	GET    /healthz          204, fora do limite de concorrência
//	GET    /stats            contadores de requisição (só stats em memória)
//
// Falhas respondem com o texto do status em text/plain ("Not Found",
// "Bad Request", "Conflict", "Service Unavailable").
package todos

// Package application contém os casos de uso dos todos (listar, buscar, criar,
// remover) e a regra de admissão de requisições em voo.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Lookup devolve registros ou um erro de domínio; quem escolhe o
// status HTTP é a camada de cima.
package application

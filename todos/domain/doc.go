// Package domain define o registro de todo, os contratos de armazenamento e de
// estatísticas, os erros de domínio e o schema de validação.
//
// Este pacote não depende de net/http nem de stores concretos. A ideia é
// permitir testes de unidade da camada application com fakes e trocar o store
// em memória por um persistente sem mexer nos handlers.
package domain

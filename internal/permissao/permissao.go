// Package permissao avalia se uma identidade atende ao requisito de acesso
// de uma operação. A avaliação é pura e total: toda entrada resulta em
// permitir ou negar, com motivo legível no ramo de negação.
package permissao

import (
	"net/http"

	"github.com/cultivemed/api-pacientes/internal/auth"
)

// Requisito descreve o que uma operação exige da identidade atuante:
// um conjunto de papéis aceitos, a flag de vendedor externo, ou a
// disjunção dos dois. Requisito vazio aceita qualquer identidade
// autenticada.
type Requisito struct {
	Papeis                  []auth.Papel
	PermitirVendedorExterno bool
}

// Decisao é o resultado da avaliação.
type Decisao struct {
	Permitida bool
	Motivo    string
}

func permitir() Decisao { return Decisao{Permitida: true} }

func negar(motivo string) Decisao { return Decisao{Motivo: motivo} }

// Papeis monta um requisito de conjunto de papéis.
func Papeis(papeis ...auth.Papel) Requisito {
	return Requisito{Papeis: papeis}
}

// Autorizar decide se a identidade atende ao requisito.
func Autorizar(id auth.Identidade, req Requisito) Decisao {
	if id.EhAnonima() {
		return negar("acesso restrito a usuários autenticados")
	}
	if len(req.Papeis) == 0 && !req.PermitirVendedorExterno {
		return permitir()
	}
	for _, p := range req.Papeis {
		if id.Papel == p {
			return permitir()
		}
	}
	// Flag ausente na identidade vale como false, nunca como erro.
	if req.PermitirVendedorExterno && id.VendedorExterno {
		return permitir()
	}
	return negar("seu perfil não tem permissão para esta operação")
}

// Middleware bloqueia a rota quando o requisito não é atendido.
func Middleware(req Requisito) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.IdentidadeDoContexto(r.Context())
			if d := Autorizar(id, req); !d.Permitida {
				http.Error(w, d.Motivo, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

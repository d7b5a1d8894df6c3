package auth

import (
	"context"
	"net/http"
)

type ctxKey string

const CtxIdentidade ctxKey = "identidade"

// Middleware resolve a identidade de cada requisição e a guarda no
// contexto. Não bloqueia requisições anônimas: quem decide é o avaliador
// de permissão de cada rota.
func (rv *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		id := rv.Resolver(r)
		ctx := context.WithValue(r.Context(), CtxIdentidade, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentidadeDoContexto devolve a identidade resolvida, ou a anônima quando
// o middleware não rodou.
func IdentidadeDoContexto(ctx context.Context) Identidade {
	if id, ok := ctx.Value(CtxIdentidade).(Identidade); ok {
		return id
	}
	return Anonima()
}

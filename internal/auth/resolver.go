package auth

import (
	"net/http"
	"strconv"
	"strings"
)

// Cabeçalho usado como caminho alternativo de identificação quando cookies
// de sessão não estão disponíveis (ex.: contextos de embed restritos).
const CabecalhoUsuario = "X-Usuario-Id"

// CookieSessaoAnonima carrega a chave de sessão de visitantes sem login.
const CookieSessaoAnonima = "sessao_carrinho"

// ContaResolvida é o retrato mínimo de uma conta para fins de identidade.
type ContaResolvida struct {
	ID              uint
	Papel           Papel
	VendedorExterno bool
	CodigoAfiliado  string
}

// FonteDeContas consulta contas pelo ID para o caminho alternativo do
// resolvedor. Implementada pelo pacote usuario.
type FonteDeContas interface {
	BuscarConta(id uint) (*ContaResolvida, error)
}

// Resolver transforma uma requisição na identidade atuante. Dois caminhos:
// o token de sessão (Bearer) e, na ausência dele, o cabeçalho explícito
// X-Usuario-Id. Quando ambos estão presentes o token prevalece. Se nenhum
// resolve, o resultado é a identidade anônima.
type Resolver struct {
	Contas FonteDeContas
}

func NovoResolver(contas FonteDeContas) *Resolver {
	return &Resolver{Contas: contas}
}

func (rv *Resolver) Resolver(r *http.Request) Identidade {
	if id, ok := rv.doToken(r); ok {
		id.ChaveSessao = chaveSessao(r)
		return id
	}
	if id, ok := rv.doCabecalho(r); ok {
		id.ChaveSessao = chaveSessao(r)
		return id
	}
	anon := Anonima()
	anon.ChaveSessao = chaveSessao(r)
	return anon
}

func (rv *Resolver) doToken(r *http.Request) (Identidade, bool) {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return Identidade{}, false
	}
	claims, err := ValidarToken(strings.TrimPrefix(h, "Bearer "))
	if err != nil {
		// Token inválido conta como ausência de token, não como falha.
		return Identidade{}, false
	}
	return Identidade{
		ID:              claims.UserID,
		Papel:           Papel(claims.Papel),
		VendedorExterno: claims.VendedorExterno,
		CodigoAfiliado:  claims.CodigoAfiliado,
	}, true
}

func (rv *Resolver) doCabecalho(r *http.Request) (Identidade, bool) {
	if rv.Contas == nil {
		return Identidade{}, false
	}
	bruto := r.Header.Get(CabecalhoUsuario)
	if bruto == "" {
		return Identidade{}, false
	}
	id, err := strconv.ParseUint(bruto, 10, 32)
	if err != nil || id == 0 {
		return Identidade{}, false
	}
	conta, err := rv.Contas.BuscarConta(uint(id))
	if err != nil || conta == nil {
		return Identidade{}, false
	}
	return Identidade{
		ID:              conta.ID,
		Papel:           conta.Papel,
		VendedorExterno: conta.VendedorExterno,
		CodigoAfiliado:  conta.CodigoAfiliado,
	}, true
}

func chaveSessao(r *http.Request) string {
	if c, err := r.Cookie(CookieSessaoAnonima); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}

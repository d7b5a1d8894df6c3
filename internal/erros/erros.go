package erros

import (
	"errors"
	"net/http"
)

// AcessoNegado indica que a identidade atuante não tem permissão para a
// operação. O motivo é exibido ao usuário, nunca um stack trace.
type AcessoNegado struct {
	Motivo string
}

func (e *AcessoNegado) Error() string {
	if e.Motivo == "" {
		return "acesso negado"
	}
	return e.Motivo
}

// NaoEncontrado indica que a entidade não existe.
type NaoEncontrado struct {
	Recurso string
}

func (e *NaoEncontrado) Error() string {
	if e.Recurso == "" {
		return "não encontrado"
	}
	return e.Recurso + " não encontrado"
}

// TransicaoInvalida indica uma violação de regra de negócio no ciclo de
// vida do lead (ex.: "lead já finalizado").
type TransicaoInvalida struct {
	Motivo string
}

func (e *TransicaoInvalida) Error() string { return e.Motivo }

// Validacao indica entrada malformada, com detalhe por campo.
type Validacao struct {
	Campo  string
	Motivo string
}

func (e *Validacao) Error() string {
	if e.Campo == "" {
		return e.Motivo
	}
	return "campo '" + e.Campo + "': " + e.Motivo
}

func NovoAcessoNegado(motivo string) error      { return &AcessoNegado{Motivo: motivo} }
func NovoNaoEncontrado(recurso string) error    { return &NaoEncontrado{Recurso: recurso} }
func NovaTransicaoInvalida(motivo string) error { return &TransicaoInvalida{Motivo: motivo} }
func NovaValidacao(campo, motivo string) error  { return &Validacao{Campo: campo, Motivo: motivo} }

// EscreverHTTP traduz o erro tipado para o status HTTP correspondente.
// Qualquer erro fora da taxonomia vira uma falha genérica 500.
func EscreverHTTP(w http.ResponseWriter, err error) {
	var (
		negado    *AcessoNegado
		ausente   *NaoEncontrado
		transicao *TransicaoInvalida
		validacao *Validacao
	)
	switch {
	case errors.As(err, &negado):
		http.Error(w, negado.Error(), http.StatusForbidden)
	case errors.As(err, &ausente):
		http.Error(w, ausente.Error(), http.StatusNotFound)
	case errors.As(err, &transicao):
		http.Error(w, transicao.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &validacao):
		http.Error(w, validacao.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "erro interno", http.StatusInternalServerError)
	}
}

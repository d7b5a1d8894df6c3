package erros

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscreverHTTP(t *testing.T) {
	casos := []struct {
		nome   string
		err    error
		status int
	}{
		{"acesso negado", NovoAcessoNegado("sem permissão"), http.StatusForbidden},
		{"não encontrado", NovoNaoEncontrado("lead"), http.StatusNotFound},
		{"transição inválida", NovaTransicaoInvalida("lead já finalizado"), http.StatusUnprocessableEntity},
		{"validação", NovaValidacao("motivo", "obrigatório"), http.StatusBadRequest},
		{"erro embrulhado", fmt.Errorf("ao aprovar: %w", NovoNaoEncontrado("lead")), http.StatusNotFound},
		{"erro desconhecido", errors.New("falha de disco"), http.StatusInternalServerError},
	}
	for _, c := range casos {
		t.Run(c.nome, func(t *testing.T) {
			rec := httptest.NewRecorder()
			EscreverHTTP(rec, c.err)
			assert.Equal(t, c.status, rec.Code)
		})
	}
}

func TestMensagens(t *testing.T) {
	assert.Equal(t, "acesso negado", NovoAcessoNegado("").Error())
	assert.Equal(t, "lead não encontrado", NovoNaoEncontrado("lead").Error())
	assert.Equal(t, "campo 'motivo': obrigatório", NovaValidacao("motivo", "obrigatório").Error())
}

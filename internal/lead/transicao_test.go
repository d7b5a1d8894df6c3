package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivemed/api-pacientes/internal/erros"
)

func TestProximaEtapaSegueAOrdem(t *testing.T) {
	atual := StatusNovo
	esperadas := []string{
		StatusContatoInicial,
		StatusAguardandoReceita,
		StatusReceitaRecebida,
		StatusReceitaValidada,
		StatusProdutosLiberados,
		StatusFinalizado,
	}
	for _, esperada := range esperadas {
		prox, err := ProximaEtapa(atual)
		require.NoError(t, err)
		assert.Equal(t, esperada, prox)
		atual = prox
	}
}

func TestProximaEtapaFinalizadoFalha(t *testing.T) {
	_, err := ProximaEtapa(StatusFinalizado)
	require.Error(t, err)
	var transicao *erros.TransicaoInvalida
	assert.ErrorAs(t, err, &transicao)
}

func TestProximaEtapaStatusDesconhecido(t *testing.T) {
	_, err := ProximaEtapa("em_banho_maria")
	var transicao *erros.TransicaoInvalida
	assert.ErrorAs(t, err, &transicao)
}

func TestCompararEtapas(t *testing.T) {
	assert.Negative(t, CompararEtapas(StatusNovo, StatusFinalizado))
	assert.Positive(t, CompararEtapas(StatusFinalizado, StatusNovo))
	assert.Zero(t, CompararEtapas(StatusReceitaRecebida, StatusReceitaRecebida))
}

func TestAplicarDesbloqueio(t *testing.T) {
	l := &Lead{Status: StatusReceitaRecebida, ReceitaAprovada: true, AnvisaAprovada: true}
	assert.True(t, aplicarDesbloqueio(l))
	assert.Equal(t, StatusProdutosLiberados, l.Status)
}

func TestAplicarDesbloqueioExigeAsDuasTrilhas(t *testing.T) {
	l := &Lead{Status: StatusReceitaRecebida, ReceitaAprovada: true}
	assert.False(t, aplicarDesbloqueio(l))
	assert.Equal(t, StatusReceitaRecebida, l.Status)
}

func TestAplicarDesbloqueioNuncaRebaixa(t *testing.T) {
	l := &Lead{Status: StatusFinalizado, ReceitaAprovada: true, AnvisaAprovada: true}
	assert.False(t, aplicarDesbloqueio(l))
	assert.Equal(t, StatusFinalizado, l.Status)
}

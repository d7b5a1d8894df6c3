package lead

import (
	"github.com/cultivemed/api-pacientes/internal/erros"
)

// Etapas do ciclo de vida, em ordem. O status só avança nesta sequência;
// a única exceção é o salto sancionado para produtos_liberados quando as
// duas trilhas de aprovação ficam verdes.
const (
	StatusNovo              = "novo"
	StatusContatoInicial    = "contato_inicial"
	StatusAguardandoReceita = "aguardando_receita"
	StatusReceitaRecebida   = "receita_recebida"
	StatusReceitaValidada   = "receita_validada"
	StatusProdutosLiberados = "produtos_liberados"
	StatusFinalizado        = "finalizado"
)

var ordemEtapas = []string{
	StatusNovo,
	StatusContatoInicial,
	StatusAguardandoReceita,
	StatusReceitaRecebida,
	StatusReceitaValidada,
	StatusProdutosLiberados,
	StatusFinalizado,
}

var posicaoEtapa = func() map[string]int {
	m := make(map[string]int, len(ordemEtapas))
	for i, s := range ordemEtapas {
		m[s] = i
	}
	return m
}()

// EtapaValida informa se o status pertence ao conjunto fechado de etapas.
func EtapaValida(s string) bool {
	_, ok := posicaoEtapa[s]
	return ok
}

// CompararEtapas devolve <0, 0 ou >0 conforme a posição de a em relação
// a b na ordem do ciclo de vida.
func CompararEtapas(a, b string) int {
	return posicaoEtapa[a] - posicaoEtapa[b]
}

// ProximaEtapa devolve a etapa seguinte na ordem, ou TransicaoInvalida
// quando o lead já está finalizado ou o status atual é desconhecido.
func ProximaEtapa(atual string) (string, error) {
	pos, ok := posicaoEtapa[atual]
	if !ok {
		return "", erros.NovaTransicaoInvalida("status atual desconhecido: " + atual)
	}
	if atual == StatusFinalizado {
		return "", erros.NovaTransicaoInvalida("lead já finalizado")
	}
	return ordemEtapas[pos+1], nil
}

// aplicarDesbloqueio sobe o status para produtos_liberados quando as duas
// trilhas estão aprovadas e o lead ainda está atrás dessa etapa. Nunca
// rebaixa o status. Retorna true se o status mudou.
func aplicarDesbloqueio(l *Lead) bool {
	if !l.ReceitaAprovada || !l.AnvisaAprovada {
		return false
	}
	if CompararEtapas(l.Status, StatusProdutosLiberados) >= 0 {
		return false
	}
	l.Status = StatusProdutosLiberados
	return true
}

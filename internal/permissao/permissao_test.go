package permissao

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cultivemed/api-pacientes/internal/auth"
)

func TestAutorizarPapelAceito(t *testing.T) {
	id := auth.Identidade{ID: 7, Papel: auth.PapelMedico}
	d := Autorizar(id, Papeis(auth.PapelMedico, auth.PapelAdmin))
	assert.True(t, d.Permitida)
	assert.Empty(t, d.Motivo)
}

func TestAutorizarPapelForaDoConjunto(t *testing.T) {
	id := auth.Identidade{ID: 7, Papel: auth.PapelPaciente}
	d := Autorizar(id, Papeis(auth.PapelMedico, auth.PapelAdmin))
	assert.False(t, d.Permitida)
	assert.NotEmpty(t, d.Motivo)
}

func TestAutorizarAnonimaSempreFalha(t *testing.T) {
	casos := []Requisito{
		Papeis(auth.PapelAdmin),
		{PermitirVendedorExterno: true},
		{},
	}
	for _, req := range casos {
		d := Autorizar(auth.Anonima(), req)
		assert.False(t, d.Permitida)
	}
}

func TestAutorizarRequisitoVazioAceitaAutenticado(t *testing.T) {
	id := auth.Identidade{ID: 3, Papel: auth.PapelPaciente}
	assert.True(t, Autorizar(id, Requisito{}).Permitida)
}

func TestAutorizarFlagVendedorExterno(t *testing.T) {
	req := Requisito{PermitirVendedorExterno: true}

	com := auth.Identidade{ID: 4, Papel: auth.PapelVendedor, VendedorExterno: true}
	assert.True(t, Autorizar(com, req).Permitida)

	// Flag ausente conta como false, não como erro.
	sem := auth.Identidade{ID: 5, Papel: auth.PapelVendedor}
	assert.False(t, Autorizar(sem, req).Permitida)
}

func TestAutorizarDisjuncaoPapelOuFlag(t *testing.T) {
	req := Requisito{
		Papeis:                  []auth.Papel{auth.PapelConsultor},
		PermitirVendedorExterno: true,
	}

	// passa pelo papel
	consultor := auth.Identidade{ID: 1, Papel: auth.PapelConsultor}
	assert.True(t, Autorizar(consultor, req).Permitida)

	// passa pela flag mesmo com papel fora do conjunto
	vendedor := auth.Identidade{ID: 2, Papel: auth.PapelVendedor, VendedorExterno: true}
	assert.True(t, Autorizar(vendedor, req).Permitida)

	// não passa por nenhum dos dois
	paciente := auth.Identidade{ID: 3, Papel: auth.PapelPaciente}
	assert.False(t, Autorizar(paciente, req).Permitida)
}

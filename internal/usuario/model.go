package usuario

import (
	"gorm.io/gorm"

	"github.com/cultivemed/api-pacientes/internal/auth"
)

// Usuario é uma conta da plataforma: paciente, equipe interna (admin,
// médico, consultor) ou vendedor parceiro. O papel é definido no cadastro
// e só muda por ação administrativa.
type Usuario struct {
	gorm.Model
	Nome            string `json:"nome"`
	Sobrenome       string `json:"sobrenome"`
	Email           string `json:"email" gorm:"unique"`
	Telefone        string `json:"telefone"`
	Foto            string `json:"foto"`
	Senha           string `json:"-"`
	Papel           string `json:"papel"`
	VendedorExterno bool   `json:"vendedorExterno"`
	CodigoAfiliado  string `json:"codigoAfiliado,omitempty"`

	PrecisaRedefinirSenha bool `json:"-"`
}

// Identidade projeta a conta no formato usado pelo gate de acesso.
func (u *Usuario) Identidade() auth.Identidade {
	return auth.Identidade{
		ID:              u.ID,
		Papel:           auth.Papel(u.Papel),
		VendedorExterno: u.VendedorExterno,
		CodigoAfiliado:  u.CodigoAfiliado,
	}
}

func papelValido(p string) bool {
	switch auth.Papel(p) {
	case auth.PapelAdmin, auth.PapelMedico, auth.PapelConsultor,
		auth.PapelVendedor, auth.PapelPaciente:
		return true
	}
	return false
}

package usuario

import (
	"gorm.io/gorm"

	"github.com/cultivemed/api-pacientes/internal/auth"
	"github.com/cultivemed/api-pacientes/internal/notificacao"
)

// Contas adapta o repositório de usuários ao contrato do resolvedor de
// identidade (caminho alternativo por X-Usuario-Id).
type Contas struct {
	DB         *gorm.DB
	Repository Repository
}

func NovasContas(db *gorm.DB) *Contas {
	return &Contas{DB: db, Repository: NewRepository()}
}

func (c *Contas) BuscarConta(id uint) (*auth.ContaResolvida, error) {
	u, err := c.Repository.BuscarPorID(c.DB, id)
	if err != nil {
		return nil, err
	}
	return &auth.ContaResolvida{
		ID:              u.ID,
		Papel:           auth.Papel(u.Papel),
		VendedorExterno: u.VendedorExterno,
		CodigoAfiliado:  u.CodigoAfiliado,
	}, nil
}

// BuscarContato resolve os dados de contato para o worker de notificações.
func (c *Contas) BuscarContato(id uint) (*notificacao.Contato, error) {
	u, err := c.Repository.BuscarPorID(c.DB, id)
	if err != nil {
		return nil, err
	}
	return &notificacao.Contato{
		Nome:     u.Nome,
		Email:    u.Email,
		Telefone: u.Telefone,
	}, nil
}

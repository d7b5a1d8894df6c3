package lead

import (
	"time"

	"gorm.io/gorm"

	"github.com/cultivemed/api-pacientes/internal/comentario"
)

// Prioridade do acompanhamento, independente do status.
const (
	PrioridadeBaixa   = "baixa"
	PrioridadeMedia   = "media"
	PrioridadeAlta    = "alta"
	PrioridadeUrgente = "urgente"
)

// Lead é o registro de um paciente em potencial do primeiro contato até a
// liberação de produtos. O status anda apenas para frente na ordem
// definida em transicao.go; as duas trilhas de aprovação (receita e
// ANVISA) são booleanos independentes que, juntos, destravam a compra.
type Lead struct {
	ID        uint           `gorm:"primaryKey" json:"leadId"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	// PacienteID é o sujeito do acompanhamento; imutável após a criação.
	// ClienteID é a conta que abriu o lead (pode ser o próprio paciente).
	PacienteID uint `json:"pacienteId"`
	ClienteID  uint `json:"clienteId"`

	ConsultorID *uint      `json:"consultorId,omitempty"`
	AtribuidoEm *time.Time `json:"atribuidoEm,omitempty"`

	Status     string `json:"status"`
	Prioridade string `json:"prioridade"`

	ReceitaAprovada       bool   `json:"receitaAprovada"`
	MotivoRejeicaoReceita string `json:"motivoRejeicaoReceita,omitempty"`
	AnvisaAprovada        bool   `json:"anvisaAprovada"`
	MotivoRejeicaoAnvisa  string `json:"motivoRejeicaoAnvisa,omitempty"`

	// Enriquecimento de CRM; não participa da máquina de estados.
	Origem       string     `json:"origem"`
	Tags         []string   `gorm:"type:jsonb;serializer:json" json:"tags"`
	Pontuacao    int        `json:"pontuacao"`
	Orcamento    float64    `json:"orcamento"`
	DataFollowUp *time.Time `json:"dataFollowUp,omitempty"`

	Comentarios []comentario.Comentario `gorm:"foreignKey:LeadID" json:"comentarios,omitempty"`
}

func prioridadeValida(p string) bool {
	switch p {
	case PrioridadeBaixa, PrioridadeMedia, PrioridadeAlta, PrioridadeUrgente:
		return true
	}
	return false
}

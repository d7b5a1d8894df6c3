package lead

import (
	"gorm.io/gorm"

	"github.com/cultivemed/api-pacientes/internal/auth"
)

type Repository interface {
	Salvar(db *gorm.DB, l *Lead) error
	BuscarPorID(db *gorm.DB, id uint) (*Lead, error)
	// ListarParaIdentidade aplica o recorte de visibilidade na fronteira
	// do store: admin e médico enxergam tudo; consultor e vendedor apenas
	// os leads atribuídos a si; paciente apenas os próprios.
	ListarParaIdentidade(db *gorm.DB, atuante auth.Identidade) ([]Lead, error)
	Atualizar(db *gorm.DB, l *Lead) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, l *Lead) error {
	return db.Create(l).Error
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Lead, error) {
	var l Lead
	err := db.Preload("Comentarios").First(&l, id).Error
	return &l, err
}

func (r *repositoryImpl) ListarParaIdentidade(db *gorm.DB, atuante auth.Identidade) ([]Lead, error) {
	var list []Lead
	q := db.Preload("Comentarios")
	switch atuante.Papel {
	case auth.PapelAdmin, auth.PapelMedico:
		// sem filtro
	case auth.PapelConsultor, auth.PapelVendedor:
		q = q.Where("consultor_id = ?", atuante.ID)
	case auth.PapelPaciente:
		q = q.Where("paciente_id = ?", atuante.ID)
	default:
		return []Lead{}, nil
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, l *Lead) error {
	return db.Save(l).Error
}

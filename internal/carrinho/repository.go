package carrinho

import (
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	// BuscarPorChave devolve o carrinho da chave, ou um carrinho vazio
	// quando ainda não existe.
	BuscarPorChave(db *gorm.DB, chave string) (*Carrinho, error)
	Salvar(db *gorm.DB, c *Carrinho) error
	Remover(db *gorm.DB, chave string) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) BuscarPorChave(db *gorm.DB, chave string) (*Carrinho, error) {
	var c Carrinho
	err := db.Where("chave = ?", chave).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Carrinho{Chave: chave, Itens: []Item{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if c.Itens == nil {
		c.Itens = []Item{}
	}
	return &c, nil
}

func (r *repositoryImpl) Salvar(db *gorm.DB, c *Carrinho) error {
	return db.Save(c).Error
}

func (r *repositoryImpl) Remover(db *gorm.DB, chave string) error {
	return db.Where("chave = ?", chave).Delete(&Carrinho{}).Error
}

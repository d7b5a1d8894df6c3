package carrinho

import (
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/cultivemed/api-pacientes/internal/auth"
	"github.com/cultivemed/api-pacientes/internal/erros"
)

// Service isola o carrinho de cada identidade. A chave de armazenamento é
// resolvida de novo em toda operação, nunca guardada entre chamadas: após
// um login na mesma sessão de navegação as operações passam a enxergar o
// carrinho da conta, não o anônimo.
type Service struct {
	DB         *gorm.DB
	Repository Repository

	mu     sync.Mutex
	travas map[string]*sync.Mutex
}

func NewService(db *gorm.DB, repo Repository) *Service {
	return &Service{
		DB:         db,
		Repository: repo,
		travas:     make(map[string]*sync.Mutex),
	}
}

// ChaveDe resolve a chave de armazenamento da identidade atual.
func ChaveDe(atuante auth.Identidade) (string, error) {
	if !atuante.EhAnonima() {
		return fmt.Sprintf("usuario:%d", atuante.ID), nil
	}
	if atuante.ChaveSessao == "" {
		return "", erros.NovaValidacao("sessao", "sessão de navegação ausente")
	}
	return "anon:" + atuante.ChaveSessao, nil
}

func (s *Service) travaDaChave(chave string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.travas[chave]
	if !ok {
		tr = &sync.Mutex{}
		s.travas[chave] = tr
	}
	return tr
}

// Obter devolve o carrinho ativo da identidade.
func (s *Service) Obter(atuante auth.Identidade) (*Carrinho, error) {
	chave, err := ChaveDe(atuante)
	if err != nil {
		return nil, err
	}
	return s.Repository.BuscarPorChave(s.DB, chave)
}

// AdicionarItem acrescenta quantidade ao item, capturando o preço unitário
// do momento da adição.
func (s *Service) AdicionarItem(atuante auth.Identidade, produtoID uint, quantidade int, precoUnitario float64) (*Carrinho, error) {
	if produtoID == 0 {
		return nil, erros.NovaValidacao("produtoId", "obrigatório")
	}
	if quantidade <= 0 {
		return nil, erros.NovaValidacao("quantidade", "deve ser positiva")
	}
	return s.mutar(atuante, func(c *Carrinho) error {
		for i := range c.Itens {
			if c.Itens[i].ProdutoID == produtoID {
				c.Itens[i].Quantidade += quantidade
				return nil
			}
		}
		c.Itens = append(c.Itens, Item{
			ProdutoID:     produtoID,
			Quantidade:    quantidade,
			PrecoUnitario: precoUnitario,
		})
		return nil
	})
}

// DefinirQuantidade fixa a quantidade de um item já presente.
func (s *Service) DefinirQuantidade(atuante auth.Identidade, produtoID uint, quantidade int) (*Carrinho, error) {
	if quantidade <= 0 {
		return nil, erros.NovaValidacao("quantidade", "deve ser positiva")
	}
	return s.mutar(atuante, func(c *Carrinho) error {
		for i := range c.Itens {
			if c.Itens[i].ProdutoID == produtoID {
				c.Itens[i].Quantidade = quantidade
				return nil
			}
		}
		return erros.NovoNaoEncontrado("item do carrinho")
	})
}

// RemoverItem tira o produto do carrinho.
func (s *Service) RemoverItem(atuante auth.Identidade, produtoID uint) (*Carrinho, error) {
	return s.mutar(atuante, func(c *Carrinho) error {
		for i := range c.Itens {
			if c.Itens[i].ProdutoID == produtoID {
				c.Itens = append(c.Itens[:i], c.Itens[i+1:]...)
				return nil
			}
		}
		return erros.NovoNaoEncontrado("item do carrinho")
	})
}

// Limpar esvazia o carrinho da identidade.
func (s *Service) Limpar(atuante auth.Identidade) error {
	chave, err := ChaveDe(atuante)
	if err != nil {
		return err
	}
	tr := s.travaDaChave(chave)
	tr.Lock()
	defer tr.Unlock()
	return s.Repository.Remover(s.DB, chave)
}

// mutar resolve a chave, serializa por chave e grava o resultado. Chaves
// diferentes nunca se bloqueiam.
func (s *Service) mutar(atuante auth.Identidade, op func(*Carrinho) error) (*Carrinho, error) {
	chave, err := ChaveDe(atuante)
	if err != nil {
		return nil, err
	}

	tr := s.travaDaChave(chave)
	tr.Lock()
	defer tr.Unlock()

	c, err := s.Repository.BuscarPorChave(s.DB, chave)
	if err != nil {
		return nil, err
	}
	if err := op(c); err != nil {
		return nil, err
	}
	if err := s.Repository.Salvar(s.DB, c); err != nil {
		return nil, err
	}
	return c, nil
}

package carrinho

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cultivemed/api-pacientes/internal/auth"
	"github.com/cultivemed/api-pacientes/internal/erros"
)

// repositorioMemoria guarda carrinhos por chave; chave ausente devolve um
// carrinho vazio, como o store real. O *gorm.DB recebido é ignorado.
type repositorioMemoria struct {
	mu        sync.Mutex
	carrinhos map[string]Carrinho
}

func novoRepositorioMemoria() *repositorioMemoria {
	return &repositorioMemoria{carrinhos: make(map[string]Carrinho)}
}

func (r *repositorioMemoria) BuscarPorChave(_ *gorm.DB, chave string) (*Carrinho, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carrinhos[chave]
	if !ok {
		return &Carrinho{Chave: chave, Itens: []Item{}}, nil
	}
	copia := c
	return &copia, nil
}

func (r *repositorioMemoria) Salvar(_ *gorm.DB, c *Carrinho) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carrinhos[c.Chave] = *c
	return nil
}

func (r *repositorioMemoria) Remover(_ *gorm.DB, chave string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carrinhos, chave)
	return nil
}

func montarServico(t *testing.T) (*Service, *repositorioMemoria) {
	t.Helper()
	repo := novoRepositorioMemoria()
	return NewService(nil, repo), repo
}

var (
	usuaria = auth.Identidade{ID: 7, Papel: auth.PapelPaciente}
	anonimo = auth.Identidade{Papel: auth.PapelAnonimo, ChaveSessao: "s-123"}
)

func TestChaveDe(t *testing.T) {
	chave, err := ChaveDe(usuaria)
	require.NoError(t, err)
	assert.Equal(t, "usuario:7", chave)

	chave, err = ChaveDe(anonimo)
	require.NoError(t, err)
	assert.Equal(t, "anon:s-123", chave)
}

func TestChaveDeAnonimoSemSessao(t *testing.T) {
	_, err := ChaveDe(auth.Anonima())

	var validacao *erros.Validacao
	assert.ErrorAs(t, err, &validacao)
}

func TestAdicionarItemAcumulaQuantidade(t *testing.T) {
	s, _ := montarServico(t)

	_, err := s.AdicionarItem(usuaria, 1, 2, 99.90)
	require.NoError(t, err)
	c, err := s.AdicionarItem(usuaria, 1, 3, 120.00)
	require.NoError(t, err)

	require.Len(t, c.Itens, 1)
	assert.Equal(t, 5, c.Itens[0].Quantidade)
	assert.Equal(t, 99.90, c.Itens[0].PrecoUnitario, "mantém o preço da primeira adição")
}

func TestAdicionarItemValida(t *testing.T) {
	s, _ := montarServico(t)

	_, err := s.AdicionarItem(usuaria, 0, 1, 10)
	var validacao *erros.Validacao
	assert.ErrorAs(t, err, &validacao)

	_, err = s.AdicionarItem(usuaria, 1, 0, 10)
	assert.ErrorAs(t, err, &validacao)
}

func TestDefinirQuantidade(t *testing.T) {
	s, _ := montarServico(t)
	_, err := s.AdicionarItem(usuaria, 1, 2, 50)
	require.NoError(t, err)

	c, err := s.DefinirQuantidade(usuaria, 1, 9)

	require.NoError(t, err)
	assert.Equal(t, 9, c.Itens[0].Quantidade)
}

func TestDefinirQuantidadeDeItemAusente(t *testing.T) {
	s, _ := montarServico(t)

	_, err := s.DefinirQuantidade(usuaria, 404, 1)

	var naoEncontrado *erros.NaoEncontrado
	assert.ErrorAs(t, err, &naoEncontrado)
}

func TestRemoverItem(t *testing.T) {
	s, _ := montarServico(t)
	_, err := s.AdicionarItem(usuaria, 1, 1, 10)
	require.NoError(t, err)
	_, err = s.AdicionarItem(usuaria, 2, 1, 20)
	require.NoError(t, err)

	c, err := s.RemoverItem(usuaria, 1)

	require.NoError(t, err)
	require.Len(t, c.Itens, 1)
	assert.Equal(t, uint(2), c.Itens[0].ProdutoID)
}

func TestLimpar(t *testing.T) {
	s, _ := montarServico(t)
	_, err := s.AdicionarItem(usuaria, 1, 1, 10)
	require.NoError(t, err)

	require.NoError(t, s.Limpar(usuaria))

	c, err := s.Obter(usuaria)
	require.NoError(t, err)
	assert.Empty(t, c.Itens)
}

func TestCarrinhosDeIdentidadesDiferentesNaoSeMisturam(t *testing.T) {
	s, _ := montarServico(t)
	outra := auth.Identidade{ID: 8, Papel: auth.PapelPaciente}

	_, err := s.AdicionarItem(usuaria, 1, 1, 10)
	require.NoError(t, err)
	_, err = s.AdicionarItem(outra, 2, 1, 20)
	require.NoError(t, err)

	c, err := s.Obter(usuaria)
	require.NoError(t, err)
	require.Len(t, c.Itens, 1)
	assert.Equal(t, uint(1), c.Itens[0].ProdutoID)

	c, err = s.Obter(outra)
	require.NoError(t, err)
	require.Len(t, c.Itens, 1)
	assert.Equal(t, uint(2), c.Itens[0].ProdutoID)
}

// Após o login, as operações passam a resolver a chave da conta: o carrinho
// anônimo da sessão fica para trás e a conta enxerga só o próprio carrinho.
func TestLoginTrocaDeCarrinho(t *testing.T) {
	s, _ := montarServico(t)

	_, err := s.AdicionarItem(anonimo, 1, 1, 10)
	require.NoError(t, err)
	_, err = s.AdicionarItem(usuaria, 2, 1, 20)
	require.NoError(t, err)

	logada := usuaria
	logada.ChaveSessao = anonimo.ChaveSessao
	c, err := s.Obter(logada)

	require.NoError(t, err)
	require.Len(t, c.Itens, 1)
	assert.Equal(t, uint(2), c.Itens[0].ProdutoID)
}

func TestTotal(t *testing.T) {
	s, _ := montarServico(t)
	_, err := s.AdicionarItem(usuaria, 1, 2, 10.50)
	require.NoError(t, err)
	c, err := s.AdicionarItem(usuaria, 2, 1, 5)
	require.NoError(t, err)

	assert.InDelta(t, 26.00, c.Total(), 0.001)
}

func TestOperacoesConcorrentesNaMesmaChave(t *testing.T) {
	s, _ := montarServico(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AdicionarItem(usuaria, 1, 1, 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := s.Obter(usuaria)
	require.NoError(t, err)
	require.Len(t, c.Itens, 1)
	assert.Equal(t, 10, c.Itens[0].Quantidade)
}

package usuario

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cultivemed/api-pacientes/internal/auth"
	"github.com/cultivemed/api-pacientes/internal/utils"
)

// repositorioMemoria guarda contas em memória; o *gorm.DB é ignorado.
type repositorioMemoria struct {
	seq      uint
	usuarios map[uint]Usuario
}

func novoRepositorioMemoria() *repositorioMemoria {
	return &repositorioMemoria{usuarios: make(map[uint]Usuario)}
}

func (r *repositorioMemoria) Salvar(_ *gorm.DB, u *Usuario) error {
	r.seq++
	u.ID = r.seq
	r.usuarios[u.ID] = *u
	return nil
}

func (r *repositorioMemoria) BuscarPorID(_ *gorm.DB, id uint) (*Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := u
	return &copia, nil
}

func (r *repositorioMemoria) BuscarPorEmail(_ *gorm.DB, email string) (*Usuario, error) {
	for _, u := range r.usuarios {
		if u.Email == email {
			copia := u
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *repositorioMemoria) ListarTodos(_ *gorm.DB) ([]Usuario, error) {
	var list []Usuario
	for _, u := range r.usuarios {
		list = append(list, u)
	}
	return list, nil
}

func (r *repositorioMemoria) Atualizar(_ *gorm.DB, u *Usuario) error {
	r.usuarios[u.ID] = *u
	return nil
}

func (r *repositorioMemoria) Deletar(_ *gorm.DB, id uint) error {
	delete(r.usuarios, id)
	return nil
}

func montarHandler(t *testing.T) (*Handler, *repositorioMemoria) {
	t.Helper()
	repo := novoRepositorioMemoria()
	return &Handler{Repository: repo}, repo
}

func requisicao(t *testing.T, atuante auth.Identidade, corpo interface{}) *http.Request {
	t.Helper()
	var body bytes.Buffer
	require.NoError(t, json.NewEncoder(&body).Encode(corpo))
	req := httptest.NewRequest(http.MethodPost, "/", &body)
	ctx := context.WithValue(req.Context(), auth.CtxIdentidade, atuante)
	return req.WithContext(ctx)
}

func cadastrarComSenha(t *testing.T, repo *repositorioMemoria, email, senha string, precisaRedefinir bool) Usuario {
	t.Helper()
	hash, err := utils.HashSenha(senha)
	require.NoError(t, err)
	u := Usuario{
		Email:                 email,
		Senha:                 hash,
		Papel:                 string(auth.PapelConsultor),
		PrecisaRedefinirSenha: precisaRedefinir,
	}
	require.NoError(t, repo.Salvar(nil, &u))
	return u
}

func TestLoginEmiteToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "segredo-de-teste")
	h, repo := montarHandler(t)
	cadastrarComSenha(t, repo, "ana@exemplo.com", "s3nh4", false)

	rec := httptest.NewRecorder()
	h.Login(rec, requisicao(t, auth.Anonima(), LoginRequest{Login: "ana@exemplo.com", Password: "s3nh4"}))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp["token"])
}

func TestLoginComRedefinicaoPendenteBloqueiaEGeraSenhaTemporaria(t *testing.T) {
	t.Setenv("JWT_SECRET", "segredo-de-teste")
	h, repo := montarHandler(t)
	u := cadastrarComSenha(t, repo, "bia@exemplo.com", "provisoria", true)
	hashAntes := repo.usuarios[u.ID].Senha

	rec := httptest.NewRecorder()
	h.Login(rec, requisicao(t, auth.Anonima(), LoginRequest{Login: "bia@exemplo.com", Password: "provisoria"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Redefina sua senha")
	assert.NotContains(t, rec.Body.String(), "token")

	depois := repo.usuarios[u.ID]
	assert.NotEqual(t, hashAntes, depois.Senha, "uma senha temporária nova é gravada")
	assert.True(t, depois.PrecisaRedefinirSenha, "o bloqueio continua até a redefinição")
}

func TestRedefinirSenhaLiberaOLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "segredo-de-teste")
	h, repo := montarHandler(t)
	u := cadastrarComSenha(t, repo, "caio@exemplo.com", "provisoria", true)

	rec := httptest.NewRecorder()
	h.RedefinirSenha(rec, requisicao(t, auth.Anonima(), redefinirSenhaRequest{
		Email:      "caio@exemplo.com",
		SenhaAtual: "provisoria",
		NovaSenha:  "definitiva",
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, repo.usuarios[u.ID].PrecisaRedefinirSenha)

	rec = httptest.NewRecorder()
	h.Login(rec, requisicao(t, auth.Anonima(), LoginRequest{Login: "caio@exemplo.com", Password: "definitiva"}))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp["token"])
}

func TestRedefinirSenhaComSenhaAtualErrada(t *testing.T) {
	h, repo := montarHandler(t)
	cadastrarComSenha(t, repo, "davi@exemplo.com", "provisoria", true)

	rec := httptest.NewRecorder()
	h.RedefinirSenha(rec, requisicao(t, auth.Anonima(), redefinirSenhaRequest{
		Email:      "davi@exemplo.com",
		SenhaAtual: "chute",
		NovaSenha:  "definitiva",
	}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegistrarEquipeSemSenhaProvisiona(t *testing.T) {
	h, repo := montarHandler(t)
	adminAtuante := auth.Identidade{ID: 1, Papel: auth.PapelAdmin}

	rec := httptest.NewRecorder()
	h.Registrar(rec, requisicao(t, adminAtuante, criarUsuarioRequest{
		Email: "novo.medico@exemplo.com",
		Papel: string(auth.PapelMedico),
	}))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Usuario
		SenhaTemporaria string `json:"senhaTemporaria"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.SenhaTemporaria)

	criado := repo.usuarios[resp.ID]
	assert.True(t, criado.PrecisaRedefinirSenha)
	assert.True(t, utils.CheckSenha(criado.Senha, resp.SenhaTemporaria))
}

func TestRegistrarPacienteExigeSenha(t *testing.T) {
	h, _ := montarHandler(t)

	rec := httptest.NewRecorder()
	h.Registrar(rec, requisicao(t, auth.Anonima(), criarUsuarioRequest{
		Email: "paciente@exemplo.com",
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

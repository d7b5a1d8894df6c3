package usuario

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/cultivemed/api-pacientes/internal/auth"
	"github.com/cultivemed/api-pacientes/internal/utils"
)

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type criarUsuarioRequest struct {
	Nome            string `json:"nome"`
	Sobrenome       string `json:"sobrenome"`
	Email           string `json:"email"`
	Telefone        string `json:"telefone"`
	Foto            string `json:"foto"`
	Senha           string `json:"senha"`
	Papel           string `json:"papel"`
	VendedorExterno bool   `json:"vendedorExterno"`
	CodigoAfiliado  string `json:"codigoAfiliado"`
}

// Handler encapsula DB e repository
type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

// NewHandler retorna um handler inicializado
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
	}
}

// Login gera um JWT para credenciais válidas
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	user, err := h.Repository.BuscarPorEmail(h.DB, strings.TrimSpace(req.Login))
	if err != nil {
		http.Error(w, "credenciais inválidas", http.StatusUnauthorized)
		return
	}

	// Conta provisionada ainda sem senha própria: uma temporária é gerada
	// e enviada ao titular; o login fica bloqueado até a redefinição.
	if user.PrecisaRedefinirSenha {
		senhaTemporaria, err := utils.GerarSenhaTemporaria()
		if err != nil {
			http.Error(w, "erro ao processar senha", http.StatusInternalServerError)
			return
		}
		hash, err := utils.HashSenha(senhaTemporaria)
		if err != nil {
			http.Error(w, "erro ao processar senha", http.StatusInternalServerError)
			return
		}
		user.Senha = hash
		if err := h.Repository.Atualizar(h.DB, user); err != nil {
			http.Error(w, "erro ao atualizar usuário", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("Senha temporária gerada. Redefina sua senha."))
		return
	}

	if !utils.CheckSenha(user.Senha, req.Password) {
		http.Error(w, "senha incorreta", http.StatusUnauthorized)
		return
	}

	token, err := auth.GerarToken(user.Identidade())
	if err != nil {
		http.Error(w, "erro ao gerar token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// Registrar cadastra nova conta (livre de autenticação). Contas criadas
// pelo cadastro público nascem como paciente; os demais papéis só podem
// ser atribuídos por um admin autenticado.
func (h *Handler) Registrar(w http.ResponseWriter, r *http.Request) {
	var req criarUsuarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		http.Error(w, "email é obrigatório", http.StatusBadRequest)
		return
	}

	papel := strings.TrimSpace(req.Papel)
	if papel == "" {
		papel = string(auth.PapelPaciente)
	}
	if !papelValido(papel) {
		http.Error(w, "papel inválido", http.StatusBadRequest)
		return
	}
	atuante := auth.IdentidadeDoContexto(r.Context())
	if papel != string(auth.PapelPaciente) && atuante.Papel != auth.PapelAdmin {
		http.Error(w, "apenas admin pode criar contas de equipe", http.StatusForbidden)
		return
	}

	// Contas de equipe podem ser provisionadas sem senha: uma temporária é
	// gerada e o primeiro acesso exige redefinição.
	senha := req.Senha
	senhaTemporaria := ""
	if senha == "" {
		if papel == string(auth.PapelPaciente) {
			http.Error(w, "email e senha são obrigatórios", http.StatusBadRequest)
			return
		}
		var err error
		senhaTemporaria, err = utils.GerarSenhaTemporaria()
		if err != nil {
			http.Error(w, "erro ao processar senha", http.StatusInternalServerError)
			return
		}
		senha = senhaTemporaria
	}

	hash, err := utils.HashSenha(senha)
	if err != nil {
		http.Error(w, "erro ao processar senha", http.StatusInternalServerError)
		return
	}

	u := Usuario{
		Nome:            req.Nome,
		Sobrenome:       req.Sobrenome,
		Email:           strings.TrimSpace(req.Email),
		Telefone:        req.Telefone,
		Foto:            req.Foto,
		Senha:           hash,
		Papel:           papel,
		VendedorExterno: req.VendedorExterno,
		CodigoAfiliado:  req.CodigoAfiliado,

		PrecisaRedefinirSenha: senhaTemporaria != "",
	}

	if err := h.Repository.Salvar(h.DB, &u); err != nil {
		http.Error(w, "erro ao salvar usuário", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if senhaTemporaria != "" {
		json.NewEncoder(w).Encode(struct {
			Usuario
			SenhaTemporaria string `json:"senhaTemporaria"`
		}{u, senhaTemporaria})
		return
	}
	json.NewEncoder(w).Encode(u)
}

type redefinirSenhaRequest struct {
	Email      string `json:"email"`
	SenhaAtual string `json:"senhaAtual"`
	NovaSenha  string `json:"novaSenha"`
}

// RedefinirSenha troca a senha mediante a senha atual (ou a temporária) e
// libera o login de contas provisionadas.
func (h *Handler) RedefinirSenha(w http.ResponseWriter, r *http.Request) {
	var req redefinirSenhaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}
	if req.NovaSenha == "" {
		http.Error(w, "o campo 'novaSenha' é obrigatório", http.StatusBadRequest)
		return
	}

	user, err := h.Repository.BuscarPorEmail(h.DB, strings.TrimSpace(req.Email))
	if err != nil {
		http.Error(w, "credenciais inválidas", http.StatusUnauthorized)
		return
	}
	if !utils.CheckSenha(user.Senha, req.SenhaAtual) {
		http.Error(w, "senha incorreta", http.StatusUnauthorized)
		return
	}

	hash, err := utils.HashSenha(req.NovaSenha)
	if err != nil {
		http.Error(w, "erro ao processar senha", http.StatusInternalServerError)
		return
	}
	user.Senha = hash
	user.PrecisaRedefinirSenha = false
	if err := h.Repository.Atualizar(h.DB, user); err != nil {
		http.Error(w, "erro ao atualizar usuário", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Senha redefinida com sucesso"))
}

// Listar retorna todos os usuários (admin) ou apenas o próprio registro.
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentidadeDoContexto(r.Context())

	if id.Papel == auth.PapelAdmin {
		usuarios, err := h.Repository.ListarTodos(h.DB)
		if err != nil {
			http.Error(w, "erro ao listar usuários", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(usuarios)
		return
	}

	obj, err := h.Repository.BuscarPorID(h.DB, id.ID)
	if err != nil {
		http.Error(w, "usuário não encontrado", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode([]Usuario{*obj})
}

// BuscarPorID retorna um usuário pelo ID (admin ou o próprio).
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	atuante := auth.IdentidadeDoContexto(r.Context())

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	if atuante.Papel != auth.PapelAdmin && uint(id) != atuante.ID {
		http.Error(w, "acesso negado", http.StatusForbidden)
		return
	}

	obj, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "usuário não encontrado", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(obj)
}

// Atualizar altera dados de perfil de uma conta existente. Papel e flag de
// vendedor externo são imutáveis por esta rota.
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	atuante := auth.IdentidadeDoContexto(r.Context())

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	if atuante.Papel != auth.PapelAdmin && uint(id) != atuante.ID {
		http.Error(w, "acesso negado", http.StatusForbidden)
		return
	}

	existente, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "usuário não encontrado", http.StatusNotFound)
		return
	}

	var dados struct {
		Nome      string `json:"nome"`
		Sobrenome string `json:"sobrenome"`
		Telefone  string `json:"telefone"`
		Foto      string `json:"foto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&dados); err != nil {
		http.Error(w, "payload inválido", http.StatusBadRequest)
		return
	}

	existente.Nome = dados.Nome
	existente.Sobrenome = dados.Sobrenome
	existente.Telefone = dados.Telefone
	existente.Foto = dados.Foto

	if err := h.Repository.Atualizar(h.DB, existente); err != nil {
		http.Error(w, "erro ao atualizar usuário", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(existente)
}

// Deletar remove uma conta (somente admin).
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	atuante := auth.IdentidadeDoContexto(r.Context())
	if atuante.Papel != auth.PapelAdmin {
		http.Error(w, "acesso negado", http.StatusForbidden)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	if err := h.Repository.Deletar(h.DB, uint(id)); err != nil {
		http.Error(w, "erro ao excluir usuário", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package comentario

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/cultivemed/api-pacientes/internal/auth"
	"github.com/cultivemed/api-pacientes/internal/erros"
)

// VerificadorDeLead decide se a identidade pode ver o lead dono dos
// comentários. Implementado pelo serviço de leads.
type VerificadorDeLead interface {
	VerificarAcesso(atuante auth.Identidade, leadID uint) error
}

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Leads      VerificadorDeLead
}

func NewHandler(db *gorm.DB, leads VerificadorDeLead) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Leads:      leads,
	}
}

type criarComentarioRequest struct {
	Texto   string `json:"texto"`
	Sistema bool   `json:"sistema,omitempty"`
}

// Criar trata POST /leads/{id}/comentarios
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	leadID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de lead inválido", http.StatusBadRequest)
		return
	}

	atuante := auth.IdentidadeDoContexto(r.Context())
	if !atuante.EhEquipe() {
		http.Error(w, "acesso negado", http.StatusForbidden)
		return
	}
	if err := h.Leads.VerificarAcesso(atuante, uint(leadID)); err != nil {
		erros.EscreverHTTP(w, err)
		return
	}

	var req criarComentarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if req.Texto == "" {
		http.Error(w, "O campo 'texto' é obrigatório", http.StatusBadRequest)
		return
	}

	// Comentários de sistema não têm autor; registram eventos automáticos.
	autorID := atuante.ID
	if req.Sistema {
		autorID = 0
	}

	c := Comentario{
		Texto:   req.Texto,
		LeadID:  uint(leadID),
		AutorID: autorID,
		Sistema: req.Sistema,
	}
	if err := h.Repository.Criar(h.DB, &c); err != nil {
		http.Error(w, "Erro ao criar comentário", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(c)
}

// ListarPorLead trata GET /leads/{id}/comentarios
func (h *Handler) ListarPorLead(w http.ResponseWriter, r *http.Request) {
	leadID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de lead inválido", http.StatusBadRequest)
		return
	}

	atuante := auth.IdentidadeDoContexto(r.Context())
	if err := h.Leads.VerificarAcesso(atuante, uint(leadID)); err != nil {
		erros.EscreverHTTP(w, err)
		return
	}

	comentarios, err := h.Repository.ListarPorLead(h.DB, uint(leadID))
	if err != nil {
		http.Error(w, "Erro ao listar comentários", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(comentarios)
}

// carregar resolve o comentário da rota e garante que pertence ao lead
// da URL e que a identidade pode mexer nele (autor ou admin; comentários
// de sistema só por admin).
func (h *Handler) carregar(w http.ResponseWriter, r *http.Request) (*Comentario, bool) {
	vars := mux.Vars(r)
	leadID, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "ID de lead inválido", http.StatusBadRequest)
		return nil, false
	}
	comentarioID, err := strconv.Atoi(vars["cid"])
	if err != nil {
		http.Error(w, "ID de comentário inválido", http.StatusBadRequest)
		return nil, false
	}

	atuante := auth.IdentidadeDoContexto(r.Context())
	if err := h.Leads.VerificarAcesso(atuante, uint(leadID)); err != nil {
		erros.EscreverHTTP(w, err)
		return nil, false
	}

	c, err := h.Repository.BuscarPorID(h.DB, uint(comentarioID))
	if err != nil || c.LeadID != uint(leadID) {
		http.Error(w, "Comentário não encontrado", http.StatusNotFound)
		return nil, false
	}
	if atuante.Papel != auth.PapelAdmin && (c.Sistema || c.AutorID != atuante.ID) {
		http.Error(w, "apenas o autor ou um admin", http.StatusForbidden)
		return nil, false
	}
	return c, true
}

// Atualizar trata PUT /leads/{id}/comentarios/{cid}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	c, ok := h.carregar(w, r)
	if !ok {
		return
	}

	var req criarComentarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if req.Texto == "" {
		http.Error(w, "O campo 'texto' é obrigatório", http.StatusBadRequest)
		return
	}

	if err := h.Repository.Atualizar(h.DB, c.ID, req.Texto); err != nil {
		http.Error(w, "Erro ao atualizar comentário", http.StatusInternalServerError)
		return
	}
	c.Texto = req.Texto
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

// Remover trata DELETE /leads/{id}/comentarios/{cid}
func (h *Handler) Remover(w http.ResponseWriter, r *http.Request) {
	c, ok := h.carregar(w, r)
	if !ok {
		return
	}

	if err := h.Repository.Remover(h.DB, c.ID); err != nil {
		http.Error(w, "Erro ao remover comentário", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Comentário removido com sucesso"))
}

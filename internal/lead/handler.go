package lead

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/cultivemed/api-pacientes/internal/auth"
	"github.com/cultivemed/api-pacientes/internal/erros"
	"github.com/cultivemed/api-pacientes/internal/metrics"
)

// Handler expõe o serviço de leads por HTTP.
type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

type rejeitarRequest struct {
	Motivo string `json:"motivo"`
}

type atribuirRequest struct {
	ConsultorID uint `json:"consultorId"`
}

func idDaRota(r *http.Request) (uint, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 0 {
		return 0, erros.NovaValidacao("id", "inválido")
	}
	return uint(id), nil
}

func responder(w http.ResponseWriter, status int, corpo interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(corpo)
}

// Criar trata POST /leads
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var in CriarInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	atuante := auth.IdentidadeDoContexto(r.Context())
	l, err := h.Service.Criar(atuante, in)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	metrics.RegistrarLeadCriado(l.Origem)
	responder(w, http.StatusCreated, l)
}

// Listar trata GET /leads
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	atuante := auth.IdentidadeDoContexto(r.Context())
	list, err := h.Service.Listar(atuante)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	responder(w, http.StatusOK, list)
}

// BuscarPorID trata GET /leads/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	atuante := auth.IdentidadeDoContexto(r.Context())
	l, err := h.Service.Buscar(atuante, id)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	responder(w, http.StatusOK, l)
}

// Atualizar trata PATCH /leads/{id} (somente campos de CRM)
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	var p Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	atuante := auth.IdentidadeDoContexto(r.Context())
	l, err := h.Service.AtualizarCampos(atuante, id, p)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	responder(w, http.StatusOK, l)
}

// AtribuirConsultor trata PATCH /leads/{id}/consultor
func (h *Handler) AtribuirConsultor(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	var req atribuirRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConsultorID == 0 {
		http.Error(w, "o campo 'consultorId' é obrigatório", http.StatusBadRequest)
		return
	}
	atuante := auth.IdentidadeDoContexto(r.Context())
	l, err := h.Service.AtribuirConsultor(atuante, id, req.ConsultorID)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	responder(w, http.StatusOK, l)
}

// AvancarEtapa trata POST /leads/{id}/avancar
func (h *Handler) AvancarEtapa(w http.ResponseWriter, r *http.Request) {
	id, err := idDaRota(r)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	atuante := auth.IdentidadeDoContexto(r.Context())
	l, err := h.Service.AvancarEtapa(atuante, id)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	metrics.RegistrarTransicao(l.Status)
	responder(w, http.StatusOK, l)
}

// AprovarReceita trata POST /leads/{id}/receita/aprovar
func (h *Handler) AprovarReceita(w http.ResponseWriter, r *http.Request) {
	h.aprovacao(w, r, h.Service.AprovarReceita, "receita")
}

// AprovarAnvisa trata POST /leads/{id}/anvisa/aprovar
func (h *Handler) AprovarAnvisa(w http.ResponseWriter, r *http.Request) {
	h.aprovacao(w, r, h.Service.AprovarAnvisa, "anvisa")
}

// RejeitarReceita trata POST /leads/{id}/receita/rejeitar
func (h *Handler) RejeitarReceita(w http.ResponseWriter, r *http.Request) {
	h.rejeicao(w, r, h.Service.RejeitarReceita, "receita")
}

// RejeitarAnvisa trata POST /leads/{id}/anvisa/rejeitar
func (h *Handler) RejeitarAnvisa(w http.ResponseWriter, r *http.Request) {
	h.rejeicao(w, r, h.Service.RejeitarAnvisa, "anvisa")
}

func (h *Handler) aprovacao(w http.ResponseWriter, r *http.Request, op func(auth.Identidade, uint) (*Lead, error), trilha string) {
	id, err := idDaRota(r)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	atuante := auth.IdentidadeDoContexto(r.Context())
	l, err := op(atuante, id)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	metrics.RegistrarAprovacao(trilha, "aprovado")
	responder(w, http.StatusOK, l)
}

func (h *Handler) rejeicao(w http.ResponseWriter, r *http.Request, op func(auth.Identidade, uint, string) (*Lead, error), trilha string) {
	id, err := idDaRota(r)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	var req rejeitarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	atuante := auth.IdentidadeDoContexto(r.Context())
	l, err := op(atuante, id, req.Motivo)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	metrics.RegistrarAprovacao(trilha, "rejeitado")
	responder(w, http.StatusOK, l)
}

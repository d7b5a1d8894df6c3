package carrinho

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/cultivemed/api-pacientes/internal/auth"
	"github.com/cultivemed/api-pacientes/internal/erros"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

type adicionarItemRequest struct {
	ProdutoID     uint    `json:"produtoId"`
	Quantidade    int     `json:"quantidade"`
	PrecoUnitario float64 `json:"precoUnitario"`
}

type definirQuantidadeRequest struct {
	Quantidade int `json:"quantidade"`
}

// identidade garante uma chave de sessão para visitantes: se a requisição
// anônima chegou sem cookie, um novo é emitido antes da operação.
func (h *Handler) identidade(w http.ResponseWriter, r *http.Request) auth.Identidade {
	id := auth.IdentidadeDoContexto(r.Context())
	if id.EhAnonima() && id.ChaveSessao == "" {
		id.ChaveSessao = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieSessaoAnonima,
			Value:    id.ChaveSessao,
			Path:     "/",
			HttpOnly: true,
		})
	}
	return id
}

func responder(w http.ResponseWriter, status int, corpo interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(corpo)
}

// Obter trata GET /carrinho
func (h *Handler) Obter(w http.ResponseWriter, r *http.Request) {
	id := h.identidade(w, r)
	c, err := h.Service.Obter(id)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	responder(w, http.StatusOK, c)
}

// AdicionarItem trata POST /carrinho/itens
func (h *Handler) AdicionarItem(w http.ResponseWriter, r *http.Request) {
	var req adicionarItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	id := h.identidade(w, r)
	c, err := h.Service.AdicionarItem(id, req.ProdutoID, req.Quantidade, req.PrecoUnitario)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	responder(w, http.StatusOK, c)
}

// DefinirQuantidade trata PATCH /carrinho/itens/{produtoId}
func (h *Handler) DefinirQuantidade(w http.ResponseWriter, r *http.Request) {
	produtoID, err := strconv.Atoi(mux.Vars(r)["produtoId"])
	if err != nil || produtoID < 0 {
		http.Error(w, "ID de produto inválido", http.StatusBadRequest)
		return
	}

	var req definirQuantidadeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	id := h.identidade(w, r)
	c, err := h.Service.DefinirQuantidade(id, uint(produtoID), req.Quantidade)
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	responder(w, http.StatusOK, c)
}

// RemoverItem trata DELETE /carrinho/itens/{produtoId}
func (h *Handler) RemoverItem(w http.ResponseWriter, r *http.Request) {
	produtoID, err := strconv.Atoi(mux.Vars(r)["produtoId"])
	if err != nil || produtoID < 0 {
		http.Error(w, "ID de produto inválido", http.StatusBadRequest)
		return
	}

	id := h.identidade(w, r)
	c, err := h.Service.RemoverItem(id, uint(produtoID))
	if err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	responder(w, http.StatusOK, c)
}

// Limpar trata DELETE /carrinho
func (h *Handler) Limpar(w http.ResponseWriter, r *http.Request) {
	id := h.identidade(w, r)
	if err := h.Service.Limpar(id); err != nil {
		erros.EscreverHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package lead

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/cultivemed/api-pacientes/internal/auth"
	"github.com/cultivemed/api-pacientes/internal/erros"
	"github.com/cultivemed/api-pacientes/internal/notificacao"
	"github.com/cultivemed/api-pacientes/internal/permissao"
)

// Service concentra as regras de negócio do lead: criação, recorte de
// visibilidade, avanço de etapa e as duas trilhas de aprovação. Toda
// mutação de um mesmo lead é serializada por um mutex por ID, de modo que
// o desbloqueio automático é avaliado junto com a escrita que ligou a
// segunda trilha.
type Service struct {
	DB          *gorm.DB
	Repository  Repository
	Notificador notificacao.Dispatcher

	mu     sync.Mutex
	travas map[uint]*sync.Mutex
}

func NewService(db *gorm.DB, repo Repository, disp notificacao.Dispatcher) *Service {
	return &Service{
		DB:          db,
		Repository:  repo,
		Notificador: disp,
		travas:      make(map[uint]*sync.Mutex),
	}
}

func (s *Service) travaDoLead(id uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.travas[id]
	if !ok {
		tr = &sync.Mutex{}
		s.travas[id] = tr
	}
	return tr
}

type CriarInput struct {
	PacienteID uint   `json:"pacienteId"`
	Origem     string `json:"origem"`
	Prioridade string `json:"prioridade"`
}

// Criar abre um novo lead com status inicial e trilhas zeradas.
func (s *Service) Criar(atuante auth.Identidade, in CriarInput) (*Lead, error) {
	if d := permissao.Autorizar(atuante, permissao.Requisito{}); !d.Permitida {
		return nil, erros.NovoAcessoNegado(d.Motivo)
	}
	if in.PacienteID == 0 {
		return nil, erros.NovaValidacao("pacienteId", "obrigatório")
	}
	prioridade := in.Prioridade
	if prioridade == "" {
		prioridade = PrioridadeMedia
	}
	if !prioridadeValida(prioridade) {
		return nil, erros.NovaValidacao("prioridade", "valor desconhecido: "+prioridade)
	}

	l := &Lead{
		PacienteID: in.PacienteID,
		ClienteID:  atuante.ID,
		Status:     StatusNovo,
		Prioridade: prioridade,
		Origem:     in.Origem,
		Tags:       []string{},
	}
	if err := s.Repository.Salvar(s.DB, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Buscar devolve o lead se a identidade puder vê-lo.
func (s *Service) Buscar(atuante auth.Identidade, id uint) (*Lead, error) {
	l, err := s.carregar(id)
	if err != nil {
		return nil, err
	}
	if !podeVer(atuante, l) {
		return nil, erros.NovoAcessoNegado("acesso negado")
	}
	return l, nil
}

// Listar devolve os leads visíveis à identidade; o recorte é aplicado na
// fronteira do store.
func (s *Service) Listar(atuante auth.Identidade) ([]Lead, error) {
	return s.Repository.ListarParaIdentidade(s.DB, atuante)
}

// VerificarAcesso expõe o recorte de visibilidade para colaboradores
// (ex.: comentários).
func (s *Service) VerificarAcesso(atuante auth.Identidade, id uint) error {
	_, err := s.Buscar(atuante, id)
	return err
}

// Patch carrega apenas os campos de CRM. Status e paciente aparecem aqui
// somente para que a tentativa de alterá-los seja rejeitada com erro de
// validação.
type Patch struct {
	Status     *string `json:"status"`
	PacienteID *uint   `json:"pacienteId"`

	Prioridade   *string    `json:"prioridade"`
	Origem       *string    `json:"origem"`
	Tags         *[]string  `json:"tags"`
	Pontuacao    *int       `json:"pontuacao"`
	Orcamento    *float64   `json:"orcamento"`
	DataFollowUp *time.Time `json:"dataFollowUp"`
}

// AtualizarCampos aplica um patch de campos de CRM. Mudança de status e de
// paciente são rejeitadas: status só muda pelas rotas de transição e o
// paciente é imutável.
func (s *Service) AtualizarCampos(atuante auth.Identidade, id uint, p Patch) (*Lead, error) {
	if p.Status != nil {
		return nil, erros.NovaValidacao("status", "alterado apenas pelas rotas de transição")
	}

	tr := s.travaDoLead(id)
	tr.Lock()
	defer tr.Unlock()

	l, err := s.carregar(id)
	if err != nil {
		return nil, err
	}
	if !podeEditar(atuante, l) {
		return nil, erros.NovoAcessoNegado("acesso negado")
	}
	if p.PacienteID != nil && *p.PacienteID != l.PacienteID {
		return nil, erros.NovaValidacao("pacienteId", "imutável após a criação")
	}

	if p.Prioridade != nil {
		if !prioridadeValida(*p.Prioridade) {
			return nil, erros.NovaValidacao("prioridade", "valor desconhecido: "+*p.Prioridade)
		}
		l.Prioridade = *p.Prioridade
	}
	if p.Origem != nil {
		l.Origem = *p.Origem
	}
	if p.Tags != nil {
		l.Tags = *p.Tags
	}
	if p.Pontuacao != nil {
		l.Pontuacao = *p.Pontuacao
	}
	if p.Orcamento != nil {
		l.Orcamento = *p.Orcamento
	}
	if p.DataFollowUp != nil {
		l.DataFollowUp = p.DataFollowUp
	}

	if err := s.Repository.Atualizar(s.DB, l); err != nil {
		return nil, err
	}
	return l, nil
}

// AtribuirConsultor define o dono do acompanhamento (admin e médico).
func (s *Service) AtribuirConsultor(atuante auth.Identidade, id, consultorID uint) (*Lead, error) {
	if d := permissao.Autorizar(atuante, permissao.Papeis(auth.PapelAdmin, auth.PapelMedico)); !d.Permitida {
		return nil, erros.NovoAcessoNegado(d.Motivo)
	}

	tr := s.travaDoLead(id)
	tr.Lock()
	defer tr.Unlock()

	l, err := s.carregar(id)
	if err != nil {
		return nil, err
	}
	agora := time.Now()
	l.ConsultorID = &consultorID
	l.AtribuidoEm = &agora
	if err := s.Repository.Atualizar(s.DB, l); err != nil {
		return nil, err
	}
	return l, nil
}

// AvancarEtapa move o status para a próxima etapa da ordem.
func (s *Service) AvancarEtapa(atuante auth.Identidade, id uint) (*Lead, error) {
	req := permissao.Papeis(auth.PapelConsultor, auth.PapelMedico, auth.PapelAdmin)
	if d := permissao.Autorizar(atuante, req); !d.Permitida {
		return nil, erros.NovoAcessoNegado(d.Motivo)
	}

	tr := s.travaDoLead(id)
	tr.Lock()
	defer tr.Unlock()

	l, err := s.carregar(id)
	if err != nil {
		return nil, err
	}
	if !podeEditar(atuante, l) {
		return nil, erros.NovoAcessoNegado("lead não atribuído a você")
	}

	proxima, err := ProximaEtapa(l.Status)
	if err != nil {
		return nil, err
	}
	l.Status = proxima
	if err := s.Repository.Atualizar(s.DB, l); err != nil {
		return nil, err
	}
	return l, nil
}

// AprovarReceita marca a trilha de receita médica como aprovada.
func (s *Service) AprovarReceita(atuante auth.Identidade, id uint) (*Lead, error) {
	return s.aprovar(atuante, id, notificacao.TrilhaReceita)
}

// RejeitarReceita reabre a trilha de receita com o motivo informado.
func (s *Service) RejeitarReceita(atuante auth.Identidade, id uint, motivo string) (*Lead, error) {
	return s.rejeitar(atuante, id, notificacao.TrilhaReceita, motivo)
}

// AprovarAnvisa marca a trilha de autorização ANVISA como aprovada.
func (s *Service) AprovarAnvisa(atuante auth.Identidade, id uint) (*Lead, error) {
	return s.aprovar(atuante, id, notificacao.TrilhaAnvisa)
}

// RejeitarAnvisa reabre a trilha de autorização com o motivo informado.
func (s *Service) RejeitarAnvisa(atuante auth.Identidade, id uint, motivo string) (*Lead, error) {
	return s.rejeitar(atuante, id, notificacao.TrilhaAnvisa, motivo)
}

func (s *Service) aprovar(atuante auth.Identidade, id uint, trilha notificacao.Trilha) (*Lead, error) {
	if err := autorizarAprovador(atuante); err != nil {
		return nil, err
	}

	tr := s.travaDoLead(id)
	tr.Lock()
	defer tr.Unlock()

	l, err := s.carregar(id)
	if err != nil {
		return nil, err
	}

	switch trilha {
	case notificacao.TrilhaReceita:
		l.ReceitaAprovada = true
		l.MotivoRejeicaoReceita = ""
	case notificacao.TrilhaAnvisa:
		l.AnvisaAprovada = true
		l.MotivoRejeicaoAnvisa = ""
	}
	// O desbloqueio é avaliado sob a mesma trava da escrita do booleano:
	// nenhum leitor observa as duas trilhas aprovadas com status atrasado.
	aplicarDesbloqueio(l)

	if err := s.Repository.Atualizar(s.DB, l); err != nil {
		return nil, err
	}

	s.notificar(notificacao.Notificacao{
		DestinatarioID: l.PacienteID,
		Modelo:         notificacao.ModeloAprovado,
		Trilha:         trilha,
	})
	return l, nil
}

func (s *Service) rejeitar(atuante auth.Identidade, id uint, trilha notificacao.Trilha, motivo string) (*Lead, error) {
	if err := autorizarAprovador(atuante); err != nil {
		return nil, err
	}
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, erros.NovaValidacao("motivo", "obrigatório na rejeição")
	}

	tr := s.travaDoLead(id)
	tr.Lock()
	defer tr.Unlock()

	l, err := s.carregar(id)
	if err != nil {
		return nil, err
	}

	// A rejeição só reabre a trilha; o status nunca anda para trás.
	switch trilha {
	case notificacao.TrilhaReceita:
		l.ReceitaAprovada = false
		l.MotivoRejeicaoReceita = motivo
	case notificacao.TrilhaAnvisa:
		l.AnvisaAprovada = false
		l.MotivoRejeicaoAnvisa = motivo
	}

	if err := s.Repository.Atualizar(s.DB, l); err != nil {
		return nil, err
	}

	s.notificar(notificacao.Notificacao{
		DestinatarioID: l.PacienteID,
		Modelo:         notificacao.ModeloRejeitado,
		Trilha:         trilha,
		Motivo:         motivo,
	})
	return l, nil
}

func autorizarAprovador(atuante auth.Identidade) error {
	if d := permissao.Autorizar(atuante, permissao.Papeis(auth.PapelMedico, auth.PapelAdmin)); !d.Permitida {
		return erros.NovoAcessoNegado(d.Motivo)
	}
	return nil
}

func (s *Service) carregar(id uint) (*Lead, error) {
	l, err := s.Repository.BuscarPorID(s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, erros.NovoNaoEncontrado("lead")
		}
		return nil, err
	}
	return l, nil
}

// notificar é best-effort: a falha é registrada e engolida; o estado já
// está gravado.
func (s *Service) notificar(n notificacao.Notificacao) {
	if s.Notificador == nil {
		return
	}
	if err := s.Notificador.Notificar(context.Background(), n); err != nil {
		log.Printf("Erro ao despachar notificação para usuário %d: %v", n.DestinatarioID, err)
	}
}

func podeVer(atuante auth.Identidade, l *Lead) bool {
	switch atuante.Papel {
	case auth.PapelAdmin, auth.PapelMedico:
		return true
	case auth.PapelConsultor, auth.PapelVendedor:
		return l.ConsultorID != nil && *l.ConsultorID == atuante.ID
	case auth.PapelPaciente:
		return l.PacienteID == atuante.ID
	}
	return false
}

// podeEditar limita mutações de CRM/etapa à equipe dona do lead.
func podeEditar(atuante auth.Identidade, l *Lead) bool {
	switch atuante.Papel {
	case auth.PapelAdmin, auth.PapelMedico:
		return true
	case auth.PapelConsultor, auth.PapelVendedor:
		return l.ConsultorID != nil && *l.ConsultorID == atuante.ID
	}
	return false
}

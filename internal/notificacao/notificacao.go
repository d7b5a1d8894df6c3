// Package notificacao entrega avisos de aprovação/rejeição ao paciente.
// O despacho é best-effort: falha de entrega nunca desfaz a mudança de
// estado que a originou.
package notificacao

import "context"

// Modelo é o tipo de mensagem, independente de canal.
type Modelo string

const (
	ModeloAprovado  Modelo = "aprovado"
	ModeloRejeitado Modelo = "rejeitado"
)

// Trilha identifica a dimensão de aprovação que originou o aviso.
type Trilha string

const (
	TrilhaReceita Trilha = "receita"
	TrilhaAnvisa  Trilha = "anvisa"
)

type Notificacao struct {
	DestinatarioID uint   `json:"destinatarioId"`
	Modelo         Modelo `json:"modelo"`
	Trilha         Trilha `json:"trilha"`
	Motivo         string `json:"motivo,omitempty"`
}

// Dispatcher aceita uma notificação para entrega posterior.
type Dispatcher interface {
	Notificar(ctx context.Context, n Notificacao) error
}

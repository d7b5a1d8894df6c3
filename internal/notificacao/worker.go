package notificacao

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Contato é o que o worker precisa saber do destinatário.
type Contato struct {
	Nome     string
	Email    string
	Telefone string
}

// FonteDeContatos resolve os dados de contato de um usuário.
type FonteDeContatos interface {
	BuscarContato(id uint) (*Contato, error)
}

// Worker consome a fila e entrega por e-mail e WhatsApp. Mensagens que
// falham vão para a DLQ via Nack.
type Worker struct {
	Ch       *amqp.Channel
	Contatos FonteDeContatos
	Email    *EmailSender
	WhatsApp *WhatsAppClient
}

func NewWorker(ch *amqp.Channel, contatos FonteDeContatos, email *EmailSender, whats *WhatsAppClient) *Worker {
	return &Worker{Ch: ch, Contatos: contatos, Email: email, WhatsApp: whats}
}

func (w *Worker) Start(fila string) {
	msgs, err := w.Ch.Consume(fila, "", false, false, false, false, nil)
	if err != nil {
		log.Printf("Erro ao consumir fila %s: %v", fila, err)
		return
	}

	for msg := range msgs {
		w.processar(msg)
	}
}

func (w *Worker) processar(msg amqp.Delivery) {
	var n Notificacao
	if err := json.Unmarshal(msg.Body, &n); err != nil {
		log.Printf("Notificação ilegível, descartando: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	contato, err := w.Contatos.BuscarContato(n.DestinatarioID)
	if err != nil {
		log.Printf("Contato do usuário %d não encontrado: %v", n.DestinatarioID, err)
		_ = msg.Nack(false, false)
		return
	}

	entregue := false
	if w.Email != nil && contato.Email != "" {
		if err := w.Email.Enviar(contato.Email, contato.Nome, n); err != nil {
			log.Printf("Erro ao enviar email para usuário %d: %v", n.DestinatarioID, err)
		} else {
			entregue = true
		}
	}
	if w.WhatsApp != nil && w.WhatsApp.Configurado() && contato.Telefone != "" {
		if err := w.WhatsApp.Enviar(contato.Telefone, contato.Nome, n); err != nil {
			log.Printf("Erro ao enviar WhatsApp para usuário %d: %v", n.DestinatarioID, err)
		} else {
			entregue = true
		}
	}

	if entregue {
		_ = msg.Ack(false)
		return
	}
	_ = msg.Nack(false, false)
}

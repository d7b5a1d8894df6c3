package notificacao

import (
	"context"
	"log"
)

// RegistroLog é o despachante usado quando a fila não está configurada:
// apenas registra o aviso. Mantém o ambiente de desenvolvimento funcional
// sem RabbitMQ.
type RegistroLog struct{}

func (RegistroLog) Notificar(_ context.Context, n Notificacao) error {
	log.Printf("notificação (%s/%s) para usuário %d motivo=%q",
		n.Modelo, n.Trilha, n.DestinatarioID, n.Motivo)
	return nil
}

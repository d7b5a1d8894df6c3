package notificacao

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
}

func NewEmailSender(host string, port int, user, password string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
	}
}

func assuntoECorpo(nome string, n Notificacao) (string, string) {
	trilha := "receita médica"
	if n.Trilha == TrilhaAnvisa {
		trilha = "autorização ANVISA"
	}

	if n.Modelo == ModeloAprovado {
		assunto := fmt.Sprintf("Sua %s foi aprovada", trilha)
		corpo := fmt.Sprintf("<p>Olá %s,</p><p>Sua %s foi aprovada. Acompanhe as próximas etapas na plataforma.</p>", nome, trilha)
		return assunto, corpo
	}

	assunto := fmt.Sprintf("Sua %s precisa de ajustes", trilha)
	corpo := fmt.Sprintf("<p>Olá %s,</p><p>Sua %s foi recusada pelo seguinte motivo:</p><p><b>%s</b></p><p>Reenvie o documento corrigido pela plataforma.</p>", nome, trilha, n.Motivo)
	return assunto, corpo
}

// Enviar entrega o aviso por SMTP.
func (s *EmailSender) Enviar(para, nome string, n Notificacao) error {
	assunto, corpo := assuntoECorpo(nome, n)

	m := gomail.NewMessage()
	m.SetHeader("From", "nao-responda@cultivemed.com.br")
	m.SetHeader("To", para)
	m.SetHeader("Subject", assunto)
	m.SetBody("text/html", corpo)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

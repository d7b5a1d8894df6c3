package notificacao

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
)

// WhatsAppClient envia mensagens de template pela Cloud API.
type WhatsAppClient struct {
	accessToken string
	phoneID     string
	baseURL     string
}

func NewWhatsAppClient() *WhatsAppClient {
	return &WhatsAppClient{
		accessToken: os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		phoneID:     os.Getenv("WHATSAPP_PHONE_ID"),
		baseURL:     "https://graph.facebook.com/v18.0",
	}
}

func (c *WhatsAppClient) Configurado() bool {
	return c.accessToken != "" && c.phoneID != ""
}

// Enviar entrega o aviso como mensagem de template pt_BR.
func (c *WhatsAppClient) Enviar(telefone, nome string, n Notificacao) error {
	if !c.Configurado() {
		return fmt.Errorf("whatsapp não configurado")
	}

	template := "documento_aprovado"
	parametros := []string{nome, string(n.Trilha)}
	if n.Modelo == ModeloRejeitado {
		template = "documento_rejeitado"
		parametros = append(parametros, n.Motivo)
	}

	corpo := make([]map[string]string, 0, len(parametros))
	for _, p := range parametros {
		corpo = append(corpo, map[string]string{"type": "text", "text": p})
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                telefone,
		"type":              "template",
		"template": map[string]interface{}{
			"name": template,
			"language": map[string]string{
				"code": "pt_BR",
			},
			"components": []map[string]interface{}{
				{
					"type":       "body",
					"parameters": corpo,
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detalhe, _ := io.ReadAll(resp.Body)
		log.Printf("WhatsApp: resposta %d: %s", resp.StatusCode, detalhe)
		return fmt.Errorf("whatsapp retornou status %d", resp.StatusCode)
	}
	return nil
}

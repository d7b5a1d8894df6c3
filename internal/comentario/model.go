package comentario

import "gorm.io/gorm"

// Comentario é uma anotação livre de CRM presa a um lead. Não participa
// da máquina de estados.
type Comentario struct {
	gorm.Model
	Texto   string `json:"texto"`
	LeadID  uint   `json:"leadId"`
	AutorID uint   `json:"autorId"`
	Sistema bool   `json:"sistema"`
}

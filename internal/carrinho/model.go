package carrinho

import "time"

// Item guarda o produto com a quantidade e o preço unitário capturado no
// momento da adição.
type Item struct {
	ProdutoID     uint    `json:"produtoId"`
	Quantidade    int     `json:"quantidade"`
	PrecoUnitario float64 `json:"precoUnitario"`
}

// Carrinho é o carrinho ativo de uma chave de identidade: a conta
// autenticada ou a sessão anônima. Na troca de identidade o carrinho é
// trocado, nunca mesclado.
type Carrinho struct {
	Chave     string    `gorm:"primaryKey" json:"-"`
	Itens     []Item    `gorm:"type:jsonb;serializer:json" json:"itens"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Total soma os itens pelo preço capturado.
func (c *Carrinho) Total() float64 {
	var total float64
	for _, it := range c.Itens {
		total += float64(it.Quantidade) * it.PrecoUnitario
	}
	return total
}

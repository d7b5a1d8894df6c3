package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID          uint   `json:"user_id"`
	Papel           string `json:"papel"`
	VendedorExterno bool   `json:"vendedorExterno"`
	CodigoAfiliado  string `json:"codigoAfiliado,omitempty"`
	jwt.RegisteredClaims
}

func segredo() ([]byte, error) {
	s := os.Getenv("JWT_SECRET")
	if s == "" {
		return nil, fmt.Errorf("JWT_SECRET não definida")
	}
	return []byte(s), nil
}

// GerarToken gera um JWT com validade de 24h para a conta informada.
func GerarToken(id Identidade) (string, error) {
	chave, err := segredo()
	if err != nil {
		return "", err
	}
	claims := &Claims{
		UserID:          id.ID,
		Papel:           string(id.Papel),
		VendedorExterno: id.VendedorExterno,
		CodigoAfiliado:  id.CodigoAfiliado,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(id.ID),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(chave)
}

// ValidarToken valida o token e retorna as claims.
func ValidarToken(tokenStr string) (*Claims, error) {
	chave, err := segredo()
	if err != nil {
		return nil, err
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return chave, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("token inválido ou expirado: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("não foi possível extrair claims")
	}
	return claims, nil
}

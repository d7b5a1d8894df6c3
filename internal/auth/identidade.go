package auth

// Papel é o papel de acesso de uma conta na plataforma.
type Papel string

const (
	PapelAdmin     Papel = "admin"
	PapelMedico    Papel = "medico"
	PapelConsultor Papel = "consultor"
	PapelVendedor  Papel = "vendedor"
	PapelPaciente  Papel = "paciente"
	PapelAnonimo   Papel = "anonimo"
)

// Identidade é o principal resolvido para uma requisição. A ausência de
// login é um valor normal (identidade anônima), nunca um erro.
type Identidade struct {
	ID              uint
	Papel           Papel
	VendedorExterno bool
	CodigoAfiliado  string

	// ChaveSessao identifica a sessão de navegação quando não há login
	// (usada como chave de carrinho anônimo).
	ChaveSessao string
}

// Anonima retorna a identidade não autenticada.
func Anonima() Identidade {
	return Identidade{Papel: PapelAnonimo}
}

// EhAnonima informa se a identidade não está autenticada.
func (i Identidade) EhAnonima() bool {
	return i.ID == 0 || i.Papel == PapelAnonimo || i.Papel == ""
}

// EhEquipe informa se o papel pertence à equipe interna (pode ser dono de
// leads atribuídos).
func (i Identidade) EhEquipe() bool {
	switch i.Papel {
	case PapelAdmin, PapelMedico, PapelConsultor, PapelVendedor:
		return true
	}
	return false
}

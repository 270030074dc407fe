package auth

// Claims es la identidad declarada por el cliente (header de dev o token).
// El core no la exige: es el punto donde se puede enchufar auth más adelante.
type Claims struct {
	UserID string
	Role   string
	Email  string
}

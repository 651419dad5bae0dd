package handlers

import (
	"github.com/gin-gonic/gin"

	"progestao-os/internal/auth"
)

// UsuarioAtual retorna o usuário autenticado da requisição, se houver
func UsuarioAtual(c *gin.Context) (*auth.UserContext, bool) {
	user, err := auth.GetUserFromContext(c.Request.Context())
	if err != nil || user == nil {
		return nil, false
	}
	return user, true
}

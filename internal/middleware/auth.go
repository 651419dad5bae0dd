package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"progestao-os/internal/auth"
	"progestao-os/internal/models"
)

// ValidadorToken valida tokens opacos junto ao provedor de identidade
type ValidadorToken interface {
	ValidarToken(ctx context.Context, token string) (*auth.UserContext, error)
}

// AuthConfig define como os tokens Bearer são verificados
type AuthConfig struct {
	// JWTSecret valida localmente tokens do Supabase; tem precedência sobre Validador
	JWTSecret string
	Validador ValidadorToken
	// ChaveServicoHash é o hash bcrypt da chave usada pelo os-sync
	ChaveServicoHash string
	Obrigatorio      bool
	Logger           *logrus.Logger
}

// UsuarioServico identifica requisições autenticadas pela chave de serviço
const UsuarioServico = "os-sync"

// AuthMiddleware identifica o usuário a partir do header Authorization.
// Sem Obrigatorio, requisições anônimas ou com token inválido seguem sem usuário.
func AuthMiddleware(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if cfg.Obrigatorio {
				abortarComErro(c, models.NewUnauthorizedError("Token de autorização não fornecido"))
				return
			}
			c.Next()
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
			abortarComErro(c, models.NewUnauthorizedError("Formato de token inválido. Use: Bearer <token>"))
			return
		}

		user, err := verificarToken(c.Request.Context(), cfg, strings.TrimSpace(tokenParts[1]))
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.WithError(err).WithField("request_id", c.GetString(ChaveRequestID)).Warn("Token inválido")
			}
			if cfg.Obrigatorio {
				abortarComErro(c, models.NewUnauthorizedError("Token inválido ou expirado"))
				return
			}
			c.Next()
			return
		}

		if user != nil {
			c.Request = c.Request.WithContext(auth.WithUserContext(c.Request.Context(), user))
			c.Set("user_id", user.UserID)
			c.Set("user_email", user.Email)
		}
		c.Next()
	}
}

func verificarToken(ctx context.Context, cfg AuthConfig, token string) (*auth.UserContext, error) {
	// JWT sempre tem três segmentos; o resto só pode ser a chave de serviço
	if cfg.ChaveServicoHash != "" && strings.Count(token, ".") != 2 {
		if err := bcrypt.CompareHashAndPassword([]byte(cfg.ChaveServicoHash), []byte(token)); err != nil {
			return nil, err
		}
		return &auth.UserContext{UserID: UsuarioServico, Role: "service_role"}, nil
	}

	switch {
	case cfg.JWTSecret != "":
		claims, err := auth.ParseSupabaseJWT(token, cfg.JWTSecret)
		if err != nil {
			return nil, err
		}
		return auth.UsuarioDasClaims(claims), nil
	case cfg.Validador != nil:
		return cfg.Validador.ValidarToken(ctx, token)
	default:
		// nenhum verificador configurado: token ignorado
		return nil, nil
	}
}

func abortarComErro(c *gin.Context, apiErr *models.APIError) {
	c.AbortWithStatusJSON(apiErr.StatusCode, models.Resposta{OK: false, Error: apiErr})
}

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SupabaseClaims representa as claims do JWT do Supabase
type SupabaseClaims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// UserContext representa o contexto do usuário autenticado
type UserContext struct {
	UserID    string
	Email     string
	Role      string
	SessionID string
}

type contextKey string

const UserContextKey contextKey = "user"

// ParseSupabaseJWT valida um token JWT do Supabase assinado com o segredo do projeto
func ParseSupabaseJWT(tokenString, jwtSecret string) (*SupabaseClaims, error) {
	if jwtSecret == "" {
		return nil, fmt.Errorf("SUPABASE_JWT_SECRET não configurado")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&SupabaseClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("erro ao validar token: %w", err)
	}

	claims, ok := token.Claims.(*SupabaseClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("token inválido")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("token expirado")
	}
	return claims, nil
}

// UsuarioDasClaims converte as claims validadas no contexto do usuário
func UsuarioDasClaims(claims *SupabaseClaims) *UserContext {
	return &UserContext{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		SessionID: claims.SessionID,
	}
}

// GetUserFromContext extrai o contexto do usuário do contexto da requisição
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(UserContextKey).(*UserContext)
	if !ok {
		return nil, fmt.Errorf("contexto do usuário não encontrado")
	}
	return user, nil
}

// WithUserContext adiciona o contexto do usuário ao contexto da requisição
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

package supabase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"

	"progestao-os/internal/auth"
)

// AuthClient valida tokens de sessão contra o GoTrue do projeto
type AuthClient struct {
	client gotrue.Client
}

// NewAuthClient cria o validador a partir da URL do projeto e da chave anônima
func NewAuthClient(supabaseURL, apiKey string) *AuthClient {
	return &AuthClient{
		client: gotrue.New(extractProjectRef(supabaseURL), apiKey),
	}
}

// extractProjectRef extrai o project reference de https://<ref>.supabase.co
func extractProjectRef(supabaseURL string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(supabaseURL, "https://"), "http://")
	ref, _, _ := strings.Cut(host, ".")
	return ref
}

// ValidarToken consulta o usuário dono do token; tokens revogados falham aqui
func (a *AuthClient) ValidarToken(_ context.Context, token string) (*auth.UserContext, error) {
	resp, err := a.client.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("erro ao obter usuário: %w", err)
	}
	if resp.ID == uuid.Nil {
		return nil, fmt.Errorf("token sem usuário associado")
	}

	return &auth.UserContext{
		UserID: resp.ID.String(),
		Email:  resp.Email,
		Role:   resp.Role,
	}, nil
}

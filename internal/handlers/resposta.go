package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"progestao-os/internal/middleware"
	"progestao-os/internal/models"
	"progestao-os/internal/services"
)

const msgErroInterno = "Erro interno do servidor"

func responderOK(c *gin.Context, status int, data any) {
	c.JSON(status, models.Resposta{OK: true, Data: data})
}

// responderErro converte qualquer erro no envelope padrão.
// Erros sem tipo viram INTERNAL_ERROR sem expor detalhes ao chamador.
func responderErro(c *gin.Context, logger *logrus.Logger, err error) {
	var apiErr *models.APIError
	if !errors.As(err, &apiErr) {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.ChaveRequestID),
			"path":       c.Request.URL.Path,
		}).Error("Erro não tratado")
		apiErr = models.NewInternalError(msgErroInterno)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(apiErr.StatusCode, models.Resposta{OK: false, Error: apiErr})
}

// decodificarJSON lê o corpo sem aplicar as regras de binding; a validação fica com o serviço
func decodificarJSON(c *gin.Context, destino any) error {
	if err := json.NewDecoder(c.Request.Body).Decode(destino); err != nil {
		if errors.Is(err, io.EOF) {
			return models.NewValidationError(services.MsgDadosInvalidos, "Corpo da requisição vazio")
		}
		return models.NewValidationError(services.MsgDadosInvalidos, "JSON inválido")
	}
	return nil
}

// erroDeBind traduz falhas do binding do gin para mensagens do domínio
func erroDeBind(err error) *models.APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewValidationError(services.MsgDadosInvalidos, "JSON inválido")
	}

	detalhes := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "Nome":
			detalhes = append(detalhes, services.MsgNomeClienteObrigatorio)
		case "Telefone":
			detalhes = append(detalhes, services.MsgTelefoneInvalido)
		case "Email":
			detalhes = append(detalhes, services.MsgEmailInvalido)
		default:
			detalhes = append(detalhes, fe.Field()+" inválido")
		}
	}
	return models.NewValidationError(services.MsgDadosInvalidos, detalhes...)
}

// erroDeConsulta traduz falhas do binding da query string; o texto do binder fica só no log
func erroDeConsulta(c *gin.Context, logger *logrus.Logger, err error) *models.APIError {
	logger.WithError(err).Debug("Erro ao fazer bind da query")

	var detalhes []string
	for _, campo := range []string{"page", "size"} {
		v, ok := c.GetQuery(campo)
		if !ok {
			continue
		}
		if _, err := strconv.Atoi(v); err != nil {
			detalhes = append(detalhes, campo+" deve ser um número inteiro")
		}
	}
	if len(detalhes) == 0 {
		detalhes = append(detalhes, "Parâmetros de consulta inválidos")
	}
	return models.NewValidationError(services.MsgParametrosInvalidos, detalhes...)
}

func metodoNaoPermitido(c *gin.Context) {
	apiErr := models.NewMethodNotAllowedError()
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, models.Resposta{OK: false, Error: apiErr})
}

func rotaNaoEncontrada(c *gin.Context) {
	apiErr := models.NewNotFoundError("Rota não encontrada")
	c.AbortWithStatusJSON(http.StatusNotFound, models.Resposta{OK: false, Error: apiErr})
}

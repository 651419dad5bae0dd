package models

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode representa o código de erro exposto no envelope da API
type ErrorCode string

const (
	ErrorCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeDuplicateNumber  ErrorCode = "DUPLICATE_NUMBER"
	ErrorCodeDuplicate        ErrorCode = "DUPLICATE"
	ErrorCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrorCodeQuery            ErrorCode = "QUERY_ERROR"
	ErrorCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrorCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
)

// Erros sentinela retornados pelos stores
var (
	ErrNaoEncontrado   = errors.New("registro não encontrado")
	ErrNumeroDuplicado = errors.New("número da OS duplicado")
	ErrDuplicado       = errors.New("registro duplicado")
)

// APIError representa um erro padronizado da API
type APIError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    []string  `json:"details,omitempty"`
	StatusCode int       `json:"-"`
}

// Error implementa a interface error
func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Details, ", "))
	}
	return e.Message
}

// NewValidationError cria um novo erro de validação
func NewValidationError(message string, details ...string) *APIError {
	return &APIError{
		Code:       ErrorCodeValidation,
		Message:    message,
		Details:    details,
		StatusCode: http.StatusBadRequest,
	}
}

// NewNotFoundError cria um novo erro de recurso não encontrado
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Code:       ErrorCodeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewDuplicateNumberError cria o erro de colisão do número humano da OS
func NewDuplicateNumberError() *APIError {
	return &APIError{
		Code:       ErrorCodeDuplicateNumber,
		Message:    "Número da OS já existe",
		StatusCode: http.StatusConflict,
	}
}

// NewDuplicateError cria um novo erro de registro duplicado
func NewDuplicateError(message string) *APIError {
	return &APIError{
		Code:       ErrorCodeDuplicate,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewMethodNotAllowedError cria um novo erro de método não permitido
func NewMethodNotAllowedError() *APIError {
	return &APIError{
		Code:       ErrorCodeMethodNotAllowed,
		Message:    "Método não permitido",
		StatusCode: http.StatusMethodNotAllowed,
	}
}

// NewQueryError cria um novo erro de consulta
func NewQueryError(message string) *APIError {
	return &APIError{
		Code:       ErrorCodeQuery,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewInternalError cria um novo erro interno
func NewInternalError(message string) *APIError {
	return &APIError{
		Code:       ErrorCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewUnauthorizedError cria um novo erro de autenticação
func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		Code:       ErrorCodeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// IsCode informa se err é um *APIError com o código indicado
func IsCode(err error, code ErrorCode) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

package handlers

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"progestao-os/internal/services"
)

var registrarValidacoes sync.Once

// RegistrarValidacoes adiciona ao validador do gin a regra "telefone"
func RegistrarValidacoes() {
	registrarValidacoes.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("telefone", func(fl validator.FieldLevel) bool {
			return services.TelefoneValido(fl.Field().String())
		})
	})
}

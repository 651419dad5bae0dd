package services

import (
	"fmt"
	"regexp"
	"strings"
)

const codigoPaisBrasil = "55"

var reTelefoneE164 = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// NormalizarTelefone converte o telefone para o formato +<dígitos>.
// Números nacionais com DDD (10 ou 11 dígitos) recebem o código do Brasil.
func NormalizarTelefone(telefone string) string {
	telefone = strings.TrimSpace(telefone)
	if telefone == "" {
		return ""
	}

	internacional := strings.HasPrefix(telefone, "+")
	var b strings.Builder
	for _, r := range telefone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digitos := b.String()

	if !internacional && strings.HasPrefix(digitos, "00") {
		digitos = digitos[2:]
		internacional = true
	}
	if !internacional {
		digitos = strings.TrimLeft(digitos, "0")
		if len(digitos) == 10 || len(digitos) == 11 {
			digitos = codigoPaisBrasil + digitos
		}
	}
	if digitos == "" {
		return ""
	}
	return "+" + digitos
}

// TelefoneValido informa se o telefone normalizado está no formato E.164
func TelefoneValido(telefone string) bool {
	return reTelefoneE164.MatchString(NormalizarTelefone(telefone))
}

// FormatarTelefone formata um telefone para exibição.
// NormalizarTelefone(FormatarTelefone(t)) == NormalizarTelefone(t).
func FormatarTelefone(telefone string) string {
	normalizado := NormalizarTelefone(telefone)
	nacional, ok := strings.CutPrefix(normalizado, "+"+codigoPaisBrasil)
	if !ok {
		return normalizado
	}

	switch len(nacional) {
	case 11:
		return fmt.Sprintf("+55 (%s) %s-%s", nacional[:2], nacional[2:7], nacional[7:])
	case 10:
		return fmt.Sprintf("+55 (%s) %s-%s", nacional[:2], nacional[2:6], nacional[6:])
	default:
		return normalizado
	}
}

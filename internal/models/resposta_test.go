package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizarPaginacao(t *testing.T) {
	casos := []struct {
		nome       string
		page, size int
		wantPage   int
		wantSize   int
	}{
		{"padrões", 0, 0, 1, 20},
		{"página negativa", -3, 10, 1, 10},
		{"tamanho acima do máximo", 2, 500, 2, 100},
		{"tamanho negativo", 1, -5, 1, 1},
		{"página enorme", math.MaxInt, 20, math.MaxInt32/20 + 1, 20},
	}

	for _, tc := range casos {
		t.Run(tc.nome, func(t *testing.T) {
			page, size := NormalizarPaginacao(tc.page, tc.size)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantSize, size)
			assert.GreaterOrEqual(t, (page-1)*size, 0)
			assert.LessOrEqual(t, (page-1)*size, math.MaxInt32)
		})
	}
}

func TestNovaPaginacao(t *testing.T) {
	assert.Equal(t, Paginacao{Page: 2, Size: 10, Total: 25, Pages: 3}, NovaPaginacao(2, 10, 25))
	assert.Equal(t, 0, NovaPaginacao(1, 20, 0).Pages)
}

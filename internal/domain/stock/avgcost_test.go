package stock_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/acms-stock/internal/domain/stock"
)

// Caso típico: 100 unidades a 1.40 más una entrada de 50 a 2.00.
// (100×1.40 + 50×2.00) / 150 = 240/150 = 1.60
func TestWeightedAverageCost_Basico(t *testing.T) {
	got := stock.WeightedAverageCost(dec("100"), dec("1.40"), dec("50"), dec("2.00"))
	assert.True(t, got.Equal(dec("1.60")), "esperado 1.60, obtenido %s", got)
}

// Saldo inicial cero: el promedio es simplemente el costo de la entrada.
func TestWeightedAverageCost_SaldoCero(t *testing.T) {
	got := stock.WeightedAverageCost(decimal.Zero, decimal.Zero, dec("30"), dec("5.25"))
	assert.True(t, got.Equal(dec("5.25")))
}

// Cantidades totales no positivas no dividen: devuelve cero.
func TestWeightedAverageCost_TotalNoPositivo(t *testing.T) {
	got := stock.WeightedAverageCost(decimal.Zero, dec("9.99"), decimal.Zero, dec("9.99"))
	assert.True(t, got.IsZero())
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem representa un artículo de bodega del catálogo.
// CurrentQuantity es el saldo cacheado: en todo momento debe igualar la suma
// firmada de los movimientos no eliminados del artículo. Solo el motor de
// movimientos lo escribe; las lecturas rápidas (listados, stock bajo) lo usan.
// Los artículos nunca se eliminan físicamente (soft delete) para conservar
// el historial de movimientos.
type StockItem struct {
	ID              string
	Name            string
	CategoryID      string // vacío si no tiene categoría
	Unit            string // unidad de medida (kg, litro, caja, ...)
	ReorderLevel    decimal.Decimal
	CurrentQuantity decimal.Decimal
	UnitCost        decimal.Decimal
	Currency        string // ISO 4217, por defecto USD
	LocationID      string // vacío si no está asignado a una ubicación
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsLowStock indica si el artículo está por debajo de su nivel de reorden.
// Un ReorderLevel en cero desactiva la alerta.
func (i *StockItem) IsLowStock() bool {
	return i.ReorderLevel.GreaterThan(decimal.Zero) &&
		i.CurrentQuantity.LessThanOrEqual(i.ReorderLevel)
}

// TotalValue devuelve la valuación del saldo cacheado (quantity × unit_cost).
func (i *StockItem) TotalValue() decimal.Decimal {
	return i.CurrentQuantity.Mul(i.UnitCost)
}

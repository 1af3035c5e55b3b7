package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/acms-stock/internal/domain/entity"
)

// ItemFilter criterios de listado para artículos.
type ItemFilter struct {
	CategoryID   string
	LocationID   string
	SearchText   string // búsqueda por nombre, insensible a acentos
	LowStockOnly bool
	Limit        int // 0 = sin límite
	Offset       int
}

// ValuationTotal totales de valuación cacheada agrupados por moneda.
// Solo considera artículos no eliminados con cantidad > 0.
type ValuationTotal struct {
	Currency      string
	Items         int
	TotalQuantity decimal.Decimal
	TotalValue    decimal.Decimal
}

// StockItemRepository define el puerto de persistencia para StockItem (DIP).
// GetForUpdate bloquea la fila dentro de la transacción en curso; es la base
// del check-then-act de las salidas.
type StockItemRepository interface {
	Create(item *entity.StockItem) error
	GetByID(id string) (*entity.StockItem, error)
	GetForUpdate(id string) (*entity.StockItem, error)
	Update(item *entity.StockItem) error
	// UpdateQuantity escribe la cantidad cacheada y updated_at. Solo debe
	// invocarse dentro de la misma transacción que persiste el movimiento.
	UpdateQuantity(id string, quantity decimal.Decimal) error
	// UpdateCost actualiza solo el costo promedio (usado por el motor de movimientos).
	UpdateCost(id string, cost decimal.Decimal) error
	List(filter ItemFilter) ([]*entity.StockItem, error)
	SoftDelete(id string) error
	ValuationSummary() ([]ValuationTotal, error)
}

package stock

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/acms-stock/internal/domain/entity"
)

// Estados de disponibilidad emitidos por la reconstrucción.
const (
	StatusAvailable  = "Available"
	StatusOutOfStock = "Out of Stock"
)

// ReportRow es una fila del reporte reconstruido: un movimiento más el saldo
// acumulado del artículo después de aplicarlo.
type ReportRow struct {
	Movement     *entity.StockMovement
	AvailableQty decimal.Decimal // saldo del artículo después de este movimiento
	ValueCost    decimal.Decimal // AvailableQty × costo unitario del movimiento
	Status       string
}

// ItemTotals acumulados por artículo sobre el conjunto filtrado.
type ItemTotals struct {
	ItemID     string
	EntryTotal decimal.Decimal
	ExitTotal  decimal.Decimal
	Available  decimal.Decimal // saldo final del replay
}

// Replay recorre los movimientos en orden y recalcula saldos y valuaciones sin
// consultar la cantidad cacheada: es la vía de auditoría. Los acumuladores van
// por artículo y parten de cero, de modo que el alcance del reporte es "los
// movimientos que pasaron el filtro", no la vida completa del artículo.
//
// Es un fold puro: la misma entrada produce siempre las mismas filas.
// Los movimientos deben venir ordenados (movement_date ASC, created_at ASC);
// SortMovements aplica ese orden si el origen no lo garantiza.
func Replay(movements []*entity.StockMovement) ([]ReportRow, map[string]*ItemTotals) {
	rows := make([]ReportRow, 0, len(movements))
	totals := make(map[string]*ItemTotals)

	for _, m := range movements {
		acc, ok := totals[m.ItemID]
		if !ok {
			acc = &ItemTotals{ItemID: m.ItemID}
			totals[m.ItemID] = acc
		}

		delta := m.SignedQuantity()
		acc.Available = acc.Available.Add(delta)
		if delta.GreaterThan(decimal.Zero) {
			acc.EntryTotal = acc.EntryTotal.Add(delta)
		} else if delta.LessThan(decimal.Zero) {
			acc.ExitTotal = acc.ExitTotal.Add(delta.Neg())
		}

		status := StatusOutOfStock
		if acc.Available.GreaterThan(decimal.Zero) {
			status = StatusAvailable
		}
		rows = append(rows, ReportRow{
			Movement:     m,
			AvailableQty: acc.Available,
			ValueCost:    acc.Available.Mul(m.UnitCost),
			Status:       status,
		})
	}
	return rows, totals
}

// SortMovements ordena in place por (movement_date ASC, created_at ASC).
// El desempate por created_at preserva el orden de inserción cuando dos
// movimientos comparten la misma fecha de negocio.
func SortMovements(movements []*entity.StockMovement) {
	sort.SliceStable(movements, func(i, j int) bool {
		a, b := movements[i], movements[j]
		if !a.MovementDate.Equal(b.MovementDate) {
			return a.MovementDate.Before(b.MovementDate)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

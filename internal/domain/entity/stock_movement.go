package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeEntry      = "entry"      // entrada
	MovementTypeExit       = "exit"       // salida
	MovementTypeTransfer   = "transfer"   // traslado entre ubicaciones (par neto cero)
	MovementTypeAdjustment = "adjustment" // ajuste con signo
)

// StockMovement representa un evento del ledger contra un artículo.
// Inmutable una vez creado: no existe update ni delete; las correcciones se
// registran como nuevos movimientos de ajuste o compensación.
//
// Quantity es positiva para entry, exit y transfer (el tipo determina el
// signo); solo adjustment admite cantidad con signo. MovementDate es la fecha
// de negocio y CreatedAt la marca de auditoría; la reconstrucción ordena por
// (MovementDate ASC, CreatedAt ASC) para desempatar de forma determinista.
type StockMovement struct {
	ID            string
	TransactionID string // agrupa los dos registros de un traslado
	ItemID        string
	Type          string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal // costo unitario al momento del movimiento
	Currency      string
	ReasonID      string // motivo (donación, distribución, merma, ...)
	Reference     string // número de referencia libre (remisión, acta, ...)
	LocationID    string
	ProjectID     string
	BeneficiaryID string
	PerformedBy   string // identidad del actor autenticado
	MovementDate  time.Time
	CreatedAt     time.Time
}

// SignedQuantity devuelve el efecto del movimiento sobre el saldo del artículo.
// Regla única de signos usada por el actualizador de saldo y por la
// reconstrucción de reportes:
//
//	entry    → +Quantity
//	exit     → -Quantity
//	transfer →  0 (el par salida/entrada se anula sobre el saldo único)
//	adjustment → Quantity tal cual (ya viene con signo)
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	switch m.Type {
	case MovementTypeEntry:
		return m.Quantity
	case MovementTypeExit:
		return m.Quantity.Neg()
	case MovementTypeTransfer:
		return decimal.Zero
	case MovementTypeAdjustment:
		return m.Quantity
	}
	return decimal.Zero
}

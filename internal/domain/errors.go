package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// ErrInconsistentLedger indica que el ledger y la cantidad cacheada divergen.
	// Nunca debe llegar al usuario: la atomicidad transaccional lo previene.
	ErrInconsistentLedger = errors.New("inconsistencia entre ledger y cantidad cacheada")
)

// InsufficientStockError lleva la cantidad disponible para mostrarla al usuario.
// errors.Is(err, ErrInsufficientStock) funciona sobre este tipo.
type InsufficientStockError struct {
	ItemID    string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el artículo %s: solicitado %s, disponible %s",
		e.ItemID, e.Requested.String(), e.Available.String())
}

// Is permite comparar contra el sentinel ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

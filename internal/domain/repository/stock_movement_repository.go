package repository

import (
	"time"

	"github.com/jhoicas/acms-stock/internal/domain/entity"
)

// MovementFilter criterios de consulta sobre el ledger.
// SearchText busca por nombre de artículo o número de referencia.
type MovementFilter struct {
	ItemID     string
	LocationID string
	ProjectID  string
	Type       string
	From       *time.Time // sobre movement_date
	To         *time.Time
	SearchText string
	Limit      int // 0 = sin límite (replay completo)
	Offset     int
}

// StockMovementRepository define el puerto de persistencia del ledger (DIP).
// Solo inserta y consulta: el ledger es append-only, sin Update ni Delete.
// List devuelve siempre (movement_date ASC, created_at ASC) para que la
// reconstrucción sea determinista.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	List(filter MovementFilter) ([]*entity.StockMovement, error)
}

package stock

import (
	"context"

	"github.com/jhoicas/acms-stock/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Es la frontera de atomicidad del motor de
// movimientos: {insertar movimiento, actualizar cantidad cacheada} ocurren
// juntos o no ocurren.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		itemRepo repository.StockItemRepository,
	) error) error
}

package stock

import (
	"github.com/jhoicas/acms-stock/internal/application/dto"
	"github.com/jhoicas/acms-stock/internal/domain/repository"
	domstock "github.com/jhoicas/acms-stock/internal/domain/stock"
)

// ReportUseCase reconstruye saldos y valuaciones desde el ledger (vía de
// auditoría) y calcula el resumen de valuación desde las cantidades cacheadas
// (vía rápida). Las dos vías deben conciliar: una divergencia señala un bug de
// consistencia en el motor de movimientos.
type ReportUseCase struct {
	movRepo  repository.StockMovementRepository
	itemRepo repository.StockItemRepository
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	movRepo repository.StockMovementRepository,
	itemRepo repository.StockItemRepository,
) *ReportUseCase {
	return &ReportUseCase{movRepo: movRepo, itemRepo: itemRepo}
}

// ReconstructReport consulta el ledger (ordenado por movement_date, created_at)
// con los filtros dados y reproduce los movimientos acumulando por artículo
// desde cero. No consulta la cantidad cacheada.
func (uc *ReportUseCase) ReconstructReport(filter repository.MovementFilter) (*dto.StockReportResponse, error) {
	movements, err := uc.movRepo.List(filter)
	if err != nil {
		return nil, err
	}
	rows, totals := domstock.Replay(movements)
	return dto.ToStockReportResponse(rows, totals), nil
}

// ValuationSummary calcula sum(current_quantity × unit_cost) por moneda sobre
// los artículos vivos con cantidad > 0, directamente desde el registro cacheado:
// O(artículos) en lugar de O(movimientos).
func (uc *ReportUseCase) ValuationSummary() (*dto.ValuationSummaryResponse, error) {
	totals, err := uc.itemRepo.ValuationSummary()
	if err != nil {
		return nil, err
	}
	return dto.ToValuationSummaryResponse(totals), nil
}

// ListMovements expone el ledger con filtros y paginación, en el mismo orden
// determinista que usa la reconstrucción.
func (uc *ReportUseCase) ListMovements(filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	movements, err := uc.movRepo.List(filter)
	if err != nil {
		return nil, err
	}
	return dto.ToMovementListResponse(movements, filter.Limit, filter.Offset), nil
}

// GetMovement obtiene un movimiento por ID.
func (uc *ReportUseCase) GetMovement(id string) (*dto.MovementResponse, error) {
	m, err := uc.movRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	r := dto.ToMovementResponse(m)
	return &r, nil
}

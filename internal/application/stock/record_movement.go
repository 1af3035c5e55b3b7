package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/acms-stock/internal/domain"
	"github.com/jhoicas/acms-stock/internal/domain/entity"
	"github.com/jhoicas/acms-stock/internal/domain/repository"
	domstock "github.com/jhoicas/acms-stock/internal/domain/stock"
)

// RegisterMovementUseCase registra movimientos de stock de forma transaccional
// (entry, exit, adjustment, transfer) con bloqueo de fila y Commit/Rollback.
// Es el único escritor de la cantidad cacheada del artículo: el chequeo de
// disponibilidad y la escritura del nuevo saldo ocurren dentro de la misma
// transacción que inserta el movimiento, de modo que dos salidas concurrentes
// sobre el mismo artículo se serializan y nunca dejan el saldo negativo.
type RegisterMovementUseCase struct {
	txRunner TxRunner
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner TxRunner) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{txRunner: txRunner}
}

// MovementInput entrada para registrar un movimiento.
// Para entry/exit/adjustment: ItemID, Type, Quantity, MovementDate.
// UnitCost solo aplica a entradas (recalcula el costo promedio del artículo).
// Para transfer: ItemID, FromLocationID, ToLocationID, Quantity.
// Adjustment admite cantidad con signo; el resto exige cantidad positiva.
type MovementInput struct {
	ActorID        string
	ItemID         string
	Type           string
	Quantity       decimal.Decimal
	UnitCost       *decimal.Decimal
	ReasonID       string
	Reference      string
	LocationID     string
	FromLocationID string
	ToLocationID   string
	ProjectID      string
	BeneficiaryID  string
	MovementDate   time.Time
}

// RecordEntry registra una entrada. unitCost opcional: si viene, el costo
// promedio ponderado del artículo se recalcula con esta entrada.
func (uc *RegisterMovementUseCase) RecordEntry(ctx context.Context, input MovementInput) (string, error) {
	input.Type = entity.MovementTypeEntry
	return uc.RegisterMovement(ctx, input)
}

// RecordExit registra una salida. Falla con InsufficientStockError (y sin
// ningún efecto) si la cantidad supera el saldo disponible.
func (uc *RegisterMovementUseCase) RecordExit(ctx context.Context, input MovementInput) (string, error) {
	input.Type = entity.MovementTypeExit
	return uc.RegisterMovement(ctx, input)
}

// RegisterMovement valida la entrada, inicia una transacción, bloquea la fila
// del artículo, aplica la lógica según tipo y hace Commit o Rollback.
// Devuelve el ID del movimiento creado (el del registro de salida en transfer).
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInput) (string, error) {
	if err := validateInput(input); err != nil {
		return "", err
	}

	now := time.Now()
	txID := uuid.New().String()
	var movementID string

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		itemRepo repository.StockItemRepository,
	) error {
		// Bloquea la fila del artículo (SELECT FOR UPDATE o equivalente):
		// el check-then-act de salidas debe ver el saldo ya serializado.
		item, err := itemRepo.GetForUpdate(input.ItemID)
		if err != nil {
			return err
		}
		if item == nil || item.DeletedAt != nil {
			return domain.ErrNotFound
		}

		var id string
		switch input.Type {
		case entity.MovementTypeEntry:
			id, err = uc.doEntry(movRepo, itemRepo, item, input, now, txID)
		case entity.MovementTypeExit:
			id, err = uc.doExit(movRepo, itemRepo, item, input, now, txID)
		case entity.MovementTypeAdjustment:
			id, err = uc.doAdjustment(movRepo, itemRepo, item, input, now, txID)
		case entity.MovementTypeTransfer:
			id, err = uc.doTransfer(movRepo, itemRepo, item, input, now, txID)
		default:
			return domain.ErrInvalidInput
		}
		if err != nil {
			return err
		}
		movementID = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return movementID, nil
}

func validateInput(input MovementInput) error {
	if input.ItemID == "" || input.MovementDate.IsZero() {
		return domain.ErrInvalidInput
	}
	switch input.Type {
	case entity.MovementTypeEntry, entity.MovementTypeExit:
		if !input.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		if input.Type == entity.MovementTypeEntry && input.UnitCost != nil && input.UnitCost.LessThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeAdjustment:
		if input.Quantity.IsZero() {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeTransfer:
		if input.FromLocationID == "" || input.ToLocationID == "" ||
			input.FromLocationID == input.ToLocationID ||
			!input.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// doEntry: suma al saldo, recalcula el costo promedio si la entrada trae costo
// propio y persiste el movimiento.
func (uc *RegisterMovementUseCase) doEntry(
	movRepo repository.StockMovementRepository,
	itemRepo repository.StockItemRepository,
	item *entity.StockItem,
	input MovementInput,
	now time.Time, txID string,
) (string, error) {
	unitCost := item.UnitCost
	if input.UnitCost != nil {
		unitCost = *input.UnitCost
		newCost := domstock.WeightedAverageCost(item.CurrentQuantity, item.UnitCost, input.Quantity, unitCost)
		if err := itemRepo.UpdateCost(item.ID, newCost); err != nil {
			return "", err
		}
	}
	newQty := item.CurrentQuantity.Add(input.Quantity)
	if err := itemRepo.UpdateQuantity(item.ID, newQty); err != nil {
		return "", err
	}
	mov := uc.buildMovement(item, input, now, txID)
	mov.UnitCost = unitCost
	if err := movRepo.Create(mov); err != nil {
		return "", err
	}
	return mov.ID, nil
}

// doExit: verifica saldo disponible >= cantidad solicitada dentro de la misma
// transacción, resta y persiste el movimiento al costo promedio vigente.
func (uc *RegisterMovementUseCase) doExit(
	movRepo repository.StockMovementRepository,
	itemRepo repository.StockItemRepository,
	item *entity.StockItem,
	input MovementInput,
	now time.Time, txID string,
) (string, error) {
	if item.CurrentQuantity.LessThan(input.Quantity) {
		return "", &domain.InsufficientStockError{
			ItemID:    item.ID,
			Requested: input.Quantity,
			Available: item.CurrentQuantity,
		}
	}
	newQty := item.CurrentQuantity.Sub(input.Quantity)
	if err := itemRepo.UpdateQuantity(item.ID, newQty); err != nil {
		return "", err
	}
	mov := uc.buildMovement(item, input, now, txID)
	mov.UnitCost = item.UnitCost
	if err := movRepo.Create(mov); err != nil {
		return "", err
	}
	return mov.ID, nil
}

// doAdjustment: la cantidad viene con signo; un ajuste negativo respeta el
// mismo límite de no-negatividad que una salida.
func (uc *RegisterMovementUseCase) doAdjustment(
	movRepo repository.StockMovementRepository,
	itemRepo repository.StockItemRepository,
	item *entity.StockItem,
	input MovementInput,
	now time.Time, txID string,
) (string, error) {
	newQty := item.CurrentQuantity.Add(input.Quantity)
	if newQty.LessThan(decimal.Zero) {
		return "", &domain.InsufficientStockError{
			ItemID:    item.ID,
			Requested: input.Quantity.Neg(),
			Available: item.CurrentQuantity,
		}
	}
	if err := itemRepo.UpdateQuantity(item.ID, newQty); err != nil {
		return "", err
	}
	mov := uc.buildMovement(item, input, now, txID)
	mov.UnitCost = item.UnitCost
	if err := movRepo.Create(mov); err != nil {
		return "", err
	}
	return mov.ID, nil
}

// doTransfer: registra el par salida-origen / entrada-destino con el mismo
// TransactionID. El saldo único del artículo no cambia, pero la fila se toca
// igual para serializar traslados concurrentes y actualizar updated_at.
func (uc *RegisterMovementUseCase) doTransfer(
	movRepo repository.StockMovementRepository,
	itemRepo repository.StockItemRepository,
	item *entity.StockItem,
	input MovementInput,
	now time.Time, txID string,
) (string, error) {
	if item.CurrentQuantity.LessThan(input.Quantity) {
		return "", &domain.InsufficientStockError{
			ItemID:    item.ID,
			Requested: input.Quantity,
			Available: item.CurrentQuantity,
		}
	}
	if err := itemRepo.UpdateQuantity(item.ID, item.CurrentQuantity); err != nil {
		return "", err
	}
	outMov := uc.buildMovement(item, input, now, txID)
	outMov.UnitCost = item.UnitCost
	outMov.LocationID = input.FromLocationID
	if err := movRepo.Create(outMov); err != nil {
		return "", err
	}
	inMov := uc.buildMovement(item, input, now, txID)
	inMov.UnitCost = item.UnitCost
	inMov.LocationID = input.ToLocationID
	if err := movRepo.Create(inMov); err != nil {
		return "", err
	}
	return outMov.ID, nil
}

func (uc *RegisterMovementUseCase) buildMovement(
	item *entity.StockItem, input MovementInput, now time.Time, txID string,
) *entity.StockMovement {
	return &entity.StockMovement{
		ID:            uuid.New().String(),
		TransactionID: txID,
		ItemID:        item.ID,
		Type:          input.Type,
		Quantity:      input.Quantity,
		Currency:      item.Currency,
		ReasonID:      input.ReasonID,
		Reference:     input.Reference,
		LocationID:    input.LocationID,
		ProjectID:     input.ProjectID,
		BeneficiaryID: input.BeneficiaryID,
		PerformedBy:   input.ActorID,
		MovementDate:  input.MovementDate,
		CreatedAt:     now,
	}
}

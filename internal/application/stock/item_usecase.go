package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/acms-stock/internal/application/dto"
	"github.com/jhoicas/acms-stock/internal/domain"
	"github.com/jhoicas/acms-stock/internal/domain/entity"
	"github.com/jhoicas/acms-stock/internal/domain/repository"
)

// ItemUseCase casos de uso CRUD del catálogo de artículos. La cantidad cacheada
// y el costo promedio no se editan aquí: solo los escribe el motor de movimientos.
type ItemUseCase struct {
	repo    repository.StockItemRepository
	catRepo repository.CategoryRepository
	locRepo repository.LocationRepository
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(
	repo repository.StockItemRepository,
	catRepo repository.CategoryRepository,
	locRepo repository.LocationRepository,
) *ItemUseCase {
	return &ItemUseCase{repo: repo, catRepo: catRepo, locRepo: locRepo}
}

// Create registra un artículo nuevo con saldo cero. Nombre y unidad son
// obligatorios; categoría y ubicación se validan solo si vienen.
func (uc *ItemUseCase) Create(in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if in.Name == "" || in.Unit == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.ReorderLevel.LessThan(decimal.Zero) || in.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.CategoryID != "" {
		cat, err := uc.catRepo.GetByID(in.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, domain.ErrNotFound
		}
	}
	if in.LocationID != "" {
		loc, err := uc.locRepo.GetByID(in.LocationID)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, domain.ErrNotFound
		}
	}
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}
	now := time.Now()
	item := &entity.StockItem{
		ID:              uuid.New().String(),
		Name:            in.Name,
		CategoryID:      in.CategoryID,
		Unit:            in.Unit,
		ReorderLevel:    in.ReorderLevel,
		CurrentQuantity: decimal.Zero,
		UnitCost:        in.UnitCost,
		Currency:        currency,
		LocationID:      in.LocationID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(item); err != nil {
		return nil, err
	}
	return dto.ToItemResponse(item), nil
}

// GetByID obtiene un artículo por ID. Devuelve ErrNotFound si no existe o fue eliminado.
func (uc *ItemUseCase) GetByID(id string) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	return dto.ToItemResponse(item), nil
}

// List lista artículos no eliminados ordenados por nombre, con filtros de
// categoría, ubicación, texto (insensible a acentos) y stock bajo.
func (uc *ItemUseCase) List(filter repository.ItemFilter) (*dto.ItemListResponse, error) {
	list, err := uc.repo.List(filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *dto.ToItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: len(items)},
	}, nil
}

// Update edita metadatos del artículo. No permite tocar cantidad ni costo
// (se manejan vía movimientos).
func (uc *ItemUseCase) Update(id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, domain.ErrInvalidInput
		}
		item.Name = *in.Name
	}
	if in.Unit != nil {
		if *in.Unit == "" {
			return nil, domain.ErrInvalidInput
		}
		item.Unit = *in.Unit
	}
	if in.CategoryID != nil {
		if *in.CategoryID != "" {
			cat, err := uc.catRepo.GetByID(*in.CategoryID)
			if err != nil {
				return nil, err
			}
			if cat == nil {
				return nil, domain.ErrNotFound
			}
		}
		item.CategoryID = *in.CategoryID
	}
	if in.LocationID != nil {
		if *in.LocationID != "" {
			loc, err := uc.locRepo.GetByID(*in.LocationID)
			if err != nil {
				return nil, err
			}
			if loc == nil {
				return nil, domain.ErrNotFound
			}
		}
		item.LocationID = *in.LocationID
	}
	if in.ReorderLevel != nil {
		if in.ReorderLevel.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		item.ReorderLevel = *in.ReorderLevel
	}
	item.UpdatedAt = time.Now()
	if err := uc.repo.Update(item); err != nil {
		return nil, err
	}
	return dto.ToItemResponse(item), nil
}

// Delete marca el artículo como eliminado (soft delete). El historial de
// movimientos se conserva para auditoría.
func (uc *ItemUseCase) Delete(id string) error {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if item == nil || item.DeletedAt != nil {
		return domain.ErrNotFound
	}
	return uc.repo.SoftDelete(id)
}

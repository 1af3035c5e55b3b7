package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/acms-stock/internal/application/dto"
	"github.com/jhoicas/acms-stock/internal/domain"
	"github.com/jhoicas/acms-stock/internal/domain/entity"
	"github.com/jhoicas/acms-stock/internal/domain/repository"
)

// CatalogUseCase administra los catálogos de referencia (categorías y
// ubicaciones) que los artículos y movimientos apuntan por FK.
type CatalogUseCase struct {
	catRepo repository.CategoryRepository
	locRepo repository.LocationRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(
	catRepo repository.CategoryRepository,
	locRepo repository.LocationRepository,
) *CatalogUseCase {
	return &CatalogUseCase{catRepo: catRepo, locRepo: locRepo}
}

// CreateCategory registra una categoría.
func (uc *CatalogUseCase) CreateCategory(in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	cat := &entity.Category{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Code:      in.Code,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.catRepo.Create(cat); err != nil {
		return nil, err
	}
	return dto.ToCategoryResponse(cat), nil
}

// ListCategories lista categorías con paginación.
func (uc *CatalogUseCase) ListCategories(limit, offset int) ([]dto.CategoryResponse, error) {
	list, err := uc.catRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *dto.ToCategoryResponse(c))
	}
	return out, nil
}

// CreateLocation registra una ubicación (bodega / oficina de terreno).
func (uc *CatalogUseCase) CreateLocation(in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	loc := &entity.Location{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.locRepo.Create(loc); err != nil {
		return nil, err
	}
	return dto.ToLocationResponse(loc), nil
}

// ListLocations lista ubicaciones con paginación.
func (uc *CatalogUseCase) ListLocations(limit, offset int) ([]dto.LocationResponse, error) {
	list, err := uc.locRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, *dto.ToLocationResponse(l))
	}
	return out, nil
}

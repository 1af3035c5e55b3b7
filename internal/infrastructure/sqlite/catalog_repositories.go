package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jhoicas/acms-stock/internal/domain"
	"github.com/jhoicas/acms-stock/internal/domain/entity"
	"github.com/jhoicas/acms-stock/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)
var _ repository.LocationRepository = (*LocationRepo)(nil)

// CategoryRepo implementación de CategoryRepository sobre SQLite.
type CategoryRepo struct {
	q sqlx.Ext
}

// NewCategoryRepository construye el adaptador. Pasar *sqlx.DB o *sqlx.Tx.
func NewCategoryRepository(q sqlx.Ext) *CategoryRepo {
	return &CategoryRepo{q: q}
}

// Create persiste una categoría.
func (r *CategoryRepo) Create(category *entity.Category) error {
	_, err := r.q.Exec(
		`INSERT INTO categories (id, name, code, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		category.ID, category.Name, category.Code, category.CreatedAt, category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID obtiene una categoría por ID.
func (r *CategoryRepo) GetByID(id string) (*entity.Category, error) {
	var c entity.Category
	err := sqlx.Get(r.q, &c, `SELECT id, name, code, created_at AS createdat, updated_at AS updatedat FROM categories WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// List lista categorías ordenadas por nombre.
func (r *CategoryRepo) List(limit, offset int) ([]*entity.Category, error) {
	var list []*entity.Category
	err := sqlx.Select(r.q, &list,
		`SELECT id, name, code, created_at AS createdat, updated_at AS updatedat FROM categories ORDER BY name ASC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return list, nil
}

// LocationRepo implementación de LocationRepository sobre SQLite.
type LocationRepo struct {
	q sqlx.Ext
}

// NewLocationRepository construye el adaptador. Pasar *sqlx.DB o *sqlx.Tx.
func NewLocationRepository(q sqlx.Ext) *LocationRepo {
	return &LocationRepo{q: q}
}

// Create persiste una ubicación.
func (r *LocationRepo) Create(location *entity.Location) error {
	_, err := r.q.Exec(
		`INSERT INTO locations (id, name, address, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		location.ID, location.Name, location.Address, location.CreatedAt, location.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// GetByID obtiene una ubicación por ID.
func (r *LocationRepo) GetByID(id string) (*entity.Location, error) {
	var l entity.Location
	err := sqlx.Get(r.q, &l, `SELECT id, name, address, created_at AS createdat, updated_at AS updatedat FROM locations WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}

// List lista ubicaciones ordenadas por nombre.
func (r *LocationRepo) List(limit, offset int) ([]*entity.Location, error) {
	var list []*entity.Location
	err := sqlx.Select(r.q, &list,
		`SELECT id, name, address, created_at AS createdat, updated_at AS updatedat FROM locations ORDER BY name ASC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return list, nil
}

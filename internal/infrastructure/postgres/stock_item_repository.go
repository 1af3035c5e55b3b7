package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/acms-stock/internal/domain"
	"github.com/jhoicas/acms-stock/internal/domain/entity"
	"github.com/jhoicas/acms-stock/internal/domain/repository"
	"github.com/jhoicas/acms-stock/pkg/textutil"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

const itemColumns = `id, name, category_id, unit, reorder_level, current_quantity, unit_cost, currency, location_id, deleted_at, created_at, updated_at`

// StockItemRepo implementación de StockItemRepository sobre PostgreSQL (usable con pool o tx).
// La columna name_search guarda el nombre normalizado (minúsculas, sin acentos)
// para que la búsqueda no dependa de extensiones como unaccent.
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

// Create persiste un artículo nuevo.
func (r *StockItemRepo) Create(item *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (id, name, name_search, category_id, unit, reorder_level, current_quantity, unit_cost, currency, location_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Name, textutil.Fold(item.Name), nullable(item.CategoryID), item.Unit,
		item.ReorderLevel, item.CurrentQuantity, item.UnitCost, item.Currency,
		nullable(item.LocationID), item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID (incluye eliminados; el caso de uso decide).
func (r *StockItemRepo) GetByID(id string) (*entity.StockItem, error) {
	query := `SELECT ` + itemColumns + ` FROM stock_items WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get stock item")
}

// GetForUpdate obtiene el artículo y bloquea la fila (SELECT FOR UPDATE) para
// serializar el check-then-act de salidas concurrentes.
func (r *StockItemRepo) GetForUpdate(id string) (*entity.StockItem, error) {
	query := `SELECT ` + itemColumns + ` FROM stock_items WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get stock item for update")
}

// Update actualiza metadatos del artículo (nombre, unidad, referencias, reorden).
func (r *StockItemRepo) Update(item *entity.StockItem) error {
	query := `
		UPDATE stock_items
		SET name = $2, name_search = $3, category_id = $4, unit = $5, reorder_level = $6, location_id = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL`
	cmd, err := r.q.Exec(context.Background(), query,
		item.ID, item.Name, textutil.Fold(item.Name), nullable(item.CategoryID), item.Unit,
		item.ReorderLevel, nullable(item.LocationID), item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateQuantity escribe la cantidad cacheada y updated_at.
func (r *StockItemRepo) UpdateQuantity(id string, quantity decimal.Decimal) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE stock_items SET current_quantity = $2, updated_at = now() WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		return fmt.Errorf("update stock item quantity: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateCost actualiza solo el costo promedio del artículo.
func (r *StockItemRepo) UpdateCost(id string, cost decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE stock_items SET unit_cost = $2, updated_at = now() WHERE id = $1`,
		id, cost,
	)
	if err != nil {
		return fmt.Errorf("update stock item cost: %w", err)
	}
	return nil
}

// List lista artículos no eliminados ordenados por nombre ascendente.
func (r *StockItemRepo) List(filter repository.ItemFilter) ([]*entity.StockItem, error) {
	query := `SELECT ` + itemColumns + ` FROM stock_items WHERE deleted_at IS NULL`
	args := []any{}
	pos := 1
	if filter.CategoryID != "" {
		query += fmt.Sprintf(" AND category_id = $%d", pos)
		args = append(args, filter.CategoryID)
		pos++
	}
	if filter.LocationID != "" {
		query += fmt.Sprintf(" AND location_id = $%d", pos)
		args = append(args, filter.LocationID)
		pos++
	}
	if filter.SearchText != "" {
		query += fmt.Sprintf(" AND name_search LIKE $%d", pos)
		args = append(args, "%"+textutil.Fold(filter.SearchText)+"%")
		pos++
	}
	if filter.LowStockOnly {
		query += " AND reorder_level > 0 AND current_quantity <= reorder_level"
	}
	query += " ORDER BY name ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// SoftDelete marca el artículo como eliminado conservando su historial.
func (r *StockItemRepo) SoftDelete(id string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE stock_items SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("soft delete stock item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ValuationSummary agrupa sum(current_quantity * unit_cost) por moneda sobre
// artículos vivos con cantidad positiva.
func (r *StockItemRepo) ValuationSummary() ([]repository.ValuationTotal, error) {
	query := `
		SELECT currency, COUNT(*), COALESCE(SUM(current_quantity), 0), COALESCE(SUM(current_quantity * unit_cost), 0)
		FROM stock_items
		WHERE deleted_at IS NULL AND current_quantity > 0
		GROUP BY currency
		ORDER BY currency`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("valuation summary: %w", err)
	}
	defer rows.Close()
	var totals []repository.ValuationTotal
	for rows.Next() {
		var t repository.ValuationTotal
		if err := rows.Scan(&t.Currency, &t.Items, &t.TotalQuantity, &t.TotalValue); err != nil {
			return nil, fmt.Errorf("scan valuation total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *StockItemRepo) scanOne(row pgx.Row, op string) (*entity.StockItem, error) {
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

func scanItem(row pgx.Row) (*entity.StockItem, error) {
	var i entity.StockItem
	var categoryID, locationID *string
	err := row.Scan(
		&i.ID, &i.Name, &categoryID, &i.Unit, &i.ReorderLevel, &i.CurrentQuantity,
		&i.UnitCost, &i.Currency, &locationID, &i.DeletedAt, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryID != nil {
		i.CategoryID = *categoryID
	}
	if locationID != nil {
		i.LocationID = *locationID
	}
	return &i, nil
}

// nullable convierte cadenas vacías a NULL para columnas con FK.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

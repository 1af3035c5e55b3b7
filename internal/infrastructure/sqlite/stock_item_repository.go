package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/acms-stock/internal/domain"
	"github.com/jhoicas/acms-stock/internal/domain/entity"
	"github.com/jhoicas/acms-stock/internal/domain/repository"
	"github.com/jhoicas/acms-stock/pkg/textutil"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

// itemRow fila de stock_items con tags sqlx.
type itemRow struct {
	ID              string          `db:"id"`
	Name            string          `db:"name"`
	NameSearch      string          `db:"name_search"`
	CategoryID      sql.NullString  `db:"category_id"`
	Unit            string          `db:"unit"`
	ReorderLevel    decimal.Decimal `db:"reorder_level"`
	CurrentQuantity decimal.Decimal `db:"current_quantity"`
	UnitCost        decimal.Decimal `db:"unit_cost"`
	Currency        string          `db:"currency"`
	LocationID      sql.NullString  `db:"location_id"`
	DeletedAt       *time.Time      `db:"deleted_at"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func (r itemRow) toEntity() *entity.StockItem {
	return &entity.StockItem{
		ID:              r.ID,
		Name:            r.Name,
		CategoryID:      r.CategoryID.String,
		Unit:            r.Unit,
		ReorderLevel:    r.ReorderLevel,
		CurrentQuantity: r.CurrentQuantity,
		UnitCost:        r.UnitCost,
		Currency:        r.Currency,
		LocationID:      r.LocationID.String,
		DeletedAt:       r.DeletedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// StockItemRepo implementación de StockItemRepository sobre SQLite (usable con DB o Tx).
type StockItemRepo struct {
	q sqlx.Ext
}

// NewStockItemRepository construye el adaptador. Pasar *sqlx.DB o *sqlx.Tx.
func NewStockItemRepository(q sqlx.Ext) *StockItemRepo {
	return &StockItemRepo{q: q}
}

// Create persiste un artículo nuevo.
func (r *StockItemRepo) Create(item *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (id, name, name_search, category_id, unit, reorder_level, current_quantity, unit_cost, currency, location_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.Exec(query,
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
	var row itemRow
	err := sqlx.Get(r.q, &row, `SELECT * FROM stock_items WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return row.toEntity(), nil
}

// GetForUpdate obtiene el artículo para modificarlo. SQLite no tiene
// SELECT FOR UPDATE: la exclusión la da la transacción BEGIN IMMEDIATE,
// que toma el write-lock de la base desde el inicio.
func (r *StockItemRepo) GetForUpdate(id string) (*entity.StockItem, error) {
	return r.GetByID(id)
}

// Update actualiza metadatos del artículo.
func (r *StockItemRepo) Update(item *entity.StockItem) error {
	query := `
		UPDATE stock_items
		SET name = ?, name_search = ?, category_id = ?, unit = ?, reorder_level = ?, location_id = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`
	res, err := r.q.Exec(query,
		item.Name, textutil.Fold(item.Name), nullable(item.CategoryID), item.Unit,
		item.ReorderLevel, nullable(item.LocationID), item.UpdatedAt, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update stock item: %w", err)
	}
	return requireRow(res)
}

// UpdateQuantity escribe la cantidad cacheada y updated_at.
func (r *StockItemRepo) UpdateQuantity(id string, quantity decimal.Decimal) error {
	res, err := r.q.Exec(
		`UPDATE stock_items SET current_quantity = ?, updated_at = ? WHERE id = ?`,
		quantity, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update stock item quantity: %w", err)
	}
	return requireRow(res)
}

// UpdateCost actualiza solo el costo promedio del artículo.
func (r *StockItemRepo) UpdateCost(id string, cost decimal.Decimal) error {
	_, err := r.q.Exec(
		`UPDATE stock_items SET unit_cost = ?, updated_at = ? WHERE id = ?`,
		cost, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update stock item cost: %w", err)
	}
	return nil
}

// List lista artículos no eliminados ordenados por nombre ascendente.
func (r *StockItemRepo) List(filter repository.ItemFilter) ([]*entity.StockItem, error) {
	query := `SELECT * FROM stock_items WHERE deleted_at IS NULL`
	args := []any{}
	if filter.CategoryID != "" {
		query += " AND category_id = ?"
		args = append(args, filter.CategoryID)
	}
	if filter.LocationID != "" {
		query += " AND location_id = ?"
		args = append(args, filter.LocationID)
	}
	if filter.SearchText != "" {
		query += " AND name_search LIKE ?"
		args = append(args, "%"+textutil.Fold(filter.SearchText)+"%")
	}
	query += " ORDER BY name ASC"
	// El filtro de stock bajo compara decimales en Go: las columnas TEXT no
	// permiten la comparación numérica confiable en SQL. Si está activo, la
	// paginación se aplica después del filtro, no en el LIMIT de SQL.
	if filter.Limit > 0 && !filter.LowStockOnly {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	var rows []itemRow
	if err := sqlx.Select(r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	var list []*entity.StockItem
	for _, row := range rows {
		item := row.toEntity()
		if filter.LowStockOnly && !item.IsLowStock() {
			continue
		}
		list = append(list, item)
	}
	if filter.LowStockOnly && filter.Limit > 0 {
		list = paginate(list, filter.Limit, filter.Offset)
	}
	return list, nil
}

// paginate recorta la lista ya filtrada según limit/offset.
func paginate(list []*entity.StockItem, limit, offset int) []*entity.StockItem {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit < len(list) {
		list = list[:limit]
	}
	return list
}

// SoftDelete marca el artículo como eliminado conservando su historial.
func (r *StockItemRepo) SoftDelete(id string) error {
	now := time.Now()
	res, err := r.q.Exec(
		`UPDATE stock_items SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("soft delete stock item: %w", err)
	}
	return requireRow(res)
}

// ValuationSummary agrega por moneda en Go con aritmética decimal: sumar en
// SQL sobre columnas TEXT pasaría por float y perdería exactitud.
func (r *StockItemRepo) ValuationSummary() ([]repository.ValuationTotal, error) {
	var rows []itemRow
	err := sqlx.Select(r.q, &rows,
		`SELECT * FROM stock_items WHERE deleted_at IS NULL ORDER BY currency ASC`)
	if err != nil {
		return nil, fmt.Errorf("valuation summary: %w", err)
	}
	byCurrency := make(map[string]*repository.ValuationTotal)
	var order []string
	for _, row := range rows {
		if !row.CurrentQuantity.GreaterThan(decimal.Zero) {
			continue
		}
		t, ok := byCurrency[row.Currency]
		if !ok {
			t = &repository.ValuationTotal{Currency: row.Currency}
			byCurrency[row.Currency] = t
			order = append(order, row.Currency)
		}
		t.Items++
		t.TotalQuantity = t.TotalQuantity.Add(row.CurrentQuantity)
		t.TotalValue = t.TotalValue.Add(row.CurrentQuantity.Mul(row.UnitCost))
	}
	totals := make([]repository.ValuationTotal, 0, len(order))
	for _, c := range order {
		totals = append(totals, *byCurrency[c])
	}
	return totals, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// nullable convierte cadenas vacías a NULL para columnas con FK.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/acms-stock/internal/domain/entity"
	"github.com/jhoicas/acms-stock/internal/domain/repository"
	"github.com/jhoicas/acms-stock/pkg/textutil"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// movementRow fila de stock_movements con tags sqlx.
type movementRow struct {
	ID            string          `db:"id"`
	TransactionID string          `db:"transaction_id"`
	ItemID        string          `db:"item_id"`
	Type          string          `db:"type"`
	Quantity      decimal.Decimal `db:"quantity"`
	UnitCost      decimal.Decimal `db:"unit_cost"`
	Currency      string          `db:"currency"`
	ReasonID      sql.NullString  `db:"reason_id"`
	Reference     string          `db:"reference"`
	LocationID    sql.NullString  `db:"location_id"`
	ProjectID     sql.NullString  `db:"project_id"`
	BeneficiaryID sql.NullString  `db:"beneficiary_id"`
	PerformedBy   sql.NullString  `db:"performed_by"`
	MovementDate  time.Time       `db:"movement_date"`
	CreatedAt     time.Time       `db:"created_at"`
}

func (r movementRow) toEntity() *entity.StockMovement {
	return &entity.StockMovement{
		ID:            r.ID,
		TransactionID: r.TransactionID,
		ItemID:        r.ItemID,
		Type:          r.Type,
		Quantity:      r.Quantity,
		UnitCost:      r.UnitCost,
		Currency:      r.Currency,
		ReasonID:      r.ReasonID.String,
		Reference:     r.Reference,
		LocationID:    r.LocationID.String,
		ProjectID:     r.ProjectID.String,
		BeneficiaryID: r.BeneficiaryID.String,
		PerformedBy:   r.PerformedBy.String,
		MovementDate:  r.MovementDate,
		CreatedAt:     r.CreatedAt,
	}
}

// StockMovementRepo implementación del ledger sobre SQLite (usable con DB o Tx).
// Append-only: no expone UPDATE ni DELETE sobre stock_movements.
type StockMovementRepo struct {
	q sqlx.Ext
}

// NewStockMovementRepository construye el adaptador. Pasar *sqlx.DB o *sqlx.Tx.
func NewStockMovementRepository(q sqlx.Ext) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento del ledger.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, transaction_id, item_id, type, quantity, unit_cost, currency, reason_id, reference, location_id, project_id, beneficiary_id, performed_by, movement_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.Exec(query,
		m.ID, m.TransactionID, m.ItemID, m.Type, m.Quantity, m.UnitCost, m.Currency,
		nullable(m.ReasonID), m.Reference, nullable(m.LocationID), nullable(m.ProjectID),
		nullable(m.BeneficiaryID), nullable(m.PerformedBy), m.MovementDate, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	var row movementRow
	err := sqlx.Get(r.q, &row, `SELECT * FROM stock_movements WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return row.toEntity(), nil
}

// List consulta el ledger con filtros, siempre ordenado
// (movement_date ASC, created_at ASC) para replay determinista.
func (r *StockMovementRepo) List(filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `
		SELECT m.id, m.transaction_id, m.item_id, m.type, m.quantity, m.unit_cost, m.currency,
		       m.reason_id, m.reference, m.location_id, m.project_id, m.beneficiary_id,
		       m.performed_by, m.movement_date, m.created_at
		FROM stock_movements m
		JOIN stock_items i ON i.id = m.item_id
		WHERE 1=1`
	args := []any{}
	if filter.ItemID != "" {
		query += " AND m.item_id = ?"
		args = append(args, filter.ItemID)
	}
	if filter.LocationID != "" {
		query += " AND m.location_id = ?"
		args = append(args, filter.LocationID)
	}
	if filter.ProjectID != "" {
		query += " AND m.project_id = ?"
		args = append(args, filter.ProjectID)
	}
	if filter.Type != "" {
		query += " AND m.type = ?"
		args = append(args, filter.Type)
	}
	if filter.From != nil {
		query += " AND m.movement_date >= ?"
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query += " AND m.movement_date <= ?"
		args = append(args, *filter.To)
	}
	if filter.SearchText != "" {
		query += " AND (i.name_search LIKE ? OR LOWER(m.reference) LIKE LOWER(?))"
		args = append(args, "%"+textutil.Fold(filter.SearchText)+"%", "%"+filter.SearchText+"%")
	}
	query += " ORDER BY m.movement_date ASC, m.created_at ASC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	var rows []movementRow
	if err := sqlx.Select(r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	list := make([]*entity.StockMovement, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toEntity())
	}
	return list, nil
}

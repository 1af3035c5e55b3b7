package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/acms-stock/internal/domain/entity"
	"github.com/jhoicas/acms-stock/internal/domain/repository"
	"github.com/jhoicas/acms-stock/pkg/textutil"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `m.id, m.transaction_id, m.item_id, m.type, m.quantity, m.unit_cost, m.currency, m.reason_id, m.reference, m.location_id, m.project_id, m.beneficiary_id, m.performed_by, m.movement_date, m.created_at`

// StockMovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
// Append-only: no expone UPDATE ni DELETE sobre stock_movements.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento del ledger.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, transaction_id, item_id, type, quantity, unit_cost, currency, reason_id, reference, location_id, project_id, beneficiary_id, performed_by, movement_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
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
	query := `SELECT ` + movementColumns + ` FROM stock_movements m WHERE m.id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// List consulta el ledger con filtros, siempre ordenado
// (movement_date ASC, created_at ASC) para replay determinista.
// SearchText compara contra el nombre normalizado del artículo y la referencia.
func (r *StockMovementRepo) List(filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements m
		JOIN stock_items i ON i.id = m.item_id
		WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.ItemID != "" {
		query += fmt.Sprintf(" AND m.item_id = $%d", pos)
		args = append(args, filter.ItemID)
		pos++
	}
	if filter.LocationID != "" {
		query += fmt.Sprintf(" AND m.location_id = $%d", pos)
		args = append(args, filter.LocationID)
		pos++
	}
	if filter.ProjectID != "" {
		query += fmt.Sprintf(" AND m.project_id = $%d", pos)
		args = append(args, filter.ProjectID)
		pos++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND m.type = $%d", pos)
		args = append(args, filter.Type)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND m.movement_date >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND m.movement_date <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	if filter.SearchText != "" {
		// La referencia se compara con LOWER en ambos lados para que el
		// backend SQLite se comporte igual.
		query += fmt.Sprintf(" AND (i.name_search LIKE $%d OR LOWER(m.reference) LIKE LOWER($%d))", pos, pos+1)
		folded := "%" + textutil.Fold(filter.SearchText) + "%"
		args = append(args, folded, "%"+filter.SearchText+"%")
		pos += 2
	}
	query += " ORDER BY m.movement_date ASC, m.created_at ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var reasonID, locationID, projectID, beneficiaryID, performedBy *string
	err := row.Scan(
		&m.ID, &m.TransactionID, &m.ItemID, &m.Type, &m.Quantity, &m.UnitCost, &m.Currency,
		&reasonID, &m.Reference, &locationID, &projectID, &beneficiaryID, &performedBy,
		&m.MovementDate, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reasonID != nil {
		m.ReasonID = *reasonID
	}
	if locationID != nil {
		m.LocationID = *locationID
	}
	if projectID != nil {
		m.ProjectID = *projectID
	}
	if beneficiaryID != nil {
		m.BeneficiaryID = *beneficiaryID
	}
	if performedBy != nil {
		m.PerformedBy = *performedBy
	}
	return &m, nil
}

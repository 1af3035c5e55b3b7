package dto

import (
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/acms-stock/internal/domain/entity"
	"github.com/jhoicas/acms-stock/internal/domain/repository"
	"github.com/jhoicas/acms-stock/internal/domain/stock"
)

// CreateItemRequest body para POST /api/items.
type CreateItemRequest struct {
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	CategoryID   string          `json:"category_id,omitempty"`
	LocationID   string          `json:"location_id,omitempty"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Currency     string          `json:"currency,omitempty"`
}

// UpdateItemRequest body para PUT /api/items/:id. Campos nil = sin cambio.
// Cantidad y costo no son editables: se manejan vía movimientos.
type UpdateItemRequest struct {
	Name         *string          `json:"name,omitempty"`
	Unit         *string          `json:"unit,omitempty"`
	CategoryID   *string          `json:"category_id,omitempty"`
	LocationID   *string          `json:"location_id,omitempty"`
	ReorderLevel *decimal.Decimal `json:"reorder_level,omitempty"`
}

// ItemResponse representación de un artículo en respuestas.
type ItemResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Unit            string          `json:"unit"`
	CategoryID      string          `json:"category_id,omitempty"`
	LocationID      string          `json:"location_id,omitempty"`
	ReorderLevel    decimal.Decimal `json:"reorder_level"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Currency        string          `json:"currency"`
	TotalValue      decimal.Decimal `json:"total_value"`
	LowStock        bool            `json:"low_stock"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ItemListResponse listado paginado de artículos.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ToItemResponse mapea la entidad al DTO de respuesta.
func ToItemResponse(i *entity.StockItem) *ItemResponse {
	if i == nil {
		return nil
	}
	return &ItemResponse{
		ID:              i.ID,
		Name:            i.Name,
		Unit:            i.Unit,
		CategoryID:      i.CategoryID,
		LocationID:      i.LocationID,
		ReorderLevel:    i.ReorderLevel,
		CurrentQuantity: i.CurrentQuantity,
		UnitCost:        i.UnitCost,
		Currency:        i.Currency,
		TotalValue:      i.TotalValue(),
		LowStock:        i.IsLowStock(),
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}

// RegisterMovementRequest body para POST /api/movements.
// movement_date vacío = hoy. quantity con signo solo para adjustment.
type RegisterMovementRequest struct {
	ItemID         string           `json:"item_id"`
	Type           string           `json:"type"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	ReasonID       string           `json:"reason_id,omitempty"`
	Reference      string           `json:"reference,omitempty"`
	LocationID     string           `json:"location_id,omitempty"`
	FromLocationID string           `json:"from_location_id,omitempty"`
	ToLocationID   string           `json:"to_location_id,omitempty"`
	ProjectID      string           `json:"project_id,omitempty"`
	BeneficiaryID  string           `json:"beneficiary_id,omitempty"`
	MovementDate   string           `json:"movement_date,omitempty"` // YYYY-MM-DD
}

// MovementResponse representación de un movimiento del ledger.
type MovementResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	ItemID        string          `json:"item_id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Currency      string          `json:"currency"`
	ReasonID      string          `json:"reason_id,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	LocationID    string          `json:"location_id,omitempty"`
	ProjectID     string          `json:"project_id,omitempty"`
	BeneficiaryID string          `json:"beneficiary_id,omitempty"`
	PerformedBy   string          `json:"performed_by"`
	MovementDate  time.Time       `json:"movement_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MovementListResponse listado paginado de movimientos.
type MovementListResponse struct {
	Movements []MovementResponse `json:"movements"`
	Page      PageResponse       `json:"page"`
}

// ToMovementResponse mapea la entidad al DTO de respuesta.
func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		ItemID:        m.ItemID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		Currency:      m.Currency,
		ReasonID:      m.ReasonID,
		Reference:     m.Reference,
		LocationID:    m.LocationID,
		ProjectID:     m.ProjectID,
		BeneficiaryID: m.BeneficiaryID,
		PerformedBy:   m.PerformedBy,
		MovementDate:  m.MovementDate,
		CreatedAt:     m.CreatedAt,
	}
}

// ToMovementListResponse mapea la lista del ledger.
func ToMovementListResponse(list []*entity.StockMovement, limit, offset int) *MovementListResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return &MovementListResponse{
		Movements: out,
		Page:      PageResponse{Limit: limit, Offset: offset, Total: len(out)},
	}
}

// StockReportRow fila del reporte reconstruido: movimiento + saldo acumulado.
type StockReportRow struct {
	Movement     MovementResponse `json:"movement"`
	AvailableQty decimal.Decimal  `json:"available_qty"`
	ValueCost    decimal.Decimal  `json:"value_cost"`
	Status       string           `json:"status"`
}

// StockReportTotals acumulados por artículo sobre el conjunto filtrado.
type StockReportTotals struct {
	ItemID     string          `json:"item_id"`
	EntryTotal decimal.Decimal `json:"entry_total"`
	ExitTotal  decimal.Decimal `json:"exit_total"`
	Available  decimal.Decimal `json:"available"`
}

// StockReportResponse respuesta de GET /api/reports/stock.
type StockReportResponse struct {
	Rows   []StockReportRow    `json:"rows"`
	Totals []StockReportTotals `json:"totals"`
}

// ToStockReportResponse mapea filas y totales del replay.
func ToStockReportResponse(rows []stock.ReportRow, totals map[string]*stock.ItemTotals) *StockReportResponse {
	out := &StockReportResponse{
		Rows:   make([]StockReportRow, 0, len(rows)),
		Totals: make([]StockReportTotals, 0, len(totals)),
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, StockReportRow{
			Movement:     ToMovementResponse(r.Movement),
			AvailableQty: r.AvailableQty,
			ValueCost:    r.ValueCost,
			Status:       r.Status,
		})
	}
	// El orden de las filas fija el orden de los totales (primera aparición).
	seen := make(map[string]bool)
	for _, r := range rows {
		id := r.Movement.ItemID
		if seen[id] {
			continue
		}
		seen[id] = true
		t := totals[id]
		out.Totals = append(out.Totals, StockReportTotals{
			ItemID:     t.ItemID,
			EntryTotal: t.EntryTotal,
			ExitTotal:  t.ExitTotal,
			Available:  t.Available,
		})
	}
	return out
}

// ValuationTotalDTO totales de valuación cacheada por moneda.
// TotalValueDisplay viene formateado según la moneda (ej. "$140.00").
type ValuationTotalDTO struct {
	Currency          string          `json:"currency"`
	Items             int             `json:"items"`
	TotalQuantity     decimal.Decimal `json:"total_quantity"`
	TotalValue        decimal.Decimal `json:"total_value"`
	TotalValueDisplay string          `json:"total_value_display"`
}

// ValuationSummaryResponse respuesta de GET /api/reports/valuation.
type ValuationSummaryResponse struct {
	Totals []ValuationTotalDTO `json:"totals"`
}

// ToValuationSummaryResponse mapea los totales y formatea el monto por moneda.
func ToValuationSummaryResponse(totals []repository.ValuationTotal) *ValuationSummaryResponse {
	out := &ValuationSummaryResponse{Totals: make([]ValuationTotalDTO, 0, len(totals))}
	for _, t := range totals {
		out.Totals = append(out.Totals, ValuationTotalDTO{
			Currency:          t.Currency,
			Items:             t.Items,
			TotalQuantity:     t.TotalQuantity,
			TotalValue:        t.TotalValue,
			TotalValueDisplay: formatMoney(t.TotalValue, t.Currency),
		})
	}
	return out
}

// formatMoney convierte el decimal a unidades menores de la moneda y lo
// formatea con go-money. Moneda desconocida: dos decimales por defecto.
func formatMoney(amount decimal.Decimal, currency string) string {
	fraction := 2
	if c := money.GetCurrency(currency); c != nil {
		fraction = c.Fraction
	}
	minor := amount.Shift(int32(fraction)).Round(0).IntPart()
	return money.New(minor, currency).Display()
}

// CreateCategoryRequest body para POST /api/categories.
type CreateCategoryRequest struct {
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// CategoryResponse representación de una categoría.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToCategoryResponse mapea la entidad al DTO.
func ToCategoryResponse(c *entity.Category) *CategoryResponse {
	if c == nil {
		return nil
	}
	return &CategoryResponse{ID: c.ID, Name: c.Name, Code: c.Code, CreatedAt: c.CreatedAt}
}

// CreateLocationRequest body para POST /api/locations.
type CreateLocationRequest struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// LocationResponse representación de una ubicación.
type LocationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToLocationResponse mapea la entidad al DTO.
func ToLocationResponse(l *entity.Location) *LocationResponse {
	if l == nil {
		return nil
	}
	return &LocationResponse{ID: l.ID, Name: l.Name, Address: l.Address, CreatedAt: l.CreatedAt}
}

package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/acms-stock/internal/application/dto"
	"github.com/jhoicas/acms-stock/internal/application/stock"
	"github.com/jhoicas/acms-stock/internal/domain/repository"
)

// ReportHandler maneja las peticiones HTTP de reportes y consulta del ledger (protegido).
type ReportHandler struct {
	uc *stock.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *stock.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// movementFilterFromQuery arma el filtro común de ledger desde la query string.
func movementFilterFromQuery(c *fiber.Ctx) (repository.MovementFilter, error) {
	filter := repository.MovementFilter{
		ItemID:     c.Query("item_id"),
		LocationID: c.Query("location_id"),
		ProjectID:  c.Query("project_id"),
		Type:       c.Query("type"),
		SearchText: c.Query("search"),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, err
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, err
		}
		filter.To = &t
	}
	return filter, nil
}

// StockReport godoc
// @Summary      Reporte de stock reconstruido desde el ledger
// @Description  Reproduce los movimientos filtrados en orden (movement_date,
//
//	created_at) acumulando saldo por artículo desde cero. No usa la cantidad
//	cacheada: sirve como vía de auditoría contra ella.
//
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "Filtrar por artículo"
// @Param        location_id  query  string  false  "Filtrar por ubicación"
// @Param        project_id   query  string  false  "Filtrar por proyecto"
// @Param        type         query  string  false  "entry | exit | adjustment | transfer"
// @Param        from         query  string  false  "Fecha desde (YYYY-MM-DD)"
// @Param        to           query  string  false  "Fecha hasta (YYYY-MM-DD)"
// @Param        search       query  string  false  "Nombre de artículo o referencia"
// @Success      200  {object}  dto.StockReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/stock [get]
func (h *ReportHandler) StockReport(c *fiber.Ctx) error {
	filter, err := movementFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from/to deben ser YYYY-MM-DD"})
	}
	// Sin paginación: la reconstrucción necesita el conjunto filtrado completo.
	out, err := h.uc.ReconstructReport(filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// ValuationSummary godoc
// @Summary      Resumen de valuación del inventario
// @Description  sum(current_quantity × unit_cost) por moneda sobre los
//
//	artículos vivos con saldo positivo, desde el registro cacheado.
//
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ValuationSummaryResponse
// @Router       /api/reports/valuation [get]
func (h *ReportHandler) ValuationSummary(c *fiber.Ctx) error {
	out, err := h.uc.ValuationSummary()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Listar movimientos del ledger
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "Filtrar por artículo"
// @Param        location_id  query  string  false  "Filtrar por ubicación"
// @Param        project_id   query  string  false  "Filtrar por proyecto"
// @Param        type         query  string  false  "entry | exit | adjustment | transfer"
// @Param        from         query  string  false  "Fecha desde (YYYY-MM-DD)"
// @Param        to           query  string  false  "Fecha hasta (YYYY-MM-DD)"
// @Param        search       query  string  false  "Nombre de artículo o referencia"
// @Param        limit        query  int     false  "Límite"   default(50)
// @Param        offset       query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *ReportHandler) ListMovements(c *fiber.Ctx) error {
	filter, err := movementFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from/to deben ser YYYY-MM-DD"})
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	filter.Limit = limit
	filter.Offset = offset

	out, err := h.uc.ListMovements(filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetMovement godoc
// @Summary      Obtener movimiento por ID
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *ReportHandler) GetMovement(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.GetMovement(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "movimiento no encontrado"})
	}
	return c.JSON(out)
}

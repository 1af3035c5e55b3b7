package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/acms-stock/internal/application/dto"
	"github.com/jhoicas/acms-stock/internal/application/stock"
	"github.com/jhoicas/acms-stock/internal/domain"
)

// MovementHandler maneja las peticiones HTTP del ledger de movimientos (protegido).
type MovementHandler struct {
	uc *stock.RegisterMovementUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *stock.RegisterMovementUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar movimiento de stock
// @Description  type: entry | exit | adjustment | transfer. quantity positiva
//
//	salvo adjustment (con signo). unit_cost solo en entradas: recalcula el costo
//	promedio. transfer exige from_location_id y to_location_id distintos.
//
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "item_id, type, quantity, movement_date (YYYY-MM-DD, vacío = hoy)"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	movementDate := time.Now()
	if in.MovementDate != "" {
		parsed, err := time.Parse("2006-01-02", in.MovementDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "movement_date debe ser YYYY-MM-DD"})
		}
		movementDate = parsed
	}

	input := stock.MovementInput{
		ActorID:        userID,
		ItemID:         in.ItemID,
		Type:           in.Type,
		Quantity:       in.Quantity,
		UnitCost:       in.UnitCost,
		ReasonID:       in.ReasonID,
		Reference:      in.Reference,
		LocationID:     in.LocationID,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		ProjectID:      in.ProjectID,
		BeneficiaryID:  in.BeneficiaryID,
		MovementDate:   movementDate,
	}

	movementID, err := h.uc.RegisterMovement(c.Context(), input)
	if err != nil {
		var insufficient *domain.InsufficientStockError
		if errors.As(err, &insufficient) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Code:      "INSUFFICIENT_STOCK",
				Message:   "stock insuficiente",
				Available: insufficient.Available.String(),
			})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": movementID, "message": "movimiento registrado"})
}

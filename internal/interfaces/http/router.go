package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/acms-stock/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC           *stock.ItemUseCase
	RegisterMovement *stock.RegisterMovementUseCase
	ReportUC         *stock.ReportUseCase
	CatalogUC        *stock.CatalogUseCase
	JWTSecret        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Items (protegido)
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)
	items.Delete("/:id", itemHandler.Delete)

	// Movements (protegido): escrituras al ledger y consulta
	movements := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.RegisterMovement)
	reportHandler := NewReportHandler(deps.ReportUC)
	movements.Post("/", movementHandler.Register)
	movements.Get("/", reportHandler.ListMovements)
	movements.Get("/:id", reportHandler.GetMovement)

	// Reports (protegido)
	reports := protected.Group("/reports")
	reports.Get("/stock", reportHandler.StockReport)
	reports.Get("/valuation", reportHandler.ValuationSummary)

	// Catálogos de referencia (protegido)
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	categories := protected.Group("/categories")
	categories.Post("/", catalogHandler.CreateCategory)
	categories.Get("/", catalogHandler.ListCategories)
	locations := protected.Group("/locations")
	locations.Post("/", catalogHandler.CreateLocation)
	locations.Get("/", catalogHandler.ListLocations)
}

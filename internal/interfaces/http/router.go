package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jcastellr/bodega-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Stock       *StockHandler
	Fulfillment *FulfillmentHandler
	Orders      *OrdersHandler
	Catalog     *CatalogHandler
	JWT         *jwt.Manager
}

// Router registra las rutas de la API. Todas las rutas de negocio requieren
// Bearer Token; las que mutan stock exigen además cuenta aprobada.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWT))
	approved := RequireApproved()

	// Catálogo
	products := protected.Group("/products")
	products.Post("/", approved, deps.Catalog.CreateProduct)
	products.Get("/", deps.Catalog.ListProducts)
	products.Get("/:id", deps.Catalog.GetProduct)
	products.Put("/:id", approved, deps.Catalog.UpdateProduct)
	products.Delete("/:id", approved, deps.Catalog.DeleteProduct)

	locations := protected.Group("/locations")
	locations.Post("/", approved, deps.Catalog.CreateLocation)
	locations.Get("/", deps.Catalog.ListLocations)

	// Stock
	stock := protected.Group("/stock")
	stock.Post("/adjustments", approved, deps.Stock.Adjust)
	stock.Post("/transfers", approved, deps.Stock.Transfer)
	stock.Post("/batch-transfers", approved, deps.Stock.BatchTransfer)
	stock.Get("/availability", deps.Stock.Availability)
	stock.Get("/replenishment", deps.Stock.Replenishment)
	stock.Put("/min-quantity", approved, deps.Stock.SetMinQuantity)
	stock.Get("/levels/:product_id/:location_id", deps.Stock.GetLevel)
	stock.Get("/levels/:product_id", deps.Stock.ListLevelsByProduct)
	stock.Get("/ledger/batch/:batch_id", deps.Stock.LedgerByBatch)
	stock.Get("/ledger/:product_id/:location_id", deps.Stock.LedgerHistory)

	// Órdenes externas y despacho
	orders := protected.Group("/orders")
	orders.Post("/ingest", approved, deps.Orders.Ingest)
	orders.Get("/", deps.Orders.ListByStatus)
	orders.Get("/:id", deps.Orders.GetByID)
	orders.Post("/:id/items/:item_id/link", approved, deps.Orders.LinkItem)
	orders.Get("/:id/fulfillment/validate", deps.Fulfillment.Validate)
	orders.Post("/:id/fulfillment", approved, deps.Fulfillment.Fulfill)
}

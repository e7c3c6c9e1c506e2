package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/suministros-api/internal/application/analytics"
	"github.com/jhoicas/suministros-api/internal/application/fulfillment"
	"github.com/jhoicas/suministros-api/internal/application/inventory"
	"github.com/jhoicas/suministros-api/internal/application/requests"
	"github.com/jhoicas/suministros-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName   string
	ProductUC     *usecase.ProductUseCase
	ActivityUC    *usecase.ActivityUseCase
	Ledger        *inventory.LedgerUseCase
	Replenishment *inventory.ReplenishmentUseCase
	RequestUC     *requests.UseCase
	Deliver       *fulfillment.DeliverUseCase
	DeliveryNote  *fulfillment.DeliveryNoteUseCase
	DashboardUC   *appanalytics.DashboardUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	// Identidad opcional: el token, si viene, fija el actor.
	api := app.Group("/api", IdentityMiddleware(deps.JWTSecret))

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Ledger, deps.Replenishment)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/low-stock", productHandler.LowStock) // antes de /:id
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Patch("/:id/qty", productHandler.AdjustQty)
	products.Post("/:id/restock", productHandler.Restock)
	products.Get("/:id/movements", productHandler.Movements)
	products.Get("/:id/reconciliation", productHandler.Reconciliation)

	// Requests
	reqs := api.Group("/requests")
	requestHandler := NewRequestHandler(deps.RequestUC, deps.Deliver, deps.DeliveryNote, deps.Ledger)
	reqs.Get("/", requestHandler.List)
	reqs.Post("/", requestHandler.Upsert)
	reqs.Get("/:id", requestHandler.GetByID)
	reqs.Patch("/:id/submit", requestHandler.Submit)
	reqs.Patch("/:id/approve", requestHandler.Approve)
	reqs.Patch("/:id/reject", requestHandler.Reject)
	reqs.Patch("/:id/deliver", requestHandler.Deliver)
	reqs.Get("/:id/movements", requestHandler.Movements)
	reqs.Get("/:id/delivery-note", requestHandler.DeliveryNote)

	// Activity feed y dashboard
	api.Get("/activities", NewActivityHandler(deps.ActivityUC).List)
	api.Get("/dashboard", NewDashboardHandler(deps.DashboardUC).GetSummary)
}

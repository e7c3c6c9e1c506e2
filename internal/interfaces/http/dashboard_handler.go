package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/suministros-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del tablero principal.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve los indicadores del tablero.
// GET /api/dashboard
//
// Respuesta: DashboardSummaryDTO (totalStock, productCount, pendingRequests,
// awaitingDelivery, lowStockAlerts, deliveredThisMonth, categories, recentActivity[5]).
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return respondError(c, err, transitionAsBadRequest)
	}
	return c.JSON(summary)
}

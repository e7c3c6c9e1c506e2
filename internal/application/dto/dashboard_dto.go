package dto

import (
	"time"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// ActivityResponse entrada del feed de actividad.
type ActivityResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	User      string    `json:"user"`
	Message   string    `json:"message"`
	EntityID  string    `json:"entityId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewActivityList mapea actividades (nunca nil).
func NewActivityList(list []*entity.Activity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(list))
	for _, a := range list {
		out = append(out, ActivityResponse{
			ID:        a.ID,
			Type:      a.Type,
			User:      a.User,
			Message:   a.Message,
			EntityID:  a.EntityID,
			Timestamp: a.CreatedAt,
		})
	}
	return out
}

// CategoryCountDTO número de productos por categoría (gráfico del dashboard).
type CategoryCountDTO struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DashboardSummaryDTO indicadores del tablero principal.
type DashboardSummaryDTO struct {
	TotalStock         int                `json:"totalStock"`
	ProductCount       int                `json:"productCount"`
	PendingRequests    int                `json:"pendingRequests"`
	AwaitingDelivery   int                `json:"awaitingDelivery"`
	LowStockAlerts     int                `json:"lowStockAlerts"`
	DeliveredThisMonth int                `json:"deliveredThisMonth"`
	Categories         []CategoryCountDTO `json:"categories"`
	RecentActivity     []ActivityResponse `json:"recentActivity"`
}

package entity

import "time"

// Tipos de actividad del feed.
const (
	ActivityRequest     = "request"
	ActivityApproval    = "approval"
	ActivityRejection   = "rejection"
	ActivityDelivery    = "delivery"
	ActivityStockUpdate = "stock_update"
)

// Activity entrada del feed de actividad (solo lectura para el front).
type Activity struct {
	ID        string
	Type      string
	User      string
	Message   string
	EntityID  string
	CreatedAt time.Time
}

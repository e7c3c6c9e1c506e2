package ports

import (
	"context"
	"time"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// ActivityRecorder registra una entrada en el feed de actividad.
// Es de mejor esfuerzo: un fallo se registra en el log y no interrumpe la operación principal.
type ActivityRecorder interface {
	Record(ctx context.Context, activityType, user, message, entityID string)
}

// Tipos de evento publicados hacia el notificador externo.
const (
	EventRequestSubmitted = "request.submitted"
	EventRequestApproved  = "request.approved"
	EventRequestRejected  = "request.rejected"
	EventRequestDelivered = "request.delivered"
	EventLowStock         = "product.low_stock"
)

// Event notificación de ciclo de vida (tarjeta Teams, correo, ...).
type Event struct {
	Type       string    `json:"type"`
	RequestID  string    `json:"requestId,omitempty"`
	ProductID  string    `json:"productId,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	ManagerID  string    `json:"managerId,omitempty"`
	ActorID    string    `json:"actorId,omitempty"`
	Status     string    `json:"status,omitempty"`
	Comment    string    `json:"comment,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Notifier puerto de salida hacia la cola de notificaciones. Cualquier adaptador
// (Redis, no-op, mock) implementa este contrato.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
}

// DeliveryNoteLine línea del albarán de entrega.
type DeliveryNoteLine struct {
	ProductID     string
	Label         string
	UnitOfMeasure string
	Location      string
	Requested     int
	Delivered     int
	Found         bool // false si el producto no existía al entregar
}

// DeliveryNoteGenerator genera el PDF del albarán de una solicitud entregada.
type DeliveryNoteGenerator interface {
	GenerateDeliveryNote(ctx context.Context, request *entity.Request, lines []DeliveryNoteLine) ([]byte, error)
}

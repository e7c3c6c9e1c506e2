package fulfillment

import (
	"context"
	"time"

	"github.com/jhoicas/suministros-api/internal/application/inventory"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// RequestLifecycle parte del ciclo de vida de solicitudes que usa la entrega.
type RequestLifecycle interface {
	GetByID(ctx context.Context, id string) (*entity.Request, error)
	AcquireDeliveryLease(ctx context.Context, id string, d time.Duration) (*entity.Request, error)
	ReleaseDeliveryLease(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status entity.RequestStatus, comment, actorID string) (*entity.Request, error)
}

// StockLedger parte del libro de stock que usa la entrega.
type StockLedger interface {
	ApplyLine(ctx context.Context, in inventory.LineInput) (inventory.LineOutcome, error)
	MovementsForRequest(ctx context.Context, requestID string) ([]*entity.StockMovement, error)
}

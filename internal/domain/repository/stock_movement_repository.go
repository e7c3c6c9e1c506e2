package repository

import (
	"context"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del libro de movimientos (solo inserción).
type StockMovementRepository interface {
	// Create devuelve domain.ErrDuplicate si ya existe un movimiento con ese ID.
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// ListByProduct y ListByRequest devuelven en orden cronológico.
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error)
	ListByRequest(ctx context.Context, requestID string) ([]*entity.StockMovement, error)
}

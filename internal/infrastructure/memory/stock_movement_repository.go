package memory

import (
	"context"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos en memoria (solo inserción).
type StockMovementRepo struct {
	s *Store
}

// NewStockMovementRepository construye el repositorio sobre s.
func NewStockMovementRepository(s *Store) *StockMovementRepo {
	return &StockMovementRepo{s: s}
}

// Create agrega el movimiento; ErrDuplicate si el ID ya existe.
func (r *StockMovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[movement.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.movements[movement.ID] = movement.Clone()
	r.s.movementOrder = append(r.s.movementOrder, movement.ID)
	return nil
}

// GetByID devuelve una copia del movimiento o (nil, nil).
func (r *StockMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.movements[id].Clone(), nil
}

// ListByProduct movimientos del producto en orden de alta.
func (r *StockMovementRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockMovement, error) {
	return r.filter(func(m *entity.StockMovement) bool { return m.ProductID == productID }), nil
}

// ListByRequest movimientos de la solicitud en orden de alta.
func (r *StockMovementRepo) ListByRequest(_ context.Context, requestID string) ([]*entity.StockMovement, error) {
	return r.filter(func(m *entity.StockMovement) bool { return m.RequestID == requestID }), nil
}

func (r *StockMovementRepo) filter(keep func(*entity.StockMovement) bool) []*entity.StockMovement {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.StockMovement, 0)
	for _, id := range r.s.movementOrder {
		if m := r.s.movements[id]; keep(m) {
			list = append(list, m.Clone())
		}
	}
	return list
}

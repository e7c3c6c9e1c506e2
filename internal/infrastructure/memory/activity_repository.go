package memory

import (
	"context"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var _ repository.ActivityRepository = (*ActivityRepo)(nil)

// ActivityRepo feed de actividad en memoria.
type ActivityRepo struct {
	s *Store
}

// NewActivityRepository construye el repositorio sobre s.
func NewActivityRepository(s *Store) *ActivityRepo {
	return &ActivityRepo{s: s}
}

// Create agrega la actividad al registro.
func (r *ActivityRepo) Create(_ context.Context, activity *entity.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := *activity
	r.s.activities = append(r.s.activities, &a)
	return nil
}

// ListRecent devuelve las últimas limit actividades, más recientes primero.
func (r *ActivityRepo) ListRecent(_ context.Context, limit int) ([]*entity.Activity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := len(r.s.activities)
	if limit <= 0 || limit > n {
		limit = n
	}
	list := make([]*entity.Activity, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		a := *r.s.activities[i]
		list = append(list, &a)
	}
	return list, nil
}

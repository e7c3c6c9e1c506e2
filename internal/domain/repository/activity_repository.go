package repository

import (
	"context"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// ActivityRepository persistencia del feed de actividad.
type ActivityRepository interface {
	Create(ctx context.Context, activity *entity.Activity) error
	// ListRecent devuelve las últimas limit actividades, más recientes primero.
	ListRecent(ctx context.Context, limit int) ([]*entity.Activity, error)
}

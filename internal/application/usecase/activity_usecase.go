package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/ports"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 200
)

var _ ports.ActivityRecorder = (*ActivityUseCase)(nil)

// ActivityUseCase alimenta y consulta el feed de actividad.
type ActivityUseCase struct {
	repo repository.ActivityRepository
	now  func() time.Time
}

// NewActivityUseCase construye el caso de uso.
func NewActivityUseCase(repo repository.ActivityRepository) *ActivityUseCase {
	return &ActivityUseCase{repo: repo, now: time.Now}
}

// Record agrega una entrada al feed. Un fallo de almacenamiento solo se registra en el log.
func (uc *ActivityUseCase) Record(ctx context.Context, activityType, user, message, entityID string) {
	a := &entity.Activity{
		ID:        uuid.New().String(),
		Type:      activityType,
		User:      user,
		Message:   message,
		EntityID:  entityID,
		CreatedAt: uc.now(),
	}
	if err := uc.repo.Create(ctx, a); err != nil {
		log.Warn().Err(err).Str("type", activityType).Str("entity_id", entityID).Msg("activity: no se pudo registrar")
	}
}

// ListRecent devuelve las últimas entradas, más recientes primero.
func (uc *ActivityUseCase) ListRecent(ctx context.Context, limit int) ([]dto.ActivityResponse, error) {
	list, err := uc.repo.ListRecent(ctx, dto.LimitOrDefault(limit, defaultActivityLimit, maxActivityLimit))
	if err != nil {
		return nil, err
	}
	return dto.NewActivityList(list), nil
}

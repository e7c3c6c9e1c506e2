package repository

import (
	"context"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// RequestFilter filtros combinables (AND) para listar solicitudes. Campos vacíos no filtran.
type RequestFilter struct {
	UserID    string
	ManagerID string
	Status    entity.RequestStatus
}

// RequestRepository define el puerto de persistencia para Request.
// GetByID devuelve (nil, nil) si la solicitud no existe.
type RequestRepository interface {
	Create(ctx context.Context, request *entity.Request) error
	GetByID(ctx context.Context, id string) (*entity.Request, error)
	// Replace es una escritura condicional sobre request.Version (ver ProductRepository.Replace).
	Replace(ctx context.Context, request *entity.Request) error
	// List devuelve las solicitudes que cumplen el filtro, más recientes primero.
	List(ctx context.Context, filter RequestFilter) ([]*entity.Request, error)
}

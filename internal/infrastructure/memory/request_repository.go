package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var _ repository.RequestRepository = (*RequestRepo)(nil)

// RequestRepo implementación en memoria de RequestRepository.
type RequestRepo struct {
	s *Store
}

// NewRequestRepository construye el repositorio sobre s.
func NewRequestRepository(s *Store) *RequestRepo {
	return &RequestRepo{s: s}
}

// Create guarda una solicitud nueva con versión 1.
func (r *RequestRepo) Create(_ context.Context, request *entity.Request) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[request.ID]; ok {
		return domain.ErrDuplicate
	}
	request.Version = 1
	r.s.requests[request.ID] = request.Clone()
	return nil
}

// GetByID devuelve una copia de la solicitud o (nil, nil).
func (r *RequestRepo) GetByID(_ context.Context, id string) (*entity.Request, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.requests[id].Clone(), nil
}

// Replace compara versión y escribe.
func (r *RequestRepo) Replace(_ context.Context, request *entity.Request) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.requests[request.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != request.Version {
		return domain.ErrConflict
	}
	request.Version++
	r.s.requests[request.ID] = request.Clone()
	return nil
}

// List filtra con AND, más recientes primero.
func (r *RequestRepo) List(_ context.Context, f repository.RequestFilter) ([]*entity.Request, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Request, 0)
	for _, req := range r.s.requests {
		if f.UserID != "" && req.UserID != f.UserID {
			continue
		}
		if f.ManagerID != "" && req.ManagerID != f.ManagerID {
			continue
		}
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		list = append(list, req.Clone())
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Created.Equal(list[j].Created) {
			return list[i].ID < list[j].ID
		}
		return list[i].Created.After(list[j].Created)
	})
	return list, nil
}

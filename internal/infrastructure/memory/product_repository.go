package memory

import (
	"context"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	s *Store
}

// NewProductRepository construye el repositorio sobre s.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{s: s}
}

// Create guarda un producto nuevo con versión 1.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.ID]; ok {
		return domain.ErrDuplicate
	}
	product.Version = 1
	r.s.products[product.ID] = product.Clone()
	r.s.productOrder = append(r.s.productOrder, product.ID)
	return nil
}

// GetByID devuelve una copia del producto o (nil, nil).
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.products[id].Clone(), nil
}

// Replace compara versión y escribe.
func (r *ProductRepo) Replace(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[product.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != product.Version {
		return domain.ErrConflict
	}
	product.Version++
	r.s.products[product.ID] = product.Clone()
	return nil
}

// List devuelve los productos en orden de alta.
func (r *ProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Product, 0, len(r.s.productOrder))
	for _, id := range r.s.productOrder {
		list = append(list, r.s.products[id].Clone())
	}
	return list, nil
}

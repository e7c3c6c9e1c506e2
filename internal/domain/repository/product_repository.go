package repository

import (
	"context"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// Replace escribe el producto solo si la versión almacenada coincide con product.Version.
	// Devuelve domain.ErrConflict si otra escritura ganó; en éxito incrementa product.Version.
	Replace(ctx context.Context, product *entity.Product) error
	List(ctx context.Context) ([]*entity.Product, error)
}

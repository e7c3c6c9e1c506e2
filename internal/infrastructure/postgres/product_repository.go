package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, label, unit_of_measure, qty_physical, qty_minimum, qty_initial,
	location, category, picture_url, version, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto con versión 1.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, label, unit_of_measure, qty_physical, qty_minimum, qty_initial,
			location, category, picture_url, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Label, product.UnitOfMeasure, product.QtyPhysical, product.QtyMinimum,
		product.QtyInitial, product.Location, product.Category, product.PictureURL,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	product.Version = 1
	return nil
}

// GetByID obtiene un producto por ID; (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Replace escribe todos los campos solo si la versión almacenada coincide (qty_initial nunca cambia).
func (r *ProductRepo) Replace(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET label = $2, unit_of_measure = $3, qty_physical = $4, qty_minimum = $5,
			location = $6, category = $7, picture_url = $8, updated_at = $9, version = version + 1
		WHERE id = $1 AND version = $10`
	tag, err := r.q.Exec(ctx, query,
		product.ID, product.Label, product.UnitOfMeasure, product.QtyPhysical, product.QtyMinimum,
		product.Location, product.Category, product.PictureURL, product.UpdatedAt, product.Version,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return casMiss(ctx, r.q, "products", product.ID)
	}
	product.Version++
	return nil
}

// List devuelve todos los productos en orden de alta.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Label, &p.UnitOfMeasure, &p.QtyPhysical, &p.QtyMinimum, &p.QtyInitial,
		&p.Location, &p.Category, &p.PictureURL, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Package seed carga el catálogo inicial de productos: el catálogo de demostración o un
// CSV exportado de la hoja de cálculo de inventario.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

// DemoProducts catálogo de demostración de la oficina.
func DemoProducts() []entity.Product {
	return []entity.Product{
		{ID: "p1", Label: "Stylo Bleu Bic", UnitOfMeasure: "pièce", QtyPhysical: 150, QtyMinimum: 50, Location: "A1", Category: "Papeterie"},
		{ID: "p2", Label: "Cahier A4 200 pages", UnitOfMeasure: "pièce", QtyPhysical: 25, QtyMinimum: 30, Location: "B2", Category: "Papeterie"},
		{ID: "p3", Label: "Agrafeuse Métallique", UnitOfMeasure: "pièce", QtyPhysical: 45, QtyMinimum: 20, Location: "C1", Category: "Fournitures"},
		{ID: "p4", Label: "Ramette Papier A4", UnitOfMeasure: "ramette", QtyPhysical: 8, QtyMinimum: 25, Location: "D3", Category: "Papeterie"},
		{ID: "p5", Label: "Marqueur Permanent", UnitOfMeasure: "pièce", QtyPhysical: 5, QtyMinimum: 15, Location: "A2", Category: "Papeterie"},
		{ID: "p6", Label: "Classeur à Levier", UnitOfMeasure: "pièce", QtyPhysical: 60, QtyMinimum: 30, Location: "B1", Category: "Fournitures"},
		{ID: "p7", Label: "Post-it Jaune", UnitOfMeasure: "bloc", QtyPhysical: 120, QtyMinimum: 40, Location: "C2", Category: "Papeterie"},
	}
}

// Apply da de alta los productos que aún no existen; los existentes no se tocan.
// Devuelve cuántos se crearon.
func Apply(ctx context.Context, repo repository.ProductRepository, products []entity.Product) (int, error) {
	created := 0
	now := time.Now()
	for i := range products {
		p := products[i]
		p.QtyInitial = p.QtyPhysical
		p.CreatedAt, p.UpdatedAt = now, now
		err := repo.Create(ctx, &p)
		if errors.Is(err, domain.ErrDuplicate) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed: producto %s: %w", p.ID, err)
		}
		created++
	}
	return created, nil
}

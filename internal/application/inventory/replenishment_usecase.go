package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/domain/inventory"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición: productos en o bajo su mínimo.
type ReplenishmentUseCase struct {
	products repository.ProductRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(products repository.ProductRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{products: products}
}

// LowStock devuelve los productos con qtyPhysical <= qtyMinimum, con la cantidad sugerida
// de pedido y un ranking de prioridad: menor cobertura primero, luego mayor déficit.
func (uc *ReplenishmentUseCase) LowStock(ctx context.Context) ([]dto.LowStockItemDTO, error) {
	list, err := uc.products.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dto.LowStockItemDTO, 0)
	for _, p := range list {
		if !p.IsLowStock() {
			continue
		}
		items = append(items, dto.LowStockItemDTO{
			ProductID:         p.ID,
			Label:             p.Label,
			Category:          p.Category,
			Location:          p.Location,
			QtyPhysical:       p.QtyPhysical,
			QtyMinimum:        p.QtyMinimum,
			SuggestedOrderQty: inventory.SuggestedReorder(p.QtyPhysical, p.QtyMinimum),
			CoveragePct:       inventory.Coverage(p.QtyPhysical, p.QtyMinimum),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.CoveragePct.Equal(b.CoveragePct) {
			return a.CoveragePct.LessThan(b.CoveragePct)
		}
		defA := a.QtyMinimum - a.QtyPhysical
		defB := b.QtyMinimum - b.QtyPhysical
		if defA != defB {
			return defA > defB
		}
		return a.Label < b.Label
	})

	// 1 = más urgente
	for i := range items {
		items[i].Priority = i + 1
	}
	return items, nil
}

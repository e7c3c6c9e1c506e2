package fulfillment

import (
	"context"
	"fmt"

	"github.com/jhoicas/suministros-api/internal/application/ports"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

// DeliveryNoteUseCase genera el albarán PDF de una solicitud entregada.
type DeliveryNoteUseCase struct {
	requests  RequestLifecycle
	ledger    StockLedger
	products  repository.ProductRepository
	generator ports.DeliveryNoteGenerator
}

// NewDeliveryNoteUseCase construye el caso de uso.
func NewDeliveryNoteUseCase(
	reqs RequestLifecycle,
	ledger StockLedger,
	products repository.ProductRepository,
	generator ports.DeliveryNoteGenerator,
) *DeliveryNoteUseCase {
	return &DeliveryNoteUseCase{requests: reqs, ledger: ledger, products: products, generator: generator}
}

// Lines arma las líneas del albarán: lo pedido y lo realmente descontado por línea.
func (uc *DeliveryNoteUseCase) Lines(ctx context.Context, req *entity.Request) ([]ports.DeliveryNoteLine, error) {
	movs, err := uc.ledger.MovementsForRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	delivered := make(map[int]int, len(movs))
	for _, m := range movs {
		if m.LineIndex != nil {
			delivered[*m.LineIndex] = -m.AppliedDelta
		}
	}

	out := make([]ports.DeliveryNoteLine, 0, len(req.Lines))
	for i, l := range req.Lines {
		line := ports.DeliveryNoteLine{ProductID: l.ProductID, Label: l.ProductID, Requested: l.Qty, Delivered: delivered[i]}
		p, err := uc.products.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			line.Found = true
			line.Label = p.Label
			line.UnitOfMeasure = p.UnitOfMeasure
			line.Location = p.Location
		}
		out = append(out, line)
	}
	return out, nil
}

// Generate devuelve el PDF. ErrNotEligible si la solicitud aún no está Delivered.
func (uc *DeliveryNoteUseCase) Generate(ctx context.Context, requestID string) ([]byte, error) {
	req, err := uc.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != entity.RequestStatusDelivered {
		return nil, fmt.Errorf("%w: la solicitud %s no ha sido entregada", domain.ErrNotEligible, req.ID)
	}
	lines, err := uc.Lines(ctx, req)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateDeliveryNote(ctx, req, lines)
}

// Package fulfillment orquesta la entrega de una solicitud aprobada: descuenta cada línea
// del stock y avanza la solicitud a Delivered.
package fulfillment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/suministros-api/internal/application/inventory"
	"github.com/jhoicas/suministros-api/internal/application/requests"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

// LinePolicy qué hacer con una línea cuyo producto no existe.
type LinePolicy string

const (
	PolicyLenient LinePolicy = "lenient" // se omite la línea
	PolicyStrict  LinePolicy = "strict"  // la entrega falla antes de modificar nada
)

// Options parámetros de la entrega.
type Options struct {
	Policy        LinePolicy
	LeaseDuration time.Duration
}

// Report índices de línea por resultado.
type Report struct {
	Applied        []int
	Skipped        []int
	AlreadyApplied []int
}

// DeliverUseCase entrega solicitudes aprobadas.
//
// No hay transacción entre registros: cada línea es una escritura condicional del producto
// seguida del alta de un movimiento con ID determinista. Si la entrega se interrumpe, las
// líneas aplicadas quedan aplicadas, la solicitud sigue Approved y un reintento salta las
// líneas cuyo movimiento ya existe. Si el alta del movimiento falla, o choca con el de una
// entrega concurrente, el ledger revierte la escritura del producto. Solo una caída del
// proceso entre esa escritura y el alta (o la reversión) puede aplicar una línea dos veces.
type DeliverUseCase struct {
	requests RequestLifecycle
	ledger   StockLedger
	products repository.ProductRepository
	opts     Options
}

// NewDeliverUseCase construye el caso de uso.
func NewDeliverUseCase(
	reqs RequestLifecycle,
	ledger StockLedger,
	products repository.ProductRepository,
	opts Options,
) *DeliverUseCase {
	if opts.Policy == "" {
		opts.Policy = PolicyLenient
	}
	if opts.LeaseDuration <= 0 {
		opts.LeaseDuration = 30 * time.Second
	}
	return &DeliverUseCase{requests: reqs, ledger: ledger, products: products, opts: opts}
}

// Deliver descuenta las líneas de la solicitud y la marca Delivered.
// ErrNotFound si no existe, ErrNotEligible si no está Approved, ErrConflict si otra entrega
// tiene la reserva, ErrInvalidInput (política strict) si falta algún producto.
func (uc *DeliverUseCase) Deliver(ctx context.Context, requestID, actorID string) (*entity.Request, *Report, error) {
	if actorID == "" {
		actorID = requests.DefaultDeliveryUser
	}

	req, err := uc.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if req.Status != entity.RequestStatusApproved {
		return nil, nil, fmt.Errorf("%w: solicitud %s en estado %s", domain.ErrNotEligible, req.ID, req.Status)
	}
	if uc.opts.Policy == PolicyStrict {
		if err := uc.checkProducts(ctx, req); err != nil {
			return nil, nil, err
		}
	}

	req, err = uc.requests.AcquireDeliveryLease(ctx, requestID, uc.opts.LeaseDuration)
	if err != nil {
		return nil, nil, err
	}

	report := &Report{Applied: []int{}, Skipped: []int{}, AlreadyApplied: []int{}}
	for i, line := range req.Lines {
		outcome, err := uc.ledger.ApplyLine(ctx, inventory.LineInput{
			RequestID: req.ID,
			LineIndex: i,
			ProductID: line.ProductID,
			Qty:       line.Qty,
			UserID:    actorID,
		})
		if err != nil {
			uc.release(ctx, req.ID)
			return nil, nil, fmt.Errorf("fulfillment: línea %d de %s: %w", i, req.ID, err)
		}
		switch outcome {
		case inventory.LineApplied:
			report.Applied = append(report.Applied, i)
		case inventory.LineSkipped:
			report.Skipped = append(report.Skipped, i)
			log.Warn().Str("request_id", req.ID).Str("product_id", line.ProductID).Msg("fulfillment: producto inexistente, línea omitida")
		case inventory.LineAlreadyApplied:
			report.AlreadyApplied = append(report.AlreadyApplied, i)
		}
	}

	delivered, err := uc.requests.SetStatus(ctx, req.ID, entity.RequestStatusDelivered, "", actorID)
	if err != nil {
		uc.release(ctx, req.ID)
		return nil, nil, err
	}
	return delivered, report, nil
}

func (uc *DeliverUseCase) checkProducts(ctx context.Context, req *entity.Request) error {
	var missing []string
	for _, line := range req.Lines {
		p, err := uc.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return fmt.Errorf("fulfillment: leer producto %s: %w", line.ProductID, err)
		}
		if p == nil {
			missing = append(missing, line.ProductID)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: productos inexistentes: %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

func (uc *DeliverUseCase) release(ctx context.Context, requestID string) {
	if err := uc.requests.ReleaseDeliveryLease(context.WithoutCancel(ctx), requestID); err != nil {
		log.Warn().Err(err).Str("request_id", requestID).Msg("fulfillment: no se pudo liberar la reserva de entrega")
	}
}

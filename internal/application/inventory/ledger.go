// Package inventory contiene los casos de uso del libro de stock: ajustes manuales,
// reposiciones, aplicación de líneas de entrega y los informes derivados.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/ports"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/inventory"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

// Valores por defecto de los movimientos.
const (
	DefaultAdjustComment  = "Manual adjustment"
	DefaultRestockComment = "Restock"
	DefaultUser           = "system"
)

// movementNamespace espacio de nombres de los IDs deterministas de movimientos de entrega.
var movementNamespace = uuid.MustParse("5b0d7c5e-3f0a-4c4e-9f43-6a8f3e0f2d11")

// DeliveryMovementID ID del movimiento que corresponde a la línea lineIndex de la solicitud.
// Es estable entre reintentos: aplicar dos veces la misma línea choca con el mismo registro.
func DeliveryMovementID(requestID string, lineIndex int) string {
	return uuid.NewSHA1(movementNamespace, []byte(fmt.Sprintf("%s:%d", requestID, lineIndex))).String()
}

// LineOutcome resultado de aplicar una línea de entrega.
type LineOutcome int

const (
	LineApplied LineOutcome = iota
	LineSkipped             // el producto no existe
	LineAlreadyApplied      // un intento anterior ya registró el movimiento
)

// LineInput datos de una línea de entrega a aplicar.
type LineInput struct {
	RequestID string
	LineIndex int
	ProductID string
	Qty       int
	UserID    string
}

// LedgerUseCase aplica variaciones de stock con escritura condicional por versión y
// registra un movimiento por cada variación. No hay atomicidad entre productos.
type LedgerUseCase struct {
	products   repository.ProductRepository
	movements  repository.StockMovementRepository
	activity   ports.ActivityRecorder
	notifier   ports.Notifier
	maxRetries int
	now        func() time.Time
}

// NewLedgerUseCase construye el caso de uso. activity y notifier pueden ser nil.
func NewLedgerUseCase(
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	activity ports.ActivityRecorder,
	notifier ports.Notifier,
	maxRetries int,
) *LedgerUseCase {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &LedgerUseCase{
		products:   products,
		movements:  movements,
		activity:   activity,
		notifier:   notifier,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *LedgerUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// Adjust suma delta al stock físico del producto, recortando en cero. delta == 0 no cambia
// el stock pero registra igualmente el movimiento. Producto inexistente es ErrNotFound.
func (uc *LedgerUseCase) Adjust(ctx context.Context, productID string, delta int, comment, userID string) (*entity.Product, error) {
	if comment == "" {
		comment = DefaultAdjustComment
	}
	if userID == "" {
		userID = DefaultUser
	}
	product, mov, err := uc.apply(ctx, productID, delta, uuid.New().String(), "", nil, userID, comment)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	uc.record(ctx, entity.ActivityStockUpdate, userID,
		fmt.Sprintf("Stock of %s adjusted by %+d (now %d)", product.Label, mov.AppliedDelta, product.QtyPhysical),
		product.ID)
	return product, nil
}

// Restock repone qty (> 0) unidades del producto.
func (uc *LedgerUseCase) Restock(ctx context.Context, productID string, qty int, comment, userID string) (*entity.Product, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: la cantidad a reponer debe ser positiva", domain.ErrInvalidInput)
	}
	if comment == "" {
		comment = DefaultRestockComment
	}
	return uc.Adjust(ctx, productID, qty, comment, userID)
}

// ApplyLine descuenta una línea de entrega. Si el movimiento determinista de la línea ya
// existe no escribe nada (LineAlreadyApplied); si el producto no existe devuelve LineSkipped.
func (uc *LedgerUseCase) ApplyLine(ctx context.Context, in LineInput) (LineOutcome, error) {
	movID := DeliveryMovementID(in.RequestID, in.LineIndex)
	existing, err := uc.movements.GetByID(ctx, movID)
	if err != nil {
		return 0, fmt.Errorf("ledger: leer movimiento %s: %w", movID, err)
	}
	if existing != nil {
		return LineAlreadyApplied, nil
	}

	idx := in.LineIndex
	comment := fmt.Sprintf("Delivery for request %s", in.RequestID)
	product, _, err := uc.apply(ctx, in.ProductID, -in.Qty, movID, in.RequestID, &idx, in.UserID, comment)
	if errors.Is(err, domain.ErrDuplicate) {
		// otra invocación registró la línea entre la lectura y la escritura; el stock ya se revirtió
		log.Warn().Str("request_id", in.RequestID).Int("line", in.LineIndex).Msg("ledger: movimiento de entrega duplicado")
		return LineAlreadyApplied, nil
	}
	if err != nil {
		return 0, err
	}
	if product == nil {
		return LineSkipped, nil
	}
	return LineApplied, nil
}

// apply ejecuta el bucle leer-calcular-escribir condicional y después agrega el movimiento.
// Si el alta del movimiento falla se revierte la escritura del producto antes de devolver
// el error. Devuelve (nil, nil, nil) si el producto no existe.
func (uc *LedgerUseCase) apply(
	ctx context.Context,
	productID string, delta int,
	movementID, requestID string, lineIndex *int,
	userID, comment string,
) (*entity.Product, *entity.StockMovement, error) {
	for attempt := 0; attempt < uc.maxRetries; attempt++ {
		product, err := uc.products.GetByID(ctx, productID)
		if err != nil {
			return nil, nil, fmt.Errorf("ledger: leer producto %s: %w", productID, err)
		}
		if product == nil {
			return nil, nil, nil
		}

		wasLow := product.IsLowStock()
		newQty, applied := inventory.ApplyDelta(product.QtyPhysical, delta)
		now := uc.now()
		product.QtyPhysical = newQty
		product.UpdatedAt = now

		if err := uc.products.Replace(ctx, product); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				continue
			}
			if errors.Is(err, domain.ErrNotFound) {
				return nil, nil, nil
			}
			return nil, nil, fmt.Errorf("ledger: escribir producto %s: %w", productID, err)
		}

		mov := &entity.StockMovement{
			ID:           movementID,
			ProductID:    productID,
			Delta:        delta,
			AppliedDelta: applied,
			RequestID:    requestID,
			LineIndex:    lineIndex,
			UserID:       userID,
			Date:         now,
			Comment:      comment,
		}
		if err := uc.movements.Create(ctx, mov); err != nil {
			if rerr := uc.revert(context.WithoutCancel(ctx), productID, applied); rerr != nil {
				log.Error().Err(rerr).Str("product_id", productID).Str("movement_id", movementID).
					Int("applied", applied).Msg("ledger: no se pudo revertir el stock tras fallar el movimiento")
				return nil, nil, fmt.Errorf("ledger: revertir producto %s tras %v: %w", productID, err, rerr)
			}
			if errors.Is(err, domain.ErrDuplicate) {
				return nil, nil, err
			}
			return nil, nil, fmt.Errorf("ledger: registrar movimiento de %s: %w", productID, err)
		}

		if !wasLow && product.IsLowStock() {
			uc.publish(ctx, ports.Event{Type: ports.EventLowStock, ProductID: product.ID, ActorID: userID, OccurredAt: now})
		}
		return product, mov, nil
	}
	return nil, nil, fmt.Errorf("%w: producto %s tras %d reintentos", domain.ErrConflict, productID, uc.maxRetries)
}

// revert resta applied del stock del producto con la misma escritura condicional.
func (uc *LedgerUseCase) revert(ctx context.Context, productID string, applied int) error {
	if applied == 0 {
		return nil
	}
	for attempt := 0; attempt < uc.maxRetries; attempt++ {
		product, err := uc.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return nil
		}
		product.QtyPhysical, _ = inventory.ApplyDelta(product.QtyPhysical, -applied)
		product.UpdatedAt = uc.now()
		err = uc.products.Replace(ctx, product)
		if err == nil || errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("%w: reversión de %s tras %d reintentos", domain.ErrConflict, productID, uc.maxRetries)
}

// Movements historial cronológico de un producto.
func (uc *LedgerUseCase) Movements(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	return uc.movements.ListByProduct(ctx, productID)
}

// MovementsForRequest movimientos registrados por la entrega de una solicitud.
func (uc *LedgerUseCase) MovementsForRequest(ctx context.Context, requestID string) ([]*entity.StockMovement, error) {
	return uc.movements.ListByRequest(ctx, requestID)
}

// Reconcile compara el stock físico con QtyInitial más la suma de movimientos aplicados.
func (uc *LedgerUseCase) Reconcile(ctx context.Context, productID string) (*dto.ReconciliationResponse, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	list, err := uc.movements.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := &dto.ReconciliationResponse{
		ProductID:     product.ID,
		QtyInitial:    product.QtyInitial,
		QtyPhysical:   product.QtyPhysical,
		MovementCount: len(list),
	}
	for _, m := range list {
		out.SumDelta += m.Delta
		out.SumApplied += m.AppliedDelta
	}
	out.Consistent = product.QtyInitial+out.SumApplied == product.QtyPhysical
	out.Clamped = out.SumDelta != out.SumApplied
	return out, nil
}

func (uc *LedgerUseCase) record(ctx context.Context, activityType, user, message, entityID string) {
	if uc.activity != nil {
		uc.activity.Record(ctx, activityType, user, message, entityID)
	}
}

func (uc *LedgerUseCase) publish(ctx context.Context, ev ports.Event) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", ev.Type).Msg("ledger: no se pudo publicar la notificación")
	}
}

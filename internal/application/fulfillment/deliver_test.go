package fulfillment_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/suministros-api/internal/application/fulfillment"
	"github.com/jhoicas/suministros-api/internal/application/inventory"
	"github.com/jhoicas/suministros-api/internal/application/ports"
	"github.com/jhoicas/suministros-api/internal/application/requests"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
	"github.com/jhoicas/suministros-api/internal/infrastructure/memory"
)

var errStore = errors.New("store caído")

// failingProducts falla una vez la escritura del producto indicado.
type failingProducts struct {
	repository.ProductRepository
	mu     sync.Mutex
	failID string
}

func (f *failingProducts) Replace(ctx context.Context, p *entity.Product) error {
	f.mu.Lock()
	if p.ID == f.failID {
		f.failID = ""
		f.mu.Unlock()
		return errStore
	}
	f.mu.Unlock()
	return f.ProductRepository.Replace(ctx, p)
}

type fixture struct {
	store     *memory.Store
	products  *failingProducts
	movements *memory.StockMovementRepo
	requests  *requests.UseCase
	ledger    *inventory.LedgerUseCase
	deliver   *fulfillment.DeliverUseCase
	now       time.Time
}

func newFixture(t *testing.T, policy fulfillment.LinePolicy, seed ...*entity.Product) *fixture {
	t.Helper()
	f := &fixture{store: memory.NewStore(), now: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}
	f.products = &failingProducts{ProductRepository: memory.NewProductRepository(f.store)}
	f.movements = memory.NewStockMovementRepository(f.store)
	for _, p := range seed {
		require.NoError(t, f.products.Create(context.Background(), p))
	}
	f.requests = requests.NewUseCase(memory.NewRequestRepository(f.store), nil, nil, 5)
	f.requests.SetClock(func() time.Time { return f.now })
	f.ledger = inventory.NewLedgerUseCase(f.products, f.movements, nil, nil, 5)
	f.deliver = fulfillment.NewDeliverUseCase(f.requests, f.ledger, f.products, fulfillment.Options{
		Policy:        policy,
		LeaseDuration: time.Minute,
	})
	return f
}

func (f *fixture) approved(t *testing.T, lines ...entity.RequestLine) *entity.Request {
	t.Helper()
	ctx := context.Background()
	r, err := f.requests.Create(ctx, requests.CreateInput{UserID: "marie", Lines: lines})
	require.NoError(t, err)
	r, err = f.requests.Approve(ctx, r.ID, "", "boss")
	require.NoError(t, err)
	return r
}

func (f *fixture) qty(t *testing.T, id string) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.QtyPhysical
}

func TestDeliver_DescuentaYMarcaEntregada(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fulfillment.PolicyLenient, &entity.Product{ID: "p1", QtyPhysical: 10, QtyMinimum: 5})
	r := f.approved(t, entity.RequestLine{ProductID: "p1", Qty: 3})

	got, report, err := f.deliver.Deliver(ctx, r.ID, "")
	require.NoError(t, err)

	assert.Equal(t, entity.RequestStatusDelivered, got.Status)
	assert.Equal(t, requests.DefaultDeliveryUser, got.DeliveredBy)
	assert.Nil(t, got.DeliveryLeaseUntil)
	assert.Equal(t, []int{0}, report.Applied)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, 7, f.qty(t, "p1"))

	movs, err := f.ledger.MovementsForRequest(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "p1", movs[0].ProductID)
	assert.Equal(t, -3, movs[0].Delta)
	assert.Equal(t, r.ID, movs[0].RequestID)
}

func TestDeliver_PendingNoEsElegible(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fulfillment.PolicyLenient, &entity.Product{ID: "p1", QtyPhysical: 10})
	r, err := f.requests.Create(ctx, requests.CreateInput{UserID: "u", Lines: []entity.RequestLine{{ProductID: "p1", Qty: 3}}})
	require.NoError(t, err)

	_, _, err = f.deliver.Deliver(ctx, r.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotEligible)

	assert.Equal(t, 10, f.qty(t, "p1"))
	movs, _ := f.movements.ListByProduct(ctx, "p1")
	assert.Empty(t, movs)
	got, _ := f.requests.GetByID(ctx, r.ID)
	assert.Equal(t, entity.RequestStatusPending, got.Status)
	assert.Equal(t, r.Version, got.Version)
}

func TestDeliver_Inexistente(t *testing.T) {
	f := newFixture(t, fulfillment.PolicyLenient)
	_, _, err := f.deliver.Deliver(context.Background(), "missing", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeliver_LenientOmiteProductoInexistente(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fulfillment.PolicyLenient,
		&entity.Product{ID: "p1", QtyPhysical: 10},
		&entity.Product{ID: "p2", QtyPhysical: 4},
	)
	r := f.approved(t,
		entity.RequestLine{ProductID: "p1", Qty: 2},
		entity.RequestLine{ProductID: "ghost", Qty: 1},
		entity.RequestLine{ProductID: "p2", Qty: 1},
	)

	got, report, err := f.deliver.Deliver(ctx, r.ID, "stock-team")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusDelivered, got.Status)
	assert.Equal(t, "stock-team", got.DeliveredBy)
	assert.Equal(t, []int{0, 2}, report.Applied)
	assert.Equal(t, []int{1}, report.Skipped)
	assert.Equal(t, 8, f.qty(t, "p1"))
	assert.Equal(t, 3, f.qty(t, "p2"))

	movs, _ := f.ledger.MovementsForRequest(ctx, r.ID)
	assert.Len(t, movs, 2)
}

func TestDeliver_StrictNoModificaNada(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fulfillment.PolicyStrict, &entity.Product{ID: "p1", QtyPhysical: 10})
	r := f.approved(t,
		entity.RequestLine{ProductID: "p1", Qty: 2},
		entity.RequestLine{ProductID: "ghost", Qty: 1},
	)

	_, _, err := f.deliver.Deliver(ctx, r.ID, "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "ghost")

	assert.Equal(t, 10, f.qty(t, "p1"))
	got, _ := f.requests.GetByID(ctx, r.ID)
	assert.Equal(t, entity.RequestStatusApproved, got.Status)
	assert.Nil(t, got.DeliveryLeaseUntil)
}

func TestDeliver_SegundaEntregaNoDescuentaDeNuevo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fulfillment.PolicyLenient, &entity.Product{ID: "p1", QtyPhysical: 10})
	r := f.approved(t, entity.RequestLine{ProductID: "p1", Qty: 3})

	_, _, err := f.deliver.Deliver(ctx, r.ID, "")
	require.NoError(t, err)
	_, _, err = f.deliver.Deliver(ctx, r.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotEligible)
	assert.Equal(t, 7, f.qty(t, "p1"))
}

func TestDeliver_FalloParcialYReintento(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fulfillment.PolicyLenient,
		&entity.Product{ID: "p1", QtyPhysical: 10},
		&entity.Product{ID: "p2", QtyPhysical: 10},
	)
	r := f.approved(t,
		entity.RequestLine{ProductID: "p1", Qty: 2},
		entity.RequestLine{ProductID: "p2", Qty: 5},
	)
	f.products.failID = "p2"

	_, _, err := f.deliver.Deliver(ctx, r.ID, "")
	require.ErrorIs(t, err, errStore)

	// la primera línea quedó aplicada y es observable; la solicitud sigue Approved
	assert.Equal(t, 8, f.qty(t, "p1"))
	assert.Equal(t, 10, f.qty(t, "p2"))
	movs, _ := f.ledger.MovementsForRequest(ctx, r.ID)
	require.Len(t, movs, 1)
	got, _ := f.requests.GetByID(ctx, r.ID)
	assert.Equal(t, entity.RequestStatusApproved, got.Status)
	assert.Nil(t, got.DeliveryLeaseUntil, "la reserva se libera tras el fallo")

	delivered, report, err := f.deliver.Deliver(ctx, r.ID, "")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusDelivered, delivered.Status)
	assert.Equal(t, []int{0}, report.AlreadyApplied)
	assert.Equal(t, []int{1}, report.Applied)
	assert.Equal(t, 8, f.qty(t, "p1"))
	assert.Equal(t, 5, f.qty(t, "p2"))
}

func TestDeliver_ReservaVigenteEsConflicto(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fulfillment.PolicyLenient, &entity.Product{ID: "p1", QtyPhysical: 10})
	r := f.approved(t, entity.RequestLine{ProductID: "p1", Qty: 3})

	// otra invocación tomó la reserva y no terminó
	_, err := f.requests.AcquireDeliveryLease(ctx, r.ID, time.Minute)
	require.NoError(t, err)

	_, _, err = f.deliver.Deliver(ctx, r.ID, "")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 10, f.qty(t, "p1"))

	// vencida la reserva se puede reintentar
	f.now = f.now.Add(2 * time.Minute)
	_, _, err = f.deliver.Deliver(ctx, r.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 7, f.qty(t, "p1"))
}

type fakeGenerator struct {
	lines []ports.DeliveryNoteLine
}

func (g *fakeGenerator) GenerateDeliveryNote(_ context.Context, _ *entity.Request, lines []ports.DeliveryNoteLine) ([]byte, error) {
	g.lines = lines
	return []byte("%PDF-fake"), nil
}

func TestDeliveryNote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fulfillment.PolicyLenient, &entity.Product{ID: "p1", Label: "Ramette Papier A4", QtyPhysical: 2})
	r := f.approved(t,
		entity.RequestLine{ProductID: "p1", Qty: 5},
		entity.RequestLine{ProductID: "ghost", Qty: 1},
	)
	gen := &fakeGenerator{}
	notes := fulfillment.NewDeliveryNoteUseCase(f.requests, f.ledger, f.products, gen)

	_, err := notes.Generate(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotEligible)

	_, _, err = f.deliver.Deliver(ctx, r.ID, "")
	require.NoError(t, err)

	pdf, err := notes.Generate(ctx, r.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	require.Len(t, gen.lines, 2)
	assert.Equal(t, "Ramette Papier A4", gen.lines[0].Label)
	assert.Equal(t, 5, gen.lines[0].Requested)
	assert.Equal(t, 2, gen.lines[0].Delivered, "solo había 2 en stock")
	assert.True(t, gen.lines[0].Found)
	assert.False(t, gen.lines[1].Found)
	assert.Equal(t, 0, gen.lines[1].Delivered)
}

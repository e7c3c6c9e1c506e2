package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/suministros-api/internal/application/analytics"
	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/fulfillment"
	"github.com/jhoicas/suministros-api/internal/application/inventory"
	"github.com/jhoicas/suministros-api/internal/application/ports"
	"github.com/jhoicas/suministros-api/internal/application/requests"
	"github.com/jhoicas/suministros-api/internal/application/usecase"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/suministros-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/suministros-api/pkg/jwt"
)

const testJWTSecret = "test-secret-key-for-unit-tests"

type fakeGenerator struct{}

func (fakeGenerator) GenerateDeliveryNote(_ context.Context, _ *entity.Request, _ []ports.DeliveryNoteLine) ([]byte, error) {
	return []byte("%PDF-1.4 fake"), nil
}

type testEnv struct {
	app      *fiber.App
	requests *requests.UseCase
}

// newTestEnv arma la API completa sobre el almacén en memoria con tres productos.
func newTestEnv(t *testing.T, jwtSecret string) *testEnv {
	t.Helper()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	requestRepo := memory.NewRequestRepository(store)
	movementRepo := memory.NewStockMovementRepository(store)
	activityRepo := memory.NewActivityRepository(store)

	ctx := context.Background()
	for _, p := range []*entity.Product{
		{ID: "p1", Label: "Stylo bleu", UnitOfMeasure: "pcs", QtyPhysical: 10, QtyInitial: 10, QtyMinimum: 2, Category: "Écriture"},
		{ID: "p2", Label: "Ramette A4", UnitOfMeasure: "ramette", QtyPhysical: 3, QtyInitial: 3, QtyMinimum: 5, Category: "Papier"},
		{ID: "p3", Label: "Agrafeuse", UnitOfMeasure: "pcs", QtyPhysical: 4, QtyInitial: 4, QtyMinimum: 1, Category: "Bureau"},
	} {
		require.NoError(t, productRepo.Create(ctx, p))
	}

	activityUC := usecase.NewActivityUseCase(activityRepo)
	ledger := inventory.NewLedgerUseCase(productRepo, movementRepo, activityUC, nil, 5)
	requestUC := requests.NewUseCase(requestRepo, activityUC, nil, 5)
	deliver := fulfillment.NewDeliverUseCase(requestUC, ledger, productRepo, fulfillment.Options{
		Policy:        fulfillment.PolicyLenient,
		LeaseDuration: time.Minute,
	})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ServiceName:   "suministros-test",
		ProductUC:     usecase.NewProductUseCase(productRepo, activityUC, 5),
		ActivityUC:    activityUC,
		Ledger:        ledger,
		Replenishment: inventory.NewReplenishmentUseCase(productRepo),
		RequestUC:     requestUC,
		Deliver:       deliver,
		DeliveryNote:  fulfillment.NewDeliveryNoteUseCase(requestUC, ledger, productRepo, fakeGenerator{}),
		DashboardUC:   appanalytics.NewDashboardUseCase(productRepo, requestRepo, activityRepo),
		JWTSecret:     jwtSecret,
	})
	return &testEnv{app: app, requests: requestUC}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers ...string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var e dto.ErrorResponse
	decode(t, resp, &e)
	return e.Code
}

// createPending da de alta una solicitud Pending y devuelve su ID.
func (e *testEnv) createPending(t *testing.T, lines ...dto.RequestLineDTO) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/requests", dto.UpsertRequestRequest{UserID: "alice", ManagerID: "bob", Lines: lines})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var out dto.RequestResponse
	decode(t, resp, &out)
	require.Equal(t, "Pending", out.Status)
	return out.ID
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "")
	resp := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "suministros-test", body["service"])
}

func TestProducts_CreateYValidacion(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodPost, "/api/products", dto.CreateProductRequest{Label: "Surligneur", QtyPhysical: 6, QtyMinimum: 2})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created dto.ProductResponse
	decode(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 6, created.QtyInitial)

	resp = env.do(t, http.MethodPost, "/api/products", dto.CreateProductRequest{QtyPhysical: 1})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apphttp.CodeValidation, errorCode(t, resp))

	resp = env.do(t, http.MethodPost, "/api/products", dto.CreateProductRequest{ID: "p1", Label: "dup"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestProducts_GetYUpdate(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodGet, "/api/products/nope", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	label := "Stylo noir"
	resp = env.do(t, http.MethodPut, "/api/products/p1", dto.UpdateProductRequest{Label: &label})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out dto.ProductResponse
	decode(t, resp, &out)
	assert.Equal(t, "Stylo noir", out.Label)
	assert.Equal(t, 10, out.QtyPhysical)

	resp = env.do(t, http.MethodPut, "/api/products/nope", dto.UpdateProductRequest{Label: &label})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestProducts_LowStockNoEsCapturadoPorID(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodGet, "/api/products/low-stock", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var items []dto.LowStockItemDTO
	decode(t, resp, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)
	assert.Equal(t, 5, items[0].SuggestedOrderQty) // ceil(5*1.5) - 3
	assert.Equal(t, 1, items[0].Priority)
}

func TestProducts_AdjustQty(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodPatch, "/api/products/p1/qty", map[string]interface{}{"comment": "x"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, "/api/products/p1/qty", map[string]interface{}{"delta": 0, "comment": "recuento"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var unchanged dto.ProductResponse
	decode(t, resp, &unchanged)
	assert.Equal(t, 10, unchanged.QtyPhysical)

	resp = env.do(t, http.MethodPatch, "/api/products/nope/qty", map[string]interface{}{"delta": 1})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, "/api/products/p1/qty", map[string]interface{}{"delta": -15, "userId": "carol"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var p dto.ProductResponse
	decode(t, resp, &p)
	assert.Equal(t, 0, p.QtyPhysical)

	resp = env.do(t, http.MethodGet, "/api/products/p1/movements", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var movs []dto.StockMovementResponse
	decode(t, resp, &movs)
	require.Len(t, movs, 2)
	assert.Equal(t, 0, movs[0].Delta)
	assert.Equal(t, 0, movs[0].AppliedDelta)
	assert.Equal(t, "recuento", movs[0].Comment)
	assert.Equal(t, -15, movs[1].Delta)
	assert.Equal(t, -10, movs[1].AppliedDelta)
	assert.Nil(t, movs[1].RequestID)
	assert.Equal(t, "carol", movs[1].UserID)
	assert.Equal(t, inventory.DefaultAdjustComment, movs[1].Comment)

	resp = env.do(t, http.MethodGet, "/api/products/p1/reconciliation", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var rec dto.ReconciliationResponse
	decode(t, resp, &rec)
	assert.True(t, rec.Consistent)
	assert.True(t, rec.Clamped)
}

func TestProducts_Restock(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodPost, "/api/products/p2/restock", map[string]interface{}{"qty": 7})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var p dto.ProductResponse
	decode(t, resp, &p)
	assert.Equal(t, 10, p.QtyPhysical)
	assert.False(t, p.LowStock)

	resp = env.do(t, http.MethodPost, "/api/products/p2/restock", map[string]interface{}{"qty": -1})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRequests_FlujoCompleto(t *testing.T) {
	env := newTestEnv(t, "")
	id := env.createPending(t, dto.RequestLineDTO{ProductID: "p1", Qty: 3}, dto.RequestLineDTO{ProductID: "ghost", Qty: 1})

	resp := env.do(t, http.MethodPatch, "/api/requests/"+id+"/approve", dto.StatusActionRequest{Comment: "ok"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var approved dto.RequestResponse
	decode(t, resp, &approved)
	assert.Equal(t, "Approved", approved.Status)
	assert.Equal(t, "ok", approved.ManagerComment)
	assert.Equal(t, requests.DefaultManagerUser, approved.ActionBy)

	resp = env.do(t, http.MethodPatch, "/api/requests/"+id+"/deliver", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	// la solicitud va en el nivel superior, junto al informe
	var top map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &top))
	assert.Equal(t, id, top["id"])
	assert.Equal(t, "Delivered", top["status"])
	assert.Contains(t, top, "report")
	assert.NotContains(t, top, "request")
	var delivered dto.DeliveryResponse
	require.NoError(t, json.Unmarshal(raw, &delivered))
	assert.Equal(t, "Delivered", delivered.Status)
	assert.Equal(t, requests.DefaultDeliveryUser, delivered.DeliveredBy)
	assert.Equal(t, []int{0}, delivered.Report.AppliedLines)
	assert.Equal(t, []int{1}, delivered.Report.SkippedLines)
	assert.Empty(t, delivered.Report.AlreadyAppliedLines)

	resp = env.do(t, http.MethodGet, "/api/products/p1", nil)
	var p dto.ProductResponse
	decode(t, resp, &p)
	assert.Equal(t, 7, p.QtyPhysical)

	resp = env.do(t, http.MethodPatch, "/api/requests/"+id+"/deliver", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apphttp.CodeNotEligible, errorCode(t, resp))

	resp = env.do(t, http.MethodGet, "/api/requests/"+id+"/movements", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var movs []dto.StockMovementResponse
	decode(t, resp, &movs)
	require.Len(t, movs, 1)
	require.NotNil(t, movs[0].RequestID)
	assert.Equal(t, id, *movs[0].RequestID)

	resp = env.do(t, http.MethodGet, "/api/requests/"+id+"/delivery-note", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	pdf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestRequests_TransicionesInvalidasSon404(t *testing.T) {
	env := newTestEnv(t, "")
	id := env.createPending(t, dto.RequestLineDTO{ProductID: "p1", Qty: 1})

	resp := env.do(t, http.MethodPatch, "/api/requests/nope/approve", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, "/api/requests/"+id+"/reject", dto.StatusActionRequest{Comment: "no", UserID: "bob"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, "/api/requests/"+id+"/approve", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apphttp.CodeInvalidTransition, errorCode(t, resp))

	resp = env.do(t, http.MethodPatch, "/api/requests/"+id+"/submit", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRequests_DeliverNoElegibleYInexistente(t *testing.T) {
	env := newTestEnv(t, "")
	id := env.createPending(t, dto.RequestLineDTO{ProductID: "p1", Qty: 1})

	resp := env.do(t, http.MethodPatch, "/api/requests/"+id+"/deliver", dto.DeliverRequestBody{UserID: "sec"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, "/api/requests/nope/deliver", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/requests/"+id+"/delivery-note", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRequests_DeliverConReservaVigenteEs409(t *testing.T) {
	env := newTestEnv(t, "")
	id := env.createPending(t, dto.RequestLineDTO{ProductID: "p1", Qty: 1})
	_, err := env.requests.Approve(context.Background(), id, "", "bob")
	require.NoError(t, err)
	_, err = env.requests.AcquireDeliveryLease(context.Background(), id, time.Hour)
	require.NoError(t, err)

	resp := env.do(t, http.MethodPatch, "/api/requests/"+id+"/deliver", nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestRequests_UpsertBorrador(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodPost, "/api/requests", dto.UpsertRequestRequest{
		ID: "r-1", UserID: "alice", Status: "Draft", Lines: []dto.RequestLineDTO{{ProductID: "p1", Qty: 1}},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/requests", dto.UpsertRequestRequest{
		ID: "r-1", Status: "Pending", Lines: []dto.RequestLineDTO{{ProductID: "p3", Qty: 2}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out dto.RequestResponse
	decode(t, resp, &out)
	assert.Equal(t, "Pending", out.Status)
	assert.Equal(t, 2, out.TotalQty)
	assert.Equal(t, "alice", out.UserID)

	resp = env.do(t, http.MethodPost, "/api/requests", dto.UpsertRequestRequest{ID: "r-1", Reason: "otra"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apphttp.CodeInvalidTransition, errorCode(t, resp))

	resp = env.do(t, http.MethodPost, "/api/requests", dto.UpsertRequestRequest{Lines: []dto.RequestLineDTO{{ProductID: "p1", Qty: 1}}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/requests", dto.UpsertRequestRequest{UserID: "alice", Lines: []dto.RequestLineDTO{{ProductID: "p1", Qty: 0}}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRequests_ListFiltrosCombinados(t *testing.T) {
	env := newTestEnv(t, "")
	a := env.createPending(t, dto.RequestLineDTO{ProductID: "p1", Qty: 1})
	b := env.createPending(t, dto.RequestLineDTO{ProductID: "p3", Qty: 1})
	_, err := env.requests.Approve(context.Background(), b, "", "bob")
	require.NoError(t, err)

	resp := env.do(t, http.MethodGet, "/api/requests?managerId=bob&status=Pending", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list []dto.RequestResponse
	decode(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, a, list[0].ID)

	resp = env.do(t, http.MethodGet, "/api/requests?userId=nadie", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decode(t, resp, &list)
	assert.Empty(t, list)

	resp = env.do(t, http.MethodGet, "/api/requests?status=Archived", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/requests/"+a, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/requests/nope", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestActivitiesYDashboard(t *testing.T) {
	env := newTestEnv(t, "")
	env.createPending(t, dto.RequestLineDTO{ProductID: "p1", Qty: 1})
	resp := env.do(t, http.MethodPatch, "/api/products/p3/qty", map[string]interface{}{"delta": -4})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/activities?limit=1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var acts []dto.ActivityResponse
	decode(t, resp, &acts)
	require.Len(t, acts, 1)

	resp = env.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var sum dto.DashboardSummaryDTO
	decode(t, resp, &sum)
	assert.Equal(t, 3, sum.ProductCount)
	assert.Equal(t, 13, sum.TotalStock)
	assert.Equal(t, 1, sum.PendingRequests)
	assert.Equal(t, 2, sum.LowStockAlerts)
}

func TestIdentity_TokenFijaElActor(t *testing.T) {
	env := newTestEnv(t, testJWTSecret)
	id := env.createPending(t, dto.RequestLineDTO{ProductID: "p1", Qty: 1})

	tok, err := pkgjwt.Generate(testJWTSecret, "manager-42", "Jeanne", "suministros-test", 60)
	require.NoError(t, err)

	resp := env.do(t, http.MethodPatch, "/api/requests/"+id+"/approve",
		dto.StatusActionRequest{UserID: "ignored"}, "Authorization", "Bearer "+tok)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out dto.RequestResponse
	decode(t, resp, &out)
	assert.Equal(t, "manager-42", out.ActionBy)
}

func TestIdentity_TokenInvalidoEs401(t *testing.T) {
	env := newTestEnv(t, testJWTSecret)

	resp := env.do(t, http.MethodGet, "/api/products", nil, "Authorization", "Bearer no-es-un-jwt")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/products", nil, "Authorization", "Basic abc")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/products", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestIdentity_SinSecretNoValida(t *testing.T) {
	env := newTestEnv(t, "")
	resp := env.do(t, http.MethodGet, "/api/products", nil, "Authorization", "Bearer cualquier-cosa")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

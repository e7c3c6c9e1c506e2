package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/fulfillment"
	"github.com/jhoicas/suministros-api/internal/application/inventory"
	"github.com/jhoicas/suministros-api/internal/application/requests"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

// RequestHandler maneja el ciclo de vida de las solicitudes de suministros.
type RequestHandler struct {
	uc           *requests.UseCase
	deliver      *fulfillment.DeliverUseCase
	deliveryNote *fulfillment.DeliveryNoteUseCase
	ledger       *inventory.LedgerUseCase
}

// NewRequestHandler construye el handler.
func NewRequestHandler(
	uc *requests.UseCase,
	deliver *fulfillment.DeliverUseCase,
	deliveryNote *fulfillment.DeliveryNoteUseCase,
	ledger *inventory.LedgerUseCase,
) *RequestHandler {
	return &RequestHandler{uc: uc, deliver: deliver, deliveryNote: deliveryNote, ledger: ledger}
}

// List godoc
// @Summary      Listar solicitudes
// @Description  Filtros combinables (AND); más recientes primero.
// @Tags         requests
// @Produce      json
// @Param        userId     query  string  false  "Solicitante"
// @Param        managerId  query  string  false  "Responsable"
// @Param        status     query  string  false  "Draft | Pending | Approved | Rejected | Delivered"
// @Success      200  {array}  dto.RequestResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	filter := repository.RequestFilter{
		UserID:    c.Query("userId"),
		ManagerID: c.Query("managerId"),
		Status:    entity.RequestStatus(c.Query("status")),
	}
	list, err := h.uc.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err, transitionAsBadRequest)
	}
	return c.JSON(dto.NewRequestList(list))
}

// Upsert godoc
// @Summary      Crear solicitud o guardar borrador
// @Description  Si id existe y es un Draft se actualiza; si no, se crea (Pending por defecto).
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpsertRequestRequest  true  "Solicitud"
// @Success      201   {object}  dto.RequestResponse
// @Success      200   {object}  dto.RequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/requests [post]
func (h *RequestHandler) Upsert(c *fiber.Ctx) error {
	var in dto.UpsertRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, fiber.StatusBadRequest, CodeInvalidBody, "cuerpo inválido")
	}
	r, created, err := h.uc.Upsert(c.UserContext(), requests.UpsertInput{
		ID:        in.ID,
		UserID:    actorOr(c, in.UserID),
		ManagerID: in.ManagerID,
		Status:    entity.RequestStatus(in.Status),
		Lines:     dto.ToRequestLines(in.Lines),
		Reason:    in.Reason,
	})
	if err != nil {
		return respondError(c, err, transitionAsBadRequest)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.NewRequestResponse(r))
}

// GetByID godoc
// @Summary      Obtener solicitud por ID
// @Tags         requests
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetByID(c *fiber.Ctx) error {
	r, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, transitionAsNotFound)
	}
	return c.JSON(dto.NewRequestResponse(r))
}

// Submit godoc
// @Summary      Enviar borrador (Draft → Pending)
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.StatusActionRequest  false  "Actor"
// @Success      200   {object}  dto.RequestResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/submit [patch]
func (h *RequestHandler) Submit(c *fiber.Ctx) error {
	var in dto.StatusActionRequest
	if err := parseOptionalBody(c, &in); err != nil {
		return writeError(c, fiber.StatusBadRequest, CodeInvalidBody, "cuerpo inválido")
	}
	r, err := h.uc.Submit(c.UserContext(), c.Params("id"), actorOr(c, in.UserID))
	if err != nil {
		return respondError(c, err, transitionAsNotFound)
	}
	return c.JSON(dto.NewRequestResponse(r))
}

// Approve godoc
// @Summary      Aprobar solicitud (Pending → Approved)
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.StatusActionRequest  false  "Comentario y actor"
// @Success      200   {object}  dto.RequestResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/approve [patch]
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	return h.managerAction(c, h.uc.Approve)
}

// Reject godoc
// @Summary      Rechazar solicitud (Pending → Rejected)
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.StatusActionRequest  false  "Comentario y actor"
// @Success      200   {object}  dto.RequestResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/reject [patch]
func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	return h.managerAction(c, h.uc.Reject)
}

type managerActionFunc func(ctx context.Context, id, comment, actorID string) (*entity.Request, error)

func (h *RequestHandler) managerAction(c *fiber.Ctx, action managerActionFunc) error {
	var in dto.StatusActionRequest
	if err := parseOptionalBody(c, &in); err != nil {
		return writeError(c, fiber.StatusBadRequest, CodeInvalidBody, "cuerpo inválido")
	}
	r, err := action(c.UserContext(), c.Params("id"), in.Comment, actorOr(c, in.UserID))
	if err != nil {
		return respondError(c, err, transitionAsNotFound)
	}
	return c.JSON(dto.NewRequestResponse(r))
}

// Deliver godoc
// @Summary      Entregar solicitud aprobada
// @Description  Descuenta cada línea del stock y marca la solicitud Delivered.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.DeliverRequestBody  false  "Actor"
// @Success      200   {object}  dto.DeliveryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/deliver [patch]
func (h *RequestHandler) Deliver(c *fiber.Ctx) error {
	var in dto.DeliverRequestBody
	if err := parseOptionalBody(c, &in); err != nil {
		return writeError(c, fiber.StatusBadRequest, CodeInvalidBody, "cuerpo inválido")
	}
	r, report, err := h.deliver.Deliver(c.UserContext(), c.Params("id"), actorOr(c, in.UserID))
	if err != nil {
		return respondError(c, err, transitionAsBadRequest)
	}
	out := dto.DeliveryResponse{RequestResponse: *dto.NewRequestResponse(r)}
	out.Report = dto.DeliveryReportDTO{
		AppliedLines:        report.Applied,
		SkippedLines:        report.Skipped,
		AlreadyAppliedLines: report.AlreadyApplied,
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Movimientos de stock generados por la entrega
// @Tags         requests
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {array}  dto.StockMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/movements [get]
func (h *RequestHandler) Movements(c *fiber.Ctx) error {
	r, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, transitionAsNotFound)
	}
	list, err := h.ledger.MovementsForRequest(c.UserContext(), r.ID)
	if err != nil {
		return respondError(c, err, transitionAsNotFound)
	}
	return c.JSON(dto.NewStockMovementList(list))
}

// DeliveryNote godoc
// @Summary      Albarán de entrega en PDF
// @Tags         requests
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/delivery-note [get]
func (h *RequestHandler) DeliveryNote(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.deliveryNote.Generate(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, transitionAsBadRequest)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=\"albaran-%s.pdf\"", id))
	return c.Send(pdf)
}

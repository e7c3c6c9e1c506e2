package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/inventory"
	"github.com/jhoicas/suministros-api/internal/application/usecase"
)

// ProductHandler maneja las peticiones HTTP del catálogo y del stock.
type ProductHandler struct {
	uc            *usecase.ProductUseCase
	ledger        *inventory.LedgerUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, ledger *inventory.LedgerUseCase, replenishment *inventory.ReplenishmentUseCase) *ProductHandler {
	return &ProductHandler{uc: uc, ledger: ledger, replenishment: replenishment}
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Produce      json
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return respondError(c, err, transitionAsBadRequest)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, fiber.StatusBadRequest, CodeInvalidBody, "cuerpo inválido")
	}
	in.UserID = actorOr(c, in.UserID)
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err, transitionAsBadRequest)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, transitionAsBadRequest)
	}
	if out == nil {
		return writeError(c, fiber.StatusNotFound, CodeNotFound, "producto no encontrado")
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar ficha de producto
// @Description  No modifica qtyPhysical: el stock solo cambia vía movimientos.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, fiber.StatusBadRequest, CodeInvalidBody, "cuerpo inválido")
	}
	in.UserID = actorOr(c, in.UserID)
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err, transitionAsBadRequest)
	}
	if out == nil {
		return writeError(c, fiber.StatusNotFound, CodeNotFound, "producto no encontrado")
	}
	return c.JSON(out)
}

// AdjustQty godoc
// @Summary      Ajustar stock físico
// @Description  Suma delta al stock (recortando en cero) y registra un movimiento, también con delta 0.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.AdjustQtyRequest  true  "delta obligatorio"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/qty [patch]
func (h *ProductHandler) AdjustQty(c *fiber.Ctx) error {
	var in dto.AdjustQtyRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, fiber.StatusBadRequest, CodeInvalidBody, "cuerpo inválido")
	}
	if in.Delta == nil {
		return writeError(c, fiber.StatusBadRequest, CodeValidation, "delta es obligatorio")
	}
	p, err := h.ledger.Adjust(c.UserContext(), c.Params("id"), *in.Delta, in.Comment, actorOr(c, in.UserID))
	if err != nil {
		return respondError(c, err, transitionAsBadRequest)
	}
	return c.JSON(dto.NewProductResponse(p))
}

// Restock godoc
// @Summary      Reponer stock
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.RestockRequest  true  "qty positiva"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/restock [post]
func (h *ProductHandler) Restock(c *fiber.Ctx) error {
	var in dto.RestockRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, fiber.StatusBadRequest, CodeInvalidBody, "cuerpo inválido")
	}
	if in.Qty == nil {
		return writeError(c, fiber.StatusBadRequest, CodeValidation, "qty es obligatorio")
	}
	p, err := h.ledger.Restock(c.UserContext(), c.Params("id"), *in.Qty, in.Comment, actorOr(c, in.UserID))
	if err != nil {
		return respondError(c, err, transitionAsBadRequest)
	}
	return c.JSON(dto.NewProductResponse(p))
}

// Movements godoc
// @Summary      Historial de movimientos de un producto
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}  dto.StockMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *ProductHandler) Movements(c *fiber.Ctx) error {
	list, err := h.ledger.Movements(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, transitionAsBadRequest)
	}
	return c.JSON(dto.NewStockMovementList(list))
}

// Reconciliation godoc
// @Summary      Conciliación de stock contra movimientos
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/reconciliation [get]
func (h *ProductHandler) Reconciliation(c *fiber.Ctx) error {
	out, err := h.ledger.Reconcile(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, transitionAsBadRequest)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos en o bajo su mínimo
// @Description  Ordenados por cobertura ascendente; incluye cantidad sugerida de reposición.
// @Tags         products
// @Produce      json
// @Success      200  {array}  dto.LowStockItemDTO
// @Router       /api/products/low-stock [get]
func (h *ProductHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.replenishment.LowStock(c.UserContext())
	if err != nil {
		return respondError(c, err, transitionAsBadRequest)
	}
	return c.JSON(out)
}

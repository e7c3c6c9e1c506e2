package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/domain"
)

// Códigos de error del cuerpo {code, message}.
const (
	CodeInvalidBody       = "INVALID_BODY"
	CodeValidation        = "VALIDATION"
	CodeNotFound          = "NOT_FOUND"
	CodeDuplicate         = "DUPLICATE"
	CodeConflict          = "CONFLICT"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeNotEligible       = "NOT_ELIGIBLE"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL"
)

// transitionStatus código HTTP para ErrInvalidTransition según la ruta.
type transitionStatus int

const (
	transitionAsBadRequest transitionStatus = fiber.StatusBadRequest
	transitionAsNotFound   transitionStatus = fiber.StatusNotFound
)

func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}

// respondError clasifica err con errors.Is. Los errores no reconocidos se registran y se
// devuelven como 500 con mensaje genérico.
func respondError(c *fiber.Ctx, err error, onTransition transitionStatus) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return writeError(c, fiber.StatusBadRequest, CodeValidation, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicate):
		return writeError(c, fiber.StatusConflict, CodeDuplicate, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return writeError(c, fiber.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, domain.ErrNotEligible):
		return writeError(c, fiber.StatusBadRequest, CodeNotEligible, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		return writeError(c, int(onTransition), CodeInvalidTransition, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return writeError(c, fiber.StatusUnauthorized, CodeUnauthorized, err.Error())
	}
	log.Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("request_id", requestID(c)).
		Msg("error interno")
	return writeError(c, fiber.StatusInternalServerError, CodeInternal, "error interno del servidor")
}

func requestID(c *fiber.Ctx) string {
	s, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	return s
}

// parseOptionalBody decodifica el cuerpo solo si viene alguno.
func parseOptionalBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}

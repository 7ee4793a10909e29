package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ricemill-ledger/internal/application/dto"
	"github.com/jhoicas/ricemill-ledger/internal/domain"
	"github.com/jhoicas/ricemill-ledger/pkg/logger"
)

// statusFor maps a domain error kind to its HTTP status.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindInsufficientStock, domain.KindConflict:
		return fiber.StatusConflict
	case domain.KindInvalidOperation:
		return fiber.StatusUnprocessableEntity
	case domain.KindLockTimeout:
		return fiber.StatusServiceUnavailable
	case domain.KindInvalidInput:
		return fiber.StatusBadRequest
	case domain.KindUnauthorized:
		return fiber.StatusUnauthorized
	case domain.KindForbidden:
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler is the fiber error handler. Handlers return domain errors and
// this writes them as dto.ErrorResponse; anything unrecognized is logged and
// reported as INTERNAL without its message.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		var de *domain.Error
		if errors.As(err, &de) && de.Kind != domain.KindInternal {
			status := statusFor(de.Kind)
			if status == fiber.StatusServiceUnavailable {
				c.Set(fiber.HeaderRetryAfter, "1")
			}
			return c.Status(status).JSON(errorBody(c, string(de.Kind), de.Message))
		}
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(errorBody(c, codeForStatus(fe.Code), fe.Message))
		}
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).Msg("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody(c, string(domain.KindInternal), "internal error"))
	}
}

// errorBody tags the reply with the id set by the requestid middleware, if any.
func errorBody(c *fiber.Ctx, code, message string) dto.ErrorResponse {
	return dto.ErrorResponse{Code: code, Message: message, RequestID: c.GetRespHeader(fiber.HeaderXRequestID)}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return string(domain.KindNotFound)
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return string(domain.KindInvalidInput)
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	}
	return string(domain.KindInternal)
}

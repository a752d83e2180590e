package handlers

import (
	"Casework/internal/apperrors"
	"Casework/internal/services"
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderRequestID = "X-Request-ID"
)

// requestContext builds the services.RequestContext for one request. The actor
// comes from the authentication layer in front of this service.
func requestContext(c *fiber.Ctx) services.RequestContext {
	var actorID *uint
	if raw := c.Get(HeaderUserID); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			actor := uint(id)
			actorID = &actor
		}
	}
	rc := services.NewRequestContext(c.UserContext(), actorID)
	requestID, _ := c.Locals("requestid").(string)
	if requestID == "" {
		requestID = c.Get(HeaderRequestID)
	}
	if parsed, err := uuid.Parse(requestID); err == nil {
		rc.RequestID = parsed
	}
	return rc
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": message, "code": "bad_request"})
}

// respondError maps service errors to status codes and the shared error body.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *apperrors.ValidationError
	var constraintErr *apperrors.ConstraintViolationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "validation failed",
			"code":    "validation_error",
			"details": validationErr.Issues,
		})
	case errors.As(err, &constraintErr):
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": constraintErr.Reason,
			"code":  "constraint_violation",
		})
	case errors.Is(err, apperrors.ErrConflict):
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": err.Error(), "code": "conflict"})
	case errors.Is(err, apperrors.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error(), "code": "not_found"})
	}
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error", "code": "internal"})
}

package handlers

import (
	"Casework/internal/dto"
	"Casework/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AnnotationHandler struct {
	service services.AnnotationService
}

func NewAnnotationHandler(service services.AnnotationService) *AnnotationHandler {
	return &AnnotationHandler{service: service}
}

func (h *AnnotationHandler) SavePageAnnotations(c *fiber.Ctx) error {
	pageID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid page ID")
	}
	var req dto.SaveAnnotationsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid input")
	}
	response, err := h.service.ReplacePageAnnotations(requestContext(c), pageID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(response)
}

func (h *AnnotationHandler) ListPageAnnotations(c *fiber.Ctx) error {
	pageID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid page ID")
	}
	response, err := h.service.ListPageAnnotations(c.UserContext(), pageID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(response)
}

func (h *AnnotationHandler) PageHistory(c *fiber.Ctx) error {
	pageID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid page ID")
	}
	entries, err := h.service.PageHistory(c.UserContext(), pageID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "page_id": pageID, "count": len(entries), "history": entries})
}

func (h *AnnotationHandler) DeleteAnnotation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid annotation ID")
	}
	deleted, err := h.service.DeleteAnnotation(requestContext(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "deleted": deleted})
}

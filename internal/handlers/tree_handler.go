package handlers

import (
	"Casework/internal/dto"
	"Casework/internal/models"
	"Casework/internal/services"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

type TreeHandler struct {
	reconcileService services.ReconcileService
	treeService      services.TreeService
	projectService   services.ProjectService
}

func NewTreeHandler(
	reconcileService services.ReconcileService,
	treeService services.TreeService,
	projectService services.ProjectService,
) *TreeHandler {
	return &TreeHandler{
		reconcileService: reconcileService,
		treeService:      treeService,
		projectService:   projectService,
	}
}

func (h *TreeHandler) CreateProject(c *fiber.Ctx) error {
	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid input")
	}
	project, err := h.projectService.CreateProject(requestContext(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(project)
}

func (h *TreeHandler) GetTree(c *fiber.Ctx) error {
	projectID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid project ID")
	}
	tree, err := h.treeService.LoadTree(c.UserContext(), projectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tree)
}

// SubmitTree reconciles the submitted tree and answers with the tree as stored
// afterwards.
func (h *TreeHandler) SubmitTree(c *fiber.Ctx) error {
	projectID, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid project ID")
	}
	var req dto.ReconcileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid tree: "+err.Error())
	}
	result, err := h.reconcileService.Reconcile(requestContext(c), projectID, req)
	if err != nil {
		return respondError(c, err)
	}
	tree, err := h.treeService.LoadTree(c.UserContext(), projectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ReconcileResponse{
		Success:     true,
		Stats:       result.Stats,
		ProjectTree: tree,
	})
}

func (h *TreeHandler) DeleteNode(c *fiber.Ctx) error {
	kind, err := models.ParseNodeKind(c.Params("kind"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "invalid node ID")
	}
	removed, err := h.projectService.DeleteNode(requestContext(c), kind, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "removed": removed})
}

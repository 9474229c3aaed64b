package web

import (
	"net/http"
	"time"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/registry"
	"github.com/funildev/funil/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	workflowService *services.Workflow
	leadService     *services.Lead
	rotationService *services.Rotation
	kanbanService   *services.Kanban
	validator       *validator.Validate
	registry        *registry.Registry
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	leadService *services.Lead,
	rotationService *services.Rotation,
	kanbanService *services.Kanban,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		leadService:     leadService,
		rotationService: rotationService,
		kanbanService:   kanbanService,
		validator:       validator,
		registry:        registry,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Funil API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "Funil API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// Workflow endpoints

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflowService.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(workflows)
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	workflow := &models.Workflow{
		Name:     req.Name,
		IsActive: isActive,
		Triggers: toTriggers(req.Triggers),
		Actions:  toActions(req.Actions),
	}

	created, err := h.workflowService.Create(c.Context(), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	update := services.UpdateWorkflowRequest{
		Name:     req.Name,
		IsActive: req.IsActive,
	}

	if req.Triggers != nil {
		update.Triggers = toTriggers(req.Triggers)
	}

	if req.Actions != nil {
		update.Actions = toActions(req.Actions)
	}

	updated, err := h.workflowService.Update(c.Context(), id, update)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	err := h.workflowService.Delete(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AssignLead hands the lead to the next assignee in the round-robin
// rotation.
func (h *APIHandlers) AssignLead(c fiber.Ctx) error {
	var req AssignLeadRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	assignee, err := h.rotationService.Assign(c.Context(), req.LeadID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(AssignLeadResponse{
		LeadID:     req.LeadID,
		AssignedTo: assignee.ID,
	})
}

// Lead endpoints

func (h *APIHandlers) GetLeads(c fiber.Ctx) error {
	leads, err := h.leadService.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(leads)
}

func (h *APIHandlers) GetLead(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Lead ID is required")
	}

	lead, err := h.leadService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(lead)
}

func (h *APIHandlers) CreateLead(c fiber.Ctx) error {
	var req CreateLeadRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	lead := &models.Lead{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Stage: models.LeadStage(req.Stage),
	}

	created, err := h.leadService.Create(c.Context(), lead)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateLead applies a partial update. When the payload changes the
// lead's stage, matching workflows run before the response is written.
func (h *APIHandlers) UpdateLead(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Lead ID is required")
	}

	var req UpdateLeadRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	update := services.UpdateLeadRequest{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}

	if req.Stage != nil {
		stage := models.LeadStage(*req.Stage)
		update.Stage = &stage
	}

	if req.Status != nil {
		status := models.LeadStatus(*req.Status)
		update.Status = &status
	}

	updated, err := h.leadService.Update(c.Context(), id, update)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteLead(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Lead ID is required")
	}

	err := h.leadService.Delete(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Kanban endpoints

func (h *APIHandlers) GetBoards(c fiber.Ctx) error {
	boards, err := h.kanbanService.ListBoards(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(boards)
}

func (h *APIHandlers) GetBoard(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Board ID is required")
	}

	board, err := h.kanbanService.FetchBoard(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(board)
}

func (h *APIHandlers) CreateBoard(c fiber.Ctx) error {
	var req CreateBoardRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	board := &models.Board{
		Name:      req.Name,
		IsDefault: req.IsDefault,
	}

	created, err := h.kanbanService.CreateBoard(c.Context(), board)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) CreateColumn(c fiber.Ctx) error {
	var req CreateColumnRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	column := &models.Column{
		BoardID: req.BoardID,
		Name:    req.Name,
	}

	created, err := h.kanbanService.CreateColumn(c.Context(), column)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) CreateCard(c fiber.Ctx) error {
	var req CreateCardRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	card := &models.Card{
		ColumnID: req.ColumnID,
		Title:    req.Title,
		LeadID:   req.LeadID,
	}

	created, err := h.kanbanService.CreateCard(c.Context(), card, req.Position)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) MoveCard(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Card ID is required")
	}

	var req MoveCardRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	card, err := h.kanbanService.MoveCard(c.Context(), id, req.ColumnID, req.Position)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(card)
}

func (h *APIHandlers) DeleteCard(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Card ID is required")
	}

	err := h.kanbanService.DeleteCard(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

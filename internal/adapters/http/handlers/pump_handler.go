package handlers

import (
	"errors"
	"strconv"

	"fuelpay-backend/internal/adapters/http/middleware"
	"fuelpay-backend/internal/core/domain"
	"fuelpay-backend/internal/core/services"
	"fuelpay-backend/internal/pkg/pagination"
	"fuelpay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PumpHandler handles pump endpoints
type PumpHandler struct {
	pumpService   *services.PumpService
	ledgerService *services.LedgerService
}

// NewPumpHandler creates a new pump handler
func NewPumpHandler(pumpService *services.PumpService, ledgerService *services.LedgerService) *PumpHandler {
	return &PumpHandler{
		pumpService:   pumpService,
		ledgerService: ledgerService,
	}
}

// Create registers a new pump
// @Summary Create pump
// @Description Register a new pump station (admin only)
// @Tags Pumps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreatePumpInput true "Pump data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /pumps [post]
func (h *PumpHandler) Create(c *fiber.Ctx) error {
	adminID := middleware.GetAccountID(c)

	var req services.CreatePumpInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name == "" || req.Location == "" {
		return response.BadRequest(c, "Name and location are required")
	}

	pump, err := h.pumpService.Create(c.Context(), &req, adminID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Loyalty threshold must be at least 1")
		}
		return response.InternalServerError(c, "Failed to create pump")
	}

	return response.Created(c, "Pump created", fiber.Map{
		"pump": pump,
	})
}

// List lists pumps
// @Summary List pumps
// @Description List pump stations with pagination
// @Tags Pumps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /pumps [get]
func (h *PumpHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	pumps, total, err := h.pumpService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list pumps")
	}

	return response.Success(c, "Pumps retrieved", pagination.NewResponse(pumps, params, total))
}

// Locations lists pump coordinates for the customer map
// @Summary Pump locations
// @Description List every pump's coordinates for the map screen
// @Tags Pumps
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /pumps/locations [get]
func (h *PumpHandler) Locations(c *fiber.Ctx) error {
	locations, err := h.pumpService.ListLocations(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load pump locations")
	}

	return response.Success(c, "Pump locations retrieved", fiber.Map{
		"locations": locations,
	})
}

// Get gets one pump
// @Summary Get pump
// @Description Get a pump by ID
// @Tags Pumps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pump ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /pumps/{id} [get]
func (h *PumpHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid pump ID")
	}

	pump, err := h.pumpService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrPumpNotFound) {
			return response.NotFound(c, "Pump not found")
		}
		return response.InternalServerError(c, "Failed to load pump")
	}

	return response.Success(c, "Pump retrieved", fiber.Map{
		"pump": pump,
	})
}

// Staff lists the employees working a pump
// @Summary List pump staff
// @Description List the employees assigned to a pump
// @Tags Pumps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pump ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /pumps/{id}/staff [get]
func (h *PumpHandler) Staff(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid pump ID")
	}

	staff, err := h.pumpService.ListStaff(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrPumpNotFound) {
			return response.NotFound(c, "Pump not found")
		}
		return response.InternalServerError(c, "Failed to list pump staff")
	}

	return response.Success(c, "Pump staff retrieved", fiber.Map{
		"staff": staff,
	})
}

// AddStaffRequest represents staffing body
type AddStaffRequest struct {
	EmployeeID uint `json:"employee_id"`
}

// AddStaff assigns a refueler to a pump
// @Summary Add pump staff
// @Description Assign a refueler to a pump (admin, or the pump's manager)
// @Tags Pumps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pump ID"
// @Param body body AddStaffRequest true "Staff assignment"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /pumps/{id}/staff [post]
func (h *PumpHandler) AddStaff(c *fiber.Ctx) error {
	actorID := middleware.GetAccountID(c)
	actorRole := middleware.GetActor(c)

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid pump ID")
	}

	var req AddStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.EmployeeID == 0 {
		return response.BadRequest(c, "Employee ID is required")
	}

	employee, err := h.pumpService.AddStaff(c.Context(), uint(id), req.EmployeeID, actorID, actorRole)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPumpNotFound):
			return response.NotFound(c, "Pump not found")
		case errors.Is(err, domain.ErrEmployeeNotFound):
			return response.NotFound(c, "Employee not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Only an admin or the pump's manager can add staff")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Employee must be a refueler")
		default:
			return response.InternalServerError(c, "Failed to add staff")
		}
	}

	return response.Success(c, "Staff added", fiber.Map{
		"employee": employee.ToResponse(),
	})
}

// AssignManagerRequest represents manager assignment body
type AssignManagerRequest struct {
	EmployeeID uint `json:"employee_id"`
}

// AssignManager puts a manager in charge of a pump
// @Summary Assign pump manager
// @Description Assign a manager-type employee to a pump (admin only)
// @Tags Pumps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pump ID"
// @Param body body AssignManagerRequest true "Manager assignment"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /pumps/{id}/manager [put]
func (h *PumpHandler) AssignManager(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid pump ID")
	}

	var req AssignManagerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.EmployeeID == 0 {
		return response.BadRequest(c, "Employee ID is required")
	}

	pump, err := h.pumpService.AssignManager(c.Context(), uint(id), req.EmployeeID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPumpNotFound):
			return response.NotFound(c, "Pump not found")
		case errors.Is(err, domain.ErrEmployeeNotFound):
			return response.NotFound(c, "Employee not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Employee must be a manager")
		case errors.Is(err, domain.ErrNotEmployed):
			return response.BadRequest(c, "Employee is not currently employed")
		default:
			return response.InternalServerError(c, "Failed to assign manager")
		}
	}

	return response.Success(c, "Manager assigned", fiber.Map{
		"pump": pump,
	})
}

// Sales lists a pump's fuel sales
// @Summary Pump sales history
// @Description List a pump's fuel sales, newest first (admin or employee)
// @Tags Pumps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pump ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /pumps/{id}/sales [get]
func (h *PumpHandler) Sales(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid pump ID")
	}

	params := pagination.GetParams(c)

	sales, total, err := h.ledgerService.ListPumpFuelSales(c.Context(), uint(id), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to load pump sales")
	}

	return response.Success(c, "Pump sales retrieved", pagination.NewResponse(sales, params, total))
}

package handlers

import (
	"errors"
	"strconv"

	"fuelpay-backend/internal/adapters/http/middleware"
	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/core/domain"
	"fuelpay-backend/internal/core/services"
	"fuelpay-backend/internal/pkg/pagination"
	"fuelpay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EmployeeHandler handles employee profile and staffing endpoints
type EmployeeHandler struct {
	accountService *services.AccountService
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(accountService *services.AccountService) *EmployeeHandler {
	return &EmployeeHandler{accountService: accountService}
}

// Me returns the authenticated employee's profile
// @Summary Get own profile
// @Description Get the authenticated employee's profile with pump assignment
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /employees/me [get]
func (h *EmployeeHandler) Me(c *fiber.Ctx) error {
	employeeID := middleware.GetAccountID(c)

	employee, err := h.accountService.GetEmployee(c.Context(), employeeID)
	if err != nil {
		return response.NotFound(c, "Employee not found")
	}

	return response.Success(c, "Profile retrieved", fiber.Map{
		"employee": employee.ToResponse(),
	})
}

// ChangePassword replaces the authenticated employee's password
// @Summary Change password
// @Description Replace the password after verifying the current one
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "Password change"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /employees/me/password [put]
func (h *EmployeeHandler) ChangePassword(c *fiber.Ctx) error {
	employeeID := middleware.GetAccountID(c)

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Old and new passwords are required")
	}

	err := h.accountService.ChangePassword(c.Context(), models.AccountTypeEmployee, employeeID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Unauthorized(c, "Current password is incorrect")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrEmployeeNotFound):
			return response.NotFound(c, "Employee not found")
		default:
			return response.InternalServerError(c, "Failed to change password")
		}
	}

	return response.Success(c, "Password changed successfully", nil)
}

// List lists employees for the back office
// @Summary List employees
// @Description List employee accounts (admin only)
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /employees [get]
func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	employees, total, err := h.accountService.ListEmployees(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list employees")
	}

	responses := make([]*models.EmployeeResponse, 0, len(employees))
	for _, employee := range employees {
		responses = append(responses, employee.ToResponse())
	}

	return response.Success(c, "Employees retrieved", pagination.NewResponse(responses, params, total))
}

// Get gets one employee for the back office
// @Summary Get employee
// @Description Get an employee account by ID (admin only)
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Employee ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /employees/{id} [get]
func (h *EmployeeHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid employee ID")
	}

	employee, err := h.accountService.GetEmployee(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return response.NotFound(c, "Employee not found")
		}
		return response.InternalServerError(c, "Failed to load employee")
	}

	return response.Success(c, "Employee retrieved", fiber.Map{
		"employee": employee.ToResponse(),
	})
}

// UpdateEmployment activates, deactivates or reassigns an employee
// @Summary Update employment
// @Description Change employment state and pump assignment (admin only)
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Employee ID"
// @Param body body services.UpdateEmploymentInput true "Employment data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /employees/{id}/employment [put]
func (h *EmployeeHandler) UpdateEmployment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid employee ID")
	}

	var req services.UpdateEmploymentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	employee, err := h.accountService.UpdateEmployment(c.Context(), uint(id), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmployeeNotFound):
			return response.NotFound(c, "Employee not found")
		case errors.Is(err, domain.ErrPumpNotFound):
			return response.NotFound(c, "Pump not found")
		default:
			return response.InternalServerError(c, "Failed to update employment")
		}
	}

	return response.Success(c, "Employment updated", fiber.Map{
		"employee": employee.ToResponse(),
	})
}

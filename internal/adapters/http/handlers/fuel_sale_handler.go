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

// FuelSaleHandler handles fuel sale settlement endpoints
type FuelSaleHandler struct {
	ledgerService *services.LedgerService
}

// NewFuelSaleHandler creates a new fuel sale handler
func NewFuelSaleHandler(ledgerService *services.LedgerService) *FuelSaleHandler {
	return &FuelSaleHandler{ledgerService: ledgerService}
}

// Settle records a fuel purchase at the employee's pump
// @Summary Settle fuel sale
// @Description Record a fuel purchase; app payment moves funds, both methods accrue loyalty points
// @Tags FuelSales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Idempotency key"
// @Param body body services.FuelSaleInput true "Sale data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 402 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /fuel-sales [post]
func (h *FuelSaleHandler) Settle(c *fiber.Ctx) error {
	employeeID := middleware.GetAccountID(c)

	var req services.FuelSaleInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.ledgerService.SettleFuelSale(c.Context(), employeeID, &req, c.Get("Idempotency-Key"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid amount, fuel type or payment method")
		case errors.Is(err, domain.ErrEmployeeNotFound):
			return response.NotFound(c, "Employee not found")
		case errors.Is(err, domain.ErrNotEmployed):
			return response.Forbidden(c, "Employee is not currently employed")
		case errors.Is(err, domain.ErrNoPumpAssigned):
			return response.Forbidden(c, "Employee has no pump assignment")
		case errors.Is(err, domain.ErrPumpNotFound):
			return response.NotFound(c, "Pump not found")
		case errors.Is(err, domain.ErrCustomerNotFound):
			return response.NotFound(c, "No customer with that phone number")
		case errors.Is(err, domain.ErrAccountNotVerified):
			return response.Forbidden(c, "Customer account is not verified")
		case errors.Is(err, domain.ErrInsufficientFunds):
			return response.PaymentRequired(c, "Customer cannot pay with app, insufficient balance")
		case errors.Is(err, domain.ErrConflict):
			return response.Conflict(c, "Idempotency key was used for a different operation")
		default:
			return response.InternalServerError(c, "Failed to settle fuel sale")
		}
	}

	if result.Replayed {
		return response.Success(c, "Fuel sale already processed", fiber.Map{
			"sale":          result.Sale,
			"earned_points": result.EarnedPoints,
			"replayed":      true,
		})
	}

	return response.Created(c, "Fuel sale settled", fiber.Map{
		"sale":          result.Sale,
		"earned_points": result.EarnedPoints,
	})
}

// MySales lists the sales the authenticated employee rang up
// @Summary Own sales history
// @Description List the fuel sales the employee settled, newest first
// @Tags FuelSales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /fuel-sales/my-sales [get]
func (h *FuelSaleHandler) MySales(c *fiber.Ctx) error {
	employeeID := middleware.GetAccountID(c)
	params := pagination.GetParams(c)

	sales, total, err := h.ledgerService.ListMyFuelSales(c.Context(), employeeID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to load sales history")
	}

	return response.Success(c, "Sales history retrieved", pagination.NewResponse(sales, params, total))
}

// EmployeeSales lists another employee's sales for oversight
// @Summary Employee sales history
// @Description List an employee's fuel sales (admin, or the manager of their pump)
// @Tags FuelSales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Employee ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /fuel-sales/employee/{id} [get]
func (h *FuelSaleHandler) EmployeeSales(c *fiber.Ctx) error {
	requesterID := middleware.GetAccountID(c)
	requesterRole := middleware.GetActor(c)

	employeeID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid employee ID")
	}

	params := pagination.GetParams(c)

	sales, total, err := h.ledgerService.ListEmployeeFuelSales(c.Context(), requesterID, requesterRole, uint(employeeID), params.Offset, params.Limit)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmployeeNotFound):
			return response.NotFound(c, "Employee not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Only an admin or the employee's manager can view these sales")
		default:
			return response.InternalServerError(c, "Failed to load sales history")
		}
	}

	return response.Success(c, "Sales history retrieved", pagination.NewResponse(sales, params, total))
}

// CustomerHistory lists the authenticated customer's fuel purchases
// @Summary Fuel purchase history
// @Description List the customer's fuel purchases, newest first
// @Tags FuelSales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /fuel-sales [get]
func (h *FuelSaleHandler) CustomerHistory(c *fiber.Ctx) error {
	customerID := middleware.GetAccountID(c)
	params := pagination.GetParams(c)

	sales, total, err := h.ledgerService.ListFuelSales(c.Context(), customerID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to load fuel purchase history")
	}

	return response.Success(c, "Fuel purchase history retrieved", pagination.NewResponse(sales, params, total))
}
